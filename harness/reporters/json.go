// Copyright 2026 The Gantry Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reporters

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"gantry/harness/testresult"
)

type jsonReporter struct {
	RunID  string                `json:"run_id"`
	Tests  []jsonTest            `json:"tests"`
	Result testresult.TestResult `json:"result"`

	filename string
	mutex    sync.Mutex
}

type jsonTest struct {
	Path     string                `json:"path"`
	Result   testresult.TestResult `json:"result"`
	Duration time.Duration         `json:"duration"`
	Output   string                `json:"output"`
}

// NewJSONReporter returns a Reporter that writes a JSON report named
// filename into the suite output directory. Each run is tagged with a
// fresh id so reports from repeated runs can be told apart.
func NewJSONReporter(filename string) Reporter {
	return &jsonReporter{
		RunID:    uuid.New().String(),
		filename: filename,
	}
}

func (r *jsonReporter) ReportTest(path string, result testresult.TestResult, duration time.Duration, output []byte) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.Tests = append(r.Tests, jsonTest{
		Path:     path,
		Result:   result,
		Duration: duration,
		Output:   string(output),
	})
}

func (r *jsonReporter) Output(dir string) error {
	f, err := os.Create(filepath.Join(dir, r.filename))
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(r)
}

func (r *jsonReporter) SetResult(result testresult.TestResult) {
	r.Result = result
}
