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

// Package reporters records test results as the suite runs and writes
// them out in machine readable formats once the run completes.
package reporters

import (
	"time"

	"gantry/harness/testresult"
)

// Reporter receives one ReportTest call per executed leaf, identified
// by its qualified slash-separated path, and a final SetResult call
// with the overall suite result. Output writes any accumulated report
// into the given directory.
type Reporter interface {
	ReportTest(path string, result testresult.TestResult, duration time.Duration, output []byte)
	Output(dir string) error
	SetResult(result testresult.TestResult)
}

// Reporters fans calls out to a list of reporters.
type Reporters []Reporter

func (reps Reporters) ReportTest(path string, result testresult.TestResult, duration time.Duration, output []byte) {
	for _, r := range reps {
		r.ReportTest(path, result, duration, output)
	}
}

func (reps Reporters) Output(dir string) error {
	for _, r := range reps {
		if err := r.Output(dir); err != nil {
			return err
		}
	}
	return nil
}

func (reps Reporters) SetResult(result testresult.TestResult) {
	for _, r := range reps {
		r.SetResult(result)
	}
}
