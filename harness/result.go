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

package harness

import (
	"time"

	"gantry/harness/testresult"
)

// Outcome is the recorded result of one leaf execution. It is
// immutable once produced by the Suite.
type Outcome struct {
	// Path is the qualified slash-separated test path.
	Path   string
	Result testresult.TestResult

	// Reason carries the skip or todo reason when one was given.
	Reason string

	Duration time.Duration

	// Output is the captured test log, including assertion failures.
	Output string
}

// Tally counts leaf outcomes by result.
type Tally struct {
	Passed  int
	Failed  int
	Errored int
	Skipped int
	Todo    int
}

func (t *Tally) add(r testresult.TestResult) {
	switch r {
	case testresult.Pass:
		t.Passed++
	case testresult.Fail:
		t.Failed++
	case testresult.Error:
		t.Errored++
	case testresult.Skip:
		t.Skipped++
	case testresult.Todo:
		t.Todo++
	}
}

// Total returns the number of leaves executed.
func (t Tally) Total() int {
	return t.Passed + t.Failed + t.Errored + t.Skipped + t.Todo
}

// Ok reports overall success: no failed, errored, or todo-pending
// tests. Skipped tests count toward success.
func (t Tally) Ok() bool {
	return t.Failed == 0 && t.Errored == 0 && t.Todo == 0
}
