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

package testresult

import (
	"os"

	"golang.org/x/term"
)

const (
	Pass  TestResult = "PASS"
	Fail  TestResult = "FAIL"
	Error TestResult = "ERROR"
	Skip  TestResult = "SKIP"
	Todo  TestResult = "TODO"
)

// TestResult is the final classification of a single test execution.
type TestResult string

// Ok reports whether the result counts toward overall run success.
// Skipped tests count as success, todo-pending tests do not.
func (s TestResult) Ok() bool {
	return s == Pass || s == Skip
}

// Display returns the result decorated with an ANSI color when stdout
// is a terminal, and the plain string otherwise.
func (s TestResult) Display() string {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return string(s)
	}

	red := "\033[31m"
	yellow := "\033[33m"
	blue := "\033[34m"
	green := "\033[32m"
	reset := "\033[0m"

	switch s {
	case Fail, Error:
		return red + string(s) + reset
	case Todo:
		return yellow + string(s) + reset
	case Skip:
		return blue + string(s) + reset
	default:
		return green + string(s) + reset
	}
}
