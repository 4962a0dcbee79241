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

// Package harness is a unit-testing engine: tests are composed into a
// labeled tree, executed sequentially with per-test resource scoping,
// and reported with TAP output and pluggable reporters.
//
// Tests are plain functions of type TestFunc registered in a tree of
// leaves and groups:
//
//	suite := harness.NewSuite(harness.Options{},
//		harness.TestList("math",
//			harness.TestCase("add", func(h *harness.H) {
//				h.AssertEqual(4, 2+2)
//			}),
//			harness.TestCase("later", func(h *harness.H) {
//				h.Todo("not implemented")
//			}),
//		),
//	)
//	err := suite.Run()
//
// Group labels prefix descendant labels with a slash to form the
// qualified path used in reporting and filtering, e.g. "math/add".
// Labels need not be unique; duplicates are disambiguated with a
// trailing sequence number.
//
// Within a test function, use the Assert methods, or Error, Fatal and
// related methods, to signal failure. SkipIf and Todo abort the test
// with a distinct outcome: a skip counts toward success, a todo counts
// as failure so intentionally incomplete work stays visible.
//
// Resources with paired acquire/release steps are managed with
// Bracket, which ties release to the test's lifetime:
//
//	f := harness.Bracket(h,
//		func(h *harness.H) (*sql.DB, error) { return sql.Open("sqlite", dsn) },
//		func(db *sql.DB, h *harness.H) error { return db.Close() },
//	)
//
// Teardowns fire in reverse acquisition order on every exit path,
// including failures, skips, and panics. TempFile and TempDir are
// ready-made brackets for scratch files and directories.
//
// External commands are asserted with AssertCommand, which feeds the
// child's stdin and drains its output concurrently, then compares the
// structured termination status and optionally hands the captured
// output to a verification callback.
//
// With Options.CheckIsolation, the engine snapshots the working
// directory and environment around every test and records non-fatal
// failures against tests that change either without restoring it.
package harness
