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

package main

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"

	"gantry/harness"
	"gantry/system/exec"
)

// selfCheckTests exercises the engine against itself: every feature
// the harness offers appears in at least one passing test here.
func selfCheckTests() []harness.Test {
	return []harness.Test{
		harness.TestList("assert",
			harness.TestCase("equal", func(h *harness.H) {
				h.AssertEqual([]int{1, 2, 3}, []int{1, 2, 3}, harness.PrettyDiff)
			}),
			harness.TestCase("float", func(h *harness.H) {
				h.AssertBool("floats within epsilon", harness.CmpFloat(0.3, 0.1+0.2))
			}),
			harness.TestCase("raises", func(h *harness.H) {
				sentinel := errors.New("boom")
				h.AssertRaises(sentinel, func() error {
					return errors.Wrap(sentinel, "wrapped")
				})
			}),
		),
		harness.TestList("bracket",
			harness.TestCase("temp-file", func(h *harness.H) {
				path, f := h.TempFile("gantry-", ".txt")
				if _, err := f.WriteString("scratch\n"); err != nil {
					h.Fatalf("writing %s: %v", path, err)
				}
			}),
			harness.TestCase("temp-dir", func(h *harness.H) {
				dir := h.TempDir("gantry-", "")
				if err := os.WriteFile(filepath.Join(dir, "probe"), nil, 0644); err != nil {
					h.Fatalf("writing in %s: %v", dir, err)
				}
			}),
		),
		harness.TestList("command",
			harness.TestCase("true", func(h *harness.H) {
				h.SkipIf(!h.ConfBool("exercise-commands"), "commands disabled by configuration")
				h.AssertCommand("true", nil, harness.CommandOptions{})
			}),
			harness.TestCase("false", func(h *harness.H) {
				h.SkipIf(!h.ConfBool("exercise-commands"), "commands disabled by configuration")
				h.AssertCommand("false", nil, harness.CommandOptions{
					Status: exec.ExitStatus(1),
				})
			}),
			harness.TestCase("cat-roundtrip", func(h *harness.H) {
				h.SkipIf(!h.ConfBool("exercise-commands"), "commands disabled by configuration")
				h.SkipIf(runtime.GOOS == "windows", "relies on cat")
				lines := h.ConfInt("payload-lines")
				payload := strings.Repeat("payload line\n", lines)
				h.AssertCommand("cat", nil, harness.CommandOptions{
					Stdin: strings.NewReader(payload),
					Verify: func(output io.Reader) error {
						got := 0
						scanner := bufio.NewScanner(output)
						for scanner.Scan() {
							got++
						}
						if err := scanner.Err(); err != nil {
							return err
						}
						if got != lines {
							return errors.Errorf("echoed %d lines, want %d", got, lines)
						}
						return nil
					},
				})
			}),
			harness.TestCase("shell-stderr", func(h *harness.H) {
				h.SkipIf(!h.ConfBool("exercise-commands"), "commands disabled by configuration")
				shell := h.ConfString("shell")
				h.AssertCommand(shell, []string{"-c", "echo oops >&2; exit 3"}, harness.CommandOptions{
					Status:        exec.ExitStatus(3),
					CombineOutput: true,
					Verbose:       true,
				})
			}),
		),
		harness.TestCase("non-fatal", func(h *harness.H) {
			sawSecond := false
			h.NonFatal(func(h *harness.H) {
				// Recorded checks run to completion even when an
				// earlier sibling failed.
			})
			h.NonFatal(func(h *harness.H) {
				sawSecond = true
			})
			h.AssertBool("second non-fatal check ran", sawSecond)
		}),
	}
}
