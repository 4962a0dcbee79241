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
	"bytes"
	"io"

	"github.com/kballard/go-shellquote"

	"gantry/system/exec"
)

// CommandOptions control AssertCommand. The zero value expects a clean
// exit with empty stdin, inherited environment, and no output
// verification.
type CommandOptions struct {
	// Status is the expected termination status.
	Status exec.Status

	// Stdin is fed to the child process. nil means empty input.
	Stdin io.Reader

	// Verify, if set, receives the captured output stream for
	// inspection before the status comparison. A returned error
	// fails the test.
	Verify func(output io.Reader) error

	// CombineOutput merges stderr into the captured stdout stream.
	CombineOutput bool

	// Env overrides the child's environment. nil means inherited.
	Env []string

	// Verbose dumps captured stdout and stderr into the test log
	// when the assertion fails.
	Verbose bool
}

// AssertCommand runs a program and asserts on its termination status.
// Stdin feeding and output draining proceed concurrently, so neither
// stream can deadlock the other on a full pipe buffer. Failure
// messages quote the full command line for reproduction.
func (c *H) AssertCommand(name string, args []string, opts CommandOptions) {
	cmdline := shellquote.Join(append([]string{name}, args...)...)
	plog.Debugf("Running command: %s", cmdline)

	cmd := exec.CommandContext(c.ctx, name, args...)
	if opts.Env != nil {
		cmd.Env = opts.Env
	}
	if opts.Stdin != nil {
		cmd.Stdin = opts.Stdin
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if opts.CombineOutput {
		cmd.Stderr = &stdout
	} else {
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	status, ok := exec.StatusFromError(err)
	if !ok {
		c.Fatalf("%s: %v", cmdline, err)
	}

	if opts.Verify != nil {
		if verr := opts.Verify(bytes.NewReader(stdout.Bytes())); verr != nil {
			c.Errorf("%s: output verification failed: %v", cmdline, verr)
		}
	}
	if status != opts.Status {
		c.Errorf("%s: %s, want %s", cmdline, status, opts.Status)
	}

	if opts.Verbose && c.Failed() {
		c.Logf("stdout:\n%s", stdout.String())
		if !opts.CombineOutput {
			c.Logf("stderr:\n%s", stderr.String())
		}
	}
}
