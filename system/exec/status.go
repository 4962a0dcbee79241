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

package exec

import (
	"fmt"
	"os/exec"
	"syscall"
)

// StatusKind distinguishes the ways a process can terminate.
type StatusKind int

const (
	// Exited means the process terminated normally; Code holds its exit code.
	Exited StatusKind = iota
	// Signaled means the process was terminated by Signal.
	Signaled
	// Stopped means the process was stopped by Signal.
	Stopped
)

// Status is a structured process wait status. The zero value is a
// normal exit with code 0.
type Status struct {
	Kind   StatusKind
	Code   int
	Signal syscall.Signal
}

// ExitStatus returns a Status for a normal exit with the given code.
func ExitStatus(code int) Status {
	return Status{Kind: Exited, Code: code}
}

// SignalStatus returns a Status for termination by the given signal.
func SignalStatus(sig syscall.Signal) Status {
	return Status{Kind: Signaled, Signal: sig}
}

func (s Status) String() string {
	switch s.Kind {
	case Signaled:
		return fmt.Sprintf("terminated by signal %v (%d)", s.Signal, int(s.Signal))
	case Stopped:
		return fmt.Sprintf("stopped by signal %v (%d)", s.Signal, int(s.Signal))
	default:
		return fmt.Sprintf("exit status %d", s.Code)
	}
}

// Success reports whether the status is a normal exit with code 0.
func (s Status) Success() bool {
	return s.Kind == Exited && s.Code == 0
}

func statusFromWait(ws syscall.WaitStatus) Status {
	switch {
	case ws.Signaled():
		return Status{Kind: Signaled, Signal: ws.Signal()}
	case ws.Stopped():
		return Status{Kind: Stopped, Signal: ws.StopSignal()}
	default:
		return Status{Kind: Exited, Code: ws.ExitStatus()}
	}
}

// StatusFromError extracts the termination status from an error
// returned by Run or Wait. A nil error is a clean exit. The second
// return is false if the process never produced a wait status, e.g.
// because it could not be started at all.
func StatusFromError(err error) (Status, bool) {
	if err == nil {
		return Status{}, true
	}
	eerr, ok := err.(*exec.ExitError)
	if !ok || eerr.ProcessState == nil {
		return Status{}, false
	}
	return statusFromWait(eerr.Sys().(syscall.WaitStatus)), true
}
