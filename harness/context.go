// Copyright 2026 The Gantry Authors.
// Copyright 2009 The Go Authors.
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
	"context"
	"fmt"
	"io"
	"log"
	"runtime"
	"strings"
	"sync"
	"time"

	"gantry/conf"
	"gantry/harness/testresult"
)

// H is the execution context passed to every test function. It manages
// test state, registered teardowns, and formatted test logs. Logs are
// accumulated during execution and flushed under the test's status
// line when done.
//
// A test ends when its function returns or calls one of FailNow,
// Fatal, Fatalf, SkipNow, Skip, Skipf, SkipIf, or Todo. Those methods
// must be called from the goroutine running the test function.
//
// The other reporting methods, such as the variations of Log and
// Error, may be called simultaneously from multiple goroutines.
//
// An H is never shared between two test executions.
type H struct {
	mu     sync.RWMutex // guards output, failed, and done.
	output bytes.Buffer // Output generated by test.
	w      io.Writer    // Where status lines and output are flushed.
	logger *log.Logger
	ctx    context.Context
	cancel context.CancelFunc
	chatty bool // A copy of the suite's Verbose option.
	conf   *conf.Conf

	name     string    // Qualified test path.
	start    time.Time // Time test started
	duration time.Duration
	signal   chan bool // To signal the test is done.

	finished bool // Test function has completed.
	failed   bool // Test has failed.
	errored  bool // Test hit an unexpected fault.
	skipped  bool // Test has been skipped.
	todo     bool // Test aborted as todo-pending.
	done     bool // Test is finished and teardowns have run.

	reason    string   // First skip or todo reason given.
	nonFatal  []string // Failures recorded by NonFatal, in order.
	teardowns []func(*H) error
}

// Name returns the qualified path of the running test.
func (c *H) Name() string {
	return c.name
}

// Verbose reports whether the suite is running in verbose mode.
func (c *H) Verbose() bool {
	return c.chatty
}

// Context returns the context for the current test. The context is
// cancelled when the test finishes. A goroutine started during a test
// can wait for the context's Done channel to become readable as a
// signal that the test is over, so that the goroutine can exit.
func (c *H) Context() context.Context {
	return c.ctx
}

// log generates the output. It's always at the same stack depth.
func (c *H) log(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger.Output(3, s)
}

// Log formats its arguments using default formatting, analogous to
// Println, and records the text in the test log. The text is printed
// only if the test fails or the suite runs verbose.
func (c *H) Log(args ...interface{}) { c.log(fmt.Sprintln(args...)) }

// Logf formats its arguments according to the format, analogous to
// Printf, and records the text in the test log.
func (c *H) Logf(format string, args ...interface{}) { c.log(fmt.Sprintf(format, args...)) }

// Fail marks the test as having failed but continues execution.
func (c *H) Fail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		panic("Fail in goroutine after " + c.name + " has completed")
	}
	c.failed = true
}

// Failed reports whether the test has failed.
func (c *H) Failed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.failed || len(c.nonFatal) > 0
}

// FailNow marks the test as having failed and stops its execution.
// Registered teardowns still run. FailNow must be called from the
// goroutine running the test function, not from other goroutines
// created during the test.
func (c *H) FailNow() {
	c.Fail()
	c.finished = true
	runtime.Goexit()
}

// Error is equivalent to Log followed by Fail.
func (c *H) Error(args ...interface{}) {
	c.log(fmt.Sprintln(args...))
	c.Fail()
}

// Errorf is equivalent to Logf followed by Fail.
func (c *H) Errorf(format string, args ...interface{}) {
	c.log(fmt.Sprintf(format, args...))
	c.Fail()
}

// Fatal is equivalent to Log followed by FailNow.
func (c *H) Fatal(args ...interface{}) {
	c.log(fmt.Sprintln(args...))
	c.FailNow()
}

// Fatalf is equivalent to Logf followed by FailNow.
func (c *H) Fatalf(format string, args ...interface{}) {
	c.log(fmt.Sprintf(format, args...))
	c.FailNow()
}

// Skip is equivalent to Log followed by SkipNow.
func (c *H) Skip(args ...interface{}) {
	c.log(fmt.Sprintln(args...))
	c.SkipNow()
}

// Skipf is equivalent to Logf followed by SkipNow.
func (c *H) Skipf(format string, args ...interface{}) {
	c.log(fmt.Sprintf(format, args...))
	c.SkipNow()
}

// SkipNow marks the test as skipped and stops its execution. If a test
// fails (see Error, Errorf, Fail) and is then skipped, it is still
// considered to have failed. Registered teardowns still run. SkipNow
// must be called from the goroutine running the test.
func (c *H) SkipNow() {
	c.mu.Lock()
	c.skipped = true
	c.mu.Unlock()
	c.finished = true
	runtime.Goexit()
}

// Skipped reports whether the test was skipped.
func (c *H) Skipped() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.skipped
}

// Teardown registers fn to run when the test completes, regardless of
// how it completes. Teardowns run in reverse registration order, last
// registered first.
func (c *H) Teardown(fn func(*H) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardowns = append(c.teardowns, fn)
}

// runTeardowns fires registered teardowns in reverse registration
// order. Every teardown is attempted even when an earlier one fails;
// failures are logged into the test output and mark the test errored.
func (c *H) runTeardowns() {
	c.mu.Lock()
	tds := c.teardowns
	c.teardowns = nil
	c.mu.Unlock()

	failures := 0
	for i := len(tds) - 1; i >= 0; i-- {
		if err := runTeardown(tds[i], c); err != nil {
			c.log(fmt.Sprintf("teardown %d failed: %v", i, err))
			failures++
		}
	}
	if failures > 0 {
		c.mu.Lock()
		c.errored = true
		c.mu.Unlock()
	}
}

// runTeardown contains a panicking teardown so the remaining ones
// still run.
func runTeardown(fn func(*H) error, c *H) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(c)
}

// NonFatal runs f against a child context. A fatal failure inside f
// unwinds only f; the failure is recorded against this test, which
// continues executing and is reported as failed at the end. Reports
// whether f completed without failing. Resources acquired inside f
// via brackets are torn down with the owning test. A skip or todo
// raised inside f aborts the owning test as usual.
func (c *H) NonFatal(f func(*H)) bool {
	child := &H{
		name:   c.name,
		w:      c.w,
		chatty: c.chatty,
		conf:   c.conf,
		ctx:    c.ctx,
		signal: make(chan bool),
	}
	child.logger = log.New(&child.output, "\t", log.Lshortfile)

	go func() {
		defer func() {
			if err := recover(); err != nil {
				child.mu.Lock()
				child.errored = true
				child.mu.Unlock()
				fmt.Fprintf(&child.output, "\tpanic: %v\n", err)
			}
			child.signal <- true
		}()
		f(child)
		child.finished = true
	}()
	<-child.signal

	c.mu.Lock()
	c.teardowns = append(c.teardowns, child.teardowns...)
	c.output.Write(child.output.Bytes())
	c.mu.Unlock()

	if !child.finished && !child.failed && !child.skipped && !child.todo && !child.errored {
		// Raw runtime.Goexit out of f.
		child.errored = true
	}

	switch {
	case child.todo:
		c.mu.Lock()
		c.todo = true
		if c.reason == "" {
			c.reason = child.reason
		}
		c.mu.Unlock()
		c.finished = true
		runtime.Goexit()
	case child.skipped:
		c.mu.Lock()
		c.skipped = true
		if c.reason == "" {
			c.reason = child.reason
		}
		c.mu.Unlock()
		c.finished = true
		runtime.Goexit()
	case child.failed || child.errored || len(child.nonFatal) > 0:
		msg := strings.TrimRight(child.output.String(), "\n")
		if msg == "" {
			msg = "check failed"
		}
		c.mu.Lock()
		c.nonFatal = append(c.nonFatal, msg)
		c.nonFatal = append(c.nonFatal, child.nonFatal...)
		if child.errored {
			c.errored = true
		}
		c.mu.Unlock()
		return false
	}
	return true
}

// result folds the recorded state into a single outcome. Faults beat
// failures, failures beat todo, todo beats skip.
func (c *H) result() testresult.TestResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch {
	case c.errored:
		return testresult.Error
	case c.failed || len(c.nonFatal) > 0:
		return testresult.Fail
	case c.todo:
		return testresult.Todo
	case c.skipped:
		return testresult.Skip
	default:
		return testresult.Pass
	}
}

// ConfString returns the string setting name from the run
// configuration. Missing settings are fatal to the test.
func (c *H) ConfString(name string) string {
	if c.conf == nil {
		c.Fatalf("test %q has no configuration", c.name)
	}
	v, ok := c.conf.String(name)
	if !ok {
		c.Fatalf("no string setting %q", name)
	}
	return v
}

// ConfInt returns the int setting name from the run configuration.
func (c *H) ConfInt(name string) int {
	if c.conf == nil {
		c.Fatalf("test %q has no configuration", c.name)
	}
	v, ok := c.conf.Int(name)
	if !ok {
		c.Fatalf("no int setting %q", name)
	}
	return v
}

// ConfBool returns the bool setting name from the run configuration.
func (c *H) ConfBool(name string) bool {
	if c.conf == nil {
		c.Fatalf("test %q has no configuration", c.name)
	}
	v, ok := c.conf.Bool(name)
	if !ok {
		c.Fatalf("no bool setting %q", name)
	}
	return v
}

// fmtDuration returns a string representing d in the form "87.00s".
func fmtDuration(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}
