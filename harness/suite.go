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
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/coreos/pkg/capnslog"
	"github.com/pkg/errors"

	"gantry/conf"
	"gantry/harness/reporters"
	"gantry/harness/testresult"
)

const defaultOutputDir = "_gantry_temp"

var plog = capnslog.NewPackageLogger("gantry", "harness")

var (
	SuiteEmpty  = errors.New("harness: no tests to run")
	SuiteFailed = errors.New("harness: test suite failed")
)

// Options configure a Suite run. All fields are optional.
type Options struct {
	// The directory in which to write the TAP log and reports.
	OutputDir string

	// Report as tests are run; default is silent for success.
	Verbose bool

	// Run only tests whose qualified path matches a slash-separated
	// list of regular expressions, one per path level.
	Match string

	// Snapshot working directory and environment around every test
	// and fail tests that change either without restoring it.
	CheckIsolation bool

	// Conf is the run-wide settings store exposed to tests.
	Conf *conf.Conf

	Reporters reporters.Reporters
}

// FlagSet can be used to set up options via command line flags.
// An optional prefix can be prepended to each flag. Defaults can be
// specified prior to calling FlagSet.
func (o *Options) FlagSet(prefix string, errorHandling flag.ErrorHandling) *flag.FlagSet {
	o.init()
	name := strings.Trim(prefix, ".-")
	f := flag.NewFlagSet(name, errorHandling)
	f.StringVar(&o.OutputDir, prefix+"outputdir", o.OutputDir,
		"write the TAP log and reports to `dir`")
	f.BoolVar(&o.Verbose, prefix+"v", o.Verbose,
		"verbose: print additional output")
	f.StringVar(&o.Match, prefix+"run", o.Match,
		"run only tests matching `regexp`")
	f.BoolVar(&o.CheckIsolation, prefix+"isolation", o.CheckIsolation,
		"fail tests that leak working directory or environment changes")
	return f
}

// init fills in any default values that shouldn't be the zero value.
func (o *Options) init() {
	if o.OutputDir == "" {
		o.OutputDir = defaultOutputDir
	}
}

// Suite manages the execution of a tree of tests. Leaves run one at a
// time, in declaration order, depth first.
type Suite struct {
	opts  Options
	tests []Test
	match *matcher

	tally    Tally
	outcomes []Outcome
}

// NewSuite creates a new test suite. All parameters in Options cannot
// be modified once given to Suite.
func NewSuite(opts Options, tests ...Test) *Suite {
	opts.init()
	return &Suite{
		opts:  opts,
		tests: tests,
		match: newMatcher(opts.Match, "Match"),
	}
}

// CleanOutputDir creates a fresh, empty directory at path, removing
// whatever a previous run left there.
func CleanOutputDir(path string) (string, error) {
	if err := os.RemoveAll(path); err != nil {
		return "", errors.Wrapf(err, "harness: cleaning output dir")
	}
	if err := os.MkdirAll(path, 0777); err != nil {
		return "", errors.Wrapf(err, "harness: creating output dir")
	}
	return path, nil
}

// Run runs the tests. Returns SuiteFailed if any test failed, errored,
// or aborted as todo-pending, and SuiteEmpty if no test matched.
func (s *Suite) Run() (err error) {
	outputDir, err := CleanOutputDir(s.opts.OutputDir)
	if err != nil {
		return err
	}
	s.opts.OutputDir = outputDir

	tap, err := os.Create(s.outputPath("test.tap"))
	if err != nil {
		return err
	}
	defer tap.Close()

	reportDir := s.outputPath("reports")
	if err := os.Mkdir(reportDir, 0777); err != nil {
		return err
	}
	defer func() {
		if reportErr := s.opts.Reporters.Output(reportDir); reportErr != nil && err == nil {
			err = reportErr
		}
	}()

	return s.runTests(os.Stdout, tap)
}

// outputPath returns a path under the suite's output directory.
func (s *Suite) outputPath(path string) string {
	return filepath.Join(s.opts.OutputDir, path)
}

// Tally returns the per-result counts of the completed run.
func (s *Suite) Tally() Tally {
	return s.tally
}

// Outcomes returns the recorded outcome of every executed leaf, in
// execution order.
func (s *Suite) Outcomes() []Outcome {
	return s.outcomes
}

type plannedTest struct {
	path string
	leaf Leaf
}

// plan traverses the tree pre-order, depth first, qualifying labels
// and dropping tests excluded by the filter. Groups pruned by the
// filter are not descended into.
func (s *Suite) plan() []plannedTest {
	var planned []plannedTest
	var walk func(parent string, t Test)
	walk = func(parent string, t Test) {
		switch v := t.(type) {
		case Leaf:
			path, ok := s.match.qualify(parent, v.Label)
			if !ok {
				return
			}
			planned = append(planned, plannedTest{path: path, leaf: v})
		case Group:
			path, ok := s.match.qualify(parent, v.Label)
			if !ok {
				return
			}
			for _, sub := range v.Tests {
				walk(path, sub)
			}
		}
	}
	for _, t := range s.tests {
		walk("", t)
	}
	return planned
}

func (s *Suite) runTests(out, tap io.Writer) error {
	planned := s.plan()
	fmt.Fprintf(tap, "1..%d\n", len(planned))

	for i, p := range planned {
		o := s.runLeaf(out, p.path, p.leaf)
		s.outcomes = append(s.outcomes, o)
		s.tally.add(o.Result)
		writeTap(tap, i+1, o)
		s.opts.Reporters.ReportTest(o.Path, o.Result, o.Duration, []byte(o.Output))
	}

	s.summarize(out)

	if len(planned) == 0 {
		return SuiteEmpty
	}
	if !s.tally.Ok() {
		s.opts.Reporters.SetResult(testresult.Fail)
		return SuiteFailed
	}
	s.opts.Reporters.SetResult(testresult.Pass)
	return nil
}

// runLeaf executes one test function with a fresh context, fires its
// teardowns, and folds everything into an Outcome.
func (s *Suite) runLeaf(out io.Writer, path string, leaf Leaf) Outcome {
	h := &H{
		name:   path,
		w:      out,
		chatty: s.opts.Verbose,
		conf:   s.opts.Conf,
		signal: make(chan bool),
	}
	h.logger = log.New(&h.output, "\t", log.Lshortfile)
	h.ctx, h.cancel = context.WithCancel(context.Background())

	if h.chatty {
		fmt.Fprintf(out, "=== RUN   %s\n", path)
	}

	var before EnvSnapshot
	if s.opts.CheckIsolation {
		before = Snapshot()
	}

	go hRunner(h, leaf.Run, s.opts.CheckIsolation, before)
	<-h.signal

	result := h.result()
	output := h.output.String()
	if result != testresult.Pass && result != testresult.Skip || h.chatty {
		fmt.Fprintf(out, "--- %s: %s (%s)\n", result.Display(), path, fmtDuration(h.duration))
		io.WriteString(out, output)
	}

	return Outcome{
		Path:     path,
		Result:   result,
		Reason:   h.reason,
		Duration: h.duration,
		Output:   output,
	}
}

// hRunner drives one test function in its own goroutine so that fatal
// assertions, skips, and todos can stop the function with
// runtime.Goexit while teardowns still run in the deferred block.
func hRunner(h *H, fn TestFunc, checkIsolation bool, before EnvSnapshot) {
	defer h.cancel()
	defer func() {
		h.duration += time.Since(h.start)

		// If the test panicked, the fault is distinct from an
		// assertion failure: it means a bug in the test or the code
		// under test.
		err := recover()
		if !h.finished && err == nil {
			err = fmt.Errorf("test executed panic(nil) or runtime.Goexit")
		}
		if err != nil {
			h.mu.Lock()
			h.errored = true
			h.mu.Unlock()
			fmt.Fprintf(&h.output, "\tpanic: %v\n", err)
		}

		// Teardowns run on every exit path, including skip, todo,
		// failure, and panic.
		h.runTeardowns()
		if checkIsolation {
			h.CheckIsolation(before)
		}

		h.done = true
		h.signal <- true
	}()

	h.start = time.Now()
	fn(h)
	h.finished = true
}

// summarize prints the final counts and the paths of unsuccessful
// tests.
func (s *Suite) summarize(out io.Writer) {
	t := s.tally
	fmt.Fprintf(out, "\n%d tests: %d passed, %d failed, %d errored, %d skipped, %d todo\n",
		t.Total(), t.Passed, t.Failed, t.Errored, t.Skipped, t.Todo)
	for _, o := range s.outcomes {
		if !o.Result.Ok() {
			fmt.Fprintf(out, "    %s: %s\n", o.Result, o.Path)
		}
	}
	if t.Ok() {
		fmt.Fprintln(out, testresult.Pass.Display())
	} else {
		fmt.Fprintln(out, testresult.Fail.Display())
	}
}

func writeTap(w io.Writer, n int, o Outcome) {
	switch o.Result {
	case testresult.Pass:
		fmt.Fprintf(w, "ok %d - %s\n", n, o.Path)
	case testresult.Skip:
		fmt.Fprintf(w, "ok %d - %s # SKIP %s\n", n, o.Path, o.Reason)
	case testresult.Todo:
		fmt.Fprintf(w, "not ok %d - %s # TODO %s\n", n, o.Path, o.Reason)
	default:
		fmt.Fprintf(w, "not ok %d - %s\n", n, o.Path)
	}
}
