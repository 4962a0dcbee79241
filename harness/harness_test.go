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
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"testing"
	"time"

	"gantry/harness/testresult"
)

func TestMain(m *testing.M) {
	g0 := runtime.NumGoroutine()

	code := m.Run()
	if code != 0 {
		os.Exit(code)
	}

	// Check that there are no goroutines left behind.
	t0 := time.Now()
	stacks := make([]byte, 1<<20)
	for {
		g1 := runtime.NumGoroutine()
		if g1 == g0 {
			return
		}
		stacks = stacks[:runtime.Stack(stacks, true)]
		time.Sleep(50 * time.Millisecond)
		if time.Since(t0) > 2*time.Second {
			fmt.Fprintf(os.Stderr, "Unexpected leftover goroutines detected: %v -> %v\n%s\n", g0, g1, stacks)
			os.Exit(1)
		}
	}
}

// runSuite executes tests without touching the filesystem, capturing
// the human readable output and the TAP log.
func runSuite(opts Options, tests ...Test) (*Suite, string, string, error) {
	var out, tap bytes.Buffer
	s := NewSuite(opts, tests...)
	err := s.runTests(&out, &tap)
	return s, out.String(), tap.String(), err
}

func TestLeafOutcomes(t *testing.T) {
	testCases := []struct {
		desc   string
		result testresult.TestResult
		f      TestFunc
	}{{
		desc:   "plain return passes",
		result: testresult.Pass,
		f:      func(h *H) {},
	}, {
		desc:   "failed bool assertion fails",
		result: testresult.Fail,
		f:      func(h *H) { h.AssertBool("x", false) },
	}, {
		desc:   "non-empty string assertion fails",
		result: testresult.Fail,
		f:      func(h *H) { h.AssertString("unexpected error text") },
	}, {
		desc:   "empty string assertion passes",
		result: testresult.Pass,
		f:      func(h *H) { h.AssertString("") },
	}, {
		desc:   "skip",
		result: testresult.Skip,
		f:      func(h *H) { h.SkipIf(true, "n/a") },
	}, {
		desc:   "skip with false condition is a no-op",
		result: testresult.Pass,
		f:      func(h *H) { h.SkipIf(false, "n/a") },
	}, {
		desc:   "todo",
		result: testresult.Todo,
		f:      func(h *H) { h.Todo("later") },
	}, {
		desc:   "panic is an error, not a failure",
		result: testresult.Error,
		f:      func(h *H) { panic("kaboom") },
	}, {
		desc:   "raw goexit is an error",
		result: testresult.Error,
		f:      func(h *H) { runtime.Goexit() },
	}, {
		desc:   "recorded non-fatal failure fails the test",
		result: testresult.Fail,
		f: func(h *H) {
			h.NonFatal(func(h *H) { h.Fatal("first") })
			h.NonFatal(func(h *H) { h.Fatal("second") })
		},
	}, {
		desc:   "passing non-fatal checks do not fail the test",
		result: testresult.Pass,
		f: func(h *H) {
			h.NonFatal(func(h *H) {})
		},
	}, {
		desc:   "failure before skip still fails",
		result: testresult.Fail,
		f: func(h *H) {
			h.Error("an error")
			h.Skip("skipped")
		},
	}}
	for _, tc := range testCases {
		s, _, _, _ := runSuite(Options{}, TestCase(tc.desc, tc.f))
		outcomes := s.Outcomes()
		if len(outcomes) != 1 {
			t.Fatalf("%s: ran %d tests, want 1", tc.desc, len(outcomes))
		}
		if outcomes[0].Result != tc.result {
			t.Errorf("%s: result %s, want %s", tc.desc, outcomes[0].Result, tc.result)
		}
	}
}

func TestAggregation(t *testing.T) {
	s, _, tap, err := runSuite(Options{},
		TestList("mixed",
			TestCase("pass", func(h *H) {}),
			TestCase("fail", func(h *H) { h.AssertBool("x", false) }),
			TestCase("skip", func(h *H) { h.SkipIf(true, "n/a") }),
			TestCase("todo", func(h *H) { h.Todo("later") }),
		),
	)
	if !errors.Is(err, SuiteFailed) {
		t.Errorf("err = %v, want SuiteFailed", err)
	}
	want := Tally{Passed: 1, Failed: 1, Skipped: 1, Todo: 1}
	if s.Tally() != want {
		t.Errorf("tally = %+v, want %+v", s.Tally(), want)
	}
	if s.Tally().Ok() {
		t.Error("tally reports success for a failing run")
	}
	for _, line := range []string{
		"1..4",
		"ok 1 - mixed/pass",
		"not ok 2 - mixed/fail",
		"ok 3 - mixed/skip # SKIP n/a",
		"not ok 4 - mixed/todo # TODO later",
	} {
		if !strings.Contains(tap, line) {
			t.Errorf("TAP log missing %q:\n%s", line, tap)
		}
	}
}

func TestQualifiedPaths(t *testing.T) {
	s, _, _, err := runSuite(Options{},
		TestList("suite",
			TestList("group",
				TestCase("case", func(h *H) {}),
			),
			TestCase("dup", func(h *H) {}),
			TestCase("dup", func(h *H) {}),
		),
	)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	var paths []string
	for _, o := range s.Outcomes() {
		paths = append(paths, o.Path)
	}
	want := []string{"suite/group/case", "suite/dup", "suite/dup#01"}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestFilter(t *testing.T) {
	tests := []Test{
		TestList("alpha",
			TestCase("one", func(h *H) {}),
			TestCase("two", func(h *H) {}),
		),
		TestList("beta",
			TestCase("one", func(h *H) {}),
		),
	}
	testCases := []struct {
		match string
		total int
	}{
		{"", 3},
		{"alpha", 2},
		{"alpha/one", 1},
		{"/one", 2},
		{"gamma", 0},
	}
	for _, tc := range testCases {
		s, _, _, err := runSuite(Options{Match: tc.match}, tests...)
		if got := s.Tally().Total(); got != tc.total {
			t.Errorf("match %q: ran %d tests, want %d", tc.match, got, tc.total)
		}
		if tc.total == 0 && !errors.Is(err, SuiteEmpty) {
			t.Errorf("match %q: err = %v, want SuiteEmpty", tc.match, err)
		}
	}
}

func TestSkipStopsExecution(t *testing.T) {
	reached := false
	s, _, _, _ := runSuite(Options{}, TestCase("skip", func(h *H) {
		h.SkipIf(true, "bail out")
		reached = true
	}))
	if reached {
		t.Error("code after SkipIf executed")
	}
	if s.Outcomes()[0].Reason != "bail out" {
		t.Errorf("reason = %q, want %q", s.Outcomes()[0].Reason, "bail out")
	}
}

func TestTeardownOrder(t *testing.T) {
	var order []string
	s, _, _, _ := runSuite(Options{}, TestCase("teardowns", func(h *H) {
		h.Teardown(func(h *H) error {
			order = append(order, "B1")
			return nil
		})
		h.Teardown(func(h *H) error {
			order = append(order, "B2")
			return errors.New("b2 exploded")
		})
		h.Teardown(func(h *H) error {
			order = append(order, "B3")
			return nil
		})
	}))
	want := []string{"B3", "B2", "B1"}
	if len(order) != len(want) {
		t.Fatalf("teardown order %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("teardown order %v, want %v", order, want)
		}
	}
	// The failed teardown is not swallowed.
	o := s.Outcomes()[0]
	if o.Result != testresult.Error {
		t.Errorf("result = %s, want %s", o.Result, testresult.Error)
	}
	if !strings.Contains(o.Output, "b2 exploded") {
		t.Errorf("output does not mention teardown failure:\n%s", o.Output)
	}
}

func TestTeardownsRunOnFatal(t *testing.T) {
	ran := false
	runSuite(Options{}, TestCase("fatal", func(h *H) {
		h.Teardown(func(h *H) error {
			ran = true
			return nil
		})
		h.Fatal("dead")
	}))
	if !ran {
		t.Error("teardown did not run after Fatal")
	}
}

func TestNonFatalRecordsAll(t *testing.T) {
	s, _, _, _ := runSuite(Options{}, TestCase("checks", func(h *H) {
		h.NonFatal(func(h *H) { h.Fatal("first failure") })
		h.NonFatal(func(h *H) { h.Fatal("second failure") })
	}))
	o := s.Outcomes()[0]
	if o.Result != testresult.Fail {
		t.Fatalf("result = %s, want %s", o.Result, testresult.Fail)
	}
	for _, msg := range []string{"first failure", "second failure"} {
		if !strings.Contains(o.Output, msg) {
			t.Errorf("output missing %q:\n%s", msg, o.Output)
		}
	}
}

func TestNonFatalPropagatesSkip(t *testing.T) {
	s, _, _, err := runSuite(Options{}, TestCase("skip-inside", func(h *H) {
		h.NonFatal(func(h *H) { h.SkipIf(true, "inner skip") })
		h.Fatal("unreachable")
	}))
	if err != nil {
		t.Errorf("err = %v, want nil", err)
	}
	if got := s.Outcomes()[0].Result; got != testresult.Skip {
		t.Errorf("result = %s, want %s", got, testresult.Skip)
	}
}

func TestAssertEqualTiers(t *testing.T) {
	testCases := []struct {
		desc string
		opts []EqualOption
		want string
	}{{
		desc: "bare mismatch gives the generic notice",
		want: "values not equal",
	}, {
		desc: "printer renders both values",
		opts: []EqualOption{Printer(func(v interface{}) string { return fmt.Sprintf("<%v>", v) })},
		want: "expected: <1>",
	}, {
		desc: "differ wins over printer",
		opts: []EqualOption{
			Printer(func(v interface{}) string { return "unused" }),
			Differ(func(e, a interface{}) string { return "the diff" }),
		},
		want: "the diff",
	}, {
		desc: "caller message prefixes the diagnostic",
		opts: []EqualOption{Message("context here")},
		want: "context here",
	}}
	for _, tc := range testCases {
		s, _, _, _ := runSuite(Options{}, TestCase(tc.desc, func(h *H) {
			h.AssertEqual(1, 2, tc.opts...)
		}))
		o := s.Outcomes()[0]
		if o.Result != testresult.Fail {
			t.Errorf("%s: result = %s, want FAIL", tc.desc, o.Result)
		}
		if !strings.Contains(o.Output, tc.want) {
			t.Errorf("%s: output missing %q:\n%s", tc.desc, tc.want, o.Output)
		}
	}
}

func TestAssertEqualReflexive(t *testing.T) {
	s, _, _, err := runSuite(Options{}, TestCase("reflexive", func(h *H) {
		h.AssertEqual("same", "same")
		h.AssertEqual([]string{"a"}, []string{"a"})
		h.AssertEqual(0.30000001, 0.3, Comparator(func(e, a interface{}) bool {
			return CmpFloat(e.(float64), a.(float64))
		}))
	}))
	if err != nil {
		t.Errorf("reflexive comparisons failed: %v", err)
	}
	if got := s.Outcomes()[0].Result; got != testresult.Pass {
		t.Errorf("result = %s, want PASS", got)
	}
}

func TestAssertRaises(t *testing.T) {
	sentinel := errors.New("expected failure")
	testCases := []struct {
		desc   string
		result testresult.TestResult
		f      func() error
	}{
		{"matching error passes", testresult.Pass, func() error { return sentinel }},
		{"no error fails", testresult.Fail, func() error { return nil }},
		{"wrong error fails", testresult.Fail, func() error { return errors.New("other") }},
	}
	for _, tc := range testCases {
		s, _, _, _ := runSuite(Options{}, TestCase(tc.desc, func(h *H) {
			h.AssertRaises(sentinel, tc.f)
		}))
		if got := s.Outcomes()[0].Result; got != tc.result {
			t.Errorf("%s: result = %s, want %s", tc.desc, got, tc.result)
		}
	}
}

func TestContextCancel(t *testing.T) {
	released := make(chan struct{})
	_, _, _, err := runSuite(Options{}, TestCase("cancel", func(h *H) {
		ctx := h.Context()
		// Tests we don't leak this goroutine:
		go func() {
			<-ctx.Done()
			close(released)
		}()
	}))
	if err != nil {
		t.Errorf("run failed: %v", err)
	}
	select {
	case <-released:
	case <-time.After(2 * time.Second):
		t.Error("test context was not cancelled")
	}
}

func TestVerboseOutput(t *testing.T) {
	_, out, _, _ := runSuite(Options{Verbose: true},
		TestCase("loud", func(h *H) { h.Log("hello from the test") }),
	)
	for _, want := range []string{"=== RUN   loud", "loud (0.00s)", "hello from the test"} {
		if !strings.Contains(out, want) {
			t.Errorf("verbose output missing %q:\n%s", want, out)
		}
	}
}

func TestOptionsFlagSet(t *testing.T) {
	var opts Options
	fs := opts.FlagSet("harness.", 0)
	if err := fs.Parse([]string{"-harness.run", "alpha", "-harness.v"}); err != nil {
		t.Fatal(err)
	}
	if opts.Match != "alpha" || !opts.Verbose {
		t.Errorf("opts = %+v after flag parse", opts)
	}
}

func TestRelabel(t *testing.T) {
	leaf := TestCase("old", func(h *H) {})
	group := TestList("oldgroup", leaf)
	var paths []string
	Walk([]Test{Relabel("new", leaf), Relabel("newgroup", group)}, func(path string, l Leaf) {
		paths = append(paths, path)
	})
	want := []string{"new", "newgroup/old"}
	if len(paths) != 2 || paths[0] != want[0] || paths[1] != want[1] {
		t.Errorf("paths = %v, want %v", paths, want)
	}
}
