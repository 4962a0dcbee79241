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
	"errors"
	"fmt"
	"math"
	"reflect"
	"runtime"

	"github.com/kylelemons/godebug/pretty"
)

// DefaultEpsilon is the tolerance used by CmpFloat.
const DefaultEpsilon = 1e-5

// CmpFloat reports whether a and b are equal within DefaultEpsilon.
// It is a pure predicate, usable inside custom comparators.
func CmpFloat(a, b float64) bool {
	return CmpFloatEpsilon(a, b, DefaultEpsilon)
}

// CmpFloatEpsilon reports whether |a-b| <= epsilon.
func CmpFloatEpsilon(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

// AssertBool fails the test with msg if cond is false.
func (c *H) AssertBool(msg string, cond bool) {
	if !cond {
		c.Fatal(msg)
	}
}

// AssertString fails the test with s if s is non-empty. It asserts
// that no error text was produced.
func (c *H) AssertString(s string) {
	if s != "" {
		c.Fatal(s)
	}
}

// SkipIf aborts the test with outcome skipped if cond is true, and is
// a no-op otherwise. Code following the call does not execute when the
// test is skipped.
func (c *H) SkipIf(cond bool, reason string) {
	if !cond {
		return
	}
	c.mu.Lock()
	if c.reason == "" {
		c.reason = reason
	}
	c.mu.Unlock()
	c.Skip(reason)
}

// Todo unconditionally aborts the test with outcome todo-pending.
// Unlike a skip, a todo counts as a failure in suite aggregation, so
// intentionally incomplete work is never silently green.
func (c *H) Todo(reason string) {
	c.log(reason + "\n")
	c.mu.Lock()
	c.todo = true
	if c.reason == "" {
		c.reason = reason
	}
	c.mu.Unlock()
	c.finished = true
	runtime.Goexit()
}

// AssertRaises runs f and fails unless it returns an error matching
// expected. Matching uses errors.Is, falling back to equal error
// strings.
func (c *H) AssertRaises(expected error, f func() error) {
	err := f()
	if err == nil {
		c.Fatalf("expected error %q, got none", expected)
	}
	if !errors.Is(err, expected) && err.Error() != expected.Error() {
		c.Fatalf("expected error %q, got %q", expected, err)
	}
}

type equalConfig struct {
	cmp     func(expected, actual interface{}) bool
	printer func(v interface{}) string
	differ  func(expected, actual interface{}) string
	msg     string
}

// EqualOption adjusts how AssertEqual compares values and renders
// mismatches.
type EqualOption func(*equalConfig)

// Comparator replaces the default deep-equality comparison.
func Comparator(cmp func(expected, actual interface{}) bool) EqualOption {
	return func(cfg *equalConfig) { cfg.cmp = cmp }
}

// Printer supplies a value renderer used to show both values on
// mismatch.
func Printer(p func(v interface{}) string) EqualOption {
	return func(cfg *equalConfig) { cfg.printer = p }
}

// Differ supplies a renderer for the difference between the two
// values. It takes precedence over Printer.
func Differ(d func(expected, actual interface{}) string) EqualOption {
	return func(cfg *equalConfig) { cfg.differ = d }
}

// Message prefixes the failure diagnostic with caller context.
func Message(msg string) EqualOption {
	return func(cfg *equalConfig) { cfg.msg = msg }
}

// PrettyDiff renders mismatches as a line diff of the two values.
var PrettyDiff = Differ(func(expected, actual interface{}) string {
	return pretty.Compare(actual, expected)
})

// AssertEqual fails the test unless expected and actual compare equal.
// The default comparison is reflect.DeepEqual; Comparator overrides
// it. On mismatch the diagnostic uses the first available tier: a
// Differ rendering, a Printer rendering of both values, or a generic
// notice.
func (c *H) AssertEqual(expected, actual interface{}, opts ...EqualOption) {
	cfg := equalConfig{cmp: reflect.DeepEqual}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.cmp(expected, actual) {
		return
	}

	var msg string
	switch {
	case cfg.differ != nil:
		msg = "not equal:\n" + cfg.differ(expected, actual)
	case cfg.printer != nil:
		msg = fmt.Sprintf("expected: %s\nactual: %s", cfg.printer(expected), cfg.printer(actual))
	default:
		msg = "values not equal"
	}
	if cfg.msg != "" {
		msg = cfg.msg + "\n" + msg
	}
	c.Fatal(msg)
}
