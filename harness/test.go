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

// TestFunc is a single test function.
type TestFunc func(*H)

// Test is a node in the test tree: either a Leaf holding an executable
// test function or a Group of sub-tests. Trees are immutable once
// constructed and have no side effects until run by a Suite.
type Test interface {
	label() string
}

// Leaf is a single executable test case.
type Leaf struct {
	Label string
	Run   TestFunc
}

func (l Leaf) label() string { return l.Label }

// Group is a named ordered collection of sub-tests. Groups nest to
// arbitrary depth.
type Group struct {
	Label string
	Tests []Test
}

func (g Group) label() string { return g.Label }

// TestCase labels a test function as a Leaf.
func TestCase(label string, fn TestFunc) Test {
	return Leaf{Label: label, Run: fn}
}

// TestList labels an ordered list of tests as a Group.
func TestList(label string, tests ...Test) Test {
	return Group{Label: label, Tests: tests}
}

// Relabel returns a copy of t carrying the given label.
func Relabel(label string, t Test) Test {
	switch v := t.(type) {
	case Leaf:
		v.Label = label
		return v
	case Group:
		v.Label = label
		return v
	}
	return t
}

// Walk visits every leaf under tests in declaration order, depth
// first, passing each leaf's slash-qualified path. Labels are taken
// as declared; duplicate disambiguation only happens at run time.
func Walk(tests []Test, visit func(path string, leaf Leaf)) {
	var walk func(parent string, t Test)
	walk = func(parent string, t Test) {
		path := t.label()
		if parent != "" {
			path = parent + "/" + path
		}
		switch v := t.(type) {
		case Leaf:
			visit(path, v)
		case Group:
			for _, sub := range v.Tests {
				walk(path, sub)
			}
		}
	}
	for _, t := range tests {
		walk("", t)
	}
}
