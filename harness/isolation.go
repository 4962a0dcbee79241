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
	"os"
	"sort"
	"strings"
)

// EnvSnapshot is an immutable capture of the process working directory
// and environment at a point in time. Environment entries compare as a
// set: order is irrelevant and duplicates collapse.
type EnvSnapshot struct {
	Dir string
	Env map[string]struct{}
}

// Snapshot captures the current working directory and environment.
func Snapshot() EnvSnapshot {
	dir, err := os.Getwd()
	if err != nil {
		plog.Errorf("Getwd failed: %v", err)
	}
	env := make(map[string]struct{})
	for _, entry := range os.Environ() {
		env[entry] = struct{}{}
	}
	return EnvSnapshot{Dir: dir, Env: env}
}

// CheckIsolation takes a fresh snapshot and compares it against
// before, recording a non-fatal failure for a changed working
// directory and another for changed environment entries. Tests run
// sequentially in one process, so state one test leaks is visible to
// the next; this check catches tests that mutate shared process state
// without restoring it.
func (c *H) CheckIsolation(before EnvSnapshot) {
	after := Snapshot()

	c.NonFatal(func(h *H) {
		if before.Dir != after.Dir {
			h.Fatalf("test changed working directory: %q, was %q", after.Dir, before.Dir)
		}
	})
	c.NonFatal(func(h *H) {
		removed := diffEnv(before.Env, after.Env)
		added := diffEnv(after.Env, before.Env)
		if len(removed) == 0 && len(added) == 0 {
			return
		}
		var b strings.Builder
		b.WriteString("test changed environment:")
		for _, entry := range removed {
			b.WriteString("\n\t-" + entry)
		}
		for _, entry := range added {
			b.WriteString("\n\t+" + entry)
		}
		h.Fatal(b.String())
	})
}

// diffEnv returns the entries in a but not in b, sorted.
func diffEnv(a, b map[string]struct{}) []string {
	var missing []string
	for entry := range a {
		if _, ok := b[entry]; !ok {
			missing = append(missing, entry)
		}
	}
	sort.Strings(missing)
	return missing
}
