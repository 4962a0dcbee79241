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
	"strings"
	"testing"

	"gantry/harness/testresult"
)

func TestIsolationCleanTestPasses(t *testing.T) {
	_, _, _, err := runSuite(Options{CheckIsolation: true},
		TestCase("tidy", func(h *H) {
			h.Log("touches nothing")
		}),
	)
	if err != nil {
		t.Errorf("run failed: %v", err)
	}
}

func TestIsolationRestoredStatePasses(t *testing.T) {
	_, _, _, err := runSuite(Options{CheckIsolation: true},
		TestCase("restores", func(h *H) {
			os.Setenv("GANTRY_ISOLATION_PROBE", "set")
			h.Teardown(func(h *H) error {
				return os.Unsetenv("GANTRY_ISOLATION_PROBE")
			})
		}),
	)
	if err != nil {
		t.Errorf("restored environment flagged as a leak: %v", err)
	}
}

func TestIsolationEnvLeakFails(t *testing.T) {
	defer os.Unsetenv("GANTRY_ISOLATION_LEAK")
	s, _, _, _ := runSuite(Options{CheckIsolation: true},
		TestCase("leaks-env", func(h *H) {
			os.Setenv("GANTRY_ISOLATION_LEAK", "oops")
		}),
	)
	o := s.Outcomes()[0]
	if o.Result != testresult.Fail {
		t.Fatalf("result = %s, want FAIL", o.Result)
	}
	if !strings.Contains(o.Output, "GANTRY_ISOLATION_LEAK=oops") {
		t.Errorf("failure does not name the leaked entry:\n%s", o.Output)
	}
}

func TestIsolationChdirLeakFails(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	s, _, _, _ := runSuite(Options{CheckIsolation: true},
		TestCase("leaks-cwd", func(h *H) {
			if err := os.Chdir(os.TempDir()); err != nil {
				h.Fatal(err)
			}
		}),
	)
	o := s.Outcomes()[0]
	if o.Result != testresult.Fail {
		t.Fatalf("result = %s, want FAIL", o.Result)
	}
	if !strings.Contains(o.Output, "working directory") {
		t.Errorf("failure does not mention the working directory:\n%s", o.Output)
	}
}

func TestIsolationBothLeaksRecorded(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)
	defer os.Unsetenv("GANTRY_ISOLATION_BOTH")

	s, _, _, _ := runSuite(Options{CheckIsolation: true},
		TestCase("leaks-both", func(h *H) {
			os.Setenv("GANTRY_ISOLATION_BOTH", "1")
			if err := os.Chdir(os.TempDir()); err != nil {
				h.Fatal(err)
			}
		}),
	)
	// One leak must not mask the other.
	o := s.Outcomes()[0]
	if !strings.Contains(o.Output, "working directory") || !strings.Contains(o.Output, "GANTRY_ISOLATION_BOTH") {
		t.Errorf("expected both leaks recorded:\n%s", o.Output)
	}
}

func TestSnapshotSetSemantics(t *testing.T) {
	a := EnvSnapshot{Dir: "/work", Env: map[string]struct{}{"A=1": {}, "B=2": {}}}
	b := EnvSnapshot{Dir: "/work", Env: map[string]struct{}{"B=2": {}, "A=1": {}}}
	if got := diffEnv(a.Env, b.Env); len(got) != 0 {
		t.Errorf("reordered environments differ: %v", got)
	}
	c := EnvSnapshot{Dir: "/work", Env: map[string]struct{}{"A=1": {}}}
	if got := diffEnv(a.Env, c.Env); len(got) != 1 || got[0] != "B=2" {
		t.Errorf("diffEnv = %v, want [B=2]", got)
	}
}
