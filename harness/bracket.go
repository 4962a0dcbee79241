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
	"io/fs"
	"os"

	"github.com/pkg/errors"
)

// Bracket acquires a resource with setup and schedules teardown to
// release it when the owning test completes. Teardowns fire in reverse
// acquisition order, so nested resources release cleanly. If setup
// fails, the test fails fatally and no teardown is registered for the
// failed acquisition.
func Bracket[T any](h *H, setup func(*H) (T, error), teardown func(T, *H) error) T {
	res, err := setup(h)
	if err != nil {
		h.Fatalf("bracket setup: %v", err)
	}
	h.Teardown(func(h *H) error {
		return teardown(res, h)
	})
	return res
}

// TempFile creates a uniquely-named temporary file through the bracket
// mechanism and returns its path and open handle. Teardown closes the
// handle and deletes the file, tolerating a handle the test already
// closed and a file it already removed.
func (c *H) TempFile(prefix, suffix string) (string, *os.File) {
	f := Bracket(c, func(h *H) (*os.File, error) {
		f, err := os.CreateTemp("", prefix+"*"+suffix)
		if err != nil {
			return nil, err
		}
		h.Logf("created temp file %s", f.Name())
		return f, nil
	}, func(f *os.File, h *H) error {
		if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			return err
		}
		if err := os.Remove(f.Name()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	})
	return f.Name(), f
}

// TempDir creates a uniquely-named empty temporary directory through
// the bracket mechanism and returns its path. Teardown removes the
// directory recursively, tolerating prior manual deletion.
func (c *H) TempDir(prefix, suffix string) string {
	return Bracket(c, func(h *H) (string, error) {
		dir, err := os.MkdirTemp("", prefix+"*"+suffix)
		if err != nil {
			return "", err
		}
		h.Logf("created temp dir %s", dir)
		return dir, nil
	}, func(dir string, h *H) error {
		return os.RemoveAll(dir)
	})
}
