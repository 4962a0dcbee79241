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

// Package conf is a small typed settings store for test runs. Settings
// are declared with defaults, then overridden from "key=value" command
// line arguments or a YAML file, and read back by tests through their
// test context.
package conf

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/coreos/pkg/capnslog"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var plog = capnslog.NewPackageLogger("gantry", "conf")

// Conf holds named string, int and bool settings.
type Conf struct {
	mu      sync.RWMutex
	strings map[string]string
	ints    map[string]int
	bools   map[string]bool
}

func New() *Conf {
	return &Conf{
		strings: make(map[string]string),
		ints:    make(map[string]int),
		bools:   make(map[string]bool),
	}
}

// DefineString declares a string setting with a default value.
// Redefining a name replaces its previous value and kind.
func (c *Conf) DefineString(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forget(name)
	c.strings[name] = value
}

// DefineInt declares an int setting with a default value.
func (c *Conf) DefineInt(name string, value int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forget(name)
	c.ints[name] = value
}

// DefineBool declares a bool setting with a default value.
func (c *Conf) DefineBool(name string, value bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forget(name)
	c.bools[name] = value
}

// forget drops name from all kinds. Callers must hold mu.
func (c *Conf) forget(name string) {
	delete(c.strings, name)
	delete(c.ints, name)
	delete(c.bools, name)
}

// String returns the string setting name.
func (c *Conf) String(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.strings[name]
	return v, ok
}

// Int returns the int setting name.
func (c *Conf) Int(name string) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.ints[name]
	return v, ok
}

// Bool returns the bool setting name.
func (c *Conf) Bool(name string) (bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.bools[name]
	return v, ok
}

// Set overrides a previously declared setting, parsing value according
// to the setting's declared kind. Unknown names are an error.
func (c *Conf) Set(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.strings[name]; ok {
		c.strings[name] = value
		return nil
	}
	if _, ok := c.ints[name]; ok {
		i, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrapf(err, "conf: setting %q", name)
		}
		c.ints[name] = i
		return nil
	}
	if _, ok := c.bools[name]; ok {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Wrapf(err, "conf: setting %q", name)
		}
		c.bools[name] = b
		return nil
	}
	return errors.Errorf("conf: unknown setting %q", name)
}

// SetArg applies a single "key=value" override as given on the command
// line.
func (c *Conf) SetArg(arg string) error {
	name, value, ok := strings.Cut(arg, "=")
	if !ok {
		return errors.Errorf("conf: malformed override %q, want key=value", arg)
	}
	return c.Set(name, value)
}

// LoadFile applies overrides from a YAML file of scalar key/value
// pairs. Values must match the declared kind of their setting.
func (c *Conf) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return errors.Wrapf(err, "conf: parsing %s", path)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for name, value := range raw {
		if err := c.apply(name, value); err != nil {
			return errors.Wrapf(err, "conf: %s", path)
		}
		plog.Debugf("Loaded setting %q from %s", name, path)
	}
	return nil
}

// apply stores a decoded YAML value into the matching kind. Callers
// must hold mu.
func (c *Conf) apply(name string, value interface{}) error {
	if _, ok := c.strings[name]; ok {
		s, ok := value.(string)
		if !ok {
			return errors.Errorf("setting %q wants a string, got %T", name, value)
		}
		c.strings[name] = s
		return nil
	}
	if _, ok := c.ints[name]; ok {
		i, ok := value.(int)
		if !ok {
			return errors.Errorf("setting %q wants an int, got %T", name, value)
		}
		c.ints[name] = i
		return nil
	}
	if _, ok := c.bools[name]; ok {
		b, ok := value.(bool)
		if !ok {
			return errors.Errorf("setting %q wants a bool, got %T", name, value)
		}
		c.bools[name] = b
		return nil
	}
	return errors.Errorf("unknown setting %q", name)
}
