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

// gantry is a demonstration test binary built on the harness package.
// It runs the engine's self-check suite, which doubles as a usage
// example: declare a tree of tests, hand it to a Suite, and exit
// nonzero unless everything passes.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gantry/cli"
	"gantry/conf"
	"gantry/harness"
	"gantry/harness/reporters"
)

var (
	root = &cobra.Command{
		Use:   "gantry [command]",
		Short: "Scaffolding for test suites outside 'go test'",
	}

	cmdRun = &cobra.Command{
		Use:          "run [filter]",
		Short:        "Run the self-check suite",
		Long:         "Run the self-check suite, optionally limited to tests whose\nqualified path matches the slash-separated filter.",
		RunE:         runRun,
		SilenceUsage: true,
	}

	cmdList = &cobra.Command{
		Use:   "list",
		Short: "List qualified test paths",
		Run:   runList,
	}

	outputDir      string
	checkIsolation bool
	jsonReport     bool
	confFile       string
	confSets       []string
)

func init() {
	cmdRun.Flags().StringVar(&outputDir, "output-dir", "_gantry_temp",
		"directory for the TAP log and reports")
	cmdRun.Flags().BoolVar(&checkIsolation, "check-isolation", true,
		"fail tests that leak working directory or environment changes")
	cmdRun.Flags().BoolVar(&jsonReport, "json", false,
		"write a JSON report under the output directory")
	cmdRun.Flags().StringVar(&confFile, "conf", "",
		"YAML file of setting overrides")
	cmdRun.Flags().StringArrayVar(&confSets, "set", nil,
		"override a setting, as key=value (repeatable)")
	root.AddCommand(cmdRun)
	root.AddCommand(cmdList)
}

func main() {
	cli.Execute(root)
}

func runRun(cmd *cobra.Command, args []string) error {
	match := ""
	if len(args) > 0 {
		match = args[0]
	}

	settings := defaultSettings()
	if confFile != "" {
		if err := settings.LoadFile(confFile); err != nil {
			return err
		}
	}
	for _, arg := range confSets {
		if err := settings.SetArg(arg); err != nil {
			return err
		}
	}

	opts := harness.Options{
		OutputDir:      outputDir,
		Verbose:        cli.Verbose(),
		Match:          match,
		CheckIsolation: checkIsolation,
		Conf:           settings,
	}
	if jsonReport {
		opts.Reporters = reporters.Reporters{
			reporters.NewJSONReporter("report.json"),
		}
	}

	return harness.NewSuite(opts, selfCheckTests()...).Run()
}

func runList(cmd *cobra.Command, args []string) {
	harness.Walk(selfCheckTests(), func(path string, leaf harness.Leaf) {
		fmt.Fprintln(os.Stdout, path)
	})
}

func defaultSettings() *conf.Conf {
	c := conf.New()
	c.DefineString("shell", "/bin/sh")
	c.DefineInt("payload-lines", 4)
	c.DefineBool("exercise-commands", true)
	return c
}
