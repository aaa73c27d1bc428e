// Copyright 2026 The mdinline Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package main is the entry point for the mdinline debug CLI.
// It parses one inline run and prints the resulting tree.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/spanwise/mdinline"
	"github.com/spanwise/mdinline/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		logging.Default().Error("command failed", "error", err)
		return 1
	}
	return 0
}

func newRootCommand() *cobra.Command {
	var debug bool
	var strikethrough bool
	var extendedAutolinks bool

	rootCmd := &cobra.Command{
		Use:   "mdinline [file]",
		Short: "Parse one inline run of GitHub-Flavored Markdown",
		Long: `mdinline parses a single inline run (one block's text content,
soft line breaks preserved) and prints the concrete syntax tree as an
s-expression. With no file argument it reads standard input.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetDebug()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readInput(args)
			if err != nil {
				return err
			}
			p := &mdinline.Parser{
				Strikethrough:     strikethrough,
				ExtendedAutolinks: extendedAutolinks,
			}
			logging.Default().Debug("parsing inline run", "bytes", len(source))
			root := p.Parse(source)
			fmt.Fprintln(cmd.OutOrStdout(), mdinline.Dump(root.Source, root.AsInline()))
			return nil
		},
	}

	rootCmd.Flags().BoolVar(&strikethrough, "strikethrough", true, "enable ~~strikethrough~~")
	rootCmd.Flags().BoolVar(&extendedAutolinks, "extended-autolinks", false, "recognize bare URLs and emails")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	return rootCmd
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 1 {
		source, err := os.ReadFile(args[0])
		if err != nil {
			return nil, err
		}
		return trimFinalLineEnding(source), nil
	}
	if isatty.IsTerminal(os.Stdin.Fd()) {
		return nil, fmt.Errorf("no input file and standard input is a terminal")
	}
	source, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, err
	}
	return trimFinalLineEnding(source), nil
}

// trimFinalLineEnding removes one trailing line ending.
// A block's inline run does not include the newline that ends it.
func trimFinalLineEnding(source []byte) []byte {
	if n := len(source); n > 0 && source[n-1] == '\n' {
		source = source[:n-1]
		if n := len(source); n > 0 && source[n-1] == '\r' {
			source = source[:n-1]
		}
	}
	return source
}
