// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/scicomp/go-adrules/pkg/catalog"
	"github.com/scicomp/go-adrules/pkg/rules"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl [flags]",
	Short: "interactively inspect and evaluate rules.",
	Long:  `Start an interactive loop over show, tree, eval and list commands.  Type "help" for details.`,
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)
		//
		session := &replSession{catalog: loadCatalog(cmd), mode: getMode(cmd)}
		//
		rl, err := readline.NewEx(&readline.Config{
			Prompt:          "adrules> ",
			HistoryFile:     filepath.Join(os.TempDir(), ".adrules_history"),
			InterruptPrompt: "^C",
			EOFPrompt:       "exit",
		})
		exitOnError(err)
		//
		defer rl.Close()
		//
		for {
			line, err := rl.Readline()
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			} else if err != nil {
				return
			}
			//
			done, err := session.execute(line, os.Stdout)
			if err != nil {
				fmt.Printf("error: %s\n", err)
			} else if done {
				return
			}
		}
	},
}

const replHelp = `commands:
  mode [MODE]                     show or set the current mode (dot, dot-dqd, bar, trick)
  disable [on|off]                show or set whether recording is disabled during eval
  list [FAMILY]                   list operations, optionally of one family
  show OP [MODE]                  print the C case of a rule
  lisp OP [MODE]                  print a rule as an s-expression
  tree OP [MODE]                  print a rule as a tree
  eval OP ARG... [: SHADOW...]    evaluate a rule in the current mode
  quit                            leave`

// State of an interactive session.
type replSession struct {
	catalog  *catalog.Catalog
	mode     rules.Mode
	disabled bool
}

// Execute a single line, writing its output.  This returns true when the
// session should end.
func (p *replSession) execute(line string, w io.Writer) (bool, error) {
	fields := strings.Fields(line)
	//
	if len(fields) == 0 {
		return false, nil
	}
	//
	switch fields[0] {
	case "quit", "exit":
		return true, nil
	case "help":
		return false, writeLines(w, []string{replHelp})
	case "mode":
		if len(fields) > 1 {
			mode, err := rules.ParseMode(fields[1])
			if err != nil {
				return false, err
			}
			//
			p.mode = mode
		}
		//
		return false, writeLines(w, []string{p.mode.String()})
	case "disable":
		if len(fields) > 1 {
			switch fields[1] {
			case "on":
				p.disabled = true
			case "off":
				p.disabled = false
			default:
				return false, fmt.Errorf("expected on or off, found \"%s\"", fields[1])
			}
		}
		//
		return false, writeLines(w, []string{fmt.Sprintf("recording disabled: %t", p.disabled)})
	case "list":
		descriptors := p.catalog.Descriptors()
		//
		if len(fields) > 1 {
			f, ok := catalog.ParseFamily(fields[1])
			if !ok {
				return false, fmt.Errorf("unknown family \"%s\"", fields[1])
			}
			//
			descriptors = p.catalog.Family(f)
		}
		//
		return false, listTable(descriptors).Print(w)
	case "show", "lisp", "tree":
		return false, p.show(fields, w)
	case "eval":
		if len(fields) < 2 {
			return false, errors.New("expected an operation")
		}
		//
		args, shadows := splitShadows(fields[2:])
		//
		return false, evaluate(p.catalog, p.mode, fields[1], args, shadows, p.disabled, w)
	}
	//
	return false, fmt.Errorf("unknown command \"%s\" (try help)", fields[0])
}

func (p *replSession) show(fields []string, w io.Writer) error {
	var (
		mode  = p.mode
		style = fields[0]
	)
	//
	switch len(fields) {
	case 3:
		m, err := rules.ParseMode(fields[2])
		if err != nil {
			return err
		}
		//
		mode = m
	case 2:
	default:
		return fmt.Errorf("usage: %s OP [MODE]", fields[0])
	}
	//
	if style == "show" {
		style = "c"
	}
	//
	text, err := showRule(p.catalog, mode, fields[1], style)
	if err != nil {
		return err
	}
	//
	return writeLines(w, []string{text})
}

// Split operands from shadows, which follow a lone colon.
func splitShadows(fields []string) ([]string, []string) {
	for i, f := range fields {
		if f == ":" {
			return fields[:i], fields[i+1:]
		}
	}
	//
	return fields, nil
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().StringP("mode", "m", "dot", "initial mode (dot, dot-dqd, bar or trick).")
}
