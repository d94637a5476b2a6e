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
	"fmt"
	"os"
	"strings"

	"github.com/scicomp/go-adrules/pkg/catalog"
	"github.com/scicomp/go-adrules/pkg/emit"
	"github.com/scicomp/go-adrules/pkg/ir"
	"github.com/scicomp/go-adrules/pkg/rules"
	"github.com/scicomp/go-adrules/pkg/vex"
	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"
)

var showCmd = &cobra.Command{
	Use:   "show [flags] operation",
	Short: "show the rule of a single operation.",
	Long:  `Show the rule generated for a single operation, either as C code, as an S-expression or as a tree.`,
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)
		//
		if len(args) != 1 {
			fmt.Println("expected exactly one operation")
			os.Exit(2)
		}
		//
		var (
			c     = loadCatalog(cmd)
			mode  = getMode(cmd)
			style = "c"
		)
		//
		if GetFlag(cmd, "tree") {
			style = "tree"
		} else if GetFlag(cmd, "lisp") {
			style = "lisp"
		}
		//
		text, err := showRule(c, mode, args[0], style)
		exitOnError(err)
		fmt.Println(text)
	},
}

// Render the rule of a given operation in a given style (c, lisp or tree).
func showRule(c *catalog.Catalog, mode rules.Mode, op string, style string) (string, error) {
	d, err := c.Lookup(vex.Op(op))
	if err != nil {
		return "", err
	}
	//
	r, err := rules.NewEngine(mode).Rule(d)
	if err != nil {
		return "", err
	}
	//
	switch style {
	case "tree":
		return ruleTree(r).String(), nil
	case "lisp":
		return emit.LispRule(r).String(), nil
	default:
		return emit.CCase(r), nil
	}
}

// Render a rule as a tree of its statements and their expressions.
func ruleTree(r rules.Rule) treeprint.Tree {
	var (
		body = r.Body()
		tree = treeprint.NewWithRoot(fmt.Sprintf("%s (%s)", r.Descriptor().Name, r.Mode()))
	)
	//
	if len(body.Requires) > 0 {
		tree.AddNode("requires " + names(body.Requires))
	}
	//
	for _, stmt := range body.Stmts {
		switch s := stmt.(type) {
		case *ir.Let:
			branch := tree.AddBranch(fmt.Sprintf("let %s : %s", s.Var.Name, s.Var.Ty))
			addExpr(branch, s.Value)
		case *ir.Dirty:
			label := "dirty " + s.Helper
			if len(s.Results) > 0 {
				label += " -> " + names(s.Results)
			}
			//
			branch := tree.AddBranch(label)
			//
			for _, arg := range s.Args {
				addExpr(branch, arg)
			}
		}
	}
	//
	tree.AddNode("results " + names(body.Results))
	//
	return tree
}

func addExpr(tree treeprint.Tree, e ir.Expr) {
	switch e := e.(type) {
	case *ir.Var:
		tree.AddNode(e.Name)
	case *ir.Const:
		tree.AddNode(ir.Lisp(e).String())
	case *ir.Apply:
		branch := tree.AddBranch(e.Op.String())
		//
		for _, arg := range e.Args {
			addExpr(branch, arg)
		}
	case *ir.ITE:
		branch := tree.AddBranch("ite")
		addExpr(branch, e.Cond)
		addExpr(branch, e.Then)
		addExpr(branch, e.Else)
	case *ir.Call:
		branch := tree.AddBranch("call " + e.Helper)
		//
		for _, arg := range e.Args {
			addExpr(branch, arg)
		}
	}
}

func names(vars []*ir.Var) string {
	ns := make([]string, len(vars))
	//
	for i, v := range vars {
		ns[i] = v.Name
	}
	//
	return strings.Join(ns, " ")
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringP("mode", "m", "dot", "mode of rule (dot, dot-dqd, bar or trick).")
	showCmd.Flags().Bool("tree", false, "show the rule as a tree.")
	showCmd.Flags().Bool("lisp", false, "show the rule as an S-expression.")
}
