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

	"github.com/scicomp/go-adrules/pkg/emit"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [flags]",
	Short: "generate the rules of every supported operation.",
	Long: `Generate the rules of every supported operation for a given mode: forward ("dot"),
forward with difference quotient debugging ("dot-dqd"), reverse ("bar") or
taint ("trick").`,
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)
		//
		format, err := emit.ParseFormat(GetString(cmd, "format"))
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		var (
			c        = loadCatalog(cmd)
			filename = GetString(cmd, "output")
			config   = emit.Config{Mode: getMode(cmd), Format: format, Package: GetString(cmd, "package")}
			emitter  = emit.NewEmitter(c, config)
		)
		//
		log.Debugf("generating %s rules for %d operations", config.Mode, c.Len())
		//
		if filename != "" {
			exitOnError(emitter.EmitFile(filename))
		} else if format == emit.Go {
			fmt.Println("go output requires an output file (-o)")
			os.Exit(2)
		} else {
			exitOnError(emitter.Emit(os.Stdout))
		}
	},
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringP("mode", "m", "dot", "mode of rules (dot, dot-dqd, bar or trick).")
	generateCmd.Flags().StringP("format", "f", "c", "output format (c, lisp or go).")
	generateCmd.Flags().StringP("output", "o", "", "specify output file (default is standard output).")
	generateCmd.Flags().StringP("package", "p", "dispatch", "specify package for Go output.")
}
