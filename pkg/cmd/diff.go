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
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

var diffCmd = &cobra.Command{
	Use:   "diff [flags] old.json new.json",
	Short: "compare two catalog snapshots.",
	Long:  `Compare two catalog snapshots, as produced by "list --json", reporting which operations differ.`,
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)
		//
		if len(args) != 2 {
			fmt.Println("expected two snapshot files")
			os.Exit(2)
		}
		//
		before, err := os.ReadFile(args[0])
		exitOnError(err)
		after, err := os.ReadFile(args[1])
		exitOnError(err)
		//
		text, err := diffSnapshots(before, after, GetFlag(cmd, "color"))
		exitOnError(err)
		//
		if text == "" {
			fmt.Println("snapshots are identical")
		} else {
			fmt.Print(text)
			os.Exit(3)
		}
	},
}

// Compare two snapshots, returning the empty string if they match.
func diffSnapshots(before []byte, after []byte, coloring bool) (string, error) {
	delta, err := gojsondiff.New().Compare(before, after)
	if err != nil {
		return "", err
	} else if !delta.Modified() {
		return "", nil
	}
	// Unmarshal for the formatter
	var left map[string]any
	//
	if err := json.Unmarshal(before, &left); err != nil {
		return "", err
	}
	//
	config := formatter.AsciiFormatterConfig{ShowArrayIndex: true, Coloring: coloring}
	//
	return formatter.NewAsciiFormatter(left, config).Format(delta)
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().Bool("color", false, "highlight differences using ANSI colours.")
}
