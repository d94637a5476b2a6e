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
	"io"
	"os"

	"github.com/scicomp/go-adrules/pkg/catalog"
	"github.com/scicomp/go-adrules/pkg/util"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var listCmd = &cobra.Command{
	Use:   "list [flags]",
	Short: "list the supported operations.",
	Long:  `List every operation for which rules are generated, along with its shape.`,
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)
		//
		var (
			c           = loadCatalog(cmd)
			family      = GetString(cmd, "family")
			descriptors = c.Descriptors()
		)
		//
		if family != "" {
			f, ok := catalog.ParseFamily(family)
			if !ok {
				fmt.Printf("unknown family \"%s\"\n", family)
				os.Exit(2)
			}
			//
			descriptors = c.Family(f)
		}
		//
		if GetFlag(cmd, "json") {
			exitOnError(writeSnapshot(os.Stdout, descriptors))
			return
		}
		//
		table := listTable(descriptors)
		// Fit the terminal, if there is one
		if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
			if width, _, err := term.GetSize(fd); err == nil {
				table.Fit(uint(width))
			}
		}
		//
		exitOnError(table.Print(os.Stdout))
	},
}

// Entry of a catalog snapshot.
type snapshotEntry struct {
	Family         string `json:"family"`
	Signature      string `json:"signature"`
	Arity          uint   `json:"arity"`
	DiffInputs     []uint `json:"diff_inputs"`
	Width          uint   `json:"width"`
	Lanes          uint   `json:"lanes"`
	LowestLaneOnly bool   `json:"lowest_lane_only"`
	Rounded        bool   `json:"rounded"`
}

// Snapshot of a set of descriptors, keyed by operation name, such that two
// snapshots can be compared.
func snapshot(ds []*catalog.Descriptor) map[string]snapshotEntry {
	entries := make(map[string]snapshotEntry, len(ds))
	//
	for _, d := range ds {
		entries[string(d.Name)] = snapshotEntry{
			Family:         d.Family.String(),
			Signature:      d.Signature.String(),
			Arity:          d.Arity,
			DiffInputs:     append([]uint{}, d.DiffInputs...),
			Width:          d.Width,
			Lanes:          d.Lanes,
			LowestLaneOnly: d.LowestLaneOnly,
			Rounded:        d.Rounded,
		}
	}
	//
	return entries
}

func writeSnapshot(w io.Writer, ds []*catalog.Descriptor) error {
	bytes, err := json.MarshalIndent(snapshot(ds), "", "  ")
	if err != nil {
		return err
	}
	//
	_, err = fmt.Fprintln(w, string(bytes))
	//
	return err
}

func listTable(ds []*catalog.Descriptor) *util.TablePrinter {
	table := util.NewTablePrinter(7, uint(len(ds)+1))
	table.SetRow(0, "name", "family", "arity", "diff", "width", "lanes", "llo")
	//
	for i, d := range ds {
		llo := ""
		if d.LowestLaneOnly {
			llo = "yes"
		}
		//
		table.SetRow(uint(i+1), string(d.Name), d.Family.String(), fmt.Sprintf("%d", d.Arity),
			fmt.Sprintf("%v", d.DiffInputs), fmt.Sprintf("%d", d.Width), fmt.Sprintf("%d", d.Lanes), llo)
	}
	//
	return table
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().String("family", "", "only list operations of a given family (e.g. \"add\").")
	listCmd.Flags().Bool("json", false, "print a snapshot in JSON format.")
}
