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

	"github.com/scicomp/go-adrules/pkg/catalog"
	"github.com/scicomp/go-adrules/pkg/rules"
	"github.com/scicomp/go-adrules/pkg/util"
	"github.com/scicomp/go-adrules/pkg/vex"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// GetFlag gets an expected flag, or exits if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetString gets an expected string flag, or exits if an error arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetUint gets an expected unsigned integer flag, or exits if an error arises.
func GetUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetStringArray gets an expected string array flag, or exits if an error
// arises.
func GetStringArray(cmd *cobra.Command, flag string) []string {
	r, err := cmd.Flags().GetStringArray(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Configure the log level from the verbose flag.
func configureLogging(cmd *cobra.Command) {
	if GetFlag(cmd, "verbose") {
		log.SetLevel(log.DebugLevel)
	}
}

// Build the catalog of supported operations, restricted to what the host
// processor executes natively if requested.  Exits on an inconsistent
// catalog.
func loadCatalog(cmd *cobra.Command) *catalog.Catalog {
	var (
		stats = util.NewPerfStats()
		isa   = vex.Default()
	)
	//
	if GetFlag(cmd, "host") {
		isa = vex.Host(isa)
	}
	//
	c, err := catalog.Build(isa)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	//
	stats.Log("Building catalog")
	//
	return c
}

// Parse the mode flag, or exit if it is unknown.
func getMode(cmd *cobra.Command) rules.Mode {
	mode, err := rules.ParseMode(GetString(cmd, "mode"))
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return mode
}

// Report an error and exit.
func exitOnError(err error) {
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
