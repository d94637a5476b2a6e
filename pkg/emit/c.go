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
package emit

import (
	"fmt"
	"io"
	"strings"

	"github.com/scicomp/go-adrules/pkg/ir"
	"github.com/scicomp/go-adrules/pkg/rules"
)

const cWarning = `// ----------------------------------------------------
// WARNING: This file has been generated by adrules
// (mode %s). Do not manually edit it.
// ----------------------------------------------------
`

// WriteC writes the dispatch cases of a given set of rules as C code.
func WriteC(w io.Writer, mode rules.Mode, rs []rules.Rule) error {
	if _, err := fmt.Fprintf(w, cWarning, mode); err != nil {
		return err
	}
	//
	for _, r := range rs {
		if _, err := fmt.Fprintf(w, "\n%s\n", CCase(r)); err != nil {
			return err
		}
	}
	//
	return nil
}

// CCase renders a single rule as a "case Iop_...: { ... }" block.  The block
// returns NULL when any required shadow is missing, and otherwise the rule's
// result (or a vector of its results).
func CCase(r rules.Rule) string {
	var (
		builder strings.Builder
		body    = r.Body()
	)
	//
	builder.WriteString(fmt.Sprintf("case Iop_%s: {\n", r.Descriptor().Name))
	//
	for _, v := range body.Requires {
		builder.WriteString(fmt.Sprintf("  if(!%s) return NULL;\n", v.Name))
	}
	//
	for _, stmt := range body.Stmts {
		builder.WriteString(ir.CStmt(stmt, "  "))
	}
	//
	builder.WriteString(fmt.Sprintf("  return %s;\n}", cResults(body.Results)))
	//
	return builder.String()
}

func cResults(results []*ir.Var) string {
	if len(results) == 1 {
		return results[0].Name
	}
	//
	names := make([]string, len(results))
	//
	for i, v := range results {
		names[i] = v.Name
	}
	//
	return fmt.Sprintf("mkIRExprVec_%d(%s)", len(results), strings.Join(names, ", "))
}
