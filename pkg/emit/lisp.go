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

	"github.com/scicomp/go-adrules/pkg/ir"
	"github.com/scicomp/go-adrules/pkg/rules"
	"github.com/scicomp/go-adrules/pkg/sexp"
)

// WriteLisp writes each of a given set of rules as an S-expression on its own
// line.
func WriteLisp(w io.Writer, mode rules.Mode, rs []rules.Rule) error {
	if _, err := fmt.Fprintf(w, ";; generated by adrules (mode %s)\n", mode); err != nil {
		return err
	}
	//
	for _, r := range rs {
		if _, err := fmt.Fprintln(w, LispRule(r).String()); err != nil {
			return err
		}
	}
	//
	return nil
}

// LispRule converts a rule into an S-expression of the form
// (rule name mode (body ...)).
func LispRule(r rules.Rule) sexp.SExp {
	return sexp.NewList(sexp.NewSymbol("rule"), sexp.NewSymbol(string(r.Descriptor().Name)),
		sexp.NewSymbol(r.Mode().String()), ir.LispBody(r.Body()))
}
