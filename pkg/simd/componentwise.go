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
package simd

import (
	"fmt"

	"github.com/scicomp/go-adrules/pkg/ir"
)

// Body computes the outputs of a single lane from its inputs.  Every input and
// output is a 64-bit integer; for lanes of 4 bytes, the upper half of each
// input is zero and the upper half of each output is discarded.
type Body func(b *ir.Builder, lane uint, inputs []ir.Expr) []ir.Expr

// Decomposition describes how to apply a lane body to every lane of a set of
// inputs.
type Decomposition struct {
	// Size in bytes of each lane.
	Width uint
	// Number of lanes.
	Lanes uint
	// Inputs to decompose, each holding the same number of lanes.
	Inputs []*ir.Var
	// Names of the outputs, used to name each lane's results.
	Outputs []string
	// Body applied to lane 0.
	Lowest Body
	// Body applied to all other lanes.  If nil, the lowest body is used.
	NonLowest Body
}

// Componentwise applies the lane bodies of a decomposition to every lane, and
// assembles each output from its lanes.  The assembled outputs are integers
// (or vectors) of the total size of the lanes.
func Componentwise(b *ir.Builder, d Decomposition) []ir.Expr {
	checkLayout(d.Width, d.Lanes)
	//
	var (
		parts     = make([][]ir.Expr, len(d.Outputs))
		nonLowest = d.NonLowest
	)
	//
	if nonLowest == nil {
		nonLowest = d.Lowest
	}
	//
	for k := uint(0); k < d.Lanes; k++ {
		inputs := make([]ir.Expr, len(d.Inputs))
		//
		for i, v := range d.Inputs {
			part := Component(v, d.Width, d.Lanes, k)
			//
			if d.Width == 4 {
				part = Widen(part)
			}
			//
			if part == ir.Expr(v) {
				inputs[i] = v
			} else {
				inputs[i] = b.Let(fmt.Sprintf("%s_part%d", v.Name, k), part)
			}
		}
		//
		body := d.Lowest
		if k > 0 {
			body = nonLowest
		}
		//
		outputs := body(b, k, inputs)
		//
		if len(outputs) != len(d.Outputs) {
			panic(fmt.Sprintf("lane body produced %d outputs, expected %d", len(outputs), len(d.Outputs)))
		}
		//
		for i, out := range outputs {
			if d.Width == 4 {
				out = Narrow(out)
			}
			//
			parts[i] = append(parts[i], b.Let(fmt.Sprintf("%s_part%d", d.Outputs[i], k), out))
		}
	}
	//
	results := make([]ir.Expr, len(d.Outputs))
	//
	for i := range results {
		results[i] = Assemble(parts[i], d.Width)
	}
	//
	return results
}
