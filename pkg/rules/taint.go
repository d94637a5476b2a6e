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
package rules

import (
	"slices"

	"github.com/scicomp/go-adrules/pkg/catalog"
	"github.com/scicomp/go-adrules/pkg/helper"
	"github.com/scicomp/go-adrules/pkg/ir"
	"github.com/scicomp/go-adrules/pkg/simd"
	"github.com/scicomp/go-adrules/pkg/vex"
)

type taintEngine struct{}

// Mode implementation for Engine interface.
func (p *taintEngine) Mode() Mode { return Taint }

// Rule implementation for Engine interface.  The result is active if any
// differentiable operand is active.  Results of floating-point arithmetic are
// never discrete, whilst those of conversions from integers (or rounding to
// integers) always are.  Operands in floating-point positions are checked for
// being both active and discrete before the flags of the result are
// computed.
func (p *taintEngine) Rule(d *catalog.Descriptor) (Rule, error) {
	var (
		ctx      = newContext(d, Taint)
		requires = d.DiffInputs
		result   = d.Result()
		lo, hi   ir.Expr
	)
	//
	switch {
	case d.Family.IsArithmetic():
		lo, hi = ctx.trickLanes()
	case d.Family.IsBitwise():
		lo, hi = ctx.barLanes(helper.TrickBitwise(ctx.bitwise()))
	case d.Family == catalog.Move:
		lo, hi = ctx.layer(0), ctx.layer(1)
	case d.Family == catalog.Shift:
		// Shifting by a non-zero amount produces discrete data
		amount := ctx.arg(2)
		lo = ir.Binop(d.Name, ctx.shadow(1, 0), amount)
		hi = ir.IfThenElse(ir.IsZero(amount), ir.Binop(d.Name, ctx.shadow(1, 1), amount), ir.AllOnes(result))
	case d.Family == catalog.Widen || d.Family == catalog.Narrow:
		n := d.Operand(1)
		ctx.warn(n)
		lo, hi = flag(result, ctx.shadow(n, 0)), ir.Zero(result)
	case d.Family == catalog.Convert:
		// The converted operand is always last
		requires = []uint{d.Arity}
		ctx.warn(d.Arity)
		lo, hi = flag(result, ctx.shadow(d.Arity, 0)), ir.AllOnes(result)
	default:
		return nil, unsupported(d, Taint)
	}
	//
	flagsLo := ctx.b.Let("flagsLo", lo)
	flagsHi := ctx.b.Let("flagsHi", hi)
	body := ctx.b.Build(ctx.requires(requires), flagsLo, flagsHi)
	//
	if err := checkResults(d, Taint, body); err != nil {
		return nil, err
	}
	//
	helpers := body.Helpers()
	suppress := !slices.Contains(helpers, helper.Warn4) && !slices.Contains(helpers, helper.Warn8)
	//
	return &TaintRule{base{d, body, suppress}}, nil
}

// Check the flags of a scalar operand, if it is floating-point.
func (p *context) warn(n uint) {
	ty := p.desc.Signature.Args[n-1]
	//
	if ty.IsFloat() {
		p.b.Effect(helper.Warn(ty.Size()), wordOf(p.shadow(n, 0)), wordOf(p.shadow(n, 1)))
	}
}

// Flags of every lane of a floating-point operation.
func (p *context) trickLanes() (ir.Expr, ir.Expr) {
	var (
		d      = p.desc
		inputs []*ir.Var
	)
	//
	for _, n := range d.DiffInputs {
		inputs = append(inputs, p.shadow(n, 0), p.shadow(n, 1))
	}
	//
	lowest := func(b *ir.Builder, _ uint, in []ir.Expr) []ir.Expr {
		var activity []ir.Expr
		//
		for j := 0; j < len(in); j += 2 {
			b.Effect(helper.Warn(d.Width), in[j], in[j+1])
			activity = append(activity, in[j])
		}
		//
		return []ir.Expr{flag(vex.I64, activity...), ir.U64(0)}
	}
	//
	var nonLowest simd.Body
	//
	if d.LowestLaneOnly {
		nonLowest = func(_ *ir.Builder, _ uint, in []ir.Expr) []ir.Expr {
			return []ir.Expr{in[0], in[1]}
		}
	}
	//
	parts := p.lanes(inputs, p.mode.Results(), lowest, nonLowest)
	//
	return simd.Reinterpret(parts[0], d.Result()), simd.Reinterpret(parts[1], d.Result())
}
