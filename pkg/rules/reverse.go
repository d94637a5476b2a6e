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
	"fmt"
	"math"

	"github.com/scicomp/go-adrules/pkg/catalog"
	"github.com/scicomp/go-adrules/pkg/helper"
	"github.com/scicomp/go-adrules/pkg/ir"
	"github.com/scicomp/go-adrules/pkg/simd"
	"github.com/scicomp/go-adrules/pkg/vex"
)

type reverseEngine struct{}

// Mode implementation for Engine interface.
func (p *reverseEngine) Mode() Mode { return Reverse }

// Rule implementation for Engine interface.  Each lane of a floating-point
// operation is recorded on the tape with the partial derivatives of its
// result with respect to each differentiable operand.  Operations with three
// differentiable operands are recorded as two chained nodes.
func (p *reverseEngine) Rule(d *catalog.Descriptor) (Rule, error) {
	var (
		ctx     = newContext(d, Reverse)
		indexLo ir.Expr
		indexHi ir.Expr
		handled = true
	)
	//
	switch {
	case d.Family.IsArithmetic():
		indexLo, indexHi = ctx.tape()
	case d.Family.IsBitwise():
		indexLo, indexHi = ctx.barLanes(helper.BarBitwise(ctx.bitwise()))
	case d.Family == catalog.Move:
		indexLo, indexHi = ctx.layer(0), ctx.layer(1)
	case d.Family == catalog.Shift:
		indexLo, indexHi = ir.Binop(d.Name, ctx.shadow(1, 0), ctx.arg(2)), ir.Binop(d.Name, ctx.shadow(1, 1), ctx.arg(2))
	case d.Family == catalog.Widen:
		// Indices of single precision values occupy 32 bits
		widen := func(e ir.Expr) ir.Expr {
			return ir.Unop("ReinterpI64asF64", simd.Widen(ir.Unop("ReinterpF32asI32", e)))
		}
		indexLo, indexHi = widen(ctx.shadow(1, 0)), widen(ctx.shadow(1, 1))
	case d.Family == catalog.Narrow:
		narrow := func(e ir.Expr) ir.Expr {
			return ir.Unop("ReinterpI32asF32", simd.Narrow(ir.Unop("ReinterpF64asI64", e)))
		}
		indexLo, indexHi = narrow(ctx.shadow(2, 0)), narrow(ctx.shadow(2, 1))
	case d.Family == catalog.Convert:
		indexLo, indexHi = ir.Zero(d.Result()), ir.Zero(d.Result())
	default:
		handled = false
	}
	//
	if !handled {
		return nil, unsupported(d, Reverse)
	}
	//
	lo := ctx.b.Let("indexLo", indexLo)
	hi := ctx.b.Let("indexHi", indexHi)
	body := ctx.b.Build(ctx.requires(d.DiffInputs), lo, hi)
	//
	if err := checkResults(d, Reverse, body); err != nil {
		return nil, err
	}
	//
	return &ReverseRule{base{d, body, true}}, nil
}

// Record every lane of a floating-point operation on the tape.
func (p *context) tape() (ir.Expr, ir.Expr) {
	var (
		d      = p.desc
		values = p.values()
		inputs []*ir.Var
		nv     = len(values)
	)
	//
	for _, n := range values {
		inputs = append(inputs, p.arg(n))
	}
	//
	for _, n := range d.DiffInputs {
		inputs = append(inputs, p.shadow(n, 0), p.shadow(n, 1))
	}
	//
	lowest := func(b *ir.Builder, _ uint, in []ir.Expr) []ir.Expr {
		var (
			xs    = make([]ir.Expr, nv)
			index = func(j int) [2]ir.Expr { return [2]ir.Expr{in[nv+2*j], in[nv+2*j+1]} }
		)
		//
		for j, n := range values {
			xs[j] = b.Let(fmt.Sprintf("arg%d_f", n), toF64(in[j], d.Width))
		}
		//
		value, partials := p.partials(xs)
		zero := [2]ir.Expr{ir.U64(0), ir.U64(0)}
		//
		switch len(partials) {
		case 1:
			return p.write(index(0), zero, partials[0], ir.F64(0), value)
		case 2:
			return p.write(index(0), index(1), partials[0], partials[1], value)
		default:
			// Combine the first two operands, and then the third.
			inter := p.write(index(0), index(1), partials[0], partials[1], ir.F64(0))
			return p.write([2]ir.Expr{inter[0], inter[1]}, index(2), ir.F64(1), partials[2], value)
		}
	}
	//
	var nonLowest simd.Body
	//
	if d.LowestLaneOnly {
		nonLowest = func(_ *ir.Builder, _ uint, in []ir.Expr) []ir.Expr {
			return []ir.Expr{in[nv], in[nv+1]}
		}
	}
	//
	parts := p.lanes(inputs, []string{"indexLo", "indexHi"}, lowest, nonLowest)
	//
	return simd.Reinterpret(parts[0], d.Result()), simd.Reinterpret(parts[1], d.Result())
}

// Write a node to the tape, returning both layers of its index.
func (p *context) write(a [2]ir.Expr, b [2]ir.Expr, partialA, partialB, value ir.Expr) []ir.Expr {
	rs := p.b.Dirty(helper.WriteToTape, []string{"tapeLo", "tapeHi"}, a[0], a[1], b[0], b[1], bitsOf(partialA),
		bitsOf(partialB), bitsOf(value))
	//
	return []ir.Expr{rs[0], rs[1]}
}

// Value of a single lane in double precision, and its partial derivatives with
// respect to each differentiable operand, given the operands' values.
func (p *context) partials(xs []ir.Expr) (ir.Expr, []ir.Expr) {
	var (
		one  = ir.F64(1)
		zero = ir.F64(0)
		a    = xs[0]
	)
	//
	switch p.desc.Family {
	case catalog.Add:
		return p.arith("AddF64", a, xs[1]), []ir.Expr{one, one}
	case catalog.Sub:
		return p.arith("SubF64", a, xs[1]), []ir.Expr{one, ir.F64(-1)}
	case catalog.Mul:
		return p.arith("MulF64", a, xs[1]), []ir.Expr{xs[1], a}
	case catalog.Div:
		b := xs[1]
		pb := p.arith("DivF64", p.arith("MulF64", ir.F64(-1), a), p.arith("MulF64", b, b))
		//
		return p.arith("DivF64", a, b), []ir.Expr{p.arith("DivF64", one, b), pb}
	case catalog.Sqrt:
		root := p.b.Let("root", p.arith("SqrtF64", a))
		return root, []ir.Expr{p.arith("DivF64", ir.F64(0.5), root)}
	case catalog.Neg:
		return ir.Unop("NegF64", a), []ir.Expr{ir.F64(-1)}
	case catalog.Abs:
		return ir.Unop("AbsF64", a), []ir.Expr{ir.IfThenElse(less(a, zero), ir.F64(-1), one)}
	case catalog.Min, catalog.Max:
		// Select the first operand when strictly smaller (resp. larger)
		cond := less(a, xs[1])
		if p.desc.Family == catalog.Max {
			cond = less(xs[1], a)
		}
		//
		first := p.b.Let("first", cond)
		//
		return ir.IfThenElse(first, a, xs[1]), []ir.Expr{ir.IfThenElse(first, one, zero),
			ir.IfThenElse(first, zero, one)}
	case catalog.MAdd:
		return p.arith("MAddF64", a, xs[1], xs[2]), []ir.Expr{xs[1], a, one}
	case catalog.MSub:
		return p.arith("MSubF64", a, xs[1], xs[2]), []ir.Expr{xs[1], a, ir.F64(-1)}
	case catalog.Scale:
		return p.arith("ScaleF64", a, xs[1]), []ir.Expr{p.arith("ScaleF64", one, xs[1])}
	case catalog.Yl2x, catalog.Yl2xp1:
		var (
			op = vex.Op("Yl2xF64")
			x  = xs[1]
		)
		//
		if p.desc.Family == catalog.Yl2xp1 {
			op, x = "Yl2xp1F64", p.arith("AddF64", xs[1], one)
		}
		//
		px := p.arith("DivF64", a, p.arith("MulF64", ir.F64(math.Ln2), x))
		//
		return p.arith(op, a, xs[1]), []ir.Expr{p.arith(op, one, xs[1]), px}
	}
	//
	panic("unreachable")
}

// Index layers computed lane by lane by a runtime helper, given each operand's
// value and index layers.
func (p *context) barLanes(helperName string) (ir.Expr, ir.Expr) {
	inputs := []*ir.Var{p.arg(1), p.shadow(1, 0), p.shadow(1, 1), p.arg(2), p.shadow(2, 0), p.shadow(2, 1)}
	//
	parts := p.lanes(inputs, p.mode.Results(), func(b *ir.Builder, _ uint, in []ir.Expr) []ir.Expr {
		rs := b.Dirty(helperName, []string{"laneLo", "laneHi"}, in...)
		return []ir.Expr{rs[0], rs[1]}
	}, nil)
	//
	return simd.Reinterpret(parts[0], p.desc.Result()), simd.Reinterpret(parts[1], p.desc.Result())
}
