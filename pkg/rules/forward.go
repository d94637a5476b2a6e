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
	"math"

	"github.com/scicomp/go-adrules/pkg/catalog"
	"github.com/scicomp/go-adrules/pkg/helper"
	"github.com/scicomp/go-adrules/pkg/ir"
	"github.com/scicomp/go-adrules/pkg/simd"
	"github.com/scicomp/go-adrules/pkg/vex"
)

type forwardEngine struct {
	debug bool
}

// Mode implementation for Engine interface.
func (p *forwardEngine) Mode() Mode {
	if p.debug {
		return ForwardDebug
	}
	//
	return Forward
}

// Rule implementation for Engine interface.  The derivative of the result is
// computed from the derivatives of the operands using the usual identities.
// The rule applies only when the derivative of every differentiable operand
// is available.
func (p *forwardEngine) Rule(d *catalog.Descriptor) (Rule, error) {
	ctx := newContext(d, p.Mode())
	//
	dot := ctx.dot()
	if dot == nil {
		return nil, unsupported(d, p.Mode())
	}
	//
	result := ctx.b.Let("dotvalue", dot)
	debug := p.debug && d.DebugResults
	// Record value and derivative of every lane
	if debug {
		ctx.quotients(result)
	}
	//
	body := ctx.b.Build(ctx.requires(d.DiffInputs), result)
	//
	if err := checkResults(d, p.Mode(), body); err != nil {
		return nil, err
	}
	//
	return &ForwardRule{base{d, body, !debug}, p.debug}, nil
}

// Derivative of an operand's value.
func (p *context) dotOf(n uint) *ir.Var {
	return p.shadow(n, 0)
}

func (p *context) dot() ir.Expr {
	var (
		d = p.desc
		// n-th value operand, and its derivative
		a  = func(n uint) ir.Expr { return p.arg(d.Operand(n)) }
		da = func(n uint) ir.Expr { return p.dotOf(d.Operand(n)) }
	)
	//
	switch d.Family {
	case catalog.Add, catalog.Sub:
		return p.arith(d.Name, da(1), da(2))
	case catalog.Mul:
		return p.arith(p.op("Add"), p.arith(p.op("Mul"), da(1), a(2)), p.arith(p.op("Mul"), da(2), a(1)))
	case catalog.Div:
		numerator := p.arith(p.op("Sub"), p.arith(p.op("Mul"), da(1), a(2)), p.arith(p.op("Mul"), a(1), da(2)))
		return p.arith(p.op("Div"), numerator, p.arith(p.op("Mul"), a(2), a(2)))
	case catalog.Sqrt:
		two := p.b.Let("two", splat(2, d.Width, d.Lanes))
		return p.arith(p.op("Div"), da(1), p.arith(p.op("Mul"), two, p.arith(d.Name, a(1))))
	case catalog.Neg:
		return ir.Unop(d.Name, da(1))
	case catalog.Abs:
		zero := constant(a(1).Type(), 0)
		return ir.IfThenElse(less(a(1), zero), ir.Unop(p.op("Neg"), da(1)), da(1))
	case catalog.Min, catalog.Max:
		return p.dotLanes(helper.DotMinMax(d.Family == catalog.Max, d.Width))
	case catalog.MAdd, catalog.MSub:
		return p.dotFusedMultiplyAdd()
	case catalog.Scale:
		return p.arith(d.Name, da(1), a(2))
	case catalog.Yl2x, catalog.Yl2xp1:
		x := a(2)
		if d.Family == catalog.Yl2xp1 {
			x = p.arith("AddF64", x, ir.F64(1))
		}
		//
		dx := p.arith("DivF64", p.arith("MulF64", a(1), da(2)), p.arith("MulF64", ir.F64(math.Ln2), x))
		//
		return p.arith("AddF64", p.arith(d.Name, da(1), a(2)), dx)
	case catalog.And, catalog.Or, catalog.Xor:
		return p.dotLanes(helper.DotBitwise(p.bitwise()))
	case catalog.Move:
		return p.layer(0)
	case catalog.Shift:
		return ir.Binop(d.Name, p.dotOf(1), p.arg(2))
	case catalog.Widen:
		return ir.Unop(d.Name, p.dotOf(1))
	case catalog.Narrow:
		return ir.Binop(d.Name, p.arg(1), p.dotOf(2))
	case catalog.Convert:
		return ir.Zero(d.Result())
	}
	//
	return nil
}

// Derivative of a fused multiply-add (or subtract), computed in double
// precision and narrowed once at the end.
func (p *context) dotFusedMultiplyAdd() ir.Expr {
	var (
		d     = p.desc
		wide  = make([]ir.Expr, 6)
		inner = vex.Op("AddF64")
	)
	//
	for i := range uint(3) {
		wide[2*i], wide[2*i+1] = p.arg(d.Operand(i+1)), p.dotOf(d.Operand(i+1))
	}
	//
	if d.Width == 4 {
		for i, e := range wide {
			wide[i] = ir.Unop("F32toF64", e)
		}
	}
	//
	if d.Family == catalog.MSub {
		inner = "SubF64"
	}
	// da*b + a*db +/- dc
	product := p.arith("AddF64", p.arith("MulF64", wide[1], wide[2]), p.arith("MulF64", wide[0], wide[3]))
	result := p.arith(inner, product, wide[5])
	//
	if d.Width == 4 {
		return p.arith("F64toF32", result)
	}
	//
	return result
}

// Derivative computed lane by lane by a runtime helper, given each operand's
// value and derivative.  Lanes other than the lowest pass the derivative of
// the first operand through, for operations on the lowest lane only.
func (p *context) dotLanes(helperName string) ir.Expr {
	var (
		inputs    = []*ir.Var{p.arg(1), p.dotOf(1), p.arg(2), p.dotOf(2)}
		nonLowest simd.Body
	)
	//
	lowest := func(_ *ir.Builder, _ uint, in []ir.Expr) []ir.Expr {
		return []ir.Expr{ir.NewCall(helperName, vex.I64, in...)}
	}
	//
	if p.desc.LowestLaneOnly {
		nonLowest = func(_ *ir.Builder, _ uint, in []ir.Expr) []ir.Expr {
			return []ir.Expr{in[1]}
		}
	}
	//
	parts := p.lanes(inputs, []string{"dotvalue"}, lowest, nonLowest)
	//
	return simd.Reinterpret(parts[0], p.desc.Result())
}

// Record the value and derivative of every lane of the result.
func (p *context) quotients(dot *ir.Var) {
	var (
		d    = p.desc
		args = make([]ir.Expr, d.Arity)
	)
	//
	for i := range args {
		args[i] = p.arg(uint(i + 1))
	}
	//
	value := p.b.Let("value", ir.NewApply(d.Name, args...))
	//
	p.lanes([]*ir.Var{value, dot}, nil, func(b *ir.Builder, _ uint, in []ir.Expr) []ir.Expr {
		b.Effect(helper.DiffQuotDebug, laneBits(in[0], d.Width), laneBits(in[1], d.Width))
		return nil
	}, nil)
}
