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
	"github.com/scicomp/go-adrules/pkg/ir"
	"github.com/scicomp/go-adrules/pkg/simd"
	"github.com/scicomp/go-adrules/pkg/vex"
)

// Context for generating the body of a single rule.
type context struct {
	desc *catalog.Descriptor
	mode Mode
	b    *ir.Builder
}

func newContext(d *catalog.Descriptor, mode Mode) *context {
	var reserved []string
	//
	for n := uint(1); n <= d.Arity; n++ {
		reserved = append(reserved, fmt.Sprintf("arg%d", n))
		reserved = append(reserved, mode.Shadows(n)...)
	}
	//
	return &context{d, mode, ir.NewBuilder(reserved...)}
}

// Operand at a given position (1-based).
func (p *context) arg(n uint) *ir.Var {
	return ir.NewVar(fmt.Sprintf("arg%d", n), p.desc.Signature.Args[n-1])
}

// Shadow layer of the operand at a given position.  Shadows have the same
// type as their operand.
func (p *context) shadow(n uint, layer int) *ir.Var {
	return ir.NewVar(p.mode.Shadows(n)[layer], p.desc.Signature.Args[n-1])
}

// Shadows which must be available for a rule over the given operand
// positions to apply.
func (p *context) requires(positions []uint) []*ir.Var {
	var vars []*ir.Var
	//
	for _, n := range positions {
		for layer := range p.mode.Shadows(n) {
			vars = append(vars, p.shadow(n, layer))
		}
	}
	//
	return vars
}

// Positions of the operands which are not rounding modes.
func (p *context) values() []uint {
	var positions []uint
	//
	for n := p.desc.Operand(1); n <= p.desc.Arity; n++ {
		positions = append(positions, n)
	}
	//
	return positions
}

// Rounding mode for operations introduced by a rule.
func (p *context) rm() ir.Expr {
	if p.desc.Rounded {
		return p.arg(1)
	}
	//
	return ir.RoundingMode
}

// Apply an operation, supplying the rounding mode first where the operation
// requires one.
func (p *context) arith(op vex.Op, args ...ir.Expr) ir.Expr {
	if sig, ok := vex.Default().Lookup(op); ok && sig.Arity() == len(args)+1 {
		args = append([]ir.Expr{p.rm()}, args...)
	}
	//
	return ir.NewApply(op, args...)
}

// Name of the operation of a given family in the layout of this rule's
// operation, e.g. "Mul" becomes "Mul64Fx2".
func (p *context) op(family string) vex.Op {
	return vex.Op(family + p.desc.Layout().Suffix)
}

// Name of a bitwise operation, as used by runtime helpers.
func (p *context) bitwise() string {
	return p.desc.Family.String()
}

// Holds when x is strictly less than y, for floating-point scalars of the
// same type.
func less(x ir.Expr, y ir.Expr) ir.Expr {
	cmp := vex.Op("Cmp" + x.Type().String())
	//
	return ir.Binop("CmpEQ32", ir.Binop(cmp, x, y), ir.U32(1))
}

// Constant of a floating-point type.
func constant(ty vex.Type, x float64) ir.Expr {
	if ty == vex.F32 {
		return ir.F32(float32(x))
	}
	//
	return ir.F64(x)
}

// Constant with every lane of a given layout holding the same value.
func splat(x float64, width uint, lanes uint) ir.Expr {
	if lanes == 1 {
		return constant(vex.FloatOfSize(width), x)
	}
	//
	parts := make([]ir.Expr, lanes)
	//
	for k := range parts {
		if width == 4 {
			parts[k] = ir.U32(math.Float32bits(float32(x)))
		} else {
			parts[k] = ir.U64(math.Float64bits(x))
		}
	}
	//
	return simd.Assemble(parts, width)
}

// Interpret a 64-bit lane holding a floating-point value of a given width as
// a double precision value.
func toF64(part ir.Expr, width uint) ir.Expr {
	if width == 4 {
		return ir.Unop("F32toF64", ir.Unop("ReinterpI32asF32", simd.Narrow(part)))
	}
	//
	return ir.Unop("ReinterpI64asF64", part)
}

// Bits of the double precision value of a 64-bit lane holding a
// floating-point value of a given width.
func laneBits(part ir.Expr, width uint) ir.Expr {
	if width == 4 {
		return bitsOf(toF64(part, width))
	}
	//
	return part
}

// Bits of a double precision value, as a 64-bit integer.
func bitsOf(e ir.Expr) ir.Expr {
	if c, ok := e.(*ir.Const); ok && c.Kind == ir.Literal && c.Ty == vex.F64 {
		return ir.U64(c.Bits.Uint64())
	}
	//
	return ir.Unop("ReinterpF64asI64", e)
}

// Bits of a scalar floating-point value, zero-extended to 64 bits.
func wordOf(e ir.Expr) ir.Expr {
	switch e.Type() {
	case vex.F32:
		return simd.Widen(ir.Unop("ReinterpF32asI32", e))
	case vex.F64:
		return ir.Unop("ReinterpF64asI64", e)
	}
	//
	return e
}

// Constant whose bits are all zero or all one, depending on whether every
// given expression is zero.
func flag(ty vex.Type, exprs ...ir.Expr) ir.Expr {
	var cond ir.Expr
	//
	for _, e := range exprs {
		if cond == nil {
			cond = ir.IsZero(e)
		} else {
			cond = ir.Binop("And1", cond, ir.IsZero(e))
		}
	}
	//
	return ir.IfThenElse(cond, ir.Zero(ty), ir.AllOnes(ty))
}

// Apply the same operation to one shadow layer of every operand.
func (p *context) layer(layer int) ir.Expr {
	args := make([]ir.Expr, p.desc.Arity)
	//
	for i := range args {
		args[i] = p.shadow(uint(i+1), layer)
	}
	//
	return ir.NewApply(p.desc.Name, args...)
}

// Decompose operands into the lanes of this rule's operation.
func (p *context) lanes(inputs []*ir.Var, outputs []string, lowest simd.Body, nonLowest simd.Body) []ir.Expr {
	return simd.Componentwise(p.b, simd.Decomposition{
		Width:     p.desc.Width,
		Lanes:     p.desc.Lanes,
		Inputs:    inputs,
		Outputs:   outputs,
		Lowest:    lowest,
		NonLowest: nonLowest,
	})
}
