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
	"github.com/scicomp/go-adrules/pkg/vex"
)

// Operations which split a value into its lower and upper halves, indexed by
// the type being split.
var halves = map[vex.Type][2]vex.Op{
	vex.I64:  {"64to32", "64HIto32"},
	vex.V128: {"V128to64", "V128HIto64"},
	vex.V256: {"V256toV128_0", "V256toV128_1"},
}

// Operations which concatenate two halves (upper first), indexed by the type
// of each half.
var concats = map[vex.Type]vex.Op{
	vex.I32:  "32HLto64",
	vex.I64:  "64HLtoV128",
	vex.V128: "V128HLtoV256",
}

// Check a given lane layout is one the target supports, panicking otherwise.
func checkLayout(width uint, lanes uint) {
	switch {
	case width == 4 && (lanes == 1 || lanes == 2 || lanes == 4 || lanes == 8):
	case width == 8 && (lanes == 1 || lanes == 2 || lanes == 4):
	default:
		panic(fmt.Sprintf("malformed layout of %d lanes of %d bytes", lanes, width))
	}
}

// AsInteger reinterprets a floating-point (or 128-bit integer) expression as
// an integer (or vector) expression of the same size.  Other expressions are
// returned as is.
func AsInteger(e ir.Expr) ir.Expr {
	switch e.Type() {
	case vex.F64:
		return ir.Unop("ReinterpF64asI64", e)
	case vex.F32:
		return ir.Unop("ReinterpF32asI32", e)
	case vex.I128:
		return ir.Unop("ReinterpI128asV128", e)
	}
	//
	return e
}

// Reinterpret casts an expression to another type of the same size, without
// changing its bits.
func Reinterpret(e ir.Expr, ty vex.Type) ir.Expr {
	from := e.Type()
	//
	if from == ty {
		return e
	} else if from.Bits() != ty.Bits() {
		panic(fmt.Sprintf("cannot reinterpret %s as %s", from, ty))
	}
	//
	switch {
	case from == vex.I64 && ty == vex.F64:
		return ir.Unop("ReinterpI64asF64", e)
	case from == vex.F64 && ty == vex.I64:
		return ir.Unop("ReinterpF64asI64", e)
	case from == vex.I32 && ty == vex.F32:
		return ir.Unop("ReinterpI32asF32", e)
	case from == vex.F32 && ty == vex.I32:
		return ir.Unop("ReinterpF32asI32", e)
	case from == vex.V128 && ty == vex.I128:
		return ir.Unop("ReinterpV128asI128", e)
	case from == vex.I128 && ty == vex.V128:
		return ir.Unop("ReinterpI128asV128", e)
	}
	//
	panic(fmt.Sprintf("cannot reinterpret %s as %s", from, ty))
}

// Component extracts lane k of an expression holding a given number of lanes
// of width bytes each.  The lane is returned as an integer of width bytes.
// Lanes are extracted by recursive halving, lane 0 being least significant.
func Component(e ir.Expr, width uint, lanes uint, k uint) ir.Expr {
	checkLayout(width, lanes)
	//
	if k >= lanes {
		panic(fmt.Sprintf("lane %d out of bounds for %d lanes", k, lanes))
	}
	//
	e = AsInteger(e)
	//
	if e.Type().Size() != width*lanes {
		panic(fmt.Sprintf("cannot extract %d lanes of %d bytes from %s", lanes, width, e.Type()))
	}
	//
	for lanes > 1 {
		ops := halves[e.Type()]
		half := lanes / 2
		//
		if k < half {
			e = ir.Unop(ops[0], e)
		} else {
			e, k = ir.Unop(ops[1], e), k-half
		}
		//
		lanes = half
	}
	//
	return e
}

// Assemble combines a number of lanes, each an integer of width bytes with
// lane 0 first, into a single value by recursive pairwise concatenation.
func Assemble(parts []ir.Expr, width uint) ir.Expr {
	checkLayout(width, uint(len(parts)))
	//
	ty := vex.IntegerOfSize(width)
	//
	for _, p := range parts {
		if p.Type() != ty {
			panic(fmt.Sprintf("cannot assemble lane of type %s as %s", p.Type(), ty))
		}
	}
	//
	for len(parts) > 1 {
		var next = make([]ir.Expr, len(parts)/2)
		//
		for i := range next {
			next[i] = ir.Binop(concats[parts[2*i].Type()], parts[2*i+1], parts[2*i])
		}
		//
		parts = next
	}
	//
	return parts[0]
}

// Widen zero-extends a 32-bit lane to 64 bits.
func Widen(e ir.Expr) ir.Expr {
	return ir.Binop("32HLto64", ir.U32(0), e)
}

// Narrow discards the upper 32 bits of a 64-bit lane.
func Narrow(e ir.Expr) ir.Expr {
	return ir.Unop("64to32", e)
}
