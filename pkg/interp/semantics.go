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
package interp

import (
	"fmt"
	"math"
	"sync"

	"github.com/scicomp/go-adrules/pkg/vex"
)

// Semantics computes the result of an operation from its operands.  Results
// need not be truncated to the width of the result type, as this is done by
// the evaluator.
type Semantics func(args []Value) Value

// Supported determines whether the interpreter can evaluate a given operation.
func Supported(op vex.Op) bool {
	_, ok := table()[op]
	return ok
}

var table = sync.OnceValue(func() map[vex.Op]Semantics {
	var (
		isa = vex.Default()
		t   = make(map[vex.Op]Semantics)
	)
	//
	floatingPoint(isa, t)
	conversions(t)
	integers(t)
	movement(t)
	//
	return t
})

// ============================================================================
// Floating-point arithmetic
// ============================================================================

type layout struct {
	suffix string
	size   uint
	lanes  uint
	llo    bool
}

var layouts = []layout{
	{"F64", 8, 1, false}, {"F32", 4, 1, false},
	{"64Fx2", 8, 2, false}, {"64Fx4", 8, 4, false},
	{"32Fx2", 4, 2, false}, {"32Fx4", 4, 4, false}, {"32Fx8", 4, 8, false},
	{"32F0x4", 4, 4, true}, {"64F0x2", 8, 2, true},
}

// Lane-wise floating-point functions, by family and operand count.
var lanewiseFunctions = []struct {
	family string
	arity  int
	fn     func(xs []float64) float64
}{
	{"Add", 2, func(xs []float64) float64 { return xs[0] + xs[1] }},
	{"Sub", 2, func(xs []float64) float64 { return xs[0] - xs[1] }},
	{"Mul", 2, func(xs []float64) float64 { return xs[0] * xs[1] }},
	{"Div", 2, func(xs []float64) float64 { return xs[0] / xs[1] }},
	{"Sqrt", 1, func(xs []float64) float64 { return math.Sqrt(xs[0]) }},
	{"Neg", 1, func(xs []float64) float64 { return -xs[0] }},
	{"Abs", 1, func(xs []float64) float64 { return math.Abs(xs[0]) }},
	// Min and max follow x86, returning the second operand unless the first
	// is strictly smaller (resp. larger).
	{"Min", 2, func(xs []float64) float64 {
		if xs[0] < xs[1] {
			return xs[0]
		}
		//
		return xs[1]
	}},
	{"Max", 2, func(xs []float64) float64 {
		if xs[0] > xs[1] {
			return xs[0]
		}
		//
		return xs[1]
	}},
	{"MAdd", 3, func(xs []float64) float64 { return math.FMA(xs[0], xs[1], xs[2]) }},
	{"MSub", 3, func(xs []float64) float64 { return math.FMA(xs[0], xs[1], -xs[2]) }},
	{"Scale", 2, func(xs []float64) float64 { return math.Ldexp(xs[0], int(math.Trunc(xs[1]))) }},
	{"Yl2x", 2, func(xs []float64) float64 { return xs[0] * math.Log2(xs[1]) }},
	{"Yl2xp1", 2, func(xs []float64) float64 { return xs[0] * math.Log2(xs[1]+1) }},
}

func floatingPoint(isa *vex.ISA, t map[vex.Op]Semantics) {
	for _, l := range layouts {
		for _, f := range lanewiseFunctions {
			op := vex.Op(f.family + l.suffix)
			//
			if sig, ok := isa.Lookup(op); ok {
				// Any leading operands are rounding modes, which are ignored
				// since every operation rounds to nearest.
				t[op] = lanewise(l, sig.Arity()-f.arity, f.fn)
			}
		}
	}
	//
	t["CmpF64"] = compare(8)
	t["CmpF32"] = compare(4)
	t["RoundF64toInt"] = rounded(func(w uint64) uint64 {
		return math.Float64bits(math.RoundToEven(math.Float64frombits(w)))
	})
}

// Apply a floating-point function to each lane of the operands (or only the
// lowest, with the remaining lanes copied from the first operand).
func lanewise(l layout, skip int, fn func([]float64) float64) Semantics {
	return func(args []Value) Value {
		var (
			operands = args[skip:]
			result   Value
			xs       = make([]float64, len(operands))
			n        = l.lanes
		)
		//
		if l.llo {
			result.Set(&operands[0])
			n = 1
		}
		//
		for k := range n {
			for i := range operands {
				xs[i] = fromBits(l.size, lane(&operands[i], l.size, k))
			}
			//
			setLane(&result, l.size, k, toBits(l.size, fn(xs)))
		}
		//
		return result
	}
}

// Codes returned by floating-point comparisons.
const (
	cmpUnordered = 0x45
	cmpLess      = 0x01
	cmpGreater   = 0x00
	cmpEqual     = 0x40
)

func compare(size uint) Semantics {
	return func(args []Value) Value {
		var (
			x = fromBits(size, args[0].Uint64())
			y = fromBits(size, args[1].Uint64())
		)
		//
		switch {
		case x < y:
			return Word(cmpLess)
		case x > y:
			return Word(cmpGreater)
		case x == y:
			return Word(cmpEqual)
		default:
			return Word(cmpUnordered)
		}
	}
}

// ============================================================================
// Conversions
// ============================================================================

func conversions(t map[vex.Op]Semantics) {
	t["F32toF64"] = unary(func(w uint64) uint64 {
		return math.Float64bits(float64(math.Float32frombits(uint32(w))))
	})
	t["F64toF32"] = rounded(func(w uint64) uint64 {
		return uint64(math.Float32bits(float32(math.Float64frombits(w))))
	})
	t["I32StoF64"] = unary(func(w uint64) uint64 { return math.Float64bits(float64(int32(w))) })
	t["I32UtoF64"] = unary(func(w uint64) uint64 { return math.Float64bits(float64(uint32(w))) })
	t["I64StoF64"] = rounded(func(w uint64) uint64 { return math.Float64bits(float64(int64(w))) })
	t["I64UtoF64"] = rounded(func(w uint64) uint64 { return math.Float64bits(float64(w)) })
	t["I64StoF32"] = rounded(func(w uint64) uint64 { return uint64(math.Float32bits(float32(int64(w)))) })
	t["I64UtoF32"] = rounded(func(w uint64) uint64 { return uint64(math.Float32bits(float32(w))) })
	t["I32StoF32"] = rounded(func(w uint64) uint64 { return uint64(math.Float32bits(float32(int32(w)))) })
	t["I32UtoF32"] = rounded(func(w uint64) uint64 { return uint64(math.Float32bits(float32(uint32(w)))) })
	t["F64toI64S"] = rounded(func(w uint64) uint64 { return toSigned(math.Float64frombits(w), 64) })
	t["F64toI32S"] = rounded(func(w uint64) uint64 { return toSigned(math.Float64frombits(w), 32) })
}

// Convert a float to a signed integer of a given width (rounding to nearest),
// producing the "integer indefinite" value when out of range.
func toSigned(x float64, bits uint) uint64 {
	var (
		r     = math.RoundToEven(x)
		lower = -math.Ldexp(1, int(bits)-1)
	)
	//
	if math.IsNaN(r) || r < lower || r >= -lower {
		return 1 << (bits - 1)
	}
	//
	return uint64(int64(r))
}

func unary(fn func(uint64) uint64) Semantics {
	return func(args []Value) Value {
		return Word(fn(args[0].Uint64()))
	}
}

// A unary operation whose first operand is a rounding mode.
func rounded(fn func(uint64) uint64) Semantics {
	return func(args []Value) Value {
		return Word(fn(args[1].Uint64()))
	}
}

// ============================================================================
// Integer operations
// ============================================================================

func integers(t map[vex.Op]Semantics) {
	for _, n := range []string{"8", "16", "32", "64", "V128", "V256", "1"} {
		t[vex.Op("And"+n)] = func(args []Value) Value {
			var r Value
			return *r.And(&args[0], &args[1])
		}
		t[vex.Op("Or"+n)] = func(args []Value) Value {
			var r Value
			return *r.Or(&args[0], &args[1])
		}
		//
		if n != "1" {
			t[vex.Op("Xor"+n)] = func(args []Value) Value {
				var r Value
				return *r.Xor(&args[0], &args[1])
			}
		}
	}
	//
	t["Not1"] = func(args []Value) Value {
		var r Value
		return *r.Not(&args[0])
	}
	//
	for _, bits := range []uint{8, 16, 32, 64} {
		n := fmt.Sprint(bits)
		//
		t[vex.Op("CmpEQ"+n)] = func(args []Value) Value {
			if args[0].Eq(&args[1]) {
				return Word(1)
			}
			//
			return Word(0)
		}
		t[vex.Op("Shl"+n)] = func(args []Value) Value {
			var r Value
			return *r.Lsh(&args[0], uint(args[1].Uint64()))
		}
		t[vex.Op("Shr"+n)] = func(args []Value) Value {
			var r Value
			return *r.Rsh(&args[0], uint(args[1].Uint64()))
		}
		t[vex.Op("Sar"+n)] = func(args []Value) Value {
			var (
				x     = int64(signExtend(args[0].Uint64(), bits))
				shift = min(args[1].Uint64(), 63)
			)
			//
			return Word(uint64(x >> shift))
		}
	}
}

// Sign extend the lower bits of a word.
func signExtend(w uint64, bits uint) uint64 {
	shift := 64 - bits
	//
	return uint64(int64(w<<shift) >> shift)
}

// ============================================================================
// Data movement
// ============================================================================

func movement(t map[vex.Op]Semantics) {
	var identity Semantics = func(args []Value) Value { return args[0] }
	// Reinterpretation
	for _, op := range []vex.Op{"ReinterpF64asI64", "ReinterpI64asF64", "ReinterpF32asI32", "ReinterpI32asF32",
		"ReinterpV128asI128", "ReinterpI128asV128"} {
		t[op] = identity
	}
	// Narrowing (shift then truncate)
	for op, shift := range map[vex.Op]uint{
		"16to8": 0, "16HIto8": 8, "32to16": 0, "32HIto16": 16, "64to32": 0, "64HIto32": 32,
		"128to64": 0, "128HIto64": 64, "V128to64": 0, "V128HIto64": 64, "64to8": 0, "32to8": 0,
		"64to16": 0, "32to1": 0, "64to1": 0, "V128to32": 0, "V256toV128_0": 0, "V256toV128_1": 128,
		"V256to64_0": 0, "V256to64_1": 64, "V256to64_2": 128, "V256to64_3": 192,
	} {
		t[op] = func(args []Value) Value {
			var r Value
			return *r.Rsh(&args[0], shift)
		}
	}
	// Widening
	for _, op := range []vex.Op{"8Uto16", "8Uto32", "8Uto64", "16Uto32", "16Uto64", "32Uto64", "1Uto8", "1Uto32",
		"1Uto64", "64UtoV128", "32UtoV128"} {
		t[op] = identity
	}
	//
	for op, bits := range map[vex.Op]uint{"8Sto16": 8, "8Sto32": 8, "8Sto64": 8, "16Sto32": 16, "16Sto64": 16,
		"32Sto64": 32} {
		t[op] = unary(func(w uint64) uint64 { return signExtend(w, bits) })
	}
	//
	for op, bits := range map[vex.Op]uint{"ZeroHI64ofV128": 64, "ZeroHI96ofV128": 32, "ZeroHI112ofV128": 16,
		"ZeroHI120ofV128": 8} {
		t[op] = func(args []Value) Value {
			var r = args[0]
			truncate(&r, bits)
			//
			return r
		}
	}
	// Concatenation
	for op, shift := range map[vex.Op]uint{"8HLto16": 8, "16HLto32": 16, "32HLto64": 32, "64HLto128": 64,
		"64HLtoV128": 64, "V128HLtoV256": 128} {
		t[op] = func(args []Value) Value {
			var r Value
			//
			r.Lsh(&args[0], shift)
			//
			return *r.Or(&r, &args[1])
		}
	}
	//
	t["64x4toV256"] = func(args []Value) Value {
		return Value{args[3].Uint64(), args[2].Uint64(), args[1].Uint64(), args[0].Uint64()}
	}
	t["SetV128lo32"] = func(args []Value) Value {
		r := args[0]
		setLane(&r, 4, 0, args[1].Uint64())
		//
		return r
	}
	t["SetV128lo64"] = func(args []Value) Value {
		r := args[0]
		setLane(&r, 8, 0, args[1].Uint64())
		//
		return r
	}
	// Interleaving
	for _, size := range []uint{1, 2, 4, 8} {
		suffix := fmt.Sprintf("%dx%d", 8*size, 16/size)
		//
		t[vex.Op("InterleaveHI"+suffix)] = interleave(size, 8/size)
		t[vex.Op("InterleaveLO"+suffix)] = interleave(size, 0)
	}
}

// Interleave the lanes of two 128-bit vectors, starting from a given lane of
// each.  Even lanes of the result come from the second operand.
func interleave(size uint, from uint) Semantics {
	return func(args []Value) Value {
		var (
			r Value
			n = 8 / size
		)
		//
		for i := range n {
			setLane(&r, size, 2*i, lane(&args[1], size, from+i))
			setLane(&r, size, 2*i+1, lane(&args[0], size, from+i))
		}
		//
		return r
	}
}

// Clear all but the lowest bits of a value.
func truncate(v *Value, bits uint) {
	if bits < 256 {
		var mask Value
		//
		mask.SetAllOne()
		mask.Rsh(&mask, 256-bits)
		v.And(v, &mask)
	}
}
