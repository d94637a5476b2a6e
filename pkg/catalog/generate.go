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
package catalog

import (
	"fmt"

	"github.com/scicomp/go-adrules/pkg/vex"
)

// KnownMissing lists operations which the generator produces but which the
// target does not define.  The list is not used for filtering, which is
// driven by the enumeration of the target; instead, it is cross-checked
// against what the enumeration actually removes.
var KnownMissing = []vex.Op{"Div32Fx2", "Sqrt32Fx2"}

type generator struct {
	descriptors []*Descriptor
}

func (p *generator) add(name string, family Family, arity uint, diff []uint, layout Layout, rounded bool) *Descriptor {
	d := &Descriptor{
		Name:           vex.Op(name),
		Family:         family,
		Arity:          arity,
		DiffInputs:     diff,
		Width:          layout.Width,
		Lanes:          max(layout.Lanes, 1),
		LowestLaneOnly: layout.LowestLaneOnly,
		Rounded:        rounded,
		DebugResults:   layout.Width != 0,
	}
	//
	p.descriptors = append(p.descriptors, d)
	//
	return d
}

// Generate every descriptor, in a fixed order, before any filtering.
func generate() []*Descriptor {
	var g generator
	//
	g.arithmetic()
	g.negAbs()
	g.minMax()
	g.fusedMultiplyAdd()
	g.transcendental()
	g.bitwise()
	g.moves()
	g.conversions()
	//
	return g.descriptors
}

// Basic scalar, SIMD and lowest-lane-only arithmetic.  Lowest-lane-only
// operations have no rounding mode, nor do operations over pairs of single
// precision values.  Square roots of 256-bit vectors have no rounding mode
// either.
func (p *generator) arithmetic() {
	for _, l := range Layouts {
		var (
			rounded     = !l.LowestLaneOnly && l != F32x2
			sqrtRounded = rounded && l.Bytes() != 32
			n           = uint(2)
			m           = uint(1)
		)
		//
		if rounded {
			n = 3
		}
		//
		if sqrtRounded {
			m = 2
		}
		//
		for _, f := range []Family{Add, Sub, Mul, Div} {
			name := fmt.Sprintf("%s%s", familyOps[f], l.Suffix)
			p.add(name, f, n, []uint{n - 1, n}, l, rounded)
		}
		//
		p.add("Sqrt"+l.Suffix, Sqrt, m, []uint{m}, l, sqrtRounded)
	}
}

// Negation over a different set of layouts, and absolute value only for
// scalars.  Packed absolute values exist, but are treated as bitwise
// operations by compilers and cannot be differentiated this way.
func (p *generator) negAbs() {
	for _, l := range []Layout{F64, F32, F64x2, F32x2, F32x4} {
		p.add("Neg"+l.Suffix, Neg, 1, []uint{1}, l, false)
	}
	//
	for _, l := range []Layout{F64, F32} {
		p.add("Abs"+l.Suffix, Abs, 1, []uint{1}, l, false)
	}
}

func (p *generator) minMax() {
	for _, f := range []Family{Min, Max} {
		for _, l := range []Layout{F32x2, F32x4, F32L04, F64x2, F64L02, F32x8, F64x4} {
			p.add(familyOps[f]+l.Suffix, f, 2, []uint{1, 2}, l, false)
		}
	}
}

func (p *generator) fusedMultiplyAdd() {
	for _, f := range []Family{MAdd, MSub} {
		for _, l := range []Layout{F64, F32} {
			p.add(familyOps[f]+l.Suffix, f, 4, []uint{2, 3, 4}, l, true)
		}
	}
}

func (p *generator) transcendental() {
	p.add("ScaleF64", Scale, 3, []uint{2}, F64, true)
	p.add("Yl2xF64", Yl2x, 3, []uint{2, 3}, F64, true)
	p.add("Yl2xp1F64", Yl2xp1, 3, []uint{2, 3}, F64, true)
}

// Bitwise logical operations are decomposed into 64-bit blocks (or a single
// 32-bit block), which the runtime helpers examine for known bit tricks.
func (p *generator) bitwise() {
	blocks := []Layout{{"32", 4, 1, false}, {"64", 8, 1, false}, {"V128", 8, 2, false}, {"V256", 8, 4, false}}
	//
	for _, f := range []Family{And, Or, Xor} {
		for _, l := range blocks {
			d := p.add(familyOps[f]+l.Suffix, f, 2, []uint{1, 2}, l, false)
			d.DebugResults = false
		}
	}
}

// Operations which only move bits around, applied in the same way to values,
// derivatives, indices and flags.
func (p *generator) moves() {
	var unary []string
	//
	for _, i := range []string{"32", "64"} {
		unary = append(unary, "ReinterpI"+i+"asF"+i, "ReinterpF"+i+"asI"+i)
	}
	//
	for _, j := range []string{"", "HI"} {
		unary = append(unary, "16"+j+"to8", "32"+j+"to16", "64"+j+"to32", "V128"+j+"to64", "128"+j+"to64")
	}
	//
	unary = append(unary, "64to8", "32to8", "64to16", "V256toV128_0", "V256toV128_1", "64UtoV128", "32UtoV128",
		"V128to32", "ZeroHI64ofV128", "ZeroHI96ofV128", "ZeroHI112ofV128", "ZeroHI120ofV128")
	//
	for _, j1 := range []uint{8, 16, 32, 64} {
		for _, j2 := range []uint{8, 16, 32, 64} {
			if j1 < j2 {
				unary = append(unary, fmt.Sprintf("%dUto%d", j1, j2), fmt.Sprintf("%dSto%d", j1, j2))
			}
		}
	}
	//
	for _, name := range unary {
		p.add(name, Move, 1, []uint{1}, Layout{}, false)
	}
	//
	var binary []string
	//
	for _, n := range []uint{8, 16, 32, 64} {
		binary = append(binary, fmt.Sprintf("%dHLto%d", n, 2*n))
	}
	//
	binary = append(binary, "64HLtoV128", "V128HLtoV256", "SetV128lo32", "SetV128lo64")
	//
	for _, hilo := range []string{"HI", "LO"} {
		for _, n := range []uint{8, 16, 32, 64} {
			binary = append(binary, fmt.Sprintf("Interleave%s%dx%d", hilo, n, 128/n))
		}
	}
	//
	for _, name := range binary {
		p.add(name, Move, 2, []uint{1, 2}, Layout{}, false)
	}
	//
	for _, dir := range []string{"Shr", "Shl"} {
		for _, n := range []uint{8, 16, 32, 64} {
			p.add(fmt.Sprintf("%s%d", dir, n), Shift, 2, []uint{1}, Layout{}, false)
		}
	}
	//
	p.add("64x4toV256", Move, 4, []uint{1, 2, 3, 4}, Layout{}, false)
}

// Conversions between precisions, and between integers and floating-point.
func (p *generator) conversions() {
	p.add("F32toF64", Widen, 1, []uint{1}, F64, false)
	p.add("F64toF32", Narrow, 2, []uint{2}, F32, true)
	//
	for _, name := range []string{"I32StoF64", "I32UtoF64"} {
		p.add(name, Convert, 1, nil, F64, false)
	}
	//
	for _, name := range []string{"I64StoF64", "I64UtoF64", "RoundF64toInt"} {
		p.add(name, Convert, 2, nil, F64, true)
	}
	//
	for _, name := range []string{"I64StoF32", "I64UtoF32", "I32StoF32", "I32UtoF32"} {
		p.add(name, Convert, 2, nil, F32, true)
	}
	//
	for _, name := range []string{"F64toI64S", "F64toI32S"} {
		p.add(name, Convert, 2, nil, Layout{}, true)
	}
}

var familyOps = map[Family]string{
	Add: "Add", Sub: "Sub", Mul: "Mul", Div: "Div", Min: "Min", Max: "Max", MAdd: "MAdd", MSub: "MSub", And: "And",
	Or: "Or", Xor: "Xor",
}
