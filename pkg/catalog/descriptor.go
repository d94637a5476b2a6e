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

// Family identifies the algebraic family of an operation, which determines
// how each rule engine treats it.
type Family uint8

const (
	// Add is floating-point addition.
	Add Family = iota
	// Sub is floating-point subtraction.
	Sub
	// Mul is floating-point multiplication.
	Mul
	// Div is floating-point division.
	Div
	// Sqrt is floating-point square root.
	Sqrt
	// Neg is floating-point negation.
	Neg
	// Abs is floating-point absolute value.
	Abs
	// Min is the floating-point minimum of two operands.
	Min
	// Max is the floating-point maximum of two operands.
	Max
	// MAdd is fused multiply-add.
	MAdd
	// MSub is fused multiply-subtract.
	MSub
	// Scale multiplies by an integral power of two.
	Scale
	// Yl2x computes y*log2(x).
	Yl2x
	// Yl2xp1 computes y*log2(x+1).
	Yl2xp1
	// And is bitwise conjunction.
	And
	// Or is bitwise disjunction.
	Or
	// Xor is bitwise exclusive-or.
	Xor
	// Move reinterprets, truncates, extends or concatenates bits.
	Move
	// Shift is a left or right logical shift by a non-differentiable amount.
	Shift
	// Widen converts single precision into double precision.
	Widen
	// Narrow converts double precision into single precision.
	Narrow
	// Convert converts between integers and floating-point, or rounds to an
	// integral value.  Its result has no derivative.
	Convert
)

var familyNames = [...]string{"add", "sub", "mul", "div", "sqrt", "neg", "abs", "min", "max", "madd", "msub", "scale",
	"yl2x", "yl2xp1", "and", "or", "xor", "move", "shift", "widen", "narrow", "convert"}

// ParseFamily converts a family name into a family.
func ParseFamily(name string) (Family, bool) {
	for i, n := range familyNames {
		if n == name {
			return Family(i), true
		}
	}
	//
	return 0, false
}

func (f Family) String() string {
	if int(f) < len(familyNames) {
		return familyNames[f]
	}
	//
	return fmt.Sprintf("family(%d)", uint8(f))
}

// IsArithmetic holds for families whose operands are floating-point values
// in arithmetic positions.
func (f Family) IsArithmetic() bool {
	return f <= Yl2xp1
}

// IsBitwise holds for the bitwise logical families.
func (f Family) IsBitwise() bool {
	return f == And || f == Or || f == Xor
}

// Descriptor describes the identity and shape of a single operation.  A
// descriptor is immutable once its catalog has been built.
type Descriptor struct {
	// Name of the operation.
	Name vex.Op
	// Family determines how the operation is differentiated.
	Family Family
	// Number of operands (1-4).
	Arity uint
	// Operand positions (1-based, increasing) whose derivative must be
	// available for a rule to apply.
	DiffInputs []uint
	// Size in bytes of each lane (4 or 8), or 0 when the operation is not
	// decomposed into lanes.
	Width uint
	// Number of lanes (1, 2, 4 or 8).
	Lanes uint
	// Whether only lane 0 is computed, other lanes being copied from the
	// first operand.
	LowestLaneOnly bool
	// Whether operand 1 is a rounding mode.
	Rounded bool
	// Whether value/derivative pairs are recorded for difference quotient
	// debugging.
	DebugResults bool
	// Signature of the operation, as given by the enumeration.
	Signature vex.Signature
}

// Layout returns the SIMD layout of this descriptor.  Where this matches one
// of the floating-point layouts, its suffix is included.
func (p *Descriptor) Layout() Layout {
	l := Layout{"", p.Width, p.Lanes, p.LowestLaneOnly}
	//
	for _, fl := range Layouts {
		if fl.Width == l.Width && fl.Lanes == l.Lanes && fl.LowestLaneOnly == l.LowestLaneOnly {
			return fl
		}
	}
	//
	return l
}

// IsSIMD holds when this operation is decomposed into more than one lane.
func (p *Descriptor) IsSIMD() bool {
	return p.Lanes > 1
}

// Operand returns the position of the n-th value operand (1-based), skipping
// the rounding mode where present.
func (p *Descriptor) Operand(n uint) uint {
	if p.Rounded {
		return n + 1
	}
	//
	return n
}

// Result returns the type of this operation's result.
func (p *Descriptor) Result() vex.Type {
	return p.Signature.Result
}

// RequiresInput checks whether a given operand position must have a derivative
// available.
func (p *Descriptor) RequiresInput(i uint) bool {
	for _, j := range p.DiffInputs {
		if i == j {
			return true
		}
	}
	//
	return false
}

func (p *Descriptor) String() string {
	return fmt.Sprintf("%s/%d%v", p.Name, p.Arity, p.DiffInputs)
}
