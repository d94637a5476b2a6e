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
package vex

import "fmt"

// Type identifies the type of a value in the intermediate representation.
type Type uint8

const (
	// Invalid marks the absence of a type.
	Invalid Type = iota
	// I1 is a single bit, as produced by comparisons.
	I1
	// I8 is an 8-bit integer.
	I8
	// I16 is a 16-bit integer.
	I16
	// I32 is a 32-bit integer.
	I32
	// I64 is a 64-bit integer.
	I64
	// I128 is a 128-bit integer.
	I128
	// F32 is an IEEE single precision float.
	F32
	// F64 is an IEEE double precision float.
	F64
	// V128 is a 128-bit vector.
	V128
	// V256 is a 256-bit vector.
	V256
)

var typeNames = [...]string{"Invalid", "I1", "I8", "I16", "I32", "I64", "I128", "F32", "F64", "V128", "V256"}

var typeBits = [...]uint{0, 1, 8, 16, 32, 64, 128, 32, 64, 128, 256}

// ParseType converts a type name (e.g. "V128") into a type.
func ParseType(name string) (Type, bool) {
	for i, n := range typeNames {
		if n == name && i != 0 {
			return Type(i), true
		}
	}

	return Invalid, false
}

// Bits returns the number of bits occupied by a value of this type.
func (t Type) Bits() uint {
	return typeBits[t]
}

// Size returns the number of bytes occupied by a value of this type.  Single
// bits occupy no bytes.
func (t Type) Size() uint {
	return typeBits[t] / 8
}

// IsFloat holds for the two floating-point scalar types.
func (t Type) IsFloat() bool {
	return t == F32 || t == F64
}

// IsInteger holds for the integer types (including I1).
func (t Type) IsInteger() bool {
	return t >= I1 && t <= I128
}

// Integer returns the integer type of the same size as this type.  Vector
// types are their own integer type, as are integers.
func (t Type) Integer() Type {
	switch t {
	case F32:
		return I32
	case F64:
		return I64
	default:
		return t
	}
}

// IntegerOfSize returns the integer (or vector) type occupying the given
// number of bytes.
func IntegerOfSize(bytes uint) Type {
	switch bytes {
	case 1:
		return I8
	case 2:
		return I16
	case 4:
		return I32
	case 8:
		return I64
	case 16:
		return V128
	case 32:
		return V256
	}
	//
	panic(fmt.Sprintf("no integer type of %d bytes", bytes))
}

// FloatOfSize returns the floating-point type of a given size in bytes.
func FloatOfSize(bytes uint) Type {
	switch bytes {
	case 4:
		return F32
	case 8:
		return F64
	}
	//
	panic(fmt.Sprintf("no floating-point type of %d bytes", bytes))
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	//
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// CName returns the name of this type as used by the instrumentation harness.
func (t Type) CName() string {
	return "Ity_" + t.String()
}
