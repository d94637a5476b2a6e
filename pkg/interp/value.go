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
	"math"

	"github.com/holiman/uint256"
)

// Value is the bit pattern of a value of any type, held in the least
// significant bits.
type Value = uint256.Int

// Float64 constructs the value of a double precision float.
func Float64(x float64) Value {
	return Word(math.Float64bits(x))
}

// Float32 constructs the value of a single precision float.
func Float32(x float32) Value {
	return Word(uint64(math.Float32bits(x)))
}

// Word constructs a value from the bits of a 64-bit word.
func Word(w uint64) Value {
	var v Value
	//
	v.SetUint64(w)
	//
	return v
}

// Pack assembles a value from one or more floating-point lanes of a given
// size in bytes (4 or 8), lane 0 being least significant.
func Pack(size uint, lanes ...float64) Value {
	var v Value
	//
	for k, x := range lanes {
		setLane(&v, size, uint(k), toBits(size, x))
	}
	//
	return v
}

// Unpack splits a value into a given number of floating-point lanes of a
// given size in bytes (4 or 8).
func Unpack(v Value, size uint, lanes uint) []float64 {
	xs := make([]float64, lanes)
	//
	for k := range lanes {
		xs[k] = fromBits(size, lane(&v, size, k))
	}
	//
	return xs
}

// Extract the bits of a given lane of a value.  Lanes are either 1, 2, 4 or 8
// bytes wide.
func lane(v *Value, size uint, k uint) uint64 {
	var (
		perWord = 8 / size
		word    = v[k/perWord]
		shift   = 8 * size * (k % perWord)
	)
	//
	return (word >> shift) & laneMask(size)
}

// Overwrite the bits of a given lane of a value.
func setLane(v *Value, size uint, k uint, bits uint64) {
	var (
		perWord = 8 / size
		index   = k / perWord
		shift   = 8 * size * (k % perWord)
		mask    = laneMask(size) << shift
	)
	//
	v[index] = (v[index] &^ mask) | ((bits << shift) & mask)
}

func laneMask(size uint) uint64 {
	if size == 8 {
		return math.MaxUint64
	}
	//
	return (1 << (8 * size)) - 1
}

// Interpret the bits of a lane as a floating-point value.
func fromBits(size uint, bits uint64) float64 {
	if size == 4 {
		return float64(math.Float32frombits(uint32(bits)))
	}
	//
	return math.Float64frombits(bits)
}

// Round a floating-point value to a given size, returning its bits.
func toBits(size uint, x float64) uint64 {
	if size == 4 {
		return uint64(math.Float32bits(float32(x)))
	}
	//
	return math.Float64bits(x)
}
