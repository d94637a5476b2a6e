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
package helper

import (
	"math"
)

// A word of either 32 or 64 bits, held in the lower bits of a uint64.
type word uint

func (w word) mask() uint64 {
	if w == 64 {
		return math.MaxUint64
	}
	//
	return (1 << w) - 1
}

// Bit pattern of the sign bit.
func (w word) sign() uint64 {
	return 1 << (w - 1)
}

// Bit pattern of the mask clearing the sign bit (i.e. 0b0111...).
func (w word) abs() uint64 {
	return w.sign() - 1
}

// Interpret a bit pattern as a floating-point value of this size.
func (w word) float(x uint64) float64 {
	if w == 32 {
		return float64(math.Float32frombits(uint32(x)))
	}
	//
	return math.Float64frombits(x)
}

// Negate a floating-point value of this size by flipping its sign bit.
func (w word) negate(x uint64) uint64 {
	return (x ^ w.sign()) & w.mask()
}

// Apply a function of 32-bit words to both halves of 64-bit words,
// recombining the results.
func halves(fn func(...uint64) (uint64, uint64), args ...uint64) (uint64, uint64) {
	var (
		upper = make([]uint64, len(args))
		lower = make([]uint64, len(args))
	)
	//
	for i, arg := range args {
		upper[i] = arg >> 32
		lower[i] = arg & 0xffffffff
	}
	//
	uLo, uHi := fn(upper...)
	lLo, lHi := fn(lower...)
	//
	return (uLo << 32) | (lLo & 0xffffffff), (uHi << 32) | (lHi & 0xffffffff)
}

// ============================================================================
// Forward mode
// ============================================================================

// DotMin returns the derivative of the minimum of two floating-point values
// of a given size in bits, following the convention that the second operand
// is selected unless the first is strictly smaller.
func DotMin(bits uint, x, xd, y, yd uint64) uint64 {
	w := word(bits)
	//
	if w.float(x) < w.float(y) {
		return xd
	}
	//
	return yd
}

// DotMax returns the derivative of the maximum of two floating-point values
// of a given size in bits, following the convention that the second operand
// is selected unless the first is strictly larger.
func DotMax(bits uint, x, xd, y, yd uint64) uint64 {
	w := word(bits)
	//
	if w.float(x) > w.float(y) {
		return xd
	}
	//
	return yd
}

// DotAnd returns the derivative of a bitwise "and" of 64-bit words.  A mask
// clearing the sign bit computes an absolute value, and a mask of all ones the
// identity.  Otherwise, both 32-bit halves are examined separately, and the
// result is zero where nothing is recognised.
func DotAnd(x, xd, y, yd uint64) uint64 {
	return dotBitwise(dotAnd, x, xd, y, yd)
}

// DotOr returns the derivative of a bitwise "or" of 64-bit words.  Setting the
// sign bit computes the negative absolute value, whilst "or" with zero is the
// identity.
func DotOr(x, xd, y, yd uint64) uint64 {
	return dotBitwise(dotOr, x, xd, y, yd)
}

// DotXor returns the derivative of a bitwise "xor" of 64-bit words.  Flipping
// the sign bit negates.
func DotXor(x, xd, y, yd uint64) uint64 {
	return dotBitwise(dotXor, x, xd, y, yd)
}

type dotRule func(w word, x, xd, y, yd uint64) (uint64, bool)

func dotBitwise(rule dotRule, x, xd, y, yd uint64) uint64 {
	if r, ok := rule(64, x, xd, y, yd); ok {
		return r
	} else if r, ok := rule(64, y, yd, x, xd); ok {
		return r
	}
	//
	r, _ := halves(func(args ...uint64) (uint64, uint64) {
		if r, ok := rule(32, args[0], args[1], args[2], args[3]); ok {
			return r, 0
		} else if r, ok := rule(32, args[2], args[3], args[0], args[1]); ok {
			return r, 0
		}
		//
		return 0, 0
	}, x, xd, y, yd)
	//
	return r
}

func dotAnd(w word, x, _, y, yd uint64) (uint64, bool) {
	switch x {
	case w.abs():
		if w.float(y) >= 0 {
			return yd, true
		}
		//
		return w.negate(yd), true
	case w.mask():
		return yd, true
	}
	//
	return 0, false
}

func dotOr(w word, x, xd, y, yd uint64) (uint64, bool) {
	switch {
	case x == w.sign() && xd == 0:
		if w.float(y) <= 0 {
			return yd, true
		}
		//
		return w.negate(yd), true
	case x == 0 && xd == 0:
		return yd, true
	}
	//
	return 0, false
}

func dotXor(w word, x, xd, _, yd uint64) (uint64, bool) {
	if x == w.sign() && xd == 0 {
		return w.negate(yd), true
	}
	//
	return 0, false
}
