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
	"github.com/scicomp/go-adrules/pkg/tape"
)

// A rule examining a bitwise operation of a given word size, on operands x
// and y with shadow layers (xLo, xHi) and (yLo, yHi).  It reports whether the
// operation was recognised, and if so the shadow layers of its result.
type layerRule func(w word, x, xLo, xHi, y, yLo, yHi uint64) (uint64, uint64, bool)

// Apply a rule to 64-bit operands in both orders, before falling back to both
// 32-bit halves separately and then to a default.
func layerBitwise(rule layerRule, fallback func(xLo, yLo uint64) (uint64, uint64), x, xLo, xHi, y, yLo, yHi uint64) (
	uint64, uint64) {
	if lo, hi, ok := rule(64, x, xLo, xHi, y, yLo, yHi); ok {
		return lo, hi
	} else if lo, hi, ok := rule(64, y, yLo, yHi, x, xLo, xHi); ok {
		return lo, hi
	}
	//
	return halves(func(args ...uint64) (uint64, uint64) {
		if lo, hi, ok := rule(32, args[0], args[1], args[2], args[3], args[4], args[5]); ok {
			return lo, hi
		} else if lo, hi, ok := rule(32, args[3], args[4], args[5], args[0], args[1], args[2]); ok {
			return lo, hi
		}
		//
		return fallback(args[1], args[4])
	}, x, xLo, xHi, y, yLo, yHi)
}

// ============================================================================
// Reverse mode
// ============================================================================

// BarAnd records a bitwise "and" of 64-bit words on the tape, returning the
// index layers of its result.  Absolute values (a mask of 0b0111...) record a
// negation if the operand is negative, the identity (a mask of all ones)
// passes the operand's index through, and anything else is treated as
// constant.  Each 32-bit half is examined separately if the whole word is
// not recognised.
func BarAnd(t tape.Writer, x, xiLo, xiHi, y, yiLo, yiHi uint64) (uint64, uint64) {
	return layerBitwise(func(w word, x, _, _, y, yLo, yHi uint64) (uint64, uint64, bool) {
		switch x {
		case w.abs():
			if w.float(y) >= 0 {
				return yLo & 0xffffffff, yHi & 0xffffffff, true
			}
			//
			return negateIndex(t, w, y, yLo, yHi)
		case w.mask():
			return yLo & 0xffffffff, yHi & 0xffffffff, true
		}
		//
		return 0, 0, false
	}, constant, x, xiLo, xiHi, y, yiLo, yiHi)
}

// BarOr records a bitwise "or" of 64-bit words on the tape.  Setting the sign
// bit of an operand computes its negative absolute value, and "or" with zero
// is the identity, provided the mask is itself constant.
func BarOr(t tape.Writer, x, xiLo, xiHi, y, yiLo, yiHi uint64) (uint64, uint64) {
	return layerBitwise(func(w word, x, xLo, xHi, y, yLo, yHi uint64) (uint64, uint64, bool) {
		if !inactive(xLo, xHi) {
			return 0, 0, false
		}
		//
		switch x {
		case w.sign():
			if w.float(y) <= 0 {
				return yLo & 0xffffffff, yHi & 0xffffffff, true
			}
			//
			return negateIndex(t, w, y, yLo, yHi)
		case 0:
			return yLo & 0xffffffff, yHi & 0xffffffff, true
		}
		//
		return 0, 0, false
	}, constant, x, xiLo, xiHi, y, yiLo, yiHi)
}

// BarXor records a bitwise "xor" of 64-bit words on the tape.  Flipping the
// sign bit with a constant mask records a negation.
func BarXor(t tape.Writer, x, xiLo, xiHi, y, yiLo, yiHi uint64) (uint64, uint64) {
	return layerBitwise(func(w word, x, xLo, xHi, y, yLo, yHi uint64) (uint64, uint64, bool) {
		if x == w.sign() && inactive(xLo, xHi) {
			return negateIndex(t, w, y, yLo, yHi)
		}
		//
		return 0, 0, false
	}, constant, x, xiLo, xiHi, y, yiLo, yiHi)
}

func negateIndex(t tape.Writer, w word, y, yLo, yHi uint64) (uint64, uint64, bool) {
	lo, hi := t.Write(yLo&0xffffffff, yHi&0xffffffff, 0, 0, -1, 0, -w.float(y))
	//
	return lo, hi, true
}

func inactive(lo uint64, hi uint64) bool {
	return lo&0xffffffff == 0 && hi&0xffffffff == 0
}

func constant(_, _ uint64) (uint64, uint64) {
	return 0, 0
}

// ============================================================================
// Taint propagation
// ============================================================================

// TrickAnd propagates the taint flags of a bitwise "and" of 64-bit words.
// Absolute values and the identity pass the operand's flags through, whilst
// anything else produces a discrete result which is active if either operand
// is.
func TrickAnd(x, xfLo, xfHi, y, yfLo, yfHi uint64) (uint64, uint64) {
	return layerBitwise(func(w word, x, _, _, _, yLo, yHi uint64) (uint64, uint64, bool) {
		if x == w.abs() || x == w.mask() {
			return yLo, yHi, true
		}
		//
		return 0, 0, false
	}, discrete, x, xfLo, xfHi, y, yfLo, yfHi)
}

// TrickOr propagates the taint flags of a bitwise "or" of 64-bit words.
// Negative absolute values and the identity pass the operand's flags through.
func TrickOr(x, xfLo, xfHi, y, yfLo, yfHi uint64) (uint64, uint64) {
	return layerBitwise(func(w word, x, xLo, xHi, _, yLo, yHi uint64) (uint64, uint64, bool) {
		if (x == w.sign() || x == 0) && inactive(xLo, xHi) {
			return yLo, yHi, true
		}
		//
		return 0, 0, false
	}, discrete, x, xfLo, xfHi, y, yfLo, yfHi)
}

// TrickXor propagates the taint flags of a bitwise "xor" of 64-bit words.
// Negation passes the operand's flags through, whilst the "xor" of a value
// with itself is zero and therefore neither active nor discrete.
func TrickXor(x, xfLo, xfHi, y, yfLo, yfHi uint64) (uint64, uint64) {
	return layerBitwise(func(w word, x, xLo, xHi, y, yLo, yHi uint64) (uint64, uint64, bool) {
		switch {
		case x == w.sign() && inactive(xLo, xHi):
			return yLo, yHi, true
		case x == y && xLo == yLo && xHi == yHi:
			return 0, 0, true
		}
		//
		return 0, 0, false
	}, discrete, x, xfLo, xfHi, y, yfLo, yfHi)
}

func discrete(xLo, yLo uint64) (uint64, uint64) {
	return xLo | yLo, 0xffffffff
}
