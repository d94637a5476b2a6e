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

import "fmt"

// Names of the helpers called by rule bodies.
const (
	// WriteToTape records a tape entry, returning both layers of its index.
	WriteToTape = "dg_bar_writeToTape"
	// Warn4 examines the taint flags of a single precision operand.
	Warn4 = "dg_trick_warn4"
	// Warn8 examines the taint flags of a double precision operand.
	Warn8 = "dg_trick_warn8"
	// DiffQuotDebug records a value and derivative pair.
	DiffQuotDebug = "dg_add_diffquotdebug"
)

// Warn returns the name of the helper examining the taint flags of a
// floating-point operand of a given size.
func Warn(size uint) string {
	return fmt.Sprintf("dg_trick_warn%d", size)
}

// DotMinMax returns the name of the pure helper selecting the derivative of
// the minimum (or maximum) of two floating-point values of a given size.
func DotMinMax(isMax bool, size uint) string {
	if isMax {
		return fmt.Sprintf("dg_dot_arithmetic_max%d", size*8)
	}
	//
	return fmt.Sprintf("dg_dot_arithmetic_min%d", size*8)
}

// DotBitwise returns the name of the pure helper computing the derivative of a
// 64-bit bitwise operation ("and", "or" or "xor").
func DotBitwise(op string) string {
	return fmt.Sprintf("dg_dot_bitwise_%s64", op)
}

// BarBitwise returns the name of the dirty helper recording a 64-bit bitwise
// operation on the tape.
func BarBitwise(op string) string {
	return fmt.Sprintf("dg_bar_bitwise_%s64", op)
}

// TrickBitwise returns the name of the dirty helper propagating the taint
// flags of a 64-bit bitwise operation.
func TrickBitwise(op string) string {
	return fmt.Sprintf("dg_trick_bitwise_%s64", op)
}
