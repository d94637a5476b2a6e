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
package ir

import (
	"fmt"

	"github.com/scicomp/go-adrules/pkg/vex"
)

// RoundingMode is the rounding mode supplied to floating-point operations
// introduced by a rule, rather than taken from an operand.  It is bound by the
// environment a rule is executed in (round to nearest).
var RoundingMode = NewVar("dg_rounding_mode", vex.I32)

// IsZero constructs an expression of type I1 which holds when all bits of a
// given expression are zero.
func IsZero(e Expr) Expr {
	switch e.Type() {
	case vex.I1:
		return Unop("Not1", e)
	case vex.I8:
		return Binop("CmpEQ8", e, U8(0))
	case vex.I16:
		return Binop("CmpEQ16", e, U16(0))
	case vex.I32:
		return Binop("CmpEQ32", e, U32(0))
	case vex.I64:
		return Binop("CmpEQ64", e, U64(0))
	case vex.I128:
		return Binop("And1", IsZero(Unop("128to64", e)), IsZero(Unop("128HIto64", e)))
	case vex.F32:
		return Binop("CmpEQ32", Unop("ReinterpF32asI32", e), U32(0))
	case vex.F64:
		return Binop("CmpEQ64", Unop("ReinterpF64asI64", e), U64(0))
	case vex.V128:
		return Binop("And1", IsZero(Unop("V128to64", e)), IsZero(Unop("V128HIto64", e)))
	case vex.V256:
		return Binop("And1", IsZero(Unop("V256toV128_0", e)), IsZero(Unop("V256toV128_1", e)))
	}
	//
	panic(fmt.Sprintf("cannot test expression of type %s for zero", e.Type()))
}
