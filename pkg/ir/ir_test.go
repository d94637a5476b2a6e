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
	"testing"

	"github.com/scicomp/go-adrules/pkg/vex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Expr_01(t *testing.T) {
	a, b := NewVar("arg2", vex.F64), NewVar("arg3", vex.F64)
	e := Triop("AddF64", RoundingMode, a, b)
	//
	assert.Equal(t, vex.F64, e.Type())
	assert.Equal(t, "IRExpr_Triop(Iop_AddF64, dg_rounding_mode, arg2, arg3)", CExpr(e))
	assert.Equal(t, "(AddF64 dg_rounding_mode arg2 arg3)", e.String())
}

func Test_Expr_02(t *testing.T) {
	e := Unop("NoSuchOp", U64(1))
	assert.Equal(t, vex.Invalid, e.Type())
}

func Test_Expr_03(t *testing.T) {
	assert.Equal(t, "IRExpr_Const(IRConst_F64(1.))", CExpr(F64(1)))
	assert.Equal(t, "IRExpr_Const(IRConst_F64(-0.5))", CExpr(F64(-0.5)))
	assert.Equal(t, "IRExpr_Const(IRConst_U32(0x0))", CExpr(U32(0)))
	assert.Equal(t, "IRExpr_Const(IRConst_U1(True))", CExpr(U1(true)))
	assert.Equal(t, "mkIRConst_zero(Ity_V256)", CExpr(Zero(vex.V256)))
	assert.Equal(t, "mkIRConst_ones(Ity_I64)", CExpr(AllOnes(vex.I64)))
}

func Test_Expr_04(t *testing.T) {
	ones := AllOnes(vex.I32)
	assert.Equal(t, uint64(0xffffffff), ones.Bits.Uint64())
	//
	ones = AllOnes(vex.V256)
	assert.Equal(t, 256, ones.Bits.BitLen())
	//
	ones = AllOnes(vex.I1)
	assert.Equal(t, uint64(1), ones.Bits.Uint64())
}

func Test_Expr_05(t *testing.T) {
	e := NewCall("dg_dot_arithmetic_min64", vex.I64, NewVar("x", vex.I64), NewVar("dx", vex.I64))
	assert.Equal(t, `mkIRExprCCall(Ity_I64, 0, "dg_dot_arithmetic_min64", &dg_dot_arithmetic_min64, mkIRExprVec_2(x, dx))`,
		CExpr(e))
}

func Test_Expr_06(t *testing.T) {
	for _, ty := range []vex.Type{vex.I1, vex.I8, vex.I16, vex.I32, vex.I64, vex.I128, vex.F32, vex.F64, vex.V128,
		vex.V256} {
		e := IsZero(NewVar("x", ty))
		assert.Equal(t, vex.I1, e.Type(), ty.String())
	}
}

func Test_Builder_01(t *testing.T) {
	b := NewBuilder("arg1")
	assert.Equal(t, "arg1_1", b.Fresh("arg1"))
	assert.Equal(t, "x", b.Fresh("x"))
	assert.Equal(t, "x_1", b.Fresh("x"))
	assert.Equal(t, "x_2", b.Fresh("x"))
}

func Test_Builder_02(t *testing.T) {
	var (
		b  = NewBuilder()
		i1 = NewVar("i1Lo", vex.I64)
		i2 = NewVar("i1Hi", vex.I64)
	)
	//
	r := b.Dirty("dg_bar_writeToTape", []string{"indexLo", "indexHi"}, i1, i2)
	require.Len(t, r, 2)
	b.Effect("dg_trick_warn8", r[0], r[1])
	v := b.Let("value", Binop("Xor64", r[0], r[1]))
	body := b.Build([]*Var{i1}, v)
	//
	assert.Equal(t, []*Var{i1, i2}, body.Operands())
	assert.Equal(t, []vex.Op{"Xor64"}, body.Ops())
	assert.Equal(t, []string{"dg_bar_writeToTape", "dg_trick_warn8"}, body.Helpers())
	//
	expected := "" +
		"IRExpr** indexLo_vec = dg_bar_writeToTape(diffenv, i1Lo, i1Hi);\n" +
		"IRExpr* indexLo = indexLo_vec[0];\n" +
		"IRExpr* indexHi = indexLo_vec[1];\n"
	assert.Equal(t, expected, CStmt(body.Stmts[0], ""))
	assert.Equal(t, "  dg_trick_warn8(diffenv, indexLo, indexHi);\n", CStmt(body.Stmts[1], "  "))
	assert.Equal(t, "(let value (Xor64 indexLo indexHi))", body.Stmts[2].String())
	assert.Equal(t, "(dirty dg_trick_warn8 () indexLo indexHi)", body.Stmts[1].String())
}

func Test_Builder_03(t *testing.T) {
	b := NewBuilder()
	x := NewVar("x", vex.F64)
	v := b.Let("y", IfThenElse(IsZero(x), Zero(vex.F64), x))
	body := b.Build(nil, v)
	//
	assert.Equal(t, "(body (requires) (let y (ite (CmpEQ64 (ReinterpF64asI64 x) (const I64 0x0)) (zero F64) x)) (results y))",
		LispBody(body).String())
}
