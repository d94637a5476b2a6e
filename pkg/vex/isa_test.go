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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ISA_01(t *testing.T) {
	sig, ok := Default().Lookup("Add64Fx2")
	require.True(t, ok)
	assert.Equal(t, V128, sig.Result)
	assert.Equal(t, []Type{I32, V128, V128}, sig.Args)
}

func Test_ISA_02(t *testing.T) {
	assert.False(t, Default().Has("Div32Fx2"))
	assert.False(t, Default().Has("Sqrt32Fx2"))
	assert.True(t, Default().Has("Add32Fx2"))
}

func Test_ISA_03(t *testing.T) {
	sig, ok := Default().Lookup("SqrtF32")
	require.True(t, ok)
	assert.Equal(t, "(I32, F32) -> F32", sig.String())
	assert.Equal(t, 2, sig.Arity())
}

func Test_ISA_04(t *testing.T) {
	ops := Default().Ops()
	require.Equal(t, Default().Len(), len(ops))
	//
	for i := 1; i < len(ops); i++ {
		assert.Less(t, ops[i-1], ops[i])
	}
}

func Test_ISA_05(t *testing.T) {
	isa, err := ParseISA("(Foo I64 I64 I64) ; comment\n(Bar F32 F64)")
	require.NoError(t, err)
	assert.Equal(t, 2, isa.Len())
	assert.Equal(t, []Op{"Bar", "Foo"}, isa.Ops())
	assert.False(t, isa.Without("Foo").Has("Foo"))
	assert.True(t, isa.Has("Foo"))
}

func Test_Invalid_ISA_01(t *testing.T) {
	_, err := ParseISA("(Foo I64 I65)")
	assert.Error(t, err)
}

func Test_Invalid_ISA_02(t *testing.T) {
	_, err := ParseISA("(Foo I64) (Foo I32)")
	assert.Error(t, err)
}

func Test_Invalid_ISA_03(t *testing.T) {
	_, err := ParseISA("Foo")
	assert.Error(t, err)
}

func Test_Invalid_ISA_04(t *testing.T) {
	_, err := ParseISA("((Foo) I64)")
	assert.Error(t, err)
}

func Test_Type_01(t *testing.T) {
	assert.Equal(t, uint(256), V256.Bits())
	assert.Equal(t, uint(4), F32.Size())
	assert.Equal(t, I64, F64.Integer())
	assert.Equal(t, V128, IntegerOfSize(16))
	assert.Equal(t, F32, FloatOfSize(4))
	assert.True(t, F64.IsFloat())
	assert.False(t, V128.IsFloat())
	assert.Equal(t, "Ity_I1", I1.CName())
	assert.Equal(t, "Iop_AddF64", Op("AddF64").CName())
}

func Test_Host_01(t *testing.T) {
	isa := restrict(Default(), false)
	//
	assert.False(t, isa.Has("Add64Fx4"))
	assert.False(t, isa.Has("V128HLtoV256"))
	assert.True(t, isa.Has("Add64Fx2"))
	assert.Same(t, Default(), restrict(Default(), true))
}
