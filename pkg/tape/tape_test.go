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
package tape

import (
	"testing"

	"github.com/scicomp/go-adrules/pkg/guard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Tape_01(t *testing.T) {
	tp := NewTape(nil)
	assert.Equal(t, uint64(1), tp.Next())
	// Constant inputs record nothing
	lo, hi := tp.Write(0, 0, 0, 0, 1.0, 1.0, 3.0)
	assert.Equal(t, uint64(0), lo)
	assert.Equal(t, uint64(0), hi)
	assert.Equal(t, 0, tp.Len())
}

func Test_Tape_02(t *testing.T) {
	tp := NewTape(nil)
	x := tp.NewInput(1.0)
	y := tp.NewInput(2.0)
	// z = x * y
	zLo, zHi := tp.Write(x, 0, y, 0, 2.0, 1.0, 2.0)
	z := Join(zLo, zHi)
	require.Equal(t, uint64(3), z)
	//
	adjoints := tp.Backward(map[uint64]float64{z: 1.0})
	assert.Equal(t, 2.0, adjoints[x])
	assert.Equal(t, 1.0, adjoints[y])
	// Forward seeds (3, 4) give the same sensitivity as forward mode
	assert.Equal(t, 10.0, 3*adjoints[x]+4*adjoints[y])
}

func Test_Tape_03(t *testing.T) {
	lo, hi := Split(0x1234567890abcdef)
	assert.Equal(t, uint64(0x90abcdef), lo)
	assert.Equal(t, uint64(0x12345678), hi)
	assert.Equal(t, uint64(0x1234567890abcdef), Join(lo, hi))
	// Upper bits of the lower layer are ignored
	assert.Equal(t, uint64(0x100000002), Join(0xffffffff00000002, 1))
}

func Test_Tape_04(t *testing.T) {
	var (
		g  guard.Guard
		tp = NewTape(&g)
		x  = tp.NewInput(1.0)
	)
	//
	err := g.Do(func() error {
		assert.Equal(t, uint64(0), tp.Add(x, 0, -1, 0, -1))
		return nil
	})
	//
	require.NoError(t, err)
	assert.Equal(t, 1, tp.Len())
	assert.Equal(t, uint64(2), tp.Add(x, 0, -1, 0, -1))
}

func Test_Tape_05(t *testing.T) {
	tp := NewTape(nil)
	x := tp.NewInput(1.0)
	// y = x + x; z = y * x
	y := tp.Add(x, x, 1, 1, 2)
	z := tp.Add(y, x, 1, 2, 2)
	//
	adjoints := tp.Backward(map[uint64]float64{z: 1.0, 0: 5.0})
	// dz/dx = 2x + 2x = 4
	assert.Equal(t, 4.0, adjoints[x])
	assert.Equal(t, 0.0, adjoints[0])
	assert.Equal(t, "(2, 1, 1, 2) = 2", tp.Entry(z).String())
}
