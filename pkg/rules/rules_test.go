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
package rules

import (
	"math"
	"testing"

	"github.com/scicomp/go-adrules/pkg/catalog"
	"github.com/scicomp/go-adrules/pkg/diag"
	"github.com/scicomp/go-adrules/pkg/helper"
	"github.com/scicomp/go-adrules/pkg/interp"
	"github.com/scicomp/go-adrules/pkg/ir"
	"github.com/scicomp/go-adrules/pkg/tape"
	"github.com/scicomp/go-adrules/pkg/vex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Harness
// ============================================================================

func defaultCatalog(t *testing.T) *catalog.Catalog {
	c, err := catalog.Build(vex.Default())
	require.NoError(t, err)
	//
	return c
}

func lookup(t *testing.T, name vex.Op) *catalog.Descriptor {
	d, err := defaultCatalog(t).Lookup(name)
	require.NoError(t, err)
	//
	return d
}

func ruleFor(t *testing.T, mode Mode, name vex.Op) Rule {
	r, err := NewEngine(mode).Rule(lookup(t, name))
	require.NoError(t, err)
	//
	return r
}

func run(t *testing.T, rt *helper.Runtime, r Rule, env interp.Env) []interp.Value {
	results, err := interp.NewInterpreter(rt).Run(r.Body(), env)
	require.NoError(t, err)
	//
	return results
}

// Size in bytes of each lane of a value of a given type, for an operation
// with a given layout.
func laneWidth(d *catalog.Descriptor, ty vex.Type) uint {
	if ty.IsFloat() {
		return ty.Size()
	}
	//
	return d.Width
}

// Pack the lanes of a floating-point operand.
func packFloats(d *catalog.Descriptor, ty vex.Type, fn func(k uint) float64) interp.Value {
	xs := make([]float64, d.Lanes)
	//
	for k := range d.Lanes {
		xs[k] = fn(k)
	}
	//
	return interp.Pack(laneWidth(d, ty), xs...)
}

// Pack integer lanes of a given width.
func packWords(width uint, words []uint64) interp.Value {
	var v interp.Value
	//
	for i, w := range words {
		if width == 8 {
			v[i] = w
		} else {
			v[i/2] |= w << (32 * (i % 2))
		}
	}
	//
	return v
}

// Unpack integer lanes of a given width.
func unpackWords(v interp.Value, width uint, lanes uint) []uint64 {
	words := make([]uint64, lanes)
	//
	for k := range lanes {
		if width == 8 {
			words[k] = v[k]
		} else {
			words[k] = (v[k/2] >> (32 * (k % 2))) & 0xffffffff
		}
	}
	//
	return words
}

// Value of the j-th floating-point operand in lane k.
func valueOf(j uint, k uint) float64 {
	return 1.25 + 0.5*float64(j) + 0.375*float64(k)
}

// Derivative of the j-th floating-point operand in lane k.
func seedOf(j uint, k uint) float64 {
	return 0.5 + 0.25*float64(j) - 0.125*float64(k)
}

// Environment binding every operand of an operation, with each differentiable
// operand perturbed by h in the direction of its derivative, and every
// derivative bound.
func forwardEnv(d *catalog.Descriptor, h float64) interp.Env {
	env := interp.Env{}
	//
	if d.Rounded {
		env["arg1"] = interp.Word(0)
	}
	//
	for n := d.Operand(1); n <= d.Arity; n++ {
		var (
			j    = n - d.Operand(1)
			ty   = d.Signature.Args[n-1]
			diff = d.RequiresInput(n)
		)
		//
		env[Forward.Shadows(n)[0]] = packFloats(d, ty, func(k uint) float64 { return seedOf(j, k) })
		env[argName(n)] = packFloats(d, ty, func(k uint) float64 {
			if diff {
				return valueOf(j, k) + h*seedOf(j, k)
			}
			//
			return valueOf(j, k)
		})
	}
	//
	return env
}

func argName(n uint) string {
	return []string{"", "arg1", "arg2", "arg3", "arg4"}[n]
}

// Apply an operation to the operands of an environment.
func apply(t *testing.T, d *catalog.Descriptor, env interp.Env) []float64 {
	var (
		args  = make([]ir.Expr, d.Arity)
		width = laneWidth(d, d.Result())
	)
	//
	for i, ty := range d.Signature.Args {
		args[i] = ir.NewVar(argName(uint(i+1)), ty)
	}
	//
	r, err := interp.NewInterpreter(nil).Eval(ir.NewApply(d.Name, args...), env)
	require.NoError(t, err)
	//
	return interp.Unpack(r, width, d.Lanes)
}

// Operations on floating-point values (with continuous derivatives).
func continuous(c *catalog.Catalog) []*catalog.Descriptor {
	var ds []*catalog.Descriptor
	//
	for _, d := range c.Descriptors() {
		if d.Family.IsArithmetic() || d.Family == catalog.Widen || d.Family == catalog.Narrow {
			ds = append(ds, d)
		}
	}
	//
	return ds
}

// ============================================================================
// Tests
// ============================================================================

func Test_Mode_01(t *testing.T) {
	for _, m := range Modes {
		parsed, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}
	//
	_, err := ParseMode("tangent")
	assert.Error(t, err)
	assert.Equal(t, []string{"i3Lo", "i3Hi"}, Reverse.Shadows(3))
	assert.Equal(t, []string{"flagsLo", "flagsHi"}, Taint.Results())
}

func Test_Generate_01(t *testing.T) {
	c := defaultCatalog(t)
	//
	for _, mode := range Modes {
		rules, err := Generate(c, mode)
		require.NoError(t, err)
		require.Len(t, rules, c.Len())
		//
		for _, r := range rules {
			assert.Equal(t, mode, r.Mode())
			// Every operation applied exists
			for _, op := range r.Body().Ops() {
				assert.True(t, c.ISA().Has(op), "%s rule for %s applies %s", mode, r.Descriptor().Name, op)
				assert.NotContains(t, catalog.KnownMissing, op)
			}
		}
	}
}

func Test_Forward_01(t *testing.T) {
	r := ruleFor(t, Forward, "AddF64")
	env := interp.Env{"arg1": interp.Word(0), "arg2": interp.Float64(1), "arg3": interp.Float64(2),
		"d2": interp.Float64(3), "d3": interp.Float64(4)}
	//
	results := run(t, nil, r, env)
	assert.Equal(t, interp.Float64(7), results[0])
	assert.Equal(t, []float64{3}, apply(t, r.Descriptor(), env))
	// Missing derivative
	delete(env, "d3")
	//
	_, err := interp.NewInterpreter(nil).Run(r.Body(), env)
	assert.ErrorIs(t, err, interp.ErrNoDerivative)
}

func Test_Forward_02(t *testing.T) {
	r := ruleFor(t, Forward, "MulF64")
	env := interp.Env{"arg1": interp.Word(0), "arg2": interp.Float64(1), "arg3": interp.Float64(2),
		"d2": interp.Float64(3), "d3": interp.Float64(4)}
	//
	assert.Equal(t, interp.Float64(10), run(t, nil, r, env)[0])
}

func Test_Forward_03(t *testing.T) {
	// Negative values flip the derivative
	r := ruleFor(t, Forward, "AbsF32")
	results := run(t, nil, r, interp.Env{"arg1": interp.Float32(-2), "d1": interp.Float32(3)})
	assert.Equal(t, interp.Float32(-3), results[0])
	//
	results = run(t, nil, r, interp.Env{"arg1": interp.Float32(2), "d1": interp.Float32(3)})
	assert.Equal(t, interp.Float32(3), results[0])
}

func Test_Forward_04(t *testing.T) {
	// Conversions from integers have a zero derivative, without requiring one
	r := ruleFor(t, Forward, "I64StoF64")
	assert.Empty(t, r.Body().Requires)
	assert.Equal(t, interp.Float64(0), run(t, nil, r, interp.Env{"arg1": interp.Word(0), "arg2": interp.Word(5)})[0])
	// Data movement applies to derivatives
	r = ruleFor(t, Forward, "32HLto64")
	results := run(t, nil, r, interp.Env{"arg1": interp.Word(1), "arg2": interp.Word(2), "d1": interp.Word(3),
		"d2": interp.Word(4)})
	assert.Equal(t, interp.Word(3<<32|4), results[0])
	// Shifts apply the operand's amount to its derivative
	r = ruleFor(t, Forward, "Shl32")
	assert.Len(t, r.Body().Requires, 1)
	results = run(t, nil, r, interp.Env{"arg1": interp.Word(1), "arg2": interp.Word(4), "d1": interp.Word(3)})
	assert.Equal(t, interp.Word(48), results[0])
}

func Test_Forward_05(t *testing.T) {
	// Absolute value by masking the sign bit
	r := ruleFor(t, Forward, "And64")
	results := run(t, nil, r, interp.Env{"arg1": interp.Float64(-2), "d1": interp.Float64(3),
		"arg2": interp.Word(math.MaxInt64), "d2": interp.Word(0)})
	assert.Equal(t, interp.Float64(-3), results[0])
	// Negation of both lanes by flipping sign bits
	r = ruleFor(t, Forward, "XorV128")
	sign := interp.Value{1 << 63, 1 << 63}
	results = run(t, nil, r, interp.Env{"arg1": interp.Pack(8, 1, 2), "d1": interp.Pack(8, 3, 4), "arg2": sign,
		"d2": interp.Value{}})
	assert.Equal(t, []float64{-3, -4}, interp.Unpack(results[0], 8, 2))
}

func Test_ForwardDebug_01(t *testing.T) {
	var (
		quotients diag.Quotients
		rt        = &helper.Runtime{Quotients: &quotients}
		r         = ruleFor(t, ForwardDebug, "Add32Fx2")
		env       = interp.Env{"arg1": interp.Pack(4, 1, 2), "arg2": interp.Pack(4, 3, 4), "d1": interp.Pack(4, 1, 1),
			"d2": interp.Pack(4, 0.5, 2)}
	)
	//
	assert.False(t, r.SuppressDebug())
	assert.Equal(t, []float64{1.5, 3}, interp.Unpack(run(t, rt, r, env)[0], 4, 2))
	assert.Equal(t, []diag.Quotient{{Value: 4, Dot: 1.5}, {Value: 6, Dot: 3}}, quotients.Pairs)
	// Bitwise operations record nothing
	assert.True(t, ruleFor(t, ForwardDebug, "And64").SuppressDebug())
	assert.NotContains(t, ruleFor(t, ForwardDebug, "And64").Body().Helpers(), helper.DiffQuotDebug)
	// Plain forward mode records nothing either
	assert.True(t, ruleFor(t, Forward, "AddF64").SuppressDebug())
}

func Test_Reverse_01(t *testing.T) {
	var (
		tp = tape.NewTape(nil)
		rt = &helper.Runtime{Tape: tp}
		r  = ruleFor(t, Reverse, "MulF64")
		x  = tp.NewInput(1)
		y  = tp.NewInput(2)
	)
	//
	results := run(t, rt, r, interp.Env{"arg1": interp.Word(0), "arg2": interp.Float64(1), "arg3": interp.Float64(2),
		"i2Lo": interp.Word(x), "i2Hi": interp.Word(0), "i3Lo": interp.Word(y), "i3Hi": interp.Word(0)})
	z := tape.Join(results[0].Uint64(), results[1].Uint64())
	require.Equal(t, uint64(3), z)
	assert.Equal(t, tape.Entry{A: x, B: y, PartialA: 2, PartialB: 1, Value: 2}, tp.Entry(z))
	//
	adjoints := tp.Backward(map[uint64]float64{z: 1})
	assert.Equal(t, 2.0, adjoints[x])
	assert.Equal(t, 1.0, adjoints[y])
	assert.Equal(t, 10.0, 3*adjoints[x]+4*adjoints[y])
}

func Test_Reverse_02(t *testing.T) {
	var (
		tp = tape.NewTape(nil)
		rt = &helper.Runtime{Tape: tp}
		r  = ruleFor(t, Reverse, "MAddF64")
		a  = tp.NewInput(2)
		b  = tp.NewInput(3)
		c  = tp.NewInput(4)
	)
	//
	results := run(t, rt, r, interp.Env{"arg1": interp.Word(0), "arg2": interp.Float64(2), "arg3": interp.Float64(3),
		"arg4": interp.Float64(4), "i2Lo": interp.Word(a), "i2Hi": interp.Word(0), "i3Lo": interp.Word(b),
		"i3Hi": interp.Word(0), "i4Lo": interp.Word(c), "i4Hi": interp.Word(0)})
	// Two chained nodes
	require.Equal(t, 5, tp.Len())
	assert.Equal(t, tape.Entry{A: a, B: b, PartialA: 3, PartialB: 2, Value: 0}, tp.Entry(4))
	assert.Equal(t, tape.Entry{A: 4, B: c, PartialA: 1, PartialB: 1, Value: 10}, tp.Entry(5))
	assert.Equal(t, uint64(5), results[0].Uint64())
}

func Test_Reverse_03(t *testing.T) {
	var (
		tp = tape.NewTape(nil)
		rt = &helper.Runtime{Tape: tp}
	)
	// Constant operands record nothing
	r := ruleFor(t, Reverse, "AddF64")
	zero := interp.Word(0)
	results := run(t, rt, r, interp.Env{"arg1": zero, "arg2": interp.Float64(1), "arg3": interp.Float64(2),
		"i2Lo": zero, "i2Hi": zero, "i3Lo": zero, "i3Hi": zero})
	assert.Equal(t, []interp.Value{zero, zero}, results)
	assert.Equal(t, 0, tp.Len())
	// Conversions produce constants
	r = ruleFor(t, Reverse, "RoundF64toInt")
	results = run(t, rt, r, interp.Env{"arg1": zero, "arg2": interp.Float64(1.5)})
	assert.Equal(t, []interp.Value{zero, zero}, results)
	// Width conversions pass indices through
	x := tp.NewInput(1)
	r = ruleFor(t, Reverse, "F32toF64")
	results = run(t, rt, r, interp.Env{"arg1": interp.Float32(1), "i1Lo": interp.Word(x), "i1Hi": zero})
	assert.Equal(t, []interp.Value{interp.Word(x), zero}, results)
}

func Test_Reverse_04(t *testing.T) {
	var (
		tp = tape.NewTape(nil)
		rt = &helper.Runtime{Tape: tp}
		r  = ruleFor(t, Reverse, "Xor64")
		x  = tp.NewInput(2)
	)
	// Negation by flipping the sign bit
	results := run(t, rt, r, interp.Env{"arg1": interp.Float64(2), "i1Lo": interp.Word(x), "i1Hi": interp.Word(0),
		"arg2": interp.Word(1 << 63), "i2Lo": interp.Word(0), "i2Hi": interp.Word(0)})
	//
	assert.Equal(t, interp.Word(2), results[0])
	assert.Equal(t, tape.Entry{A: x, PartialA: -1, Value: -2}, tp.Entry(2))
}

func Test_Taint_01(t *testing.T) {
	var (
		rec  diag.Recorder
		rt   = &helper.Runtime{Sink: &rec}
		r    = ruleFor(t, Taint, "I64StoF64")
		ones = interp.Word(math.MaxUint64)
		zero = interp.Word(0)
	)
	// Conversions from integers are discrete
	results := run(t, rt, r, interp.Env{"arg1": zero, "arg2": interp.Word(3), "f2Lo": ones, "f2Hi": ones})
	assert.Equal(t, []interp.Value{ones, ones}, results)
	assert.Empty(t, rec.Warnings)
	assert.True(t, r.SuppressDebug())
	// Rounding an active discrete value warns
	r = ruleFor(t, Taint, "RoundF64toInt")
	results = run(t, rt, r, interp.Env{"arg1": zero, "arg2": interp.Float64(3), "f2Lo": ones, "f2Hi": ones})
	assert.Equal(t, []interp.Value{ones, ones}, results)
	assert.Len(t, rec.Warnings, 1)
	assert.False(t, r.SuppressDebug())
}

func Test_Taint_02(t *testing.T) {
	var (
		r    = ruleFor(t, Taint, "Shl64")
		ones = interp.Word(math.MaxUint64)
		zero = interp.Word(0)
	)
	// Shifting by zero preserves discreteness
	results := run(t, nil, r, interp.Env{"arg1": interp.Word(1), "arg2": zero, "f1Lo": ones, "f1Hi": zero})
	assert.Equal(t, []interp.Value{ones, zero}, results)
	// Shifting by a non-zero amount is discrete
	results = run(t, nil, r, interp.Env{"arg1": interp.Word(1), "arg2": interp.Word(3), "f1Lo": ones, "f1Hi": zero})
	assert.Equal(t, []interp.Value{interp.Word(0xffff_ffff_ffff_fff8), ones}, results)
	assert.True(t, r.SuppressDebug())
}

func Test_Taint_03(t *testing.T) {
	var (
		rec  diag.Recorder
		rt   = &helper.Runtime{Sink: &rec}
		r    = ruleFor(t, Taint, "F32toF64")
		ones = interp.Word(0xffffffff)
	)
	// Single precision flags are examined in the lower half
	results := run(t, rt, r, interp.Env{"arg1": interp.Float32(1), "f1Lo": ones, "f1Hi": ones})
	assert.Equal(t, []interp.Value{interp.Word(math.MaxUint64), interp.Word(0)}, results)
	require.Len(t, rec.Warnings, 1)
	assert.Equal(t, 4, rec.Warnings[0].Size)
}

func Test_Taint_04(t *testing.T) {
	var (
		r    = ruleFor(t, Taint, "Xor64")
		ones = interp.Word(math.MaxUint64)
		zero = interp.Word(0)
	)
	// Zeroing a register is neither active nor discrete
	results := run(t, nil, r, interp.Env{"arg1": interp.Word(7), "f1Lo": ones, "f1Hi": zero, "arg2": interp.Word(7),
		"f2Lo": ones, "f2Hi": zero})
	assert.Equal(t, []interp.Value{zero, zero}, results)
}
