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
	"fmt"
	"math"
	"testing"

	"github.com/scicomp/go-adrules/pkg/catalog"
	"github.com/scicomp/go-adrules/pkg/diag"
	"github.com/scicomp/go-adrules/pkg/helper"
	"github.com/scicomp/go-adrules/pkg/interp"
	"github.com/scicomp/go-adrules/pkg/tape"
	"github.com/scicomp/go-adrules/pkg/vex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Step and tolerance of central difference quotients, for operations whose
// narrowest floating-point lane has a given width.
func steps(width uint) (float64, float64) {
	if width == 4 {
		return 1.0 / 64, 1e-3
	}
	//
	return 1e-4, 1e-6
}

// Narrowest lane width amongst the result and differentiable operands of an
// operation.  Perturbations of single precision operands must be visible at
// single precision, even when the result is double precision.
func narrowest(d *catalog.Descriptor) uint {
	width := laneWidth(d, d.Result())
	//
	for _, n := range d.DiffInputs {
		width = min(width, laneWidth(d, d.Signature.Args[n-1]))
	}
	//
	return width
}

func Test_Steps_01(t *testing.T) {
	c := defaultCatalog(t)
	//
	for _, name := range []vex.Op{"F32toF64", "F64toF32", "AddF32", "Mul32Fx4"} {
		d, err := c.Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, uint(4), narrowest(d), name)
	}
	//
	d, err := c.Lookup("AddF64")
	require.NoError(t, err)
	assert.Equal(t, uint(8), narrowest(d))
}

func Test_Forward_DifferenceQuotients_01(t *testing.T) {
	for _, d := range continuous(defaultCatalog(t)) {
		t.Run(string(d.Name), func(t *testing.T) {
			var (
				width   = laneWidth(d, d.Result())
				h, tol  = steps(narrowest(d))
				r       = ruleFor(t, Forward, d.Name)
				dot     = interp.Unpack(run(t, nil, r, forwardEnv(d, 0))[0], width, d.Lanes)
				above   = apply(t, d, forwardEnv(d, h))
				below   = apply(t, d, forwardEnv(d, -h))
				message = func(k int) string { return fmt.Sprintf("lane %d", k) }
			)
			//
			for k := range dot {
				quotient := (above[k] - below[k]) / (2 * h)
				assert.InDelta(t, quotient, dot[k], tol*(1+math.Abs(dot[k])), message(k))
			}
		})
	}
}

// Bind the index layers of every differentiable operand, recording a fresh
// input on the tape for each of its lanes.  Returns the indices of the inputs,
// by operand position and lane.
func reverseEnv(d *catalog.Descriptor, tp *tape.Tape) (interp.Env, map[uint][]uint64) {
	var (
		env    = forwardEnv(d, 0)
		inputs = make(map[uint][]uint64)
	)
	//
	for _, n := range d.DiffInputs {
		var (
			ty      = d.Signature.Args[n-1]
			indices = make([]uint64, d.Lanes)
			shadows = Reverse.Shadows(n)
		)
		//
		for k := range indices {
			indices[k] = tp.NewInput(valueOf(n-d.Operand(1), uint(k)))
		}
		//
		env[shadows[0]] = packWords(laneWidth(d, ty), indices)
		env[shadows[1]] = interp.Value{}
		inputs[n] = indices
	}
	//
	return env, inputs
}

func Test_Reverse_Consistency_01(t *testing.T) {
	for _, d := range continuous(defaultCatalog(t)) {
		t.Run(string(d.Name), func(t *testing.T) {
			var (
				width       = laneWidth(d, d.Result())
				tp          = tape.NewTape(nil)
				rt          = &helper.Runtime{Tape: tp}
				env, inputs = reverseEnv(d, tp)
				before      = tp.Len()
				dot         = interp.Unpack(run(t, nil, ruleFor(t, Forward, d.Name), forwardEnv(d, 0))[0], width, d.Lanes)
				results     = run(t, rt, ruleFor(t, Reverse, d.Name), env)
				los         = unpackWords(results[0], width, d.Lanes)
				his         = unpackWords(results[1], width, d.Lanes)
			)
			//
			for k := range d.Lanes {
				var (
					index    = tape.Join(los[k], his[k])
					adjoints = tp.Backward(map[uint64]float64{index: 1})
					sum      float64
				)
				//
				for _, n := range d.DiffInputs {
					sum += seedOf(n-d.Operand(1), k) * adjoints[inputs[n][k]]
				}
				//
				assert.InDelta(t, dot[k], sum, 1e-5*(1+math.Abs(dot[k])), "lane %d", k)
			}
			// One node per lane, or two for three differentiable operands
			if d.Family.IsArithmetic() {
				writes := 1
				if len(d.DiffInputs) == 3 {
					writes = 2
				}
				//
				if !d.LowestLaneOnly {
					writes *= int(d.Lanes)
				}
				//
				assert.Equal(t, writes, tp.Len()-before)
			}
		})
	}
}

// Shift every value and derivative in a given lane of every floating-point
// operand.
func perturbLane(d *catalog.Descriptor, env interp.Env, lane uint) interp.Env {
	perturbed := interp.Env{}
	//
	for name, v := range env {
		perturbed[name] = v
	}
	//
	for n := d.Operand(1); n <= d.Arity; n++ {
		ty := d.Signature.Args[n-1]
		//
		for _, name := range []string{argName(n), Forward.Shadows(n)[0]} {
			xs := interp.Unpack(env[name], laneWidth(d, ty), d.Lanes)
			xs[lane] += 1
			perturbed[name] = interp.Pack(laneWidth(d, ty), xs...)
		}
	}
	//
	return perturbed
}

func Test_Forward_LaneIndependence_01(t *testing.T) {
	for _, name := range []string{"Add32Fx4", "Mul64Fx4", "Min32Fx8", "Sqrt32Fx8"} {
		var (
			d     = lookup(t, vex.Op(name))
			r     = ruleFor(t, Forward, d.Name)
			width = laneWidth(d, d.Result())
			env   = forwardEnv(d, 0)
			base  = unpackWords(run(t, nil, r, env)[0], width, d.Lanes)
			moved = unpackWords(run(t, nil, r, perturbLane(d, env, 2))[0], width, d.Lanes)
		)
		//
		for k := range d.Lanes {
			if k == 2 {
				assert.NotEqual(t, base[k], moved[k], name)
			} else {
				assert.Equal(t, base[k], moved[k], "%s lane %d", name, k)
			}
		}
	}
}

func Test_Taint_LaneIndependence_01(t *testing.T) {
	for _, name := range []string{"Add32Fx4", "Mul64Fx4", "Min32Fx8"} {
		var (
			d     = lookup(t, vex.Op(name))
			r     = ruleFor(t, Taint, d.Name)
			rt    = &helper.Runtime{Sink: &diag.Recorder{}}
			width = laneWidth(d, d.Result())
			env   = forwardEnv(d, 0)
			flags = make([]uint64, d.Lanes)
		)
		//
		for _, n := range d.DiffInputs {
			env[Taint.Shadows(n)[0]] = interp.Value{}
			env[Taint.Shadows(n)[1]] = interp.Value{}
		}
		//
		base := run(t, rt, r, env)
		// Activate the first operand in lane 2 only
		flags[2] = math.MaxUint64 >> (64 - 8*width)
		env[Taint.Shadows(d.DiffInputs[0])[0]] = packWords(width, flags)
		moved := run(t, rt, r, env)
		//
		assert.Equal(t, flags, unpackWords(moved[0], width, d.Lanes), name)
		assert.Equal(t, base[1], moved[1], name)
	}
}

func Test_Forward_LowestLane_01(t *testing.T) {
	for _, name := range []string{"Mul32F0x4", "Min64F0x2", "Div64F0x2", "Sqrt32F0x4"} {
		var (
			d     = lookup(t, vex.Op(name))
			env   = forwardEnv(d, 0)
			dot   = interp.Unpack(run(t, nil, ruleFor(t, Forward, d.Name), env)[0], d.Width, d.Lanes)
			first = interp.Unpack(env["d1"], d.Width, d.Lanes)
		)
		// Upper lanes come from the first operand
		assert.Equal(t, first[1:], dot[1:], name)
	}
}

func Test_Taint_Hazards_01(t *testing.T) {
	for _, name := range []string{"AddF64", "MulF32", "Add64Fx2"} {
		var (
			d     = lookup(t, vex.Op(name))
			r     = ruleFor(t, Taint, d.Name)
			width = laneWidth(d, d.Result())
			mask  = uint64(math.MaxUint64) >> (64 - 8*width)
			env   = forwardEnv(d, 0)
		)
		// Activity and discreteness of each of two operands
		for bits := range 16 {
			var (
				rec      diag.Recorder
				rt       = &helper.Runtime{Sink: &rec}
				active   bool
				hazards  int
				expected = make([]uint64, d.Lanes)
			)
			//
			for j, n := range d.DiffInputs {
				var (
					a  = bits>>(2*j)&1 == 1
					x  = bits>>(2*j+1)&1 == 1
					lo = make([]uint64, d.Lanes)
					hi = make([]uint64, d.Lanes)
				)
				//
				for k := range d.Lanes {
					if a {
						lo[k] = mask
					}
					//
					if x {
						hi[k] = mask
					}
				}
				//
				env[Taint.Shadows(n)[0]] = packWords(width, lo)
				env[Taint.Shadows(n)[1]] = packWords(width, hi)
				active = active || a
				//
				if a && x {
					hazards += int(d.Lanes)
				}
			}
			//
			if active {
				for k := range expected {
					expected[k] = mask
				}
			}
			//
			results := run(t, rt, r, env)
			assert.Equal(t, expected, unpackWords(results[0], width, d.Lanes), "%s flags %04b", name, bits)
			assert.Equal(t, make([]uint64, d.Lanes), unpackWords(results[1], width, d.Lanes), name)
			assert.Len(t, rec.Warnings, hazards, "%s flags %04b", name, bits)
			assert.Equal(t, 2*int(d.Lanes), rec.Checked, name)
		}
	}
}

func Test_SuppressDebug_01(t *testing.T) {
	c := defaultCatalog(t)
	//
	for _, d := range c.Descriptors() {
		fwd, err := NewEngine(ForwardDebug).Rule(d)
		require.NoError(t, err)
		assert.Equal(t, !d.DebugResults, fwd.SuppressDebug(), d.Name)
		//
		rev, err := NewEngine(Reverse).Rule(d)
		require.NoError(t, err)
		assert.True(t, rev.SuppressDebug(), d.Name)
		//
		taint, err := NewEngine(Taint).Rule(d)
		require.NoError(t, err)
		//
		if d.Family.IsArithmetic() {
			assert.False(t, taint.SuppressDebug(), d.Name)
		} else if d.Family == catalog.Move || d.Family.IsBitwise() || d.Family == catalog.Shift {
			assert.True(t, taint.SuppressDebug(), d.Name)
		}
	}
}

func Test_ForwardDebug_02(t *testing.T) {
	var (
		quotients diag.Quotients
		rt        = &helper.Runtime{Quotients: &quotients}
		r         = ruleFor(t, ForwardDebug, "AddF64")
	)
	//
	run(t, rt, r, interp.Env{"arg1": interp.Word(0), "arg2": interp.Float64(1), "arg3": interp.Float64(2),
		"d2": interp.Float64(3), "d3": interp.Float64(4)})
	assert.Equal(t, []diag.Quotient{{Value: 3, Dot: 7}}, quotients.Pairs)
	// Recording without a sink is an error
	_, err := interp.NewInterpreter(nil).Run(r.Body(), interp.Env{"arg1": interp.Word(0),
		"arg2": interp.Float64(1), "arg3": interp.Float64(2), "d2": interp.Float64(3), "d3": interp.Float64(4)})
	assert.Error(t, err)
}
