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
	"fmt"
	"math"
	"strings"

	"github.com/scicomp/go-adrules/pkg/diag"
	"github.com/scicomp/go-adrules/pkg/tape"
)

// Runtime provides the behaviour of the helpers called by rule bodies,
// connecting them to a tape, a diagnostic sink and a recorder of difference
// quotients.  Any of these may be nil, in which case calling a helper that
// requires it fails.
type Runtime struct {
	Tape      tape.Writer
	Sink      diag.Sink
	Quotients diag.QuotientSink
}

// Helpers without side effects, each of whose four operands (and result) is a
// 64-bit word.
var pure = map[string]func(x, xd, y, yd uint64) uint64{
	DotMinMax(false, 4): func(x, xd, y, yd uint64) uint64 { return DotMin(32, x, xd, y, yd) },
	DotMinMax(false, 8): func(x, xd, y, yd uint64) uint64 { return DotMin(64, x, xd, y, yd) },
	DotMinMax(true, 4):  func(x, xd, y, yd uint64) uint64 { return DotMax(32, x, xd, y, yd) },
	DotMinMax(true, 8):  func(x, xd, y, yd uint64) uint64 { return DotMax(64, x, xd, y, yd) },
	DotBitwise("and"):   DotAnd,
	DotBitwise("or"):    DotOr,
	DotBitwise("xor"):   DotXor,
}

// Call invokes a helper without side effects.
func (p *Runtime) Call(name string, args []uint64) (uint64, error) {
	fn, ok := pure[name]
	//
	if !ok {
		return 0, fmt.Errorf("unknown helper %s", name)
	} else if len(args) != 4 {
		return 0, fmt.Errorf("helper %s expects 4 arguments, got %d", name, len(args))
	}
	//
	return fn(args[0], args[1], args[2], args[3]), nil
}

// Dirty invokes a helper with side effects, returning its results.
func (p *Runtime) Dirty(name string, args []uint64) ([]uint64, error) {
	switch {
	case name == WriteToTape:
		if err := p.check(name, args, 7, p.Tape != nil); err != nil {
			return nil, err
		}
		//
		lo, hi := p.Tape.Write(args[0], args[1], args[2], args[3], math.Float64frombits(args[4]),
			math.Float64frombits(args[5]), math.Float64frombits(args[6]))
		//
		return []uint64{lo, hi}, nil
	case name == Warn4 || name == Warn8:
		if err := p.check(name, args, 2, p.Sink != nil); err != nil {
			return nil, err
		}
		//
		size := 8
		if name == Warn4 {
			size = 4
		}
		//
		p.Sink.Warn(args[0], args[1], size)
		//
		return nil, nil
	case name == DiffQuotDebug:
		if err := p.check(name, args, 2, p.Quotients != nil); err != nil {
			return nil, err
		}
		//
		p.Quotients.Record(math.Float64frombits(args[0]), math.Float64frombits(args[1]))
		//
		return nil, nil
	case strings.HasPrefix(name, "dg_bar_bitwise_"):
		if err := p.check(name, args, 6, p.Tape != nil); err != nil {
			return nil, err
		}
		//
		return p.bitwise(name, args, barBitwise)
	case strings.HasPrefix(name, "dg_trick_bitwise_"):
		if err := p.check(name, args, 6, true); err != nil {
			return nil, err
		}
		//
		return p.bitwise(name, args, trickBitwise)
	}
	//
	return nil, fmt.Errorf("unknown helper %s", name)
}

type bitwiseFn func(p *Runtime, x, xLo, xHi, y, yLo, yHi uint64) (uint64, uint64)

var barBitwise = map[string]bitwiseFn{
	BarBitwise("and"): func(p *Runtime, x, xLo, xHi, y, yLo, yHi uint64) (uint64, uint64) {
		return BarAnd(p.Tape, x, xLo, xHi, y, yLo, yHi)
	},
	BarBitwise("or"): func(p *Runtime, x, xLo, xHi, y, yLo, yHi uint64) (uint64, uint64) {
		return BarOr(p.Tape, x, xLo, xHi, y, yLo, yHi)
	},
	BarBitwise("xor"): func(p *Runtime, x, xLo, xHi, y, yLo, yHi uint64) (uint64, uint64) {
		return BarXor(p.Tape, x, xLo, xHi, y, yLo, yHi)
	},
}

var trickBitwise = map[string]bitwiseFn{
	TrickBitwise("and"): func(_ *Runtime, x, xLo, xHi, y, yLo, yHi uint64) (uint64, uint64) {
		return TrickAnd(x, xLo, xHi, y, yLo, yHi)
	},
	TrickBitwise("or"): func(_ *Runtime, x, xLo, xHi, y, yLo, yHi uint64) (uint64, uint64) {
		return TrickOr(x, xLo, xHi, y, yLo, yHi)
	},
	TrickBitwise("xor"): func(_ *Runtime, x, xLo, xHi, y, yLo, yHi uint64) (uint64, uint64) {
		return TrickXor(x, xLo, xHi, y, yLo, yHi)
	},
}

func (p *Runtime) bitwise(name string, args []uint64, table map[string]bitwiseFn) ([]uint64, error) {
	fn, ok := table[name]
	if !ok {
		return nil, fmt.Errorf("unknown helper %s", name)
	}
	//
	lo, hi := fn(p, args[0], args[1], args[2], args[3], args[4], args[5])
	//
	return []uint64{lo, hi}, nil
}

func (p *Runtime) check(name string, args []uint64, n int, available bool) error {
	if len(args) != n {
		return fmt.Errorf("helper %s expects %d arguments, got %d", name, n, len(args))
	} else if !available {
		return fmt.Errorf("helper %s unavailable in this runtime", name)
	}
	//
	return nil
}
