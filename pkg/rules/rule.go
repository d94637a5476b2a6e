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

	"github.com/scicomp/go-adrules/pkg/catalog"
	"github.com/scicomp/go-adrules/pkg/ir"
)

// Mode identifies the kind of rule generated for an operation.
type Mode uint8

const (
	// Forward propagates derivatives alongside values (dot values).
	Forward Mode = iota
	// ForwardDebug is forward mode which additionally records each value
	// and its derivative, for comparison against difference quotients.
	ForwardDebug
	// Reverse records fan-in nodes on a tape (bar values).
	Reverse
	// Taint propagates activity and discreteness flags, warning about bit
	// tricks.
	Taint
)

// Modes lists every mode, in order.
var Modes = []Mode{Forward, ForwardDebug, Reverse, Taint}

var modeNames = [...]string{"dot", "dot-dqd", "bar", "trick"}

// ParseMode converts a mode name (e.g. "dot" or "bar") into a mode.
func ParseMode(name string) (Mode, error) {
	for i, n := range modeNames {
		if n == name {
			return Mode(i), nil
		}
	}
	//
	return 0, fmt.Errorf("unknown mode \"%s\"", name)
}

func (m Mode) String() string {
	return modeNames[m]
}

// Results returns the names of the results computed by rules of this mode.
func (m Mode) Results() []string {
	switch m {
	case Forward, ForwardDebug:
		return []string{"dotvalue"}
	case Reverse:
		return []string{"indexLo", "indexHi"}
	default:
		return []string{"flagsLo", "flagsHi"}
	}
}

// Shadows returns the names of the shadow layers of operand n under this
// mode, e.g. "d2" in forward mode or "i2Lo" and "i2Hi" in reverse mode.
func (m Mode) Shadows(n uint) []string {
	switch m {
	case Forward, ForwardDebug:
		return []string{fmt.Sprintf("d%d", n)}
	case Reverse:
		return []string{fmt.Sprintf("i%dLo", n), fmt.Sprintf("i%dHi", n)}
	default:
		return []string{fmt.Sprintf("f%dLo", n), fmt.Sprintf("f%dHi", n)}
	}
}

// Rule is the body generated for a given operation under a given mode.  A
// rule is either a ForwardRule, a ReverseRule or a TaintRule, and is never
// modified once generated.
type Rule interface {
	// Descriptor returns the operation this rule is for.
	Descriptor() *catalog.Descriptor
	// Mode returns the mode this rule was generated for.
	Mode() Mode
	// Body returns the statements computing this rule's results.  Operands
	// are named arg1, arg2, etc., and their shadows as given by the mode.
	Body() *ir.Body
	// SuppressDebug indicates that this rule contains no diagnostic output,
	// for example because the operation produces no floating-point value.
	SuppressDebug() bool
	//
	isRule()
}

type base struct {
	desc     *catalog.Descriptor
	body     *ir.Body
	suppress bool
}

// Descriptor implementation for Rule interface.
func (p *base) Descriptor() *catalog.Descriptor { return p.desc }

// Body implementation for Rule interface.
func (p *base) Body() *ir.Body { return p.body }

// SuppressDebug implementation for Rule interface.
func (p *base) SuppressDebug() bool { return p.suppress }

func (p *base) isRule() {}

// ForwardRule computes the derivative of an operation's result ("dotvalue")
// from its operands and their derivatives.
type ForwardRule struct {
	base
	// Whether value/derivative pairs are recorded.
	Debug bool
}

// Mode implementation for Rule interface.
func (p *ForwardRule) Mode() Mode {
	if p.Debug {
		return ForwardDebug
	}
	//
	return Forward
}

// ReverseRule records an operation on the tape, computing the tape index of
// its result as two layers ("indexLo" and "indexHi").
type ReverseRule struct {
	base
}

// Mode implementation for Rule interface.
func (p *ReverseRule) Mode() Mode { return Reverse }

// TaintRule computes the activity ("flagsLo") and discreteness ("flagsHi")
// flags of an operation's result.
type TaintRule struct {
	base
}

// Mode implementation for Rule interface.
func (p *TaintRule) Mode() Mode { return Taint }
