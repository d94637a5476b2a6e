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
	"fmt"

	"github.com/scicomp/go-adrules/pkg/guard"
)

// Writer appends fan-in nodes to a tape.  Indices are split into two 32-bit
// layers, each carried in the lower half of a 64-bit word.  The zero index
// denotes a constant, which has no upstream dependency.
type Writer interface {
	// Write records a node depending on (up to) two inputs with the given
	// partial derivatives, returning the index of the new node.  If both
	// inputs are constant, no node is recorded and the zero index returned.
	Write(aLo, aHi, bLo, bHi uint64, partialA, partialB float64, value float64) (lo uint64, hi uint64)
}

// Entry is a single node on the tape.
type Entry struct {
	// Indices of the inputs (zero if absent).
	A, B uint64
	// Partial derivatives with respect to each input.
	PartialA, PartialB float64
	// Value computed by the node.
	Value float64
}

func (p Entry) String() string {
	return fmt.Sprintf("(%d, %d, %v, %v) = %v", p.A, p.B, p.PartialA, p.PartialB, p.Value)
}

// Join assembles an index from the lower 32 bits of each of its layers.
func Join(lo uint64, hi uint64) uint64 {
	return (lo & 0xffffffff) | (hi << 32)
}

// Split separates an index into its two layers.
func Split(index uint64) (lo uint64, hi uint64) {
	return index & 0xffffffff, index >> 32
}

// Tape is an append-only, in-memory tape.  Index zero is reserved as the
// constant sentinel, so the first node recorded has index 1.
type Tape struct {
	// Entries, where entries[0] is the sentinel.
	entries []Entry
	// Suppresses recording whilst held.
	guard *guard.Guard
}

// NewTape constructs an empty tape.  Whilst the given guard (which may be nil)
// is held, nothing is recorded and every write returns the zero index.
func NewTape(g *guard.Guard) *Tape {
	return &Tape{[]Entry{{}}, g}
}

// Write implementation for the Writer interface.
func (p *Tape) Write(aLo, aHi, bLo, bHi uint64, partialA, partialB float64, value float64) (uint64, uint64) {
	return Split(p.Add(Join(aLo, aHi), Join(bLo, bHi), partialA, partialB, value))
}

// Add records a node with given inputs and partial derivatives, returning its
// index.  When both inputs are constant, the result is also constant and
// nothing is recorded.
func (p *Tape) Add(a uint64, b uint64, partialA float64, partialB float64, value float64) uint64 {
	if a == 0 && b == 0 {
		return 0
	} else if p.guard.Held() {
		return 0
	}
	//
	p.entries = append(p.entries, Entry{a, b, partialA, partialB, value})
	//
	return uint64(len(p.entries) - 1)
}

// NewInput records an independent variable, returning its index.
func (p *Tape) NewInput(value float64) uint64 {
	p.entries = append(p.entries, Entry{Value: value})
	//
	return uint64(len(p.entries) - 1)
}

// Len returns the number of nodes recorded.
func (p *Tape) Len() int {
	return len(p.entries) - 1
}

// Next returns the index the next recorded node will receive.
func (p *Tape) Next() uint64 {
	return uint64(len(p.entries))
}

// Entry returns the node with a given index.
func (p *Tape) Entry(index uint64) Entry {
	return p.entries[index]
}

// Entries returns the nodes recorded, starting from index 1.
func (p *Tape) Entries() []Entry {
	return p.entries[1:]
}

// Backward propagates adjoints from the given seeds (indexed by node) through
// the tape in reverse order, returning the adjoint of every node.  Seeds for
// the constant index are ignored.
func (p *Tape) Backward(seeds map[uint64]float64) []float64 {
	adjoints := make([]float64, len(p.entries))
	//
	for i, v := range seeds {
		if i != 0 && i < uint64(len(adjoints)) {
			adjoints[i] += v
		}
	}
	//
	for i := len(p.entries) - 1; i > 0; i-- {
		e := p.entries[i]
		a := adjoints[i]
		//
		if a == 0 {
			continue
		}
		//
		adjoints[e.A] += e.PartialA * a
		adjoints[e.B] += e.PartialB * a
	}
	//
	adjoints[0] = 0
	//
	return adjoints
}
