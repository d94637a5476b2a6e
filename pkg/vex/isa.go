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
	_ "embed"
	"fmt"
	"slices"
	"sync"

	"github.com/scicomp/go-adrules/pkg/sexp"
)

//go:embed ops.lisp
var defaultTable string

// ISA is an enumeration of the primitive operations available on a target,
// together with their signatures.  An operation not in the ISA must never be
// emitted.
type ISA struct {
	signatures map[Op]Signature
	// Operations in the order they were declared.
	order []Op
}

// Default returns the enumeration of operations embedded in this package.
var Default = sync.OnceValue(func() *ISA {
	isa, err := ParseISA(defaultTable)
	//
	if err != nil {
		panic(fmt.Sprintf("embedded operation table is malformed: %s", err))
	}
	//
	return isa
})

// ParseISA parses an enumeration of operations.  Each entry has the form
// (NAME RESULT ARG...), where RESULT and each ARG is a type name.
func ParseISA(text string) (*ISA, error) {
	terms, err := sexp.ParseAll(text)
	//
	if err != nil {
		return nil, err
	}
	//
	isa := &ISA{signatures: make(map[Op]Signature)}
	//
	for _, term := range terms {
		list, ok := term.(*sexp.List)
		if !ok {
			return nil, fmt.Errorf("expected (NAME RESULT ARG...), found %s", term)
		}
		//
		symbols, ok := list.Symbols()
		if !ok || len(symbols) < 2 {
			return nil, fmt.Errorf("expected (NAME RESULT ARG...), found %s", term)
		}
		//
		name := Op(symbols[0])
		if _, ok := isa.signatures[name]; ok {
			return nil, fmt.Errorf("duplicate operation %s", name)
		}
		//
		types := make([]Type, len(symbols)-1)
		//
		for i, s := range symbols[1:] {
			if types[i], ok = ParseType(s); !ok {
				return nil, fmt.Errorf("unknown type %s in %s", s, term)
			}
		}
		//
		isa.signatures[name] = Signature{Result: types[0], Args: types[1:]}
		isa.order = append(isa.order, name)
	}
	//
	return isa, nil
}

// Lookup returns the signature of a given operation, if it exists.
func (p *ISA) Lookup(op Op) (Signature, bool) {
	sig, ok := p.signatures[op]
	return sig, ok
}

// Has checks whether a given operation exists.
func (p *ISA) Has(op Op) bool {
	_, ok := p.signatures[op]
	return ok
}

// Len returns the number of operations.
func (p *ISA) Len() int {
	return len(p.order)
}

// Ops returns the names of all operations, sorted.
func (p *ISA) Ops() []Op {
	ops := slices.Clone(p.order)
	slices.Sort(ops)
	//
	return ops
}

// Without returns a copy of this enumeration from which the given operations
// have been removed.
func (p *ISA) Without(ops ...Op) *ISA {
	isa := &ISA{signatures: make(map[Op]Signature, len(p.signatures))}
	//
	for _, op := range p.order {
		if !slices.Contains(ops, op) {
			isa.signatures[op] = p.signatures[op]
			isa.order = append(isa.order, op)
		}
	}
	//
	return isa
}
