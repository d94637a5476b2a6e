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
package sexp

import "strings"

// SExp is an S-Expression is either a List of zero or more S-Expressions, or
// a Symbol.
type SExp interface {
	// IsList checks whether this S-Expression is a list.
	IsList() bool
	// IsSymbol checks whether this S-Expression is a symbol.
	IsSymbol() bool
	// String generates a string representation.
	String() string
}

// ===================================================================
// List
// ===================================================================

// List represents a list of zero or more S-Expressions.
type List struct {
	Elements []SExp
}

// NOTE: This is used for compile time type checking if the given type
// satisfies the given interface.
var _ SExp = (*List)(nil)

// NewList constructs a list from zero or more elements.
func NewList(elements ...SExp) *List {
	return &List{elements}
}

// IsList sets that is a list.
func (l *List) IsList() bool { return true }

// IsSymbol that a List is not a Symbol.
func (l *List) IsSymbol() bool { return false }

// Len gets the number of elements in this list.
func (l *List) Len() int { return len(l.Elements) }

// Get the ith element of this list.
func (l *List) Get(i int) SExp { return l.Elements[i] }

// Append an element onto this list.
func (l *List) Append(element SExp) {
	l.Elements = append(l.Elements, element)
}

func (l *List) String() string {
	var builder strings.Builder
	//
	builder.WriteString("(")
	//
	for i := 0; i < len(l.Elements); i++ {
		if i != 0 {
			builder.WriteString(" ")
		}

		builder.WriteString(l.Elements[i].String())
	}
	//
	builder.WriteString(")")

	return builder.String()
}

// MatchSymbols matches a list which starts with at least n symbols, of which the
// first m match the given strings.
func (l *List) MatchSymbols(n int, symbols ...string) bool {
	if len(l.Elements) < n || len(symbols) > n {
		return false
	}

	for i := 0; i < n; i++ {
		ith, ok := l.Elements[i].(*Symbol)
		if !ok {
			return false
		} else if i < len(symbols) && ith.Value != symbols[i] {
			return false
		}
	}

	return true
}

// Symbols returns the values of all elements in this list, provided every
// element is a symbol.
func (l *List) Symbols() ([]string, bool) {
	values := make([]string, len(l.Elements))
	//
	for i, e := range l.Elements {
		sym, ok := e.(*Symbol)
		if !ok {
			return nil, false
		}

		values[i] = sym.Value
	}

	return values, true
}

// ===================================================================
// Symbol
// ===================================================================

// Symbol represents a terminating symbol.
type Symbol struct {
	Value string
}

// NOTE: This is used for compile time type checking if the given type
// satisfies the given interface.
var _ SExp = (*Symbol)(nil)

// NewSymbol constructs a new symbol.
func NewSymbol(value string) *Symbol {
	return &Symbol{value}
}

// IsList sets that A Symbol is not a List.
func (s *Symbol) IsList() bool { return false }

// IsSymbol sets tha is a Symbol.
func (s *Symbol) IsSymbol() bool { return true }

func (s *Symbol) String() string { return s.Value }
