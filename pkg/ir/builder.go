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
	"fmt"

	"github.com/scicomp/go-adrules/pkg/vex"
)

// Builder accumulates the statements of a rule body, ensuring every bound
// variable has a unique name.
type Builder struct {
	stmts []Stmt
	// Number of times each name hint has been used.
	names map[string]uint
}

// NewBuilder constructs an empty builder.  The given names are reserved, so
// that no statement will bind them (e.g. operand names).
func NewBuilder(reserved ...string) *Builder {
	names := make(map[string]uint)
	//
	for _, name := range reserved {
		names[name] = 1
	}
	//
	return &Builder{nil, names}
}

// Fresh returns a name derived from a hint which has not been used before.
func (p *Builder) Fresh(hint string) string {
	n, ok := p.names[hint]
	p.names[hint] = n + 1
	//
	if !ok {
		return hint
	}
	//
	for {
		name := fmt.Sprintf("%s_%d", hint, n)
		//
		if _, ok := p.names[name]; !ok {
			p.names[name] = 1
			return name
		}
		//
		n++
	}
}

// Let binds an expression to a fresh variable derived from a given hint.
func (p *Builder) Let(hint string, value Expr) *Var {
	v := NewVar(p.Fresh(hint), value.Type())
	p.stmts = append(p.stmts, &Let{v, value})
	//
	return v
}

// Dirty adds a call to a helper with side effects, binding each of its I64
// results to a fresh variable derived from the corresponding hint.
func (p *Builder) Dirty(helper string, hints []string, args ...Expr) []*Var {
	var (
		results = make([]*Var, len(hints))
		vec     string
	)
	//
	for i, hint := range hints {
		results[i] = NewVar(p.Fresh(hint), vex.I64)
	}
	//
	if len(hints) > 0 {
		vec = p.Fresh(hints[0] + "_vec")
	}
	//
	p.stmts = append(p.stmts, &Dirty{helper, args, results, vec})
	//
	return results
}

// Effect adds a call to a helper with side effects and no results.
func (p *Builder) Effect(helper string, args ...Expr) {
	p.stmts = append(p.stmts, &Dirty{Helper: helper, Args: args})
}

// Build finalises this builder into a body with given requirements and
// results.
func (p *Builder) Build(requires []*Var, results ...*Var) *Body {
	return &Body{requires, p.stmts, results}
}

// Len returns the number of statements accumulated so far.
func (p *Builder) Len() int {
	return len(p.stmts)
}
