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
	"github.com/scicomp/go-adrules/pkg/vex"
)

// Stmt represents a statement in a rule body.  Statements are executed in
// order and may bind new variables.
type Stmt interface {
	// Binds returns the variables bound by this statement.
	Binds() []*Var
	// String returns a readable rendering of this statement.
	String() string
}

// Let binds the value of an expression to a variable.
type Let struct {
	Var   *Var
	Value Expr
}

// Binds implementation for Stmt interface.
func (p *Let) Binds() []*Var {
	return []*Var{p.Var}
}

func (p *Let) String() string {
	return toLispStmt(p).String()
}

// Dirty is a call to a helper with side effects (e.g. writing to the tape or
// emitting a diagnostic).  A dirty call returns zero or more values of type
// I64, which are bound to its result variables.
type Dirty struct {
	Helper  string
	Args    []Expr
	Results []*Var
	// Name of the vector holding the results when rendered in C.
	Vec string
}

// Binds implementation for Stmt interface.
func (p *Dirty) Binds() []*Var {
	return p.Results
}

func (p *Dirty) String() string {
	return toLispStmt(p).String()
}

// Body is a straight-line sequence of statements computing one or more
// results, guarded by a set of operand shadows which must be available.
type Body struct {
	// Shadows which must be present for this body to apply.  If any is
	// missing, the body produces no result.
	Requires []*Var
	// Statements executed in order.
	Stmts []Stmt
	// Results computed by this body, each bound by some statement.
	Results []*Var
}

// Operands returns the free variables of this body, in order of first use.
// These are the variables which are neither bound by a statement nor
// provided by the environment.
func (p *Body) Operands() []*Var {
	var (
		bound = make(map[string]bool)
		seen  = make(map[string]bool)
		free  []*Var
	)
	//
	var visit func(Expr)
	//
	visit = func(e Expr) {
		Walk(e, func(e Expr) {
			if v, ok := e.(*Var); ok && !bound[v.Name] && !seen[v.Name] {
				seen[v.Name] = true
				free = append(free, v)
			}
		})
	}
	//
	for _, v := range p.Requires {
		visit(v)
	}
	//
	for _, stmt := range p.Stmts {
		switch s := stmt.(type) {
		case *Let:
			visit(s.Value)
		case *Dirty:
			for _, arg := range s.Args {
				visit(arg)
			}
		}
		//
		for _, v := range stmt.Binds() {
			bound[v.Name] = true
		}
	}
	//
	return free
}

// Ops returns the set of primitive operations applied anywhere within this
// body, in order of first use.
func (p *Body) Ops() []vex.Op {
	var (
		seen = make(map[vex.Op]bool)
		ops  []vex.Op
	)
	//
	record := func(e Expr) {
		Walk(e, func(e Expr) {
			if a, ok := e.(*Apply); ok && !seen[a.Op] {
				seen[a.Op] = true
				ops = append(ops, a.Op)
			}
		})
	}
	//
	for _, stmt := range p.Stmts {
		switch s := stmt.(type) {
		case *Let:
			record(s.Value)
		case *Dirty:
			for _, arg := range s.Args {
				record(arg)
			}
		}
	}
	//
	return ops
}

// Helpers returns the names of all helpers called within this body, either
// through pure calls or dirty statements, in order of first use.
func (p *Body) Helpers() []string {
	var (
		seen    = make(map[string]bool)
		helpers []string
	)
	//
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			helpers = append(helpers, name)
		}
	}
	//
	record := func(e Expr) {
		Walk(e, func(e Expr) {
			if c, ok := e.(*Call); ok {
				add(c.Helper)
			}
		})
	}
	//
	for _, stmt := range p.Stmts {
		switch s := stmt.(type) {
		case *Let:
			record(s.Value)
		case *Dirty:
			for _, arg := range s.Args {
				record(arg)
			}
			//
			add(s.Helper)
		}
	}
	//
	return helpers
}

// Walk visits every subexpression of a given expression in depth-first,
// pre-order fashion.
func Walk(e Expr, fn func(Expr)) {
	fn(e)
	//
	switch e := e.(type) {
	case *Apply:
		for _, arg := range e.Args {
			Walk(arg, fn)
		}
	case *ITE:
		Walk(e.Cond, fn)
		Walk(e.Then, fn)
		Walk(e.Else, fn)
	case *Call:
		for _, arg := range e.Args {
			Walk(arg, fn)
		}
	}
}
