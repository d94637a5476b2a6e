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
	"github.com/scicomp/go-adrules/pkg/sexp"
)

// Lisp converts an expression into an S-expression.
func Lisp(e Expr) sexp.SExp {
	return toLisp(e)
}

// LispStmt converts a statement into an S-expression.
func LispStmt(s Stmt) sexp.SExp {
	return toLispStmt(s)
}

// LispBody converts a body into an S-expression of the form
// (body (requires ...) stmt... (results ...)).
func LispBody(b *Body) sexp.SExp {
	list := sexp.NewList(sexp.NewSymbol("body"))
	list.Append(symbols("requires", b.Requires))
	//
	for _, stmt := range b.Stmts {
		list.Append(toLispStmt(stmt))
	}
	//
	list.Append(symbols("results", b.Results))
	//
	return list
}

func toLisp(e Expr) sexp.SExp {
	switch e := e.(type) {
	case *Var:
		return sexp.NewSymbol(e.Name)
	case *Const:
		switch e.Kind {
		case Zeros:
			return sexp.NewList(sexp.NewSymbol("zero"), sexp.NewSymbol(e.Ty.String()))
		case Ones:
			return sexp.NewList(sexp.NewSymbol("ones"), sexp.NewSymbol(e.Ty.String()))
		}
		//
		return sexp.NewList(sexp.NewSymbol("const"), sexp.NewSymbol(e.Ty.String()), sexp.NewSymbol(lispLiteral(e)))
	case *Apply:
		list := sexp.NewList(sexp.NewSymbol(e.Op.String()))
		//
		for _, arg := range e.Args {
			list.Append(toLisp(arg))
		}
		//
		return list
	case *ITE:
		return sexp.NewList(sexp.NewSymbol("ite"), toLisp(e.Cond), toLisp(e.Then), toLisp(e.Else))
	case *Call:
		list := sexp.NewList(sexp.NewSymbol("call"), sexp.NewSymbol(e.Helper))
		//
		for _, arg := range e.Args {
			list.Append(toLisp(arg))
		}
		//
		return list
	}
	//
	panic("unreachable")
}

func toLispStmt(s Stmt) sexp.SExp {
	switch s := s.(type) {
	case *Let:
		return sexp.NewList(sexp.NewSymbol("let"), sexp.NewSymbol(s.Var.Name), toLisp(s.Value))
	case *Dirty:
		list := sexp.NewList(sexp.NewSymbol("dirty"), sexp.NewSymbol(s.Helper))
		results := sexp.NewList()
		//
		for _, r := range s.Results {
			results.Append(sexp.NewSymbol(r.Name))
		}
		//
		list.Append(results)
		//
		for _, arg := range s.Args {
			list.Append(toLisp(arg))
		}
		//
		return list
	}
	//
	panic("unreachable")
}

func lispLiteral(c *Const) string {
	if c.Ty.IsFloat() {
		return cFloat(c.Float(), int(c.Ty.Bits()))
	}
	//
	return c.Bits.Hex()
}

func symbols(head string, vars []*Var) *sexp.List {
	list := sexp.NewList(sexp.NewSymbol(head))
	//
	for _, v := range vars {
		list.Append(sexp.NewSymbol(v.Name))
	}
	//
	return list
}
