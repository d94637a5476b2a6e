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
package interp

import (
	"errors"
	"fmt"

	"github.com/scicomp/go-adrules/pkg/helper"
	"github.com/scicomp/go-adrules/pkg/ir"
	"github.com/scicomp/go-adrules/pkg/vex"
)

// ErrNoDerivative is returned when running a body whose required shadows are
// not all available, meaning the result has no derivative (or no index, or no
// flags).
var ErrNoDerivative = errors.New("no derivative")

// EvalError is returned when a body cannot be evaluated, for example because
// it refers to an unbound variable or applies an unknown operation.
type EvalError struct {
	// Expression or statement being evaluated.
	Term string
	Msg  string
}

func (p *EvalError) Error() string {
	return fmt.Sprintf("%s (evaluating %s)", p.Msg, p.Term)
}

// Env maps variable names to their values.
type Env map[string]Value

// Interpreter evaluates rule bodies over concrete values.  Helper calls are
// dispatched to a runtime, connecting the bodies to a tape, a diagnostic sink
// and a recorder of difference quotients.
type Interpreter struct {
	runtime *helper.Runtime
	env     Env
}

// NewInterpreter constructs an interpreter using a given runtime.
func NewInterpreter(runtime *helper.Runtime) *Interpreter {
	if runtime == nil {
		runtime = &helper.Runtime{}
	}
	//
	return &Interpreter{runtime, nil}
}

// Run executes a body in a given environment, returning its results in order.
// The environment is not modified.  The rounding mode variable is bound to
// round-to-nearest unless given.  If any shadow required by the body is
// unbound, ErrNoDerivative is returned and nothing is executed.
func (p *Interpreter) Run(body *ir.Body, env Env) ([]Value, error) {
	p.env = make(Env, len(env)+len(body.Stmts))
	//
	for name, v := range env {
		p.env[name] = v
	}
	//
	if _, ok := p.env[ir.RoundingMode.Name]; !ok {
		p.env[ir.RoundingMode.Name] = Word(0)
	}
	//
	for _, v := range body.Requires {
		if _, ok := p.env[v.Name]; !ok {
			return nil, ErrNoDerivative
		}
	}
	//
	for _, stmt := range body.Stmts {
		if err := p.exec(stmt); err != nil {
			return nil, err
		}
	}
	//
	results := make([]Value, len(body.Results))
	//
	for i, v := range body.Results {
		val, ok := p.env[v.Name]
		if !ok {
			return nil, &EvalError{v.Name, "result never bound"}
		}
		//
		results[i] = val
	}
	//
	return results, nil
}

// Eval evaluates a single expression in a given environment.
func (p *Interpreter) Eval(e ir.Expr, env Env) (Value, error) {
	p.env = env
	//
	return p.eval(e)
}

func (p *Interpreter) exec(stmt ir.Stmt) error {
	switch s := stmt.(type) {
	case *ir.Let:
		v, err := p.eval(s.Value)
		if err != nil {
			return err
		}
		//
		p.env[s.Var.Name] = v
	case *ir.Dirty:
		args, err := p.words(s.Helper, s.Args)
		if err != nil {
			return err
		}
		//
		results, err := p.runtime.Dirty(s.Helper, args)
		if err != nil {
			return &EvalError{stmt.String(), err.Error()}
		} else if len(results) != len(s.Results) {
			msg := fmt.Sprintf("helper returned %d results, expected %d", len(results), len(s.Results))
			return &EvalError{stmt.String(), msg}
		}
		//
		for i, v := range s.Results {
			p.env[v.Name] = Word(results[i])
		}
	default:
		panic("unreachable")
	}
	//
	return nil
}

func (p *Interpreter) eval(e ir.Expr) (Value, error) {
	switch e := e.(type) {
	case *ir.Var:
		if v, ok := p.env[e.Name]; ok {
			return v, nil
		}
		//
		return Value{}, &EvalError{e.Name, "unbound variable"}
	case *ir.Const:
		return e.Bits, nil
	case *ir.ITE:
		c, err := p.eval(e.Cond)
		if err != nil {
			return Value{}, err
		} else if c.Uint64()&1 == 1 {
			return p.eval(e.Then)
		}
		//
		return p.eval(e.Else)
	case *ir.Call:
		args, err := p.words(e.Helper, e.Args)
		if err != nil {
			return Value{}, err
		}
		//
		r, err := p.runtime.Call(e.Helper, args)
		if err != nil {
			return Value{}, &EvalError{e.String(), err.Error()}
		}
		//
		return Word(r), nil
	case *ir.Apply:
		return p.apply(e)
	}
	//
	panic("unreachable")
}

func (p *Interpreter) apply(e *ir.Apply) (Value, error) {
	var (
		sig, ok = vex.Default().Lookup(e.Op)
		fn      = table()[e.Op]
		args    = make([]Value, len(e.Args))
	)
	//
	if !ok || fn == nil {
		return Value{}, &EvalError{e.String(), "unsupported operation"}
	} else if len(e.Args) != sig.Arity() {
		return Value{}, &EvalError{e.String(), fmt.Sprintf("expected %d operands", sig.Arity())}
	}
	//
	for i, arg := range e.Args {
		v, err := p.eval(arg)
		if err != nil {
			return Value{}, err
		}
		//
		args[i] = v
	}
	//
	r := fn(args)
	truncate(&r, sig.Result.Bits())
	//
	return r, nil
}

// Evaluate the arguments of a helper, each of which must fit in 64 bits.
func (p *Interpreter) words(helper string, exprs []ir.Expr) ([]uint64, error) {
	words := make([]uint64, len(exprs))
	//
	for i, e := range exprs {
		v, err := p.eval(e)
		if err != nil {
			return nil, err
		} else if !v.IsUint64() {
			return nil, &EvalError{helper, fmt.Sprintf("argument %d exceeds 64 bits", i)}
		}
		//
		words[i] = v.Uint64()
	}
	//
	return words, nil
}
