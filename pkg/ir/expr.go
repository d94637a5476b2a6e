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
	"math"

	"github.com/holiman/uint256"
	"github.com/scicomp/go-adrules/pkg/vex"
)

// Expr represents a pure expression over the intermediate representation.
// Expressions are immutable once constructed and may be shared between
// statements.
type Expr interface {
	// Type returns the type of value this expression produces.  An
	// application of an unknown operation has type vex.Invalid.
	Type() vex.Type
	// String returns a readable rendering of this expression.
	String() string
}

// ============================================================================
// Variables
// ============================================================================

// Var is a reference to a named value, such as an operand, an operand's shadow
// or a value bound by an earlier statement.
type Var struct {
	Name string
	Ty   vex.Type
}

// NewVar constructs a variable of a given type.
func NewVar(name string, ty vex.Type) *Var {
	return &Var{name, ty}
}

// Type implementation for Expr interface.
func (p *Var) Type() vex.Type { return p.Ty }

func (p *Var) String() string { return p.Name }

// ============================================================================
// Constants
// ============================================================================

// ConstKind distinguishes plain constants from the all-zero and all-one
// constants, which exist for every type.
type ConstKind uint8

const (
	// Literal is a constant of a scalar type given by its bits.
	Literal ConstKind = iota
	// Zeros is the constant whose bits are all zero.
	Zeros
	// Ones is the constant whose bits are all one.
	Ones
)

// Const is a constant of a given type, represented by its bit pattern.
type Const struct {
	Kind ConstKind
	Ty   vex.Type
	Bits uint256.Int
}

// Type implementation for Expr interface.
func (p *Const) Type() vex.Type { return p.Ty }

// Float returns the floating-point value of a constant of type F32 or F64.
func (p *Const) Float() float64 {
	switch p.Ty {
	case vex.F32:
		return float64(math.Float32frombits(uint32(p.Bits.Uint64())))
	case vex.F64:
		return math.Float64frombits(p.Bits.Uint64())
	}
	//
	panic(fmt.Sprintf("constant of type %s is not floating-point", p.Ty))
}

func (p *Const) String() string {
	switch {
	case p.Kind == Zeros:
		return fmt.Sprintf("zero:%s", p.Ty)
	case p.Kind == Ones:
		return fmt.Sprintf("ones:%s", p.Ty)
	case p.Ty.IsFloat():
		return fmt.Sprintf("%v:%s", p.Float(), p.Ty)
	default:
		return fmt.Sprintf("%s:%s", p.Bits.Hex(), p.Ty)
	}
}

// Zero constructs the constant of a given type whose bits are all zero.
func Zero(ty vex.Type) *Const {
	return &Const{Kind: Zeros, Ty: ty}
}

// AllOnes constructs the constant of a given type whose bits are all one.
func AllOnes(ty vex.Type) *Const {
	var bits uint256.Int
	//
	bits.SetAllOne()
	bits.Rsh(&bits, 256-ty.Bits())
	//
	return &Const{Kind: Ones, Ty: ty, Bits: bits}
}

// U1 constructs a single-bit constant.
func U1(b bool) *Const {
	if b {
		return literal(vex.I1, 1)
	}
	//
	return literal(vex.I1, 0)
}

// U8 constructs an 8-bit integer constant.
func U8(v uint8) *Const { return literal(vex.I8, uint64(v)) }

// U16 constructs a 16-bit integer constant.
func U16(v uint16) *Const { return literal(vex.I16, uint64(v)) }

// U32 constructs a 32-bit integer constant.
func U32(v uint32) *Const { return literal(vex.I32, uint64(v)) }

// U64 constructs a 64-bit integer constant.
func U64(v uint64) *Const { return literal(vex.I64, v) }

// F32 constructs a single precision constant.
func F32(v float32) *Const { return literal(vex.F32, uint64(math.Float32bits(v))) }

// F64 constructs a double precision constant.
func F64(v float64) *Const { return literal(vex.F64, math.Float64bits(v)) }

func literal(ty vex.Type, v uint64) *Const {
	c := &Const{Kind: Literal, Ty: ty}
	c.Bits.SetUint64(v)
	//
	return c
}

// ============================================================================
// Applications
// ============================================================================

// Apply is the application of a primitive operation to one or more operands.
type Apply struct {
	Op   vex.Op
	Args []Expr
	ty   vex.Type
}

// Unop applies a unary operation.
func Unop(op vex.Op, arg Expr) *Apply {
	return NewApply(op, arg)
}

// Binop applies a binary operation.
func Binop(op vex.Op, lhs Expr, rhs Expr) *Apply {
	return NewApply(op, lhs, rhs)
}

// Triop applies a ternary operation.
func Triop(op vex.Op, arg1 Expr, arg2 Expr, arg3 Expr) *Apply {
	return NewApply(op, arg1, arg2, arg3)
}

// Qop applies a quaternary operation.
func Qop(op vex.Op, arg1 Expr, arg2 Expr, arg3 Expr, arg4 Expr) *Apply {
	return NewApply(op, arg1, arg2, arg3, arg4)
}

// NewApply applies an operation to an arbitrary number of operands.  The
// result type is determined from the default operation enumeration; an
// unknown operation yields type vex.Invalid and is reported when emitted.
func NewApply(op vex.Op, args ...Expr) *Apply {
	var ty = vex.Invalid
	//
	if sig, ok := vex.Default().Lookup(op); ok {
		ty = sig.Result
	}
	//
	return &Apply{op, args, ty}
}

// Type implementation for Expr interface.
func (p *Apply) Type() vex.Type { return p.ty }

func (p *Apply) String() string {
	return toLisp(p).String()
}

// ============================================================================
// Conditionals
// ============================================================================

// ITE selects between two expressions of the same type based on a condition
// of type I1.
type ITE struct {
	Cond Expr
	Then Expr
	Else Expr
}

// IfThenElse constructs a conditional expression.
func IfThenElse(cond Expr, then Expr, otherwise Expr) *ITE {
	return &ITE{cond, then, otherwise}
}

// Type implementation for Expr interface.
func (p *ITE) Type() vex.Type { return p.Then.Type() }

func (p *ITE) String() string {
	return toLisp(p).String()
}

// ============================================================================
// Helper calls
// ============================================================================

// Call is a call to a pure runtime helper function returning a single value.
type Call struct {
	Helper string
	Ret    vex.Type
	Args   []Expr
}

// NewCall constructs a call to a pure helper.
func NewCall(helper string, ret vex.Type, args ...Expr) *Call {
	return &Call{helper, ret, args}
}

// Type implementation for Expr interface.
func (p *Call) Type() vex.Type { return p.Ret }

func (p *Call) String() string {
	return toLisp(p).String()
}
