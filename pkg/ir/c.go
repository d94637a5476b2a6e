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
	"strconv"
	"strings"

	"github.com/scicomp/go-adrules/pkg/vex"
)

// CExpr renders an expression as C code constructing the corresponding
// expression tree through the instrumentation harness.
func CExpr(e Expr) string {
	var builder strings.Builder
	//
	writeCExpr(&builder, e)
	//
	return builder.String()
}

// CStmt renders a statement as one or more lines of C code, each with the given
// indentation.
func CStmt(s Stmt, indent string) string {
	var builder strings.Builder
	//
	switch s := s.(type) {
	case *Let:
		builder.WriteString(fmt.Sprintf("%sIRExpr* %s = %s;\n", indent, s.Var.Name, CExpr(s.Value)))
	case *Dirty:
		args := make([]string, len(s.Args)+1)
		args[0] = "diffenv"
		//
		for i, arg := range s.Args {
			args[i+1] = CExpr(arg)
		}
		//
		call := fmt.Sprintf("%s(%s)", s.Helper, strings.Join(args, ", "))
		//
		if len(s.Results) == 0 {
			builder.WriteString(fmt.Sprintf("%s%s;\n", indent, call))
			break
		}
		//
		builder.WriteString(fmt.Sprintf("%sIRExpr** %s = %s;\n", indent, s.Vec, call))
		//
		for i, r := range s.Results {
			builder.WriteString(fmt.Sprintf("%sIRExpr* %s = %s[%d];\n", indent, r.Name, s.Vec, i))
		}
	default:
		panic("unreachable")
	}
	//
	return builder.String()
}

func writeCExpr(builder *strings.Builder, e Expr) {
	switch e := e.(type) {
	case *Var:
		builder.WriteString(e.Name)
	case *Const:
		builder.WriteString(cConst(e))
	case *Apply:
		switch len(e.Args) {
		case 1:
			builder.WriteString("IRExpr_Unop(")
		case 2:
			builder.WriteString("IRExpr_Binop(")
		case 3:
			builder.WriteString("IRExpr_Triop(")
		case 4:
			builder.WriteString("IRExpr_Qop(")
		default:
			panic(fmt.Sprintf("operation %s applied to %d operands", e.Op, len(e.Args)))
		}
		//
		builder.WriteString(e.Op.CName())
		//
		for _, arg := range e.Args {
			builder.WriteString(", ")
			writeCExpr(builder, arg)
		}
		//
		builder.WriteString(")")
	case *ITE:
		builder.WriteString("IRExpr_ITE(")
		writeCExpr(builder, e.Cond)
		builder.WriteString(", ")
		writeCExpr(builder, e.Then)
		builder.WriteString(", ")
		writeCExpr(builder, e.Else)
		builder.WriteString(")")
	case *Call:
		builder.WriteString(fmt.Sprintf("mkIRExprCCall(%s, 0, \"%s\", &%s, mkIRExprVec_%d(", e.Ret.CName(), e.Helper,
			e.Helper, len(e.Args)))
		//
		for i, arg := range e.Args {
			if i != 0 {
				builder.WriteString(", ")
			}
			//
			writeCExpr(builder, arg)
		}
		//
		builder.WriteString("))")
	default:
		panic("unreachable")
	}
}

func cConst(c *Const) string {
	switch c.Kind {
	case Zeros:
		return fmt.Sprintf("mkIRConst_zero(%s)", c.Ty.CName())
	case Ones:
		return fmt.Sprintf("mkIRConst_ones(%s)", c.Ty.CName())
	}
	//
	switch c.Ty {
	case vex.I1:
		if c.Bits.IsZero() {
			return "IRExpr_Const(IRConst_U1(False))"
		}
		//
		return "IRExpr_Const(IRConst_U1(True))"
	case vex.I8:
		return fmt.Sprintf("IRExpr_Const(IRConst_U8(%#x))", c.Bits.Uint64())
	case vex.I16:
		return fmt.Sprintf("IRExpr_Const(IRConst_U16(%#x))", c.Bits.Uint64())
	case vex.I32:
		return fmt.Sprintf("IRExpr_Const(IRConst_U32(%#x))", c.Bits.Uint64())
	case vex.I64:
		return fmt.Sprintf("IRExpr_Const(IRConst_U64(%#x))", c.Bits.Uint64())
	case vex.F32:
		return fmt.Sprintf("IRExpr_Const(IRConst_F32(%s))", cFloat(c.Float(), 32))
	case vex.F64:
		return fmt.Sprintf("IRExpr_Const(IRConst_F64(%s))", cFloat(c.Float(), 64))
	}
	//
	panic(fmt.Sprintf("no literal constants of type %s", c.Ty))
}

// Render a floating-point literal such that it reads back exactly.
func cFloat(v float64, bits int) string {
	s := strconv.FormatFloat(v, 'g', -1, bits)
	//
	if !strings.ContainsAny(s, ".eE") {
		s += "."
	}
	//
	return s
}
