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
	"strings"
)

// Op identifies a primitive operation by its name, without the "Iop_" prefix
// used by the harness.
type Op string

// CName returns the name of this operation as used by the instrumentation
// harness.
func (o Op) CName() string {
	return "Iop_" + string(o)
}

func (o Op) String() string {
	return string(o)
}

// Signature describes the operand and result types of a primitive operation.
type Signature struct {
	Result Type
	Args   []Type
}

// Arity returns the number of operands.
func (s Signature) Arity() int {
	return len(s.Args)
}

func (s Signature) String() string {
	var builder strings.Builder
	//
	builder.WriteString("(")
	//
	for i, arg := range s.Args {
		if i != 0 {
			builder.WriteString(", ")
		}

		builder.WriteString(arg.String())
	}
	//
	builder.WriteString(") -> ")
	builder.WriteString(s.Result.String())
	//
	return builder.String()
}
