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
	"golang.org/x/sys/cpu"
)

// Host restricts an enumeration to those operations which the host processor
// can execute natively.  Operations over 256-bit vectors require AVX, and are
// removed when it is unavailable.
func Host(isa *ISA) *ISA {
	return restrict(isa, cpu.X86.HasAVX)
}

func restrict(isa *ISA, avx bool) *ISA {
	if avx {
		return isa
	}
	//
	var wide []Op
	//
	for _, op := range isa.order {
		if isa.signatures[op].uses(V256) {
			wide = append(wide, op)
		}
	}
	//
	return isa.Without(wide...)
}

func (s Signature) uses(ty Type) bool {
	if s.Result == ty {
		return true
	}
	//
	for _, arg := range s.Args {
		if arg == ty {
			return true
		}
	}
	//
	return false
}
