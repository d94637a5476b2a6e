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
package diag

// QuotientSink receives value and derivative pairs of floating-point results,
// so that derivatives can be compared against difference quotients.
type QuotientSink interface {
	Record(value float64, dot float64)
}

// Quotient is a single value and derivative pair.
type Quotient struct {
	Value float64
	Dot   float64
}

// Quotients collects value and derivative pairs in order.
type Quotients struct {
	Pairs []Quotient
}

// Record implementation for the QuotientSink interface.
func (p *Quotients) Record(value float64, dot float64) {
	p.Pairs = append(p.Pairs, Quotient{value, dot})
}

// Check compares the derivatives recorded by two runs, whose inputs differed
// by a perturbation h in the direction of the seeded derivatives, against the
// difference quotients of their values.  It returns the index of the first
// pair whose relative error exceeds the tolerance, or -1 if there is none.
func Check(base []Quotient, perturbed []Quotient, h float64, tolerance float64) int {
	for i := 0; i < len(base) && i < len(perturbed); i++ {
		quotient := (perturbed[i].Value - base[i].Value) / h
		scale := max(abs(base[i].Dot), abs(quotient), 1.0)
		//
		if abs(quotient-base[i].Dot) > tolerance*scale {
			return i
		}
	}
	//
	return -1
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	//
	return x
}
