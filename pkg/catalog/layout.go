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
package catalog

// Layout describes how the lanes of a SIMD operation are organised.
type Layout struct {
	// Suffix used in operation names, e.g. "64Fx2".
	Suffix string
	// Size in bytes of each lane.
	Width uint
	// Number of lanes.
	Lanes uint
	// Whether only lane 0 is computed.
	LowestLaneOnly bool
}

// Bytes returns the total size in bytes of a vector in this layout.
func (p Layout) Bytes() uint {
	return p.Width * p.Lanes
}

// Valid checks that the lane size and count describe a supported vector.
func (p Layout) Valid() bool {
	if p.Width != 4 && p.Width != 8 {
		return false
	}
	//
	switch p.Lanes {
	case 1, 2, 4, 8:
	default:
		return false
	}
	//
	switch p.Bytes() {
	case 4, 8, 16, 32:
		return true
	default:
		return false
	}
}

// The floating-point layouts of the target.
var (
	F64    = Layout{"F64", 8, 1, false}
	F32    = Layout{"F32", 4, 1, false}
	F64x2  = Layout{"64Fx2", 8, 2, false}
	F64x4  = Layout{"64Fx4", 8, 4, false}
	F32x2  = Layout{"32Fx2", 4, 2, false}
	F32x4  = Layout{"32Fx4", 4, 4, false}
	F32x8  = Layout{"32Fx8", 4, 8, false}
	F32L04 = Layout{"32F0x4", 4, 4, true}
	F64L02 = Layout{"64F0x2", 8, 2, true}
)

// Layouts lists the floating-point layouts of the target.
var Layouts = []Layout{F64, F32, F64x2, F64x4, F32x2, F32x4, F32x8, F32L04, F64L02}
