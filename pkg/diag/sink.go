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

import (
	"github.com/scicomp/go-adrules/pkg/guard"
	log "github.com/sirupsen/logrus"
)

// Message is reported whenever an active and discrete value is used as a
// floating-point operand.
const Message = "Active discrete data used as floating-point operand."

// Sink receives the taint flags of floating-point operands, reporting those
// which indicate a bit trick.
type Sink interface {
	// Warn examines the activity (lo) and discreteness (hi) flags of an
	// operand of a given size in bytes.
	Warn(lo uint64, hi uint64, size int)
}

// Hazard determines whether the flags of an operand of a given size (4 or 8
// bytes) indicate that it is both active and discrete.  Only the lower four
// bytes are considered for operands of size 4.
func Hazard(lo uint64, hi uint64, size int) bool {
	var mask uint64 = 0xffffffffffffffff
	//
	if size == 4 {
		mask = 0x00000000ffffffff
	}
	//
	return lo&hi&mask != 0
}

// LogSink reports hazards through the logger.
type LogSink struct {
	// Suppresses reporting whilst held (may be nil).
	Guard *guard.Guard
}

// Warn implementation for Sink interface.
func (p *LogSink) Warn(lo uint64, hi uint64, size int) {
	if Hazard(lo, hi, size) && !p.Guard.Held() {
		log.WithFields(log.Fields{
			"activity":     lo,
			"discreteness": hi,
			"size":         size,
		}).Warn(Message)
	}
}

// Warning records a single hazard.
type Warning struct {
	Activity     uint64
	Discreteness uint64
	Size         int
}

// Recorder collects hazards for later inspection.
type Recorder struct {
	// Suppresses recording whilst held (may be nil).
	Guard    *guard.Guard
	Warnings []Warning
	// Number of operands examined, hazardous or not.
	Checked int
}

// Warn implementation for Sink interface.
func (p *Recorder) Warn(lo uint64, hi uint64, size int) {
	p.Checked++
	//
	if Hazard(lo, hi, size) && !p.Guard.Held() {
		p.Warnings = append(p.Warnings, Warning{lo, hi, size})
	}
}

// Reset discards everything recorded so far.
func (p *Recorder) Reset() {
	p.Warnings = nil
	p.Checked = 0
}
