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
package util

import (
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
)

// PerfStats is a snapshot of time and memory, against which later usage is
// measured.
type PerfStats struct {
	startTime time.Time
	// Starting total memory allocation
	startMem uint64
	// Starting number of gc events
	startGc uint32
}

// NewPerfStats creates a new snapshot of the current time and memory allocated.
func NewPerfStats() *PerfStats {
	var m runtime.MemStats

	runtime.ReadMemStats(&m)

	return &PerfStats{time.Now(), m.TotalAlloc, m.NumGC}
}

// Log logs (at debug level) the time taken and memory allocated since this
// snapshot was taken.  Memory is reported in kilobytes.
func (p *PerfStats) Log(prefix string) {
	var m runtime.MemStats

	runtime.ReadMemStats(&m)
	alloc := (m.TotalAlloc - p.startMem) / 1024
	gcs := m.NumGC - p.startGc

	log.WithFields(log.Fields{"alloc_kb": alloc, "gc": gcs}).Debugf("%s took %0.3fs", prefix,
		time.Since(p.startTime).Seconds())
}
