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
package guard

import (
	"errors"
	"sync"

	"go.uber.org/atomic"
)

// ErrReentered is returned when acquiring a guard which is already held.
var ErrReentered = errors.New("guard re-entered")

// Guard protects a region which must never be re-entered, such as the
// evaluation of a library function's derivative.  Whilst a guard is held, the
// tape records nothing and diagnostics are suppressed.  The zero value is an
// unheld guard.
type Guard struct {
	depth atomic.Int32
}

// Acquire takes hold of this guard, returning a function which releases it.
// The release function may be called more than once, but only releases the
// guard the first time.  If this guard is already held, ErrReentered is
// returned and the guard is unchanged.
func (p *Guard) Acquire() (func(), error) {
	if p.depth.Inc() > 1 {
		p.depth.Dec()
		return nil, ErrReentered
	}
	//
	var once sync.Once
	//
	return func() { once.Do(func() { p.depth.Dec() }) }, nil
}

// Do runs a function whilst holding this guard, releasing it on all exit
// paths (including panics).
func (p *Guard) Do(fn func() error) error {
	release, err := p.Acquire()
	if err != nil {
		return err
	}
	//
	defer release()
	//
	return fn()
}

// Held checks whether this guard is currently held.  A nil guard is never
// held.
func (p *Guard) Held() bool {
	return p != nil && p.depth.Load() > 0
}
