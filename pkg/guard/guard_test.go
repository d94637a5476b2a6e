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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Guard_01(t *testing.T) {
	var g Guard
	//
	assert.False(t, g.Held())
	release, err := g.Acquire()
	require.NoError(t, err)
	assert.True(t, g.Held())
	// Cannot re-enter
	_, err = g.Acquire()
	assert.ErrorIs(t, err, ErrReentered)
	assert.True(t, g.Held())
	// Release is idempotent
	release()
	release()
	assert.False(t, g.Held())
	//
	_, err = g.Acquire()
	assert.NoError(t, err)
}

func Test_Guard_02(t *testing.T) {
	var (
		g       Guard
		failure = errors.New("failure")
	)
	//
	err := g.Do(func() error {
		assert.True(t, g.Held())
		assert.ErrorIs(t, g.Do(func() error { return nil }), ErrReentered)
		//
		return failure
	})
	//
	assert.ErrorIs(t, err, failure)
	assert.False(t, g.Held())
}

func Test_Guard_03(t *testing.T) {
	var g Guard
	//
	assert.Panics(t, func() {
		_ = g.Do(func() error { panic("boom") })
	})
	assert.False(t, g.Held())
	//
	var nilGuard *Guard
	assert.False(t, nilGuard.Held())
}
