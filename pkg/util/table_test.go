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
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Table_01(t *testing.T) {
	var buf bytes.Buffer
	//
	table := NewTablePrinter(2, 2)
	table.SetRow(0, "name", "lanes")
	table.SetRow(1, "Add64Fx2", "2")
	//
	assert.NoError(t, table.Print(&buf))
	assert.Equal(t, " name     | lanes |\n Add64Fx2 | 2     |\n", buf.String())
	assert.Equal(t, uint(19), table.Width())
}

func Test_Table_02(t *testing.T) {
	var buf bytes.Buffer
	//
	table := NewTablePrinter(2, 1)
	table.SetRow(0, "Interleave", "x")
	table.Fit(12)
	//
	assert.NoError(t, table.Print(&buf))
	assert.Equal(t, " Int.. | x |\n", buf.String())
}
