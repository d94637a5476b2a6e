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

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupported indicates an operation for which no descriptor exists.  An
// instrumentation harness encountering this must not instrument the operation,
// since silently passing it through would corrupt derivatives.
var ErrUnsupported = errors.New("unsupported operation")

// Error records one or more inconsistencies found whilst building a catalog.
// Such inconsistencies are programming errors in the catalog itself, and
// should abort code generation.
type Error struct {
	problems []string
}

func (p *Error) add(format string, args ...any) {
	p.problems = append(p.problems, fmt.Sprintf(format, args...))
}

// Problems returns the individual inconsistencies found.
func (p *Error) Problems() []string {
	return p.problems
}

func (p *Error) Error() string {
	if len(p.problems) == 1 {
		return fmt.Sprintf("inconsistent catalog: %s", p.problems[0])
	}
	//
	return fmt.Sprintf("inconsistent catalog (%d problems): %s", len(p.problems), strings.Join(p.problems, "; "))
}
