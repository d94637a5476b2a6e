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
package sexp

import "fmt"

// SyntaxError is a structured error which retains the line and column within
// the original text where the error arose.
type SyntaxError struct {
	// Line (starting from 1) on which the error arose.
	line int
	// Column (starting from 1) at which the error arose.
	column int
	// Error message being reported
	msg string
}

// NewSyntaxError simply constructs a new syntax error.
func NewSyntaxError(line int, column int, msg string) *SyntaxError {
	return &SyntaxError{line, column, msg}
}

// Line returns the line number on which this error is reported.
func (p *SyntaxError) Line() int {
	return p.line
}

// Column returns the column on which this error is reported.
func (p *SyntaxError) Column() int {
	return p.column
}

// Message returns the message to be reported.
func (p *SyntaxError) Message() string {
	return p.msg
}

// Error implements the error interface.
func (p *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", p.line, p.column, p.msg)
}
