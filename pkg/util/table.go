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
	"fmt"
	"io"
	"strings"
)

// TablePrinter lays out rows of cells in aligned columns.
type TablePrinter struct {
	widths []uint
	rows   [][]string
}

// NewTablePrinter constructs a new table with a given number of columns and
// rows.
func NewTablePrinter(width uint, height uint) *TablePrinter {
	widths := make([]uint, width)
	rows := make([][]string, height)
	// Construct the table
	for i := uint(0); i < height; i++ {
		rows[i] = make([]string, width)
	}

	return &TablePrinter{widths, rows}
}

// Set the contents of a given cell in this table
func (p *TablePrinter) Set(col uint, row uint, val string) {
	p.widths[col] = max(p.widths[col], uint(len(val)))
	p.rows[row][col] = val
}

// SetRow sets the contents of an entire row in this table
func (p *TablePrinter) SetRow(row uint, vals ...string) {
	if len(vals) != len(p.widths) {
		panic("incorrect number of columns")
	}
	//
	for i := range vals {
		p.Set(uint(i), row, vals[i])
	}
}

// Fit shrinks the widest columns until every row fits within a given number
// of characters, where possible.
func (p *TablePrinter) Fit(total uint) {
	for p.Width() > total {
		widest := 0
		//
		for i, w := range p.widths {
			if w > p.widths[widest] {
				widest = i
			}
		}
		// Columns narrower than an ellipsis cannot shrink
		if p.widths[widest] <= 3 {
			return
		}
		//
		p.widths[widest]--
	}
}

// Width returns the number of characters in each printed row.
func (p *TablePrinter) Width() uint {
	var total uint
	//
	for _, w := range p.widths {
		total += w + 3
	}
	//
	return total
}

// Print the table, truncating cells which do not fit their column.
func (p *TablePrinter) Print(w io.Writer) error {
	for _, row := range p.rows {
		var builder strings.Builder
		//
		for j, col := range row {
			width := int(p.widths[j])
			//
			if len(col) > width {
				col = col[:width-2] + ".."
			}
			//
			builder.WriteString(fmt.Sprintf(" %-*s |", width, col))
		}
		//
		if _, err := fmt.Fprintln(w, builder.String()); err != nil {
			return err
		}
	}
	//
	return nil
}
