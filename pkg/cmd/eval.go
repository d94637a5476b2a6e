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
package cmd

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/scicomp/go-adrules/pkg/catalog"
	"github.com/scicomp/go-adrules/pkg/diag"
	"github.com/scicomp/go-adrules/pkg/guard"
	"github.com/scicomp/go-adrules/pkg/helper"
	"github.com/scicomp/go-adrules/pkg/interp"
	"github.com/scicomp/go-adrules/pkg/ir"
	"github.com/scicomp/go-adrules/pkg/rules"
	"github.com/scicomp/go-adrules/pkg/tape"
	"github.com/scicomp/go-adrules/pkg/vex"
	"github.com/spf13/cobra"
)

var evalCmd = &cobra.Command{
	Use:   "eval [flags] operation",
	Short: "evaluate the rule of a single operation.",
	Long: `Evaluate the rule of a single operation on concrete operands.  Each operand is
given by --arg (excluding any rounding mode) as one value, or a comma-separated
list of lanes.  In forward mode, --dot gives the derivative of each operand with
a shadow.  In taint mode, --dot gives the flags of each such operand as "a"
(active), "x" (discrete), "ax" (both) or "-" (neither).  In reverse mode, every
lane of every operand with a shadow is recorded on a fresh tape, and the
gradient of each result lane is printed.  With --disable, the rule runs whilst
recording is disabled: nothing is written to the tape, and no warnings are
raised.`,
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)
		//
		if len(args) != 1 {
			fmt.Println("expected exactly one operation")
			os.Exit(2)
		}
		//
		c := loadCatalog(cmd)
		err := evaluate(c, getMode(cmd), args[0], GetStringArray(cmd, "arg"), GetStringArray(cmd, "dot"),
			GetFlag(cmd, "disable"), os.Stdout)
		exitOnError(err)
	},
}

// Shape of the lanes of an operand, as seen by the user.
type shape struct {
	// Bytes per lane
	width uint
	lanes uint
	// Whether lanes hold floating-point values
	real bool
}

func shapeOf(d *catalog.Descriptor, ty vex.Type) shape {
	switch {
	case ty.IsFloat():
		return shape{ty.Size(), 1, true}
	case (ty == vex.V128 || ty == vex.V256) && d.Width != 0 && !d.Family.IsBitwise():
		return shape{d.Width, d.Lanes, true}
	}
	//
	width := min(max(ty.Size(), 1), 8)
	//
	return shape{width, max(ty.Size()/width, 1), false}
}

func (s shape) mask() uint64 {
	if s.width >= 8 {
		return math.MaxUint64
	}
	//
	return (1 << (8 * s.width)) - 1
}

// Parse a single value (applied to every lane) or one value per lane.
func (s shape) parse(text string) (interp.Value, error) {
	var (
		fields = strings.Split(text, ",")
		words  = make([]uint64, s.lanes)
	)
	//
	if len(fields) != 1 && uint(len(fields)) != s.lanes {
		return interp.Value{}, fmt.Errorf("expected 1 or %d lanes in \"%s\"", s.lanes, text)
	}
	//
	for k := range words {
		field := strings.TrimSpace(fields[0])
		if len(fields) > 1 {
			field = strings.TrimSpace(fields[k])
		}
		//
		if s.real {
			x, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return interp.Value{}, err
			}
			//
			words[k] = s.bits(x)
		} else {
			w, err := strconv.ParseUint(field, 0, 64)
			if err != nil {
				return interp.Value{}, err
			}
			//
			words[k] = w
		}
	}
	//
	return s.pack(words), nil
}

func (s shape) bits(x float64) uint64 {
	if s.width == 4 {
		return uint64(math.Float32bits(float32(x)))
	}
	//
	return math.Float64bits(x)
}

func (s shape) value(w uint64) float64 {
	if s.width == 4 {
		return float64(math.Float32frombits(uint32(w)))
	}
	//
	return math.Float64frombits(w)
}

func (s shape) pack(words []uint64) interp.Value {
	var v interp.Value
	//
	for k, w := range words {
		offset := uint(k) * s.width * 8
		v[offset/64] |= (w & s.mask()) << (offset % 64)
	}
	//
	return v
}

func (s shape) unpack(v interp.Value) []uint64 {
	words := make([]uint64, s.lanes)
	//
	for k := range words {
		offset := uint(k) * s.width * 8
		words[k] = (v[offset/64] >> (offset % 64)) & s.mask()
	}
	//
	return words
}

func (s shape) format(v interp.Value) string {
	var parts []string
	//
	for _, w := range s.unpack(v) {
		if s.real {
			parts = append(parts, strconv.FormatFloat(s.value(w), 'g', -1, int(8*s.width)))
		} else {
			parts = append(parts, fmt.Sprintf("%#x", w))
		}
	}
	//
	if len(parts) == 1 {
		return parts[0]
	}
	//
	return "[" + strings.Join(parts, ", ") + "]"
}

// Positions of the operands whose shadows a rule reads.
func shadowed(r rules.Rule) []uint {
	var (
		d         = r.Descriptor()
		operands  = r.Body().Operands()
		positions []uint
	)
	//
	for n := uint(1); n <= d.Arity; n++ {
		shadow := r.Mode().Shadows(n)[0]
		//
		if slices.ContainsFunc(operands, func(v *ir.Var) bool { return v.Name == shadow }) {
			positions = append(positions, n)
		}
	}
	//
	return positions
}

// Evaluate the rule of a given operation on operands and shadows given as
// text, writing a report of the outcome.  When disabled, the rule runs whilst
// holding the guard shared by the tape and the warning sink.
func evaluate(c *catalog.Catalog, mode rules.Mode, op string, args []string, shadows []string, disabled bool,
	w io.Writer) error {
	d, err := c.Lookup(vex.Op(op))
	if err != nil {
		return err
	}
	//
	r, err := rules.NewEngine(mode).Rule(d)
	if err != nil {
		return err
	}
	//
	var (
		env       = interp.Env{}
		first     = d.Operand(1)
		g         guard.Guard
		tp        = tape.NewTape(&g)
		sink      = diag.Recorder{Guard: &g}
		quotients diag.Quotients
		rt        = &helper.Runtime{Tape: tp, Sink: &sink, Quotients: &quotients}
		inputs    = make(map[uint][]uint64)
		positions = shadowed(r)
	)
	//
	if d.Rounded {
		env["arg1"] = interp.Word(0)
	}
	//
	if uint(len(args)) != d.Arity-first+1 {
		return fmt.Errorf("%s expects %d operands, got %d", d.Name, d.Arity-first+1, len(args))
	}
	//
	for i, text := range args {
		n := first + uint(i)
		//
		v, err := shapeOf(d, d.Signature.Args[n-1]).parse(text)
		if err != nil {
			return err
		}
		//
		env[fmt.Sprintf("arg%d", n)] = v
	}
	//
	for i, n := range positions {
		var (
			s     = shapeOf(d, d.Signature.Args[n-1])
			names = mode.Shadows(n)
		)
		//
		switch mode {
		case rules.Forward, rules.ForwardDebug:
			if i < len(shadows) {
				v, err := s.parse(shadows[i])
				if err != nil {
					return err
				}
				//
				env[names[0]] = v
			}
		case rules.Reverse:
			values := s.unpack(env[fmt.Sprintf("arg%d", n)])
			indices := make([]uint64, s.lanes)
			//
			for k, v := range values {
				x := 0.0
				if s.real {
					x = s.value(v)
				}
				//
				indices[k] = tp.NewInput(x)
			}
			//
			inputs[n] = indices
			env[names[0]] = s.pack(indices)
			env[names[1]] = interp.Value{}
		case rules.Taint:
			flags := "-"
			if i < len(shadows) {
				flags = shadows[i]
			}
			//
			env[names[0]] = s.pack(fill(s, strings.Contains(flags, "a")))
			env[names[1]] = s.pack(fill(s, strings.Contains(flags, "x")))
		}
	}
	//
	var results []interp.Value
	//
	run := func() (err error) {
		results, err = interp.NewInterpreter(rt).Run(r.Body(), env)
		return err
	}
	//
	if disabled {
		err = g.Do(run)
	} else {
		err = run()
	}
	//
	if errors.Is(err, interp.ErrNoDerivative) {
		_, err = fmt.Fprintln(w, "no derivative: a required shadow is missing")
		return err
	} else if err != nil {
		return err
	}
	//
	report := &evalReport{d, r, shapeOf(d, d.Result()), tp, inputs, positions}
	//
	switch mode {
	case rules.Forward, rules.ForwardDebug:
		return report.forward(w, results, quotients.Pairs)
	case rules.Reverse:
		return report.reverse(w, results)
	default:
		return report.taint(w, results, sink.Warnings)
	}
}

// Lanes which are either all ones or all zeros.
func fill(s shape, set bool) []uint64 {
	words := make([]uint64, s.lanes)
	//
	if set {
		for k := range words {
			words[k] = s.mask()
		}
	}
	//
	return words
}

type evalReport struct {
	desc      *catalog.Descriptor
	rule      rules.Rule
	result    shape
	tape      *tape.Tape
	inputs    map[uint][]uint64
	positions []uint
}

func (p *evalReport) forward(w io.Writer, results []interp.Value, pairs []diag.Quotient) error {
	lines := []string{fmt.Sprintf("dotvalue = %s", p.result.format(results[0]))}
	//
	for _, q := range pairs {
		lines = append(lines, fmt.Sprintf("value %g, dot %g", q.Value, q.Dot))
	}
	//
	return writeLines(w, lines)
}

func (p *evalReport) reverse(w io.Writer, results []interp.Value) error {
	var (
		los   = p.result.unpack(results[0])
		his   = p.result.unpack(results[1])
		lines []string
		index = make([]string, len(los))
	)
	//
	for k := range los {
		index[k] = fmt.Sprintf("%d", tape.Join(los[k], his[k]))
	}
	//
	lines = append(lines, fmt.Sprintf("index = [%s]", strings.Join(index, ", ")))
	//
	for i, e := range p.tape.Entries() {
		lines = append(lines, fmt.Sprintf("  %d: %s", i+1, e))
	}
	// Gradient of each result lane with respect to each input
	for k := range los {
		result := tape.Join(los[k], his[k])
		if result == 0 {
			continue
		}
		//
		adjoints := p.tape.Backward(map[uint64]float64{result: 1})
		//
		for _, n := range p.positions {
			for j, input := range p.inputs[n] {
				if adjoints[input] != 0 {
					lines = append(lines, fmt.Sprintf("d(lane %d)/d(arg%d lane %d) = %g", k, n, j, adjoints[input]))
				}
			}
		}
	}
	//
	return writeLines(w, lines)
}

func (p *evalReport) taint(w io.Writer, results []interp.Value, warnings []diag.Warning) error {
	lines := []string{
		fmt.Sprintf("flagsLo = %s", shape{p.result.width, p.result.lanes, false}.format(results[0])),
		fmt.Sprintf("flagsHi = %s", shape{p.result.width, p.result.lanes, false}.format(results[1])),
	}
	//
	for _, warning := range warnings {
		lines = append(lines, fmt.Sprintf("warning: active discrete %d-byte operand (activity %#x, discreteness %#x)",
			warning.Size, warning.Activity, warning.Discreteness))
	}
	//
	return writeLines(w, lines)
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	//
	return nil
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringP("mode", "m", "dot", "mode of rule (dot, dot-dqd, bar or trick).")
	evalCmd.Flags().StringArray("arg", nil, "value of an operand (repeat for each operand).")
	evalCmd.Flags().StringArray("dot", nil, "shadow of an operand (repeat for each operand with a shadow).")
	evalCmd.Flags().Bool("disable", false, "evaluate with recording disabled.")
}
