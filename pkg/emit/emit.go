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
package emit

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/scicomp/go-adrules/pkg/catalog"
	"github.com/scicomp/go-adrules/pkg/rules"
	"github.com/scicomp/go-adrules/pkg/util"
	"github.com/scicomp/go-adrules/pkg/vex"
	log "github.com/sirupsen/logrus"
)

// Format identifies the textual form in which rules are emitted.
type Format uint8

const (
	// C emits one "case Iop_...: { ... }" block per rule, for inclusion in the
	// instrumentation harness.
	C Format = iota
	// Lisp emits one S-expression per rule, for inspection and diffing.
	Lisp
	// Go emits a Go source file holding every rule as data.
	Go
)

var formatNames = [...]string{"c", "lisp", "go"}

// ParseFormat converts a format name into a format.
func ParseFormat(name string) (Format, error) {
	for i, n := range formatNames {
		if n == name {
			return Format(i), nil
		}
	}
	//
	return 0, fmt.Errorf("unknown format \"%s\"", name)
}

func (f Format) String() string {
	return formatNames[f]
}

// Config determines what an emitter produces.
type Config struct {
	// Mode for which rules are generated.
	Mode rules.Mode
	// Format in which rules are written.
	Format Format
	// Package name used for Go output.
	Package string
}

// DefaultConfig returns the configuration used when nothing else is given.
func DefaultConfig() Config {
	return Config{rules.Forward, C, "dispatch"}
}

// Emitter writes the rules of every operation in a catalog.
type Emitter struct {
	Catalog *catalog.Catalog
	Config  Config
}

// NewEmitter constructs an emitter for a given catalog and configuration.
func NewEmitter(c *catalog.Catalog, config Config) *Emitter {
	return &Emitter{c, config}
}

// Rules generates and validates the rules of every operation in the catalog.
func (p *Emitter) Rules() ([]rules.Rule, error) {
	rs, err := rules.Generate(p.Catalog, p.Config.Mode)
	if err != nil {
		return nil, err
	}
	//
	if err := Validate(p.Catalog.ISA(), rs); err != nil {
		return nil, err
	}
	//
	return rs, nil
}

// ErrNeedsFile is returned when Go output is requested on a writer, since Go
// output is generated directly into a file.
var ErrNeedsFile = errors.New("go output must be written to a file")

// Emit writes every rule to a given writer.
func (p *Emitter) Emit(w io.Writer) error {
	if p.Config.Format == Go {
		return ErrNeedsFile
	}
	//
	return p.emit(func(rs []rules.Rule) error {
		if p.Config.Format == Lisp {
			return WriteLisp(w, p.Config.Mode, rs)
		}
		//
		return WriteC(w, p.Config.Mode, rs)
	})
}

// EmitFile writes every rule to a given file, which is created (or truncated)
// as necessary.
func (p *Emitter) EmitFile(filename string) error {
	if p.Config.Format == Go {
		return p.emit(func(rs []rules.Rule) error {
			return GenerateGo(filename, p.Config.Package, p.Config.Mode, rs)
		})
	}
	//
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	//
	if err = p.Emit(file); err != nil {
		file.Close()
		return err
	}
	//
	return file.Close()
}

func (p *Emitter) emit(write func([]rules.Rule) error) error {
	stats := util.NewPerfStats()
	//
	rs, err := p.Rules()
	if err != nil {
		return err
	}
	//
	err = write(rs)
	//
	stats.Log(fmt.Sprintf("Emitting %d %s rules", len(rs), p.Config.Mode))
	//
	return err
}

// Validate checks that every operation applied by a rule is defined by the
// target, and that every variable has a type.  Rules are generated from a
// fixed set of identities, so a failure indicates an operation whose rule
// relies upon something the target lacks.
func Validate(isa *vex.ISA, rs []rules.Rule) error {
	var errs []error
	//
	for _, r := range rs {
		body := r.Body()
		//
		for _, op := range body.Ops() {
			if !isa.Has(op) {
				errs = append(errs, fmt.Errorf("%s rule for %s applies undefined operation %s", r.Mode(),
					r.Descriptor().Name, op))
			}
		}
		//
		for _, v := range body.Operands() {
			if v.Ty == vex.Invalid {
				errs = append(errs, fmt.Errorf("%s rule for %s has untyped operand %s", r.Mode(),
					r.Descriptor().Name, v.Name))
			}
		}
	}
	//
	if len(errs) > 0 {
		log.Debugf("%d rules failed validation", len(errs))
	}
	//
	return errors.Join(errs...)
}
