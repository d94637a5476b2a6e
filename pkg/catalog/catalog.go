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
	"fmt"
	"slices"

	"github.com/samber/lo"
	"github.com/scicomp/go-adrules/pkg/util"
	"github.com/scicomp/go-adrules/pkg/vex"
	log "github.com/sirupsen/logrus"
)

// Catalog maps operation names to their descriptors.  A catalog is built once
// and never modified afterwards.
type Catalog struct {
	isa         *vex.ISA
	descriptors []*Descriptor
	index       map[vex.Op]*Descriptor
	// Operations generated but removed because the target lacks them.
	removed []vex.Op
}

// Build generates the descriptors of every supported operation, removes those
// not defined by the given enumeration and validates the result.
func Build(isa *vex.ISA) (*Catalog, error) {
	stats := util.NewPerfStats()
	defer stats.Log("Building catalog")
	//
	return build(isa, generate())
}

func build(isa *vex.ISA, generated []*Descriptor) (*Catalog, error) {
	var err Error
	// Names must be unique by construction
	for _, name := range lo.FindDuplicatesBy(generated, func(d *Descriptor) vex.Op { return d.Name }) {
		err.add("duplicate descriptor %s", name.Name)
	}
	// Remove whatever the target does not define
	kept, dropped := lo.FilterReject(generated, func(d *Descriptor, _ int) bool { return isa.Has(d.Name) })
	removed := lo.Map(dropped, func(d *Descriptor, _ int) vex.Op { return d.Name })
	//
	crossCheck(removed)
	//
	for _, d := range kept {
		d.Signature, _ = isa.Lookup(d.Name)
		validate(d, &err)
	}
	//
	if len(err.problems) > 0 {
		return nil, &err
	}
	//
	index := lo.SliceToMap(kept, func(d *Descriptor) (vex.Op, *Descriptor) { return d.Name, d })
	//
	log.Debugf("catalog has %d descriptors (%d removed)", len(kept), len(removed))
	//
	return &Catalog{isa, kept, index, removed}, nil
}

// Check the operations removed against those expected to be missing, warning
// about any differences.  A difference indicates either that the target has
// gained an operation, or that the enumeration is incomplete.
func crossCheck(removed []vex.Op) {
	unexpected, absent := lo.Difference(removed, KnownMissing)
	//
	for _, op := range unexpected {
		log.Infof("operation %s is not defined by the target", op)
	}
	//
	for _, op := range absent {
		log.Warnf("operation %s expected to be missing is defined by the target", op)
	}
}

func validate(d *Descriptor, err *Error) {
	if d.Arity < 1 || d.Arity > 4 {
		err.add("%s has arity %d", d.Name, d.Arity)
	}
	//
	if int(d.Arity) != d.Signature.Arity() {
		err.add("%s has arity %d, but its signature is %s", d.Name, d.Arity, d.Signature)
	}
	//
	for i, j := range d.DiffInputs {
		if j < 1 || j > d.Arity {
			err.add("%s has differentiable input %d outside of its arity", d.Name, j)
		} else if i > 0 && d.DiffInputs[i-1] >= j {
			err.add("%s has unordered differentiable inputs %v", d.Name, d.DiffInputs)
		}
	}
	//
	if d.Width != 0 && !d.Layout().Valid() {
		err.add("%s has unsupported layout of %d lanes of %d bytes", d.Name, d.Lanes, d.Width)
	} else if d.Width == 0 && d.Lanes != 1 {
		err.add("%s has %d lanes of no width", d.Name, d.Lanes)
	}
	//
	if d.LowestLaneOnly && (d.Lanes < 2 || d.Rounded) {
		err.add("%s is lowest-lane-only but has %d lanes (rounded %t)", d.Name, d.Lanes, d.Rounded)
	}
	//
	if d.Rounded && (d.Arity < 2 || d.Signature.Args[0] != vex.I32) {
		err.add("%s has no rounding mode operand", d.Name)
	}
}

// ISA returns the enumeration of operations this catalog was built from.
func (p *Catalog) ISA() *vex.ISA {
	return p.isa
}

// Lookup returns the descriptor of a given operation, or an error wrapping
// ErrUnsupported if there is none.
func (p *Catalog) Lookup(name vex.Op) (*Descriptor, error) {
	if d, ok := p.index[name]; ok {
		return d, nil
	}
	//
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, name)
}

// Has checks whether a given operation is supported.
func (p *Catalog) Has(name vex.Op) bool {
	_, ok := p.index[name]
	return ok
}

// Descriptors returns every descriptor in the order of generation.
func (p *Catalog) Descriptors() []*Descriptor {
	return slices.Clone(p.descriptors)
}

// Family returns the descriptors of a given family, in the order of generation.
func (p *Catalog) Family(f Family) []*Descriptor {
	return lo.Filter(p.descriptors, func(d *Descriptor, _ int) bool { return d.Family == f })
}

// Removed returns the operations which were generated, but removed because the
// target does not define them.
func (p *Catalog) Removed() []vex.Op {
	return slices.Clone(p.removed)
}

// Len returns the number of descriptors.
func (p *Catalog) Len() int {
	return len(p.descriptors)
}
