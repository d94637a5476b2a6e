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
package rules

import (
	"errors"
	"fmt"

	"github.com/scicomp/go-adrules/pkg/catalog"
	"github.com/scicomp/go-adrules/pkg/ir"
	"github.com/scicomp/go-adrules/pkg/util"
)

// Engine generates the rules of a given mode.
type Engine interface {
	// Mode returns the mode of the rules generated by this engine.
	Mode() Mode
	// Rule generates the rule for a given operation.
	Rule(d *catalog.Descriptor) (Rule, error)
}

// NewEngine constructs the engine for a given mode.
func NewEngine(mode Mode) Engine {
	switch mode {
	case Forward:
		return &forwardEngine{false}
	case ForwardDebug:
		return &forwardEngine{true}
	case Reverse:
		return &reverseEngine{}
	case Taint:
		return &taintEngine{}
	}
	//
	panic(fmt.Sprintf("unknown mode %d", mode))
}

// Generate the rules of a given mode for every operation in a catalog, in
// catalog order.
func Generate(c *catalog.Catalog, mode Mode) ([]Rule, error) {
	var (
		stats  = util.NewPerfStats()
		engine = NewEngine(mode)
		rules  = make([]Rule, 0, c.Len())
		errs   []error
	)
	//
	for _, d := range c.Descriptors() {
		r, err := engine.Rule(d)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		//
		rules = append(rules, r)
	}
	//
	stats.Log(fmt.Sprintf("Generating %s rules", mode))
	//
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	//
	return rules, nil
}

// Check the results of a generated body have the type of the operation's
// result.
func checkResults(d *catalog.Descriptor, mode Mode, body *ir.Body) error {
	for _, v := range body.Results {
		if v.Ty != d.Result() {
			return fmt.Errorf("%s rule for %s computes %s of type %s, expected %s", mode, d.Name, v.Name, v.Ty,
				d.Result())
		}
	}
	//
	return nil
}

func unsupported(d *catalog.Descriptor, mode Mode) error {
	return fmt.Errorf("no %s rule for %s of family %s", mode, d.Name, d.Family)
}
