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
	_ "embed"
	"fmt"
	"strings"

	"github.com/consensys/bavard"
	"github.com/scicomp/go-adrules/pkg/ir"
	"github.com/scicomp/go-adrules/pkg/rules"
	log "github.com/sirupsen/logrus"
)

const copyrightHolder = "Consensys Software Inc."

//go:embed templates/dispatch.go.tmpl
var dispatchTemplate string

// Rule as presented to the dispatch template.  Lists are rendered ahead of
// time as comma-separated literals.
type goRule struct {
	Name          string
	Family        string
	Arity         uint
	DiffInputs    string
	Requires      string
	Results       string
	SuppressDebug bool
	C             string
	Lisp          string
}

type goDispatch struct {
	Mode  string
	Rules []goRule
}

// GenerateGo writes a given set of rules as a Go source file in a given
// package, holding each rule as data.
func GenerateGo(filename string, pkg string, mode rules.Mode, rs []rules.Rule) error {
	err := bavard.GenerateFromString(filename, []string{dispatchTemplate}, dispatchOf(mode, rs),
		bavard.Package(pkg), bavard.Apache2(copyrightHolder, 2025), bavard.GeneratedBy("adrules"),
		bavard.Verbose(false))
	if err != nil {
		return err
	}
	//
	log.Debugf("generated %s (package %s)", filename, pkg)
	//
	return nil
}

func dispatchOf(mode rules.Mode, rs []rules.Rule) goDispatch {
	data := goDispatch{Mode: mode.String()}
	//
	for _, r := range rs {
		var (
			d      = r.Descriptor()
			body   = r.Body()
			inputs = make([]string, len(d.DiffInputs))
		)
		//
		for i, n := range d.DiffInputs {
			inputs[i] = fmt.Sprintf("%d", n)
		}
		//
		data.Rules = append(data.Rules, goRule{
			Name:          string(d.Name),
			Family:        d.Family.String(),
			Arity:         d.Arity,
			DiffInputs:    strings.Join(inputs, ", "),
			Requires:      quoted(body.Requires),
			Results:       quoted(body.Results),
			SuppressDebug: r.SuppressDebug(),
			C:             CCase(r),
			Lisp:          LispRule(r).String(),
		})
	}
	//
	return data
}

func quoted(vars []*ir.Var) string {
	names := make([]string, len(vars))
	//
	for i, v := range vars {
		names[i] = fmt.Sprintf("%q", v.Name)
	}
	//
	return strings.Join(names, ", ")
}
