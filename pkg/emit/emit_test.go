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
	"bytes"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/scicomp/go-adrules/pkg/catalog"
	"github.com/scicomp/go-adrules/pkg/rules"
	"github.com/scicomp/go-adrules/pkg/sexp"
	"github.com/scicomp/go-adrules/pkg/vex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultCatalog(t *testing.T) *catalog.Catalog {
	c, err := catalog.Build(vex.Default())
	require.NoError(t, err)
	//
	return c
}

func ruleFor(t *testing.T, mode rules.Mode, name vex.Op) rules.Rule {
	d, err := defaultCatalog(t).Lookup(name)
	require.NoError(t, err)
	//
	r, err := rules.NewEngine(mode).Rule(d)
	require.NoError(t, err)
	//
	return r
}

func Test_Format_01(t *testing.T) {
	for _, f := range []Format{C, Lisp, Go} {
		parsed, err := ParseFormat(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, parsed)
	}
	//
	_, err := ParseFormat("json")
	assert.Error(t, err)
}

func Test_C_01(t *testing.T) {
	expected := `case Iop_AddF64: {
  if(!d2) return NULL;
  if(!d3) return NULL;
  IRExpr* dotvalue = IRExpr_Triop(Iop_AddF64, arg1, d2, d3);
  return dotvalue;
}`
	//
	if diff := cmp.Diff(expected, CCase(ruleFor(t, rules.Forward, "AddF64"))); diff != "" {
		t.Errorf("unexpected C case (-want +got):\n%s", diff)
	}
}

func Test_C_02(t *testing.T) {
	text := CCase(ruleFor(t, rules.Reverse, "MulF64"))
	//
	assert.True(t, strings.HasPrefix(text, "case Iop_MulF64: {\n  if(!i2Lo) return NULL;\n  if(!i2Hi) return NULL;\n"))
	assert.Contains(t, text, "IRExpr** tapeLo_vec = dg_bar_writeToTape(diffenv, ")
	assert.True(t, strings.HasSuffix(text, "  return mkIRExprVec_2(indexLo, indexHi);\n}"))
}

func Test_C_03(t *testing.T) {
	// Conversions are never guarded
	text := CCase(ruleFor(t, rules.Forward, "I64StoF64"))
	//
	assert.NotContains(t, text, "return NULL")
	assert.Contains(t, text, "IRExpr* dotvalue = mkIRConst_zero(Ity_F64);")
	// Taint rules warn through the harness
	text = CCase(ruleFor(t, rules.Taint, "MulF64"))
	assert.Contains(t, text, "dg_trick_warn8(diffenv, ")
	assert.Contains(t, text, "return mkIRExprVec_2(flagsLo, flagsHi);")
}

func Test_Lisp_01(t *testing.T) {
	text := LispRule(ruleFor(t, rules.Forward, "AddF64")).String()
	//
	assert.Equal(t, "(rule AddF64 dot (body (requires d2 d3) (let dotvalue (AddF64 arg1 d2 d3)) (results dotvalue)))",
		text)
	// Round trip through the parser
	parsed, err := sexp.Parse(text)
	require.NoError(t, err)
	assert.Equal(t, text, parsed.String())
}

func Test_Emit_01(t *testing.T) {
	c := defaultCatalog(t)
	//
	for _, mode := range rules.Modes {
		var buf bytes.Buffer
		//
		err := NewEmitter(c, Config{mode, C, "dispatch"}).Emit(&buf)
		require.NoError(t, err)
		assert.Equal(t, c.Len(), strings.Count(buf.String(), "case Iop_"), mode)
		assert.True(t, strings.HasPrefix(buf.String(), "// ----"), mode)
		// Operations the target lacks are never emitted
		for _, op := range catalog.KnownMissing {
			assert.NotContains(t, buf.String(), op.CName(), mode)
		}
	}
}

func Test_Emit_02(t *testing.T) {
	var (
		c   = defaultCatalog(t)
		buf bytes.Buffer
	)
	//
	err := NewEmitter(c, Config{rules.Reverse, Lisp, "dispatch"}).Emit(&buf)
	require.NoError(t, err)
	//
	terms, err := sexp.ParseAll(buf.String())
	require.NoError(t, err)
	require.Len(t, terms, c.Len())
	//
	for _, term := range terms {
		list, ok := term.(*sexp.List)
		require.True(t, ok)
		assert.True(t, list.MatchSymbols(3, "rule"))
	}
}

func Test_Emit_03(t *testing.T) {
	var (
		c        = defaultCatalog(t)
		filename = filepath.Join(t.TempDir(), "trick.go")
		emitter  = NewEmitter(c, Config{rules.Taint, Go, "trick"})
	)
	//
	require.NoError(t, emitter.EmitFile(filename))
	//
	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	// Output must be a well-formed Go file
	file, err := parser.ParseFile(token.NewFileSet(), filename, data, parser.ParseComments)
	require.NoError(t, err)
	assert.Equal(t, "trick", file.Name.Name)
	//
	text := string(data)
	assert.Contains(t, text, "// Code generated by adrules DO NOT EDIT")
	assert.Contains(t, text, `"AddF64"`)
	assert.Contains(t, text, `Mode = "trick"`)
	//
	for _, op := range catalog.KnownMissing {
		assert.NotContains(t, text, `"`+string(op)+`"`)
	}
}

func Test_Emit_04(t *testing.T) {
	var (
		c   = defaultCatalog(t)
		buf bytes.Buffer
	)
	// Go output cannot go to a stream
	err := NewEmitter(c, Config{rules.Forward, Go, "dispatch"}).Emit(&buf)
	assert.ErrorIs(t, err, ErrNeedsFile)
	assert.Empty(t, buf.String())
	// Other formats can be written to files
	filename := filepath.Join(t.TempDir(), "dot.lisp")
	require.NoError(t, NewEmitter(c, Config{rules.Forward, Lisp, "dispatch"}).EmitFile(filename))
	//
	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	//
	terms, err := sexp.ParseAll(string(data))
	require.NoError(t, err)
	assert.Len(t, terms, c.Len())
}

func Test_Validate_01(t *testing.T) {
	var (
		c      = defaultCatalog(t)
		rs, _  = rules.Generate(c, rules.Forward)
		target = vex.Default().Without("CmpF64")
	)
	//
	assert.NoError(t, Validate(c.ISA(), rs))
	// Absolute values compare against zero
	err := Validate(target, rs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dot rule for AbsF64 applies undefined operation CmpF64")
}
