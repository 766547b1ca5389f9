package compare

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/Mr-Dark-debug/ambiscope/internal/grammar"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compareBuiltin(t *testing.T, name string) *Report {
	t.Helper()
	_, g, err := grammar.Builtin().Lookup(name)
	require.NoError(t, err)
	r, err := Compare(g, &g.Inputs[0])
	require.NoError(t, err)
	return r
}

func TestCompareArith(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ambiscope.parsetree")
	defer teardown()
	//
	assert := assert.New(t)
	r := compareBuiltin(t, "arith")
	assert.Len(r.Rows, 6)
	assert.Equal(2, r.DivergesAt)
	assert.True(r.SameFinalForm)
	assert.True(r.Left.Completes)
	assert.True(r.Right.Completes)
	assert.Equal("id+id*id", r.Left.Derived)
	assert.True(r.StructurallyDistinct)
	assert.True(r.Ambiguous())
	assert.Empty(r.Warnings)
}

func TestCompareAbabSameTree(t *testing.T) {
	r := compareBuiltin(t, "abab")
	assert.Equal(t, 3, r.DivergesAt)
	assert.False(t, r.StructurallyDistinct)
	assert.False(t, r.Ambiguous())
	require.Len(t, r.Warnings, 1)
	assert.Contains(t, r.Warnings[0], "same parse tree")
}

func TestCompareDanglingElse(t *testing.T) {
	r := compareBuiltin(t, "dangling-else")
	// "E" is a terminal here, so it survives the completion check
	assert.Equal(t, "ifEthenifEthenotherelseother", r.Left.Derived)
	assert.True(t, r.Left.Completes)
	assert.True(t, r.Ambiguous())
}

func TestCompareIncomplete(t *testing.T) {
	c := grammar.Builtin()
	g := &c.Grammars[1]
	d := &g.Inputs[0].Derivations[1]
	d.Steps = d.Steps[:3] // stops at "Sab"
	r, err := Compare(g, &g.Inputs[0])
	require.NoError(t, err)
	assert.False(t, r.Right.Completes)
	assert.Equal(t, "ab", r.Right.Derived)
	assert.False(t, r.SameFinalForm)
	assert.Equal(t, Missing, r.Rows[3].Right.Result)
	assert.Equal(t, "abab", r.Rows[3].Left.Result)
	found := false
	for _, w := range r.Warnings {
		if strings.Contains(w, `derives "ab", expected "abab"`) {
			found = true
		}
	}
	assert.True(t, found, "warnings: %v", r.Warnings)
}

func TestCompareUnreplayable(t *testing.T) {
	c := grammar.Builtin()
	g := &c.Grammars[0]
	g.Inputs[0].Derivations[1].Steps[2].Result = "E - E * E"
	r, err := Compare(g, &g.Inputs[0])
	require.NoError(t, err)
	assert.False(t, r.StructurallyDistinct)
	assert.Empty(t, r.Right.Signature)
	assert.NotEmpty(t, r.Warnings)
}

func TestCompareSingleDerivation(t *testing.T) {
	c := grammar.Builtin()
	g := &c.Grammars[0]
	g.Inputs[0].Derivations = g.Inputs[0].Derivations[:1]
	r, err := Compare(g, &g.Inputs[0])
	require.NoError(t, err)
	assert.Equal(t, 0, r.DivergesAt)
	assert.Contains(t, r.Warnings[0], "Only one derivation")

	g.Inputs[0].Derivations = nil
	_, err = Compare(g, &g.Inputs[0])
	assert.Error(t, err)
}

func TestRows(t *testing.T) {
	a := &grammar.Derivation{Steps: []grammar.Step{{Result: "S", Rule: grammar.StartSymbolRule}}}
	b := &grammar.Derivation{Steps: []grammar.Step{
		{Result: "S", Rule: grammar.StartSymbolRule},
		{Result: "a", Rule: "S → a"},
	}}
	rows := Rows(a, b)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{Step: 2, Left: Cell{Missing, Missing}, Right: Cell{"a", "S → a"}}, rows[1])
	assert.False(t, rows[0].Differs())
	assert.True(t, rows[1].Differs())
}

func TestFormatReport(t *testing.T) {
	r := compareBuiltin(t, "arith")
	md := FormatReport(r)
	assert.Contains(t, md, "# Derivation Comparison")
	assert.Contains(t, md, "| 2 ◀ | E + E | E → E + E | E * E | E → E * E |")
	assert.Contains(t, md, "- **Structurally distinct trees:** yes")
	assert.Contains(t, md, "different parse trees")
	assert.NotContains(t, md, "## Warnings")

	md = FormatReport(compareBuiltin(t, "abab"))
	assert.Contains(t, md, "## Warnings")
}

func TestReportJSON(t *testing.T) {
	r := compareBuiltin(t, "arith")
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"diverges_at":2`)
	assert.Contains(t, string(data), `"structurally_distinct":true`)
}

func TestTableData(t *testing.T) {
	data := TableData(compareBuiltin(t, "abab"))
	require.Len(t, data, 5)
	assert.Equal(t, "Step", data[0][0])
	assert.Equal(t, []string{"3", "abS", "S → ab", "Sab", "S → ab"}, data[3])
}
