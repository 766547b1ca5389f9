// Package compare sets two derivations of the same input side by side.
//
// A report is what the comparison view shows once both derivations are
// finished. It lines the steps up, checks that both end in the input
// string, and tells whether the replayed parse trees really differ.
// A report is a pure function of the grammar and the input.
package compare

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/Mr-Dark-debug/ambiscope/internal/grammar"
	"github.com/Mr-Dark-debug/ambiscope/internal/parsetree"
)

// Missing fills table cells past the end of the shorter derivation.
const Missing = "-"

// Cell is one side of a comparison row.
type Cell struct {
	Result string `json:"result"`
	Rule   string `json:"rule"`
}

// Row is one step number of the comparison table.
type Row struct {
	Step  int  `json:"step"` // 1-based
	Left  Cell `json:"left"`
	Right Cell `json:"right"`
}

// Differs reports whether the two sentential forms differ.
func (r Row) Differs() bool {
	return r.Left.Result != r.Right.Result
}

// Summary describes one derivation.
type Summary struct {
	Description string                 `json:"description"`
	Type        grammar.DerivationType `json:"type"`
	Steps       int                    `json:"steps"`
	Final       string                 `json:"final"`
	Derived     string                 `json:"derived"` // final form without nonterminals
	Completes   bool                   `json:"completes"`
	Signature   string                 `json:"signature,omitempty"`
	Tree        string                 `json:"tree,omitempty"`
}

// Report is the comparison of the first two derivations of an input.
type Report struct {
	Grammar              string   `json:"grammar"`
	Description          string   `json:"description"`
	Input                string   `json:"input"`
	GeneratedAt          string   `json:"generated_at"`
	Left                 Summary  `json:"left"`
	Right                Summary  `json:"right"`
	Rows                 []Row    `json:"rows"`
	DivergesAt           int      `json:"diverges_at"` // first differing row, 0 if none
	SameFinalForm        bool     `json:"same_final_form"`
	StructurallyDistinct bool     `json:"structurally_distinct"`
	Warnings             []string `json:"warnings"`
}

// Ambiguous reports whether the report demonstrates ambiguity: both
// derivations reach the input and their trees differ.
func (r *Report) Ambiguous() bool {
	return r.Left.Completes && r.Right.Completes && r.StructurallyDistinct
}

// Compare builds the report for input in of g. An input with a single
// derivation is compared with itself. Tree replay failures do not fail the
// report; they are listed as warnings and StructurallyDistinct stays false.
func Compare(g *grammar.Grammar, in *grammar.Input) (*Report, error) {
	if len(in.Derivations) == 0 {
		return nil, fmt.Errorf("input %q of %q: no derivations", in.String, g.Name)
	}
	left := &in.Derivations[0]
	right := left
	if len(in.Derivations) > 1 {
		right = &in.Derivations[1]
	}
	report := &Report{
		Grammar:     g.Name,
		Description: g.Description,
		Input:       in.String,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Rows:        Rows(left, right),
	}
	for _, row := range report.Rows {
		if row.Differs() {
			report.DivergesAt = row.Step
			break
		}
	}
	report.SameFinalForm = left.Len() > 0 && right.Len() > 0 &&
		compact(left.Final().Result) == compact(right.Final().Result)

	replayer, err := parsetree.NewReplayer(g)
	if err != nil {
		return nil, fmt.Errorf("comparing %q: %w", g.Name, err)
	}
	report.Left = summarize(replayer, left, in.String, &report.Warnings)
	report.Right = summarize(replayer, right, in.String, &report.Warnings)
	if report.Left.Signature != "" && report.Right.Signature != "" {
		report.StructurallyDistinct = report.Left.Signature != report.Right.Signature
	}

	if len(in.Derivations) < 2 {
		report.Warnings = append(report.Warnings,
			"Only one derivation is recorded; nothing to compare.")
	} else if report.Left.Signature != "" && report.Right.Signature != "" && !report.StructurallyDistinct {
		report.Warnings = append(report.Warnings,
			"Both derivations build the same parse tree; they differ only in the order of rule applications.")
	}
	for _, s := range []Summary{report.Left, report.Right} {
		if !s.Completes {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("%s derives %q, expected %q.", s.Description, s.Derived, compact(in.String)))
		}
	}
	if len(in.Derivations) > 2 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("%d derivations recorded; only the first two are compared.", len(in.Derivations)))
	}
	return report, nil
}

// Summarize describes derivation d of input on its own, for a view that
// shows one derivation at a time. Replay problems come back as warnings.
func Summarize(r *parsetree.Replayer, d *grammar.Derivation, input string) (Summary, []string) {
	var warnings []string
	s := summarize(r, d, input, &warnings)
	return s, warnings
}

func summarize(r *parsetree.Replayer, d *grammar.Derivation, input string, warnings *[]string) Summary {
	s := Summary{
		Description: d.Description,
		Type:        d.Type,
		Steps:       d.Len(),
	}
	if d.Len() == 0 {
		return s
	}
	s.Final = d.Final().Result
	derived, err := r.Tokenizer().Derived(s.Final)
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("%s: %v", d.Description, err))
		derived = compact(s.Final)
	}
	s.Derived = derived
	s.Completes = derived == compact(input)
	tree, err := r.ReplayAll(d)
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("%s: %v", d.Description, err))
		return s
	}
	s.Tree = tree.Bracketed()
	if sig, err := tree.Signature(); err == nil {
		s.Signature = sig
	}
	return s
}

// Rows lines up the steps of two derivations. Row i shows step i-1 of
// each; cells past the end of the shorter derivation hold Missing.
func Rows(left, right *grammar.Derivation) []Row {
	n := max(left.Len(), right.Len())
	rows := make([]Row, n)
	cell := func(d *grammar.Derivation, i int) Cell {
		if i >= d.Len() {
			return Cell{Result: Missing, Rule: Missing}
		}
		return Cell{Result: d.Steps[i].Result, Rule: d.Steps[i].Rule}
	}
	for i := range rows {
		rows[i] = Row{Step: i + 1, Left: cell(left, i), Right: cell(right, i)}
	}
	return rows
}

// compact removes all whitespace.
func compact(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
