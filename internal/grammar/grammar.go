package grammar

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Callers match them with errors.Is; the wrapped message
// carries the location.
var (
	ErrEmptyCatalog    = errors.New("catalog contains no grammars")
	ErrInvalidCatalog  = errors.New("invalid catalog")
	ErrGrammarNotFound = errors.New("grammar not found")
	ErrMalformedRule   = errors.New("malformed production rule")
	ErrUnknownSymbol   = errors.New("unknown grammar symbol")
)

// StartSymbolRule is the rule label carried by step 0 of every derivation.
const StartSymbolRule = "Start Symbol"

// DerivationType labels a derivation. It is asserted by the author of the
// data and never computed.
type DerivationType string

const (
	Leftmost  DerivationType = "leftmost"
	Rightmost DerivationType = "rightmost"
)

// Valid reports whether t is one of the known labels.
func (t DerivationType) Valid() bool {
	return t == Leftmost || t == Rightmost
}

// Title returns the label with an upper-case first letter ("Leftmost").
func (t DerivationType) Title() string {
	if t == "" {
		return ""
	}
	s := string(t)
	return strings.ToUpper(s[:1]) + s[1:]
}

// ────────────────────────────────────────────────────────────
// Data model
// ────────────────────────────────────────────────────────────

// Step is the sentential form reached after applying one rule.
type Step struct {
	Result string         `json:"result"`
	Rule   string         `json:"rule"`
	Type   DerivationType `json:"type"`
}

// IsStart reports whether the step is the start symbol step.
func (s Step) IsStart() bool {
	return s.Rule == StartSymbolRule
}

// Derivation is one way of rewriting the start symbol into an input string.
type Derivation struct {
	Description string         `json:"description"`
	Type        DerivationType `json:"type"`
	Steps       []Step         `json:"steps"`
}

// Len returns the number of steps, including the start step.
func (d *Derivation) Len() int {
	return len(d.Steps)
}

// LastIndex returns the index of the final step.
func (d *Derivation) LastIndex() int {
	return len(d.Steps) - 1
}

// Final returns the final step. The derivation must not be empty.
func (d *Derivation) Final() Step {
	return d.Steps[len(d.Steps)-1]
}

// Label renders "Leftmost Derivation: <description>" the way the step
// panel headers show it.
func (d *Derivation) Label() string {
	return fmt.Sprintf("%s Derivation: %s", d.Type.Title(), d.Description)
}

// Input is a target string together with the derivations claiming to
// produce it.
type Input struct {
	String      string       `json:"string"`
	Derivations []Derivation `json:"derivations"`
}

// IsAmbiguous reports whether more than one derivation is recorded.
func (in *Input) IsAmbiguous() bool {
	return len(in.Derivations) > 1
}

// Grammar is an immutable example grammar with its inputs.
type Grammar struct {
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description"`
	StartSymbol string   `json:"startSymbol"`
	Productions []string `json:"productions"`
	// Terminals optionally declares the terminal vocabulary. When empty the
	// vocabulary is inferred from the productions.
	Terminals []string `json:"terminals,omitempty"`
	Inputs    []Input  `json:"inputs"`
}

// Rules parses every production of g.
func (g *Grammar) Rules() ([]Rule, error) {
	rules := make([]Rule, 0, len(g.Productions))
	for i, p := range g.Productions {
		r, err := ParseRule(p)
		if err != nil {
			return nil, fmt.Errorf("production %d of %q: %w", i, g.Name, err)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// RuleIndex returns the position of the production matching text, or -1.
// Arrow style and whitespace are ignored.
func (g *Grammar) RuleIndex(text string) int {
	for i, p := range g.Productions {
		if SameRule(p, text) {
			return i
		}
	}
	return -1
}
