package grammar

import (
	"strings"

	"github.com/emirpasic/gods/sets/treeset"
)

// Vocabulary is the set of symbols of a grammar, split into nonterminals
// (every rule's left-hand side) and terminals.
type Vocabulary struct {
	nonterminals *treeset.Set
	terminals    *treeset.Set
}

// NewVocabulary derives the vocabulary of g. Declared terminals are taken
// as given; otherwise every run of right-hand side text that is not a
// nonterminal name becomes a terminal, so "(E)" yields "(", "E", ")" and
// "other" stays one terminal.
func NewVocabulary(g *Grammar) (*Vocabulary, error) {
	rules, err := g.Rules()
	if err != nil {
		return nil, err
	}
	v := &Vocabulary{
		nonterminals: treeset.NewWithStringComparator(),
		terminals:    treeset.NewWithStringComparator(),
	}
	if g.StartSymbol != "" {
		v.nonterminals.Add(g.StartSymbol)
	}
	for _, r := range rules {
		v.nonterminals.Add(r.LHS)
	}
	if len(g.Terminals) > 0 {
		for _, t := range g.Terminals {
			v.terminals.Add(t)
		}
		return v, nil
	}
	nts := v.Nonterminals()
	for _, r := range rules {
		for _, chunk := range strings.Fields(r.RHS) {
			for _, sym := range splitChunk(chunk, nts) {
				if !v.nonterminals.Contains(sym) {
					v.terminals.Add(sym)
				}
			}
		}
	}
	tracer().Debugf("vocabulary of %q: N=%v T=%v", g.Name, nts, v.Terminals())
	return v, nil
}

// splitChunk cuts a whitespace-free chunk at nonterminal names, longest
// name first. Text between nonterminals is kept as one piece.
func splitChunk(chunk string, nonterminals []string) []string {
	var out []string
	var pending strings.Builder
	for i := 0; i < len(chunk); {
		match := ""
		for _, nt := range nonterminals {
			if len(nt) > len(match) && strings.HasPrefix(chunk[i:], nt) {
				match = nt
			}
		}
		if match == "" {
			pending.WriteByte(chunk[i])
			i++
			continue
		}
		if pending.Len() > 0 {
			out = append(out, pending.String())
			pending.Reset()
		}
		out = append(out, match)
		i += len(match)
	}
	if pending.Len() > 0 {
		out = append(out, pending.String())
	}
	return out
}

// IsNonterminal reports whether sym is a rule left-hand side.
func (v *Vocabulary) IsNonterminal(sym string) bool {
	return v.nonterminals.Contains(sym)
}

// IsTerminal reports whether sym is a known terminal.
func (v *Vocabulary) IsTerminal(sym string) bool {
	return v.terminals.Contains(sym)
}

// Nonterminals returns the nonterminals in sorted order.
func (v *Vocabulary) Nonterminals() []string {
	return setStrings(v.nonterminals)
}

// Terminals returns the terminals in sorted order.
func (v *Vocabulary) Terminals() []string {
	return setStrings(v.terminals)
}

// Symbols returns all symbols, nonterminals first.
func (v *Vocabulary) Symbols() []string {
	return append(v.Nonterminals(), v.Terminals()...)
}

func setStrings(s *treeset.Set) []string {
	values := s.Values()
	out := make([]string, 0, len(values))
	for _, val := range values {
		out = append(out, val.(string))
	}
	return out
}
