package grammar

import (
	"fmt"
	"strings"
)

// Arrows accepted between the left- and right-hand side of a rule.
var arrows = []string{"→", "->", "::="}

// Rule is a parsed production. RHS holds the right-hand side text; it is
// split into symbols by a Tokenizer, since forms like "SS" carry no spaces.
type Rule struct {
	LHS  string `json:"lhs"`
	RHS  string `json:"rhs"`
	Text string `json:"text"`
}

// ParseRule reads "A → β". The left-hand side must be a single word; the
// right-hand side may be empty (an ε-rule) or the literal "ε".
func ParseRule(text string) (Rule, error) {
	for _, arrow := range arrows {
		lhs, rhs, found := strings.Cut(text, arrow)
		if !found {
			continue
		}
		lhs = strings.TrimSpace(lhs)
		if lhs == "" || strings.ContainsAny(lhs, " \t") {
			return Rule{}, fmt.Errorf("%w: bad left-hand side in %q", ErrMalformedRule, text)
		}
		rhs = strings.Join(strings.Fields(rhs), " ")
		if rhs == "ε" {
			rhs = ""
		}
		return Rule{LHS: lhs, RHS: rhs, Text: text}, nil
	}
	return Rule{}, fmt.Errorf("%w: no arrow in %q", ErrMalformedRule, text)
}

// Canonical renders the rule with a single "→" and single spaces.
func (r Rule) Canonical() string {
	if r.RHS == "" {
		return r.LHS + " → ε"
	}
	return r.LHS + " → " + r.RHS
}

func (r Rule) String() string {
	return r.Canonical()
}

// SameRule reports whether two rule texts denote the same production.
// Unparseable texts compare by exact equality.
func SameRule(a, b string) bool {
	ra, errA := ParseRule(a)
	rb, errB := ParseRule(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return ra.Canonical() == rb.Canonical()
}
