// Package practice turns the dual cursor into a drill: instead of pressing
// "next", the learner picks the production that the next step applies.
package practice

import (
	"fmt"

	"github.com/Mr-Dark-debug/ambiscope/internal/cursor"
	"github.com/Mr-Dark-debug/ambiscope/internal/grammar"
)

// Outcome is the result of one Apply.
type Outcome int

const (
	Correct Outcome = iota
	Incorrect
	AlreadyComplete
	InvalidRule
)

func (o Outcome) String() string {
	switch o {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	case AlreadyComplete:
		return "already-complete"
	case InvalidRule:
		return "invalid-rule"
	}
	return "unknown"
}

// Attempt records one rule choice.
type Attempt struct {
	Side     cursor.Side `json:"side"`
	Step     int         `json:"step"` // index of the step being guessed
	Chosen   string      `json:"chosen"`
	Expected string      `json:"expected"`
	Correct  bool        `json:"correct"`
}

// Hint names the rule the next step applies.
type Hint struct {
	Side cursor.Side            `json:"side"`
	Step int                    `json:"step"`
	Rule string                 `json:"rule"`
	Form string                 `json:"form"` // sentential form the rule rewrites
	Type grammar.DerivationType `json:"type"`
}

// Stats counts attempts over the life of a drill.
type Stats struct {
	Attempts  int `json:"attempts"`
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
	Hints     int `json:"hints"`
	Auto      int `json:"auto"`
}

// Accuracy returns the share of correct attempts, 0 when there were none.
func (s Stats) Accuracy() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Attempts)
}

// Drill wraps a DualCursor. The cursor only moves through Apply and Auto.
type Drill struct {
	dual   *cursor.DualCursor
	stats  Stats
	misses int // consecutive misses on the current step
}

// New starts a drill over d.
func New(d *cursor.DualCursor) *Drill {
	return &Drill{dual: d}
}

// Cursor returns the underlying dual cursor.
func (p *Drill) Cursor() *cursor.DualCursor {
	return p.dual
}

// Expected returns the side about to move and the step it would move to.
// It reports false when both sides are complete.
func (p *Drill) Expected() (cursor.Side, int, grammar.Step, bool) {
	side, ok := p.dual.Peek()
	if !ok {
		return side, 0, grammar.Step{}, false
	}
	next := p.dual.Index(side) + 1
	return side, next, p.dual.Derivation(side).Steps[next], true
}

// Apply checks production ruleIndex of the current grammar against the
// rule of the next step. A correct choice advances the cursor; anything
// else leaves it where it is.
func (p *Drill) Apply(ruleIndex int) (Outcome, Attempt) {
	g := p.dual.Grammar()
	if ruleIndex < 0 || ruleIndex >= len(g.Productions) {
		return InvalidRule, Attempt{}
	}
	side, next, step, ok := p.Expected()
	if !ok {
		return AlreadyComplete, Attempt{}
	}
	a := Attempt{
		Side:     side,
		Step:     next,
		Chosen:   g.Productions[ruleIndex],
		Expected: step.Rule,
		Correct:  grammar.SameRule(g.Productions[ruleIndex], step.Rule),
	}
	p.stats.Attempts++
	if !a.Correct {
		p.stats.Incorrect++
		p.misses++
		return Incorrect, a
	}
	p.stats.Correct++
	p.misses = 0
	p.dual.Advance()
	return Correct, a
}

// Auto applies the expected rule without counting an attempt.
func (p *Drill) Auto() cursor.StepResult {
	r := p.dual.Advance()
	if r == cursor.Advanced {
		p.stats.Auto++
		p.misses = 0
	}
	return r
}

// Hint reveals the expected rule. It reports false when both sides are
// complete.
func (p *Drill) Hint() (Hint, bool) {
	side, next, step, ok := p.Expected()
	if !ok {
		return Hint{}, false
	}
	p.stats.Hints++
	d := p.dual.Derivation(side)
	return Hint{
		Side: side,
		Step: next,
		Rule: step.Rule,
		Form: d.Steps[next-1].Result,
		Type: d.Type,
	}, true
}

// Feedback returns the message shown after a miss. It grows more
// specific with each consecutive miss on the same step.
func (p *Drill) Feedback() string {
	switch {
	case p.misses == 0:
		return ""
	case p.misses == 1:
		return "That's not the correct rule for this step. Try again!"
	case p.misses == 2:
		side, _ := p.dual.Peek()
		t := p.dual.Derivation(side).Type
		return fmt.Sprintf("Not quite right. In a %s derivation the %s nonterminal is replaced first.", t, t)
	}
	return "Still not correct. Ask for a hint."
}

// Stats returns the counters so far.
func (p *Drill) Stats() Stats {
	return p.stats
}

// Reset rewinds the cursor and clears the miss streak. Stats are kept.
func (p *Drill) Reset() {
	p.dual.Reset()
	p.misses = 0
}
