package cursor

import (
	"github.com/Mr-Dark-debug/ambiscope/internal/grammar"
)

// Side names one panel of the dual view.
type Side int

const (
	Left Side = iota
	Right
)

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == Left {
		return Right
	}
	return Left
}

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// Turn is the side the next advance tries first.
type Turn int

const (
	NextIsLeft Turn = iota
	NextIsRight
)

// TurnOf returns the turn naming side s.
func TurnOf(s Side) Turn {
	if s == Left {
		return NextIsLeft
	}
	return NextIsRight
}

// Side returns the side named by t.
func (t Turn) Side() Side {
	if t == NextIsLeft {
		return Left
	}
	return Right
}

// Flip returns the other turn.
func (t Turn) Flip() Turn {
	return TurnOf(t.Side().Other())
}

func (t Turn) String() string {
	return "next-" + t.Side().String()
}

// DualState holds the two step indices and the turn flag.
type DualState struct {
	Left  int  `json:"left"`
	Right int  `json:"right"`
	Next  Turn `json:"next"`
}

// Index returns the step index of side s.
func (s DualState) Index(side Side) int {
	if side == Left {
		return s.Left
	}
	return s.Right
}

func (s DualState) shift(side Side, delta int) DualState {
	if side == Left {
		s.Left += delta
	} else {
		s.Right += delta
	}
	return s
}

// ────────────────────────────────────────────────────────────
// Transitions
// ────────────────────────────────────────────────────────────

// AdvanceDual steps the side named by s.Next, or the other side if that
// one already sits on its last step. The turn flag flips after every
// successful step, including the fallback, so once one side has finished
// the flag keeps alternating while only the unfinished side moves.
// lastL and lastR are the last step indices of the two derivations.
//
// If both sides are on their last step the state is returned unchanged
// with Complete.
func AdvanceDual(s DualState, lastL, lastR int) (DualState, Side, StepResult) {
	last := func(side Side) int {
		if side == Left {
			return lastL
		}
		return lastR
	}
	if s.Left >= lastL && s.Right >= lastR {
		return s, s.Next.Side(), Complete
	}
	side := s.Next.Side()
	if s.Index(side) >= last(side) {
		side = side.Other()
	}
	s = s.shift(side, 1)
	s.Next = s.Next.Flip()
	return s, side, Advanced
}

// RetreatDual undoes a step by inference from the state alone. The side
// advanced most recently is taken to be the opposite of s.Next. If that
// side is already at 0, which happens after lopsided progress, the side
// that is further along is decremented instead. The turn flag is set to
// the decremented side. RetreatDual reports false when both sides are at 0.
func RetreatDual(s DualState) (DualState, Side, bool) {
	if s.Left == 0 && s.Right == 0 {
		return s, s.Next.Side(), false
	}
	side := s.Next.Side().Other()
	if s.Index(side) == 0 {
		side = side.Other()
	}
	s = s.shift(side, -1)
	s.Next = TurnOf(side)
	return s, side, true
}

// LastMoved guesses the side advanced most recently, the way RetreatDual
// does. It reports false when both sides are at 0.
func LastMoved(s DualState) (Side, bool) {
	_, side, ok := RetreatDual(s)
	return side, ok
}

// RetreatPolicy selects how a DualCursor decides which side to step back.
type RetreatPolicy int

const (
	// RetreatJournal undoes advances from a trail of recorded moves, so
	// every retreat is the exact inverse of the matching advance.
	RetreatJournal RetreatPolicy = iota
	// RetreatInferred uses RetreatDual and needs no memory.
	RetreatInferred
)

func (p RetreatPolicy) String() string {
	if p == RetreatInferred {
		return "inferred"
	}
	return "journal"
}

// ParseRetreatPolicy reads "journal" or "inferred".
func ParseRetreatPolicy(s string) (RetreatPolicy, bool) {
	switch s {
	case "journal", "":
		return RetreatJournal, true
	case "inferred":
		return RetreatInferred, true
	}
	return RetreatJournal, false
}

// move is one entry of the retreat journal: the side stepped and the turn
// flag before the step.
type move struct {
	side Side
	prev Turn
}

// DualSnapshot is the observable state of a DualCursor.
type DualSnapshot struct {
	GrammarIndex int  `json:"grammar_index"`
	InputIndex   int  `json:"input_index"`
	Left         int  `json:"left"`
	Right        int  `json:"right"`
	Next         Side `json:"next"`
	IsComplete   bool `json:"is_complete"`
}

// DualCursor walks the first two derivations of an input in alternation.
// An input with a single derivation shows it on both sides.
type DualCursor struct {
	catalog    *grammar.Catalog
	grammarIdx int
	inputIdx   int
	state      DualState
	policy     RetreatPolicy
	trail      []move
	moved      Side
	hasMoved   bool
}

// DualOption configures a DualCursor.
type DualOption func(*DualCursor)

// WithRetreatPolicy sets the retreat policy. The default is RetreatJournal.
func WithRetreatPolicy(p RetreatPolicy) DualOption {
	return func(d *DualCursor) {
		d.policy = p
	}
}

// NewDual creates a dual cursor at (0, 0) with the left side to move first.
func NewDual(c *grammar.Catalog, opts ...DualOption) (*DualCursor, error) {
	if c.Len() == 0 {
		return nil, grammar.ErrEmptyCatalog
	}
	d := &DualCursor{catalog: c}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Catalog returns the catalog the cursor walks.
func (d *DualCursor) Catalog() *grammar.Catalog {
	return d.catalog
}

// Policy returns the retreat policy in use.
func (d *DualCursor) Policy() RetreatPolicy {
	return d.policy
}

// SelectGrammar switches to grammar i mod N and resets both sides.
func (d *DualCursor) SelectGrammar(i int) {
	d.grammarIdx = wrap(i, d.catalog.Len())
	d.inputIdx = 0
	d.Reset()
	tracer().Debugf("dual: grammar %d (%s)", d.grammarIdx, d.Grammar().Name)
}

// NextGrammar switches to the following grammar, wrapping at the end.
func (d *DualCursor) NextGrammar() {
	d.SelectGrammar(d.grammarIdx + 1)
}

// SelectInput switches to input i mod count and resets both sides.
func (d *DualCursor) SelectInput(i int) {
	d.inputIdx = wrap(i, len(d.Grammar().Inputs))
	d.Reset()
}

// Reset puts both sides on step 0 with the left side to move first.
func (d *DualCursor) Reset() {
	d.state = DualState{}
	d.trail = d.trail[:0]
	d.hasMoved = false
}

// Advance steps one side, see AdvanceDual.
func (d *DualCursor) Advance() StepResult {
	prev := d.state.Next
	next, side, result := AdvanceDual(d.state, d.last(Left), d.last(Right))
	if result != Advanced {
		d.hasMoved = false
		return result
	}
	d.state = next
	if d.policy == RetreatJournal {
		d.trail = append(d.trail, move{side: side, prev: prev})
	}
	d.moved, d.hasMoved = side, true
	tracer().Debugf("dual: advanced %s to (%d,%d), %s", side, d.state.Left, d.state.Right, d.state.Next)
	return result
}

// Retreat steps one side back according to the retreat policy. It
// reports false when both sides are at 0.
func (d *DualCursor) Retreat() bool {
	if d.policy == RetreatJournal && len(d.trail) > 0 {
		m := d.trail[len(d.trail)-1]
		d.trail = d.trail[:len(d.trail)-1]
		d.state = d.state.shift(m.side, -1)
		d.state.Next = m.prev
		d.moved, d.hasMoved = m.side, true
		return true
	}
	next, side, ok := RetreatDual(d.state)
	if !ok {
		d.hasMoved = false
		return false
	}
	d.state = next
	d.moved, d.hasMoved = side, true
	return true
}

// Moved reports the side touched by the last Advance or Retreat. It
// reports false if that call did not move anything.
func (d *DualCursor) Moved() (Side, bool) {
	return d.moved, d.hasMoved
}

// Peek returns the side the next Advance would step. It reports false if
// both sides are complete.
func (d *DualCursor) Peek() (Side, bool) {
	_, side, result := AdvanceDual(d.state, d.last(Left), d.last(Right))
	return side, result == Advanced
}

// State returns the raw transition state.
func (d *DualCursor) State() DualState {
	return d.state
}

// Index returns the step index of side s.
func (d *DualCursor) Index(s Side) int {
	return d.state.Index(s)
}

func (d *DualCursor) LeftComplete() bool {
	return d.state.Left >= d.last(Left)
}

func (d *DualCursor) RightComplete() bool {
	return d.state.Right >= d.last(Right)
}

// IsComplete reports whether both sides are on their last step.
func (d *DualCursor) IsComplete() bool {
	return d.LeftComplete() && d.RightComplete()
}

// CanAdvance reports whether Advance would move.
func (d *DualCursor) CanAdvance() bool {
	return !d.IsComplete()
}

// CanRetreat reports whether Retreat would move.
func (d *DualCursor) CanRetreat() bool {
	return d.state.Left > 0 || d.state.Right > 0
}

// Snapshot returns the current state.
func (d *DualCursor) Snapshot() DualSnapshot {
	return DualSnapshot{
		GrammarIndex: d.grammarIdx,
		InputIndex:   d.inputIdx,
		Left:         d.state.Left,
		Right:        d.state.Right,
		Next:         d.state.Next.Side(),
		IsComplete:   d.IsComplete(),
	}
}

func (d *DualCursor) Grammar() *grammar.Grammar {
	return d.catalog.Grammar(d.grammarIdx)
}

func (d *DualCursor) Input() *grammar.Input {
	return &d.Grammar().Inputs[d.inputIdx]
}

// Derivation returns the derivation shown on side s.
func (d *DualCursor) Derivation(s Side) *grammar.Derivation {
	in := d.Input()
	if s == Right && len(in.Derivations) > 1 {
		return &in.Derivations[1]
	}
	return &in.Derivations[0]
}

// Step returns the current step of side s.
func (d *DualCursor) Step(s Side) grammar.Step {
	return d.Derivation(s).Steps[d.state.Index(s)]
}

// History returns steps 0 through the current one of side s.
func (d *DualCursor) History(s Side) []grammar.Step {
	return d.Derivation(s).Steps[:d.state.Index(s)+1]
}

func (d *DualCursor) last(s Side) int {
	return d.Derivation(s).LastIndex()
}
