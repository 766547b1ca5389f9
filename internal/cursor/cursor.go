package cursor

import (
	"github.com/Mr-Dark-debug/ambiscope/internal/grammar"
)

// StepResult is the status of an advance.
type StepResult int

const (
	// Advanced means a step index moved forward.
	Advanced StepResult = iota
	// AlreadyAtEnd means the single cursor sat on the last step.
	AlreadyAtEnd
	// Complete means both sides of a dual cursor sat on their last step.
	Complete
)

func (r StepResult) String() string {
	switch r {
	case Advanced:
		return "advanced"
	case AlreadyAtEnd:
		return "already-at-end"
	case Complete:
		return "complete"
	}
	return "unknown"
}

// Walker is the part of the cursor API shared by Cursor and DualCursor.
type Walker interface {
	Advance() StepResult
	Retreat() bool
	Reset()
	SelectGrammar(i int)
	NextGrammar()
	IsComplete() bool
	Grammar() *grammar.Grammar
}

var (
	_ Walker = (*Cursor)(nil)
	_ Walker = (*DualCursor)(nil)
)

// Snapshot is the observable state of a Cursor.
type Snapshot struct {
	GrammarIndex    int  `json:"grammar_index"`
	InputIndex      int  `json:"input_index"`
	DerivationIndex int  `json:"derivation_index"`
	StepIndex       int  `json:"step_index"`
	IsComplete      bool `json:"is_complete"`
}

// Cursor walks one derivation at a time (single-panel mode).
type Cursor struct {
	catalog       *grammar.Catalog
	grammarIdx    int
	inputIdx      int
	derivationIdx int
	stepIdx       int
}

// New creates a cursor on step 0 of the first derivation of the first
// grammar. The catalog must hold at least one grammar and is expected to
// be valid (see grammar.Catalog.Validate).
func New(c *grammar.Catalog) (*Cursor, error) {
	if c.Len() == 0 {
		return nil, grammar.ErrEmptyCatalog
	}
	return &Cursor{catalog: c}, nil
}

// Catalog returns the catalog the cursor walks.
func (c *Cursor) Catalog() *grammar.Catalog {
	return c.catalog
}

// SelectGrammar switches to grammar i mod N. Negative indices wrap.
// Input, derivation and step are reset to 0.
func (c *Cursor) SelectGrammar(i int) {
	c.grammarIdx = wrap(i, c.catalog.Len())
	c.inputIdx = 0
	c.derivationIdx = 0
	c.stepIdx = 0
	tracer().Debugf("cursor: grammar %d (%s)", c.grammarIdx, c.Grammar().Name)
}

// NextGrammar switches to the following grammar, wrapping at the end.
func (c *Cursor) NextGrammar() {
	c.SelectGrammar(c.grammarIdx + 1)
}

// SelectInput switches to input i mod count of the current grammar.
func (c *Cursor) SelectInput(i int) {
	c.inputIdx = wrap(i, len(c.Grammar().Inputs))
	c.derivationIdx = 0
	c.stepIdx = 0
}

// ToggleDerivation cycles to the next derivation and rewinds to step 0.
func (c *Cursor) ToggleDerivation() {
	c.SelectDerivation(c.derivationIdx + 1)
}

// SelectDerivation switches to derivation i mod count and rewinds to step 0.
func (c *Cursor) SelectDerivation(i int) {
	c.derivationIdx = wrap(i, len(c.Input().Derivations))
	c.stepIdx = 0
	tracer().Debugf("cursor: derivation %d", c.derivationIdx)
}

// Advance moves one step forward. On the last step nothing moves and
// AlreadyAtEnd is returned.
func (c *Cursor) Advance() StepResult {
	if c.stepIdx >= c.Derivation().LastIndex() {
		return AlreadyAtEnd
	}
	c.stepIdx++
	return Advanced
}

// Retreat moves one step back. It reports false at step 0.
func (c *Cursor) Retreat() bool {
	if c.stepIdx == 0 {
		return false
	}
	c.stepIdx--
	return true
}

// Reset rewinds to step 0 of the current derivation.
func (c *Cursor) Reset() {
	c.stepIdx = 0
}

// IsComplete reports whether the cursor is on the last step.
func (c *Cursor) IsComplete() bool {
	return c.stepIdx == c.Derivation().LastIndex()
}

// Snapshot returns the current state.
func (c *Cursor) Snapshot() Snapshot {
	return Snapshot{
		GrammarIndex:    c.grammarIdx,
		InputIndex:      c.inputIdx,
		DerivationIndex: c.derivationIdx,
		StepIndex:       c.stepIdx,
		IsComplete:      c.IsComplete(),
	}
}

func (c *Cursor) Grammar() *grammar.Grammar {
	return c.catalog.Grammar(c.grammarIdx)
}

func (c *Cursor) Input() *grammar.Input {
	return &c.Grammar().Inputs[c.inputIdx]
}

func (c *Cursor) Derivation() *grammar.Derivation {
	return &c.Input().Derivations[c.derivationIdx]
}

// Step returns the step the cursor is on.
func (c *Cursor) Step() grammar.Step {
	return c.Derivation().Steps[c.stepIdx]
}

// StepIndex returns the current step index.
func (c *Cursor) StepIndex() int {
	return c.stepIdx
}

// History returns steps 0 through the current one.
func (c *Cursor) History() []grammar.Step {
	return c.Derivation().Steps[:c.stepIdx+1]
}

// wrap maps i into [0, n). n must be positive.
func wrap(i, n int) int {
	return ((i % n) + n) % n
}
