// Package walk drives the cursors on behalf of a user interface.
//
// A Walk owns a single cursor, a dual cursor and a practice drill over
// the same catalog and keeps them on the same grammar. Every action is
// reported as a Move and, when a recorder is attached, written to the walk
// history. The terminal UI and the REPL are thin layers over a Walk.
//
// A Walk is not safe for concurrent use.
package walk

import (
	"fmt"
	"time"

	"github.com/npillmayer/schuko/tracing"

	"github.com/Mr-Dark-debug/ambiscope/internal/compare"
	"github.com/Mr-Dark-debug/ambiscope/internal/cursor"
	"github.com/Mr-Dark-debug/ambiscope/internal/database"
	"github.com/Mr-Dark-debug/ambiscope/internal/grammar"
	"github.com/Mr-Dark-debug/ambiscope/internal/parsetree"
	"github.com/Mr-Dark-debug/ambiscope/internal/practice"
)

// tracer traces with key 'ambiscope.walk'.
func tracer() tracing.Trace {
	return tracing.Select("ambiscope.walk")
}

// Actions as they appear in the walk history.
const (
	ActionAdvance = "advance"
	ActionRetreat = "retreat"
	ActionToggle  = "toggle"
	ActionGrammar = "grammar"
	ActionReset   = "reset"
	ActionMode    = "mode"
	ActionApply   = "apply"
	ActionHint    = "hint"
)

// Retreat results.
const (
	RetreatMoved   = "moved"
	RetreatAtStart = "at-start"
)

// Recorder receives history records. *recorder.Recorder implements it.
type Recorder interface {
	Record(e *database.CursorEvent)
	Attempt(a *database.PracticeAttempt)
}

// Move describes what an action did.
type Move struct {
	Action string
	Result string
	// Side is the side that moved, or was guessed or hinted, in dual and
	// practice mode. HasSide tells whether it is set.
	Side    cursor.Side
	HasSide bool
	Moved   bool
	// Completed is set on the action that finished the second of two
	// derivations. It is set once per input.
	Completed bool
}

// Walk is the state behind one interactive session.
type Walk struct {
	catalog *grammar.Catalog
	single  *cursor.Cursor
	dual    *cursor.DualCursor
	drill   *practice.Drill
	mode    string

	replayers map[int]*parsetree.Replayer

	rec       Recorder
	sessionID string
	completed bool
}

// Option configures a Walk.
type Option func(*Walk)

// WithRecorder records every action under sessionID.
func WithRecorder(r Recorder, sessionID string) Option {
	return func(w *Walk) {
		w.rec = r
		w.sessionID = sessionID
	}
}

// New creates a walk in mode over catalog c.
func New(c *grammar.Catalog, mode string, policy cursor.RetreatPolicy, opts ...Option) (*Walk, error) {
	if !ValidMode(mode) {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
	single, err := cursor.New(c)
	if err != nil {
		return nil, err
	}
	dual, err := cursor.NewDual(c, cursor.WithRetreatPolicy(policy))
	if err != nil {
		return nil, err
	}
	w := &Walk{
		catalog:   c,
		single:    single,
		dual:      dual,
		drill:     practice.New(dual),
		mode:      mode,
		replayers: make(map[int]*parsetree.Replayer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// ValidMode reports whether mode is single, dual or practice.
func ValidMode(mode string) bool {
	switch mode {
	case database.ModeSingle, database.ModeDual, database.ModePractice:
		return true
	}
	return false
}

func (w *Walk) Catalog() *grammar.Catalog {
	return w.catalog
}

// Mode returns single, dual or practice.
func (w *Walk) Mode() string {
	return w.mode
}

func (w *Walk) Single() *cursor.Cursor {
	return w.single
}

func (w *Walk) Dual() *cursor.DualCursor {
	return w.dual
}

func (w *Walk) Drill() *practice.Drill {
	return w.drill
}

// SessionID returns the history session, empty when not recording.
func (w *Walk) SessionID() string {
	return w.sessionID
}

func (w *Walk) GrammarIndex() int {
	return w.dual.Snapshot().GrammarIndex
}

func (w *Walk) Grammar() *grammar.Grammar {
	return w.dual.Grammar()
}

func (w *Walk) Input() *grammar.Input {
	return w.dual.Input()
}

// Derivation returns the derivation shown on side s. In single mode it is
// the derivation the single cursor walks.
func (w *Walk) Derivation(s cursor.Side) *grammar.Derivation {
	if w.mode == database.ModeSingle {
		return w.single.Derivation()
	}
	return w.dual.Derivation(s)
}

// History returns the visited steps of side s.
func (w *Walk) History(s cursor.Side) []grammar.Step {
	if w.mode == database.ModeSingle {
		return w.single.History()
	}
	return w.dual.History(s)
}

// IsDual reports whether two panels are shown.
func (w *Walk) IsDual() bool {
	return w.mode != database.ModeSingle
}

// walker returns the cursor the current mode moves.
func (w *Walk) walker() cursor.Walker {
	if w.mode == database.ModeSingle {
		return w.single
	}
	return w.dual
}

// IsComplete reports whether the cursor of the current mode is complete.
func (w *Walk) IsComplete() bool {
	return w.walker().IsComplete()
}

// Advance steps the cursor of the current mode. In practice mode it
// applies the expected rule without counting an attempt.
func (w *Walk) Advance() Move {
	var m Move
	switch w.mode {
	case database.ModeSingle:
		r := w.single.Advance()
		m = Move{Action: ActionAdvance, Result: r.String(), Moved: r == cursor.Advanced}
	case database.ModePractice:
		r := w.drill.Auto()
		m = w.dualMove(ActionAdvance, r.String(), r == cursor.Advanced)
	default:
		r := w.dual.Advance()
		m = w.dualMove(ActionAdvance, r.String(), r == cursor.Advanced)
	}
	w.checkComplete(&m)
	w.record(m)
	return m
}

// Retreat steps the cursor of the current mode back.
func (w *Walk) Retreat() Move {
	var ok bool
	if w.mode == database.ModeSingle {
		ok = w.single.Retreat()
	} else {
		ok = w.dual.Retreat()
	}
	result := RetreatAtStart
	if ok {
		result = RetreatMoved
	}
	var m Move
	if w.mode == database.ModeSingle {
		m = Move{Action: ActionRetreat, Result: result, Moved: ok}
	} else {
		m = w.dualMove(ActionRetreat, result, ok)
	}
	if ok {
		w.completed = false
	}
	w.record(m)
	return m
}

// Toggle switches the single cursor to the next derivation. It does
// nothing in the other modes.
func (w *Walk) Toggle() Move {
	if w.mode != database.ModeSingle {
		return Move{Action: ActionToggle, Result: "ignored"}
	}
	w.single.ToggleDerivation()
	w.completed = false
	m := Move{Action: ActionToggle, Result: "ok", Moved: true}
	w.record(m)
	return m
}

// SelectGrammar moves every cursor to grammar i mod N.
func (w *Walk) SelectGrammar(i int) Move {
	w.single.SelectGrammar(i)
	w.dual.SelectGrammar(i)
	w.drill.Reset()
	w.completed = false
	m := Move{Action: ActionGrammar, Result: w.Grammar().Name, Moved: true}
	w.record(m)
	return m
}

// NextGrammar moves every cursor to the following grammar.
func (w *Walk) NextGrammar() Move {
	return w.SelectGrammar(w.GrammarIndex() + 1)
}

// Reset rewinds the cursor of the current mode.
func (w *Walk) Reset() Move {
	if w.mode == database.ModeSingle {
		w.single.Reset()
	} else {
		w.drill.Reset()
	}
	w.completed = false
	m := Move{Action: ActionReset, Result: "ok", Moved: true}
	w.record(m)
	return m
}

// SetMode switches to mode and rewinds its cursor.
func (w *Walk) SetMode(mode string) (Move, error) {
	if !ValidMode(mode) {
		return Move{}, fmt.Errorf("unknown mode %q", mode)
	}
	w.mode = mode
	w.single.Reset()
	w.drill.Reset()
	w.completed = false
	m := Move{Action: ActionMode, Result: mode, Moved: true}
	w.record(m)
	return m, nil
}

// CycleMode switches single → dual → practice → single.
func (w *Walk) CycleMode() Move {
	next := map[string]string{
		database.ModeSingle:   database.ModeDual,
		database.ModeDual:     database.ModePractice,
		database.ModePractice: database.ModeSingle,
	}[w.mode]
	m, _ := w.SetMode(next)
	return m
}

// Apply picks production ruleIndex in practice mode.
func (w *Walk) Apply(ruleIndex int) (practice.Outcome, practice.Attempt, Move) {
	if w.mode != database.ModePractice {
		return practice.InvalidRule, practice.Attempt{}, Move{Action: ActionApply, Result: "ignored"}
	}
	outcome, a := w.drill.Apply(ruleIndex)
	m := w.dualMove(ActionApply, outcome.String(), outcome == practice.Correct)
	if outcome == practice.Correct || outcome == practice.Incorrect {
		m.Side, m.HasSide = a.Side, true
	}
	w.checkComplete(&m)
	w.record(m)
	if w.rec != nil && (outcome == practice.Correct || outcome == practice.Incorrect) {
		w.rec.Attempt(&database.PracticeAttempt{
			SessionID: w.sessionID,
			Side:      a.Side.String(),
			Step:      a.Step,
			Chosen:    a.Chosen,
			Expected:  a.Expected,
			Correct:   a.Correct,
		})
	}
	return outcome, a, m
}

// Hint reveals the next rule. It works in dual and practice mode.
func (w *Walk) Hint() (practice.Hint, bool) {
	if w.mode == database.ModeSingle {
		return practice.Hint{}, false
	}
	h, ok := w.drill.Hint()
	if ok {
		w.record(Move{Action: ActionHint, Result: h.Rule, Side: h.Side, HasSide: true})
	}
	return h, ok
}

// Compare builds the comparison report for the current input.
func (w *Walk) Compare() (*compare.Report, error) {
	return compare.Compare(w.Grammar(), w.Input())
}

// Check summarizes the derivation shown in single mode: its final form,
// whether that derives the input, and its parse tree.
func (w *Walk) Check() (compare.Summary, []string, error) {
	r, err := w.Replayer()
	if err != nil {
		return compare.Summary{}, nil, err
	}
	s, warnings := compare.Summarize(r, w.single.Derivation(), w.Input().String)
	return s, warnings, nil
}

// Replayer returns the parse tree replayer of the current grammar.
func (w *Walk) Replayer() (*parsetree.Replayer, error) {
	gi := w.GrammarIndex()
	if r, ok := w.replayers[gi]; ok {
		return r, nil
	}
	r, err := parsetree.NewReplayer(w.Grammar())
	if err != nil {
		return nil, err
	}
	w.replayers[gi] = r
	return r, nil
}

// Tree replays the derivation shown on side s up to its current step. In
// single mode the side is ignored.
func (w *Walk) Tree(s cursor.Side) (*parsetree.Tree, error) {
	r, err := w.Replayer()
	if err != nil {
		return nil, err
	}
	if w.mode == database.ModeSingle {
		return r.Replay(w.single.Derivation(), w.single.StepIndex())
	}
	return r.Replay(w.dual.Derivation(s), w.dual.Index(s))
}

func (w *Walk) dualMove(action, result string, moved bool) Move {
	m := Move{Action: action, Result: result, Moved: moved}
	if moved {
		m.Side, m.HasSide = w.dual.Moved()
	}
	return m
}

// checkComplete marks the first move that completes the cursor of the
// current mode: the single derivation reaching its last step, or both
// sides of the dual cursor.
func (w *Walk) checkComplete(m *Move) {
	if !m.Moved || w.completed || !w.IsComplete() {
		return
	}
	w.completed = true
	m.Completed = true
	if w.mode == database.ModeSingle {
		tracer().Infof("%s of %q complete", w.Derivation(cursor.Left).Description, w.Input().String)
		return
	}
	tracer().Infof("both derivations of %q complete", w.Input().String)
}

// Event builds the history record for m from the current cursor state.
func (w *Walk) Event(m Move) *database.CursorEvent {
	e := &database.CursorEvent{
		SessionID: w.sessionID,
		Action:    m.Action,
		Result:    m.Result,
		Timestamp: time.Now().UnixNano(),
	}
	if w.mode == database.ModeSingle {
		s := w.single.Snapshot()
		e.GrammarIndex = s.GrammarIndex
		e.DerivationIndex = s.DerivationIndex
		e.StepIndex = s.StepIndex
		return e
	}
	s := w.dual.Snapshot()
	e.GrammarIndex = s.GrammarIndex
	e.LeftStep = s.Left
	e.RightStep = s.Right
	if m.HasSide {
		e.Side = m.Side.String()
	}
	return e
}

func (w *Walk) record(m Move) {
	if w.rec == nil {
		return
	}
	w.rec.Record(w.Event(m))
}
