package walk

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mr-Dark-debug/ambiscope/internal/cursor"
	"github.com/Mr-Dark-debug/ambiscope/internal/database"
	"github.com/Mr-Dark-debug/ambiscope/internal/grammar"
	"github.com/Mr-Dark-debug/ambiscope/internal/practice"
)

type memRecorder struct {
	events   []*database.CursorEvent
	attempts []*database.PracticeAttempt
}

func (r *memRecorder) Record(e *database.CursorEvent)      { r.events = append(r.events, e) }
func (r *memRecorder) Attempt(a *database.PracticeAttempt) { r.attempts = append(r.attempts, a) }

func newWalk(t *testing.T, mode string) (*Walk, *memRecorder) {
	t.Helper()
	rec := &memRecorder{}
	w, err := New(grammar.Builtin(), mode, cursor.RetreatJournal, WithRecorder(rec, "s-1"))
	require.NoError(t, err)
	return w, rec
}

func TestNewRejectsBadMode(t *testing.T) {
	_, err := New(grammar.Builtin(), "triple", cursor.RetreatJournal)
	assert.Error(t, err)
	_, err = New(&grammar.Catalog{}, database.ModeDual, cursor.RetreatJournal)
	assert.ErrorIs(t, err, grammar.ErrEmptyCatalog)
}

func TestDualWalkCompletesOnce(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ambiscope.walk")
	defer teardown()
	//
	w, rec := newWalk(t, database.ModeDual)
	completed := 0
	for i := 0; i < 10; i++ {
		m := w.Advance()
		require.True(t, m.Moved, "advance %d", i)
		if m.Completed {
			completed++
			assert.Equal(t, 9, i)
		}
	}
	assert.Equal(t, 1, completed)
	assert.True(t, w.IsComplete())

	m := w.Advance()
	assert.False(t, m.Moved)
	assert.False(t, m.Completed)
	assert.Equal(t, "complete", m.Result)

	require.Len(t, rec.events, 11)
	first := rec.events[0]
	assert.Equal(t, ActionAdvance, first.Action)
	assert.Equal(t, "left", first.Side)
	assert.Equal(t, 1, first.LeftStep)
	assert.Equal(t, 0, first.RightStep)
	assert.Equal(t, "s-1", first.SessionID)
	assert.Equal(t, "right", rec.events[1].Side)
	assert.Empty(t, rec.events[10].Side)
}

func TestRetreatReopensCompletion(t *testing.T) {
	w, _ := newWalk(t, database.ModeDual)
	for i := 0; i < 10; i++ {
		w.Advance()
	}
	m := w.Retreat()
	assert.True(t, m.Moved)
	assert.Equal(t, RetreatMoved, m.Result)
	assert.True(t, w.Advance().Completed, "finishing again notifies again")
}

func TestRetreatAtStart(t *testing.T) {
	w, rec := newWalk(t, database.ModeSingle)
	m := w.Retreat()
	assert.False(t, m.Moved)
	assert.Equal(t, RetreatAtStart, m.Result)
	require.Len(t, rec.events, 1)
	assert.Empty(t, rec.events[0].Side)
}

func TestSingleWalk(t *testing.T) {
	w, rec := newWalk(t, database.ModeSingle)
	assert.False(t, w.IsDual())
	for i := 0; i < 5; i++ {
		m := w.Advance()
		assert.True(t, m.Moved)
		assert.Equal(t, i == 4, m.Completed, "advance %d", i)
	}
	assert.True(t, w.IsComplete())
	m := w.Advance()
	assert.Equal(t, "already-at-end", m.Result)
	assert.False(t, m.Completed, "completion is reported once")

	w.Toggle()
	assert.Equal(t, 0, w.Single().StepIndex())
	assert.Equal(t, "Parse Tree B (* binds first)", w.Derivation(cursor.Left).Description)
	last := rec.events[len(rec.events)-1]
	assert.Equal(t, ActionToggle, last.Action)
	assert.Equal(t, 1, last.DerivationIndex)
}

func TestToggleIgnoredInDualMode(t *testing.T) {
	w, rec := newWalk(t, database.ModeDual)
	m := w.Toggle()
	assert.Equal(t, "ignored", m.Result)
	assert.Empty(t, rec.events)
}

func TestGrammarKeepsCursorsTogether(t *testing.T) {
	w, _ := newWalk(t, database.ModeDual)
	w.Advance()
	m := w.NextGrammar()
	assert.Equal(t, "abab", m.Result)
	assert.Equal(t, 1, w.Single().Snapshot().GrammarIndex)
	assert.Equal(t, cursor.DualSnapshot{GrammarIndex: 1}, w.Dual().Snapshot())

	w.SelectGrammar(-1)
	assert.Equal(t, "dangling-else", w.Grammar().Name)
}

func TestModeSwitchResets(t *testing.T) {
	w, _ := newWalk(t, database.ModeDual)
	w.Advance()
	w.Advance()
	m := w.CycleMode()
	assert.Equal(t, database.ModePractice, m.Result)
	assert.Equal(t, database.ModePractice, w.Mode())
	assert.False(t, w.Dual().CanRetreat())

	w.CycleMode()
	assert.Equal(t, database.ModeSingle, w.Mode())
	w.CycleMode()
	assert.Equal(t, database.ModeDual, w.Mode())

	_, err := w.SetMode("triple")
	assert.Error(t, err)
}

func TestPracticeApply(t *testing.T) {
	w, rec := newWalk(t, database.ModePractice)

	outcome, a, m := w.Apply(1) // E → E * E, but the left side needs E → E + E
	assert.Equal(t, practice.Incorrect, outcome)
	assert.False(t, m.Moved)
	assert.Equal(t, cursor.Left, a.Side)
	assert.Equal(t, 0, w.Dual().Index(cursor.Left))

	outcome, _, m = w.Apply(0)
	assert.Equal(t, practice.Correct, outcome)
	assert.True(t, m.Moved)
	assert.Equal(t, 1, w.Dual().Index(cursor.Left))

	require.Len(t, rec.attempts, 2)
	assert.False(t, rec.attempts[0].Correct)
	assert.Equal(t, "E → E * E", rec.attempts[0].Chosen)
	assert.Equal(t, "E → E + E", rec.attempts[0].Expected)
	assert.True(t, rec.attempts[1].Correct)
	require.Len(t, rec.events, 2)
	assert.Equal(t, "left", rec.events[0].Side)
	assert.Equal(t, "incorrect", rec.events[0].Result)

	outcome, _, _ = w.Apply(99)
	assert.Equal(t, practice.InvalidRule, outcome)
	assert.Len(t, rec.attempts, 2, "invalid rules are not attempts")
}

func TestApplyOutsidePractice(t *testing.T) {
	w, _ := newWalk(t, database.ModeDual)
	outcome, _, m := w.Apply(0)
	assert.Equal(t, practice.InvalidRule, outcome)
	assert.Equal(t, "ignored", m.Result)
}

func TestHint(t *testing.T) {
	w, rec := newWalk(t, database.ModePractice)
	w.Advance()
	h, ok := w.Hint()
	require.True(t, ok)
	assert.Equal(t, cursor.Right, h.Side)
	assert.Equal(t, "E → E * E", h.Rule)
	last := rec.events[len(rec.events)-1]
	assert.Equal(t, ActionHint, last.Action)
	assert.Equal(t, "right", last.Side)

	w.SetMode(database.ModeSingle)
	_, ok = w.Hint()
	assert.False(t, ok)
}

func TestTreeFollowsCursor(t *testing.T) {
	w, _ := newWalk(t, database.ModeDual)
	w.Advance()
	w.Advance()
	left, err := w.Tree(cursor.Left)
	require.NoError(t, err)
	assert.Equal(t, []string{"E", "+", "E"}, left.Yield())
	right, err := w.Tree(cursor.Right)
	require.NoError(t, err)
	assert.Equal(t, []string{"E", "*", "E"}, right.Yield())

	r1, _ := w.Replayer()
	r2, _ := w.Replayer()
	assert.Same(t, r1, r2)
}

func TestCompare(t *testing.T) {
	w, _ := newWalk(t, database.ModeDual)
	r, err := w.Compare()
	require.NoError(t, err)
	assert.True(t, r.Ambiguous())
}

func TestWalkWithoutRecorder(t *testing.T) {
	w, err := New(grammar.Builtin(), database.ModeDual, cursor.RetreatInferred)
	require.NoError(t, err)
	assert.Empty(t, w.SessionID())
	assert.True(t, w.Advance().Moved)
	assert.Equal(t, cursor.RetreatInferred, w.Dual().Policy())
}

func TestSingleWalkCompletesPerDerivation(t *testing.T) {
	w, _ := newWalk(t, database.ModeSingle)
	advance := func() (completed int) {
		for i := 0; i < 5; i++ {
			if w.Advance().Completed {
				completed++
			}
		}
		return completed
	}
	assert.Equal(t, 1, advance())

	w.Toggle()
	assert.Equal(t, 1, advance(), "the other derivation completes on its own")

	w.Retreat()
	assert.True(t, w.Advance().Completed)
}

func TestCheck(t *testing.T) {
	w, _ := newWalk(t, database.ModeSingle)
	s, warnings, err := w.Check()
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.True(t, s.Completes)
	assert.Equal(t, "id+id*id", s.Derived)
	assert.Equal(t, "Parse Tree A (+ binds first)", s.Description)

	w.Toggle()
	s, _, err = w.Check()
	require.NoError(t, err)
	assert.Equal(t, "Parse Tree B (* binds first)", s.Description)
	assert.True(t, s.Completes)
}
