package recorder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mr-Dark-debug/ambiscope/internal/database"
)

type fakeSink struct {
	mu       sync.Mutex
	batches  [][]*database.CursorEvent
	attempts []*database.PracticeAttempt
	order    []string
	fail     bool
}

func (f *fakeSink) BatchRecordEvents(events []*database.CursorEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("disk full")
	}
	f.batches = append(f.batches, events)
	for _, e := range events {
		f.order = append(f.order, e.Action)
	}
	return nil
}

func (f *fakeSink) RecordAttempt(a *database.PracticeAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, a)
	f.order = append(f.order, "attempt")
	return nil
}

func (f *fakeSink) events() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.batches {
		n += len(b)
	}
	return n
}

func TestRecorderFlushesOnStop(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ambiscope.recorder")
	defer teardown()
	//
	sink := &fakeSink{}
	r := New(Config{BatchSize: 100, FlushInterval: time.Hour}, sink)
	r.Start(context.Background())
	for i := 0; i < 10; i++ {
		r.Record(&database.CursorEvent{Action: "advance"})
	}
	r.Stop()
	assert.Equal(t, 10, sink.events())
	m := r.Metrics()
	assert.Equal(t, int64(10), m.EventsRecorded)
	assert.Equal(t, int64(1), m.BatchesCommitted)
	assert.Zero(t, m.Dropped)
}

func TestRecorderFlushesOnBatchSize(t *testing.T) {
	sink := &fakeSink{}
	r := New(Config{BatchSize: 4, FlushInterval: time.Hour}, sink)
	r.Start(context.Background())
	defer r.Stop()
	for i := 0; i < 8; i++ {
		r.Record(&database.CursorEvent{Action: "advance"})
	}
	require.Eventually(t, func() bool { return sink.events() == 8 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(2), r.Metrics().BatchesCommitted)
}

func TestRecorderFlushesOnInterval(t *testing.T) {
	sink := &fakeSink{}
	r := New(Config{BatchSize: 100, FlushInterval: 10 * time.Millisecond}, sink)
	r.Start(context.Background())
	defer r.Stop()
	r.Record(&database.CursorEvent{Action: "retreat"})
	require.Eventually(t, func() bool { return sink.events() == 1 }, time.Second, 5*time.Millisecond)
}

func TestRecorderAttemptOrder(t *testing.T) {
	sink := &fakeSink{}
	r := New(Config{BatchSize: 100, FlushInterval: time.Hour}, sink)
	r.Start(context.Background())
	r.Record(&database.CursorEvent{Action: "advance"})
	r.Attempt(&database.PracticeAttempt{Chosen: "S → ab", Correct: true})
	r.Stop()
	assert.Equal(t, []string{"advance", "attempt"}, sink.order)
	assert.Equal(t, int64(1), r.Metrics().AttemptsRecorded)
	assert.NotZero(t, sink.attempts[0].Timestamp)
}

func TestRecorderKeepsQueueOrderOnDrain(t *testing.T) {
	for i := 0; i < 200; i++ {
		sink := &fakeSink{}
		r := New(Config{BatchSize: 100, FlushInterval: time.Hour}, sink)
		r.Record(&database.CursorEvent{Action: "advance"})
		r.Record(&database.CursorEvent{Action: "apply"})
		r.Attempt(&database.PracticeAttempt{Chosen: "E → id"})
		r.Record(&database.CursorEvent{Action: "retreat"})
		r.Start(context.Background())
		r.Stop()
		require.Equal(t, []string{"advance", "apply", "attempt", "retreat"}, sink.order, "run %d", i)
	}
}

func TestRecorderDropsAfterStop(t *testing.T) {
	sink := &fakeSink{}
	r := New(DefaultConfig(), sink)
	r.Start(context.Background())
	r.Stop()
	r.Record(&database.CursorEvent{Action: "advance"})
	r.Attempt(&database.PracticeAttempt{})
	assert.Equal(t, int64(2), r.Metrics().Dropped)
	assert.Zero(t, sink.events())
	r.Stop() // idempotent
}

func TestRecorderCountsErrors(t *testing.T) {
	sink := &fakeSink{fail: true}
	r := New(Config{BatchSize: 1, FlushInterval: time.Hour}, sink)
	r.Start(context.Background())
	r.Record(&database.CursorEvent{Action: "advance"})
	r.Stop()
	assert.Equal(t, int64(1), r.Metrics().ErrorCount)
	assert.Zero(t, r.Metrics().EventsRecorded)
}

func TestRecorderWritesToStore(t *testing.T) {
	store, err := database.NewDBService(":memory:")
	require.NoError(t, err)
	defer store.Close()
	sess := &database.Session{GrammarName: "arith", Mode: database.ModeDual}
	require.NoError(t, store.StartSession(sess))

	r := New(DefaultConfig(), store)
	r.Start(context.Background())
	for _, action := range []string{"advance", "advance", "retreat"} {
		r.Record(&database.CursorEvent{SessionID: sess.SessionID, Action: action})
	}
	r.Stop()

	events, err := store.SessionEvents(sess.SessionID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "retreat", events[2].Action)
	assert.Equal(t, 3, events[2].Seq)
}

func TestSessionBeginEnd(t *testing.T) {
	store, err := database.NewDBService(":memory:")
	require.NoError(t, err)
	defer store.Close()

	s, err := Begin(context.Background(), store, DefaultConfig(),
		&database.Session{GrammarName: "abab", Mode: database.ModePractice, Client: "test"})
	require.NoError(t, err)
	require.NotEmpty(t, s.ID)

	s.Record(&database.CursorEvent{SessionID: s.ID, Action: "advance", Result: "advanced"})
	s.Attempt(&database.PracticeAttempt{SessionID: s.ID, Side: "left", Step: 1, Chosen: "S → SS", Expected: "S → SS", Correct: true})
	require.NoError(t, s.End())

	sessions, err := store.ListSessions(database.SessionFilter{})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.NotNil(t, sessions[0].EndedAt)

	stats, err := store.SessionStats(s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Advances)
	assert.Equal(t, 1, stats.CorrectAttempts)
}
