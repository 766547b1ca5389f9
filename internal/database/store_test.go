package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Mr-Dark-debug/ambiscope/internal/grammar"
)

func openStore(t *testing.T) *DBService {
	t.Helper()
	svc, err := NewDBService(":memory:")
	if err != nil {
		t.Fatalf("NewDBService(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

// TestNewDBService verifies that the database initializes correctly
// with the embedded schema using an in-memory SQLite instance.
func TestNewDBService(t *testing.T) {
	svc := openStore(t)
	c, err := svc.LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("expected empty catalog, got %d grammars", c.Len())
	}
}

// TestCatalogRoundTrip saves the built-in catalog and reads it back.
func TestCatalogRoundTrip(t *testing.T) {
	svc := openStore(t)

	if err := svc.SaveCatalog(grammar.Builtin()); err != nil {
		t.Fatalf("SaveCatalog failed: %v", err)
	}
	c, err := svc.LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	want := grammar.Builtin()
	if c.Len() != want.Len() {
		t.Fatalf("expected %d grammars, got %d", want.Len(), c.Len())
	}
	for i := range want.Grammars {
		w, g := &want.Grammars[i], &c.Grammars[i]
		if g.Name != w.Name || g.StartSymbol != w.StartSymbol {
			t.Errorf("grammar %d: expected %s/%s, got %s/%s", i, w.Name, w.StartSymbol, g.Name, g.StartSymbol)
		}
		if fmt.Sprint(g.Productions) != fmt.Sprint(w.Productions) {
			t.Errorf("grammar %s: productions differ: %v", w.Name, g.Productions)
		}
		if fmt.Sprint(g.Terminals) != fmt.Sprint(w.Terminals) {
			t.Errorf("grammar %s: terminals differ: %v", w.Name, g.Terminals)
		}
		if fmt.Sprintf("%+v", g.Inputs) != fmt.Sprintf("%+v", w.Inputs) {
			t.Errorf("grammar %s: inputs differ", w.Name)
		}
	}
	if err := c.Validate(); err != nil {
		t.Errorf("loaded catalog is invalid: %v", err)
	}
}

// TestSaveCatalogReplaces verifies that saving twice leaves one copy.
func TestSaveCatalogReplaces(t *testing.T) {
	svc := openStore(t)

	if err := svc.SaveCatalog(grammar.Builtin()); err != nil {
		t.Fatalf("SaveCatalog failed: %v", err)
	}
	small := grammar.Builtin()
	small.Grammars = small.Grammars[1:2]
	if err := svc.SaveCatalog(small); err != nil {
		t.Fatalf("second SaveCatalog failed: %v", err)
	}
	c, err := svc.LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	if c.Len() != 1 || c.Grammars[0].Name != "abab" {
		t.Fatalf("expected only abab, got %v", c.Names())
	}

	var steps int
	if err := svc.db.QueryRow(`SELECT COUNT(*) FROM steps`).Scan(&steps); err != nil {
		t.Fatalf("counting steps failed: %v", err)
	}
	if steps != 8 {
		t.Errorf("expected 8 steps left after cascade, got %d", steps)
	}
}

// TestSaveCatalogRejectsInvalid verifies that nothing is written for an
// invalid catalog.
func TestSaveCatalogRejectsInvalid(t *testing.T) {
	svc := openStore(t)

	bad := grammar.Builtin()
	bad.Grammars[0].StartSymbol = ""
	err := svc.SaveCatalog(bad)
	if !errors.Is(err, grammar.ErrInvalidCatalog) {
		t.Fatalf("expected ErrInvalidCatalog, got %v", err)
	}
}

// TestSessionLifecycle verifies start → events → end → stats.
func TestSessionLifecycle(t *testing.T) {
	svc := openStore(t)

	sess := &Session{GrammarName: "arith", Mode: ModeDual, Client: "test"}
	if err := svc.StartSession(sess); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if sess.SessionID == "" || sess.StartedAt == 0 {
		t.Fatalf("expected generated id and start time, got %+v", sess)
	}

	base := time.Now().UnixNano()
	actions := []struct{ action, result string }{
		{"advance", "advanced"},
		{"advance", "advanced"},
		{"retreat", "moved"},
		{"advance", "advanced"},
		{"advance", "complete"},
		{"retreat", "at-start"},
	}
	for i, a := range actions {
		e := &CursorEvent{
			SessionID: sess.SessionID,
			Action:    a.action,
			Result:    a.result,
			Side:      "left",
			Timestamp: base + int64(i)*int64(time.Second),
		}
		if err := svc.RecordEvent(e); err != nil {
			t.Fatalf("RecordEvent failed: %v", err)
		}
		if e.Seq != i+1 {
			t.Errorf("expected seq %d, got %d", i+1, e.Seq)
		}
	}

	if err := svc.RecordAttempt(&PracticeAttempt{
		SessionID: sess.SessionID, Side: "left", Step: 1,
		Chosen: "E → E + E", Expected: "E → E + E", Correct: true,
	}); err != nil {
		t.Fatalf("RecordAttempt failed: %v", err)
	}
	if err := svc.RecordAttempt(&PracticeAttempt{
		SessionID: sess.SessionID, Side: "right", Step: 1,
		Chosen: "E → id", Expected: "E → E * E",
	}); err != nil {
		t.Fatalf("RecordAttempt failed: %v", err)
	}

	if err := svc.EndSession(sess.SessionID, base+int64(10*time.Second)); err != nil {
		t.Fatalf("EndSession failed: %v", err)
	}

	events, err := svc.SessionEvents(sess.SessionID)
	if err != nil {
		t.Fatalf("SessionEvents failed: %v", err)
	}
	if len(events) != len(actions) {
		t.Fatalf("expected %d events, got %d", len(actions), len(events))
	}
	for i, e := range events {
		if e.Action != actions[i].action || e.Seq != i+1 {
			t.Errorf("event %d: expected %s/%d, got %s/%d", i, actions[i].action, i+1, e.Action, e.Seq)
		}
	}

	attempts, err := svc.SessionAttempts(sess.SessionID)
	if err != nil {
		t.Fatalf("SessionAttempts failed: %v", err)
	}
	if len(attempts) != 2 || !attempts[0].Correct || attempts[1].Correct {
		t.Errorf("unexpected attempts: %+v", attempts)
	}

	stats, err := svc.SessionStats(sess.SessionID)
	if err != nil {
		t.Fatalf("SessionStats failed: %v", err)
	}
	if stats.Events != 6 {
		t.Errorf("expected 6 events, got %d", stats.Events)
	}
	if stats.Advances != 3 {
		t.Errorf("expected 3 advances, got %d", stats.Advances)
	}
	if stats.Retreats != 1 {
		t.Errorf("expected 1 retreat, got %d", stats.Retreats)
	}
	if stats.Completions != 1 {
		t.Errorf("expected 1 completion, got %d", stats.Completions)
	}
	if stats.Attempts != 2 || stats.CorrectAttempts != 1 {
		t.Errorf("expected 1/2 correct attempts, got %d/%d", stats.CorrectAttempts, stats.Attempts)
	}
	if stats.DurationMs != 5000 {
		t.Errorf("expected 5000ms, got %d", stats.DurationMs)
	}

	sessions, err := svc.ListSessions(SessionFilter{})
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 1 || sessions[0].EndedAt == nil {
		t.Fatalf("expected one ended session, got %+v", sessions)
	}
}

// TestEndUnknownSession verifies that ending a missing session fails.
func TestEndUnknownSession(t *testing.T) {
	svc := openStore(t)
	err := svc.EndSession("nope", time.Now().UnixNano())
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

// TestBatchRecordEvents verifies that batched events keep their order.
func TestBatchRecordEvents(t *testing.T) {
	svc := openStore(t)

	sess := &Session{GrammarName: "abab", Mode: ModeSingle}
	if err := svc.StartSession(sess); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if err := svc.RecordEvent(&CursorEvent{SessionID: sess.SessionID, Action: "reset"}); err != nil {
		t.Fatalf("RecordEvent failed: %v", err)
	}

	batch := make([]*CursorEvent, 20)
	for i := range batch {
		batch[i] = &CursorEvent{SessionID: sess.SessionID, Action: "advance", StepIndex: i}
	}
	if err := svc.BatchRecordEvents(batch); err != nil {
		t.Fatalf("BatchRecordEvents failed: %v", err)
	}

	events, err := svc.SessionEvents(sess.SessionID)
	if err != nil {
		t.Fatalf("SessionEvents failed: %v", err)
	}
	if len(events) != 21 {
		t.Fatalf("expected 21 events, got %d", len(events))
	}
	if events[20].Seq != 21 || events[20].StepIndex != 19 {
		t.Errorf("unexpected last event: %+v", events[20])
	}
}

// TestEventsRequireSession verifies the foreign key on cursor_events.
func TestEventsRequireSession(t *testing.T) {
	svc := openStore(t)
	if err := svc.RecordEvent(&CursorEvent{SessionID: "ghost", Action: "advance"}); err == nil {
		t.Error("expected foreign key violation")
	}
}

// TestSessionFilter verifies filtering by grammar and mode.
func TestSessionFilter(t *testing.T) {
	svc := openStore(t)

	now := time.Now().UnixNano()
	for i, s := range []Session{
		{GrammarName: "arith", Mode: ModeDual},
		{GrammarName: "arith", Mode: ModePractice},
		{GrammarName: "abab", Mode: ModeDual},
	} {
		s.StartedAt = now + int64(i)
		if err := svc.StartSession(&s); err != nil {
			t.Fatalf("StartSession failed: %v", err)
		}
	}

	arith := "arith"
	sessions, err := svc.ListSessions(SessionFilter{GrammarName: &arith})
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 arith sessions, got %d", len(sessions))
	}
	if sessions[0].Mode != ModePractice {
		t.Errorf("expected newest first, got %s", sessions[0].Mode)
	}

	dual := ModeDual
	sessions, err = svc.ListSessions(SessionFilter{Mode: &dual, Limit: 1})
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 1 || sessions[0].GrammarName != "abab" {
		t.Errorf("expected the abab session, got %+v", sessions)
	}

	since := now + 1
	sessions, err = svc.ListSessions(SessionFilter{Since: &since})
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Errorf("expected 2 sessions since %d, got %d", since, len(sessions))
	}

	bad := &Session{GrammarName: "arith", Mode: "sideways"}
	if err := svc.StartSession(bad); err == nil {
		t.Error("expected mode check to fail")
	}
}

func BenchmarkBatchRecordEvents(b *testing.B) {
	svc, err := NewDBService(":memory:")
	if err != nil {
		b.Fatalf("NewDBService failed: %v", err)
	}
	defer svc.Close()

	sess := &Session{GrammarName: "arith", Mode: ModeDual}
	if err := svc.StartSession(sess); err != nil {
		b.Fatalf("StartSession failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		batch := make([]*CursorEvent, 100)
		for j := range batch {
			batch[j] = &CursorEvent{SessionID: sess.SessionID, Action: "advance"}
		}
		if err := svc.BatchRecordEvents(batch); err != nil {
			b.Fatalf("BatchRecordEvents failed: %v", err)
		}
	}
}

// TestEnsureCatalog seeds an empty store once and loads it afterwards.
func TestEnsureCatalog(t *testing.T) {
	svc := openStore(t)

	c, seeded, err := EnsureCatalog(svc, grammar.Builtin())
	if err != nil {
		t.Fatalf("EnsureCatalog failed: %v", err)
	}
	if !seeded || c.Len() != 3 {
		t.Fatalf("first call: seeded=%v len=%d, want true 3", seeded, c.Len())
	}

	c, seeded, err = EnsureCatalog(svc, &grammar.Catalog{})
	if err != nil {
		t.Fatalf("EnsureCatalog failed: %v", err)
	}
	if seeded {
		t.Error("second call seeded again")
	}
	if c.Len() != 3 || c.Grammars[1].Name != "abab" {
		t.Errorf("loaded %v, want the built-in grammars", c.Names())
	}
}
