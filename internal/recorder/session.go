package recorder

import (
	"context"
	"fmt"
	"time"

	"github.com/Mr-Dark-debug/ambiscope/internal/database"
)

// SessionStore is the part of the store a recording session needs.
type SessionStore interface {
	Sink
	StartSession(s *database.Session) error
	EndSession(sessionID string, endedAt int64) error
}

// Session is a started recorder bound to one walk session row.
type Session struct {
	*Recorder
	ID    string
	store SessionStore
}

// Begin opens sess in store and starts a recorder writing to it.
func Begin(ctx context.Context, store SessionStore, config Config, sess *database.Session) (*Session, error) {
	if err := store.StartSession(sess); err != nil {
		return nil, fmt.Errorf("starting session: %w", err)
	}
	r := New(config, store)
	r.Start(ctx)
	tracer().Infof("session %s started (%s, %s)", sess.SessionID, sess.GrammarName, sess.Mode)
	return &Session{Recorder: r, ID: sess.SessionID, store: store}, nil
}

// End flushes pending records and closes the session row.
func (s *Session) End() error {
	s.Stop()
	m := s.Metrics()
	tracer().Infof("session %s ended: %d events, %d attempts, %d dropped",
		s.ID, m.EventsRecorded, m.AttemptsRecorded, m.Dropped)
	return s.store.EndSession(s.ID, time.Now().UnixNano())
}
