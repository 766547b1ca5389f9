// Package database provides the storage layer for ambiscope.
//
// It implements the Store interface using SQLite in WAL mode. The catalog
// of grammars is kept in normalized tables so it can be edited and
// reseeded; walk sessions record every cursor action and practice attempt
// so the history command can replay what a learner did.
package database

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/npillmayer/schuko/tracing"

	"github.com/Mr-Dark-debug/ambiscope/internal/grammar"
)

//go:embed schema.sql
var schemaFS embed.FS

// tracer traces with key 'ambiscope.store'.
func tracer() tracing.Trace {
	return tracing.Select("ambiscope.store")
}

// Store defines the interface for catalog and walk history persistence.
type Store interface {
	// SaveCatalog replaces the stored catalog.
	SaveCatalog(c *grammar.Catalog) error
	// LoadCatalog returns the stored catalog. It has no grammars if
	// nothing was saved yet.
	LoadCatalog() (*grammar.Catalog, error)

	// StartSession persists a new walk session, assigning an ID and start
	// time when they are empty.
	StartSession(s *Session) error
	// EndSession stamps the end time of a session.
	EndSession(sessionID string, endedAt int64) error
	// RecordEvent appends a cursor event to its session.
	RecordEvent(e *CursorEvent) error
	// BatchRecordEvents appends several events in a single transaction.
	BatchRecordEvents(events []*CursorEvent) error
	// RecordAttempt persists a practice attempt.
	RecordAttempt(a *PracticeAttempt) error

	// ListSessions returns sessions matching the filter, newest first.
	ListSessions(filter SessionFilter) ([]*Session, error)
	// SessionEvents returns the events of a session in order.
	SessionEvents(sessionID string) ([]*CursorEvent, error)
	// SessionAttempts returns the practice attempts of a session in order.
	SessionAttempts(sessionID string) ([]*PracticeAttempt, error)
	// SessionStats returns aggregated counters for a session.
	SessionStats(sessionID string) (*SessionStats, error)

	// Close gracefully shuts down the database connection.
	Close() error
}

// ============================================================
// Domain Models
// ============================================================

// Walk modes.
const (
	ModeSingle   = "single"
	ModeDual     = "dual"
	ModePractice = "practice"
)

// Session is one sitting in front of a cursor.
type Session struct {
	SessionID   string `json:"session_id"`
	GrammarName string `json:"grammar_name"`
	Mode        string `json:"mode"`
	Client      string `json:"client"` // "tui", "repl", "walk"
	StartedAt   int64  `json:"started_at"`
	EndedAt     *int64 `json:"ended_at,omitempty"`
}

// CursorEvent is one cursor action and the state it left behind.
type CursorEvent struct {
	EventID         int64  `json:"event_id"`
	SessionID       string `json:"session_id"`
	Seq             int    `json:"seq"`
	Action          string `json:"action"` // advance, retreat, toggle, grammar, reset, mode
	Result          string `json:"result"`
	Side            string `json:"side,omitempty"`
	GrammarIndex    int    `json:"grammar_index"`
	DerivationIndex int    `json:"derivation_index"`
	StepIndex       int    `json:"step_index"`
	LeftStep        int    `json:"left_step"`
	RightStep       int    `json:"right_step"`
	Timestamp       int64  `json:"timestamp"`
}

// PracticeAttempt is one rule choice in practice mode.
type PracticeAttempt struct {
	AttemptID int64  `json:"attempt_id"`
	SessionID string `json:"session_id"`
	Side      string `json:"side"`
	Step      int    `json:"step"`
	Chosen    string `json:"chosen"`
	Expected  string `json:"expected"`
	Correct   bool   `json:"correct"`
	Timestamp int64  `json:"timestamp"`
}

// SessionFilter defines query parameters for session listing.
type SessionFilter struct {
	GrammarName *string `json:"grammar_name,omitempty"`
	Mode        *string `json:"mode,omitempty"`
	Since       *int64  `json:"since,omitempty"` // Unix nanoseconds
	Limit       int     `json:"limit"`
	Offset      int     `json:"offset"`
}

// SessionStats holds aggregated counters for a single session.
type SessionStats struct {
	SessionID       string `json:"session_id"`
	Events          int    `json:"events"`
	Advances        int    `json:"advances"`
	Retreats        int    `json:"retreats"`
	Completions     int    `json:"completions"`
	Attempts        int    `json:"attempts"`
	CorrectAttempts int    `json:"correct_attempts"`
	DurationMs      int64  `json:"duration_ms"`
}

// ============================================================
// DBService Implementation
// ============================================================

// DBService implements the Store interface using SQLite.
// It manages the database connection pool, prepared statements,
// and ensures thread-safe access through a read-write mutex.
type DBService struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string

	// Prepared statements for hot-path operations
	stmtInsertSession *sql.Stmt
	stmtEndSession    *sql.Stmt
	stmtInsertEvent   *sql.Stmt
	stmtInsertAttempt *sql.Stmt
}

// NewDBService creates a new database service, initializes the schema,
// and prepares frequently-used statements.
//
// The path parameter specifies the SQLite database file location.
// Use ":memory:" for in-memory databases (useful for testing).
func NewDBService(path string) (*DBService, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=ON&_cache_size=-64000", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", path, err)
	}

	// SQLite only supports one writer at a time. A single connection also
	// keeps an in-memory database alive between calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	svc := &DBService{
		db:   db,
		path: path,
	}

	if err := svc.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	if err := svc.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing statements: %w", err)
	}

	tracer().Debugf("opened store at %s", path)
	return svc, nil
}

// Path returns the database location.
func (s *DBService) Path() string {
	return s.path
}

// initSchema reads the embedded schema.sql and executes it.
func (s *DBService) initSchema() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("reading embedded schema: %w", err)
	}

	if _, err := s.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}

	return nil
}

func (s *DBService) prepareStatements() error {
	var err error

	s.stmtInsertSession, err = s.db.Prepare(`
		INSERT INTO walk_sessions (session_id, grammar_name, mode, client, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing InsertSession: %w", err)
	}

	s.stmtEndSession, err = s.db.Prepare(`
		UPDATE walk_sessions SET ended_at = ? WHERE session_id = ?
	`)
	if err != nil {
		return fmt.Errorf("preparing EndSession: %w", err)
	}

	// seq continues the session's sequence, so events are ordered even
	// when timestamps collide.
	s.stmtInsertEvent, err = s.db.Prepare(`
		INSERT INTO cursor_events (session_id, seq, action, result, side,
			grammar_index, derivation_index, step_index, left_step, right_step, timestamp)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM cursor_events WHERE session_id = ?),
			?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING event_id, seq
	`)
	if err != nil {
		return fmt.Errorf("preparing InsertEvent: %w", err)
	}

	s.stmtInsertAttempt, err = s.db.Prepare(`
		INSERT INTO practice_attempts (session_id, side, step, chosen, expected, correct, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing InsertAttempt: %w", err)
	}

	return nil
}

// ============================================================
// Walk history
// ============================================================

// StartSession persists a new session.
func (s *DBService) StartSession(sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.SessionID == "" {
		sess.SessionID = uuid.NewString()
	}
	if sess.StartedAt == 0 {
		sess.StartedAt = time.Now().UnixNano()
	}
	_, err := s.stmtInsertSession.Exec(
		sess.SessionID, sess.GrammarName, sess.Mode, sess.Client,
		sess.StartedAt, sess.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting session %s: %w", sess.SessionID, err)
	}
	tracer().Debugf("session %s started (%s, %s)", sess.SessionID, sess.GrammarName, sess.Mode)
	return nil
}

// EndSession stamps the end time of a session.
func (s *DBService) EndSession(sessionID string, endedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.stmtEndSession.Exec(endedAt, sessionID)
	if err != nil {
		return fmt.Errorf("ending session %s: %w", sessionID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("ending session %s: %w", sessionID, sql.ErrNoRows)
	}
	return nil
}

// RecordEvent appends an event. Seq and EventID are filled in.
func (s *DBService) RecordEvent(e *CursorEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return insertEvent(s.stmtInsertEvent, e)
}

// BatchRecordEvents appends multiple events within a single transaction.
func (s *DBService) BatchRecordEvents(events []*CursorEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning batch event transaction: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt := tx.Stmt(s.stmtInsertEvent)
	for _, e := range events {
		if err := insertEvent(stmt, e); err != nil {
			return fmt.Errorf("batch %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch event transaction: %w", err)
	}
	return nil
}

func insertEvent(stmt *sql.Stmt, e *CursorEvent) error {
	if e.Timestamp == 0 {
		e.Timestamp = time.Now().UnixNano()
	}
	err := stmt.QueryRow(
		e.SessionID, e.SessionID, e.Action, e.Result, e.Side,
		e.GrammarIndex, e.DerivationIndex, e.StepIndex, e.LeftStep, e.RightStep,
		e.Timestamp,
	).Scan(&e.EventID, &e.Seq)
	if err != nil {
		return fmt.Errorf("inserting event %q for session %s: %w", e.Action, e.SessionID, err)
	}
	return nil
}

// RecordAttempt persists a practice attempt.
func (s *DBService) RecordAttempt(a *PracticeAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.Timestamp == 0 {
		a.Timestamp = time.Now().UnixNano()
	}
	res, err := s.stmtInsertAttempt.Exec(
		a.SessionID, a.Side, a.Step, a.Chosen, a.Expected, a.Correct, a.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("inserting attempt for session %s: %w", a.SessionID, err)
	}
	a.AttemptID, _ = res.LastInsertId()
	return nil
}

// ListSessions returns sessions matching the filter criteria, most recent
// first.
func (s *DBService) ListSessions(filter SessionFilter) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT session_id, grammar_name, mode, client, started_at, ended_at FROM walk_sessions WHERE 1=1`
	args := make([]interface{}, 0)

	if filter.GrammarName != nil {
		query += ` AND grammar_name = ?`
		args = append(args, *filter.GrammarName)
	}
	if filter.Mode != nil {
		query += ` AND mode = ?`
		args = append(args, *filter.Mode)
	}
	if filter.Since != nil {
		query += ` AND started_at >= ?`
		args = append(args, *filter.Since)
	}

	query += ` ORDER BY started_at DESC, rowid DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	} else {
		query += ` LIMIT 100`
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess := &Session{}
		if err := rows.Scan(&sess.SessionID, &sess.GrammarName, &sess.Mode, &sess.Client,
			&sess.StartedAt, &sess.EndedAt); err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// SessionEvents returns the events of a session ordered by seq.
func (s *DBService) SessionEvents(sessionID string) ([]*CursorEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT event_id, session_id, seq, action, result, side,
			grammar_index, derivation_index, step_index, left_step, right_step, timestamp
		FROM cursor_events
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying events for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// SessionAttempts returns the practice attempts of a session.
func (s *DBService) SessionAttempts(sessionID string) ([]*PracticeAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT attempt_id, session_id, side, step, chosen, expected, correct, timestamp
		FROM practice_attempts
		WHERE session_id = ?
		ORDER BY attempt_id ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying attempts for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var attempts []*PracticeAttempt
	for rows.Next() {
		a := &PracticeAttempt{}
		if err := rows.Scan(&a.AttemptID, &a.SessionID, &a.Side, &a.Step,
			&a.Chosen, &a.Expected, &a.Correct, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning attempt row: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// SessionStats returns aggregated counters for a session.
func (s *DBService) SessionStats(sessionID string) (*SessionStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &SessionStats{SessionID: sessionID}

	var first, last int64
	err := s.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN action = 'advance' AND result = 'advanced' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN action = 'retreat' AND result = 'moved' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN result = 'complete' OR result = 'already-at-end' THEN 1 ELSE 0 END), 0),
			COALESCE(MIN(timestamp), 0),
			COALESCE(MAX(timestamp), 0)
		FROM cursor_events
		WHERE session_id = ?
	`, sessionID).Scan(&stats.Events, &stats.Advances, &stats.Retreats, &stats.Completions, &first, &last)
	if err != nil {
		return nil, fmt.Errorf("querying event stats for %s: %w", sessionID, err)
	}
	stats.DurationMs = (last - first) / int64(time.Millisecond)

	err = s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(correct), 0)
		FROM practice_attempts
		WHERE session_id = ?
	`, sessionID).Scan(&stats.Attempts, &stats.CorrectAttempts)
	if err != nil {
		return nil, fmt.Errorf("counting attempts for %s: %w", sessionID, err)
	}

	return stats, nil
}

// Close gracefully shuts down the database, closing all prepared statements
// and the underlying connection pool.
func (s *DBService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stmts := []*sql.Stmt{
		s.stmtInsertSession, s.stmtEndSession, s.stmtInsertEvent, s.stmtInsertAttempt,
	}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}

	return s.db.Close()
}

// ============================================================
// Scan Helpers
// ============================================================

func scanEvents(rows *sql.Rows) ([]*CursorEvent, error) {
	var events []*CursorEvent
	for rows.Next() {
		e := &CursorEvent{}
		if err := rows.Scan(
			&e.EventID, &e.SessionID, &e.Seq, &e.Action, &e.Result, &e.Side,
			&e.GrammarIndex, &e.DerivationIndex, &e.StepIndex, &e.LeftStep, &e.RightStep,
			&e.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func marshalTerminals(terminals []string) (*string, error) {
	if len(terminals) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(terminals)
	if err != nil {
		return nil, fmt.Errorf("marshaling terminals: %w", err)
	}
	str := string(b)
	return &str, nil
}
