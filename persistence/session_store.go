// Package persistence keeps conversational organizing sessions across CLI
// invocations. Analyze responses themselves are never stored; only the
// user-facing conversation state (intent, clarifications, pattern feedback)
// survives between runs.
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/lexcodex/declutter/organizer"
)

// ErrSessionNotFound is returned when a session id has no row.
var ErrSessionNotFound = errors.New("session not found")

// Session captures one conversational organizing thread.
type Session struct {
	ID               string    `json:"id"`
	Intent           string    `json:"intent"`
	Clarifications   []string  `json:"clarifications,omitempty"`
	ApprovedPatterns []string  `json:"approved_patterns,omitempty"`
	RejectedPatterns []string  `json:"rejected_patterns,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// RequestPreferences projects the session onto the preference bag consumed
// by the conversational prompt template.
func (s *Session) RequestPreferences() organizer.Preferences {
	prefs := organizer.Preferences{organizer.PrefIntent: s.Intent}
	if len(s.Clarifications) > 0 {
		prefs[organizer.PrefClarifications] = s.Clarifications
	}
	if len(s.ApprovedPatterns) > 0 {
		prefs[organizer.PrefApprovedPatterns] = s.ApprovedPatterns
	}
	if len(s.RejectedPatterns) > 0 {
		prefs[organizer.PrefRejectedPatterns] = s.RejectedPatterns
	}
	return prefs
}

// SessionStore persists conversational sessions.
type SessionStore interface {
	Create(ctx context.Context, intent string) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	List(ctx context.Context) ([]Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error
}

// SQLiteSessionStore backs SessionStore with a SQLite database.
type SQLiteSessionStore struct {
	db *sql.DB
}

// NewSQLiteSessionStore opens/creates the database at dbPath.
func NewSQLiteSessionStore(dbPath string) (*SQLiteSessionStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	store := &SQLiteSessionStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteSessionStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		intent TEXT NOT NULL,
		clarifications TEXT,
		approved_patterns TEXT,
		rejected_patterns TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`
	_, err := s.db.Exec(schema)
	return err
}

// Create inserts a fresh session for the given intent.
func (s *SQLiteSessionStore) Create(ctx context.Context, intent string) (*Session, error) {
	if intent == "" {
		return nil, errors.New("session intent required")
	}
	now := time.Now().UTC()
	session := &Session{
		ID:        uuid.NewString(),
		Intent:    intent,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, intent, clarifications, approved_patterns, rejected_patterns, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.Intent, "[]", "[]", "[]", session.CreatedAt, session.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// Get loads one session by id.
func (s *SQLiteSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, intent, clarifications, approved_patterns, rejected_patterns, created_at, updated_at
		 FROM sessions WHERE id = ?`, id)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	return session, err
}

// List returns every session, most recently updated first.
func (s *SQLiteSessionStore) List(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, intent, clarifications, approved_patterns, rejected_patterns, created_at, updated_at
		 FROM sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

// Save writes back mutable session fields and bumps updated_at.
func (s *SQLiteSessionStore) Save(ctx context.Context, session *Session) error {
	if session == nil || session.ID == "" {
		return errors.New("session id required")
	}
	session.UpdatedAt = time.Now().UTC()
	clarifications, _ := json.Marshal(session.Clarifications)
	approved, _ := json.Marshal(session.ApprovedPatterns)
	rejected, _ := json.Marshal(session.RejectedPatterns)
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET intent = ?, clarifications = ?, approved_patterns = ?, rejected_patterns = ?, updated_at = ?
		 WHERE id = ?`,
		session.Intent, string(clarifications), string(approved), string(rejected), session.UpdatedAt, session.ID)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Delete removes a session.
func (s *SQLiteSessionStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

// Close releases the database handle.
func (s *SQLiteSessionStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	var session Session
	var clarifications, approved, rejected sql.NullString
	if err := row.Scan(&session.ID, &session.Intent, &clarifications, &approved, &rejected, &session.CreatedAt, &session.UpdatedAt); err != nil {
		return nil, err
	}
	session.Clarifications = decodeStrings(clarifications)
	session.ApprovedPatterns = decodeStrings(approved)
	session.RejectedPatterns = decodeStrings(rejected)
	return &session, nil
}

func decodeStrings(value sql.NullString) []string {
	if !value.Valid || value.String == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(value.String), &out); err != nil {
		return nil
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
