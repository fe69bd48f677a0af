// internal/progress/store.go
//
// SQLite-backed persistence for learner records plus the single active
// session. Records are stored as JSON documents keyed by username, which
// keeps the schema stable while the Progress shape evolves.

package progress

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS learners (
    username   TEXT PRIMARY KEY,
    progress   TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS session (
    id       INTEGER PRIMARY KEY CHECK (id = 1),
    username TEXT NOT NULL REFERENCES learners(username)
);
`

// ErrNoSession is returned by CurrentSession when nobody is logged in.
var ErrNoSession = errors.New("progress: no active session")

// Store persists learner records in a local SQLite database.
type Store struct {
	db *sqlx.DB
}

// Open connects to (creating if needed) the database at path and ensures
// the schema exists. SQLite handles one writer at a time, so the pool is
// pinned to a single connection.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open progress db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init progress schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Login loads the record for username, creating a fresh default record on
// first login, and marks the username as the active session. Leading and
// trailing whitespace is stripped, so " ana" and "ana" are the same
// learner; usernames are otherwise raw, case-sensitive keys.
func (s *Store) Login(username string) (Progress, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Progress{}, errors.New("progress: empty username")
	}

	p, err := s.load(username)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		p = Default()
		if err := s.save(username, p); err != nil {
			return Progress{}, err
		}
	case err != nil:
		return Progress{}, err
	}

	_, err = s.db.Exec(
		`INSERT INTO session (id, username) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET username = excluded.username`,
		username,
	)
	if err != nil {
		return Progress{}, fmt.Errorf("record session: %w", err)
	}
	return p, nil
}

// SaveProgress overwrites the stored record for username.
func (s *Store) SaveProgress(username string, p Progress) error {
	return s.save(username, p)
}

// Logout clears the active session. The learner record stays.
func (s *Store) Logout() error {
	if _, err := s.db.Exec(`DELETE FROM session WHERE id = 1`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// CurrentSession returns the logged-in username and record, or ErrNoSession.
func (s *Store) CurrentSession() (string, Progress, error) {
	var username string
	err := s.db.Get(&username, `SELECT username FROM session WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return "", Progress{}, ErrNoSession
	}
	if err != nil {
		return "", Progress{}, fmt.Errorf("read session: %w", err)
	}
	p, err := s.load(username)
	if err != nil {
		return "", Progress{}, err
	}
	return username, p, nil
}

func (s *Store) load(username string) (Progress, error) {
	var raw string
	err := s.db.Get(&raw, `SELECT progress FROM learners WHERE username = ?`, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Progress{}, err
		}
		return Progress{}, fmt.Errorf("load learner %q: %w", username, err)
	}
	var p Progress
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Progress{}, fmt.Errorf("decode learner %q: %w", username, err)
	}
	return p, nil
}

func (s *Store) save(username string, p Progress) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode learner %q: %w", username, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO learners (username, progress, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(username) DO UPDATE SET progress = excluded.progress, updated_at = excluded.updated_at`,
		username, string(raw), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save learner %q: %w", username, err)
	}
	return nil
}
