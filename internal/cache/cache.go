// Package cache provides a SQLite-backed suggestion cache and run history.
// Cached suggestions are keyed by document path and body checksum, so
// re-running a batch skips the remote call for unchanged documents.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/ansuz/internal/suggest"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS suggestions (
	path       TEXT PRIMARY KEY,
	checksum   TEXT NOT NULL,
	candidate  TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	mode        TEXT NOT NULL,
	started_at  DATETIME NOT NULL,
	duration_ms INTEGER NOT NULL,
	processed   INTEGER NOT NULL,
	updated     INTEGER NOT NULL,
	skipped     INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	report      TEXT NOT NULL DEFAULT '{}'
);
`

// RunRecord is one row of batch run history.
type RunRecord struct {
	ID        int64           `json:"id"`
	Mode      string          `json:"mode"`
	StartedAt time.Time       `json:"started_at"`
	Duration  time.Duration   `json:"duration"`
	Processed int             `json:"processed"`
	Updated   int             `json:"updated"`
	Skipped   int             `json:"skipped"`
	Failed    int             `json:"failed"`
	Report    json.RawMessage `json:"report"`
}

// Store is the interface for cache operations. Consumers should depend on
// this interface rather than the concrete *DB type to facilitate testing.
type Store interface {
	GetSuggestion(path, checksum string) (suggest.Candidate, bool, error)
	PutSuggestion(path, checksum string, cand suggest.Candidate) error
	RecordRun(rec RunRecord) error
	ListRuns(limit int) ([]RunRecord, error)
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)

// DB wraps a sql.DB with cache-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cache: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cache: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// GetSuggestion returns the cached candidate for path when the stored
// checksum still matches the document body.
func (db *DB) GetSuggestion(path, checksum string) (suggest.Candidate, bool, error) {
	var storedSum, raw string
	err := db.conn.QueryRow(
		`SELECT checksum, candidate FROM suggestions WHERE path = ?`, path,
	).Scan(&storedSum, &raw)
	if err == sql.ErrNoRows {
		return suggest.Candidate{}, false, nil
	}
	if err != nil {
		return suggest.Candidate{}, false, fmt.Errorf("cache: get suggestion: %w", err)
	}
	if storedSum != checksum {
		return suggest.Candidate{}, false, nil
	}
	var cand suggest.Candidate
	if err := json.Unmarshal([]byte(raw), &cand); err != nil {
		// A corrupt row behaves like a miss; the next Put repairs it.
		return suggest.Candidate{}, false, nil
	}
	return cand, true, nil
}

// PutSuggestion stores or replaces the cached candidate for path.
func (db *DB) PutSuggestion(path, checksum string, cand suggest.Candidate) error {
	raw, err := json.Marshal(cand)
	if err != nil {
		return fmt.Errorf("cache: marshal candidate: %w", err)
	}
	_, err = db.conn.Exec(`
		INSERT INTO suggestions (path, checksum, candidate, created_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(path) DO UPDATE SET
			checksum   = excluded.checksum,
			candidate  = excluded.candidate,
			created_at = excluded.created_at
	`, path, checksum, string(raw))
	if err != nil {
		return fmt.Errorf("cache: put suggestion: %w", err)
	}
	return nil
}

// RecordRun appends a run to the history table.
func (db *DB) RecordRun(rec RunRecord) error {
	report := rec.Report
	if len(report) == 0 {
		report = json.RawMessage("{}")
	}
	_, err := db.conn.Exec(`
		INSERT INTO runs (mode, started_at, duration_ms, processed, updated, skipped, failed, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.Mode, rec.StartedAt, rec.Duration.Milliseconds(),
		rec.Processed, rec.Updated, rec.Skipped, rec.Failed, string(report))
	if err != nil {
		return fmt.Errorf("cache: record run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT id, mode, started_at, duration_ms, processed, updated, skipped, failed, report
		FROM runs ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("cache: list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		var ms int64
		var report string
		if err := rows.Scan(&rec.ID, &rec.Mode, &rec.StartedAt, &ms,
			&rec.Processed, &rec.Updated, &rec.Skipped, &rec.Failed, &report); err != nil {
			return nil, err
		}
		rec.Duration = time.Duration(ms) * time.Millisecond
		rec.Report = json.RawMessage(report)
		out = append(out, rec)
	}
	return out, rows.Err()
}
