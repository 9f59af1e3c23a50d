// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a SQLite audit log of clipped bookmarks. The log is
// write-only from the pipeline's point of view; nothing consults it to skip
// or resume work.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Status is the outcome of one bookmark within a run.
type Status string

const (
	StatusSaved     Status = "saved"
	StatusPreviewed Status = "previewed"
	StatusDeleted   Status = "deleted"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// DefaultListLimit applies when List is called with a non-positive limit.
const DefaultListLimit = 20

// Entry is one row of the clips table.
type Entry struct {
	RunID       string    `json:"run_id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Path        string    `json:"path,omitempty"`
	Status      Status    `json:"status"`
	Error       string    `json:"error,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Store is an open history database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path, creating parent directories
// and the schema as needed.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("history database path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			tag TEXT NOT NULL,
			started_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS clips (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			url TEXT NOT NULL,
			title TEXT,
			path TEXT,
			status TEXT NOT NULL,
			error TEXT,
			processed_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_clips_run_id ON clips(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_clips_url ON clips(url)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BeginRun registers a new run for tag and returns its id.
func (s *Store) BeginRun(ctx context.Context, tag string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, tag, started_at) VALUES (?, ?, ?)`,
		id, tag, s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("recording run: %w", err)
	}
	return id, nil
}

// Record appends e. A zero ProcessedAt is stamped with the current time.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.RunID == "" {
		return errors.New("history entry has no run id")
	}
	if e.ProcessedAt.IsZero() {
		e.ProcessedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO clips (run_id, url, title, path, status, error, processed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.URL, e.Title, e.Path, string(e.Status), e.Error,
		e.ProcessedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", e.URL, err)
	}
	return nil
}

// List returns the most recent entries, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, url, COALESCE(title, ''), COALESCE(path, ''), status,
		        COALESCE(error, ''), processed_at
		 FROM clips ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var status, processedAt string
		if err := rows.Scan(&e.RunID, &e.URL, &e.Title, &e.Path, &status, &e.Error, &processedAt); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		e.Status = Status(status)
		if t, err := time.Parse(time.RFC3339Nano, processedAt); err == nil {
			e.ProcessedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
