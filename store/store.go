// Package store persists simulation runs in a SQLite database. The
// full results document is stored as JSON alongside indexed metadata
// columns so runs can be listed and filtered without unmarshaling.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/outbreaklab/go-outbreak/results"
)

// Store handles SQLite database operations for run persistence.
type Store struct {
	db *sql.DB
}

// Record is the listing view of a stored run.
type Record struct {
	RunID     string    `json:"run_id"`
	Variant   string    `json:"variant"`
	Mode      string    `json:"mode"`
	Seed      uint64    `json:"seed"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// New opens (or creates) a run database at the given path.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		variant TEXT NOT NULL,
		mode TEXT NOT NULL,
		seed INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		document TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_variant ON runs(variant);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for custom queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// SaveRun stores a results document under its run ID.
func (s *Store) SaveRun(r *results.Results) error {
	doc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO runs (run_id, variant, mode, seed, status, created_at, document)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Metadata.RunID, r.Model.Variant, r.Metadata.Mode, r.Metadata.Seed,
		r.Metadata.Status, time.Now().UTC(), string(doc),
	)
	return err
}

// GetRun retrieves a full results document by run ID.
func (s *Store) GetRun(runID string) (*results.Results, error) {
	row := s.db.QueryRow(`SELECT document FROM runs WHERE run_id = ?`, runID)

	var doc string
	if err := row.Scan(&doc); err != nil {
		return nil, err
	}

	var r results.Results
	if err := json.Unmarshal([]byte(doc), &r); err != nil {
		return nil, fmt.Errorf("unmarshal results: %w", err)
	}
	return &r, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]*Record, error) {
	rows, err := s.db.Query(
		`SELECT run_id, variant, mode, seed, status, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.RunID, &rec.Variant, &rec.Mode, &rec.Seed,
			&rec.Status, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// ListRunsByVariant returns recent runs of one model variant.
func (s *Store) ListRunsByVariant(variant string, limit int) ([]*Record, error) {
	rows, err := s.db.Query(
		`SELECT run_id, variant, mode, seed, status, created_at
		 FROM runs WHERE variant = ? ORDER BY created_at DESC LIMIT ?`, variant, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.RunID, &rec.Variant, &rec.Mode, &rec.Seed,
			&rec.Status, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// DeleteRun removes a stored run. Missing IDs are not an error.
func (s *Store) DeleteRun(runID string) error {
	_, err := s.db.Exec(`DELETE FROM runs WHERE run_id = ?`, runID)
	return err
}
