// Package ledger keeps a PostgreSQL history of compile runs.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sbenjam1n/assetgen/internal/assets"
)

// Run statuses.
const (
	StatusWritten = "written"
	StatusEmpty   = "empty"
	StatusFailed  = "failed"
)

// Entry is one recorded task compilation.
type Entry struct {
	RunID     string
	Task      string
	Output    string
	Digest    string
	Files     int
	Fragments int
	Kinds     map[string]int
	Status    string
	Error     string
	CreatedAt time.Time
}

// Store writes and reads ledger entries.
type Store struct {
	DB *sql.DB
}

// New wraps an open database.
func New(db *sql.DB) *Store {
	return &Store{DB: db}
}

// EntryFor converts a compile outcome into a ledger entry.
func EntryFor(runID string, res *assets.Result, err error) Entry {
	e := Entry{RunID: runID, Kinds: map[string]int{}, Status: StatusWritten}
	if res != nil {
		e.Task = res.Task
		e.Output = res.Output
		e.Digest = res.Digest
		e.Files = res.Files
		e.Fragments = res.Fragments
		for k, n := range res.Kinds {
			e.Kinds[k.String()] = n
		}
		if res.Fragments == 0 {
			e.Status = StatusEmpty
		}
	}
	if err != nil {
		e.Status = StatusFailed
		e.Error = err.Error()
	}
	if e.Task == "" && e.Output != "" {
		e.Task = filepath.Base(filepath.Dir(e.Output))
	}
	return e
}

// Record stores the outcome of one task. It satisfies batch.Recorder.
func (s *Store) Record(ctx context.Context, runID string, res *assets.Result, err error) error {
	return s.Insert(ctx, EntryFor(runID, res, err))
}

// Insert stores e.
func (s *Store) Insert(ctx context.Context, e Entry) error {
	kinds, err := json.Marshal(e.Kinds)
	if err != nil {
		return fmt.Errorf("encode kinds: %w", err)
	}
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO asset_runs (run_id, task, output, digest, files, fragments, kinds, status, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, e.RunID, e.Task, e.Output, e.Digest, e.Files, e.Fragments, kinds, e.Status, e.Error)
	if err != nil {
		return fmt.Errorf("insert asset run: %w", err)
	}
	return nil
}

// History returns the most recent entries, newest first. An empty task
// matches every task.
func (s *Store) History(ctx context.Context, task string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT run_id, task, output, digest, files, fragments, kinds, status, error, created_at
		FROM asset_runs
		WHERE $1 = '' OR task = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, task, limit)
	if err != nil {
		return nil, fmt.Errorf("query asset runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var kinds []byte
		if err := rows.Scan(&e.RunID, &e.Task, &e.Output, &e.Digest, &e.Files, &e.Fragments, &kinds, &e.Status, &e.Error, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan asset run: %w", err)
		}
		if len(kinds) > 0 {
			if err := json.Unmarshal(kinds, &e.Kinds); err != nil {
				return nil, fmt.Errorf("decode kinds: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
