/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package journal keeps a SQLite history of the field edits qscan applies
// to data files.
package journal

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DefaultPath is the journal location relative to the project root.
const DefaultPath = ".qscan/journal.db"

// Entry is one journaled field edit.
type Entry struct {
	ID        int64     `json:"id"`
	RunID     string    `json:"runId"`
	File      string    `json:"file"`
	RecordID  string    `json:"recordId"`
	Field     string    `json:"field"`
	OldSHA    string    `json:"oldSha"`
	NewSHA    string    `json:"newSha"`
	AppliedAt time.Time `json:"appliedAt"`
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	File     string
	RecordID string
	Field    string
	Limit    int
}

// Journal is an open edit history.
type Journal struct {
	db   *sql.DB
	path string
}

// Open opens or creates the journal at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	connStr := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping journal: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
	}
	return &Journal{db: db, path: path}, nil
}

// Close closes the journal.
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// Path returns the journal file path.
func (j *Journal) Path() string {
	return j.path
}

// NewRunID returns a fresh run id.
func NewRunID() string {
	return uuid.NewString()
}

// Digest returns the hex sha256 of a value expression.
func Digest(expr string) string {
	sum := sha256.Sum256([]byte(expr))
	return hex.EncodeToString(sum[:])
}

// Record stores the edits of one run in a single transaction. Entries
// without AppliedAt are stamped with the current time.
func (j *Journal) Record(ctx context.Context, runID string, entries []Entry) error {
	if runID == "" {
		return errors.New("journal: empty run id")
	}
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO edits (run_id, file, record_id, field, old_sha, new_sha, applied_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, e := range entries {
		at := e.AppliedAt
		if at.IsZero() {
			at = now
		}
		if _, err := stmt.ExecContext(ctx, runID, e.File, e.RecordID, e.Field, e.OldSHA, e.NewSHA, at.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("failed to record edit %s.%s: %w", e.RecordID, e.Field, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// List returns matching edits, newest first.
func (j *Journal) List(ctx context.Context, f Filter) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	if f.File != "" {
		where = append(where, "file = ?")
		args = append(args, f.File)
	}
	if f.RecordID != "" {
		where = append(where, "record_id = ?")
		args = append(args, f.RecordID)
	}
	if f.Field != "" {
		where = append(where, "field = ?")
		args = append(args, f.Field)
	}

	query := "SELECT id, run_id, file, record_id, field, old_sha, new_sha, applied_at FROM edits"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query edits: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e  Entry
			at string
		)
		if err := rows.Scan(&e.ID, &e.RunID, &e.File, &e.RecordID, &e.Field, &e.OldSHA, &e.NewSHA, &at); err != nil {
			return nil, fmt.Errorf("failed to scan edit: %w", err)
		}
		if e.AppliedAt, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("edit %d: bad timestamp %q: %w", e.ID, at, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LastEdit returns the most recent edit of one field. ok is false when the
// field was never edited.
func (j *Journal) LastEdit(ctx context.Context, file, recordID, field string) (entry Entry, ok bool, err error) {
	entries, err := j.List(ctx, Filter{File: file, RecordID: recordID, Field: field, Limit: 1})
	if err != nil || len(entries) == 0 {
		return Entry{}, false, err
	}
	return entries[0], true, nil
}
