// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package store keeps a snapshot of every run's entity hashes in SQLite so
// documentation changes can be traced between runs.
package store

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"grimm.is/voxdoc/internal/errors"
)

// Run is the summary row of one extraction run.
type Run struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	Root       string    `json:"root"`
	Files      int       `json:"files"`
	Entities   int       `json:"entities"`
	Warnings   int       `json:"warnings"`
	Errors     int       `json:"errors"`
	DurationMS int64     `json:"duration_ms"`
}

// Entry is one entity of a run, stored as its serialized hash.
type Entry struct {
	Group string `json:"group"`
	Name  string `json:"name"`
	File  string `json:"file"`
	Line  int    `json:"line"`
	Hash  string `json:"hash"`
}

// Store handles persistence of run snapshots to SQLite
type Store struct {
	db *sql.DB
}

// Open opens or creates the snapshot database
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.At(errors.Wrap(err, errors.KindIO, "failed to open snapshot db"), path, 0)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, errors.At(errors.Wrap(err, errors.KindIO, "failed to initialize snapshot db"), path, 0)
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL, -- Unix timestamp (ms)
		root TEXT NOT NULL,
		files INTEGER DEFAULT 0,
		entities INTEGER DEFAULT 0,
		warnings INTEGER DEFAULT 0,
		errors INTEGER DEFAULT 0,
		duration_ms INTEGER DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS entities (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		grp TEXT NOT NULL,
		name TEXT NOT NULL,
		file TEXT,
		line INTEGER,
		hash TEXT NOT NULL,
		PRIMARY KEY(run_id, grp, name)
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordRun persists a run and its entities in one transaction.
func (s *Store) RecordRun(ctx context.Context, run Run, entries []Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.KindIO, "failed to begin snapshot")
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, root, files, entities, warnings, errors, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt.UnixMilli(), run.Root, run.Files, run.Entities, run.Warnings, run.Errors, run.DurationMS)
	if err != nil {
		tx.Rollback()
		return errors.Attr(errors.Wrap(err, errors.KindIO, "failed to record run"), "run", run.ID)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entities (run_id, grp, name, file, line, hash)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, grp, name) DO UPDATE SET
			file = excluded.file,
			line = excluded.line,
			hash = excluded.hash
	`)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, errors.KindIO, "failed to prepare entity insert")
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, run.ID, e.Group, e.Name, e.File, e.Line, e.Hash); err != nil {
			tx.Rollback()
			return errors.Attr(errors.Wrap(err, errors.KindIO, "failed to record entity"), "entity", e.Name)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.KindIO, "failed to commit snapshot")
	}
	return nil
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, root, files, entities, warnings, errors, duration_ms
		FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindIO, "failed to list runs")
	}
	defer rows.Close()

	var result []Run
	for rows.Next() {
		var r Run
		var ts int64
		if err := rows.Scan(&r.ID, &ts, &r.Root, &r.Files, &r.Entities, &r.Warnings, &r.Errors, &r.DurationMS); err != nil {
			return nil, errors.Wrap(err, errors.KindIO, "failed to read run")
		}
		r.StartedAt = time.UnixMilli(ts)
		result = append(result, r)
	}
	return result, rows.Err()
}

// Entities returns the entities recorded for a run, ordered by group and name.
func (s *Store) Entities(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT grp, name, file, line, hash
		FROM entities
		WHERE run_id = ?
		ORDER BY grp, name
	`, runID)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindIO, "failed to list entities")
	}
	defer rows.Close()

	var result []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Group, &e.Name, &e.File, &e.Line, &e.Hash); err != nil {
			return nil, errors.Wrap(err, errors.KindIO, "failed to read entity")
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// Cleanup removes runs started before the retention period
func (s *Store) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).UnixMilli()
	if _, err := s.db.ExecContext(ctx, "DELETE FROM entities WHERE run_id IN (SELECT id FROM runs WHERE started_at < ?)", cutoff); err != nil {
		return 0, errors.Wrap(err, errors.KindIO, "failed to prune entities")
	}
	result, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE started_at < ?", cutoff)
	if err != nil {
		return 0, errors.Wrap(err, errors.KindIO, "failed to prune runs")
	}
	return result.RowsAffected()
}
