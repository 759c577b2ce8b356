package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrRunNotFound is returned when a run ID is unknown or the journal is empty.
var ErrRunNotFound = errors.New("run not found")

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ Journal = (*SQLiteStore)(nil)

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			command TEXT,
			goal TEXT,
			started_at INTEGER,
			finished_at INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS files (
			run_id TEXT,
			path TEXT,
			kind TEXT,
			changed INTEGER,
			replaced INTEGER,
			error TEXT,
			PRIMARY KEY (run_id, path)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) StartRun(ctx context.Context, command, goal string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, command, goal, started_at, finished_at) VALUES (?, ?, ?, ?, 0)`,
		id, command, goal, s.now().UnixNano())
	if err != nil {
		return "", fmt.Errorf("failed to start run: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) RecordFiles(ctx context.Context, runID string, files []FileRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO files (run_id, path, kind, changed, replaced, error)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, path) DO UPDATE SET
			kind=excluded.kind,
			changed=excluded.changed,
			replaced=excluded.replaced,
			error=excluded.error
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range files {
		if _, err := stmt.ExecContext(ctx, runID, f.Path, f.Kind, f.Changed, f.Replaced, f.Error); err != nil {
			return fmt.Errorf("failed to record %s: %w", f.Path, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) FinishRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE runs SET finished_at = ? WHERE id = ?`, s.now().UnixNano(), runID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

func (s *SQLiteStore) LatestRun(ctx context.Context) (*Run, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM runs ORDER BY started_at DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	run, _, err := s.GetRun(ctx, id)
	return run, err
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*Run, []FileRecord, error) {
	var run Run
	var started, finished int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, command, goal, started_at, finished_at FROM runs WHERE id = ?`, runID).
		Scan(&run.ID, &run.Command, &run.Goal, &started, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, nil, err
	}
	run.StartedAt = time.Unix(0, started)
	if finished > 0 {
		run.FinishedAt = time.Unix(0, finished)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT path, kind, changed, replaced, error FROM files WHERE run_id = ? ORDER BY path`, runID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var files []FileRecord
	for rows.Next() {
		var f FileRecord
		if err := rows.Scan(&f.Path, &f.Kind, &f.Changed, &f.Replaced, &f.Error); err != nil {
			return nil, nil, err
		}
		files = append(files, f)

		run.Files++
		if f.Changed {
			run.Changed++
		}
		if f.Error != "" {
			run.Failed++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	return &run, files, nil
}
