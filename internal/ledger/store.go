// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records conversion runs in a local SQLite database. Only run
// metadata is stored; backup contents never reach the ledger.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/mangabridge/pkg/types"
)

const (
	dbFile            = "runs.db"
	defaultMaxResults = 20

	// timeLayout is fixed width so stored times sort as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// ErrNotFound is returned by Get when no run has the requested id.
var ErrNotFound = errors.New("run not found")

// Store manages the run ledger database.
type Store struct {
	db         *sql.DB
	path       string
	maxResults int
}

// DefaultPath returns ~/.config/mangabridge/runs.db, or runs.db in the
// working directory when the home directory cannot be resolved.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return dbFile
	}
	return filepath.Join(home, ".config", "mangabridge", dbFile)
}

// NewStore opens or creates the ledger at cfg.Path and creates the schema if
// it does not exist.
func NewStore(cfg types.LedgerConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = DefaultPath()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, path: path, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	slog.Debug("ledger opened", "path", path)
	return s, nil
}

// Path returns the database file the store was opened on.
func (s *Store) Path() string { return s.path }

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			input TEXT NOT NULL,
			input_sha256 TEXT,
			output TEXT,
			origin TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			library INTEGER NOT NULL DEFAULT 0,
			manga INTEGER NOT NULL DEFAULT 0,
			chapters INTEGER NOT NULL DEFAULT 0,
			history INTEGER NOT NULL DEFAULT 0,
			sources INTEGER NOT NULL DEFAULT 0,
			categories INTEGER NOT NULL DEFAULT 0,
			warnings INTEGER NOT NULL DEFAULT 0,
			started_at TEXT NOT NULL,
			duration_ns INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores run. A missing id or start time is filled
// in. Recording the same id twice replaces the earlier row.
func (s *Store) Record(ctx context.Context, run types.Run) error {
	_, err := s.Insert(ctx, run)
	return err
}

// Insert is Record that also returns the stored id.
func (s *Store) Insert(ctx context.Context, run types.Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, input, input_sha256, output, origin, status, error,
			library, manga, chapters, history, sources, categories, warnings,
			started_at, duration_ns)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			input=excluded.input, input_sha256=excluded.input_sha256,
			output=excluded.output, origin=excluded.origin, status=excluded.status,
			error=excluded.error, library=excluded.library, manga=excluded.manga,
			chapters=excluded.chapters, history=excluded.history,
			sources=excluded.sources, categories=excluded.categories,
			warnings=excluded.warnings, started_at=excluded.started_at,
			duration_ns=excluded.duration_ns`,
		run.ID, run.Input, run.InputSHA256, run.Output, run.Origin, string(run.Status), run.Error,
		run.Counts.Library, run.Counts.Manga, run.Counts.Chapters, run.Counts.History,
		run.Counts.Sources, run.Counts.Categories, run.Warnings,
		run.StartedAt.UTC().Format(timeLayout), int64(run.Duration),
	)
	if err != nil {
		return "", fmt.Errorf("recording run %s: %w", run.ID, err)
	}
	return run.ID, nil
}

// QueryOptions filters List results.
type QueryOptions struct {
	// Status keeps runs with this outcome.
	Status types.ConversionStatus

	// Origin keeps runs started from this shell.
	Origin string

	// Since keeps runs started at or after this time.
	Since time.Time

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

const selectRuns = `SELECT id, input, input_sha256, output, origin, status, error,
	library, manga, chapters, history, sources, categories, warnings,
	started_at, duration_ns
	FROM runs`

// List returns runs matching opts, newest first.
func (s *Store) List(ctx context.Context, opts QueryOptions) ([]types.Run, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(selectRuns + ` WHERE 1=1`)

	if opts.Status != "" {
		qb.WriteString(` AND status = ?`)
		args = append(args, string(opts.Status))
	}
	if opts.Origin != "" {
		qb.WriteString(` AND origin = ?`)
		args = append(args, opts.Origin)
	}
	if !opts.Since.IsZero() {
		qb.WriteString(` AND started_at >= ?`)
		args = append(args, opts.Since.UTC().Format(timeLayout))
	}

	qb.WriteString(` ORDER BY started_at DESC, id LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// Get returns the run with id. It returns an error wrapping ErrNotFound when
// there is none.
func (s *Store) Get(ctx context.Context, id string) (types.Run, error) {
	row := s.db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (types.Run, error) {
	var (
		run                  types.Run
		status, started      string
		sha, output, errText sql.NullString
		durationNS           int64
	)
	err := sc.Scan(
		&run.ID, &run.Input, &sha, &output, &run.Origin, &status, &errText,
		&run.Counts.Library, &run.Counts.Manga, &run.Counts.Chapters, &run.Counts.History,
		&run.Counts.Sources, &run.Counts.Categories, &run.Warnings,
		&started, &durationNS,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Run{}, err
		}
		return types.Run{}, fmt.Errorf("scanning run: %w", err)
	}

	run.InputSHA256 = sha.String
	run.Output = output.String
	run.Error = errText.String
	run.Status = types.ConversionStatus(status)
	run.Duration = time.Duration(durationNS)
	run.StartedAt, err = time.Parse(timeLayout, started)
	if err != nil {
		return types.Run{}, fmt.Errorf("parsing start time of run %s: %w", run.ID, err)
	}
	return run, nil
}
