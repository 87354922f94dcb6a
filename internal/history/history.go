// Package history records placement runs in a SQLite database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Get for an unknown run id
var ErrNotFound = errors.New("run not found")

// Run is one recorded placement run
type Run struct {
	ID           string
	Board        string
	Output       string
	Objective    string
	Seed         *uint64
	Iterations   int
	Attempts     int
	Accepted     int
	InitialScore float64
	FinalScore   float64
	Valid        bool
	StartedAt    time.Time
	Duration     time.Duration
}

// Store is a run history database
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		board TEXT NOT NULL,
		output TEXT NOT NULL DEFAULT '',
		objective TEXT NOT NULL,
		seed INTEGER,
		iterations INTEGER NOT NULL,
		attempts INTEGER NOT NULL,
		accepted INTEGER NOT NULL,
		initial_score REAL NOT NULL,
		final_score REAL NOT NULL,
		valid INTEGER NOT NULL,
		started_at INTEGER NOT NULL,
		duration_ns INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_board ON runs(board);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores run and returns it with its id and start time filled in
func (s *Store) Record(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	var seed sql.NullInt64
	if run.Seed != nil {
		seed = sql.NullInt64{Int64: int64(*run.Seed), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, board, output, objective, seed, iterations, attempts, accepted,
			initial_score, final_score, valid, started_at, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Board, run.Output, run.Objective, seed, run.Iterations, run.Attempts, run.Accepted,
		run.InitialScore, run.FinalScore, run.Valid, run.StartedAt.UnixNano(), int64(run.Duration))
	if err != nil {
		return run, fmt.Errorf("failed to insert run: %w", err)
	}
	return run, nil
}

const selectRuns = `
	SELECT id, board, output, objective, seed, iterations, attempts, accepted,
		initial_score, final_score, valid, started_at, duration_ns
	FROM runs
`

// List returns the most recent runs first. A limit of zero or less returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, selectRuns+` ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get returns the run with the given id
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run       Run
		seed      sql.NullInt64
		startedAt int64
		duration  int64
	)
	err := row.Scan(&run.ID, &run.Board, &run.Output, &run.Objective, &seed, &run.Iterations,
		&run.Attempts, &run.Accepted, &run.InitialScore, &run.FinalScore, &run.Valid,
		&startedAt, &duration)
	if errors.Is(err, sql.ErrNoRows) {
		return run, err
	}
	if err != nil {
		return run, fmt.Errorf("failed to scan run: %w", err)
	}

	if seed.Valid {
		v := uint64(seed.Int64)
		run.Seed = &v
	}
	run.StartedAt = time.Unix(0, startedAt)
	run.Duration = time.Duration(duration)
	return run, nil
}
