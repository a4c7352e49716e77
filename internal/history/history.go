// Package history records each generation run in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// timeLayout is fixed width so started_at sorts as text in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Outcomes recorded for a run besides the validator outcomes.
const (
	OutcomeQualityFailed = "quality-failed"
	OutcomeParseFailed   = "parse-failed"
	OutcomeError         = "error"
)

// Run is one invocation of the generator.
type Run struct {
	ID        uuid.UUID
	StartedAt time.Time
	Dir       string
	Provider  string
	Model     string
	// Outcome is a validator outcome (validated, defaulted, fallback) or one
	// of the failure outcomes above.
	Outcome  string
	Strategy string
	Repaired bool
	Failures []string
	// Files lists root-relative paths that were written.
	Files []string
}

// Store wraps the history database.
type Store struct {
	conn *sql.DB
}

// DefaultPath is the database location under the user cache directory.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "setupwizard", "history.db"), nil
}

// Open creates or opens the database at path and runs migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return err
	}
	for _, e := range entries {
		content, err := migrationsFS.ReadFile("migrations/" + e.Name())
		if err != nil {
			return fmt.Errorf("read migration %s: %w", e.Name(), err)
		}
		if _, err := s.conn.Exec(string(content)); err != nil {
			return fmt.Errorf("execute migration %s: %w", e.Name(), err)
		}
	}
	return nil
}

// Record stores r, assigning an ID and start time when they are zero.
func (s *Store) Record(ctx context.Context, r *Run) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	failures, err := encodeList(r.Failures)
	if err != nil {
		return err
	}
	files, err := encodeList(r.Files)
	if err != nil {
		return err
	}
	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, dir, provider, model, outcome, strategy, repaired, failures, files)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.StartedAt.UTC().Format(timeLayout), r.Dir, r.Provider, r.Model,
		r.Outcome, r.Strategy, r.Repaired, failures, files)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// List returns the most recent runs first. limit <= 0 returns all runs.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT id, started_at, dir, provider, model, outcome, strategy, repaired, failures, files
	      FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ErrNotFound is returned by Get for unknown IDs.
var ErrNotFound = errors.New("history: run not found")

// Get returns the run with the given ID.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Run, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT id, started_at, dir, provider, model, outcome, strategy, repaired, failures, files
		 FROM runs WHERE id = ?`, id.String())
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r               Run
		id, started     string
		failures, files string
	)
	if err := sc.Scan(&id, &started, &r.Dir, &r.Provider, &r.Model, &r.Outcome, &r.Strategy, &r.Repaired, &failures, &files); err != nil {
		return Run{}, err
	}
	var err error
	if r.ID, err = uuid.Parse(id); err != nil {
		return Run{}, fmt.Errorf("parse run id: %w", err)
	}
	if r.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return Run{}, fmt.Errorf("parse started_at: %w", err)
	}
	if err := json.Unmarshal([]byte(failures), &r.Failures); err != nil {
		return Run{}, fmt.Errorf("parse failures: %w", err)
	}
	if err := json.Unmarshal([]byte(files), &r.Files); err != nil {
		return Run{}, fmt.Errorf("parse files: %w", err)
	}
	return r, nil
}

func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	return string(b), err
}
