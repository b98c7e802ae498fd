// Package store mirrors destination tables into SQLite and keeps the run log.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"capig-dash-go/internal/label"
	"capig-dash-go/internal/types"
)

type SQLite struct {
	db *sql.DB
}

// NewSQLite opens the database at dsn and creates the run log table.
func NewSQLite(ctx context.Context, dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// a single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: exec %s: %w", pragma, err)
		}
	}
	s := &SQLite{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS refresh_runs (
	run_id      TEXT PRIMARY KEY,
	dashboard   TEXT NOT NULL,
	started_at  DATETIME NOT NULL,
	finished_at DATETIME NOT NULL,
	rows_read   TEXT NOT NULL,
	skipped     INTEGER NOT NULL DEFAULT 0,
	duplicates  INTEGER NOT NULL DEFAULT 0,
	unmatched   INTEGER NOT NULL DEFAULT 0,
	outputs     TEXT NOT NULL,
	error       TEXT
);
CREATE INDEX IF NOT EXISTS idx_refresh_runs_dashboard ON refresh_runs(dashboard);
`

func (s *SQLite) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, migration); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// columns turns sheet headers into unique SQL column names.
func columns(header []string) []string {
	out := make([]string, len(header))
	used := map[string]int{}
	for i, h := range header {
		c := label.Normalize(h)
		if c == "" {
			c = fmt.Sprintf("COL_%d", i+1)
		}
		if n := used[c]; n > 0 {
			used[c]++
			c = fmt.Sprintf("%s_%d", c, n+1)
		} else {
			used[c] = 1
		}
		out[i] = c
	}
	return out
}

// WriteSheet replaces the table named after the sheet with its rows, in one
// transaction.
func (s *SQLite) WriteSheet(ctx context.Context, sh *types.Sheet) error {
	name := label.Normalize(sh.Name)
	if name == "" {
		return fmt.Errorf("sqlite: sheet without name")
	}
	cols := columns(sh.Header)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quote(name)); err != nil {
		return fmt.Errorf("sqlite: drop %s: %w", name, err)
	}
	defs := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = quote(c)
		marks[i] = "?"
	}
	if len(cols) == 0 {
		return tx.Commit()
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", quote(name), strings.Join(defs, ", "))); err != nil {
		return fmt.Errorf("sqlite: create %s: %w", name, err)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", quote(name), strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("sqlite: prepare %s: %w", name, err)
	}
	defer stmt.Close()
	for i, row := range sh.Rows {
		args := make([]any, len(cols))
		copy(args, row)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("sqlite: insert %s row %d: %w", name, i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit %s: %w", name, err)
	}
	return nil
}

// Count returns the number of rows mirrored for a sheet.
func (s *SQLite) Count(ctx context.Context, sheet string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quote(label.Normalize(sheet))).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: count %s: %w", sheet, err)
	}
	return n, nil
}

// RecordRun appends one run log entry.
func (s *SQLite) RecordRun(ctx context.Context, l *types.RunLog) error {
	read, err := json.Marshal(l.RowsRead)
	if err != nil {
		return fmt.Errorf("sqlite: marshal rows_read: %w", err)
	}
	outputs, err := json.Marshal(l.Outputs)
	if err != nil {
		return fmt.Errorf("sqlite: marshal outputs: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO refresh_runs (run_id, dashboard, started_at, finished_at, rows_read, skipped, duplicates, unmatched, outputs, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.RunID, l.Dashboard, l.StartedAt, l.FinishedAt, string(read), l.Skipped, l.Duplicates, l.Unmatched, string(outputs), nullable(l.Error),
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert run %s: %w", l.RunID, err)
	}
	return nil
}

// Runs lists the most recent run log entries, newest first.
func (s *SQLite) Runs(ctx context.Context, limit int) ([]types.RunLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, dashboard, started_at, finished_at, rows_read, skipped, duplicates, unmatched, outputs, error
		 FROM refresh_runs ORDER BY finished_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list runs: %w", err)
	}
	defer rows.Close()

	var out []types.RunLog
	for rows.Next() {
		var (
			l             types.RunLog
			read, outputs string
			errText       sql.NullString
		)
		if err := rows.Scan(&l.RunID, &l.Dashboard, &l.StartedAt, &l.FinishedAt, &read, &l.Skipped, &l.Duplicates, &l.Unmatched, &outputs, &errText); err != nil {
			return nil, fmt.Errorf("sqlite: scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(read), &l.RowsRead); err != nil {
			return nil, fmt.Errorf("sqlite: decode rows_read: %w", err)
		}
		if err := json.Unmarshal([]byte(outputs), &l.Outputs); err != nil {
			return nil, fmt.Errorf("sqlite: decode outputs: %w", err)
		}
		l.Error = errText.String
		out = append(out, l)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
