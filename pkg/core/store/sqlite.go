package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"screener_valuation/pkg/core/analysis"
)

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRepo stores reports in a local SQLite file.
type SQLiteRepo struct {
	conn *sql.DB
}

// NewSQLiteRepo opens (or creates) the database at path and runs migrations.
func NewSQLiteRepo(ctx context.Context, path string) (*SQLiteRepo, error) {
	if path == "" {
		path = filepath.Join("data", "reports.db")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite registers as "sqlite"
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps :memory: databases shared and serialises writers
	conn.SetMaxOpenConns(1)

	repo := &SQLiteRepo{conn: conn}
	if err := repo.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return repo, nil
}

func (r *SQLiteRepo) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			company TEXT NOT NULL,
			grade TEXT NOT NULL,
			score INTEGER NOT NULL,
			data BLOB NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS reports_created_idx ON reports (created_at)`,
	}
	for _, s := range stmts {
		if _, err := r.conn.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// Save upserts the report by id.
func (r *SQLiteRepo) Save(ctx context.Context, rep *analysis.Report) error {
	data, err := encode(rep)
	if err != nil {
		return err
	}
	_, err = r.conn.ExecContext(ctx, `
		INSERT INTO reports (id, company, grade, score, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			company = excluded.company,
			grade = excluded.grade,
			score = excluded.score,
			data = excluded.data,
			created_at = excluded.created_at`,
		rep.ID, rep.Company, rep.Verdict.Grade, rep.Verdict.Score, data, rep.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// Get loads one report.
func (r *SQLiteRepo) Get(ctx context.Context, id string) (*analysis.Report, error) {
	var data []byte
	err := r.conn.QueryRowContext(ctx, `SELECT data FROM reports WHERE id = ?`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("report %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	return decode(data)
}

// List returns report summaries, newest first.
func (r *SQLiteRepo) List(ctx context.Context, limit int) ([]analysis.Summary, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, company, grade, score, created_at FROM reports ORDER BY created_at DESC LIMIT ?`,
		listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var out []analysis.Summary
	for rows.Next() {
		var (
			s       analysis.Summary
			created string
		)
		if err := rows.Scan(&s.ID, &s.Company, &s.Grade, &s.Score, &created); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		if s.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("bad created_at %q: %w", created, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Close closes the database connection
func (r *SQLiteRepo) Close() error {
	return r.conn.Close()
}
