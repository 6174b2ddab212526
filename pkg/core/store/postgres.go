package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"screener_valuation/pkg/core/analysis"
)

// PostgresRepo stores reports in a JSONB column.
type PostgresRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresRepo creates a repository on pool.
func NewPostgresRepo(pool *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{pool: pool}
}

// EnsureSchema creates the reports table when missing.
func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	if r.pool == nil {
		return fmt.Errorf("database pool not initialized")
	}
	query := `
		CREATE TABLE IF NOT EXISTS screener_reports (
			id TEXT PRIMARY KEY,
			company TEXT NOT NULL,
			grade TEXT NOT NULL,
			score INTEGER NOT NULL,
			report_json JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS screener_reports_created_idx ON screener_reports (created_at DESC);
	`
	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create reports table: %w", err)
	}
	return nil
}

// Save upserts the report by id.
func (r *PostgresRepo) Save(ctx context.Context, rep *analysis.Report) error {
	if r.pool == nil {
		return fmt.Errorf("database pool not initialized")
	}
	data, err := encode(rep)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO screener_reports (id, company, grade, score, report_json, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id)
		DO UPDATE SET
			company = EXCLUDED.company,
			grade = EXCLUDED.grade,
			score = EXCLUDED.score,
			report_json = EXCLUDED.report_json,
			created_at = EXCLUDED.created_at;
	`
	_, err = r.pool.Exec(ctx, query, rep.ID, rep.Company, rep.Verdict.Grade, rep.Verdict.Score, data, rep.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// Get loads one report.
func (r *PostgresRepo) Get(ctx context.Context, id string) (*analysis.Report, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	var data []byte
	err := r.pool.QueryRow(ctx, `SELECT report_json FROM screener_reports WHERE id = $1`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("report %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	return decode(data)
}

// List returns report summaries, newest first.
func (r *PostgresRepo) List(ctx context.Context, limit int) ([]analysis.Summary, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, company, grade, score, created_at FROM screener_reports ORDER BY created_at DESC LIMIT $1`,
		listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var out []analysis.Summary
	for rows.Next() {
		var s analysis.Summary
		if err := rows.Scan(&s.ID, &s.Company, &s.Grade, &s.Score, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Close releases the shared pool.
func (r *PostgresRepo) Close() error {
	Close()
	return nil
}
