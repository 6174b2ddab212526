// Package store persists analysis reports. Every backend stores the report as one
// JSON document keyed by report id.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"screener_valuation/pkg/core/analysis"
)

// ErrNotFound is returned by Get when no report has the id.
var ErrNotFound = errors.New("report not found")

// DefaultListLimit bounds List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Repository stores and retrieves reports. Implementations are safe for concurrent use.
type Repository interface {
	Save(ctx context.Context, r *analysis.Report) error
	Get(ctx context.Context, id string) (*analysis.Report, error)
	// List returns the newest reports first.
	List(ctx context.Context, limit int) ([]analysis.Summary, error)
	Close() error
}

// Drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open connects the configured backend. dsn is a directory for "file", a database
// path for "sqlite" and a connection URL for "postgres" (empty means DATABASE_URL).
func Open(ctx context.Context, driver, dsn string, logger zerolog.Logger) (Repository, error) {
	logger = logger.With().Str("module", "store").Str("driver", driver).Logger()

	switch strings.ToLower(driver) {
	case "", DriverMemory:
		return NewMemoryRepo(), nil
	case DriverFile:
		return NewFileRepo(dsn)
	case DriverSQLite:
		return NewSQLiteRepo(ctx, dsn)
	case DriverPostgres:
		if err := InitDB(ctx, dsn); err != nil {
			return nil, err
		}
		repo := NewPostgresRepo(GetPool())
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		logger.Info().Msg("postgres report store ready")
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

func encode(r *analysis.Report) ([]byte, error) {
	if r == nil || r.ID == "" {
		return nil, fmt.Errorf("report has no id")
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*analysis.Report, error) {
	var r analysis.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &r, nil
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
