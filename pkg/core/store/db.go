package store

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool    *pgxpool.Pool
	once    sync.Once
	initErr error
)

// InitDB initializes the shared Postgres pool. An empty dbURL falls back to the
// DATABASE_URL environment variable. Only the first call connects.
func InitDB(ctx context.Context, dbURL string) error {
	once.Do(func() {
		if dbURL == "" {
			dbURL = os.Getenv("DATABASE_URL")
		}
		if dbURL == "" {
			initErr = fmt.Errorf("DATABASE_URL environment variable not set")
			return
		}

		config, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			initErr = fmt.Errorf("failed to parse database config: %w", err)
			return
		}

		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err != nil {
			initErr = fmt.Errorf("failed to create database pool: %w", err)
			return
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			pool = nil
			initErr = fmt.Errorf("failed to reach database: %w", err)
		}
	})
	return initErr
}

// GetPool returns the database connection pool, nil before a successful InitDB.
func GetPool() *pgxpool.Pool {
	return pool
}

// Close closes the database connection pool
func Close() {
	if pool != nil {
		pool.Close()
	}
}
