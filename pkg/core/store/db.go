// Package store persists usage telemetry for the reconciliation service and
// ships periodic backups of it to Google Drive.
package store

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool *pgxpool.Pool
	once sync.Once
)

const usageSchema = `
CREATE TABLE IF NOT EXISTS usage_logs (
	id          BIGSERIAL PRIMARY KEY,
	user_id     TEXT NOT NULL,
	channel_id  TEXT NOT NULL,
	mode        TEXT NOT NULL,
	vendor_file TEXT,
	soa_file    TEXT,
	status      TEXT NOT NULL,
	rating      INTEGER,
	created_at  TIMESTAMPTZ NOT NULL
)`

// InitDB initializes the connection pool from the DATABASE_URL environment
// variable and ensures the usage_logs table exists.
func InitDB(ctx context.Context) error {
	var err error
	once.Do(func() {
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			err = fmt.Errorf("DATABASE_URL environment variable not set")
			return
		}

		config, parseErr := pgxpool.ParseConfig(dbURL)
		if parseErr != nil {
			err = fmt.Errorf("failed to parse database config: %w", parseErr)
			return
		}

		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err != nil {
			return
		}

		if _, execErr := pool.Exec(ctx, usageSchema); execErr != nil {
			err = fmt.Errorf("failed to ensure usage_logs schema: %w", execErr)
		}
	})
	return err
}

// GetPool returns the database connection pool.
func GetPool() *pgxpool.Pool {
	return pool
}

// Close closes the database connection pool.
func Close() {
	if pool != nil {
		pool.Close()
	}
}
