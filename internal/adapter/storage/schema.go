// internal/adapter/storage/schema.go

package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"spatialintel/internal/logger"
)

// schemaStatements are idempotent and safe to run on every start
var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS postgis`,
	`CREATE TABLE IF NOT EXISTS events (
		id BIGSERIAL PRIMARY KEY,
		geom geometry(Point, 4326) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_geom ON events USING GIST (geom)`,
	`CREATE INDEX IF NOT EXISTS idx_events_created_at ON events (created_at)`,
}

// EnsureSchema creates the events table and its indexes if missing
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	for i, stmt := range schemaStatements {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("error applying schema statement %d: %w", i, err)
		}
	}
	logger.L().Info("schema_ready")
	return nil
}
