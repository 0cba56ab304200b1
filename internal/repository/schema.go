package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema statements executed at startup. The unique partial index on open
// rentals backs the at-most-one-open-rental-per-vehicle invariant in the
// store itself, in addition to the transactional checks in the rental
// repository. Deletes of referenced vehicles/clients are restricted by the
// foreign keys rather than cascaded.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS vehicles (
		id         BIGSERIAL PRIMARY KEY,
		brand      TEXT NOT NULL,
		model      TEXT NOT NULL,
		year       INTEGER NOT NULL,
		available  BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS clients (
		id         BIGSERIAL PRIMARY KEY,
		name       TEXT NOT NULL,
		cpf        TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS rentals (
		id           BIGSERIAL PRIMARY KEY,
		client_id    BIGINT NOT NULL REFERENCES clients (id) ON DELETE RESTRICT,
		vehicle_id   BIGINT NOT NULL REFERENCES vehicles (id) ON DELETE RESTRICT,
		started_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		ended_at     TIMESTAMPTZ,
		total_charge NUMERIC(12,2)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS rentals_open_vehicle_idx
		ON rentals (vehicle_id) WHERE ended_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS rentals_started_at_idx
		ON rentals (started_at DESC)`,
}

// EnsureSchema creates the tables and indexes if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
