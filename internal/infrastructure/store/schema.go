package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS merchants (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS shipments (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		merchant_id UUID NOT NULL REFERENCES merchants (id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_shipments_merchant_id ON shipments (merchant_id)`,
	`CREATE TABLE IF NOT EXISTS shipment_events (
		id UUID PRIMARY KEY,
		shipment_id UUID NOT NULL REFERENCES shipments (id) ON DELETE CASCADE,
		type TEXT NOT NULL CHECK (type IN ('created', 'packaged', 'in_transit', 'picked_up_for_delivery', 'delayed', 'delivered')),
		source TEXT NOT NULL CHECK (source IN ('carrier', 'system', 'manual')),
		reason TEXT,
		occurred_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_shipment_events_shipment_occurred
		ON shipment_events (shipment_id, occurred_at)`,
	`CREATE OR REPLACE FUNCTION touch_updated_at() RETURNS trigger AS $$
	BEGIN
		NEW.updated_at = now();
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql`,
	`DROP TRIGGER IF EXISTS shipment_events_touch_updated_at ON shipment_events`,
	`CREATE TRIGGER shipment_events_touch_updated_at
		BEFORE UPDATE ON shipment_events
		FOR EACH ROW EXECUTE FUNCTION touch_updated_at()`,
}

// Migrate creates the schema if it does not exist yet. It is safe to run on
// every startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("migrate: db is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migrate: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// serialize concurrent startups on the same database
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(7310452)`); err != nil {
		return fmt.Errorf("migrate: acquire lock: %w", err)
	}

	for i, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate: commit tx: %w", err)
	}
	return nil
}
