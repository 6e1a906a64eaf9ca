package persistent

import (
	"context"
	"fmt"

	"github.com/andreyxaxa/oral-screening/pkg/postgres"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS submissions (
		id                   UUID PRIMARY KEY,
		patient_id           UUID NOT NULL,
		patient_name         TEXT NOT NULL,
		external_patient_id  TEXT NOT NULL,
		email                TEXT NOT NULL,
		note                 TEXT NOT NULL DEFAULT '',
		original_image_keys  TEXT[] NOT NULL,
		annotated_image_keys TEXT[] NOT NULL DEFAULT '{}',
		annotation_data      JSONB,
		admin_notes          TEXT NOT NULL DEFAULT '',
		report_key           TEXT,
		processed_by         UUID,
		status               TEXT NOT NULL,
		created_at           TIMESTAMPTZ NOT NULL,
		updated_at           TIMESTAMPTZ NOT NULL,
		annotated_at         TIMESTAMPTZ,
		reported_at          TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS submissions_status_created_at_idx ON submissions (status, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS submissions_patient_id_created_at_idx ON submissions (patient_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS submissions_outbox (
		id           UUID PRIMARY KEY,
		aggregate_id UUID NOT NULL,
		event_type   TEXT NOT NULL,
		payload      JSONB NOT NULL,
		status       TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL,
		processed_at TIMESTAMPTZ,
		retry_count  INT NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS submissions_outbox_status_created_at_idx ON submissions_outbox (status, created_at)`,
}

// EnsureSchema creates the tables the repositories need when they are missing.
func EnsureSchema(ctx context.Context, pg *postgres.Postgres) error {
	for _, stmt := range schema {
		if _, err := pg.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("persistent - EnsureSchema - pg.Pool.Exec: %w", err)
		}
	}

	return nil
}
