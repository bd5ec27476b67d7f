package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_properties",
		SQL: `CREATE TABLE IF NOT EXISTS properties (
  id      UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
  name    TEXT NOT NULL,
  address TEXT NOT NULL DEFAULT ''
);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id                  UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  property_id         UUID        NOT NULL REFERENCES properties (id),
  name                TEXT        NOT NULL,
  description         TEXT        NOT NULL DEFAULT '',
  storage_path        TEXT        NOT NULL UNIQUE,
  content_type        TEXT        NOT NULL,
  size                BIGINT      NOT NULL CHECK (size >= 0),
  document_type       TEXT        NOT NULL,
  uploaded_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
  expiry_date         TIMESTAMPTZ,
  notification_period INTEGER     CHECK (notification_period >= 0),
  favorite            BOOLEAN     NOT NULL DEFAULT false,
  version             INTEGER     NOT NULL DEFAULT 1 CHECK (version >= 1),
  last_accessed_at    TIMESTAMPTZ,
  notes               TEXT        NOT NULL DEFAULT ''
);`,
	},
	{
		Name: "create_table_document_versions",
		SQL: `CREATE TABLE IF NOT EXISTS document_versions (
  document_id  UUID        NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
  version      INTEGER     NOT NULL CHECK (version >= 1),
  uploaded_at  TIMESTAMPTZ NOT NULL,
  storage_path TEXT        NOT NULL UNIQUE,
  notes        TEXT        NOT NULL DEFAULT '',
  PRIMARY KEY (document_id, version)
);`,
	},
	{
		Name: "create_table_tags",
		SQL: `CREATE TABLE IF NOT EXISTS tags (
  id    UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
  name  TEXT NOT NULL UNIQUE,
  color TEXT NOT NULL DEFAULT ''
);`,
	},
	{
		Name: "create_table_document_tags",
		SQL: `CREATE TABLE IF NOT EXISTS document_tags (
  document_id UUID NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
  tag_id      UUID NOT NULL REFERENCES tags (id) ON DELETE CASCADE,
  PRIMARY KEY (document_id, tag_id)
);`,
	},
	{
		Name: "create_index_documents_property_type",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_property_type ON documents (property_id, document_type);`,
	},
	{
		Name: "create_index_documents_uploaded_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_uploaded_at ON documents (uploaded_at);`,
	},
	{
		Name: "create_index_documents_expiry_date",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_expiry_date ON documents (expiry_date) WHERE expiry_date IS NOT NULL;`,
	},
}

// sentinel is created by the final step, so its presence means every step has run.
// All steps are idempotent, which lets a run interrupted part way resume from the start.
const sentinel = "idx_documents_expiry_date"

// EnsureMigrated checks if the sentinel index exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *slog.Logger, dbHost string) error {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "database", "db_host", dbHost)
	start := time.Now()

	log.Info("db_migration_check", "status", "starting")

	var exists bool
	query := "SELECT to_regclass('public." + sentinel + "') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			"status", "error",
			"error_message", fmt.Sprintf("failed to check sentinel table: %v", err),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			"status", "success",
			"reason", "schema already exists",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	log.Info("db_migration_start", "status", "in_progress")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				"status", "error",
				"migration_step", step.Name,
				"error_message", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			"status", "success",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	log.Info("db_migration_success",
		"status", "success",
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
