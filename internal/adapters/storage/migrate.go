package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// LatestSchemaVersion is the schema version a fully migrated database carries.
const LatestSchemaVersion = 3

// migrations maps a target version to the statements that bring a database
// up from the previous version. Version 1 is the baseline created by InitDB
// and has no statements of its own.
var migrations = map[int][]string{
	2: {
		`ALTER TABLE reservation ADD COLUMN cancel_reason TEXT NOT NULL DEFAULT ''`,
	},
	3: {
		`ALTER TABLE profile ADD COLUMN line_user_id TEXT NOT NULL DEFAULT ''`,
		`CREATE INDEX IF NOT EXISTS idx_coin_transaction_reference ON coin_transaction(reference_id)`,
	},
}

// SchemaVersion returns the recorded schema version, 0 if none is recorded.
// PRE: db is a valid database connection
// POST: returns version >= 0
func SchemaVersion(db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'`).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to probe schema_version table: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}

	var version int
	err = db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// MigrateDB brings the schema up to LatestSchemaVersion.
// Fresh databases (version 0) get the full schema from InitDB and are
// stamped directly; older databases replay each pending migration.
// PRE: db is a valid database connection
// POST: schema at LatestSchemaVersion, schema_version records it
func MigrateDB(db *sql.DB) error {
	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	if current == 0 {
		if err := InitDB(db); err != nil {
			return err
		}
		if _, err := db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, LatestSchemaVersion); err != nil {
			return fmt.Errorf("failed to stamp schema version: %w", err)
		}
		return nil
	}

	for v := current + 1; v <= LatestSchemaVersion; v++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", v, err)
		}
		for _, stmt := range migrations[v] {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("migration %d failed: %w", v, err)
			}
		}
		if _, err := tx.Exec(`UPDATE schema_version SET version = ?`, v); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", v, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", v, err)
		}
		slog.Info("schema_migrated", "version", v)
	}

	return nil
}
