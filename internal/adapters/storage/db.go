package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// ErrUnsupportedDriver is returned for drivers without a schema.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// migrations holds the ordered schema steps per driver. Version N is the
// N-th entry; entries are never edited once released.
var migrations = map[string][]string{
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			data TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (collection, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_collection_created ON documents (collection, created_at)`,
	},
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			data JSONB NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (collection, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_collection_created ON documents (collection, created_at)`,
	},
}

// LatestSchemaVersion returns the version MigrateDB brings a database to.
func LatestSchemaVersion() int {
	return len(migrations[DriverSQLite])
}

// MigrateDB applies pending schema steps for the given driver.
// PRE: db is a valid database connection for driver
// POST: documents table exists, schema_version holds LatestSchemaVersion
func MigrateDB(ctx context.Context, db SQLDB, driver string) error {
	steps, ok := migrations[driver]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedDriver, driver)
	}
	if _, err := db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)"); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	for v := current; v < len(steps); v++ {
		if _, err := db.ExecContext(ctx, steps[v]); err != nil {
			return fmt.Errorf("migration %d failed: %w", v+1, err)
		}
	}
	if current == len(steps) {
		return nil
	}

	if _, err := db.ExecContext(ctx, "DELETE FROM schema_version"); err != nil {
		return fmt.Errorf("failed to reset schema_version: %w", err)
	}
	query := "INSERT INTO schema_version (version) VALUES (?)"
	if driver == DriverPostgres {
		query = "INSERT INTO schema_version (version) VALUES ($1)"
	}
	if _, err := db.ExecContext(ctx, query, len(steps)); err != nil {
		return fmt.Errorf("failed to record schema_version: %w", err)
	}
	return nil
}

// SchemaVersion returns the recorded schema version, 0 for a fresh database.
// PRE: schema_version table exists
func SchemaVersion(ctx context.Context, db SQLDB) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema_version: %w", err)
	}
	return version, nil
}
