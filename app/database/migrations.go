package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var schemaFS embed.FS

// Schema is the migration state of a database. Version 0 means no
// migration has run yet.
type Schema struct {
	Version uint
	Dirty   bool
}

// RunMigrations brings the schema up to date. A dirty schema is left
// alone and reported as an error: a migration failed halfway and the
// database needs repair before anything else runs on it.
func RunMigrations(db *DB) (Schema, error) {
	// the migrator is never closed, closing it would close db
	m, err := newMigrator(db)
	if err != nil {
		return Schema{}, err
	}

	current, err := schemaOf(m)
	if err != nil {
		return Schema{}, err
	}
	if current.Dirty {
		return current, fmt.Errorf("schema version %d is dirty, repair it before starting", current.Version)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return Schema{}, fmt.Errorf("failed to migrate schema from version %d: %w", current.Version, err)
	}

	return schemaOf(m)
}

func newMigrator(db *DB) (*migrate.Migrate, error) {
	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open schema table: %w", err)
	}

	source, err := iofs.New(schemaFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

func schemaOf(m *migrate.Migrate) (Schema, error) {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return Schema{}, nil
	}
	if err != nil {
		return Schema{}, fmt.Errorf("failed to read schema version: %w", err)
	}
	return Schema{Version: version, Dirty: dirty}, nil
}
