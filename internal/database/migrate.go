package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/nyumba-homes/marketplace/internal/logger"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Tables lists every table the marketplace schema defines.
var Tables = []string{
	"profiles",
	"agents",
	"properties",
	"inquiries",
	"property_views",
	"search_queries",
	"user_sessions",
	"traffic_sources",
}

// Migrate applies the embedded schema migrations through a database/sql
// handle borrowed from the pool. Closing that handle leaves the pool open.
func (db *Database) Migrate(log *logger.Logger) error {
	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	defer sqlDB.Close()

	return RunMigrations(sqlDB, log)
}

// RunMigrations executes pending migrations embedded in the binary.
// It is idempotent; only pending migrations are executed.
func RunMigrations(sqlDB *sql.DB, log *logger.Logger) error {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migration source: %w", err)
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			log.Warn("Failed to close migration source", map[string]interface{}{"error": srcErr.Error()})
		}
		if dbErr != nil {
			log.Warn("Failed to close migration database", map[string]interface{}{"error": dbErr.Error()})
		}
	}()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("No migrations to apply (database up-to-date)", nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, _, _ := m.Version()
	log.Info("Applied migrations successfully", map[string]interface{}{"version": version})
	return nil
}
