package database

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate applies the canonical schema for cfg.Driver.
//   - If targetVersion < 0, it migrates to the latest version.
//   - If targetVersion == 0, it rolls back every migration.
//   - If targetVersion > 0, it migrates to that version.
func Migrate(cfg Config, targetVersion int, log *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if log == nil {
		log = zap.NewNop()
	}

	conn, err := openSQL(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	var driver migratedb.Driver
	switch cfg.Driver {
	case DriverSQLite:
		driver, err = sqlite.WithInstance(conn, &sqlite.Config{MigrationsTable: migrationsTable})
	case DriverPostgres:
		driver, err = postgres.WithInstance(conn, &postgres.Config{MigrationsTable: migrationsTable})
	case DriverMySQL:
		driver, err = mysql.WithInstance(conn, &mysql.Config{MigrationsTable: migrationsTable})
	}
	if err != nil {
		return fmt.Errorf("failed to create %s migrate driver: %w", cfg.Driver, err)
	}

	dialectFS, err := fs.Sub(migrationsFS, path.Join("migrations", cfg.Driver))
	if err != nil {
		return fmt.Errorf("failed to access migrations directory: %w", err)
	}
	source, err := iofs.New(dialectFS, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, cfg.Driver, driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	current, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is in a dirty state at version %d; fix it manually or force the version", current)
	}

	switch {
	case targetVersion < 0:
		err = m.Up()
	case targetVersion == 0:
		err = m.Down()
	default:
		err = m.Migrate(uint(targetVersion))
	}
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("schema already current", zap.String("driver", cfg.Driver), zap.Uint("version", current))
		return nil
	}
	if err != nil {
		return WrapDBError("migrate", err)
	}

	next, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read migrated version: %w", err)
	}
	log.Info("schema migrated",
		zap.String("driver", cfg.Driver),
		zap.Uint("from", current),
		zap.Uint("to", next),
	)
	return nil
}
