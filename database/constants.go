package database

import "time"

// Table names of the canonical schema
const (
	TableDaily   = "daily"
	TableWeekly  = "weekly"
	TableMonthly = "monthly"
)

// Connection pool settings
const (
	MaxOpenConns    = 25
	MaxIdleConns    = 10
	ConnMaxLifetime = 5 * time.Minute
	ConnMaxIdleTime = 2 * time.Minute

	// SQLite serializes writers; readers still share the pool.
	SQLiteMaxOpenConns = 4
)

// migrationsTable records applied schema versions.
const migrationsTable = "schema_migrations"
