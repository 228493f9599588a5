// Package database provides the relational backend for horoscope forecasts.
//
// This package includes:
//   - Connection management using GORM over SQLite, PostgreSQL or MySQL
//   - The canonical schema, applied with golang-migrate from embedded SQL
//   - ForecastRepository, the forecast.Store implementation over that schema
//
// Schema:
//
//	daily(sign, date, category, forecast, stars)
//	weekly(sign, week_start, week_end, category, forecast, stars)
//	monthly(sign, month, category, forecast, stars)
//
// Period keys are ISO text (YYYY-MM-DD, YYYY-MM). stars is nullable; readers
// report DefaultStars when it is NULL.
package database

import (
	"context"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database holds the GORM connection pool shared by every repository.
type Database struct {
	db     *gorm.DB
	driver string
}

// DB returns the underlying GORM database instance for direct access when needed.
func (d *Database) DB() *gorm.DB {
	return d.db
}

// Driver reports which SQL dialect the pool speaks.
func (d *Database) Driver() string {
	return d.driver
}

// Connect establishes the database connection pool using GORM
func Connect(cfg Config) (*Database, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverSQLite:
		dialector = sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: cfg.Path})
	case DriverPostgres:
		dialector = postgres.Open(cfg.postgresDSN())
	case DriverMySQL:
		dsn, err := cfg.mysqlDSN(false)
		if err != nil {
			return nil, err
		}
		dialector = mysql.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	maxOpen := MaxOpenConns
	if cfg.Driver == DriverSQLite {
		maxOpen = SQLiteMaxOpenConns
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(min(MaxIdleConns, maxOpen))
	sqlDB.SetConnMaxLifetime(ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{db: db, driver: cfg.Driver}, nil
}

// Ping checks if the database connection is alive
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DailyForecast is a row of the daily table.
type DailyForecast struct {
	Sign     string `gorm:"column:sign;primaryKey"`
	Date     string `gorm:"column:date;primaryKey"`
	Category string `gorm:"column:category;primaryKey"`
	Forecast string `gorm:"column:forecast"`
	Stars    *int   `gorm:"column:stars"`
}

// TableName overrides GORM's pluralized default.
func (DailyForecast) TableName() string { return TableDaily }

// WeeklyForecast is a row of the weekly table.
type WeeklyForecast struct {
	Sign      string `gorm:"column:sign;primaryKey"`
	WeekStart string `gorm:"column:week_start;primaryKey"`
	WeekEnd   string `gorm:"column:week_end;primaryKey"`
	Category  string `gorm:"column:category;primaryKey"`
	Forecast  string `gorm:"column:forecast"`
	Stars     *int   `gorm:"column:stars"`
}

func (WeeklyForecast) TableName() string { return TableWeekly }

// MonthlyForecast is a row of the monthly table.
type MonthlyForecast struct {
	Sign     string `gorm:"column:sign;primaryKey"`
	Month    string `gorm:"column:month;primaryKey"`
	Category string `gorm:"column:category;primaryKey"`
	Forecast string `gorm:"column:forecast"`
	Stars    *int   `gorm:"column:stars"`
}

func (MonthlyForecast) TableName() string { return TableMonthly }
