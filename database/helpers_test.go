package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"horoscope-api/forecast"
)

func sqliteConfig(t *testing.T) Config {
	t.Helper()
	return Config{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "horoscope.db")}
}

// openMigrated applies the schema for cfg and returns a pool closed at cleanup.
func openMigrated(t *testing.T, cfg Config) *Database {
	t.Helper()
	require.NoError(t, Migrate(cfg, -1, zap.NewNop()))

	db, err := Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// seed inserts records into the table matching their period key.
func seed(t *testing.T, db *Database, records []forecast.Record) {
	t.Helper()

	var (
		daily   []DailyForecast
		weekly  []WeeklyForecast
		monthly []MonthlyForecast
	)
	for _, r := range records {
		switch {
		case r.Date != "":
			daily = append(daily, DailyForecast{Sign: r.Sign, Date: r.Date, Category: r.Category, Forecast: r.Forecast, Stars: r.Stars})
		case r.WeekStart != "":
			weekly = append(weekly, WeeklyForecast{Sign: r.Sign, WeekStart: r.WeekStart, WeekEnd: r.WeekEnd, Category: r.Category, Forecast: r.Forecast, Stars: r.Stars})
		default:
			monthly = append(monthly, MonthlyForecast{Sign: r.Sign, Month: r.Month, Category: r.Category, Forecast: r.Forecast, Stars: r.Stars})
		}
	}

	if len(daily) > 0 {
		require.NoError(t, db.DB().Create(&daily).Error)
	}
	if len(weekly) > 0 {
		require.NoError(t, db.DB().Create(&weekly).Error)
	}
	if len(monthly) > 0 {
		require.NoError(t, db.DB().Create(&monthly).Error)
	}
}

func newSeededRepository(t *testing.T, cfg Config, records []forecast.Record) *ForecastRepository {
	t.Helper()
	db := openMigrated(t, cfg)
	seed(t, db, records)
	return NewForecastRepository(db)
}
