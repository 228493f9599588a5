package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"horoscope-api/forecast"
	"horoscope-api/forecast/forecasttest"
)

func TestRepositoryContract(t *testing.T) {
	forecasttest.Run(t, func(t *testing.T, records []forecast.Record) forecast.Store {
		return newSeededRepository(t, sqliteConfig(t), records)
	})
}

func TestDailyExplicitDateIsNotReplaced(t *testing.T) {
	repo := newSeededRepository(t, sqliteConfig(t), forecasttest.Fixture())

	sel, err := repo.Daily(context.Background(), forecast.DailyRequest{Sign: "leo", Date: "2025-08-03"}.Normalize())
	require.NoError(t, err)
	assert.Equal(t, "2025-08-03", sel.Date)
	assert.Empty(t, sel.Records)
	assert.NotNil(t, sel.Records)
}

func TestDailyDefaultsToLatestDate(t *testing.T) {
	repo := newSeededRepository(t, sqliteConfig(t), forecasttest.Fixture())

	sel, err := repo.Daily(context.Background(), forecast.DailyRequest{Sign: "LEO"}.Normalize())
	require.NoError(t, err)
	assert.Equal(t, "2025-08-05", sel.Date)
	assert.Len(t, sel.Records, 2)
}

func TestMissingStarsDefault(t *testing.T) {
	repo := newSeededRepository(t, sqliteConfig(t), []forecast.Record{
		{Sign: "pisces", Month: "2025-08", Category: "love", Forecast: "Unrated"},
	})

	sel, err := repo.Monthly(context.Background(), forecast.MonthlyRequest{Sign: "pisces"}.Normalize())
	require.NoError(t, err)
	require.Len(t, sel.Records, 1)
	require.NotNil(t, sel.Records[0].Stars)
	assert.Equal(t, forecast.DefaultStars, *sel.Records[0].Stars)
}

func TestWeeklyHints(t *testing.T) {
	repo := newSeededRepository(t, sqliteConfig(t), []forecast.Record{
		{Sign: "leo", WeekStart: "2025-07-28", WeekEnd: "2025-08-03", Category: "love", Forecast: "Straddle"},
		{Sign: "leo", WeekStart: "2025-08-04", WeekEnd: "2025-08-10", Category: "love", Forecast: "August"},
		{Sign: "leo", WeekStart: "2025-07-07", WeekEnd: "2025-07-13", Category: "love", Forecast: "July"},
	})
	ctx := context.Background()

	t.Run("hint matches a week ending in the month", func(t *testing.T) {
		sel, err := repo.Weekly(ctx, forecast.WeeklyRequest{Sign: "leo", Month: "2025-08"}.Normalize())
		require.NoError(t, err)
		assert.Equal(t, "2025-07-28", sel.WeekStart)
		assert.Equal(t, "2025-08-03", sel.WeekEnd)
	})

	t.Run("lone week_end supplies the hint", func(t *testing.T) {
		sel, err := repo.Weekly(ctx, forecast.WeeklyRequest{Sign: "leo", WeekEnd: "2025-07-13"}.Normalize())
		require.NoError(t, err)
		assert.Equal(t, "2025-07-07", sel.WeekStart)
		require.Len(t, sel.Records, 1)
		assert.Equal(t, "July", sel.Records[0].Forecast)
	})

	t.Run("unmatched hint is empty", func(t *testing.T) {
		sel, err := repo.Weekly(ctx, forecast.WeeklyRequest{Sign: "leo", Month: "2026-01"}.Normalize())
		require.NoError(t, err)
		assert.Equal(t, "", sel.WeekStart)
		assert.Equal(t, "", sel.WeekEnd)
		assert.Empty(t, sel.Records)
	})

	t.Run("no hint takes the earliest week", func(t *testing.T) {
		sel, err := repo.Weekly(ctx, forecast.WeeklyRequest{Sign: "leo"}.Normalize())
		require.NoError(t, err)
		assert.Equal(t, "2025-07-07", sel.WeekStart)
	})
}

func TestAvailability(t *testing.T) {
	repo := newSeededRepository(t, sqliteConfig(t), append(forecasttest.Fixture(),
		forecast.Record{Sign: "Leo", WeekStart: "2025-08-29", WeekEnd: "2025-09-04", Category: "love", Forecast: "Crossing"},
	))

	avail, err := repo.Availability(context.Background())
	require.NoError(t, err)

	assert.Equal(t, forecast.Availability{
		"leo": {
			Daily:   []string{"2025-08"},
			Weekly:  []string{"2025-08", "2025-09"},
			Monthly: []string{"2025-06", "2025-07", "2025-08"},
		},
		"virgo": {
			Daily:   []string{"2025-08"},
			Weekly:  []string{},
			Monthly: []string{},
		},
	}, avail)
}

func TestAvailabilityEmptyStore(t *testing.T) {
	repo := newSeededRepository(t, sqliteConfig(t), nil)

	avail, err := repo.Availability(context.Background())
	require.NoError(t, err)
	assert.Empty(t, avail)
}

func TestQueryErrorsAreWrapped(t *testing.T) {
	db := openMigrated(t, sqliteConfig(t))
	require.NoError(t, db.Close())
	repo := NewForecastRepository(db)

	_, err := repo.Monthly(context.Background(), forecast.MonthlyRequest{Sign: "leo"}.Normalize())
	require.Error(t, err)

	var dbErr *DBError
	require.True(t, errors.As(err, &dbErr))
	assert.Equal(t, "monthly latest month", dbErr.Operation)
}

func TestDescribe(t *testing.T) {
	repo := NewForecastRepository(openMigrated(t, sqliteConfig(t)))
	assert.Equal(t, map[string]any{"backend": "db", "driver": "sqlite"}, repo.Describe())
}

func TestCheck(t *testing.T) {
	db := openMigrated(t, sqliteConfig(t))
	repo := NewForecastRepository(db)

	fields, err := repo.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"db_ok": true}, fields)

	require.NoError(t, db.Close())
	fields, err = repo.Check(context.Background())
	var dbErr *DBError
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, "ping", dbErr.Operation)
	assert.Equal(t, map[string]any{"db_ok": false}, fields)
}
