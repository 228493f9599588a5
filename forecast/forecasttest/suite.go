// Package forecasttest holds the contract suite every forecast.Store must pass.
package forecasttest

import (
	"context"
	"encoding/json"
	"testing"

	"horoscope-api/forecast"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory builds a store seeded with records. Backends that split data into
// monthly source units must make later months the most recently written.
type Factory func(t *testing.T, records []forecast.Record) forecast.Store

func stars(v int) *int { return &v }

// Fixture is the data set the suite seeds into every backend.
func Fixture() []forecast.Record {
	return []forecast.Record{
		{Sign: "leo", Date: "2025-08-02", Category: "love", Forecast: "Venus smiles on you.", Stars: stars(4)},
		{Sign: "leo", Date: "2025-08-02", Category: "career", Forecast: "Ask for the raise.", Stars: stars(5)},
		{Sign: "leo", Date: "2025-08-05", Category: "love", Forecast: "Mercury stirs old flames.", Stars: stars(2)},
		{Sign: "leo", Date: "2025-08-05", Category: "career", Forecast: "Keep your head down.", Stars: stars(3)},

		{Sign: "leo", WeekStart: "2025-08-01", WeekEnd: "2025-08-07", Category: "love", Forecast: "A slow week for romance.", Stars: stars(3)},
		{Sign: "leo", WeekStart: "2025-08-01", WeekEnd: "2025-08-07", Category: "career", Forecast: "Deadlines bunch up.", Stars: stars(2)},
		{Sign: "leo", WeekStart: "2025-08-08", WeekEnd: "2025-08-14", Category: "love", Forecast: "Sparks by Friday.", Stars: stars(5)},

		{Sign: "leo", Month: "2025-06", Category: "love", Forecast: "June is tender.", Stars: stars(4)},
		{Sign: "leo", Month: "2025-07", Category: "love", Forecast: "July is restless.", Stars: stars(2)},
		{Sign: "leo", Month: "2025-08", Category: "love", Forecast: "August is yours.", Stars: stars(5)},
		{Sign: "leo", Month: "2025-08", Category: "career", Forecast: "Plant seeds now.", Stars: stars(4)},

		{Sign: "virgo", Date: "2025-08-02", Category: "love", Forecast: "Tidy heart, tidy home.", Stars: stars(3)},
	}
}

// Run executes the contract suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()
	svc := forecast.NewService(newStore(t, Fixture()))

	t.Run("unknown sign yields empty items", func(t *testing.T) {
		daily, err := svc.Daily(ctx, forecast.DailyRequest{Sign: "ophiuchus", Date: "2025-08-02"})
		require.NoError(t, err)
		assert.Empty(t, daily.Items)
		assert.NotNil(t, daily.Items)

		weekly, err := svc.Weekly(ctx, forecast.WeeklyRequest{Sign: "ophiuchus"})
		require.NoError(t, err)
		assert.Empty(t, weekly.Items)
		assert.NotNil(t, weekly.Items)

		monthly, err := svc.Monthly(ctx, forecast.MonthlyRequest{Sign: "ophiuchus"})
		require.NoError(t, err)
		assert.Empty(t, monthly.Items)
		assert.NotNil(t, monthly.Items)
	})

	t.Run("daily explicit date", func(t *testing.T) {
		resp, err := svc.Daily(ctx, forecast.DailyRequest{Sign: "Leo", Date: "2025-08-05"})
		require.NoError(t, err)
		assert.Equal(t, "leo", resp.Sign)
		assert.Equal(t, "2025-08-05", resp.Date)
		assert.ElementsMatch(t, []forecast.Item{
			{Category: "love", Forecast: "Mercury stirs old flames.", Stars: stars(2)},
			{Category: "career", Forecast: "Keep your head down.", Stars: stars(3)},
		}, resp.Items)
	})

	t.Run("category filter is case-insensitive", func(t *testing.T) {
		upper, err := svc.Daily(ctx, forecast.DailyRequest{Sign: "leo", Date: "2025-08-02", Category: "Love"})
		require.NoError(t, err)
		lower, err := svc.Daily(ctx, forecast.DailyRequest{Sign: "leo", Date: "2025-08-02", Category: "love"})
		require.NoError(t, err)

		assert.Equal(t, lower, upper)
		require.Len(t, lower.Items, 1)
		assert.Equal(t, "Venus smiles on you.", lower.Items[0].Forecast)
	})

	t.Run("sign filter excludes other signs", func(t *testing.T) {
		resp, err := svc.Daily(ctx, forecast.DailyRequest{Sign: "VIRGO", Date: "2025-08-02"})
		require.NoError(t, err)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "Tidy heart, tidy home.", resp.Items[0].Forecast)
	})

	t.Run("weekly defaults to the earliest week", func(t *testing.T) {
		resp, err := svc.Weekly(ctx, forecast.WeeklyRequest{Sign: "leo"})
		require.NoError(t, err)
		assert.Equal(t, "2025-08-01", resp.WeekStart)
		assert.Equal(t, "2025-08-07", resp.WeekEnd)
		assert.Len(t, resp.Items, 2)
	})

	t.Run("weekly month hint picks the first overlapping week", func(t *testing.T) {
		resp, err := svc.Weekly(ctx, forecast.WeeklyRequest{Sign: "leo", Month: "2025-08"})
		require.NoError(t, err)
		assert.Equal(t, "2025-08-01", resp.WeekStart)
		assert.Equal(t, "2025-08-07", resp.WeekEnd)
	})

	t.Run("weekly explicit pair", func(t *testing.T) {
		resp, err := svc.Weekly(ctx, forecast.WeeklyRequest{Sign: "leo", WeekStart: "2025-08-08", WeekEnd: "2025-08-14"})
		require.NoError(t, err)
		assert.Equal(t, "2025-08-08", resp.WeekStart)
		assert.Equal(t, "2025-08-14", resp.WeekEnd)
		assert.Equal(t, []forecast.Item{{Category: "love", Forecast: "Sparks by Friday.", Stars: stars(5)}}, resp.Items)
	})

	t.Run("monthly defaults to the newest month", func(t *testing.T) {
		resp, err := svc.Monthly(ctx, forecast.MonthlyRequest{Sign: "leo"})
		require.NoError(t, err)
		assert.Equal(t, "2025-08", resp.Month)
		assert.Len(t, resp.Items, 2)
	})

	t.Run("monthly explicit month", func(t *testing.T) {
		resp, err := svc.Monthly(ctx, forecast.MonthlyRequest{Sign: "leo", Month: "2025-06", Category: "LOVE"})
		require.NoError(t, err)
		assert.Equal(t, "2025-06", resp.Month)
		assert.Equal(t, []forecast.Item{{Category: "love", Forecast: "June is tender.", Stars: stars(4)}}, resp.Items)
	})

	t.Run("repeated queries are byte-identical", func(t *testing.T) {
		req := forecast.WeeklyRequest{Sign: "leo", Month: "2025-08"}
		first, err := svc.Weekly(ctx, req)
		require.NoError(t, err)
		second, err := svc.Weekly(ctx, req)
		require.NoError(t, err)

		a, err := json.Marshal(first)
		require.NoError(t, err)
		b, err := json.Marshal(second)
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b))
	})
}
