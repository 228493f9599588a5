package filestore

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"horoscope-api/forecast"
)

var baseTime = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

// writeFile writes raw content and pins its mtime.
func writeFile(t *testing.T, dir, name, content string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func periodOf(r forecast.Record) forecast.Period {
	switch {
	case r.Date != "":
		return forecast.Daily
	case r.WeekStart != "":
		return forecast.Weekly
	default:
		return forecast.Monthly
	}
}

func monthKey(r forecast.Record) string {
	switch periodOf(r) {
	case forecast.Daily:
		return r.Date[:7]
	case forecast.Weekly:
		return r.WeekStart[:7]
	default:
		return r.Month
	}
}

// seedDir writes records as <sign>_<yyyy-mm>_<period>_v1.csv files. Files for
// later months get later mtimes.
func seedDir(t *testing.T, dir string, records []forecast.Record) {
	t.Helper()

	type unit struct {
		sign   string
		month  string
		period forecast.Period
	}
	grouped := make(map[unit][]forecast.Record)
	var units []unit
	for _, r := range records {
		u := unit{sign: r.Sign, month: monthKey(r), period: periodOf(r)}
		if _, ok := grouped[u]; !ok {
			units = append(units, u)
		}
		grouped[u] = append(grouped[u], r)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].month < units[j].month })

	for i, u := range units {
		name := fmt.Sprintf("%s_%s_%s_v1.csv", u.sign, u.month, u.period)
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		require.NoError(t, err)

		w := csv.NewWriter(f)
		switch u.period {
		case forecast.Daily:
			require.NoError(t, w.Write([]string{"date", "sign", "category", "forecast", "stars"}))
		case forecast.Weekly:
			require.NoError(t, w.Write([]string{"week_start", "week_end", "sign", "category", "forecast", "stars"}))
		case forecast.Monthly:
			require.NoError(t, w.Write([]string{"month", "sign", "category", "forecast", "stars"}))
		}
		for _, r := range grouped[u] {
			stars := ""
			if r.Stars != nil {
				stars = strconv.Itoa(*r.Stars)
			}
			var row []string
			switch u.period {
			case forecast.Daily:
				row = []string{r.Date, r.Sign, r.Category, r.Forecast, stars}
			case forecast.Weekly:
				row = []string{r.WeekStart, r.WeekEnd, r.Sign, r.Category, r.Forecast, stars}
			case forecast.Monthly:
				row = []string{r.Month, r.Sign, r.Category, r.Forecast, stars}
			}
			require.NoError(t, w.Write(row))
		}
		w.Flush()
		require.NoError(t, w.Error())
		require.NoError(t, f.Close())

		mtime := baseTime.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(path, mtime, mtime))
	}
}

func fixedClock(day string) func() time.Time {
	return func() time.Time {
		t, _ := time.Parse(time.DateOnly, day)
		return t
	}
}
