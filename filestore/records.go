package filestore

import (
	"math"
	"strconv"
	"strings"

	"horoscope-api/forecast"
)

// Column names understood in data files.
const (
	colSign      = "sign"
	colDate      = "date"
	colWeekStart = "week_start"
	colWeekEnd   = "week_end"
	colMonth     = "month"
	colCategory  = "category"
	colForecast  = "forecast"
	colStars     = "stars"
)

func requiredColumns(period forecast.Period) []string {
	base := []string{colSign, colCategory, colForecast}
	switch period {
	case forecast.Daily:
		return append(base, colDate)
	case forecast.Weekly:
		return append(base, colWeekStart, colWeekEnd)
	case forecast.Monthly:
		return append(base, colMonth)
	default:
		return nil
	}
}

// Records maps a parsed table onto forecast records for period. A table
// lacking any column the period needs yields no records. The stars column is
// optional; blank or non-integral values leave Stars nil.
func Records(t *Table, period forecast.Period) []forecast.Record {
	if t == nil || len(t.Rows) == 0 {
		return nil
	}

	index := make(map[string]int, len(t.Header))
	for i, name := range t.Header {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	required := requiredColumns(period)
	if required == nil {
		return nil
	}
	for _, name := range required {
		if _, ok := index[name]; !ok {
			return nil
		}
	}

	cell := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := make([]forecast.Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		r := forecast.Record{
			Sign:     cell(row, colSign),
			Category: cell(row, colCategory),
			Forecast: cell(row, colForecast),
			Stars:    parseStars(cell(row, colStars)),
		}
		switch period {
		case forecast.Daily:
			r.Date = cell(row, colDate)
		case forecast.Weekly:
			r.WeekStart = cell(row, colWeekStart)
			r.WeekEnd = cell(row, colWeekEnd)
		case forecast.Monthly:
			r.Month = cell(row, colMonth)
		}
		records = append(records, r)
	}
	return records
}

// parseStars accepts "4" as well as "4.0", which spreadsheet exports produce
// for integer columns containing blanks.
func parseStars(s string) *int {
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil
	}
	n := int(f)
	return &n
}
