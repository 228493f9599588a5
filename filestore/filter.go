package filestore

import (
	"slices"
	"strings"

	"horoscope-api/forecast"
)

func bySign(records []forecast.Record, sign string) []forecast.Record {
	return keep(records, func(r forecast.Record) bool {
		return strings.EqualFold(r.Sign, sign)
	})
}

func byCategory(records []forecast.Record, category string) []forecast.Record {
	if category == "" {
		return records
	}
	return keep(records, func(r forecast.Record) bool {
		return strings.EqualFold(r.Category, category)
	})
}

func keep(records []forecast.Record, match func(forecast.Record) bool) []forecast.Record {
	out := make([]forecast.Record, 0, len(records))
	for _, r := range records {
		if match(r) {
			out = append(out, r)
		}
	}
	return out
}

// sortedValues returns the distinct non-empty values of field, ascending.
func sortedValues(records []forecast.Record, field func(forecast.Record) string) []string {
	var values []string
	for _, r := range records {
		if v := field(r); v != "" {
			values = append(values, v)
		}
	}
	slices.Sort(values)
	return slices.Compact(values)
}

func dateOf(r forecast.Record) string  { return r.Date }
func monthOf(r forecast.Record) string { return r.Month }

// selectDaily picks the date to answer with. A requested date missing from
// the file falls back to the earliest date present; with no request, today is
// preferred and the latest date present is the fallback.
func selectDaily(records []forecast.Record, requested, today string) (string, []forecast.Record) {
	dates := sortedValues(records, dateOf)
	if len(dates) == 0 {
		return requested, nil
	}

	var date string
	switch {
	case requested != "" && slices.Contains(dates, requested):
		date = requested
	case requested != "":
		date = dates[0]
	case slices.Contains(dates, today):
		date = today
	default:
		date = dates[len(dates)-1]
	}

	return date, keep(records, func(r forecast.Record) bool { return r.Date == date })
}

type week struct {
	start, end string
}

func (w week) overlaps(month string) bool {
	return strings.HasPrefix(w.start, month+"-") || strings.HasPrefix(w.end, month+"-")
}

// selectWeekly answers an explicit week pair exactly. Otherwise it picks the
// earliest week (by start, then end), preferring weeks overlapping hint.
func selectWeekly(records []forecast.Record, q forecast.WeeklyQuery) (week, []forecast.Record) {
	if q.HasWeek() {
		w := week{start: q.WeekStart, end: q.WeekEnd}
		return w, keep(records, func(r forecast.Record) bool {
			return r.WeekStart == w.start && r.WeekEnd == w.end
		})
	}

	var weeks []week
	for _, r := range records {
		if r.WeekStart != "" && r.WeekEnd != "" {
			weeks = append(weeks, week{start: r.WeekStart, end: r.WeekEnd})
		}
	}
	if len(weeks) == 0 {
		return week{start: q.WeekStart, end: q.WeekEnd}, nil
	}
	slices.SortStableFunc(weeks, func(a, b week) int {
		if c := strings.Compare(a.start, b.start); c != 0 {
			return c
		}
		return strings.Compare(a.end, b.end)
	})

	chosen := weeks[0]
	if q.Hint != "" {
		if i := slices.IndexFunc(weeks, func(w week) bool { return w.overlaps(q.Hint) }); i >= 0 {
			chosen = weeks[i]
		}
	}

	return chosen, keep(records, func(r forecast.Record) bool {
		return r.WeekStart == chosen.start && r.WeekEnd == chosen.end
	})
}

// selectMonthly answers an explicit month exactly, else the newest month present.
func selectMonthly(records []forecast.Record, requested string) (string, []forecast.Record) {
	month := requested
	if month == "" {
		months := sortedValues(records, monthOf)
		if len(months) == 0 {
			return "", nil
		}
		month = months[len(months)-1]
	}
	return month, keep(records, func(r forecast.Record) bool { return r.Month == month })
}
