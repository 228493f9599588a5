package forecast

import (
	"strings"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

// Accepted ISO-8601 shapes for date-bearing query values.
var dateLayouts = []string{
	dateLayout,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// NormalizeSign trims and lowercases a sign, defaulting to DefaultSign.
func NormalizeSign(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultSign
	}
	return s
}

// NormalizeCategory trims and lowercases a category. Empty means no filter.
func NormalizeCategory(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// YearMonth parses an ISO-8601 date and returns its YYYY-MM key.
// Unparseable input yields "" so callers fall back to their defaults.
func YearMonth(date string) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Format(monthLayout)
		}
	}
	return ""
}

// MonthHint accepts either a YYYY-MM value or a full date and returns the
// YYYY-MM key, or "" when neither parses.
func MonthHint(s string) string {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(monthLayout, s); err == nil {
		return t.Format(monthLayout)
	}
	return YearMonth(s)
}

// DailyRequest carries raw daily query parameters.
type DailyRequest struct {
	Sign     string
	Date     string
	Category string
}

// WeeklyRequest carries raw weekly query parameters.
type WeeklyRequest struct {
	Sign      string
	WeekStart string
	WeekEnd   string
	Month     string
	Category  string
}

// MonthlyRequest carries raw monthly query parameters.
type MonthlyRequest struct {
	Sign     string
	Month    string
	Category string
}

// Normalize converts the raw request into a DailyQuery.
func (r DailyRequest) Normalize() DailyQuery {
	date := strings.TrimSpace(r.Date)
	return DailyQuery{
		Sign:     NormalizeSign(r.Sign),
		Date:     date,
		Hint:     YearMonth(date),
		Category: NormalizeCategory(r.Category),
	}
}

// Normalize converts the raw request into a WeeklyQuery. The month hint comes
// from month, then week_start, then week_end.
func (r WeeklyRequest) Normalize() WeeklyQuery {
	ws := strings.TrimSpace(r.WeekStart)
	we := strings.TrimSpace(r.WeekEnd)

	hint := MonthHint(r.Month)
	if hint == "" {
		hint = YearMonth(ws)
	}
	if hint == "" {
		hint = YearMonth(we)
	}

	return WeeklyQuery{
		Sign:      NormalizeSign(r.Sign),
		WeekStart: ws,
		WeekEnd:   we,
		Hint:      hint,
		Category:  NormalizeCategory(r.Category),
	}
}

// Normalize converts the raw request into a MonthlyQuery.
func (r MonthlyRequest) Normalize() MonthlyQuery {
	return MonthlyQuery{
		Sign:     NormalizeSign(r.Sign),
		Month:    strings.TrimSpace(r.Month),
		Category: NormalizeCategory(r.Category),
	}
}
