// Package forecast defines the horoscope forecast domain shared by every backend.
//
// This package includes:
//   - Forecast records and the period shapes they are keyed by
//   - The Store contract implemented by the CSV and database backends
//   - Request normalization and response assembly (Service)
//
// Backends only resolve and filter records. Normalizing query input and
// projecting the surviving records into the public envelope happens here so
// both backends answer with identical JSON.
package forecast

import (
	"context"
	"errors"
)

// Period is the granularity of a forecast.
type Period string

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

// DefaultSign is used when a request carries no sign.
const DefaultSign = "aries"

// DefaultStars is the rating reported by the database backend when a row has none.
const DefaultStars = 3

// ErrUnsupported is returned when a backend cannot serve an operation.
var ErrUnsupported = errors.New("operation not supported by this backend")

// Record is a single forecast row. Exactly one period key shape is populated:
// Date (daily), WeekStart+WeekEnd (weekly) or Month (monthly).
type Record struct {
	Sign      string `json:"sign"`
	Date      string `json:"date,omitempty"`
	WeekStart string `json:"week_start,omitempty"`
	WeekEnd   string `json:"week_end,omitempty"`
	Month     string `json:"month,omitempty"`
	Category  string `json:"category"`
	Forecast  string `json:"forecast"`
	Stars     *int   `json:"stars,omitempty"`
}

// DailyQuery is a normalized daily lookup.
type DailyQuery struct {
	Sign     string
	Date     string // explicit date, empty when not requested
	Hint     string // YYYY-MM derived from Date, empty when Date does not parse
	Category string
}

// WeeklyQuery is a normalized weekly lookup. The week pair is only treated as
// explicit when both WeekStart and WeekEnd are set.
type WeeklyQuery struct {
	Sign      string
	WeekStart string
	WeekEnd   string
	Hint      string
	Category  string
}

// HasWeek reports whether an explicit week pair was requested.
func (q WeeklyQuery) HasWeek() bool {
	return q.WeekStart != "" && q.WeekEnd != ""
}

// MonthlyQuery is a normalized monthly lookup.
type MonthlyQuery struct {
	Sign     string
	Month    string
	Category string
}

// Selection is what a Store resolved for a query: the period values it settled
// on and the surviving records in source order.
type Selection struct {
	Date      string   `json:"date,omitempty"`
	WeekStart string   `json:"week_start,omitempty"`
	WeekEnd   string   `json:"week_end,omitempty"`
	Month     string   `json:"month,omitempty"`
	Records   []Record `json:"records"`
}

// Store resolves and filters forecast records for one backend.
// Missing data is an empty Selection, never an error; errors mean the
// underlying store could not be read.
type Store interface {
	Daily(ctx context.Context, q DailyQuery) (Selection, error)
	Weekly(ctx context.Context, q WeeklyQuery) (Selection, error)
	Monthly(ctx context.Context, q MonthlyQuery) (Selection, error)
}

// Describer is implemented by stores that report backend details on /health.
type Describer interface {
	Describe() map[string]any
}

// Checker is implemented by stores whose dependencies can be probed for
// /health. The returned fields are merged into the health body; an error
// marks the service unhealthy.
type Checker interface {
	Check(ctx context.Context) (map[string]any, error)
}

// PeriodMonths lists the months that hold data for each period of one sign.
type PeriodMonths struct {
	Daily   []string `json:"daily"`
	Weekly  []string `json:"weekly"`
	Monthly []string `json:"monthly"`
}

// Availability maps a sign to the months that hold data for it.
type Availability map[string]PeriodMonths

// AvailabilityStore is implemented by backends that can enumerate their data.
type AvailabilityStore interface {
	Availability(ctx context.Context) (Availability, error)
}
