// Package filestore serves forecasts from a directory of CSV files.
//
// Each request discovers one file by naming convention, loads it through the
// mtime-keyed LoadCache, maps it to records and narrows them to the query.
package filestore

import (
	"context"
	"time"

	"go.uber.org/zap"

	"horoscope-api/forecast"
)

// Store is the CSV-backed forecast.Store.
type Store struct {
	dir    string
	cache  *LoadCache
	now    func() time.Time
	logger *zap.Logger
}

var (
	_ forecast.Store     = (*Store)(nil)
	_ forecast.Describer = (*Store)(nil)
)

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used to resolve "today" for daily requests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the store logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a store over dir. A nil cache gets a private one.
func New(dir string, cache *LoadCache, opts ...Option) *Store {
	if cache == nil {
		cache = NewLoadCache()
	}
	s := &Store{
		dir:    dir,
		cache:  cache,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// load discovers and parses the source for a query, narrowed to sign.
func (s *Store) load(period forecast.Period, sign, hint string) ([]forecast.Record, error) {
	path, err := Discover(s.dir, period, sign, hint)
	if err != nil {
		return nil, err
	}
	if path == "" {
		s.logger.Debug("no source file",
			zap.String("period", string(period)),
			zap.String("sign", sign),
			zap.String("hint", hint))
		return nil, nil
	}

	t, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	return bySign(Records(t, period), sign), nil
}

// Daily implements forecast.Store.
func (s *Store) Daily(_ context.Context, q forecast.DailyQuery) (forecast.Selection, error) {
	records, err := s.load(forecast.Daily, q.Sign, q.Hint)
	if err != nil {
		return forecast.Selection{}, err
	}

	today := s.now().Format(time.DateOnly)
	date, rows := selectDaily(records, q.Date, today)
	return forecast.Selection{
		Date:    date,
		Records: byCategory(rows, q.Category),
	}, nil
}

// Weekly implements forecast.Store.
func (s *Store) Weekly(_ context.Context, q forecast.WeeklyQuery) (forecast.Selection, error) {
	records, err := s.load(forecast.Weekly, q.Sign, q.Hint)
	if err != nil {
		return forecast.Selection{}, err
	}

	w, rows := selectWeekly(records, q)
	return forecast.Selection{
		WeekStart: w.start,
		WeekEnd:   w.end,
		Records:   byCategory(rows, q.Category),
	}, nil
}

// Monthly implements forecast.Store.
func (s *Store) Monthly(_ context.Context, q forecast.MonthlyQuery) (forecast.Selection, error) {
	records, err := s.load(forecast.Monthly, q.Sign, forecast.MonthHint(q.Month))
	if err != nil {
		return forecast.Selection{}, err
	}

	month, rows := selectMonthly(records, q.Month)
	if month == "" {
		month = q.Month
	}
	return forecast.Selection{
		Month:   month,
		Records: byCategory(rows, q.Category),
	}, nil
}

// Describe reports backend details for health checks.
func (s *Store) Describe() map[string]any {
	return map[string]any{
		"backend":  "csv",
		"data_dir": s.dir,
		"cache":    s.cache.Stats(),
	}
}
