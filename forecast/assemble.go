package forecast

import (
	"context"
	"fmt"
)

// Item is the public projection of a Record.
type Item struct {
	Category string `json:"category"`
	Forecast string `json:"forecast"`
	Stars    *int   `json:"stars,omitempty"`
}

// DailyResponse is the daily envelope.
type DailyResponse struct {
	Period Period `json:"period"`
	Sign   string `json:"sign"`
	Date   string `json:"date"`
	Items  []Item `json:"items"`
}

// WeeklyResponse is the weekly envelope.
type WeeklyResponse struct {
	Period    Period `json:"period"`
	Sign      string `json:"sign"`
	WeekStart string `json:"week_start"`
	WeekEnd   string `json:"week_end"`
	Items     []Item `json:"items"`
}

// MonthlyResponse is the monthly envelope.
type MonthlyResponse struct {
	Period Period `json:"period"`
	Sign   string `json:"sign"`
	Month  string `json:"month"`
	Items  []Item `json:"items"`
}

// Service runs the normalize → resolve/filter → assemble pipeline on top of a Store.
type Service struct {
	store        Store
	availability AvailabilityStore
}

// Option configures a Service.
type Option func(*Service)

// WithAvailability enables the availability listing.
func WithAvailability(a AvailabilityStore) Option {
	return func(s *Service) {
		s.availability = a
	}
}

// NewService creates a new forecast service
func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the backing store.
func (s *Service) Store() Store {
	return s.store
}

// HasAvailability reports whether the availability listing can be served.
func (s *Service) HasAvailability() bool {
	return s.availability != nil
}

// Daily answers a daily forecast request.
func (s *Service) Daily(ctx context.Context, req DailyRequest) (*DailyResponse, error) {
	q := req.Normalize()
	sel, err := s.store.Daily(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("daily forecast for %s: %w", q.Sign, err)
	}
	return &DailyResponse{
		Period: Daily,
		Sign:   q.Sign,
		Date:   sel.Date,
		Items:  Project(sel.Records),
	}, nil
}

// Weekly answers a weekly forecast request.
func (s *Service) Weekly(ctx context.Context, req WeeklyRequest) (*WeeklyResponse, error) {
	q := req.Normalize()
	sel, err := s.store.Weekly(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("weekly forecast for %s: %w", q.Sign, err)
	}
	return &WeeklyResponse{
		Period:    Weekly,
		Sign:      q.Sign,
		WeekStart: sel.WeekStart,
		WeekEnd:   sel.WeekEnd,
		Items:     Project(sel.Records),
	}, nil
}

// Monthly answers a monthly forecast request.
func (s *Service) Monthly(ctx context.Context, req MonthlyRequest) (*MonthlyResponse, error) {
	q := req.Normalize()
	sel, err := s.store.Monthly(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("monthly forecast for %s: %w", q.Sign, err)
	}
	return &MonthlyResponse{
		Period: Monthly,
		Sign:   q.Sign,
		Month:  sel.Month,
		Items:  Project(sel.Records),
	}, nil
}

// Availability lists the months holding data per sign and period.
func (s *Service) Availability(ctx context.Context) (Availability, error) {
	if s.availability == nil {
		return nil, ErrUnsupported
	}
	return s.availability.Availability(ctx)
}

// Project maps records to public items, preserving order. The result is never
// nil so empty selections encode as [].
func Project(records []Record) []Item {
	items := make([]Item, 0, len(records))
	for _, r := range records {
		items = append(items, Item{
			Category: r.Category,
			Forecast: r.Forecast,
			Stars:    r.Stars,
		})
	}
	return items
}
