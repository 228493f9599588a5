package api

import (
	"errors"
	"net/http"

	"horoscope-api/forecast"
)

const forecastLoadFailed = "failed to load forecast"

// handleDaily returns the daily envelope for ?sign=&date=&category=
func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := s.service.Daily(r.Context(), forecast.DailyRequest{
		Sign:     q.Get("sign"),
		Date:     q.Get("date"),
		Category: q.Get("category"),
	})
	if err != nil {
		s.respondWithError(w, r, http.StatusInternalServerError, forecastLoadFailed, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleWeekly returns the weekly envelope for ?sign=&week_start=&week_end=&month=&category=
func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := s.service.Weekly(r.Context(), forecast.WeeklyRequest{
		Sign:      q.Get("sign"),
		WeekStart: q.Get("week_start"),
		WeekEnd:   q.Get("week_end"),
		Month:     q.Get("month"),
		Category:  q.Get("category"),
	})
	if err != nil {
		s.respondWithError(w, r, http.StatusInternalServerError, forecastLoadFailed, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleMonthly returns the monthly envelope for ?sign=&month=&category=
func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := s.service.Monthly(r.Context(), forecast.MonthlyRequest{
		Sign:     q.Get("sign"),
		Month:    q.Get("month"),
		Category: q.Get("category"),
	})
	if err != nil {
		s.respondWithError(w, r, http.StatusInternalServerError, forecastLoadFailed, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleAvailability lists months with data per sign. Only the database
// backend can enumerate its content.
func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	avail, err := s.service.Availability(r.Context())
	if errors.Is(err, forecast.ErrUnsupported) {
		s.respondWithError(w, r, http.StatusNotFound, "availability requires the db backend", nil)
		return
	}
	if err != nil {
		s.respondWithError(w, r, http.StatusInternalServerError, "failed to load availability", err)
		return
	}
	writeJSON(w, http.StatusOK, avail)
}
