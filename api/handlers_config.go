package api

import (
	"context"
	"maps"
	"net/http"
	"time"

	"go.uber.org/zap"

	"horoscope-api/forecast"
)

const healthCheckTimeout = 2 * time.Second

// handleHealth returns the health status of the API along with backend details.
// Stores that can probe their dependencies answer 503 when a probe fails.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{}
	store := s.service.Store()
	if d, ok := store.(forecast.Describer); ok {
		maps.Copy(resp, d.Describe())
	}

	status := http.StatusOK
	resp["ok"] = true
	if ch, ok := store.(forecast.Checker); ok {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		fields, err := ch.Check(ctx)
		maps.Copy(resp, fields)
		if err != nil {
			s.logger.Error("health check failed",
				zap.String("request_id", RequestID(r.Context())),
				zap.Error(err))
			status = http.StatusServiceUnavailable
			resp["ok"] = false
		}
	}
	writeJSON(w, status, resp)
}
