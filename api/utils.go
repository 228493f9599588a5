package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// respondWithError logs the error and sends a JSON error response
// Use this to avoid exposing internal errors while still logging them
func (s *Server) respondWithError(w http.ResponseWriter, r *http.Request, code int, message string, err error) {
	fields := []zap.Field{
		zap.Int("status", code),
		zap.String("path", r.URL.Path),
		zap.String("request_id", RequestID(r.Context())),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if code >= http.StatusInternalServerError {
		s.logger.Error(message, fields...)
	} else {
		s.logger.Warn(message, fields...)
	}
	writeJSON(w, code, errorResponse{Error: message})
}
