package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/desertthunder/foodgram/internal/shared"
	"github.com/goccy/go-json"
)

const maxBodyBytes = 8 << 20

type errorDetail struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status code and the API error envelope.
//
// Unexpected errors are logged and answered with a generic 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := classify(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorBody{Error: detail})
}

func classify(err error) (int, errorDetail) {
	if ve, ok := shared.AsValidationError(err); ok {
		return http.StatusBadRequest, errorDetail{Code: "VALIDATION_ERROR", Field: ve.Field, Message: ve.Message}
	}

	switch {
	case errors.Is(err, shared.ErrValidation):
		return http.StatusBadRequest, errorDetail{Code: "VALIDATION_ERROR", Message: err.Error()}
	case errors.Is(err, shared.ErrInvalidInput), errors.Is(err, shared.ErrInvalidArgument):
		return http.StatusBadRequest, errorDetail{Code: "BAD_REQUEST", Message: err.Error()}
	case errors.Is(err, shared.ErrUnauthorized), errors.Is(err, shared.ErrInvalidToken):
		return http.StatusUnauthorized, errorDetail{Code: "UNAUTHORIZED", Message: err.Error()}
	case errors.Is(err, shared.ErrForbidden):
		return http.StatusForbidden, errorDetail{Code: "FORBIDDEN", Message: err.Error()}
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound, errorDetail{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, shared.ErrConflict):
		return http.StatusConflict, errorDetail{Code: "CONFLICT", Message: err.Error()}
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests, errorDetail{Code: "RATE_LIMITED", Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorDetail{Code: "INTERNAL_ERROR", Message: "internal server error"}
	}
}

// decodeBody reads a JSON request body into v, rejecting unknown fields and oversized bodies.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return shared.DecodeJSON(r.Body, v)
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, shared.NewValidationError(name, "must be a non-negative integer")
	}
	return n, nil
}

// queryFlag reports whether a boolean filter parameter is set ("1" or "true").
func queryFlag(r *http.Request, name string) bool {
	switch r.URL.Query().Get(name) {
	case "1", "true", "True":
		return true
	default:
		return false
	}
}
