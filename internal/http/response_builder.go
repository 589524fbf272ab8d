package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"cassa/internal/core"
	"cassa/internal/log"
	"cassa/internal/report"
	"cassa/internal/store"
)

// requestError is a malformed request: bad JSON, a missing field or an
// unparsable query parameter.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(msg string) error { return &requestError{msg: msg} }

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// errorStatus maps service errors onto HTTP status codes.
func errorStatus(err error) int {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr), core.IsValidation(err), errors.Is(err, report.ErrInvalidPeriod):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with {"error": ...}. Internal errors are logged and
// hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	msg := err.Error()
	logger := log.FromContext(r.Context())
	switch status {
	case http.StatusInternalServerError:
		logger.ErrorContext(r.Context(), "Request failed",
			log.NewFields().WithError(err).WithErrorType(log.ErrorTypeInternal).ToSlice()...)
		msg = "internal error"
	case http.StatusNotFound:
		logger.DebugContext(r.Context(), "Resource not found", log.FieldError, msg)
		msg = "not found"
	default:
		logger.DebugContext(r.Context(), "Rejected request",
			log.NewFields().WithError(err).WithErrorType(log.ErrorTypeValidation).ToSlice()...)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
