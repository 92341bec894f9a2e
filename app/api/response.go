package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/littlelemon/ordering-api/models"
	"github.com/rs/zerolog"
)

// OKResponse writes v as a JSON body with the given status.
func OKResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ErrorResponse writes {"error": message}.
func ErrorResponse(w http.ResponseWriter, status int, message string) {
	OKResponse(w, status, map[string]string{"error": message})
}

// Detail writes {"detail": message}.
func Detail(w http.ResponseWriter, status int, message string) {
	OKResponse(w, status, map[string]string{"detail": message})
}

// StatusFor maps an error kind to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrThrottled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// WriteError reports a domain error with its own message. Unclassified
// errors are logged and answered with fallback instead.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("url", r.URL.Path).Msg(fallback)
		ErrorResponse(w, status, fallback)
		return
	}
	ErrorResponse(w, status, err.Error())
}

// DecodeJSON decodes the request body into v.
func DecodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return models.Validation("Invalid JSON body")
	}
	return nil
}
