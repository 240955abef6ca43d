package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"vitasurvey/internal/service"
	"vitasurvey/internal/survey"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// statusFor maps service and engine errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, survey.ErrSubmissionFailed):
		return http.StatusBadGateway
	case errors.Is(err, service.ErrCatalogChanged),
		errors.Is(err, survey.ErrSubmitting),
		errors.Is(err, survey.ErrComplete),
		errors.Is(err, survey.ErrNotStarted):
		return http.StatusConflict
	case errors.Is(err, survey.ErrIncomplete),
		errors.Is(err, survey.ErrNothingToSubmit):
		return http.StatusUnprocessableEntity
	case errors.Is(err, survey.ErrUnknownQuestion),
		errors.Is(err, survey.ErrNotMultipleChoice):
		return http.StatusBadRequest
	case errors.Is(err, survey.ErrEmptyTree):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeError(w, status, msg)
}
