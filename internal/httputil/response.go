package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/banshee-data/trajectory.report/internal/monitoring"
	"github.com/banshee-data/trajectory.report/internal/trajectory"
)

// StatusFor maps an error to an HTTP status. Invalid input and unsupported
// measures are 400, errors matching one of notFound are 404, anything else
// is 500.
func StatusFor(err error, notFound ...error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, trajectory.ErrInvalidInput), errors.Is(err, trajectory.ErrUnsupportedMeasure):
		return http.StatusBadRequest
	}
	for _, nf := range notFound {
		if errors.Is(err, nf) {
			return http.StatusNotFound
		}
	}
	return http.StatusInternalServerError
}

// WriteError writes err as a JSON error with the status from StatusFor.
// Server errors are logged.
func WriteError(w http.ResponseWriter, err error, notFound ...error) {
	status := StatusFor(err, notFound...)
	if status >= http.StatusInternalServerError {
		monitoring.Logf("internal error: %v", err)
	}
	WriteJSONError(w, status, err.Error())
}

// WriteJSONError writes a JSON error response with the given status code and message.
func WriteJSONError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		monitoring.Logf("failed to encode json response: %v", err)
	}
}

// WriteJSONOK writes a successful JSON response (200 OK).
func WriteJSONOK(w http.ResponseWriter, data interface{}) {
	WriteJSON(w, http.StatusOK, data)
}

// WriteBytes writes a successful response with an explicit content type.
func WriteBytes(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		monitoring.Logf("failed to write response: %v", err)
	}
}

// BadRequest writes a 400 Bad Request response with the given message.
func BadRequest(w http.ResponseWriter, msg string) {
	WriteJSONError(w, http.StatusBadRequest, msg)
}
