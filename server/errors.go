package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/c2fo/drivefm"
)

// errorResponse is the body of every failed API call.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// statusFor maps a gateway failure to the status of the API response.
func statusFor(err error) int {
	switch {
	case errors.Is(err, drivefm.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, drivefm.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, drivefm.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, drivefm.ErrThumbnailUnavailable):
		return http.StatusNotFound
	}

	switch drivefm.StatusCode(err) {
	case http.StatusNotFound:
		return http.StatusNotFound
	case http.StatusForbidden:
		return http.StatusForbidden
	}
	return http.StatusBadGateway
}

// messageFor returns the client-facing message for a failure of an operation whose generic message is fallback.
func messageFor(err error, fallback string) string {
	switch {
	case errors.Is(err, drivefm.ErrInvalidArgument):
		return err.Error()
	case errors.Is(err, drivefm.ErrAuth):
		return "Authentication failed. Please sign out and sign in again."
	case errors.Is(err, drivefm.ErrRateLimited):
		return "Too many requests to Google Drive, try again later"
	case errors.Is(err, drivefm.ErrThumbnailUnavailable):
		return "No thumbnail available"
	}
	return fallback
}

// failureClass labels a gateway failure for metrics.
func failureClass(err error) string {
	switch {
	case errors.Is(err, drivefm.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, drivefm.ErrAuth):
		return "auth"
	case errors.Is(err, drivefm.ErrRateLimited):
		return "rate_limited"
	}

	status := drivefm.StatusCode(err)
	switch {
	case status == 0:
		return "no_response"
	case status >= 500:
		return "upstream_5xx"
	case status >= 400:
		return "upstream_4xx"
	}
	return "unusable_response"
}
