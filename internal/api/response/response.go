// Package response provides utilities for sending consistent HTTP responses.
// Every body is an envelope: {"success": true, "data": ...} on success and
// {"success": false, "error": "..."} on failure.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// DataResponse is the success envelope carrying a payload. Data is always
// present and may be null.
type DataResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

// SeriesResponse is the success envelope for a price series. The points are
// the payload; the series metadata sits next to them.
type SeriesResponse struct {
	Success bool   `json:"success"`
	Symbol  string `json:"symbol"`
	Period  string `json:"period"`
	Data    any    `json:"data"`
	Count   int    `json:"count"`
}

// MessageResponse is the success envelope for operations without a payload.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorResponse represents a structured error response returned by the API.
// The Details field is optional and can contain additional context about the error.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// RespondJSON sends a JSON response with the given status code.
// Sets the Content-Type header to application/json and writes the status code.
// If data is nil, only the status code is sent.
// Logs encoding errors but does not fail the response.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// RespondData sends a success envelope with a payload.
func RespondData(w http.ResponseWriter, status int, data any) {
	RespondJSON(w, status, DataResponse{Success: true, Data: data})
}

// RespondSeries sends a success envelope whose data is the series points.
func RespondSeries(w http.ResponseWriter, status int, symbol, period string, points any, count int) {
	RespondJSON(w, status, SeriesResponse{Success: true, Symbol: symbol, Period: period, Data: points, Count: count})
}

// RespondMessage sends a success envelope with a message and no payload.
func RespondMessage(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, MessageResponse{Success: true, Message: message})
}

// RespondError sends a structured error response with the given status code.
// The message should be a user-friendly error description.
// The details parameter can be an error string, additional context, or nil.
//
// Example:
//
//	response.RespondError(w, http.StatusBadRequest, "invalid symbol", err.Error())
//	response.RespondError(w, http.StatusServiceUnavailable, "database not configured", nil)
func RespondError(w http.ResponseWriter, status int, message string, details any) {
	if s, ok := details.(string); ok && (s == "" || s == message) {
		details = nil
	}
	RespondJSON(w, status, ErrorResponse{
		Success: false,
		Error:   message,
		Details: details,
	})
}
