package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/apperrors"
)

// TestRespondServiceError tests the mapping from service errors to status codes.
// This is an internal test (package handlers, not handlers_test) because
// respondServiceError is unexported.
func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"invalid symbol", fmt.Errorf("%w: %q", apperrors.ErrInvalidSymbol, "A B"), http.StatusBadRequest, "invalid symbol"},
		{"invalid snapshot", apperrors.ErrInvalidSnapshot, http.StatusBadRequest, "invalid portfolio data"},
		{"symbol not found", fmt.Errorf("fetch: %w", apperrors.ErrSymbolNotFound), http.StatusNotFound, "symbol not found"},
		{"no price data", apperrors.ErrNoPriceData, http.StatusNotFound, "no price data available"},
		{"store not configured", fmt.Errorf("load: %w", apperrors.ErrStoreNotConfigured), http.StatusServiceUnavailable, "database not configured"},
		{"timeout", fmt.Errorf("redis GET failed: %w", context.DeadlineExceeded), http.StatusServiceUnavailable, "failed to load portfolio"},
		{"connection refused", fmt.Errorf("redis GET failed: %w", &net.OpError{Op: "dial", Err: errors.New("connection refused")}), http.StatusServiceUnavailable, "failed to load portfolio"},
		{"anything else", errors.New("disk full"), http.StatusInternalServerError, "failed to load portfolio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)

			respondServiceError(w, r, tt.err, apperrors.ErrFailedToLoadPortfolio)

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			var body map[string]any
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if body["success"] != false {
				t.Errorf("Expected success false, got %v", body["success"])
			}
			if body["error"] != tt.wantError {
				t.Errorf("Expected error %q, got %v", tt.wantError, body["error"])
			}
		})
	}

	t.Run("unmapped failures do not leak the cause", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
		cause := fmt.Errorf("data api findOne failed: %w", &net.OpError{
			Op:  "dial",
			Net: "tcp",
			Err: errors.New("lookup data.mongodb-api.com: no such host"),
		})

		respondServiceError(w, r, cause, apperrors.ErrFailedToLoadPortfolio)

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", w.Code)
		}
		if strings.Contains(w.Body.String(), "mongodb-api.com") {
			t.Errorf("Expected no cause in the body, got %s", w.Body.String())
		}
		var body map[string]any
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&body)
		if _, ok := body["details"]; ok {
			t.Errorf("Expected no details, got %v", body["details"])
		}
	})

	t.Run("sentinel failures keep their details", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/price/A%20B", nil)

		respondServiceError(w, r, fmt.Errorf("%w: %q", apperrors.ErrInvalidSymbol, "A B"), apperrors.ErrFailedToGetPrice)

		if !strings.Contains(w.Body.String(), `"details"`) {
			t.Errorf("Expected details for a sentinel error, got %s", w.Body.String())
		}
	})
}

// TestRespondDecodeError tests the status chosen for unreadable request bodies.
//
// WHY: A body over the size cap is not malformed input. Clients need 413 to
// tell "too big" apart from "broken JSON".
func TestRespondDecodeError(t *testing.T) {
	t.Run("oversized body answers 413", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"`+strings.Repeat("a", 64)+`"}`))
		r.Body = http.MaxBytesReader(w, r.Body, 16)

		_, err := parseJSON[map[string]any](r)
		respondDecodeError(w, err, apperrors.ErrInvalidSnapshot)

		if w.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("Expected status 413, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), apperrors.ErrBodyTooLarge.Error()) {
			t.Errorf("Expected %q, got %s", apperrors.ErrBodyTooLarge, w.Body.String())
		}
	})

	t.Run("malformed body answers 400", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))

		_, err := parseJSON[map[string]any](r)
		respondDecodeError(w, err, apperrors.ErrInvalidSnapshot)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "invalid portfolio data") {
			t.Errorf("Expected 'invalid portfolio data', got %s", w.Body.String())
		}
	})
}

func TestParseJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("decodes body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))

		got, err := parseJSON[payload](r)
		if err != nil {
			t.Fatalf("parseJSON() error = %v", err)
		}
		if got.Name != "x" {
			t.Errorf("Expected name x, got %s", got.Name)
		}
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))

		if _, err := parseJSON[payload](r); err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})

	t.Run("rejects oversized body", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"`+strings.Repeat("a", 64)+`"}`))
		r.Body = http.MaxBytesReader(w, r.Body, 16)

		_, err := parseJSON[payload](r)
		var tooLarge *http.MaxBytesError
		if !errors.As(err, &tooLarge) {
			t.Errorf("Expected MaxBytesError, got %v", err)
		}
	})
}
