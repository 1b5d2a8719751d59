package testutil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/identity"
)

// NewRequestWithURLParams creates a request whose chi route context carries
// params, so handlers can be called directly and still read chi.URLParam.
//
//	req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/price/AAPL", map[string]string{"symbol": "AAPL"})
func NewRequestWithURLParams(method, path string, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, path, nil)

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for key, value := range params {
			rctx.URLParams.Add(key, value)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	return req
}

// NewRequestForUser creates an HTTP request whose context carries userID, as
// the identity middleware would leave it. A non-empty body is sent as JSON.
//
// Example:
//
//	req := testutil.NewRequestForUser(http.MethodPost, "/api/portfolio", `{"cashBalance":100}`, "u1")
func NewRequestForUser(method, path, body, userID string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req.WithContext(identity.WithUserID(req.Context(), userID))
}
