// Package middleware provides HTTP middleware for request identity and processing.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/identity"
)

// Identity resolves the caller's user id and stores it in the request context
// for the handlers behind it. Returns 500 Internal Server Error if the
// resolver fails.
//
// Example usage in router:
//
//	r.Route("/portfolio", func(r chi.Router) {
//	    r.Use(middleware.Identity(resolver))
//	    r.Get("/", handler.Load)
//	})
func Identity(resolver identity.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := resolver.UserID(w, r)
			if err != nil {
				slog.ErrorContext(r.Context(), "identity resolution failed", "error", err)
				response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToResolveIdentity.Error(), nil)
				return
			}
			if userID == "" {
				response.RespondError(w, http.StatusBadRequest, apperrors.ErrEmptyUserID.Error(), nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(identity.WithUserID(r.Context(), userID)))
		})
	}
}
