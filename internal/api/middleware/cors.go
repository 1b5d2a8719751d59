package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/cors"
)

var (
	corsMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	corsHeaders = []string{"Content-Type"}
)

// NewCORS creates a new CORS middleware with the given allowed origins.
// Preflight requests are answered by the middleware itself.
func NewCORS(allowedOrigins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   corsMethods,
		AllowedHeaders:   corsHeaders,
		ExposedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// CORS negotiates preflights through NewCORS and answers every other OPTIONS
// request with 200. With a "*" origin the allow headers are sent on every
// response, including requests without an Origin header.
//
// Example usage in router:
//
//	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	negotiator := NewCORS(allowedOrigins)
	wildcard := slices.Contains(allowedOrigins, "*")
	methods := strings.Join(corsMethods, ", ")
	headers := strings.Join(corsHeaders, ", ")

	return func(next http.Handler) http.Handler {
		inner := negotiator.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		}))

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if wildcard {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", "*")
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", headers)
			}
			inner.ServeHTTP(w, r)
		})
	}
}
