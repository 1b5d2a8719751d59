// Package identity derives the storage key for a request.
//
// None of the resolvers authenticate anyone. The hash resolver is a
// deterministic pseudo-identity from connection metadata, the shared resolver
// puts every client on one document for multi-device sync, and the cookie
// resolver hands each browser an encrypted random device id.
package identity

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/config"
)

// Resolver maps a request to a user id. Resolvers may set response headers
// (the cookie resolver issues its cookie), so they receive the ResponseWriter.
type Resolver interface {
	UserID(w http.ResponseWriter, r *http.Request) (string, error)
}

// New returns the resolver selected by the configuration.
func New(cfg config.IdentityConfig) (Resolver, error) {
	switch cfg.Mode {
	case config.IdentityHash, "":
		return HashResolver{}, nil
	case config.IdentityShared:
		return SharedResolver{ID: cfg.SharedID}, nil
	case config.IdentityCookie:
		return NewCookieResolver(cfg.CookieKey)
	default:
		return nil, fmt.Errorf("unknown identity mode %q", cfg.Mode)
	}
}

// HashResolver derives md5(ip + "_" + user agent) as a hex string.
type HashResolver struct{}

// UserID implements Resolver.
func (HashResolver) UserID(_ http.ResponseWriter, r *http.Request) (string, error) {
	return HashUserID(ClientIP(r), r.UserAgent()), nil
}

// HashUserID is the pure derivation behind HashResolver.
func HashUserID(ip, userAgent string) string {
	sum := md5.Sum([]byte(ip + "_" + userAgent))
	return hex.EncodeToString(sum[:])
}

// ClientIP returns the first X-Forwarded-For hop, then X-Real-IP, then the
// host part of RemoteAddr, and "unknown" when none is present.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		return r.RemoteAddr
	}
	return "unknown"
}

// SharedResolver returns the same id for every request.
type SharedResolver struct {
	ID string
}

// UserID implements Resolver.
func (s SharedResolver) UserID(_ http.ResponseWriter, _ *http.Request) (string, error) {
	if s.ID == "" {
		return "default_user", nil
	}
	return s.ID, nil
}

type contextKey struct{}

// WithUserID stores the resolved user id on the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserIDFromContext returns the user id stored by WithUserID.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(contextKey{}).(string)
	return userID, ok && userID != ""
}
