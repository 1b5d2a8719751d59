package identity

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/google/uuid"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/validation"
)

// CookieName is the cookie carrying the encrypted device id.
const CookieName = "portfolio_device"

const cookieMaxAge = 400 * 24 * time.Hour

// CookieResolver identifies a browser by a random device id stored in a
// Fernet token, so clients cannot pick someone else's id.
type CookieResolver struct {
	key  *fernet.Key
	keys []*fernet.Key
}

// NewCookieResolver decodes a base64 Fernet key. An empty key generates a
// process-local one; device ids then do not survive a restart.
func NewCookieResolver(encodedKey string) (*CookieResolver, error) {
	var key *fernet.Key
	if encodedKey == "" {
		key = new(fernet.Key)
		if err := key.Generate(); err != nil {
			return nil, fmt.Errorf("failed to generate cookie key: %w", err)
		}
		slog.Warn("IDENTITY_COOKIE_KEY not set, using an ephemeral key")
	} else {
		decoded, err := fernet.DecodeKey(encodedKey)
		if err != nil {
			return nil, fmt.Errorf("invalid IDENTITY_COOKIE_KEY: %w", err)
		}
		key = decoded
	}

	return &CookieResolver{key: key, keys: []*fernet.Key{key}}, nil
}

// UserID implements Resolver. A missing or tampered cookie yields a fresh id
// and a new cookie on the response.
func (c *CookieResolver) UserID(w http.ResponseWriter, r *http.Request) (string, error) {
	if cookie, err := r.Cookie(CookieName); err == nil {
		// Negative TTL: device tokens do not expire on their own.
		if msg := fernet.VerifyAndDecrypt([]byte(cookie.Value), -1, c.keys); msg != nil {
			if id := string(msg); validation.ValidateUUID(id) == nil {
				return id, nil
			}
		}
	}

	id := uuid.New().String()
	token, err := fernet.EncryptAndSign([]byte(id), c.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign device id: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    string(token),
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	return id, nil
}
