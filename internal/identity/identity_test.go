package identity

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/validation"
)

var md5Hex = regexp.MustCompile(`^[0-9a-f]{32}$`)

func TestHashUserID(t *testing.T) {
	// md5("127.0.0.1_curl/8.0")
	got := HashUserID("127.0.0.1", "curl/8.0")
	if !md5Hex.MatchString(got) {
		t.Fatalf("Expected 32 hex chars, got '%s'", got)
	}
	if got != HashUserID("127.0.0.1", "curl/8.0") {
		t.Error("Expected derivation to be deterministic")
	}
	if got == HashUserID("127.0.0.2", "curl/8.0") {
		t.Error("Expected different IPs to derive different ids")
	}
}

func TestHashUserID_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("derivation is deterministic and hex encoded", prop.ForAll(
		func(ip, ua string) bool {
			a := HashUserID(ip, ua)
			return a == HashUserID(ip, ua) && md5Hex.MatchString(a)
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.Property("user agent participates in the id", prop.ForAll(
		func(ip, ua string) bool {
			return HashUserID(ip, ua) != HashUserID(ip, ua+"x")
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"first forwarded hop", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.2:1234", "203.0.113.7"},
		{"real ip header", map[string]string{"X-Real-IP": "198.51.100.4"}, "10.0.0.2:1234", "198.51.100.4"},
		{"remote addr host", nil, "192.0.2.1:5555", "192.0.2.1"},
		{"remote addr without port", nil, "192.0.2.1", "192.0.2.1"},
		{"nothing known", nil, "", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP() = '%s', want '%s'", got, tt.want)
			}
		})
	}
}

func TestSharedResolver(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)

	id, _ := SharedResolver{}.UserID(httptest.NewRecorder(), req)
	if id != "default_user" {
		t.Errorf("Expected 'default_user', got '%s'", id)
	}

	id, _ = SharedResolver{ID: "family"}.UserID(httptest.NewRecorder(), req)
	if id != "family" {
		t.Errorf("Expected 'family', got '%s'", id)
	}
}

func TestCookieResolver(t *testing.T) {
	resolver, err := NewCookieResolver("")
	if err != nil {
		t.Fatalf("NewCookieResolver() returned unexpected error: %v", err)
	}

	t.Run("issues a cookie and recognises it on the next request", func(t *testing.T) {
		w := httptest.NewRecorder()
		first, err := resolver.UserID(w, httptest.NewRequest(http.MethodGet, "/api/portfolio", nil))
		if err != nil {
			t.Fatalf("UserID() returned unexpected error: %v", err)
		}
		if err := validation.ValidateUUID(first); err != nil {
			t.Errorf("Expected UUID device id, got '%s'", first)
		}

		cookies := w.Result().Cookies()
		if len(cookies) != 1 || cookies[0].Name != CookieName {
			t.Fatalf("Expected one %s cookie, got %v", CookieName, cookies)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
		req.AddCookie(cookies[0])
		w2 := httptest.NewRecorder()
		second, err := resolver.UserID(w2, req)
		if err != nil {
			t.Fatalf("UserID() returned unexpected error: %v", err)
		}
		if second != first {
			t.Errorf("Expected same device id '%s', got '%s'", first, second)
		}
		if len(w2.Result().Cookies()) != 0 {
			t.Error("Expected no new cookie for a valid token")
		}
	})

	t.Run("replaces a forged cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "not-a-token"})
		w := httptest.NewRecorder()

		id, err := resolver.UserID(w, req)
		if err != nil {
			t.Fatalf("UserID() returned unexpected error: %v", err)
		}
		if id == "not-a-token" {
			t.Error("Expected forged value to be ignored")
		}
		if len(w.Result().Cookies()) != 1 {
			t.Error("Expected a replacement cookie")
		}
	})

	t.Run("rejects a malformed key", func(t *testing.T) {
		if _, err := NewCookieResolver("short"); err == nil {
			t.Error("Expected error for malformed key")
		}
	})
}

func TestNew(t *testing.T) {
	if r, err := New(config.IdentityConfig{Mode: config.IdentityHash}); err != nil {
		t.Errorf("Unexpected error: %v", err)
	} else if _, ok := r.(HashResolver); !ok {
		t.Errorf("Expected HashResolver, got %T", r)
	}

	if r, err := New(config.IdentityConfig{Mode: config.IdentityShared, SharedID: "x"}); err != nil {
		t.Errorf("Unexpected error: %v", err)
	} else if s, ok := r.(SharedResolver); !ok || s.ID != "x" {
		t.Errorf("Expected SharedResolver{x}, got %#v", r)
	}

	if _, err := New(config.IdentityConfig{Mode: "ldap"}); err == nil {
		t.Error("Expected error for unknown mode")
	}
}
