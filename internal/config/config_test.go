package config

import (
	"testing"
	"time"
)

func TestFromEnv(t *testing.T) {
	t.Run("applies defaults when nothing is set", func(t *testing.T) {
		cfg, err := FromEnv()
		if err != nil {
			t.Fatalf("FromEnv() returned unexpected error: %v", err)
		}

		if cfg.Server.Addr != "0.0.0.0:5001" {
			t.Errorf("Expected addr '0.0.0.0:5001', got '%s'", cfg.Server.Addr)
		}
		if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "*" {
			t.Errorf("Expected allowed origins [*], got %v", cfg.CORS.AllowedOrigins)
		}
		if cfg.Store.Backend != BackendNone {
			t.Errorf("Expected no backend, got '%s'", cfg.Store.Backend)
		}
		if cfg.Store.MongoDB.Database != "portfolio_tracker" || cfg.Store.MongoDB.Collection != "portfolios" {
			t.Errorf("Unexpected mongo defaults: %+v", cfg.Store.MongoDB)
		}
		if cfg.Identity.Mode != IdentityHash {
			t.Errorf("Expected identity mode 'hash', got '%s'", cfg.Identity.Mode)
		}
		if cfg.Identity.SharedID != "default_user" {
			t.Errorf("Expected shared id 'default_user', got '%s'", cfg.Identity.SharedID)
		}
		if cfg.Market.Timeout != 10*time.Second {
			t.Errorf("Expected market timeout 10s, got %s", cfg.Market.Timeout)
		}
	})

	t.Run("reads backend and credentials", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", "Redis")
		t.Setenv("REDIS_URL", "redis://localhost:6379/0")
		t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.example, http://b.example")

		cfg, err := FromEnv()
		if err != nil {
			t.Fatalf("FromEnv() returned unexpected error: %v", err)
		}

		if cfg.Store.Backend != BackendRedis {
			t.Errorf("Expected backend 'redis', got '%s'", cfg.Store.Backend)
		}
		if !cfg.Store.Configured() {
			t.Error("Expected redis backend to be configured")
		}
		if len(cfg.CORS.AllowedOrigins) != 2 {
			t.Errorf("Expected 2 origins, got %v", cfg.CORS.AllowedOrigins)
		}
	})

	t.Run("rejects unknown backend", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", "firestore")

		if _, err := FromEnv(); err == nil {
			t.Error("Expected error for unknown backend")
		}
	})

	t.Run("rejects bad durations and rates", func(t *testing.T) {
		t.Setenv("MARKET_TIMEOUT", "soon")
		t.Setenv("MARKET_RATE_LIMIT", "-1")

		if _, err := FromEnv(); err == nil {
			t.Error("Expected error for invalid market settings")
		}
	})
}

func TestStoreConfig_Configured(t *testing.T) {
	tests := []struct {
		name string
		cfg  StoreConfig
		want bool
	}{
		{"no backend", StoreConfig{}, false},
		{"mongodb without uri", StoreConfig{Backend: BackendMongoDB}, false},
		{"mongodb with uri", StoreConfig{Backend: BackendMongoDB, MongoDB: MongoDBConfig{URI: "mongodb://x"}}, true},
		{"data api missing key", StoreConfig{Backend: BackendMongoDBHTTP, DataAPI: DataAPIConfig{URL: "https://x"}}, false},
		{"data api complete", StoreConfig{Backend: BackendMongoDBHTTP, DataAPI: DataAPIConfig{URL: "https://x", APIKey: "k"}}, true},
		{"kv missing token", StoreConfig{Backend: BackendKV, KV: KVConfig{URL: "https://x"}}, false},
		{"kv complete", StoreConfig{Backend: BackendKV, KV: KVConfig{URL: "https://x", Token: "t"}}, true},
		{"sqlite", StoreConfig{Backend: BackendSQLite, SQLite: SQLiteConfig{Path: "x.db"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Configured(); got != tt.want {
				t.Errorf("Configured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromEnv_Heartbeat(t *testing.T) {
	t.Run("defaults to every five minutes", func(t *testing.T) {
		cfg, err := FromEnv()
		if err != nil {
			t.Fatalf("FromEnv() returned unexpected error: %v", err)
		}
		if cfg.Store.Heartbeat != "@every 5m" {
			t.Errorf("Expected '@every 5m', got '%s'", cfg.Store.Heartbeat)
		}
	})

	t.Run("explicit empty value disables it", func(t *testing.T) {
		t.Setenv("STORE_HEARTBEAT", "")

		cfg, err := FromEnv()
		if err != nil {
			t.Fatalf("FromEnv() returned unexpected error: %v", err)
		}
		if cfg.Store.Heartbeat != "" {
			t.Errorf("Expected empty heartbeat, got '%s'", cfg.Store.Heartbeat)
		}
	})
}
