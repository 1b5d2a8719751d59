package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backend names accepted in STORE_BACKEND.
const (
	BackendNone        = ""
	BackendMongoDB     = "mongodb"
	BackendMongoDBHTTP = "mongodb-http"
	BackendRedis       = "redis"
	BackendKV          = "kv"
	BackendSQLite      = "sqlite"
)

// Identity modes accepted in IDENTITY_MODE.
const (
	IdentityHash   = "hash"
	IdentityShared = "shared"
	IdentityCookie = "cookie"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	CORS     CORSConfig
	Store    StoreConfig
	Identity IdentityConfig
	Market   MarketConfig
	Log      LogConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port      string
	Host      string
	Addr      string // Combined host:port for convenience
	StaticDir string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// StoreConfig selects the portfolio store backend and carries the settings of every backend.
// Only the block matching Backend is read at startup.
type StoreConfig struct {
	Backend   string
	Heartbeat string
	MongoDB   MongoDBConfig
	DataAPI   DataAPIConfig
	Redis     RedisConfig
	KV        KVConfig
	SQLite    SQLiteConfig
}

// MongoDBConfig configures the direct driver backend.
type MongoDBConfig struct {
	URI            string
	Database       string
	Collection     string
	TLSInsecure    bool
	ConnectTimeout time.Duration
}

// DataAPIConfig configures the MongoDB Atlas Data API backend.
type DataAPIConfig struct {
	URL        string
	APIKey     string
	DataSource string
	Database   string
	Collection string
	Timeout    time.Duration
}

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	URL string
}

// KVConfig configures the REST key-value backend.
type KVConfig struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// SQLiteConfig configures the local SQLite backend.
type SQLiteConfig struct {
	Path string
}

// IdentityConfig controls how a request is mapped to a storage user id.
type IdentityConfig struct {
	Mode      string
	SharedID  string
	CookieKey string
}

// MarketConfig configures the market-data provider client.
type MarketConfig struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	RateBurst int
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string
	Format string
	File   string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	return FromEnv()
}

// FromEnv builds the configuration from the current environment only.
func FromEnv() (*Config, error) {
	var errs []string
	duration := func(key, def string) time.Duration {
		d, err := time.ParseDuration(getEnv(key, def))
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
		return d
	}

	config := &Config{
		Server: ServerConfig{
			Port:      getEnv("SERVER_PORT", "5001"),
			Host:      getEnv("SERVER_HOST", "0.0.0.0"),
			StaticDir: os.Getenv("STATIC_DIR"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		},
		Store: StoreConfig{
			Backend:   strings.ToLower(strings.TrimSpace(os.Getenv("STORE_BACKEND"))),
			Heartbeat: lookupEnv("STORE_HEARTBEAT", "@every 5m"),
			MongoDB: MongoDBConfig{
				URI:            os.Getenv("MONGODB_URI"),
				Database:       getEnv("MONGODB_DATABASE", "portfolio_tracker"),
				Collection:     getEnv("MONGODB_COLLECTION", "portfolios"),
				TLSInsecure:    getEnv("MONGODB_TLS_INSECURE", "false") == "true",
				ConnectTimeout: 5 * time.Second,
			},
			DataAPI: DataAPIConfig{
				URL:        strings.TrimRight(os.Getenv("MONGODB_DATA_API_URL"), "/"),
				APIKey:     os.Getenv("MONGODB_API_KEY"),
				DataSource: getEnv("MONGODB_DATA_SOURCE", "Cluster0"),
				Database:   getEnv("MONGODB_DATABASE", "portfolio_tracker"),
				Collection: getEnv("MONGODB_COLLECTION", "portfolios"),
				Timeout:    10 * time.Second,
			},
			Redis: RedisConfig{
				URL: os.Getenv("REDIS_URL"),
			},
			KV: KVConfig{
				URL:     strings.TrimRight(os.Getenv("KV_REST_API_URL"), "/"),
				Token:   os.Getenv("KV_REST_API_TOKEN"),
				Timeout: 10 * time.Second,
			},
			SQLite: SQLiteConfig{
				Path: getEnv("SQLITE_PATH", "./data/portfolio.db"),
			},
		},
		Identity: IdentityConfig{
			Mode:      strings.ToLower(getEnv("IDENTITY_MODE", IdentityHash)),
			SharedID:  getEnv("IDENTITY_SHARED_ID", "default_user"),
			CookieKey: os.Getenv("IDENTITY_COOKIE_KEY"),
		},
		Market: MarketConfig{
			BaseURL: strings.TrimRight(getEnv("MARKET_BASE_URL", "https://query1.finance.yahoo.com"), "/"),
			Timeout: duration("MARKET_TIMEOUT", "10s"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
			File:   os.Getenv("LOG_FILE"),
		},
	}

	rateLimit, err := strconv.ParseFloat(getEnv("MARKET_RATE_LIMIT", "5"), 64)
	if err != nil || rateLimit <= 0 {
		errs = append(errs, fmt.Sprintf("MARKET_RATE_LIMIT: must be a positive number, got %q", os.Getenv("MARKET_RATE_LIMIT")))
	}
	config.Market.RateLimit = rateLimit

	burst, err := strconv.Atoi(getEnv("MARKET_RATE_BURST", "5"))
	if err != nil || burst <= 0 {
		errs = append(errs, fmt.Sprintf("MARKET_RATE_BURST: must be a positive integer, got %q", os.Getenv("MARKET_RATE_BURST")))
	}
	config.Market.RateBurst = burst

	switch config.Store.Backend {
	case BackendNone, BackendMongoDB, BackendMongoDBHTTP, BackendRedis, BackendKV, BackendSQLite:
	default:
		errs = append(errs, fmt.Sprintf("STORE_BACKEND: unknown backend %q", config.Store.Backend))
	}

	switch config.Identity.Mode {
	case IdentityHash, IdentityShared, IdentityCookie:
	default:
		errs = append(errs, fmt.Sprintf("IDENTITY_MODE: unknown mode %q", config.Identity.Mode))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}

	// Combine host and port
	config.Server.Addr = net.JoinHostPort(config.Server.Host, config.Server.Port)

	return config, nil
}

// Configured reports whether the selected backend has the credentials it needs.
// An unconfigured backend degrades to a store that rejects every operation.
func (s StoreConfig) Configured() bool {
	switch s.Backend {
	case BackendMongoDB:
		return s.MongoDB.URI != ""
	case BackendMongoDBHTTP:
		return s.DataAPI.URL != "" && s.DataAPI.APIKey != ""
	case BackendRedis:
		return s.Redis.URL != ""
	case BackendKV:
		return s.KV.URL != "" && s.KV.Token != ""
	case BackendSQLite:
		return s.SQLite.Path != ""
	default:
		return false
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// lookupEnv is getEnv for variables where an explicit empty value is meaningful.
func lookupEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
