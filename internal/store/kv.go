package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
)

// KVStore talks to a REST key-value service that accepts Redis commands as
// JSON arrays (Upstash and Vercel KV): POST ["SET", key, value] with a bearer token.
// Keys and values match RedisStore, so both can share one database.
type KVStore struct {
	http *resty.Client
}

// kvResponse is the envelope of every REST command reply.
type kvResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// NewKVStore creates a store for the REST key-value service at cfg.URL.
func NewKVStore(cfg config.KVConfig) *KVStore {
	client := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.Token).
		SetHeader("Content-Type", "application/json")

	return &KVStore{http: client}
}

// Name implements Store.
func (s *KVStore) Name() string {
	return config.BackendKV
}

// Load implements Store.
func (s *KVStore) Load(ctx context.Context, userID string) (model.Snapshot, error) {
	result, err := s.command(ctx, "GET", Key(userID))
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, nil
	}

	var value *string
	if err := json.Unmarshal(result, &value); err != nil {
		return nil, fmt.Errorf("kv GET returned unexpected result: %w", err)
	}
	if value == nil {
		return nil, nil
	}
	return decodeSnapshot([]byte(*value))
}

// Save implements Store.
func (s *KVStore) Save(ctx context.Context, userID string, snapshot model.Snapshot) error {
	data, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	_, err = s.command(ctx, "SET", Key(userID), string(data))
	return err
}

// Delete implements Store.
func (s *KVStore) Delete(ctx context.Context, userID string) error {
	_, err := s.command(ctx, "DEL", Key(userID))
	return err
}

// Ping implements Store.
func (s *KVStore) Ping(ctx context.Context) error {
	_, err := s.command(ctx, "PING")
	return err
}

// Close implements Store.
func (s *KVStore) Close() error {
	return nil
}

// command sends one Redis command and returns the raw result field.
func (s *KVStore) command(ctx context.Context, args ...string) (json.RawMessage, error) {
	var out kvResponse
	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(args).
		SetResult(&out).
		SetError(&out).
		Post("/")
	if err != nil {
		return nil, fmt.Errorf("kv %s failed: %w", args[0], err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("kv %s failed: %s", args[0], out.Error)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("kv %s failed: status %d", args[0], resp.StatusCode())
	}
	return out.Result, nil
}
