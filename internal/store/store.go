// Package store persists one portfolio snapshot per user id.
//
// Every backend implements the same contract: Load returns (nil, nil) for a
// user without a snapshot, Save replaces the whole document (upsert), and
// Delete of a missing document is not an error. Backends exist for
// deployment constraints only and behave identically to callers.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
)

// Store is the portfolio persistence contract.
type Store interface {
	// Name identifies the backend in logs and health output.
	Name() string
	Load(ctx context.Context, userID string) (model.Snapshot, error)
	Save(ctx context.Context, userID string, snapshot model.Snapshot) error
	Delete(ctx context.Context, userID string) error
	Ping(ctx context.Context) error
	Close() error
}

// Fields a backend may add to the stored document; they never reach callers.
const (
	fieldMongoID = "_id"
	fieldUserID  = "user_id"
)

// KeyPrefix namespaces portfolio keys in key-value backends.
const KeyPrefix = "portfolio:"

// Key returns the key-value key for a user.
func Key(userID string) string {
	return KeyPrefix + userID
}

// New opens the backend selected by the configuration. A backend without
// credentials yields the unconfigured store instead of an error.
func New(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	if !cfg.Configured() {
		return NewUnconfigured(cfg.Backend), nil
	}

	switch cfg.Backend {
	case config.BackendMongoDB:
		return NewMongoStore(ctx, cfg.MongoDB)
	case config.BackendMongoDBHTTP:
		return NewDataAPIStore(cfg.DataAPI), nil
	case config.BackendRedis:
		return NewRedisStore(cfg.Redis)
	case config.BackendKV:
		return NewKVStore(cfg.KV), nil
	case config.BackendSQLite:
		return NewSQLiteStore(cfg.SQLite.Path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// encodeSnapshot serializes a snapshot for backends that store JSON text.
func encodeSnapshot(snapshot model.Snapshot) ([]byte, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// decodeSnapshot parses stored JSON text back into a snapshot.
func decodeSnapshot(data []byte) (model.Snapshot, error) {
	var snapshot model.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode stored snapshot: %w", err)
	}
	return stripInternal(snapshot), nil
}

// stripInternal removes backend bookkeeping fields from a loaded document.
func stripInternal(doc model.Snapshot) model.Snapshot {
	if doc == nil {
		return nil
	}
	delete(doc, fieldMongoID)
	delete(doc, fieldUserID)
	return doc
}
