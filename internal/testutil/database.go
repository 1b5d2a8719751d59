package testutil

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/store"
)

// SetupTestStore creates an in-memory SQLite store with migrations applied.
// The store is automatically closed when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    s := testutil.SetupTestStore(t)
//	    // s is ready to use with schema created
//	}
func SetupTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// SetupTestRedisStore starts a miniredis server and returns a store connected to it,
// together with the server for direct inspection of keys.
func SetupTestRedisStore(t *testing.T) (*store.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	s, err := store.NewRedisStore(config.RedisConfig{URL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("Failed to create redis store: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})

	return s, mr
}

// FailingStore is a store.Store whose every operation returns Err.
type FailingStore struct {
	Err error
}

// Name implements store.Store.
func (f *FailingStore) Name() string { return "failing" }

// Load implements store.Store.
func (f *FailingStore) Load(context.Context, string) (model.Snapshot, error) { return nil, f.Err }

// Save implements store.Store.
func (f *FailingStore) Save(context.Context, string, model.Snapshot) error { return f.Err }

// Delete implements store.Store.
func (f *FailingStore) Delete(context.Context, string) error { return f.Err }

// Ping implements store.Store.
func (f *FailingStore) Ping(context.Context) error { return f.Err }

// Close implements store.Store.
func (f *FailingStore) Close() error { return nil }

// LoadSnapshot reads a user's snapshot straight from a store, failing the test on error.
func LoadSnapshot(t *testing.T, s store.Store, userID string) model.Snapshot {
	t.Helper()

	snapshot, err := s.Load(context.Background(), userID)
	if err != nil {
		t.Fatalf("Failed to load snapshot for %s: %v", userID, err)
	}
	return snapshot
}
