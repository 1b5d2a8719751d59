package testutil

import (
	"context"
	"testing"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/store"
)

// SnapshotBuilder provides a fluent interface for creating test portfolio snapshots.
// Values use the JSON-native types a decoded request body would carry.
//
// Example usage:
//
//	// Simple creation with defaults
//	snapshot := testutil.NewSnapshot().Snapshot()
//
//	// Customized and persisted
//	snapshot := testutil.NewSnapshot().
//	    WithCash(2500).
//	    WithHolding("MSFT", 3, 410.5).
//	    Build(t, s, userID)
type SnapshotBuilder struct {
	Cash         float64
	Holdings     map[string]any
	Transactions []any
}

// NewSnapshot creates a SnapshotBuilder with sensible defaults: one AAPL
// position bought with part of a 100k starting balance.
func NewSnapshot() *SnapshotBuilder {
	return (&SnapshotBuilder{
		Cash:     100000,
		Holdings: map[string]any{},
	}).WithHolding("AAPL", 10, 150)
}

// WithCash sets the cash balance.
func (b *SnapshotBuilder) WithCash(cash float64) *SnapshotBuilder {
	b.Cash = cash
	return b
}

// WithHolding adds a position and the buy transaction that opened it.
func (b *SnapshotBuilder) WithHolding(symbol string, shares, avgCost float64) *SnapshotBuilder {
	b.Holdings[symbol] = map[string]any{
		"shares":  shares,
		"avgCost": avgCost,
	}
	b.Transactions = append(b.Transactions, map[string]any{
		"type":   "buy",
		"symbol": symbol,
		"shares": shares,
		"price":  avgCost,
		"date":   "2024-06-03T14:30:00.000Z",
	})
	return b
}

// Snapshot returns the document without persisting it.
func (b *SnapshotBuilder) Snapshot() model.Snapshot {
	return model.Snapshot{
		"portfolio":          b.Holdings,
		"cashBalance":        b.Cash,
		"transactionHistory": b.Transactions,
	}
}

// Build saves the snapshot for userID and returns it.
func (b *SnapshotBuilder) Build(t *testing.T, s store.Store, userID string) model.Snapshot {
	t.Helper()

	snapshot := b.Snapshot()
	if err := s.Save(context.Background(), userID, snapshot); err != nil {
		t.Fatalf("Failed to save test snapshot: %v", err)
	}
	return snapshot
}

// CreateSnapshot saves a default snapshot for userID.
func CreateSnapshot(t *testing.T, s store.Store, userID string) model.Snapshot {
	t.Helper()
	return NewSnapshot().Build(t, s, userID)
}
