package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/store"
)

// PortfolioService loads, saves and deletes the portfolio snapshot of a user.
// Snapshot contents belong to the client; the service only checks that a
// document is present and stamps the save time onto it.
type PortfolioService struct {
	store store.Store
	now   func() time.Time
}

// NewPortfolioService creates a new PortfolioService backed by the given store.
func NewPortfolioService(s store.Store) *PortfolioService {
	return &PortfolioService{
		store: s,
		now:   time.Now,
	}
}

// WithClock replaces the time source used for updatedAt stamps.
func (s *PortfolioService) WithClock(now func() time.Time) *PortfolioService {
	s.now = now
	return s
}

// LoadPortfolio returns the stored snapshot for userID, or nil when the user
// has never saved one.
//
// Returns:
//   - model.Snapshot: The stored document, nil if none exists
//   - error: apperrors.ErrStoreNotConfigured or a wrapped store failure
func (s *PortfolioService) LoadPortfolio(ctx context.Context, userID string) (model.Snapshot, error) {
	if userID == "" {
		return nil, apperrors.ErrEmptyUserID
	}

	snapshot, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load portfolio from %s: %w", s.store.Name(), err)
	}
	return snapshot, nil
}

// SavePortfolio replaces the snapshot of userID with the given document,
// stamped with the current time under model.UpdatedAtField.
// The caller's map is not modified.
//
// Returns:
//   - model.Snapshot: The document as stored
//   - error: apperrors.ErrInvalidSnapshot for an empty document, or a wrapped store failure
func (s *PortfolioService) SavePortfolio(ctx context.Context, userID string, snapshot model.Snapshot) (model.Snapshot, error) {
	if userID == "" {
		return nil, apperrors.ErrEmptyUserID
	}
	if len(snapshot) == 0 {
		return nil, apperrors.ErrInvalidSnapshot
	}

	stamped := snapshot.Stamp(s.now())
	if err := s.store.Save(ctx, userID, stamped); err != nil {
		return nil, fmt.Errorf("save portfolio to %s: %w", s.store.Name(), err)
	}

	slog.DebugContext(ctx, "portfolio saved", "store", s.store.Name(), "keys", len(stamped))
	return stamped, nil
}

// DeletePortfolio removes the snapshot of userID. Deleting a snapshot that
// does not exist succeeds.
func (s *PortfolioService) DeletePortfolio(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.ErrEmptyUserID
	}

	if err := s.store.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete portfolio from %s: %w", s.store.Name(), err)
	}
	return nil
}
