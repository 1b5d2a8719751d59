package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/store"
)

// Store status values reported by CheckHealth.
const (
	StoreStatusConnected     = "connected"
	StoreStatusNotConfigured = "not configured"
	StoreStatusUnavailable   = "unavailable"
)

// pingTimeout bounds the store round-trip of a health check.
const pingTimeout = 5 * time.Second

// SystemService handles system-related operations
type SystemService struct {
	store store.Store
	now   func() time.Time
}

// NewSystemService creates a new SystemService
func NewSystemService(s store.Store) *SystemService {
	return &SystemService{
		store: s,
		now:   time.Now,
	}
}

// CheckHealth reports the service status and pings the store.
// An unconfigured store is reported but is not a failure: the API still
// serves prices. A configured store that does not answer returns the status
// together with an error wrapping apperrors.ErrStoreUnavailable.
func (s *SystemService) CheckHealth(ctx context.Context) (model.HealthStatus, error) {
	status := model.HealthStatus{
		Status:      "ok",
		Message:     "Portfolio Tracker API is running",
		Store:       s.store.Name(),
		StoreStatus: StoreStatusConnected,
		Timestamp:   s.now().UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	err := s.store.Ping(ctx)
	switch {
	case err == nil:
		return status, nil
	case errors.Is(err, apperrors.ErrStoreNotConfigured):
		status.StoreStatus = StoreStatusNotConfigured
		return status, nil
	default:
		status.Status = "degraded"
		status.StoreStatus = StoreStatusUnavailable
		return status, fmt.Errorf("%w: %s: %v", apperrors.ErrStoreUnavailable, s.store.Name(), err)
	}
}
