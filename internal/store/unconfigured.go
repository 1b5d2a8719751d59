package store

import (
	"context"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
)

// Unconfigured rejects every operation with apperrors.ErrStoreNotConfigured.
type Unconfigured struct {
	backend string
}

// NewUnconfigured returns a store standing in for a backend that has no credentials.
func NewUnconfigured(backend string) *Unconfigured {
	return &Unconfigured{backend: backend}
}

// Name implements Store.
func (u *Unconfigured) Name() string {
	if u.backend == "" {
		return "none"
	}
	return u.backend + " (not configured)"
}

// Load implements Store.
func (u *Unconfigured) Load(context.Context, string) (model.Snapshot, error) {
	return nil, apperrors.ErrStoreNotConfigured
}

// Save implements Store.
func (u *Unconfigured) Save(context.Context, string, model.Snapshot) error {
	return apperrors.ErrStoreNotConfigured
}

// Delete implements Store.
func (u *Unconfigured) Delete(context.Context, string) error {
	return apperrors.ErrStoreNotConfigured
}

// Ping implements Store.
func (u *Unconfigured) Ping(context.Context) error {
	return apperrors.ErrStoreNotConfigured
}

// Close implements Store.
func (u *Unconfigured) Close() error {
	return nil
}
