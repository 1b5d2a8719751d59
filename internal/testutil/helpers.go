package testutil

import (
	"math/rand"
	"testing"
	"time"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/service"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/store"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/yahoo"
)

// FixedNow is the clock used by test services: 2024-06-14 20:00 UTC, a Friday after US close.
var FixedNow = time.Date(2024, time.June, 14, 20, 0, 0, 0, time.UTC)

// FixedClock returns FixedNow.
func FixedClock() time.Time {
	return FixedNow
}

// NewTestPortfolioService creates a PortfolioService over s with the fixed clock.
func NewTestPortfolioService(t *testing.T, s store.Store) *service.PortfolioService {
	t.Helper()

	return service.NewPortfolioService(s).WithClock(FixedClock)
}

// NewTestMarketService creates a MarketService over a mock client with the fixed clock.
func NewTestMarketService(t *testing.T, mockYahoo yahoo.Client) *service.MarketService {
	t.Helper()

	return service.NewMarketService(mockYahoo).WithClock(FixedClock)
}

// NewTestSystemService creates a SystemService over s.
func NewTestSystemService(t *testing.T, s store.Store) *service.SystemService {
	t.Helper()

	return service.NewSystemService(s)
}

// MakeUserID generates a user id shaped like the hash identity mode produces.
func MakeUserID() string {
	return randomHex(32)
}

func randomHex(length int) string {
	return randomFrom("0123456789abcdef", length)
}

func randomFrom(charset string, length int) string {
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
