package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/apperrors"
)

// Common validation errors
var (
	ErrInvalidUUID = fmt.Errorf("invalid UUID format")
)

// symbolPattern accepts tickers such as AAPL, BRK.B, ^GSPC, EURUSD=X and 0700.HK.
var symbolPattern = regexp.MustCompile(`^[A-Z0-9.\-^=]{1,20}$`)

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}

// NormalizeSymbol trims and upper-cases a ticker symbol and validates its characters.
func NormalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if !symbolPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidSymbol, symbol)
	}
	return s, nil
}
