package apperrors

import "errors"

// Storage errors represent failures of the configured portfolio store.
var (
	// ErrStoreNotConfigured indicates that no storage backend, or a backend without
	// credentials, was selected at startup.
	ErrStoreNotConfigured = errors.New("database not configured")

	// ErrStoreUnavailable indicates that the store did not answer a ping.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Market data errors represent failures of the price provider.
var (
	// ErrSymbolNotFound indicates that the provider does not know the symbol.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrNoPriceData indicates that the provider answered but returned no usable prices.
	ErrNoPriceData = errors.New("no price data available")
)

// Validation errors for request input.
var (
	ErrInvalidSymbol   = errors.New("invalid symbol")
	ErrInvalidSnapshot = errors.New("invalid portfolio data")
	ErrEmptyUserID     = errors.New("user ID cannot be empty")
	ErrBodyTooLarge    = errors.New("request body too large")
)

// Operation failure errors are the messages returned to clients when an operation fails.
var (
	ErrFailedToGetPrice        = errors.New("failed to get price")
	ErrFailedToGetHistory      = errors.New("failed to get price history")
	ErrFailedToSavePortfolio   = errors.New("failed to save portfolio")
	ErrFailedToLoadPortfolio   = errors.New("failed to load portfolio")
	ErrFailedToDeletePortfolio = errors.New("failed to delete portfolio")
	ErrFailedToResolveIdentity = errors.New("failed to resolve user identity")
)
