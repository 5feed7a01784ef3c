// Package marketdata provides market-data source interfaces and
// implementations.
package marketdata

import (
	"context"
	"time"

	"options-collector/internal/models"
)

// Provider defines the market-data capability the collector consumes. Any
// call may fail or return empty data; callers treat absence as a normal,
// non-fatal signal for that symbol.
type Provider interface {
	// ListExpirations returns the available expiration dates for a symbol,
	// in ascending order. An empty slice means the underlying has no listed
	// options and is a skip, not an error.
	ListExpirations(ctx context.Context, symbol string) ([]time.Time, error)

	// FetchChain returns the full call/put chain for one expiration.
	FetchChain(ctx context.Context, symbol string, expiry time.Time) (*models.OptionChain, error)

	// SpotPrice returns the latest close of the underlying.
	SpotPrice(ctx context.Context, symbol string) (float64, error)
}
