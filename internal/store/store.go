// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"options-collector/internal/models"
)

// OptionStore defines the append-only persistence contract for enriched
// option rows. One logical table exists per ticker symbol; rows are never
// updated or deleted, and (contract symbol, capture timestamp) is the
// primary key.
type OptionStore interface {
	// EnsureTable creates the symbol's table if it does not exist yet.
	EnsureTable(ctx context.Context, symbol string) error

	// AppendContracts inserts one batch of rows for a symbol. The batch is
	// written in a single transaction; a duplicate (contract symbol,
	// capture timestamp) pair fails the batch.
	AppendContracts(ctx context.Context, symbol string, records []models.EnrichedContract) error

	// Contracts reads rows back for verification and the show command.
	Contracts(ctx context.Context, symbol string, filter Filter) ([]models.EnrichedContract, error)

	// RowCount returns the number of rows stored for a symbol. A symbol
	// with no table has zero rows.
	RowCount(ctx context.Context, symbol string) (int64, error)

	// Symbols lists the symbols that have a table in this store.
	Symbols(ctx context.Context) ([]string, error)

	// Lifecycle
	Close() error
}

// Filter narrows a Contracts query.
type Filter struct {
	Kind       models.OptionKind
	Expiration time.Time
	Since      time.Time
	Limit      int
}
