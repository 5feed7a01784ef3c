// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	// ErrNotComputable marks a contract whose Greeks are undefined at the
	// model's boundary (non-positive time-to-expiry or zero volatility).
	ErrNotComputable = errors.New("greeks undefined for non-positive time-to-expiry or zero volatility")
	// ErrInvalidInputs marks pricing inputs that are invalid outright
	// (non-positive spot or strike).
	ErrInvalidInputs = errors.New("invalid pricing inputs")

	ErrSpotUnavailable = errors.New("spot price unavailable")
	ErrSymbolNotFound  = errors.New("symbol not found")
	ErrRateLimited     = errors.New("rate limited")

	ErrUniverseInvalid = errors.New("ticker universe file missing or malformed")
	ErrConfigInvalid   = errors.New("invalid configuration")
)

// PricingError reports why one contract was excluded from its batch. It is
// recovered locally: the batch continues without the contract.
type PricingError struct {
	Contract string
	Reason   string
	Err      error
}

func (e *PricingError) Error() string {
	if e.Contract != "" {
		return fmt.Sprintf("pricing %s: %s: %v", e.Contract, e.Reason, e.Err)
	}
	return fmt.Sprintf("pricing: %s: %v", e.Reason, e.Err)
}

func (e *PricingError) Unwrap() error {
	return e.Err
}

// NewPricingError creates a new PricingError.
func NewPricingError(contract, reason string, err error) *PricingError {
	return &PricingError{Contract: contract, Reason: reason, Err: err}
}

// DataError represents a market-data source failure. It is recovered at the
// per-symbol boundary: the symbol is abandoned for this cycle.
type DataError struct {
	Op     string
	Symbol string
	Err    error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("data error [%s] %s: %v", e.Op, e.Symbol, e.Err)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError.
func NewDataError(op, symbol string, err error) *DataError {
	return &DataError{Op: op, Symbol: symbol, Err: err}
}

// StorageError represents a storage connection or write failure. It is
// recovered at the per-symbol boundary; batches persisted before the failure
// remain durable.
type StorageError struct {
	Op     string
	Symbol string
	Err    error
}

func (e *StorageError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("storage error [%s] %s: %v", e.Op, e.Symbol, e.Err)
	}
	return fmt.Sprintf("storage error [%s]: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a new StorageError.
func NewStorageError(op, symbol string, err error) *StorageError {
	return &StorageError{Op: op, Symbol: symbol, Err: err}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
