// Package models provides domain models for the options chain collector.
package models

import (
	"time"
)

// OptionKind represents the kind of an option contract.
type OptionKind string

const (
	KindCall OptionKind = "call"
	KindPut  OptionKind = "put"
)

// ContractQuote represents one raw option contract quote as returned by the
// market-data source. Price and size fields may be zero when the source has
// no data for them.
type ContractQuote struct {
	ContractSymbol string
	Kind           OptionKind
	Expiration     time.Time
	Strike         float64
	LastPrice      float64
	Bid            float64
	Ask            float64
	Volume         int64
	OpenInterest   int64
	ImpliedVol     float64
}

// Greeks represents the theoretical sensitivities of an option contract.
type Greeks struct {
	Delta float64
	Gamma float64
	Theta float64
	Vega  float64
	Rho   float64
}

// EnrichedContract is a contract quote extended with computed Greeks and a
// capture timestamp. (ContractSymbol, CapturedAt) is the sole uniqueness key;
// re-capturing the same contract in a later cycle produces a new row.
type EnrichedContract struct {
	ContractQuote
	Greeks     Greeks
	CapturedAt time.Time
}

// OptionChain represents all call and put quotes for one underlying and one
// expiration date.
type OptionChain struct {
	Symbol string
	Expiry time.Time
	Calls  []ContractQuote
	Puts   []ContractQuote
}

// Quotes returns the calls and puts of the chain as a single slice.
func (c *OptionChain) Quotes() []ContractQuote {
	out := make([]ContractQuote, 0, len(c.Calls)+len(c.Puts))
	out = append(out, c.Calls...)
	out = append(out, c.Puts...)
	return out
}

// Snapshot represents the state of an underlying at the start of a symbol's
// processing: the latest spot price and when it was observed.
type Snapshot struct {
	Symbol    string
	SpotPrice float64
	AsOf      time.Time
}
