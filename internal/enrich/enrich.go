// Package enrich turns raw contract quotes into enriched records by running
// the pricing model with inputs derived from a market snapshot.
package enrich

import (
	"time"

	apperrors "options-collector/internal/errors"
	"options-collector/internal/models"
	"options-collector/internal/pricing"
)

// hoursPerYear uses a fixed-length 365-day year; no day-count convention
// beyond this.
const hoursPerYear = 365.0 * 24.0

// Enricher maps one expiration's quotes to enriched records. The risk-free
// rate is a run-level constant, reused across all tickers and expirations.
type Enricher struct {
	RiskFreeRate float64
	Clock        func() time.Time
}

// New creates an Enricher using the wall clock.
func New(riskFreeRate float64) *Enricher {
	return &Enricher{RiskFreeRate: riskFreeRate, Clock: time.Now}
}

// Skip records one quote excluded from a batch and why.
type Skip struct {
	ContractSymbol string
	Reason         error
}

// YearFraction returns the time to expiry in years as of now.
func YearFraction(expiry, now time.Time) float64 {
	return expiry.Sub(now).Hours() / hoursPerYear
}

// Batch produces enriched records for every computable quote in one
// (symbol, expiration) batch. A single capture timestamp and a single
// time-to-expiry are shared by every record in the batch, so calls and puts
// of one cycle carry a coherent uniqueness key. Quotes the pricing model
// rejects are skipped, not failed; output order is not significant.
func (e *Enricher) Batch(snap models.Snapshot, expiry time.Time, quotes []models.ContractQuote) ([]models.EnrichedContract, []Skip) {
	capturedAt := e.Clock()
	yearsToExpiry := YearFraction(expiry, capturedAt)

	records := make([]models.EnrichedContract, 0, len(quotes))
	var skipped []Skip

	for _, q := range quotes {
		greeks, err := pricing.Compute(q.Kind, pricing.Inputs{
			Spot:   snap.SpotPrice,
			Strike: q.Strike,
			Expiry: yearsToExpiry,
			Rate:   e.RiskFreeRate,
			Sigma:  q.ImpliedVol,
		})
		if err != nil {
			skipped = append(skipped, Skip{
				ContractSymbol: q.ContractSymbol,
				Reason:         apperrors.NewPricingError(q.ContractSymbol, "greeks not computable", err),
			})
			continue
		}
		records = append(records, models.EnrichedContract{
			ContractQuote: q,
			Greeks:        greeks,
			CapturedAt:    capturedAt,
		})
	}

	return records, skipped
}

// Raw produces unenriched records for the quotes-only schema generation:
// the same shared capture timestamp, no Greeks computation and therefore no
// skips.
func (e *Enricher) Raw(expiry time.Time, quotes []models.ContractQuote) []models.EnrichedContract {
	capturedAt := e.Clock()
	records := make([]models.EnrichedContract, 0, len(quotes))
	for _, q := range quotes {
		records = append(records, models.EnrichedContract{
			ContractQuote: q,
			CapturedAt:    capturedAt,
		})
	}
	return records
}
