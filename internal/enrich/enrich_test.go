package enrich

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "options-collector/internal/errors"
	"options-collector/internal/models"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testQuotes(expiry time.Time) []models.ContractQuote {
	return []models.ContractQuote{
		{ContractSymbol: "AAPL240621C00190000", Kind: models.KindCall, Expiration: expiry, Strike: 190, LastPrice: 5.4, ImpliedVol: 0.25},
		{ContractSymbol: "AAPL240621P00190000", Kind: models.KindPut, Expiration: expiry, Strike: 190, LastPrice: 4.8, ImpliedVol: 0.27},
	}
}

func TestBatch_SharedTimestampAndComputedGreeks(t *testing.T) {
	now := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)
	expiry := now.AddDate(0, 3, 0)

	e := New(0.05)
	e.Clock = fixedClock(now)

	snap := models.Snapshot{Symbol: "AAPL", SpotPrice: 192.5, AsOf: now}
	records, skipped := e.Batch(snap, expiry, testQuotes(expiry))

	require.Len(t, records, 2)
	assert.Empty(t, skipped)

	for _, rec := range records {
		assert.Equal(t, now, rec.CapturedAt, "all records in one batch share a capture timestamp")
		assert.NotZero(t, rec.Greeks.Delta)
		assert.Greater(t, rec.Greeks.Gamma, 0.0)
		assert.Greater(t, rec.Greeks.Vega, 0.0)
	}
	assert.Greater(t, records[0].Greeks.Delta, 0.0, "call delta positive")
	assert.Less(t, records[1].Greeks.Delta, 0.0, "put delta negative")
}

func TestBatch_SkipsZeroIVWithoutAbortingSiblings(t *testing.T) {
	now := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)
	expiry := now.AddDate(0, 1, 0)

	e := New(0.05)
	e.Clock = fixedClock(now)

	quotes := testQuotes(expiry)
	quotes[0].ImpliedVol = 0 // source had no IV for this contract

	snap := models.Snapshot{Symbol: "AAPL", SpotPrice: 192.5, AsOf: now}
	records, skipped := e.Batch(snap, expiry, quotes)

	require.Len(t, records, 1)
	assert.Equal(t, "AAPL240621P00190000", records[0].ContractSymbol)
	require.Len(t, skipped, 1)
	assert.Equal(t, "AAPL240621C00190000", skipped[0].ContractSymbol)
	assert.ErrorIs(t, skipped[0].Reason, apperrors.ErrNotComputable)
}

func TestBatch_ExpiredBatchSkipsEverything(t *testing.T) {
	now := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)
	expiry := now.Add(-time.Hour) // already expired

	e := New(0.05)
	e.Clock = fixedClock(now)

	snap := models.Snapshot{Symbol: "AAPL", SpotPrice: 192.5, AsOf: now}
	records, skipped := e.Batch(snap, expiry, testQuotes(expiry))

	assert.Empty(t, records)
	assert.Len(t, skipped, 2)
	for _, s := range skipped {
		assert.ErrorIs(t, s.Reason, apperrors.ErrNotComputable)
	}
}

func TestRaw_NoGreeksSharedTimestamp(t *testing.T) {
	now := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)
	expiry := now.AddDate(0, 1, 0)

	e := New(0.05)
	e.Clock = fixedClock(now)

	quotes := testQuotes(expiry)
	quotes[0].ImpliedVol = 0 // not a problem without enrichment

	records := e.Raw(expiry, quotes)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, now, rec.CapturedAt)
		assert.Zero(t, rec.Greeks)
	}
}

func TestYearFraction(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	half := now.Add(time.Duration(365*24/2) * time.Hour)
	assert.InDelta(t, 0.5, YearFraction(half, now), 1e-9)
	assert.Negative(t, YearFraction(now.Add(-24*time.Hour), now))
}
