package collector

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "options-collector/internal/errors"
	"options-collector/internal/marketdata"
	"options-collector/internal/models"
	"options-collector/internal/store"
)

func testChain(symbol string, expiry time.Time, strikes ...float64) *models.OptionChain {
	chain := &models.OptionChain{Symbol: symbol, Expiry: expiry}
	for _, strike := range strikes {
		chain.Calls = append(chain.Calls, models.ContractQuote{
			ContractSymbol: fmt.Sprintf("%s%sC%08.0f", symbol, expiry.Format("060102"), strike*1000),
			Kind:           models.KindCall,
			Expiration:     expiry,
			Strike:         strike,
			LastPrice:      3.2,
			ImpliedVol:     0.25,
		})
		chain.Puts = append(chain.Puts, models.ContractQuote{
			ContractSymbol: fmt.Sprintf("%s%sP%08.0f", symbol, expiry.Format("060102"), strike*1000),
			Kind:           models.KindPut,
			Expiration:     expiry,
			Strike:         strike,
			LastPrice:      2.9,
			ImpliedVol:     0.27,
		})
	}
	return chain
}

func newTestCollector(t *testing.T, provider marketdata.Provider, greeks bool) (*Collector, store.OptionStore) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "collector.db")

	open := func() (store.OptionStore, error) {
		return store.Open(dbPath, greeks)
	}
	cfg := Config{
		RiskFreeRate:  0.05,
		GreeksEnabled: greeks,
		PacingDelay:   0,
		PollInterval:  time.Minute,
	}
	c := New(cfg, provider, open, zerolog.Nop())

	verify, err := store.Open(dbPath, greeks)
	require.NoError(t, err)
	t.Cleanup(func() { verify.Close() })
	return c, verify
}

func TestCollectSymbol_PersistsEnrichedBatches(t *testing.T) {
	expiry1 := time.Now().AddDate(0, 1, 0)
	expiry2 := time.Now().AddDate(0, 2, 0)

	provider := marketdata.NewStaticProvider()
	provider.AddChain("AAPL", 192.5, testChain("AAPL", expiry1, 180, 190, 200))
	provider.AddChain("AAPL", 192.5, testChain("AAPL", expiry2, 190))

	c, verify := newTestCollector(t, provider, true)
	res := c.CollectSymbol(context.Background(), "AAPL")

	require.NoError(t, res.Err)
	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, 2, res.Expirations)
	assert.Equal(t, int64(8), res.RowsWritten)

	count, err := verify.RowCount(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int64(8), count)

	records, err := verify.Contracts(context.Background(), "AAPL", store.Filter{})
	require.NoError(t, err)
	for _, rec := range records {
		assert.GreaterOrEqual(t, rec.Greeks.Gamma, 0.0)
		assert.NotZero(t, rec.Greeks.Delta)
	}
}

func TestCollectSymbol_RerunDoublesRowCount(t *testing.T) {
	expiry := time.Now().AddDate(0, 1, 0)
	provider := marketdata.NewStaticProvider()
	provider.AddChain("AAPL", 192.5, testChain("AAPL", expiry, 190, 200))

	c, verify := newTestCollector(t, provider, true)
	ctx := context.Background()

	require.Equal(t, StateDone, c.CollectSymbol(ctx, "AAPL").State)
	require.Equal(t, StateDone, c.CollectSymbol(ctx, "AAPL").State)

	count, err := verify.RowCount(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int64(8), count, "re-run appends new rows under a fresh timestamp")
}

func TestCollectSymbol_NoExpirationsIsSkipNotFailure(t *testing.T) {
	provider := marketdata.NewStaticProvider()
	provider.Spots["XYZ"] = 10.0 // spot available but no listed options

	c, verify := newTestCollector(t, provider, true)
	res := c.CollectSymbol(context.Background(), "XYZ")

	assert.Equal(t, StateSkipped, res.State)
	assert.NoError(t, res.Err)

	count, err := verify.RowCount(context.Background(), "XYZ")
	require.NoError(t, err)
	assert.Zero(t, count, "a skipped symbol writes nothing")
}

func TestCollectSymbol_ZeroIVExcludedWithoutAbortingBatch(t *testing.T) {
	expiry := time.Now().AddDate(0, 1, 0)
	chain := testChain("AAPL", expiry, 190, 200)
	chain.Calls[0].ImpliedVol = 0 // source had no IV

	provider := marketdata.NewStaticProvider()
	provider.AddChain("AAPL", 192.5, chain)

	c, verify := newTestCollector(t, provider, true)
	res := c.CollectSymbol(context.Background(), "AAPL")

	require.Equal(t, StateDone, res.State)
	assert.Equal(t, int64(3), res.RowsWritten)
	assert.Equal(t, 1, res.RowsSkipped)

	count, err := verify.RowCount(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestCollectSymbol_QuotesOnlyGenerationKeepsZeroIVRows(t *testing.T) {
	expiry := time.Now().AddDate(0, 1, 0)
	chain := testChain("AAPL", expiry, 190)
	chain.Calls[0].ImpliedVol = 0

	provider := marketdata.NewStaticProvider()
	provider.AddChain("AAPL", 192.5, chain)

	c, verify := newTestCollector(t, provider, false)
	res := c.CollectSymbol(context.Background(), "AAPL")

	require.Equal(t, StateDone, res.State)
	assert.Equal(t, int64(2), res.RowsWritten)
	assert.Zero(t, res.RowsSkipped, "no pricing inputs needed without enrichment")

	records, err := verify.Contracts(context.Background(), "AAPL", store.Filter{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Zero(t, rec.Greeks)
	}
}

func TestRunCycle_FailureIsolatedPerSymbol(t *testing.T) {
	expiry := time.Now().AddDate(0, 1, 0)
	provider := marketdata.NewStaticProvider()
	provider.AddChain("AAA", 50, testChain("AAA", expiry, 50))
	provider.AddChain("CCC", 70, testChain("CCC", expiry, 70))
	provider.AddChain("BBB", 60, testChain("BBB", expiry, 60))
	provider.FailSymbols["BBB"] = apperrors.ErrRateLimited

	c, verify := newTestCollector(t, provider, true)
	stats := c.RunCycle(context.Background(), []string{"AAA", "BBB", "CCC"})

	assert.Equal(t, 2, stats.Done)
	assert.Equal(t, 1, stats.Failed)
	assert.NotEmpty(t, stats.CycleID)

	ctx := context.Background()
	for _, symbol := range []string{"AAA", "CCC"} {
		count, err := verify.RowCount(ctx, symbol)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count, "%s has full data", symbol)
	}
	count, err := verify.RowCount(ctx, "BBB")
	require.NoError(t, err)
	assert.Zero(t, count, "failed symbol has no partial rows")
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	provider := marketdata.NewStaticProvider()
	c, _ := newTestCollector(t, provider, true)
	c.cfg.PollInterval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, []string{"XYZ"}) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}
