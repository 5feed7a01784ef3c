// Package collector runs the recurring chain-collection pipeline: fetch,
// enrich, persist, per symbol and per expiration.
package collector

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"options-collector/internal/enrich"
	"options-collector/internal/marketdata"
	"options-collector/internal/models"
	"options-collector/internal/store"
)

// Config holds the collector's run-level settings.
type Config struct {
	RiskFreeRate  float64
	GreeksEnabled bool
	PacingDelay   time.Duration // between expiration fetches for one symbol
	PollInterval  time.Duration // between full cycles
}

// StoreOpener opens a fresh store connection. The collector opens one
// connection per symbol and closes it when the symbol is done, so a
// connection failure aborts only that symbol's remaining work.
type StoreOpener func() (store.OptionStore, error)

// Collector drives the ingestion pipeline. Execution is strictly
// sequential: one symbol, one expiration at a time.
type Collector struct {
	cfg      Config
	provider marketdata.Provider
	open     StoreOpener
	enricher *enrich.Enricher
	logger   zerolog.Logger
	clock    func() time.Time
}

// New creates a Collector.
func New(cfg Config, provider marketdata.Provider, open StoreOpener, logger zerolog.Logger) *Collector {
	return &Collector{
		cfg:      cfg,
		provider: provider,
		open:     open,
		enricher: enrich.New(cfg.RiskFreeRate),
		logger:   logger,
		clock:    time.Now,
	}
}

// State is the terminal state of one symbol's ingestion.
type State string

const (
	StateDone    State = "done"
	StateSkipped State = "skipped" // no expirations; normal for non-optionable underlyings
	StateFailed  State = "failed"
)

// SymbolResult summarizes one symbol's pass through the pipeline.
type SymbolResult struct {
	Symbol      string
	State       State
	Expirations int
	RowsWritten int64
	RowsSkipped int
	Err         error
}

// CollectSymbol runs the full pipeline for one ticker. Every failure is
// captured in the result rather than returned, keeping the blast radius of
// any error inside this symbol. Batches persisted before a mid-symbol
// failure remain durable.
func (c *Collector) CollectSymbol(ctx context.Context, symbol string) SymbolResult {
	res := SymbolResult{Symbol: symbol}
	logger := c.logger.With().Str("symbol", symbol).Logger()

	st, err := c.open()
	if err != nil {
		res.State, res.Err = StateFailed, err
		return res
	}
	defer st.Close()

	expirations, err := c.provider.ListExpirations(ctx, symbol)
	if err != nil {
		res.State, res.Err = StateFailed, err
		return res
	}
	if len(expirations) == 0 {
		res.State = StateSkipped
		logger.Info().Msg("no options data found, skipping")
		return res
	}
	res.Expirations = len(expirations)

	spot, err := c.provider.SpotPrice(ctx, symbol)
	if err != nil {
		res.State, res.Err = StateFailed, err
		return res
	}
	snap := models.Snapshot{Symbol: symbol, SpotPrice: spot, AsOf: c.clock()}

	if err := st.EnsureTable(ctx, symbol); err != nil {
		res.State, res.Err = StateFailed, err
		return res
	}

	for i, expiry := range expirations {
		if i > 0 && c.cfg.PacingDelay > 0 {
			if err := wait(ctx, c.cfg.PacingDelay); err != nil {
				res.State, res.Err = StateFailed, err
				return res
			}
		}

		chain, err := c.provider.FetchChain(ctx, symbol, expiry)
		if err != nil {
			res.State, res.Err = StateFailed, err
			return res
		}

		records, skipped := c.enrichChain(snap, chain)
		for _, skip := range skipped {
			logger.Debug().
				Str("contract", skip.ContractSymbol).
				AnErr("reason", skip.Reason).
				Msg("contract excluded from batch")
		}
		res.RowsSkipped += len(skipped)

		// Each expiration batch is persisted independently and
		// immediately: partial success per symbol, not all-or-nothing.
		if err := st.AppendContracts(ctx, symbol, records); err != nil {
			res.State, res.Err = StateFailed, err
			return res
		}
		res.RowsWritten += int64(len(records))

		logger.Info().
			Str("expiration", expiry.Format("2006-01-02")).
			Int("rows", len(records)).
			Int("excluded", len(skipped)).
			Msg("saved options batch")
	}

	res.State = StateDone
	return res
}

// enrichChain applies the configured schema generation: Greeks enrichment,
// or raw quote passthrough with the shared batch timestamp.
func (c *Collector) enrichChain(snap models.Snapshot, chain *models.OptionChain) ([]models.EnrichedContract, []enrich.Skip) {
	quotes := chain.Quotes()
	if !c.cfg.GreeksEnabled {
		return c.enricher.Raw(chain.Expiry, quotes), nil
	}
	return c.enricher.Batch(snap, chain.Expiry, quotes)
}

// wait sleeps for d or until the context is cancelled.
func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
