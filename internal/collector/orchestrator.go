package collector

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// CycleStats summarizes one full sweep of the ticker universe.
type CycleStats struct {
	CycleID     string
	Symbols     int
	Done        int
	Skipped     int
	Failed      int
	RowsWritten int64
	Elapsed     time.Duration
}

// RunCycle processes every symbol in the universe once, in order. A failing
// symbol is logged and abandoned for this cycle; the sweep continues with
// the next symbol. There is no retry within a cycle — the next cycle is the
// retry mechanism.
func (c *Collector) RunCycle(ctx context.Context, universe []string) CycleStats {
	stats := CycleStats{
		CycleID: ulid.Make().String(),
		Symbols: len(universe),
	}
	start := c.clock()
	logger := c.logger.With().Str("cycle", stats.CycleID).Logger()

	for _, symbol := range universe {
		if ctx.Err() != nil {
			break
		}
		logger.Info().Str("symbol", symbol).Msg("processing")

		res := c.CollectSymbol(ctx, symbol)
		switch res.State {
		case StateDone:
			stats.Done++
			stats.RowsWritten += res.RowsWritten
			logger.Info().
				Str("symbol", symbol).
				Int("expirations", res.Expirations).
				Int64("rows", res.RowsWritten).
				Msg("all data saved")
		case StateSkipped:
			stats.Skipped++
		case StateFailed:
			stats.Failed++
			logger.Error().
				Str("symbol", symbol).
				Err(res.Err).
				Msg("symbol abandoned for this cycle")
		}
	}

	stats.Elapsed = c.clock().Sub(start)
	logger.Info().
		Int("done", stats.Done).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed).
		Int64("rows", stats.RowsWritten).
		Dur("elapsed", stats.Elapsed).
		Msg("cycle complete")
	return stats
}

// Run sweeps the universe, waits the configured poll interval and repeats
// until the context is cancelled. The universe is loaded once by the caller
// and held in memory for the life of the process; it is not re-read between
// cycles. An iterative loop replaces unbounded recursive restarts.
func (c *Collector) Run(ctx context.Context, universe []string) error {
	for {
		c.RunCycle(ctx, universe)

		c.logger.Info().
			Dur("interval", c.cfg.PollInterval).
			Msg("waiting before restarting the process")
		if err := wait(ctx, c.cfg.PollInterval); err != nil {
			return err
		}
	}
}
