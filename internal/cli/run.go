package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"options-collector/internal/config"
	"options-collector/internal/universe"
)

// newRunCmd creates the foreground collection loop command.
func newRunCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the collection loop until interrupted",
		Long: `Run the recurring collection loop in the foreground.

Each cycle sweeps the full ticker universe, then the collector sleeps for
the configured poll interval before starting over. Stop with Ctrl-C.`,
		Example: `  chains run
  chains run --debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tickers, err := loadUniverse(app)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app.Logger.Info().
				Int("symbols", len(tickers)).
				Dur("poll_interval", app.Config.Collector.PollInterval).
				Msg("starting collection loop")

			err = newCollector(app).Run(ctx, tickers)
			if errors.Is(err, context.Canceled) {
				app.Logger.Info().Msg("collection loop stopped")
				return nil
			}
			return err
		},
	}
}

// newOnceCmd creates the single-cycle command.
func newOnceCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single collection cycle and exit",
		Example: `  chains once
  chains once --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tickers, err := loadUniverse(app)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			stats := newCollector(app).RunCycle(ctx, tickers)

			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(stats)
			}
			output.Bold("Cycle %s\n", stats.CycleID)
			output.Printf("  symbols:  %d\n", stats.Symbols)
			output.Printf("  done:     %d\n", stats.Done)
			output.Printf("  skipped:  %d\n", stats.Skipped)
			if stats.Failed > 0 {
				output.Error("  failed:   %d\n", stats.Failed)
			} else {
				output.Printf("  failed:   %d\n", stats.Failed)
			}
			output.Printf("  rows:     %d\n", stats.RowsWritten)
			output.Printf("  elapsed:  %s\n", stats.Elapsed.Round(time.Millisecond))
			return nil
		},
	}
}

// loadUniverse reads the ticker catalog, creating a starter catalog when the
// configured file does not exist yet.
func loadUniverse(app *App) ([]string, error) {
	path := app.Config.Collector.UniverseFile
	if _, err := os.Stat(path); os.IsNotExist(err) {
		app.Logger.Warn().Str("path", path).Msg("universe file missing, writing starter catalog")
		if err := config.CreateTemplateUniverse(path); err != nil {
			return nil, err
		}
	}
	return universe.Load(path)
}
