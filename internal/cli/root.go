// Package cli provides the command-line interface for the options collector.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"options-collector/internal/collector"
	"options-collector/internal/config"
	"options-collector/internal/logging"
	"options-collector/internal/marketdata"
	"options-collector/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2024-06-01"
)

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Provider marketdata.Provider
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	switch cfg.Collector.Provider {
	case "static":
		app.Provider = marketdata.NewStaticProvider()
	default:
		app.Provider = marketdata.NewYahooProvider(logger)
	}

	rootCmd := &cobra.Command{
		Use:   "chains",
		Short: "Options chain collector with Black-Scholes Greeks",
		Long: `chains is a recurring options-chain collector.

It sweeps a configurable ticker universe, fetches full options chains per
expiration, enriches each contract with Black-Scholes Greeks and appends
the results to per-symbol SQLite tables for later analysis.

Use 'chains help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/options-collector)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newOnceCmd(app))
	rootCmd.AddCommand(newShowCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
				return
			}
			output.Printf("chains %s (built %s)\n", Version, BuildDate)
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			c := app.Config.Collector
			output.Bold("Collector\n")
			output.Printf("  universe_file:   %s\n", c.UniverseFile)
			output.Printf("  database_path:   %s\n", c.DatabasePath)
			output.Printf("  provider:        %s\n", c.Provider)
			output.Printf("  risk_free_rate:  %.4f\n", c.RiskFreeRate)
			output.Printf("  poll_interval:   %s\n", c.PollInterval)
			output.Printf("  pacing_delay:    %s\n", c.PacingDelay)
			output.Printf("  greeks_enabled:  %v\n", c.GreeksEnabled)
			output.Bold("Logging\n")
			output.Printf("  level:           %s\n", app.Config.Logging.Level)
			output.Printf("  console:         %v\n", app.Config.Logging.Console)
			output.Printf("  file:            %v\n", app.Config.Logging.File)
			return nil
		},
	}
}

// newCollector wires a Collector from the app configuration.
func newCollector(app *App) *collector.Collector {
	cfg := collector.Config{
		RiskFreeRate:  app.Config.Collector.RiskFreeRate,
		GreeksEnabled: app.Config.Collector.GreeksEnabled,
		PacingDelay:   app.Config.Collector.PacingDelay,
		PollInterval:  app.Config.Collector.PollInterval,
	}
	open := func() (store.OptionStore, error) {
		return store.Open(app.Config.Collector.DatabasePath, app.Config.Collector.GreeksEnabled)
	}
	return collector.New(cfg, app.Provider, open, app.Logger)
}

// Execute loads configuration, builds the command tree and runs it.
func Execute() error {
	cobra.EnableCommandSorting = false

	configDir := persistentConfigDir()
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := logging.NewLoggerWithConfig(logging.LogConfig{
		Level:      cfg.Logging.Level,
		Console:    cfg.Logging.Console,
		File:       cfg.Logging.File,
		FilePath:   cfg.Logging.FilePath,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
	})

	return NewRootCmd(cfg, logger).Execute()
}

// persistentConfigDir pre-parses --config from the arguments so the
// configuration can be loaded before the command tree exists.
func persistentConfigDir() string {
	args := os.Args[1:]
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	return ""
}
