package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Options Collector Configuration

[collector]
# Path to the ticker universe catalog (JSON)
universe_file = "company_tickers.json"
# Path to the SQLite database file
database_path = "options_database.db"
# Market data provider: "yahoo" or "static"
provider = "yahoo"
# Annualized risk-free rate used for Greeks
risk_free_rate = 0.05
# Wait between full collection cycles
poll_interval = "10m"
# Wait between expiration fetches for one symbol
pacing_delay = "1s"
# Compute and store Greeks columns
greeks_enabled = true

[logging]
# Log level: debug, info, warn, error
level = "info"
# Log to console
console = true
# Log to rotating file
file = false
file_path = "logs/collector.log"
# Rotation limits
max_size = 100
max_backups = 7
max_age = 30
`

const universeTemplate = `{
  "0": {"ticker": "AAPL"},
  "1": {"ticker": "MSFT"},
  "2": {"ticker": "SPY"}
}
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}

// CreateTemplateUniverse writes a starter ticker catalog so a fresh install
// has something to collect.
func CreateTemplateUniverse(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating universe directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(universeTemplate), 0644); err != nil {
		return fmt.Errorf("writing universe template: %w", err)
	}
	return nil
}
