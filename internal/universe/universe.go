// Package universe loads the ticker universe from an external catalog file.
package universe

import (
	"encoding/json"
	"os"
	"sort"

	apperrors "options-collector/internal/errors"
)

// entry is one catalog record. The catalog maps arbitrary keys ("0", "1",
// "cik_0000320193", ...) to objects carrying at least a ticker field; all
// other fields are ignored.
type entry struct {
	Ticker string `json:"ticker"`
}

// Load reads the catalog at path and returns every ticker it names, ordered
// by catalog key so cycles process symbols in a stable order. A missing or
// malformed file is a fatal startup condition for the collector.
func Load(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrUniverseInvalid, "reading %s: %v", path, err)
	}

	var catalog map[string]entry
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrUniverseInvalid, "parsing %s: %v", path, err)
	}
	if len(catalog) == 0 {
		return nil, apperrors.Wrapf(apperrors.ErrUniverseInvalid, "%s: catalog is empty", path)
	}

	keys := make([]string, 0, len(catalog))
	for key := range catalog {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	tickers := make([]string, 0, len(catalog))
	for _, key := range keys {
		e := catalog[key]
		if e.Ticker == "" {
			return nil, apperrors.Wrapf(apperrors.ErrUniverseInvalid, "%s: entry %q has no ticker field", path, key)
		}
		tickers = append(tickers, e.Ticker)
	}

	return tickers, nil
}
