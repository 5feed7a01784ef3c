package utils

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// For any finite amount, FormatPrice should:
// 1. Have exactly 2 decimal places
// 2. Group the integer part in threes
// 3. Preserve the numeric value when parsed back
func TestProperty_PriceFormatting(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("FormatPrice round-trips through ParseFloat", prop.ForAll(
		func(amount float64) bool {
			if math.IsNaN(amount) || math.IsInf(amount, 0) || math.Abs(amount) > 1e12 {
				return true
			}

			formatted := FormatPrice(amount)

			parts := strings.Split(formatted, ".")
			if len(parts) != 2 || len(parts[1]) != 2 {
				t.Logf("Expected 2 decimal places for %f, got %s", amount, formatted)
				return false
			}

			for _, group := range strings.Split(strings.TrimPrefix(parts[0], "-"), ",")[1:] {
				if len(group) != 3 {
					t.Logf("Expected groups of 3 for %f, got %s", amount, formatted)
					return false
				}
			}

			parsed, err := strconv.ParseFloat(strings.ReplaceAll(formatted, ",", ""), 64)
			if err != nil {
				t.Logf("Failed to parse %s back: %v", formatted, err)
				return false
			}
			return math.Abs(parsed-amount) < 0.005+math.Abs(amount)*1e-9
		},
		gen.Float64Range(-1e12, 1e12),
	))

	properties.Property("FormatQuantity preserves digits", prop.ForAll(
		func(qty int64) bool {
			if qty == math.MinInt64 {
				return true
			}
			formatted := FormatQuantity(qty)
			parsed, err := strconv.ParseInt(strings.ReplaceAll(formatted, ",", ""), 10, 64)
			return err == nil && parsed == qty
		},
		gen.Int64(),
	))

	properties.TestingRun(t)
}
