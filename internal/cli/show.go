package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"options-collector/internal/models"
	"options-collector/internal/store"
	"options-collector/pkg/utils"
)

// newShowCmd creates the read-back command for collected data.
func newShowCmd(app *App) *cobra.Command {
	var (
		symbol string
		kind   string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show collected contracts",
		Long: `Show collected option contracts from the database.

Without --symbol, lists the symbols that have a collection table. With
--symbol, prints the most recently captured contracts for that symbol.`,
		Example: `  chains show
  chains show --symbol AAPL --limit 20
  chains show --symbol AAPL --kind put --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := cmd.Context()

			st, err := store.Open(app.Config.Collector.DatabasePath, app.Config.Collector.GreeksEnabled)
			if err != nil {
				return err
			}
			defer st.Close()

			if symbol == "" {
				symbols, err := st.Symbols(ctx)
				if err != nil {
					return err
				}
				if output.IsJSON() {
					return output.JSON(symbols)
				}
				if len(symbols) == 0 {
					output.Dim("no collected symbols yet\n")
					return nil
				}
				for _, s := range symbols {
					count, err := st.RowCount(ctx, s)
					if err != nil {
						return err
					}
					output.Printf("%-8s %d rows\n", s, count)
				}
				return nil
			}

			filter := store.Filter{Limit: limit}
			switch kind {
			case "":
			case "call":
				filter.Kind = models.KindCall
			case "put":
				filter.Kind = models.KindPut
			default:
				return fmt.Errorf("invalid kind: %s (must be 'call' or 'put')", kind)
			}

			records, err := st.Contracts(ctx, symbol, filter)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(records)
			}
			if len(records) == 0 {
				output.Dim("no contracts for %s\n", symbol)
				return nil
			}

			greeks := app.Config.Collector.GreeksEnabled
			if greeks {
				output.Bold("%-24s %-4s %-11s %10s %9s %8s %8s  %s\n",
					"CONTRACT", "KIND", "EXPIRY", "STRIKE", "LAST", "IV", "DELTA", "CAPTURED")
			} else {
				output.Bold("%-24s %-4s %-11s %10s %9s %8s  %s\n",
					"CONTRACT", "KIND", "EXPIRY", "STRIKE", "LAST", "IV", "CAPTURED")
			}
			for _, rec := range records {
				if greeks {
					output.Printf("%-24s %-4s %-11s %10s %9s %7.1f%% %8.4f  %s\n",
						rec.ContractSymbol, rec.Kind,
						rec.Expiration.Format("2006-01-02"),
						utils.FormatPrice(rec.Strike),
						utils.FormatPrice(rec.LastPrice),
						rec.ImpliedVol*100,
						rec.Greeks.Delta,
						rec.CapturedAt.Format("2006-01-02 15:04"))
				} else {
					output.Printf("%-24s %-4s %-11s %10s %9s %7.1f%%  %s\n",
						rec.ContractSymbol, rec.Kind,
						rec.Expiration.Format("2006-01-02"),
						utils.FormatPrice(rec.Strike),
						utils.FormatPrice(rec.LastPrice),
						rec.ImpliedVol*100,
						rec.CapturedAt.Format("2006-01-02 15:04"))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "underlying symbol to show")
	cmd.Flags().StringVar(&kind, "kind", "", "filter by contract kind: call or put")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum rows to print")
	return cmd
}
