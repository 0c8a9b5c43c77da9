package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ownerkpi/internal/addback"
	"github.com/cleared-dev/ownerkpi/internal/classify"
	"github.com/cleared-dev/ownerkpi/internal/ledger"
	"github.com/cleared-dev/ownerkpi/internal/logger"
	"github.com/cleared-dev/ownerkpi/internal/model"
	"github.com/cleared-dev/ownerkpi/internal/report"
)

func newClassifyCommand(opts *rootOptions) *cobra.Command {
	var ledgerPath, out string

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Write the classified and addback-flagged ledger as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.loadValid()
			if err != nil {
				return err
			}
			rules, _, err := opts.rules(cfg, "")
			if err != nil {
				return err
			}
			f, err := loadLedger(cmd, ledgerPath)
			if err != nil {
				return err
			}
			flagged, err := report.Prepare(f.Transactions, cfg, rules)
			if err != nil {
				return err
			}

			counts := classify.Counts(flagged)
			log := logger.FromContext(cmd.Context())
			log.Info().
				Int("revenue", counts[model.ClassRevenue]).
				Int("cogs", counts[model.ClassCOGS]).
				Int("overhead", counts[model.ClassOverhead]).
				Int("other_expense", counts[model.ClassOtherExpense]).
				Int("unclassified", counts[model.ClassUnclassified]).
				Int("addbacks", len(addback.Flagged(flagged))).
				Msg("classified")

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				file, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("creating %s: %w", out, err)
				}
				defer file.Close()
				w = file
			}
			if err := ledger.WriteTransactions(w, flagged); err != nil {
				return fmt.Errorf("writing classified ledger: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&ledgerPath, "ledger", "", "general-ledger export (.csv or .xlsx)")
	cmd.Flags().StringVar(&out, "out", "", "output CSV path (default stdout)")
	_ = cmd.MarkFlagRequired("ledger")

	return cmd
}
