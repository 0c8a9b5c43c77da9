package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ownerkpi/internal/kpi"
	"github.com/cleared-dev/ownerkpi/internal/logger"
	"github.com/cleared-dev/ownerkpi/internal/model"
	"github.com/cleared-dev/ownerkpi/internal/report"
	"github.com/cleared-dev/ownerkpi/internal/runlog"
)

func newReportCommand(opts *rootOptions) *cobra.Command {
	var ledgerPath, asOf, out string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compute owner-period metrics, run-rates and the fiscal-year forecast",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, found, err := opts.loadValid()
			if err != nil {
				return err
			}
			date, err := parseAsOf(asOf)
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

			r, err := report.Build(cmd.Context(), f.Transactions, report.Options{
				Config: cfg,
				Rules:  rules,
				AsOf:   date,
				Issues: f.Issues,
			})
			if err != nil {
				return err
			}
			if err := writeJSON(cmd, out, r); err != nil {
				return err
			}

			if found {
				entry := runlog.Entry{
					Timestamp: r.GeneratedAt,
					Command:   "report",
					RunID:     r.RunID,
					AsOf:      r.Periods.AsOf,
					Input:     ledgerPath,
					Summary: fmt.Sprintf("revenue=%s net_profit=%s sde=%s",
						r.Owner.Revenue.StringFixed(2), r.Owner.NetProfit.StringFixed(2), r.Owner.SDE.StringFixed(2)),
				}
				if err := runlog.Append(opts.projectRoot(), entry); err != nil {
					log := logger.FromContext(cmd.Context())
					log.Warn().Err(err).Msg("run log not updated")
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&ledgerPath, "ledger", "", "general-ledger export (.csv or .xlsx)")
	cmd.Flags().StringVar(&asOf, "as-of", "", "current date YYYY-MM-DD (default latest ledger date)")
	cmd.Flags().StringVar(&out, "out", "", "output JSON path (default stdout)")
	_ = cmd.MarkFlagRequired("ledger")

	return cmd
}

func newMonthlyCommand(opts *rootOptions) *cobra.Command {
	var ledgerPath, out string

	cmd := &cobra.Command{
		Use:   "monthly",
		Short: "Roll the ledger up into monthly KPIs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.loadValid()
			if err != nil {
				return err
			}
			dates, err := cfg.Dates()
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
			months := kpi.Monthly(flagged, dates.RevenueStart)
			log := logger.FromContext(cmd.Context())
			log.Info().Int("months", len(months)).Msg("monthly rollup")
			return writeJSON(cmd, out, months)
		},
	}

	cmd.Flags().StringVar(&ledgerPath, "ledger", "", "general-ledger export (.csv or .xlsx)")
	cmd.Flags().StringVar(&out, "out", "", "output JSON path (default stdout)")
	_ = cmd.MarkFlagRequired("ledger")

	return cmd
}

// parseAsOf parses an optional YYYY-MM-DD flag value. Blank yields zero.
func parseAsOf(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(model.DateFormat, s)
	if err != nil {
		return time.Time{}, model.NewConfigError("as_of", "%q is not YYYY-MM-DD", s)
	}
	return d, nil
}
