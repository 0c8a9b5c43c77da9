package commands

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ownerkpi/internal/importer"
	"github.com/cleared-dev/ownerkpi/internal/logger"
	"github.com/cleared-dev/ownerkpi/internal/model"
	"github.com/cleared-dev/ownerkpi/internal/reconcile"
	"github.com/cleared-dev/ownerkpi/internal/report"
	"github.com/cleared-dev/ownerkpi/internal/runlog"
)

// reconcileOutput is the JSON document written by the reconcile command.
type reconcileOutput struct {
	RunID         string                  `json:"run_id"`
	ToleranceDays int                     `json:"date_tolerance_days"`
	AccountFilter string                  `json:"ledger_account_filter,omitempty"`
	Summary       reconcile.Summary       `json:"summary"`
	Result        reconcile.Result        `json:"result"`
	CashVsAccrual *reconcile.CashVsAccrual `json:"cash_vs_accrual,omitempty"`
	// Warnings lists sections that could not be computed.
	Warnings []string `json:"warnings,omitempty"`
}

func newReconcileCommand(opts *rootOptions) *cobra.Command {
	var ledgerPath, bankPath, account, asOf, out string
	var tolerance int

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Match ledger lines against a bank register",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, found, err := opts.loadValid()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("tolerance") {
				tolerance = cfg.Reconciliation.DateToleranceDays
			}
			if !cmd.Flags().Changed("account") {
				account = cfg.Reconciliation.LedgerAccountFilter
			}
			date, err := parseAsOf(asOf)
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
			bank, err := importer.LoadBank(bankPath)
			if err != nil {
				return fmt.Errorf("loading bank register: %w", err)
			}
			log := logger.FromContext(cmd.Context())
			log.Info().Str("file", bankPath).Int("rows", len(bank.Entries)).Msg("bank register loaded")
			for _, issue := range bank.Issues {
				log.Warn().Str("file", bankPath).Msg(issue.String())
			}

			flagged, err := report.Prepare(f.Transactions, cfg, rules)
			if err != nil {
				return err
			}
			ledgerEntries := reconcile.NormalizeLedger(flagged, account)
			if cfg.Reconciliation.NegateLedger {
				ledgerEntries = reconcile.Negate(ledgerEntries)
			}
			bankEntries := reconcile.NormalizeBank(bank.Entries)

			res, err := reconcile.Match(ledgerEntries, bankEntries, tolerance)
			if err != nil {
				return err
			}
			summary := res.Summary()

			doc := reconcileOutput{
				RunID:         uuid.New().String(),
				ToleranceDays: tolerance,
				AccountFilter: account,
				Summary:       summary,
				Result:        res,
			}

			if date.IsZero() {
				date = latestEntry(ledgerEntries, bankEntries)
			}
			window, err := model.NewWindow(dates.PeriodStart, date)
			if err != nil {
				msg := fmt.Sprintf("cash-vs-accrual skipped: %v", err)
				doc.Warnings = append(doc.Warnings, msg)
				log.Warn().Err(err).Msg("cash-vs-accrual skipped")
			} else {
				cva := reconcile.CompareCashAccrual(flagged, bankEntries, window)
				doc.CashVsAccrual = &cva
			}
			log.Info().
				Str("run_id", doc.RunID).
				Int("matched", summary.Matched).
				Int("unmatched_ledger", summary.UnmatchedLedger).
				Int("unmatched_bank", summary.UnmatchedBank).
				Msg("reconciled")
			if err := writeJSON(cmd, out, doc); err != nil {
				return err
			}

			if found {
				entry := runlog.Entry{
					Timestamp: time.Now().UTC(),
					Command:   "reconcile",
					RunID:     doc.RunID,
					AsOf:      asOfLabel(date),
					Input:     ledgerPath + " " + bankPath,
					Summary: fmt.Sprintf("matched=%d unmatched_ledger=%d unmatched_bank=%d",
						summary.Matched, summary.UnmatchedLedger, summary.UnmatchedBank),
				}
				if err := runlog.Append(opts.projectRoot(), entry); err != nil {
					log.Warn().Err(err).Msg("run log not updated")
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&ledgerPath, "ledger", "", "general-ledger export (.csv or .xlsx)")
	cmd.Flags().StringVar(&bankPath, "bank", "", "bank register export (.csv or .xlsx)")
	cmd.Flags().IntVar(&tolerance, "tolerance", reconcile.DefaultDateTolerance, "date tolerance in days")
	cmd.Flags().StringVar(&account, "account", "", "only reconcile ledger accounts containing this text")
	cmd.Flags().StringVar(&asOf, "as-of", "", "end of the cash-vs-accrual window YYYY-MM-DD (default latest date)")
	cmd.Flags().StringVar(&out, "out", "", "output JSON path (default stdout)")
	_ = cmd.MarkFlagRequired("ledger")
	_ = cmd.MarkFlagRequired("bank")

	return cmd
}

func latestEntry(sides ...[]model.Entry) time.Time {
	var latest time.Time
	for _, entries := range sides {
		for _, e := range entries {
			if e.Date.After(latest) {
				latest = e.Date
			}
		}
	}
	return latest
}

func asOfLabel(d time.Time) string {
	if d.IsZero() {
		return ""
	}
	return d.Format(model.DateFormat)
}
