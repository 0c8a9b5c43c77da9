// Package report runs the full owner KPI pipeline over a ledger:
// classification, addback detection, owner metrics, run-rates, forecast,
// monthly rollup and per-account summary.
package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ownerkpi/internal/accounts"
	"github.com/cleared-dev/ownerkpi/internal/addback"
	"github.com/cleared-dev/ownerkpi/internal/classify"
	"github.com/cleared-dev/ownerkpi/internal/config"
	"github.com/cleared-dev/ownerkpi/internal/forecast"
	"github.com/cleared-dev/ownerkpi/internal/kpi"
	"github.com/cleared-dev/ownerkpi/internal/ledger"
	"github.com/cleared-dev/ownerkpi/internal/logger"
	"github.com/cleared-dev/ownerkpi/internal/metrics"
	"github.com/cleared-dev/ownerkpi/internal/model"
)

// Options are the per-run inputs besides the ledger itself.
type Options struct {
	Config *config.Config
	// Rules are the caller's structured addback rules, usually loaded from
	// the configured rules file.
	Rules []addback.Rule
	// AsOf is the current date. Zero uses the latest dated transaction.
	AsOf time.Time
	// Issues found while loading the ledger, carried into the report.
	Issues []ledger.Issue
}

// Periods echoes the windows a report was computed over.
type Periods struct {
	PeriodStart   string `json:"period_start"`
	RevenueStart  string `json:"revenue_start"`
	AsOf          string `json:"as_of"`
	FiscalYearEnd string `json:"fiscal_year_end"`
}

// LegacyAddIn is the legacy overhead folded into the run-rate basis.
type LegacyAddIn struct {
	Accounts []string        `json:"accounts"`
	Amount   decimal.Decimal `json:"amount"`
}

// AddbackLine is one flagged transaction with its reason trail.
type AddbackLine struct {
	ID      string          `json:"id"`
	Date    string          `json:"date"`
	Account string          `json:"account"`
	Name    string          `json:"name"`
	Memo    string          `json:"memo"`
	Amount  decimal.Decimal `json:"amount"`
	Reason  string          `json:"reason"`
}

// Report is the full pipeline output.
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Business    string    `json:"business"`
	Periods     Periods   `json:"periods"`

	ClassificationCounts map[model.Classification]int `json:"classification_counts"`

	Owner           metrics.OwnerSnapshot `json:"owner"`
	OwnerPeriodDays int                   `json:"owner_period_days"`

	RunRateBasis      metrics.Snapshot `json:"run_rate_basis"`
	RunRatePeriodDays int              `json:"run_rate_period_days"`
	LegacyAddIn       LegacyAddIn      `json:"legacy_addin"`
	MonthlyRunRate    metrics.Snapshot `json:"monthly_run_rate"`

	DaysRemaining   int              `json:"days_remaining"`
	MonthsRemaining decimal.Decimal  `json:"months_remaining"`
	Forecast        metrics.Snapshot `json:"forecast"`

	Monthly  []kpi.Month           `json:"monthly"`
	Addbacks []AddbackLine         `json:"addbacks"`
	Issues   []ledger.Issue        `json:"issues"`
	Accounts []accounts.AccountRow `json:"accounts"`

	// AccountsTotal is the signed sum over Accounts; zero for a balanced ledger.
	AccountsTotal        decimal.Decimal       `json:"accounts_total"`
	UnclassifiedAccounts []accounts.AccountRow `json:"unclassified_accounts"`
	// MissingAccounts are configured addback or add-in accounts with no
	// rows in the owner period.
	MissingAccounts []string `json:"missing_accounts,omitempty"`

	// Transactions is the classified, flagged ledger.
	Transactions []model.Transaction `json:"-"`
}

// Prepare classifies and flags txns according to cfg. It is the first
// half of Build, exposed for commands that only need the flagged table.
func Prepare(txns []model.Transaction, cfg *config.Config, rules []addback.Rule) ([]model.Transaction, error) {
	det, err := addback.NewDetector(addback.Options{
		Rules:        rules,
		CustomTokens: cfg.Addbacks.CustomTokens,
		Accounts:     cfg.Addbacks.Accounts,
		PayrollStart: cfg.PayrollStart(),
	})
	if err != nil {
		return nil, err
	}
	classified := classify.New(cfg.COGSPrefixes()).Classify(txns)
	return det.Detect(classified), nil
}

// Build runs the pipeline. Configuration problems are returned as errors
// before anything is computed; row-level problems end up in Issues.
func Build(ctx context.Context, txns []model.Transaction, opts Options) (*Report, error) {
	log := logger.FromContext(ctx)
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default("")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dates, err := cfg.Dates()
	if err != nil {
		return nil, err
	}

	flagged, err := Prepare(txns, cfg, opts.Rules)
	if err != nil {
		return nil, err
	}
	counts := classify.Counts(flagged)
	log.Debug().
		Int("rows", len(flagged)).
		Int("revenue", counts[model.ClassRevenue]).
		Int("cogs", counts[model.ClassCOGS]).
		Int("overhead", counts[model.ClassOverhead]).
		Int("other_expense", counts[model.ClassOtherExpense]).
		Int("unclassified", counts[model.ClassUnclassified]).
		Msg("classified ledger")

	asOf := model.Day(opts.AsOf)
	if asOf.IsZero() {
		asOf = latestDate(flagged)
	}
	params := metrics.OwnerParams{
		PeriodStart:     dates.PeriodStart,
		RevenueStart:    dates.RevenueStart,
		CurrentDate:     asOf,
		JobCostPrefixes: cfg.JobCostPrefixes(),
	}
	owner, err := metrics.Owner(flagged, params)
	if err != nil {
		return nil, err
	}

	steadyWindow := params.Steady()
	steady := metrics.Aggregate(metrics.InWindow(flagged, steadyWindow))
	addIn := decimal.Zero
	if dates.RevenueStart.After(dates.PeriodStart) {
		legacy := model.Window{Start: dates.PeriodStart, End: dates.RevenueStart.AddDate(0, 0, -1)}
		addIn = metrics.LegacyOverheadAddIn(flagged, legacy, cfg.LegacyAddIn.Accounts)
	}
	basis := metrics.ApplyLegacyOverheadAddIn(steady, addIn)

	runDays := steadyWindow.Days() + 1
	monthly, err := forecast.RunRate(basis, runDays)
	if err != nil {
		return nil, err
	}
	daysRemaining := forecast.DaysRemaining(asOf, dates.FiscalYearEnd)

	period := params.Period()
	summary := accounts.NewSummary(flagged, period, cfg.Addbacks.Accounts)
	missing := missingAccounts(summary, cfg.Addbacks.Accounts, cfg.LegacyAddIn.Accounts)
	for _, a := range missing {
		log.Warn().Str("account", a).Msg("configured account has no rows in the owner period")
	}
	issues := append(append([]ledger.Issue(nil), opts.Issues...), ledger.Check(flagged)...)
	if len(issues) > 0 {
		log.Warn().Int("issues", len(issues)).Msg("ledger has data-quality issues")
	}

	r := &Report{
		RunID:       uuid.New().String(),
		GeneratedAt: time.Now().UTC(),
		Business:    cfg.Business.Name,
		Periods: Periods{
			PeriodStart:   dates.PeriodStart.Format(model.DateFormat),
			RevenueStart:  dates.RevenueStart.Format(model.DateFormat),
			AsOf:          asOf.Format(model.DateFormat),
			FiscalYearEnd: dates.FiscalYearEnd.Format(model.DateFormat),
		},
		ClassificationCounts: counts,
		Owner:                owner,
		OwnerPeriodDays:      period.Days() + 1,
		RunRateBasis:         basis,
		RunRatePeriodDays:    runDays,
		LegacyAddIn: LegacyAddIn{
			Accounts: cfg.LegacyAddIn.Accounts,
			Amount:   addIn,
		},
		MonthlyRunRate:  monthly,
		DaysRemaining:   daysRemaining,
		MonthsRemaining: forecast.MonthsRemaining(daysRemaining),
		Forecast:        forecast.Forecast(owner.Snapshot, monthly, daysRemaining),
		Monthly:         kpi.Monthly(metrics.InWindow(flagged, period), dates.RevenueStart),
		Addbacks:        addbackLines(metrics.InWindow(addback.Flagged(flagged), period)),
		Issues:          issues,
		Transactions:    flagged,
	}
	r.Accounts = summary.All()
	r.AccountsTotal = summary.Total()
	r.UnclassifiedAccounts = summary.ByClassification(model.ClassUnclassified)
	r.MissingAccounts = missing

	log.Info().
		Str("run_id", r.RunID).
		Str("as_of", r.Periods.AsOf).
		Str("revenue", owner.Revenue.StringFixed(2)).
		Str("sde", owner.SDE.StringFixed(2)).
		Msg("report built")
	return r, nil
}

// latestDate returns the most recent transaction date, or today when no
// row is dated.
func latestDate(txns []model.Transaction) time.Time {
	var latest time.Time
	for _, t := range txns {
		if t.Date.After(latest) {
			latest = t.Date
		}
	}
	if latest.IsZero() {
		return model.Day(time.Now())
	}
	return model.Day(latest)
}

func missingAccounts(s *accounts.Summary, lists ...[]string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, a := range list {
			if seen[a] {
				continue
			}
			seen[a] = true
			if _, ok := s.Get(a); !ok {
				out = append(out, a)
			}
		}
	}
	return out
}

func addbackLines(txns []model.Transaction) []AddbackLine {
	lines := make([]AddbackLine, 0, len(txns))
	for _, t := range txns {
		lines = append(lines, AddbackLine{
			ID:      t.ID,
			Date:    t.Date.Format(model.DateFormat),
			Account: t.Account,
			Name:    t.Name,
			Memo:    t.Memo,
			Amount:  t.Amount,
			Reason:  addback.Reason(t),
		})
	}
	return lines
}
