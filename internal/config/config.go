package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/ownerkpi/internal/accounts"
	"github.com/cleared-dev/ownerkpi/internal/model"
)

// FileName is the default configuration file name.
const FileName = "ownerkpi.yaml"

// DefaultRulesFile is where init writes the addback rules list.
const DefaultRulesFile = "rules/addback-rules.json"

// Config represents the top-level ownerkpi.yaml configuration.
type Config struct {
	Business       BusinessConfig       `yaml:"business"`
	Periods        PeriodsConfig        `yaml:"periods"`
	Classification ClassificationConfig `yaml:"classification"`
	Addbacks       AddbacksConfig       `yaml:"addbacks"`
	LegacyAddIn    LegacyAddInConfig    `yaml:"legacy_addin"`
	Reconciliation ReconciliationConfig `yaml:"reconciliation"`
	Logging        LoggingConfig        `yaml:"logging"`
}

// BusinessConfig identifies the business entity.
type BusinessConfig struct {
	Name string `yaml:"name"`
}

// PeriodsConfig bounds the owner period. Dates are YYYY-MM-DD.
type PeriodsConfig struct {
	PeriodStart   string `yaml:"period_start"`    // acquisition date
	RevenueStart  string `yaml:"revenue_start"`   // first day revenue belongs to the owner
	FiscalYearEnd string `yaml:"fiscal_year_end"` // forecast horizon
}

// ClassificationConfig holds the account prefix sets.
type ClassificationConfig struct {
	COGSPrefixes    []string `yaml:"cogs_prefixes"`
	JobCostPrefixes []string `yaml:"job_cost_prefixes"`
}

// AddbacksConfig controls addback detection.
type AddbacksConfig struct {
	RulesFile    string   `yaml:"rules_file"`
	CustomTokens []string `yaml:"custom_tokens"`
	Accounts     []string `yaml:"accounts"`
	PayrollStart string   `yaml:"payroll_start,omitempty"`
}

// LegacyAddInConfig selects legacy-window overhead accounts to fold into
// the steady-window snapshot.
type LegacyAddInConfig struct {
	Accounts []string `yaml:"accounts"`
}

// ReconciliationConfig controls bank matching.
type ReconciliationConfig struct {
	DateToleranceDays   int    `yaml:"date_tolerance_days"`
	LedgerAccountFilter string `yaml:"ledger_account_filter"`
	NegateLedger        bool   `yaml:"negate_ledger"`
}

// LoggingConfig sets the default log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Dates are the parsed period boundaries.
type Dates struct {
	PeriodStart   time.Time
	RevenueStart  time.Time
	FiscalYearEnd time.Time
}

// Load reads an ownerkpi.yaml file from disk. Keys the file omits keep
// their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(businessName string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name: businessName,
		},
		Periods: PeriodsConfig{
			PeriodStart:   "2025-07-01",
			RevenueStart:  "2025-08-01",
			FiscalYearEnd: "2026-06-30",
		},
		Classification: ClassificationConfig{
			COGSPrefixes:    accounts.DefaultCOGSPrefixes().Sorted(),
			JobCostPrefixes: accounts.DefaultJobCostPrefixes().Sorted(),
		},
		Addbacks: AddbacksConfig{
			RulesFile:    DefaultRulesFile,
			CustomTokens: []string{},
			Accounts:     []string{},
			PayrollStart: "2025-11-15",
		},
		LegacyAddIn: LegacyAddInConfig{
			Accounts: []string{},
		},
		Reconciliation: ReconciliationConfig{
			DateToleranceDays: 14,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks every field the pipeline depends on and returns all
// problems joined. Each unwraps to model.ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error

	if _, err := c.Dates(); err != nil {
		errs = append(errs, err)
	}
	if s := strings.TrimSpace(c.Addbacks.PayrollStart); s != "" {
		if _, err := parseDate("addbacks.payroll_start", s); err != nil {
			errs = append(errs, err)
		}
	}
	if err := checkPrefixes("classification.cogs_prefixes", c.Classification.COGSPrefixes); err != nil {
		errs = append(errs, err)
	}
	if err := checkPrefixes("classification.job_cost_prefixes", c.Classification.JobCostPrefixes); err != nil {
		errs = append(errs, err)
	}
	if c.Reconciliation.DateToleranceDays < 0 {
		errs = append(errs, model.NewConfigError("reconciliation.date_tolerance_days", "must be >= 0, got %d", c.Reconciliation.DateToleranceDays))
	}
	return errors.Join(errs...)
}

// Dates parses the period boundaries and checks their order.
func (c *Config) Dates() (Dates, error) {
	var d Dates
	var err error
	if d.PeriodStart, err = parseDate("periods.period_start", c.Periods.PeriodStart); err != nil {
		return Dates{}, err
	}
	if d.RevenueStart, err = parseDate("periods.revenue_start", c.Periods.RevenueStart); err != nil {
		return Dates{}, err
	}
	if d.FiscalYearEnd, err = parseDate("periods.fiscal_year_end", c.Periods.FiscalYearEnd); err != nil {
		return Dates{}, err
	}
	if d.RevenueStart.Before(d.PeriodStart) {
		return Dates{}, model.NewConfigError("periods.revenue_start", "%s is before period_start %s",
			c.Periods.RevenueStart, c.Periods.PeriodStart)
	}
	if d.FiscalYearEnd.Before(d.RevenueStart) {
		return Dates{}, model.NewConfigError("periods.fiscal_year_end", "%s is before revenue_start %s",
			c.Periods.FiscalYearEnd, c.Periods.RevenueStart)
	}
	return d, nil
}

// PayrollStart returns the configured payroll rule start, or zero for the
// built-in default.
func (c *Config) PayrollStart() time.Time {
	d, err := parseDate("addbacks.payroll_start", c.Addbacks.PayrollStart)
	if err != nil {
		return time.Time{}
	}
	return d
}

// COGSPrefixes returns the configured COGS prefix set.
func (c *Config) COGSPrefixes() accounts.PrefixSet {
	return accounts.NewPrefixSet(c.Classification.COGSPrefixes...)
}

// JobCostPrefixes returns the configured job-cost prefix set.
func (c *Config) JobCostPrefixes() accounts.PrefixSet {
	return accounts.NewPrefixSet(c.Classification.JobCostPrefixes...)
}

// RulesPath resolves the addback rules file against the directory holding
// the config file.
func (c *Config) RulesPath(configPath string) string {
	p := c.Addbacks.RulesFile
	if p == "" {
		p = DefaultRulesFile
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(configPath), p)
}

func parseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, model.NewConfigError(field, "date is required")
	}
	d, err := time.Parse(model.DateFormat, s)
	if err != nil {
		return time.Time{}, model.NewConfigError(field, "%q is not YYYY-MM-DD", s)
	}
	return d, nil
}

func checkPrefixes(field string, prefixes []string) error {
	if len(prefixes) == 0 {
		return model.NewConfigError(field, "at least one prefix is required")
	}
	for _, p := range prefixes {
		p = strings.TrimSpace(p)
		if p == "" {
			return model.NewConfigError(field, "blank prefix")
		}
		for _, r := range p {
			if r < '0' || r > '9' {
				return model.NewConfigError(field, "prefix %q is not numeric", p)
			}
		}
	}
	return nil
}
