package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ownerkpi/internal/addback"
	"github.com/cleared-dev/ownerkpi/internal/buildinfo"
	"github.com/cleared-dev/ownerkpi/internal/config"
	"github.com/cleared-dev/ownerkpi/internal/importer"
	"github.com/cleared-dev/ownerkpi/internal/logger"
)

// Environment variables that supply flag defaults.
const (
	EnvConfig   = "OWNERKPI_CONFIG"
	EnvLogLevel = "OWNERKPI_LOG_LEVEL"
)

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "ownerkpi",
		Short:   "Owner KPIs from a general-ledger export",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := opts.logLevel
			if level == "" {
				if cfg, _, err := opts.load(); err == nil {
					level = cfg.Logging.Level
				}
			}
			var log zerolog.Logger
			switch strings.ToLower(opts.logFormat) {
			case "", "console":
				log = logger.NewConsole(cmd.ErrOrStderr(), level)
			case "json":
				log = logger.NewWithWriter(cmd.ErrOrStderr(), level)
			default:
				return fmt.Errorf("unknown --log-format %q (console or json)", opts.logFormat)
			}
			log = logger.WithFields(log, map[string]any{"command": cmd.Name()})
			cmd.SetContext(logger.WithContext(cmd.Context(), log))
			return nil
		},
	}

	configDefault := os.Getenv(EnvConfig)
	if configDefault == "" {
		configDefault = config.FileName
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", configDefault, "path to "+config.FileName+" (env "+EnvConfig+")")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", os.Getenv(EnvLogLevel), "debug, info, warn or error (env "+EnvLogLevel+")")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "console", "console or json")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newClassifyCommand(opts))
	rootCmd.AddCommand(newReportCommand(opts))
	rootCmd.AddCommand(newMonthlyCommand(opts))
	rootCmd.AddCommand(newReconcileCommand(opts))
	rootCmd.AddCommand(newRulesCommand(opts))
	rootCmd.AddCommand(newHistoryCommand(opts))

	return rootCmd
}

// load reads the configured ownerkpi.yaml. A missing file yields the
// defaults and found=false.
func (o *rootOptions) load() (cfg *config.Config, found bool, err error) {
	cfg, err = config.Load(o.configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(""), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

// loadValid is load followed by Config.Validate.
func (o *rootOptions) loadValid() (*config.Config, bool, error) {
	cfg, found, err := o.load()
	if err != nil {
		return nil, false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, false, fmt.Errorf("invalid config %s: %w", o.configPath, err)
	}
	return cfg, found, nil
}

// projectRoot is the directory holding the config file.
func (o *rootOptions) projectRoot() string {
	return filepath.Dir(o.configPath)
}

// rules loads the addback rules file named by cfg, or the file override
// when set.
func (o *rootOptions) rules(cfg *config.Config, override string) ([]addback.Rule, string, error) {
	path := override
	if path == "" {
		path = cfg.RulesPath(o.configPath)
	}
	rules, err := addback.LoadRules(path)
	if err != nil {
		return nil, path, err
	}
	return rules, path, nil
}

func loadLedger(cmd *cobra.Command, path string) (*importer.LedgerFile, error) {
	if path == "" {
		return nil, errors.New("--ledger is required")
	}
	f, err := importer.LoadLedger(path)
	if err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}
	log := logger.FromContext(cmd.Context())
	log.Info().
		Str("file", path).
		Int("rows", len(f.Transactions)).
		Int("header_row", f.HeaderRow).
		Msg("ledger loaded")
	for _, issue := range f.Issues {
		log.Warn().Str("file", path).Msg(issue.String())
	}
	return f, nil
}

// writeJSON writes v as indented JSON to out, or to the command's stdout
// when out is empty.
func writeJSON(cmd *cobra.Command, out string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	data = append(data, '\n')
	if out == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	return nil
}
