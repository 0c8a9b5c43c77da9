package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ownerkpi/internal/addback"
)

func newRulesCommand(opts *rootOptions) *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect addback rules",
	}
	rulesCmd.AddCommand(newRulesListCommand(opts))
	rulesCmd.AddCommand(newRulesValidateCommand(opts))
	return rulesCmd
}

func newRulesListCommand(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the effective rule list, built-in rules first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			det, _, err := opts.detector(file)
			if err != nil {
				return err
			}
			data, err := addback.MarshalRules(det.Rules())
			if err != nil {
				return err
			}
			if _, err := cmd.OutOrStdout().Write(data); err != nil {
				return err
			}
			if tokens := det.Tokens(); len(tokens) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "token matching active: %v\n", tokens)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "rules file (default from config)")
	return cmd
}

func newRulesValidateCommand(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the addback rules file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			det, path, err := opts.detector(file)
			if err != nil {
				return err
			}
			builtIn := len(addback.DefaultRules(time.Time{}))
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rules OK (%d built-in)\n",
				path, len(det.Rules()), builtIn)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "rules file (default from config)")
	return cmd
}

// detector builds the addback detector the pipeline would use.
func (o *rootOptions) detector(file string) (*addback.Detector, string, error) {
	cfg, _, err := o.loadValid()
	if err != nil {
		return nil, "", err
	}
	rules, path, err := o.rules(cfg, file)
	if err != nil {
		return nil, path, err
	}
	det, err := addback.NewDetector(addback.Options{
		Rules:        rules,
		CustomTokens: cfg.Addbacks.CustomTokens,
		Accounts:     cfg.Addbacks.Accounts,
		PayrollStart: cfg.PayrollStart(),
	})
	if err != nil {
		return nil, path, fmt.Errorf("%s: %w", path, err)
	}
	return det, path, nil
}
