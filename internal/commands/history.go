package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ownerkpi/internal/runlog"
)

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	var command, since, runID string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past report and reconcile runs from the project run log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := runlog.Read(opts.projectRoot())
			if err != nil {
				return err
			}

			if runID != "" {
				e, ok := runlog.Find(entries, runID)
				if !ok {
					return fmt.Errorf("run %s not found in %s", runID, runlog.File)
				}
				return writeJSON(cmd, "", e)
			}

			from, err := parseAsOf(since)
			if err != nil {
				return err
			}
			return writeJSON(cmd, "", runlog.Filter(entries, runlog.Query{
				Command: command,
				Since:   from,
				Limit:   limit,
			}))
		},
	}

	cmd.Flags().StringVar(&command, "command", "", "only runs of this command (report, reconcile)")
	cmd.Flags().StringVar(&since, "since", "", "only runs on or after YYYY-MM-DD")
	cmd.Flags().IntVar(&limit, "limit", 0, "most recent N runs (0 = all)")
	cmd.Flags().StringVar(&runID, "run-id", "", "show a single run")

	return cmd
}
