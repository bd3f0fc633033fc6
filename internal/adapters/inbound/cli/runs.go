package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openkraft/archlens/internal/adapters/outbound/tui"
)

func newRunsCmd(flags *globalFlags) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "runs <run-id>",
		Short: "Show the recorded checkpoints of a run",
		Long:  "Read the checkpoint journal configured by tracking.journal_file and print the progress of one run.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newServices(flags)
			if err != nil {
				return err
			}
			defer svc.close()

			if svc.journal == nil {
				return errors.New("no checkpoint journal configured (set tracking.journal_file)")
			}
			cps, err := svc.journal.Run(args[0])
			if err != nil {
				return fmt.Errorf("reading journal: %w", err)
			}
			if jsonOut {
				return renderJSON(cmd, cps)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderCheckpoints(args[0], cps))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	return cmd
}
