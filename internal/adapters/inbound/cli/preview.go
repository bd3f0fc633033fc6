package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openkraft/archlens/internal/adapters/outbound/checksum"
	"github.com/openkraft/archlens/internal/adapters/outbound/tui"
)

func newPreviewCmd(flags *globalFlags) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "preview <archive-a> <archive-b>",
		Short: "Compare two local archives by size and checksum",
		Long: "Compute the size and checksum of two local archives and report the size " +
			"delta and whether the checksums match. Nothing is unpacked.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			metaA, err := checksum.File(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			metaB, err := checksum.File(args[1])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[1], err)
			}

			svc, err := newServices(flags)
			if err != nil {
				return err
			}
			defer svc.close()

			preview := svc.pipeline.PreviewComparison(metaA, metaB)
			if jsonOut {
				return renderJSON(cmd, preview)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderPreview(preview))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	return cmd
}
