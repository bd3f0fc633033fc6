package cli

import (
	"github.com/spf13/cobra"

	"github.com/openkraft/archlens/internal/adapters/outbound/tui"
	"github.com/openkraft/archlens/internal/domain"
)

func newCompareCmd(flags *globalFlags) *cobra.Command {
	var (
		jsonOut bool
		nameA   string
		nameB   string
	)

	cmd := &cobra.Command{
		Use:   "compare <download-url-a> <download-url-b>",
		Short: "Compare two versions of a project",
		Long: "Download and unpack both archives concurrently, then report the files " +
			"added, removed and modified between version A and version B.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newServices(flags)
			if err != nil {
				return err
			}
			defer svc.close()

			a := domain.ArchiveRef{DownloadURL: args[0], DisplayName: nameA}
			b := domain.ArchiveRef{DownloadURL: args[1], DisplayName: nameB}
			result, err := svc.pipeline.RunComparison(cmd.Context(), a, b)
			return renderOutcome(cmd, jsonOut, result, err, func(r domain.ComparisonResult) string {
				return tui.RenderComparison(nameOf(a), nameOf(b), r)
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&nameA, "name-a", "", "Display name of archive A")
	cmd.Flags().StringVar(&nameB, "name-b", "", "Display name of archive B")

	return cmd
}
