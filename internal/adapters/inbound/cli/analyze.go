package cli

import (
	"github.com/spf13/cobra"

	"github.com/openkraft/archlens/internal/adapters/outbound/tui"
	"github.com/openkraft/archlens/internal/domain"
)

func newAnalyzeCmd(flags *globalFlags) *cobra.Command {
	var (
		jsonOut     bool
		displayName string
	)

	cmd := &cobra.Command{
		Use:   "analyze <download-url>",
		Short: "Analyze one project archive",
		Long: "Download a ZIP archive, unpack it into a private scratch directory and " +
			"report its language, frameworks, dependencies, structure and findings.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newServices(flags)
			if err != nil {
				return err
			}
			defer svc.close()

			ref := domain.ArchiveRef{DownloadURL: args[0], DisplayName: displayName}
			report, err := svc.pipeline.RunAnalysis(cmd.Context(), ref)
			return renderOutcome(cmd, jsonOut, report, err, func(r domain.AnalysisReport) string {
				return tui.RenderReport(nameOf(ref), r)
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&displayName, "name", "", "Display name of the archive (its extension decides the format)")

	return cmd
}

func nameOf(ref domain.ArchiveRef) string {
	if ref.DisplayName != "" {
		return ref.DisplayName
	}
	return ref.DownloadURL
}
