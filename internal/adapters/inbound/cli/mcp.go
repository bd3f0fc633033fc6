package cli

import (
	mcpadapter "github.com/openkraft/archlens/internal/adapters/inbound/mcp"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func newMCPCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the archlens MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd(flags))
	return cmd
}

func newMCPServeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start archlens MCP server (stdio)",
		Long:  "Start the archlens MCP server using stdio transport. This allows AI assistants to analyze and compare project archives.",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newServices(flags)
			if err != nil {
				return err
			}
			defer svc.close()

			opts := []mcpadapter.Option{mcpadapter.WithConfig(svc.cfg)}
			if svc.journal != nil {
				opts = append(opts, mcpadapter.WithJournal(svc.journal))
			}
			if svc.store != nil {
				opts = append(opts, mcpadapter.WithRecords(svc.store))
			}
			s := mcpadapter.NewArchlensMCPServer(svc.pipeline, opts...)
			return server.ServeStdio(s)
		},
	}
}
