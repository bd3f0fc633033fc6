package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/openkraft/archlens/internal/domain"
)

// registerTools registers all archlens MCP tools on the given server.
func registerTools(s *server.MCPServer, p Pipeline) {
	// 1. archlens_analyze
	s.AddTool(
		mcplib.NewTool("archlens_analyze",
			mcplib.WithDescription("Downloads a ZIP project archive and returns its analysis report as JSON"),
			mcplib.WithString("download_url",
				mcplib.Required(),
				mcplib.Description("HTTP(S) URL of the archive"),
			),
			mcplib.WithString("display_name",
				mcplib.Description("Original file name of the archive; its extension decides the format"),
			),
		),
		handleAnalyze(p),
	)

	// 2. archlens_compare
	s.AddTool(
		mcplib.NewTool("archlens_compare",
			mcplib.WithDescription("Downloads two versions of a project and returns the added, removed and modified files as JSON"),
			mcplib.WithString("url_a",
				mcplib.Required(),
				mcplib.Description("HTTP(S) URL of version A"),
			),
			mcplib.WithString("url_b",
				mcplib.Required(),
				mcplib.Description("HTTP(S) URL of version B"),
			),
			mcplib.WithString("name_a",
				mcplib.Description("Original file name of version A"),
			),
			mcplib.WithString("name_b",
				mcplib.Description("Original file name of version B"),
			),
		),
		handleCompare(p),
	)

	// 3. archlens_preview
	s.AddTool(
		mcplib.NewTool("archlens_preview",
			mcplib.WithDescription("Compares two archives by size and checksum without downloading them"),
			mcplib.WithNumber("size_a", mcplib.Required(), mcplib.Description("Size of archive A in bytes")),
			mcplib.WithString("checksum_a", mcplib.Required(), mcplib.Description("Checksum of archive A")),
			mcplib.WithNumber("size_b", mcplib.Required(), mcplib.Description("Size of archive B in bytes")),
			mcplib.WithString("checksum_b", mcplib.Required(), mcplib.Description("Checksum of archive B")),
		),
		handlePreview(p),
	)
}

func handleAnalyze(p Pipeline) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		downloadURL, err := request.RequireString("download_url")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		displayName, _ := request.GetArguments()["display_name"].(string)

		report, err := p.RunAnalysis(ctx, domain.ArchiveRef{DownloadURL: downloadURL, DisplayName: displayName})
		if err != nil {
			return pipelineError(err), nil
		}
		return jsonResult(report)
	}
}

func handleCompare(p Pipeline) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		urlA, err := request.RequireString("url_a")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		urlB, err := request.RequireString("url_b")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		args := request.GetArguments()
		nameA, _ := args["name_a"].(string)
		nameB, _ := args["name_b"].(string)

		result, err := p.RunComparison(ctx,
			domain.ArchiveRef{DownloadURL: urlA, DisplayName: nameA},
			domain.ArchiveRef{DownloadURL: urlB, DisplayName: nameB},
		)
		if err != nil {
			return pipelineError(err), nil
		}
		return jsonResult(result)
	}
}

func handlePreview(p Pipeline) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		a, err := archiveMeta(request, "a")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		b, err := archiveMeta(request, "b")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(p.PreviewComparison(a, b))
	}
}

// archiveMeta reads the size_<side> and checksum_<side> arguments.
func archiveMeta(request mcplib.CallToolRequest, side string) (domain.ArchiveMeta, error) {
	sizeKey := "size_" + side
	size, ok := request.GetArguments()[sizeKey].(float64)
	if !ok {
		return domain.ArchiveMeta{}, fmt.Errorf("required argument %q not found", sizeKey)
	}
	if size < 0 {
		return domain.ArchiveMeta{}, fmt.Errorf("%s must not be negative", sizeKey)
	}
	sum, err := request.RequireString("checksum_" + side)
	if err != nil {
		return domain.ArchiveMeta{}, err
	}
	return domain.ArchiveMeta{SizeBytes: int64(size), Checksum: sum}, nil
}

// pipelineError reports a failed run by kind and user-facing message only.
func pipelineError(err error) *mcplib.CallToolResult {
	return errorResult(fmt.Sprintf("%s: %s", domain.KindOf(err), domain.UserMessage(err)))
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
