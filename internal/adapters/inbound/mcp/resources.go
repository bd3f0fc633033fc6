package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// registerResources registers the resources backed by the optional sources
// in deps. Sources that were not provided expose nothing.
func registerResources(s *server.MCPServer, deps *serverDeps) {
	// 1. archlens://config - effective configuration
	if deps.config != nil {
		cfg := *deps.config
		s.AddResource(
			mcplib.NewResource(
				"archlens://config",
				"Configuration",
				mcplib.WithResourceDescription("Effective archlens configuration"),
				mcplib.WithMIMEType("application/json"),
			),
			func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
				return jsonContents(request.Params.URI, cfg)
			},
		)
	}

	// 2. archlens://runs/{run_id} - checkpoint journal of one run
	if deps.journal != nil {
		s.AddResourceTemplate(
			mcplib.NewResourceTemplate(
				"archlens://runs/{run_id}",
				"Run Checkpoints",
				mcplib.WithTemplateDescription("Progress checkpoints recorded for a run"),
				mcplib.WithTemplateMIMEType("application/json"),
			),
			handleRunResource(deps.journal),
		)
	}

	// 3. archlens://analyses/{run_id} and archlens://comparisons/{run_id}
	if deps.records != nil {
		s.AddResourceTemplate(
			mcplib.NewResourceTemplate(
				"archlens://analyses/{run_id}",
				"Stored Analysis",
				mcplib.WithTemplateDescription("Analysis report persisted for a run"),
				mcplib.WithTemplateMIMEType("application/json"),
			),
			handleAnalysisResource(deps.records),
		)
		s.AddResourceTemplate(
			mcplib.NewResourceTemplate(
				"archlens://comparisons/{run_id}",
				"Stored Comparison",
				mcplib.WithTemplateDescription("Comparison result persisted for a run"),
				mcplib.WithTemplateMIMEType("application/json"),
			),
			handleComparisonResource(deps.records),
		)
	}
}

func handleRunResource(journal RunJournal) server.ResourceTemplateHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		runID, err := runIDArgument(request)
		if err != nil {
			return nil, err
		}
		cps, err := journal.Run(runID)
		if err != nil {
			return nil, fmt.Errorf("reading journal: %w", err)
		}
		if len(cps) == 0 {
			return nil, fmt.Errorf("no checkpoints recorded for run %s", runID)
		}
		return jsonContents(request.Params.URI, cps)
	}
}

func handleAnalysisResource(records RecordReader) server.ResourceTemplateHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		runID, err := runIDArgument(request)
		if err != nil {
			return nil, err
		}
		rec, err := records.LoadAnalysis(runID)
		if err != nil {
			return nil, fmt.Errorf("loading analysis: %w", err)
		}
		if rec == nil {
			return nil, fmt.Errorf("no analysis stored for run %s", runID)
		}
		return jsonContents(request.Params.URI, rec)
	}
}

func handleComparisonResource(records RecordReader) server.ResourceTemplateHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		runID, err := runIDArgument(request)
		if err != nil {
			return nil, err
		}
		rec, err := records.LoadComparison(runID)
		if err != nil {
			return nil, fmt.Errorf("loading comparison: %w", err)
		}
		if rec == nil {
			return nil, fmt.Errorf("no comparison stored for run %s", runID)
		}
		return jsonContents(request.Params.URI, rec)
	}
}

// runIDArgument extracts run_id as populated by template matching, which
// yields either a string or a single-element slice.
func runIDArgument(request mcplib.ReadResourceRequest) (string, error) {
	switch v := request.Params.Arguments["run_id"].(type) {
	case string:
		if v != "" {
			return v, nil
		}
	case []string:
		if len(v) > 0 && v[0] != "" {
			return v[0], nil
		}
	}
	return "", fmt.Errorf("run_id is required")
}

func jsonContents(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling resource: %w", err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
