package mcp_test

import (
	"context"
	"errors"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	mcpadapter "github.com/openkraft/archlens/internal/adapters/inbound/mcp"
	"github.com/openkraft/archlens/internal/domain"
)

type fakePipeline struct {
	analyzeRef domain.ArchiveRef
	compared   [2]domain.ArchiveRef
	err        error
}

func (f *fakePipeline) RunAnalysis(_ context.Context, ref domain.ArchiveRef) (domain.AnalysisReport, error) {
	f.analyzeRef = ref
	if f.err != nil {
		return domain.AnalysisReport{}, f.err
	}
	return domain.AnalysisReport{
		Overview:  domain.Overview{Language: "TypeScript", Frameworks: []string{"React"}, Libraries: []string{}},
		Structure: domain.Structure{Tree: []string{"package.json"}},
	}, nil
}

func (f *fakePipeline) RunComparison(_ context.Context, a, b domain.ArchiveRef) (domain.ComparisonResult, error) {
	f.compared = [2]domain.ArchiveRef{a, b}
	if f.err != nil {
		return domain.ComparisonResult{}, f.err
	}
	return domain.ComparisonResult{
		TotalFilesCompared: 2,
		AddedFiles:         []string{"b.txt"},
		RemovedFiles:       []string{"a.txt"},
		ChangedFiles:       []string{},
	}, nil
}

func (f *fakePipeline) PreviewComparison(a, b domain.ArchiveMeta) domain.ComparisonPreview {
	return domain.ComparisonPreview{DiffSizeBytes: b.SizeBytes - a.SizeBytes, SameChecksum: a.Checksum == b.Checksum}
}

func callTool(t *testing.T, p mcpadapter.Pipeline, name string, args map[string]any) *mcplib.CallToolResult {
	t.Helper()
	s := mcpadapter.NewArchlensMCPServer(p)
	tool, ok := s.ListTools()[name]
	require.True(t, ok, "tool %q should be registered", name)

	req := mcplib.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func text(t *testing.T, res *mcplib.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcplib.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestNewArchlensMCPServer(t *testing.T) {
	s := mcpadapter.NewArchlensMCPServer(&fakePipeline{})
	require.NotNil(t, s)
}

func TestMCPServerHasTools(t *testing.T) {
	s := mcpadapter.NewArchlensMCPServer(&fakePipeline{})

	tools := s.ListTools()
	require.NotNil(t, tools)

	expectedTools := []string{
		"archlens_analyze",
		"archlens_compare",
		"archlens_preview",
	}

	for _, name := range expectedTools {
		_, exists := tools[name]
		assert.True(t, exists, "tool %q should be registered", name)
	}

	assert.Len(t, tools, len(expectedTools), "should have exactly %d tools", len(expectedTools))
}

func TestAnalyzeTool_ReturnsReport(t *testing.T) {
	p := &fakePipeline{}
	res := callTool(t, p, "archlens_analyze", map[string]any{
		"download_url": "https://uploads.example.com/v1",
		"display_name": "project.zip",
	})

	assert.False(t, res.IsError)
	body := text(t, res)
	assert.Equal(t, "TypeScript", gjson.Get(body, "overview.language").String())
	assert.Equal(t, "React", gjson.Get(body, "overview.frameworks.0").String())
	assert.Equal(t, "project.zip", p.analyzeRef.DisplayName)
}

func TestAnalyzeTool_MissingURL(t *testing.T) {
	res := callTool(t, &fakePipeline{}, "archlens_analyze", map[string]any{})
	assert.True(t, res.IsError)
}

func TestAnalyzeTool_ReportsUserMessageOnly(t *testing.T) {
	cause := &domain.CorruptArchiveError{Path: "p.zip", Err: errors.New("zip: not a valid zip file")}
	p := &fakePipeline{err: cause}
	res := callTool(t, p, "archlens_analyze", map[string]any{"download_url": "https://x/p.zip"})

	assert.True(t, res.IsError)
	body := text(t, res)
	assert.Equal(t, "corrupt_archive: "+cause.UserMessage(), body)
	assert.NotContains(t, body, "zip:")
}

func TestCompareTool_ReturnsResult(t *testing.T) {
	p := &fakePipeline{}
	res := callTool(t, p, "archlens_compare", map[string]any{
		"url_a": "https://x/a.zip",
		"url_b": "https://x/b.zip",
	})

	assert.False(t, res.IsError)
	body := text(t, res)
	assert.Equal(t, int64(2), gjson.Get(body, "total_files_compared").Int())
	assert.Equal(t, "b.txt", gjson.Get(body, "added_files.0").String())
	assert.Equal(t, "https://x/a.zip", p.compared[0].DownloadURL)
	assert.Equal(t, "https://x/b.zip", p.compared[1].DownloadURL)
}

func TestCompareTool_RequiresBothURLs(t *testing.T) {
	res := callTool(t, &fakePipeline{}, "archlens_compare", map[string]any{"url_a": "https://x/a.zip"})
	assert.True(t, res.IsError)
}

func TestPreviewTool(t *testing.T) {
	res := callTool(t, &fakePipeline{}, "archlens_preview", map[string]any{
		"size_a": float64(100), "checksum_a": "abc",
		"size_b": float64(160), "checksum_b": "abc",
	})

	assert.False(t, res.IsError)
	body := text(t, res)
	assert.Equal(t, int64(60), gjson.Get(body, "diff_size_bytes").Int())
	assert.True(t, gjson.Get(body, "same_checksum").Bool())
}

func TestPreviewTool_RejectsNegativeSize(t *testing.T) {
	res := callTool(t, &fakePipeline{}, "archlens_preview", map[string]any{
		"size_a": float64(-1), "checksum_a": "abc",
		"size_b": float64(1), "checksum_b": "abc",
	})
	assert.True(t, res.IsError)
}
