package tui_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openkraft/archlens/internal/adapters/outbound/tui"
	"github.com/openkraft/archlens/internal/domain"
)

func sampleReport() domain.AnalysisReport {
	return domain.AnalysisReport{
		Overview: domain.Overview{
			Language:   "typescript",
			Frameworks: []string{"Next.js", "React"},
			Libraries:  []string{"next", "react"},
		},
		Structure: domain.Structure{Tree: []string{"package.json", "src/pages/index.tsx"}},
		Dependencies: []domain.Dependency{
			{Name: "next", Version: "14.0.0", Type: domain.DependencyProd},
			{Name: "typescript", Version: "^5.0.0", Type: domain.DependencyDev},
		},
		Insights: domain.Insights{
			Warnings:        []string{"Only one file was inspected."},
			Recommendations: []string{"Add a README."},
		},
	}
}

func TestRenderReport_ContainsOverview(t *testing.T) {
	output := tui.RenderReport("shop-v2", sampleReport())
	assert.Contains(t, output, "shop-v2")
	assert.Contains(t, output, "typescript")
	assert.Contains(t, output, "Next.js, React")
	assert.Contains(t, output, "next, react")
}

func TestRenderReport_ContainsDependenciesAndTree(t *testing.T) {
	output := tui.RenderReport("x", sampleReport())
	assert.Contains(t, output, "typescript")
	assert.Contains(t, output, "^5.0.0")
	assert.Contains(t, output, "dev")
	assert.Contains(t, output, "src/pages/index.tsx")
}

func TestRenderReport_ContainsInsights(t *testing.T) {
	output := tui.RenderReport("x", sampleReport())
	assert.Contains(t, output, "Only one file was inspected.")
	assert.Contains(t, output, "Add a README.")
}

func TestRenderReport_UnknownLanguageAndNoFindings(t *testing.T) {
	output := tui.RenderReport("", domain.AnalysisReport{})
	assert.Contains(t, output, "unknown")
	assert.Contains(t, output, "none")
	assert.Contains(t, output, "No findings.")
}

func TestRenderReport_TruncatesLongTree(t *testing.T) {
	var tree []string
	for i := 0; i < 100; i++ {
		tree = append(tree, fmt.Sprintf("file%03d.py", i))
	}
	output := tui.RenderReport("big", domain.AnalysisReport{Structure: domain.Structure{Tree: tree}})
	assert.Contains(t, output, "file039.py")
	assert.NotContains(t, output, "file040.py")
	assert.Contains(t, output, "60 more")
}

func TestRenderComparison(t *testing.T) {
	result := domain.ComparisonResult{
		TotalFilesCompared: 3,
		AddedFiles:         []string{"new.txt"},
		RemovedFiles:       []string{"old.txt"},
		ChangedFiles:       []string{"a.txt"},
		Changes: []domain.FileChange{
			{Path: "a.txt", ChangeType: domain.ChangeModified, Summary: "-world\n+mars"},
			{Path: "new.txt", ChangeType: domain.ChangeAdded},
			{Path: "old.txt", ChangeType: domain.ChangeRemoved},
		},
	}
	output := tui.RenderComparison("v1", "v2", result)
	assert.Contains(t, output, "3 files compared")
	assert.Contains(t, output, "+1 added")
	assert.Contains(t, output, "-1 removed")
	assert.Contains(t, output, "~1 modified")
	assert.Contains(t, output, "-world")
	assert.Contains(t, output, "+mars")
	assert.True(t, strings.Index(output, "a.txt") < strings.Index(output, "new.txt"))
}

func TestRenderComparison_NoDifferences(t *testing.T) {
	output := tui.RenderComparison("v1", "v1", domain.ComparisonResult{TotalFilesCompared: 2})
	assert.Contains(t, output, "No differences.")
}

func TestRenderPreview(t *testing.T) {
	output := tui.RenderPreview(domain.ComparisonPreview{DiffSizeBytes: 1024, SameChecksum: true})
	assert.Contains(t, output, "1024 bytes")
	assert.Contains(t, output, "yes")
}

func TestRenderError_UsesUserMessage(t *testing.T) {
	err := &domain.CorruptArchiveError{Path: "x.zip", Err: errors.New("zip: not a valid zip file")}
	output := tui.RenderError(err)
	assert.Contains(t, output, "corrupt_archive")
	assert.Contains(t, output, "verify it is a valid")
	assert.NotContains(t, output, "not a valid zip file")
}

func TestRenderCheckpoints(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	output := tui.RenderCheckpoints("run-9", []domain.Checkpoint{
		{RunID: "run-9", Step: "downloading", Outcome: domain.OutcomeRunning, Timestamp: at},
		{RunID: "run-9", Step: "failed", Outcome: domain.OutcomeError, Timestamp: at},
	})
	assert.Contains(t, output, "run-9")
	assert.Contains(t, output, "downloading")
	assert.Contains(t, output, "03:04:05.000")
	assert.Contains(t, output, "error")

	assert.Contains(t, tui.RenderCheckpoints("none", nil), "No checkpoints")
}
