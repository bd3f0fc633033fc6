package domain_test

import (
	"encoding/json"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkraft/archlens/internal/domain"
)

func tree(paths ...string) domain.ExtractedTree {
	t := domain.ExtractedTree{RootDir: "/tmp/x", Entries: map[string]domain.EntryMeta{}}
	for i, p := range paths {
		t.Entries[p] = domain.EntryMeta{AbsolutePath: "/tmp/x/" + p, SizeBytes: int64(i)}
	}
	return t
}

func TestMerge(t *testing.T) {
	merged := domain.Merge(tree("a.txt", "same.txt"), tree("same.txt", "b.txt"))
	require.Len(t, merged, 3)

	assert.NotNil(t, merged["a.txt"].A)
	assert.Nil(t, merged["a.txt"].B)

	assert.Nil(t, merged["b.txt"].A)
	assert.NotNil(t, merged["b.txt"].B)

	assert.NotNil(t, merged["same.txt"].A)
	assert.NotNil(t, merged["same.txt"].B)
	assert.Equal(t, int64(1), merged["same.txt"].A.SizeBytes)
	assert.Equal(t, int64(0), merged["same.txt"].B.SizeBytes)
}

func TestMerge_EntriesAreIndependentCopies(t *testing.T) {
	a := tree("x.txt")
	merged := domain.Merge(a, tree())
	merged["x.txt"].A.SizeBytes = 99
	assert.Equal(t, int64(0), a.Entries["x.txt"].SizeBytes)
}

func TestMerge_Empty(t *testing.T) {
	assert.Empty(t, domain.Merge(tree(), tree()))
}

func TestExtractedTree_Paths(t *testing.T) {
	paths := tree("b", "a/c", "a").Paths()
	sort.Strings(paths)
	assert.Equal(t, []string{"a", "a/c", "b"}, paths)
}

func TestRunState(t *testing.T) {
	assert.Equal(t, "downloading", domain.StateDownloading.String())
	assert.Equal(t, "unknown", domain.RunState(99).String())
	assert.True(t, domain.StateCompleted.Terminal())
	assert.True(t, domain.StateFailed.Terminal())
	assert.False(t, domain.StateComparing.Terminal())
	assert.Less(t, domain.StateCollecting, domain.StateAnalyzing)
}

func TestResultOf(t *testing.T) {
	ok := domain.ResultOf(42, nil)
	assert.True(t, ok.OK)
	require.NotNil(t, ok.Value)
	assert.Equal(t, 42, *ok.Value)
	assert.Nil(t, ok.Error)

	failed := domain.ResultOf(0, &domain.PathTraversalError{Entry: "../x"})
	assert.False(t, failed.OK)
	assert.Nil(t, failed.Value)
	require.NotNil(t, failed.Error)
	assert.Equal(t, domain.KindPathTraversal, failed.Error.Kind)

	data, err := json.Marshal(domain.ResultOf(0, errors.New("boom")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":false,"error":{"kind":"internal","message":"an unexpected error occurred while processing the archive"}}`, string(data))
}

func TestAnalysisReport_Clone(t *testing.T) {
	orig := domain.AnalysisReport{
		Overview:     domain.Overview{Frameworks: []string{"React"}, Libraries: []string{}},
		Structure:    domain.Structure{Tree: []string{"a.ts"}},
		Dependencies: []domain.Dependency{{Name: "react", Version: "18", Type: domain.DependencyProd}},
		Insights:     domain.Insights{Warnings: []string{"w"}},
	}
	c := orig.Clone()
	assert.Equal(t, orig, c)

	c.Overview.Frameworks[0] = "Vue"
	c.Structure.Tree[0] = "b.ts"
	c.Dependencies[0].Name = "vue"
	c.Insights.Warnings[0] = "x"
	assert.Equal(t, "React", orig.Overview.Frameworks[0])
	assert.Equal(t, "a.ts", orig.Structure.Tree[0])
	assert.Equal(t, "react", orig.Dependencies[0].Name)
	assert.Equal(t, "w", orig.Insights.Warnings[0])

	assert.NotNil(t, c.Overview.Libraries)
	assert.Nil(t, c.Insights.Recommendations)
}
