package compare_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openkraft/archlens/internal/domain/compare"
)

func TestDiffLines_IdenticalTextHasNoChanges(t *testing.T) {
	runs := compare.DiffLines("a\nb\nc", "a\nb\nc")
	assert.Equal(t, 0, compare.CountChanges(runs))
}

func TestDiffLines_ReplacedLine(t *testing.T) {
	runs := compare.DiffLines("hello\nworld", "hello\nmars")

	assert.Equal(t, 2, compare.CountChanges(runs))
	assert.Equal(t, "-world\n+mars", compare.Summarize(runs, 5, 120))
}

func TestDiffLines_CRLFNormalized(t *testing.T) {
	runs := compare.DiffLines("a\r\nb\r\n", "a\nb\n")
	assert.Equal(t, 0, compare.CountChanges(runs))
}

func TestSummarize_CapsRenderedRunsOnly(t *testing.T) {
	var a, b []string
	for i := 0; i < 10; i++ {
		a = append(a, "keep", "drop")
		b = append(b, "keep", "add")
	}
	runs := compare.DiffLines(strings.Join(a, "\n"), strings.Join(b, "\n"))

	assert.Greater(t, compare.CountChanges(runs), 5)
	assert.Len(t, strings.Split(compare.Summarize(runs, 5, 120), "\n"), 5)
}

func TestSummarize_CollapsesMultiLineRuns(t *testing.T) {
	runs := []compare.Run{{Op: compare.OpAdded, Text: "  first\nsecond  \n"}}
	assert.Equal(t, "+first ⏎ second", compare.Summarize(runs, 5, 120))
}

func TestSummarize_TruncatesWithEllipsis(t *testing.T) {
	runs := []compare.Run{{Op: compare.OpRemoved, Text: strings.Repeat("é", 200)}}
	got := compare.Summarize(runs, 5, 10)
	assert.Equal(t, "-"+strings.Repeat("é", 9)+"…", got)
}

func TestSummarize_SkipsEqualRuns(t *testing.T) {
	runs := []compare.Run{
		{Op: compare.OpEqual, Text: "same\n"},
		{Op: compare.OpAdded, Text: "new\n"},
	}
	assert.Equal(t, "+new", compare.Summarize(runs, 5, 120))
}
