package compare

import (
	"strings"
	"unicode/utf8"

	"github.com/go-git/go-git/v5/utils/diff"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op is the kind of a line run.
type Op int

const (
	OpEqual Op = iota
	OpAdded
	OpRemoved
)

// Run is a maximal sequence of lines that are equal, added or removed.
type Run struct {
	Op   Op
	Text string
}

// DiffLines computes line runs between two texts. Lines are split on \r?\n.
func DiffLines(a, b string) []Run {
	diffs := diff.Do(normalizeNewlines(a), normalizeNewlines(b))

	runs := make([]Run, 0, len(diffs))
	for _, d := range diffs {
		var op Op
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = OpAdded
		case diffmatchpatch.DiffDelete:
			op = OpRemoved
		default:
			op = OpEqual
		}
		runs = append(runs, Run{Op: op, Text: d.Text})
	}
	return runs
}

// CountChanges returns the number of non-equal runs.
func CountChanges(runs []Run) int {
	n := 0
	for _, r := range runs {
		if r.Op != OpEqual {
			n++
		}
	}
	return n
}

// Summarize renders at most maxLines non-equal runs as "+text" / "-text"
// lines of at most width characters, an ellipsis appended when cut.
func Summarize(runs []Run, maxLines, width int) string {
	lines := make([]string, 0, maxLines)
	for _, r := range runs {
		if len(lines) == maxLines {
			break
		}
		switch r.Op {
		case OpAdded:
			lines = append(lines, "+"+truncate(collapse(r.Text), width-1))
		case OpRemoved:
			lines = append(lines, "-"+truncate(collapse(r.Text), width-1))
		}
	}
	return strings.Join(lines, "\n")
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// collapse trims a run and folds its line breaks so it renders on one line.
func collapse(text string) string {
	parts := strings.Split(strings.TrimSpace(text), "\n")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return strings.Join(parts, " ⏎ ")
}

const ellipsis = "…"

func truncate(s string, width int) string {
	if width < 0 {
		width = 0
	}
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width]) + ellipsis
}
