package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/openkraft/archlens/internal/domain"
)

var (
	addedStyle   = lipgloss.NewStyle().Foreground(success)
	removedStyle = lipgloss.NewStyle().Foreground(danger)
	changedStyle = lipgloss.NewStyle().Foreground(warning)
)

// RenderComparison formats a comparison result for terminal output.
func RenderComparison(nameA, nameB string, result domain.ComparisonResult) string {
	var b strings.Builder

	title := headerStyle.Render("archlens")
	subtitle := dimStyle.Render("Version Comparison")
	pair := titleStyle.Render(nameA) + dimStyle.Render("  →  ") + titleStyle.Render(nameB)
	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + pair))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "  %s  %s  %s  %s\n",
		dimStyle.Render(fmt.Sprintf("%d files compared", result.TotalFilesCompared)),
		addedStyle.Render(fmt.Sprintf("+%d added", len(result.AddedFiles))),
		removedStyle.Render(fmt.Sprintf("-%d removed", len(result.RemovedFiles))),
		changedStyle.Render(fmt.Sprintf("~%d modified", len(result.ChangedFiles))),
	)
	b.WriteString("\n  " + separatorLine + "\n\n")

	if len(result.Changes) == 0 {
		b.WriteString("  " + passStyle.Render("No differences.") + "\n\n")
		return b.String()
	}

	for _, c := range result.Changes {
		fmt.Fprintf(&b, "    %s %s\n", changeTag(c.ChangeType), fileStyle.Render(c.Path))
		if c.Summary == "" {
			continue
		}
		for _, line := range strings.Split(c.Summary, "\n") {
			fmt.Fprintf(&b, "         %s\n", summaryLine(line))
		}
	}

	b.WriteString("\n")
	return b.String()
}

// RenderPreview formats a metadata-only comparison.
func RenderPreview(p domain.ComparisonPreview) string {
	same := failStyle.Render("no")
	if p.SameChecksum {
		same = passStyle.Render("yes")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render(padRight("Size delta", 16)), dimStyle.Render(fmt.Sprintf("%d bytes", p.DiffSizeBytes)))
	fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render(padRight("Same checksum", 16)), same)
	return b.String()
}

func changeTag(t domain.ChangeType) string {
	switch t {
	case domain.ChangeAdded:
		return addedStyle.Bold(true).Render("added   ")
	case domain.ChangeRemoved:
		return removedStyle.Bold(true).Render("removed ")
	default:
		return changedStyle.Bold(true).Render("modified")
	}
}

func summaryLine(line string) string {
	switch {
	case strings.HasPrefix(line, "+"):
		return addedStyle.Render(line)
	case strings.HasPrefix(line, "-"):
		return removedStyle.Render(line)
	default:
		return dimStyle.Render(line)
	}
}
