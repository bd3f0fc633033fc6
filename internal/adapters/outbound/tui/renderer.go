package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/openkraft/archlens/internal/domain"
)

// ── warm palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	info    = lipgloss.Color("#8B949E") // soft blue-gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	infoTagStyle  = lipgloss.NewStyle().Foreground(info)
	fileStyle     = lipgloss.NewStyle().Foreground(dim)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	labelStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// maxTreeLines caps how much of the file tree is printed.
const maxTreeLines = 40

// RenderReport formats an analysis report for terminal output.
func RenderReport(name string, report domain.AnalysisReport) string {
	var b strings.Builder

	// ── Header ──
	if name == "" {
		name = "archive"
	}
	title := headerStyle.Render("archlens")
	subtitle := dimStyle.Render("Project Analysis")
	lang := report.Overview.Language
	if lang == "" {
		lang = "unknown"
	}
	langStyled := lipgloss.NewStyle().Bold(true).Foreground(accent).Render(lang)
	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + titleStyle.Render(name) + "  " + langStyled))
	b.WriteString("\n\n")

	// ── Overview ──
	fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render(padRight("Frameworks", 14)), listOrNone(report.Overview.Frameworks))
	fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render(padRight("Libraries", 14)), listOrNone(report.Overview.Libraries))
	fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render(padRight("Files", 14)), dimStyle.Render(fmt.Sprintf("%d", len(report.Structure.Tree))))
	b.WriteString("\n  " + separatorLine + "\n\n")

	// ── Dependencies ──
	if len(report.Dependencies) > 0 {
		b.WriteString("  " + titleStyle.Render("Dependencies") + "\n\n")
		for _, d := range report.Dependencies {
			tag := infoTagStyle.Render("prod")
			if d.Type == domain.DependencyDev {
				tag = dimStyle.Render("dev ")
			}
			fmt.Fprintf(&b, "    %s %s %s\n", tag, padRight(d.Name, 32), dimStyle.Render(d.Version))
		}
		b.WriteString("\n")
	}

	// ── Structure ──
	b.WriteString("  " + titleStyle.Render("Structure") + "\n\n")
	for i, p := range report.Structure.Tree {
		if i == maxTreeLines {
			fmt.Fprintf(&b, "    %s\n", faintStyle.Render(fmt.Sprintf("… %d more", len(report.Structure.Tree)-maxTreeLines)))
			break
		}
		fmt.Fprintf(&b, "    %s\n", fileStyle.Render(p))
	}
	b.WriteString("\n  " + separatorLine + "\n\n")

	// ── Insights ──
	if len(report.Insights.Warnings) == 0 && len(report.Insights.Recommendations) == 0 {
		b.WriteString("  " + passStyle.Render("No findings.") + "\n")
	}
	for _, w := range report.Insights.Warnings {
		fmt.Fprintf(&b, "    %s %s\n", warnTagStyle.Render("warn"), dimStyle.Render(w))
	}
	for _, r := range report.Insights.Recommendations {
		fmt.Fprintf(&b, "    %s %s\n", infoTagStyle.Render("tip "), dimStyle.Render(r))
	}

	b.WriteString("\n")
	return b.String()
}

// RenderError formats a pipeline failure using its user-facing message.
func RenderError(err error) string {
	kind := domain.KindOf(err)
	return fmt.Sprintf("  %s %s\n", failStyle.Bold(true).Render(string(kind)), dimStyle.Render(domain.UserMessage(err)))
}

// RenderCheckpoints formats the progress journal of one run.
func RenderCheckpoints(runID string, cps []domain.Checkpoint) string {
	if len(cps) == 0 {
		return "  " + dimStyle.Render("No checkpoints recorded for "+runID+".") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Run "+runID) + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for _, cp := range cps {
		fmt.Fprintf(&b, "  %s  %s  %s\n",
			dimStyle.Render(cp.Timestamp.UTC().Format("15:04:05.000")),
			padRight(cp.Step, 12),
			outcomeTag(cp.Outcome),
		)
	}
	return b.String()
}

func outcomeTag(o domain.Outcome) string {
	switch o {
	case domain.OutcomeDone:
		return passStyle.Render(string(o))
	case domain.OutcomeError:
		return failStyle.Render(string(o))
	case domain.OutcomeRunning:
		return warnTagStyle.Render(string(o))
	default:
		return dimStyle.Render(string(o))
	}
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return faintStyle.Render("none")
	}
	return dimStyle.Render(strings.Join(items, ", "))
}

func padRight(s string, width int) string {
	n := lipgloss.Width(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
