// Package tui renders validation results for terminal output.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rulegate/rulegate/internal/domain"
)

var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
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
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	lowTagStyle   = lipgloss.NewStyle().Foreground(dim)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))

	statusColors = map[domain.Status]lipgloss.Color{
		domain.StatusSuccess: success,
		domain.StatusWarning: warning,
		domain.StatusError:   danger,
	}
)

// RenderResult renders one validation result with its issue list.
func RenderResult(name string, result *domain.ValidationResult) string {
	var b strings.Builder

	title := headerStyle.Render("rulegate")
	subtitle := dimStyle.Render(fmt.Sprintf("%s · %s", name, result.Format))
	scoreStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(statusColor(result.Status)).
		Render(fmt.Sprintf("%.1f / 100", result.ConfidenceScore))
	statusStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(statusColor(result.Status)).
		Render(string(result.Status))

	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + scoreStyled + "  " + statusStyled))
	b.WriteString("\n\n")

	if len(result.Issues) == 0 {
		b.WriteString("  " + dimStyle.Render("No issues found."))
		b.WriteString("\n")
		return b.String()
	}

	counts := result.SeverityCounts()
	b.WriteString("  ")
	b.WriteString(titleStyle.Render("Issues"))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d high · %d medium · %d low",
		counts[domain.SeverityHigh], counts[domain.SeverityMedium], counts[domain.SeverityLow])))
	b.WriteString("\n")
	b.WriteString("  " + separatorLine)
	b.WriteString("\n")

	for _, issue := range result.Issues {
		b.WriteString(fmt.Sprintf("  %s %s %s\n",
			severityTag(issue.Severity),
			issue.Message,
			dimStyle.Render("("+issue.Location+")")))
		if issue.Remediation != "" {
			b.WriteString("      " + faintStyle.Render("↳ "+issue.Remediation) + "\n")
		}
	}

	return b.String()
}

// RenderSummary renders a one-line-per-result table for batch output.
func RenderSummary(names []string, results []*domain.ValidationResult) string {
	var b strings.Builder
	for i, result := range results {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		statusStyled := lipgloss.NewStyle().
			Foreground(statusColor(result.Status)).
			Render(fmt.Sprintf("%-7s", result.Status))
		b.WriteString(fmt.Sprintf("  %s %6.1f  %-12s %s\n",
			statusStyled, result.ConfidenceScore, result.Format, dimStyle.Render(name)))
	}
	return b.String()
}

func statusColor(status domain.Status) lipgloss.Color {
	if c, ok := statusColors[status]; ok {
		return c
	}
	return dim
}

func severityTag(sev domain.Severity) string {
	switch sev {
	case domain.SeverityHigh:
		return errorTagStyle.Render("HIGH  ")
	case domain.SeverityMedium:
		return warnTagStyle.Render("MEDIUM")
	default:
		return lowTagStyle.Render("LOW   ")
	}
}
