package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/ambiscope/internal/database"
	"github.com/Mr-Dark-debug/ambiscope/internal/practice"
	"github.com/Mr-Dark-debug/ambiscope/pkg/textutil"
)

// renderRules renders the productions of the current grammar and, in
// practice mode, the drill score.
func renderRules(m *Model, width, height int) string {
	g := m.walk.Grammar()
	title := panelTitle(m, PaneRules, "Rules")
	title += dimStyle.Render("  " + countText(len(g.Productions), "production"))

	var lines []string
	lines = append(lines, title)

	// ── Productions, several per row when they fit ──

	cellWidth := 4
	for _, p := range g.Productions {
		cellWidth = maxInt(cellWidth, textutil.Width(p)+5)
	}
	perRow := clamp(width/cellWidth, 1, 9)
	var row []string
	for i, p := range g.Productions {
		cell := ruleNumberStyle.Render(fmt.Sprintf("%d", i+1)) + " " + detailValueStyle.Render(p)
		row = append(row, lipgloss.NewStyle().Width(cellWidth).Render(cell))
		if len(row) == perRow || i == len(g.Productions)-1 {
			lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}

	// ── Practice score ──

	if m.walk.Mode() == database.ModePractice {
		s := m.walk.Drill().Stats()
		lines = append(lines, "")
		lines = append(lines, detailSectionStyle.Render("Practice"))
		lines = append(lines, detailRow("Attempts", fmt.Sprintf("%d", s.Attempts))+"  "+
			detailRow("Correct", fmt.Sprintf("%d", s.Correct))+"  "+
			detailRow("Hints", fmt.Sprintf("%d", s.Hints)))
		if bar := renderScoreBar(s, minInt(width-16, 50)); bar != "" {
			lines = append(lines, bar)
		}
	}

	if m.feedback != "" {
		lines = append(lines, "")
		lines = append(lines, feedbackStyle.Render(textutil.Truncate(m.feedback, width)))
	}

	// Truncate to available height
	if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

// renderRulesPanel wraps the rules in a styled panel.
func renderRulesPanel(m *Model, width, height int) string {
	content := renderRules(m, width-4, height-2)
	return panelFrame(m, PaneRules, width, height, content)
}

// ── helpers ──

func detailRow(label, value string) string {
	return detailLabelStyle.Render(label) + "  " + detailValueStyle.Render(value)
}

// renderScoreBar draws correct against incorrect attempts.
func renderScoreBar(s practice.Stats, barWidth int) string {
	if s.Attempts == 0 || barWidth < 4 {
		return ""
	}
	good := barWidth * s.Correct / s.Attempts
	bad := barWidth * s.Incorrect / s.Attempts
	if good+bad < barWidth && s.Incorrect > 0 && bad == 0 {
		bad = 1
	}
	empty := barWidth - good - bad

	bar := barCorrectStyle.Render(strings.Repeat("█", good)) +
		barIncorrectStyle.Render(strings.Repeat("█", bad)) +
		barEmptyStyle.Render(strings.Repeat("░", empty))

	return fmt.Sprintf("%s %.0f%%", bar, 100*s.Accuracy())
}
