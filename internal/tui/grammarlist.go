package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/ambiscope/pkg/textutil"
)

// renderGrammarList renders the grammar selection screen.
func renderGrammarList(m *Model) string {
	c := m.walk.Catalog()
	if c.Len() == 0 {
		empty := emptyStateStyle.Render(
			"No grammars loaded.\n\n" +
				"Seed the database with: ambiscope seed")
		return lipgloss.Place(
			m.width,
			m.height-2, // minus header + footer
			lipgloss.Center,
			lipgloss.Center,
			empty,
		)
	}

	title := panelTitleStyle.Render("Grammars")
	count := dimStyle.Render(fmt.Sprintf("  %d total", c.Len()))

	var lines []string
	lines = append(lines, title+count)
	lines = append(lines, "")

	// Visible range for scrolling
	maxVisible := m.height - 6
	if maxVisible < 5 {
		maxVisible = 5
	}

	startIdx := 0
	if m.selectedGrammar >= maxVisible {
		startIdx = m.selectedGrammar - maxVisible + 1
	}
	endIdx := startIdx + maxVisible
	if endIdx > c.Len() {
		endIdx = c.Len()
	}

	current := m.walk.GrammarIndex()
	for i := startIdx; i < endIdx; i++ {
		g := c.Grammar(i)

		mark := listOtherMark.Render("○")
		if i == current {
			mark = listCurrentMark.Render("●")
		}

		input := ""
		if len(g.Inputs) > 0 {
			input = g.Inputs[0].String
		}
		name := textutil.Pad(g.Name, 16)
		desc := dimStyle.Render(textutil.Truncate(g.Description, m.width/2))
		content := fmt.Sprintf("%s  %s  %s  %s", mark, name, desc, dimStyle.Render(input))

		if i == m.selectedGrammar {
			lines = append(lines, listSelectedStyle.Width(m.width-4).Render(content))
		} else {
			lines = append(lines, listItemStyle.Width(m.width-4).Render(content))
		}
	}

	return strings.Join(lines, "\n")
}
