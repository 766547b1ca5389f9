package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/ambiscope/internal/database"
	"github.com/Mr-Dark-debug/ambiscope/pkg/textutil"
)

// renderHeader produces the top bar:
//
//	AMBISCOPE  |  dual  |  arith: E → E + E | E * E | (E) | id  |  id+id*id
func renderHeader(m *Model) string {
	brand := headerBrandStyle.Render("AMBISCOPE")
	sep := headerSepStyle.Render(" │ ")

	g := m.walk.Grammar()
	parts := []string{
		brand,
		sep,
		headerModeStyle.Render(m.walk.Mode()),
		sep,
		headerMetaStyle.Render(textutil.Truncate(g.Name+": "+g.Description, m.width/2)),
		sep,
		inputStyle.Render(m.walk.Input().String),
	}
	if sid := m.walk.SessionID(); sid != "" {
		parts = append(parts, sep, headerMetaStyle.Render("session "+textutil.ShortID(sid, 8)))
	}

	content := strings.Join(parts, "")

	return headerBarStyle.Width(m.width).Render(content)
}

// renderFooter produces the bottom status bar with keyboard hints.
func renderFooter(m *Model) string {
	var left, right string

	if m.statusMsg != "" {
		left = statusStyle.Render(m.statusMsg)
	}

	switch {
	case m.showCompare:
		right = renderHints([]hint{
			{"↑↓", "scroll"},
			{"esc", "close"},
		})
	case m.showGrammarList:
		right = renderHints([]hint{
			{"↑↓", "navigate"},
			{"enter", "select"},
			{"esc", "back"},
			{"q", "quit"},
		})
	default:
		right = renderHints(mainHints(m.walk.Mode()))
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return lipgloss.NewStyle().
		Background(colorBgSurface).
		Width(m.width).
		Render(bar)
}

type hint struct {
	key  string
	desc string
}

func mainHints(mode string) []hint {
	hints := []hint{{"←→", "step"}}
	switch mode {
	case database.ModeSingle:
		hints = append(hints, hint{"t", "toggle"})
	case database.ModePractice:
		hints = append(hints, hint{"1-9", "rule"}, hint{"?", "hint"})
	default:
		hints = append(hints, hint{"?", "hint"})
	}
	return append(hints,
		hint{"c", "compare"},
		hint{"m", "mode"},
		hint{"g", "grammar"},
		hint{"r", "reset"},
		hint{"q", "quit"},
	)
}

func renderHints(hints []hint) string {
	var parts []string
	for _, h := range hints {
		parts = append(parts,
			hintKeyStyle.Render(h.key)+" "+hintDescStyle.Render(h.desc))
	}
	return strings.Join(parts, hintDescStyle.Render("  "))
}

// panelTitle renders a pane title, bright when the pane has focus.
func panelTitle(m *Model, p Pane, title string) string {
	if m.activePane == p {
		return panelTitleStyle.Render(title)
	}
	return panelTitleDimStyle.Render(title)
}

// panelFrame wraps content in a pane's chrome.
func panelFrame(m *Model, p Pane, width, height int, content string) string {
	style := panelStyle
	if m.activePane == p {
		style = panelActiveStyle
	}
	return style.Width(width).Height(height).Render(content)
}

func countText(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
