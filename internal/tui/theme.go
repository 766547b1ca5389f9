package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/ambiscope/internal/parsetree"
)

// ────────────────────────────────────────────────────────────
// Color Palette
// ────────────────────────────────────────────────────────────
//
// All colors are defined here. No ad-hoc color literals anywhere.

var (
	// Base
	colorBg        = lipgloss.Color("#0d1117")
	colorBgSurface = lipgloss.Color("#1c2128")

	// Text
	colorText      = lipgloss.Color("#e6edf3")
	colorTextDim   = lipgloss.Color("#8b949e")
	colorTextMuted = lipgloss.Color("#484f58")

	// Accents
	colorBlue   = lipgloss.Color("#58a6ff")
	colorGreen  = lipgloss.Color("#3fb950")
	colorRed    = lipgloss.Color("#f85149")
	colorYellow = lipgloss.Color("#d29922")
	colorPurple = lipgloss.Color("#bc8cff")
	colorCyan   = lipgloss.Color("#76e3ea")

	// Structural
	colorDivider   = lipgloss.Color("#30363d")
	colorHighlight = lipgloss.Color("#1f6feb")
)

// ────────────────────────────────────────────────────────────
// Component Styles
// ────────────────────────────────────────────────────────────

// Header bar
var (
	headerBarStyle = lipgloss.NewStyle().
			Background(colorBgSurface).
			Foreground(colorText).
			Padding(0, 1)

	headerBrandStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorBlue)

	headerSepStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	headerMetaStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	headerModeStyle = lipgloss.NewStyle().
			Foreground(colorPurple).
			Bold(true)
)

// Panel chrome
var (
	panelBorder = lipgloss.Border{Top: "─"}

	panelStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(panelBorder).
			BorderForeground(colorDivider)

	panelActiveStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Border(panelBorder).
				BorderForeground(colorBlue)

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	panelTitleDimStyle = lipgloss.NewStyle().
				Foreground(colorTextMuted).
				Bold(true)
)

// Derivation steps
var (
	stepStyle = lipgloss.NewStyle().
			Foreground(colorText)

	stepCurrentStyle = lipgloss.NewStyle().
				Background(colorHighlight).
				Foreground(colorText).
				Bold(true)

	stepIndexStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	stepRuleStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	nextMarkStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true)

	doneMarkStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)
)

// Parse tree nodes, one style per parsetree.State
var (
	nodePendingStyle = lipgloss.NewStyle().Foreground(colorText)
	nodeFreshStyle   = lipgloss.NewStyle().Foreground(colorCyan)
	nodeActiveStyle  = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	nodeSettledStyle = lipgloss.NewStyle().Foreground(colorTextDim)
	nodeFinalStyle   = lipgloss.NewStyle().Foreground(colorGreen)

	edgeStyle = lipgloss.NewStyle().Foreground(colorDivider)
)

// nodeStyle returns the style of a tree node in state s.
func nodeStyle(s parsetree.State) lipgloss.Style {
	switch s {
	case parsetree.Fresh:
		return nodeFreshStyle
	case parsetree.Active:
		return nodeActiveStyle
	case parsetree.Settled:
		return nodeSettledStyle
	case parsetree.Final:
		return nodeFinalStyle
	default:
		return nodePendingStyle
	}
}

// Rules pane
var (
	detailLabelStyle = lipgloss.NewStyle().
				Foreground(colorBlue)

	detailValueStyle = lipgloss.NewStyle().
				Foreground(colorText)

	detailSectionStyle = lipgloss.NewStyle().
				Foreground(colorDivider)

	ruleNumberStyle = lipgloss.NewStyle().
			Foreground(colorPurple).
			Bold(true)

	barCorrectStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	barIncorrectStyle = lipgloss.NewStyle().
				Foreground(colorRed)

	barEmptyStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	feedbackStyle = lipgloss.NewStyle().
			Foreground(colorYellow)
)

// Comparison view
var (
	diffSameStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	diffLeftStyle = lipgloss.NewStyle().
			Foreground(colorBlue)

	diffRightStyle = lipgloss.NewStyle().
			Foreground(colorPurple)

	diffHeaderStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	verdictOkStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	verdictWarnStyle = lipgloss.NewStyle().
				Foreground(colorYellow)
)

// Footer / status bar
var (
	statusStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorBgSurface).
			Padding(0, 1)

	hintKeyStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true)

	hintDescStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)
)

// Grammar list
var (
	listItemStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Padding(0, 1)

	listSelectedStyle = lipgloss.NewStyle().
				Background(colorHighlight).
				Foreground(colorText).
				Bold(true).
				Padding(0, 1)

	listCurrentMark = lipgloss.NewStyle().
			Foreground(colorGreen)

	listOtherMark = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	emptyStateStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted).
			Padding(2, 4)

	inputStyle = lipgloss.NewStyle().
			Foreground(colorBg).
			Background(colorCyan).
			Padding(0, 1)
)
