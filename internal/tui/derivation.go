package tui

import (
	"fmt"
	"strings"

	"github.com/Mr-Dark-debug/ambiscope/internal/cursor"
	"github.com/Mr-Dark-debug/ambiscope/internal/parsetree"
	"github.com/Mr-Dark-debug/ambiscope/pkg/textutil"
)

// sidePane maps a derivation side to the pane showing it.
func sidePane(s cursor.Side) Pane {
	if s == cursor.Right {
		return PaneRight
	}
	return PaneLeft
}

// renderDerivation renders the visited steps of side s followed by the
// parse tree built so far.
func renderDerivation(m *Model, s cursor.Side, width, height int) string {
	w := m.walk
	d := w.Derivation(s)
	history := w.History(s)
	current := len(history) - 1

	title := panelTitle(m, sidePane(s), textutil.Truncate(d.Label(), width-12))
	title += dimStyle.Render(fmt.Sprintf("  %d/%d", current, d.LastIndex()))
	switch {
	case current == d.LastIndex():
		title += " " + doneMarkStyle.Render("✓")
	case w.IsDual():
		if next, ok := w.Dual().Peek(); ok && next == s {
			title += " " + nextMarkStyle.Render("◀ next")
		}
	}

	var lines []string
	lines = append(lines, title)
	lines = append(lines, "")

	// Steps take at most half of the panel, the tree gets the rest.
	stepHeight := (height - 2) / 2
	if stepHeight < 3 {
		stepHeight = 3
	}
	scrollStart := 0
	if current >= stepHeight {
		scrollStart = current - stepHeight + 1
	}

	resultWidth := width / 2
	for i := scrollStart; i < len(history) && i < scrollStart+stepHeight; i++ {
		st := history[i]
		idx := stepIndexStyle.Render(textutil.PadLeft(fmt.Sprint(i), 2))
		result := textutil.Pad(textutil.Truncate(st.Result, resultWidth), resultWidth)
		rule := textutil.Truncate(st.Rule, width-resultWidth-6)
		if i == current {
			lines = append(lines, idx+" "+stepCurrentStyle.Render(result+" "+rule))
		} else {
			lines = append(lines, idx+" "+stepStyle.Render(result)+" "+stepRuleStyle.Render(rule))
		}
	}

	lines = append(lines, "")
	lines = append(lines, renderTree(m, s, width)...)

	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

// renderTree draws the parse tree of side s, coloured by node state.
func renderTree(m *Model, s cursor.Side, width int) []string {
	tree, err := m.walk.Tree(s)
	if err != nil {
		return []string{feedbackStyle.Render(textutil.Truncate(err.Error(), width))}
	}
	grid := tree.Grid(1)
	if grid.Width > width {
		// Too wide to draw; fall back to the bracketed form.
		return []string{textutil.Truncate(tree.Bracketed(), width)}
	}
	return grid.Render(
		func(n *parsetree.Node, text string) string { return nodeStyle(tree.StateOf(n)).Render(text) },
		func(text string) string { return edgeStyle.Render(text) },
	)
}

// renderDerivationPanel wraps a derivation in a styled panel.
func renderDerivationPanel(m *Model, s cursor.Side, width, height int) string {
	content := renderDerivation(m, s, width-4, height-2)
	return panelFrame(m, sidePane(s), width, height, content)
}
