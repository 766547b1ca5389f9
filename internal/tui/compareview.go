package tui

import (
	"fmt"
	"strings"

	"github.com/Mr-Dark-debug/ambiscope/internal/compare"
	"github.com/Mr-Dark-debug/ambiscope/pkg/textutil"
)

// renderCompare renders the two derivations side by side, one row per
// step, with the rows where they differ coloured per side.
func renderCompare(m *Model, width, height int) string {
	r := m.report
	title := panelTitleStyle.Render("Comparison")
	if r == nil {
		return title + "\n" + dimStyle.Render("Nothing to compare.")
	}
	title += dimStyle.Render(fmt.Sprintf("  %s  %q", r.Grammar, r.Input))

	col := (width - 6) / 2
	resultW := col * 3 / 5
	ruleW := col - resultW - 1

	cell := func(c compare.Cell) string {
		return textutil.Pad(textutil.Truncate(c.Result, resultW), resultW) + " " +
			textutil.Pad(textutil.Truncate(c.Rule, ruleW), ruleW)
	}

	var lines []string
	lines = append(lines,
		diffHeaderStyle.Render(textutil.PadLeft("#", 3)+"  "+
			textutil.Pad(textutil.Truncate(r.Left.Description, col), col)+" "+
			textutil.Truncate(r.Right.Description, col)))

	for _, row := range r.Rows {
		idx := stepIndexStyle.Render(textutil.PadLeft(fmt.Sprint(row.Step), 3))
		if row.Differs() {
			lines = append(lines, idx+"  "+diffLeftStyle.Render(cell(row.Left))+" "+diffRightStyle.Render(cell(row.Right)))
		} else {
			lines = append(lines, idx+"  "+diffSameStyle.Render(cell(row.Left)+" "+cell(row.Right)))
		}
	}

	// ── Verdict ──

	lines = append(lines, "")
	if r.DivergesAt > 0 {
		lines = append(lines, detailRow("Diverges at", fmt.Sprintf("step %d", r.DivergesAt)))
	}
	lines = append(lines, detailRow("Same final form", yesNo(r.SameFinalForm)))
	lines = append(lines, detailRow("Different trees", yesNo(r.StructurallyDistinct)))
	if r.Ambiguous() {
		lines = append(lines, verdictOkStyle.Render(
			"Both derivations produce the input with different parse trees: the grammar is ambiguous."))
	}
	for _, w := range r.Warnings {
		lines = append(lines, verdictWarnStyle.Render("! "+textutil.Truncate(w, width-2)))
	}

	// Apply scroll offset
	contentHeight := height - 1
	if m.compareScroll > 0 && m.compareScroll < len(lines) {
		lines = lines[m.compareScroll:]
	}
	if len(lines) > contentHeight {
		lines = lines[:contentHeight]
	}

	return title + "\n" + strings.Join(lines, "\n")
}

// renderComparePanel wraps the comparison in a styled panel.
func renderComparePanel(m *Model, width, height int) string {
	content := renderCompare(m, width-4, height-2)
	return panelActiveStyle.Width(width).Height(height).Render(content)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
