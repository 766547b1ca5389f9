package compare

import (
	"fmt"
	"strings"
)

// FormatReport renders the report as markdown.
func FormatReport(report *Report) string {
	var b strings.Builder

	b.WriteString("# Derivation Comparison\n\n")
	b.WriteString(fmt.Sprintf("**Grammar:** `%s` (%s)\n", report.Grammar, report.Description))
	b.WriteString(fmt.Sprintf("**Input:** `%s`\n", report.Input))
	b.WriteString(fmt.Sprintf("**Generated:** %s\n\n", report.GeneratedAt))

	b.WriteString("## Steps\n\n")
	b.WriteString(fmt.Sprintf("| Step | %s | Rule Applied | %s | Rule Applied |\n",
		escape(report.Left.Description), escape(report.Right.Description)))
	b.WriteString("|------|------------|--------------|------------|--------------|\n")
	for _, row := range report.Rows {
		marker := ""
		if row.Step == report.DivergesAt {
			marker = " ◀"
		}
		b.WriteString(fmt.Sprintf("| %d%s | %s | %s | %s | %s |\n",
			row.Step, marker,
			escape(row.Left.Result), escape(row.Left.Rule),
			escape(row.Right.Result), escape(row.Right.Rule)))
	}
	b.WriteString("\n")

	b.WriteString("## Summary\n\n")
	b.WriteString("| | Left | Right |\n")
	b.WriteString("|---|------|-------|\n")
	b.WriteString(fmt.Sprintf("| Type | %s | %s |\n", report.Left.Type, report.Right.Type))
	b.WriteString(fmt.Sprintf("| Steps | %d | %d |\n", report.Left.Steps, report.Right.Steps))
	b.WriteString(fmt.Sprintf("| Derived | `%s` | `%s` |\n", report.Left.Derived, report.Right.Derived))
	b.WriteString(fmt.Sprintf("| Reaches input | %s | %s |\n", yesNo(report.Left.Completes), yesNo(report.Right.Completes)))
	b.WriteString(fmt.Sprintf("| Parse tree | `%s` | `%s` |\n\n", report.Left.Tree, report.Right.Tree))

	if report.DivergesAt > 0 {
		b.WriteString(fmt.Sprintf("- **Diverges at step:** %d\n", report.DivergesAt))
	} else {
		b.WriteString("- **Diverges at step:** never\n")
	}
	b.WriteString(fmt.Sprintf("- **Same final form:** %s\n", yesNo(report.SameFinalForm)))
	b.WriteString(fmt.Sprintf("- **Structurally distinct trees:** %s\n", yesNo(report.StructurallyDistinct)))
	if report.Ambiguous() {
		b.WriteString("\nBoth derivations produce the same string but with different parse trees.\n")
	}
	b.WriteString("\n")

	if len(report.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range report.Warnings {
			b.WriteString(fmt.Sprintf("- %s\n", w))
		}
	}

	return b.String()
}

// TableData returns the step table as rows of strings, header first, for
// table renderers.
func TableData(report *Report) [][]string {
	data := [][]string{{"Step", report.Left.Description, "Rule", report.Right.Description, "Rule"}}
	for _, row := range report.Rows {
		data = append(data, []string{
			fmt.Sprint(row.Step),
			row.Left.Result, row.Left.Rule,
			row.Right.Result, row.Right.Rule,
		})
	}
	return data
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
