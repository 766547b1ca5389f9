package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Mr-Dark-debug/ambiscope/internal/compare"
)

var compareFormat string

var compareCmd = &cobra.Command{
	Use:   "compare [grammar]",
	Short: "Compare the two derivations of a grammar's input",
	Long: `Compare lines up the first two derivations of the grammar's input step
by step, checks that both derive the input, and replays both parse trees to
tell whether they really differ.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVarP(&compareFormat, "format", "f", "markdown", "output format: markdown, json or table")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	c, err := readCatalog()
	if err != nil {
		return err
	}
	_, g, err := lookupGrammar(c, args)
	if err != nil {
		return err
	}
	report, err := compare.Compare(g, &g.Inputs[0])
	if err != nil {
		return err
	}
	return writeReport(cmd.OutOrStdout(), report, compareFormat)
}

// writeReport renders report in the named format.
func writeReport(w io.Writer, report *compare.Report, format string) error {
	switch format {
	case "markdown", "md":
		_, err := io.WriteString(w, compare.FormatReport(report))
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(report)
	case "table":
		pterm.DefaultSection.Printfln("%s: %q", report.Grammar, report.Input)
		if err := pterm.DefaultTable.WithHasHeader().WithData(compare.TableData(report)).Render(); err != nil {
			return err
		}
		if report.Ambiguous() {
			pterm.Success.Println("Same string, different parse trees: the grammar is ambiguous.")
		}
		for _, warning := range report.Warnings {
			pterm.Warning.Println(warning)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
