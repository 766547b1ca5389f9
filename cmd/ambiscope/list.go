package main

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Mr-Dark-debug/ambiscope/internal/grammar"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the grammars",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	c, err := readCatalog()
	if err != nil {
		return err
	}
	return pterm.DefaultTable.WithHasHeader().WithData(catalogTable(c)).Render()
}

// catalogTable returns one row per grammar, header first.
func catalogTable(c *grammar.Catalog) [][]string {
	data := [][]string{{"#", "Name", "Description", "Start", "Rules", "Input", "Derivations"}}
	for i := range c.Grammars {
		g := c.Grammar(i)
		input, n := "", 0
		if len(g.Inputs) > 0 {
			input, n = g.Inputs[0].String, len(g.Inputs[0].Derivations)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1), g.Name, g.Description, g.StartSymbol,
			strconv.Itoa(len(g.Productions)), fmt.Sprintf("%q", input), strconv.Itoa(n),
		})
	}
	return data
}
