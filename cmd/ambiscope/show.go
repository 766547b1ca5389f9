package main

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Mr-Dark-debug/ambiscope/internal/grammar"
	"github.com/Mr-Dark-debug/ambiscope/internal/parsetree"
	"github.com/Mr-Dark-debug/ambiscope/internal/repl"
)

var (
	showDerivation int
	showStep       int
	showTree       bool
	showOutline    bool
)

var showCmd = &cobra.Command{
	Use:   "show [grammar]",
	Short: "Show a grammar, a derivation and its parse tree",
	Long: `Show prints the productions of a grammar and the steps of one of its
derivations. With --step the derivation stops at that step, and --tree draws
the parse tree built so far.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().IntVarP(&showDerivation, "derivation", "d", 1, "derivation number")
	showCmd.Flags().IntVarP(&showStep, "step", "s", -1, "last step to show (default: all)")
	showCmd.Flags().BoolVarP(&showTree, "tree", "t", false, "draw the parse tree")
	showCmd.Flags().BoolVar(&showOutline, "outline", false, "draw the parse tree as an outline")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	c, err := readCatalog()
	if err != nil {
		return err
	}
	_, g, err := lookupGrammar(c, args)
	if err != nil {
		return err
	}
	in := &g.Inputs[0]
	d, step, err := pickStep(in, showDerivation, showStep)
	if err != nil {
		return err
	}

	pterm.DefaultSection.Printfln("%s: %s", g.Name, g.Description)
	for i, p := range g.Productions {
		pterm.Printfln("  %d. %s", i+1, p)
	}
	pterm.Println()

	pterm.DefaultSection.WithLevel(2).Printfln("%s for %q", d.Label(), in.String)
	if err := pterm.DefaultTable.WithHasHeader().WithData(stepTable(d, step)).Render(); err != nil {
		return err
	}

	if !showTree && !showOutline {
		return nil
	}
	r, err := parsetree.NewReplayer(g)
	if err != nil {
		return err
	}
	tree, err := r.Replay(d, step)
	if err != nil {
		return err
	}
	pterm.Println()
	if showOutline {
		return pterm.DefaultTree.WithRoot(pterm.NewTreeFromLeveledList(repl.LeveledList(tree))).Render()
	}
	for _, line := range tree.Draw(1, repl.NodeStyle) {
		pterm.Println(line)
	}
	return nil
}

// pickStep resolves a 1-based derivation number and a step index. A
// negative step selects the last one.
func pickStep(in *grammar.Input, derivation, step int) (*grammar.Derivation, int, error) {
	if derivation < 1 || derivation > len(in.Derivations) {
		return nil, 0, fmt.Errorf("derivation %d out of range 1..%d", derivation, len(in.Derivations))
	}
	d := &in.Derivations[derivation-1]
	if step < 0 {
		return d, d.LastIndex(), nil
	}
	if step > d.LastIndex() {
		return nil, 0, fmt.Errorf("step %d out of range 0..%d", step, d.LastIndex())
	}
	return d, step, nil
}

// stepTable lists the steps of d up to step, header first.
func stepTable(d *grammar.Derivation, step int) [][]string {
	data := [][]string{{"Step", "Sentential Form", "Rule Applied"}}
	for i := 0; i <= step; i++ {
		st := d.Steps[i]
		data = append(data, []string{strconv.Itoa(i), st.Result, st.Rule})
	}
	return data
}
