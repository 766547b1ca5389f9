package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Mr-Dark-debug/ambiscope/internal/cursor"
	"github.com/Mr-Dark-debug/ambiscope/internal/database"
	"github.com/Mr-Dark-debug/ambiscope/internal/grammar"
	"github.com/Mr-Dark-debug/ambiscope/internal/recorder"
	"github.com/Mr-Dark-debug/ambiscope/internal/walk"
)

var (
	walkActions string
	walkMode    string
	walkRecord  bool
)

var walkCmd = &cobra.Command{
	Use:   "walk [grammar]",
	Short: "Replay a sequence of cursor actions",
	Long: `Walk applies a string of one-letter actions to a cursor and prints the
position after each one:

  n  advance       p  retreat
  t  toggle        r  reset
  g  next grammar

Spaces are ignored, so "nnnn p n" is the same as "nnnnpn".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWalk,
}

func init() {
	walkCmd.Flags().StringVarP(&walkActions, "actions", "a", "", "actions to apply (required)")
	walkCmd.Flags().StringVarP(&walkMode, "mode", "m", database.ModeDual, "cursor mode: single or dual")
	walkCmd.Flags().BoolVar(&walkRecord, "record", false, "record the walk in the history")
	_ = walkCmd.MarkFlagRequired("actions")
	rootCmd.AddCommand(walkCmd)
}

func runWalk(cmd *cobra.Command, args []string) error {
	if walkMode != database.ModeSingle && walkMode != database.ModeDual {
		return fmt.Errorf("walk mode must be single or dual, not %q", walkMode)
	}

	var c *grammar.Catalog
	var opts []walk.Option
	if walkRecord {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		if c, err = loadCatalog(store); err != nil {
			return err
		}
		_, g, err := lookupGrammar(c, args)
		if err != nil {
			return err
		}
		session, err := recorder.Begin(context.Background(), store, cfg.Recorder(), &database.Session{
			GrammarName: g.Name,
			Mode:        walkMode,
			Client:      "walk",
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := session.End(); err != nil {
				pterm.Error.Println(err.Error())
			}
		}()
		opts = append(opts, walk.WithRecorder(session, session.ID))
	} else {
		var err error
		if c, err = readCatalog(); err != nil {
			return err
		}
	}

	gi, g, err := lookupGrammar(c, args)
	if err != nil {
		return err
	}
	w, err := walk.New(c, walkMode, cfg.Policy(), opts...)
	if err != nil {
		return err
	}
	if gi != 0 {
		w.SelectGrammar(gi)
	}

	rows, err := applyActions(w, walkActions)
	if err != nil {
		return err
	}
	pterm.DefaultSection.Printfln("%s: %q (%s)", g.Name, w.Input().String, walkMode)
	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
		return err
	}
	if w.IsDual() && w.IsComplete() {
		pterm.Success.Println("Both derivations are complete.")
	}
	if sid := w.SessionID(); sid != "" {
		pterm.Info.Printfln("Recorded as session %s", sid)
	}
	return nil
}

// applyActions runs the one-letter actions against w and returns a table,
// header first, with the position after each action.
func applyActions(w *walk.Walk, actions string) ([][]string, error) {
	rows := [][]string{walkHeader(w)}
	i := 0
	for _, a := range actions {
		var m walk.Move
		switch a {
		case ' ', '\t':
			continue
		case 'n':
			m = w.Advance()
		case 'p':
			m = w.Retreat()
		case 't':
			m = w.Toggle()
		case 'r':
			m = w.Reset()
		case 'g':
			m = w.NextGrammar()
		default:
			return nil, fmt.Errorf("unknown action %q at position %d", a, i+1)
		}
		i++
		rows = append(rows, append([]string{strconv.Itoa(i), m.Action, m.Result}, position(w)...))
	}
	return rows, nil
}

func walkHeader(w *walk.Walk) []string {
	if w.IsDual() {
		return []string{"#", "Action", "Result", "Left", "Right", "Next"}
	}
	return []string{"#", "Action", "Result", "Derivation", "Step", "Form"}
}

// position describes the cursor in the columns of walkHeader.
func position(w *walk.Walk) []string {
	if !w.IsDual() {
		s := w.Single()
		return []string{
			strconv.Itoa(s.Snapshot().DerivationIndex + 1),
			strconv.Itoa(s.StepIndex()),
			s.Step().Result,
		}
	}
	d := w.Dual()
	next := "-"
	if side, ok := d.Peek(); ok {
		next = side.String()
	}
	return []string{
		fmt.Sprintf("%d %s", d.Index(cursor.Left), d.Step(cursor.Left).Result),
		fmt.Sprintf("%d %s", d.Index(cursor.Right), d.Step(cursor.Right).Result),
		next,
	}
}
