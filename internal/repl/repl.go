// Package repl is a line-oriented front end for a derivation walk.
//
// Commands are read with readline and answered with pterm. Each line is
// one command; "help" lists them. The interpreter is usable without a
// terminal: Eval takes a line and reports whether the user asked to quit.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/schuko/tracing"
	"github.com/pterm/pterm"

	"github.com/Mr-Dark-debug/ambiscope/internal/compare"
	"github.com/Mr-Dark-debug/ambiscope/internal/cursor"
	"github.com/Mr-Dark-debug/ambiscope/internal/database"
	"github.com/Mr-Dark-debug/ambiscope/internal/notification"
	"github.com/Mr-Dark-debug/ambiscope/internal/parsetree"
	"github.com/Mr-Dark-debug/ambiscope/internal/practice"
	"github.com/Mr-Dark-debug/ambiscope/internal/walk"
)

// tracer traces with key 'ambiscope.repl'.
func tracer() tracing.Trace {
	return tracing.Select("ambiscope.repl")
}

// ErrUnknownCommand is returned by Eval for a command it does not know.
var ErrUnknownCommand = errors.New("unknown command")

// Intp is the interpreter behind the prompt.
type Intp struct {
	walk   *walk.Walk
	notify bool
	repl   *readline.Instance
}

// Option configures an Intp.
type Option func(*Intp)

// WithNotifications sends a desktop notification when both derivations
// are complete.
func WithNotifications(on bool) Option {
	return func(intp *Intp) {
		intp.notify = on
	}
}

// New creates an interpreter over w.
func New(w *walk.Walk, opts ...Option) *Intp {
	intp := &Intp{walk: w}
	for _, opt := range opts {
		opt(intp)
	}
	return intp
}

// Walk returns the walk the interpreter drives.
func (intp *Intp) Walk() *walk.Walk {
	return intp.walk
}

// InitDisplay sets up pterm prefixes for interactive use.
func InitDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// REPL reads commands until EOF or "quit".
func (intp *Intp) REPL() error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "ambiscope> ",
		AutoComplete:    completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("starting readline: %w", err)
	}
	defer rl.Close()
	intp.repl = rl

	pterm.Info.Println("Welcome to ambiscope. Type \"help\" for commands, <ctrl>D to quit.")
	intp.status()
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil { // io.EOF
			break
		}
		quit, err := intp.Eval(line)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	pterm.Println("Good bye!")
	return nil
}

// Source evaluates the commands in r, one per line. Blank lines and lines
// starting with '#' are skipped. It stops at the first error or at quit.
func (intp *Intp) Source(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		quit, err := intp.Eval(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineno, err)
		}
		if quit {
			return nil
		}
	}
	return scanner.Err()
}

// SourceFile evaluates the commands in the named file.
func (intp *Intp) SourceFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening init file: %w", err)
	}
	defer f.Close()
	return intp.Source(f)
}

// command is one REPL command.
type command struct {
	names []string
	args  string
	help  string
	run   func(intp *Intp, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{[]string{"next", "n"}, "[count]", "advance the cursor", (*Intp).cmdNext},
		{[]string{"prev", "p"}, "[count]", "retreat the cursor", (*Intp).cmdPrev},
		{[]string{"reset", "r"}, "", "rewind to step 0", (*Intp).cmdReset},
		{[]string{"toggle", "t"}, "", "show the other derivation (single mode)", (*Intp).cmdToggle},
		{[]string{"grammar", "g"}, "[name|number]", "select a grammar, or the next one", (*Intp).cmdGrammar},
		{[]string{"list", "ls"}, "", "list the grammars", (*Intp).cmdList},
		{[]string{"mode", "m"}, "[single|dual|practice]", "switch mode, or cycle", (*Intp).cmdMode},
		{[]string{"show", "s"}, "", "show the visited steps", (*Intp).cmdShow},
		{[]string{"tree"}, "[left|right] [outline]", "draw the parse tree so far", (*Intp).cmdTree},
		{[]string{"compare", "c"}, "", "compare the two derivations", (*Intp).cmdCompare},
		{[]string{"rules"}, "", "list the productions", (*Intp).cmdRules},
		{[]string{"apply", "a"}, "<rule number>", "apply a production (practice mode)", (*Intp).cmdApply},
		{[]string{"hint", "?"}, "", "reveal the next rule", (*Intp).cmdHint},
		{[]string{"stats"}, "", "practice statistics", (*Intp).cmdStats},
		{[]string{"help", "h"}, "", "this list", (*Intp).cmdHelp},
	}
}

func lookup(name string) *command {
	for i := range commands {
		for _, n := range commands[i].names {
			if n == name {
				return &commands[i]
			}
		}
	}
	return nil
}

func completer() *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(commands)+1)
	for _, c := range commands {
		items = append(items, readline.PcItem(c.names[0]))
	}
	items = append(items, readline.PcItem("quit"))
	return readline.NewPrefixCompleter(items...)
}

// Eval runs one command line. It reports true when the user asked to quit.
func (intp *Intp) Eval(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]
	switch name {
	case "quit", "exit", "q":
		return true, nil
	}
	// A bare number applies a rule in practice mode.
	if _, err := strconv.Atoi(name); err == nil && intp.walk.Mode() == database.ModePractice {
		return false, intp.cmdApply(fields)
	}
	cmd := lookup(name)
	if cmd == nil {
		return false, fmt.Errorf("%w %q", ErrUnknownCommand, name)
	}
	tracer().Debugf("eval %s %v", cmd.names[0], args)
	return false, cmd.run(intp, args)
}

// ────────────────────────────────────────────────────────────
// Cursor commands
// ────────────────────────────────────────────────────────────

func count(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("bad count %q", args[0])
	}
	return n, nil
}

func (intp *Intp) cmdNext(args []string) error {
	n, err := count(args)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		m := intp.walk.Advance()
		intp.report(m)
		if !m.Moved {
			break
		}
	}
	return nil
}

func (intp *Intp) cmdPrev(args []string) error {
	n, err := count(args)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		m := intp.walk.Retreat()
		if !m.Moved {
			pterm.Warning.Println("Already at the start.")
			break
		}
	}
	intp.status()
	return nil
}

func (intp *Intp) cmdReset([]string) error {
	intp.walk.Reset()
	intp.status()
	return nil
}

func (intp *Intp) cmdToggle([]string) error {
	if intp.walk.Mode() != database.ModeSingle {
		return errors.New("toggle works in single mode; use \"mode single\"")
	}
	intp.walk.Toggle()
	intp.status()
	return nil
}

func (intp *Intp) cmdGrammar(args []string) error {
	if len(args) == 0 {
		intp.walk.NextGrammar()
		intp.status()
		return nil
	}
	i, _, err := intp.walk.Catalog().Lookup(strings.Join(args, " "))
	if err != nil {
		return err
	}
	intp.walk.SelectGrammar(i)
	intp.status()
	return nil
}

func (intp *Intp) cmdMode(args []string) error {
	if len(args) == 0 {
		intp.walk.CycleMode()
	} else if _, err := intp.walk.SetMode(strings.ToLower(args[0])); err != nil {
		return err
	}
	intp.status()
	return nil
}

func (intp *Intp) cmdApply(args []string) error {
	if intp.walk.Mode() != database.ModePractice {
		return errors.New("apply works in practice mode; use \"mode practice\"")
	}
	if len(args) == 0 {
		return errors.New("apply needs a rule number, see \"rules\"")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("bad rule number %q", args[0])
	}
	outcome, a, m := intp.walk.Apply(n - 1)
	switch outcome {
	case practice.Correct:
		pterm.Success.Printfln("Correct: %s (%s step %d)", a.Chosen, a.Side, a.Step)
		intp.report(m)
	case practice.Incorrect:
		pterm.Warning.Println(intp.walk.Drill().Feedback())
	case practice.AlreadyComplete:
		pterm.Info.Println("Both derivations are complete.")
	case practice.InvalidRule:
		return fmt.Errorf("no rule %d, see \"rules\"", n)
	}
	return nil
}

func (intp *Intp) cmdHint([]string) error {
	h, ok := intp.walk.Hint()
	if !ok {
		if intp.walk.Mode() == database.ModeSingle {
			return errors.New("hints work in dual and practice mode")
		}
		pterm.Info.Println("Both derivations are complete.")
		return nil
	}
	pterm.Info.Printfln("%s step %d: apply %s to %s", h.Side, h.Step, h.Rule, h.Form)
	return nil
}

// ────────────────────────────────────────────────────────────
// Display commands
// ────────────────────────────────────────────────────────────

func (intp *Intp) cmdList([]string) error {
	return pterm.DefaultTable.WithHasHeader().WithData(GrammarTable(intp.walk)).Render()
}

func (intp *Intp) cmdShow([]string) error {
	intp.status()
	for _, data := range StepTables(intp.walk) {
		if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
			return err
		}
	}
	return nil
}

func (intp *Intp) cmdTree(args []string) error {
	side, outline := cursor.Left, false
	for _, a := range args {
		switch strings.ToLower(a) {
		case "left", "l":
			side = cursor.Left
		case "right", "r":
			side = cursor.Right
		case "outline", "o":
			outline = true
		default:
			return fmt.Errorf("bad tree argument %q", a)
		}
	}
	tree, err := intp.walk.Tree(side)
	if err != nil {
		return err
	}
	pterm.DefaultSection.Println(intp.walk.Derivation(side).Description)
	if outline {
		return pterm.DefaultTree.WithRoot(pterm.NewTreeFromLeveledList(LeveledList(tree))).Render()
	}
	for _, line := range tree.Draw(1, NodeStyle) {
		pterm.Println(line)
	}
	return nil
}

func (intp *Intp) cmdCompare([]string) error {
	report, err := intp.walk.Compare()
	if err != nil {
		return err
	}
	pterm.DefaultSection.Printfln("%s: %s", report.Grammar, report.Input)
	if err := pterm.DefaultTable.WithHasHeader().WithData(compare.TableData(report)).Render(); err != nil {
		return err
	}
	if report.DivergesAt > 0 {
		pterm.Info.Printfln("The derivations diverge at step %d.", report.DivergesAt)
	}
	if report.Ambiguous() {
		pterm.Success.Println("Both derivations produce the same string but with different parse trees.")
	}
	for _, w := range report.Warnings {
		pterm.Warning.Println(w)
	}
	return nil
}

func (intp *Intp) cmdRules([]string) error {
	for i, p := range intp.walk.Grammar().Productions {
		pterm.Printfln("%d. %s", i+1, p)
	}
	return nil
}

func (intp *Intp) cmdStats([]string) error {
	s := intp.walk.Drill().Stats()
	pterm.Info.Printfln("attempts %d, correct %d, incorrect %d, hints %d, auto %d, accuracy %.0f%%",
		s.Attempts, s.Correct, s.Incorrect, s.Hints, s.Auto, 100*s.Accuracy())
	return nil
}

func (intp *Intp) cmdHelp([]string) error {
	data := [][]string{{"Command", "Arguments", "Description"}}
	for _, c := range commands {
		data = append(data, []string{strings.Join(c.names, ", "), c.args, c.help})
	}
	data = append(data, []string{"quit, exit, q", "", "leave"})
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// ────────────────────────────────────────────────────────────
// Output
// ────────────────────────────────────────────────────────────

// report prints the outcome of an advance.
func (intp *Intp) report(m walk.Move) {
	if !m.Moved {
		pterm.Info.Println("Nothing left to derive.")
		return
	}
	w := intp.walk
	if w.IsDual() {
		st := w.Dual().Step(m.Side)
		pterm.Printfln("%-5s %d: %s   (%s)", m.Side, w.Dual().Index(m.Side), st.Result, st.Rule)
	} else {
		st := w.Single().Step()
		pterm.Printfln("%d: %s   (%s)", w.Single().StepIndex(), st.Result, st.Rule)
	}
	if m.Completed {
		intp.completed()
	}
}

func (intp *Intp) completed() {
	if !intp.walk.IsDual() {
		intp.verdict()
		return
	}
	pterm.Success.Println("Both derivations are complete.")
	if err := intp.cmdCompare(nil); err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	if intp.notify {
		report, err := intp.walk.Compare()
		if err != nil {
			return
		}
		// A failed notification is traced by the notification package.
		_ = notification.DerivationsComplete(report.Grammar, report.Input, report.Ambiguous())
	}
}

// verdict tells whether the derivation finished in single mode produced
// the input.
func (intp *Intp) verdict() {
	s, warnings, err := intp.walk.Check()
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	for _, w := range warnings {
		pterm.Warning.Println(w)
	}
	in := intp.walk.Input()
	if !s.Completes {
		pterm.Error.Printfln("Mismatch: derived %q, expected %q.", s.Derived, in.String)
		return
	}
	pterm.Success.Printfln("Derivation complete: derived %q.", in.String)
	if in.IsAmbiguous() {
		pterm.Info.Printfln("%d derivations are recorded for this input. Type \"toggle\" for the next one.",
			len(in.Derivations))
	}
}

// status prints where the cursor stands.
func (intp *Intp) status() {
	w := intp.walk
	g := w.Grammar()
	pterm.Info.Printfln("%s [%s] %s: %q", g.Name, w.Mode(), g.Description, w.Input().String)
	if !w.IsDual() {
		st := w.Single().Step()
		pterm.Printfln("%s, step %d: %s", w.Single().Derivation().Label(), w.Single().StepIndex(), st.Result)
		return
	}
	for _, side := range []cursor.Side{cursor.Left, cursor.Right} {
		st := w.Dual().Step(side)
		pterm.Printfln("%-5s %d: %s", side, w.Dual().Index(side), st.Result)
	}
	if side, ok := w.Dual().Peek(); ok {
		pterm.Printfln("next: %s", side)
	}
}

// GrammarTable returns the grammar list, header first, with the current
// grammar marked.
func GrammarTable(w *walk.Walk) [][]string {
	data := [][]string{{"#", "Name", "Description", "Input", "Derivations"}}
	current := w.GrammarIndex()
	for i, g := range w.Catalog().Grammars {
		mark := ""
		if i == current {
			mark = "*"
		}
		input, n := "", 0
		if len(g.Inputs) > 0 {
			input, n = g.Inputs[0].String, len(g.Inputs[0].Derivations)
		}
		data = append(data, []string{
			fmt.Sprintf("%d%s", i+1, mark), g.Name, g.Description, input, strconv.Itoa(n),
		})
	}
	return data
}

// StepTables returns one table per panel listing the visited steps.
func StepTables(w *walk.Walk) [][][]string {
	sides := []cursor.Side{cursor.Left}
	if w.IsDual() {
		sides = append(sides, cursor.Right)
	}
	var tables [][][]string
	for _, side := range sides {
		d := w.Derivation(side)
		data := [][]string{{"Step", d.Label(), "Rule Applied"}}
		for i, st := range w.History(side) {
			data = append(data, []string{strconv.Itoa(i), st.Result, st.Rule})
		}
		tables = append(tables, data)
	}
	return tables
}

// LeveledList converts a parse tree for pterm's tree printer.
func LeveledList(t *parsetree.Tree) pterm.LeveledList {
	var ll pterm.LeveledList
	t.Walk(func(n *parsetree.Node, depth int) {
		ll = append(ll, pterm.LeveledListItem{Level: depth, Text: n.Symbol})
	})
	return ll
}

// NodeStyle colours a tree label by its node state.
func NodeStyle(s parsetree.State, text string) string {
	switch s {
	case parsetree.Active:
		return pterm.FgYellow.Sprint(text)
	case parsetree.Fresh:
		return pterm.FgCyan.Sprint(text)
	case parsetree.Final:
		return pterm.FgGreen.Sprint(text)
	case parsetree.Settled:
		return pterm.FgGray.Sprint(text)
	}
	return text
}
