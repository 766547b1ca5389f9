package tui

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/npillmayer/schuko/tracing"

	"github.com/Mr-Dark-debug/ambiscope/internal/compare"
	"github.com/Mr-Dark-debug/ambiscope/internal/cursor"
	"github.com/Mr-Dark-debug/ambiscope/internal/database"
	"github.com/Mr-Dark-debug/ambiscope/internal/notification"
	"github.com/Mr-Dark-debug/ambiscope/internal/practice"
	"github.com/Mr-Dark-debug/ambiscope/internal/walk"
)

// tracer traces with key 'ambiscope.tui'.
func tracer() tracing.Trace {
	return tracing.Select("ambiscope.tui")
}

// ────────────────────────────────────────────────────────────
// Pane focuses
// ────────────────────────────────────────────────────────────

// Pane represents which UI pane currently has keyboard focus.
type Pane int

const (
	PaneLeft Pane = iota
	PaneRight
	PaneRules
)

const paneCount = 3

// ────────────────────────────────────────────────────────────
// Model
// ────────────────────────────────────────────────────────────

// Model is the root BubbleTea model. Cursor state lives in the walk;
// the model only holds what the screen needs.
type Model struct {
	walk   *walk.Walk
	notify bool

	// UI state
	activePane      Pane
	width           int
	height          int
	showGrammarList bool
	selectedGrammar int
	showCompare     bool
	report          *compare.Report
	compareScroll   int

	// Status
	statusMsg string
	feedback  string
	err       error
}

// Option configures a Model.
type Option func(*Model)

// WithNotifications sends a desktop notification when both derivations
// are complete.
func WithNotifications(on bool) Option {
	return func(m *Model) {
		m.notify = on
	}
}

// NewModel creates a TUI model driving w.
func NewModel(w *walk.Walk, opts ...Option) Model {
	m := Model{
		walk:      w,
		statusMsg: "Press → to derive, esc for grammars",
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Walk returns the walk the model drives.
func (m Model) Walk() *walk.Walk {
	return m.walk
}

// ────────────────────────────────────────────────────────────
// Messages
// ────────────────────────────────────────────────────────────

type notifiedMsg struct{ err error }

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

// ────────────────────────────────────────────────────────────
// Init
// ────────────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return tea.SetWindowTitle("ambiscope")
}

func notifyComplete(report *compare.Report) tea.Cmd {
	return func() tea.Msg {
		err := notification.DerivationsComplete(report.Grammar, report.Input, report.Ambiguous())
		return notifiedMsg{err: err}
	}
}

// ────────────────────────────────────────────────────────────
// Update
// ────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case notifiedMsg:
		if msg.err != nil {
			tracer().Errorf("notification: %v", msg.err)
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		return m, nil
	}

	return m, nil
}

// handleKey routes keyboard input based on the current screen.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// ── Global ──

	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		if !m.showCompare {
			return m, tea.Quit
		}
	}

	// ── Comparison overlay ──

	if m.showCompare {
		switch key {
		case "esc", "c", "q", "enter":
			m.showCompare = false
		case "j", "down":
			m.compareScroll++
		case "k", "up":
			if m.compareScroll > 0 {
				m.compareScroll--
			}
		}
		return m, nil
	}

	// ── Grammar list ──

	if m.showGrammarList {
		switch key {
		case "j", "down":
			if m.selectedGrammar < m.walk.Catalog().Len()-1 {
				m.selectedGrammar++
			}
		case "k", "up":
			if m.selectedGrammar > 0 {
				m.selectedGrammar--
			}
		case "enter":
			m.walk.SelectGrammar(m.selectedGrammar)
			m.showGrammarList = false
			m.feedback = ""
			m.statusMsg = fmt.Sprintf("Grammar %s", m.walk.Grammar().Name)
		case "esc":
			m.showGrammarList = false
		}
		return m, nil
	}

	// ── Derivation view ──

	switch key {
	case "right", "l", " ", "space":
		return m.afterAdvance(m.walk.Advance())

	case "left", "h":
		mv := m.walk.Retreat()
		if mv.Moved {
			m.statusMsg = m.positionText()
		} else {
			m.statusMsg = "Already at the start"
		}
		m.feedback = ""

	case "t":
		if m.walk.Mode() != database.ModeSingle {
			m.statusMsg = "Toggle works in single mode (m to switch)"
			return m, nil
		}
		m.walk.Toggle()
		m.statusMsg = m.walk.Derivation(cursor.Left).Label()

	case "g":
		m.walk.NextGrammar()
		m.feedback = ""
		m.statusMsg = fmt.Sprintf("Grammar %s", m.walk.Grammar().Name)

	case "m":
		m.walk.CycleMode()
		m.feedback = ""
		m.activePane = PaneLeft
		m.statusMsg = fmt.Sprintf("%s mode", m.walk.Mode())

	case "r":
		m.walk.Reset()
		m.feedback = ""
		m.statusMsg = "Reset to the start symbol"

	case "c":
		m, _ = m.openCompare()

	case "?":
		h, ok := m.walk.Hint()
		switch {
		case ok:
			m.feedback = fmt.Sprintf("Hint: %s step %d applies %s", h.Side, h.Step, h.Rule)
		case m.walk.Mode() == database.ModeSingle:
			m.statusMsg = "Hints work in dual and practice mode"
		default:
			m.statusMsg = "Both derivations are complete"
		}

	case "tab":
		m.activePane = m.nextPane(1)

	case "shift+tab":
		m.activePane = m.nextPane(-1)

	case "esc", "enter":
		m.showGrammarList = true
		m.selectedGrammar = m.walk.GrammarIndex()

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		n, _ := strconv.Atoi(key)
		return m.applyRule(n - 1)
	}

	return m, nil
}

// nextPane moves focus by delta, skipping the right pane in single mode.
func (m Model) nextPane(delta int) Pane {
	p := m.activePane
	for {
		p = Pane((int(p) + delta + paneCount) % paneCount)
		if p != PaneRight || m.walk.IsDual() {
			return p
		}
	}
}

func (m Model) applyRule(i int) (tea.Model, tea.Cmd) {
	if m.walk.Mode() != database.ModePractice {
		m.statusMsg = "Rules are applied in practice mode (m to switch)"
		return m, nil
	}
	outcome, a, mv := m.walk.Apply(i)
	switch outcome {
	case practice.Correct:
		m.feedback = fmt.Sprintf("Correct: %s", a.Chosen)
		return m.afterMove(mv)
	case practice.Incorrect:
		m.feedback = m.walk.Drill().Feedback()
	case practice.AlreadyComplete:
		m, _ = m.openCompare()
		m.statusMsg = "Both derivations are complete"
	case practice.InvalidRule:
		m.statusMsg = fmt.Sprintf("No rule %d", i+1)
	}
	return m, nil
}

func (m Model) afterAdvance(mv walk.Move) (tea.Model, tea.Cmd) {
	if !mv.Moved {
		if m.walk.IsDual() {
			m, _ = m.openCompare()
			m.statusMsg = "Both derivations are complete"
		} else {
			m.statusMsg = "Already at the end (t for the other derivation)"
		}
		return m, nil
	}
	m.feedback = ""
	return m.afterMove(mv)
}

// afterMove reports a successful move. The move that completes the walk
// opens the comparison in dual and practice mode and shows the verdict in
// single mode.
func (m Model) afterMove(mv walk.Move) (tea.Model, tea.Cmd) {
	m.statusMsg = m.positionText()
	if !mv.Completed {
		return m, nil
	}
	if !m.walk.IsDual() {
		m.statusMsg = m.singleVerdict()
		return m, nil
	}
	m, ok := m.openCompare()
	if !ok {
		return m, nil
	}
	m.statusMsg = "Both derivations are complete"
	if !m.notify {
		return m, nil
	}
	return m, notifyComplete(m.report)
}

// openCompare builds the comparison report and shows it.
func (m Model) openCompare() (Model, bool) {
	report, err := m.walk.Compare()
	if err != nil {
		m.err = err
		m.statusMsg = fmt.Sprintf("Error: %v", err)
		return m, false
	}
	m.report = report
	m.compareScroll = 0
	m.showCompare = true
	return m, true
}

// singleVerdict tells whether the finished derivation produced the input.
func (m Model) singleVerdict() string {
	s, _, err := m.walk.Check()
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	in := m.walk.Input()
	switch {
	case !s.Completes:
		return fmt.Sprintf("Mismatch: derived %q, expected %q", s.Derived, in.String)
	case in.IsAmbiguous():
		return fmt.Sprintf("Derived %q. %d derivations are recorded for it: t for the next",
			in.String, len(in.Derivations))
	default:
		return fmt.Sprintf("Derivation complete: derived %q", in.String)
	}
}

// positionText describes where the cursor stands.
func (m Model) positionText() string {
	w := m.walk
	if !w.IsDual() {
		st := w.Single().Step()
		return fmt.Sprintf("Step %d: %s", w.Single().StepIndex(), st.Rule)
	}
	d := w.Dual()
	side, ok := d.Moved()
	if !ok {
		return fmt.Sprintf("left %d  right %d", d.Index(cursor.Left), d.Index(cursor.Right))
	}
	return fmt.Sprintf("%s step %d: %s", side, d.Index(side), d.Step(side).Rule)
}

// ────────────────────────────────────────────────────────────
// View
// ────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	header := renderHeader(&m)
	footer := renderFooter(&m)

	bodyHeight := m.height - 2 // header + footer

	var body string
	switch {
	case m.showCompare:
		body = renderComparePanel(&m, m.width, bodyHeight)
	case m.showGrammarList:
		body = renderGrammarList(&m)
	default:
		body = m.renderMainLayout(bodyHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// renderMainLayout puts the derivation panels on top and the rules below.
func (m Model) renderMainLayout(totalHeight int) string {
	if m.width < 60 {
		return m.renderCompactLayout(totalHeight)
	}

	topHeight := totalHeight * 70 / 100
	bottomHeight := totalHeight - topHeight
	rules := renderRulesPanel(&m, m.width, bottomHeight)

	if !m.walk.IsDual() {
		single := renderDerivationPanel(&m, cursor.Left, m.width, topHeight)
		return lipgloss.JoinVertical(lipgloss.Left, single, rules)
	}

	leftWidth := m.width / 2
	rightWidth := m.width - leftWidth
	left := renderDerivationPanel(&m, cursor.Left, leftWidth, topHeight)
	right := renderDerivationPanel(&m, cursor.Right, rightWidth, topHeight)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return lipgloss.JoinVertical(lipgloss.Left, topRow, rules)
}

// renderCompactLayout is used when the terminal is narrow (< 60 cols).
// Only the focused pane is shown.
func (m Model) renderCompactLayout(totalHeight int) string {
	switch m.activePane {
	case PaneRight:
		return renderDerivationPanel(&m, cursor.Right, m.width, totalHeight)
	case PaneRules:
		return renderRulesPanel(&m, m.width, totalHeight)
	default:
		return renderDerivationPanel(&m, cursor.Left, m.width, totalHeight)
	}
}
