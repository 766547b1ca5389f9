package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Mr-Dark-debug/ambiscope/internal/database"
	"github.com/Mr-Dark-debug/ambiscope/pkg/textutil"
)

var (
	historyLimit   int
	historySession string
	historyGrammar string
	historyMode    string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded walk sessions",
	Long: `History lists recorded sessions, most recent first. With --session it
shows one session's statistics, events and practice attempts. A session can
be given by any unique prefix of its id.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of sessions")
	historyCmd.Flags().StringVarP(&historySession, "session", "s", "", "session id or id prefix")
	historyCmd.Flags().StringVar(&historyGrammar, "grammar", "", "only sessions of this grammar")
	historyCmd.Flags().StringVar(&historyMode, "mode", "", "only sessions in this mode")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if historySession != "" {
		return showSession(store, historySession)
	}

	filter := database.SessionFilter{Limit: historyLimit}
	if historyGrammar != "" {
		filter.GrammarName = &historyGrammar
	}
	if historyMode != "" {
		filter.Mode = &historyMode
	}
	sessions, err := store.ListSessions(filter)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		pterm.Info.Println("No sessions recorded yet.")
		return nil
	}
	return pterm.DefaultTable.WithHasHeader().WithData(sessionTable(sessions, time.Now())).Render()
}

// sessionTable returns one row per session, header first.
func sessionTable(sessions []*database.Session, now time.Time) [][]string {
	data := [][]string{{"Session", "Grammar", "Mode", "Client", "Started", "Duration"}}
	for _, s := range sessions {
		duration := "running"
		if s.EndedAt != nil {
			duration = textutil.Elapsed(time.Duration(*s.EndedAt - s.StartedAt))
		}
		data = append(data, []string{
			textutil.ShortID(s.SessionID, 8), s.GrammarName, s.Mode, s.Client,
			textutil.Ago(s.StartedAt, now), duration,
		})
	}
	return data
}

// maxSessionScan bounds the sessions searched for an id prefix.
const maxSessionScan = 10000

// resolveSession finds the session whose id starts with prefix.
func resolveSession(store database.Store, prefix string) (*database.Session, error) {
	sessions, err := store.ListSessions(database.SessionFilter{Limit: maxSessionScan})
	if err != nil {
		return nil, err
	}
	var found *database.Session
	for _, s := range sessions {
		if !strings.HasPrefix(s.SessionID, prefix) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("session prefix %q is ambiguous", prefix)
		}
		found = s
	}
	if found == nil {
		return nil, fmt.Errorf("no session %q", prefix)
	}
	return found, nil
}

func showSession(store database.Store, prefix string) error {
	s, err := resolveSession(store, prefix)
	if err != nil {
		return err
	}
	stats, err := store.SessionStats(s.SessionID)
	if err != nil {
		return err
	}
	events, err := store.SessionEvents(s.SessionID)
	if err != nil {
		return err
	}
	attempts, err := store.SessionAttempts(s.SessionID)
	if err != nil {
		return err
	}

	pterm.DefaultSection.Printfln("Session %s", s.SessionID)
	pterm.Printfln("%s, %s mode, %s client, started %s",
		s.GrammarName, s.Mode, s.Client, textutil.Stamp(s.StartedAt))
	pterm.Printfln("%d events: %d advances, %d retreats, %d completions over %s",
		stats.Events, stats.Advances, stats.Retreats, stats.Completions, textutil.Elapsed(time.Duration(stats.DurationMs)*time.Millisecond))
	if stats.Attempts > 0 {
		pterm.Printfln("%d practice attempts, %d correct", stats.Attempts, stats.CorrectAttempts)
	}

	if len(events) > 0 {
		if err := pterm.DefaultTable.WithHasHeader().WithData(eventTable(events)).Render(); err != nil {
			return err
		}
	}
	if len(attempts) > 0 {
		return pterm.DefaultTable.WithHasHeader().WithData(attemptTable(attempts)).Render()
	}
	return nil
}

// eventTable returns one row per event, header first.
func eventTable(events []*database.CursorEvent) [][]string {
	data := [][]string{{"Seq", "Time", "Action", "Result", "Side", "Position"}}
	for _, e := range events {
		pos := fmt.Sprintf("L%d R%d", e.LeftStep, e.RightStep)
		if e.LeftStep == 0 && e.RightStep == 0 && (e.StepIndex > 0 || e.DerivationIndex > 0) {
			pos = fmt.Sprintf("D%d S%d", e.DerivationIndex+1, e.StepIndex)
		}
		data = append(data, []string{
			strconv.Itoa(e.Seq), textutil.Clock(e.Timestamp),
			e.Action, e.Result, e.Side, pos,
		})
	}
	return data
}

// attemptTable returns one row per practice attempt, header first.
func attemptTable(attempts []*database.PracticeAttempt) [][]string {
	data := [][]string{{"Time", "Side", "Step", "Chosen", "Expected", "Correct"}}
	for _, a := range attempts {
		correct := "no"
		if a.Correct {
			correct = "yes"
		}
		data = append(data, []string{
			textutil.Clock(a.Timestamp), a.Side, strconv.Itoa(a.Step),
			a.Chosen, a.Expected, correct,
		})
	}
	return data
}
