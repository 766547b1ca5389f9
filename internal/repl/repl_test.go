package repl

import (
	"os"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mr-Dark-debug/ambiscope/internal/cursor"
	"github.com/Mr-Dark-debug/ambiscope/internal/database"
	"github.com/Mr-Dark-debug/ambiscope/internal/grammar"
	"github.com/Mr-Dark-debug/ambiscope/internal/notification"
	"github.com/Mr-Dark-debug/ambiscope/internal/walk"
)

func TestMain(m *testing.M) {
	pterm.DisableOutput()
	os.Exit(m.Run())
}

func newIntp(t *testing.T, mode string, opts ...Option) *Intp {
	t.Helper()
	w, err := walk.New(grammar.Builtin(), mode, cursor.RetreatJournal)
	require.NoError(t, err)
	return New(w, opts...)
}

func TestEvalCursorCommands(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ambiscope.repl")
	defer teardown()
	//
	intp := newIntp(t, database.ModeDual)
	for _, line := range []string{"next 3", "prev", "n", ""} {
		quit, err := intp.Eval(line)
		require.NoError(t, err, line)
		assert.False(t, quit)
	}
	d := intp.Walk().Dual()
	assert.Equal(t, 2, d.Index(cursor.Left))
	assert.Equal(t, 1, d.Index(cursor.Right))

	_, err := intp.Eval("reset")
	require.NoError(t, err)
	assert.False(t, d.CanRetreat())
}

func TestEvalQuit(t *testing.T) {
	intp := newIntp(t, database.ModeDual)
	for _, line := range []string{"quit", "exit", "q", "  QUIT  "} {
		quit, err := intp.Eval(line)
		require.NoError(t, err)
		assert.True(t, quit, line)
	}
}

func TestEvalErrors(t *testing.T) {
	intp := newIntp(t, database.ModeDual)
	_, err := intp.Eval("fly")
	assert.ErrorIs(t, err, ErrUnknownCommand)
	_, err = intp.Eval("next zero")
	assert.Error(t, err)
	_, err = intp.Eval("next 0")
	assert.Error(t, err)
	_, err = intp.Eval("toggle")
	assert.Error(t, err, "toggle needs single mode")
	_, err = intp.Eval("apply 1")
	assert.Error(t, err, "apply needs practice mode")
	_, err = intp.Eval("grammar cobol")
	assert.ErrorIs(t, err, grammar.ErrGrammarNotFound)
	_, err = intp.Eval("tree sideways")
	assert.Error(t, err)
	_, err = intp.Eval("mode triple")
	assert.Error(t, err)
}

func TestEvalGrammarAndMode(t *testing.T) {
	intp := newIntp(t, database.ModeDual)
	_, err := intp.Eval("grammar dangling-else")
	require.NoError(t, err)
	assert.Equal(t, "dangling-else", intp.Walk().Grammar().Name)
	_, err = intp.Eval("g")
	require.NoError(t, err)
	assert.Equal(t, 0, intp.Walk().GrammarIndex(), "next grammar wraps")
	_, err = intp.Eval("g 2")
	require.NoError(t, err)
	assert.Equal(t, "abab", intp.Walk().Grammar().Name)

	_, err = intp.Eval("mode single")
	require.NoError(t, err)
	assert.Equal(t, database.ModeSingle, intp.Walk().Mode())
	_, err = intp.Eval("toggle")
	require.NoError(t, err)
	_, err = intp.Eval("m")
	require.NoError(t, err)
	assert.Equal(t, database.ModeDual, intp.Walk().Mode())
}

func TestEvalPractice(t *testing.T) {
	intp := newIntp(t, database.ModePractice)
	_, err := intp.Eval("apply 2") // wrong rule for the leftmost side
	require.NoError(t, err)
	assert.Equal(t, 0, intp.Walk().Dual().Index(cursor.Left))
	_, err = intp.Eval("1") // bare numbers apply in practice mode
	require.NoError(t, err)
	assert.Equal(t, 1, intp.Walk().Dual().Index(cursor.Left))
	_, err = intp.Eval("apply 9")
	assert.Error(t, err)

	_, err = intp.Eval("hint")
	require.NoError(t, err)
	s := intp.Walk().Drill().Stats()
	assert.Equal(t, 2, s.Attempts)
	assert.Equal(t, 1, s.Correct)
	assert.Equal(t, 1, s.Hints)
}

func TestDisplayCommands(t *testing.T) {
	intp := newIntp(t, database.ModeDual)
	for _, line := range []string{
		"help", "list", "rules", "show", "next 4", "tree", "tree right outline",
		"compare", "stats",
	} {
		_, err := intp.Eval(line)
		assert.NoError(t, err, line)
	}
}

func TestNotifyOnCompletion(t *testing.T) {
	var titles, messages []string
	notification.SetNotifier(func(title, message string, _ any) error {
		titles = append(titles, title)
		messages = append(messages, message)
		return nil
	})
	defer notification.ResetNotifier()

	intp := newIntp(t, database.ModeDual, WithNotifications(true))
	_, err := intp.Eval("next 20")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "different parse trees")

	quiet := newIntp(t, database.ModeDual)
	_, err = quiet.Eval("next 20")
	require.NoError(t, err)
	assert.Len(t, messages, 1)

	single := newIntp(t, database.ModeSingle, WithNotifications(true))
	_, err = single.Eval("next 5")
	require.NoError(t, err)
	assert.True(t, single.Walk().IsComplete())
	assert.Len(t, messages, 1, "single mode shows a verdict without notifying")
}

func TestSource(t *testing.T) {
	intp := newIntp(t, database.ModeDual)
	script := strings.Join([]string{
		"# walk the abab grammar",
		"grammar abab",
		"",
		"next 2",
		"quit",
		"next 5",
	}, "\n")
	require.NoError(t, intp.Source(strings.NewReader(script)))
	assert.Equal(t, "abab", intp.Walk().Grammar().Name)
	assert.Equal(t, 1, intp.Walk().Dual().Index(cursor.Left))
	assert.Equal(t, 1, intp.Walk().Dual().Index(cursor.Right))

	err := intp.Source(strings.NewReader("next\nwander\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestGrammarTable(t *testing.T) {
	intp := newIntp(t, database.ModeDual)
	data := GrammarTable(intp.Walk())
	require.Len(t, data, 4)
	assert.Equal(t, []string{"1*", "arith", data[1][2], "id+id*id", "2"}, data[1])
	assert.Equal(t, "2", data[2][0])
}

func TestStepTables(t *testing.T) {
	intp := newIntp(t, database.ModeDual)
	_, err := intp.Eval("next 3")
	require.NoError(t, err)
	tables := StepTables(intp.Walk())
	require.Len(t, tables, 2)
	assert.Len(t, tables[0], 4, "header plus steps 0 to 2")
	assert.Len(t, tables[1], 3)
	assert.Equal(t, []string{"0", "E", "Start Symbol"}, tables[0][1])

	_, err = intp.Eval("mode single")
	require.NoError(t, err)
	assert.Len(t, StepTables(intp.Walk()), 1)
}

func TestLeveledList(t *testing.T) {
	intp := newIntp(t, database.ModeDual)
	_, err := intp.Eval("next 1")
	require.NoError(t, err)
	tree, err := intp.Walk().Tree(cursor.Left)
	require.NoError(t, err)
	ll := LeveledList(tree)
	require.Len(t, ll, 4)
	assert.Equal(t, pterm.LeveledListItem{Level: 0, Text: "E"}, ll[0])
	assert.Equal(t, pterm.LeveledListItem{Level: 1, Text: "+"}, ll[2])
}
