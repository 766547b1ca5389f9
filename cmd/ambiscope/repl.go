package main

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Mr-Dark-debug/ambiscope/internal/database"
	"github.com/Mr-Dark-debug/ambiscope/internal/recorder"
	"github.com/Mr-Dark-debug/ambiscope/internal/repl"
	"github.com/Mr-Dark-debug/ambiscope/internal/walk"
)

var (
	replMode string
	replInit string
)

var replCmd = &cobra.Command{
	Use:   "repl [grammar]",
	Short: "Step through derivations interactively",
	Long: `Repl opens a prompt for stepping through derivations. Type "help" for
the commands. With --init the commands of a file run before the prompt
opens.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runREPL,
}

func init() {
	replCmd.Flags().StringVarP(&replMode, "mode", "m", "", "mode to start in (default from config)")
	replCmd.Flags().StringVar(&replInit, "init", "", "file of commands to run first")
	rootCmd.AddCommand(replCmd)
}

func runREPL(cmd *cobra.Command, args []string) error {
	mode := cfg.DefaultMode
	if replMode != "" {
		mode = replMode
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	c, err := loadCatalog(store)
	if err != nil {
		return err
	}
	gi, g, err := lookupGrammar(c, args)
	if err != nil {
		return err
	}

	var opts []walk.Option
	if cfg.Record {
		session, err := recorder.Begin(context.Background(), store, cfg.Recorder(), &database.Session{
			GrammarName: g.Name,
			Mode:        mode,
			Client:      "repl",
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
	}

	w, err := walk.New(c, mode, cfg.Policy(), opts...)
	if err != nil {
		return err
	}
	if gi != 0 {
		w.SelectGrammar(gi)
	}

	intp := repl.New(w, repl.WithNotifications(cfg.NotificationsEnabled))
	if replInit != "" {
		if err := intp.SourceFile(replInit); err != nil {
			return err
		}
	}
	return intp.REPL()
}
