// ambiscope-tui steps through ambiguous derivations in the terminal.
//
// Usage:
//
//	ambiscope-tui [flags]
//
// Flags:
//
//	--config   Path to the config file (default: ~/.ambiscope/config.json)
//	--db       Path to SQLite database file (default: ~/.ambiscope/ambiscope.db)
//	--catalog  JSON catalog to use instead of the stored one
//	--mode     single, dual or practice
//	--grammar  Grammar to open, by name or number
//	--debug    Write trace output to ambiscope-debug.log
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Mr-Dark-debug/ambiscope/internal/config"
	"github.com/Mr-Dark-debug/ambiscope/internal/database"
	"github.com/Mr-Dark-debug/ambiscope/internal/grammar"
	"github.com/Mr-Dark-debug/ambiscope/internal/recorder"
	"github.com/Mr-Dark-debug/ambiscope/internal/tui"
	"github.com/Mr-Dark-debug/ambiscope/internal/walk"
)

func main() {
	configPath := flag.String("config", "", "Path to the config file")
	dbPath := flag.String("db", "", "Path to SQLite database file")
	catalogPath := flag.String("catalog", "", "JSON catalog to use instead of the stored one")
	mode := flag.String("mode", "", "Mode to open in: single, dual or practice")
	grammarRef := flag.String("grammar", "", "Grammar to open, by name or number")
	debug := flag.Bool("debug", false, "Write trace output to ambiscope-debug.log")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *catalogPath != "" {
		cfg.CatalogPath = *catalogPath
	}
	if *mode != "" {
		cfg.DefaultMode = *mode
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}

	if *debug {
		f, err := tea.LogToFile("ambiscope-debug.log", "ambiscope")
		if err != nil {
			log.Fatalf("Failed to open debug log: %v", err)
		}
		defer f.Close()
		cfg.TraceLevel = "Debug"
	}
	cfg.ApplyTraceLevel()

	store, err := database.NewDBService(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database at %s: %v", cfg.DBPath, err)
	}
	defer store.Close()

	catalog, err := loadCatalog(cfg, store)
	if err != nil {
		log.Fatalf("Failed to load grammars: %v", err)
	}

	var opts []walk.Option
	var session *recorder.Session
	if cfg.Record {
		session, err = recorder.Begin(context.Background(), store, cfg.Recorder(), &database.Session{
			GrammarName: catalog.Grammar(0).Name,
			Mode:        cfg.DefaultMode,
			Client:      "tui",
		})
		if err != nil {
			log.Fatalf("Failed to start recording: %v", err)
		}
		opts = append(opts, walk.WithRecorder(session, session.ID))
	}

	w, err := walk.New(catalog, cfg.DefaultMode, cfg.Policy(), opts...)
	if err != nil {
		log.Fatalf("Failed to start walk: %v", err)
	}
	if *grammarRef != "" {
		i, _, err := catalog.Lookup(*grammarRef)
		if err != nil {
			log.Fatalf("%v", err)
		}
		w.SelectGrammar(i)
	}

	model := tui.NewModel(w, tui.WithNotifications(cfg.NotificationsEnabled))
	p := tea.NewProgram(model, tea.WithAltScreen())

	_, runErr := p.Run()
	if session != nil {
		if err := session.End(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to close session: %v\n", err)
		}
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", runErr)
		os.Exit(1)
	}
}

// loadCatalog prefers an explicit catalog file and otherwise uses the
// stored catalog, seeding the built-in grammars into an empty database.
func loadCatalog(cfg *config.Config, store database.Store) (*grammar.Catalog, error) {
	if cfg.CatalogPath != "" {
		return grammar.LoadFile(cfg.CatalogPath)
	}
	c, _, err := database.EnsureCatalog(store, grammar.Builtin())
	return c, err
}
