package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Mr-Dark-debug/ambiscope/internal/config"
	"github.com/Mr-Dark-debug/ambiscope/internal/database"
	"github.com/Mr-Dark-debug/ambiscope/internal/grammar"
	"github.com/Mr-Dark-debug/ambiscope/internal/repl"
)

var (
	configPath  string
	dbPath      string
	catalogPath string
	traceLevel  string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ambiscope",
	Short: "Step through ambiguous derivations of context-free grammars",
	Long: `ambiscope shows how one string of an ambiguous grammar has two
derivations with different parse trees. It walks both derivations step by
step, draws the trees as they grow, and compares them side by side.`,
	PersistentPreRunE: initConfig,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.ambiscope/config.json)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database file (default ~/.ambiscope/ambiscope.db)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "JSON catalog to use instead of the stored one")
	rootCmd.PersistentFlags().StringVar(&traceLevel, "trace", "", "trace level: Debug, Info or Error")
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(versionText() + "\n")
}

// initConfig loads the config file and lays the persistent flags over it.
func initConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if dbPath != "" {
		c.DBPath = dbPath
	}
	if catalogPath != "" {
		c.CatalogPath = catalogPath
	}
	if traceLevel != "" {
		c.TraceLevel = traceLevel
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	c.ApplyTraceLevel()
	repl.InitDisplay()
	cfg = c
	return nil
}

func versionText() string {
	if commit != "none" && commit != "" {
		return fmt.Sprintf("ambiscope %s (commit: %s, built: %s)", version, commit, date)
	}
	return fmt.Sprintf("ambiscope %s", version)
}

// openStore opens the configured database.
func openStore() (*database.DBService, error) {
	store, err := database.NewDBService(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", cfg.DBPath, err)
	}
	return store, nil
}

// loadCatalog prefers an explicit catalog file and otherwise uses the
// stored catalog, seeding the built-in grammars into an empty database.
func loadCatalog(store database.Store) (*grammar.Catalog, error) {
	if cfg.CatalogPath != "" {
		return grammar.LoadFile(cfg.CatalogPath)
	}
	c, seeded, err := database.EnsureCatalog(store, grammar.Builtin())
	if err != nil {
		return nil, err
	}
	if seeded {
		pterm.Info.Printfln("Seeded %d built-in grammars into %s", c.Len(), cfg.DBPath)
	}
	return c, nil
}

// readCatalog loads the catalog for commands that only read it. The
// database is not touched when a catalog file is given.
func readCatalog() (*grammar.Catalog, error) {
	if cfg.CatalogPath != "" {
		return grammar.LoadFile(cfg.CatalogPath)
	}
	store, err := openStore()
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return loadCatalog(store)
}

// lookupGrammar resolves a grammar argument by name or 1-based number.
// No argument selects the first grammar.
func lookupGrammar(c *grammar.Catalog, args []string) (int, *grammar.Grammar, error) {
	if len(args) == 0 {
		if c.Len() == 0 {
			return -1, nil, grammar.ErrEmptyCatalog
		}
		return 0, c.Grammar(0), nil
	}
	return c.Lookup(args[0])
}
