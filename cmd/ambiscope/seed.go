package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Mr-Dark-debug/ambiscope/internal/grammar"
)

var seedDump bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Store a catalog in the database",
	Long: `Seed replaces the grammars in the database with the catalog given by
--catalog, or with the built-in grammars. With --dump it prints the stored
catalog as JSON instead.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().BoolVar(&seedDump, "dump", false, "print the stored catalog as JSON")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if seedDump {
		c, err := store.LoadCatalog()
		if err != nil {
			return err
		}
		return c.WriteJSON(cmd.OutOrStdout())
	}

	c := grammar.Builtin()
	source := "built-in grammars"
	if cfg.CatalogPath != "" {
		if c, err = grammar.LoadFile(cfg.CatalogPath); err != nil {
			return err
		}
		source = cfg.CatalogPath
	}
	if err := store.SaveCatalog(c); err != nil {
		return err
	}
	pterm.Success.Printfln("Stored %d grammars from %s in %s", c.Len(), source, cfg.DBPath)
	return nil
}
