// ambiscope explores ambiguous context-free grammars from the command line.
//
// Usage:
//
//	ambiscope <command> [flags]
//
// Commands:
//
//	list      List the grammars
//	show      Show a grammar, a derivation and its parse tree
//	compare   Compare the two derivations of a grammar's input
//	walk      Replay a sequence of cursor actions
//	repl      Step through derivations interactively
//	seed      Store a catalog in the database
//	history   Show recorded walk sessions
//	version   Print version information
package main

import (
	"fmt"
	"os"
)

// Version information set via ldflags at build time
var (
	version = "0.1.0"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
