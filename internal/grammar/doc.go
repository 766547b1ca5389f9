// Package grammar holds the hand-authored data the visualizer walks over:
// grammars, the input strings they derive, and the precomputed derivations
// for each input.
//
// Nothing here parses or derives anything. Steps are asserted data; the
// package only knows how to read production rules, split sentential forms
// into grammar symbols, and load and validate catalogs of examples.
//
// Component layout:
//
//	grammar.go  Grammar, Input, Derivation, Step
//	rule.go     production rule text ("A → β") parsing
//	vocab.go    terminal/nonterminal vocabulary
//	scan.go     lexmachine tokenizer for sentential forms
//	catalog.go  catalogs, lookup, JSON loading, validation
//	builtin.go  the built-in ambiguous grammars
package grammar

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'ambiscope.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("ambiscope.grammar")
}
