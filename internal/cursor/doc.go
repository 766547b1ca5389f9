// Package cursor walks derivations one step at a time.
//
// A Cursor shows one derivation of the current input and moves a single
// step index over it. A DualCursor shows the first two derivations side by
// side and moves them in alternation, left then right, so both race towards
// the input string in lockstep.
//
// Boundaries are never errors. Advancing past the last step reports
// AlreadyAtEnd (or Complete for the dual cursor) and changes nothing;
// retreating at step 0 reports false.
//
// Cursors are not safe for concurrent use. They are owned by a single
// control flow, the TUI model or the REPL loop.
package cursor

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'ambiscope.cursor'.
func tracer() tracing.Trace {
	return tracing.Select("ambiscope.cursor")
}
