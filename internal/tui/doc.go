// Package tui implements the ambiscope terminal user interface.
//
// It is built with Charmbracelet's BubbleTea and Lipgloss. All cursor
// state lives in a walk.Walk; the model renders it and turns keys into
// walk operations.
//
// Component architecture:
//
//	model.go       root model, message routing, Init/Update/View
//	theme.go       centralized color and style definitions
//	header.go      top bar with grammar and mode, footer with key hints
//	derivation.go  visited steps and the parse tree of one derivation
//	rules.go       productions, practice score and feedback
//	compareview.go side-by-side comparison of both derivations
//	grammarlist.go grammar selector
//	helpers.go     small numeric helpers
package tui
