// Package textutil provides display helpers for ambiscope's terminal
// output.
//
// Sentential forms mix ASCII with arrows, ε and the occasional wide rune,
// so every width here is a display width in terminal cells, not a byte or
// rune count. Timestamps are Unix nanoseconds, as stored by the database.
package textutil

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Ellipsis marks truncated text.
const Ellipsis = "…"

// Width returns the display width of s.
func Width(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate cuts s to at most width cells, ending with Ellipsis when
// anything was cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, Ellipsis)
}

// Pad right-pads s with spaces to width cells. Longer strings are returned
// unchanged.
func Pad(s string, width int) string {
	if w := runewidth.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// PadLeft left-pads s with spaces to width cells.
func PadLeft(s string, width int) string {
	if w := runewidth.StringWidth(s); w < width {
		return strings.Repeat(" ", width-w) + s
	}
	return s
}

// Center places s in the middle of width cells. An odd remainder goes to
// the right.
func Center(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	left := (width - w) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-w-left)
}

// ShortID returns the first n characters of an ID string.
func ShortID(id string, n int) string {
	if len(id) <= n {
		return id
	}
	return id[:n]
}
