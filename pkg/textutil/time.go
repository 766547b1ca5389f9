package textutil

import (
	"fmt"
	"time"
)

// History timestamps are Unix nanoseconds.

// Clock formats a history timestamp as time of day with milliseconds.
func Clock(ns int64) string {
	return time.Unix(0, ns).Format("15:04:05.000")
}

// Stamp formats a history timestamp with date, to the second.
func Stamp(ns int64) string {
	return time.Unix(0, ns).Format("2006-01-02 15:04:05")
}

// Elapsed formats the length of a walk: "450ms", "1.2s", "2m 15.3s".
func Elapsed(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	whole := d.Truncate(time.Minute)
	return fmt.Sprintf("%dm %.1fs", int(whole.Minutes()), (d - whole).Seconds())
}

var agoUnits = []struct {
	unit   time.Duration
	suffix string
}{
	{24 * time.Hour, "d"},
	{time.Hour, "h"},
	{time.Minute, "m"},
	{time.Second, "s"},
}

// Ago tells how long before now the timestamp ns lies, in its largest
// whole unit: "5s ago", "2m ago". Anything under a second is "just now".
func Ago(ns int64, now time.Time) string {
	d := now.Sub(time.Unix(0, ns))
	for _, u := range agoUnits {
		if d >= u.unit {
			return fmt.Sprintf("%d%s ago", d/u.unit, u.suffix)
		}
	}
	return "just now"
}
