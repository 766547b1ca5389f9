// Package notification sends desktop notifications through beeep.
package notification

import (
	"fmt"

	"github.com/gen2brain/beeep"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ambiscope.notify'.
func tracer() tracing.Trace {
	return tracing.Select("ambiscope.notify")
}

// Title heads every notification.
const Title = "ambiscope"

var notify = beeep.Notify

// SetNotifier replaces the function that delivers notifications.
func SetNotifier(fn func(title, message string, icon any) error) {
	notify = fn
}

// ResetNotifier restores delivery through beeep.
func ResetNotifier() {
	notify = beeep.Notify
}

// Send sends a desktop notification with the given title and message.
func Send(title, message string) error {
	tracer().Debugf("notification: %q %q", title, message)
	err := notify(title, message, "")
	if err != nil {
		tracer().Errorf("sending notification: %v", err)
	}
	return err
}

// DerivationsComplete announces that both derivations of an input reached
// the end and the comparison is ready.
func DerivationsComplete(grammarName, input string, ambiguous bool) error {
	msg := fmt.Sprintf("%s: both derivations of %q are complete", grammarName, input)
	if ambiguous {
		msg += ", with different parse trees"
	}
	return Send(Title, msg)
}
