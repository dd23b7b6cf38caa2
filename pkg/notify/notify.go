// Package notify writes styled, one-line progress messages for the user.
package notify

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// MessageType selects the symbol and color of a message
type MessageType int

const (
	ActivityType MessageType = iota
	SuccessType
	InfoType
	WarningType
	ErrorType
)

var styles = map[MessageType]struct {
	symbol string
	color  *color.Color
}{
	ActivityType: {"►", color.New(color.Reset)},
	SuccessType:  {"✔", color.New(color.FgGreen)},
	InfoType:     {"ℹ", color.New(color.FgBlue)},
	WarningType:  {"⚠", color.New(color.FgYellow)},
	ErrorType:    {"✗", color.New(color.FgRed, color.Bold)},
}

// Write prints one message. A nil writer means stdout.
func Write(w io.Writer, t MessageType, format string, args ...any) {
	if w == nil {
		w = os.Stdout
	}
	style, ok := styles[t]
	if !ok {
		style = styles[InfoType]
	}
	_, _ = style.color.Fprintf(w, "%s %s\n", style.symbol, fmt.Sprintf(format, args...))
}

// Activityf announces a step that is starting
func Activityf(w io.Writer, format string, args ...any) {
	Write(w, ActivityType, format, args...)
}

// Successf reports a finished step
func Successf(w io.Writer, format string, args ...any) {
	Write(w, SuccessType, format, args...)
}

// Infof reports a neutral fact
func Infof(w io.Writer, format string, args ...any) {
	Write(w, InfoType, format, args...)
}

// Warningf reports a problem that does not stop the run
func Warningf(w io.Writer, format string, args ...any) {
	Write(w, WarningType, format, args...)
}

// Errorf reports a failure
func Errorf(w io.Writer, format string, args ...any) {
	Write(w, ErrorType, format, args...)
}
