// Package logging builds the charmbracelet/log logger shared by the stores and commands.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// Prefix is prepended to every log line.
const Prefix = "todo"

// New returns a text logger writing to w. Debug enables debug-level output;
// otherwise only warnings and errors are shown.
func New(w io.Writer, debug bool) *log.Logger {
	level := log.WarnLevel
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       log.TextFormatter,
		ReportTimestamp: debug,
		Prefix:          Prefix,
	})
}

// Discard returns a logger that drops everything. Used when no logger is supplied.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
