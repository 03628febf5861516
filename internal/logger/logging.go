// Package logger builds the charmbracelet/log loggers used across the binaries.
// Everything goes to stderr since stdout carries the IPC stream.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Setup configures the package level logger used by log.Debugf and friends.
func Setup(debug bool) {
	log.SetOutput(os.Stderr)
	log.SetReportTimestamp(debug)
	if debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}
}

// New creates a prefixed logger following the global level.
func New(prefix string) *log.Logger {
	return NewWithConfig(os.Stderr, prefix, log.GetLevel(), false, log.GetLevel() == log.DebugLevel, log.TextFormatter)
}

// NewWithConfig creates a charm logger with explicit options.
func NewWithConfig(w io.Writer, prefix string, level log.Level, caller, showTimestamp bool, fmt log.Formatter) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportCaller:    caller,
		ReportTimestamp: showTimestamp,
		Formatter:       fmt,
	})
}
