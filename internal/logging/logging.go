// Package logging configures the diagnostic logger built on charmbracelet/log.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Options holds configuration for the diagnostic logger.
type Options struct {
	Level           log.Level
	Formatter       log.Formatter
	ReportTimestamp bool
	Prefix          string
}

// DefaultOptions returns quiet defaults: warnings and errors as text.
func DefaultOptions() Options {
	return Options{
		Level:     log.WarnLevel,
		Formatter: log.TextFormatter,
		Prefix:    "todowatch",
	}
}

// ParseOptions builds Options from config strings. Empty strings keep the
// defaults.
func ParseOptions(level, format string) (Options, error) {
	opts := DefaultOptions()
	if level != "" {
		l, err := log.ParseLevel(level)
		if err != nil {
			return opts, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		opts.Level = l
	}
	if format != "" {
		f, err := ParseFormatter(format)
		if err != nil {
			return opts, err
		}
		opts.Formatter = f
	}
	// Machine formats are easier to correlate with timestamps.
	opts.ReportTimestamp = opts.Formatter != log.TextFormatter
	return opts, nil
}

// ParseFormatter maps a format name to a formatter.
func ParseFormatter(name string) (log.Formatter, error) {
	switch strings.ToLower(name) {
	case "text":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	}
	return log.TextFormatter, fmt.Errorf("invalid log format %q (expected text, json or logfmt)", name)
}

// New creates a logger writing to w.
func New(w io.Writer, opts Options) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           opts.Level,
		Formatter:       opts.Formatter,
		ReportTimestamp: opts.ReportTimestamp,
		Prefix:          opts.Prefix,
	})
}

// Setup creates a logger writing to w and installs it as the package
// default used by log.Debug and friends.
func Setup(w io.Writer, opts Options) *log.Logger {
	logger := New(w, opts)
	log.SetDefault(logger)
	return logger
}
