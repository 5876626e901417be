// Package output renders tasks, summaries and errors for the terminal or
// for scripts.
package output

import (
	"os"
)

// Format selects how command results are printed.
type Format int

const (
	// FormatAuto leaves the choice to Detect.
	FormatAuto Format = iota
	// FormatJSON prints machine-readable JSON, including error envelopes.
	FormatJSON
	// FormatTable prints colored, column-aligned task lines.
	FormatTable
	// FormatCompact prints numbered todo.txt lines as todo.sh does.
	FormatCompact
)

// EnvVar selects the output format when no flag is given. Accepted values
// are json, table, compact and oneline.
const EnvVar = "TODOWATCH_OUTPUT"

// Detect picks the format from the --json, --compact and --table flags, in
// that order, then from EnvVar. Table is the fallback.
func Detect(jsonFlag, tableFlag, compactFlag bool) Format {
	switch {
	case jsonFlag:
		return FormatJSON
	case compactFlag:
		return FormatCompact
	case tableFlag:
		return FormatTable
	}

	switch os.Getenv(EnvVar) {
	case "json":
		return FormatJSON
	case "compact", "oneline":
		return FormatCompact
	}
	return FormatTable
}
