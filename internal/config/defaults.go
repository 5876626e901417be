// Package config handles todo directory configuration.
package config

const (
	// DefaultDir is the default todo directory name.
	DefaultDir = "todo"
	// DefaultTodoFile is the default task file name.
	DefaultTodoFile = "todo.txt"
	// DefaultDoneFile is the default archive file name.
	DefaultDoneFile = "done.txt"
	// DefaultSort is the default list sort field.
	DefaultSort = "number"
	// DefaultLogLevel is the default diagnostic log level.
	DefaultLogLevel = "warn"
	// DefaultLogFormat is the default diagnostic log format.
	DefaultLogFormat = "text"
	// DefaultRefreshInterval is how often the TUI re-renders relative dates.
	DefaultRefreshInterval = "1m"

	// ConfigFileName is the name of the config file within the todo directory.
	ConfigFileName = "config.yml"
	// LockFileName is the advisory lock file guarding todo file writes.
	LockFileName = ".lock"

	// CurrentVersion is the current config schema version.
	CurrentVersion = 3
)

// LogFormats lists the accepted log.format values.
var LogFormats = []string{"text", "json", "logfmt"}
