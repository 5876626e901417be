// Package cmd implements the todowatch CLI commands.
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/todowatch/internal/clierr"
	"github.com/twiced-technology-gmbh/todowatch/internal/config"
	"github.com/twiced-technology-gmbh/todowatch/internal/logging"
	"github.com/twiced-technology-gmbh/todowatch/internal/output"
	"github.com/twiced-technology-gmbh/todowatch/internal/store"
	"github.com/twiced-technology-gmbh/todowatch/internal/task"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	flagJSON     bool
	flagTable    bool
	flagCompact  bool
	flagDir      string
	flagNoColor  bool
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "todowatch",
	Short: "Manage a todo.txt list from the terminal",
	Long: `todowatch reads and edits todo.txt files: plain-text task lists with one task
per line, priorities like (A), +project and @context tags and key:value metadata.
Run todowatch without a subcommand to open the interactive list.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runTUI,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if flagNoColor || os.Getenv("NO_COLOR") != "" {
			output.DisableColor()
		}
		opts, err := logging.ParseOptions(flagLogLevel, "")
		if err != nil {
			return clierr.Wrap(clierr.InvalidInput, "invalid --log-level", err)
		}
		logging.Setup(os.Stderr, opts)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagTable, "table", false, "output as table")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "compact", false, "plain numbered todo.txt lines")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "oneline", false, "alias for --compact")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "path to todo directory")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable color output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "diagnostic log level (debug, info, warn, error)")
}

// Execute runs the root command.
func Execute() {
	_, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}

	// SilentError: exit with its code and print nothing.
	var silent *clierr.SilentError
	if errors.As(err, &silent) {
		os.Exit(silent.Code)
	}

	// Determine if JSON mode is active.
	jsonMode := flagJSON
	if !jsonMode {
		jsonMode = os.Getenv(output.EnvVar) == "json"
	}

	if jsonMode {
		var cliErr *clierr.Error
		if errors.As(err, &cliErr) {
			output.JSONError(os.Stdout, cliErr.Code, cliErr.Error(), cliErr.Details)
			os.Exit(cliErr.ExitCode())
		}
		// Unknown error: report as INTERNAL_ERROR.
		output.JSONError(os.Stdout, clierr.InternalError, err.Error(), nil)
		os.Exit(2) //nolint:mnd // exit code 2 for internal errors
	}

	// Non-JSON mode: print to stderr.
	fmt.Fprintln(os.Stderr, "Error:", err)
	var cliErr *clierr.Error
	if errors.As(err, &cliErr) {
		os.Exit(cliErr.ExitCode())
	}
	os.Exit(1)
}

// defaultHomeDir returns the path to ~/.config/todowatch.
func defaultHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "todowatch"), nil
}

// resolveDir returns the absolute path to the todo directory.
// Falls back to ~/.config/todowatch if no todo directory is found in the
// current directory tree.
func resolveDir() (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	dir, err := config.FindDir(cwd)
	if err == nil {
		return dir, nil
	}

	return defaultHomeDir()
}

// loadConfig finds and loads the todo config and applies its log settings.
// If the resolved directory is ~/.config/todowatch and it doesn't exist yet,
// it is auto-created.
func loadConfig() (*config.Config, error) {
	dir, err := resolveDir()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(dir)
	if errors.Is(err, config.ErrNotFound) {
		homeDir, homeErr := defaultHomeDir()
		if homeErr != nil || dir != homeDir {
			return nil, clierr.Wrap(clierr.TodoDirNotFound, "no todo directory found", err).
				WithDetails(map[string]any{"dir": dir})
		}
		log.Debug("creating default todo directory", "dir", homeDir)
		cfg, err = config.Init(homeDir)
	}
	if err != nil {
		return nil, err
	}

	applyLogConfig(cfg)
	return cfg, nil
}

// applyLogConfig switches to the configured logger unless --log-level was
// given.
func applyLogConfig(cfg *config.Config) {
	level := cfg.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	opts, err := logging.ParseOptions(level, cfg.Log.Format)
	if err != nil {
		log.Warn("ignoring log config", "err", err)
		return
	}
	logging.Setup(os.Stderr, opts)
}

// openStore loads the config and returns a store for its todo directory.
func openStore() (*store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return store.New(cfg), nil
}

// outputFormat returns the detected output format from flags/env.
func outputFormat() output.Format {
	return output.Detect(flagJSON, flagTable, flagCompact)
}

// confirm asks a yes/no question on stderr. It refuses when stdin is not a
// terminal.
func confirm(prompt string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, clierr.New(clierr.ConfirmationReq,
			"cannot prompt for confirmation (not a terminal); use --yes")
	}
	fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, _ := reader.ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes", nil
}

// runBatch executes fn for each item number and collects results. Returns a
// SilentError with exit code 1 if any operation failed (after outputting
// results).
func runBatch(numbers []int, fn func(int) (*task.Task, []string, error)) error {
	results := make([]output.BatchResult, 0, len(numbers))
	anyFailed := false

	for _, n := range numbers {
		t, changed, err := fn(n)
		if err != nil {
			anyFailed = true
			var cliErr *clierr.Error
			if errors.As(err, &cliErr) {
				results = append(results, output.BatchResult{Item: n, OK: false, Error: cliErr.Message, Code: cliErr.Code})
			} else {
				results = append(results, output.BatchResult{Item: n, OK: false, Error: err.Error()})
			}
			continue
		}
		results = append(results, output.BatchResult{Item: n, OK: true, Line: t.String(), Changed: changed})
	}

	if outputFormat() == output.FormatJSON {
		if err := output.JSON(os.Stdout, results); err != nil {
			return err
		}
	} else {
		var succeeded int
		for _, r := range results {
			if r.OK {
				succeeded++
				output.Messagef(os.Stdout, "%d %s", r.Item, r.Line)
			} else {
				fmt.Fprintf(os.Stderr, "Error: task %d: %s\n", r.Item, r.Error)
			}
		}
		output.Messagef(os.Stdout, "TODO: %d/%d tasks updated.", succeeded, len(numbers))
	}

	if anyFailed {
		return &clierr.SilentError{Code: 1}
	}
	return nil
}
