package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/todowatch/internal/clierr"
	"github.com/twiced-technology-gmbh/todowatch/internal/config"
	"github.com/twiced-technology-gmbh/todowatch/internal/output"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new todo directory",
	Long: `Creates a todo directory with config.yml, todo.txt and done.txt.
Existing todo.txt and done.txt files are kept.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().Bool("preserve-line-numbers", false, "leave blank lines for deleted tasks")
	initCmd.Flags().Bool("auto-archive", false, "move completed tasks to done.txt automatically")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	dir := flagDir
	if dir == "" {
		dir = config.DefaultDir
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	// Check if already initialized.
	if _, err := os.Stat(filepath.Join(absDir, config.ConfigFileName)); err == nil {
		return clierr.Newf(clierr.TodoDirExists, "todo directory already initialized in %s", absDir).
			WithDetails(map[string]any{"dir": absDir})
	}

	cfg, err := config.Init(absDir)
	if err != nil {
		return clierr.Wrap(clierr.IOError, "initializing todo directory", err)
	}

	preserve, _ := cmd.Flags().GetBool("preserve-line-numbers")
	autoArchive, _ := cmd.Flags().GetBool("auto-archive")
	if preserve || autoArchive {
		cfg.PreserveLineNumbers = preserve
		cfg.AutoArchive = autoArchive
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
	}

	// Output result.
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]string{
			"status": "initialized",
			"dir":    absDir,
			"config": cfg.ConfigPath(),
			"todo":   cfg.TodoPath(),
			"done":   cfg.DonePath(),
		})
	}

	output.Messagef(os.Stdout, "Initialized todo directory in %s", absDir)
	output.Messagef(os.Stdout, "  Config:  %s", cfg.ConfigPath())
	output.Messagef(os.Stdout, "  Todo:    %s", cfg.TodoPath())
	output.Messagef(os.Stdout, "  Done:    %s", cfg.DonePath())
	output.Messagef(os.Stdout, "  Hint:    Add a task with: todowatch add \"Call Mom @phone\"")
	return nil
}
