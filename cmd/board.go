package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/todowatch/internal/config"
	"github.com/twiced-technology-gmbh/todowatch/internal/date"
	"github.com/twiced-technology-gmbh/todowatch/internal/output"
	"github.com/twiced-technology-gmbh/todowatch/internal/store"
	"github.com/twiced-technology-gmbh/todowatch/internal/tasklist"
	"github.com/twiced-technology-gmbh/todowatch/internal/watcher"
)

var flagWatch bool

var boardCmd = &cobra.Command{
	Use:     "board",
	Aliases: []string{"summary"},
	Short:   "Show list summary",
	Long: `Displays a summary of the todo list: open and done counts, overdue tasks, and
open tasks per priority, project and context.

Use --watch to keep the display live-updating. The summary re-renders whenever
the todo or done file changes on disk, for example from another terminal or a
sync client. Press Ctrl+C to stop.`,
	RunE: runBoard,
}

func init() {
	rootCmd.AddCommand(boardCmd)
	boardCmd.Flags().BoolVarP(&flagWatch, "watch", "w", false, "live-update the summary on file changes")
	boardCmd.Flags().String("group-by", "", "group tasks by field ("+strings.Join(tasklist.ValidGroupByFields(), ", ")+")")
}

func runBoard(cmd *cobra.Command, _ []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}

	groupBy, _ := cmd.Flags().GetString("group-by")
	if groupBy != "" {
		if err := tasklist.ValidateGroupBy(groupBy); err != nil {
			return err
		}
	}

	// Render once.
	if err := renderBoard(s, groupBy); err != nil {
		return err
	}

	if !flagWatch {
		return nil
	}

	return watchBoard(s.Config(), groupBy)
}

func renderBoard(s *store.Store, groupBy string) error {
	l, err := s.Load()
	if err != nil {
		return err
	}
	today := date.Today()

	if groupBy != "" {
		return outputGroupedList(l.GroupBy(groupBy, today), l.Width(), today)
	}

	summary := l.Summary(today)

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, summary)
	case output.FormatCompact:
		output.OverviewCompact(os.Stdout, summary)
		return nil
	}

	output.OverviewTable(os.Stdout, summary)
	return nil
}

func watchBoard(cfg *config.Config, groupBy string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := watcher.New([]string{cfg.TodoPath(), cfg.DonePath()}, func() {
		log.Debug("todo file changed; re-rendering")
		clearScreen()
		// Re-load config in case the file paths or sort changed.
		freshCfg, loadErr := config.Load(cfg.Dir())
		if loadErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: reloading config: %v\n", loadErr)
			freshCfg = cfg
		}
		if renderErr := renderBoard(store.New(freshCfg), groupBy); renderErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: rendering summary: %v\n", renderErr)
		}
	})
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer w.Close()

	fmt.Fprintln(os.Stderr, "Watching for changes... (Ctrl+C to stop)")

	w.Run(ctx, func(watchErr error) {
		fmt.Fprintf(os.Stderr, "Warning: file watcher: %v\n", watchErr)
	})

	return nil
}

// clearScreen sends ANSI escape codes to clear the terminal and move the
// cursor to the top-left corner.
func clearScreen() {
	fmt.Fprint(os.Stdout, "\033[2J\033[H")
}
