package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/todowatch/internal/clierr"
	"github.com/twiced-technology-gmbh/todowatch/internal/output"
	"github.com/twiced-technology-gmbh/todowatch/internal/store"
	"github.com/twiced-technology-gmbh/todowatch/internal/task"
	"github.com/twiced-technology-gmbh/todowatch/internal/tasklist"
)

var priCmd = &cobra.Command{
	Use:     "pri N PRIORITY",
	Aliases: []string{"p"},
	Short:   "Set the priority of a task",
	Long:    `Sets the priority of task N to a letter A-Z. Parentheses and lowercase are accepted.`,
	Args:    cobra.ExactArgs(2), //nolint:mnd // number and priority
	RunE:    runPri,
}

var depriCmd = &cobra.Command{
	Use:     "depri N[,N,...]",
	Aliases: []string{"dp"},
	Short:   "Remove the priority from tasks",
	Args:    cobra.ExactArgs(1),
	RunE:    runDepri,
}

var appendCmd = &cobra.Command{
	Use:     "append N TEXT...",
	Aliases: []string{"app"},
	Short:   "Add text to the end of a task",
	Args:    cobra.MinimumNArgs(2), //nolint:mnd // number and text
	RunE:    runAppend,
}

var prependCmd = &cobra.Command{
	Use:     "prepend N TEXT...",
	Aliases: []string{"prep"},
	Short:   "Add text to the start of a task",
	Long:    `Adds text to the start of task N, after any completion mark, priority and dates.`,
	Args:    cobra.MinimumNArgs(2), //nolint:mnd // number and text
	RunE:    runPrepend,
}

var replaceCmd = &cobra.Command{
	Use:   "replace N LINE...",
	Short: "Replace a task with a new line",
	Args:  cobra.MinimumNArgs(2), //nolint:mnd // number and line
	RunE:  runReplace,
}

func init() {
	rootCmd.AddCommand(priCmd)
	rootCmd.AddCommand(depriCmd)
	rootCmd.AddCommand(appendCmd)
	rootCmd.AddCommand(prependCmd)
	rootCmd.AddCommand(replaceCmd)
}

// updateTask applies fn to task n under the directory lock and logs the
// change. It returns a copy of the updated task.
func updateTask(ctx context.Context, s *store.Store, action string, n int,
	fn func(*tasklist.List) ([]string, bool),
) (*task.Task, []string, error) {
	var updated *task.Task
	var changed []string
	err := s.Update(ctx, func(l *tasklist.List) error {
		var ok bool
		changed, ok = fn(l)
		if !ok {
			return task.NotFound(n)
		}
		updated = l.Find(n).Clone()
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if len(changed) > 0 {
		s.Log(action, n, updated.String(), changed)
	}
	return updated, changed, nil
}

// printUpdated reports a single updated task.
func printUpdated(t *task.Task, changed []string, message string) error {
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, output.BatchResult{
			Item: t.ItemNumber, OK: true, Line: t.String(), Changed: changed,
		})
	}
	output.Messagef(os.Stdout, "%d %s", t.ItemNumber, t.String())
	output.Messagef(os.Stdout, "TODO: %s", message)
	return nil
}

func runPri(cmd *cobra.Command, args []string) error {
	n, err := task.ParseItemNumber(args[0])
	if err != nil {
		return err
	}
	p, ok := task.NormalizePriority(args[1])
	if !ok || p == "" {
		return task.ValidatePriority(args[1])
	}

	s, err := openStore()
	if err != nil {
		return err
	}

	t, changed, err := updateTask(cmd.Context(), s, "pri", n, func(l *tasklist.List) ([]string, bool) {
		return l.SetPriority(n, p)
	})
	if err != nil {
		return err
	}
	if len(changed) == 0 {
		return printUpdated(t, changed, "task "+args[0]+" already prioritized ("+p+").")
	}
	return printUpdated(t, changed, "task "+args[0]+" prioritized ("+p+").")
}

func runDepri(cmd *cobra.Command, args []string) error {
	numbers, err := task.ParseItemNumbers(args[0])
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}

	depri := func(n int) (*task.Task, []string, error) {
		return updateTask(cmd.Context(), s, "depri", n, func(l *tasklist.List) ([]string, bool) {
			return l.SetPriority(n, "")
		})
	}

	if len(numbers) > 1 {
		return runBatch(numbers, depri)
	}

	t, changed, err := depri(numbers[0])
	if err != nil {
		return err
	}
	return printUpdated(t, changed, "task "+args[0]+" deprioritized.")
}

func runAppend(cmd *cobra.Command, args []string) error {
	return editText(cmd.Context(), "append", args, func(l *tasklist.List, n int, text string) ([]string, bool) {
		return l.Append(n, text)
	})
}

func runPrepend(cmd *cobra.Command, args []string) error {
	return editText(cmd.Context(), "prepend", args, func(l *tasklist.List, n int, text string) ([]string, bool) {
		return l.Prepend(n, text)
	})
}

func runReplace(cmd *cobra.Command, args []string) error {
	return editText(cmd.Context(), "replace", args, func(l *tasklist.List, n int, text string) ([]string, bool) {
		return l.Replace(n, text)
	})
}

// editText runs a text edit taking an item number and the remaining
// arguments joined as text.
func editText(ctx context.Context, action string, args []string,
	fn func(l *tasklist.List, n int, text string) ([]string, bool),
) error {
	n, err := task.ParseItemNumber(args[0])
	if err != nil {
		return err
	}
	text := strings.TrimSpace(strings.Join(args[1:], " "))
	if text == "" {
		return clierr.Newf(clierr.InvalidInput, "%s needs text", action)
	}

	s, err := openStore()
	if err != nil {
		return err
	}

	t, changed, err := updateTask(ctx, s, action, n, func(l *tasklist.List) ([]string, bool) {
		return fn(l, n, text)
	})
	if err != nil {
		return err
	}
	return printUpdated(t, changed, "task "+args[0]+" updated.")
}
