package cmd

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/todowatch/internal/clierr"
	"github.com/twiced-technology-gmbh/todowatch/internal/output"
	"github.com/twiced-technology-gmbh/todowatch/internal/store"
	"github.com/twiced-technology-gmbh/todowatch/internal/task"
	"github.com/twiced-technology-gmbh/todowatch/internal/tasklist"
)

var deleteCmd = &cobra.Command{
	Use:     "del N[,N,...] [TERM...]",
	Aliases: []string{"rm", "delete"},
	Short:   "Delete a task or remove text from it",
	Long: `Without TERM, deletes task N after confirmation. With preserve_line_numbers set
the line is left blank so later tasks keep their numbers.

With TERM, removes that text from task N instead.
Multiple numbers can be provided as a comma-separated list (requires --yes).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolP("yes", "y", false, "skip confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	numbers, err := task.ParseItemNumbers(args[0])
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}

	if term := strings.TrimSpace(strings.Join(args[1:], " ")); term != "" {
		if len(numbers) > 1 {
			return clierr.New(clierr.InvalidInput, "removing text takes a single task number")
		}
		return removeTerm(cmd, s, numbers[0], term)
	}

	yes, _ := cmd.Flags().GetBool("yes")

	// Batch mode requires --yes.
	if len(numbers) > 1 && !yes {
		return clierr.New(clierr.ConfirmationReq,
			"batch delete requires --yes")
	}

	if len(numbers) == 1 {
		return deleteSingleTask(cmd, s, numbers[0], yes)
	}

	// Delete from the bottom up so renumbering never shifts a pending number.
	slices.SortFunc(numbers, func(a, b int) int { return b - a })
	return runBatch(numbers, func(n int) (*task.Task, []string, error) {
		return executeDelete(cmd, s, n)
	})
}

// deleteSingleTask handles a single task delete with confirmation and output.
func deleteSingleTask(cmd *cobra.Command, s *store.Store, n int, yes bool) error {
	l, err := s.Load()
	if err != nil {
		return err
	}
	t, err := l.Get(n)
	if err != nil {
		return err
	}

	if !yes {
		ok, err := confirm(fmt.Sprintf("Delete '%s'?", t.String()))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "TODO: No tasks were deleted.")
			return nil
		}
	}

	deleted, changed, err := executeDelete(cmd, s, n)
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, output.BatchResult{
			Item: n, OK: true, Line: deleted.String(), Changed: changed,
		})
	}

	output.Messagef(os.Stdout, "%d %s", n, deleted.String())
	output.Messagef(os.Stdout, "TODO: %d deleted.", n)
	return nil
}

// executeDelete removes task n and logs it. It returns the task as it was
// before removal.
func executeDelete(cmd *cobra.Command, s *store.Store, n int) (*task.Task, []string, error) {
	var deleted *task.Task
	var changed []string
	err := s.Update(cmd.Context(), func(l *tasklist.List) error {
		t, err := l.Get(n)
		if err != nil {
			return err
		}
		deleted = t.Clone()
		changed = t.Clone().Empty()
		l.Remove(n, s.Config().PreserveLineNumbers)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	s.Log("delete", n, deleted.String(), changed)
	return deleted, changed, nil
}

// removeTerm deletes term from the body of task n.
func removeTerm(cmd *cobra.Command, s *store.Store, n int, term string) error {
	t, changed, err := updateTask(cmd.Context(), s, "delete-term", n, func(l *tasklist.List) ([]string, bool) {
		return l.RemoveText(n, term)
	})
	if err != nil {
		return err
	}
	if len(changed) == 0 {
		return clierr.Newf(clierr.NoChanges, "'%s' not found in task %d; no removal done", term, n).
			WithDetails(map[string]any{"item_number": n, "term": term})
	}
	return printUpdated(t, changed, fmt.Sprintf("removed '%s' from task %d.", term, n))
}
