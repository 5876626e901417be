package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/todowatch/internal/output"
	"github.com/twiced-technology-gmbh/todowatch/internal/store"
	"github.com/twiced-technology-gmbh/todowatch/internal/task"
	"github.com/twiced-technology-gmbh/todowatch/internal/tasklist"
)

var doCmd = &cobra.Command{
	Use:   "do N[,N,...]",
	Short: "Toggle completion of tasks",
	Long: `Marks open tasks as done with today's date and reopens done tasks. Reopening
also clears the priority. Multiple numbers can be given as a comma-separated list.

When auto_archive is set, completed tasks are moved to done.txt afterwards.`,
	Args: cobra.ExactArgs(1),
	RunE: runDo,
}

func init() {
	rootCmd.AddCommand(doCmd)
}

func runDo(cmd *cobra.Command, args []string) error {
	numbers, err := task.ParseItemNumbers(args[0])
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}

	toggle := func(n int) (*task.Task, []string, error) {
		return updateTask(cmd.Context(), s, "do", n, func(l *tasklist.List) ([]string, bool) {
			return l.ToggleCompleted(n)
		})
	}

	if len(numbers) > 1 {
		err = runBatch(numbers, toggle)
	} else {
		err = doSingle(numbers[0], toggle)
	}
	if archiveErr := autoArchive(cmd, s); archiveErr != nil {
		return archiveErr
	}
	return err
}

func doSingle(n int, toggle func(int) (*task.Task, []string, error)) error {
	t, changed, err := toggle(n)
	if err != nil {
		return err
	}
	message := "task %d marked as done."
	if !t.Completed {
		message = "task %d reopened."
	}
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, output.BatchResult{Item: n, OK: true, Line: t.String(), Changed: changed})
	}
	output.Messagef(os.Stdout, "%d %s", n, t.String())
	output.Messagef(os.Stdout, "TODO: "+message, n)
	return nil
}

// autoArchive archives completed tasks when the config asks for it.
func autoArchive(cmd *cobra.Command, s *store.Store) error {
	if !s.Config().AutoArchive {
		return nil
	}
	archived, err := s.Archive(cmd.Context())
	if err != nil {
		return err
	}
	if archived.Len() > 0 && outputFormat() != output.FormatJSON {
		output.Messagef(os.Stdout, "TODO: %s archived.", s.Config().TodoFile)
	}
	return nil
}
