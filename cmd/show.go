package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/todowatch/internal/date"
	"github.com/twiced-technology-gmbh/todowatch/internal/output"
	"github.com/twiced-technology-gmbh/todowatch/internal/task"
	"github.com/twiced-technology-gmbh/todowatch/internal/tasklist"
)

// showHistory is how many recent log entries show lists for a task.
const showHistory = 5

var showCmd = &cobra.Command{
	Use:   "show N",
	Short: "Show task details",
	Long:  `Displays the parsed fields of task N, its metadata and its recent activity.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

type showResponse struct {
	*task.Task
	History []tasklist.LogEntry `json:"history"`
}

func runShow(_ *cobra.Command, args []string) error {
	n, err := task.ParseItemNumber(args[0])
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	l, err := s.Load()
	if err != nil {
		return err
	}
	t, err := l.Get(n)
	if err != nil {
		return err
	}

	history := taskHistory(s.Config().Dir(), n)

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, showResponse{Task: t, History: history})
	case output.FormatCompact:
		output.TaskDetailCompact(os.Stdout, t, l.Width())
		return nil
	}

	output.TaskDetail(os.Stdout, t, date.Today())
	if len(history) > 0 {
		fmt.Fprintln(os.Stdout)
		output.LogTable(os.Stdout, history)
	}
	return nil
}

// taskHistory returns the newest log entries recorded for item n. Numbers
// shift when tasks are deleted, so older entries may describe another task.
func taskHistory(dir string, n int) []tasklist.LogEntry {
	entries, err := tasklist.ReadLog(dir, 0)
	if err != nil {
		return []tasklist.LogEntry{}
	}
	out := []tasklist.LogEntry{}
	for i := len(entries) - 1; i >= 0 && len(out) < showHistory; i-- {
		if entries[i].ItemNumber == n {
			out = append([]tasklist.LogEntry{entries[i]}, out...)
		}
	}
	return out
}
