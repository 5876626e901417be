package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/todowatch/internal/clierr"
	"github.com/twiced-technology-gmbh/todowatch/internal/exchange"
	"github.com/twiced-technology-gmbh/todowatch/internal/output"
	"github.com/twiced-technology-gmbh/todowatch/internal/task"
	"github.com/twiced-technology-gmbh/todowatch/internal/tasklist"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Append tasks from a JSON export",
	Long: `Reads a JSON document written by export (use - for stdin), validates it
and appends its tasks to the todo file with new item numbers.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	var r io.Reader = os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return clierr.Wrap(clierr.IOError, "There was a problem trying to read from your file", err).
				WithDetails(map[string]any{"path": args[0]})
		}
		defer f.Close()
		r = f
	}

	tasks, err := exchange.Decode(r)
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	err = s.Update(cmd.Context(), func(l *tasklist.List) error {
		for _, t := range tasks {
			l.Add(t)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, t := range tasks {
		s.Log("import", t.ItemNumber, t.String(), []string{task.FieldRaw})
	}

	switch outputFormat() {
	case output.FormatJSON:
		if tasks == nil {
			tasks = []*task.Task{}
		}
		return output.JSON(os.Stdout, tasks)
	case output.FormatCompact:
		for _, t := range tasks {
			output.Messagef(os.Stdout, "%d %s", t.ItemNumber, t.String())
		}
	}
	output.Messagef(os.Stdout, "TODO: %d tasks imported.", len(tasks))
	return nil
}
