package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/twiced-technology-gmbh/todowatch/internal/clierr"
	"github.com/twiced-technology-gmbh/todowatch/internal/date"
	"github.com/twiced-technology-gmbh/todowatch/internal/output"
	"github.com/twiced-technology-gmbh/todowatch/internal/task"
	"github.com/twiced-technology-gmbh/todowatch/internal/tasklist"
)

var addCmd = &cobra.Command{
	Use:     "add TEXT...",
	Aliases: []string{"a"},
	Short:   "Add a task",
	Long: `Adds a task line to todo.txt. The arguments are joined with spaces and may
already contain a priority, +projects, @contexts and key:value tags.

The creation date follows date_on_add in the config unless --date or
--no-date is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringP("priority", "p", "", "priority letter A-Z")
	addCmd.Flags().StringSlice("project", nil, "projects to tag (comma-separated)")
	addCmd.Flags().StringSlice("context", nil, "contexts to tag (comma-separated)")
	addCmd.Flags().String("due", "", "due date (YYYY-MM-DD)")
	addCmd.Flags().Bool("date", false, "prefix today's date")
	addCmd.Flags().Bool("no-date", false, "do not prefix a creation date")
	addCmd.MarkFlagsMutuallyExclusive("date", "no-date")
	addCmd.Flags().SetNormalizeFunc(tagFlagAliases)
	rootCmd.AddCommand(addCmd)
}

// tagFlagAliases accepts plural and short spellings of the tag flags.
func tagFlagAliases(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "projects":
		name = "project"
	case "contexts":
		name = "context"
	case "pri":
		name = "priority"
	}
	return pflag.NormalizedName(name)
}

func runAdd(cmd *cobra.Command, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return clierr.New(clierr.InvalidInput, "task text is empty")
	}
	if strings.ContainsAny(text, "\r\n") {
		return clierr.New(clierr.InvalidInput, "task text must be a single line")
	}

	fields := task.Fields{Body: text}
	fields.Priority, _ = cmd.Flags().GetString("priority")
	if err := task.ValidatePriority(fields.Priority); err != nil {
		return err
	}
	fields.Projects, _ = cmd.Flags().GetStringSlice("project")
	fields.Contexts, _ = cmd.Flags().GetStringSlice("context")
	if due, _ := cmd.Flags().GetString("due"); due != "" {
		d, err := date.Parse(due)
		if err != nil {
			return task.ValidateDate("due", due, err)
		}
		fields.Due = &d
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	cfg := s.Config()

	stampDate := cfg.DateOnAdd
	if v, _ := cmd.Flags().GetBool("date"); v {
		stampDate = true
	}
	if v, _ := cmd.Flags().GetBool("no-date"); v {
		stampDate = false
	}
	var created *date.Date
	if stampDate {
		created = date.Today().Ptr()
	}

	t := task.New(fields)
	t.Stamp(created, cfg.Defaults.Priority)

	err = s.Update(cmd.Context(), func(l *tasklist.List) error {
		l.Add(t)
		return nil
	})
	if err != nil {
		return err
	}
	s.Log("add", t.ItemNumber, t.String(), []string{task.FieldRaw})

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, t)
	}
	output.Messagef(os.Stdout, "%d %s", t.ItemNumber, t.String())
	output.Messagef(os.Stdout, "TODO: %d added.", t.ItemNumber)
	return nil
}
