package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/todowatch/internal/date"
	"github.com/twiced-technology-gmbh/todowatch/internal/output"
	"github.com/twiced-technology-gmbh/todowatch/internal/task"
	"github.com/twiced-technology-gmbh/todowatch/internal/tasklist"
)

// anyPriority is the --priority value given without an argument.
const anyPriority = "*"

var listCmd = &cobra.Command{
	Use:     "list [TERM...]",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `Lists open tasks, keeping their item numbers. Each TERM must match
(case-insensitive); a TERM starting with - excludes matching tasks.

--priority without a value lists every prioritized task.`,
	RunE: runList,
}

func init() {
	addListFlags(listCmd)
	rootCmd.AddCommand(listCmd)
}

func addListFlags(c *cobra.Command) {
	c.Flags().StringSlice("priority", nil, "filter by priority (comma-separated; no value for any)")
	c.Flags().Lookup("priority").NoOptDefVal = anyPriority
	c.Flags().StringSlice("project", nil, "filter by +project (any of)")
	c.Flags().StringSlice("context", nil, "filter by @context (any of)")
	c.Flags().Bool("done", false, "show only completed tasks")
	c.Flags().BoolP("all", "a", false, "show open and completed tasks")
	c.Flags().Bool("overdue", false, "show only tasks past their due date")
	c.Flags().String("sort", "", "sort field ("+strings.Join(tasklist.ValidSortFields(), ", ")+")")
	c.Flags().BoolP("reverse", "r", false, "reverse sort order")
	c.Flags().IntP("limit", "n", 0, "limit number of results")
	c.Flags().String("group-by", "", "group results by field ("+strings.Join(tasklist.ValidGroupByFields(), ", ")+")")
	c.MarkFlagsMutuallyExclusive("done", "all")
	c.Flags().SetNormalizeFunc(tagFlagAliases)
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	cfg := s.Config()

	sortBy, _ := cmd.Flags().GetString("sort")
	if sortBy == "" {
		sortBy = cfg.Defaults.Sort
	}
	if err := tasklist.ValidateSort(sortBy); err != nil {
		return err
	}
	groupBy, _ := cmd.Flags().GetString("group-by")
	if groupBy != "" {
		if err := tasklist.ValidateGroupBy(groupBy); err != nil {
			return err
		}
	}

	opts, err := listFilter(cmd, args)
	if err != nil {
		return err
	}

	l, err := s.Load()
	if err != nil {
		return err
	}
	today := date.Today()
	if overdue, _ := cmd.Flags().GetBool("overdue"); overdue {
		opts.OverdueOn = &today
	}

	result := l.Filter(opts)
	reverse, _ := cmd.Flags().GetBool("reverse")
	result.Sort(sortBy, reverse)
	limit, _ := cmd.Flags().GetInt("limit")
	result.Limit(limit)

	if groupBy != "" {
		return outputGroupedList(result.GroupBy(groupBy, today), result.Width(), today)
	}
	return outputTaskList(result, today)
}

// listFilter builds filter options from the list flags and search terms.
func listFilter(cmd *cobra.Command, terms []string) (tasklist.FilterOptions, error) {
	opts := tasklist.FilterOptions{Terms: terms, Status: tasklist.StatusOpen}

	if done, _ := cmd.Flags().GetBool("done"); done {
		opts.Status = tasklist.StatusDone
	}
	if all, _ := cmd.Flags().GetBool("all"); all {
		opts.Status = tasklist.StatusAll
	}

	priorities, _ := cmd.Flags().GetStringSlice("priority")
	for _, p := range priorities {
		if p == anyPriority {
			opts.Priorities = allPriorities()
			break
		}
		if err := task.ValidatePriority(p); err != nil {
			return opts, err
		}
		norm, _ := task.NormalizePriority(p)
		opts.Priorities = append(opts.Priorities, norm)
	}

	projects, _ := cmd.Flags().GetStringSlice("project")
	for _, p := range projects {
		opts.Projects = append(opts.Projects, "+"+strings.TrimPrefix(p, "+"))
	}
	contexts, _ := cmd.Flags().GetStringSlice("context")
	for _, c := range contexts {
		opts.Contexts = append(opts.Contexts, "@"+strings.TrimPrefix(c, "@"))
	}
	return opts, nil
}

func allPriorities() []string {
	out := make([]string, 0, 'Z'-'A'+1)
	for c := 'A'; c <= 'Z'; c++ {
		out = append(out, string(c))
	}
	return out
}

func outputGroupedList(grouped tasklist.GroupedSummary, width int, today date.Date) error {
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, grouped)
	case output.FormatCompact:
		output.GroupedCompact(os.Stdout, grouped, width)
	default:
		output.GroupedTable(os.Stdout, grouped, width, today)
	}
	return nil
}

func outputTaskList(l *tasklist.List, today date.Date) error {
	tasks := l.Tasks()
	switch outputFormat() {
	case output.FormatJSON:
		if tasks == nil {
			tasks = []*task.Task{}
		}
		return output.JSON(os.Stdout, tasks)
	case output.FormatCompact:
		output.TaskCompact(os.Stdout, tasks, l.Width())
	default:
		output.TaskTable(os.Stdout, tasks, l.Width(), today)
	}
	return nil
}
