package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/todowatch/internal/clierr"
	"github.com/twiced-technology-gmbh/todowatch/internal/date"
	"github.com/twiced-technology-gmbh/todowatch/internal/output"
	"github.com/twiced-technology-gmbh/todowatch/internal/tasklist"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a markdown report grouped by project or context",
	Long: `Builds a markdown checklist with one section per project or context.
On a terminal the report is rendered with styling. When piped, or with
--compact, the markdown source is printed instead.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().String("by", tasklist.GroupProject, "group by project or context")
	reportCmd.Flags().BoolP("all", "a", false, "include completed tasks")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	by, _ := cmd.Flags().GetString("by")
	if by != tasklist.GroupProject && by != tasklist.GroupContext {
		return clierr.Newf(clierr.InvalidGroupBy, "invalid --by %q (expected project or context)", by).
			WithDetails(map[string]any{"allowed": []string{tasklist.GroupProject, tasklist.GroupContext}})
	}
	all, _ := cmd.Flags().GetBool("all")

	s, err := openStore()
	if err != nil {
		return err
	}
	l, err := s.Load()
	if err != nil {
		return err
	}

	opts := tasklist.FilterOptions{Status: tasklist.StatusOpen}
	if all {
		opts.Status = tasklist.StatusAll
	}
	grouped := l.Filter(opts).GroupBy(by, date.Today())

	format := outputFormat()
	if format == output.FormatJSON {
		return output.JSON(os.Stdout, grouped)
	}

	md := output.ReportMarkdown("Tasks by "+by, grouped)
	fd := int(os.Stdout.Fd())
	styled := format == output.FormatTable && !flagNoColor && term.IsTerminal(fd)
	wrap := 0
	if width, _, err := term.GetSize(fd); err == nil {
		wrap = width
	}
	return output.RenderMarkdown(os.Stdout, md, styled, wrap)
}
