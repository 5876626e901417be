package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/todowatch/internal/output"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Move completed tasks to done.txt",
	Long: `Appends every completed task to done.txt and removes it from todo.txt.
With preserve_line_numbers set the removed lines are left blank so the
remaining tasks keep their numbers.`,
	Args: cobra.NoArgs,
	RunE: runArchive,
}

func init() {
	rootCmd.AddCommand(archiveCmd)
}

func runArchive(cmd *cobra.Command, _ []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}

	archived, err := s.Archive(cmd.Context())
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{
			"archived": archived.Len(),
			"done":     s.Config().DonePath(),
			"lines":    archived.FormattedLines(),
		})
	}
	for _, line := range archived.FormattedLines() {
		output.Messagef(os.Stdout, "%s", line)
	}
	output.Messagef(os.Stdout, "TODO: %d tasks archived to %s.", archived.Len(), s.Config().DonePath())
	return nil
}
