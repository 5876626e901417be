package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/todowatch/internal/clierr"
	"github.com/twiced-technology-gmbh/todowatch/internal/output"
	"github.com/twiced-technology-gmbh/todowatch/internal/tasklist"
)

const defaultLogLimit = 20

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recent activity",
	Long:  `Lists the most recent changes made through todowatch, oldest first.`,
	Args:  cobra.NoArgs,
	RunE:  runLog,
}

func init() {
	logCmd.Flags().IntP("limit", "n", defaultLogLimit, "number of entries to show (0 for all)")
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		return clierr.Newf(clierr.InvalidInput, "invalid --limit %d", limit)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	entries, err := tasklist.ReadLog(cfg.Dir(), limit)
	if err != nil {
		return clierr.Wrap(clierr.IOError, "reading activity log", err)
	}

	switch outputFormat() {
	case output.FormatJSON:
		if entries == nil {
			entries = []tasklist.LogEntry{}
		}
		return output.JSON(os.Stdout, entries)
	case output.FormatCompact:
		output.LogCompact(os.Stdout, entries)
		return nil
	}
	output.LogTable(os.Stdout, entries)
	return nil
}
