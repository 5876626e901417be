package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/todowatch/internal/clierr"
	"github.com/twiced-technology-gmbh/todowatch/internal/exchange"
	"github.com/twiced-technology-gmbh/todowatch/internal/output"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tasks as JSON, YAML or TOML",
	Long: `Writes every task with its parsed fields. JSON exports can be read back
with import.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringP("format", "f", exchange.FormatJSON,
		"export format ("+strings.Join(exchange.ValidFormats(), ", ")+")")
	exportCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
	exportCmd.Flags().Bool("done", false, "export the archive file instead of the todo file")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	dest, _ := cmd.Flags().GetString("output")
	done, _ := cmd.Flags().GetBool("done")

	s, err := openStore()
	if err != nil {
		return err
	}
	load := s.Load
	if done {
		load = s.LoadDone
	}
	l, err := load()
	if err != nil {
		return err
	}

	doc := exchange.NewDocument(l, time.Now())
	if dest == "" {
		return exchange.Encode(os.Stdout, doc, format)
	}

	var buf bytes.Buffer
	if err := exchange.Encode(&buf, doc, format); err != nil {
		return err
	}
	if err := atomic.WriteFile(dest, &buf); err != nil {
		return clierr.Wrap(clierr.IOError, "There was a problem trying to save your file", err).
			WithDetails(map[string]any{"path": dest})
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"output": dest, "format": format, "tasks": len(doc.Tasks)})
	}
	fmt.Fprintf(os.Stderr, "TODO: %d tasks exported to %s.\n", len(doc.Tasks), dest)
	return nil
}
