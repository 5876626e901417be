package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/todowatch/internal/clierr"
	"github.com/twiced-technology-gmbh/todowatch/internal/config"
	"github.com/twiced-technology-gmbh/todowatch/internal/diffpatch"
	"github.com/twiced-technology-gmbh/todowatch/internal/merge"
	"github.com/twiced-technology-gmbh/todowatch/internal/output"
	"github.com/twiced-technology-gmbh/todowatch/internal/store"
	"github.com/twiced-technology-gmbh/todowatch/internal/tasklist"
)

var mergeCmd = &cobra.Command{
	Use:   "merge ORIGINAL CHANGED [TARGET]",
	Short: "Three-way merge changes into a todo file",
	Long: `Carries the edits that turned ORIGINAL into CHANGED over onto TARGET
(the todo file by default) and writes the result back to TARGET.

Hunks that cannot be placed are reported and skipped. With --strict the
merge is refused instead and nothing is written.`,
	Args: cobra.RangeArgs(2, 3), //nolint:mnd // original, changed and optional target
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().Bool("dry-run", false, "print the merged list without writing")
	mergeCmd.Flags().StringP("output", "o", "", "write the result to this file instead of TARGET")
	mergeCmd.Flags().Bool("strict", false, "fail without writing when any hunk does not apply")
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	cfg := s.Config()

	target := cfg.TodoPath()
	if len(args) > 2 { //nolint:mnd // optional target
		target = args[2]
	}
	dest, _ := cmd.Flags().GetString("output")
	if dest == "" {
		dest = target
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	strict, _ := cmd.Flags().GetBool("strict")

	original, err := readExisting(args[0])
	if err != nil {
		return err
	}
	changed, err := readExisting(args[1])
	if err != nil {
		return err
	}

	var merged *tasklist.List
	var res merge.Result
	run := func() error {
		b, err := tasklist.ReadFile(target)
		if err != nil {
			return err
		}
		merged, res, err = merge.Merge(original, changed, b, mergeEngine(cfg))
		if err != nil {
			return err
		}
		if strict && !res.Clean() {
			return clierr.Newf(clierr.MergeFailed, "%d of %d hunks did not apply; nothing written", res.Failed, res.Hunks).
				WithDetails(map[string]any{"hunks": res.Hunks, "failed": res.Failed, "patch": string(res.Patch)})
		}
		if dryRun {
			return nil
		}
		return merged.WriteFile(dest)
	}

	if dryRun {
		err = run()
	} else {
		err = lockedFor(cmd.Context(), s, dest, run)
	}
	if err != nil {
		return err
	}

	if !dryRun {
		s.Log("merge", 0, filepath.Base(dest), []string{fmt.Sprintf("hunks:%d/%d", res.Applied, res.Hunks)})
	}
	return printMerge(dest, dryRun, merged, res)
}

// lockedFor runs fn under the directory lock when path is the todo file.
// Other targets are outside the directory and are written unlocked.
func lockedFor(ctx context.Context, s *store.Store, path string, fn func() error) error {
	abs, err := filepath.Abs(path)
	if err == nil && abs == s.Config().TodoPath() {
		return s.Locked(ctx, fn)
	}
	return fn()
}

// readExisting loads a merge input. Unlike the todo file, a missing input
// is an error.
func readExisting(path string) (*tasklist.List, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, clierr.Wrap(clierr.IOError, "There was a problem trying to read from your file", err).
			WithDetails(map[string]any{"path": path})
	}
	return tasklist.ReadFile(path)
}

func mergeEngine(cfg *config.Config) diffpatch.Engine {
	return diffpatch.NewDMP(diffpatch.Options{
		MatchThreshold:  cfg.Merge.MatchThreshold,
		DeleteThreshold: cfg.Merge.DeleteThreshold,
		PatchMargin:     cfg.Merge.PatchMargin,
	})
}

func printMerge(dest string, dryRun bool, merged *tasklist.List, res merge.Result) error {
	lines := merged.Lines()
	if outputFormat() == output.FormatJSON {
		if lines == nil {
			lines = []string{}
		}
		return output.JSON(os.Stdout, output.MergeResponse{
			Target:  dest,
			DryRun:  dryRun,
			Hunks:   res.Hunks,
			Applied: res.Applied,
			Failed:  res.Failed,
			Lines:   lines,
		})
	}

	if dryRun {
		output.TaskCompact(os.Stdout, merged.Tasks(), merged.Width())
	}
	if res.Failed > 0 {
		output.Messagef(os.Stderr, "Warning: %d of %d hunks did not apply", res.Failed, res.Hunks)
	}
	verb := "merged into"
	if dryRun {
		verb = "would be merged into"
	}
	output.Messagef(os.Stdout, "TODO: %d/%d changes %s %s.", res.Applied, res.Hunks, verb, dest)
	return nil
}
