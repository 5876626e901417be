// Package merge reconciles two independently edited copies of a todo list
// against their common ancestor.
package merge

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/twiced-technology-gmbh/todowatch/internal/clierr"
	"github.com/twiced-technology-gmbh/todowatch/internal/diffpatch"
	"github.com/twiced-technology-gmbh/todowatch/internal/tasklist"
)

// Result describes how the patch applied.
type Result struct {
	Patch   diffpatch.Patch `json:"patch"`
	Hunks   int             `json:"hunks"`
	Applied int             `json:"applied"`
	Failed  int             `json:"failed"`
}

// Clean reports whether every hunk applied.
func (r Result) Clean() bool { return r.Failed == 0 }

// Merge carries the changes from original to a over onto b and returns the
// merged list, numbered by position. Where both sides touched the same
// text, b's version is patched and the later edit wins.
//
// Hunks that cannot be placed are counted in Result rather than returned
// as an error. The inputs are not modified. A nil engine uses the default
// diff-match-patch engine.
func Merge(original, a, b *tasklist.List, engine diffpatch.Engine) (*tasklist.List, Result, error) {
	if engine == nil {
		engine = diffpatch.NewDMP(diffpatch.Options{})
	}

	base, changed, target := original.String(), a.String(), b.String()

	patch := engine.BuildPatch(base, engine.Diff(base, changed))
	merged, applied, err := engine.ApplyPatch(patch, target)
	if err != nil {
		return nil, Result{}, clierr.Wrap(clierr.MergeFailed, "could not apply changes", err)
	}

	res := Result{Patch: patch, Hunks: len(applied)}
	for _, ok := range applied {
		if ok {
			res.Applied++
		} else {
			res.Failed++
		}
	}
	log.Debug("merged lists", "hunks", res.Hunks, "applied", res.Applied, "failed", res.Failed)

	return parse(merged), res, nil
}

// parse splits merged text into a freshly numbered list.
func parse(text string) *tasklist.List {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return tasklist.FromLines(lines)
}
