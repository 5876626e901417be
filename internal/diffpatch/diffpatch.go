// Package diffpatch is the text diff and fuzzy patch primitive behind the
// three-way merge.
package diffpatch

import (
	"fmt"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op is the kind of an edit.
type Op int8

// Edit operations.
const (
	Delete Op = -1
	Equal  Op = 0
	Insert Op = 1
)

// String returns a short name for the operation.
func (o Op) String() string {
	switch o {
	case Delete:
		return "delete"
	case Insert:
		return "insert"
	default:
		return "equal"
	}
}

// Edit is one run of text in a diff.
type Edit struct {
	Op   Op
	Text string
}

// Patch is a set of hunks in the textual unidiff-like format understood by
// diff-match-patch implementations.
type Patch string

// Engine computes diffs and applies patches. Implementations must treat
// inputs as immutable.
type Engine interface {
	// Diff returns the edits that turn a into b.
	Diff(a, b string) []Edit
	// BuildPatch turns edits against base into a patch.
	BuildPatch(base string, edits []Edit) Patch
	// ApplyPatch applies p to text, matching hunks approximately. The bool
	// slice reports per hunk whether it applied. An error means p could
	// not be parsed.
	ApplyPatch(p Patch, text string) (string, []bool, error)
}

// Options tunes the diff-match-patch engine. Zero values keep the library
// defaults.
type Options struct {
	// MatchThreshold is how exact a fuzzy match must be, 0.0 (perfect) to 1.0.
	MatchThreshold float64
	// DeleteThreshold is how closely deleted text must match, 0.0 to 1.0.
	DeleteThreshold float64
	// PatchMargin is the number of context characters around each hunk.
	PatchMargin int
	// Timeout bounds a single diff computation.
	Timeout time.Duration
}

// DMP is the Engine backed by github.com/sergi/go-diff.
type DMP struct {
	opts Options
}

// NewDMP returns a diff-match-patch engine.
func NewDMP(opts Options) *DMP {
	return &DMP{opts: opts}
}

func (d *DMP) newDMP() *diffmatchpatch.DiffMatchPatch {
	dmp := diffmatchpatch.New()
	if d.opts.MatchThreshold > 0 {
		dmp.MatchThreshold = d.opts.MatchThreshold
	}
	if d.opts.DeleteThreshold > 0 {
		dmp.PatchDeleteThreshold = d.opts.DeleteThreshold
	}
	if d.opts.PatchMargin > 0 {
		dmp.PatchMargin = d.opts.PatchMargin
	}
	if d.opts.Timeout > 0 {
		dmp.DiffTimeout = d.opts.Timeout
	}
	return dmp
}

// Diff runs a line-level pass first and then refines changed runs by
// character.
func (d *DMP) Diff(a, b string) []Edit {
	diffs := d.newDMP().DiffMain(a, b, true)
	edits := make([]Edit, len(diffs))
	for i, df := range diffs {
		edits[i] = Edit{Op: Op(df.Type), Text: df.Text}
	}
	return edits
}

// BuildPatch implements Engine.
func (d *DMP) BuildPatch(base string, edits []Edit) Patch {
	dmp := d.newDMP()
	diffs := make([]diffmatchpatch.Diff, len(edits))
	for i, e := range edits {
		diffs[i] = diffmatchpatch.Diff{Type: diffmatchpatch.Operation(e.Op), Text: e.Text}
	}
	return Patch(dmp.PatchToText(dmp.PatchMake(base, diffs)))
}

// ApplyPatch implements Engine.
func (d *DMP) ApplyPatch(p Patch, text string) (string, []bool, error) {
	dmp := d.newDMP()
	patches, err := dmp.PatchFromText(string(p))
	if err != nil {
		return "", nil, fmt.Errorf("parsing patch: %w", err)
	}
	out, applied := dmp.PatchApply(patches, text)
	return out, applied, nil
}
