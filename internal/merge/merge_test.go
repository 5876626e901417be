package merge

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/todowatch/internal/clierr"
	"github.com/twiced-technology-gmbh/todowatch/internal/diffpatch"
	"github.com/twiced-technology-gmbh/todowatch/internal/task"
	"github.com/twiced-technology-gmbh/todowatch/internal/tasklist"
)

func readList(t *testing.T, name string) *tasklist.List {
	t.Helper()
	l, err := tasklist.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	require.NotZero(t, l.Len())
	return l
}

func fromText(text string) *tasklist.List {
	return tasklist.FromLines(strings.Split(text, "\n"))
}

func first(l *tasklist.List, term string) *task.Task {
	found := l.Search(term)
	if found.Len() == 0 {
		return nil
	}
	return found.At(0)
}

func TestMergeFiles(t *testing.T) {
	original := readList(t, "merge0.txt")
	a := readList(t, "merge1.txt")
	b := readList(t, "merge2.txt")

	merged, res, err := Merge(original, a, b, nil)
	require.NoError(t, err)
	assert.True(t, res.Clean(), "failed hunks: %d", res.Failed)
	assert.NotEmpty(t, res.Patch)

	t.Run("priority change", func(t *testing.T) {
		checkup := first(merged, "checkup")
		require.NotNil(t, checkup)
		assert.Equal(t, "D", checkup.Priority)
	})

	t.Run("line removed", func(t *testing.T) {
		assert.Nil(t, first(merged, "milk"))
	})

	t.Run("both sides changed a line", func(t *testing.T) {
		herb := first(merged, "herb")
		require.NotNil(t, herb)
		assert.Contains(t, herb.String(), "Plant")
		assert.Contains(t, herb.String(), "vegetable")
		assert.Equal(t, "A", herb.Priority)
	})

	t.Run("conflict keeps the later edit", func(t *testing.T) {
		mobile := first(merged, "mobile")
		require.NotNil(t, mobile)
		assert.False(t, mobile.Completed)
	})

	t.Run("tasks added on both sides", func(t *testing.T) {
		assert.NotNil(t, first(merged, "Star"))
		assert.NotNil(t, first(merged, "videos"))
	})

	t.Run("numbered by position", func(t *testing.T) {
		for i, tk := range merged.Tasks() {
			assert.Equal(t, i+1, tk.ItemNumber)
		}
	})
}

func TestMergeSingleLineEdits(t *testing.T) {
	original := fromText("(A) Buy milk\n(B) Plant herb")
	a := fromText("(A) Buy milk\n(D) Plant herb")
	b := fromText("(B) Plant herb vegetable")

	merged, _, err := Merge(original, a, b, diffpatch.NewDMP(diffpatch.Options{}))
	require.NoError(t, err)

	assert.Equal(t, []string{"(D) Plant herb vegetable"}, merged.Lines())
}

func TestMergeUnchangedSideYieldsOther(t *testing.T) {
	original := fromText("x 2011-03-02 Pick up mobile\nCall Mom")
	b := fromText("Pick up mobile\nCall Mom\nWatch videos")

	merged, res, err := Merge(original, original, b, nil)
	require.NoError(t, err)

	assert.Zero(t, res.Hunks)
	assert.Equal(t, b.Lines(), merged.Lines())
}

func TestMergeDoesNotModifyInputs(t *testing.T) {
	original := readList(t, "merge0.txt")
	a := readList(t, "merge1.txt")
	b := readList(t, "merge2.txt")
	before := [][]string{original.Lines(), a.Lines(), b.Lines()}

	_, _, err := Merge(original, a, b, nil)
	require.NoError(t, err)

	assert.Equal(t, before, [][]string{original.Lines(), a.Lines(), b.Lines()})
}

type brokenEngine struct{ diffpatch.Engine }

func (brokenEngine) ApplyPatch(diffpatch.Patch, string) (string, []bool, error) {
	return "", nil, errors.New("bad patch")
}

func TestMergeEngineError(t *testing.T) {
	l := fromText("a")

	_, _, err := Merge(l, l, l, brokenEngine{diffpatch.NewDMP(diffpatch.Options{})})

	var cliErr *clierr.Error
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, clierr.MergeFailed, cliErr.Code)
}
