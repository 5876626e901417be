package tasklist

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/todowatch/internal/clierr"
	"github.com/twiced-technology-gmbh/todowatch/internal/date"
	"github.com/twiced-technology-gmbh/todowatch/internal/task"
)

const sample = `(A) Call Mom @phone +Family
Buy milk @store
x 2011-03-02 (B) 2011-03-01 File taxes +Finance

(C) Plan trip +Travel due:2011-03-10
(B) Review budget +Finance @work`

func sampleList(t *testing.T) *List {
	t.Helper()
	l, err := Load(strings.NewReader(sample))
	require.NoError(t, err)
	return l
}

func numbers(l *List) []int {
	var out []int
	for _, t := range l.Tasks() {
		out = append(out, t.ItemNumber)
	}
	return out
}

func TestFromLinesSkipsBlankLinesButKeepsNumbers(t *testing.T) {
	l := sampleList(t)

	assert.Equal(t, 5, l.Len())
	assert.Equal(t, []int{1, 2, 3, 5, 6}, numbers(l))
	assert.Equal(t, "(C) Plan trip +Travel due:2011-03-10", l.Find(5).String())
	assert.Nil(t, l.Find(4))
}

func TestLinesPreserveGaps(t *testing.T) {
	l := sampleList(t)
	assert.Equal(t, strings.Split(sample, "\n"), l.Lines())
}

func TestAdd(t *testing.T) {
	l := sampleList(t)
	tk := task.Parse("New task")

	l.Add(tk)

	assert.Equal(t, 7, tk.ItemNumber)
	assert.Equal(t, 6, l.Len())
}

func TestInsert(t *testing.T) {
	l := New()
	l.Add(task.Parse("second"))
	l.Insert(0, task.Parse("first"))

	assert.Equal(t, "first", l.At(0).String())
	assert.Equal(t, []int{2, 1}, numbers(l), "numbers are not positions")
}

func TestSearch(t *testing.T) {
	l := sampleList(t)

	got := l.Search("FINANCE")
	assert.Equal(t, []int{3, 6}, numbers(got))

	got = l.Search("-finance")
	assert.Equal(t, []int{1, 2, 5}, numbers(got))

	assert.Equal(t, l.Len(), l.Search("").Len())
}

func TestSearchPartitions(t *testing.T) {
	l := sampleList(t)
	for _, term := range []string{"a", "mom", "+", "zzz", "(B)"} {
		assert.Equal(t, l.Len(), l.Search(term).Len()+l.Search("-"+term).Len(), term)
	}
}

func TestDerivedListsAreCopies(t *testing.T) {
	l := sampleList(t)

	got := l.Search("milk")
	got.At(0).SetPriority("A")

	assert.Equal(t, "", l.Find(2).Priority)
}

func TestDerivedListsKeepWidth(t *testing.T) {
	l := New()
	for i := 0; i < 12; i++ {
		l.Add(task.Parse("task"))
	}
	l.Add(task.Parse("needle"))

	got := l.Search("needle")

	assert.Equal(t, 2, got.Width())
	assert.Equal(t, []string{"13 needle"}, got.FormattedLines())
}

func TestPriority(t *testing.T) {
	l := sampleList(t)

	assert.Equal(t, []int{3, 6}, numbers(l.Priority("b")))
	assert.Equal(t, []int{1, 3, 6, 5}, numbers(l.Priority("")))
	assert.Equal(t, 0, l.Priority("Z").Len())
}

func TestRemoveCompleted(t *testing.T) {
	t.Run("preserve", func(t *testing.T) {
		l := sampleList(t)

		removed := l.RemoveCompleted(true)

		require.Equal(t, 1, removed.Len())
		assert.Equal(t, "x 2011-03-02 (B) 2011-03-01 File taxes +Finance", removed.At(0).String())
		assert.Equal(t, []int{1, 2, 3, 5, 6}, numbers(l))
		assert.True(t, l.Find(3).IsEmpty())
		assert.Equal(t, "", l.Lines()[2])
	})

	t.Run("renumber", func(t *testing.T) {
		l := sampleList(t)

		removed := l.RemoveCompleted(false)

		require.Equal(t, 1, removed.Len())
		assert.Equal(t, []int{1, 2, 3, 4}, numbers(l))
		assert.Equal(t, "(C) Plan trip +Travel due:2011-03-10", l.Find(3).String())
	})
}

func TestRemove(t *testing.T) {
	l := sampleList(t)

	assert.True(t, l.Remove(2, true))
	assert.True(t, l.Find(2).IsEmpty())

	assert.True(t, l.Remove(1, false))
	assert.Equal(t, []int{1, 2, 3, 4}, numbers(l))

	assert.False(t, l.Remove(99, false))
}

func TestNumberedMutators(t *testing.T) {
	l := sampleList(t)

	changed, ok := l.SetPriority(2, "d")
	require.True(t, ok)
	assert.Equal(t, []string{task.FieldPriority}, changed)
	assert.Equal(t, "(D) Buy milk @store", l.Find(2).String())

	_, ok = l.Append(2, "+Home")
	require.True(t, ok)
	assert.Equal(t, []string{"+Home"}, l.Find(2).Projects)

	_, ok = l.Prepend(2, "Go")
	require.True(t, ok)
	assert.Equal(t, "(D) Go Buy milk @store +Home", l.Find(2).String())

	_, ok = l.RemoveText(2, "Go ")
	require.True(t, ok)
	assert.Equal(t, "(D) Buy milk @store +Home", l.Find(2).String())

	_, ok = l.Replace(2, "Buy bread")
	require.True(t, ok)
	assert.Equal(t, "Buy bread", l.Find(2).String())

	for _, fn := range []func() ([]string, bool){
		func() ([]string, bool) { return l.SetPriority(42, "A") },
		func() ([]string, bool) { return l.Append(42, "x") },
		func() ([]string, bool) { return l.ToggleCompleted(42) },
	} {
		changed, ok := fn()
		assert.False(t, ok)
		assert.Nil(t, changed)
	}
}

func TestToggleCompleted(t *testing.T) {
	l := sampleList(t)

	_, ok := l.ToggleCompleted(3)
	require.True(t, ok)
	assert.False(t, l.Find(3).Completed)
	assert.Equal(t, "2011-03-01 File taxes +Finance", l.Find(3).String())
}

func TestDeleteAndUpdate(t *testing.T) {
	l := sampleList(t)

	err := l.Update(task.Parse("Buy milk @store"), task.Parse("Buy oat milk @store"))
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk @store", l.Find(2).String())

	require.NoError(t, l.Delete(task.Parse("(A) Call Mom @phone +Family")))
	assert.Equal(t, []int{1, 2, 3, 4}, numbers(l))

	err = l.Delete(task.Parse("not there"))
	var cliErr *clierr.Error
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, clierr.TaskNotFound, cliErr.Code)
}

func TestGet(t *testing.T) {
	l := sampleList(t)

	_, err := l.Get(4)
	var cliErr *clierr.Error
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, clierr.TaskNotFound, cliErr.Code)
}

func TestFilter(t *testing.T) {
	l := sampleList(t)
	today := date.New(2011, time.March, 11)

	tests := []struct {
		name string
		opts FilterOptions
		want []int
	}{
		{name: "everything", want: []int{1, 2, 3, 5, 6}},
		{name: "open", opts: FilterOptions{Status: StatusOpen}, want: []int{1, 2, 5, 6}},
		{name: "done", opts: FilterOptions{Status: StatusDone}, want: []int{3}},
		{name: "terms", opts: FilterOptions{Terms: []string{"+finance", "-taxes"}}, want: []int{6}},
		{name: "project", opts: FilterOptions{Projects: []string{"+Family", "+Travel"}}, want: []int{1, 5}},
		{name: "context", opts: FilterOptions{Contexts: []string{"@work"}}, want: []int{6}},
		{name: "priority", opts: FilterOptions{Priorities: []string{"A", "C"}}, want: []int{1, 5}},
		{name: "overdue", opts: FilterOptions{OverdueOn: &today}, want: []int{5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, numbers(l.Filter(tt.opts)))
		})
	}
}

func TestSort(t *testing.T) {
	l := sampleList(t)

	l.Sort(SortPriority, false)
	assert.Equal(t, []int{1, 3, 6, 5, 2}, numbers(l))

	l.Sort(SortNumber, true)
	assert.Equal(t, []int{6, 5, 3, 2, 1}, numbers(l))

	l.Sort(SortDue, false)
	assert.Equal(t, 5, l.At(0).ItemNumber)

	l.Sort(SortText, false)
	assert.Equal(t, "Buy milk @store", l.At(0).Body)

	l.Limit(2)
	assert.Equal(t, 2, l.Len())

	assert.Error(t, ValidateSort("size"))
}

func TestGroupBy(t *testing.T) {
	l := sampleList(t)
	today := date.New(2011, time.March, 11)

	got := l.GroupBy(GroupProject, today)

	var keys []string
	for _, g := range got.Groups {
		keys = append(keys, g.Key)
	}
	assert.Equal(t, []string{"+Family", "+Finance", "+Travel", "(none)"}, keys)
	assert.Equal(t, 2, got.Groups[1].Total)
	assert.Equal(t, 1, got.Groups[1].Done)

	got = l.GroupBy(GroupDue, today)
	assert.Equal(t, "overdue", got.Groups[0].Key)

	assert.Error(t, ValidateGroupBy("tag"))
}

func TestSummary(t *testing.T) {
	l := sampleList(t)

	o := l.Summary(date.New(2011, time.March, 11))

	assert.Equal(t, 5, o.Total)
	assert.Equal(t, 4, o.Open)
	assert.Equal(t, 1, o.Done)
	assert.Equal(t, 1, o.Overdue)
	assert.Equal(t, []KeyCount{{Key: "A", Count: 1}, {Key: "B", Count: 1}, {Key: "C", Count: 1}}, o.Priorities)
	assert.Equal(t, []KeyCount{{Key: "+Family", Count: 1}, {Key: "+Finance", Count: 1}, {Key: "+Travel", Count: 1}}, o.Projects)
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "todo.txt")

	l := sampleList(t)
	l.Remove(2, true)
	require.NoError(t, l.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "(A) Call Mom @phone +Family\n\n"+
		"x 2011-03-02 (B) 2011-03-01 File taxes +Finance\n\n"+
		"(C) Plan trip +Travel due:2011-03-10\n"+
		"(B) Review budget +Finance @work\n", string(data))

	reloaded, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 5, 6}, numbers(reloaded))
}

func TestReadFileMissing(t *testing.T) {
	l, err := ReadFile(filepath.Join(t.TempDir(), "nope.txt"))
	require.NoError(t, err)
	assert.Equal(t, 0, l.Len())
}

func TestReadFileError(t *testing.T) {
	_, err := ReadFile(t.TempDir())

	var cliErr *clierr.Error
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, clierr.IOError, cliErr.Code)
	assert.Contains(t, err.Error(), "There was a problem trying to read from your file")
}

func TestWriteFileError(t *testing.T) {
	err := sampleList(t).WriteFile(filepath.Join(t.TempDir(), "missing", "todo.txt"))

	var cliErr *clierr.Error
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, clierr.IOError, cliErr.Code)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestAppendFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "done.txt")
	l := sampleList(t)

	require.NoError(t, AppendFile(path, l.RemoveCompleted(false)))
	require.NoError(t, AppendFile(path, FromLines([]string{"x 2011-03-04 another"})))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x 2011-03-02 (B) 2011-03-01 File taxes +Finance\nx 2011-03-04 another\n", string(data))
}

func TestActivityLog(t *testing.T) {
	dir := t.TempDir()

	LogMutation(dir, "add", 1, "Buy milk", nil)
	LogMutation(dir, "pri", 1, "(A) Buy milk", []string{task.FieldPriority})

	entries, err := ReadLog(dir, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "pri", entries[0].Action)
	assert.Equal(t, []string{"priority"}, entries[0].Changed)

	entries, err = ReadLog(t.TempDir(), 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestArchive(t *testing.T) {
	l := sampleList(t)
	done := filepath.Join(t.TempDir(), "done.txt")
	require.NoError(t, os.WriteFile(done, []byte("x 2010-01-01 Old task\n"), 0o600))

	archived, err := l.Archive(done, true)
	require.NoError(t, err)
	assert.Equal(t, 1, archived.Len())
	assert.True(t, l.Find(3).IsEmpty(), "blanked in place")
	assert.Equal(t, 0, l.Completed().Len())

	data, err := os.ReadFile(done)
	require.NoError(t, err)
	assert.Equal(t, "x 2010-01-01 Old task\nx 2011-03-02 (B) 2011-03-01 File taxes +Finance\n", string(data))

	again, err := l.Archive(done, true)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Len())
}

func TestMutatorsSkipBlankedGaps(t *testing.T) {
	tests := []struct {
		name string
		fn   func(l *List) ([]string, bool)
	}{
		{name: "toggle", fn: func(l *List) ([]string, bool) { return l.ToggleCompleted(1) }},
		{name: "priority", fn: func(l *List) ([]string, bool) { return l.SetPriority(1, "B") }},
		{name: "append", fn: func(l *List) ([]string, bool) { return l.Append(1, "more") }},
		{name: "prepend", fn: func(l *List) ([]string, bool) { return l.Prepend(1, "more") }},
		{name: "replace", fn: func(l *List) ([]string, bool) { return l.Replace(1, "new line") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := FromLines([]string{"(A) one", "two"})
			require.True(t, l.Remove(1, true))

			changed, ok := tt.fn(l)
			assert.False(t, ok)
			assert.Nil(t, changed)
			assert.Equal(t, []string{"", "two"}, l.Lines())

			_, err := l.Get(1)
			var cliErr *clierr.Error
			require.ErrorAs(t, err, &cliErr)
			assert.Equal(t, clierr.TaskNotFound, cliErr.Code)
		})
	}
}

func TestArchiveSkipsLinesAlreadyArchived(t *testing.T) {
	done := filepath.Join(t.TempDir(), "done.txt")
	line := "x 2011-03-02 File taxes"
	require.NoError(t, os.WriteFile(done, []byte(line+"\n"), 0o600))

	// The same completed tasks as a first attempt whose todo save failed.
	l := FromLines([]string{line, "Buy milk", "x 2011-03-03 Call Mom"})
	archived, err := l.Archive(done, false)
	require.NoError(t, err)
	assert.Equal(t, 2, archived.Len(), "both leave the todo list")
	assert.Equal(t, []string{"Buy milk"}, l.Lines())

	data, err := os.ReadFile(done)
	require.NoError(t, err)
	assert.Equal(t, line+"\nx 2011-03-03 Call Mom\n", string(data))
}
