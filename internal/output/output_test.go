package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/todowatch/internal/date"
	"github.com/twiced-technology-gmbh/todowatch/internal/tasklist"
)

func sampleList() *tasklist.List {
	return tasklist.FromLines([]string{
		"(A) Call Mom @phone +Family",
		"x 2024-03-02 2024-03-01 Pay rent +Home",
		"",
		"Plant herbs +Garden due:2024-03-01",
	})
}

func TestDetect(t *testing.T) {
	t.Setenv(EnvVar, "")
	assert.Equal(t, FormatJSON, Detect(true, false, false))
	assert.Equal(t, FormatCompact, Detect(false, true, true))
	assert.Equal(t, FormatTable, Detect(false, false, false))

	t.Setenv(EnvVar, "oneline")
	assert.Equal(t, FormatCompact, Detect(false, false, false))
	t.Setenv(EnvVar, "json")
	assert.Equal(t, FormatJSON, Detect(false, false, false))
	assert.Equal(t, FormatTable, Detect(false, true, false))
}

func TestTaskCompactSkipsBlankLines(t *testing.T) {
	l := sampleList()
	var buf bytes.Buffer
	TaskCompact(&buf, l.Tasks(), l.Width())

	assert.Equal(t,
		"1 (A) Call Mom @phone +Family\n"+
			"2 x 2024-03-02 2024-03-01 Pay rent +Home\n"+
			"4 Plant herbs +Garden due:2024-03-01\n",
		buf.String())
}

func TestTaskTablePlain(t *testing.T) {
	DisableColor()
	l := sampleList()
	var buf bytes.Buffer
	TaskTable(&buf, l.Tasks(), l.Width(), date.New(2024, 3, 10))

	out := buf.String()
	assert.Contains(t, out, "PRI")
	assert.Contains(t, out, "Call Mom @phone +Family")
	assert.Contains(t, out, "2024-03-01")
	assert.NotContains(t, out, "\x1b[")
}

func TestTaskDetailShowsMetadata(t *testing.T) {
	DisableColor()
	l := sampleList()
	var buf bytes.Buffer
	TaskDetail(&buf, l.Find(4), date.New(2024, 3, 10))

	out := buf.String()
	assert.Contains(t, out, "Task #4: Plant herbs +Garden due:2024-03-01")
	assert.Contains(t, out, "+Garden")
	assert.Contains(t, out, "due:")
}

func TestOverviewCompact(t *testing.T) {
	l := sampleList()
	var buf bytes.Buffer
	OverviewCompact(&buf, l.Summary(date.New(2024, 3, 10)))

	out := buf.String()
	assert.Contains(t, out, "todo.txt (3 tasks) open: 2 done: 1 overdue: 1")
	assert.Contains(t, out, "Priority: A=1")
	assert.Contains(t, out, "Projects: +Family=1 +Garden=1")
}

func TestReportMarkdown(t *testing.T) {
	l := sampleList()
	md := ReportMarkdown("Projects", l.GroupBy(tasklist.GroupProject, date.New(2024, 3, 10)))

	assert.Contains(t, md, "# Projects")
	assert.Contains(t, md, "## +Home")
	assert.Contains(t, md, "- [x] Pay rent +Home")
	assert.Contains(t, md, "- [ ] **(A)** Call Mom @phone +Family")

	var buf bytes.Buffer
	require.NoError(t, RenderMarkdown(&buf, md, false, 0))
	assert.Equal(t, md, buf.String())
}
