package output

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/todowatch/internal/task"
	"github.com/twiced-technology-gmbh/todowatch/internal/tasklist"
)

// TaskCompact renders tasks as plain numbered todo.txt lines, the format
// todo.sh prints.
func TaskCompact(w io.Writer, tasks []*task.Task, width int) {
	tasks = visible(tasks)
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	for _, t := range tasks {
		fmt.Fprintln(w, t.Format(width))
	}
}

// TaskDetailCompact renders a single task followed by its metadata pairs.
func TaskDetailCompact(w io.Writer, t *task.Task, width int) {
	fmt.Fprintln(w, t.Format(width))
	for _, k := range slices.Sorted(maps.Keys(t.Metadata)) {
		fmt.Fprintln(w, "  "+k+":"+t.Metadata[k])
	}
}

// OverviewCompact renders list counts in compact format.
func OverviewCompact(w io.Writer, o tasklist.Overview) {
	line := fmt.Sprintf("todo.txt (%d tasks) open: %d done: %d", o.Total, o.Open, o.Done)
	if o.Overdue > 0 {
		line += " overdue: " + strconv.Itoa(o.Overdue)
	}
	fmt.Fprintln(w, line)

	compactCounts(w, "Priority", o.Priorities)
	compactCounts(w, "Projects", o.Projects)
	compactCounts(w, "Contexts", o.Contexts)
}

// GroupedCompact renders grouped tasks with a header line per group.
func GroupedCompact(w io.Writer, gs tasklist.GroupedSummary, width int) {
	for _, g := range gs.Groups {
		fmt.Fprintf(w, "%s (%d/%d)\n", g.Key, g.Done, g.Total)
		for _, t := range g.Tasks {
			fmt.Fprintln(w, "  "+t.Format(width))
		}
	}
}

func compactCounts(w io.Writer, label string, counts []tasklist.KeyCount) {
	if len(counts) == 0 {
		return
	}
	parts := make([]string, 0, len(counts))
	for _, kc := range counts {
		parts = append(parts, kc.Key+"="+strconv.Itoa(kc.Count))
	}
	fmt.Fprintln(w, label+": "+strings.Join(parts, " "))
}

// LogCompact renders one tab-separated line per activity entry.
func LogCompact(w io.Writer, entries []tasklist.LogEntry) {
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", e.Timestamp.Format(time.RFC3339), e.Action, e.ItemNumber, e.Line)
	}
}
