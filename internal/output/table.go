package output

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/twiced-technology-gmbh/todowatch/internal/date"
	"github.com/twiced-technology-gmbh/todowatch/internal/task"
	"github.com/twiced-technology-gmbh/todowatch/internal/tasklist"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	boldStyle   = lipgloss.NewStyle().Bold(true)

	// Priority colors shared with the TUI.
	priorityStyles = map[string]lipgloss.Style{
		"A": lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		"B": lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		"C": lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
	}

	projectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	contextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("44"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// DisableColor strips all styling from table output.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	boldStyle = lipgloss.NewStyle()
	priorityStyles = map[string]lipgloss.Style{}
	projectStyle = lipgloss.NewStyle()
	contextStyle = lipgloss.NewStyle()
	doneStyle = lipgloss.NewStyle()
	overdueStyle = lipgloss.NewStyle()
}

// TaskTable renders tasks as a numbered table. Blanked lines are skipped.
func TaskTable(w io.Writer, tasks []*task.Task, width int, today date.Date) {
	tasks = visible(tasks)
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	const pad = 2
	numW := max(width, 1) + pad
	textW, dueW := 4+pad, 3+pad
	for _, t := range tasks {
		textW = max(textW, min(len(t.Body)+pad, 60)) //nolint:mnd // max text column width
	}
	dueW = max(dueW, len("2006-01-02")+pad)

	header := fmt.Sprintf("%-*s %-3s %-4s %-*s %-*s %s",
		numW, "#", "PRI", "DONE", textW, "TEXT", dueW, "DUE", "TAGS")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	for _, t := range tasks {
		body := t.Body
		const maxText = 58
		if len(body) > maxText {
			body = body[:maxText-3] + "..."
		}
		if t.Completed {
			body = doneStyle.Render(body)
		}

		done := dimStyle.Render("--")
		if t.Completed {
			done = doneStyle.Render("x")
		}

		row := fmt.Sprintf("%0*d%s %s %s %s %s %s",
			max(width, 1), t.ItemNumber, strings.Repeat(" ", pad),
			padRight(priorityDisplay(t.Priority), 3), //nolint:mnd // column width
			padRight(done, 4),                        //nolint:mnd // column width
			padRight(body, textW),
			padRight(dueDisplay(t, today), dueW),
			tagsDisplay(t))
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// TaskDetail renders a single task with full detail.
func TaskDetail(w io.Writer, t *task.Task, today date.Date) {
	titleLine := fmt.Sprintf("Task #%d: %s", t.ItemNumber, t.Body)
	fmt.Fprintln(w, boldStyle.Render(titleLine))
	fmt.Fprintln(w, strings.Repeat("─", lipgloss.Width(titleLine)))

	status := "open"
	if t.Completed {
		status = doneStyle.Render("done")
	}
	printField(w, "Status", status)
	printField(w, "Priority", priorityDisplay(t.Priority))
	printField(w, "Created", dateOrDash(t.CreatedDate))
	if t.Completed {
		printField(w, "Completed", dateOrDash(t.CompletedDate))
	}
	printField(w, "Due", dueDisplay(t, today))
	printField(w, "Projects", listOrDash(t.Projects, projectStyle))
	printField(w, "Contexts", listOrDash(t.Contexts, contextStyle))

	if len(t.Metadata) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render("METADATA"))
		for _, k := range slices.Sorted(maps.Keys(t.Metadata)) {
			printField(w, k, t.Metadata[k])
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, dimStyle.Render(t.String()))
}

// OverviewTable renders list counts as a dashboard.
func OverviewTable(w io.Writer, o tasklist.Overview) {
	fmt.Fprintln(w, boldStyle.Render("todo.txt"))
	fmt.Fprintf(w, "Total: %d tasks (%d open, %d done", o.Total, o.Open, o.Done)
	if o.Overdue > 0 {
		fmt.Fprintf(w, ", %s", overdueStyle.Render(strconv.Itoa(o.Overdue)+" overdue"))
	}
	fmt.Fprint(w, ")\n")

	countSection(w, "PRIORITY", o.Priorities, func(k string) string { return priorityDisplay(k) })
	countSection(w, "PROJECT", o.Projects, projectStyle.Render)
	countSection(w, "CONTEXT", o.Contexts, contextStyle.Render)
}

func countSection(w io.Writer, title string, counts []tasklist.KeyCount, style func(string) string) {
	if len(counts) == 0 {
		return
	}
	const keyColW = 24
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-*s %6s", keyColW, title, "OPEN")))
	for _, kc := range counts {
		fmt.Fprintf(w, "%s %6d\n", padRight(style(kc.Key), keyColW), kc.Count)
	}
}

// GroupedTable renders grouped tasks with open/done counts per group.
func GroupedTable(w io.Writer, gs tasklist.GroupedSummary, width int, today date.Date) {
	if len(gs.Groups) == 0 {
		fmt.Fprintln(os.Stderr, "No groups found.")
		return
	}

	for i, g := range gs.Groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		title := fmt.Sprintf("%s (%d open, %d done)", g.Key, g.Open, g.Done)
		fmt.Fprintln(w, boldStyle.Render(title))
		for _, t := range g.Tasks {
			fmt.Fprintln(w, "  "+styledLine(t, width, today))
		}
	}
}

// Messagef prints a simple formatted message line.
func Messagef(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format+"\n", args...)
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-12s %s\n", label+":", value)
}

// padRight pads s with spaces to the given visible width, accounting for ANSI
// escape codes that are invisible but consume bytes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func visible(tasks []*task.Task) []*task.Task {
	out := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.IsEmpty() {
			out = append(out, t)
		}
	}
	return out
}

func priorityDisplay(p string) string {
	if p == "" {
		return dimStyle.Render("-")
	}
	if st, ok := priorityStyles[p]; ok {
		return st.Render(p)
	}
	return p
}

func dueDisplay(t *task.Task, today date.Date) string {
	due := t.Due()
	switch {
	case due == nil:
		return dimStyle.Render("--")
	case t.IsOverdue(today):
		return overdueStyle.Render(due.String())
	}
	return due.String()
}

func dateOrDash(d *date.Date) string {
	if d == nil {
		return dimStyle.Render("--")
	}
	return d.String()
}

func listOrDash(items []string, style lipgloss.Style) string {
	if len(items) == 0 {
		return dimStyle.Render("--")
	}
	return style.Render(strings.Join(items, ", "))
}

func tagsDisplay(t *task.Task) string {
	parts := make([]string, 0, len(t.Projects)+len(t.Contexts))
	for _, p := range t.Projects {
		parts = append(parts, projectStyle.Render(p))
	}
	for _, c := range t.Contexts {
		parts = append(parts, contextStyle.Render(c))
	}
	return strings.Join(parts, " ")
}

// styledLine renders a numbered todo.txt line with its priority colored.
func styledLine(t *task.Task, width int, today date.Date) string {
	line := t.Format(width)
	switch {
	case t.Completed:
		return doneStyle.Render(line)
	case t.IsOverdue(today):
		return overdueStyle.Render(line)
	}
	if st, ok := priorityStyles[t.Priority]; ok {
		return st.Render(line)
	}
	return line
}

// LogTable renders activity entries, oldest first.
func LogTable(w io.Writer, entries []tasklist.LogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No activity recorded.")
		return
	}

	const timeW, actionW, numW = 20, 14, 6
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-*s %-*s %*s  %s", timeW, "TIME", actionW, "ACTION", numW, "#", "LINE")))
	for _, e := range entries {
		num := dimStyle.Render("--")
		if e.ItemNumber > 0 {
			num = strconv.Itoa(e.ItemNumber)
		}
		line := e.Line
		if len(e.Changed) > 0 {
			line += " " + dimStyle.Render("["+strings.Join(e.Changed, ",")+"]")
		}
		fmt.Fprintf(w, "%-*s %s %s  %s\n",
			timeW, e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			padRight(boldStyle.Render(e.Action), actionW),
			padLeft(num, numW), line)
	}
}

func padLeft(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return strings.Repeat(" ", width-visible) + s
}
