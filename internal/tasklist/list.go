// Package tasklist provides an ordered, numbered collection of todo.txt
// tasks and the operations that act on it.
package tasklist

import (
	"slices"
	"strconv"
	"strings"

	"github.com/twiced-technology-gmbh/todowatch/internal/clierr"
	"github.com/twiced-technology-gmbh/todowatch/internal/task"
)

// List holds tasks in file order. Each task's ItemNumber is its stable,
// user-visible number; it is not implied by position.
//
// A List owns its tasks. Lists derived by Search, Priority or Filter hold
// copies, so changing them never affects the source.
type List struct {
	tasks []*task.Task
	width int // fixed number width inherited by derived lists; 0 = computed
}

// New returns an empty list.
func New() *List {
	return &List{}
}

// FromLines parses each non-blank line into a task numbered by its physical
// line number. Blank lines produce no task but still consume a number.
func FromLines(lines []string) *List {
	l := New()
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		t := task.Parse(line)
		t.ItemNumber = i + 1
		l.tasks = append(l.tasks, t)
	}
	return l
}

// derive returns an empty list sharing l's number width.
func (l *List) derive() *List {
	return &List{width: l.Width()}
}

// Len returns the number of tasks.
func (l *List) Len() int { return len(l.tasks) }

// Tasks returns the tasks in order. The slice is a copy but the tasks are not.
func (l *List) Tasks() []*task.Task {
	return slices.Clone(l.tasks)
}

// At returns the task at position i.
func (l *List) At(i int) *task.Task { return l.tasks[i] }

// maxItemNumber returns the largest assigned item number.
func (l *List) maxItemNumber() int {
	m := 0
	for _, t := range l.tasks {
		m = max(m, t.ItemNumber)
	}
	return m
}

// Width returns the digit count used to zero-pad item numbers.
func (l *List) Width() int {
	if l.width > 0 {
		return l.width
	}
	return len(strconv.Itoa(max(len(l.tasks), l.maxItemNumber(), 1)))
}

// Add appends t. A task without a number gets the next free one.
func (l *List) Add(t *task.Task) {
	l.Insert(len(l.tasks), t)
}

// Insert places t at position i, clamped to the list bounds. A task without
// a number gets the next free one.
func (l *List) Insert(i int, t *task.Task) {
	if t.ItemNumber <= 0 {
		t.ItemNumber = l.maxItemNumber() + 1
	}
	i = min(max(i, 0), len(l.tasks))
	l.tasks = slices.Insert(l.tasks, i, t)
}

// Find returns the first task with item number n, or nil.
func (l *List) Find(n int) *task.Task {
	for _, t := range l.tasks {
		if t.ItemNumber == n {
			return t
		}
	}
	return nil
}

// Get is Find that reports a missing task as TASK_NOT_FOUND. A blanked
// task is a numbering gap and counts as missing.
func (l *List) Get(n int) (*task.Task, error) {
	t := l.Find(n)
	if t == nil || t.IsEmpty() {
		return nil, task.NotFound(n)
	}
	return t, nil
}

func (l *List) indexOfLine(line string) int {
	return slices.IndexFunc(l.tasks, func(t *task.Task) bool {
		return t.String() == line
	})
}

// Delete removes the first task whose serialized line equals t's and
// renumbers the rest.
func (l *List) Delete(t *task.Task) error {
	i := l.indexOfLine(t.String())
	if i < 0 {
		return notFoundLine(t)
	}
	l.tasks = slices.Delete(l.tasks, i, i+1)
	l.Renumber()
	return nil
}

// Update replaces the first task whose serialized line equals old's with a
// copy of updated that keeps the replaced task's item number.
func (l *List) Update(old, updated *task.Task) error {
	i := l.indexOfLine(old.String())
	if i < 0 {
		return notFoundLine(old)
	}
	replacement := updated.Clone()
	replacement.ItemNumber = l.tasks[i].ItemNumber
	l.tasks[i] = replacement
	return nil
}

func notFoundLine(t *task.Task) error {
	return clierr.Newf(clierr.TaskNotFound, "task %q not found", t.String()).
		WithDetails(map[string]any{"line": t.String()})
}

// Renumber assigns item numbers 1..N by position.
func (l *List) Renumber() {
	for i, t := range l.tasks {
		t.ItemNumber = i + 1
	}
}

// Search returns copies of the tasks whose line contains term, ignoring
// case. A leading "-" inverts the match.
func (l *List) Search(term string) *List {
	negate := false
	if rest, ok := strings.CutPrefix(term, "-"); ok {
		negate, term = true, rest
	}
	needle := strings.ToLower(term)

	result := l.derive()
	for _, t := range l.tasks {
		if strings.Contains(strings.ToLower(t.String()), needle) != negate {
			result.tasks = append(result.tasks, t.Clone())
		}
	}
	return result
}

// Priority returns copies of the tasks with priority p. An empty p selects
// every prioritized task, ordered A to Z.
func (l *List) Priority(p string) *List {
	p, _ = task.NormalizePriority(p)

	result := l.derive()
	for _, t := range l.tasks {
		if (p == "" && t.HasPriority()) || (p != "" && t.Priority == p) {
			result.tasks = append(result.tasks, t.Clone())
		}
	}
	if p == "" {
		slices.SortStableFunc(result.tasks, func(a, b *task.Task) int {
			return strings.Compare(a.Priority, b.Priority)
		})
	}
	return result
}

// Completed returns copies of the completed tasks.
func (l *List) Completed() *List {
	result := l.derive()
	for _, t := range l.tasks {
		if t.Completed {
			result.tasks = append(result.tasks, t.Clone())
		}
	}
	return result
}

// RemoveCompleted takes completed tasks out of the list and returns them.
// With preserve, each is blanked in place so later numbers do not move.
// Without it, they are removed and the remaining tasks renumbered.
func (l *List) RemoveCompleted(preserve bool) *List {
	removed := l.derive()
	kept := l.tasks[:0]
	for _, t := range l.tasks {
		if !t.Completed {
			kept = append(kept, t)
			continue
		}
		removed.tasks = append(removed.tasks, t.Clone())
		if preserve {
			t.Empty()
			kept = append(kept, t)
		}
	}
	l.tasks = kept
	if !preserve {
		l.Renumber()
	}
	return removed
}

// Remove takes task n out of the list, blanking it in place when preserve
// is set. It reports false when there is no task n.
func (l *List) Remove(n int, preserve bool) bool {
	i := slices.IndexFunc(l.tasks, func(t *task.Task) bool { return t.ItemNumber == n })
	if i < 0 {
		return false
	}
	if preserve {
		l.tasks[i].Empty()
		return true
	}
	l.tasks = slices.Delete(l.tasks, i, i+1)
	l.Renumber()
	return true
}

// mutate applies fn to task n. It reports false when there is no task n
// or it is a blanked gap.
func (l *List) mutate(n int, fn func(*task.Task) []string) ([]string, bool) {
	t := l.Find(n)
	if t == nil || t.IsEmpty() {
		return nil, false
	}
	return fn(t), true
}

// SetPriority sets the priority of task n.
func (l *List) SetPriority(n int, p string) ([]string, bool) {
	return l.mutate(n, func(t *task.Task) []string { return t.SetPriority(p) })
}

// Replace replaces the whole line of task n.
func (l *List) Replace(n int, line string) ([]string, bool) {
	return l.mutate(n, func(t *task.Task) []string { return t.Replace(line) })
}

// Append adds text to the end of task n.
func (l *List) Append(n int, text string) ([]string, bool) {
	return l.mutate(n, func(t *task.Task) []string { return t.Append(text) })
}

// Prepend adds text to the start of task n's body.
func (l *List) Prepend(n int, text string) ([]string, bool) {
	return l.mutate(n, func(t *task.Task) []string { return t.Prepend(text) })
}

// RemoveText deletes text from task n's body. Missing text is not an error.
func (l *List) RemoveText(n int, text string) ([]string, bool) {
	return l.mutate(n, func(t *task.Task) []string {
		changed, _ := t.RemoveText(text)
		return changed
	})
}

// ToggleCompleted flips completion of task n.
func (l *List) ToggleCompleted(n int) ([]string, bool) {
	return l.mutate(n, (*task.Task).ToggleCompleted)
}

// Lines serializes the list one task per line. Gaps in the numbering are
// filled with blank lines so numbers survive a save and reload.
func (l *List) Lines() []string {
	lines := make([]string, 0, len(l.tasks))
	for _, t := range l.tasks {
		for t.ItemNumber > len(lines)+1 {
			lines = append(lines, "")
		}
		lines = append(lines, t.String())
	}
	return lines
}

// FormattedLines returns each task prefixed with its padded item number.
// Blanked tasks are skipped.
func (l *List) FormattedLines() []string {
	width := l.Width()
	lines := make([]string, 0, len(l.tasks))
	for _, t := range l.tasks {
		if t.IsEmpty() {
			continue
		}
		lines = append(lines, t.Format(width))
	}
	return lines
}

// String joins Lines with newlines.
func (l *List) String() string {
	return strings.Join(l.Lines(), "\n")
}
