package tasklist

import (
	"cmp"
	"slices"
	"strings"

	"github.com/twiced-technology-gmbh/todowatch/internal/clierr"
	"github.com/twiced-technology-gmbh/todowatch/internal/date"
	"github.com/twiced-technology-gmbh/todowatch/internal/task"
)

// Sort fields.
const (
	SortNumber    = "number"
	SortPriority  = "priority"
	SortCreated   = "created"
	SortCompleted = "completed"
	SortDue       = "due"
	SortText      = "text"
)

// ValidSortFields returns the list of valid --sort field names.
func ValidSortFields() []string {
	return []string{SortNumber, SortPriority, SortCreated, SortCompleted, SortDue, SortText}
}

// ValidateSort checks a --sort value.
func ValidateSort(field string) error {
	if slices.Contains(ValidSortFields(), field) {
		return nil
	}
	return clierr.Newf(clierr.InvalidSort, "invalid sort field %q", field).
		WithDetails(map[string]any{"allowed": ValidSortFields()})
}

// Sort reorders the list in place. Item numbers are not changed. Ties keep
// their current order.
func (l *List) Sort(field string, reverse bool) {
	slices.SortStableFunc(l.tasks, func(a, b *task.Task) int {
		c := compareTasks(a, b, field)
		if reverse {
			return -c
		}
		return c
	})
}

// Limit truncates the list to at most n tasks. n <= 0 keeps everything.
func (l *List) Limit(n int) {
	if n > 0 && len(l.tasks) > n {
		l.tasks = l.tasks[:n]
	}
}

func compareTasks(a, b *task.Task, field string) int {
	switch field {
	case SortPriority:
		return comparePriority(a.Priority, b.Priority)
	case SortCreated:
		return date.Compare(a.CreatedDate, b.CreatedDate)
	case SortCompleted:
		return date.Compare(a.CompletedDate, b.CompletedDate)
	case SortDue:
		return date.Compare(a.Due(), b.Due())
	case SortText:
		return strings.Compare(strings.ToLower(a.Body), strings.ToLower(b.Body))
	default:
		return cmp.Compare(a.ItemNumber, b.ItemNumber)
	}
}

// comparePriority orders A before Z and unprioritized last.
func comparePriority(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}
	return strings.Compare(a, b)
}
