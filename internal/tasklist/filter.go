package tasklist

import (
	"slices"

	"github.com/twiced-technology-gmbh/todowatch/internal/date"
	"github.com/twiced-technology-gmbh/todowatch/internal/task"
)

// Status filters for FilterOptions.
const (
	StatusOpen = "open"
	StatusDone = "done"
	StatusAll  = "all"
)

// FilterOptions defines which tasks to include. All criteria must match.
type FilterOptions struct {
	Terms      []string // each applied like Search
	Priorities []string
	Projects   []string // any of
	Contexts   []string // any of
	Status     string   // open, done or all; empty means all
	OverdueOn  *date.Date
}

// Filter returns copies of the tasks matching every criterion. Blanked
// tasks never match.
func (l *List) Filter(opts FilterOptions) *List {
	result := l
	for _, term := range opts.Terms {
		result = result.Search(term)
	}

	out := l.derive()
	for _, t := range result.tasks {
		if !t.IsEmpty() && matchesFilter(t, opts) {
			out.tasks = append(out.tasks, t.Clone())
		}
	}
	return out
}

func matchesFilter(t *task.Task, opts FilterOptions) bool {
	switch opts.Status {
	case StatusOpen:
		if t.Completed {
			return false
		}
	case StatusDone:
		if !t.Completed {
			return false
		}
	}
	if len(opts.Priorities) > 0 && !slices.Contains(opts.Priorities, t.Priority) {
		return false
	}
	if len(opts.Projects) > 0 && !containsAny(t.Projects, opts.Projects) {
		return false
	}
	if len(opts.Contexts) > 0 && !containsAny(t.Contexts, opts.Contexts) {
		return false
	}
	if opts.OverdueOn != nil && !t.IsOverdue(*opts.OverdueOn) {
		return false
	}
	return true
}

func containsAny(have, want []string) bool {
	for _, w := range want {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}
