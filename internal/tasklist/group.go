package tasklist

import (
	"cmp"
	"slices"

	"github.com/twiced-technology-gmbh/todowatch/internal/clierr"
	"github.com/twiced-technology-gmbh/todowatch/internal/date"
	"github.com/twiced-technology-gmbh/todowatch/internal/task"
)

// Group-by fields.
const (
	GroupProject  = "project"
	GroupContext  = "context"
	GroupPriority = "priority"
	GroupStatus   = "status"
	GroupDue      = "due"
)

const (
	keyNone     = "(none)"
	keyOpen     = "open"
	keyDone     = "done"
	keyOverdue  = "overdue"
	keyUpcoming = "upcoming"
)

// GroupedSummary holds tasks grouped by a field.
type GroupedSummary struct {
	Field  string         `json:"field"`
	Groups []GroupSummary `json:"groups"`
}

// GroupSummary is one group within a grouped view.
type GroupSummary struct {
	Key   string       `json:"key"`
	Open  int          `json:"open"`
	Done  int          `json:"done"`
	Total int          `json:"total"`
	Tasks []*task.Task `json:"tasks"`
}

// ValidGroupByFields returns the list of valid --group-by field names.
func ValidGroupByFields() []string {
	return []string{GroupProject, GroupContext, GroupPriority, GroupStatus, GroupDue}
}

// ValidateGroupBy checks a --group-by value.
func ValidateGroupBy(field string) error {
	if slices.Contains(ValidGroupByFields(), field) {
		return nil
	}
	return clierr.Newf(clierr.InvalidGroupBy, "invalid group-by field %q", field).
		WithDetails(map[string]any{"allowed": ValidGroupByFields()})
}

// GroupBy groups tasks by field. A task with several projects or contexts
// appears in each of their groups. Blanked tasks are skipped.
func (l *List) GroupBy(field string, today date.Date) GroupedSummary {
	groups := make(map[string]*GroupSummary)
	for _, t := range l.tasks {
		if t.IsEmpty() {
			continue
		}
		for _, key := range groupKeys(t, field, today) {
			g, ok := groups[key]
			if !ok {
				g = &GroupSummary{Key: key}
				groups[key] = g
			}
			g.Total++
			if t.Completed {
				g.Done++
			} else {
				g.Open++
			}
			g.Tasks = append(g.Tasks, t)
		}
	}

	result := GroupedSummary{Field: field, Groups: make([]GroupSummary, 0, len(groups))}
	for _, g := range groups {
		result.Groups = append(result.Groups, *g)
	}
	slices.SortFunc(result.Groups, func(a, b GroupSummary) int {
		return compareGroupKeys(a.Key, b.Key, field)
	})
	return result
}

func groupKeys(t *task.Task, field string, today date.Date) []string {
	var keys []string
	switch field {
	case GroupProject:
		keys = uniqueStrings(t.Projects)
	case GroupContext:
		keys = uniqueStrings(t.Contexts)
	case GroupPriority:
		if t.HasPriority() {
			keys = []string{t.Priority}
		}
	case GroupStatus:
		keys = []string{keyOpen}
		if t.Completed {
			keys = []string{keyDone}
		}
	case GroupDue:
		switch {
		case t.Due() == nil:
		case t.IsOverdue(today):
			keys = []string{keyOverdue}
		default:
			keys = []string{keyUpcoming}
		}
	}
	if len(keys) == 0 {
		return []string{keyNone}
	}
	return keys
}

func uniqueStrings(in []string) []string {
	var out []string
	for _, s := range in {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

// compareGroupKeys sorts alphabetically with "(none)" last. Status and due
// groups keep their natural order.
func compareGroupKeys(a, b, field string) int {
	if a == keyNone || b == keyNone {
		return boolOrder(a == keyNone, b == keyNone)
	}
	switch field {
	case GroupStatus:
		return boolOrder(a == keyDone, b == keyDone)
	case GroupDue:
		return boolOrder(a == keyUpcoming, b == keyUpcoming)
	}
	return cmp.Compare(a, b)
}

// boolOrder sorts false before true.
func boolOrder(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	}
	return -1
}

// KeyCount holds a count for a project, context or priority.
type KeyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Overview is the aggregate list overview.
type Overview struct {
	Total      int        `json:"total"`
	Open       int        `json:"open"`
	Done       int        `json:"done"`
	Overdue    int        `json:"overdue"`
	Priorities []KeyCount `json:"priorities"`
	Projects   []KeyCount `json:"projects"`
	Contexts   []KeyCount `json:"contexts"`
}

// Summary computes counts over the open tasks by priority, project and
// context, plus totals. Blanked tasks are not counted.
func (l *List) Summary(today date.Date) Overview {
	var o Overview
	prio := make(map[string]int)
	projects := make(map[string]int)
	contexts := make(map[string]int)

	for _, t := range l.tasks {
		if t.IsEmpty() {
			continue
		}
		o.Total++
		if t.Completed {
			o.Done++
			continue
		}
		o.Open++
		if t.IsOverdue(today) {
			o.Overdue++
		}
		if t.HasPriority() {
			prio[t.Priority]++
		}
		for _, p := range uniqueStrings(t.Projects) {
			projects[p]++
		}
		for _, c := range uniqueStrings(t.Contexts) {
			contexts[c]++
		}
	}

	o.Priorities = sortedCounts(prio, func(a, b KeyCount) int { return cmp.Compare(a.Key, b.Key) })
	byCount := func(a, b KeyCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	}
	o.Projects = sortedCounts(projects, byCount)
	o.Contexts = sortedCounts(contexts, byCount)
	return o
}

func sortedCounts(m map[string]int, less func(a, b KeyCount) int) []KeyCount {
	counts := make([]KeyCount, 0, len(m))
	for k, n := range m {
		counts = append(counts, KeyCount{Key: k, Count: n})
	}
	slices.SortFunc(counts, less)
	return counts
}
