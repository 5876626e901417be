// Package task models a single todo.txt line and its extracted fields.
package task

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/todowatch/internal/date"
)

// now is swapped in tests.
var now = time.Now

// Task represents one todo.txt line parsed into structured fields.
//
// Fields may be read freely. Mutations should go through the methods in
// this package so that Priority stays normalized and the derived fields
// stay consistent with Body.
type Task struct {
	Raw           string            `json:"raw"`
	ItemNumber    int               `json:"item_number,omitempty"`
	Completed     bool              `json:"completed"`
	CompletedDate *date.Date        `json:"completed_date,omitempty"`
	CreatedDate   *date.Date        `json:"created_date,omitempty"`
	Priority      string            `json:"priority,omitempty"`
	Body          string            `json:"body"`
	Projects      []string          `json:"projects,omitempty"`
	Contexts      []string          `json:"contexts,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Fields describes a task to build with New.
type Fields struct {
	Priority      string
	Body          string
	Projects      []string
	Contexts      []string
	CreatedDate   *date.Date
	CompletedDate *date.Date
	Due           *date.Date
	Completed     bool
}

// New renders f as a todo.txt line and parses it. Projects and contexts are
// appended after the body with their sigils added when missing, followed by
// a due: tag. An invalid priority is dropped. A completed task without a
// completion date is stamped with today's date.
func New(f Fields) *Task {
	var b strings.Builder
	if f.Completed {
		completed := f.CompletedDate
		if completed == nil {
			completed = date.Of(now()).Ptr()
		}
		b.WriteString("x " + completed.String() + " ")
	}
	if p, ok := NormalizePriority(f.Priority); ok && p != "" {
		b.WriteString("(" + p + ") ")
	}
	if f.CreatedDate != nil {
		b.WriteString(f.CreatedDate.String() + " ")
	}

	words := []string{strings.TrimSpace(f.Body)}
	for _, c := range f.Contexts {
		words = append(words, withSigil(c, "@"))
	}
	for _, p := range f.Projects {
		words = append(words, withSigil(p, "+"))
	}
	if f.Due != nil {
		words = append(words, "due:"+f.Due.String())
	}
	b.WriteString(joinWords(words...))

	return Parse(b.String())
}

func withSigil(s, sigil string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, sigil) {
		return s
	}
	return sigil + s
}

// joinWords joins the non-empty words with single spaces.
func joinWords(words ...string) string {
	var kept []string
	for _, w := range words {
		if w != "" {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// Clone returns a deep copy of t.
func (t *Task) Clone() *Task {
	c := *t
	c.Projects = slices.Clone(t.Projects)
	c.Contexts = slices.Clone(t.Contexts)
	c.Metadata = maps.Clone(t.Metadata)
	if t.CompletedDate != nil {
		c.CompletedDate = t.CompletedDate.Ptr()
	}
	if t.CreatedDate != nil {
		c.CreatedDate = t.CreatedDate.Ptr()
	}
	return &c
}

// HasPriority reports whether a priority letter is set.
func (t *Task) HasPriority() bool { return t.Priority != "" }

// IsEmpty reports whether the task serializes to a blank line. Blanked
// tasks keep their slot when line numbers are preserved.
func (t *Task) IsEmpty() bool { return t.String() == "" }

// Due returns the date in the due: tag, or nil when absent or malformed.
func (t *Task) Due() *date.Date {
	v, ok := t.Metadata["due"]
	if !ok {
		return nil
	}
	return date.ParsePtr(v)
}

// IsOverdue reports whether an open task's due date lies before today.
func (t *Task) IsOverdue(today date.Date) bool {
	due := t.Due()
	return !t.Completed && due != nil && due.Before(today.Time)
}
