package task

import (
	"maps"
	"slices"
	"strings"

	"github.com/twiced-technology-gmbh/todowatch/internal/date"
)

// Field names reported by the mutators.
const (
	FieldRaw           = "raw"
	FieldCompleted     = "completed"
	FieldCompletedDate = "completed_date"
	FieldCreatedDate   = "created_date"
	FieldPriority      = "priority"
	FieldBody          = "body"
	FieldProjects      = "projects"
	FieldContexts      = "contexts"
	FieldMetadata      = "metadata"
)

// changedFields lists the fields that differ between before and t.
func (t *Task) changedFields(before *Task) []string {
	var changed []string
	if before.Raw != t.Raw {
		changed = append(changed, FieldRaw)
	}
	if before.Completed != t.Completed {
		changed = append(changed, FieldCompleted)
	}
	if !date.Equal(before.CompletedDate, t.CompletedDate) {
		changed = append(changed, FieldCompletedDate)
	}
	if !date.Equal(before.CreatedDate, t.CreatedDate) {
		changed = append(changed, FieldCreatedDate)
	}
	if before.Priority != t.Priority {
		changed = append(changed, FieldPriority)
	}
	if before.Body != t.Body {
		changed = append(changed, FieldBody)
	}
	if !slices.Equal(before.Projects, t.Projects) {
		changed = append(changed, FieldProjects)
	}
	if !slices.Equal(before.Contexts, t.Contexts) {
		changed = append(changed, FieldContexts)
	}
	if !maps.Equal(before.Metadata, t.Metadata) {
		changed = append(changed, FieldMetadata)
	}
	return changed
}

// NormalizePriority strips parentheses and whitespace and upper-cases p.
// It reports false when the result is neither empty nor a single letter A-Z.
func NormalizePriority(p string) (string, bool) {
	p = strings.ToUpper(strings.Trim(p, "() \t"))
	if p == "" {
		return "", true
	}
	if len(p) != 1 || p[0] < 'A' || p[0] > 'Z' {
		return "", false
	}
	return p, true
}

// SetPriority assigns a normalized priority. Setting the current value, or
// a value that does not normalize, changes nothing.
func (t *Task) SetPriority(p string) []string {
	p, ok := NormalizePriority(p)
	if !ok || p == t.Priority {
		return nil
	}
	before := t.Clone()
	t.Priority = p
	return t.changedFields(before)
}

// SetCreatedDate sets or, with nil, clears the creation date.
func (t *Task) SetCreatedDate(d *date.Date) []string {
	before := t.Clone()
	t.CreatedDate = nil
	if d != nil {
		t.CreatedDate = d.Ptr()
	}
	return t.changedFields(before)
}

// Stamp fills in a creation date and a priority where the task has none.
// Completed tasks are not given a priority. A nil created or an empty
// priority leaves that field alone.
func (t *Task) Stamp(created *date.Date, priority string) []string {
	before := t.Clone()
	if created != nil && t.CreatedDate == nil {
		t.CreatedDate = created.Ptr()
	}
	if priority != "" && !t.HasPriority() && !t.Completed {
		t.SetPriority(priority)
	}
	return t.changedFields(before)
}

// Replace re-parses the task from an entirely new line.
func (t *Task) Replace(line string) []string {
	before := t.Clone()
	t.parse(line)
	return t.changedFields(before)
}

// SetBody keeps the completion, priority and date prefix and re-parses the
// line with a new body.
func (t *Task) SetBody(body string) []string {
	return t.Replace(t.prefix() + body)
}

// Append adds text after the body, separated by a space.
func (t *Task) Append(text string) []string {
	return t.SetBody(joinWords(t.Body, strings.TrimSpace(text)))
}

// Prepend adds text before the body, after the prefix.
func (t *Task) Prepend(text string) []string {
	return t.SetBody(joinWords(strings.TrimSpace(text), t.Body))
}

// ReplaceText replaces every occurrence of old in the body with new. It
// reports false, leaving the task untouched, when old does not occur.
func (t *Task) ReplaceText(old, replacement string) ([]string, bool) {
	if old == "" || !strings.Contains(t.Body, old) {
		return nil, false
	}
	return t.SetBody(strings.ReplaceAll(t.Body, old, replacement)), true
}

// RemoveText deletes every occurrence of text from the body and collapses
// the whitespace left behind.
func (t *Task) RemoveText(text string) ([]string, bool) {
	if text == "" || !strings.Contains(t.Body, text) {
		return nil, false
	}
	body := strings.Join(strings.Fields(strings.ReplaceAll(t.Body, text, "")), " ")
	return t.SetBody(body), true
}

// ToggleCompleted flips completion. Completing stamps today's date.
// Reopening clears the completion date and any priority.
func (t *Task) ToggleCompleted() []string {
	before := t.Clone()
	if t.Completed {
		t.Completed = false
		t.CompletedDate = nil
		t.Priority = ""
	} else {
		t.Completed = true
		t.CompletedDate = date.Of(now()).Ptr()
	}
	return t.changedFields(before)
}

// Empty blanks every field except the item number.
func (t *Task) Empty() []string {
	before := t.Clone()
	*t = Task{ItemNumber: t.ItemNumber}
	return t.changedFields(before)
}
