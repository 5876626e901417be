package task

import (
	"fmt"
	"strings"
)

// String serializes the task back to a todo.txt line:
//
//	[x ][completedDate ][(P) ][createdDate ]body
//
// The completion date is only written for completed tasks.
func (t *Task) String() string {
	return t.prefix() + t.Body
}

func (t *Task) prefix() string {
	var b strings.Builder
	if t.Completed {
		b.WriteString("x ")
		if t.CompletedDate != nil {
			b.WriteString(t.CompletedDate.String())
			b.WriteByte(' ')
		}
	}
	if t.Priority != "" {
		fmt.Fprintf(&b, "(%s) ", t.Priority)
	}
	if t.CreatedDate != nil {
		b.WriteString(t.CreatedDate.String())
		b.WriteByte(' ')
	}
	return b.String()
}

// Format serializes the task prefixed with its zero-padded item number.
// Tasks without a number are formatted like String.
func (t *Task) Format(width int) string {
	if t.ItemNumber <= 0 {
		return t.String()
	}
	return fmt.Sprintf("%0*d %s", width, t.ItemNumber, t.String())
}
