package task

import (
	"strconv"
	"strings"

	"github.com/twiced-technology-gmbh/todowatch/internal/clierr"
)

// ValidatePriority checks that p normalizes to a single letter A-Z or to
// no priority.
func ValidatePriority(p string) error {
	if _, ok := NormalizePriority(p); ok {
		return nil
	}
	return clierr.Newf(clierr.InvalidPriority, "invalid priority %q", p).
		WithDetails(map[string]any{
			"priority": p,
			"allowed":  "A-Z",
		})
}

// ValidateDate returns a CLIError for invalid date input.
func ValidateDate(field, input string, err error) *clierr.Error {
	return clierr.Newf(clierr.InvalidDate, "invalid %s date: %v", field, err).
		WithDetails(map[string]any{
			"field": field,
			"input": input,
		})
}

// ParseItemNumber parses a positive item number.
func ParseItemNumber(input string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 {
		return 0, ValidateItemNumber(input)
	}
	return n, nil
}

// ParseItemNumbers splits a comma-separated list into deduplicated item
// numbers, keeping their order.
func ParseItemNumbers(input string) ([]int, error) {
	seen := make(map[int]bool)
	var numbers []int
	for _, part := range strings.Split(input, ",") {
		n, err := ParseItemNumber(part)
		if err != nil {
			return nil, err
		}
		if !seen[n] {
			seen[n] = true
			numbers = append(numbers, n)
		}
	}
	return numbers, nil
}

// ValidateItemNumber returns a CLIError for invalid item number input.
func ValidateItemNumber(input string) *clierr.Error {
	return clierr.Newf(clierr.InvalidItemNumber, "invalid item number %q", input).
		WithDetails(map[string]any{"input": input})
}

// NotFound returns a CLIError for an item number with no task.
func NotFound(n int) *clierr.Error {
	return clierr.Newf(clierr.TaskNotFound, "task #%d not found", n).
		WithDetails(map[string]any{"item_number": n})
}
