package task

import (
	"regexp"
	"strings"

	"github.com/twiced-technology-gmbh/todowatch/internal/date"
)

var (
	contextPattern = regexp.MustCompile(`\s(@\S*[\p{L}\p{N}_])`)
	projectPattern = regexp.MustCompile(`\s(\+\S*[\p{L}\p{N}_])`)

	// Each prefix part must be followed by a space, so a prefix token is
	// never all that is left of the line.
	completionPrefix = regexp.MustCompile(`^[xX] ([0-9]{4}-[0-9]{2}-[0-9]{2}) `)
	priorityPrefix   = regexp.MustCompile(`^\(([A-Z])\) `)
	datePrefix       = regexp.MustCompile(`^([0-9]{4}-[0-9]{2}-[0-9]{2}) `)

	lineBreaks = strings.NewReplacer("\r", "", "\n", "")
)

// Parse extracts the fields of a single todo.txt line. It never fails:
// anything the grammar does not recognize ends up in Body.
//
// Contexts, projects, metadata and phone numbers are each extracted from
// the full line, so tokens inside the prefix area count too.
func Parse(line string) *Task {
	t := &Task{}
	t.parse(line)
	return t
}

// parse replaces every field except ItemNumber.
func (t *Task) parse(line string) {
	raw := lineBreaks.Replace(line)

	t.Raw = raw
	t.Contexts = findTags(contextPattern, raw)
	t.Projects = findTags(projectPattern, raw)
	t.Metadata = extractMetadata(raw)
	t.parsePrefix(strings.TrimSpace(raw))
}

// parsePrefix reads the completion mark, priority and creation date in that
// order. A date that is not a real calendar day is not a prefix: the token
// and everything after it stay in Body, so the line serializes unchanged.
func (t *Task) parsePrefix(line string) {
	t.Completed = false
	t.CompletedDate = nil
	t.Priority = ""
	t.CreatedDate = nil

	rest := line
	if m := completionPrefix.FindStringSubmatch(rest); m != nil {
		if d := date.ParsePtr(m[1]); d != nil {
			t.Completed = true
			t.CompletedDate = d
			rest = rest[len(m[0]):]
		}
	}
	if m := priorityPrefix.FindStringSubmatch(rest); m != nil {
		t.Priority = m[1]
		rest = rest[len(m[0]):]
	}
	if m := datePrefix.FindStringSubmatch(rest); m != nil {
		if d := date.ParsePtr(m[1]); d != nil {
			t.CreatedDate = d
			rest = rest[len(m[0]):]
		}
	}
	t.Body = rest
}

// findTags returns the first capture group of every match, in order,
// duplicates included.
func findTags(re *regexp.Regexp, line string) []string {
	var tags []string
	for _, m := range re.FindAllStringSubmatch(line, -1) {
		tags = append(tags, m[1])
	}
	return tags
}
