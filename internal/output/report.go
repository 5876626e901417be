package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/twiced-technology-gmbh/todowatch/internal/tasklist"
)

// ReportMarkdown builds a markdown report with one section per group and a
// checklist item per task.
func ReportMarkdown(title string, gs tasklist.GroupedSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if len(gs.Groups) == 0 {
		b.WriteString("_No tasks._\n")
		return b.String()
	}

	for _, g := range gs.Groups {
		fmt.Fprintf(&b, "## %s\n\n", g.Key)
		fmt.Fprintf(&b, "%d open, %d done\n\n", g.Open, g.Done)
		for _, t := range g.Tasks {
			check := " "
			if t.Completed {
				check = "x"
			}
			text := t.Body
			if t.HasPriority() {
				text = "**(" + t.Priority + ")** " + text
			}
			fmt.Fprintf(&b, "- [%s] %s\n", check, escapeMarkdown(text))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderMarkdown writes md to w. Styled output goes through glamour; plain
// output writes the markdown source.
func RenderMarkdown(w io.Writer, md string, styled bool, wordWrap int) error {
	if !styled {
		_, err := io.WriteString(w, md)
		return err
	}

	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if wordWrap > 0 {
		opts = append(opts, glamour.WithWordWrap(wordWrap))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

var markdownEscaper = strings.NewReplacer("_", `\_`, "`", "\\`", "#", `\#`)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
