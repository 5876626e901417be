package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("237"))

	numberStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	projectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	contextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("44"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true)
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	priorityStyles = map[string]lipgloss.Style{
		"A": lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		"B": lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		"C": lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
	}

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	flashStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	dialogPadY = 1
	dialogPadX = 2

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(dialogPadY, dialogPadX)
)

func truncate(s string, maxLen int) string {
	if maxLen < 4 { //nolint:mnd // minimum length for truncation
		maxLen = 4
	}
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	// Slice by runes to avoid breaking multi-byte UTF-8 characters.
	runes := []rune(s)
	target := maxLen - 3 //nolint:mnd // room for "..."
	if target > len(runes) {
		target = len(runes)
	}
	for target > 0 && lipgloss.Width(string(runes[:target])) > maxLen-3 {
		target--
	}
	return string(runes[:target]) + "..."
}

// colorWords styles +project and @context words in a body.
func colorWords(body string) string {
	words := strings.Split(body, " ")
	for i, w := range words {
		switch {
		case len(w) > 1 && w[0] == '+':
			words[i] = projectStyle.Render(w)
		case len(w) > 1 && w[0] == '@':
			words[i] = contextStyle.Render(w)
		}
	}
	return strings.Join(words, " ")
}
