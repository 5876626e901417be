// Package tui implements the interactive todo.txt list view.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/twiced-technology-gmbh/todowatch/internal/clierr"
	"github.com/twiced-technology-gmbh/todowatch/internal/config"
	"github.com/twiced-technology-gmbh/todowatch/internal/date"
	"github.com/twiced-technology-gmbh/todowatch/internal/store"
	"github.com/twiced-technology-gmbh/todowatch/internal/task"
	"github.com/twiced-technology-gmbh/todowatch/internal/tasklist"
)

// mode represents the current screen state.
type mode int

const (
	modeList mode = iota
	modeFilter
	modeAdd
	modeEdit
	modeConfirmDelete
)

const (
	keyEsc   = "esc"
	keyEnter = "enter"

	listChrome       = 3 // title + blank line + status bar
	lockTimeout      = 2 * time.Second
	inputCharLimit   = 500
	defaultInputWide = 60
)

// Model is the top-level bubbletea model.
type Model struct {
	store *store.Store
	cfg   *config.Config
	keys  keyMap
	help  help.Model
	input textinput.Model

	all    *tasklist.List
	rows   []*task.Task
	cursor int
	offset int

	mode          mode
	filter        string
	showCompleted bool
	editNumber    int
	deleteNumber  int
	deleteLine    string

	width  int
	height int
	err    error
	flash  string

	now  func() time.Time
	copy func(string) error
}

// New creates the list model and loads the todo file.
func New(s *store.Store) *Model {
	input := textinput.New()
	input.CharLimit = inputCharLimit
	input.Width = defaultInputWide

	m := &Model{
		store:         s,
		cfg:           s.Config(),
		keys:          defaultKeyMap(),
		help:          help.New(),
		input:         input,
		showCompleted: s.Config().TUI.ShowCompleted,
		now:           time.Now,
		copy:          clipboard.WriteAll,
		all:           tasklist.New(),
	}
	m.reload()
	return m
}

// SetNow overrides the clock used for overdue highlighting and creation
// dates (for testing).
func (m *Model) SetNow(fn func() time.Time) {
	m.now = fn
	m.refreshRows()
}

// SetClipboard overrides the clipboard writer (for testing).
func (m *Model) SetClipboard(fn func(string) error) {
	m.copy = fn
}

// WatchPaths returns the files whose changes should trigger a reload.
func (m *Model) WatchPaths() []string {
	return []string{m.cfg.TodoPath(), m.cfg.DonePath()}
}

// --- Messages ---

// ReloadMsg is sent by the file watcher to trigger a list refresh.
type ReloadMsg struct{}

// TickMsg is sent periodically so overdue highlighting follows the date.
type TickMsg struct{}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.cfg.RefreshInterval(), func(time.Time) tea.Msg { return TickMsg{} })
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.tickCmd()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width-4, 10) //nolint:mnd // prompt and padding
		m.ensureVisible()
		return m, nil
	case ReloadMsg:
		log.Debug("reloading after file change")
		m.reload()
		return m, nil
	case TickMsg:
		m.refreshRows()
		return m, m.tickCmd()
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case modeFilter, modeAdd, modeEdit:
		return m.handleInputKey(msg)
	case modeConfirmDelete:
		return m.handleDeleteKey(msg)
	default:
		return m.handleListKey(msg)
	}
}

func (m *Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.flash = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case msg.String() == keyEsc:
		if m.filter != "" {
			m.filter = ""
			m.refreshRows()
			return m, nil
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.Top):
		m.move(-len(m.rows))
	case key.Matches(msg, m.keys.Bottom):
		m.move(len(m.rows))
	case key.Matches(msg, m.keys.Toggle):
		m.toggleSelected()
	case key.Matches(msg, m.keys.Raise):
		m.shiftPriority(-1)
	case key.Matches(msg, m.keys.Lower):
		m.shiftPriority(1)
	case key.Matches(msg, m.keys.Delete):
		if t := m.selected(); t != nil {
			m.deleteNumber = t.ItemNumber
			m.deleteLine = t.String()
			m.mode = modeConfirmDelete
		}
	case key.Matches(msg, m.keys.Add):
		return m, m.startInput(modeAdd, "add> ", "")
	case key.Matches(msg, m.keys.Edit):
		if t := m.selected(); t != nil {
			m.editNumber = t.ItemNumber
			return m, m.startInput(modeEdit, "edit> ", t.String())
		}
	case key.Matches(msg, m.keys.Filter):
		return m, m.startInput(modeFilter, "/", m.filter)
	case key.Matches(msg, m.keys.Copy):
		m.copySelected()
	case key.Matches(msg, m.keys.ShowCompleted):
		m.showCompleted = !m.showCompleted
		m.refreshRows()
	case key.Matches(msg, m.keys.Archive):
		m.archive()
	case key.Matches(msg, m.keys.Reload):
		m.reload()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) startInput(md mode, prompt, value string) tea.Cmd {
	m.mode = md
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		m.stopInput()
		return m, nil
	case keyEnter:
		value := strings.TrimSpace(m.input.Value())
		md := m.mode
		m.stopInput()
		m.submit(md, value)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode == modeFilter {
		m.filter = m.input.Value()
		m.refreshRows()
	}
	return m, cmd
}

func (m *Model) stopInput() {
	m.input.Blur()
	m.mode = modeList
}

func (m *Model) submit(md mode, value string) {
	switch md {
	case modeFilter:
		m.filter = value
		m.refreshRows()
	case modeAdd:
		if value != "" {
			m.add(value)
		}
	case modeEdit:
		if value != "" {
			m.edit(m.editNumber, value)
		}
	}
}

func (m *Model) handleDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.mode = modeList
		m.deleteSelected()
	case "n", "N", keyEsc, "q":
		m.mode = modeList
	}
	return m, nil
}

// --- Mutations ---

// mutate applies fn to task n under the directory lock. fn runs only when
// task n still holds the line shown on screen.
func (m *Model) mutate(action string, n int, line string, fn func(l *tasklist.List, t *task.Task) []string) {
	var after string
	var changed []string
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	err := m.store.Update(ctx, func(l *tasklist.List) error {
		t := l.Find(n)
		if t == nil || t.String() != line {
			return clierr.Newf(clierr.TaskNotFound, "task %d changed on disk; reloaded", n)
		}
		changed = fn(l, t)
		after = t.String()
		return nil
	})
	m.finish(action, n, after, changed, err)
}

func (m *Model) finish(action string, n int, line string, changed []string, err error) {
	if err != nil {
		m.err = err
		m.reload()
		return
	}
	m.err = nil
	if len(changed) > 0 {
		m.store.Log(action, n, line, changed)
	}
	m.reload()
}

func (m *Model) toggleSelected() {
	t := m.selected()
	if t == nil {
		return
	}
	m.mutate("do", t.ItemNumber, t.String(), func(_ *tasklist.List, t *task.Task) []string {
		return t.ToggleCompleted()
	})
	if m.err == nil && m.cfg.AutoArchive {
		m.archive()
	}
}

func (m *Model) shiftPriority(delta int) {
	t := m.selected()
	if t == nil || t.Completed {
		return
	}
	next := shiftedPriority(t.Priority, delta, m.cfg.Defaults.Priority)
	m.mutate("pri", t.ItemNumber, t.String(), func(_ *tasklist.List, t *task.Task) []string {
		return t.SetPriority(next)
	})
}

// shiftedPriority moves p by delta letters. A task without a priority
// enters at the configured default (or A when raising, Z when lowering);
// lowering past Z clears the priority.
func shiftedPriority(p string, delta int, fallback string) string {
	if p == "" {
		switch {
		case fallback != "":
			return fallback
		case delta < 0:
			return "A"
		default:
			return "Z"
		}
	}
	next := rune(p[0]) + rune(delta)
	switch {
	case next < 'A':
		return "A"
	case next > 'Z':
		return ""
	}
	return string(next)
}

func (m *Model) deleteSelected() {
	n, line := m.deleteNumber, m.deleteLine
	m.mutate("delete", n, line, func(l *tasklist.List, t *task.Task) []string {
		changed := t.Clone().Empty()
		l.Remove(n, m.cfg.PreserveLineNumbers)
		return changed
	})
	if m.err == nil {
		m.flash = "Deleted " + strconv.Itoa(n)
	}
}

func (m *Model) edit(n int, line string) {
	t := m.all.Find(n)
	if t == nil {
		return
	}
	m.mutate("replace", n, t.String(), func(_ *tasklist.List, t *task.Task) []string {
		return t.Replace(line)
	})
}

func (m *Model) add(text string) {
	var added *task.Task
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	err := m.store.Update(ctx, func(l *tasklist.List) error {
		added = task.Parse(text)
		var created *date.Date
		if m.cfg.DateOnAdd {
			created = date.Of(m.now()).Ptr()
		}
		added.Stamp(created, m.cfg.Defaults.Priority)
		l.Add(added)
		return nil
	})
	if err != nil {
		m.finish("add", 0, "", nil, err)
		return
	}
	m.finish("add", added.ItemNumber, added.String(), []string{task.FieldRaw}, nil)
	m.flash = "Added " + strconv.Itoa(added.ItemNumber)
	m.selectNumber(added.ItemNumber)
}

func (m *Model) archive() {
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	archived, err := m.store.Archive(ctx)
	if err != nil {
		m.err = err
		return
	}
	m.reload()
	if archived.Len() > 0 {
		m.flash = fmt.Sprintf("Archived %d tasks", archived.Len())
	}
}

func (m *Model) copySelected() {
	t := m.selected()
	if t == nil {
		return
	}
	if err := m.copy(t.String()); err != nil {
		m.err = fmt.Errorf("copying to clipboard: %w", err)
		return
	}
	m.flash = "Copied " + strconv.Itoa(t.ItemNumber)
}

// --- State ---

// reload reads the todo file, keeping the selection on the same item
// number when it still exists.
func (m *Model) reload() {
	l, err := m.store.Load()
	if err != nil {
		m.err = err
		return
	}
	selected := 0
	if t := m.selected(); t != nil {
		selected = t.ItemNumber
	}
	m.all = l
	m.refreshRows()
	m.selectNumber(selected)
}

// refreshRows rebuilds the visible rows from the loaded list.
func (m *Model) refreshRows() {
	if m.all == nil {
		return
	}
	status := tasklist.StatusOpen
	if m.showCompleted {
		status = tasklist.StatusAll
	}
	filtered := m.all.Filter(tasklist.FilterOptions{
		Terms:  strings.Fields(m.filter),
		Status: status,
	})
	filtered.Sort(m.cfg.Defaults.Sort, false)

	m.rows = m.rows[:0]
	for _, t := range filtered.Tasks() {
		if !t.IsEmpty() {
			m.rows = append(m.rows, t)
		}
	}
	m.clampCursor()
}

func (m *Model) selectNumber(n int) {
	for i, t := range m.rows {
		if t.ItemNumber == n {
			m.cursor = i
			m.ensureVisible()
			return
		}
	}
	m.clampCursor()
}

func (m *Model) selected() *task.Task {
	if m.cursor >= 0 && m.cursor < len(m.rows) {
		return m.rows[m.cursor]
	}
	return nil
}

func (m *Model) move(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	m.cursor = min(max(m.cursor, 0), max(len(m.rows)-1, 0))
	m.ensureVisible()
}

func (m *Model) visibleRows() int {
	return max(m.height-listChrome-m.footerHeight(), 1)
}

func (m *Model) footerHeight() int {
	h := lipgloss.Height(m.help.View(m.keys))
	if m.err != nil {
		h++
	}
	if m.mode == modeFilter || m.mode == modeAdd || m.mode == modeEdit {
		h++
	}
	return h
}

func (m *Model) ensureVisible() {
	rows := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	m.offset = max(m.offset, 0)
}

// --- View ---

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.mode == modeConfirmDelete {
		return m.viewDeleteConfirm()
	}

	var b strings.Builder
	b.WriteString(m.renderTitle())
	b.WriteString("\n\n")
	b.WriteString(m.renderRows())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) renderTitle() string {
	open := 0
	for _, t := range m.all.Tasks() {
		if !t.Completed && !t.IsEmpty() {
			open++
		}
	}
	title := fmt.Sprintf("todo.txt  %d open", open)
	if m.filter != "" {
		title += "  filter: " + m.filter
	}
	return titleStyle.Render(truncate(title, m.width-2)) //nolint:mnd // title padding
}

func (m *Model) renderRows() string {
	if len(m.rows) == 0 {
		return dimStyle.Render("  No tasks. Press a to add one.")
	}

	width := m.all.Width()
	today := date.Of(m.now())
	end := min(m.offset+m.visibleRows(), len(m.rows))

	lines := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderRow(m.rows[i], width, today, i == m.cursor))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderRow(t *task.Task, width int, today date.Date, active bool) string {
	num := fmt.Sprintf("%0*d", width, t.ItemNumber)
	line := truncate(t.String(), m.width-width-3) //nolint:mnd // cursor and spacing

	if active {
		return selectedStyle.Render("> " + num + " " + line)
	}

	switch {
	case t.Completed:
		line = doneStyle.Render(line)
	case t.IsOverdue(today):
		line = overdueStyle.Render(line)
	default:
		if st, ok := priorityStyles[t.Priority]; ok && t.HasPriority() {
			prio := "(" + t.Priority + ")"
			line = st.Render(prio) + colorWords(strings.TrimPrefix(line, prio))
		} else {
			line = colorWords(line)
		}
	}
	return "  " + numberStyle.Render(num) + " " + line
}

func (m *Model) renderFooter() string {
	var parts []string
	if m.mode == modeFilter || m.mode == modeAdd || m.mode == modeEdit {
		parts = append(parts, m.input.View())
	}
	if m.err != nil {
		parts = append(parts, errorStyle.Render(truncate("Error: "+m.err.Error(), m.width)))
	} else if m.flash != "" {
		parts = append(parts, flashStyle.Render(m.flash))
	}
	parts = append(parts, statusBarStyle.Render(m.help.View(m.keys)))
	return strings.Join(parts, "\n")
}

func (m *Model) viewDeleteConfirm() string {
	content := errorStyle.Render("Delete task?") + "\n\n" +
		fmt.Sprintf("  %d %s", m.deleteNumber, m.deleteLine) + "\n\n" +
		dimStyle.Render("y:yes  n:no")

	return dialogStyle.Render(content)
}
