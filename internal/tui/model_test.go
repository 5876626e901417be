package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/todowatch/internal/config"
	"github.com/twiced-technology-gmbh/todowatch/internal/date"
	"github.com/twiced-technology-gmbh/todowatch/internal/store"
	"github.com/twiced-technology-gmbh/todowatch/internal/tasklist"
)

const sampleTodo = `(A) Call Mom @phone +Family
Buy milk @store
x 2024-03-01 Pay rent
Plant herbs +Garden due:2024-03-01
`

var fixedNow = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func setupModel(t *testing.T, todo string) (*Model, *config.Config) {
	t.Helper()
	cfg, err := config.Init(filepath.Join(t.TempDir(), config.DefaultDir))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cfg.TodoPath(), []byte(todo), 0o600))

	m := New(store.New(cfg))
	m.SetNow(func() time.Time { return fixedNow })
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, cfg
}

func keyPress(m *Model, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m.Update(msg)
	}
}

func typeText(m *Model, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func todoFile(t *testing.T, cfg *config.Config) string {
	t.Helper()
	data, err := os.ReadFile(cfg.TodoPath())
	require.NoError(t, err)
	return string(data)
}

func TestHidesCompletedByDefault(t *testing.T) {
	m, _ := setupModel(t, sampleTodo)

	require.Len(t, m.rows, 3)
	assert.NotContains(t, m.View(), "Pay rent")

	keyPress(m, "c")
	assert.Len(t, m.rows, 4)
	assert.Contains(t, m.View(), "Pay rent")
}

func TestToggleCompletes(t *testing.T) {
	m, cfg := setupModel(t, sampleTodo)

	keyPress(m, "x")

	assert.Contains(t, todoFile(t, cfg), "x "+date.Today().String()+" (A) Call Mom @phone +Family\n")
	assert.Len(t, m.rows, 2)

	entries, err := tasklist.ReadLog(cfg.Dir(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "do", entries[0].Action)
	assert.Equal(t, 1, entries[0].ItemNumber)
}

func TestToggleAutoArchives(t *testing.T) {
	m, cfg := setupModel(t, sampleTodo)
	cfg.AutoArchive = true

	keyPress(m, "x")

	assert.NotContains(t, todoFile(t, cfg), "Call Mom")
	done, err := os.ReadFile(cfg.DonePath())
	require.NoError(t, err)
	assert.Contains(t, string(done), "x "+date.Today().String()+" (A) Call Mom @phone +Family")
}

func TestPriorityShift(t *testing.T) {
	m, cfg := setupModel(t, sampleTodo)

	keyPress(m, "j", "+")
	assert.Contains(t, todoFile(t, cfg), "\n(A) Buy milk @store\n")

	keyPress(m, "-", "-")
	assert.Contains(t, todoFile(t, cfg), "\n(C) Buy milk @store\n")
}

func TestShiftedPriority(t *testing.T) {
	assert.Equal(t, "A", shiftedPriority("B", -1, ""))
	assert.Equal(t, "A", shiftedPriority("A", -1, ""))
	assert.Equal(t, "C", shiftedPriority("B", 1, ""))
	assert.Equal(t, "", shiftedPriority("Z", 1, ""))
	assert.Equal(t, "A", shiftedPriority("", -1, ""))
	assert.Equal(t, "Z", shiftedPriority("", 1, ""))
	assert.Equal(t, "C", shiftedPriority("", -1, "C"))
}

func TestAddStampsDate(t *testing.T) {
	m, cfg := setupModel(t, sampleTodo)

	keyPress(m, "a")
	typeText(m, "Water plants +Garden")
	keyPress(m, "enter")

	assert.Contains(t, todoFile(t, cfg), "\n2024-03-10 Water plants +Garden\n")
	require.NotNil(t, m.selected())
	assert.Equal(t, 5, m.selected().ItemNumber)
}

func TestEditReplacesLine(t *testing.T) {
	m, cfg := setupModel(t, sampleTodo)

	keyPress(m, "j", "e")
	assert.Equal(t, "Buy milk @store", m.input.Value())
	m.input.SetValue("Buy oat milk @store")
	keyPress(m, "enter")

	assert.Contains(t, todoFile(t, cfg), "\nBuy oat milk @store\n")
}

func TestDeleteConfirm(t *testing.T) {
	m, cfg := setupModel(t, sampleTodo)

	keyPress(m, "j", "d")
	assert.Contains(t, m.View(), "Delete task?")
	keyPress(m, "n")
	assert.Contains(t, todoFile(t, cfg), "Buy milk")

	keyPress(m, "d", "y")
	assert.NotContains(t, todoFile(t, cfg), "Buy milk")
}

func TestDeletePreservesLineNumbers(t *testing.T) {
	m, cfg := setupModel(t, sampleTodo)
	cfg.PreserveLineNumbers = true

	keyPress(m, "j", "d", "y")

	assert.Equal(t, "(A) Call Mom @phone +Family\n\nx 2024-03-01 Pay rent\nPlant herbs +Garden due:2024-03-01\n",
		todoFile(t, cfg))
}

func TestStaleLineIsRejected(t *testing.T) {
	m, cfg := setupModel(t, sampleTodo)

	require.NoError(t, os.WriteFile(cfg.TodoPath(), []byte("Something else\n"), 0o600))
	keyPress(m, "x")

	require.Error(t, m.err)
	assert.Equal(t, "Something else\n", todoFile(t, cfg))
	assert.Len(t, m.rows, 1, "reloaded after the conflict")
}

func TestFilter(t *testing.T) {
	m, _ := setupModel(t, sampleTodo)

	keyPress(m, "/")
	typeText(m, "+garden")
	assert.Len(t, m.rows, 1, "filters while typing")
	keyPress(m, "enter")
	assert.Equal(t, "+garden", m.filter)
	assert.Contains(t, m.View(), "filter: +garden")

	keyPress(m, "esc")
	assert.Empty(t, m.filter)
	assert.Len(t, m.rows, 3)
}

func TestCopy(t *testing.T) {
	m, _ := setupModel(t, sampleTodo)
	var copied string
	m.SetClipboard(func(s string) error { copied = s; return nil })

	keyPress(m, "y")
	assert.Equal(t, "(A) Call Mom @phone +Family", copied)

	m.SetClipboard(func(string) error { return errors.New("no clipboard") })
	keyPress(m, "y")
	assert.ErrorContains(t, m.err, "no clipboard")
}

func TestReloadKeepsSelection(t *testing.T) {
	m, cfg := setupModel(t, sampleTodo)
	keyPress(m, "j", "j")
	require.Equal(t, 4, m.selected().ItemNumber)

	updated := "(A) Call Mom @phone +Family\nBuy milk @store\nx 2024-03-01 Pay rent\nWater plants\n"
	require.NoError(t, os.WriteFile(cfg.TodoPath(), []byte(updated), 0o600))
	m.Update(ReloadMsg{})

	assert.Equal(t, 4, m.selected().ItemNumber)
	assert.Equal(t, "Water plants", m.selected().String())
}

func TestOverdueRowsRender(t *testing.T) {
	m, _ := setupModel(t, sampleTodo)

	view := m.View()
	assert.Contains(t, view, "todo.txt  3 open")
	assert.True(t, strings.Contains(view, "Plant herbs"))
}
