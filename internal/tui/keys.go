package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the list view bindings. It implements help.KeyMap.
type keyMap struct {
	Up            key.Binding
	Down          key.Binding
	Top           key.Binding
	Bottom        key.Binding
	Toggle        key.Binding
	Delete        key.Binding
	Raise         key.Binding
	Lower         key.Binding
	Add           key.Binding
	Edit          key.Binding
	Filter        key.Binding
	Copy          key.Binding
	ShowCompleted key.Binding
	Archive       key.Binding
	Reload        key.Binding
	Help          key.Binding
	Quit          key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:            key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:          key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		Top:           key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:        key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Toggle:        key.NewBinding(key.WithKeys("x", " "), key.WithHelp("x", "done")),
		Delete:        key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Raise:         key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "raise pri")),
		Lower:         key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "lower pri")),
		Add:           key.NewBinding(key.WithKeys("a", "n"), key.WithHelp("a", "add")),
		Edit:          key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
		Filter:        key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Copy:          key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),
		ShowCompleted: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "show done")),
		Archive:       key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "archive")),
		Reload:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:          key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Add, k.Edit, k.Delete, k.Filter, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Toggle, k.Raise, k.Lower, k.Delete},
		{k.Add, k.Edit, k.Filter, k.Copy},
		{k.ShowCompleted, k.Archive, k.Reload, k.Help, k.Quit},
	}
}
