package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Save     key.Binding
	Leave    key.Binding
	Focus    key.Binding
	Up       key.Binding
	Down     key.Binding
	Toggle   key.Binding
	Edit     key.Binding
	Remove   key.Binding
	Filter   key.Binding
	Add      key.Binding
	QuitList key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Save: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "save"),
		),
		Leave: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "list"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch focus"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle done"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "show completed"),
		),
		Add: key.NewBinding(
			key.WithKeys("a", "i"),
			key.WithHelp("a", "new task"),
		),
		QuitList: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

func (k keyMap) forFocus(f focusArea) []key.Binding {
	if f == focusInput {
		return []key.Binding{k.Save, k.Focus, k.Leave, k.Quit}
	}
	return []key.Binding{k.Up, k.Down, k.Toggle, k.Edit, k.Remove, k.Filter, k.Add, k.QuitList}
}
