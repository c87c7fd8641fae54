package tui

import "github.com/charmbracelet/bubbles/key"

type chatKeyMap struct {
	Send       key.Binding
	Focus      key.Binding
	Up         key.Binding
	Down       key.Binding
	Toggle     key.Binding
	Graph      key.Binding
	Copy       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Quit       key.Binding
}

func (k chatKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Focus, k.Toggle, k.Graph, k.Copy, k.Quit}
}

func (k chatKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.Focus, k.Up, k.Down, k.Toggle},
		{k.Graph, k.Copy, k.ScrollUp, k.ScrollDown, k.Quit},
	}
}

var chatKeys = chatKeyMap{
	Send:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
	Focus:      key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch panel")),
	Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle:     key.NewBinding(key.WithKeys(" ", "space", "enter"), key.WithHelp("space", "add/remove")),
	Graph:      key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "graph")),
	Copy:       key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy answer")),
	ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
	ScrollDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
	Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
}

type graphKeyMap struct {
	Back      key.Binding
	PanUp     key.Binding
	PanDown   key.Binding
	PanLeft   key.Binding
	PanRight  key.Binding
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	NextNode  key.Binding
	PrevNode  key.Binding
	DragUp    key.Binding
	DragDown  key.Binding
	DragLeft  key.Binding
	DragRight key.Binding
	Retry     key.Binding
	Quit      key.Binding
}

func (k graphKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Back, k.PanUp, k.ZoomIn, k.ZoomOut, k.NextNode, k.DragUp, k.Quit}
}

func (k graphKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PanUp, k.PanDown, k.PanLeft, k.PanRight, k.ZoomIn, k.ZoomOut},
		{k.NextNode, k.PrevNode, k.DragUp, k.DragDown, k.DragLeft, k.DragRight},
		{k.Back, k.Retry, k.Quit},
	}
}

var graphKeys = graphKeyMap{
	Back:      key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back to chat")),
	PanUp:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("←↑↓→", "pan")),
	PanDown:   key.NewBinding(key.WithKeys("down", "j")),
	PanLeft:   key.NewBinding(key.WithKeys("left", "h")),
	PanRight:  key.NewBinding(key.WithKeys("right", "l")),
	ZoomIn:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
	ZoomOut:   key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
	NextNode:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next node")),
	PrevNode:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous node")),
	DragUp:    key.NewBinding(key.WithKeys("shift+up"), key.WithHelp("shift+←↑↓→", "move node")),
	DragDown:  key.NewBinding(key.WithKeys("shift+down")),
	DragLeft:  key.NewBinding(key.WithKeys("shift+left")),
	DragRight: key.NewBinding(key.WithKeys("shift+right")),
	Retry:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
	Quit:      key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
}
