package tui

import "github.com/charmbracelet/bubbles/key"

// SimKeyMap defines the key bindings for the simulator.
type SimKeyMap struct {
	TurnLeft  key.Binding
	TurnRight key.Binding
	Press     key.Binding
	Hold      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k SimKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.TurnLeft, k.TurnRight, k.Press, k.Hold, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k SimKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.TurnLeft, k.TurnRight},
		{k.Press, k.Hold},
		{k.Help, k.Quit},
	}
}

// DefaultSimKeyMap returns default key bindings.
func DefaultSimKeyMap() SimKeyMap {
	return SimKeyMap{
		TurnLeft: key.NewBinding(
			key.WithKeys("left", "a"),
			key.WithHelp("←/a", "turn ccw (slide left)"),
		),
		TurnRight: key.NewBinding(
			key.WithKeys("right", "d"),
			key.WithHelp("→/d", "turn cw (slide right)"),
		),
		Press: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "press (rotate)"),
		),
		Hold: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "hold (rotate)"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
