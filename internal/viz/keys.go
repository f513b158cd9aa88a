package viz

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Pause     key.Binding
	Reset     key.Binding
	Center    key.Binding
	NextParam key.Binding
	Increase  key.Binding
	Decrease  key.Binding
	Theme     key.Binding
	Snapshot  key.Binding
	Record    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Pause:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause")),
		Reset:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Center:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "release pointer")),
		NextParam: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next param")),
		Increase:  key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "+5%")),
		Decrease:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "-5%")),
		Theme:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Snapshot:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "svg snapshot")),
		Record:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "record gif")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Reset, k.Theme, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Reset, k.Center},
		{k.NextParam, k.Increase, k.Decrease},
		{k.Theme, k.Snapshot, k.Record},
		{k.Help, k.Quit},
	}
}
