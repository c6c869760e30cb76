package panel

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Dec      key.Binding
	Inc      key.Binding
	DecLarge key.Binding
	IncLarge key.Binding
	Toggle   key.Binding
	Reset    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "previous")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next")),
		Dec:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "-1")),
		Inc:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "+1")),
		DecLarge: key.NewBinding(key.WithKeys("shift+left", "pgdown", "H"), key.WithHelp("H", "-10")),
		IncLarge: key.NewBinding(key.WithKeys("shift+right", "pgup", "L"), key.WithHelp("L", "+10")),
		Toggle:   key.NewBinding(key.WithKeys(" ", "t"), key.WithHelp("space", "on/off")),
		Reset:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Dec, k.Inc, k.Toggle, k.Reset, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Dec, k.Inc, k.DecLarge, k.IncLarge},
		{k.Toggle, k.Reset, k.Help, k.Quit},
	}
}
