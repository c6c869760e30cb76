// Package panel implements the terminal slider panel behind `qween panel`.
// It edits the daemon's parameters over the control socket and never talks
// to the engine directly.
package panel

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"qween/internal/beauty"
	"qween/internal/ipc"
)

const (
	barWidth   = 30
	largeStep  = 10
	valueWidth = 3
)

// Client is the subset of the control socket the panel uses.
type Client interface {
	Parameters() (*ipc.ParametersResponse, error)
	Update(key string, value int) (*ipc.UpdateResponse, error)
	Toggle() (*ipc.ToggleResponse, error)
	Reset() (*ipc.ResetResponse, error)
}

type row struct {
	group string
	key   beauty.Key
}

type loadedMsg struct {
	params  beauty.Parameters
	enabled bool
}

type paramsMsg struct{ params beauty.Parameters }

type enabledMsg struct{ enabled bool }

type errMsg struct{ err error }

// Model is the bubbletea model for the panel.
type Model struct {
	client Client
	keys   keyMap
	help   help.Model
	bar    progress.Model

	rows       []row
	labelWidth int
	cursor     int

	params  beauty.Parameters
	enabled bool
	loaded  bool
	err     error
}

// New returns a panel bound to client.
func New(client Client) Model {
	var rows []row
	labelWidth := 0
	for _, g := range beauty.Groups() {
		for _, k := range g.Keys {
			rows = append(rows, row{group: g.Name, key: k})
			labelWidth = max(labelWidth, runewidth.StringWidth(k.Label()))
		}
	}
	return Model{
		client:     client,
		keys:       defaultKeyMap(),
		help:       help.New(),
		bar:        progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth), progress.WithoutPercentage()),
		rows:       rows,
		labelWidth: labelWidth,
	}
}

// Run starts the panel on the terminal and blocks until the user quits.
func Run(ctx context.Context, client Client) error {
	_, err := tea.NewProgram(New(client), tea.WithContext(ctx)).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.load
}

func (m Model) load() tea.Msg {
	resp, err := m.client.Parameters()
	if err != nil {
		return errMsg{err}
	}
	return loadedMsg{params: resp.Parameters, enabled: resp.Enabled}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.params, m.enabled, m.loaded, m.err = msg.params, msg.enabled, true, nil
		return m, nil
	case paramsMsg:
		m.params, m.err = msg.params, nil
		return m, nil
	case enabledMsg:
		m.enabled, m.err = msg.enabled, nil
		return m, nil
	case errMsg:
		m.err = msg.err
		return m, nil
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, m.keys.Dec):
		return m.adjust(-1)
	case key.Matches(msg, m.keys.Inc):
		return m.adjust(1)
	case key.Matches(msg, m.keys.DecLarge):
		return m.adjust(-largeStep)
	case key.Matches(msg, m.keys.IncLarge):
		return m.adjust(largeStep)
	case key.Matches(msg, m.keys.Toggle):
		return m, m.toggle
	case key.Matches(msg, m.keys.Reset):
		return m, m.reset
	}
	return m, nil
}

func (m Model) adjust(delta int) (tea.Model, tea.Cmd) {
	if !m.loaded || len(m.rows) == 0 {
		return m, nil
	}
	k := m.rows[m.cursor].key
	current, _ := m.params.Get(k)
	next := beauty.Clamp(current + delta)
	if next == current {
		return m, nil
	}
	// Show the new value right away; the daemon's reply replaces it.
	if updated, err := m.params.With(k, next); err == nil {
		m.params = updated
	}
	client := m.client
	return m, func() tea.Msg {
		resp, err := client.Update(k.String(), next)
		if err != nil {
			return errMsg{err}
		}
		return paramsMsg{params: resp.Parameters}
	}
}

func (m Model) toggle() tea.Msg {
	resp, err := m.client.Toggle()
	if err != nil {
		return errMsg{err}
	}
	return enabledMsg{enabled: resp.Enabled}
}

func (m Model) reset() tea.Msg {
	resp, err := m.client.Reset()
	if err != nil {
		return errMsg{err}
	}
	return paramsMsg{params: resp.Parameters}
}

func (m Model) View() string {
	var b strings.Builder

	state := offStyle.Render("OFF")
	if m.enabled {
		state = onStyle.Render("ON")
	}
	b.WriteString(titleStyle.Render("qween beauty") + "  " + state + "\n")

	if !m.loaded {
		if m.err != nil {
			b.WriteString(errorStyle.Render("error: "+m.err.Error()) + "\n")
		} else {
			b.WriteString(dimStyle.Render("loading parameters...") + "\n")
		}
		b.WriteString("\n" + m.help.View(m.keys))
		return frameStyle.Render(b.String())
	}

	group := ""
	for i, r := range m.rows {
		if r.group != group {
			group = r.group
			b.WriteString("\n" + groupStyle.Render(group) + "\n")
		}
		b.WriteString(m.renderRow(i, r) + "\n")
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("error: "+m.err.Error()) + "\n")
	}
	b.WriteString("\n" + m.help.View(m.keys))
	return frameStyle.Render(b.String())
}

func (m Model) renderRow(i int, r row) string {
	value, _ := m.params.Get(r.key)
	marker := "  "
	label := runewidth.FillRight(r.key.Label(), m.labelWidth)
	if i == m.cursor {
		marker = cursorStyle.Render("> ")
		label = cursorStyle.Render(label)
	}
	bar := m.bar.ViewAs(float64(value) / beauty.MaxValue)
	number := fmt.Sprintf("%*d", valueWidth, value)
	if !m.enabled {
		bar = dimStyle.Render(bar)
		number = dimStyle.Render(number)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, marker, label, "  ", bar, " ", number)
}
