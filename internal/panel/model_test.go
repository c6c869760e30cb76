package panel

import (
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"qween/internal/beauty"
	"qween/internal/ipc"
)

type fakeClient struct {
	mu      sync.Mutex
	params  beauty.Parameters
	enabled bool
	updates []string
	err     error
}

func newFakeClient() *fakeClient {
	return &fakeClient{params: beauty.DefaultParameters(), enabled: true}
}

func (c *fakeClient) Parameters() (*ipc.ParametersResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return &ipc.ParametersResponse{Parameters: c.params, Enabled: c.enabled}, nil
}

func (c *fakeClient) Update(key string, value int) (*ipc.UpdateResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k, err := beauty.ParseKey(key)
	if err != nil {
		return nil, err
	}
	c.params, _ = c.params.With(k, value)
	c.updates = append(c.updates, key)
	return &ipc.UpdateResponse{Key: key, Parameters: c.params}, nil
}

func (c *fakeClient) Toggle() (*ipc.ToggleResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = !c.enabled
	return &ipc.ToggleResponse{Enabled: c.enabled}, nil
}

func (c *fakeClient) Reset() (*ipc.ResetResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params = beauty.DefaultParameters()
	return &ipc.ResetResponse{Parameters: c.params}, nil
}

// step feeds msg to the model and runs the resulting command once.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd != nil {
		if out := cmd(); out != nil {
			next, _ = m.Update(out)
			m = next.(Model)
		}
	}
	return m
}

func loaded(t *testing.T, client *fakeClient) Model {
	t.Helper()
	m := New(client)
	return step(t, m, m.Init()())
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestPanelStartsOnFirstGroupedKey(t *testing.T) {
	m := loaded(t, newFakeClient())
	if len(m.rows) != len(beauty.Keys()) {
		t.Fatalf("expected a row per key, got %d", len(m.rows))
	}
	if m.rows[0].key != beauty.Whiten || m.rows[0].group != "Skin" {
		t.Fatalf("unexpected first row %+v", m.rows[0])
	}
	view := m.View()
	for _, want := range []string{"Skin", "Shape", "Features", "Big eyes", "Dark Circle", " 30"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestPanelAdjustsSelectedParameter(t *testing.T) {
	client := newFakeClient()
	m := loaded(t, client)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if m.params.Whiten != 31 || client.params.Whiten != 31 {
		t.Fatalf("expected whiten 31, got model %d client %d", m.params.Whiten, client.params.Whiten)
	}

	m = step(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = step(t, m, runeKey('L'))
	if m.params.Dermabrasion != 60 {
		t.Fatalf("expected dermabrasion 60, got %d", m.params.Dermabrasion)
	}
	if got := strings.Join(client.updates, ","); got != "whiten,dermabrasion" {
		t.Fatalf("unexpected update keys %q", got)
	}
}

func TestPanelClampsWithoutSending(t *testing.T) {
	client := newFakeClient()
	m := loaded(t, client)
	for range 3 {
		m = step(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	if m.rows[m.cursor].key != beauty.Usm {
		t.Fatalf("expected cursor on usm, got %s", m.rows[m.cursor].key)
	}
	m = step(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if len(client.updates) != 0 {
		t.Fatalf("expected no update at the lower bound, got %v", client.updates)
	}
}

func TestPanelToggleAndReset(t *testing.T) {
	client := newFakeClient()
	m := loaded(t, client)

	m = step(t, m, runeKey('t'))
	if m.enabled {
		t.Fatal("expected effects disabled after toggle")
	}
	if !strings.Contains(m.View(), "OFF") {
		t.Fatal("expected OFF marker in view")
	}

	m = step(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = step(t, m, runeKey('r'))
	if m.params != beauty.DefaultParameters() {
		t.Fatalf("expected defaults after reset, got %+v", m.params)
	}
}

func TestPanelShowsLoadError(t *testing.T) {
	client := newFakeClient()
	client.err = errors.New("connect to daemon: socket missing")
	m := New(client)
	m = step(t, m, m.Init()())
	if m.loaded {
		t.Fatal("expected panel not loaded")
	}
	if !strings.Contains(m.View(), "socket missing") {
		t.Fatal("expected error in view")
	}
	m = step(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if len(client.updates) != 0 {
		t.Fatal("expected no updates before load")
	}
}

func TestPanelQuit(t *testing.T) {
	m := loaded(t, newFakeClient())
	_, cmd := m.Update(runeKey('q'))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}
