package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/storyweaver/pkg/story"
)

func press(t *testing.T, m playerModel, keys ...tea.KeyMsg) playerModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(playerModel)
	}
	return m
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
)

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestPlayerWalksToEnding(t *testing.T) {
	m, err := newPlayerModel(story.Sample())
	if err != nil {
		t.Fatal(err)
	}

	m = press(t, m, keyEnter) // Go left.
	if m.current.ID != "1" {
		t.Fatalf("after first choice at %s, want 1", m.current.ID)
	}
	m = press(t, m, keyRune('1')) // Open the chest.
	if m.current.ID != "3" || !m.current.IsEnding {
		t.Fatalf("at %s, want ending 3", m.current.ID)
	}

	opts := m.options()
	if len(opts) != 1 || opts[0].text != "'''Play again?'''" {
		t.Fatalf("ending options = %+v", opts)
	}
	m = press(t, m, keyEnter)
	if !m.current.IsStart() || len(m.trail) != 0 {
		t.Errorf("start over led to %s with trail %d", m.current.ID, len(m.trail))
	}
	if m.steps != 4 {
		t.Errorf("steps = %d, want 4", m.steps)
	}
}

func TestPlayerBackAndCursor(t *testing.T) {
	m, _ := newPlayerModel(story.Sample())
	m = press(t, m, keyDown, keyDown)
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want clamped to 1", m.cursor)
	}
	m = press(t, m, keyEnter)
	if m.current.ID != "2" {
		t.Fatalf("at %s, want 2", m.current.ID)
	}
	m = press(t, m, keyRune('b'))
	if m.current.ID != "0" {
		t.Errorf("back led to %s, want 0", m.current.ID)
	}
}

func TestPlayerSkipsUnconnectedChoice(t *testing.T) {
	s := story.NewWithStart()
	start, _ := s.Start()
	s.AddChoice(start.ID, "Nowhere")

	m, _ := newPlayerModel(s)
	m = press(t, m, keyEnter)
	if !m.current.IsStart() {
		t.Errorf("unconnected choice moved to %s", m.current.ID)
	}
	if !strings.Contains(m.View(), "not connected") {
		t.Error("View() does not mark the unconnected choice")
	}
}

func TestPlayerQuit(t *testing.T) {
	m, _ := newPlayerModel(story.Sample())
	if _, cmd := m.Update(keyRune('q')); cmd == nil {
		t.Error("q did not quit")
	}
}
