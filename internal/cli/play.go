package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/storyweaver/pkg/story"
)

var (
	playSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	playNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	playDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

func (c *CLI) playCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "play <file>",
		Short: "Play a story in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, report, err := c.loadProject(ctx, args[0], "")
			if err != nil {
				return err
			}
			printReport(report)

			m, err := newPlayerModel(p.Story)
			if err != nil {
				return err
			}
			final, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
			if err != nil {
				return err
			}
			if pm, ok := final.(playerModel); ok {
				printInfo("Visited %d scenes", pm.steps)
			}
			return nil
		},
		ValidArgsFunction: completeStoryFiles,
	}
}

// =============================================================================
// playerModel - walks a story scene by scene
// =============================================================================

// option is one selectable line under a scene. A nil target marks a choice
// that is not connected yet.
type option struct {
	text   string
	target *story.Scene
}

// playerModel is the bubbletea model of the play command.
type playerModel struct {
	story   *story.Story
	current *story.Scene
	trail   []*story.Scene // scenes visited before current
	cursor  int
	steps   int
	width   int
}

func newPlayerModel(s *story.Story) (playerModel, error) {
	start, ok := s.Start()
	if !ok {
		return playerModel{}, fmt.Errorf("story has no start scene")
	}
	return playerModel{story: s, current: start, steps: 1, width: 80}, nil
}

// options lists the choices of the current scene, followed by the return
// to the start for endings.
func (m playerModel) options() []option {
	var opts []option
	for i, ch := range m.current.Choices {
		target, _ := m.story.ChoiceTarget(m.current.ID, i)
		opts = append(opts, option{text: ch.Text, target: target})
	}
	if m.current.IsEnding {
		start, _ := m.story.Start()
		opts = append(opts, option{text: m.current.StartOverLabel(), target: start})
	}
	return opts
}

// choose follows option i when it leads somewhere.
func (m playerModel) choose(i int) playerModel {
	opts := m.options()
	if i < 0 || i >= len(opts) || opts[i].target == nil {
		return m
	}
	next := opts[i].target
	if next.IsStart() && m.current.IsEnding {
		m.trail = nil
	} else {
		m.trail = append(m.trail, m.current)
	}
	m.current = next
	m.cursor = 0
	m.steps++
	return m
}

func (m playerModel) Init() tea.Cmd {
	return nil
}

func (m playerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.options())-1 {
				m.cursor++
			}
		case "enter", " ":
			return m.choose(m.cursor), nil
		case "b", "backspace":
			if n := len(m.trail); n > 0 {
				m.current = m.trail[n-1]
				m.trail = m.trail[:n-1]
				m.cursor = 0
			}
		case "r":
			start, _ := m.story.Start()
			m.current, m.trail, m.cursor = start, nil, 0
		default:
			if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
				return m.choose(int(key[0] - '1')), nil
			}
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

func (m playerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(sceneLabel(m.current)))
	b.WriteString("\n\n")

	width := m.width - 4
	if width < 20 {
		width = 20
	}
	text := m.current.Text
	if text == "" {
		text = "(no text)"
	}
	b.WriteString(lipgloss.NewStyle().Width(width).Render(text))
	b.WriteString("\n\n")

	for i, opt := range m.options() {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%d. %s", cursor, i+1, opt.text)
		switch {
		case opt.target == nil:
			b.WriteString(playDimStyle.Render(line + " (not connected)"))
		case i == m.cursor:
			b.WriteString(playSelectedStyle.Render(line))
		default:
			b.WriteString(playNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(playDimStyle.Render("↑/↓ move  ⏎ choose  1-9 pick  b back  r restart  q quit"))
	return b.String()
}
