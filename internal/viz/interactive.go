package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var presetInfo = map[string]string{
	"hover":    "altitude hold at 5 m",
	"liftoff":  "climb, hover, settle",
	"lift-pad": "drop onto the lift pad, take off loaded",
	"drift":    "hover thrust in strong wind",
	"freefall": "dropped from 20 m",
	"tilt":     "unbalanced rotors for one second",
}

// Launcher builds the live view for a named preset.
type Launcher func(preset string) (Model, error)

// Picker lists presets and hands over to the live view once one is chosen.
type Picker struct {
	presets []string
	cursor  int
	launch  Launcher
	live    *Model
	err     error
}

func NewPicker(presets []string, launch Launcher) Picker {
	return Picker{presets: presets, launch: launch}
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.live != nil {
		next, cmd := p.live.Update(msg)
		live := next.(Model)
		p.live = &live
		return p, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.presets)-1 {
			p.cursor++
		}
	case "enter", " ":
		if len(p.presets) == 0 {
			return p, nil
		}
		live, err := p.launch(p.presets[p.cursor])
		if err != nil {
			p.err = err
			return p, nil
		}
		p.err = nil
		p.live = &live
		return p, live.Init()
	}
	return p, nil
}

func (p Picker) View() string {
	if p.live != nil {
		return p.live.View()
	}

	st := themed(CurrentTheme)
	selected := lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true)

	var b strings.Builder
	b.WriteString(st.header.Render("QUADSIM") + "\n")
	for i, name := range p.presets {
		line := fmt.Sprintf("%-10s %s", name, st.label.UnsetWidth().Render(presetInfo[name]))
		if i == p.cursor {
			b.WriteString(selected.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	if p.err != nil {
		b.WriteString("\n" + st.bad.Render(p.err.Error()) + "\n")
	}
	b.WriteString(st.help.Render("↑↓:Select  Enter:Fly  Q:Quit"))
	return b.String()
}

// Run starts a bubbletea program on the alternate screen.
func Run(m tea.Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
