package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/world"
)

// FromConfig builds a live model that rebuilds cfg on reset.
func FromConfig(cfg *config.Config) (Model, error) {
	return NewModel(cfg.Name, cfg.Dt, func() (*world.World, error) {
		return cfg.Build(cfg.Seed)
	})
}

// Reload turns the result of a config reload into a ReloadMsg.
func Reload(cfg *config.Config, err error) ReloadMsg {
	if err != nil {
		return ReloadMsg{Err: err}
	}
	return ReloadMsg{
		Name:  cfg.Name,
		Dt:    cfg.Dt,
		Build: func() (*world.World, error) { return cfg.Build(cfg.Seed) },
	}
}

type menu struct {
	presets []string
	cursor  int
	live    *Model
	err     error
}

func newMenu() menu {
	return menu{presets: config.ListPresets()}
}

func (m menu) Init() tea.Cmd { return nil }

func (m menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.live != nil {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
			m.live = nil
			return m, nil
		}
		next, cmd := m.live.Update(msg)
		live := next.(Model)
		m.live = &live
		return m, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		live, err := FromConfig(config.GetPreset(m.presets[m.cursor]))
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.live = &live
		return m, live.Init()
	}
	return m, nil
}

func (m menu) View() string {
	if m.live != nil {
		return m.live.View()
	}

	title := lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	sub := lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	sel := lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	desc := lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))

	var b strings.Builder
	b.WriteString("\n\n    " + title.Render("RIGIDSIM") + "\n    " + sub.Render("rigid body scenes") + "\n    " + sub.Render("─────────────────────────") + "\n\n")
	for i, name := range m.presets {
		info := fmt.Sprintf("%d bodies", len(config.Presets[name].Bodies))
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", title.Render("▸"), sel.Render(fmt.Sprintf("%-12s", name)), desc.Render(info)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", sub.Render(fmt.Sprintf("%-12s", name)), sub.Render(info)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + sub.Render("j/k navigate  enter select  esc back  q quit") + "\n")
	return b.String()
}

// RunInteractive lets the user pick a preset and watch it.
func RunInteractive() error {
	_, err := tea.NewProgram(newMenu(), tea.WithAltScreen()).Run()
	return err
}
