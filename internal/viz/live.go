package viz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/rigidsim/internal/world"
)

const (
	width           = 60
	height          = 20
	historyCapacity = 600
	framesPerSecond = 30
)

type TickMsg time.Time

// ReloadMsg replaces the scene being shown, for example after its file was
// edited. A non-nil Err is shown and the current scene keeps running.
type ReloadMsg struct {
	Name  string
	Dt    float64
	Build func() (*world.World, error)
	Err   error
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/framesPerSecond, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model steps a world in real time and draws it.
type Model struct {
	build        func() (*world.World, error)
	w            *world.World
	name         string
	dt           float64
	stepsPerTick int

	canvas *Canvas
	wire   *Wireframe
	camera *Camera
	theme  int
	st     styles

	running  bool
	showHelp bool
	energy   []float64
	contacts []float64
	err      error
}

// NewModel builds the scene once and keeps build for resets.
func NewModel(name string, dt float64, build func() (*world.World, error)) (Model, error) {
	if dt <= 0 {
		return Model{}, fmt.Errorf("viz: dt must be positive, got %g", dt)
	}
	m := Model{
		build:        build,
		name:         name,
		dt:           dt,
		stepsPerTick: max(1, int(1/(dt*framesPerSecond))),
		canvas:       NewCanvas(width, height),
		wire:         &Wireframe{},
		camera:       NewCamera(),
		st:           newStyles(Themes[0]),
		running:      true,
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running && m.err == nil
		case ".":
			if !m.running && m.err == nil {
				m.advance(1)
			}
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "left", "h":
			m.camera.Orbit(-0.1, 0)
		case "right", "l":
			m.camera.Orbit(0.1, 0)
		case "up", "k":
			m.camera.Orbit(0, 0.1)
		case "down", "j":
			m.camera.Orbit(0, -0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
			m.st = newStyles(Themes[m.theme])
		case "?":
			m.showHelp = !m.showHelp
		}
	case ReloadMsg:
		m.reload(msg)
	case TickMsg:
		if m.running {
			m.advance(m.stepsPerTick)
		}
		return m, tick()
	}
	return m, nil
}

// World is the scene currently shown.
func (m Model) World() *world.World { return m.w }

func (m Model) Running() bool { return m.running }

func (m Model) Err() error { return m.err }

func (m *Model) reset() error {
	w, err := m.build()
	if err != nil {
		return err
	}
	m.w = w
	m.err = nil
	m.energy = m.energy[:0]
	m.contacts = m.contacts[:0]
	m.camera.Focus(w)
	m.record()
	return nil
}

func (m *Model) reload(msg ReloadMsg) {
	if msg.Err != nil {
		m.err = msg.Err
		return
	}
	prev := *m
	m.build = msg.Build
	if msg.Name != "" {
		m.name = msg.Name
	}
	if msg.Dt > 0 {
		m.dt = msg.Dt
		m.stepsPerTick = max(1, int(1/(msg.Dt*framesPerSecond)))
	}
	if err := m.reset(); err != nil {
		*m = prev
		m.err = err
	}
}

// advance steps the world n times and stops on the first failure.
func (m *Model) advance(n int) {
	for range n {
		if err := m.w.Step(context.Background(), m.dt); err != nil {
			m.err = err
			m.running = false
			break
		}
	}
	m.record()
}

func (m *Model) record() {
	snap := m.w.Snapshot()
	m.energy = appendCapped(m.energy, snap.TotalEnergy())
	m.contacts = appendCapped(m.contacts, float64(snap.Contacts))
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

// sceneCenter averages the centers of mass of the moving bodies, or of all
// bodies when nothing moves.
func sceneCenter(w *world.World) mgl64.Vec3 {
	var sum mgl64.Vec3
	n := 0
	snap := w.Snapshot()
	for i, r := range w.Roots() {
		if w.IsStatic(r) {
			continue
		}
		sum = sum.Add(snap.Bodies[i].Position)
		n++
	}
	if n == 0 {
		for _, b := range snap.Bodies {
			sum = sum.Add(b.Position)
			n++
		}
	}
	if n == 0 {
		return mgl64.Vec3{}
	}
	return sum.Mul(1 / float64(n))
}

func (m *Model) draw() {
	DrawWorld(m.canvas, m.wire, m.w, m.camera)
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return m.st.warn.Render("FAILED: " + m.err.Error())
	case m.running:
		return "RUNNING"
	default:
		return "PAUSED"
	}
}

func (m Model) View() string {
	m.draw()
	snap := m.w.Snapshot()

	var s strings.Builder
	s.WriteString(m.st.header.Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(m.status() + "\n\n")

	row := func(label, value string) {
		s.WriteString(m.st.label.Render(label) + m.st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", snap.Time))
	row("Step", fmt.Sprintf("%d", snap.Step))
	row("Bodies", fmt.Sprintf("%d", len(snap.Bodies)))
	row("Kinetic", fmt.Sprintf("%.3f", snap.KineticEnergy))
	row("Potential", fmt.Sprintf("%.3f", snap.PotentialEnergy))
	row("Total", fmt.Sprintf("%.3f", snap.TotalEnergy()))
	row("Contacts", fmt.Sprintf("%d", snap.Contacts))
	row("Penetration", fmt.Sprintf("%.4f", snap.MaxPenetration))

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(m.st.graph.Render(chart) + "\n")
	}
	if len(m.contacts) > 1 {
		s.WriteString(m.st.label.Render("Contact hist") + Sparkline(m.contacts, 20) + "\n")
	}
	s.WriteString(m.st.help.Render("SP:Pause .:Step R:Reset Q:Quit\nhjkl:Orbit +/-:Zoom T:Theme ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top,
		m.st.canvas.Render(m.canvas.String()),
		m.st.stats.Render(s.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  .        - Single step when paused  ║
║  R        - Rebuild the scene        ║
║  Q        - Quit                     ║
║  H/L      - Orbit left/right         ║
║  K/J      - Tilt up/down             ║
║  +/-      - Zoom                     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n" + mainView
	}
	return mainView
}

// Run shows m full screen until the user quits. Messages arriving on
// reloads, which may be nil, replace the scene.
func Run(m Model, reloads <-chan ReloadMsg) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	done := make(chan struct{})
	defer close(done)
	if reloads != nil {
		go func() {
			for {
				select {
				case msg, ok := <-reloads:
					if !ok {
						return
					}
					p.Send(msg)
				case <-done:
					return
				}
			}
		}()
	}
	_, err := p.Run()
	return err
}
