package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/uwvsim/internal/scenario"
	"github.com/san-kum/uwvsim/internal/vehicle"
)

const (
	canvasWidth     = 40
	canvasHeight    = 20
	historyCapacity = 600
	nudgeStep       = 0.05
	minTrackSpan    = 10.0
)

type TickMsg time.Time

// Live is a Bubble Tea model that steps a scenario in real time and draws
// the horizontal track with a speed chart.
type Live struct {
	runner   *scenario.Runner
	theme    Theme
	canvas   *Canvas
	xs, ys   []float64
	speed    []float64
	perTick  int
	interval time.Duration
	running  bool
	showHelp bool
	err      error
}

// NewLive wraps a runner. Each tick advances perTick control cycles; the
// tick interval is one sampling period so the view runs in real time.
func NewLive(r *scenario.Runner, theme Theme, perTick int) *Live {
	if perTick < 1 {
		perTick = 1
	}
	m := &Live{
		runner:   r,
		theme:    theme,
		canvas:   NewCanvas(canvasWidth, canvasHeight),
		perTick:  perTick,
		interval: time.Duration(r.Vehicle().SamplingPeriod() * float64(time.Second)),
		running:  true,
	}
	m.reset()
	return m
}

func (m *Live) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m *Live) Init() tea.Cmd { return m.tick() }

func (m *Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "up", "k":
			m.nudge(vehicle.Surge, nudgeStep)
		case "down", "j":
			m.nudge(vehicle.Surge, -nudgeStep)
		case "right", "l":
			m.nudge(vehicle.Yaw, nudgeStep)
		case "left", "h":
			m.nudge(vehicle.Yaw, -nudgeStep)
		case "t":
			m.theme = m.theme.Next()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

// nudge adjusts the manual command of every thruster slot labeled d.
func (m *Live) nudge(d vehicle.DOF, delta float64) {
	man := m.runner.Manual()
	if man == nil {
		return
	}
	for i, l := range m.runner.Scenario().Labels {
		if l == d {
			man.Nudge(i, delta)
		}
	}
}

func (m *Live) step() {
	for i := 0; i < m.perTick; i++ {
		if _, err := m.runner.Step(); err != nil {
			m.err = err
			m.running = false
			return
		}
		m.record()
	}
}

func (m *Live) record() {
	v := m.runner.Vehicle()
	p := v.Position()
	m.xs = append(m.xs, p.X)
	m.ys = append(m.ys, p.Y)
	vel := v.LinearVelocity()
	m.speed = append(m.speed, math.Hypot(vel.X, vel.Y))
	if len(m.xs) > historyCapacity {
		m.xs, m.ys, m.speed = m.xs[1:], m.ys[1:], m.speed[1:]
	}
}

func (m *Live) reset() {
	m.runner.Reset()
	m.xs, m.ys, m.speed = m.xs[:0], m.ys[:0], m.speed[:0]
	m.err = nil
	m.record()
}

func (m *Live) draw() {
	m.canvas.Clear()
	vp := FitViewport(m.xs, m.ys, minTrackSpan)
	m.canvas.DrawTrack(vp, m.xs, m.ys)

	// heading tick at the current position
	n := len(m.xs) - 1
	if n < 0 {
		return
	}
	yaw := m.runner.Vehicle().Euler().Yaw
	arm := (vp.MaxX - vp.MinX) * 0.05
	x0, y0 := vp.Project(m.canvas, m.xs[n], m.ys[n])
	x1, y1 := vp.Project(m.canvas, m.xs[n]+arm*math.Cos(yaw), m.ys[n]+arm*math.Sin(yaw))
	m.canvas.DrawLine(x0, y0, x1, y1)
}

func (m *Live) View() string {
	st := m.theme.styles()
	v := m.runner.Vehicle()
	m.draw()

	status := "RUNNING"
	switch {
	case m.err != nil:
		status = st.fail.Render("DIVERGED: " + m.err.Error())
	case !m.running:
		status = st.warn.Render("PAUSED")
	}

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.runner.Scenario().Name)) + "\n")
	s.WriteString(status + "\n\n")

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	p, vel, e := v.Position(), v.LinearVelocity(), v.Euler()
	row("Time", fmt.Sprintf("%.1fs", v.Time()))
	row("Position", fmt.Sprintf("%7.2f %7.2f %7.2f", p.X, p.Y, p.Z))
	row("Velocity", fmt.Sprintf("%7.3f %7.3f %7.3f", vel.X, vel.Y, vel.Z))
	row("Attitude", fmt.Sprintf("%6.1f° %6.1f° %6.1f°", deg(e.Roll), deg(e.Pitch), deg(e.Yaw)))
	row("Command", formatControl(v.Control()))

	if len(m.speed) > 1 {
		s.WriteString(st.graph.Render(Chart(m.speed, "horizontal speed [m/s]", 30, 5)) + "\n")
	}
	s.WriteString(st.help.Render("SP:Pause R:Reset Q:Quit T:Theme ?:Help\n↑↓:Surge ←→:Yaw"))

	track := st.panel.Render(m.canvas.String())
	main := lipgloss.JoinHorizontal(lipgloss.Top, track, "  ", s.String())
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

const helpText = `Space  pause or resume
R      reset to the initial state
↑ ↓    nudge thrusters labeled surge
← →    nudge thrusters labeled yaw
T      cycle themes
Q      quit`

func deg(rad float64) float64 { return rad * 180 / math.Pi }

func formatControl(u []float64) string {
	parts := make([]string, len(u))
	for i, v := range u {
		parts[i] = fmt.Sprintf("%.2f", v)
	}
	return strings.Join(parts, " ")
}

// RunLive runs the live view until the user quits.
func RunLive(r *scenario.Runner, theme string, perTick int) error {
	_, err := tea.NewProgram(NewLive(r, GetTheme(theme), perTick), tea.WithAltScreen()).Run()
	return err
}
