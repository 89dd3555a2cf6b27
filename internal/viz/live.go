package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/quadsim/internal/control"
	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/physics"
	"github.com/san-kum/quadsim/internal/telemetry"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	trailLength     = 150
)

type View int

const (
	ViewSide View = iota
	ViewTop
	View3D
	viewCount
)

func (v View) String() string {
	switch v {
	case ViewSide:
		return "side"
	case ViewTop:
		return "top"
	case View3D:
		return "3d"
	}
	return "?"
}

type TickMsg time.Time

// Model is the live flight view. The simulator advances one display
// interval (Params.UpdateDt) per tick.
type Model struct {
	name    string
	sim     *dynamo.Simulator
	params  dynamo.Params
	quad    *physics.Quadrotor
	manual  *control.Manual
	history *telemetry.Recorder
	pads    []dynamo.Zone

	canvas   *Canvas
	camera   *Camera
	trail    []mgl64.Vec3
	view     View
	rotor    int
	running  bool
	playHead int
	frames   *gifRecorder
	showHelp bool
	err      error
}

// NewModel attaches a live view to sim. manual may be nil, in which case
// the keyboard cannot change thrust.
func NewModel(name string, sim *dynamo.Simulator, manual *control.Manual, pads []dynamo.Zone) Model {
	p := sim.Params()
	hist := telemetry.NewRecorder(historyCapacity)
	sim.OnRedraw(hist)

	return Model{
		name:     name,
		sim:      sim,
		params:   p,
		quad:     physics.NewQuadrotor(p),
		manual:   manual,
		history:  hist,
		pads:     pads,
		canvas:   NewCanvas(width, height),
		camera:   NewCamera(),
		trail:    make([]mgl64.Vec3, 0, trailLength),
		running:  true,
		playHead: -1,
	}
}

func (m Model) tick() tea.Cmd {
	interval := time.Duration(m.params.UpdateDt * float64(time.Second))
	return tea.Tick(interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "v":
			m.view = (m.view + 1) % viewCount
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		case "g":
			m.toggleRecording()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "w":
			m.throttle(1)
		case "s":
			m.throttle(-1)
		case "1", "2", "3", "4":
			m.rotor = int(key[0] - '1')
		case "up", "k":
			m.nudge(1)
		case "down", "j":
			m.nudge(-1)
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		}
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				m.step()
			} else {
				m.playHead++
				if m.playHead >= len(m.history.Samples) {
					m.playHead = -1
				}
			}
		}
		m.draw()
		if m.frames != nil {
			m.frames.capture(m.canvas)
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) step() {
	if m.err != nil {
		return
	}
	if err := m.sim.Advance(m.params.UpdateDt); err != nil {
		m.err = err
		m.running = false
	}
	m.trail = append(m.trail, m.sim.Snapshot().Position)
	if len(m.trail) > trailLength {
		m.trail = m.trail[1:]
	}
}

func (m *Model) reset() {
	m.history.Reset()
	m.sim.Reset()
	m.trail = m.trail[:0]
	m.playHead = -1
	m.err = nil
}

func (m *Model) throttle(n int) {
	if m.manual != nil {
		m.manual.Throttle(n)
	}
}

func (m *Model) nudge(n int) {
	if m.manual != nil {
		m.manual.Nudge(m.rotor, n)
	}
}

// scrub moves the replay position through the recorded history.
func (m *Model) scrub(dir int) {
	n := len(m.history.Samples)
	if m.playHead == -1 {
		if n == 0 {
			return
		}
		m.playHead = n - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= n {
		m.playHead = -1
	}
}

func (m *Model) toggleRecording() {
	if m.frames == nil {
		m.frames = newGIFRecorder()
		return
	}
	// errors have nowhere to go in the TUI; the file is best effort
	_ = m.frames.save(fmt.Sprintf("%s.gif", m.name))
	m.frames = nil
}

// shown is the snapshot being displayed: live or from the replay position.
func (m Model) shown() dynamo.Snapshot {
	if m.playHead >= 0 && m.playHead < len(m.history.Samples) {
		return m.history.Samples[m.playHead]
	}
	return m.sim.Snapshot()
}

func (m *Model) rotors(s dynamo.Snapshot) [4]mgl64.Vec3 {
	v := &dynamo.Vehicle{Size: m.params.Size, OrientationRate: s.OrientationRate}
	return m.quad.RotorPositions(v)
}

func (m *Model) draw() {
	m.canvas.Clear()
	s := m.shown()
	switch m.view {
	case ViewSide:
		m.drawSide(s)
	case ViewTop:
		m.drawTop(s)
	case View3D:
		m.draw3D(s)
	}
}

// drawSide looks along -z: x to the right, altitude up. The view follows
// the vehicle horizontally and zooms out when it climbs.
func (m *Model) drawSide(s dynamo.Snapshot) {
	cw, ch := m.canvas.Pixels()
	ground := ch - 4
	scale := math.Min(6, float64(ground-8)/math.Max(s.Altitude()+2, 1))
	cx := s.Position.X()

	project := func(p mgl64.Vec3) (int, int) {
		return cw/2 + int((p.X()-cx)*scale), ground - int(p.Y()*scale)
	}

	m.canvas.DrawLine(0, ground, cw-1, ground)
	for _, z := range m.pads {
		x0, _ := project(mgl64.Vec3{z.X - z.HalfWidth, 0, 0})
		x1, _ := project(mgl64.Vec3{z.X + z.HalfWidth, 0, 0})
		m.canvas.DrawRect(x0, ground, x1, ground+2)
	}
	for _, p := range m.trail {
		m.canvas.Set(project(p))
	}
	m.drawBody(s, project)
}

// drawTop looks down: x to the right, z up, fixed on the pads.
func (m *Model) drawTop(s dynamo.Snapshot) {
	cw, ch := m.canvas.Pixels()
	extent := 14.0
	for _, p := range m.trail {
		extent = math.Max(extent, math.Max(math.Abs(p.X()), math.Abs(p.Z()))+2)
	}
	scale := math.Min(float64(cw), float64(ch)) / (2 * extent)

	project := func(p mgl64.Vec3) (int, int) {
		return cw/2 + int(p.X()*scale), ch/2 - int(p.Z()*scale)
	}

	for _, z := range m.pads {
		x0, y0 := project(mgl64.Vec3{z.X - z.HalfWidth, 0, z.Z + z.HalfWidth})
		x1, y1 := project(mgl64.Vec3{z.X + z.HalfWidth, 0, z.Z - z.HalfWidth})
		m.canvas.DrawRect(x0, y0, x1, y1)
	}
	for _, p := range m.trail {
		m.canvas.Set(project(p))
	}
	m.drawBody(s, func(p mgl64.Vec3) (int, int) {
		// arms are tiny at this scale; draw them 3x
		c := s.Position
		return project(c.Add(p.Sub(c).Mul(3)))
	})
}

func (m *Model) draw3D(s dynamo.Snapshot) {
	w := NewWireframe()
	origin := s.Position
	for _, z := range m.pads {
		w.AddSquare(z, mgl64.Vec3{origin.X(), 0, origin.Z()})
	}
	ground := -origin.Y()
	for i := -10.0; i <= 10; i += 5 {
		w.AddEdge(mgl64.Vec3{-10, ground, i}, mgl64.Vec3{10, ground, i})
		w.AddEdge(mgl64.Vec3{i, ground, -10}, mgl64.Vec3{i, ground, 10})
	}
	for _, p := range m.trail {
		w.AddPoint(p.Sub(origin))
	}
	for _, r := range m.rotors(s) {
		w.AddEdge(mgl64.Vec3{}, r)
	}
	Render3D(m.canvas, w, m.camera)
}

// drawBody draws the four arms and a short bar at each rotor hub.
func (m *Model) drawBody(s dynamo.Snapshot, project func(mgl64.Vec3) (int, int)) {
	cx, cy := project(s.Position)
	for _, r := range m.rotors(s) {
		hx, hy := project(s.Position.Add(r))
		m.canvas.DrawLine(cx, cy, hx, hy)
		m.canvas.DrawLine(hx-2, hy-1, hx+2, hy-1)
	}
}

func (m Model) status(st styles) string {
	switch {
	case m.err != nil:
		return st.bad.Render("HALTED: " + m.err.Error())
	case m.playHead != -1:
		last := m.history.Samples[len(m.history.Samples)-1].Time
		label := "REPLAY"
		if !m.running {
			label = "REPLAY PAUSED"
		}
		return st.warn.Render(fmt.Sprintf("%s (%.1fs)", label, m.history.Samples[m.playHead].Time-last))
	case !m.running:
		return st.warn.Render("PAUSED")
	}
	return st.ok.Render("FLYING")
}

func (m Model) View() string {
	st := themed(CurrentTheme)
	s := m.shown()
	m.draw()

	var b strings.Builder
	b.WriteString(st.header.Render(strings.ToUpper(m.name)+"  ["+m.view.String()+"]") + "\n")
	b.WriteString(m.status(st) + "\n")

	if alt, err := m.history.Channel("altitude"); err == nil && len(alt) > 1 {
		chart := asciigraph.Plot(alt, asciigraph.Height(5), asciigraph.Width(34), asciigraph.Caption("altitude"))
		b.WriteString(st.graph.Render(chart) + "\n")
	}

	row := func(label, value string) {
		b.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("time", fmt.Sprintf("%.2fs", s.Time))
	row("position", fmt.Sprintf("%6.2f %6.2f %6.2f", s.Position.X(), s.Position.Y(), s.Position.Z()))
	row("velocity", fmt.Sprintf("%6.2f %6.2f %6.2f", s.Velocity.X(), s.Velocity.Y(), s.Velocity.Z()))
	row("r/y/p", fmt.Sprintf("%6.3f %6.3f %6.3f", s.Roll(), s.Yaw(), s.Pitch()))
	mass := fmt.Sprintf("%.2f", s.Mass)
	if s.Mass != m.params.Mass {
		mass += " " + st.warn.Render("LIFT")
	}
	row("mass", mass)
	row("energy", fmt.Sprintf("%.1f", s.Energy))
	if s.Contact.Grounded {
		row("contact", st.ok.Render("grounded"))
	}

	b.WriteString("\n")
	for i, t := range s.Thrust {
		marker := "  "
		if m.manual != nil && i == m.rotor {
			marker = "> "
		}
		b.WriteString(fmt.Sprintf("%srotor %d %s\n", marker, i+1, ThrustBar(st, t, control.DefaultMaxThrust, 20)))
	}

	rec := ""
	if m.frames != nil {
		rec = st.bad.Render(fmt.Sprintf(" ● REC %d", len(m.frames.frames)))
	}
	b.WriteString(st.help.Render(Separator(30) + "\nW/S:Throttle 1-4:Rotor ↑↓:Trim\nSP:Pause R:Reset V:View Q:Quit\n?:Help" + rec))

	main := lipgloss.JoinHorizontal(lipgloss.Top, st.canvas.Render(m.canvas.String()), st.stats.Render(b.String()))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  W / S    - All rotors up / down     ║
║  1..4     - Select rotor             ║
║  Up / K   - Selected rotor up        ║
║  Down / J - Selected rotor down      ║
║  Space    - Pause / resume           ║
║  R        - Reset to the origin      ║
║  V        - Side, top or 3D view     ║
║  x y z    - Rotate 3D camera         ║
║  + / -    - Zoom 3D camera           ║
║  [ ]      - Rewind / forward         ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`
