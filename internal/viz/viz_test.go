package viz

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/quadsim/internal/control"
	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/integrators"
	"github.com/san-kum/quadsim/internal/physics"
)

func TestCanvas(t *testing.T) {
	c := NewCanvas(4, 2)
	if w, h := c.Pixels(); w != 8 || h != 8 {
		t.Fatalf("expected 8x8 pixels, got %dx%d", w, h)
	}

	c.Set(3, 5)
	if !c.IsSet(3, 5) || c.IsSet(2, 5) {
		t.Error("unexpected pixel state")
	}
	c.Set(-1, 100)

	c.DrawRect(0, 0, 7, 7)
	if !c.IsSet(7, 0) || !c.IsSet(0, 7) || c.IsSet(4, 4) {
		t.Error("rectangle outline wrong")
	}

	c.Clear()
	if strings.Trim(c.String(), string(rune(brailleBlank))+"\n") != "" {
		t.Error("expected blank canvas after clear")
	}
}

func TestCameraProjectsOrigin(t *testing.T) {
	cam := NewCamera()
	x, y, _, ok := cam.Project([3]float64{}, 160, 96)
	if !ok || x != 80 || y != 48 {
		t.Errorf("expected origin at screen centre, got %d,%d ok=%v", x, y, ok)
	}
}

func newLive(t *testing.T) (Model, *control.Manual, *dynamo.Simulator) {
	t.Helper()
	p := dynamo.DefaultParams()
	manual := control.NewManual(0.5)
	s, err := dynamo.New(p, dynamo.NewVehicle(p, nil),
		physics.NewQuadrotor(p),
		integrators.NewSemiImplicitEuler(),
		physics.NewGround(p),
		physics.NewPowerDraw(p),
		dynamo.WithController(manual),
	)
	if err != nil {
		t.Fatal(err)
	}
	return NewModel("test", s, manual, []dynamo.Zone{p.LiftZone}), manual, s
}

func press(m Model, key string) Model {
	var msg tea.KeyMsg
	switch key {
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestLiveThrottleAndTrim(t *testing.T) {
	m, manual, _ := newLive(t)

	m = press(m, "w")
	m = press(m, "w")
	if manual.Thrust != (dynamo.Thrust{1, 1, 1, 1}) {
		t.Errorf("expected 1 on every rotor, got %v", manual.Thrust)
	}

	m = press(m, "3")
	m = press(m, "up")
	if manual.Thrust[2] != 1.5 || manual.Thrust[0] != 1 {
		t.Errorf("expected rotor 3 trimmed, got %v", manual.Thrust)
	}

	m = press(m, "s")
	m = press(m, "s")
	m = press(m, "s")
	if manual.Thrust[0] != 0 {
		t.Errorf("thrust must not go below zero, got %v", manual.Thrust)
	}
}

func TestLiveTickAdvancesOneInterval(t *testing.T) {
	m, manual, s := newLive(t)
	manual.Set(dynamo.Thrust{4, 4, 4, 4})

	next, cmd := m.Update(TickMsg(time.Now()))
	m = next.(Model)
	if cmd == nil {
		t.Error("expected the next tick to be scheduled")
	}
	if d := s.Time() - 0.1; d > 1e-9 || d < -1e-9 {
		t.Errorf("expected 0.1s of simulated time, got %f", s.Time())
	}
	if s.Altitude() <= 0 {
		t.Errorf("expected climb, got altitude %f", s.Altitude())
	}
	if len(m.history.Samples) != 1 {
		t.Errorf("expected 1 recorded sample, got %d", len(m.history.Samples))
	}

	m = press(m, " ")
	m.Update(TickMsg(time.Now()))
	if d := s.Time() - 0.1; d > 1e-9 || d < -1e-9 {
		t.Errorf("paused view must not advance, got %f", s.Time())
	}

	m = press(m, "r")
	if s.Time() != 0 || len(m.history.Samples) != 1 {
		t.Errorf("expected reset clock and one reset sample, got t=%f n=%d", s.Time(), len(m.history.Samples))
	}
}

func TestLiveViews(t *testing.T) {
	m, _, _ := newLive(t)
	for i := 0; i < int(viewCount); i++ {
		out := m.View()
		if !strings.Contains(out, "TEST") || !strings.Contains(out, "rotor 4") {
			t.Errorf("view %s missing content", m.view)
		}
		m = press(m, "v")
	}
	if m.view != ViewSide {
		t.Errorf("expected views to cycle back to side, got %s", m.view)
	}
}

func TestPickerLaunches(t *testing.T) {
	m, _, _ := newLive(t)
	var launched string
	p := NewPicker([]string{"hover", "drift"}, func(name string) (Model, error) {
		launched = name
		return m, nil
	})

	next, _ := p.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, cmd := next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if launched != "drift" {
		t.Errorf("expected drift, got %q", launched)
	}
	if cmd == nil {
		t.Error("expected the live view to start ticking")
	}
	if !strings.Contains(next.View(), "TEST") {
		t.Error("expected the live view after launch")
	}
}
