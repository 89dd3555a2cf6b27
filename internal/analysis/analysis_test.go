package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/quadsim/internal/dynamo"
)

func TestDominantFrequency(t *testing.T) {
	dt := 0.05
	data := make([]float64, 100)
	for i := range data {
		data[i] = 3 + 0.5*math.Sin(2*math.Pi*2*float64(i)*dt)
	}

	f, mag, err := DominantFrequency(data, dt)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(f-2) > 1e-9 {
		t.Errorf("expected 2 Hz, got %f", f)
	}
	if mag <= 0 {
		t.Errorf("expected positive magnitude, got %f", mag)
	}
}

func TestDominantFrequencyConstant(t *testing.T) {
	data := []float64{4, 4, 4, 4, 4, 4, 4, 4}
	f, _, err := DominantFrequency(data, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	if f != 0 {
		t.Errorf("expected 0 Hz for a constant signal, got %f", f)
	}
}

func TestDominantFrequencyErrors(t *testing.T) {
	if _, _, err := DominantFrequency([]float64{1, 2}, 0.1); err != ErrTooShort {
		t.Errorf("expected ErrTooShort, got %v", err)
	}
	if _, _, err := DominantFrequency([]float64{1, 2, 3, 4}, 0); err == nil {
		t.Error("expected error for zero spacing")
	}
}

func TestPowerSpectrumLength(t *testing.T) {
	ps := PowerSpectrum(make([]float64, 10))
	if len(ps) != 6 {
		t.Errorf("expected 6 bins, got %d", len(ps))
	}
	if PowerSpectrum(nil) != nil {
		t.Error("expected nil spectrum for no data")
	}
}

func TestRMS(t *testing.T) {
	if got := RMS([]float64{1, -1, 1, -1}); math.Abs(got-1) > 1e-12 {
		t.Errorf("expected 1, got %f", got)
	}
	if RMS(nil) != 0 {
		t.Error("expected 0 for empty input")
	}
}

func samplesAt(ys ...float64) []dynamo.Snapshot {
	out := make([]dynamo.Snapshot, len(ys))
	for i, y := range ys {
		out[i] = dynamo.Snapshot{
			Time:     float64(i) * 0.1,
			Position: mgl64.Vec3{0, y, 0},
			Velocity: mgl64.Vec3{0, y - 1, 0},
		}
	}
	return out
}

func TestCrossings(t *testing.T) {
	got, err := Crossings(samplesAt(0, 2, 0, 1, 3), "altitude", 1)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0.05, 0.3}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("crossing %d: expected %f, got %f", i, want[i], got[i])
		}
	}

	if _, err := Crossings(samplesAt(0, 1), "bogus", 1); err == nil {
		t.Error("expected error for unknown channel")
	}
}

func TestPhasePortrait(t *testing.T) {
	p, err := NewPhasePortrait(samplesAt(0, 1, 2, 1, 0), "y", "vy")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Points) != 5 {
		t.Fatalf("expected 5 points, got %d", len(p.Points))
	}
	if p.Points[2] != (Point{X: 2, Y: 1}) {
		t.Errorf("unexpected point %+v", p.Points[2])
	}

	art := p.ASCII(20, 8)
	lines := strings.Split(strings.TrimSuffix(art, "\n"), "\n")
	if len(lines) != 8 {
		t.Errorf("expected 8 rows, got %d", len(lines))
	}
	if !strings.ContainsRune(art, '•') {
		t.Error("expected plotted points")
	}

	if _, err := NewPhasePortrait(samplesAt(0), "y", "nope"); err == nil {
		t.Error("expected error for unknown channel")
	}
}
