package analysis

import (
	"strings"

	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/telemetry"
)

type Point struct{ X, Y float64 }

// PhasePortrait holds one telemetry channel plotted against another.
type PhasePortrait struct {
	XChannel, YChannel string
	Points             []Point
}

// NewPhasePortrait builds a portrait from recorded samples, e.g. altitude
// against vertical speed.
func NewPhasePortrait(samples []dynamo.Snapshot, xChannel, yChannel string) (*PhasePortrait, error) {
	portrait := &PhasePortrait{
		XChannel: xChannel,
		YChannel: yChannel,
		Points:   make([]Point, 0, len(samples)),
	}

	for _, s := range samples {
		x, err := telemetry.Value(s, xChannel)
		if err != nil {
			return nil, err
		}
		y, err := telemetry.Value(s, yChannel)
		if err != nil {
			return nil, err
		}
		portrait.Points = append(portrait.Points, Point{X: x, Y: y})
	}
	return portrait, nil
}

// ASCII renders the portrait on a width×height character grid.
func (p *PhasePortrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := p.Points[0].X, p.Points[0].X
	minY, maxY := p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX, maxX = min(minX, pt.X), max(maxX, pt.X)
		minY, maxY = min(minY, pt.Y), max(maxY, pt.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, pt := range p.Points {
		col := int((pt.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((pt.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// axes, where they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// Crossings returns the interpolated times at which channel rises through level.
func Crossings(samples []dynamo.Snapshot, channel string, level float64) ([]float64, error) {
	var out []float64
	for i := 1; i < len(samples); i++ {
		prev, err := telemetry.Value(samples[i-1], channel)
		if err != nil {
			return nil, err
		}
		curr, err := telemetry.Value(samples[i], channel)
		if err != nil {
			return nil, err
		}
		if prev < level && curr >= level {
			frac := (level - prev) / (curr - prev)
			t0, t1 := samples[i-1].Time, samples[i].Time
			out = append(out, t0+frac*(t1-t0))
		}
	}
	return out, nil
}
