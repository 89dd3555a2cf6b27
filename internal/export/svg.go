package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/experiment"
	"github.com/san-kum/quadsim/internal/telemetry"
)

// Pad is a square ground marker drawn under the ground track.
type Pad struct {
	Name  string
	Zone  dynamo.Zone
	Color string
}

func MissionPads(m experiment.Mission) []Pad {
	return []Pad{
		{Name: "start", Zone: m.Start, Color: "#3b82f6"},
		{Name: "lift", Zone: m.Lift, Color: "#eab308"},
		{Name: "end", Zone: m.End, Color: "#22c55e"},
	}
}

type bounds struct {
	minX, maxX, minY, maxY float64
}

func (b *bounds) include(x, y float64) {
	b.minX, b.maxX = min(b.minX, x), max(b.maxX, x)
	b.minY, b.maxY = min(b.minY, y), max(b.maxY, y)
}

// pad widens the box by 10% on every side.
func (b *bounds) pad() {
	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	b.minX -= rangeX * 0.1
	b.maxX += rangeX * 0.1
	b.minY -= rangeY * 0.1
	b.maxY += rangeY * 0.1
}

func (b bounds) project(x, y float64, width, height int) (float64, float64) {
	px := (x - b.minX) / (b.maxX - b.minX) * float64(width)
	py := float64(height) - (y-b.minY)/(b.maxY-b.minY)*float64(height)
	return px, py
}

func header(sb *strings.Builder, width, height int) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))
}

func path(sb *strings.Builder, pts [][2]float64, stroke string) {
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke))
	for i, p := range pts {
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", p[0], p[1]))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", p[0], p[1]))
		}
	}
	sb.WriteString("\"/>\n")
}

// GroundTrackSVG draws the horizontal path (x right, z up) with the pads
// underneath. The final position is marked with a circle.
func GroundTrackSVG(samples []dynamo.Snapshot, pads []Pad, width, height int) string {
	if len(samples) == 0 {
		return ""
	}

	b := bounds{
		minX: samples[0].Position.X(), maxX: samples[0].Position.X(),
		minY: samples[0].Position.Z(), maxY: samples[0].Position.Z(),
	}
	for _, s := range samples {
		b.include(s.Position.X(), s.Position.Z())
	}
	for _, p := range pads {
		b.include(p.Zone.X-p.Zone.HalfWidth, p.Zone.Z-p.Zone.HalfWidth)
		b.include(p.Zone.X+p.Zone.HalfWidth, p.Zone.Z+p.Zone.HalfWidth)
	}
	b.pad()

	var sb strings.Builder
	header(&sb, width, height)

	for _, p := range pads {
		x0, y0 := b.project(p.Zone.X-p.Zone.HalfWidth, p.Zone.Z+p.Zone.HalfWidth, width, height)
		x1, y1 := b.project(p.Zone.X+p.Zone.HalfWidth, p.Zone.Z-p.Zone.HalfWidth, width, height)
		sb.WriteString(fmt.Sprintf(`<rect class="pad" id="pad-%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" fill-opacity="0.4"/>
`, p.Name, x0, y0, x1-x0, y1-y0, p.Color))
	}

	pts := make([][2]float64, len(samples))
	for i, s := range samples {
		x, y := b.project(s.Position.X(), s.Position.Z(), width, height)
		pts[i] = [2]float64{x, y}
	}
	if len(pts) > 1 {
		path(&sb, pts, "#00ff00")
	}

	last := pts[len(pts)-1]
	sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="4" fill="#ef4444"/>
`, last[0], last[1]))

	sb.WriteString("</svg>")
	return sb.String()
}

// ProfileSVG plots one telemetry channel against another, e.g. time and
// altitude.
func ProfileSVG(samples []dynamo.Snapshot, xChannel, yChannel string, width, height int, strokeColor string) (string, error) {
	if len(samples) < 2 {
		return "", nil
	}

	raw := make([][2]float64, len(samples))
	for i, s := range samples {
		x, err := telemetry.Value(s, xChannel)
		if err != nil {
			return "", err
		}
		y, err := telemetry.Value(s, yChannel)
		if err != nil {
			return "", err
		}
		raw[i] = [2]float64{x, y}
	}

	b := bounds{minX: raw[0][0], maxX: raw[0][0], minY: raw[0][1], maxY: raw[0][1]}
	for _, p := range raw {
		b.include(p[0], p[1])
	}
	b.pad()

	pts := make([][2]float64, len(raw))
	for i, p := range raw {
		x, y := b.project(p[0], p[1], width, height)
		pts[i] = [2]float64{x, y}
	}

	var sb strings.Builder
	header(&sb, width, height)
	path(&sb, pts, strokeColor)
	sb.WriteString("</svg>")
	return sb.String(), nil
}
