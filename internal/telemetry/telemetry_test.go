package telemetry

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/quadsim/internal/dynamo"
)

func sample(t, y float64) dynamo.Snapshot {
	return dynamo.Snapshot{
		Time:            t,
		Position:        mgl64.Vec3{1, y, -2},
		OrientationRate: mgl64.Vec3{0.1, 0.2, 0.3},
		Thrust:          dynamo.Thrust{1, 1, 1, 1},
		Mass:            1,
		Energy:          t * 10,
	}
}

func TestRecorderChannels(t *testing.T) {
	r := NewRecorder(0)
	r.Redraw(sample(0, 0))
	r.Redraw(sample(0.1, 0.5))
	r.Redraw(sample(0.2, 1.5))

	alt, err := r.Channel("y")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.5, 1.5}, alt)

	thrust, err := r.Channel("thrust")
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 4, 4}, thrust)

	for _, name := range Channels {
		_, err := r.Channel(name)
		assert.NoError(t, err, name)
	}

	_, err = r.Channel("heading")
	assert.Error(t, err)

	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, 0.2, last.Time)
}

func TestRecorderReplacesSameInstant(t *testing.T) {
	r := NewRecorder(0)
	r.Redraw(sample(0.1, 1))
	r.Redraw(sample(0.1, 2))
	r.Redraw(sample(0.2, 3))

	alt, err := r.Channel("altitude")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, alt)
}

func TestRecorderLimit(t *testing.T) {
	r := NewRecorder(2)
	for i := 0; i < 5; i++ {
		r.Redraw(sample(float64(i), 0))
	}
	require.Len(t, r.Samples, 2)
	assert.Equal(t, 3.0, r.Samples[0].Time)

	r.Reset()
	_, ok := r.Last()
	assert.False(t, ok)
}

type capture struct {
	points  []*influxdb2_write.Point
	flushed int
}

func (c *capture) WritePoint(p *influxdb2_write.Point) { c.points = append(c.points, p) }
func (c *capture) Flush()                              { c.flushed++ }

func TestInfluxSink(t *testing.T) {
	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	w := &capture{}
	sink := NewInfluxSink(w, "run-1", epoch, zerolog.Nop())

	sink.Redraw(sample(0, 0))
	sink.Redraw(sample(1.5, 2.5))
	sink.Close()

	require.Len(t, w.points, 2)
	assert.Equal(t, 2, sink.Written())
	assert.Equal(t, 1, w.flushed)

	p := w.points[1]
	assert.Equal(t, Measurement, p.Name())
	assert.Equal(t, epoch.Add(1500*time.Millisecond), p.Time())

	line := influxdb2_write.PointToLineProtocol(p, time.Nanosecond)
	assert.Contains(t, line, "run=run-1")
	assert.Contains(t, line, "altitude=2.5")
	assert.Contains(t, line, "energy=15")
}

func TestBackupWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.lp.gz")
	b, err := OpenBackup(path)
	require.NoError(t, err)

	sink := NewInfluxSink(b, "offline", time.Unix(0, 0), zerolog.Nop())
	sink.Redraw(sample(0, 1))
	sink.Redraw(sample(0.1, 2))
	sink.Close()
	require.NoError(t, b.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)

	raw, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "\n\n", "one line per point")
	assert.True(t, strings.HasSuffix(string(raw), "\n"))

	lines := strings.Split(strings.TrimSuffix(string(raw), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], Measurement+",run=offline")
	assert.Contains(t, lines[1], "altitude=2")
}
