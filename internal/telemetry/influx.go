package telemetry

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/san-kum/quadsim/internal/dynamo"
)

const Measurement = "quadsim_state"

// PointWriter is the subset of the InfluxDB write API used by the sink.
type PointWriter interface {
	WritePoint(p *influxdb2_write.Point)
	Flush()
}

// Point converts a snapshot to an InfluxDB point. Simulated time is laid out
// from epoch.
func Point(run string, epoch time.Time, s dynamo.Snapshot) *influxdb2_write.Point {
	ts := epoch.Add(time.Duration(s.Time * float64(time.Second)))
	return influxdb2.NewPointWithMeasurement(Measurement).
		AddTag("run", run).
		AddField("x", s.Position.X()).
		AddField("altitude", s.Position.Y()).
		AddField("z", s.Position.Z()).
		AddField("vx", s.Velocity.X()).
		AddField("vy", s.Velocity.Y()).
		AddField("vz", s.Velocity.Z()).
		AddField("roll", s.Roll()).
		AddField("yaw", s.Yaw()).
		AddField("pitch", s.Pitch()).
		AddField("thrust", s.Thrust.Total()).
		AddField("mass", s.Mass).
		AddField("energy", s.Energy).
		AddField("grounded", s.Contact.Grounded).
		SetTime(ts)
}

// InfluxSink forwards every redraw to a PointWriter.
type InfluxSink struct {
	w     PointWriter
	run   string
	epoch time.Time
	log   zerolog.Logger
	count int

	written metric.Int64Counter
	runAttr metric.MeasurementOption
}

func NewInfluxSink(w PointWriter, run string, epoch time.Time, log zerolog.Logger) *InfluxSink {
	written, err := meter().Int64Counter(
		"telemetry.points.written",
		metric.WithDescription("Snapshots forwarded to the point writer"),
	)
	if err != nil {
		log.Warn().Err(err).Msg("telemetry counter unavailable")
		written = noop.Int64Counter{}
	}
	return &InfluxSink{
		w:       w,
		run:     run,
		epoch:   epoch,
		log:     log,
		written: written,
		runAttr: metric.WithAttributes(attribute.String("run", run)),
	}
}

func (s *InfluxSink) Redraw(snap dynamo.Snapshot) {
	s.w.WritePoint(Point(s.run, s.epoch, snap))
	s.count++
	s.written.Add(context.Background(), 1, s.runAttr)
}

func (s *InfluxSink) Written() int { return s.count }

func (s *InfluxSink) Close() {
	s.w.Flush()
	s.log.Debug().Str("run", s.run).Int("points", s.count).Msg("telemetry flushed")
}

// Client wraps an InfluxDB connection and its write API.
type Client struct {
	client influxdb2.Client
	api    PointWriter
}

// Dial connects to an InfluxDB server and checks that it answers.
func Dial(ctx context.Context, url, token, org, bucket string, log zerolog.Logger) (*Client, error) {
	client := influxdb2.NewClientWithOptions(url, token,
		influxdb2.DefaultOptions().
			SetBatchSize(500).
			SetFlushInterval(1000),
	)

	running, err := client.Ping(ctx)
	if err != nil || !running {
		client.Close()
		if err == nil {
			err = fmt.Errorf("server not ready")
		}
		return nil, fmt.Errorf("influx %s: %w", url, err)
	}

	api := client.WriteAPI(org, bucket)
	go func() {
		for writeErr := range api.Errors() {
			log.Error().Err(writeErr).Str("bucket", bucket).Msg("error sending telemetry to InfluxDB")
		}
	}()

	return &Client{client: client, api: api}, nil
}

func (c *Client) Writer() PointWriter { return c.api }

func (c *Client) Close() {
	c.api.Flush()
	c.client.Close()
}
