package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/storage"
)

type Sample struct {
	Time     float64    `json:"t"`
	Position [3]float64 `json:"position"`
	Velocity [3]float64 `json:"velocity"`
	Rate     [3]float64 `json:"orientation_rate"`
	Thrust   [4]float64 `json:"thrust"`
	Mass     float64    `json:"mass"`
	Energy   float64    `json:"energy"`
	Grounded bool       `json:"grounded"`
}

type ExportData struct {
	ID         string             `json:"id,omitempty"`
	Name       string             `json:"name"`
	Controller string             `json:"controller"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Steps      int                `json:"steps"`
	Samples    []Sample           `json:"samples"`
	Metrics    map[string]float64 `json:"metrics"`
}

func NewSample(s dynamo.Snapshot) Sample {
	return Sample{
		Time:     s.Time,
		Position: s.Position,
		Velocity: s.Velocity,
		Rate:     s.OrientationRate,
		Thrust:   s.Thrust,
		Mass:     s.Mass,
		Energy:   s.Energy,
		Grounded: s.Contact.Grounded,
	}
}

// FromRun builds export data from a stored run and its telemetry.
func FromRun(meta *storage.RunMetadata, samples []dynamo.Snapshot) ExportData {
	data := ExportData{
		ID:         meta.ID,
		Name:       meta.Name,
		Controller: meta.Controller,
		Seed:       meta.Seed,
		Dt:         meta.Dt,
		Duration:   meta.Duration,
		Steps:      meta.Steps,
		Samples:    make([]Sample, len(samples)),
		Metrics:    meta.Metrics,
	}
	for i, s := range samples {
		data.Samples[i] = NewSample(s)
	}
	return data
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}
