package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/quadsim/internal/dynamo"
)

const (
	metadataFile  = "metadata.json"
	telemetryFile = "telemetry.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// RunInfo describes how a flight was set up.
type RunInfo struct {
	Name       string
	Seed       int64
	Dt         float64
	Controller string
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Steps      int                `json:"steps"`
	Controller string             `json:"controller"`
	FinalX     float64            `json:"final_x"`
	FinalY     float64            `json:"final_y"`
	FinalZ     float64            `json:"final_z"`
	FinalMass  float64            `json:"final_mass"`
	Energy     float64            `json:"energy"`
	Metrics    map[string]float64 `json:"metrics"`
}

var header = []string{
	"time", "x", "y", "z", "vx", "vy", "vz",
	"roll", "yaw", "pitch", "droll", "dyaw", "dpitch",
	"t1", "t2", "t3", "t4", "mass", "energy", "grounded",
}

func (s *Store) Save(info RunInfo, result *dynamo.Result) (*RunMetadata, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", info.Name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, err
	}

	final := result.Final
	meta := &RunMetadata{
		ID:         runID,
		Name:       info.Name,
		Timestamp:  now,
		Seed:       info.Seed,
		Dt:         info.Dt,
		Duration:   final.Time,
		Steps:      result.Steps,
		Controller: info.Controller,
		FinalX:     final.Position.X(),
		FinalY:     final.Position.Y(),
		FinalZ:     final.Position.Z(),
		FinalMass:  final.Mass,
		Energy:     final.Energy,
		Metrics:    result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return nil, err
	}
	if err := writeTelemetry(filepath.Join(runDir, telemetryFile), result.Telemetry); err != nil {
		return nil, err
	}
	return meta, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeTelemetry(path string, samples []dynamo.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}

	for _, snap := range samples {
		row := make([]string, 0, len(header))
		for _, v := range []float64{
			snap.Time,
			snap.Position[0], snap.Position[1], snap.Position[2],
			snap.Velocity[0], snap.Velocity[1], snap.Velocity[2],
			snap.OrientationRate[0], snap.OrientationRate[1], snap.OrientationRate[2],
			snap.OrientationAccelRate[0], snap.OrientationAccelRate[1], snap.OrientationAccelRate[2],
			snap.Thrust[0], snap.Thrust[1], snap.Thrust[2], snap.Thrust[3],
			snap.Mass, snap.Energy,
		} {
			row = append(row, formatFloat(v))
		}
		row = append(row, strconv.FormatBool(snap.Contact.Grounded))

		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns all runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadTelemetry reads the snapshots recorded for a run.
func (s *Store) LoadTelemetry(runID string) ([]dynamo.Snapshot, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, telemetryFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(header)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if len(records) < 2 {
		return []dynamo.Snapshot{}, nil
	}

	samples := make([]dynamo.Snapshot, 0, len(records)-1)
	for i, record := range records[1:] {
		vals := make([]float64, len(header)-1)
		for j := range vals {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("run %s row %d column %s: %w", runID, i+1, header[j], err)
			}
			vals[j] = v
		}
		grounded, err := strconv.ParseBool(record[len(header)-1])
		if err != nil {
			return nil, fmt.Errorf("run %s row %d: %w", runID, i+1, err)
		}

		samples = append(samples, dynamo.Snapshot{
			Time:                 vals[0],
			Position:             mgl64.Vec3{vals[1], vals[2], vals[3]},
			Velocity:             mgl64.Vec3{vals[4], vals[5], vals[6]},
			OrientationRate:      mgl64.Vec3{vals[7], vals[8], vals[9]},
			OrientationAccelRate: mgl64.Vec3{vals[10], vals[11], vals[12]},
			Thrust:               dynamo.Thrust{vals[13], vals[14], vals[15], vals[16]},
			Mass:                 vals[17],
			Energy:               vals[18],
			Contact:              dynamo.ContactEvent{Grounded: grounded},
		})
	}
	return samples, nil
}
