package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/qgsim/internal/dynamo"
	"github.com/san-kum/qgsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

var csvHeader = []string{"time", "mass", "radius", "transition", "crossed"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Preset      string             `json:"preset"`
	Timestamp   time.Time          `json:"timestamp"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	Outcome     string             `json:"outcome"`
	CrossedAt   int                `json:"crossed_at"`
	StepsTaken  int                `json:"steps_taken"`
	InitialMass float64            `json:"initial_mass"`
	InitialR    float64            `json:"initial_radius"`
	Params      map[string]float64 `json:"params"`
	Metrics     map[string]float64 `json:"metrics"`
	Errors      []string           `json:"errors,omitempty"`
}

// NewMetadata describes a finished run. The ID is filled in by Save.
func NewMetadata(preset string, p dynamo.Params, duration float64, result *sim.Result) RunMetadata {
	meta := RunMetadata{
		Preset:     preset,
		Timestamp:  time.Now(),
		Dt:         p.Dt,
		Duration:   duration,
		Outcome:    result.Outcome.String(),
		CrossedAt:  result.CrossedAt,
		StepsTaken: result.StepsTaken,
		Params:     finiteOnly(p.GetParams()),
		Metrics:    finiteOnly(result.Metrics),
	}
	if len(result.Samples) > 0 {
		meta.InitialMass = result.Samples[0].Mass
		meta.InitialR = result.Samples[0].Radius
	}
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}
	return meta
}

// finiteOnly drops values JSON cannot carry; degenerate runs keep their
// reason in Errors.
func finiteOnly(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[k] = v
	}
	return out
}

func newRunID(preset string, now time.Time) string {
	if preset == "" {
		preset = "run"
	}
	return fmt.Sprintf("%s_%d_%s", preset, now.Unix(), uuid.NewString()[:8])
}

func (s *Store) Save(meta RunMetadata, samples []dynamo.Sample) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.ID = newRunID(meta.Preset, meta.Timestamp)
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeSamples(filepath.Join(runDir, statesFile), samples); err != nil {
		return "", err
	}

	return meta.ID, nil
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

func writeSamples(path string, samples []dynamo.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteCSV(f, samples); err != nil {
		return err
	}
	return f.Sync()
}

// WriteCSV writes samples with full float precision.
func WriteCSV(w io.Writer, samples []dynamo.Sample) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, smp := range samples {
		row := []string{
			strconv.FormatFloat(smp.Time, 'g', -1, 64),
			strconv.FormatFloat(smp.Mass, 'g', -1, 64),
			strconv.FormatFloat(smp.Radius, 'g', -1, 64),
			strconv.FormatFloat(smp.Transition, 'g', -1, 64),
			strconv.FormatBool(smp.Crossed),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

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
		return runs[i].Timestamp.Before(runs[j].Timestamp)
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
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadSamples(runID string) ([]dynamo.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	return ReadCSV(file)
}

// ReadCSV parses the states file. Rows that fail to parse are skipped.
func ReadCSV(r io.Reader) ([]dynamo.Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []dynamo.Sample{}, nil
	}

	samples := make([]dynamo.Sample, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) < 4 {
			continue
		}

		vals := make([]float64, 4)
		ok := true
		for j := range vals {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				ok = false
				break
			}
			vals[j] = v
		}
		if !ok {
			continue
		}

		smp := dynamo.Sample{
			Index:      i,
			Time:       vals[0],
			Mass:       vals[1],
			Radius:     vals[2],
			Transition: vals[3],
		}
		if len(record) > 4 {
			smp.Crossed, _ = strconv.ParseBool(record[4])
		}
		samples = append(samples, smp)
	}

	return samples, nil
}
