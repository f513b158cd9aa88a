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

	"github.com/san-kum/heartswarm/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	seriesFile   = "frames.csv"
)

var seriesHeader = []string{"frame", "mean_distance", "energy", "swaps", "center_x", "center_y"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunInfo describes how a run was produced.
type RunInfo struct {
	Name       string `json:"name"`
	Integrator string `json:"integrator"`
	Seed       int64  `json:"seed"`
	Frames     int    `json:"frames"`
	Targets    int    `json:"targets"`
	TrailSize  int    `json:"trail_size"`
	TrailMode  string `json:"trail_mode"`
	SwapMode   string `json:"swap_mode"`
}

type RunMetadata struct {
	RunInfo
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	FramesRun int                `json:"frames_run"`
	Metrics   map[string]float64 `json:"metrics"`
	// NonFinite holds metrics that diverged, formatted as "+Inf", "-Inf"
	// or "NaN". JSON has no encoding for them.
	NonFinite map[string]string `json:"non_finite_metrics,omitempty"`
	Errors    []string          `json:"errors,omitempty"`
}

// Metric returns the named metric, diverged or not. Missing metrics are NaN.
func (m *RunMetadata) Metric(name string) float64 {
	if v, ok := m.Metrics[name]; ok {
		return v
	}
	if s, ok := m.NonFinite[name]; ok {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v
		}
	}
	return math.NaN()
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func splitMetrics(metrics map[string]float64) (map[string]float64, map[string]string) {
	ok := make(map[string]float64, len(metrics))
	var bad map[string]string
	for name, v := range metrics {
		if finite(v) {
			ok[name] = v
			continue
		}
		if bad == nil {
			bad = make(map[string]string)
		}
		bad[name] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return ok, bad
}

// Save writes metadata.json and frames.csv into a new run directory and
// returns the run id. A failed save leaves no run directory behind.
func (s *Store) Save(info RunInfo, result *dynamo.Result) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}

	now := time.Now()
	name := info.Name
	if name == "" {
		name = "run"
	}
	runID, runDir, err := s.newRunDir(fmt.Sprintf("%s_%s", name, now.Format("20060102-150405")))
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Timestamp: now,
		RunInfo:   info,
		FramesRun: result.FramesRun,
	}
	meta.Metrics, meta.NonFinite = splitMetrics(result.Metrics)
	for _, e := range result.Errors {
		meta.Errors = append(meta.Errors, e.Error())
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		os.RemoveAll(runDir)
		return "", fmt.Errorf("save %s: %w", runID, err)
	}
	if err := seriesWriter(filepath.Join(runDir, seriesFile), result.Samples); err != nil {
		os.RemoveAll(runDir)
		return "", fmt.Errorf("save %s: %w", runID, err)
	}

	return runID, nil
}

// newRunDir creates a fresh directory for base, suffixing _2, _3, ... on
// collision.
func (s *Store) newRunDir(base string) (string, string, error) {
	id := base
	for i := 2; ; i++ {
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
		id = fmt.Sprintf("%s_%d", base, i)
	}
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

// seriesWriter is swapped in tests to simulate a failing disk.
var seriesWriter = writeSeries

func writeSeries(path string, samples []dynamo.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(seriesHeader); err != nil {
		return err
	}

	for _, smp := range samples {
		row := []string{
			strconv.Itoa(smp.Frame),
			strconv.FormatFloat(smp.MeanDistance, 'f', 6, 64),
			strconv.FormatFloat(smp.Energy, 'f', 6, 64),
			strconv.Itoa(smp.Swaps),
			strconv.FormatFloat(smp.Center.X, 'f', 6, 64),
			strconv.FormatFloat(smp.Center.Y, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns every readable run, newest first.
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

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

// Latest returns the id of the newest run.
func (s *Store) Latest() (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("no runs in %s: %w", s.baseDir, os.ErrNotExist)
	}
	return runs[0].ID, nil
}

// LoadSeries reads the sampled frames of a run. Malformed rows are skipped.
func (s *Store) LoadSeries(runID string) ([]dynamo.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []dynamo.Sample{}, nil
	}

	samples := make([]dynamo.Sample, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) != len(seriesHeader) {
			continue
		}
		smp, err := parseSample(record)
		if err != nil {
			continue
		}
		samples = append(samples, smp)
	}

	return samples, nil
}

func parseSample(record []string) (dynamo.Sample, error) {
	var smp dynamo.Sample
	var err error
	if smp.Frame, err = strconv.Atoi(record[0]); err != nil {
		return smp, err
	}
	if smp.MeanDistance, err = strconv.ParseFloat(record[1], 64); err != nil {
		return smp, err
	}
	if smp.Energy, err = strconv.ParseFloat(record[2], 64); err != nil {
		return smp, err
	}
	if smp.Swaps, err = strconv.Atoi(record[3]); err != nil {
		return smp, err
	}
	if smp.Center.X, err = strconv.ParseFloat(record[4], 64); err != nil {
		return smp, err
	}
	smp.Center.Y, err = strconv.ParseFloat(record[5], 64)
	return smp, err
}

// CopySeries streams the raw frames.csv of a run to w.
func (s *Store) CopySeries(runID string, w io.Writer) error {
	f, err := os.Open(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}
