package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/heartswarm/internal/dynamo"
	"github.com/san-kum/heartswarm/internal/experiment"
	"github.com/san-kum/heartswarm/internal/sim"
)

func testResult() *dynamo.Result {
	return &dynamo.Result{
		Samples: []dynamo.Sample{
			{Frame: 1, MeanDistance: 12.5, Energy: 3.25, Swaps: 0, Center: dynamo.V(320, 180)},
			{Frame: 2, MeanDistance: 10, Energy: 2.5, Swaps: 1, Center: dynamo.V(330, 170)},
		},
		FramesRun: 2,
		Metrics: map[string]float64{
			"convergence": 11.25,
		},
		Errors: []error{dynamo.SimError{Frame: 2, Chain: 0, Wrapped: dynamo.ErrInvalidState}},
	}
}

func testInfo() RunInfo {
	return RunInfo{Name: "classic", Integrator: "rk4", Seed: 42, Frames: 2, Targets: 60, TrailSize: 10}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())

	runID, err := st.Save(testInfo(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "classic_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "classic" || meta.Seed != 42 || meta.Integrator != "rk4" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Metrics["convergence"] != 11.25 {
		t.Errorf("expected convergence 11.25, got %f", meta.Metrics["convergence"])
	}
	if len(meta.Errors) != 1 || !strings.Contains(meta.Errors[0], "frame 2") {
		t.Errorf("errors not recorded: %v", meta.Errors)
	}

	samples, err := st.LoadSeries(runID)
	if err != nil {
		t.Fatalf("load series failed: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if samples[1] != testResult().Samples[1] {
		t.Errorf("sample mismatch: %+v", samples[1])
	}
}

func TestStoreUniqueIDs(t *testing.T) {
	st := New(t.TempDir())

	a, err := st.Save(testInfo(), testResult())
	if err != nil {
		t.Fatal(err)
	}
	b, err := st.Save(testInfo(), testResult())
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Errorf("runs saved in the same second share id %q", a)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}

	latest, err := st.Latest()
	if err != nil || (latest != a && latest != b) {
		t.Errorf("latest = %q, %v", latest, err)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "none"))
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v %v", runs, err)
	}
	if _, err := st.Latest(); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist, got %v", err)
	}
}

func TestLoadSeriesSkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	os.MkdirAll(filepath.Join(dir, "hand"), 0755)
	csv := "frame,mean_distance,energy,swaps,center_x,center_y\n1,2,3,0,4,5\nbad,row\nx,2,3,0,4,5\n"
	os.WriteFile(filepath.Join(dir, "hand", "frames.csv"), []byte(csv), 0644)

	samples, err := st.LoadSeries("hand")
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 1 || samples[0].Center != dynamo.V(4, 5) {
		t.Errorf("unexpected samples %+v", samples)
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(testInfo(), testResult())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(runID, &buf); err != nil {
		t.Fatal(err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.Steps != 2 || data.Run.ID != runID || data.Samples[0].Center != dynamo.V(320, 180) {
		t.Errorf("unexpected export %+v", data)
	}

	var csvBuf bytes.Buffer
	if err := st.CopySeries(runID, &csvBuf); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(csvBuf.String(), "frame,mean_distance") {
		t.Errorf("unexpected csv %q", csvBuf.String())
	}
}

func sameFloat(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

func TestSaveNonFiniteMetrics(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	res := testResult()
	res.Metrics["energy"] = math.Inf(1)
	res.Metrics["stability"] = math.NaN()
	res.Samples = append(res.Samples, dynamo.Sample{Frame: 3, MeanDistance: math.Inf(1), Energy: math.NaN()})

	runID, err := st.Save(testInfo(), res)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Metrics["convergence"] != 11.25 || meta.NonFinite["energy"] != "+Inf" || meta.NonFinite["stability"] != "NaN" {
		t.Errorf("metrics not split: %v %v", meta.Metrics, meta.NonFinite)
	}
	if !math.IsInf(meta.Metric("energy"), 1) || !math.IsNaN(meta.Metric("stability")) || !math.IsNaN(meta.Metric("missing")) {
		t.Error("Metric should restore diverged values")
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(runID, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatal(err)
	}
	if data.Steps != 2 || data.Dropped != 1 {
		t.Errorf("expected 2 kept and 1 dropped sample, got %d and %d", data.Steps, data.Dropped)
	}
}

func TestSaveDivergingRun(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	p := sim.DefaultParams()
	p.Chain.Elasticity = 6
	s := sim.NewSwarm(p, nil)
	runner := sim.NewRunner(s)
	for _, m := range experiment.NewRegistry().DefaultMetrics(p) {
		runner.AddMetric(m)
	}
	res, err := runner.Run(context.Background(), dynamo.Config{Frames: 600, Seed: 1, ValidateState: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Errors) == 0 {
		t.Fatal("expected the run to diverge")
	}

	runID, err := st.Save(RunInfo{Name: "stiff", Frames: 600, Targets: p.Targets}, res)
	if err != nil {
		t.Fatalf("diverging run not saved: %v", err)
	}

	runs, err := st.List()
	if err != nil || len(runs) != 1 || runs[0].ID != runID {
		t.Fatalf("expected the run listed, got %v %v", runs, err)
	}
	if len(runs[0].Errors) == 0 || runs[0].FramesRun != res.FramesRun {
		t.Errorf("run errors lost: %+v", runs[0])
	}
	for name, v := range res.Metrics {
		if got := runs[0].Metric(name); !sameFloat(got, v) {
			t.Errorf("metric %s = %v, want %v", name, got, v)
		}
	}
	if err := st.ExportJSON(runID, &bytes.Buffer{}); err != nil {
		t.Errorf("export failed: %v", err)
	}
}

func TestSaveFailureRemovesRunDir(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	diskFull := errors.New("disk full")
	seriesWriter = func(string, []dynamo.Sample) error { return diskFull }
	defer func() { seriesWriter = writeSeries }()

	if _, err := st.Save(testInfo(), testResult()); !errors.Is(err, diskFull) {
		t.Fatalf("expected the write error, got %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("failed save left %d entries behind", len(entries))
	}
}
