package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/heartswarm/internal/dynamo"
	"github.com/san-kum/heartswarm/internal/experiment"
)

const scenarioYAML = `name: tour
description: two short runs
steps:
  - preset: calm
    frames: 50
    save_as: calm
  - preset: classic
    integrator: harmonica
    frames: 40
    seed: 9
    params:
      elasticity: 0.2
    pointer_path: circle.yaml
`

const circleYAML = `keyframes:
  - {frame: 0, x: 100, y: 100}
  - {frame: 40, x: 500, y: 300}
`

func writeScenario(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "circle.yaml"), []byte(circleYAML), 0644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "tour.yaml")
	if err := os.WriteFile(path, []byte(scenarioYAML), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunScenario(t *testing.T) {
	scenario, err := LoadScenario(writeScenario(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(scenario.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(scenario.Steps))
	}

	results, err := RunScenario(context.Background(), scenario, experiment.NewRegistry())
	if err != nil {
		t.Fatalf("scenario failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	if results[0].Result.FramesRun != 50 || results[0].Step.SaveAs != "calm" {
		t.Errorf("step 1: %+v", results[0].Step)
	}
	second := results[1]
	if second.Config.Run.Integrator != "harmonica" || second.Config.Run.Seed != 9 {
		t.Errorf("step 2 overrides not applied: %+v", second.Config.Run)
	}
	if filepath.Base(second.Config.PointerPath) != "circle.yaml" || !filepath.IsAbs(second.Config.PointerPath) {
		t.Errorf("pointer path not resolved: %s", second.Config.PointerPath)
	}
	last := second.Result.Samples[len(second.Result.Samples)-1]
	origin := dynamo.V(second.Config.Canvas.Width/2, second.Config.Canvas.Height/2)
	if last.Center == origin {
		t.Error("scripted pointer should move the curve center")
	}
}

func TestRunScenarioUnknownPreset(t *testing.T) {
	s := &Scenario{Steps: []ScenarioStep{{Preset: "nope", Frames: 5}}}
	_, err := RunScenario(context.Background(), s, experiment.NewRegistry())
	if !errors.Is(err, dynamo.ErrUnknownName) {
		t.Errorf("expected ErrUnknownName, got %v", err)
	}
}

func TestRunScenarioUnknownStepper(t *testing.T) {
	s := &Scenario{Steps: []ScenarioStep{{Integrator: "leapfrog", Frames: 5}}}
	_, err := RunScenario(context.Background(), s, experiment.NewRegistry())
	if !errors.Is(err, dynamo.ErrUnknownName) {
		t.Errorf("expected ErrUnknownName, got %v", err)
	}
}

func TestRunSweep(t *testing.T) {
	sweep := &ParameterSweep{
		Preset:    "classic",
		ParamName: "damping",
		ParamMin:  0.05,
		ParamMax:  0.45,
		NumSteps:  5,
		Frames:    120,
	}

	results, err := RunSweep(context.Background(), sweep, experiment.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	for i, want := range []float64{0.05, 0.15, 0.25, 0.35, 0.45} {
		if d := results[i].ParamValue - want; d > 1e-12 || d < -1e-12 {
			t.Errorf("point %d value %v, want %v", i, results[i].ParamValue, want)
		}
		if results[i].FramesRun != 120 || results[i].Stability != 1 {
			t.Errorf("point %d: %+v", i, results[i])
		}
	}

	sweep.NumSteps = 0
	if _, err := RunSweep(context.Background(), sweep, experiment.NewRegistry()); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}
