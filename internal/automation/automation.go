package automation

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/san-kum/heartswarm/internal/config"
	"github.com/san-kum/heartswarm/internal/dynamo"
	"github.com/san-kum/heartswarm/internal/experiment"
	"github.com/san-kum/heartswarm/internal/sim"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted sequence of headless runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`

	dir string
}

// ScenarioStep is a single run in a scenario. Pointer paths are resolved
// relative to the scenario file.
type ScenarioStep struct {
	Preset      string             `yaml:"preset"`
	Integrator  string             `yaml:"integrator"`
	Frames      int                `yaml:"frames"`
	Seed        int64              `yaml:"seed"`
	Params      map[string]float64 `yaml:"params"`
	PointerPath string             `yaml:"pointer_path"`
	Pointer     *Path              `yaml:"pointer"`
	SaveAs      string             `yaml:"save_as"`
}

// StepResult pairs a finished step with the config it ran with.
type StepResult struct {
	Step   ScenarioStep
	Config *config.Config
	Result *dynamo.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	scenario.dir = filepath.Dir(path)

	return &scenario, nil
}

func (s *Scenario) stepConfig(step ScenarioStep) (*config.Config, error) {
	name := step.Preset
	if name == "" {
		name = "classic"
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("preset %q: %w", name, dynamo.ErrUnknownName)
	}
	if step.Integrator != "" {
		cfg.Run.Integrator = step.Integrator
	}
	if step.Frames > 0 {
		cfg.Run.Frames = step.Frames
	}
	if step.Seed != 0 {
		cfg.Run.Seed = step.Seed
	}
	if step.PointerPath != "" {
		cfg.PointerPath = step.PointerPath
		if !filepath.IsAbs(cfg.PointerPath) && s.dir != "" {
			cfg.PointerPath = filepath.Join(s.dir, cfg.PointerPath)
		}
	}
	return cfg, cfg.Validate()
}

func (s *Scenario) stepPointer(step ScenarioStep, cfg *config.Config) (*Path, error) {
	if step.Pointer != nil {
		if err := step.Pointer.Prepare(); err != nil {
			return nil, err
		}
		return step.Pointer, nil
	}
	if cfg.PointerPath == "" {
		return nil, nil
	}
	return LoadPath(cfg.PointerPath)
}

// BuildSwarm constructs the swarm described by cfg with its scripted pointer
// attached, if any.
func BuildSwarm(cfg *config.Config, path *Path) (*sim.Swarm, error) {
	params, err := cfg.SwarmParams()
	if err != nil {
		return nil, err
	}
	s := sim.NewSwarm(params, nil)
	if path != nil {
		s.SetPointer(NewPlayer(path, s))
	}
	return s, nil
}

// RunScenario executes all steps in a scenario
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		log.Printf("scenario %s: step %d/%d preset=%s", scenario.Name, i+1, len(scenario.Steps), step.Preset)

		cfg, err := scenario.stepConfig(step)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		path, err := scenario.stepPointer(step, cfg)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		swarm, err := BuildSwarm(cfg, path)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		stepper, err := registry.GetStepper(cfg.Run.Integrator)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp := experiment.New(experiment.Config{
			Stepper: cfg.Run.Integrator,
			Frames:  cfg.Run.Frames,
			Seed:    cfg.Run.Seed,
			Params:  step.Params,
		})
		if err := exp.Setup(swarm, stepper, registry.DefaultMetrics(swarm.Settings())); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Step: step, Config: cfg, Result: result})
	}

	return results, nil
}

// ParameterSweep runs the same swarm across a range of one parameter
type ParameterSweep struct {
	Preset     string
	Integrator string
	ParamName  string
	ParamMin   float64
	ParamMax   float64
	NumSteps   int
	Frames     int
	Seed       int64
}

// SweepResult holds the headline metrics of one sweep point
type SweepResult struct {
	ParamValue  float64
	Convergence float64
	PeakEnergy  float64
	Stability   float64
	FramesRun   int
}

// RunSweep executes a parameter sweep. Each point starts from the same seed.
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d: %w", sweep.NumSteps, dynamo.ErrParameterBounds)
	}

	base := &Scenario{}
	cfg, err := base.stepConfig(ScenarioStep{
		Preset:     sweep.Preset,
		Integrator: sweep.Integrator,
		Frames:     sweep.Frames,
		Seed:       sweep.Seed,
	})
	if err != nil {
		return nil, err
	}
	params, err := cfg.SwarmParams()
	if err != nil {
		return nil, err
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		stepper, err := registry.GetStepper(cfg.Run.Integrator)
		if err != nil {
			return nil, err
		}

		exp := experiment.New(experiment.Config{
			Stepper: cfg.Run.Integrator,
			Frames:  cfg.Run.Frames,
			Seed:    cfg.Run.Seed,
			Params:  map[string]float64{sweep.ParamName: paramVal},
		})
		if err := exp.Setup(sim.NewSwarm(params, nil), stepper, registry.DefaultMetrics(params)); err != nil {
			return nil, err
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		results = append(results, SweepResult{
			ParamValue:  paramVal,
			Convergence: result.Metrics["convergence"],
			PeakEnergy:  result.Metrics["peak_energy"],
			Stability:   result.Metrics["stability"],
			FramesRun:   result.FramesRun,
		})

		log.Printf("sweep %d/%d: %s=%.4f", i+1, sweep.NumSteps, sweep.ParamName, paramVal)
	}

	return results, nil
}
