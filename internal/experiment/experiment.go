package experiment

import (
	"context"
	"fmt"
	"sort"

	"github.com/san-kum/heartswarm/internal/dynamo"
	"github.com/san-kum/heartswarm/internal/physics"
	"github.com/san-kum/heartswarm/internal/sim"
)

type Config struct {
	Stepper     string
	Frames      int
	Seed        int64
	SampleEvery int
	Params      map[string]float64
}

type Experiment struct {
	cfg    Config
	runner *sim.Runner
}

func New(cfg Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup applies the stepper and parameter overrides to s and attaches the
// metrics. Parameter names are applied in sorted order.
func (e *Experiment) Setup(s *sim.Swarm, stepper physics.Stepper, metrics []dynamo.Metric) error {
	for _, name := range sortedKeys(e.cfg.Params) {
		if err := s.SetParam(name, e.cfg.Params[name]); err != nil {
			return fmt.Errorf("setup: %w", err)
		}
	}
	s.SetStepper(stepper)

	e.runner = sim.NewRunner(s)
	for _, m := range metrics {
		e.runner.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.runner == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	cfg := dynamo.DefaultConfig()
	cfg.Frames = e.cfg.Frames
	cfg.Seed = e.cfg.Seed
	if e.cfg.SampleEvery > 0 {
		cfg.SampleEvery = e.cfg.SampleEvery
	}

	return e.runner.Run(ctx, cfg)
}

// Runner returns the underlying runner for adding observers
func (e *Experiment) Runner() *sim.Runner {
	return e.runner
}

func (e *Experiment) Config() Config {
	return e.cfg
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
