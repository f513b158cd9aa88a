package experiment

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/heartswarm/internal/dynamo"
	"github.com/san-kum/heartswarm/internal/integrators"
	"github.com/san-kum/heartswarm/internal/metrics"
	"github.com/san-kum/heartswarm/internal/physics"
	"github.com/san-kum/heartswarm/internal/sim"
)

// DefaultStepper is the stepper used when none is named.
const DefaultStepper = "semi-implicit"

type Registry struct {
	steppers map[string]func() physics.Stepper
}

func NewRegistry() *Registry {
	r := &Registry{
		steppers: make(map[string]func() physics.Stepper),
	}

	r.steppers["semi-implicit"] = func() physics.Stepper { return integrators.NewSemiImplicit() }
	r.steppers["explicit"] = func() physics.Stepper { return integrators.NewExplicit() }
	r.steppers["rk4"] = func() physics.Stepper { return integrators.NewRK4() }
	r.steppers["verlet"] = func() physics.Stepper { return integrators.NewVerlet() }
	r.steppers["harmonica"] = func() physics.Stepper { return integrators.NewHarmonica() }

	return r
}

// GetStepper returns a fresh stepper. An empty name selects DefaultStepper.
func (r *Registry) GetStepper(name string) (physics.Stepper, error) {
	if name == "" {
		name = DefaultStepper
	}
	fn, ok := r.steppers[name]
	if !ok {
		return nil, fmt.Errorf("stepper %q: %w", name, dynamo.ErrUnknownName)
	}
	return fn(), nil
}

func (r *Registry) ListSteppers() []string {
	names := make([]string, 0, len(r.steppers))
	for name := range r.steppers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns the metric set recorded for every run on a canvas of
// the given size.
func (r *Registry) DefaultMetrics(p sim.Params) []dynamo.Metric {
	origin := dynamo.V(p.Width/2, p.Height/2)
	bound := math.Hypot(p.Width, p.Height)
	return []dynamo.Metric{
		metrics.NewConvergence(),
		metrics.NewEnergy(),
		metrics.NewPeakEnergy(60),
		metrics.NewStability(origin, bound),
		metrics.NewSwapRate(),
	}
}
