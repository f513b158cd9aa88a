package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/san-kum/heartswarm/internal/dynamo"
	"github.com/san-kum/heartswarm/internal/experiment"
	"github.com/san-kum/heartswarm/internal/sim"
)

func swarmBuilder() BuildFunc {
	registry := experiment.NewRegistry()
	return func(params map[string]float64) (*experiment.Experiment, error) {
		p := sim.DefaultParams()
		p.Targets = 8
		p.SwapProbability = 0

		stepper, err := registry.GetStepper("")
		if err != nil {
			return nil, err
		}
		exp := experiment.New(experiment.Config{Frames: 150, Params: params})
		if err := exp.Setup(sim.NewSwarm(p, nil), stepper, registry.DefaultMetrics(p)); err != nil {
			return nil, err
		}
		return exp, nil
	}
}

func TestGridSearch(t *testing.T) {
	g := NewWithT(t)

	search := NewGridSearch(
		[]string{"elasticity", "damping"},
		[][]float64{{0.02, 0.1, 0.3}, {0.1, 0.4}},
	)
	best, err := search.Search(context.Background(), swarmBuilder(), "convergence")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(best.Points).To(HaveLen(6))
	g.Expect(best.Params).To(HaveKey("elasticity"))

	for _, p := range best.Points {
		g.Expect(best.Value).To(BeNumerically("<=", p.Value))
	}
	g.Expect(best.Points[0].Params).To(Equal(map[string]float64{"elasticity": 0.02, "damping": 0.1}))
	g.Expect(best.Points[1].Params).To(Equal(map[string]float64{"elasticity": 0.02, "damping": 0.4}))
}

func TestGridSearchSkipsFailures(t *testing.T) {
	search := NewGridSearch([]string{"mass"}, [][]float64{{1, 2}})
	best, err := search.Search(context.Background(), swarmBuilder(), "convergence")
	if err != nil {
		t.Fatal(err)
	}
	if best.Params != nil || !math.IsInf(best.Value, 1) {
		t.Errorf("no point should win: %+v", best)
	}
	for _, p := range best.Points {
		if !math.IsNaN(p.Value) {
			t.Errorf("failed point should be NaN, got %v", p.Value)
		}
	}
}

func TestGridSearchErrors(t *testing.T) {
	if _, err := NewGridSearch([]string{"a"}, nil).Search(context.Background(), nil, "x"); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
	if _, err := NewGridSearch([]string{"a"}, [][]float64{{}}).Search(context.Background(), nil, "x"); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewGridSearch([]string{"damping"}, [][]float64{{0.1}}).Search(ctx, swarmBuilder(), "convergence")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestLinspace(t *testing.T) {
	g := NewWithT(t)
	g.Expect(Linspace(0, 1, 5)).To(Equal([]float64{0, 0.25, 0.5, 0.75, 1}))
	g.Expect(Linspace(3, 9, 1)).To(Equal([]float64{3}))
}
