package analysis

import (
	"math"
	"strings"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/san-kum/heartswarm/internal/physics"
	"github.com/san-kum/heartswarm/internal/sim"
)

func sine(n int, period float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 5 + math.Sin(2*math.Pi*float64(i)/period)
	}
	return out
}

func TestDominantPeriod(t *testing.T) {
	g := NewWithT(t)

	g.Expect(DominantPeriod(sine(512, 64), 1)).To(BeNumerically("~", 64, 1))
	g.Expect(DominantPeriod(sine(256, 32), 2)).To(BeNumerically("~", 64, 2))
	g.Expect(DominantPeriod(sine(628, 20*math.Pi), 1)).To(BeNumerically("~", 20*math.Pi, 1))
}

func TestDominantPeriodDegenerate(t *testing.T) {
	g := NewWithT(t)

	g.Expect(DominantPeriod(nil, 1)).To(BeZero())
	g.Expect(DominantPeriod([]float64{1}, 1)).To(BeZero())
	g.Expect(DominantPeriod([]float64{3, 3, 3, 3, 3, 3}, 1)).To(BeZero())
}

func TestPowerSpectrumLength(t *testing.T) {
	if got := len(PowerSpectrum(sine(100, 10))); got != 50 {
		t.Errorf("expected 50 bins, got %d", got)
	}
}

func TestDerivative(t *testing.T) {
	g := NewWithT(t)
	g.Expect(Derivative([]float64{1, 4, 9, 16})).To(Equal([]float64{3, 5, 7, 7}))
	g.Expect(Derivative(nil)).To(BeEmpty())
}

func TestPhasePortraitASCII(t *testing.T) {
	xs := []float64{-1, 0, 1, math.NaN()}
	ys := []float64{-1, 0, 1, 2}
	p := NewPhasePortrait("x", xs, "y", ys)

	if len(p.Points) != 3 {
		t.Fatalf("NaN point should be dropped, got %d points", len(p.Points))
	}

	out := p.ASCII(20, 10)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(lines))
	}
	if strings.Count(out, "•") != 3 {
		t.Errorf("expected 3 points plotted:\n%s", out)
	}
	if !strings.Contains(out, "│") || !strings.Contains(out, "─") {
		t.Errorf("expected axes:\n%s", out)
	}

	if (&PhasePortrait{}).ASCII(20, 10) != "" {
		t.Error("empty portrait should render nothing")
	}
}

func TestDivergence(t *testing.T) {
	p := sim.DefaultParams()
	p.Targets = 3

	rate := Divergence(p, 400, 1e-6)
	if rate > -0.02 || rate < -0.2 {
		t.Errorf("expected damped reconvergence near ln(sqrt(0.9)), got %v", rate)
	}

	if Divergence(p, 0, 1e-6) != 0 {
		t.Error("zero frames should report 0")
	}
}

func TestDivergenceFaithful(t *testing.T) {
	p := sim.DefaultParams()
	p.Targets = 2
	p.Chain.ZeroIndex = physics.ZeroIndexFaithful

	if rate := Divergence(p, 100, 1e-6); math.IsNaN(rate) || rate >= 0 {
		t.Errorf("degenerate trail points should be ignored, got %v", rate)
	}
}
