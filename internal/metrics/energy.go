package metrics

import (
	"math"

	"github.com/san-kum/heartswarm/internal/dynamo"
)

// Energy is the mean per-point spring energy averaged over frames.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(f dynamo.Frame) {
	if len(f.Points) == 0 {
		return
	}
	e.totalEnergy += f.Energy / float64(len(f.Points))
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// PeakEnergy tracks the largest total swarm energy seen after warmup frames.
type PeakEnergy struct {
	name    string
	warmup  int
	peak    float64
	samples int
}

func NewPeakEnergy(warmup int) *PeakEnergy {
	return &PeakEnergy{
		name:   "peak_energy",
		warmup: warmup,
	}
}

func (e *PeakEnergy) Name() string { return e.name }

func (e *PeakEnergy) Observe(f dynamo.Frame) {
	e.samples++
	if e.samples <= e.warmup {
		return
	}
	e.peak = math.Max(e.peak, f.Energy)
}

func (e *PeakEnergy) Value() float64 {
	return e.peak
}

func (e *PeakEnergy) Reset() {
	e.peak = 0
	e.samples = 0
}
