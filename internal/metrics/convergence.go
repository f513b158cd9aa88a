package metrics

import "github.com/san-kum/heartswarm/internal/dynamo"

// Convergence is the mean lead-to-target distance over all observed frames.
type Convergence struct {
	name    string
	sum     float64
	samples int
}

func NewConvergence() *Convergence {
	return &Convergence{name: "convergence"}
}

func (c *Convergence) Name() string { return c.name }

func (c *Convergence) Observe(f dynamo.Frame) {
	if len(f.Leads) == 0 {
		return
	}
	total := 0.0
	for i, p := range f.Leads {
		total += p.Dist(f.Targets[i])
	}
	c.sum += total / float64(len(f.Leads))
	c.samples++
}

func (c *Convergence) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *Convergence) Reset() {
	c.sum = 0
	c.samples = 0
}
