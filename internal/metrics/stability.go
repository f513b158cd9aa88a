package metrics

import "github.com/san-kum/heartswarm/internal/dynamo"

// Stability is the fraction of frames in which every point is finite and
// within threshold of the canvas origin.
type Stability struct {
	name       string
	origin     dynamo.Vec2
	threshold  float64
	violations int
	samples    int
}

func NewStability(origin dynamo.Vec2, threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		origin:    origin,
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(f dynamo.Frame) {
	s.samples++
	for _, p := range f.Leads {
		if !p.IsValid() || p.Dist(s.origin) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
