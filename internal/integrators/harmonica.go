package integrators

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/san-kum/heartswarm/internal/physics"
)

// maxSprings bounds the coefficient cache. A swarm uses one pair per trail
// index plus the lead; live tuning and sweeps keep producing new ones.
const maxSprings = 64

// Harmonica steps each axis with harmonica's closed-form damped spring. The
// per-tick coefficients map to angular frequency ω = √k and damping ratio
// ζ = c/(2√k) with a time step of one tick.
type Harmonica struct {
	springs map[[2]float64]harmonica.Spring
}

func NewHarmonica() *Harmonica {
	return &Harmonica{springs: make(map[[2]float64]harmonica.Spring)}
}

func (h *Harmonica) spring(k, c float64) harmonica.Spring {
	key := [2]float64{k, c}
	cacheable := !math.IsNaN(k) && !math.IsNaN(c)
	if s, ok := h.springs[key]; ok {
		return s
	}
	omega := math.Sqrt(math.Max(k, 0))
	zeta := 0.0
	if omega > 0 {
		zeta = c / (2 * omega)
	}
	s := harmonica.NewSpring(1, omega, zeta)
	if cacheable {
		if len(h.springs) >= maxSprings {
			clear(h.springs)
		}
		h.springs[key] = s
	}
	return s
}

func (h *Harmonica) Step(p *physics.SpringPoint) {
	s := h.spring(p.Elasticity, p.Damping)
	p.Position.X, p.Velocity.X = s.Update(p.Position.X, p.Velocity.X, p.Target.X)
	p.Position.Y, p.Velocity.Y = s.Update(p.Position.Y, p.Velocity.Y, p.Target.Y)
}
