package physics

import (
	"fmt"

	"github.com/san-kum/heartswarm/internal/dynamo"
)

const (
	DefaultElasticity = 0.1
	DefaultDamping    = 0.1
	DefaultColor      = "rgba(255, 0, 0, .6)"
	DefaultSize       = 3.0
)

// SpringConfig holds the construction parameters of a single spring point.
// The point starts at rest on its target.
type SpringConfig struct {
	Target     dynamo.Vec2
	Elasticity float64
	Damping    float64
	Color      string
	Size       float64
}

func DefaultSpringConfig() SpringConfig {
	return SpringConfig{
		Elasticity: DefaultElasticity,
		Damping:    DefaultDamping,
		Color:      DefaultColor,
		Size:       DefaultSize,
	}
}

// SpringPoint elastically follows Target using a semi-implicit Euler step:
// position is advanced with the old velocity, then velocity is updated from
// the spring force at the new position. Elasticity and Damping are per-tick
// multipliers. Values of roughly 2 or more diverge; nothing clamps them.
type SpringPoint struct {
	Position   dynamo.Vec2
	Velocity   dynamo.Vec2
	Target     dynamo.Vec2
	Elasticity float64
	Damping    float64
	Size       float64

	color string
}

func NewSpringPoint(cfg SpringConfig) *SpringPoint {
	return &SpringPoint{
		Position:   cfg.Target,
		Target:     cfg.Target,
		Elasticity: cfg.Elasticity,
		Damping:    cfg.Damping,
		Size:       cfg.Size,
		color:      cfg.Color,
	}
}

func (p *SpringPoint) UpdatePosition() {
	p.Position = p.Position.Add(p.Velocity)
}

func (p *SpringPoint) UpdateVelocity() {
	damping := p.Velocity.Scale(p.Damping)
	force := p.Target.Sub(p.Position).Scale(p.Elasticity).Sub(damping)
	p.Velocity = p.Velocity.Add(force)
}

// Update advances one tick. Position moves before velocity; swapping the
// order changes the overshoot behaviour.
func (p *SpringPoint) Update() {
	p.UpdatePosition()
	p.UpdateVelocity()
}

// Energy is kinetic plus spring potential energy, both per unit mass.
func (p *SpringPoint) Energy() float64 {
	v := p.Velocity.Len()
	d := p.Target.Dist(p.Position)
	return 0.5*v*v + 0.5*p.Elasticity*d*d
}

func (p *SpringPoint) Pos() dynamo.Vec2 { return p.Position }
func (p *SpringPoint) Color() string    { return p.color }
func (p *SpringPoint) Radius() float64  { return p.Size }

// Params implements dynamo.Configurable
func (p *SpringPoint) Params() map[string]float64 {
	return map[string]float64{
		"elasticity": p.Elasticity,
		"damping":    p.Damping,
	}
}

// SetParam implements dynamo.Configurable
func (p *SpringPoint) SetParam(name string, value float64) error {
	switch name {
	case "elasticity":
		p.Elasticity = value
	case "damping":
		p.Damping = value
	default:
		return fmt.Errorf("spring param %q: %w", name, dynamo.ErrUnknownName)
	}
	return nil
}
