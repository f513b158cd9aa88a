package integrators

import "github.com/san-kum/heartswarm/internal/physics"

// SemiImplicit is the swarm's reference stepper: position first, then
// velocity from the force at the new position.
type SemiImplicit struct{}

func NewSemiImplicit() *SemiImplicit {
	return &SemiImplicit{}
}

func (s *SemiImplicit) Step(p *physics.SpringPoint) {
	p.Update()
}

// Explicit updates velocity from the force at the old position, then moves
// the point with the new velocity.
type Explicit struct{}

func NewExplicit() *Explicit {
	return &Explicit{}
}

func (e *Explicit) Step(p *physics.SpringPoint) {
	p.UpdateVelocity()
	p.UpdatePosition()
}
