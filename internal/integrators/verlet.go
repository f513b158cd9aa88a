package integrators

import "github.com/san-kum/heartswarm/internal/physics"

// Verlet is velocity Verlet over one tick. The damping term of the second
// force evaluation uses the old velocity.
type Verlet struct {
	Dt float64
}

func NewVerlet() *Verlet {
	return &Verlet{Dt: 1}
}

func (vv *Verlet) Step(p *physics.SpringPoint) {
	dt := vv.Dt
	x, v := p.Position, p.Velocity

	a := accel(p, x, v)
	next := x.Add(v.Scale(dt)).Add(a.Scale(0.5 * dt * dt))
	aNew := accel(p, next, v)

	p.Position = next
	p.Velocity = v.Add(a.Add(aNew).Scale(0.5 * dt))
}
