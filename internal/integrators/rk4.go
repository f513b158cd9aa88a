package integrators

import (
	"github.com/san-kum/heartswarm/internal/dynamo"
	"github.com/san-kum/heartswarm/internal/physics"
)

// accel is the continuous form of the spring force per unit mass.
func accel(p *physics.SpringPoint, x, v dynamo.Vec2) dynamo.Vec2 {
	return p.Target.Sub(x).Scale(p.Elasticity).Sub(v.Scale(p.Damping))
}

// RK4 integrates x' = v, v' = k(target-x) - c·v over one tick with the
// classic fourth-order Runge-Kutta scheme.
type RK4 struct {
	Dt float64
}

func NewRK4() *RK4 {
	return &RK4{Dt: 1}
}

func (r *RK4) Step(p *physics.SpringPoint) {
	dt := r.Dt
	x, v := p.Position, p.Velocity

	k1x, k1v := v, accel(p, x, v)

	x2, v2 := x.Add(k1x.Scale(dt*0.5)), v.Add(k1v.Scale(dt*0.5))
	k2x, k2v := v2, accel(p, x2, v2)

	x3, v3 := x.Add(k2x.Scale(dt*0.5)), v.Add(k2v.Scale(dt*0.5))
	k3x, k3v := v3, accel(p, x3, v3)

	x4, v4 := x.Add(k3x.Scale(dt)), v.Add(k3v.Scale(dt))
	k4x, k4v := v4, accel(p, x4, v4)

	dt6 := dt / 6.0
	p.Position = x.Add(k1x.Add(k2x.Scale(2)).Add(k3x.Scale(2)).Add(k4x).Scale(dt6))
	p.Velocity = v.Add(k1v.Add(k2v.Scale(2)).Add(k3v.Scale(2)).Add(k4v).Scale(dt6))
}
