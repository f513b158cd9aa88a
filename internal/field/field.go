// Package field maps (angle, time) to target positions on a breathing heart
// curve whose center is pulled towards the pointer.
package field

import (
	"math"

	"github.com/san-kum/heartswarm/internal/dynamo"
)

// DefaultPull is how far the curve center moves towards the pointer.
const DefaultPull = 0.5

type Field struct {
	Origin dynamo.Vec2
	Pull   float64
	Trig   dynamo.Trig
}

// New returns a field centered on origin with exact trig.
func New(origin dynamo.Vec2) *Field {
	return &Field{Origin: origin, Pull: DefaultPull, Trig: dynamo.MathTrig{}}
}

func (f *Field) trig() dynamo.Trig {
	if f.Trig == nil {
		return dynamo.MathTrig{}
	}
	return f.Trig
}

// Heart is the unscaled curve: x = 16 sin³a, y = 13cos a − 5cos 2a − 2cos 3a − cos 4a.
func (f *Field) Heart(a float64) dynamo.Vec2 {
	tr := f.trig()
	s := tr.Sin(a)
	x := 16 * s * s * s
	y := 13*tr.Cos(a) - 5*tr.Cos(2*a) - 2*tr.Cos(3*a) - tr.Cos(4*a)
	return dynamo.V(x, y)
}

// Wobble is the slow angular offset added at time t.
func (f *Field) Wobble(t int) float64 {
	return f.trig().Sin(float64(t) / 100)
}

// Scale is the breathing size factor, always within [8, 16].
func (f *Field) Scale(t int) float64 {
	return (f.trig().Sin(float64(t)/10) + 3) * 4
}

// Center returns origin + (pointer-origin)·Pull, or origin when the pointer
// is unset.
func (f *Field) Center(pointer dynamo.Vec2, ok bool) dynamo.Vec2 {
	if !ok {
		return f.Origin
	}
	return f.Origin.Add(pointer.Sub(f.Origin).Scale(f.Pull))
}

// Curve returns the target position for angle at time t with the pointer at
// pointer. It is pure given its arguments and the field's configuration.
func (f *Field) Curve(angle float64, t int, pointer dynamo.Vec2, ok bool) dynamo.Vec2 {
	h := f.Heart(angle + f.Wobble(t))
	scale := f.Scale(t)
	return dynamo.V(h.X*scale, -h.Y*scale).Add(f.Center(pointer, ok))
}

// SlotAngle spreads n slots over one full turn. A single slot sits at 0.
func SlotAngle(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1) * 2 * math.Pi
}
