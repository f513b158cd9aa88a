package sim

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/heartswarm/internal/dynamo"
	"github.com/san-kum/heartswarm/internal/field"
	"github.com/san-kum/heartswarm/internal/physics"
)

// Swarm owns the chains, the target slots and the frame counter. The
// pointer is owned by its source and polled once per frame.
type Swarm struct {
	params  Params
	field   *field.Field
	pointer PointerSource
	rng     *rand.Rand

	chains  []*physics.Chain
	targets []dynamo.Vec2
	owner   []int
	time    int
	swaps   int

	drawBuf []dynamo.Drawable
}

func NewSwarm(p Params, pointer PointerSource) *Swarm {
	s := &Swarm{params: p, pointer: pointer}
	s.Reset()
	return s
}

// Reset reseeds the random source and rebuilds every chain and target.
func (s *Swarm) Reset() {
	p := s.params
	n := p.Targets
	if n < 0 {
		n = 0
	}

	s.rng = rand.New(rand.NewSource(p.Seed))
	s.field = &field.Field{
		Origin: dynamo.V(p.Width/2, p.Height/2),
		Pull:   p.Pull,
		Trig:   p.Trig,
	}
	s.time = 0
	s.swaps = 0
	s.targets = make([]dynamo.Vec2, n)
	s.owner = make([]int, n)
	s.chains = make([]*physics.Chain, n)

	for i := 0; i < n; i++ {
		s.targets[i] = dynamo.V(s.rng.Float64()*p.Width, s.rng.Float64()*p.Height)
		s.owner[i] = i

		cfg := p.Chain
		cfg.Target = s.targets[i]
		c := physics.NewChain(cfg)
		c.SetStepper(p.Stepper)
		s.chains[i] = c
	}
}

// Step advances one frame: tick the clock, clear, update and render every
// chain, then recompute the targets and hand them to the chains. r may be
// nil.
func (s *Swarm) Step(r Renderer) {
	s.time++
	if r != nil {
		r.Clear()
	}
	for _, c := range s.chains {
		c.Update()
		if r != nil {
			s.drawBuf = c.AppendDrawables(s.drawBuf[:0])
			r.Render(s.drawBuf)
		}
	}
	s.UpdateTargets()
	s.assignTargets()
}

// UpdateTargets re-evaluates the motion field for every slot with fresh
// jitter. After each slot, two random slots are swapped with probability
// SwapProbability.
func (s *Swarm) UpdateTargets() {
	n := len(s.targets)
	pointer, ok := s.Pointer()
	s.swaps = 0

	for i := 0; i < n; i++ {
		angle := field.SlotAngle(i, n) + s.rng.Float64()*s.params.Jitter
		s.targets[i] = s.field.Curve(angle, s.time, pointer, ok)

		if s.rng.Float64() < s.params.SwapProbability {
			a, b := s.rng.Intn(n), s.rng.Intn(n)
			s.targets[a], s.targets[b] = s.targets[b], s.targets[a]
			if s.params.SwapMode == SwapOwners {
				s.owner[a], s.owner[b] = s.owner[b], s.owner[a]
			}
			s.swaps++
		}
	}
}

func (s *Swarm) assignTargets() {
	for slot, t := range s.targets {
		s.chains[s.owner[slot]].SetTarget(t)
	}
}

func (s *Swarm) Pointer() (dynamo.Vec2, bool) {
	if s.pointer == nil {
		return dynamo.Vec2{}, false
	}
	return s.pointer.Pointer()
}

func (s *Swarm) SetPointer(p PointerSource) { s.pointer = p }

func (s *Swarm) SetStepper(st physics.Stepper) {
	s.params.Stepper = st
	for _, c := range s.chains {
		c.SetStepper(st)
	}
}

func (s *Swarm) Time() int { return s.time }

func (s *Swarm) Field() *field.Field { return s.field }

func (s *Swarm) Chains() []*physics.Chain { return s.chains }

func (s *Swarm) Swaps() int { return s.swaps }

func (s *Swarm) Settings() Params { return s.params }

// Targets returns a copy of the target slots.
func (s *Swarm) Targets() []dynamo.Vec2 {
	out := make([]dynamo.Vec2, len(s.targets))
	copy(out, s.targets)
	return out
}

// Owner returns the chain index that reads slot.
func (s *Swarm) Owner(slot int) int { return s.owner[slot] }

// Drawables returns every chain's drawables in chain order.
func (s *Swarm) Drawables() []dynamo.Drawable {
	n := 0
	for _, c := range s.chains {
		n += c.Len()
	}
	out := make([]dynamo.Drawable, 0, n)
	for _, c := range s.chains {
		out = c.AppendDrawables(out)
	}
	return out
}

// Frame snapshots the swarm for metrics and observers.
func (s *Swarm) Frame() dynamo.Frame {
	f := dynamo.Frame{
		Time:    s.time,
		Leads:   make([]dynamo.Vec2, len(s.chains)),
		Targets: make([]dynamo.Vec2, len(s.chains)),
		Swaps:   s.swaps,
	}
	for i, c := range s.chains {
		f.Leads[i] = c.Lead.Position
		f.Targets[i] = c.Lead.Target
		for _, p := range c.Points() {
			f.Points = append(f.Points, p.Position)
		}
		f.Energy += c.Energy()
	}
	return f
}

// MeanDistance is the mean lead-to-target distance.
func (s *Swarm) MeanDistance() float64 {
	if len(s.chains) == 0 {
		return 0
	}
	total := 0.0
	for _, c := range s.chains {
		total += c.Lead.Position.Dist(c.Lead.Target)
	}
	return total / float64(len(s.chains))
}

// Params implements dynamo.Configurable over the lead springs and the
// target schedule.
func (s *Swarm) Params() map[string]float64 {
	return map[string]float64{
		"elasticity": s.params.Chain.Elasticity,
		"damping":    s.params.Chain.Damping,
		"swap_prob":  s.params.SwapProbability,
		"jitter":     s.params.Jitter,
		"pull":       s.params.Pull,
	}
}

// SetParam implements dynamo.Configurable
func (s *Swarm) SetParam(name string, value float64) error {
	switch name {
	case "elasticity", "damping":
		if name == "elasticity" {
			s.params.Chain.Elasticity = value
		} else {
			s.params.Chain.Damping = value
		}
		for _, c := range s.chains {
			if err := c.Lead.SetParam(name, value); err != nil {
				return err
			}
		}
	case "swap_prob":
		s.params.SwapProbability = value
	case "jitter":
		s.params.Jitter = value
	case "pull":
		s.params.Pull = value
		s.field.Pull = value
	default:
		return fmt.Errorf("swarm param %q: %w", name, dynamo.ErrUnknownName)
	}
	return nil
}
