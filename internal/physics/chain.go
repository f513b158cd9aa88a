package physics

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/heartswarm/internal/dynamo"
)

const DefaultTrailSize = 10

// TrailMode selects what a trail point springs towards.
type TrailMode int

const (
	// TrailFixed: every trail point targets the lead's position at
	// construction time, forever.
	TrailFixed TrailMode = iota
	// TrailFollow: every trail point targets the live position of the point
	// ahead of it. Points are processed front to back after the lead moves.
	TrailFollow
	// TrailShared: every trail point targets the lead's current target, so
	// the whole chain converges on the slot it is fed.
	TrailShared
)

func (m TrailMode) String() string {
	switch m {
	case TrailFollow:
		return "follow"
	case TrailShared:
		return "shared"
	default:
		return "fixed"
	}
}

func ParseTrailMode(s string) (TrailMode, error) {
	switch strings.ToLower(s) {
	case "", "fixed":
		return TrailFixed, nil
	case "follow":
		return TrailFollow, nil
	case "shared":
		return TrailShared, nil
	}
	return TrailFixed, fmt.Errorf("trail mode %q: %w", s, dynamo.ErrUnknownName)
}

// ZeroIndex selects how the first trail point's coefficients are derived,
// since TrailElasticity(0) is +Inf.
type ZeroIndex int

const (
	// ZeroIndexSkip evaluates the coefficient formulas at i+1.
	ZeroIndexSkip ZeroIndex = iota
	// ZeroIndexFaithful evaluates them at i. The first trail point gets
	// infinite elasticity and turns NaN on its first step.
	ZeroIndexFaithful
)

func (z ZeroIndex) String() string {
	if z == ZeroIndexFaithful {
		return "faithful"
	}
	return "skip"
}

func ParseZeroIndex(s string) (ZeroIndex, error) {
	switch strings.ToLower(s) {
	case "", "skip":
		return ZeroIndexSkip, nil
	case "faithful":
		return ZeroIndexFaithful, nil
	}
	return ZeroIndexSkip, fmt.Errorf("zero index policy %q: %w", s, dynamo.ErrUnknownName)
}

// TrailElasticity is 1/(8i). It is +Inf for i == 0.
func TrailElasticity(i int) float64 { return 1 / (8 * float64(i)) }

// TrailDamping is 8/(10i+5).
func TrailDamping(i int) float64 { return 8 / (10*float64(i) + 5) }

// Stepper advances a single spring point by one tick.
type Stepper interface {
	Step(p *SpringPoint)
}

type ChainConfig struct {
	SpringConfig
	TrailSize int
	TrailMode TrailMode
	ZeroIndex ZeroIndex
}

func DefaultChainConfig() ChainConfig {
	return ChainConfig{
		SpringConfig: DefaultSpringConfig(),
		TrailSize:    DefaultTrailSize,
	}
}

// Chain is a lead spring point plus a trail of secondary points rendered
// behind it.
type Chain struct {
	Lead  *SpringPoint
	Trail []*SpringPoint

	mode    TrailMode
	stepper Stepper
}

func NewChain(cfg ChainConfig) *Chain {
	lead := NewSpringPoint(cfg.SpringConfig)

	n := cfg.TrailSize
	if n < 0 {
		n = 0
	}
	anchor := lead.Position
	trail := make([]*SpringPoint, n)
	for i := range trail {
		k := i
		if cfg.ZeroIndex == ZeroIndexSkip {
			k = i + 1
		}
		trail[i] = NewSpringPoint(SpringConfig{
			Target:     anchor,
			Elasticity: TrailElasticity(k),
			Damping:    TrailDamping(k),
			Color:      cfg.Color,
			Size:       cfg.Size,
		})
	}

	return &Chain{Lead: lead, Trail: trail, mode: cfg.TrailMode}
}

// SetStepper replaces the integrator used for every point. nil restores
// SpringPoint.Update.
func (c *Chain) SetStepper(s Stepper) { c.stepper = s }

func (c *Chain) Mode() TrailMode { return c.mode }

// SetTarget sets the lead's target. Trail targets pick it up on the next
// Update only in TrailShared mode.
func (c *Chain) SetTarget(v dynamo.Vec2) { c.Lead.Target = v }

func (c *Chain) step(p *SpringPoint) {
	if c.stepper != nil {
		c.stepper.Step(p)
		return
	}
	p.Update()
}

// Update advances the lead, then every trail point in construction order.
func (c *Chain) Update() {
	c.step(c.Lead)
	ahead := c.Lead
	for _, p := range c.Trail {
		switch c.mode {
		case TrailFollow:
			p.Target = ahead.Position
		case TrailShared:
			p.Target = c.Lead.Target
		}
		c.step(p)
		ahead = p
	}
}

func (c *Chain) Len() int { return 1 + len(c.Trail) }

// Points returns the lead followed by the trail.
func (c *Chain) Points() []*SpringPoint {
	pts := make([]*SpringPoint, 0, c.Len())
	pts = append(pts, c.Lead)
	return append(pts, c.Trail...)
}

// AppendDrawables appends the lead then the trail to dst.
func (c *Chain) AppendDrawables(dst []dynamo.Drawable) []dynamo.Drawable {
	dst = append(dst, c.Lead)
	for _, p := range c.Trail {
		dst = append(dst, p)
	}
	return dst
}

func (c *Chain) Drawables() []dynamo.Drawable {
	return c.AppendDrawables(make([]dynamo.Drawable, 0, c.Len()))
}

// Energy sums the energy of every point built with finite coefficients.
func (c *Chain) Energy() float64 {
	total := 0.0
	for _, p := range c.Points() {
		if !finiteParams(p) {
			continue
		}
		total += p.Energy()
	}
	return total
}

// Invalid returns the index (0 = lead) of the first point with a non-finite
// position or velocity, or -1. Points built with non-finite coefficients are
// degenerate by construction and skipped.
func (c *Chain) Invalid() int {
	for i, p := range c.Points() {
		if !finiteParams(p) {
			continue
		}
		if !p.Position.IsValid() || !p.Velocity.IsValid() {
			return i
		}
	}
	return -1
}

func finiteParams(p *SpringPoint) bool {
	return !math.IsInf(p.Elasticity, 0) && !math.IsNaN(p.Elasticity) &&
		!math.IsInf(p.Damping, 0) && !math.IsNaN(p.Damping)
}
