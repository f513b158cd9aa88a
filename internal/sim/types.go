package sim

import (
	"fmt"
	"strings"

	"github.com/san-kum/heartswarm/internal/dynamo"
	"github.com/san-kum/heartswarm/internal/field"
	"github.com/san-kum/heartswarm/internal/physics"
)

const (
	DefaultWidth           = 640.0
	DefaultHeight          = 360.0
	DefaultTargets         = 60
	DefaultSwapProbability = 0.004
	DefaultJitter          = 0.1
	DefaultColor           = "rgba(230, 10, 40, 0.8)"
	DefaultSize            = 1.3
)

// PointerSource is polled once per frame for the live pointer position.
// ok is false while the pointer has never been seen.
type PointerSource interface {
	Pointer() (pos dynamo.Vec2, ok bool)
}

// Renderer receives a clear followed by the drawables of every chain, once
// per frame.
type Renderer interface {
	Clear()
	Render(ds []dynamo.Drawable)
}

// SwapMode selects what a random target swap exchanges.
type SwapMode int

const (
	// SwapValues moves the stored positions between slots; chain i always
	// reads slot i.
	SwapValues SwapMode = iota
	// SwapOwners also exchanges which chain reads which slot, so each chain
	// keeps following the swapped slot on later frames.
	SwapOwners
)

func (m SwapMode) String() string {
	if m == SwapOwners {
		return "owners"
	}
	return "values"
}

func ParseSwapMode(s string) (SwapMode, error) {
	switch strings.ToLower(s) {
	case "", "values":
		return SwapValues, nil
	case "owners":
		return SwapOwners, nil
	}
	return SwapValues, fmt.Errorf("swap mode %q: %w", s, dynamo.ErrUnknownName)
}

// Params are the construction parameters of a swarm. Chain.Target is
// ignored; every chain starts on a random target inside the canvas.
type Params struct {
	Width, Height   float64
	Targets         int
	Chain           physics.ChainConfig
	SwapProbability float64
	SwapMode        SwapMode
	Jitter          float64
	Pull            float64
	Trig            dynamo.Trig
	Stepper         physics.Stepper
	Seed            int64
}

func DefaultParams() Params {
	chain := physics.DefaultChainConfig()
	chain.Color = DefaultColor
	chain.Size = DefaultSize

	return Params{
		Width:           DefaultWidth,
		Height:          DefaultHeight,
		Targets:         DefaultTargets,
		Chain:           chain,
		SwapProbability: DefaultSwapProbability,
		Jitter:          DefaultJitter,
		Pull:            field.DefaultPull,
		Seed:            1,
	}
}
