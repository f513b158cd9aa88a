package dynamo

import "fmt"

// Drawable is the read contract of a renderer: a filled circle of Radius at
// Pos in Color. Color is a CSS colour string ("#f00", "rgba(230, 10, 40, 0.8)").
type Drawable interface {
	Pos() Vec2
	Color() string
	Radius() float64
}

type Configurable interface {
	Params() map[string]float64
	SetParam(name string, value float64) error
}

// Frame is the per-frame view handed to metrics and observers. Slices are
// owned by the swarm and only valid for the duration of the call.
type Frame struct {
	Time    int
	Leads   []Vec2
	Targets []Vec2
	Points  []Vec2
	Energy  float64
	Swaps   int
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(f Frame)
}

type Config struct {
	Frames        int
	Seed          int64
	SampleEvery   int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Frames:        600,
		Seed:          1,
		SampleEvery:   1,
		ValidateState: true,
	}
}

func (c Config) Validate() error {
	if c.Frames <= 0 {
		return fmt.Errorf("frames must be positive, got %d: %w", c.Frames, ErrParameterBounds)
	}
	if c.SampleEvery < 0 {
		return fmt.Errorf("sample interval must not be negative, got %d: %w", c.SampleEvery, ErrParameterBounds)
	}
	return nil
}

// Sample is one recorded row of a run.
type Sample struct {
	Frame        int     `json:"frame"`
	MeanDistance float64 `json:"mean_distance"`
	Energy       float64 `json:"energy"`
	Swaps        int     `json:"swaps"`
	Center       Vec2    `json:"center"`
}

type Result struct {
	Samples   []Sample
	Final     []Vec2
	Metrics   map[string]float64
	FramesRun int
	Errors    []error
}
