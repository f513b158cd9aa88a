package config

import (
	"fmt"
	"os"

	"github.com/san-kum/heartswarm/internal/dynamo"
	"github.com/san-kum/heartswarm/internal/field"
	"github.com/san-kum/heartswarm/internal/physics"
	"github.com/san-kum/heartswarm/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFrames = 600
	DefaultFPS    = 60
	DefaultFade   = 0.2
	DefaultTheme  = "crimson"
)

type Config struct {
	Canvas      CanvasConfig `yaml:"canvas"`
	Swarm       SwarmConfig  `yaml:"swarm"`
	Field       FieldConfig  `yaml:"field"`
	Run         RunConfig    `yaml:"run"`
	Render      RenderConfig `yaml:"render"`
	PointerPath string       `yaml:"pointer_path,omitempty"`
}

type CanvasConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type SwarmConfig struct {
	Targets         int     `yaml:"targets"`
	TrailSize       int     `yaml:"trail_size"`
	Size            float64 `yaml:"size"`
	Color           string  `yaml:"color"`
	Elasticity      float64 `yaml:"elasticity"`
	Damping         float64 `yaml:"damping"`
	TrailMode       string  `yaml:"trail_mode"`
	SwapMode        string  `yaml:"swap_mode"`
	SwapProbability float64 `yaml:"swap_probability"`
	Jitter          float64 `yaml:"jitter"`
	ZeroIndex       string  `yaml:"zero_index"`
}

type FieldConfig struct {
	Pull     float64 `yaml:"pull"`
	FastTrig bool    `yaml:"fast_trig"`
}

type RunConfig struct {
	Frames     int    `yaml:"frames"`
	Seed       int64  `yaml:"seed"`
	FPS        int    `yaml:"fps"`
	Integrator string `yaml:"integrator"`
}

type RenderConfig struct {
	// Fade is the opacity of the clear pass; 1 wipes the canvas every frame.
	Fade       float64 `yaml:"fade"`
	Background string  `yaml:"background"`
	Theme      string  `yaml:"theme"`
}

func DefaultConfig() *Config {
	return &Config{
		Canvas: CanvasConfig{
			Width:  sim.DefaultWidth,
			Height: sim.DefaultHeight,
		},
		Swarm: SwarmConfig{
			Targets:         sim.DefaultTargets,
			TrailSize:       physics.DefaultTrailSize,
			Size:            sim.DefaultSize,
			Color:           sim.DefaultColor,
			Elasticity:      physics.DefaultElasticity,
			Damping:         physics.DefaultDamping,
			TrailMode:       physics.TrailFixed.String(),
			SwapMode:        sim.SwapValues.String(),
			SwapProbability: sim.DefaultSwapProbability,
			Jitter:          sim.DefaultJitter,
			ZeroIndex:       physics.ZeroIndexSkip.String(),
		},
		Field: FieldConfig{
			Pull: field.DefaultPull,
		},
		Run: RunConfig{
			Frames:     DefaultFrames,
			Seed:       1,
			FPS:        DefaultFPS,
			Integrator: "semi-implicit",
		},
		Render: RenderConfig{
			Fade:       DefaultFade,
			Background: "#000000",
			Theme:      DefaultTheme,
		},
	}
}

// Load overlays the yaml file at path on the defaults and validates the
// result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func bounds(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, dynamo.ErrParameterBounds)...)
}

// Validate checks structural bounds. Elasticity and damping are only
// rejected when negative; large values diverge but are legal.
func (c *Config) Validate() error {
	switch {
	case c.Canvas.Width <= 0 || c.Canvas.Height <= 0:
		return bounds("canvas must be positive, got %gx%g", c.Canvas.Width, c.Canvas.Height)
	case c.Swarm.Targets < 0:
		return bounds("targets must not be negative, got %d", c.Swarm.Targets)
	case c.Swarm.TrailSize < 0:
		return bounds("trail_size must not be negative, got %d", c.Swarm.TrailSize)
	case c.Swarm.Size <= 0:
		return bounds("size must be positive, got %g", c.Swarm.Size)
	case c.Swarm.Elasticity < 0:
		return bounds("elasticity must not be negative, got %g", c.Swarm.Elasticity)
	case c.Swarm.Damping < 0:
		return bounds("damping must not be negative, got %g", c.Swarm.Damping)
	case c.Swarm.SwapProbability < 0 || c.Swarm.SwapProbability > 1:
		return bounds("swap_probability must be within [0,1], got %g", c.Swarm.SwapProbability)
	case c.Swarm.Jitter < 0:
		return bounds("jitter must not be negative, got %g", c.Swarm.Jitter)
	case c.Run.Frames <= 0:
		return bounds("frames must be positive, got %d", c.Run.Frames)
	case c.Run.FPS <= 0:
		return bounds("fps must be positive, got %d", c.Run.FPS)
	case c.Render.Fade < 0 || c.Render.Fade > 1:
		return bounds("fade must be within [0,1], got %g", c.Render.Fade)
	}

	if _, err := physics.ParseTrailMode(c.Swarm.TrailMode); err != nil {
		return err
	}
	if _, err := physics.ParseZeroIndex(c.Swarm.ZeroIndex); err != nil {
		return err
	}
	if _, err := sim.ParseSwapMode(c.Swarm.SwapMode); err != nil {
		return err
	}
	return nil
}

// SwarmParams converts the config into swarm construction parameters. The
// stepper is left nil; callers resolve Run.Integrator through a registry.
func (c *Config) SwarmParams() (sim.Params, error) {
	if err := c.Validate(); err != nil {
		return sim.Params{}, err
	}

	trailMode, _ := physics.ParseTrailMode(c.Swarm.TrailMode)
	zeroIndex, _ := physics.ParseZeroIndex(c.Swarm.ZeroIndex)
	swapMode, _ := sim.ParseSwapMode(c.Swarm.SwapMode)

	p := sim.DefaultParams()
	p.Width = c.Canvas.Width
	p.Height = c.Canvas.Height
	p.Targets = c.Swarm.Targets
	p.Chain.TrailSize = c.Swarm.TrailSize
	p.Chain.TrailMode = trailMode
	p.Chain.ZeroIndex = zeroIndex
	p.Chain.Size = c.Swarm.Size
	p.Chain.Color = c.Swarm.Color
	p.Chain.Elasticity = c.Swarm.Elasticity
	p.Chain.Damping = c.Swarm.Damping
	p.SwapProbability = c.Swarm.SwapProbability
	p.SwapMode = swapMode
	p.Jitter = c.Swarm.Jitter
	p.Pull = c.Field.Pull
	p.Seed = c.Run.Seed
	if c.Field.FastTrig {
		p.Trig = dynamo.DefaultTrigTable
	}
	return p, nil
}

// RunSettings returns the headless run settings.
func (c *Config) RunSettings() dynamo.Config {
	cfg := dynamo.DefaultConfig()
	cfg.Frames = c.Run.Frames
	cfg.Seed = c.Run.Seed
	return cfg
}
