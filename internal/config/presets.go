package config

import "sort"

// Presets adjust the defaults for a named look.
var Presets = map[string]func(c *Config){
	"classic": func(c *Config) {},
	"dense": func(c *Config) {
		c.Swarm.Targets = 160
		c.Swarm.TrailSize = 6
		c.Swarm.Size = 1
	},
	"calm": func(c *Config) {
		c.Swarm.Elasticity = 0.04
		c.Swarm.Damping = 0.2
		c.Swarm.SwapProbability = 0
		c.Swarm.Jitter = 0.02
	},
	"follow": func(c *Config) {
		c.Swarm.TrailMode = "follow"
		c.Swarm.TrailSize = 14
	},
	"owners": func(c *Config) {
		c.Swarm.SwapMode = "owners"
		c.Swarm.SwapProbability = 0.02
	},
	"faithful": func(c *Config) {
		c.Swarm.ZeroIndex = "faithful"
		c.Swarm.TrailMode = "shared"
		c.Swarm.SwapMode = "owners"
	},
}

// GetPreset returns the defaults with the named preset applied, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
