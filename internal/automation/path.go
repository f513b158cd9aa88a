package automation

import (
	"fmt"
	"os"
	"sort"

	"github.com/san-kum/heartswarm/internal/dynamo"
	"gopkg.in/yaml.v3"
)

// Keyframe pins the pointer at a frame. Hidden keyframes unset the pointer
// until the next visible one.
type Keyframe struct {
	Frame  int     `yaml:"frame"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Hidden bool    `yaml:"hidden,omitempty"`
}

// Path is a scripted pointer: positions are linearly interpolated between
// visible keyframes.
type Path struct {
	Name      string     `yaml:"name"`
	Loop      bool       `yaml:"loop"`
	Keyframes []Keyframe `yaml:"keyframes"`
}

func LoadPath(path string) (*Path, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var p Path
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := p.Prepare(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &p, nil
}

// Prepare sorts the keyframes and rejects negative or duplicate frames.
func (p *Path) Prepare() error {
	sort.SliceStable(p.Keyframes, func(i, j int) bool {
		return p.Keyframes[i].Frame < p.Keyframes[j].Frame
	})
	for i, k := range p.Keyframes {
		if k.Frame < 0 {
			return fmt.Errorf("keyframe %d at negative frame %d: %w", i, k.Frame, dynamo.ErrParameterBounds)
		}
		if i > 0 && p.Keyframes[i-1].Frame == k.Frame {
			return fmt.Errorf("duplicate keyframe at frame %d: %w", k.Frame, dynamo.ErrParameterBounds)
		}
	}
	return nil
}

// At returns the pointer at frame. Before the first keyframe the pointer is
// unset; after the last it holds, or wraps when Loop is set.
func (p *Path) At(frame int) (dynamo.Vec2, bool) {
	n := len(p.Keyframes)
	if n == 0 {
		return dynamo.Vec2{}, false
	}

	last := p.Keyframes[n-1].Frame
	if p.Loop && last > 0 && frame > last {
		frame %= last
	}

	if frame < p.Keyframes[0].Frame {
		return dynamo.Vec2{}, false
	}

	i := sort.Search(n, func(i int) bool { return p.Keyframes[i].Frame > frame }) - 1
	k := p.Keyframes[i]
	if k.Hidden {
		return dynamo.Vec2{}, false
	}
	from := dynamo.V(k.X, k.Y)
	if i == n-1 {
		return from, true
	}

	next := p.Keyframes[i+1]
	if next.Hidden {
		return from, true
	}
	t := float64(frame-k.Frame) / float64(next.Frame-k.Frame)
	return from.Lerp(dynamo.V(next.X, next.Y), t), true
}

// Clock reports the current frame.
type Clock interface {
	Time() int
}

// Player exposes a path as a pointer source driven by clock.
type Player struct {
	path  *Path
	clock Clock
}

func NewPlayer(path *Path, clock Clock) *Player {
	return &Player{path: path, clock: clock}
}

func (p *Player) Pointer() (dynamo.Vec2, bool) {
	return p.path.At(p.clock.Time())
}
