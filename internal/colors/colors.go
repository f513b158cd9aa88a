// Package colors parses the CSS colour strings carried by drawables.
package colors

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/heartswarm/internal/dynamo"
)

// RGBA is an opaque colour plus an alpha in [0,1].
type RGBA struct {
	colorful.Color
	A float64
}

// Parse accepts "#rgb", "#rrggbb", "rgb(r, g, b)" and "rgba(r, g, b, a)".
// Channel values are clamped to their ranges.
func Parse(css string) (RGBA, error) {
	s := strings.TrimSpace(strings.ToLower(css))

	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(expandHex(s))
		if err != nil {
			return RGBA{}, fmt.Errorf("color %q: %w", css, dynamo.ErrParameterBounds)
		}
		return RGBA{Color: c, A: 1}, nil
	}

	var body string
	var want int
	switch {
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		body, want = s[5:len(s)-1], 4
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		body, want = s[4:len(s)-1], 3
	default:
		return RGBA{}, fmt.Errorf("color %q: %w", css, dynamo.ErrUnknownName)
	}

	parts := strings.Split(body, ",")
	if len(parts) != want {
		return RGBA{}, fmt.Errorf("color %q: expected %d channels: %w", css, want, dynamo.ErrParameterBounds)
	}
	vals := make([]float64, want)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return RGBA{}, fmt.Errorf("color %q: %w", css, err)
		}
		vals[i] = v
	}

	out := RGBA{
		Color: colorful.Color{
			R: clamp01(vals[0] / 255),
			G: clamp01(vals[1] / 255),
			B: clamp01(vals[2] / 255),
		},
		A: 1,
	}
	if want == 4 {
		out.A = clamp01(vals[3])
	}
	return out, nil
}

// Over composites c over dst and returns the opaque result.
func (c RGBA) Over(dst colorful.Color) colorful.Color {
	return dst.BlendRgb(c.Color, c.A).Clamped()
}

func (c RGBA) Hex() string { return c.Color.Clamped().Hex() }

func expandHex(s string) string {
	if len(s) != 4 {
		return s
	}
	return string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
