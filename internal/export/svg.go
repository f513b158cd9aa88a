package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/san-kum/heartswarm/internal/colors"
	"github.com/san-kum/heartswarm/internal/dynamo"
)

type circle struct {
	pos    dynamo.Vec2
	radius float64
	fill   string
	alpha  float64
}

// SVGRenderer records frames as vector layers. Each Clear paints the
// background at Fade opacity over everything drawn so far, so older frames
// show through as fading ghosts the way the live canvas does.
type SVGRenderer struct {
	Width, Height float64
	Background    string
	Fade          float64
	// History is how many frames are kept; 0 keeps only the latest.
	History int

	layers [][]circle
	trace  []dynamo.Vec2
}

func NewSVGRenderer(width, height float64) *SVGRenderer {
	return &SVGRenderer{
		Width:      width,
		Height:     height,
		Background: "#000000",
		Fade:       0.2,
		History:    8,
	}
}

func (r *SVGRenderer) Clear() {
	r.layers = append(r.layers, nil)
	if keep := r.History + 1; len(r.layers) > keep {
		r.layers = r.layers[len(r.layers)-keep:]
	}
}

// Render appends drawables to the current frame. Drawables with non-finite
// positions or unparseable colours are skipped.
func (r *SVGRenderer) Render(ds []dynamo.Drawable) {
	if len(r.layers) == 0 {
		r.layers = append(r.layers, nil)
	}
	cur := len(r.layers) - 1
	for _, d := range ds {
		pos := d.Pos()
		if !pos.IsValid() {
			continue
		}
		c, err := colors.Parse(d.Color())
		if err != nil {
			continue
		}
		r.layers[cur] = append(r.layers[cur], circle{pos: pos, radius: d.Radius(), fill: c.Hex(), alpha: c.A})
	}
}

// Trace records a polyline drawn above the frames.
func (r *SVGRenderer) Trace(p dynamo.Vec2) {
	if p.IsValid() {
		r.trace = append(r.trace, p)
	}
}

func (r *SVGRenderer) bg() string {
	c, err := colors.Parse(r.Background)
	if err != nil {
		return "#000000"
	}
	return c.Hex()
}

// WriteTo writes the SVG document.
func (r *SVGRenderer) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	bg := r.bg()

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, r.Width, r.Height, r.Width, r.Height, bg)

	for _, layer := range r.layers {
		fmt.Fprintf(&sb, `<rect width="100%%" height="100%%" fill="%s" fill-opacity="%.3f"/>
<g>
`, bg, r.Fade)
		for _, c := range layer {
			fmt.Fprintf(&sb, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s" fill-opacity="%.3f"/>
`, c.pos.X, c.pos.Y, c.radius, c.fill, c.alpha)
		}
		sb.WriteString("</g>\n")
	}

	if len(r.trace) > 1 {
		sb.WriteString(`<polyline fill="none" stroke="#ffffff" stroke-opacity="0.5" stroke-width="1" points="`)
		for i, p := range r.trace {
			if i > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%.1f,%.1f", p.X, p.Y)
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>\n")
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

func (r *SVGRenderer) String() string {
	var sb strings.Builder
	r.WriteTo(&sb)
	return sb.String()
}

// Save writes the SVG document to path.
func (r *SVGRenderer) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = r.WriteTo(f)
	return err
}
