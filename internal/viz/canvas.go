package viz

import (
	"image"
	"image/color"
	"image/color/palette"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/heartswarm/internal/colors"
	"github.com/san-kum/heartswarm/internal/dynamo"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const (
	brailleBase = 0x2800
	// dots dimmer than this are not drawn
	visibleLevel = 0.08
)

// Canvas is a braille renderer for the swarm. Every terminal cell holds 2x4
// dots, each with its own intensity, and one colour shared by the cell.
// Clear does not wipe: it dims every dot by Fade, leaving translucent
// trails behind moving points.
type Canvas struct {
	Cols, Rows    int
	Width, Height float64
	Fade          float64
	Background    colorful.Color

	levels []float64 // (Cols*2) x (Rows*4) dot intensities
	tint   []colorful.Color
}

// NewCanvas returns a cols x rows cell canvas covering a width x height
// area in swarm coordinates.
func NewCanvas(cols, rows int, width, height float64) *Canvas {
	c := &Canvas{
		Width:  width,
		Height: height,
		Fade:   0.2,
	}
	c.Resize(cols, rows)
	return c
}

// Resize changes the cell grid and wipes the canvas.
func (c *Canvas) Resize(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	c.Cols, c.Rows = cols, rows
	c.levels = make([]float64, cols*2*rows*4)
	c.tint = make([]colorful.Color, cols*rows)
}

// SetBackground parses a CSS colour for the background. Unparseable values
// leave it unchanged.
func (c *Canvas) SetBackground(css string) error {
	bg, err := colors.Parse(css)
	if err != nil {
		return err
	}
	c.Background = bg.Color
	return nil
}

// Clear dims every dot by the fade opacity.
func (c *Canvas) Clear() {
	keep := 1 - c.Fade
	for i, l := range c.levels {
		l *= keep
		if l < visibleLevel {
			l = 0
		}
		c.levels[i] = l
	}
}

// Wipe erases the canvas completely.
func (c *Canvas) Wipe() {
	for i := range c.levels {
		c.levels[i] = 0
	}
}

func (c *Canvas) Render(ds []dynamo.Drawable) {
	for _, d := range ds {
		pos := d.Pos()
		if !pos.IsValid() {
			continue
		}
		col, err := colors.Parse(d.Color())
		if err != nil {
			continue
		}
		x, y := c.dot(pos)
		c.Set(x, y, col)
	}
}

// dot maps a swarm position to dot coordinates.
func (c *Canvas) dot(p dynamo.Vec2) (int, int) {
	dx := float64(c.Cols*2) / c.Width
	dy := float64(c.Rows*4) / c.Height
	return floor(p.X * dx), floor(p.Y * dy)
}

func floor(v float64) int {
	i := int(v)
	if v < 0 && float64(i) != v {
		i--
	}
	return i
}

// Set paints the dot at (x, y), in dot coordinates, with col composited over
// what is already there. Dots outside the canvas are ignored.
func (c *Canvas) Set(x, y int, col colors.RGBA) {
	if x < 0 || y < 0 || x >= c.Cols*2 || y >= c.Rows*4 {
		return
	}
	i := y*c.Cols*2 + x
	c.levels[i] = col.A + c.levels[i]*(1-col.A)

	cell := (y/4)*c.Cols + x/2
	if c.cellLevel(x/2, y/4) == c.levels[i] {
		c.tint[cell] = col.Color
	} else {
		c.tint[cell] = col.Over(c.tint[cell])
	}
}

// Level returns the intensity of the dot at (x, y).
func (c *Canvas) Level(x, y int) float64 {
	if x < 0 || y < 0 || x >= c.Cols*2 || y >= c.Rows*4 {
		return 0
	}
	return c.levels[y*c.Cols*2+x]
}

// cellLevel is the brightest dot in a cell.
func (c *Canvas) cellLevel(col, row int) float64 {
	max := 0.0
	for dy := 0; dy < 4; dy++ {
		for dx := 0; dx < 2; dx++ {
			if l := c.levels[(row*4+dy)*c.Cols*2+col*2+dx]; l > max {
				max = l
			}
		}
	}
	return max
}

// Rune returns the braille glyph for a cell.
func (c *Canvas) Rune(col, row int) rune {
	r := rune(brailleBase)
	for dy := 0; dy < 4; dy++ {
		for dx := 0; dx < 2; dx++ {
			if c.levels[(row*4+dy)*c.Cols*2+col*2+dx] >= visibleLevel {
				r |= pixelMap[dy][dx]
			}
		}
	}
	return r
}

// CellColor is the cell tint faded towards the background by the cell's
// brightest dot.
func (c *Canvas) CellColor(col, row int) colorful.Color {
	return colors.RGBA{Color: c.tint[row*c.Cols+col], A: c.cellLevel(col, row)}.Over(c.Background)
}

// Plain renders the canvas without colour.
func (c *Canvas) Plain() string {
	var b strings.Builder
	for row := 0; row < c.Rows; row++ {
		for col := 0; col < c.Cols; col++ {
			b.WriteRune(c.Rune(col, row))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// String renders the canvas with every lit cell coloured. Adjacent cells
// sharing a colour are emitted as one styled run.
func (c *Canvas) String() string {
	var b strings.Builder
	var run strings.Builder
	runHex := ""

	flush := func() {
		if run.Len() == 0 {
			return
		}
		if runHex == "" {
			b.WriteString(run.String())
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(runHex)).Render(run.String()))
		}
		run.Reset()
	}

	for row := 0; row < c.Rows; row++ {
		for col := 0; col < c.Cols; col++ {
			r := c.Rune(col, row)
			hex := ""
			if r != brailleBase {
				hex = c.CellColor(col, row).Hex()
			}
			if hex != runHex {
				flush()
				runHex = hex
			}
			run.WriteRune(r)
		}
		flush()
		b.WriteByte('\n')
	}
	return b.String()
}

// Image rasterises the canvas, drawing each dot as a dotW x dotH block.
func (c *Canvas) Image(dotW, dotH int) *image.Paletted {
	w, h := c.Cols*2*dotW, c.Rows*4*dotH
	img := image.NewPaletted(image.Rect(0, 0, w, h), palette.Plan9)
	bg := toRGBA(c.Background)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, bg)
		}
	}

	for y := 0; y < c.Rows*4; y++ {
		for x := 0; x < c.Cols*2; x++ {
			l := c.levels[y*c.Cols*2+x]
			if l < visibleLevel {
				continue
			}
			px := toRGBA(colors.RGBA{Color: c.tint[(y/4)*c.Cols+x/2], A: l}.Over(c.Background))
			for py := 0; py < dotH; py++ {
				for pxx := 0; pxx < dotW; pxx++ {
					img.Set(x*dotW+pxx, y*dotH+py, px)
				}
			}
		}
	}
	return img
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
