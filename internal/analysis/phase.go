package analysis

import (
	"strings"

	"github.com/san-kum/heartswarm/internal/dynamo"
)

// PhasePortrait pairs two equal-length series as points.
type PhasePortrait struct {
	XLabel, YLabel string
	Points         []dynamo.Vec2
}

func NewPhasePortrait(xLabel string, xs []float64, yLabel string, ys []float64) *PhasePortrait {
	n := min(len(xs), len(ys))
	p := &PhasePortrait{XLabel: xLabel, YLabel: yLabel, Points: make([]dynamo.Vec2, 0, n)}
	for i := 0; i < n; i++ {
		pt := dynamo.V(xs[i], ys[i])
		if pt.IsValid() {
			p.Points = append(p.Points, pt)
		}
	}
	return p
}

// Derivative returns the forward difference of series; the last value is
// repeated so the result keeps its length.
func Derivative(series []float64) []float64 {
	out := make([]float64, len(series))
	for i := 0; i+1 < len(series); i++ {
		out[i] = series[i+1] - series[i]
	}
	if len(series) > 1 {
		out[len(out)-1] = out[len(out)-2]
	}
	return out
}

func bounds(pts []dynamo.Vec2) (lo, hi dynamo.Vec2) {
	lo, hi = pts[0], pts[0]
	for _, p := range pts[1:] {
		lo.X, lo.Y = min(lo.X, p.X), min(lo.Y, p.Y)
		hi.X, hi.Y = max(hi.X, p.X), max(hi.Y, p.Y)
	}

	span := hi.Sub(lo)
	if span.X == 0 {
		span.X = 1
	}
	if span.Y == 0 {
		span.Y = 1
	}
	pad := span.Scale(0.1)
	return lo.Sub(pad), hi.Add(pad)
}

// ASCII plots the portrait on a width×height grid, drawing axes where they
// cross the visible area.
func (p *PhasePortrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	lo, hi := bounds(p.Points)
	span := hi.Sub(lo)

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	col := func(x float64) int { return int((x - lo.X) / span.X * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-lo.Y)/span.Y*float64(height-1)) }

	if lo.X <= 0 && hi.X >= 0 {
		c := col(0)
		for r := range grid {
			grid[r][c] = '│'
		}
	}
	if lo.Y <= 0 && hi.Y >= 0 {
		r := row(0)
		for c := range grid[r] {
			grid[r][c] = '─'
		}
	}
	for _, pt := range p.Points {
		grid[row(pt.Y)][col(pt.X)] = '•'
	}

	var sb strings.Builder
	for _, line := range grid {
		sb.WriteString(string(line))
		sb.WriteRune('\n')
	}
	return sb.String()
}
