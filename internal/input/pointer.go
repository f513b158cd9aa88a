// Package input owns the live pointer position fed to the swarm.
package input

import "github.com/san-kum/heartswarm/internal/dynamo"

// Pointer holds the last pointer position in canvas coordinates. The zero
// value is an unset pointer. It is not safe for concurrent use; the TUI
// writes and reads it from its single update goroutine.
type Pointer struct {
	pos dynamo.Vec2
	set bool
}

func (p *Pointer) Set(pos dynamo.Vec2) {
	p.pos = pos
	p.set = true
}

// Clear returns the pointer to the unset state.
func (p *Pointer) Clear() {
	p.pos = dynamo.Vec2{}
	p.set = false
}

func (p *Pointer) Pointer() (dynamo.Vec2, bool) {
	return p.pos, p.set
}

// CellMapper converts terminal cell coordinates to canvas coordinates.
type CellMapper struct {
	Cols, Rows    int
	Width, Height float64
}

// Map returns the canvas position of the center of cell (col, row). Cells
// outside the grid are clamped to its edge.
func (m CellMapper) Map(col, row int) dynamo.Vec2 {
	if m.Cols <= 0 || m.Rows <= 0 {
		return dynamo.Vec2{}
	}
	col = clamp(col, 0, m.Cols-1)
	row = clamp(row, 0, m.Rows-1)
	return dynamo.V(
		(float64(col)+0.5)*m.Width/float64(m.Cols),
		(float64(row)+0.5)*m.Height/float64(m.Rows),
	)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
