package input

import (
	"testing"

	"github.com/san-kum/heartswarm/internal/dynamo"
)

func TestPointer(t *testing.T) {
	var p Pointer

	if _, ok := p.Pointer(); ok {
		t.Fatal("zero pointer should be unset")
	}

	p.Set(dynamo.V(12, 34))
	pos, ok := p.Pointer()
	if !ok || pos != dynamo.V(12, 34) {
		t.Errorf("expected (12,34) set, got %v %v", pos, ok)
	}

	p.Set(dynamo.V(0, 0))
	if _, ok := p.Pointer(); !ok {
		t.Error("origin is a valid pointer position")
	}

	p.Clear()
	if _, ok := p.Pointer(); ok {
		t.Error("cleared pointer should be unset")
	}
}

func TestCellMapper(t *testing.T) {
	m := CellMapper{Cols: 80, Rows: 20, Width: 640, Height: 360}

	tests := []struct {
		col, row int
		want     dynamo.Vec2
	}{
		{0, 0, dynamo.V(4, 9)},
		{79, 19, dynamo.V(636, 351)},
		{40, 10, dynamo.V(324, 189)},
		{-5, 100, dynamo.V(4, 351)},
	}
	for _, tt := range tests {
		if got := m.Map(tt.col, tt.row); got.Dist(tt.want) > 1e-9 {
			t.Errorf("Map(%d,%d) = %v, want %v", tt.col, tt.row, got, tt.want)
		}
	}

	if got := (CellMapper{}).Map(3, 3); got != (dynamo.Vec2{}) {
		t.Errorf("empty grid should map to origin, got %v", got)
	}
}
