package dynamo

import "math"

// Trig abstracts the sine/cosine source used by the motion field.
type Trig interface {
	Sin(x float64) float64
	Cos(x float64) float64
}

// MathTrig is exact trig from the math package.
type MathTrig struct{}

func (MathTrig) Sin(x float64) float64 { return math.Sin(x) }
func (MathTrig) Cos(x float64) float64 { return math.Cos(x) }

// TrigTable provides precomputed sin/cos values with linear interpolation
// between entries.
type TrigTable struct {
	sin []float64
	cos []float64
	n   int
}

// 4096 entries, about 0.0015 rad resolution
var DefaultTrigTable = NewTrigTable(4096)

func NewTrigTable(n int) *TrigTable {
	if n < 2 {
		n = 2
	}
	t := &TrigTable{
		sin: make([]float64, n),
		cos: make([]float64, n),
		n:   n,
	}
	for i := 0; i < n; i++ {
		angle := float64(i) * 2 * math.Pi / float64(n)
		t.sin[i] = math.Sin(angle)
		t.cos[i] = math.Cos(angle)
	}
	return t
}

// index maps x onto the table, returning neighbouring slots and the
// interpolation fraction between them.
func (t *TrigTable) index(x float64) (i0, i1 int, frac float64) {
	x = math.Mod(x, 2*math.Pi)
	if x < 0 {
		x += 2 * math.Pi
	}
	idx := x * float64(t.n) / (2 * math.Pi)
	i := int(idx)
	frac = idx - float64(i)
	return i % t.n, (i + 1) % t.n, frac
}

func (t *TrigTable) Sin(x float64) float64 {
	i0, i1, frac := t.index(x)
	return t.sin[i0]*(1-frac) + t.sin[i1]*frac
}

func (t *TrigTable) Cos(x float64) float64 {
	i0, i1, frac := t.index(x)
	return t.cos[i0]*(1-frac) + t.cos[i1]*frac
}
