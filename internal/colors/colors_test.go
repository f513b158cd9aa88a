package colors

import (
	"errors"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	. "github.com/onsi/gomega"
	"github.com/san-kum/heartswarm/internal/dynamo"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in    string
		hex   string
		alpha float64
	}{
		{"#f00", "#ff0000", 1},
		{"#00ff80", "#00ff80", 1},
		{"rgb(0, 0, 255)", "#0000ff", 1},
		{"rgba(230, 10, 40, 0.8)", "#e60a28", 0.8},
		{"rgba(255, 0, 0, .6)", "#ff0000", 0.6},
		{"  RGBA(300, -4, 0, 2) ", "#ff0000", 1},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			g := NewWithT(t)
			c, err := Parse(tt.in)
			g.Expect(err).NotTo(HaveOccurred())
			g.Expect(c.Hex()).To(Equal(tt.hex))
			g.Expect(c.A).To(BeNumerically("~", tt.alpha, 1e-12))
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"red", dynamo.ErrUnknownName},
		{"#zzz", dynamo.ErrParameterBounds},
		{"rgba(1, 2, 3)", dynamo.ErrParameterBounds},
		{"rgb(1, 2, 3, 4)", dynamo.ErrParameterBounds},
	}
	for _, tt := range tests {
		if _, err := Parse(tt.in); !errors.Is(err, tt.want) {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, err, tt.want)
		}
	}
	if _, err := Parse("rgb(a, b, c)"); err == nil {
		t.Error("expected error for non-numeric channels")
	}
}

func TestOver(t *testing.T) {
	g := NewWithT(t)
	black := colorful.Color{}

	red, err := Parse("rgba(255, 0, 0, 0.5)")
	g.Expect(err).NotTo(HaveOccurred())
	out := red.Over(black)
	g.Expect(out.R).To(BeNumerically("~", 0.5, 1e-9))
	g.Expect(out.G).To(BeZero())

	green, err := Parse("#00ff00")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(green.Over(black).Hex()).To(Equal("#00ff00"))

	hot := RGBA{Color: colorful.Color{R: 1.4}, A: 1}
	g.Expect(hot.Over(black).R).To(Equal(1.0))
}
