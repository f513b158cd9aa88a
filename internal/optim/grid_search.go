package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/heartswarm/internal/dynamo"
	"github.com/san-kum/heartswarm/internal/experiment"
)

// BuildFunc builds a ready-to-run experiment for one grid point.
type BuildFunc func(params map[string]float64) (*experiment.Experiment, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Point is one evaluated grid point.
type Point struct {
	Params map[string]float64
	Value  float64
}

// Best is the outcome of a search: the lowest finite metric value seen, and
// every evaluated point in grid order.
type Best struct {
	Params map[string]float64
	Value  float64
	Points []Point
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// Search evaluates every combination and minimises metricName. Points whose
// run fails or whose metric is not finite are recorded with NaN and never
// win.
func (g *GridSearch) Search(ctx context.Context, build BuildFunc, metricName string) (*Best, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, fmt.Errorf("%d names for %d ranges: %w", len(g.paramNames), len(g.ranges), dynamo.ErrParameterBounds)
	}
	for i, r := range g.ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("empty range for %s: %w", g.paramNames[i], dynamo.ErrParameterBounds)
		}
	}

	best := &Best{Value: math.Inf(1)}
	idx := make([]int, len(g.ranges))

	for {
		if err := ctx.Err(); err != nil {
			return best, err
		}

		current := make(map[string]float64, len(g.paramNames))
		for d, name := range g.paramNames {
			current[name] = g.ranges[d][idx[d]]
		}

		val := g.evaluate(ctx, build, current, metricName)
		best.Points = append(best.Points, Point{Params: current, Value: val})
		if !math.IsNaN(val) && !math.IsInf(val, 0) && val < best.Value {
			best.Value = val
			best.Params = current
		}

		if !g.advance(idx) {
			return best, nil
		}
	}
}

func (g *GridSearch) evaluate(ctx context.Context, build BuildFunc, params map[string]float64, metricName string) float64 {
	exp, err := build(params)
	if err != nil {
		return math.NaN()
	}
	result, err := exp.Run(ctx)
	if err != nil || len(result.Errors) > 0 {
		return math.NaN()
	}
	val, ok := result.Metrics[metricName]
	if !ok {
		return math.NaN()
	}
	return val
}

// advance steps idx like an odometer, last dimension fastest.
func (g *GridSearch) advance(idx []int) bool {
	for d := len(idx) - 1; d >= 0; d-- {
		idx[d]++
		if idx[d] < len(g.ranges[d]) {
			return true
		}
		idx[d] = 0
	}
	return false
}
