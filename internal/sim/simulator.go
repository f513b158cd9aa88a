package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/heartswarm/internal/dynamo"
)

// Runner drives a swarm headless for a fixed number of frames, feeding
// metrics and observers along the way.
type Runner struct {
	swarm     *Swarm
	renderer  Renderer
	metrics   []dynamo.Metric
	observers []dynamo.Observer
}

func NewRunner(s *Swarm) *Runner {
	return &Runner{
		swarm:     s,
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
	}
}

func (r *Runner) AddMetric(m dynamo.Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o dynamo.Observer) { r.observers = append(r.observers, o) }

// SetRenderer attaches a renderer that receives every frame.
func (r *Runner) SetRenderer(rd Renderer) { r.renderer = rd }

func (r *Runner) Swarm() *Swarm { return r.swarm }

func (r *Runner) Run(ctx context.Context, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	every := cfg.SampleEvery
	if every == 0 {
		every = 1
	}

	result := &dynamo.Result{
		Samples: make([]dynamo.Sample, 0, cfg.Frames/every+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	s := r.swarm
	for i := 0; i < cfg.Frames; i++ {
		select {
		case <-ctx.Done():
			r.finish(result)
			return result, fmt.Errorf("%w: %v", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		s.Step(r.renderer)
		result.FramesRun++

		if cfg.ValidateState {
			if chain, bad := r.invalidChain(); bad {
				result.Errors = append(result.Errors, dynamo.SimError{
					Frame:   s.Time(),
					Chain:   chain,
					Wrapped: dynamo.ErrInvalidState,
				})
				break
			}
		}

		needFrame := len(r.metrics) > 0 || len(r.observers) > 0 || s.Time()%every == 0
		if !needFrame {
			continue
		}

		f := s.Frame()
		for _, m := range r.metrics {
			m.Observe(f)
		}
		for _, obs := range r.observers {
			obs.OnFrame(f)
		}
		if s.Time()%every == 0 {
			result.Samples = append(result.Samples, dynamo.Sample{
				Frame:        s.Time(),
				MeanDistance: s.MeanDistance(),
				Energy:       f.Energy,
				Swaps:        f.Swaps,
				Center:       s.Field().Center(s.Pointer()),
			})
		}
	}

	r.finish(result)
	return result, nil
}

func (r *Runner) finish(result *dynamo.Result) {
	chains := r.swarm.Chains()
	result.Final = make([]dynamo.Vec2, len(chains))
	for i, c := range chains {
		result.Final[i] = c.Lead.Position
	}
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (r *Runner) invalidChain() (int, bool) {
	for i, c := range r.swarm.Chains() {
		if c.Invalid() >= 0 {
			return i, true
		}
	}
	return -1, false
}
