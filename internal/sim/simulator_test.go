package sim

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/heartswarm/internal/dynamo"
	"github.com/san-kum/heartswarm/internal/field"
	"github.com/san-kum/heartswarm/internal/physics"
)

type fixedPointer struct {
	pos dynamo.Vec2
	ok  bool
}

func (p fixedPointer) Pointer() (dynamo.Vec2, bool) { return p.pos, p.ok }

type recordingRenderer struct {
	events []string
	calls  [][]dynamo.Vec2
}

func (r *recordingRenderer) Clear() { r.events = append(r.events, "clear") }

func (r *recordingRenderer) Render(ds []dynamo.Drawable) {
	r.events = append(r.events, "render")
	pts := make([]dynamo.Vec2, len(ds))
	for i, d := range ds {
		pts[i] = d.Pos()
	}
	r.calls = append(r.calls, pts)
}

func testParams(n int) Params {
	p := DefaultParams()
	p.Targets = n
	p.Seed = 7
	return p
}

func TestNewSwarm_InitialTargetsInsideCanvas(t *testing.T) {
	p := testParams(60)
	s := NewSwarm(p, nil)

	if len(s.Chains()) != 60 {
		t.Fatalf("expected 60 chains, got %d", len(s.Chains()))
	}
	for i, c := range s.Chains() {
		pos := c.Lead.Position
		if pos.X < 0 || pos.X >= p.Width || pos.Y < 0 || pos.Y >= p.Height {
			t.Errorf("chain %d starts outside canvas: %v", i, pos)
		}
		if c.Lead.Target != pos {
			t.Errorf("chain %d should start on its own target", i)
		}
		if len(c.Trail) != physics.DefaultTrailSize {
			t.Errorf("chain %d trail %d", i, len(c.Trail))
		}
	}
	if s.Time() != 0 {
		t.Errorf("expected time 0, got %d", s.Time())
	}
}

func TestSwarm_TargetsFollowField(t *testing.T) {
	p := testParams(12)
	p.SwapProbability = 0
	ptr := fixedPointer{pos: dynamo.V(500, 100), ok: true}
	s := NewSwarm(p, ptr)

	rng := rand.New(rand.NewSource(p.Seed))
	for i := 0; i < 2*p.Targets; i++ {
		rng.Float64()
	}

	s.Step(nil)

	f := field.New(dynamo.V(p.Width/2, p.Height/2))
	got := s.Targets()
	for i := range got {
		jitter := rng.Float64() * p.Jitter
		rng.Float64()
		want := f.Curve(field.SlotAngle(i, p.Targets)+jitter, 1, ptr.pos, true)
		if got[i].Dist(want) > 1e-9 {
			t.Errorf("slot %d: got %v, want %v", i, got[i], want)
		}
		if s.Chains()[i].Lead.Target != got[i] {
			t.Errorf("chain %d not given slot %d", i, i)
		}
	}
}

func TestSwarm_StepOrder(t *testing.T) {
	s := NewSwarm(testParams(3), nil)
	before := make([]dynamo.Vec2, 3)
	for i, c := range s.Chains() {
		c.Lead.Velocity = dynamo.V(1, 2)
		before[i] = c.Lead.Position
	}

	r := &recordingRenderer{}
	s.Step(r)

	want := []string{"clear", "render", "render", "render"}
	if len(r.events) != len(want) {
		t.Fatalf("events %v, want %v", r.events, want)
	}
	for i := range want {
		if r.events[i] != want[i] {
			t.Fatalf("events %v, want %v", r.events, want)
		}
	}
	for i, pts := range r.calls {
		if len(pts) != 1+physics.DefaultTrailSize {
			t.Errorf("chain %d drew %d points", i, len(pts))
		}
		if pts[0] != before[i].Add(dynamo.V(1, 2)) {
			t.Errorf("chain %d rendered before its update: %v", i, pts[0])
		}
	}
	if s.Time() != 1 {
		t.Errorf("expected time 1, got %d", s.Time())
	}
}

func TestSwarm_SwapAlways(t *testing.T) {
	p := testParams(8)
	p.SwapProbability = 1
	s := NewSwarm(p, nil)

	s.Step(nil)

	if s.Swaps() != 8 {
		t.Errorf("expected a swap per slot, got %d", s.Swaps())
	}
	for i, c := range s.Chains() {
		if c.Lead.Target != s.Targets()[i] {
			t.Errorf("value mode: chain %d should read slot %d", i, i)
		}
		if s.Owner(i) != i {
			t.Errorf("value mode should not move owners")
		}
	}
}

func TestSwarm_SwapOwners(t *testing.T) {
	p := testParams(16)
	p.SwapProbability = 1
	p.SwapMode = SwapOwners
	s := NewSwarm(p, nil)

	for i := 0; i < 5; i++ {
		s.Step(nil)
	}

	seen := make(map[int]bool)
	moved := false
	targets := s.Targets()
	for slot := range targets {
		o := s.Owner(slot)
		if seen[o] {
			t.Fatalf("owner %d appears twice", o)
		}
		seen[o] = true
		if o != slot {
			moved = true
		}
		if s.Chains()[o].Lead.Target != targets[slot] {
			t.Errorf("chain %d should read slot %d", o, slot)
		}
	}
	if !moved {
		t.Error("expected the owner permutation to change")
	}
}

func TestSwarm_SharedTrailTracksSlot(t *testing.T) {
	p := testParams(12)
	p.Chain.TrailMode = physics.TrailShared
	p.SwapProbability = 0.05
	p.SwapMode = SwapOwners
	s := NewSwarm(p, fixedPointer{pos: dynamo.V(400, 200), ok: true})

	anchors := make([]dynamo.Vec2, len(s.Chains()))
	for i, c := range s.Chains() {
		anchors[i] = c.Trail[1].Target
	}

	for step := 0; step < 50; step++ {
		fed := make([]dynamo.Vec2, len(s.Chains()))
		for i, c := range s.Chains() {
			fed[i] = c.Lead.Target
		}
		s.Step(nil)
		for i, c := range s.Chains() {
			for j, tp := range c.Trail {
				if tp.Target != fed[i] {
					t.Fatalf("step %d: chain %d trail[%d] targets %v, want %v", step, i, j, tp.Target, fed[i])
				}
			}
		}
	}

	for i, c := range s.Chains() {
		if c.Trail[1].Target == anchors[i] {
			t.Errorf("chain %d trail still on its construction anchor", i)
		}
	}
}

func TestSwarm_SingleTarget(t *testing.T) {
	p := testParams(1)
	p.SwapProbability = 0
	p.Jitter = 0
	s := NewSwarm(p, nil)

	for i := 0; i < 3; i++ {
		s.Step(nil)
	}
	for _, v := range s.Targets() {
		if !v.IsValid() {
			t.Fatalf("single target went invalid: %v", v)
		}
	}
}

func TestSwarm_Empty(t *testing.T) {
	s := NewSwarm(testParams(0), nil)
	r := &recordingRenderer{}
	s.Step(r)

	if len(r.events) != 1 || r.events[0] != "clear" {
		t.Errorf("empty swarm should only clear, got %v", r.events)
	}
	if s.MeanDistance() != 0 {
		t.Error("empty swarm mean distance should be 0")
	}
}

func TestSwarm_ResetIsDeterministic(t *testing.T) {
	s := NewSwarm(testParams(10), nil)
	for i := 0; i < 20; i++ {
		s.Step(nil)
	}
	first := s.Targets()

	s.Reset()
	if s.Time() != 0 {
		t.Fatalf("reset should zero the clock")
	}
	for i := 0; i < 20; i++ {
		s.Step(nil)
	}
	for i, v := range s.Targets() {
		if v != first[i] {
			t.Fatalf("slot %d differs after reset: %v vs %v", i, v, first[i])
		}
	}
}

func TestSwarm_SetParam(t *testing.T) {
	s := NewSwarm(testParams(4), nil)

	if err := s.SetParam("elasticity", 0.3); err != nil {
		t.Fatal(err)
	}
	for _, c := range s.Chains() {
		if c.Lead.Elasticity != 0.3 {
			t.Errorf("lead elasticity not updated")
		}
	}
	if err := s.SetParam("pull", 1); err != nil || s.Field().Pull != 1 {
		t.Errorf("pull not applied: %v", err)
	}
	if s.Params()["pull"] != 1 {
		t.Error("params should report the new pull")
	}
	if err := s.SetParam("gravity", 1); !errors.Is(err, dynamo.ErrUnknownName) {
		t.Errorf("expected ErrUnknownName, got %v", err)
	}
}

func TestRunner_Run(t *testing.T) {
	p := testParams(1)
	p.SwapProbability = 0
	p.Jitter = 0
	s := NewSwarm(p, nil)
	runner := NewRunner(s)

	cfg := dynamo.DefaultConfig()
	cfg.Frames = 300
	cfg.SampleEvery = 10

	result, err := runner.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.FramesRun != 300 {
		t.Errorf("expected 300 frames, got %d", result.FramesRun)
	}
	if len(result.Samples) != 30 {
		t.Errorf("expected 30 samples, got %d", len(result.Samples))
	}
	if len(result.Final) != 1 {
		t.Fatalf("expected one final position")
	}
	last := result.Samples[len(result.Samples)-1]
	if last.MeanDistance > 20 {
		t.Errorf("lead should track the curve, mean distance %v", last.MeanDistance)
	}
	if last.Center != dynamo.V(p.Width/2, p.Height/2) {
		t.Errorf("unset pointer should center on origin, got %v", last.Center)
	}
}

func TestRunner_InvalidConfig(t *testing.T) {
	runner := NewRunner(NewSwarm(testParams(2), nil))

	tests := []struct {
		name string
		cfg  dynamo.Config
	}{
		{"zero frames", dynamo.Config{Frames: 0}},
		{"negative frames", dynamo.Config{Frames: -5}},
		{"negative sampling", dynamo.Config{Frames: 5, SampleEvery: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runner.Run(context.Background(), tt.cfg)
			if !errors.Is(err, dynamo.ErrParameterBounds) {
				t.Errorf("expected ErrParameterBounds, got %v", err)
			}
		})
	}
}

func TestRunner_Cancel(t *testing.T) {
	runner := NewRunner(NewSwarm(testParams(2), nil))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := runner.Run(ctx, dynamo.DefaultConfig())
	if !errors.Is(err, dynamo.ErrContextCanceled) {
		t.Errorf("expected ErrContextCanceled, got %v", err)
	}
	if result == nil || result.FramesRun != 0 {
		t.Errorf("expected partial result with no frames, got %+v", result)
	}
}

func TestRunner_InvalidState(t *testing.T) {
	p := testParams(2)
	s := NewSwarm(p, nil)
	s.Chains()[1].Lead.Velocity = dynamo.V(math.NaN(), 0)

	result, err := NewRunner(s).Run(context.Background(), dynamo.DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.FramesRun != 1 || len(result.Errors) != 1 {
		t.Fatalf("expected stop after one frame with one error, got %d/%v", result.FramesRun, result.Errors)
	}
	var se dynamo.SimError
	if !errors.As(result.Errors[0], &se) || se.Chain != 1 || se.Frame != 1 {
		t.Errorf("unexpected error %v", result.Errors[0])
	}
}

type countMetric struct{ n int }

func (m *countMetric) Name() string         { return "count" }
func (m *countMetric) Observe(dynamo.Frame) { m.n++ }
func (m *countMetric) Value() float64       { return float64(m.n) }
func (m *countMetric) Reset()               { m.n = 0 }

func TestRunner_Metrics(t *testing.T) {
	runner := NewRunner(NewSwarm(testParams(3), nil))
	runner.AddMetric(&countMetric{})

	cfg := dynamo.DefaultConfig()
	cfg.Frames = 25
	result, err := runner.Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if result.Metrics["count"] != 25 {
		t.Errorf("expected 25 observations, got %v", result.Metrics["count"])
	}
}

func TestParseSwapMode(t *testing.T) {
	if m, err := ParseSwapMode("owners"); err != nil || m != SwapOwners {
		t.Errorf("ParseSwapMode(owners) = %v, %v", m, err)
	}
	if m, err := ParseSwapMode(""); err != nil || m != SwapValues {
		t.Errorf("ParseSwapMode('') = %v, %v", m, err)
	}
	if _, err := ParseSwapMode("shuffle"); !errors.Is(err, dynamo.ErrUnknownName) {
		t.Errorf("expected ErrUnknownName, got %v", err)
	}
}
