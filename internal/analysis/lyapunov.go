package analysis

import (
	"math"

	"github.com/san-kum/heartswarm/internal/dynamo"
	"github.com/san-kum/heartswarm/internal/sim"
)

// Divergence estimates the per-frame exponential rate at which two swarms
// built from the same params separate after the first lead is nudged by
// perturbation. Both swarms draw the same random sequence, so the targets
// match and the rate reflects the springs alone; negative means nearby
// swarms reconverge.
func Divergence(p sim.Params, frames int, perturbation float64) float64 {
	a := sim.NewSwarm(p, nil)
	b := sim.NewSwarm(p, nil)
	if len(a.Chains()) == 0 || frames <= 0 || perturbation <= 0 {
		return 0
	}
	b.Chains()[0].Lead.Position = b.Chains()[0].Lead.Position.Add(dynamo.V(perturbation, 0))

	sumLog := 0.0
	count := 0
	for i := 0; i < frames; i++ {
		a.Step(nil)
		b.Step(nil)

		sep := separation(a, b)
		if sep <= 0 || math.IsNaN(sep) || math.IsInf(sep, 0) {
			break
		}
		sumLog += math.Log(sep / perturbation)
		count++

		// Renormalize so the separation stays in the linear regime.
		renormalize(a, b, perturbation/sep)
	}

	if count == 0 {
		return 0
	}
	return sumLog / float64(count)
}

func separation(a, b *sim.Swarm) float64 {
	sum := 0.0
	for i, ca := range a.Chains() {
		for j, pa := range ca.Points() {
			pb := b.Chains()[i].Points()[j]
			d := pb.Position.Sub(pa.Position)
			v := pb.Velocity.Sub(pa.Velocity)
			if !d.IsValid() || !v.IsValid() {
				continue
			}
			sum += d.X*d.X + d.Y*d.Y + v.X*v.X + v.Y*v.Y
		}
	}
	return math.Sqrt(sum)
}

func renormalize(a, b *sim.Swarm, scale float64) {
	for i, ca := range a.Chains() {
		bp := b.Chains()[i].Points()
		for j, pa := range ca.Points() {
			pb := bp[j]
			if !pa.Position.IsValid() || !pa.Velocity.IsValid() {
				continue
			}
			pb.Position = pa.Position.Add(pb.Position.Sub(pa.Position).Scale(scale))
			pb.Velocity = pa.Velocity.Add(pb.Velocity.Sub(pa.Velocity).Scale(scale))
		}
	}
}
