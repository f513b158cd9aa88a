package sim

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/heartswarm/internal/dynamo"
)

func TestSim(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Swarm Suite")
}

var _ = Describe("Swarm", func() {
	var (
		params  Params
		pointer *fixedPointer
		swarm   *Swarm
	)

	BeforeEach(func() {
		params = DefaultParams()
		params.Targets = 24
		params.SwapProbability = 0
		pointer = &fixedPointer{}
		swarm = NewSwarm(params, pointer)
	})

	Context("with the pointer unset", func() {
		It("centers the curve on the canvas origin", func() {
			swarm.Step(nil)
			Expect(swarm.Field().Center(swarm.Pointer())).To(Equal(dynamo.V(params.Width/2, params.Height/2)))
		})
	})

	Context("when the pointer moves", func() {
		It("drags the curve center half way towards it", func() {
			pointer.pos = dynamo.V(params.Width, params.Height)
			pointer.ok = true
			swarm.Step(nil)

			center := swarm.Field().Center(swarm.Pointer())
			Expect(center.X).To(BeNumerically("~", params.Width*0.75, 1e-9))
			Expect(center.Y).To(BeNumerically("~", params.Height*0.75, 1e-9))
		})

		It("shifts every target by the same offset as the center", func() {
			swarm.Step(nil)
			before := swarm.Targets()

			swarm.Reset()
			pointer.pos = dynamo.V(params.Width/2+40, params.Height/2-20)
			pointer.ok = true
			swarm.Step(nil)
			after := swarm.Targets()

			for i := range before {
				Expect(after[i].X - before[i].X).To(BeNumerically("~", 20, 1e-9))
				Expect(after[i].Y - before[i].Y).To(BeNumerically("~", -10, 1e-9))
			}
		})
	})

	Describe("a headless run", func() {
		It("keeps the leads close to the moving curve", func() {
			runner := NewRunner(swarm)
			cfg := dynamo.DefaultConfig()
			cfg.Frames = 400
			cfg.SampleEvery = 100

			result, err := runner.Run(context.Background(), cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Errors).To(BeEmpty())
			Expect(result.Samples).To(HaveLen(4))
			for _, sample := range result.Samples {
				Expect(sample.MeanDistance).To(BeNumerically("<", 40))
			}
			Expect(result.Final).To(HaveLen(params.Targets))
		})
	})
})
