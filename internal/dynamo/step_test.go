package dynamo_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/qgsim/internal/dynamo"
	"github.com/san-kum/qgsim/internal/physics"
)

func toyParams() dynamo.Params {
	p := dynamo.DefaultParams()
	p.QuantumRadius = 1e-1
	p.Lambda = 0.1
	p.Dt = 1e-3
	p.Evaporation = false
	p.Coupling = 1.0
	p.TestMass = 1.0
	p.RadiusMin = 1e-6
	p.MassMin = 0
	return p
}

// floorParams shrinks the radius quickly onto its floor. Once it sits there
// dR/dt is zero, so the transition jumps from negative to zero and crosses.
func floorParams() dynamo.Params {
	p := toyParams()
	p.RadiusScale = 1.0
	p.RadiusMin = 0.5
	p.DensityScale = 0
	p.Lambda = 1.0
	p.Threshold = -1e-12
	return p
}

var _ = Describe("Step", func() {
	Context("with evaporation disabled", func() {
		It("shrinks the radius every step and leaves mass untouched", func() {
			p := toyParams()
			s := dynamo.NewState(1e5, 1.0)

			for i := 0; i < 10; i++ {
				next, _ := dynamo.Step(s, p)
				Expect(next.Radius).To(BeNumerically("<", s.Radius))
				Expect(next.Mass).To(Equal(1e5))
				s = next
			}
			Expect(s.Steps).To(Equal(10))
			Expect(s.Time).To(BeNumerically("~", 10*p.Dt, 1e-12))
		})

		It("keeps mass invariant regardless of the decay scale", func() {
			p := toyParams()
			p.DecayScale = 1e40
			s := dynamo.NewState(1e5, 1.0)
			for i := 0; i < 100; i++ {
				s, _ = dynamo.Step(s, p)
			}
			Expect(s.Mass).To(Equal(1e5))
		})
	})

	Context("with evaporation enabled", func() {
		It("reaches the mass floor and holds it", func() {
			p := toyParams()
			p.Evaporation = true
			p.DecayScale = 1e30
			p.MassMin = 1e3
			s := dynamo.NewState(1e5, 1.0)

			reached := -1
			for i := 0; i < 50; i++ {
				next, _ := dynamo.Step(s, p)
				Expect(next.Mass).To(BeNumerically(">=", p.MassMin))
				Expect(next.Mass).To(BeNumerically("<=", s.Mass))
				if next.Mass == p.MassMin && reached < 0 {
					reached = i
				}
				s = next
			}
			Expect(reached).To(BeNumerically(">=", 0))
			Expect(s.Mass).To(Equal(p.MassMin))
		})

		It("never increases mass above the starting value", func() {
			p := toyParams()
			p.Evaporation = true
			p.DecayScale = 1e15
			p.MassMin = 1e2
			s := dynamo.NewState(1e6, 1.0)
			for i := 0; i < 500; i++ {
				next, _ := dynamo.Step(s, p)
				Expect(next.Mass).To(BeNumerically("<=", s.Mass))
				s = next
			}
		})
	})

	It("respects the radius floor", func() {
		p := floorParams()
		s := dynamo.NewState(1e12, 1.0)
		for i := 0; i < 200; i++ {
			s, _ = dynamo.Step(s, p)
			Expect(s.Radius).To(BeNumerically(">=", p.RadiusMin))
		}
		Expect(s.Radius).To(Equal(p.RadiusMin))
	})

	It("uses the initial radius as the previous radius on the first step", func() {
		p := toyParams()
		p.DensityScale = 1e-9
		r0 := 1.0
		s0 := dynamo.NewState(1e5, r0)

		s1, _ := dynamo.Step(s0, p)

		Expect(s1.PrevRadius).To(Equal(r0))
		rate := (r0 - s1.Radius) / p.Dt
		Expect(rate).To(BeNumerically(">", 0))

		want := physics.TransitionFunction(
			physics.QuantumDensity(p.DensityScale, s1.Radius, p.QuantumRadius),
			physics.SphereVolume(s1.Radius),
			rate,
			p.Lambda,
		)
		Expect(s1.Transition).To(Equal(want))
	})

	It("carries the previous radius forward between steps", func() {
		p := toyParams()
		s1, _ := dynamo.Step(dynamo.NewState(1e5, 1.0), p)
		s2, _ := dynamo.Step(s1, p)
		Expect(s2.PrevRadius).To(Equal(s1.Radius))
	})

	It("latches the transition flag and tolerates stepping past the crossing", func() {
		p := floorParams()
		s := dynamo.NewState(1e12, 1.0)

		first := -1
		for i := 0; i < 100; i++ {
			var crossed bool
			s, crossed = dynamo.Step(s, p)
			if crossed && first < 0 {
				first = i
			}
			if first >= 0 {
				Expect(s.Transitioned).To(BeTrue())
			}
		}
		Expect(first).To(BeNumerically(">", 0))
	})

	It("is deterministic across replays with an extra step", func() {
		p := floorParams()
		run := func(steps int) int {
			s := dynamo.NewState(1e12, 1.0)
			for i := 0; i < steps; i++ {
				var crossed bool
				s, crossed = dynamo.Step(s, p)
				if crossed {
					return i
				}
			}
			return -1
		}

		first := run(100)
		Expect(first).To(BeNumerically(">=", 0))
		Expect(run(first + 1)).To(Equal(first))
		Expect(run(first + 2)).To(Equal(first))
	})

	It("propagates non-finite values instead of failing", func() {
		p := toyParams()
		p.Evaporation = true
		p.DecayScale = 0
		p.MassMin = 0
		s := dynamo.NewState(0, 1.0)

		next, _ := dynamo.Step(s, p)
		Expect(next.Finite()).To(BeFalse())
		Expect(math.IsNaN(next.Mass)).To(BeTrue())
	})
})

var _ = Describe("Params", func() {
	DescribeTable("Validate rejects bad configuration",
		func(mutate func(*dynamo.Params)) {
			p := dynamo.DefaultParams()
			mutate(&p)
			Expect(p.Validate()).To(MatchError(dynamo.ErrConfiguration))
		},
		Entry("zero dt", func(p *dynamo.Params) { p.Dt = 0 }),
		Entry("negative dt", func(p *dynamo.Params) { p.Dt = -1e-3 }),
		Entry("NaN dt", func(p *dynamo.Params) { p.Dt = math.NaN() }),
		Entry("negative radius floor", func(p *dynamo.Params) { p.RadiusMin = -1 }),
		Entry("negative mass floor", func(p *dynamo.Params) { p.MassMin = -1 }),
		Entry("zero quantum radius", func(p *dynamo.Params) { p.QuantumRadius = 0 }),
		Entry("zero test mass", func(p *dynamo.Params) { p.TestMass = 0 }),
		Entry("NaN threshold", func(p *dynamo.Params) { p.Threshold = math.NaN() }),
	)

	It("accepts the defaults", func() {
		Expect(dynamo.DefaultParams().Validate()).To(Succeed())
	})

	It("refuses an initial state below the floors", func() {
		p := dynamo.DefaultParams()
		Expect(p.Admits(dynamo.NewState(1e30, 1e4))).To(Succeed())
		Expect(p.Admits(dynamo.NewState(1e20, 1e4))).To(MatchError(dynamo.ErrConfiguration))
		Expect(p.Admits(dynamo.NewState(1e30, 10))).To(MatchError(dynamo.ErrConfiguration))
		Expect(p.Admits(dynamo.NewState(1e30, 0))).To(MatchError(dynamo.ErrConfiguration))
	})
})
