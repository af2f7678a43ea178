package particle

import (
	"math"

	"github.com/pthm-cable/liquid/flags"
	"gonum.org/v1/gonum/spatial/r2"
)

// criticalVelocity is the speed that covers one diameter per sub-step.
func (s *System) criticalVelocity(step timeStep) float64 {
	return s.diameter * step.invDt
}

func (s *System) criticalPressure(step timeStep) float64 {
	v := s.criticalVelocity(step)
	return s.def.Density * v * v
}

// solvePressure pushes apart particles packed above rest density.
func (s *System) solvePressure(step timeStep) {
	criticalPressure := s.criticalPressure(step)
	pressurePerWeight := s.def.PressureStrength * criticalPressure
	maxPressure := MaxParticlePressure * criticalPressure

	w := s.weight.data[:s.count]
	h := s.pressure.data[:s.count]
	fl := s.flags.data
	for i, wi := range w {
		h[i] = math.Min(pressurePerWeight*math.Max(0, wi-MinParticleWeight), maxPressure)
	}

	noPressure := flags.Powder | flags.Tensile
	if s.allParticleFlags.Has(noPressure) {
		for i := range h {
			if fl[i].Has(noPressure) {
				h[i] = 0
			}
		}
	}
	if s.allParticleFlags.Has(flags.StaticPressure) {
		sp := s.staticPressure.data
		for i := range h {
			if fl[i].Has(flags.StaticPressure) {
				h[i] += sp[i]
			}
		}
	}

	velocityPerPressure := step.dt / (s.def.Density * s.diameter)
	vel := s.velocity.data
	for _, c := range s.contacts {
		a, b := c.A, c.B
		f := r2.Scale(velocityPerPressure*c.Weight*(h[a]+h[b]), c.Normal)
		vel[a] = r2.Sub(vel[a], f)
		vel[b] = r2.Add(vel[b], f)
	}
}

// solveStaticPressure relaxes the pressure of static-pressure particles
// towards the weight of the particles they support. The result is applied
// by the pressure pass of the next sub-step.
func (s *System) solveStaticPressure(step timeStep) {
	if !s.allParticleFlags.Has(flags.StaticPressure) {
		return
	}
	criticalPressure := s.criticalPressure(step)
	pressurePerWeight := s.def.StaticPressureStrength * criticalPressure
	maxPressure := MaxParticlePressure * criticalPressure
	relaxation := s.def.StaticPressureRelaxation

	sp := s.staticPressure.data[:s.count]
	acc := s.accumulation.data[:s.count]
	w := s.weight.data
	fl := s.flags.data
	for t := 0; t < s.def.StaticPressureIterations; t++ {
		clear(acc)
		for _, c := range s.contacts {
			if c.Flags.Has(flags.StaticPressure) {
				acc[c.A] += c.Weight * sp[c.B]
				acc[c.B] += c.Weight * sp[c.A]
			}
		}
		for i := range sp {
			if !fl[i].Has(flags.StaticPressure) {
				sp[i] = 0
				continue
			}
			h := (acc[i] + pressurePerWeight*(w[i]-MinParticleWeight)) / (w[i] + relaxation)
			sp[i] = math.Max(0, math.Min(h, maxPressure))
		}
	}
}
