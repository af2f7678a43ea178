package particle

import (
	"math"

	"github.com/pthm-cable/liquid/flags"
	"gonum.org/v1/gonum/spatial/r2"
)

// solveTensile pulls tensile particles together along the weighted normal
// of their neighborhood, which is large at the fluid surface.
func (s *System) solveTensile(step timeStep) {
	if !s.allParticleFlags.Has(flags.Tensile) {
		return
	}
	acc := s.accumulation2.data[:s.count]
	clear(acc)
	for _, c := range s.contacts {
		if !c.Flags.Has(flags.Tensile) {
			continue
		}
		wn := r2.Scale((1-c.Weight)*c.Weight, c.Normal)
		acc[c.A] = r2.Sub(acc[c.A], wn)
		acc[c.B] = r2.Add(acc[c.B], wn)
	}

	criticalVelocity := s.criticalVelocity(step)
	pressureStrength := s.def.SurfaceTensionPressureStrength * criticalVelocity
	normalStrength := s.def.SurfaceTensionNormalStrength * criticalVelocity
	maxVelocityVariation := MaxParticleForce * criticalVelocity
	w := s.weight.data
	vel := s.velocity.data
	for _, c := range s.contacts {
		if !c.Flags.Has(flags.Tensile) {
			continue
		}
		a, b := c.A, c.B
		h := w[a] + w[b]
		sn := r2.Dot(r2.Sub(acc[b], acc[a]), c.Normal)
		fn := math.Min(pressureStrength*(h-2)+normalStrength*sn, maxVelocityVariation) * c.Weight
		f := r2.Scale(fn, c.Normal)
		vel[a] = r2.Sub(vel[a], f)
		vel[b] = r2.Add(vel[b], f)
	}
}

// solveSolid ejects particles of one group out of a solid group, harder the
// deeper they are inside it.
func (s *System) solveSolid(step timeStep) {
	if !s.allGroupFlags.Has(flags.Solid) {
		return
	}
	ejectionStrength := step.invDt * s.def.EjectionStrength
	depth := s.depth.data
	group := s.group.data
	vel := s.velocity.data
	for _, c := range s.contacts {
		a, b := c.A, c.B
		if group[a] == group[b] {
			continue
		}
		h := depth[a] + depth[b]
		f := r2.Scale(ejectionStrength*h*c.Weight, c.Normal)
		vel[a] = r2.Sub(vel[a], f)
		vel[b] = r2.Add(vel[b], f)
	}
}

func (s *System) solveColorMixing(timeStep) {
	if !s.allParticleFlags.Has(flags.ColorMixing) {
		return
	}
	strength := int32(256 * s.def.ColorMixingStrength)
	fl := s.flags.data
	color := s.color.data
	for _, c := range s.contacts {
		a, b := c.A, c.B
		if fl[a]&fl[b]&flags.ColorMixing != 0 {
			color[a].Mix(&color[b], strength)
		}
	}
}
