package particle

import (
	"math"

	"github.com/pthm-cable/liquid/flags"
	"gonum.org/v1/gonum/spatial/r2"
)

// solveViscosity damps approaching contacts and runs the flag-specific
// short range terms: viscous averaging, repulsion and powder.
func (s *System) solveViscosity(step timeStep) {
	s.solveDamping(step)
	if s.allParticleFlags.Has(flags.Viscous) {
		s.solveViscous()
	}
	if s.allParticleFlags.Has(flags.Repulsive) {
		s.solveRepulsive(step)
	}
	if s.allParticleFlags.Has(flags.Powder) {
		s.solvePowder(step)
	}
}

// solveDamping removes the approaching part of the relative velocity with a
// linear term and a quadratic term capped at MaxParticleForce.
func (s *System) solveDamping(step timeStep) {
	linearDamping := s.def.DampingStrength
	quadraticDamping := 1 / s.criticalVelocity(step)
	vel := s.velocity.data
	for _, c := range s.contacts {
		a, b := c.A, c.B
		vn := r2.Dot(r2.Sub(vel[b], vel[a]), c.Normal)
		if vn >= 0 {
			continue
		}
		damping := math.Max(linearDamping*c.Weight, math.Min(-quadraticDamping*vn, MaxParticleForce))
		f := r2.Scale(damping*vn, c.Normal)
		vel[a] = r2.Add(vel[a], f)
		vel[b] = r2.Sub(vel[b], f)
	}
}

func (s *System) solveViscous() {
	viscous := s.def.ViscousStrength
	vel := s.velocity.data
	for _, c := range s.contacts {
		if !c.Flags.Has(flags.Viscous) {
			continue
		}
		a, b := c.A, c.B
		f := r2.Scale(viscous*c.Weight, r2.Sub(vel[b], vel[a]))
		vel[a] = r2.Add(vel[a], f)
		vel[b] = r2.Sub(vel[b], f)
	}
}

func (s *System) solveRepulsive(step timeStep) {
	repulsive := s.def.RepulsiveStrength * s.criticalVelocity(step)
	vel := s.velocity.data
	group := s.group.data
	for _, c := range s.contacts {
		if !c.Flags.Has(flags.Repulsive) || group[c.A] == group[c.B] {
			continue
		}
		f := r2.Scale(repulsive*c.Weight, c.Normal)
		vel[c.A] = r2.Sub(vel[c.A], f)
		vel[c.B] = r2.Add(vel[c.B], f)
	}
}

func (s *System) solvePowder(step timeStep) {
	powder := s.def.PowderStrength * s.criticalVelocity(step)
	minWeight := 1 - s.def.Stride
	vel := s.velocity.data
	for _, c := range s.contacts {
		if !c.Flags.Has(flags.Powder) || c.Weight <= minWeight {
			continue
		}
		f := r2.Scale(powder*(c.Weight-minWeight), c.Normal)
		vel[c.A] = r2.Sub(vel[c.A], f)
		vel[c.B] = r2.Add(vel[c.B], f)
	}
}
