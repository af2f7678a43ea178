package particle

import (
	"math"

	"github.com/pthm-cable/liquid/flags"
	"github.com/pthm-cable/liquid/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

// solveBodyCoupling exchanges impulses between particles and the bodies
// they touch, then clips particle motion against fixture surfaces. It is
// the only pass that writes body state.
func (s *System) solveBodyCoupling(step timeStep) {
	if len(s.bodyContacts) > 0 {
		s.solveBodyContacts(step)
	}
	if s.world != nil {
		s.solveCollision(step)
	}
	if s.allParticleFlags.Has(flags.Wall) {
		vel := s.velocity.data
		for i, f := range s.flags.data[:s.count] {
			if f.Has(flags.Wall) {
				vel[i] = r2.Vec{}
			}
		}
	}
}

func (s *System) solveBodyContacts(step timeStep) {
	criticalVelocity := s.criticalVelocity(step)
	pressurePerWeight := s.def.PressureStrength * s.criticalPressure(step)
	velocityPerPressure := step.dt / (s.def.Density * s.diameter)
	linearDamping := s.def.DampingStrength
	quadraticDamping := 1 / criticalVelocity
	viscous := s.def.ViscousStrength
	powder := s.def.PowderStrength * criticalVelocity
	minWeight := 1 - s.def.Stride
	invMass := s.particleInvMass()

	pos := s.position.data
	vel := s.velocity.data
	h := s.pressure.data
	fl := s.flags.data
	for _, c := range s.bodyContacts {
		a := c.Index
		p := pos[a]
		n := c.Normal
		w := c.Weight
		m := c.Mass
		b := c.Body

		// Pressure against the body surface.
		f := r2.Scale(velocityPerPressure*w*m*(h[a]+pressurePerWeight*w), n)
		vel[a] = r2.Sub(vel[a], r2.Scale(invMass, f))
		b.ApplyLinearImpulse(f, p)

		// Damping of the approaching relative velocity.
		vn := r2.Dot(r2.Sub(b.LinearVelocityFromWorldPoint(p), vel[a]), n)
		if vn < 0 {
			damping := math.Max(linearDamping*w, math.Min(-quadraticDamping*vn, MaxParticleForce))
			f := r2.Scale(damping*m*vn, n)
			vel[a] = r2.Add(vel[a], r2.Scale(invMass, f))
			b.ApplyLinearImpulse(r2.Scale(-1, f), p)
		}

		if fl[a].Has(flags.Viscous) {
			v := r2.Sub(b.LinearVelocityFromWorldPoint(p), vel[a])
			f := r2.Scale(viscous*m*w, v)
			vel[a] = r2.Add(vel[a], r2.Scale(invMass, f))
			b.ApplyLinearImpulse(r2.Scale(-1, f), p)
		}

		if fl[a].Has(flags.Powder) && w > minWeight {
			f := r2.Scale(powder*m*(w-minWeight), n)
			vel[a] = r2.Sub(vel[a], r2.Scale(invMass, f))
			b.ApplyLinearImpulse(f, p)
		}

		// Static pressure particles are damped harder so stacks settle.
		if fl[a].Has(flags.StaticPressure) {
			vn := r2.Dot(r2.Sub(b.LinearVelocityFromWorldPoint(p), vel[a]), n)
			if vn < 0 {
				f := r2.Scale(0.5*m*vn, n)
				vel[a] = r2.Add(vel[a], r2.Scale(invMass, f))
				b.ApplyLinearImpulse(r2.Scale(-1, f), p)
			}
		}
	}
}

// solveCollision casts each particle's sub-step motion against nearby
// fixtures and stops it just outside the first surface hit.
func (s *System) solveCollision(step timeStep) {
	pos := s.position.data
	vel := s.velocity.data
	fl := s.flags.data

	box := geom.EmptyBox()
	for i := 0; i < s.count; i++ {
		p1 := pos[i]
		p2 := r2.Add(p1, r2.Scale(step.dt, vel[i]))
		box = geom.Union(box, geom.BoxOf(p1, p2))
	}

	mass := s.ParticleMass()
	s.world.QueryAABB(box, func(f Fixture) bool {
		if f.IsSensor() {
			return true
		}
		e := s.insideBounds(geom.Extend(f.AABB(), s.diameter))
		for a, ok := e.Next(); ok; a, ok = e.Next() {
			if fl[a].Has(flags.Zombie) {
				continue
			}
			ap := pos[a]
			av := vel[a]
			in := geom.RayCastInput{
				P1:          ap,
				P2:          r2.Add(ap, r2.Scale(step.dt, av)),
				MaxFraction: 1,
			}
			out, hit := f.RayCast(in)
			if !hit {
				continue
			}
			n := out.Normal
			p := r2.Add(
				r2.Add(r2.Scale(1-out.Fraction, in.P1), r2.Scale(out.Fraction, in.P2)),
				r2.Scale(LinearSlop, n),
			)
			v := r2.Scale(step.invDt, r2.Sub(p, ap))
			vel[a] = v
			f.Body().ApplyLinearImpulse(r2.Scale(mass, r2.Sub(av, v)), p)
		}
		return true
	})
}
