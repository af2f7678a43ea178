package particle

import (
	"math"

	"github.com/pthm-cable/liquid/flags"
	"github.com/pthm-cable/liquid/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

// solveBarrier stops particles from crossing the segments between bonded
// barrier particles within the lookahead window.
func (s *System) solveBarrier(step timeStep) {
	if !s.allParticleFlags.Has(flags.Barrier) {
		return
	}
	pos := s.position.data
	vel := s.velocity.data
	fl := s.flags.data
	group := s.group.data

	for i := 0; i < s.count; i++ {
		if fl[i]&(flags.Barrier|flags.Wall) == flags.Barrier|flags.Wall {
			vel[i] = r2.Vec{}
		}
	}

	tmax := s.def.BarrierCollisionTime * step.dt
	mass := s.ParticleMass()
	for _, pair := range s.pairs {
		if !pair.Flags.Has(flags.Barrier) {
			continue
		}
		a, b := pair.A, pair.B
		pa, pb := pos[a], pos[b]
		box := geom.Union(
			geom.BoxOf(pa, r2.Add(pa, r2.Scale(tmax, vel[a]))),
			geom.BoxOf(pb, r2.Add(pb, r2.Scale(tmax, vel[b]))),
		)
		ga, gb := group[a], group[b]
		va, vb := vel[a], vel[b]
		pba := r2.Sub(pb, pa)
		vba := r2.Sub(vb, va)

		e := s.insideBounds(box)
		for c, ok := e.Next(); ok; c, ok = e.Next() {
			gc := group[c]
			if gc == ga || gc == gb {
				continue
			}
			pc := pos[c]
			vc := vel[c]
			// Solve cross(pb(t)-pa(t), pc(t)-pa(t)) = 0 for the crossing time.
			pca := r2.Sub(pc, pa)
			vca := r2.Sub(vc, va)
			e2 := r2.Cross(vba, vca)
			e1 := r2.Cross(pba, vca) - r2.Cross(pca, vba)
			e0 := r2.Cross(pba, pca)

			sp, hit := barrierCrossing(e2, e1, e0, tmax, pba, vba, pca, vca)
			if !hit {
				continue
			}

			// Give c the velocity of the barrier at the crossing point and
			// take it back after the move so momentum is preserved.
			dv := r2.Sub(r2.Add(va, r2.Scale(sp, vba)), vc)
			f := r2.Scale(mass, dv)
			if gc != nil && gc.flags.Has(flags.Rigid) {
				gc.applyRigidImpulse(f, pc)
			} else {
				vel[c] = r2.Add(vc, dv)
			}
			s.applyForce(int(c), r2.Scale(-step.invDt, f))
		}
	}
}

// barrierCrossing finds the first time in [0, tmax) at which c lies on the
// moving segment a-b and returns the segment parameter there.
func barrierCrossing(e2, e1, e0, tmax float64, pba, vba, pca, vca r2.Vec) (float64, bool) {
	param := func(t float64) (float64, bool) {
		if !(t >= 0 && t < tmax) {
			return 0, false
		}
		qba := r2.Add(pba, r2.Scale(t, vba))
		qca := r2.Add(pca, r2.Scale(t, vca))
		sp := r2.Dot(qba, qca) / r2.Dot(qba, qba)
		return sp, sp >= 0 && sp <= 1
	}

	if e2 == 0 {
		if e1 == 0 {
			return 0, false
		}
		return param(-e0 / e1)
	}

	det := e1*e1 - 4*e0*e2
	if det < 0 {
		return 0, false
	}
	sqrtDet := math.Sqrt(det)
	t1 := (-e1 - sqrtDet) / (2 * e2)
	t2 := (-e1 + sqrtDet) / (2 * e2)
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	if sp, ok := param(t1); ok {
		return sp, true
	}
	return param(t2)
}
