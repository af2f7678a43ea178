package particle

import (
	"math"

	"github.com/pthm-cable/liquid/flags"
	"github.com/pthm-cable/liquid/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

// solveRigid fits the rest shape of each rigid group onto its particles and
// sets velocities that carry every member to the predicted rigid pose.
func (s *System) solveRigid(step timeStep) {
	if !s.allGroupFlags.Has(flags.Rigid) {
		return
	}
	pos := s.position.data
	vel := s.velocity.data
	rest := s.restPosition.data
	for _, g := range s.groups {
		if !g.flags.Has(flags.Rigid) || g.firstIndex >= g.lastIndex {
			continue
		}
		st := g.statistics()
		if st.mass <= 0 {
			continue
		}

		var restCenter r2.Vec
		for i := g.firstIndex; i < g.lastIndex; i++ {
			restCenter = r2.Add(restCenter, rest[i])
		}
		restCenter = r2.Scale(1/float64(g.lastIndex-g.firstIndex), restCenter)

		var sn, cs float64
		for i := g.firstIndex; i < g.lastIndex; i++ {
			q := r2.Sub(rest[i], restCenter)
			p := r2.Sub(pos[i], st.center)
			sn += r2.Cross(q, p)
			cs += r2.Dot(q, p)
		}
		angle := g.transform.Q.Angle()
		if sn != 0 || cs != 0 {
			angle = math.Atan2(sn, cs)
		}

		rot := geom.NewRot(angle + step.dt*st.angularVelocity)
		center := r2.Add(st.center, r2.Scale(step.dt, st.linearVelocity))
		for i := g.firstIndex; i < g.lastIndex; i++ {
			goal := r2.Add(center, rot.Apply(r2.Sub(rest[i], restCenter)))
			vel[i] = r2.Scale(step.invDt, r2.Sub(goal, pos[i]))
		}
		g.transform = geom.Transform{
			P: r2.Sub(center, rot.Apply(restCenter)),
			Q: rot,
		}
	}
}
