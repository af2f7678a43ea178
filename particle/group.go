package particle

import (
	"github.com/pthm-cable/liquid/flags"
	"github.com/pthm-cable/liquid/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

// Group is a contiguous range of particles created together. Its aggregate
// statistics are computed on first use after each sub-step and cached.
type Group struct {
	system     *System
	firstIndex int
	lastIndex  int
	flags      flags.Group
	strength   float64
	transform  geom.Transform
	userData   any
	destroyed  bool

	// stats is nil until computed and after every invalidation.
	stats *groupStats
}

type groupStats struct {
	mass            float64
	inertia         float64
	center          r2.Vec
	linearVelocity  r2.Vec
	angularVelocity float64
}

// System returns the owning particle system.
func (g *Group) System() *System { return g.system }

// BufferIndex returns the index of the group's first particle.
func (g *Group) BufferIndex() int { return g.firstIndex }

// ParticleCount returns the number of particles in the group.
func (g *Group) ParticleCount() int { return g.lastIndex - g.firstIndex }

// ContainsParticle reports whether particle i belongs to the group.
func (g *Group) ContainsParticle(i int) bool {
	return g.firstIndex <= i && i < g.lastIndex
}

// IsDestroyed reports whether the group was removed from its system.
func (g *Group) IsDestroyed() bool { return g.destroyed }

// Strength returns the bond strength of the group.
func (g *Group) Strength() float64 { return g.strength }

// UserData returns the value attached with SetUserData or GroupDef.UserData.
func (g *Group) UserData() any { return g.userData }

// SetUserData attaches an arbitrary value to the group.
func (g *Group) SetUserData(data any) { g.userData = data }

// AllParticleFlags returns the union of the flags of every particle in the group.
func (g *Group) AllParticleFlags() flags.Particle {
	var f flags.Particle
	for _, pf := range g.system.flags.data[g.firstIndex:g.lastIndex] {
		f |= pf
	}
	return f
}

// GroupFlags returns the public group flags.
func (g *Group) GroupFlags() flags.Group {
	return g.flags.Public()
}

// SetGroupFlags replaces the public group flags. System-reserved bits are
// kept as they are; passing any of them returns ErrInternalGroupFlags after
// applying the public bits.
func (g *Group) SetGroupFlags(f flags.Group) error {
	g.system.setGroupFlagsInternal(g, f.Public()|g.flags.Internal())
	if f.Internal() != 0 {
		return ErrInternalGroupFlags
	}
	return nil
}

func (s *System) setGroupFlagsInternal(g *Group, f flags.Group) {
	old := g.flags
	if (old^f).Has(flags.Solid) {
		f |= flags.NeedsUpdateDepth
	}
	if old&^f != 0 {
		s.needsUpdateAllGroupFlags = true
	}
	s.allGroupFlags |= f
	g.flags = f
}

func (g *Group) statistics() *groupStats {
	if g.stats != nil {
		return g.stats
	}
	s := g.system
	pos := s.position.data
	vel := s.velocity.data
	m := s.ParticleMass()

	// Particles share one mass, so mass-weighted means are plain means.
	n := g.lastIndex - g.firstIndex
	st := &groupStats{mass: m * float64(n)}
	for i := g.firstIndex; i < g.lastIndex; i++ {
		st.center = r2.Add(st.center, pos[i])
		st.linearVelocity = r2.Add(st.linearVelocity, vel[i])
	}
	if n > 0 {
		st.center = r2.Scale(1/float64(n), st.center)
		st.linearVelocity = r2.Scale(1/float64(n), st.linearVelocity)
	}
	var angular float64
	for i := g.firstIndex; i < g.lastIndex; i++ {
		p := r2.Sub(pos[i], st.center)
		v := r2.Sub(vel[i], st.linearVelocity)
		st.inertia += m * r2.Dot(p, p)
		angular += m * r2.Cross(p, v)
	}
	if st.inertia > 0 {
		st.angularVelocity = angular / st.inertia
	}
	g.stats = st
	return st
}

// UpdateStatistics computes the cached statistics if they are stale.
func (g *Group) UpdateStatistics() { g.statistics() }

// Mass returns the total mass of the group.
func (g *Group) Mass() float64 { return g.statistics().mass }

// Inertia returns the rotational inertia about the center of mass.
func (g *Group) Inertia() float64 { return g.statistics().inertia }

// Center returns the center of mass.
func (g *Group) Center() r2.Vec { return g.statistics().center }

// LinearVelocity returns the mass-weighted mean velocity.
func (g *Group) LinearVelocity() r2.Vec { return g.statistics().linearVelocity }

// AngularVelocity returns the angular velocity about the center of mass.
func (g *Group) AngularVelocity() float64 { return g.statistics().angularVelocity }

// Transform returns the pose of a rigid group. Other groups keep the pose
// they were created with.
func (g *Group) Transform() geom.Transform { return g.transform }

// Position returns the origin of the group transform.
func (g *Group) Position() r2.Vec { return g.transform.P }

// Angle returns the rotation of the group transform in radians.
func (g *Group) Angle() float64 { return g.transform.Q.Angle() }

// LinearVelocityFromWorldPoint returns the velocity of a point moving
// rigidly with the group.
func (g *Group) LinearVelocityFromWorldPoint(p r2.Vec) r2.Vec {
	st := g.statistics()
	return r2.Add(st.linearVelocity, geom.Cross(st.angularVelocity, r2.Sub(p, st.center)))
}

// ApplyForce spreads force evenly over the group's particles.
func (g *Group) ApplyForce(force r2.Vec) {
	g.system.ApplyForce(g.firstIndex, g.lastIndex, force)
}

// ApplyLinearImpulse spreads impulse evenly over the group's particles.
func (g *Group) ApplyLinearImpulse(impulse r2.Vec) {
	g.system.ApplyLinearImpulse(g.firstIndex, g.lastIndex, impulse)
}

// applyRigidImpulse changes the velocity of every member as if impulse hit
// a rigid body at point.
func (g *Group) applyRigidImpulse(impulse, point r2.Vec) {
	st := g.statistics()
	var dv r2.Vec
	var dw float64
	if st.mass > 0 {
		dv = r2.Scale(1/st.mass, impulse)
	}
	if st.inertia > 0 {
		dw = r2.Cross(r2.Sub(point, st.center), impulse) / st.inertia
	}
	pos := g.system.position.data
	vel := g.system.velocity.data
	for i := g.firstIndex; i < g.lastIndex; i++ {
		vel[i] = r2.Add(vel[i], r2.Add(dv, geom.Cross(dw, r2.Sub(pos[i], st.center))))
	}
	st.linearVelocity = r2.Add(st.linearVelocity, dv)
	st.angularVelocity += dw
}

// DestroyParticles marks every particle of the group for destruction at
// the end of the next step. While the world is locked it does nothing and
// returns ErrWorldLocked.
func (g *Group) DestroyParticles() error {
	s := g.system
	if s.locked() {
		s.log.Warn("destroy particles while locked", "op", "Group.DestroyParticles", "particles", g.ParticleCount())
		return ErrWorldLocked
	}
	for i := g.firstIndex; i < g.lastIndex; i++ {
		s.destroyParticle(i, false)
	}
	return nil
}
