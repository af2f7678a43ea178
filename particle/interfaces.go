package particle

import (
	"github.com/pthm-cable/liquid/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

// BodyWorld is the rigid-body world a particle system lives in.
type BodyWorld interface {
	Gravity() r2.Vec
	// IsLocked reports whether the world is in the middle of a step.
	IsLocked() bool
	// QueryAABB calls fn for every fixture whose bounds overlap box until
	// fn returns false.
	QueryAABB(box r2.Box, fn func(Fixture) bool)
}

// Fixture is a shape attached to a body.
type Fixture interface {
	Body() Body
	IsSensor() bool
	AABB() r2.Box
	ComputeDistance(p r2.Vec) (float64, r2.Vec)
	RayCast(in geom.RayCastInput) (geom.RayCastOutput, bool)
}

// Body is the rigid-body state read and written by body coupling.
type Body interface {
	WorldCenter() r2.Vec
	Mass() float64
	// Inertia is the rotational inertia about the center of mass.
	Inertia() float64
	LinearVelocityFromWorldPoint(p r2.Vec) r2.Vec
	ApplyLinearImpulse(impulse, point r2.Vec)
}

// DestructionListener is told about particles and groups the system
// removes during compaction.
type DestructionListener interface {
	// ParticleDestroyed is called for destroyed particles carrying the
	// DestructionListener flag, before their index is reused.
	ParticleDestroyed(s *System, index int)
	// GroupDestroyed is called before a group is removed.
	GroupDestroyed(g *Group)
}

// PhaseTimer receives the name of each solver phase as it starts.
type PhaseTimer interface {
	StartPhase(name string)
}
