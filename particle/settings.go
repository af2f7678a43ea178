// Package particle implements a particle system solver coupled to a rigid-body world.
//
// Particles are rows across parallel attribute buffers. Every Step rebuilds
// the neighbor contacts, runs the solver passes in a fixed order, integrates
// and then compacts away destroyed particles.
package particle

import "math"

const (
	// MaxParticleIndex is the largest index a buffer may address.
	MaxParticleIndex = 0x7FFFFFFF

	// InvalidIndex marks a missing particle.
	InvalidIndex = -1

	// DefaultStride is the rest spacing between particles in diameters.
	DefaultStride = 0.75

	// MinParticleWeight is the weight of a particle at rest density.
	MinParticleWeight = 1.0

	// MaxParticlePressure caps pressure, in units of the critical pressure.
	MaxParticlePressure = 0.25

	// MaxParticleForce caps the per-contact force, in units of the critical velocity.
	MaxParticleForce = 0.5

	// DefaultMaxTriadDistance is the longest triad edge in diameters.
	DefaultMaxTriadDistance = 2.0

	// DefaultMinBufferCapacity is the first allocation of every attribute buffer.
	DefaultMinBufferCapacity = 256

	// DefaultBarrierCollisionTime is the barrier lookahead in steps.
	DefaultBarrierCollisionTime = 2.5

	// LinearSlop is the gap left between a particle and the surface it hit.
	LinearSlop = 0.005

	// MaxIterations bounds CalculateIterations.
	MaxIterations = 8

	// radiusThreshold scales the gravity drop that one iteration may cover.
	radiusThreshold = 0.01
)

// CalculateIterations returns the number of solver iterations needed so a
// particle falling under gravity moves a small fraction of its radius per
// iteration.
func CalculateIterations(gravity, radius, dt float64) int {
	if gravity <= 0 || radius <= 0 {
		return 1
	}
	n := int(math.Ceil(math.Sqrt(gravity/(radiusThreshold*radius)) * dt))
	return max(1, min(n, MaxIterations))
}
