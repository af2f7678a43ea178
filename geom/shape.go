package geom

import "gonum.org/v1/gonum/spatial/r2"

// RayCastInput describes the segment P1 + t*(P2-P1) for t in [0, MaxFraction].
type RayCastInput struct {
	P1, P2      r2.Vec
	MaxFraction float64
}

// RayCastOutput is the first hit along a ray.
type RayCastOutput struct {
	Normal   r2.Vec
	Fraction float64
}

// MassData holds the mass properties of a shape. I is the rotational
// inertia about Center.
type MassData struct {
	Mass   float64
	Center r2.Vec
	I      float64
}

// Shape is a convex 2D shape defined in local coordinates.
type Shape interface {
	// ComputeAABB returns the world bounds under xf.
	ComputeAABB(xf Transform) r2.Box
	// TestPoint reports whether the world point p lies inside the shape.
	TestPoint(xf Transform, p r2.Vec) bool
	// ComputeDistance returns the signed distance from p to the surface and
	// the outward direction from the surface towards p.
	ComputeDistance(xf Transform, p r2.Vec) (float64, r2.Vec)
	// RayCast intersects a world-space ray with the shape. Rays starting
	// inside the shape do not hit.
	RayCast(xf Transform, in RayCastInput) (RayCastOutput, bool)
	// ComputeMass returns the mass properties for the given density.
	ComputeMass(density float64) MassData
}
