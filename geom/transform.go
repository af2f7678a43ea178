// Package geom provides rigid transforms, bounding boxes and convex shapes in 2D.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Rot is a rotation stored as sine and cosine.
type Rot struct {
	S, C float64
}

// NewRot returns the rotation by angle radians.
func NewRot(angle float64) Rot {
	s, c := math.Sincos(angle)
	return Rot{S: s, C: c}
}

// Angle returns the rotation angle in radians.
func (q Rot) Angle() float64 {
	return math.Atan2(q.S, q.C)
}

// Apply rotates v.
func (q Rot) Apply(v r2.Vec) r2.Vec {
	return r2.Vec{X: q.C*v.X - q.S*v.Y, Y: q.S*v.X + q.C*v.Y}
}

// ApplyInv rotates v by the inverse rotation.
func (q Rot) ApplyInv(v r2.Vec) r2.Vec {
	return r2.Vec{X: q.C*v.X + q.S*v.Y, Y: -q.S*v.X + q.C*v.Y}
}

// MulRot returns the composition q*r (r applied first).
func MulRot(q, r Rot) Rot {
	return Rot{
		S: q.S*r.C + q.C*r.S,
		C: q.C*r.C - q.S*r.S,
	}
}

// Transform is a translation followed by a rotation about the origin.
type Transform struct {
	P r2.Vec
	Q Rot
}

// Identity is the identity transform.
var Identity = Transform{Q: Rot{C: 1}}

// NewTransform returns the transform placing the local origin at p with the given angle.
func NewTransform(p r2.Vec, angle float64) Transform {
	return Transform{P: p, Q: NewRot(angle)}
}

// Apply maps a local point to world space.
func (xf Transform) Apply(v r2.Vec) r2.Vec {
	return r2.Add(xf.Q.Apply(v), xf.P)
}

// ApplyInv maps a world point to local space.
func (xf Transform) ApplyInv(v r2.Vec) r2.Vec {
	return xf.Q.ApplyInv(r2.Sub(v, xf.P))
}

// MulTransform returns a*b, the transform applying b and then a.
func MulTransform(a, b Transform) Transform {
	return Transform{
		P: r2.Add(a.Q.Apply(b.P), a.P),
		Q: MulRot(a.Q, b.Q),
	}
}

// Cross returns the cross product of a scalar angular term and a vector (w x v).
func Cross(w float64, v r2.Vec) r2.Vec {
	return r2.Vec{X: -w * v.Y, Y: w * v.X}
}
