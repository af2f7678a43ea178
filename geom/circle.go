package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Circle is a solid disc.
type Circle struct {
	Center r2.Vec
	Radius float64
}

func (c Circle) ComputeAABB(xf Transform) r2.Box {
	p := xf.Apply(c.Center)
	return r2.Box{
		Min: r2.Vec{X: p.X - c.Radius, Y: p.Y - c.Radius},
		Max: r2.Vec{X: p.X + c.Radius, Y: p.Y + c.Radius},
	}
}

func (c Circle) TestPoint(xf Transform, p r2.Vec) bool {
	d := r2.Sub(p, xf.Apply(c.Center))
	return r2.Norm2(d) <= c.Radius*c.Radius
}

func (c Circle) ComputeDistance(xf Transform, p r2.Vec) (float64, r2.Vec) {
	d := r2.Sub(p, xf.Apply(c.Center))
	l := r2.Norm(d)
	if l == 0 {
		return -c.Radius, r2.Vec{Y: 1}
	}
	return l - c.Radius, r2.Scale(1/l, d)
}

func (c Circle) RayCast(xf Transform, in RayCastInput) (RayCastOutput, bool) {
	s := r2.Sub(in.P1, xf.Apply(c.Center))
	b := r2.Dot(s, s) - c.Radius*c.Radius

	r := r2.Sub(in.P2, in.P1)
	cr := r2.Dot(s, r)
	rr := r2.Dot(r, r)
	sigma := cr*cr - rr*b
	if sigma < 0 || rr < epsilon {
		return RayCastOutput{}, false
	}

	a := -(cr + math.Sqrt(sigma))
	if a < 0 || a > in.MaxFraction*rr {
		return RayCastOutput{}, false
	}
	a /= rr
	return RayCastOutput{
		Fraction: a,
		Normal:   r2.Unit(r2.Add(s, r2.Scale(a, r))),
	}, true
}

func (c Circle) ComputeMass(density float64) MassData {
	mass := density * math.Pi * c.Radius * c.Radius
	return MassData{
		Mass:   mass,
		Center: c.Center,
		I:      0.5 * mass * c.Radius * c.Radius,
	}
}
