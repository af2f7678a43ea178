package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const epsilon = 1e-12

// Polygon is a convex polygon with counter-clockwise vertices.
type Polygon struct {
	Vertices []r2.Vec
	Normals  []r2.Vec
	Centroid r2.Vec
}

// NewPolygon builds a polygon from the vertices of a convex outline.
// Clockwise input is reversed. It panics on fewer than three points.
func NewPolygon(points []r2.Vec) Polygon {
	n := len(points)
	if n < 3 {
		panic("geom: polygon needs at least 3 vertices")
	}
	vs := make([]r2.Vec, n)
	copy(vs, points)
	if signedArea(vs) < 0 {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			vs[i], vs[j] = vs[j], vs[i]
		}
	}

	normals := make([]r2.Vec, n)
	for i := range vs {
		edge := r2.Sub(vs[(i+1)%n], vs[i])
		normals[i] = r2.Unit(r2.Vec{X: edge.Y, Y: -edge.X})
	}

	p := Polygon{Vertices: vs, Normals: normals}
	p.Centroid = p.ComputeMass(1).Center
	return p
}

// MakeBox returns an axis-aligned box with half extents hx, hy centered on the origin.
func MakeBox(hx, hy float64) Polygon {
	return NewPolygon([]r2.Vec{
		{X: -hx, Y: -hy},
		{X: hx, Y: -hy},
		{X: hx, Y: hy},
		{X: -hx, Y: hy},
	})
}

// MakeOffsetBox returns a box with half extents hx, hy centered on center and rotated by angle.
func MakeOffsetBox(hx, hy float64, center r2.Vec, angle float64) Polygon {
	xf := NewTransform(center, angle)
	box := MakeBox(hx, hy)
	for i := range box.Vertices {
		box.Vertices[i] = xf.Apply(box.Vertices[i])
		box.Normals[i] = xf.Q.Apply(box.Normals[i])
	}
	box.Centroid = center
	return box
}

func signedArea(vs []r2.Vec) float64 {
	area := 0.0
	for i := range vs {
		area += r2.Cross(vs[i], vs[(i+1)%len(vs)])
	}
	return 0.5 * area
}

func (p Polygon) ComputeAABB(xf Transform) r2.Box {
	box := EmptyBox()
	for _, v := range p.Vertices {
		w := xf.Apply(v)
		box = Union(box, r2.Box{Min: w, Max: w})
	}
	return box
}

func (p Polygon) TestPoint(xf Transform, pt r2.Vec) bool {
	local := xf.ApplyInv(pt)
	for i, v := range p.Vertices {
		if r2.Dot(p.Normals[i], r2.Sub(local, v)) > 0 {
			return false
		}
	}
	return true
}

// ComputeDistance returns the exact distance outside the polygon and the
// negated penetration depth of the nearest face inside it.
func (p Polygon) ComputeDistance(xf Transform, pt r2.Vec) (float64, r2.Vec) {
	local := xf.ApplyInv(pt)

	maxSeparation := math.Inf(-1)
	face := 0
	for i, v := range p.Vertices {
		s := r2.Dot(p.Normals[i], r2.Sub(local, v))
		if s > maxSeparation {
			maxSeparation = s
			face = i
		}
	}
	if maxSeparation <= 0 {
		return maxSeparation, xf.Q.Apply(p.Normals[face])
	}

	n := len(p.Vertices)
	best := math.Inf(1)
	var bestDelta r2.Vec
	for i, a := range p.Vertices {
		b := p.Vertices[(i+1)%n]
		edge := r2.Sub(b, a)
		t := r2.Dot(r2.Sub(local, a), edge) / r2.Norm2(edge)
		t = math.Max(0, math.Min(1, t))
		delta := r2.Sub(local, r2.Add(a, r2.Scale(t, edge)))
		if d2 := r2.Norm2(delta); d2 < best {
			best = d2
			bestDelta = delta
		}
	}
	dist := math.Sqrt(best)
	if dist < epsilon {
		return 0, xf.Q.Apply(p.Normals[face])
	}
	return dist, xf.Q.Apply(r2.Scale(1/dist, bestDelta))
}

func (p Polygon) RayCast(xf Transform, in RayCastInput) (RayCastOutput, bool) {
	p1 := xf.ApplyInv(in.P1)
	p2 := xf.ApplyInv(in.P2)
	d := r2.Sub(p2, p1)

	lower, upper := 0.0, in.MaxFraction
	index := -1
	for i, v := range p.Vertices {
		numerator := r2.Dot(p.Normals[i], r2.Sub(v, p1))
		denominator := r2.Dot(p.Normals[i], d)

		if denominator == 0 {
			if numerator < 0 {
				return RayCastOutput{}, false
			}
		} else if denominator < 0 && numerator < lower*denominator {
			lower = numerator / denominator
			index = i
		} else if denominator > 0 && numerator < upper*denominator {
			upper = numerator / denominator
		}

		if upper < lower {
			return RayCastOutput{}, false
		}
	}

	if index < 0 {
		return RayCastOutput{}, false
	}
	return RayCastOutput{
		Fraction: lower,
		Normal:   xf.Q.Apply(p.Normals[index]),
	}, true
}

// ComputeMass integrates over a triangle fan rooted at the first vertex.
func (p Polygon) ComputeMass(density float64) MassData {
	s := p.Vertices[0]
	n := len(p.Vertices)

	var center r2.Vec
	area, inertia := 0.0, 0.0
	const inv3 = 1.0 / 3.0
	for i := 0; i < n; i++ {
		e1 := r2.Sub(p.Vertices[i], s)
		e2 := r2.Sub(p.Vertices[(i+1)%n], s)
		d := r2.Cross(e1, e2)

		triArea := 0.5 * d
		area += triArea
		center = r2.Add(center, r2.Scale(triArea*inv3, r2.Add(e1, e2)))

		intx2 := e1.X*e1.X + e2.X*e1.X + e2.X*e2.X
		inty2 := e1.Y*e1.Y + e2.Y*e1.Y + e2.Y*e2.Y
		inertia += (0.25 * inv3 * d) * (intx2 + inty2)
	}
	if area <= epsilon {
		return MassData{Center: s}
	}

	mass := density * area
	center = r2.Scale(1/area, center)
	return MassData{
		Mass:   mass,
		Center: r2.Add(center, s),
		I:      density*inertia - mass*r2.Dot(center, center),
	}
}
