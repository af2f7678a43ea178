package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// EmptyBox returns an inverted box that any Union replaces.
func EmptyBox() r2.Box {
	inf := math.Inf(1)
	return r2.Box{
		Min: r2.Vec{X: inf, Y: inf},
		Max: r2.Vec{X: -inf, Y: -inf},
	}
}

// BoxOf returns the smallest box containing p and q.
func BoxOf(p, q r2.Vec) r2.Box {
	return r2.Box{
		Min: r2.Vec{X: math.Min(p.X, q.X), Y: math.Min(p.Y, q.Y)},
		Max: r2.Vec{X: math.Max(p.X, q.X), Y: math.Max(p.Y, q.Y)},
	}
}

// Union returns the smallest box containing a and b.
func Union(a, b r2.Box) r2.Box {
	return r2.Box{
		Min: r2.Vec{X: math.Min(a.Min.X, b.Min.X), Y: math.Min(a.Min.Y, b.Min.Y)},
		Max: r2.Vec{X: math.Max(a.Max.X, b.Max.X), Y: math.Max(a.Max.Y, b.Max.Y)},
	}
}

// Extend grows b by margin on every side.
func Extend(b r2.Box, margin float64) r2.Box {
	return r2.Box{
		Min: r2.Vec{X: b.Min.X - margin, Y: b.Min.Y - margin},
		Max: r2.Vec{X: b.Max.X + margin, Y: b.Max.Y + margin},
	}
}

// Overlaps reports whether a and b intersect. Touching boxes overlap.
func Overlaps(a, b r2.Box) bool {
	return a.Min.X <= b.Max.X && b.Min.X <= a.Max.X &&
		a.Min.Y <= b.Max.Y && b.Min.Y <= a.Max.Y
}

// Contains reports whether p lies strictly inside b.
func Contains(b r2.Box, p r2.Vec) bool {
	return b.Min.X < p.X && p.X < b.Max.X && b.Min.Y < p.Y && p.Y < b.Max.Y
}
