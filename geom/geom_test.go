package geom

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

const tol = 1e-9

func TestTransformRoundtrip(t *testing.T) {
	xf := NewTransform(r2.Vec{X: 1.5, Y: -2}, 0.7)
	points := []r2.Vec{{}, {X: 1}, {X: -3, Y: 4}, {X: 0.25, Y: 0.5}}
	for _, p := range points {
		back := xf.ApplyInv(xf.Apply(p))
		if math.Abs(back.X-p.X) > tol || math.Abs(back.Y-p.Y) > tol {
			t.Errorf("roundtrip %v = %v", p, back)
		}
	}
}

func TestMulTransform(t *testing.T) {
	a := NewTransform(r2.Vec{X: 1}, math.Pi/2)
	b := NewTransform(r2.Vec{Y: 2}, math.Pi/4)
	p := r2.Vec{X: 0.3, Y: -0.2}

	want := a.Apply(b.Apply(p))
	got := MulTransform(a, b).Apply(p)
	if math.Abs(got.X-want.X) > tol || math.Abs(got.Y-want.Y) > tol {
		t.Errorf("MulTransform: got %v, want %v", got, want)
	}
	if math.Abs(MulTransform(a, b).Q.Angle()-3*math.Pi/4) > tol {
		t.Errorf("angle = %v", MulTransform(a, b).Q.Angle())
	}
}

func TestBoxHelpers(t *testing.T) {
	a := BoxOf(r2.Vec{X: 1, Y: 1}, r2.Vec{X: 0, Y: 0})
	if a.Min != (r2.Vec{}) || a.Max != (r2.Vec{X: 1, Y: 1}) {
		t.Fatalf("BoxOf = %v", a)
	}
	b := r2.Box{Min: r2.Vec{X: 2, Y: 2}, Max: r2.Vec{X: 3, Y: 3}}
	if Overlaps(a, b) {
		t.Error("disjoint boxes overlap")
	}
	if !Overlaps(Extend(a, 1), b) {
		t.Error("extended box should overlap")
	}
	u := Union(EmptyBox(), a)
	if u != a {
		t.Errorf("Union with empty = %v, want %v", u, a)
	}
	if !Contains(a, r2.Vec{X: 0.5, Y: 0.5}) || Contains(a, r2.Vec{X: 1, Y: 0.5}) {
		t.Error("Contains is not strict")
	}
}

func TestCircle(t *testing.T) {
	c := Circle{Radius: 1}
	xf := NewTransform(r2.Vec{X: 2, Y: 0}, 0)

	if !c.TestPoint(xf, r2.Vec{X: 2.5}) || c.TestPoint(xf, r2.Vec{X: 3.5}) {
		t.Error("TestPoint")
	}

	d, n := c.ComputeDistance(xf, r2.Vec{X: 5})
	if math.Abs(d-2) > tol || math.Abs(n.X-1) > tol {
		t.Errorf("ComputeDistance = %v, %v", d, n)
	}

	out, hit := c.RayCast(xf, RayCastInput{P1: r2.Vec{X: -2}, P2: r2.Vec{X: 2}, MaxFraction: 1})
	if !hit {
		t.Fatal("expected hit")
	}
	if math.Abs(out.Fraction-0.75) > tol || math.Abs(out.Normal.X+1) > tol {
		t.Errorf("RayCast = %+v", out)
	}

	if _, hit := c.RayCast(xf, RayCastInput{P1: r2.Vec{X: -2, Y: 3}, P2: r2.Vec{X: 2, Y: 3}, MaxFraction: 1}); hit {
		t.Error("ray above the circle should miss")
	}

	md := c.ComputeMass(2)
	if math.Abs(md.Mass-2*math.Pi) > tol || math.Abs(md.I-math.Pi) > tol {
		t.Errorf("ComputeMass = %+v", md)
	}
}

func TestPolygonBox(t *testing.T) {
	box := MakeBox(2, 1)
	xf := Identity

	tests := []struct {
		name   string
		p      r2.Vec
		inside bool
		dist   float64
	}{
		{"center", r2.Vec{}, true, -1},
		{"above", r2.Vec{Y: 3}, false, 2},
		{"right", r2.Vec{X: 2.5}, false, 0.5},
		{"corner", r2.Vec{X: 5, Y: 5}, false, 5},
		{"near top", r2.Vec{Y: 0.75}, true, -0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := box.TestPoint(xf, tt.p); got != tt.inside {
				t.Errorf("TestPoint = %v, want %v", got, tt.inside)
			}
			d, _ := box.ComputeDistance(xf, tt.p)
			if math.Abs(d-tt.dist) > tol {
				t.Errorf("ComputeDistance = %v, want %v", d, tt.dist)
			}
		})
	}

	_, n := box.ComputeDistance(xf, r2.Vec{Y: 3})
	if math.Abs(n.Y-1) > tol {
		t.Errorf("normal above = %v", n)
	}
}

func TestPolygonRayCast(t *testing.T) {
	ground := MakeBox(5, 0.5)
	xf := NewTransform(r2.Vec{Y: -0.5}, 0)

	out, hit := ground.RayCast(xf, RayCastInput{P1: r2.Vec{Y: 1}, P2: r2.Vec{Y: -1}, MaxFraction: 1})
	if !hit {
		t.Fatal("expected hit")
	}
	if math.Abs(out.Fraction-0.5) > tol || math.Abs(out.Normal.Y-1) > tol {
		t.Errorf("RayCast = %+v", out)
	}

	if _, hit := ground.RayCast(xf, RayCastInput{P1: r2.Vec{Y: 1}, P2: r2.Vec{Y: 0.5}, MaxFraction: 1}); hit {
		t.Error("short ray should miss")
	}
	if _, hit := ground.RayCast(xf, RayCastInput{P1: r2.Vec{Y: -0.5}, P2: r2.Vec{Y: -2}, MaxFraction: 1}); hit {
		t.Error("ray starting inside should not hit")
	}
}

func TestPolygonMass(t *testing.T) {
	box := MakeOffsetBox(1, 0.5, r2.Vec{X: 3, Y: 1}, 0.3)
	md := box.ComputeMass(1)
	if math.Abs(md.Mass-2) > tol {
		t.Errorf("mass = %v, want 2", md.Mass)
	}
	if math.Abs(md.Center.X-3) > tol || math.Abs(md.Center.Y-1) > tol {
		t.Errorf("center = %v", md.Center)
	}
	// Box inertia about its centroid: m(w²+h²)/12.
	want := 2 * (4 + 1) / 12.0
	if math.Abs(md.I-want) > 1e-9 {
		t.Errorf("inertia = %v, want %v", md.I, want)
	}
}

func TestNewPolygonReversesClockwise(t *testing.T) {
	p := NewPolygon([]r2.Vec{{X: 0, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}})
	if signedArea(p.Vertices) <= 0 {
		t.Error("vertices should be counter-clockwise")
	}
	if !p.TestPoint(Identity, r2.Vec{X: 0.2, Y: 0.2}) {
		t.Error("interior point rejected")
	}
}
