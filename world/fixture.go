package world

import (
	"github.com/pthm-cable/liquid/geom"
	"github.com/pthm-cable/liquid/particle"
	"gonum.org/v1/gonum/spatial/r2"
)

// FixtureDef describes a shape to attach to a body.
type FixtureDef struct {
	Shape    geom.Shape
	Density  float64
	Friction float64
	// IsSensor fixtures are reported by queries but particles pass through them.
	IsSensor bool
	UserData any
}

// Fixture is a shape attached to a body.
type Fixture struct {
	body     *Body
	shape    geom.Shape
	density  float64
	friction float64
	sensor   bool
	userData any
}

// Body returns the owning body.
func (f *Fixture) Body() particle.Body { return f.body }

// Owner returns the owning body with its full API.
func (f *Fixture) Owner() *Body { return f.body }

func (f *Fixture) Shape() geom.Shape { return f.shape }
func (f *Fixture) Density() float64  { return f.density }
func (f *Fixture) Friction() float64 { return f.friction }
func (f *Fixture) IsSensor() bool    { return f.sensor }
func (f *Fixture) UserData() any     { return f.userData }
func (f *Fixture) SetSensor(on bool) { f.sensor = on }

// AABB returns the current world bounds of the fixture.
func (f *Fixture) AABB() r2.Box {
	return f.shape.ComputeAABB(f.body.Transform())
}

// TestPoint reports whether world point p lies inside the fixture.
func (f *Fixture) TestPoint(p r2.Vec) bool {
	return f.shape.TestPoint(f.body.Transform(), p)
}

// ComputeDistance returns the signed distance from p to the fixture
// surface and the outward normal.
func (f *Fixture) ComputeDistance(p r2.Vec) (float64, r2.Vec) {
	return f.shape.ComputeDistance(f.body.Transform(), p)
}

// RayCast intersects a world-space ray with the fixture.
func (f *Fixture) RayCast(in geom.RayCastInput) (geom.RayCastOutput, bool) {
	return f.shape.RayCast(f.body.Transform(), in)
}

var (
	_ particle.BodyWorld = (*World)(nil)
	_ particle.Body      = (*Body)(nil)
	_ particle.Fixture   = (*Fixture)(nil)
)
