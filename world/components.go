package world

import (
	"github.com/pthm-cable/liquid/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

// Pose is the placement of a body. Center is the world center of mass and
// Angle the unwrapped rotation, kept in sync with Transform.
type Pose struct {
	Transform geom.Transform
	Center    r2.Vec
	Angle     float64
}

// Motion holds body velocities.
type Motion struct {
	Linear  r2.Vec
	Angular float64
}

// Mass holds the mass properties of a body. I is about the center of mass.
type Mass struct {
	Mass        float64
	InvMass     float64
	I           float64
	InvI        float64
	LocalCenter r2.Vec
}

// Info holds the fixed settings of a body.
type Info struct {
	Type           BodyType
	GravityScale   float64
	LinearDamping  float64
	AngularDamping float64
	Body           *Body
}

// Fixtures lists the shapes attached to a body.
type Fixtures struct {
	List []*Fixture
}
