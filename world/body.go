package world

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/liquid/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

// BodyType selects how a body moves.
type BodyType uint8

const (
	// StaticBody never moves and has infinite mass.
	StaticBody BodyType = iota
	// KinematicBody moves with its set velocity and ignores impulses.
	KinematicBody
	// DynamicBody responds to gravity and impulses.
	DynamicBody
)

func (t BodyType) String() string {
	switch t {
	case StaticBody:
		return "static"
	case KinematicBody:
		return "kinematic"
	case DynamicBody:
		return "dynamic"
	}
	return "unknown"
}

// BodyDef describes a body to create.
type BodyDef struct {
	Type            BodyType
	Position        r2.Vec
	Angle           float64
	LinearVelocity  r2.Vec
	AngularVelocity float64
	LinearDamping   float64
	AngularDamping  float64
	// GravityScale multiplies world gravity. Zero means 1.
	GravityScale float64
	UserData     any
}

// Body is a rigid body stored as an entity of the world.
type Body struct {
	world    *World
	entity   ecs.Entity
	userData any
}

func (b *Body) pose() *Pose         { return b.world.poses.Get(b.entity) }
func (b *Body) motion() *Motion     { return b.world.motions.Get(b.entity) }
func (b *Body) mass() *Mass         { return b.world.masses.Get(b.entity) }
func (b *Body) info() *Info         { return b.world.infos.Get(b.entity) }
func (b *Body) fixtures() *Fixtures { return b.world.fixtures.Get(b.entity) }

// World returns the world the body lives in.
func (b *Body) World() *World { return b.world }

// IsAlive reports whether the body has not been destroyed.
func (b *Body) IsAlive() bool { return b.world.store.Alive(b.entity) }

func (b *Body) Type() BodyType { return b.info().Type }

func (b *Body) UserData() any        { return b.userData }
func (b *Body) SetUserData(data any) { b.userData = data }

// Transform returns the pose of the body origin.
func (b *Body) Transform() geom.Transform { return b.pose().Transform }

// Position returns the world position of the body origin.
func (b *Body) Position() r2.Vec { return b.pose().Transform.P }

// Angle returns the rotation of the body in radians.
func (b *Body) Angle() float64 { return b.pose().Angle }

// WorldCenter returns the center of mass in world coordinates.
func (b *Body) WorldCenter() r2.Vec { return b.pose().Center }

// LocalCenter returns the center of mass relative to the body origin.
func (b *Body) LocalCenter() r2.Vec { return b.mass().LocalCenter }

// Mass returns the total mass, zero for static and kinematic bodies.
func (b *Body) Mass() float64 { return b.mass().Mass }

// Inertia returns the rotational inertia about the center of mass.
func (b *Body) Inertia() float64 { return b.mass().I }

func (b *Body) LinearVelocity() r2.Vec    { return b.motion().Linear }
func (b *Body) AngularVelocity() float64 { return b.motion().Angular }

// SetLinearVelocity sets the velocity of the center of mass. Static bodies
// ignore it.
func (b *Body) SetLinearVelocity(v r2.Vec) {
	if b.info().Type == StaticBody {
		return
	}
	b.motion().Linear = v
}

// SetAngularVelocity sets the rotation rate. Static bodies ignore it.
func (b *Body) SetAngularVelocity(w float64) {
	if b.info().Type == StaticBody {
		return
	}
	b.motion().Angular = w
}

// SetTransform moves the body origin. It does nothing while the world is
// stepping.
func (b *Body) SetTransform(p r2.Vec, angle float64) error {
	if b.world.locked {
		b.world.log.Warn("set transform while locked", "op", "Body.SetTransform")
		return ErrLocked
	}
	pose := b.pose()
	pose.Angle = angle
	pose.Transform = geom.NewTransform(p, angle)
	pose.Center = pose.Transform.Apply(b.mass().LocalCenter)
	return nil
}

// LinearVelocityFromWorldPoint returns the velocity of the body at world point p.
func (b *Body) LinearVelocityFromWorldPoint(p r2.Vec) r2.Vec {
	m := b.motion()
	return r2.Add(m.Linear, geom.Cross(m.Angular, r2.Sub(p, b.pose().Center)))
}

// ApplyLinearImpulse changes the body velocity as if impulse hit it at
// world point. Only dynamic bodies respond.
func (b *Body) ApplyLinearImpulse(impulse, point r2.Vec) {
	if b.info().Type != DynamicBody {
		return
	}
	md := b.mass()
	m := b.motion()
	m.Linear = r2.Add(m.Linear, r2.Scale(md.InvMass, impulse))
	m.Angular += md.InvI * r2.Cross(r2.Sub(point, b.pose().Center), impulse)
}

// Fixtures returns the fixtures attached to the body.
func (b *Body) Fixtures() []*Fixture { return b.fixtures().List }

// CreateFixture attaches a shape to the body and updates its mass.
func (b *Body) CreateFixture(def FixtureDef) (*Fixture, error) {
	if b.world.locked {
		b.world.log.Warn("create fixture while locked", "op", "Body.CreateFixture")
		return nil, ErrLocked
	}
	f := &Fixture{
		body:     b,
		shape:    def.Shape,
		density:  def.Density,
		friction: def.Friction,
		sensor:   def.IsSensor,
		userData: def.UserData,
	}
	fx := b.fixtures()
	fx.List = append(fx.List, f)
	if def.Density > 0 {
		b.resetMassData()
	}
	return f, nil
}

// resetMassData recomputes the mass properties from the fixtures. Dynamic
// bodies without mass get a unit mass so they still respond to gravity.
func (b *Body) resetMassData() {
	md := b.mass()
	pose := b.pose()
	*md = Mass{}
	if b.info().Type != DynamicBody {
		pose.Center = pose.Transform.P
		return
	}

	var center r2.Vec
	var inertia float64
	for _, f := range b.fixtures().List {
		if f.density == 0 {
			continue
		}
		m := f.shape.ComputeMass(f.density)
		md.Mass += m.Mass
		center = r2.Add(center, r2.Scale(m.Mass, m.Center))
		inertia += m.I + m.Mass*r2.Dot(m.Center, m.Center)
	}
	if md.Mass > 0 {
		md.InvMass = 1 / md.Mass
		center = r2.Scale(md.InvMass, center)
	} else {
		md.Mass, md.InvMass = 1, 1
	}
	if inertia > 0 {
		md.I = inertia - md.Mass*r2.Dot(center, center)
		if md.I > 0 {
			md.InvI = 1 / md.I
		}
	}

	oldCenter := pose.Center
	md.LocalCenter = center
	pose.Center = pose.Transform.Apply(center)

	// Keep the velocity of the new center consistent with the old one.
	m := b.motion()
	m.Linear = r2.Add(m.Linear, geom.Cross(m.Angular, r2.Sub(pose.Center, oldCenter)))
}
