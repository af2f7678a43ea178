package particle

import (
	"github.com/pthm-cable/liquid/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

type fakeBody struct {
	center  r2.Vec
	mass    float64
	inertia float64
	vel     r2.Vec
	omega   float64
	impulse r2.Vec
}

func (b *fakeBody) WorldCenter() r2.Vec { return b.center }
func (b *fakeBody) Mass() float64       { return b.mass }
func (b *fakeBody) Inertia() float64    { return b.inertia }

func (b *fakeBody) LinearVelocityFromWorldPoint(p r2.Vec) r2.Vec {
	return r2.Add(b.vel, geom.Cross(b.omega, r2.Sub(p, b.center)))
}

func (b *fakeBody) ApplyLinearImpulse(impulse, point r2.Vec) {
	b.impulse = r2.Add(b.impulse, impulse)
	if b.mass > 0 {
		b.vel = r2.Add(b.vel, r2.Scale(1/b.mass, impulse))
	}
	if b.inertia > 0 {
		b.omega += r2.Cross(r2.Sub(point, b.center), impulse) / b.inertia
	}
}

type fakeFixture struct {
	body  *fakeBody
	shape geom.Shape
	xf    geom.Transform
}

func (f *fakeFixture) Body() Body     { return f.body }
func (f *fakeFixture) IsSensor() bool { return false }
func (f *fakeFixture) AABB() r2.Box   { return f.shape.ComputeAABB(f.xf) }

func (f *fakeFixture) ComputeDistance(p r2.Vec) (float64, r2.Vec) {
	return f.shape.ComputeDistance(f.xf, p)
}

func (f *fakeFixture) RayCast(in geom.RayCastInput) (geom.RayCastOutput, bool) {
	return f.shape.RayCast(f.xf, in)
}

type fakeWorld struct {
	gravity  r2.Vec
	locked   bool
	fixtures []*fakeFixture
}

func (w *fakeWorld) Gravity() r2.Vec { return w.gravity }
func (w *fakeWorld) IsLocked() bool  { return w.locked }

func (w *fakeWorld) QueryAABB(box r2.Box, fn func(Fixture) bool) {
	for _, f := range w.fixtures {
		if geom.Overlaps(f.AABB(), box) && !fn(f) {
			return
		}
	}
}

// groundWorld returns a world with gravity and a static ground box whose
// top surface is y = 0.
func groundWorld() (*fakeWorld, *fakeBody) {
	ground := &fakeBody{center: r2.Vec{Y: -0.5}}
	return &fakeWorld{
		gravity: r2.Vec{Y: -10},
		fixtures: []*fakeFixture{{
			body:  ground,
			shape: geom.MakeBox(5, 0.5),
			xf:    geom.NewTransform(r2.Vec{Y: -0.5}, 0),
		}},
	}, ground
}

// gridPoints returns nx by ny points spaced by stride starting at origin.
func gridPoints(nx, ny int, stride float64, origin r2.Vec) []r2.Vec {
	points := make([]r2.Vec, 0, nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			points = append(points, r2.Vec{
				X: origin.X + float64(i)*stride,
				Y: origin.Y + float64(j)*stride,
			})
		}
	}
	return points
}

func newTestSystem(world BodyWorld, radius float64) *System {
	def := DefaultDef()
	def.Radius = radius
	return NewSystem(world, def)
}
