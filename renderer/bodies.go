package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/liquid/camera"
	"github.com/pthm-cable/liquid/geom"
	"github.com/pthm-cable/liquid/world"
	"gonum.org/v1/gonum/spatial/r2"
)

// BodyRenderer draws rigid-body fixtures.
type BodyRenderer struct {
	StaticColor  rl.Color
	DynamicColor rl.Color
	SensorColor  rl.Color
	OutlineColor rl.Color
}

// NewBodyRenderer creates a body renderer with the default palette.
func NewBodyRenderer() *BodyRenderer {
	return &BodyRenderer{
		StaticColor:  rl.Color{R: 70, G: 80, B: 70, A: 255},
		DynamicColor: rl.Color{R: 200, G: 150, B: 90, A: 255},
		SensorColor:  rl.Color{R: 90, G: 200, B: 90, A: 80},
		OutlineColor: rl.Color{R: 230, G: 230, B: 230, A: 255},
	}
}

// Draw renders every fixture in w.
func (r *BodyRenderer) Draw(cam *camera.Camera, w *world.World) {
	view := cam.VisibleWorldBounds()
	w.EachFixture(func(f *world.Fixture) bool {
		if !geom.Overlaps(f.AABB(), view) {
			return true
		}
		b := f.Owner()
		fill := r.StaticColor
		if b.Type() != world.StaticBody {
			fill = r.DynamicColor
		}
		if f.IsSensor() {
			fill = r.SensorColor
		}
		xf := b.Transform()

		switch s := f.Shape().(type) {
		case geom.Circle:
			r.drawCircle(cam, xf, s, fill)
		case geom.Polygon:
			r.drawPolygon(cam, xf, s, fill)
		}
		return true
	})
}

func (r *BodyRenderer) drawCircle(cam *camera.Camera, xf geom.Transform, c geom.Circle, fill rl.Color) {
	center := xf.Apply(c.Center)
	sx, sy := cam.WorldToScreen(float32(center.X), float32(center.Y))
	radius := float32(c.Radius) * cam.Scale()
	rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, radius, fill)
	rl.DrawCircleLines(int32(sx), int32(sy), radius, r.OutlineColor)

	// Spoke to show rotation
	edge := xf.Apply(r2.Add(c.Center, r2.Vec{X: c.Radius}))
	ex, ey := cam.WorldToScreen(float32(edge.X), float32(edge.Y))
	rl.DrawLineV(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: ex, Y: ey}, r.OutlineColor)
}

func (r *BodyRenderer) drawPolygon(cam *camera.Camera, xf geom.Transform, p geom.Polygon, fill rl.Color) {
	n := len(p.Vertices)
	if n < 3 {
		return
	}
	// Flipping y reverses the winding.
	points := make([]rl.Vector2, n)
	for i, v := range p.Vertices {
		wv := xf.Apply(v)
		sx, sy := cam.WorldToScreen(float32(wv.X), float32(wv.Y))
		points[n-1-i] = rl.Vector2{X: sx, Y: sy}
	}
	rl.DrawTriangleFan(points, fill)
	for i := range points {
		rl.DrawLineV(points[i], points[(i+1)%n], r.OutlineColor)
	}
}
