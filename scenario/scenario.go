// Package scenario builds ready-to-run scenes: a rigid-body world with an
// attached particle system.
package scenario

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/liquid/config"
	"github.com/pthm-cable/liquid/flags"
	"github.com/pthm-cable/liquid/geom"
	"github.com/pthm-cable/liquid/particle"
	"github.com/pthm-cable/liquid/world"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	red   = particle.Color{R: 255, A: 255}
	green = particle.Color{G: 255, A: 255}
	blue  = particle.Color{B: 255, A: 255}
)

// Scene is a world with one particle system stepping inside it.
type Scene struct {
	Name   string
	World  *world.World
	System *particle.System
	// Bodies lists the bodies created by the scenario, ground first.
	Bodies []*world.Body
}

// Build creates the named scenario from cfg.
func Build(name string, cfg *config.Config) (*Scene, error) {
	info, ok := Lookup(name)
	if !ok {
		return nil, unknownScenario(name)
	}

	def := cfg.ParticleDef()
	if info.tune != nil {
		info.tune(&def)
	}

	w := world.New(cfg.Derived.Gravity)
	s := &Scene{
		Name:   name,
		World:  w,
		System: particle.NewSystem(w, def),
	}
	w.AddParticleSystem(s.System)

	if err := info.populate(s, cfg); err != nil {
		return nil, fmt.Errorf("building %s: %w", name, err)
	}
	slog.Debug("built scenario",
		"scenario", name,
		"particles", s.System.Count(),
		"groups", len(s.System.Groups()),
		"bodies", len(s.Bodies),
	)
	return s, nil
}

// Step advances the scene by dt.
func (s *Scene) Step(dt float64) { s.World.Step(dt) }

// Ground returns the static body holding the scene's boundaries.
func (s *Scene) Ground() *world.Body {
	if len(s.Bodies) == 0 {
		return nil
	}
	return s.Bodies[0]
}

// addStatic creates a static body at the origin with one fixture per shape.
func (s *Scene) addStatic(shapes ...geom.Shape) error {
	b, err := s.World.CreateBody(world.BodyDef{Type: world.StaticBody})
	if err != nil {
		return err
	}
	for _, shape := range shapes {
		if _, err := b.CreateFixture(world.FixtureDef{Shape: shape}); err != nil {
			return err
		}
	}
	s.Bodies = append(s.Bodies, b)
	return nil
}

// addBall creates a dynamic body carrying a unit-density circle.
func (s *Scene) addBall(center r2.Vec, radius float64) error {
	b, err := s.World.CreateBody(world.BodyDef{Type: world.DynamicBody})
	if err != nil {
		return err
	}
	if _, err := b.CreateFixture(world.FixtureDef{
		Shape:   geom.Circle{Center: center, Radius: radius},
		Density: 1,
	}); err != nil {
		return err
	}
	s.Bodies = append(s.Bodies, b)
	return nil
}

// addGroups creates every group in defs.
func (s *Scene) addGroups(defs ...particle.GroupDef) error {
	for _, def := range defs {
		if _, err := s.System.CreateParticleGroup(def); err != nil {
			return err
		}
	}
	return nil
}

// wallThickness is the half thickness of container walls.
const wallThickness = 0.1

// container returns the walls of a closed box spanning [-w/2, w/2] x [0, h].
// The walls lie outside the box.
func container(w, h float64) []geom.Shape {
	hw, t := w/2, wallThickness
	return []geom.Shape{
		geom.MakeOffsetBox(hw+2*t, t, r2.Vec{Y: -t}, 0),
		geom.MakeOffsetBox(hw+2*t, t, r2.Vec{Y: h + t}, 0),
		geom.MakeOffsetBox(t, h/2, r2.Vec{X: -hw - t, Y: h / 2}, 0),
		geom.MakeOffsetBox(t, h/2, r2.Vec{X: hw + t, Y: h / 2}, 0),
	}
}

// basin returns the ground slab and the two raised side blocks shared by
// the solid and surface tension scenes.
func basin() []geom.Shape {
	return []geom.Shape{
		boxFromCorners(r2.Vec{X: -4, Y: -1}, r2.Vec{X: 4, Y: 0}),
		boxFromCorners(r2.Vec{X: -4, Y: -0.1}, r2.Vec{X: -2, Y: 2}),
		boxFromCorners(r2.Vec{X: 2, Y: -0.1}, r2.Vec{X: 4, Y: 2}),
	}
}

func boxFromCorners(lo, hi r2.Vec) geom.Polygon {
	center := r2.Scale(0.5, r2.Add(lo, hi))
	return geom.MakeOffsetBox(0.5*(hi.X-lo.X), 0.5*(hi.Y-lo.Y), center, 0)
}

// The dam holds a water column in the left fifth of the container, filling
// half its height.
func populateDamBreak(s *Scene, cfg *config.Config) error {
	w, h := cfg.Scenario.Width, cfg.Scenario.Height
	if w <= 0 || h <= 0 {
		return fmt.Errorf("container size must be positive, got %vx%v", w, h)
	}
	if err := s.addStatic(container(w, h)...); err != nil {
		return err
	}
	hx, hy := 0.2*w, 0.25*h
	return s.addGroups(particle.GroupDef{
		Flags: flags.Water,
		Shape: geom.MakeOffsetBox(hx, hy, r2.Vec{X: -w/2 + hx, Y: hy + 0.01}, 0),
	})
}

// threeBodies returns two circles and a spinning box sharing particle and
// group flags, colored red, green and blue.
func threeBodies(y float64, pf [3]flags.Particle, gf flags.Group) []particle.GroupDef {
	return []particle.GroupDef{
		{
			Flags:      pf[0],
			GroupFlags: gf,
			Shape:      geom.Circle{Center: r2.Vec{X: 0, Y: y}, Radius: 0.5},
			Color:      red,
		},
		{
			Flags:      pf[1],
			GroupFlags: gf,
			Shape:      geom.Circle{Center: r2.Vec{X: -1, Y: y}, Radius: 0.5},
			Color:      green,
		},
		{
			Flags:           pf[2],
			GroupFlags:      gf,
			Position:        r2.Vec{X: 1, Y: 4},
			Angle:           -0.5,
			AngularVelocity: 2,
			Shape:           geom.MakeBox(1, 0.5),
			Color:           blue,
		},
	}
}

func populateSolids(s *Scene, groups []particle.GroupDef) error {
	if err := s.addStatic(basin()...); err != nil {
		return err
	}
	if err := s.addGroups(groups...); err != nil {
		return err
	}
	return s.addBall(r2.Vec{Y: 8}, 0.5)
}

func populateRigid(s *Scene, _ *config.Config) error {
	return populateSolids(s, threeBodies(3,
		[3]flags.Particle{flags.Water, flags.Water, flags.Water},
		flags.Rigid|flags.Solid,
	))
}

func populateElastic(s *Scene, _ *config.Config) error {
	return populateSolids(s, threeBodies(3,
		[3]flags.Particle{flags.Spring, flags.Elastic, flags.Elastic},
		flags.Solid,
	))
}

func populateSurfaceTension(s *Scene, _ *config.Config) error {
	tension := flags.Tensile | flags.ColorMixing
	return populateSolids(s, threeBodies(2,
		[3]flags.Particle{tension, tension, tension},
		0,
	))
}

func populateGroundFluid(s *Scene, _ *config.Config) error {
	if err := s.addStatic(boxFromCorners(r2.Vec{X: -4, Y: -1}, r2.Vec{X: 4, Y: 0})); err != nil {
		return err
	}
	return s.addGroups(particle.GroupDef{
		Flags: flags.Water,
		Shape: geom.MakeOffsetBox(0.5, 0.5, r2.Vec{Y: 0.51}, 0),
	})
}
