// Package world is a small rigid-body world that hosts particle systems.
//
// Bodies are ark entities carrying Pose, Motion, Mass, Info and Fixtures
// components. The world integrates body motion under gravity and exposes
// the fixture queries particle systems use for body coupling. Bodies do not
// collide with each other.
package world

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/liquid/geom"
	"github.com/pthm-cable/liquid/particle"
	"gonum.org/v1/gonum/spatial/r2"
)

// PhaseBodies is the phase name reported while bodies are integrated.
const PhaseBodies = "bodies"

// ErrLocked is returned by mutations attempted during Step.
var ErrLocked = particle.ErrWorldLocked

// Stepper is a simulation advanced by the world while it is locked.
type Stepper interface {
	Step(dt float64)
}

// World owns bodies and the particle systems living among them.
type World struct {
	store *ecs.World

	bodyMapper *ecs.Map5[Info, Pose, Motion, Mass, Fixtures]
	infos      *ecs.Map1[Info]
	poses      *ecs.Map1[Pose]
	motions    *ecs.Map1[Motion]
	masses     *ecs.Map1[Mass]
	fixtures   *ecs.Map1[Fixtures]

	movers     *ecs.Filter4[Info, Pose, Motion, Mass]
	fixtureSet *ecs.Filter1[Fixtures]

	gravity   r2.Vec
	locked    bool
	stepCount uint64
	systems   []Stepper
	timer     particle.PhaseTimer
	log       *slog.Logger
}

// New creates an empty world with the given gravity.
func New(gravity r2.Vec) *World {
	w := ecs.NewWorld()
	return &World{
		store:      w,
		bodyMapper: ecs.NewMap5[Info, Pose, Motion, Mass, Fixtures](w),
		infos:      ecs.NewMap1[Info](w),
		poses:      ecs.NewMap1[Pose](w),
		motions:    ecs.NewMap1[Motion](w),
		masses:     ecs.NewMap1[Mass](w),
		fixtures:   ecs.NewMap1[Fixtures](w),
		movers:     ecs.NewFilter4[Info, Pose, Motion, Mass](w),
		fixtureSet: ecs.NewFilter1[Fixtures](w),
		gravity:    gravity,
		log:        slog.Default(),
	}
}

// SetLogger replaces the logger, slog.Default by default.
func (w *World) SetLogger(l *slog.Logger) { w.log = l }

func (w *World) Gravity() r2.Vec     { return w.gravity }
func (w *World) SetGravity(g r2.Vec) { w.gravity = g }
func (w *World) StepCount() uint64   { return w.stepCount }

// IsLocked reports whether the world is in the middle of Step.
func (w *World) IsLocked() bool { return w.locked }

// SetPhaseTimer reports the body integration phase to t.
func (w *World) SetPhaseTimer(t particle.PhaseTimer) { w.timer = t }

// CreateBody adds a body without fixtures.
func (w *World) CreateBody(def BodyDef) (*Body, error) {
	if w.locked {
		w.log.Warn("create body while locked", "op", "CreateBody")
		return nil, ErrLocked
	}
	gravityScale := def.GravityScale
	if gravityScale == 0 {
		gravityScale = 1
	}
	b := &Body{world: w, userData: def.UserData}
	info := Info{
		Type:           def.Type,
		GravityScale:   gravityScale,
		LinearDamping:  def.LinearDamping,
		AngularDamping: def.AngularDamping,
		Body:           b,
	}
	pose := Pose{
		Transform: geom.NewTransform(def.Position, def.Angle),
		Center:    def.Position,
		Angle:     def.Angle,
	}
	var motion Motion
	if def.Type != StaticBody {
		motion = Motion{Linear: def.LinearVelocity, Angular: def.AngularVelocity}
	}
	var mass Mass
	var fixtures Fixtures
	b.entity = w.bodyMapper.NewEntity(&info, &pose, &motion, &mass, &fixtures)
	b.resetMassData()
	w.log.Debug("created body", "type", def.Type.String(), "x", def.Position.X, "y", def.Position.Y)
	return b, nil
}

// DestroyBody removes a body and its fixtures.
func (w *World) DestroyBody(b *Body) error {
	if w.locked {
		w.log.Warn("destroy body while locked", "op", "DestroyBody")
		return ErrLocked
	}
	if !w.store.Alive(b.entity) {
		return nil
	}
	w.store.RemoveEntity(b.entity)
	return nil
}

// Bodies returns every live body.
func (w *World) Bodies() []*Body {
	var bodies []*Body
	q := w.movers.Query()
	for q.Next() {
		info, _, _, _ := q.Get()
		bodies = append(bodies, info.Body)
	}
	return bodies
}

// QueryAABB calls fn for every fixture whose bounds overlap box until fn
// returns false.
func (w *World) QueryAABB(box r2.Box, fn func(particle.Fixture) bool) {
	w.EachFixture(func(f *Fixture) bool {
		if !geom.Overlaps(f.AABB(), box) {
			return true
		}
		return fn(f)
	})
}

// EachFixture calls fn for every fixture until fn returns false.
func (w *World) EachFixture(fn func(*Fixture) bool) {
	q := w.fixtureSet.Query()
	for q.Next() {
		for _, f := range q.Get().List {
			if !fn(f) {
				q.Close()
				return
			}
		}
	}
}

// AddParticleSystem attaches a particle system, or any other stepper, so
// it advances with the world.
func (w *World) AddParticleSystem(s Stepper) {
	w.systems = append(w.systems, s)
}

// Step advances attached systems and then the bodies by dt seconds. The
// world is locked for the duration.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}
	w.locked = true
	defer func() { w.locked = false }()

	for _, s := range w.systems {
		s.Step(dt)
	}
	if w.timer != nil {
		w.timer.StartPhase(PhaseBodies)
	}
	w.integrate(dt)
	w.stepCount++
}

// integrate moves bodies with semi-implicit Euler about their centers of mass.
func (w *World) integrate(dt float64) {
	q := w.movers.Query()
	for q.Next() {
		info, pose, m, md := q.Get()
		if info.Type == StaticBody {
			continue
		}
		if info.Type == DynamicBody {
			m.Linear = r2.Add(m.Linear, r2.Scale(dt*info.GravityScale, w.gravity))
			m.Linear = r2.Scale(1/(1+dt*info.LinearDamping), m.Linear)
			m.Angular /= 1 + dt*info.AngularDamping
		}
		pose.Center = r2.Add(pose.Center, r2.Scale(dt, m.Linear))
		pose.Angle += dt * m.Angular
		rot := geom.NewRot(pose.Angle)
		pose.Transform = geom.Transform{P: r2.Sub(pose.Center, rot.Apply(md.LocalCenter)), Q: rot}
	}
}
