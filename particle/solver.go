package particle

import (
	"math"

	"github.com/pthm-cable/liquid/flags"
	"gonum.org/v1/gonum/spatial/r2"
)

// Solver phase names reported to the PhaseTimer.
const (
	PhaseContacts       = "contacts"
	PhasePressure       = "pressure"
	PhaseViscosity      = "viscosity"
	PhaseTensile        = "tensile"
	PhaseSolid          = "solid"
	PhaseColorMixing    = "color_mixing"
	PhaseElastic        = "elastic"
	PhaseLimitVelocity  = "limit_velocity"
	PhaseRigid          = "rigid"
	PhaseStaticPressure = "static_pressure"
	PhaseBarrier        = "barrier"
	PhaseBodyCoupling   = "body_coupling"
	PhaseIntegrate      = "integrate"
	PhaseCompact        = "compact"
)

// timeStep is the duration of one sub-step.
type timeStep struct {
	dt    float64
	invDt float64
}

// pass is one stage of the sub-step pipeline.
type pass struct {
	name string
	run  func(s *System, step timeStep)
}

// pipeline runs in this order every sub-step. Each pass reads the
// velocities left by the previous one.
var pipeline = []pass{
	{PhaseContacts, (*System).solveContacts},
	{PhasePressure, (*System).solvePressure},
	{PhaseViscosity, (*System).solveViscosity},
	{PhaseTensile, (*System).solveTensile},
	{PhaseSolid, (*System).solveSolid},
	{PhaseColorMixing, (*System).solveColorMixing},
	{PhaseElastic, (*System).solveBonds},
	{PhaseLimitVelocity, (*System).limitVelocity},
	{PhaseRigid, (*System).solveRigid},
	{PhaseStaticPressure, (*System).solveStaticPressure},
	{PhaseBarrier, (*System).solveBarrier},
	{PhaseBodyCoupling, (*System).solveBodyCoupling},
	{PhaseIntegrate, (*System).solveIntegrate},
}

// Phases returns the sub-step phase names in execution order, followed by
// the compaction phase that ends every Step.
func Phases() []string {
	names := make([]string, 0, len(pipeline)+1)
	for _, p := range pipeline {
		names = append(names, p.name)
	}
	return append(names, PhaseCompact)
}

func (s *System) startPhase(name string) {
	if s.timer != nil {
		s.timer.StartPhase(name)
	}
}

// Step advances the simulation by dt seconds. Particles destroyed during
// the step, or before it, are removed at its end.
func (s *System) Step(dt float64) {
	if dt <= 0 || s.paused {
		return
	}
	s.stepping = true
	defer func() { s.stepping = false }()

	if s.hasLifetimes {
		s.solveLifetimes()
	}
	if s.needsUpdateAllParticleFlags {
		s.updateAllParticleFlags()
	}
	if s.needsUpdateAllGroupFlags {
		s.updateAllGroupFlags()
	}
	if s.needsPruneBonds {
		s.pruneBonds()
	}

	iterations := s.def.Iterations
	if iterations == 0 {
		iterations = CalculateIterations(r2.Norm(s.gravity()), s.Radius(), dt)
	}
	sub := dt / float64(iterations)
	step := timeStep{dt: sub, invDt: 1 / sub}

	for it := 0; it < iterations; it++ {
		s.stepCount++
		s.invalidateGroupStats()
		if s.count == 0 {
			continue
		}
		for _, p := range pipeline {
			s.startPhase(p.name)
			p.run(s, step)
		}
	}

	s.startPhase(PhaseCompact)
	s.time += dt
	s.compact()
	s.invalidateGroupStats()
}

func (s *System) gravity() r2.Vec {
	if s.world == nil {
		return r2.Vec{}
	}
	return r2.Scale(s.def.GravityScale, s.world.Gravity())
}

// solveContacts rebuilds the contact sets and folds external forces and
// gravity into velocity so the contact passes see them.
func (s *System) solveContacts(step timeStep) {
	s.updateContacts()
	s.updateBodyContacts()
	s.computeWeight()
	if s.allGroupFlags.Has(flags.NeedsUpdateDepth) {
		s.computeDepth()
	}

	vel := s.velocity.data[:s.count]
	if s.hasForce {
		k := step.dt * s.particleInvMass()
		force := s.force.data[:s.count]
		for i := range vel {
			vel[i] = r2.Add(vel[i], r2.Scale(k, force[i]))
		}
		clear(force)
		s.hasForce = false
	}

	if g := s.gravity(); g != (r2.Vec{}) {
		dv := r2.Scale(step.dt, g)
		for i := range vel {
			vel[i] = r2.Add(vel[i], dv)
		}
	}
}

func (s *System) solveIntegrate(step timeStep) {
	pos := s.position.data[:s.count]
	vel := s.velocity.data[:s.count]
	for i := range pos {
		pos[i] = r2.Add(pos[i], r2.Scale(step.dt, vel[i]))
	}
}

// limitVelocity clamps every speed to one diameter per sub-step.
func (s *System) limitVelocity(step timeStep) {
	criticalVelocity := s.diameter * step.invDt
	maxV2 := criticalVelocity * criticalVelocity
	vel := s.velocity.data[:s.count]
	for i, v := range vel {
		if v2 := r2.Norm2(v); v2 > maxV2 {
			vel[i] = r2.Scale(criticalVelocity/math.Sqrt(v2), v)
		}
	}
}

func (s *System) solveLifetimes() {
	exp := s.expiration.data[:s.count]
	pending := false
	for i, e := range exp {
		if e == 0 {
			continue
		}
		pending = true
		if e <= s.time {
			s.destroyParticle(i, false)
			exp[i] = 0
		}
	}
	s.hasLifetimes = pending
}
