package particle

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/pthm-cable/liquid/flags"
	"github.com/pthm-cable/liquid/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

// System owns every particle, bond and group of one particle simulation.
type System struct {
	world BodyWorld
	def   Def
	log   *slog.Logger

	count           int
	diameter        float64
	invDiameter     float64
	squaredDiameter float64

	// Persistent attributes, compacted with the particles.
	position       Buffer[r2.Vec]
	velocity       Buffer[r2.Vec]
	force          Buffer[r2.Vec]
	flags          Buffer[flags.Particle]
	color          Buffer[Color]
	group          Buffer[*Group]
	userData       Buffer[any]
	handleSlot     Buffer[int32]
	restPosition   Buffer[r2.Vec]
	expiration     Buffer[float64]
	staticPressure Buffer[float64]
	depth          Buffer[float64]

	// Per-step scratch, grown but never compacted.
	weight        Buffer[float64]
	pressure      Buffer[float64]
	accumulation  Buffer[float64]
	accumulation2 Buffer[r2.Vec]

	persistent []column
	transient  []column

	handles      handleTable
	proxies      []proxy
	contacts     []Contact
	bodyContacts []BodyContact
	pairs        []Pair
	triads       []Triad
	groups       []*Group

	allParticleFlags            flags.Particle
	allGroupFlags               flags.Group
	needsUpdateAllParticleFlags bool
	needsUpdateAllGroupFlags    bool
	needsPruneBonds             bool
	hasForce                    bool
	hasLifetimes                bool
	paused                      bool
	stepping                    bool

	stepCount uint64
	time      float64

	listener DestructionListener
	timer    PhaseTimer
}

// NewSystem creates an empty particle system in world. world may be nil
// for a system without gravity or bodies. It panics if def is invalid.
func NewSystem(world BodyWorld, def Def) *System {
	def.validate()
	if def.Logger == nil {
		def.Logger = slog.Default()
	}
	s := &System{
		world: world,
		def:   def,
		log:   def.Logger,
	}
	s.setDiameter(2 * def.Radius)

	minCap := def.MinBufferCapacity
	s.position.init(minCap, nil)
	s.velocity.init(minCap, nil)
	s.force.init(minCap, nil)
	s.flags.init(minCap, nil)
	s.color.init(minCap, nil)
	s.group.init(minCap, nil)
	s.userData.init(minCap, nil)
	s.handleSlot.init(minCap, func(old, grown []int32) {
		for i := len(old); i < len(grown); i++ {
			grown[i] = InvalidIndex
		}
	})
	s.restPosition.init(minCap, nil)
	s.expiration.init(minCap, nil)
	s.staticPressure.init(minCap, nil)
	s.depth.init(minCap, nil)
	s.weight.init(minCap, nil)
	s.pressure.init(minCap, nil)
	s.accumulation.init(minCap, nil)
	s.accumulation2.init(minCap, nil)

	s.persistent = []column{
		&s.position, &s.velocity, &s.force, &s.flags, &s.color, &s.group,
		&s.userData, &s.handleSlot, &s.restPosition, &s.expiration,
		&s.staticPressure, &s.depth,
	}
	s.transient = []column{&s.weight, &s.pressure, &s.accumulation, &s.accumulation2}
	return s
}

func (s *System) setDiameter(d float64) {
	s.diameter = d
	s.invDiameter = 1 / d
	s.squaredDiameter = d * d
}

func (s *System) ensureCapacity(n int) {
	for _, c := range s.persistent {
		c.EnsureCapacity(n)
	}
	for _, c := range s.transient {
		c.EnsureCapacity(n)
	}
}

// locked reports whether structural mutation is forbidden right now.
func (s *System) locked() bool {
	return s.stepping || (s.world != nil && s.world.IsLocked())
}

func (s *System) checkIndex(i int) error {
	if i < 0 || i >= s.count {
		return fmt.Errorf("index %d of %d: %w", i, s.count, ErrIndexOutOfRange)
	}
	return nil
}

// Count returns the number of particles, including those pending destruction.
func (s *System) Count() int { return s.count }

// Capacity returns the number of particles the buffers hold without growing.
func (s *System) Capacity() int { return s.position.Cap() }

// Def returns the current tuning.
func (s *System) Def() Def { return s.def }

// Radius returns the particle radius.
func (s *System) Radius() float64 { return 0.5 * s.diameter }

// SetRadius changes the particle radius. It panics unless radius is positive.
func (s *System) SetRadius(radius float64) {
	if radius <= 0 {
		panic(fmt.Sprintf("particle: radius must be positive, got %v", radius))
	}
	s.def.Radius = radius
	s.setDiameter(2 * radius)
}

// SetDensity changes the particle density. It panics unless density is positive.
func (s *System) SetDensity(density float64) {
	if density <= 0 {
		panic(fmt.Sprintf("particle: density must be positive, got %v", density))
	}
	s.def.Density = density
}

// SetGravityScale scales the world gravity applied to particles.
func (s *System) SetGravityScale(scale float64) { s.def.GravityScale = scale }

// SetDamping sets the damping of approaching contacts.
func (s *System) SetDamping(damping float64) { s.def.DampingStrength = damping }

// SetPressureStrength sets how hard packed particles push apart.
func (s *System) SetPressureStrength(strength float64) { s.def.PressureStrength = strength }

// SetViscousStrength sets the velocity averaging of viscous particles.
func (s *System) SetViscousStrength(strength float64) { s.def.ViscousStrength = strength }

// SetElasticStrength sets the restoring strength of triads.
func (s *System) SetElasticStrength(strength float64) { s.def.ElasticStrength = strength }

// SetSpringStrength sets the restoring strength of pairs.
func (s *System) SetSpringStrength(strength float64) { s.def.SpringStrength = strength }

// SetRepulsiveStrength sets the push between repulsive particles of
// different groups.
func (s *System) SetRepulsiveStrength(strength float64) {
	s.def.RepulsiveStrength = strength
}

// SetStaticPressureStrength sets the pressure static-pressure particles
// build up under load.
func (s *System) SetStaticPressureStrength(strength float64) {
	s.def.StaticPressureStrength = strength
}

// SetColorMixingStrength sets how fast touching color-mixing particles
// blend.
func (s *System) SetColorMixingStrength(strength float64) {
	s.def.ColorMixingStrength = strength
}

// SetSurfaceTension sets the pressure and normal strengths of tensile particles.
func (s *System) SetSurfaceTension(pressure, normal float64) {
	s.def.SurfaceTensionPressureStrength = pressure
	s.def.SurfaceTensionNormalStrength = normal
}

// SetStaticPressureIterations sets the relaxation sweeps per sub-step.
func (s *System) SetStaticPressureIterations(n int) {
	s.def.StaticPressureIterations = max(0, n)
}

// SetIterations sets the sub-steps per Step. Zero derives them from gravity.
func (s *System) SetIterations(n int) { s.def.Iterations = max(0, n) }

// SetMaxCount limits the number of particles. Zero means unlimited.
func (s *System) SetMaxCount(n int) { s.def.MaxCount = max(0, n) }

// SetPaused stops Step from advancing the simulation.
func (s *System) SetPaused(paused bool) { s.paused = paused }

// Paused reports whether the system is paused.
func (s *System) Paused() bool { return s.paused }

// SetDestructionListener registers l for destruction callbacks. nil clears it.
func (s *System) SetDestructionListener(l DestructionListener) { s.listener = l }

// SetPhaseTimer registers t to receive solver phase names. nil clears it.
func (s *System) SetPhaseTimer(t PhaseTimer) { s.timer = t }

// ParticleStride returns the rest spacing between particles in world units.
func (s *System) ParticleStride() float64 {
	return s.def.Stride * s.diameter
}

// ParticleMass returns the mass every particle shares.
func (s *System) ParticleMass() float64 {
	stride := s.ParticleStride()
	return s.def.Density * stride * stride
}

func (s *System) particleInvMass() float64 {
	return 1 / s.ParticleMass()
}

// Time returns the simulated time in seconds.
func (s *System) Time() float64 { return s.time }

// StepCount returns the number of completed sub-steps.
func (s *System) StepCount() uint64 { return s.stepCount }

// Positions returns the particle positions. The slice is only valid until
// the next mutation and must not be modified.
func (s *System) Positions() []r2.Vec { return s.position.data[:s.count] }

// Velocities returns the particle velocities.
func (s *System) Velocities() []r2.Vec { return s.velocity.data[:s.count] }

// Colors returns the particle colors.
func (s *System) Colors() []Color { return s.color.data[:s.count] }

// Flags returns the particle flags.
func (s *System) Flags() []flags.Particle { return s.flags.data[:s.count] }

// UserData returns the particle user data.
func (s *System) UserData() []any { return s.userData.data[:s.count] }

// Weights returns the contact weight of every particle from the last sub-step.
func (s *System) Weights() []float64 { return s.weight.data[:s.count] }

// GroupOf returns the group of particle i, or nil.
func (s *System) GroupOf(i int) *Group {
	if s.checkIndex(i) != nil {
		return nil
	}
	return s.group.data[i]
}

// Groups returns the live groups, newest first.
func (s *System) Groups() []*Group { return s.groups }

// Contacts returns the particle contacts of the last sub-step.
func (s *System) Contacts() []Contact { return s.contacts }

// BodyContacts returns the body contacts of the last sub-step.
func (s *System) BodyContacts() []BodyContact { return s.bodyContacts }

// Pairs returns the pair bonds.
func (s *System) Pairs() []Pair { return s.pairs }

// Triads returns the triad bonds.
func (s *System) Triads() []Triad { return s.triads }

// AllParticleFlags returns the union of the flags of every particle.
func (s *System) AllParticleFlags() flags.Particle {
	if s.needsUpdateAllParticleFlags {
		s.updateAllParticleFlags()
	}
	return s.allParticleFlags
}

// SetColor changes the color of particle i.
func (s *System) SetColor(i int, c Color) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.color.data[i] = c
	return nil
}

// SetUserData changes the user data of particle i.
func (s *System) SetUserData(i int, data any) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.userData.data[i] = data
	return nil
}

// ParticleFlags returns the flags of particle i.
func (s *System) ParticleFlags(i int) (flags.Particle, error) {
	if err := s.checkIndex(i); err != nil {
		return 0, err
	}
	return s.flags.data[i], nil
}

// SetParticleFlags replaces the flags of particle i.
func (s *System) SetParticleFlags(i int, f flags.Particle) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.setParticleFlags(i, f)
	return nil
}

func (s *System) setParticleFlags(i int, f flags.Particle) {
	old := s.flags.data[i]
	if removed := old &^ f; removed != 0 {
		s.needsUpdateAllParticleFlags = true
		if removed.Has(flags.BondFlags | flags.Elastic) {
			s.needsPruneBonds = true
		}
	}
	s.allParticleFlags |= f
	s.flags.data[i] = f
}

func (s *System) updateAllParticleFlags() {
	var all flags.Particle
	for _, f := range s.flags.data[:s.count] {
		all |= f
	}
	s.allParticleFlags = all
	s.needsUpdateAllParticleFlags = false
}

func (s *System) updateAllGroupFlags() {
	var all flags.Group
	for _, g := range s.groups {
		all |= g.flags
	}
	s.allGroupFlags = all
	s.needsUpdateAllGroupFlags = false
}

// Handle returns a stable handle for particle i.
func (s *System) Handle(i int) (Handle, error) {
	if err := s.checkIndex(i); err != nil {
		return Handle{}, err
	}
	slot := s.handleSlot.data[i]
	if slot == InvalidIndex {
		h := s.handles.acquire(int32(i))
		s.handleSlot.data[i] = h.slot
		return h, nil
	}
	return Handle{slot: slot, gen: s.handles.entries[slot].gen}, nil
}

// Resolve returns the current index of the particle h refers to.
func (s *System) Resolve(h Handle) (int, error) {
	i, ok := s.handles.resolve(h)
	if !ok {
		return InvalidIndex, ErrStaleHandle
	}
	return int(i), nil
}

// SetParticleLifetime destroys particle i after seconds of simulated time.
// Zero or less keeps it alive forever.
func (s *System) SetParticleLifetime(i int, seconds float64) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	if seconds <= 0 {
		s.expiration.data[i] = 0
		return nil
	}
	s.expiration.data[i] = s.time + seconds
	s.hasLifetimes = true
	return nil
}

// ParticleLifetime returns the remaining lifetime of particle i, or zero if
// it lives forever.
func (s *System) ParticleLifetime(i int) (float64, error) {
	if err := s.checkIndex(i); err != nil {
		return 0, err
	}
	exp := s.expiration.data[i]
	if exp == 0 {
		return 0, nil
	}
	return math.Max(exp-s.time, 0), nil
}

// ApplyForce spreads force evenly over particles [first, last).
func (s *System) ApplyForce(first, last int, force r2.Vec) {
	first, last = max(first, 0), min(last, s.count)
	if first >= last {
		return
	}
	f := r2.Scale(1/float64(last-first), force)
	if f == (r2.Vec{}) {
		return
	}
	for i := first; i < last; i++ {
		s.force.data[i] = r2.Add(s.force.data[i], f)
	}
	s.hasForce = true
}

// ApplyLinearImpulse spreads impulse evenly over particles [first, last).
func (s *System) ApplyLinearImpulse(first, last int, impulse r2.Vec) {
	first, last = max(first, 0), min(last, s.count)
	if first >= last {
		return
	}
	dv := r2.Scale(1/(float64(last-first)*s.ParticleMass()), impulse)
	for i := first; i < last; i++ {
		s.velocity.data[i] = r2.Add(s.velocity.data[i], dv)
	}
	s.invalidateGroupStats()
}

// ParticleApplyForce adds force to particle i for the next step.
func (s *System) ParticleApplyForce(i int, force r2.Vec) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.applyForce(i, force)
	return nil
}

func (s *System) applyForce(i int, force r2.Vec) {
	if force == (r2.Vec{}) {
		return
	}
	s.force.data[i] = r2.Add(s.force.data[i], force)
	s.hasForce = true
}

// ParticleApplyLinearImpulse changes the velocity of particle i by impulse/mass.
func (s *System) ParticleApplyLinearImpulse(i int, impulse r2.Vec) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.velocity.data[i] = r2.Add(s.velocity.data[i], r2.Scale(s.particleInvMass(), impulse))
	if g := s.group.data[i]; g != nil {
		g.stats = nil
	}
	return nil
}

func (s *System) invalidateGroupStats() {
	for _, g := range s.groups {
		g.stats = nil
	}
}

// QueryAABB calls fn for every particle strictly inside box until fn returns false.
func (s *System) QueryAABB(box r2.Box, fn func(index int) bool) {
	for i, p := range s.position.data[:s.count] {
		if geom.Contains(box, p) && !fn(i) {
			return
		}
	}
}

// ComputeAABB returns the bounds of all particles grown by one diameter.
// It returns an empty (inverted) box when there are no particles.
func (s *System) ComputeAABB() r2.Box {
	box := geom.EmptyBox()
	if s.count == 0 {
		return box
	}
	for _, p := range s.position.data[:s.count] {
		box = geom.Union(box, r2.Box{Min: p, Max: p})
	}
	return geom.Extend(box, s.diameter)
}
