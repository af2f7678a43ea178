package particle

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/pthm-cable/liquid/flags"
	"github.com/pthm-cable/liquid/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

const dt = 1.0 / 60

func TestCalculateIterations(t *testing.T) {
	tests := []struct {
		name                string
		gravity, radius, dt float64
		want                int
	}{
		{"no gravity", 0, 0.1, dt, 1},
		{"small particles", 10, 0.1, dt, 2},
		{"tiny particles", 10, 0.001, dt, 8},
		{"large particles", 10, 1, dt, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateIterations(tt.gravity, tt.radius, tt.dt); got != tt.want {
				t.Errorf("CalculateIterations() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewSystemPanicsOnInvalidDef(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Def)
	}{
		{"zero radius", func(d *Def) { d.Radius = 0 }},
		{"negative density", func(d *Def) { d.Density = -1 }},
		{"zero buffer capacity", func(d *Def) { d.MinBufferCapacity = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			def := DefaultDef()
			tt.mutate(&def)
			NewSystem(nil, def)
		})
	}
}

func TestCreateAndDestroyParticles(t *testing.T) {
	s := newTestSystem(nil, 0.1)
	for i := 0; i < 3; i++ {
		idx, err := s.CreateParticle(ParticleDef{Position: r2.Vec{X: float64(i)}, UserData: i})
		if err != nil || idx != i {
			t.Fatalf("CreateParticle = %d, %v", idx, err)
		}
	}
	h1, _ := s.Handle(1)
	h2, _ := s.Handle(2)

	if err := s.DestroyParticle(1, false); err != nil {
		t.Fatal(err)
	}
	if s.Count() != 3 {
		t.Errorf("destruction must be deferred, count = %d", s.Count())
	}
	s.Step(dt)

	if s.Count() != 2 {
		t.Fatalf("expected 2 particles after step, got %d", s.Count())
	}
	if _, err := s.Resolve(h1); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("destroyed handle: expected ErrStaleHandle, got %v", err)
	}
	i, err := s.Resolve(h2)
	if err != nil || i != 1 {
		t.Errorf("moved handle resolves to %d, %v; want 1", i, err)
	}
	if got := s.UserData()[1]; got != 2 {
		t.Errorf("user data moved with the particle: got %v", got)
	}
	if _, err := s.ParticleFlags(5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestMaxCount(t *testing.T) {
	def := DefaultDef()
	def.MaxCount = 2
	s := NewSystem(nil, def)
	for i := 0; i < 2; i++ {
		if _, err := s.CreateParticle(ParticleDef{}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.CreateParticle(ParticleDef{}); !errors.Is(err, ErrParticleLimit) {
		t.Errorf("expected ErrParticleLimit, got %v", err)
	}
}

func TestMutationWhileLockedIsNoOp(t *testing.T) {
	world, _ := groundWorld()
	s := newTestSystem(world, 0.1)
	g, err := s.CreateParticleGroup(GroupDef{Points: gridPoints(3, 3, 0.15, r2.Vec{Y: 1})})
	if err != nil {
		t.Fatal(err)
	}

	world.locked = true
	if err := g.DestroyParticles(); !errors.Is(err, ErrWorldLocked) {
		t.Errorf("DestroyParticles: expected ErrWorldLocked, got %v", err)
	}
	if _, err := s.CreateParticle(ParticleDef{}); !errors.Is(err, ErrWorldLocked) {
		t.Errorf("CreateParticle: expected ErrWorldLocked, got %v", err)
	}
	if _, err := s.CreateParticleGroup(GroupDef{Points: []r2.Vec{{}}}); !errors.Is(err, ErrWorldLocked) {
		t.Errorf("CreateParticleGroup: expected ErrWorldLocked, got %v", err)
	}
	if err := s.DestroyParticle(0, false); !errors.Is(err, ErrWorldLocked) {
		t.Errorf("DestroyParticle: expected ErrWorldLocked, got %v", err)
	}
	world.locked = false

	s.Step(dt)
	if s.Count() != 9 {
		t.Errorf("expected 9 particles, got %d", s.Count())
	}
}

type listenerFunc struct {
	particles []int
	groups    []*Group
}

func (l *listenerFunc) ParticleDestroyed(s *System, index int) {
	l.particles = append(l.particles, index)
	if _, err := s.CreateParticle(ParticleDef{}); !errors.Is(err, ErrWorldLocked) {
		panic("creation allowed during compaction")
	}
}

func (l *listenerFunc) GroupDestroyed(g *Group) {
	l.groups = append(l.groups, g)
}

func TestDestructionListener(t *testing.T) {
	s := newTestSystem(nil, 0.1)
	l := &listenerFunc{}
	s.SetDestructionListener(l)

	g, _ := s.CreateParticleGroup(GroupDef{Points: gridPoints(2, 2, 0.15, r2.Vec{})})
	keep, _ := s.CreateParticleGroup(GroupDef{
		Points:     gridPoints(2, 1, 0.15, r2.Vec{X: 5}),
		GroupFlags: flags.CanBeEmpty,
	})

	_ = s.DestroyParticle(1, true)
	s.Step(dt)
	if !slices.Equal(l.particles, []int{1}) {
		t.Errorf("listener saw particles %v, want [1]", l.particles)
	}

	if err := g.DestroyParticles(); err != nil {
		t.Fatal(err)
	}
	if err := keep.DestroyParticles(); err != nil {
		t.Fatal(err)
	}
	s.Step(dt)

	if s.Count() != 0 {
		t.Errorf("expected no particles, got %d", s.Count())
	}
	if len(l.groups) != 1 || l.groups[0] != g {
		t.Errorf("expected only the first group destroyed, got %v", l.groups)
	}
	if !g.IsDestroyed() || keep.IsDestroyed() {
		t.Error("CanBeEmpty group must survive, the other must not")
	}
	if got := s.Groups(); len(got) != 1 || got[0] != keep {
		t.Errorf("remaining groups = %v", got)
	}
}

func TestParticleLifetime(t *testing.T) {
	s := newTestSystem(nil, 0.1)
	_, _ = s.CreateParticle(ParticleDef{Lifetime: 0.05})
	_, _ = s.CreateParticle(ParticleDef{Position: r2.Vec{X: 3}})

	life, _ := s.ParticleLifetime(0)
	if math.Abs(life-0.05) > 1e-12 {
		t.Errorf("lifetime = %v, want 0.05", life)
	}
	for i := 0; i < 5; i++ {
		s.Step(dt)
	}
	if s.Count() != 1 {
		t.Fatalf("expected expired particle removed, count = %d", s.Count())
	}
	if p := s.Positions()[0]; p.X != 3 {
		t.Errorf("wrong particle survived: %v", p)
	}
}

func TestDestroyParticlesInShape(t *testing.T) {
	s := newTestSystem(nil, 0.1)
	_, _ = s.CreateParticleGroup(GroupDef{Points: gridPoints(10, 1, 0.15, r2.Vec{})})

	n, err := s.DestroyParticlesInShape(geom.Circle{Radius: 0.2}, geom.Identity, false)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 particles inside the circle, got %d", n)
	}
	s.Step(dt)
	if s.Count() != 8 {
		t.Errorf("expected 8 particles left, got %d", s.Count())
	}
}

type phaseRecorder struct {
	phases []string
	check  func(phase string)
}

func (r *phaseRecorder) StartPhase(name string) {
	r.phases = append(r.phases, name)
	if r.check != nil {
		r.check(name)
	}
}

func TestPhasesRunInOrder(t *testing.T) {
	want := []string{
		PhaseContacts, PhasePressure, PhaseViscosity, PhaseTensile, PhaseSolid,
		PhaseColorMixing, PhaseElastic, PhaseLimitVelocity, PhaseRigid,
		PhaseStaticPressure, PhaseBarrier, PhaseBodyCoupling, PhaseIntegrate,
		PhaseCompact,
	}
	if got := Phases(); !slices.Equal(got, want) {
		t.Fatalf("Phases() = %v", got)
	}

	def := DefaultDef()
	def.Radius = 0.1
	def.Iterations = 2
	s := NewSystem(nil, def)
	_, _ = s.CreateParticle(ParticleDef{})
	rec := &phaseRecorder{}
	s.SetPhaseTimer(rec)
	s.Step(dt)

	sub := want[:len(want)-1]
	expected := append(append(slices.Clone(sub), sub...), PhaseCompact)
	if !slices.Equal(rec.phases, expected) {
		t.Errorf("recorded phases = %v", rec.phases)
	}
}

func TestIndexStableDuringSolve(t *testing.T) {
	world, _ := groundWorld()
	s := newTestSystem(world, 0.1)
	g, _ := s.CreateParticleGroup(GroupDef{Points: gridPoints(5, 5, 0.15, r2.Vec{Y: 0.2})})
	for i := 0; i < s.Count(); i++ {
		_ = s.SetUserData(i, i)
	}
	_ = s.DestroyParticle(3, false)
	_ = s.DestroyParticle(17, false)
	before := s.Count()

	rec := &phaseRecorder{check: func(phase string) {
		if phase == PhaseCompact {
			return
		}
		if s.Count() != before {
			t.Fatalf("count changed to %d during %s", s.Count(), phase)
		}
		for i, d := range s.UserData() {
			if d != i {
				t.Fatalf("particle %d moved during %s", i, phase)
			}
		}
	}}
	s.SetPhaseTimer(rec)
	s.Step(dt)

	if s.Count() != before-2 {
		t.Errorf("expected %d particles after compaction, got %d", before-2, s.Count())
	}
	if g.ParticleCount() != before-2 {
		t.Errorf("group range not remapped: %d", g.ParticleCount())
	}
	for i, d := range s.UserData() {
		if d == 3 || d == 17 {
			t.Errorf("destroyed particle %v still at index %d", d, i)
		}
	}
}

func buildDeterminismScene() *System {
	world, _ := groundWorld()
	s := newTestSystem(world, 0.05)
	_, _ = s.CreateParticleGroup(GroupDef{
		Shape:    geom.MakeBox(0.4, 0.3),
		Position: r2.Vec{X: -0.5, Y: 0.5},
		Flags:    flags.Viscous,
	})
	_, _ = s.CreateParticleGroup(GroupDef{
		Shape:           geom.Circle{Radius: 0.2},
		Position:        r2.Vec{X: 0.5, Y: 0.6},
		Flags:           flags.Elastic,
		GroupFlags:      flags.Solid,
		AngularVelocity: 1,
	})
	_, _ = s.CreateParticleGroup(GroupDef{
		Shape:    geom.MakeBox(0.2, 0.2),
		Position: r2.Vec{Y: 1.3},
		Flags:    flags.Tensile | flags.ColorMixing,
		Color:    Color{R: 255, A: 255},
	})
	return s
}

func TestDeterminism(t *testing.T) {
	a := buildDeterminismScene()
	b := buildDeterminismScene()
	for i := 0; i < 40; i++ {
		a.Step(dt)
		b.Step(dt)
	}
	if a.Count() != b.Count() {
		t.Fatalf("counts differ: %d vs %d", a.Count(), b.Count())
	}
	if !slices.Equal(a.Positions(), b.Positions()) {
		t.Error("positions differ between identical runs")
	}
	if !slices.Equal(a.Velocities(), b.Velocities()) {
		t.Error("velocities differ between identical runs")
	}
	if !slices.Equal(a.Colors(), b.Colors()) {
		t.Error("colors differ between identical runs")
	}
}

func TestGroundFluidDoesNotTunnel(t *testing.T) {
	world, ground := groundWorld()
	s := newTestSystem(world, 0.1)
	stride := s.ParticleStride()
	_, err := s.CreateParticleGroup(GroupDef{
		Points: gridPoints(10, 10, stride, r2.Vec{X: -0.7, Y: 0.5}),
	})
	if err != nil {
		t.Fatal(err)
	}
	if s.Count() != 100 {
		t.Fatalf("expected 100 particles, got %d", s.Count())
	}

	for i := 0; i < 60; i++ {
		s.Step(dt)
	}

	if s.Count() != 100 {
		t.Errorf("expected 100 particles, got %d", s.Count())
	}
	const eps = 1e-3
	for i, p := range s.Positions() {
		if p.Y < -eps {
			t.Errorf("particle %d tunneled below the ground: y = %v", i, p.Y)
		}
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			t.Fatalf("particle %d has NaN position", i)
		}
	}
	if ground.impulse.Y >= 0 {
		t.Errorf("fluid should push the ground down, impulse = %v", ground.impulse)
	}
}

func TestSpringRelaxesToRestLength(t *testing.T) {
	s := newTestSystem(nil, 0.3)
	_, err := s.CreateParticleGroup(GroupDef{
		Points: []r2.Vec{{X: 0}, {X: 0.5}},
		Flags:  flags.Spring,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Pairs()) != 1 {
		t.Fatalf("expected one spring pair, got %d", len(s.Pairs()))
	}
	if d := s.Pairs()[0].Distance; math.Abs(d-0.5) > 1e-12 {
		t.Fatalf("rest length = %v, want 0.5", d)
	}

	m := s.ParticleMass()
	_ = s.ParticleApplyLinearImpulse(0, r2.Vec{X: -m})
	_ = s.ParticleApplyLinearImpulse(1, r2.Vec{X: m})

	s.Step(dt)
	pos := s.Positions()
	if d := r2.Norm(r2.Sub(pos[1], pos[0])); d <= 0.5 {
		t.Errorf("impulse should stretch the spring, distance = %v", d)
	}

	for i := 0; i < 60; i++ {
		s.Step(dt)
	}
	pos = s.Positions()
	if d := r2.Norm(r2.Sub(pos[1], pos[0])); math.Abs(d-0.5) > 1e-3 {
		t.Errorf("distance = %v, want 0.5", d)
	}
}

func TestElasticGroupCreatesTriads(t *testing.T) {
	s := newTestSystem(nil, 0.05)
	_, _ = s.CreateParticleGroup(GroupDef{
		Shape: geom.MakeBox(0.3, 0.3),
		Flags: flags.Elastic,
	})
	triads := s.Triads()
	if len(triads) == 0 {
		t.Fatal("expected triads")
	}
	maxD2 := s.def.MaxTriadDistance * s.def.MaxTriadDistance * s.squaredDiameter
	pos := s.Positions()
	for _, tr := range triads {
		for _, e := range [][2]int32{{tr.A, tr.B}, {tr.B, tr.C}, {tr.C, tr.A}} {
			if d2 := r2.Norm2(r2.Sub(pos[e[0]], pos[e[1]])); d2 > maxD2 {
				t.Errorf("triad edge %v too long: %v", e, math.Sqrt(d2))
			}
		}
	}

	for i := 0; i < s.Count(); i++ {
		_ = s.SetParticleFlags(i, flags.Water)
	}
	s.Step(dt)
	if len(s.Triads()) != 0 {
		t.Errorf("triads without elastic particles must be pruned, %d left", len(s.Triads()))
	}
}

func TestColorMixing(t *testing.T) {
	s := newTestSystem(nil, 0.1)
	_, _ = s.CreateParticle(ParticleDef{Flags: flags.ColorMixing, Color: Color{R: 200, A: 255}})
	_, _ = s.CreateParticle(ParticleDef{Flags: flags.ColorMixing, Position: r2.Vec{X: 0.1}, Color: Color{B: 200, A: 255}})
	_, _ = s.CreateParticle(ParticleDef{Position: r2.Vec{X: -0.1}, Color: Color{G: 200, A: 255}})

	s.Step(dt)
	c := s.Colors()
	if c[0].R != 100 || c[0].B != 100 || c[1].R != 100 || c[1].B != 100 {
		t.Errorf("mixed colors = %+v, %+v", c[0], c[1])
	}
	if c[2] != (Color{G: 200, A: 255}) {
		t.Errorf("non-mixing particle changed color: %+v", c[2])
	}
}

func TestWallParticlesStayPut(t *testing.T) {
	world, _ := groundWorld()
	s := newTestSystem(world, 0.1)
	_, _ = s.CreateParticleGroup(GroupDef{
		Points: gridPoints(4, 1, 0.15, r2.Vec{Y: 1}),
		Flags:  flags.Wall,
	})
	for i := 0; i < 10; i++ {
		s.Step(dt)
	}
	for i, p := range s.Positions() {
		if p.Y != 1 {
			t.Errorf("wall particle %d moved to %v", i, p)
		}
	}
}

func TestQueryAndBounds(t *testing.T) {
	s := newTestSystem(nil, 0.1)
	_, _ = s.CreateParticleGroup(GroupDef{Points: gridPoints(5, 1, 1, r2.Vec{})})

	var got []int
	s.QueryAABB(r2.Box{Min: r2.Vec{X: 0.5, Y: -1}, Max: r2.Vec{X: 3.5, Y: 1}}, func(i int) bool {
		got = append(got, i)
		return true
	})
	if !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("QueryAABB = %v", got)
	}

	box := s.ComputeAABB()
	if math.Abs(box.Min.X+0.2) > 1e-12 || math.Abs(box.Max.X-4.2) > 1e-12 {
		t.Errorf("ComputeAABB = %+v", box)
	}
}

func TestStatsSnapshot(t *testing.T) {
	s := newTestSystem(nil, 0.1)
	_, _ = s.CreateParticleGroup(GroupDef{Points: gridPoints(3, 3, 0.15, r2.Vec{}), Flags: flags.Spring})
	s.Step(dt)

	st := s.Stats()
	if st.Count != 9 || st.Groups != 1 || st.Pairs == 0 || st.Contacts == 0 {
		t.Errorf("unexpected stats %+v", st)
	}
	if st.Step != s.StepCount() || math.Abs(st.Time-dt) > 1e-15 {
		t.Errorf("step counters %+v", st)
	}
	if s.ComputeCollisionEnergy() < 0 || s.KineticEnergy() < 0 {
		t.Error("energies must not be negative")
	}
}
