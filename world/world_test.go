package world

import (
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/liquid/geom"
	"github.com/pthm-cable/liquid/particle"
	"gonum.org/v1/gonum/spatial/r2"
)

const dt = 1.0 / 60

func TestBodyMassFromFixtures(t *testing.T) {
	tests := []struct {
		name        string
		shape       geom.Shape
		density     float64
		wantMass    float64
		wantInertia float64
		wantCenter  r2.Vec
	}{
		{
			name:        "box",
			shape:       geom.MakeBox(1, 0.5),
			density:     2,
			wantMass:    4,
			wantInertia: 4 * (4 + 1) / 12.0,
		},
		{
			name:        "offset box",
			shape:       geom.MakeOffsetBox(0.5, 0.5, r2.Vec{X: 1}, 0),
			density:     1,
			wantMass:    1,
			wantInertia: 1 * (1 + 1) / 12.0,
			wantCenter:  r2.Vec{X: 1},
		},
		{
			name:        "circle",
			shape:       geom.Circle{Radius: 0.5},
			density:     1,
			wantMass:    math.Pi * 0.25,
			wantInertia: 0.5 * math.Pi * 0.25 * 0.25,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(r2.Vec{})
			b, err := w.CreateBody(BodyDef{Type: DynamicBody, Position: r2.Vec{X: 2, Y: 3}})
			if err != nil {
				t.Fatal(err)
			}
			if _, err := b.CreateFixture(FixtureDef{Shape: tt.shape, Density: tt.density}); err != nil {
				t.Fatal(err)
			}
			if math.Abs(b.Mass()-tt.wantMass) > 1e-9 {
				t.Errorf("Mass() = %v, want %v", b.Mass(), tt.wantMass)
			}
			if math.Abs(b.Inertia()-tt.wantInertia) > 1e-9 {
				t.Errorf("Inertia() = %v, want %v", b.Inertia(), tt.wantInertia)
			}
			if r2.Norm(r2.Sub(b.LocalCenter(), tt.wantCenter)) > 1e-9 {
				t.Errorf("LocalCenter() = %v, want %v", b.LocalCenter(), tt.wantCenter)
			}
			want := r2.Add(r2.Vec{X: 2, Y: 3}, tt.wantCenter)
			if r2.Norm(r2.Sub(b.WorldCenter(), want)) > 1e-9 {
				t.Errorf("WorldCenter() = %v, want %v", b.WorldCenter(), want)
			}
		})
	}
}

func TestStaticBodyHasNoMass(t *testing.T) {
	w := New(r2.Vec{Y: -10})
	b, _ := w.CreateBody(BodyDef{Position: r2.Vec{Y: 1}, LinearVelocity: r2.Vec{X: 3}})
	_, _ = b.CreateFixture(FixtureDef{Shape: geom.MakeBox(1, 1), Density: 1})
	if b.Mass() != 0 || b.Inertia() != 0 {
		t.Errorf("static body mass = %v, inertia = %v", b.Mass(), b.Inertia())
	}
	b.ApplyLinearImpulse(r2.Vec{X: 10}, r2.Vec{})
	for i := 0; i < 10; i++ {
		w.Step(dt)
	}
	if b.Position() != (r2.Vec{Y: 1}) || b.LinearVelocity() != (r2.Vec{}) {
		t.Errorf("static body moved: %v, %v", b.Position(), b.LinearVelocity())
	}
}

func TestFreeFall(t *testing.T) {
	w := New(r2.Vec{Y: -10})
	b, _ := w.CreateBody(BodyDef{Type: DynamicBody, Position: r2.Vec{Y: 10}})
	_, _ = b.CreateFixture(FixtureDef{Shape: geom.Circle{Radius: 0.5}, Density: 1})

	const steps = 60
	for i := 0; i < steps; i++ {
		w.Step(dt)
	}
	if v := b.LinearVelocity().Y; math.Abs(v+10) > 1e-9 {
		t.Errorf("velocity after 1s = %v, want -10", v)
	}
	// Semi-implicit Euler: y = y0 - g*dt^2 * n(n+1)/2.
	want := 10 - 10*dt*dt*steps*(steps+1)/2
	if y := b.Position().Y; math.Abs(y-want) > 1e-9 {
		t.Errorf("height after 1s = %v, want %v", y, want)
	}
	if w.StepCount() != steps {
		t.Errorf("StepCount() = %d", w.StepCount())
	}
}

func TestKinematicBodyIgnoresGravityAndImpulses(t *testing.T) {
	w := New(r2.Vec{Y: -10})
	b, _ := w.CreateBody(BodyDef{Type: KinematicBody, LinearVelocity: r2.Vec{X: 1}, AngularVelocity: 1})
	b.ApplyLinearImpulse(r2.Vec{Y: 5}, r2.Vec{X: 1})
	w.Step(0.5)
	if p := b.Position(); math.Abs(p.X-0.5) > 1e-12 || p.Y != 0 {
		t.Errorf("Position() = %v, want (0.5, 0)", p)
	}
	if a := b.Angle(); math.Abs(a-0.5) > 1e-12 {
		t.Errorf("Angle() = %v, want 0.5", a)
	}
}

func TestApplyLinearImpulse(t *testing.T) {
	w := New(r2.Vec{})
	b, _ := w.CreateBody(BodyDef{Type: DynamicBody})
	_, _ = b.CreateFixture(FixtureDef{Shape: geom.MakeBox(1, 1), Density: 0.25})

	b.ApplyLinearImpulse(r2.Vec{Y: 1}, r2.Vec{X: 1})
	if v := b.LinearVelocity(); math.Abs(v.Y-1) > 1e-12 || v.X != 0 {
		t.Errorf("LinearVelocity() = %v, want (0, 1)", v)
	}
	wantW := 1 / b.Inertia()
	if got := b.AngularVelocity(); math.Abs(got-wantW) > 1e-12 {
		t.Errorf("AngularVelocity() = %v, want %v", got, wantW)
	}
	p := r2.Vec{X: 1}
	want := r2.Add(b.LinearVelocity(), r2.Vec{Y: wantW})
	if got := b.LinearVelocityFromWorldPoint(p); r2.Norm(r2.Sub(got, want)) > 1e-12 {
		t.Errorf("LinearVelocityFromWorldPoint() = %v, want %v", got, want)
	}
}

func TestQueryAABB(t *testing.T) {
	w := New(r2.Vec{})
	left, _ := w.CreateBody(BodyDef{Position: r2.Vec{X: -5}})
	right, _ := w.CreateBody(BodyDef{Position: r2.Vec{X: 5}})
	_, _ = left.CreateFixture(FixtureDef{Shape: geom.MakeBox(1, 1)})
	_, _ = right.CreateFixture(FixtureDef{Shape: geom.MakeBox(1, 1)})
	_, _ = right.CreateFixture(FixtureDef{Shape: geom.Circle{Radius: 0.5}, IsSensor: true})

	count := func(box r2.Box) int {
		n := 0
		w.QueryAABB(box, func(particle.Fixture) bool {
			n++
			return true
		})
		return n
	}
	if n := count(r2.Box{Min: r2.Vec{X: 3, Y: -1}, Max: r2.Vec{X: 7, Y: 1}}); n != 2 {
		t.Errorf("right query found %d fixtures, want 2", n)
	}
	if n := count(r2.Box{Min: r2.Vec{X: -10, Y: -10}, Max: r2.Vec{X: 10, Y: 10}}); n != 3 {
		t.Errorf("full query found %d fixtures, want 3", n)
	}
	if n := count(r2.Box{Min: r2.Vec{X: -1, Y: -1}, Max: r2.Vec{X: 1, Y: 1}}); n != 0 {
		t.Errorf("empty query found %d fixtures", n)
	}

	n := 0
	w.QueryAABB(r2.Box{Min: r2.Vec{X: -10, Y: -10}, Max: r2.Vec{X: 10, Y: 10}}, func(particle.Fixture) bool {
		n++
		return false
	})
	if n != 1 {
		t.Errorf("query must stop when the callback returns false, visited %d", n)
	}

	if err := w.DestroyBody(right); err != nil {
		t.Fatal(err)
	}
	if right.IsAlive() || len(w.Bodies()) != 1 {
		t.Error("destroyed body still present")
	}
	if n := count(r2.Box{Min: r2.Vec{X: -10, Y: -10}, Max: r2.Vec{X: 10, Y: 10}}); n != 1 {
		t.Errorf("query after destroy found %d fixtures, want 1", n)
	}
}

type mutatingStepper struct {
	w    *World
	errs []error
}

func (s *mutatingStepper) Step(float64) {
	_, err := s.w.CreateBody(BodyDef{})
	s.errs = append(s.errs, err)
	s.errs = append(s.errs, s.w.DestroyBody(s.w.Bodies()[0]))
}

func TestWorldLockedDuringStep(t *testing.T) {
	w := New(r2.Vec{})
	_, _ = w.CreateBody(BodyDef{})
	s := &mutatingStepper{w: w}
	w.AddParticleSystem(s)
	w.Step(dt)

	for _, err := range s.errs {
		if !errors.Is(err, ErrLocked) {
			t.Errorf("expected ErrLocked, got %v", err)
		}
	}
	if len(w.Bodies()) != 1 {
		t.Errorf("bodies changed during step: %d", len(w.Bodies()))
	}
	if w.IsLocked() {
		t.Error("world still locked after step")
	}
}

type phaseLog []string

func (p *phaseLog) StartPhase(name string) { *p = append(*p, name) }

func TestParticlesPushDynamicBody(t *testing.T) {
	w := New(r2.Vec{})
	box, _ := w.CreateBody(BodyDef{Type: DynamicBody, Position: r2.Vec{X: 1}})
	_, _ = box.CreateFixture(FixtureDef{Shape: geom.MakeBox(0.25, 0.5), Density: 1})

	def := particle.DefaultDef()
	def.Radius = 0.05
	sys := particle.NewSystem(w, def)
	_, err := sys.CreateParticleGroup(particle.GroupDef{
		Shape:          geom.MakeBox(0.2, 0.2),
		Position:       r2.Vec{X: 0.4},
		LinearVelocity: r2.Vec{X: 2},
	})
	if err != nil {
		t.Fatal(err)
	}
	w.AddParticleSystem(sys)
	var phases phaseLog
	w.SetPhaseTimer(&phases)

	for i := 0; i < 60; i++ {
		w.Step(dt)
	}

	if v := box.LinearVelocity(); v.X <= 0 {
		t.Errorf("particles should push the box to the right, velocity = %v", v)
	}
	for i, p := range sys.Positions() {
		if box.Fixtures()[0].TestPoint(p) {
			t.Errorf("particle %d inside the box at %v", i, p)
			break
		}
	}
	if len(phases) != 60 || phases[0] != PhaseBodies {
		t.Errorf("phases = %v", phases)
	}
}
