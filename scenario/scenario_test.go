package scenario

import (
	"math"
	"testing"

	"github.com/pthm-cable/liquid/config"
	"github.com/pthm-cable/liquid/flags"
	"github.com/pthm-cable/liquid/world"
	"gonum.org/v1/gonum/spatial/r2"
)

func init() {
	config.MustInit("")
}

func TestBuildAllScenarios(t *testing.T) {
	tests := []struct {
		id         string
		groups     int
		bodies     int
		radius     float64
		groupFlags flags.Group
	}{
		{DamBreak, 1, 1, 0.025, 0},
		{Rigid, 3, 2, 0.035, flags.Rigid | flags.Solid},
		{Elastic, 3, 2, 0.035, flags.Solid},
		{SurfaceTension, 3, 2, 0.035, 0},
		{GroundFluid, 1, 1, 0.035, 0},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			s, err := Build(tt.id, config.Cfg())
			if err != nil {
				t.Fatal(err)
			}
			if s.System.Count() == 0 {
				t.Error("expected particles")
			}
			if got := len(s.System.Groups()); got != tt.groups {
				t.Errorf("groups = %d, want %d", got, tt.groups)
			}
			if got := len(s.Bodies); got != tt.bodies {
				t.Errorf("bodies = %d, want %d", got, tt.bodies)
			}
			if s.Ground().Type() != world.StaticBody {
				t.Error("expected static ground first")
			}
			if got := s.System.Radius(); math.Abs(got-tt.radius) > 1e-12 {
				t.Errorf("radius = %v, want %v", got, tt.radius)
			}
			for _, g := range s.System.Groups() {
				if got := g.GroupFlags(); got != tt.groupFlags {
					t.Errorf("group flags = %v, want %v", got, tt.groupFlags)
				}
			}
		})
	}
}

func TestBuildUnknownScenario(t *testing.T) {
	if _, err := Build("lava_lamp", config.Cfg()); err == nil {
		t.Error("expected error for unknown scenario")
	}
}

func TestRegistryOrder(t *testing.T) {
	ids := IDs()
	want := []string{DamBreak, Rigid, Elastic, SurfaceTension, GroundFluid}
	if len(ids) != len(want) {
		t.Fatalf("IDs() = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("IDs()[%d] = %q, want %q", i, ids[i], want[i])
		}
		if info, ok := Lookup(want[i]); !ok || info.Name == "" {
			t.Errorf("Lookup(%q) missing display name", want[i])
		}
	}
}

func TestDamBreakStaysInContainer(t *testing.T) {
	cfg := config.Cfg()
	s, err := Build(DamBreak, cfg)
	if err != nil {
		t.Fatal(err)
	}
	n := s.System.Count()
	hw, h := cfg.Scenario.Width/2, cfg.Scenario.Height
	const tol = 1e-2

	for i := 0; i < 60; i++ {
		s.Step(cfg.World.DT)
	}

	if s.System.Count() != n {
		t.Errorf("particle count changed from %d to %d", n, s.System.Count())
	}
	escaped := 0
	for _, p := range s.System.Positions() {
		if p.X < -hw-tol || p.X > hw+tol || p.Y < -tol || p.Y > h+tol {
			escaped++
		}
	}
	if escaped > 0 {
		t.Errorf("%d particles left the container", escaped)
	}
	// The column collapses towards the right wall.
	box := s.System.ComputeAABB()
	if box.Max.X <= -hw+0.4*cfg.Scenario.Width+tol {
		t.Errorf("expected water to spread right, max x = %v", box.Max.X)
	}
}

func TestDamBreakRequiresContainerSize(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Scenario.Width = 0
	if _, err := Build(DamBreak, cfg); err == nil {
		t.Error("expected error for empty container")
	}
}

func TestBallFalls(t *testing.T) {
	cfg := config.Cfg()
	s, err := Build(Rigid, cfg)
	if err != nil {
		t.Fatal(err)
	}
	ball := s.Bodies[1]
	start := ball.WorldCenter()
	if math.Abs(start.Y-8) > 1e-9 {
		t.Fatalf("ball center = %v, want y = 8", start)
	}

	for i := 0; i < 10; i++ {
		s.Step(cfg.World.DT)
	}

	if ball.WorldCenter().Y >= start.Y {
		t.Errorf("expected ball to fall, y = %v", ball.WorldCenter().Y)
	}
	if v := ball.LinearVelocity(); v.Y >= 0 {
		t.Errorf("expected downward velocity, got %v", v)
	}
}

func TestRigidGroupsStayRigid(t *testing.T) {
	cfg := config.Cfg()
	s, err := Build(Rigid, cfg)
	if err != nil {
		t.Fatal(err)
	}
	box := s.System.Groups()[0]
	if box.ParticleCount() < 2 {
		t.Fatal("expected box group particles")
	}
	first := box.BufferIndex()
	pos := s.System.Positions()
	rest := r2.Norm(r2.Sub(pos[first+1], pos[first]))

	// Stay airborne: the box starts at y = 4 with half extent 0.5.
	for i := 0; i < 20; i++ {
		s.Step(cfg.World.DT)
	}

	pos = s.System.Positions()
	got := r2.Norm(r2.Sub(pos[first+1], pos[first]))
	if math.Abs(got-rest) > 1e-6 {
		t.Errorf("rigid spacing changed from %v to %v", rest, got)
	}
}
