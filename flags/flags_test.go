package flags

import (
	"slices"
	"testing"
)

func TestParticleSet(t *testing.T) {
	p := Water.Add(Spring).Add(Tensile)
	if !p.IsSpring() || !p.IsTensile() {
		t.Fatalf("flags %b missing bits", p)
	}
	if p.IsElastic() {
		t.Error("unexpected elastic bit")
	}
	p = p.Remove(Spring)
	if p.IsSpring() {
		t.Error("spring bit not removed")
	}
	if !p.Has(Tensile | Elastic) {
		t.Error("Has should match any bit")
	}
}

func TestParticleNames(t *testing.T) {
	tests := []struct {
		name string
		p    Particle
		want []string
	}{
		{"water", Water, []string{"Water"}},
		{"single", Elastic, []string{"Elastic"}},
		{"multiple", Wall | Barrier, []string{"Wall", "Barrier"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Names(); !slices.Equal(got, tt.want) {
				t.Errorf("Names() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	if f, ok := ParseParticle("color_mixing"); !ok || f != ColorMixing {
		t.Errorf("ParseParticle(color_mixing) = %v, %v", f, ok)
	}
	if _, ok := ParseParticle("zombie"); ok {
		t.Error("zombie is not a creation flag")
	}
	if g, ok := ParseGroup("rigid"); !ok || g != Rigid {
		t.Errorf("ParseGroup(rigid) = %v, %v", g, ok)
	}
	if _, ok := ParseGroup("will_be_destroyed"); ok {
		t.Error("internal group flags must not parse")
	}
}

func TestGroupInternalBits(t *testing.T) {
	g := Solid | Rigid | NeedsUpdateDepth
	if g.Public() != Solid|Rigid {
		t.Errorf("Public() = %b", g.Public())
	}
	if g.Internal() != NeedsUpdateDepth {
		t.Errorf("Internal() = %b", g.Internal())
	}
	if !g.IsSolid() || !g.IsRigid() || g.CanBeEmpty() {
		t.Error("predicates disagree with bits")
	}
}
