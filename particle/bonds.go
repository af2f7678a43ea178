package particle

import (
	"cmp"
	"math"
	"slices"

	"github.com/pthm-cable/liquid/flags"
	"github.com/pthm-cable/liquid/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

// Pair is a spring or barrier bond between two particles.
type Pair struct {
	A, B     int32
	Flags    flags.Particle
	Strength float64
	// Distance is the rest length.
	Distance float64
}

// Triad is an elastic bond between three particles. PA, PB and PC are the
// rest offsets from the triangle's centroid.
type Triad struct {
	A, B, C    int32
	Flags      flags.Particle
	Strength   float64
	PA, PB, PC r2.Vec
	KA, KB, KC float64
	S          float64
}

// canBeConnected reports whether a particle may take part in bonds.
func canBeConnected(f flags.Particle, g *Group) bool {
	return f.Has(flags.Wall|flags.Spring|flags.Elastic) || (g != nil && g.flags.Has(flags.Rigid))
}

func groupStrength(g *Group) float64 {
	if g == nil {
		return 1
	}
	return g.strength
}

// updatePairsAndTriads bonds the particles of [first, last) that are in
// contact with each other.
func (s *System) updatePairsAndTriads(first, last int) {
	var all flags.Particle
	fl := s.flags.data
	for i := first; i < last; i++ {
		all |= fl[i]
	}
	if all.Has(flags.BondFlags) {
		s.createPairs(first, last)
	}
	if all.Has(flags.Elastic) {
		s.createTriads(first, last)
	}
}

func (s *System) createPairs(first, last int) {
	fl := s.flags.data
	pos := s.position.data
	group := s.group.data
	inRange := func(i int32) bool { return int(i) >= first && int(i) < last }

	for _, c := range s.contacts {
		a, b := c.A, c.B
		if !inRange(a) || !inRange(b) {
			continue
		}
		af, bf := fl[a], fl[b]
		ga, gb := group[a], group[b]
		if (af|bf).Has(flags.Zombie) || !(af | bf).Has(flags.BondFlags) ||
			!canBeConnected(af, ga) || !canBeConnected(bf, gb) {
			continue
		}
		s.pairs = append(s.pairs, Pair{
			A:        a,
			B:        b,
			Flags:    c.Flags,
			Strength: math.Min(groupStrength(ga), groupStrength(gb)),
			Distance: r2.Norm(r2.Sub(pos[a], pos[b])),
		})
	}
	slices.SortStableFunc(s.pairs, comparePairs)
	s.pairs = slices.CompactFunc(s.pairs, func(x, y Pair) bool {
		return x.A == y.A && x.B == y.B
	})
}

func comparePairs(x, y Pair) int {
	if c := cmp.Compare(x.A, y.A); c != 0 {
		return c
	}
	return cmp.Compare(x.B, y.B)
}

func (s *System) createTriads(first, last int) {
	fl := s.flags.data
	pos := s.position.data
	group := s.group.data

	diagram := newVoronoiDiagram(last - first)
	for i := first; i < last; i++ {
		if !fl[i].Has(flags.Zombie) && canBeConnected(fl[i], group[i]) {
			diagram.addGenerator(pos[i], int32(i))
		}
	}
	stride := s.ParticleStride()
	diagram.generate(stride/2, stride*2)

	maxDistanceSquared := s.def.MaxTriadDistance * s.def.MaxTriadDistance * s.squaredDiameter
	diagram.nodes(func(a, b, c int32) {
		af, bf, cf := fl[a], fl[b], fl[c]
		all := af | bf | cf
		if !all.Has(flags.Elastic) || all.Has(flags.Zombie) {
			return
		}
		ga, gb, gc := group[a], group[b], group[c]
		if !canBeConnected(af, ga) || !canBeConnected(bf, gb) || !canBeConnected(cf, gc) {
			return
		}
		pa, pb, pc := pos[a], pos[b], pos[c]
		dab := r2.Sub(pa, pb)
		dbc := r2.Sub(pb, pc)
		dca := r2.Sub(pc, pa)
		if r2.Norm2(dab) > maxDistanceSquared || r2.Norm2(dbc) > maxDistanceSquared ||
			r2.Norm2(dca) > maxDistanceSquared {
			return
		}
		mid := r2.Scale(1.0/3, r2.Add(r2.Add(pa, pb), pc))
		s.triads = append(s.triads, Triad{
			A:        a,
			B:        b,
			C:        c,
			Flags:    all,
			Strength: math.Min(groupStrength(ga), math.Min(groupStrength(gb), groupStrength(gc))),
			PA:       r2.Sub(pa, mid),
			PB:       r2.Sub(pb, mid),
			PC:       r2.Sub(pc, mid),
			KA:       -r2.Dot(dca, dab),
			KB:       -r2.Dot(dab, dbc),
			KC:       -r2.Dot(dbc, dca),
			S:        r2.Cross(pa, pb) + r2.Cross(pb, pc) + r2.Cross(pc, pa),
		})
	})
	slices.SortStableFunc(s.triads, compareTriads)
	s.triads = slices.CompactFunc(s.triads, func(x, y Triad) bool {
		return x.A == y.A && x.B == y.B && x.C == y.C
	})
}

func compareTriads(x, y Triad) int {
	if c := cmp.Compare(x.A, y.A); c != 0 {
		return c
	}
	if c := cmp.Compare(x.B, y.B); c != 0 {
		return c
	}
	return cmp.Compare(x.C, y.C)
}

// solveBonds pulls triads towards their rest shape and pairs towards their
// rest length, using the positions predicted at the end of the sub-step.
func (s *System) solveBonds(step timeStep) {
	if s.allParticleFlags.Has(flags.Elastic) {
		s.solveElastic(step)
	}
	if s.allParticleFlags.Has(flags.Spring) {
		s.solveSpring(step)
	}
}

func (s *System) solveElastic(step timeStep) {
	elasticStrength := step.invDt * s.def.ElasticStrength
	pos := s.position.data
	vel := s.velocity.data
	for i := range s.triads {
		t := &s.triads[i]
		if !t.Flags.Has(flags.Elastic) {
			continue
		}
		a, b, c := t.A, t.B, t.C
		pa := r2.Add(pos[a], r2.Scale(step.dt, vel[a]))
		pb := r2.Add(pos[b], r2.Scale(step.dt, vel[b]))
		pc := r2.Add(pos[c], r2.Scale(step.dt, vel[c]))
		mid := r2.Scale(1.0/3, r2.Add(r2.Add(pa, pb), pc))
		pa = r2.Sub(pa, mid)
		pb = r2.Sub(pb, mid)
		pc = r2.Sub(pc, mid)

		rot := geom.Rot{
			S: r2.Cross(t.PA, pa) + r2.Cross(t.PB, pb) + r2.Cross(t.PC, pc),
			C: r2.Dot(t.PA, pa) + r2.Dot(t.PB, pb) + r2.Dot(t.PC, pc),
		}
		r := math.Hypot(rot.S, rot.C)
		if r == 0 || math.IsNaN(r) {
			continue
		}
		rot.S /= r
		rot.C /= r

		strength := elasticStrength * t.Strength
		vel[a] = r2.Add(vel[a], r2.Scale(strength, r2.Sub(rot.Apply(t.PA), pa)))
		vel[b] = r2.Add(vel[b], r2.Scale(strength, r2.Sub(rot.Apply(t.PB), pb)))
		vel[c] = r2.Add(vel[c], r2.Scale(strength, r2.Sub(rot.Apply(t.PC), pc)))
	}
}

func (s *System) solveSpring(step timeStep) {
	springStrength := step.invDt * s.def.SpringStrength
	pos := s.position.data
	vel := s.velocity.data
	for i := range s.pairs {
		p := &s.pairs[i]
		if !p.Flags.Has(flags.Spring) {
			continue
		}
		a, b := p.A, p.B
		pa := r2.Add(pos[a], r2.Scale(step.dt, vel[a]))
		pb := r2.Add(pos[b], r2.Scale(step.dt, vel[b]))
		d := r2.Sub(pb, pa)
		r1 := r2.Norm(d)
		if r1 == 0 {
			continue
		}
		f := r2.Scale(springStrength*p.Strength*(p.Distance-r1)/r1, d)
		vel[a] = r2.Sub(vel[a], f)
		vel[b] = r2.Add(vel[b], f)
	}
}

// pruneBonds refreshes the flags of every bond from its particles and
// drops the bonds left without a flag that needs them.
func (s *System) pruneBonds() {
	fl := s.flags.data
	pairs := s.pairs[:0]
	for _, p := range s.pairs {
		p.Flags = fl[p.A] | fl[p.B]
		if p.Flags.Has(flags.BondFlags) {
			pairs = append(pairs, p)
		}
	}
	s.pairs = pairs

	triads := s.triads[:0]
	for _, t := range s.triads {
		t.Flags = fl[t.A] | fl[t.B] | fl[t.C]
		if t.Flags.Has(flags.Elastic) {
			triads = append(triads, t)
		}
	}
	s.triads = triads
	s.needsPruneBonds = false
}
