package particle

import (
	"math"

	"github.com/pthm-cable/liquid/flags"
	"github.com/pthm-cable/liquid/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

// Contact is an overlapping pair of particles.
type Contact struct {
	A, B int32
	// Weight is 1 - distance/diameter.
	Weight float64
	// Normal points from A to B. It is zero for coincident particles.
	Normal r2.Vec
	Flags  flags.Particle
}

// BodyContact is a particle overlapping a fixture.
type BodyContact struct {
	Index   int32
	Body    Body
	Fixture Fixture
	Weight  float64
	// Normal points from the particle towards the fixture surface.
	Normal r2.Vec
	// Mass is the effective mass of the particle-body pair.
	Mass float64
}

func (s *System) updateContacts() {
	s.updateProxies()
	s.contacts = s.contacts[:0]
	pos := s.position.data
	fl := s.flags.data
	s.findPairs(func(a, b int32) {
		if (fl[a] | fl[b]).Has(flags.Zombie) {
			return
		}
		d := r2.Sub(pos[b], pos[a])
		d2 := r2.Norm2(d)
		if d2 >= s.squaredDiameter {
			return
		}
		dist := math.Sqrt(d2)
		var n r2.Vec
		if dist > 0 {
			n = r2.Scale(1/dist, d)
		}
		s.contacts = append(s.contacts, Contact{
			A:      a,
			B:      b,
			Weight: 1 - dist*s.invDiameter,
			Normal: n,
			Flags:  fl[a] | fl[b],
		})
	})
}

func (s *System) updateBodyContacts() {
	s.bodyContacts = s.bodyContacts[:0]
	if s.world == nil || s.count == 0 {
		return
	}
	box := s.ComputeAABB()
	s.world.QueryAABB(box, func(f Fixture) bool {
		if f.IsSensor() {
			return true
		}
		e := s.insideBounds(geom.Extend(f.AABB(), s.diameter))
		for i, ok := e.Next(); ok; i, ok = e.Next() {
			s.addBodyContact(f, i)
		}
		return true
	})
}

func (s *System) addBodyContact(f Fixture, a int32) {
	if s.flags.data[a].Has(flags.Zombie) {
		return
	}
	ap := s.position.data[a]
	d, n := f.ComputeDistance(ap)
	if d >= s.diameter {
		return
	}

	b := f.Body()
	invBm, invBI := 0.0, 0.0
	if bm := b.Mass(); bm > 0 {
		invBm = 1 / bm
	}
	if bI := b.Inertia(); bI > 0 {
		invBI = 1 / bI
	}
	invAm := 0.0
	if !s.flags.data[a].Has(flags.Wall) {
		invAm = s.particleInvMass()
	}
	rpn := r2.Cross(r2.Sub(ap, b.WorldCenter()), n)
	invM := invAm + invBm + invBI*rpn*rpn

	mass := 0.0
	if invM > 0 {
		mass = 1 / invM
	}
	s.bodyContacts = append(s.bodyContacts, BodyContact{
		Index:   a,
		Body:    b,
		Fixture: f,
		Weight:  1 - d*s.invDiameter,
		Normal:  r2.Scale(-1, n),
		Mass:    mass,
	})
}

// computeWeight sums the contact weights of every particle.
func (s *System) computeWeight() {
	w := s.weight.data[:s.count]
	clear(w)
	for _, c := range s.bodyContacts {
		w[c.Index] += c.Weight
	}
	for _, c := range s.contacts {
		w[c.A] += c.Weight
		w[c.B] += c.Weight
	}
}

// computeDepth estimates how far each particle of a solid group lies below
// the group surface, relaxing from the surface inwards.
func (s *System) computeDepth() {
	group := s.group.data
	acc := s.accumulation.data[:s.count]
	depth := s.depth.data

	var groupContacts []Contact
	for _, c := range s.contacts {
		ga := group[c.A]
		if ga != nil && ga == group[c.B] && ga.flags.Has(flags.NeedsUpdateDepth) {
			groupContacts = append(groupContacts, c)
		}
	}

	var groupsToUpdate []*Group
	for _, g := range s.groups {
		if !g.flags.Has(flags.NeedsUpdateDepth) {
			continue
		}
		groupsToUpdate = append(groupsToUpdate, g)
		s.setGroupFlagsInternal(g, g.flags.Remove(flags.NeedsUpdateDepth))
		for i := g.firstIndex; i < g.lastIndex; i++ {
			acc[i] = 0
		}
	}

	for _, c := range groupContacts {
		acc[c.A] += c.Weight
		acc[c.B] += c.Weight
	}
	for _, g := range groupsToUpdate {
		for i := g.firstIndex; i < g.lastIndex; i++ {
			if acc[i] < 0.8 {
				depth[i] = 0
			} else {
				depth[i] = math.Inf(1)
			}
		}
	}

	// Relax until no depth changes; sqrt(count) sweeps cover the widest group.
	iterations := int(math.Sqrt(float64(s.count)))
	for t := 0; t < iterations; t++ {
		updated := false
		for _, c := range groupContacts {
			a, b := c.A, c.B
			r := 1 - c.Weight
			ap0, bp0 := depth[a], depth[b]
			ap1, bp1 := bp0+r, ap0+r
			if ap0 > ap1 {
				depth[a] = ap1
				updated = true
			}
			if bp0 > bp1 {
				depth[b] = bp1
				updated = true
			}
		}
		if !updated {
			break
		}
	}

	for _, g := range groupsToUpdate {
		for i := g.firstIndex; i < g.lastIndex; i++ {
			if math.IsInf(depth[i], 1) {
				depth[i] = 0
			} else {
				depth[i] *= s.diameter
			}
		}
	}
	s.updateAllGroupFlags()
}
