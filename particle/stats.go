package particle

import "gonum.org/v1/gonum/spatial/r2"

// Stats is a snapshot of the system size and solver work.
type Stats struct {
	Step         uint64
	Time         float64
	Count        int
	Capacity     int
	Groups       int
	Contacts     int
	BodyContacts int
	Pairs        int
	Triads       int
	Handles      int
}

// Stats returns a snapshot of the current counters.
func (s *System) Stats() Stats {
	return Stats{
		Step:         s.stepCount,
		Time:         s.time,
		Count:        s.count,
		Capacity:     s.Capacity(),
		Groups:       len(s.groups),
		Contacts:     len(s.contacts),
		BodyContacts: len(s.bodyContacts),
		Pairs:        len(s.pairs),
		Triads:       len(s.triads),
		Handles:      s.handles.live(),
	}
}

// ComputeCollisionEnergy returns the kinetic energy of the approaching
// motion across all particle contacts.
func (s *System) ComputeCollisionEnergy() float64 {
	vel := s.velocity.data
	sumV2 := 0.0
	for _, c := range s.contacts {
		vn := r2.Dot(r2.Sub(vel[c.B], vel[c.A]), c.Normal)
		if vn < 0 {
			sumV2 += vn * vn
		}
	}
	return 0.5 * s.ParticleMass() * sumV2
}

// KineticEnergy returns the total kinetic energy of the particles.
func (s *System) KineticEnergy() float64 {
	sumV2 := 0.0
	for _, v := range s.velocity.data[:s.count] {
		sumV2 += r2.Norm2(v)
	}
	return 0.5 * s.ParticleMass() * sumV2
}
