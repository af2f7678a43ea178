package particle

import (
	"slices"

	"github.com/pthm-cable/liquid/flags"
)

// compact removes zombie particles, remaps every index held by proxies,
// contacts, bonds, handles and groups, and destroys groups left empty.
func (s *System) compact() {
	if !s.allParticleFlags.Has(flags.Zombie) {
		s.destroyDoomedGroups()
		return
	}

	newIndices := make([]int32, s.count)
	fl := s.flags.data
	handleSlot := s.handleSlot.data
	var all flags.Particle
	newCount := 0
	for i := 0; i < s.count; i++ {
		f := fl[i]
		if !f.Has(flags.Zombie) {
			newIndices[i] = int32(newCount)
			if slot := handleSlot[i]; slot != InvalidIndex {
				s.handles.move(slot, int32(newCount))
			}
			newCount++
			all |= f
			continue
		}
		if f.Has(flags.DestructionListener) && s.listener != nil {
			s.listener.ParticleDestroyed(s, i)
		}
		if slot := handleSlot[i]; slot != InvalidIndex {
			s.handles.release(slot)
			handleSlot[i] = InvalidIndex
		}
		newIndices[i] = InvalidIndex
	}

	remap := func(i int32) int32 { return newIndices[i] }

	proxies := s.proxies[:0]
	for _, p := range s.proxies {
		if p.index = remap(p.index); p.index != InvalidIndex {
			proxies = append(proxies, p)
		}
	}
	s.proxies = proxies

	contacts := s.contacts[:0]
	for _, c := range s.contacts {
		c.A, c.B = remap(c.A), remap(c.B)
		if c.A != InvalidIndex && c.B != InvalidIndex {
			contacts = append(contacts, c)
		}
	}
	s.contacts = contacts

	bodyContacts := s.bodyContacts[:0]
	for _, c := range s.bodyContacts {
		if c.Index = remap(c.Index); c.Index != InvalidIndex {
			bodyContacts = append(bodyContacts, c)
		}
	}
	s.bodyContacts = bodyContacts

	pairs := s.pairs[:0]
	for _, p := range s.pairs {
		p.A, p.B = remap(p.A), remap(p.B)
		if p.A != InvalidIndex && p.B != InvalidIndex {
			pairs = append(pairs, p)
		}
	}
	s.pairs = pairs

	triads := s.triads[:0]
	for _, t := range s.triads {
		t.A, t.B, t.C = remap(t.A), remap(t.B), remap(t.C)
		if t.A != InvalidIndex && t.B != InvalidIndex && t.C != InvalidIndex {
			triads = append(triads, t)
		}
	}
	s.triads = triads

	for _, g := range s.groups {
		first, last, modified := newCount, 0, false
		for i := g.firstIndex; i < g.lastIndex; i++ {
			j := int(newIndices[i])
			if j == InvalidIndex {
				modified = true
				continue
			}
			first = min(first, j)
			last = max(last, j+1)
		}
		if first < last {
			g.firstIndex, g.lastIndex = first, last
			if modified && g.flags.Has(flags.Solid) {
				s.setGroupFlagsInternal(g, g.flags|flags.NeedsUpdateDepth)
			}
			continue
		}
		g.firstIndex, g.lastIndex = 0, 0
		if !g.flags.Has(flags.CanBeEmpty) {
			s.setGroupFlagsInternal(g, g.flags|flags.WillBeDestroyed)
		}
	}

	for _, c := range s.persistent {
		c.Compact(newIndices, s.count)
	}
	s.log.Debug("compacted particles", "removed", s.count-newCount, "kept", newCount)
	s.count = newCount
	s.allParticleFlags = all
	s.needsUpdateAllParticleFlags = false

	s.destroyDoomedGroups()
}

// destroyDoomedGroups removes the groups flagged WillBeDestroyed.
func (s *System) destroyDoomedGroups() {
	if !s.allGroupFlags.Has(flags.WillBeDestroyed) {
		return
	}
	s.groups = slices.DeleteFunc(s.groups, func(g *Group) bool {
		if !g.flags.Has(flags.WillBeDestroyed) {
			return false
		}
		if s.listener != nil {
			s.listener.GroupDestroyed(g)
		}
		for i := g.firstIndex; i < g.lastIndex; i++ {
			s.group.data[i] = nil
		}
		g.destroyed = true
		g.stats = nil
		s.log.Debug("destroyed particle group")
		return true
	})
	s.updateAllGroupFlags()
}
