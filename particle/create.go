package particle

import (
	"fmt"
	"math"

	"github.com/pthm-cable/liquid/flags"
	"github.com/pthm-cable/liquid/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

// CreateParticle adds a particle and returns its index.
func (s *System) CreateParticle(def ParticleDef) (int, error) {
	if s.locked() {
		s.log.Warn("create particle while locked", "op", "CreateParticle")
		return InvalidIndex, ErrWorldLocked
	}
	return s.createParticle(def)
}

func (s *System) createParticle(def ParticleDef) (int, error) {
	if s.def.MaxCount > 0 && s.count >= s.def.MaxCount {
		return InvalidIndex, fmt.Errorf("create particle %d: %w", s.count, ErrParticleLimit)
	}
	s.ensureCapacity(s.count + 1)
	i := s.count
	s.count++

	s.position.data[i] = def.Position
	s.velocity.data[i] = def.Velocity
	s.force.data[i] = r2.Vec{}
	s.flags.data[i] = 0
	s.color.data[i] = def.Color
	s.group.data[i] = nil
	s.userData.data[i] = def.UserData
	s.handleSlot.data[i] = InvalidIndex
	s.restPosition.data[i] = def.Position
	s.expiration.data[i] = 0
	s.staticPressure.data[i] = 0
	s.depth.data[i] = 0
	s.setParticleFlags(i, def.Flags)
	if def.Lifetime > 0 {
		s.expiration.data[i] = s.time + def.Lifetime
		s.hasLifetimes = true
	}
	return i, nil
}

// DestroyParticle marks particle i for destruction at the end of the next
// step. With callListener set the destruction listener hears about it.
func (s *System) DestroyParticle(i int, callListener bool) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	if s.locked() {
		s.log.Warn("destroy particle while locked", "op", "DestroyParticle", "index", i)
		return ErrWorldLocked
	}
	s.destroyParticle(i, callListener)
	return nil
}

func (s *System) destroyParticle(i int, callListener bool) {
	f := s.flags.data[i] | flags.Zombie
	if callListener {
		f |= flags.DestructionListener
	}
	s.setParticleFlags(i, f)
}

// DestroyParticlesInShape marks every particle inside shape, placed at xf,
// for destruction and returns how many were marked.
func (s *System) DestroyParticlesInShape(shape geom.Shape, xf geom.Transform, callListener bool) (int, error) {
	if s.locked() {
		s.log.Warn("destroy particles while locked", "op", "DestroyParticlesInShape")
		return 0, ErrWorldLocked
	}
	destroyed := 0
	box := shape.ComputeAABB(xf)
	for i, p := range s.position.data[:s.count] {
		if !geom.Contains(box, p) || !shape.TestPoint(xf, p) {
			continue
		}
		s.destroyParticle(i, callListener)
		destroyed++
	}
	return destroyed, nil
}

// CreateParticleGroup fills def.Shape on a stride grid and adds def.Points,
// then bonds the new particles according to their flags.
func (s *System) CreateParticleGroup(def GroupDef) (*Group, error) {
	if s.locked() {
		s.log.Warn("create particle group while locked", "op", "CreateParticleGroup")
		return nil, ErrWorldLocked
	}
	var flagErr error
	if def.GroupFlags.Internal() != 0 {
		flagErr = fmt.Errorf("create particle group: %w", ErrInternalGroupFlags)
		def.GroupFlags = def.GroupFlags.Public()
	}
	if def.Strength == 0 {
		def.Strength = 1
	}

	xf := geom.NewTransform(def.Position, def.Angle)
	first := s.count
	if def.Shape != nil {
		s.fillShape(def, xf)
	}
	for _, q := range def.Points {
		if !s.createGroupParticle(def, xf, q) {
			break
		}
	}
	last := s.count

	g := &Group{
		system:     s,
		firstIndex: first,
		lastIndex:  last,
		strength:   def.Strength,
		transform:  xf,
		userData:   def.UserData,
	}
	s.groups = append([]*Group{g}, s.groups...)
	for i := first; i < last; i++ {
		s.group.data[i] = g
	}
	s.setGroupFlagsInternal(g, def.GroupFlags)

	s.updateContacts()
	s.updatePairsAndTriads(first, last)
	s.log.Debug("created particle group", "particles", last-first, "flags", def.Flags.Names(), "group_flags", def.GroupFlags.Names())
	return g, flagErr
}

func (s *System) fillShape(def GroupDef, xf geom.Transform) {
	stride := def.Stride
	if stride <= 0 {
		stride = s.ParticleStride()
	}
	box := def.Shape.ComputeAABB(geom.Identity)
	x0 := math.Floor(box.Min.X/stride) * stride
	y0 := math.Floor(box.Min.Y/stride) * stride
	for j := 0; ; j++ {
		y := y0 + float64(j)*stride
		if y >= box.Max.Y {
			return
		}
		for k := 0; ; k++ {
			x := x0 + float64(k)*stride
			if x >= box.Max.X {
				break
			}
			q := r2.Vec{X: x, Y: y}
			if !def.Shape.TestPoint(geom.Identity, q) {
				continue
			}
			if !s.createGroupParticle(def, xf, q) {
				return
			}
		}
	}
}

// createGroupParticle adds the particle at local point q of a group being
// created. It returns false once the particle limit is reached.
func (s *System) createGroupParticle(def GroupDef, xf geom.Transform, q r2.Vec) bool {
	p := xf.Apply(q)
	v := r2.Add(def.LinearVelocity, geom.Cross(def.AngularVelocity, r2.Sub(p, def.Position)))
	i, err := s.createParticle(ParticleDef{
		Flags:    def.Flags,
		Position: p,
		Velocity: v,
		Color:    def.Color,
		Lifetime: def.Lifetime,
		UserData: def.UserData,
	})
	if err != nil {
		s.log.Warn("particle group truncated", "op", "CreateParticleGroup", "error", err)
		return false
	}
	s.restPosition.data[i] = q
	return true
}
