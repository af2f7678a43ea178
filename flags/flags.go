// Package flags defines the particle and particle-group behavior bitsets.
package flags

// Particle selects the behaviors a particle takes part in. A particle may
// carry several at once.
type Particle uint32

const (
	// Water is the zero value: a plain fluid particle.
	Water Particle = 0

	Zombie              Particle = 1 << 1  // Removed at the end of the step
	Wall                Particle = 1 << 2  // Zero velocity
	Spring              Particle = 1 << 3  // Pair bonds with fixed rest length
	Elastic             Particle = 1 << 4  // Triad bonds with rest shape
	Viscous             Particle = 1 << 5  // Velocity averaging
	Powder              Particle = 1 << 6  // No pressure, short range repulsion
	Tensile             Particle = 1 << 7  // Surface tension
	ColorMixing         Particle = 1 << 8  // Exchanges color with neighbors
	DestructionListener Particle = 1 << 9  // Reported to the destruction listener
	Barrier             Particle = 1 << 10 // Blocks tunneling through its pairs
	StaticPressure      Particle = 1 << 11 // Takes part in static pressure relaxation
	Repulsive           Particle = 1 << 12 // Pushes away particles of other groups
)

// BondFlags are the particle flags that make pair bonds.
const BondFlags = Spring | Barrier

// Has reports whether p contains any bit of other.
func (p Particle) Has(other Particle) bool {
	return p&other != 0
}

// Add returns p with other set.
func (p Particle) Add(other Particle) Particle {
	return p | other
}

// Remove returns p with other cleared.
func (p Particle) Remove(other Particle) Particle {
	return p &^ other
}

func (p Particle) IsZombie() bool         { return p.Has(Zombie) }
func (p Particle) IsWall() bool           { return p.Has(Wall) }
func (p Particle) IsSpring() bool         { return p.Has(Spring) }
func (p Particle) IsElastic() bool        { return p.Has(Elastic) }
func (p Particle) IsViscous() bool        { return p.Has(Viscous) }
func (p Particle) IsPowder() bool         { return p.Has(Powder) }
func (p Particle) IsTensile() bool        { return p.Has(Tensile) }
func (p Particle) IsColorMixing() bool    { return p.Has(ColorMixing) }
func (p Particle) IsBarrier() bool        { return p.Has(Barrier) }
func (p Particle) IsStaticPressure() bool { return p.Has(StaticPressure) }
func (p Particle) IsRepulsive() bool      { return p.Has(Repulsive) }

var particleNames = []struct {
	flag Particle
	name string
}{
	{Zombie, "Zombie"},
	{Wall, "Wall"},
	{Spring, "Spring"},
	{Elastic, "Elastic"},
	{Viscous, "Viscous"},
	{Powder, "Powder"},
	{Tensile, "Tensile"},
	{ColorMixing, "Color Mixing"},
	{DestructionListener, "Destruction Listener"},
	{Barrier, "Barrier"},
	{StaticPressure, "Static Pressure"},
	{Repulsive, "Repulsive"},
}

// Names returns human-readable names for the set bits.
// Plain water returns "Water".
func (p Particle) Names() []string {
	if p == Water {
		return []string{"Water"}
	}
	var names []string
	for _, n := range particleNames {
		if p.Has(n.flag) {
			names = append(names, n.name)
		}
	}
	return names
}

// ParseParticle maps a lower_snake_case name to its flag.
func ParseParticle(name string) (Particle, bool) {
	switch name {
	case "water":
		return Water, true
	case "wall":
		return Wall, true
	case "spring":
		return Spring, true
	case "elastic":
		return Elastic, true
	case "viscous":
		return Viscous, true
	case "powder":
		return Powder, true
	case "tensile":
		return Tensile, true
	case "color_mixing":
		return ColorMixing, true
	case "destruction_listener":
		return DestructionListener, true
	case "barrier":
		return Barrier, true
	case "static_pressure":
		return StaticPressure, true
	case "repulsive":
		return Repulsive, true
	}
	return 0, false
}

// Group selects the behaviors of a particle group.
type Group uint32

const (
	Solid      Group = 1 << 0 // Resists penetration from other groups
	Rigid      Group = 1 << 1 // Moves as a rigid body
	CanBeEmpty Group = 1 << 2 // Survives losing all its particles

	// Reserved for the particle system.
	WillBeDestroyed  Group = 1 << 3
	NeedsUpdateDepth Group = 1 << 4
)

// GroupInternalMask holds the bits callers may not set.
const GroupInternalMask = WillBeDestroyed | NeedsUpdateDepth

// Has reports whether g contains any bit of other.
func (g Group) Has(other Group) bool {
	return g&other != 0
}

// Add returns g with other set.
func (g Group) Add(other Group) Group {
	return g | other
}

// Remove returns g with other cleared.
func (g Group) Remove(other Group) Group {
	return g &^ other
}

func (g Group) IsSolid() bool    { return g.Has(Solid) }
func (g Group) IsRigid() bool    { return g.Has(Rigid) }
func (g Group) CanBeEmpty() bool { return g.Has(CanBeEmpty) }

// Internal returns only the system-reserved bits of g.
func (g Group) Internal() Group { return g & GroupInternalMask }

// Public returns g without the system-reserved bits.
func (g Group) Public() Group { return g &^ GroupInternalMask }

// Names returns human-readable names for the set bits.
func (g Group) Names() []string {
	var names []string
	if g.Has(Solid) {
		names = append(names, "Solid")
	}
	if g.Has(Rigid) {
		names = append(names, "Rigid")
	}
	if g.Has(CanBeEmpty) {
		names = append(names, "Can Be Empty")
	}
	if g.Has(WillBeDestroyed) {
		names = append(names, "Will Be Destroyed")
	}
	if g.Has(NeedsUpdateDepth) {
		names = append(names, "Needs Update Depth")
	}
	return names
}

// ParseGroup maps a lower_snake_case name to its public group flag.
func ParseGroup(name string) (Group, bool) {
	switch name {
	case "solid":
		return Solid, true
	case "rigid":
		return Rigid, true
	case "can_be_empty":
		return CanBeEmpty, true
	}
	return 0, false
}
