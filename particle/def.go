package particle

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/liquid/flags"
	"github.com/pthm-cable/liquid/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

// Def holds the tuning parameters of a particle system.
type Def struct {
	Radius       float64
	Density      float64
	GravityScale float64

	// MaxCount limits the number of particles. Zero means unlimited.
	MaxCount int

	// Iterations is the number of sub-steps per Step. Zero derives it from
	// gravity and radius with CalculateIterations.
	Iterations int

	PressureStrength               float64
	DampingStrength                float64
	ElasticStrength                float64
	SpringStrength                 float64
	ViscousStrength                float64
	SurfaceTensionPressureStrength float64
	SurfaceTensionNormalStrength   float64
	RepulsiveStrength              float64
	PowderStrength                 float64
	EjectionStrength               float64
	StaticPressureStrength         float64
	StaticPressureRelaxation       float64
	StaticPressureIterations       int
	ColorMixingStrength            float64

	// Stride is the rest spacing between particles in diameters.
	Stride float64
	// MaxTriadDistance is the longest triad edge in diameters.
	MaxTriadDistance float64
	// BarrierCollisionTime is the barrier lookahead in steps.
	BarrierCollisionTime float64
	// MinBufferCapacity is the first allocation of every attribute buffer.
	MinBufferCapacity int

	Logger *slog.Logger
}

// DefaultDef returns the reference tuning.
func DefaultDef() Def {
	return Def{
		Radius:       1,
		Density:      1,
		GravityScale: 1,

		PressureStrength:               0.05,
		DampingStrength:                1,
		ElasticStrength:                0.25,
		SpringStrength:                 0.25,
		ViscousStrength:                0.25,
		SurfaceTensionPressureStrength: 0.2,
		SurfaceTensionNormalStrength:   0.2,
		RepulsiveStrength:              1,
		PowderStrength:                 0.5,
		EjectionStrength:               0.5,
		StaticPressureStrength:         0.2,
		StaticPressureRelaxation:       0.2,
		StaticPressureIterations:       8,
		ColorMixingStrength:            0.5,

		Stride:               DefaultStride,
		MaxTriadDistance:     DefaultMaxTriadDistance,
		BarrierCollisionTime: DefaultBarrierCollisionTime,
		MinBufferCapacity:    DefaultMinBufferCapacity,
	}
}

// validate panics on parameters the solver cannot run with.
func (d Def) validate() {
	switch {
	case d.Radius <= 0:
		panic(fmt.Sprintf("particle: radius must be positive, got %v", d.Radius))
	case d.Density <= 0:
		panic(fmt.Sprintf("particle: density must be positive, got %v", d.Density))
	case d.Stride <= 0:
		panic(fmt.Sprintf("particle: stride must be positive, got %v", d.Stride))
	case d.MinBufferCapacity <= 0 || d.MinBufferCapacity > MaxParticleIndex:
		panic(fmt.Sprintf("particle: invalid minimum buffer capacity %d", d.MinBufferCapacity))
	case d.MaxCount < 0 || d.Iterations < 0 || d.StaticPressureIterations < 0:
		panic("particle: counts must not be negative")
	}
}

// ParticleDef describes a single particle.
type ParticleDef struct {
	Flags    flags.Particle
	Position r2.Vec
	Velocity r2.Vec
	Color    Color
	// Lifetime in seconds. Zero lives forever.
	Lifetime float64
	UserData any
}

// GroupDef describes a particle group. Particles are created on a stride
// grid inside Shape and at every point of Points, all in the group frame
// given by Position and Angle.
type GroupDef struct {
	Flags      flags.Particle
	GroupFlags flags.Group

	Position        r2.Vec
	Angle           float64
	LinearVelocity  r2.Vec
	AngularVelocity float64

	Color Color
	// Strength scales the stiffness of the group's bonds. Zero means 1.
	Strength float64

	Shape  geom.Shape
	Points []r2.Vec
	// Stride overrides the fill spacing in world units.
	Stride float64

	Lifetime float64
	UserData any
}
