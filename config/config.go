// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/pthm-cable/liquid/particle"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Camera    CameraConfig    `yaml:"camera"`
	World     WorldConfig     `yaml:"world"`
	Particles ParticlesConfig `yaml:"particles"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Scenario  ScenarioConfig  `yaml:"scenario"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// CameraConfig holds the initial view.
type CameraConfig struct {
	PixelsPerMeter float64 `yaml:"pixels_per_meter"`
	CenterX        float64 `yaml:"center_x"`
	CenterY        float64 `yaml:"center_y"`
	MinZoom        float64 `yaml:"min_zoom"`
	MaxZoom        float64 `yaml:"max_zoom"`
	ZoomStep       float64 `yaml:"zoom_step"` // Zoom factor per wheel notch
}

// WorldConfig holds rigid-body world settings.
type WorldConfig struct {
	GravityX float64 `yaml:"gravity_x"`
	GravityY float64 `yaml:"gravity_y"`
	DT       float64 `yaml:"dt"`
	// Body solver iterations. The reference world integrates bodies without
	// contacts, so these are only recorded with the run.
	VelocityIterations int `yaml:"velocity_iterations"`
	PositionIterations int `yaml:"position_iterations"`
	ParticleIterations int `yaml:"particle_iterations"` // 0 = derive from gravity, radius and dt
}

// ParticlesConfig mirrors particle.Def.
type ParticlesConfig struct {
	Radius       float64 `yaml:"radius"`
	Density      float64 `yaml:"density"`
	GravityScale float64 `yaml:"gravity_scale"`
	MaxCount     int     `yaml:"max_count"` // 0 = unlimited

	Damping                  float64 `yaml:"damping"`
	Pressure                 float64 `yaml:"pressure"`
	Viscous                  float64 `yaml:"viscous"`
	Elastic                  float64 `yaml:"elastic"`
	Spring                   float64 `yaml:"spring"`
	SurfaceTensionPressure   float64 `yaml:"surface_tension_pressure"`
	SurfaceTensionNormal     float64 `yaml:"surface_tension_normal"`
	Repulsive                float64 `yaml:"repulsive"`
	Powder                   float64 `yaml:"powder"`
	Ejection                 float64 `yaml:"ejection"`
	StaticPressure           float64 `yaml:"static_pressure"`
	StaticPressureRelaxation float64 `yaml:"static_pressure_relaxation"`
	StaticPressureIterations int     `yaml:"static_pressure_iterations"`
	ColorMixing              float64 `yaml:"color_mixing"`

	Stride               float64 `yaml:"stride"`             // Rest spacing in diameters
	MaxTriadDistance     float64 `yaml:"max_triad_distance"` // Longest triad edge in diameters
	BarrierCollisionTime float64 `yaml:"barrier_collision_time"`
	MinBufferCapacity    int     `yaml:"min_buffer_capacity"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // Seconds of simulated time per stats row
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// ScenarioConfig selects and sizes the scene.
type ScenarioConfig struct {
	Name   string  `yaml:"name"`
	Width  float64 `yaml:"width"`  // Container width in meters
	Height float64 `yaml:"height"` // Container height in meters
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Gravity        r2.Vec  // World gravity as a vector
	ScreenW32      float32 // Screen.Width as float32
	ScreenH32      float32 // Screen.Height as float32
	StepsPerWindow int     // Telemetry.StatsWindow in steps, at least 1
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Fields missing from the file keep their defaults.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.World.DT <= 0:
		return fmt.Errorf("world.dt must be positive, got %v", c.World.DT)
	case c.Particles.Radius <= 0:
		return fmt.Errorf("particles.radius must be positive, got %v", c.Particles.Radius)
	case c.Particles.Density <= 0:
		return fmt.Errorf("particles.density must be positive, got %v", c.Particles.Density)
	case c.Particles.Stride <= 0:
		return fmt.Errorf("particles.stride must be positive, got %v", c.Particles.Stride)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Gravity = r2.Vec{X: c.World.GravityX, Y: c.World.GravityY}
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.StepsPerWindow = max(1, int(c.Telemetry.StatsWindow/c.World.DT+0.5))
}

// ParticleDef returns the particle system definition described by the
// particles and world sections.
func (c *Config) ParticleDef() particle.Def {
	p := c.Particles
	return particle.Def{
		Radius:       p.Radius,
		Density:      p.Density,
		GravityScale: p.GravityScale,
		MaxCount:     p.MaxCount,
		Iterations:   c.World.ParticleIterations,

		DampingStrength:                p.Damping,
		PressureStrength:               p.Pressure,
		ViscousStrength:                p.Viscous,
		ElasticStrength:                p.Elastic,
		SpringStrength:                 p.Spring,
		SurfaceTensionPressureStrength: p.SurfaceTensionPressure,
		SurfaceTensionNormalStrength:   p.SurfaceTensionNormal,
		RepulsiveStrength:              p.Repulsive,
		PowderStrength:                 p.Powder,
		EjectionStrength:               p.Ejection,
		StaticPressureStrength:         p.StaticPressure,
		StaticPressureRelaxation:       p.StaticPressureRelaxation,
		StaticPressureIterations:       p.StaticPressureIterations,
		ColorMixingStrength:            p.ColorMixing,

		Stride:               p.Stride,
		MaxTriadDistance:     p.MaxTriadDistance,
		BarrierCollisionTime: p.BarrierCollisionTime,
		MinBufferCapacity:    p.MinBufferCapacity,
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
