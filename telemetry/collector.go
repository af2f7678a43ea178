package telemetry

import (
	"github.com/pthm-cable/liquid/particle"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

// Collector accumulates per-step samples within time windows and produces
// WindowStats. It counts destroyed particles and groups as a
// particle.DestructionListener; only particles destroyed with the listener
// flag are seen.
type Collector struct {
	windowDurationSec   float64
	windowDurationSteps int32
	dt                  float64

	windowStartStep int32

	destroyed       int
	groupsDestroyed int
	collisionEnergy []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per step (used for step-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	steps := int32(windowDurationSec/dt + 0.5)
	if steps < 1 {
		steps = 1
	}
	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationSteps: steps,
		dt:                  dt,
	}
}

// ParticleDestroyed implements particle.DestructionListener.
func (c *Collector) ParticleDestroyed(*particle.System, int) { c.destroyed++ }

// GroupDestroyed implements particle.DestructionListener.
func (c *Collector) GroupDestroyed(*particle.Group) { c.groupsDestroyed++ }

// Sample records the per-step quantities of s. Call it after every step.
func (c *Collector) Sample(s *particle.System) {
	c.collisionEnergy = append(c.collisionEnergy, s.ComputeCollisionEnergy())
}

// ShouldFlush returns true if enough steps have passed to flush the window.
func (c *Collector) ShouldFlush(currentStep int32) bool {
	return currentStep-c.windowStartStep >= c.windowDurationSteps
}

// Flush produces a WindowStats from the window's samples and the current
// state of s, and resets counters for the next window.
func (c *Collector) Flush(currentStep int32, s *particle.System) WindowStats {
	st := s.Stats()

	vel := s.Velocities()
	speeds := make([]float64, len(vel))
	for i, v := range vel {
		speeds[i] = r2.Norm(v)
	}
	speed := Summarize(speeds)
	weight := Summarize(s.Weights())

	var energyMean, energyMax float64
	if n := len(c.collisionEnergy); n > 0 {
		energyMean = floats.Sum(c.collisionEnergy) / float64(n)
		energyMax = floats.Max(c.collisionEnergy)
	}

	stats := WindowStats{
		WindowStartStep: c.windowStartStep,
		WindowEndStep:   currentStep,
		SimTimeSec:      float64(currentStep) * c.dt,

		Particles:    st.Count,
		Capacity:     st.Capacity,
		Groups:       st.Groups,
		Contacts:     st.Contacts,
		BodyContacts: st.BodyContacts,
		Pairs:        st.Pairs,
		Triads:       st.Triads,

		Destroyed:       c.destroyed,
		GroupsDestroyed: c.groupsDestroyed,

		SpeedMean: speed.Mean,
		SpeedStd:  speed.Std,
		SpeedP50:  speed.P50,
		SpeedP90:  speed.P90,
		SpeedMax:  speed.Max,

		WeightMean: weight.Mean,
		WeightP90:  weight.P90,
		WeightMax:  weight.Max,

		CollisionEnergyMean: energyMean,
		CollisionEnergyMax:  energyMax,
		KineticEnergy:       s.KineticEnergy(),
	}

	c.windowStartStep = currentStep
	c.destroyed = 0
	c.groupsDestroyed = 0
	c.collisionEnergy = c.collisionEnergy[:0]
	return stats
}

// WindowDurationSteps returns the number of steps per window.
func (c *Collector) WindowDurationSteps() int32 {
	return c.windowDurationSteps
}
