package main

import (
	"github.com/pthm-cable/liquid/config"
	"github.com/pthm-cable/liquid/particle"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	field func(*config.ParticlesConfig) *float64
	set   func(*particle.System, float64)
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable solver strengths.
// Defaults are taken from base.
func NewParamVector(base *config.Config) *ParamVector {
	specs := []ParamSpec{
		{Name: "pressure", Path: "particles.pressure", Min: 0.01, Max: 0.5,
			field: func(p *config.ParticlesConfig) *float64 { return &p.Pressure },
			set:   (*particle.System).SetPressureStrength},
		{Name: "damping", Path: "particles.damping", Min: 0, Max: 2,
			field: func(p *config.ParticlesConfig) *float64 { return &p.Damping },
			set:   (*particle.System).SetDamping},
		{Name: "viscous", Path: "particles.viscous", Min: 0, Max: 1,
			field: func(p *config.ParticlesConfig) *float64 { return &p.Viscous },
			set:   (*particle.System).SetViscousStrength},
		{Name: "static_pressure", Path: "particles.static_pressure", Min: 0, Max: 1,
			field: func(p *config.ParticlesConfig) *float64 { return &p.StaticPressure },
			set:   (*particle.System).SetStaticPressureStrength},
		{Name: "repulsive", Path: "particles.repulsive", Min: 0, Max: 2,
			field: func(p *config.ParticlesConfig) *float64 { return &p.Repulsive },
			set:   (*particle.System).SetRepulsiveStrength},
	}
	for i := range specs {
		specs[i].Default = *specs[i].field(&base.Particles)
	}
	return &ParamVector{Specs: specs}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		*pv.Specs[i].field(&cfg.Particles) = v
	}
}

// ApplyToSystem sets clamped parameter values on a running system. Values
// set this way win over scenario-specific tuning.
func (pv *ParamVector) ApplyToSystem(s *particle.System, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(s, v)
	}
}

// ExtractFromConfig extracts current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = *spec.field(&cfg.Particles)
	}
	return v
}
