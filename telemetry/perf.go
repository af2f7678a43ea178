package telemetry

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/liquid/particle"
	"github.com/pthm-cable/liquid/world"
)

// PhaseTelemetry covers sampling and writing statistics after a step.
const PhaseTelemetry = "telemetry"

// Phases lists every phase a step reports, in execution order.
func Phases() []string {
	return append(particle.Phases(), world.PhaseBodies, PhaseTelemetry)
}

// PerfSample holds timing data for a single step.
type PerfSample struct {
	StepDuration time.Duration
	Phases       map[string]time.Duration
}

// PerfCollector tracks performance metrics over a rolling window. It
// implements particle.PhaseTimer; sub-step phases accumulate into one
// duration per step.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	stepStart     time.Time
	phaseStart    time.Time
	lastPhase     string

	// Frame timing (for graphics mode)
	lastFrameTime time.Time
	frameDuration time.Duration
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of steps to average over (e.g., 60 for 1 second at 60fps).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartStep begins timing a new simulation step.
func (p *PerfCollector) StartStep() {
	p.stepStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase ends the running phase, if any, and begins timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndStep finishes timing the current step and records the sample.
func (p *PerfCollector) EndStep() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.lastPhase = ""

	p.samples[p.writeIndex] = PerfSample{
		StepDuration: now.Sub(p.stepStart),
		Phases:       p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// RecordFrame records frame timing for graphics mode.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrameTime.IsZero() {
		p.frameDuration = now.Sub(p.lastFrameTime)
	}
	p.lastFrameTime = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgStepDuration time.Duration
	MinStepDuration time.Duration
	MaxStepDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total step time
	PhasePct map[string]float64

	StepsPerSecond float64

	// Frame timing (graphics mode)
	FrameDuration time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	var fps float64
	if p.frameDuration > 0 {
		fps = float64(time.Second) / float64(p.frameDuration)
	}

	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg:      make(map[string]time.Duration),
			PhasePct:      make(map[string]float64),
			FrameDuration: p.frameDuration,
			FPS:           fps,
		}
	}

	var total, minStep, maxStep time.Duration
	phaseSum := make(map[string]time.Duration)
	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.StepDuration
		if i == 0 || s.StepDuration < minStep {
			minStep = s.StepDuration
		}
		if s.StepDuration > maxStep {
			maxStep = s.StepDuration
		}
		for phase, d := range s.Phases {
			phaseSum[phase] += d
		}
	}

	avg := total / time.Duration(p.sampleCount)
	phaseAvg := make(map[string]time.Duration, len(phaseSum))
	phasePct := make(map[string]float64, len(phaseSum))
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avg > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avg) * 100
		}
	}

	var stepsPerSec float64
	if avg > 0 {
		stepsPerSec = float64(time.Second) / float64(avg)
	}

	return PerfStats{
		AvgStepDuration: avg,
		MinStepDuration: minStep,
		MaxStepDuration: maxStep,
		PhaseAvg:        phaseAvg,
		PhasePct:        phasePct,
		StepsPerSecond:  stepsPerSec,
		FrameDuration:   p.frameDuration,
		FPS:             fps,
	}
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_step_us", s.AvgStepDuration.Microseconds(),
		"min_step_us", s.MinStepDuration.Microseconds(),
		"max_step_us", s.MaxStepDuration.Microseconds(),
		"steps_per_sec", int(s.StepsPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for _, phase := range Phases() {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_step_us", s.AvgStepDuration.Microseconds()),
		slog.Int64("min_step_us", s.MinStepDuration.Microseconds()),
		slog.Int64("max_step_us", s.MaxStepDuration.Microseconds()),
		slog.Float64("steps_per_sec", s.StepsPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, phase := range Phases() {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd         int32   `csv:"window_end"`
	AvgStepUS         int64   `csv:"avg_step_us"`
	MinStepUS         int64   `csv:"min_step_us"`
	MaxStepUS         int64   `csv:"max_step_us"`
	StepsPerSec       float64 `csv:"steps_per_sec"`
	FPS               float64 `csv:"fps"`
	ContactsPct       float64 `csv:"contacts_pct"`
	PressurePct       float64 `csv:"pressure_pct"`
	ViscosityPct      float64 `csv:"viscosity_pct"`
	TensilePct        float64 `csv:"tensile_pct"`
	SolidPct          float64 `csv:"solid_pct"`
	ColorMixingPct    float64 `csv:"color_mixing_pct"`
	ElasticPct        float64 `csv:"elastic_pct"`
	LimitVelocityPct  float64 `csv:"limit_velocity_pct"`
	RigidPct          float64 `csv:"rigid_pct"`
	StaticPressurePct float64 `csv:"static_pressure_pct"`
	BarrierPct        float64 `csv:"barrier_pct"`
	BodyCouplingPct   float64 `csv:"body_coupling_pct"`
	IntegratePct      float64 `csv:"integrate_pct"`
	CompactPct        float64 `csv:"compact_pct"`
	BodiesPct         float64 `csv:"bodies_pct"`
	TelemetryPct      float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:         windowEnd,
		AvgStepUS:         s.AvgStepDuration.Microseconds(),
		MinStepUS:         s.MinStepDuration.Microseconds(),
		MaxStepUS:         s.MaxStepDuration.Microseconds(),
		StepsPerSec:       s.StepsPerSecond,
		FPS:               s.FPS,
		ContactsPct:       s.PhasePct[particle.PhaseContacts],
		PressurePct:       s.PhasePct[particle.PhasePressure],
		ViscosityPct:      s.PhasePct[particle.PhaseViscosity],
		TensilePct:        s.PhasePct[particle.PhaseTensile],
		SolidPct:          s.PhasePct[particle.PhaseSolid],
		ColorMixingPct:    s.PhasePct[particle.PhaseColorMixing],
		ElasticPct:        s.PhasePct[particle.PhaseElastic],
		LimitVelocityPct:  s.PhasePct[particle.PhaseLimitVelocity],
		RigidPct:          s.PhasePct[particle.PhaseRigid],
		StaticPressurePct: s.PhasePct[particle.PhaseStaticPressure],
		BarrierPct:        s.PhasePct[particle.PhaseBarrier],
		BodyCouplingPct:   s.PhasePct[particle.PhaseBodyCoupling],
		IntegratePct:      s.PhasePct[particle.PhaseIntegrate],
		CompactPct:        s.PhasePct[particle.PhaseCompact],
		BodiesPct:         s.PhasePct[world.PhaseBodies],
		TelemetryPct:      s.PhasePct[PhaseTelemetry],
	}
}
