package telemetry

import (
	"slices"
	"testing"
	"time"

	"github.com/pthm-cable/liquid/particle"
	"github.com/pthm-cable/liquid/world"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartStep()
		pc.StartPhase(particle.PhaseContacts)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(particle.PhasePressure)
		time.Sleep(200 * time.Microsecond)
		pc.EndStep()
	}

	stats := pc.Stats()

	if stats.AvgStepDuration <= 0 {
		t.Error("expected positive average step duration")
	}
	if stats.MinStepDuration > stats.AvgStepDuration || stats.AvgStepDuration > stats.MaxStepDuration {
		t.Errorf("expected min <= avg <= max, got %v %v %v",
			stats.MinStepDuration, stats.AvgStepDuration, stats.MaxStepDuration)
	}
	for _, phase := range []string{particle.PhaseContacts, particle.PhasePressure} {
		if _, ok := stats.PhaseAvg[phase]; !ok {
			t.Errorf("expected %s phase to be tracked", phase)
		}
	}
}

func TestPerfCollector_SubStepPhasesAccumulate(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.StartStep()
	for i := 0; i < 3; i++ {
		pc.StartPhase(particle.PhaseIntegrate)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(particle.PhaseBarrier)
	}
	pc.EndStep()

	stats := pc.Stats()
	if got := stats.PhaseAvg[particle.PhaseIntegrate]; got < 300*time.Microsecond {
		t.Errorf("expected integrate time summed over sub-steps >= 300us, got %v", got)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartStep()
		pc.StartPhase(particle.PhaseContacts)
		pc.EndStep()
	}

	if pc.sampleCount != 5 {
		t.Errorf("expected sample count capped at window size 5, got %d", pc.sampleCount)
	}
	stats := pc.Stats()
	if stats.AvgStepDuration <= 0 {
		t.Error("expected positive average step duration after window filled")
	}
	if stats.StepsPerSecond <= 0 {
		t.Error("expected positive steps per second")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartStep()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(100 * time.Microsecond)
		pc.EndStep()
	}

	stats := pc.Stats()

	fastPct := stats.PhasePct["fast"]
	slowPct := stats.PhasePct["slow"]
	if slowPct <= fastPct {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", slowPct, fastPct)
	}
	if slowPct+fastPct > 100.0001 {
		t.Errorf("phase percentages exceed step time: %v", slowPct+fastPct)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	if stats.AvgStepDuration != 0 {
		t.Error("expected zero avg step duration for empty collector")
	}
	if stats.PhaseAvg == nil {
		t.Error("expected non-nil PhaseAvg map")
	}
	if stats.PhasePct == nil {
		t.Error("expected non-nil PhasePct map")
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()

	if stats.FrameDuration < 15*time.Millisecond {
		t.Errorf("expected frame duration >= 15ms, got %v", stats.FrameDuration)
	}
	if stats.FPS <= 0 || stats.FPS > 70 {
		t.Errorf("expected FPS in (0, 70] with 16ms frames, got %v", stats.FPS)
	}
}

func TestPhasesCoverStep(t *testing.T) {
	phases := Phases()
	for _, want := range []string{particle.PhaseContacts, particle.PhaseCompact, world.PhaseBodies, PhaseTelemetry} {
		if !slices.Contains(phases, want) {
			t.Errorf("Phases() missing %q", want)
		}
	}
	if phases[len(phases)-1] != PhaseTelemetry {
		t.Errorf("expected telemetry last, got %q", phases[len(phases)-1])
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	stats := PerfStats{
		AvgStepDuration: 1500 * time.Microsecond,
		PhasePct: map[string]float64{
			particle.PhasePressure: 40,
			world.PhaseBodies:      5,
		},
	}
	row := stats.ToCSV(120)
	if row.WindowEnd != 120 || row.AvgStepUS != 1500 {
		t.Errorf("unexpected header fields: %+v", row)
	}
	if row.PressurePct != 40 || row.BodiesPct != 5 || row.ContactsPct != 0 {
		t.Errorf("unexpected phase columns: %+v", row)
	}
}
