package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartStep int32   `csv:"-"`
	WindowEndStep   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// System size at window end
	Particles    int `csv:"particles"`
	Capacity     int `csv:"capacity"`
	Groups       int `csv:"groups"`
	Contacts     int `csv:"contacts"`
	BodyContacts int `csv:"body_contacts"`
	Pairs        int `csv:"pairs"`
	Triads       int `csv:"triads"`

	// Events during window
	Destroyed       int `csv:"destroyed"`
	GroupsDestroyed int `csv:"groups_destroyed"`

	// Particle speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
	SpeedMax  float64 `csv:"speed_max"`

	// Contact weight distribution (sampled at window end)
	WeightMean float64 `csv:"weight_mean"`
	WeightP90  float64 `csv:"weight_p90"`
	WeightMax  float64 `csv:"weight_max"`

	// Energy
	CollisionEnergyMean float64 `csv:"collision_energy_mean"` // Mean over the window's steps
	CollisionEnergyMax  float64 `csv:"collision_energy_max"`
	KineticEnergy       float64 `csv:"kinetic_energy"`

	// Scenario running when the window closed; set by the caller.
	Scenario string `csv:"scenario"`
}

// Distribution summarizes a sample of values.
type Distribution struct {
	Mean, Std          float64
	P10, P50, P90, Max float64
}

// Summarize returns the population mean and standard deviation and the
// empirical quantiles of values. It returns the zero Distribution for an
// empty sample.
func Summarize(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean, std := stat.PopMeanStdDev(sorted, nil)
	return Distribution{
		Mean: mean,
		Std:  std,
		P10:  stat.Quantile(0.10, stat.Empirical, sorted, nil),
		P50:  stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90:  stat.Quantile(0.90, stat.Empirical, sorted, nil),
		Max:  floats.Max(sorted),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartStep)),
		slog.Int("window_end", int(s.WindowEndStep)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.Int("capacity", s.Capacity),
		slog.Int("groups", s.Groups),
		slog.Int("contacts", s.Contacts),
		slog.Int("body_contacts", s.BodyContacts),
		slog.Int("pairs", s.Pairs),
		slog.Int("triads", s.Triads),
		slog.Int("destroyed", s.Destroyed),
		slog.Int("groups_destroyed", s.GroupsDestroyed),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("weight_mean", s.WeightMean),
		slog.Float64("weight_p90", s.WeightP90),
		slog.Float64("weight_max", s.WeightMax),
		slog.Float64("collision_energy_mean", s.CollisionEnergyMean),
		slog.Float64("collision_energy_max", s.CollisionEnergyMax),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.String("scenario", s.Scenario),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
