package main

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/liquid/config"
	"github.com/pthm-cable/liquid/scenario"
	"github.com/pthm-cable/liquid/telemetry"
)

// FitnessEvaluator runs headless scenarios and scores how well the fluid
// settles.
type FitnessEvaluator struct {
	params     *ParamVector
	maxSteps   int32
	scenarios  []string
	baseConfig *config.Config

	mu          sync.Mutex
	lastSummary evalSummary
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxSteps int32, scenarios []string, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxSteps:   maxSteps,
		scenarios:  scenarios,
		baseConfig: baseCfg,
	}
}

// Fitness terms.
const (
	failPenalty       = 1e3
	targetWeight      = 1.0 // contact weight of an uncompressed hexagonal packing
	compressionWeight = 10.0
	lossWeight        = 5.0
	warmupWindows     = 1
)

// evalSummary holds the averaged fitness terms of one evaluation.
type evalSummary struct {
	Energy      float64 // Kinetic energy per particle
	Compression float64
	Lost        float64 // Fraction of particles destroyed
	Failed      int     // Scenarios that failed to build or blew up
}

// LastSummary returns the fitness terms from the most recent evaluation.
func (fe *FitnessEvaluator) LastSummary() evalSummary {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSummary
}

// runResult holds the results from a single scenario run.
type runResult struct {
	initial int
	windows []telemetry.WindowStats
	err     error
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Every scenario runs in its own goroutine.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]runResult, len(fe.scenarios))
	var wg sync.WaitGroup
	for i, name := range fe.scenarios {
		wg.Add(1)
		go func(idx int, name string) {
			defer wg.Done()
			results[idx] = fe.runScenario(name, x)
		}(i, name)
	}
	wg.Wait()

	var total float64
	var sum evalSummary
	for _, r := range results {
		s := scoreRun(r)
		total += s.fitness()
		sum.Energy += s.Energy
		sum.Compression += s.Compression
		sum.Lost += s.Lost
		sum.Failed += s.Failed
	}

	n := float64(len(results))
	sum.Energy /= n
	sum.Compression /= n
	sum.Lost /= n

	fe.mu.Lock()
	fe.lastSummary = sum
	fe.mu.Unlock()

	return total / n
}

// runScenario builds one scenario with the parameters applied and steps it
// for maxSteps, collecting a stats window at the configured interval.
func (fe *FitnessEvaluator) runScenario(name string, x []float64) runResult {
	cfg := *fe.baseConfig
	scene, err := scenario.Build(name, &cfg)
	if err != nil {
		return runResult{err: err}
	}
	// Scenario tuning runs inside Build, so apply on the live system to
	// make the candidate values stick.
	fe.params.ApplyToSystem(scene.System, x)

	collector := telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.World.DT)
	scene.System.SetDestructionListener(collector)

	result := runResult{initial: scene.System.Count()}
	for step := int32(1); step <= fe.maxSteps; step++ {
		scene.Step(cfg.World.DT)
		collector.Sample(scene.System)
		if collector.ShouldFlush(step) {
			w := collector.Flush(step, scene.System)
			result.windows = append(result.windows, w)
			if diverged(w) {
				result.err = fmt.Errorf("%s diverged at step %d", name, step)
				return result
			}
		}
	}
	return result
}

// diverged reports whether a window shows a blown-up simulation.
func diverged(w telemetry.WindowStats) bool {
	return math.IsNaN(w.KineticEnergy) || math.IsInf(w.KineticEnergy, 0) ||
		math.IsNaN(w.SpeedMax) || math.IsInf(w.SpeedMax, 0)
}

func (s evalSummary) fitness() float64 {
	if s.Failed > 0 {
		return failPenalty
	}
	return s.Energy + compressionWeight*s.Compression*s.Compression + lossWeight*s.Lost
}

// scoreRun reduces a run's windows to fitness terms. Warmup windows are
// skipped so the initial collapse does not dominate.
func scoreRun(r runResult) evalSummary {
	if r.err != nil || len(r.windows) <= warmupWindows {
		return evalSummary{Failed: 1}
	}
	valid := r.windows[warmupWindows:]

	energy := make([]float64, 0, len(valid))
	compression := make([]float64, 0, len(valid))
	for _, w := range valid {
		if w.Particles == 0 {
			continue
		}
		energy = append(energy, w.KineticEnergy/float64(w.Particles))
		compression = append(compression, max(0, w.WeightP90-targetWeight))
	}
	if len(energy) == 0 {
		return evalSummary{Lost: 1}
	}

	var lost float64
	if r.initial > 0 {
		final := valid[len(valid)-1].Particles
		lost = clamp01(float64(r.initial-final) / float64(r.initial))
	}
	return evalSummary{
		Energy:      stat.Mean(energy, nil),
		Compression: stat.Mean(compression, nil),
		Lost:        lost,
	}
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
