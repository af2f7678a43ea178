// Package game runs a scenario in a loop, headless or in a raylib window,
// and feeds telemetry from every step.
package game

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/pthm-cable/liquid/camera"
	"github.com/pthm-cable/liquid/config"
	"github.com/pthm-cable/liquid/renderer"
	"github.com/pthm-cable/liquid/scenario"
	"github.com/pthm-cable/liquid/telemetry"
	"github.com/pthm-cable/liquid/ui"
)

// Options configures a game instance.
type Options struct {
	Scenario       string  // Scenario ID, empty = config scenario
	LogStats       bool    // Log window stats via slog
	StatsWindowSec float64 // Stats window in simulated seconds, 0 = config
	OutputDir      string  // Directory for CSV logs, empty = disabled
	Headless       bool    // No window, input or drawing
	StepsPerUpdate int     // Steps per Update call
}

// Game holds the complete run state.
type Game struct {
	cfg        *config.Config
	scene      *scenario.Scene
	scenarioID string

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	logStats      bool

	// State
	tick           int32
	paused         bool
	headless       bool
	stepsPerUpdate int

	// Graphics (nil when headless)
	camera           *camera.Camera
	particleRenderer *renderer.ParticleRenderer
	bodyRenderer     *renderer.BodyRenderer
	hud              *ui.HUD
	perfPanel        *ui.PerfPanel
	tuningPanel      *ui.TuningPanel
	showPerf         bool
	showTuning       bool

	screenWidth, screenHeight float32
}

// NewGameWithOptions creates a game from the loaded config.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := config.Cfg()

	id := opts.Scenario
	if id == "" {
		id = cfg.Scenario.Name
	}

	windowSec := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		windowSec = opts.StatsWindowSec
	}

	stepsPerUpdate := opts.StepsPerUpdate
	if stepsPerUpdate < 1 {
		stepsPerUpdate = 1
	}

	g := &Game{
		cfg:            cfg,
		collector:      telemetry.NewCollector(windowSec, cfg.World.DT),
		perfCollector:  telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		logStats:       opts.LogStats,
		headless:       opts.Headless,
		stepsPerUpdate: stepsPerUpdate,
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	if err := g.loadScenario(id); err != nil {
		om.Close()
		return nil, err
	}

	if !opts.Headless {
		g.initGraphics()
	}
	return g, nil
}

func (g *Game) initGraphics() {
	g.camera = camera.FromConfig(g.cfg)
	g.screenWidth = g.cfg.Derived.ScreenW32
	g.screenHeight = g.cfg.Derived.ScreenH32
	g.particleRenderer = renderer.NewParticleRenderer()
	g.bodyRenderer = renderer.NewBodyRenderer()
	g.hud = ui.NewHUD()
	g.perfPanel = ui.NewPerfPanel(10, 100)
	g.tuningPanel = ui.NewTuningPanel(int32(g.screenWidth)-330, 10)
	g.showTuning = true
}

// loadScenario replaces the scene and attaches telemetry to it.
func (g *Game) loadScenario(id string) error {
	scene, err := scenario.Build(id, g.cfg)
	if err != nil {
		return err
	}
	scene.System.SetDestructionListener(g.collector)
	scene.System.SetPhaseTimer(g.perfCollector)
	scene.World.SetPhaseTimer(g.perfCollector)

	g.scene = scene
	g.scenarioID = id
	slog.Info("scenario loaded",
		"scenario", id,
		"particles", scene.System.Count(),
		"groups", len(scene.System.Groups()),
		"bodies", len(scene.Bodies),
		"tick", g.tick,
	)
	return nil
}

// Reset rebuilds the current scenario.
func (g *Game) Reset() error {
	return g.loadScenario(g.scenarioID)
}

// NextScenario switches to the scenario after the current one.
func (g *Game) NextScenario() error {
	ids := scenario.IDs()
	i := slices.Index(ids, g.scenarioID)
	return g.loadScenario(ids[(i+1)%len(ids)])
}

// Tick returns the number of steps run.
func (g *Game) Tick() int32 { return g.tick }

// Scene returns the running scene.
func (g *Game) Scene() *scenario.Scene { return g.scene }

// Update handles input and runs the steps for one frame.
func (g *Game) Update() {
	g.handleInput()
	g.perfCollector.RecordFrame()

	if g.paused {
		return
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.simulationStep()
	}
}

// UpdateHeadless runs the steps for one update without input.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.simulationStep()
	}
}

// simulationStep advances the scene by one fixed step.
func (g *Game) simulationStep() {
	g.perfCollector.StartStep()

	g.scene.Step(g.cfg.World.DT)

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.collector.Sample(g.scene.System)
	g.tick++
	g.flushTelemetry()

	g.perfCollector.EndStep()
}

// Unload flushes output files.
func (g *Game) Unload() {
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
