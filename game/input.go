package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/liquid/flags"
	"github.com/pthm-cable/liquid/geom"
	"github.com/pthm-cable/liquid/particle"
)

// brushRadius is the radius in meters of the spawn and erase brush.
const brushRadius = 0.25

var brushColor = particle.Color{R: 80, G: 200, B: 255, A: 255}

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyC) {
		g.particleRenderer.Mode = g.particleRenderer.Mode.Next()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		g.showPerf = !g.showPerf
	}
	if rl.IsKeyPressed(rl.KeyT) {
		g.showTuning = !g.showTuning
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.logError("reset", g.Reset())
	}
	if rl.IsKeyPressed(rl.KeyN) {
		g.logError("next scenario", g.NextScenario())
	}

	g.handleCameraInput()
	g.handleBrush()
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(w, h)
	g.tuningPanel.SetPosition(int32(w)-330, 10)
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	// Arrow keys pan a fixed number of pixels per frame.
	const panPixels = float32(8.0)
	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(-panPixels, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(panPixels, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, -panPixels)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, panPixels)
	}

	// Middle mouse drag
	if rl.IsMouseButtonDown(rl.MouseButtonMiddle) {
		d := rl.GetMouseDelta()
		g.camera.Pan(d.X, d.Y)
	}

	// Zoom toward the cursor
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		mouse := rl.GetMousePosition()
		factor := float32(g.cfg.Camera.ZoomStep)
		if wheel < 0 {
			factor = 1 / factor
		}
		g.camera.ZoomAt(mouse.X, mouse.Y, factor)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}

// handleBrush pours water with the left button and erases particles with
// the right button.
func (g *Game) handleBrush() {
	mouse := rl.GetMousePosition()
	if g.showTuning && g.tuningPanel.Contains(mouse.X, mouse.Y) {
		return
	}
	wx, wy := g.camera.ScreenToWorld(mouse.X, mouse.Y)
	at := r2.Vec{X: float64(wx), Y: float64(wy)}
	brush := geom.Circle{Radius: brushRadius}

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		_, err := g.scene.System.CreateParticleGroup(particle.GroupDef{
			Flags:    flags.Water,
			Position: at,
			Shape:    brush,
			Color:    brushColor,
		})
		g.logError("spawn particles", err)
	}
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		_, err := g.scene.System.DestroyParticlesInShape(brush, geom.NewTransform(at, 0), true)
		g.logError("erase particles", err)
	}
}

func (g *Game) logError(op string, err error) {
	if err != nil {
		slog.Warn("input action failed", "op", op, "error", err)
	}
}
