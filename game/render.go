package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/liquid/scenario"
	"github.com/pthm-cable/liquid/ui"
)

var backgroundColor = rl.Color{R: 18, G: 20, B: 26, A: 255}

const controls = "Space: pause | ,/.: speed | C: color | P: perf | T: tuning | R: reset | N: next | LMB: pour | RMB: erase | MMB/arrows: pan | wheel: zoom"

// Draw renders the scene and UI.
func (g *Game) Draw() {
	rl.BeginDrawing()
	defer rl.EndDrawing()

	rl.ClearBackground(backgroundColor)

	g.bodyRenderer.Draw(g.camera, g.scene.World)
	g.particleRenderer.Draw(g.camera, g.scene.System)

	g.drawUI()
}

func (g *Game) drawUI() {
	sys := g.scene.System
	st := sys.Stats()

	title := g.scenarioID
	if info, ok := scenario.Lookup(g.scenarioID); ok {
		title = info.Name
	}
	g.hud.Draw(ui.HUDData{
		Scenario:  title,
		Particles: st.Count,
		Groups:    st.Groups,
		Bodies:    len(g.scene.Bodies),
		Contacts:  st.Contacts,
		Step:      st.Step,
		SimTime:   st.Time,
		Speed:     g.stepsPerUpdate,
		FPS:       rl.GetFPS(),
		Paused:    g.paused,
		ColorMode: g.particleRenderer.Mode.String(),
	})
	g.hud.DrawControls(int32(g.screenHeight), controls)

	if g.showPerf {
		g.perfPanel.Draw(g.perfCollector.Stats())
	}

	if g.showTuning {
		switch g.tuningPanel.Draw(sys, g.paused) {
		case ui.ActionTogglePause:
			g.paused = !g.paused
		case ui.ActionReset:
			g.logError("reset", g.Reset())
		case ui.ActionNextScenario:
			g.logError("next scenario", g.NextScenario())
		}
	}
}
