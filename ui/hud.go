package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/liquid/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Scenario   string
	Particles  int
	Groups     int
	Bodies     int
	Contacts   int
	Step       uint64
	SimTime    float64
	Speed      int
	FPS        int32
	Paused     bool
	ColorMode  string
}

// HUD renders the main heads-up display.
type HUD struct{}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Scenario, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Particles: %d | Groups: %d | Bodies: %d | Contacts: %d",
			data.Particles, data.Groups, data.Bodies, data.Contacts),
		10, 35, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Step: %d | t=%.2fs | Speed: %dx | FPS: %d | Color: %s",
			data.Step, data.SimTime, data.Speed, data.FPS, data.ColorMode),
		10, 55, 16, rl.LightGray,
	)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, 75, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-phase step timing.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    300,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel. Phases are listed in step order.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	phases := telemetry.Phases()
	height := int32(len(phases)+3)*r.Theme.LineHeight + 2*r.Theme.Padding
	r.DrawPanel(p.x, p.y, p.width, height)

	x := p.x + r.Theme.Padding
	y := r.DrawSectionHeader(x, p.y+r.Theme.Padding, "Step Performance")
	y = r.DrawLabelValue(x, y, "Step", fmt.Sprintf("%s (%.0f/s)",
		stats.AvgStepDuration.Round(time.Microsecond), stats.StepsPerSecond))

	for _, phase := range phases {
		pct := float32(stats.PhasePct[phase]) / 100
		fill := r.Theme.BarFill
		if pct > 0.3 {
			fill = rl.Red
		} else if pct > 0.15 {
			fill = rl.Orange
		}
		y = r.DrawBar(x, y, phase, pct, p.width-2*r.Theme.Padding, fill)
	}
}
