package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/liquid/particle"
)

// Tunable is a solver parameter exposed as a slider.
type Tunable struct {
	Label    string
	Min, Max float32
	Get      func(particle.Def) float64
	Set      func(*particle.System, float64)
}

// Tunables lists the solver strengths that can change while running.
var Tunables = []Tunable{
	{"Gravity scale", 0, 2,
		func(d particle.Def) float64 { return d.GravityScale },
		(*particle.System).SetGravityScale},
	{"Damping", 0, 2,
		func(d particle.Def) float64 { return d.DampingStrength },
		(*particle.System).SetDamping},
	{"Pressure", 0, 1,
		func(d particle.Def) float64 { return d.PressureStrength },
		(*particle.System).SetPressureStrength},
	{"Viscous", 0, 1,
		func(d particle.Def) float64 { return d.ViscousStrength },
		(*particle.System).SetViscousStrength},
	{"Elastic", 0, 1,
		func(d particle.Def) float64 { return d.ElasticStrength },
		(*particle.System).SetElasticStrength},
	{"Spring", 0, 1,
		func(d particle.Def) float64 { return d.SpringStrength },
		(*particle.System).SetSpringStrength},
	{"Tension pressure", 0, 1,
		func(d particle.Def) float64 { return d.SurfaceTensionPressureStrength },
		func(s *particle.System, v float64) {
			s.SetSurfaceTension(v, s.Def().SurfaceTensionNormalStrength)
		}},
	{"Tension normal", 0, 1,
		func(d particle.Def) float64 { return d.SurfaceTensionNormalStrength },
		func(s *particle.System, v float64) {
			s.SetSurfaceTension(s.Def().SurfaceTensionPressureStrength, v)
		}},
	{"Color mixing", 0, 1,
		func(d particle.Def) float64 { return d.ColorMixingStrength },
		(*particle.System).SetColorMixingStrength},
}

// TuningAction is a button press reported by the tuning panel.
type TuningAction int

const (
	ActionNone TuningAction = iota
	ActionTogglePause
	ActionReset
	ActionNextScenario
)

// TuningPanel edits solver strengths with sliders.
type TuningPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewTuningPanel creates a tuning panel anchored at (x, y).
func NewTuningPanel(x, y int32) *TuningPanel {
	return &TuningPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    320,
	}
}

// SetPosition updates the panel position.
func (t *TuningPanel) SetPosition(x, y int32) {
	t.x = x
	t.y = y
}

// Contains reports whether the screen point is over the panel, so clicks
// there are not forwarded to the scene.
func (t *TuningPanel) Contains(sx, sy float32) bool {
	return sx >= float32(t.x) && sx <= float32(t.x+t.width) &&
		sy >= float32(t.y) && sy <= float32(t.y+t.height())
}

func (t *TuningPanel) height() int32 {
	th := t.renderer.Theme
	return int32(len(Tunables))*(th.LineHeight+8) + 2*th.Padding + th.LineHeight + 40
}

// Draw renders the sliders, applies changes to s and returns the button
// pressed this frame.
func (t *TuningPanel) Draw(s *particle.System, paused bool) TuningAction {
	r := t.renderer
	th := r.Theme
	r.DrawPanel(t.x, t.y, t.width, t.height())

	x := float32(t.x + th.Padding)
	y := r.DrawSectionHeader(t.x+th.Padding, t.y+th.Padding, "Solver")
	sliderW := float32(t.width - 2*th.Padding - th.LabelWidth - 40)

	def := s.Def()
	for _, p := range Tunables {
		current := float32(p.Get(def))
		rl.DrawText(p.Label, int32(x), y+2, th.FontSize, th.LabelColor)
		bounds := rl.Rectangle{X: x + float32(th.LabelWidth), Y: float32(y), Width: sliderW, Height: 14}
		next := gui.SliderBar(bounds, "", "", current, p.Min, p.Max)
		rl.DrawText(fmt.Sprintf("%.2f", current), int32(bounds.X+sliderW+6), y+2, th.FontSize, th.ValueColor)
		if next != current {
			p.Set(s, float64(next))
		}
		y += th.LineHeight + 8
	}

	y += 4
	pauseText := "Pause"
	if paused {
		pauseText = "Resume"
	}
	action := ActionNone
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: 90, Height: 26}, pauseText) {
		action = ActionTogglePause
	}
	if gui.Button(rl.Rectangle{X: x + 100, Y: float32(y), Width: 90, Height: 26}, "Reset") {
		action = ActionReset
	}
	if gui.Button(rl.Rectangle{X: x + 200, Y: float32(y), Width: 90, Height: 26}, "Next scene") {
		action = ActionNextScenario
	}
	return action
}
