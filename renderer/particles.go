package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/liquid/camera"
	"github.com/pthm-cable/liquid/flags"
	"github.com/pthm-cable/liquid/particle"
)

// ColorMode selects how particles are tinted.
type ColorMode int

const (
	ColorParticle ColorMode = iota // Per-particle color
	ColorSpeed                     // Blue (slow) to white (fast)
	ColorWeight                    // Contact weight, a pressure proxy
)

func (m ColorMode) String() string {
	switch m {
	case ColorSpeed:
		return "speed"
	case ColorWeight:
		return "weight"
	default:
		return "color"
	}
}

// Next cycles to the following mode.
func (m ColorMode) Next() ColorMode {
	return (m + 1) % 3
}

var (
	waterColor = rl.Color{R: 60, G: 120, B: 220, A: 255}
	wallColor  = rl.Color{R: 140, G: 140, B: 140, A: 255}
	slowColor  = rl.Color{R: 30, G: 60, B: 160, A: 255}
)

// ParticleRenderer draws particles as discs.
type ParticleRenderer struct {
	Mode ColorMode
	// SpeedScale is the speed drawn at full brightness in ColorSpeed mode.
	SpeedScale float32
}

// NewParticleRenderer creates a new particle renderer.
func NewParticleRenderer() *ParticleRenderer {
	return &ParticleRenderer{SpeedScale: 4}
}

// Draw renders all particles visible through cam.
func (r *ParticleRenderer) Draw(cam *camera.Camera, s *particle.System) {
	radius := float32(s.Radius())
	screenRadius := radius * cam.Scale()
	if screenRadius < 1 {
		screenRadius = 1
	}

	pos := s.Positions()
	vel := s.Velocities()
	colors := s.Colors()
	pflags := s.Flags()
	weights := s.Weights()

	for i := range pos {
		wx, wy := float32(pos[i].X), float32(pos[i].Y)
		if !cam.IsVisible(wx, wy, radius) {
			continue
		}

		var color rl.Color
		switch r.Mode {
		case ColorSpeed:
			speed := float32(math.Hypot(vel[i].X, vel[i].Y))
			color = blend(slowColor, rl.White, speed/r.SpeedScale)
		case ColorWeight:
			var w float32
			if i < len(weights) {
				w = float32(weights[i])
			}
			color = blend(slowColor, rl.Red, w/2)
		default:
			color = particleColor(colors[i], pflags[i])
		}

		sx, sy := cam.WorldToScreen(wx, wy)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, screenRadius, color)
	}
}

// particleColor returns the stored color, or a default by kind when the
// particle was created without one.
func particleColor(c particle.Color, f flags.Particle) rl.Color {
	if !c.IsZero() {
		return rl.Color{R: c.R, G: c.G, B: c.B, A: c.A}
	}
	if f.IsWall() {
		return wallColor
	}
	return waterColor
}

// blend linearly interpolates between a and b, with t clamped to [0, 1].
func blend(a, b rl.Color, t float32) rl.Color {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	lerp := func(x, y uint8) uint8 {
		return uint8(float32(x) + (float32(y)-float32(x))*t)
	}
	return rl.Color{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: lerp(a.A, b.A)}
}
