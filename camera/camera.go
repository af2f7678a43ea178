// Package camera provides a 2D camera system for viewport control.
package camera

import (
	"github.com/pthm-cable/liquid/config"
	"gonum.org/v1/gonum/spatial/r2"
)

// Camera maps world meters (y up) to screen pixels (y down).
// Supports pan and zoom.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float32

	// Zoom level (1.0 = PixelsPerMeter pixels per meter)
	Zoom float32

	// PixelsPerMeter is the scale at zoom 1
	PixelsPerMeter float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Zoom constraints
	MinZoom, MaxZoom float32

	// Home view restored by Reset
	homeX, homeY float32
}

// New creates a camera centered on (cx, cy) with 1:1 zoom.
func New(viewportW, viewportH, pixelsPerMeter, cx, cy float32) *Camera {
	return &Camera{
		X:              cx,
		Y:              cy,
		Zoom:           1.0,
		PixelsPerMeter: pixelsPerMeter,
		ViewportW:      viewportW,
		ViewportH:      viewportH,
		MinZoom:        0.1,
		MaxZoom:        10.0,
		homeX:          cx,
		homeY:          cy,
	}
}

// FromConfig creates a camera from the camera and screen sections.
func FromConfig(cfg *config.Config) *Camera {
	c := cfg.Camera
	cam := New(cfg.Derived.ScreenW32, cfg.Derived.ScreenH32,
		float32(c.PixelsPerMeter), float32(c.CenterX), float32(c.CenterY))
	cam.MinZoom = float32(c.MinZoom)
	cam.MaxZoom = float32(c.MaxZoom)
	return cam
}

// Scale returns the current pixels per meter.
func (c *Camera) Scale() float32 {
	return c.PixelsPerMeter * c.Zoom
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	s := c.Scale()
	sx = c.ViewportW/2 + (wx-c.X)*s
	sy = c.ViewportH/2 - (wy-c.Y)*s
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	s := c.Scale()
	wx = c.X + (sx-c.ViewportW/2)/s
	wy = c.Y - (sy-c.ViewportH/2)/s
	return wx, wy
}

// IsVisible returns true if a circle at (wx, wy) with given radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	s := c.Scale()
	halfW := c.ViewportW/(2*s) + radius
	halfH := c.ViewportH/(2*s) + radius
	return absf(wx-c.X) <= halfW && absf(wy-c.Y) <= halfH
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Pan moves the view by the given delta in screen pixels, so the world
// follows a dragging cursor.
func (c *Camera) Pan(dx, dy float32) {
	s := c.Scale()
	c.X -= dx / s
	c.Y += dy / s
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// ZoomAt zooms by factor keeping the world point under (sx, sy) fixed.
func (c *Camera) ZoomAt(sx, sy, factor float32) {
	wx, wy := c.ScreenToWorld(sx, sy)
	c.ZoomBy(factor)
	nx, ny := c.ScreenToWorld(sx, sy)
	c.X += wx - nx
	c.Y += wy - ny
}

// Reset returns the camera to the initial position and zoom.
func (c *Camera) Reset() {
	c.X = c.homeX
	c.Y = c.homeY
	c.Zoom = 1.0
}

// VisibleWorldBounds returns the world-coordinate bounds of the visible area.
func (c *Camera) VisibleWorldBounds() r2.Box {
	s := float64(c.Scale())
	halfW := float64(c.ViewportW) / (2 * s)
	halfH := float64(c.ViewportH) / (2 * s)
	x, y := float64(c.X), float64(c.Y)
	return r2.Box{
		Min: r2.Vec{X: x - halfW, Y: y - halfH},
		Max: r2.Vec{X: x + halfW, Y: y + halfH},
	}
}

// absf returns the absolute value of a float32.
func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
