package camera

import (
	"math"
	"testing"

	"github.com/pthm-cable/liquid/config"
)

func init() {
	config.MustInit("")
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 0.01
}

func TestNew(t *testing.T) {
	cam := New(1280, 720, 100, 0, 2)

	if cam.X != 0 || cam.Y != 2 {
		t.Errorf("expected camera at (0, 2), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
	if cam.Scale() != 100 {
		t.Errorf("expected scale 100, got %f", cam.Scale())
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.Cfg()
	cam := FromConfig(cfg)

	if cam.ViewportW != float32(cfg.Screen.Width) || cam.ViewportH != float32(cfg.Screen.Height) {
		t.Errorf("viewport = %vx%v, want %dx%d", cam.ViewportW, cam.ViewportH, cfg.Screen.Width, cfg.Screen.Height)
	}
	if cam.PixelsPerMeter != float32(cfg.Camera.PixelsPerMeter) {
		t.Errorf("pixels per meter = %v, want %v", cam.PixelsPerMeter, cfg.Camera.PixelsPerMeter)
	}
	if cam.MaxZoom != float32(cfg.Camera.MaxZoom) {
		t.Errorf("max zoom = %v, want %v", cam.MaxZoom, cfg.Camera.MaxZoom)
	}
}

func TestWorldToScreen(t *testing.T) {
	cam := New(1280, 720, 100, 0, 2)

	tests := []struct {
		name         string
		wx, wy       float32
		wantX, wantY float32
	}{
		{"center", 0, 2, 640, 360},
		{"right", 1, 2, 740, 360},
		{"up is screen up", 0, 3, 640, 260},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sx, sy := cam.WorldToScreen(tt.wx, tt.wy)
			if !near(sx, tt.wantX) || !near(sy, tt.wantY) {
				t.Errorf("WorldToScreen(%v, %v) = (%v, %v), want (%v, %v)", tt.wx, tt.wy, sx, sy, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720, 100, 0.5, -1)
	cam.SetZoom(2.5)

	testCases := []struct{ sx, sy float32 }{
		{640, 360},
		{100, 100},
		{1200, 600},
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if !near(sx, tc.sx) || !near(sy, tc.sy) {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestPanFollowsCursor(t *testing.T) {
	cam := New(1280, 720, 100, 0, 0)
	wx, wy := cam.ScreenToWorld(200, 200)

	// Drag right and down by 50 pixels.
	cam.Pan(50, 50)

	sx, sy := cam.WorldToScreen(wx, wy)
	if !near(sx, 250) || !near(sy, 250) {
		t.Errorf("expected grabbed point at (250, 250), got (%f, %f)", sx, sy)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(1280, 720, 100, 0, 0)

	cam.SetZoom(100)
	if cam.Zoom != cam.MaxZoom {
		t.Errorf("expected zoom clamped to max %f, got %f", cam.MaxZoom, cam.Zoom)
	}

	cam.SetZoom(0.001)
	if cam.Zoom != cam.MinZoom {
		t.Errorf("expected zoom clamped to min %f, got %f", cam.MinZoom, cam.Zoom)
	}
}

func TestZoomAtKeepsCursorPoint(t *testing.T) {
	cam := New(1280, 720, 100, 0, 0)
	wx, wy := cam.ScreenToWorld(900, 200)

	cam.ZoomAt(900, 200, 2)

	if cam.Zoom != 2 {
		t.Errorf("expected zoom 2, got %f", cam.Zoom)
	}
	nx, ny := cam.ScreenToWorld(900, 200)
	if !near(nx, wx) || !near(ny, wy) {
		t.Errorf("point under cursor moved from (%f, %f) to (%f, %f)", wx, wy, nx, ny)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1280, 720, 100, 0, 0)

	if !cam.IsVisible(0, 0, 0.1) {
		t.Error("expected center to be visible")
	}
	// Visible half extents are 6.4 x 3.6 meters.
	if cam.IsVisible(7, 0, 0.1) {
		t.Error("expected far right point to be culled")
	}
	if !cam.IsVisible(6.45, 0, 0.1) {
		t.Error("expected circle overlapping the edge to be visible")
	}
}

func TestVisibleWorldBounds(t *testing.T) {
	cam := New(1280, 720, 100, 1, 2)
	b := cam.VisibleWorldBounds()

	if math.Abs(b.Min.X+5.4) > 1e-6 || math.Abs(b.Max.X-7.4) > 1e-6 {
		t.Errorf("unexpected x bounds %v", b)
	}
	if math.Abs(b.Min.Y+1.6) > 1e-6 || math.Abs(b.Max.Y-5.6) > 1e-6 {
		t.Errorf("unexpected y bounds %v", b)
	}
}

func TestReset(t *testing.T) {
	cam := New(1280, 720, 100, 0, 2)
	cam.Pan(300, -40)
	cam.SetZoom(3)

	cam.Reset()

	if cam.X != 0 || cam.Y != 2 || cam.Zoom != 1 {
		t.Errorf("expected home view, got (%f, %f) zoom %f", cam.X, cam.Y, cam.Zoom)
	}
}
