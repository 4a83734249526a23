package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/steer/camera"
)

// TrailPoint is a past vehicle position in world coordinates.
type TrailPoint struct {
	X, Y float32
}

// Trail keeps the most recent positions of one vehicle in a ring buffer.
type Trail struct {
	points  []TrailPoint
	next    int
	count   int
	minStep float32 // world distance before a new point is kept
	lastX   float32
	lastY   float32
	hasLast bool
}

// NewTrail creates a trail holding up to capacity points, spaced at least minStep apart.
func NewTrail(capacity int, minStep float32) *Trail {
	if capacity < 1 {
		capacity = 1
	}
	return &Trail{points: make([]TrailPoint, capacity), minStep: minStep}
}

// Push records a position if it is far enough from the last one kept.
func (t *Trail) Push(x, y float32) {
	if t.hasLast {
		dx, dy := x-t.lastX, y-t.lastY
		if dx*dx+dy*dy < t.minStep*t.minStep {
			return
		}
	}
	t.points[t.next] = TrailPoint{X: x, Y: y}
	t.next = (t.next + 1) % len(t.points)
	if t.count < len(t.points) {
		t.count++
	}
	t.lastX, t.lastY, t.hasLast = x, y, true
}

// Points returns the kept positions, oldest first.
func (t *Trail) Points() []TrailPoint {
	out := make([]TrailPoint, 0, t.count)
	start := (t.next - t.count + len(t.points)) % len(t.points)
	for i := 0; i < t.count; i++ {
		out = append(out, t.points[(start+i)%len(t.points)])
	}
	return out
}

// Len returns the number of kept positions.
func (t *Trail) Len() int { return t.count }

// Clear drops every kept position.
func (t *Trail) Clear() {
	t.next, t.count, t.hasLast = 0, 0, false
}

// Draw renders the trail as fading dots, oldest faintest.
func (t *Trail) Draw(cam *camera.Camera, color rl.Color) {
	points := t.Points()
	for i, p := range points {
		if !cam.IsVisible(p.X, p.Y, 0) {
			continue
		}
		lifeRatio := float32(i+1) / float32(len(points))
		c := color
		c.A = uint8(lifeRatio * float32(color.A) * 0.6)
		sx, sy := cam.WorldToScreen(p.X, p.Y)
		size := 2 * cam.Zoom
		if size < 1 {
			size = 1
		}
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, size, c)
	}
}
