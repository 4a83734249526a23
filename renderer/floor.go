package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/steer/camera"
)

// FloorRenderer draws the dot grid the vehicles drive over. The grid is unbounded and
// scrolls with the camera, so motion is visible even while the camera follows a vehicle.
type FloorRenderer struct {
	spacing float32 // world units between dots
	dotSize float32 // screen pixels at zoom 1
	color   rl.Color
	base    rl.Color
}

// NewFloorRenderer creates a floor with the given dot spacing and size.
func NewFloorRenderer(spacing, dotSize float32) *FloorRenderer {
	if spacing <= 0 {
		spacing = 100
	}
	return &FloorRenderer{
		spacing: spacing,
		dotSize: dotSize,
		color:   rl.Color{R: 70, G: 76, B: 88, A: 255},
		base:    rl.Color{R: 24, G: 26, B: 32, A: 255},
	}
}

// Draw fills the screen and renders every visible dot.
func (f *FloorRenderer) Draw(cam *camera.Camera) {
	rl.ClearBackground(f.base)

	ox, oy, step := cam.GridOffset(f.spacing)
	// Skip the grid when dots would merge into a solid fill.
	if step < 4 {
		return
	}

	radius := f.dotSize * cam.Zoom / 2
	if radius < 1 {
		radius = 1
	}

	for y := oy; y <= cam.ViewportH+step; y += step {
		for x := ox; x <= cam.ViewportW+step; x += step {
			rl.DrawCircleV(rl.Vector2{X: x, Y: y}, radius, f.color)
		}
	}
}
