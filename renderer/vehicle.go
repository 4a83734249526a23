package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/steer/camera"
	"github.com/pthm-cable/steer/geom"
	"github.com/pthm-cable/steer/motion"
	"github.com/pthm-cable/steer/sim"
)

// VehicleRenderer draws vehicle sprites as rotated bodies with a heading marker.
type VehicleRenderer struct {
	outline rl.Color
}

// NewVehicleRenderer creates a new vehicle renderer.
func NewVehicleRenderer() *VehicleRenderer {
	return &VehicleRenderer{outline: rl.Color{R: 240, G: 240, B: 240, A: 255}}
}

// StateColor returns the body color for a motion state.
func StateColor(s motion.State) rl.Color {
	switch s {
	case motion.Accelerating:
		return rl.Color{R: 90, G: 200, B: 120, A: 255}
	case motion.Turning:
		return rl.Color{R: 240, G: 190, B: 60, A: 255}
	case motion.Cruising:
		return rl.Color{R: 80, G: 150, B: 230, A: 255}
	case motion.Stopping:
		return rl.Color{R: 230, G: 90, B: 80, A: 255}
	default:
		return rl.Color{R: 150, G: 150, B: 160, A: 255}
	}
}

// Draw renders one vehicle. The sprite is placed from the pose alone.
func (r *VehicleRenderer) Draw(cam *camera.Camera, v sim.VehicleState, selected bool) {
	x, y := float32(v.Pose.X), float32(v.Pose.Y)
	w, h := float32(v.Body.Width), float32(v.Body.Height)

	radius := w
	if h > radius {
		radius = h
	}
	if !cam.IsVisible(x, y, radius) {
		return
	}

	sx, sy := cam.WorldToScreen(x, y)
	sw, sh := w*cam.Zoom, h*cam.Zoom
	rotation := float32(geom.RadiansToDegrees(v.Pose.Rotation))

	rect := rl.Rectangle{X: sx, Y: sy, Width: sw, Height: sh}
	origin := rl.Vector2{X: sw / 2, Y: sh / 2}
	rl.DrawRectanglePro(rect, origin, rotation, StateColor(v.State))

	// Nose marker at the front of the body.
	nose := geom.Direction(v.Pose.Rotation, v.Body.Width/2)
	nx, ny := cam.WorldToScreen(x+float32(nose.X), y+float32(nose.Y))
	markerSize := sh / 4
	if markerSize < 2 {
		markerSize = 2
	}
	rl.DrawCircleV(rl.Vector2{X: nx, Y: ny}, markerSize, r.outline)

	if selected {
		rl.DrawCircleLines(int32(sx), int32(sy), radius*cam.Zoom*0.75, r.outline)
	}
}
