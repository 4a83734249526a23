package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title    string
	Vehicles int
	Tick     int64
	SimTime  float64 // milliseconds
	FPS      int32
	Paused   bool
	Follow   bool
	Zoom     float32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Vehicles: %d | Tick: %d | Time: %.1fs | FPS: %d", data.Vehicles, data.Tick, data.SimTime/1000, data.FPS),
		10, 35, 16, rl.LightGray,
	)

	followText := "free"
	if data.Follow {
		followText = "follow"
	}
	rl.DrawText(fmt.Sprintf("Camera: %s x%.2f", followText, data.Zoom), 10, 55, 16, rl.LightGray)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, 75, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}
