package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// VehiclePanelData describes the selected vehicle.
type VehiclePanelData struct {
	Name          string
	State         string
	X, Y          float64
	Speed         float64
	MaxSpeed      float64
	HeadingDeg    float64
	TargetDeg     float64
	TimeLeft      float64
	Odometer      float64
	Acceleration  float64
	AccelRange    SliderRange
	MaxSpeedRange SliderRange
}

// VehiclePanelResult holds the user's edits from one draw.
type VehiclePanelResult struct {
	Acceleration    float64
	AccelChanged    bool
	MaxSpeed        float64
	MaxSpeedChanged bool
	Stop            bool
}

// VehiclePanel shows the selected vehicle and lets the user retune it.
type VehiclePanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	height   int32
}

// NewVehiclePanel creates a panel anchored to the right edge of the screen.
func NewVehiclePanel(screenWidth int32) *VehiclePanel {
	p := &VehiclePanel{renderer: NewRenderer(), width: 260, height: 300}
	p.Resize(screenWidth)
	return p
}

// Resize re-anchors the panel after a window resize.
func (p *VehiclePanel) Resize(screenWidth int32) {
	p.x = screenWidth - p.width - 10
	p.y = 10
}

// Bounds returns the screen rectangle covered by the panel.
func (p *VehiclePanel) Bounds() rl.Rectangle {
	return rl.Rectangle{X: float32(p.x), Y: float32(p.y), Width: float32(p.width), Height: float32(p.height)}
}

// Contains reports whether a screen point is over the panel.
func (p *VehiclePanel) Contains(sx, sy float32) bool {
	return rl.CheckCollisionPointRec(rl.Vector2{X: sx, Y: sy}, p.Bounds())
}

// Draw renders the panel and returns the tuned values.
func (p *VehiclePanel) Draw(data VehiclePanelData) VehiclePanelResult {
	r := p.renderer
	r.DrawPanel(p.x, p.y, p.width, p.height)

	x := p.x + r.Theme.Padding
	y := p.y + r.Theme.Padding
	inner := p.width - 2*r.Theme.Padding

	y = r.DrawSectionHeader(x, y, data.Name)
	y = r.DrawLabelValue(x, y, "State", data.State)
	y = r.DrawLabelValue(x, y, "Position", fmt.Sprintf("%.0f, %.0f", data.X, data.Y))
	y = r.DrawLabelValue(x, y, "Heading", fmt.Sprintf("%.1f°", data.HeadingDeg))
	y = r.DrawLabelValue(x, y, "Target", fmt.Sprintf("%.1f°", data.TargetDeg))
	y = r.DrawLabelValue(x, y, "Time left", fmt.Sprintf("%.0f ms", data.TimeLeft))
	y = r.DrawLabelValue(x, y, "Odometer", fmt.Sprintf("%.0f", data.Odometer))

	var fraction float32
	if data.MaxSpeed > 0 {
		fraction = float32(data.Speed / data.MaxSpeed)
	}
	y = r.DrawBar(x, y, "Speed", fraction, inner)
	y += r.Theme.Padding / 2

	accel, accelChanged, y := r.DrawSlider(x, y, "Acceleration", "%.2e", float32(data.Acceleration), data.AccelRange, inner)
	maxSpeed, maxSpeedChanged, y := r.DrawSlider(x, y, "Max speed", "%.3f", float32(data.MaxSpeed), data.MaxSpeedRange, inner)

	stop := r.DrawButton(x, y, inner, "Stop")

	return VehiclePanelResult{
		Acceleration:    float64(accel),
		AccelChanged:    accelChanged,
		MaxSpeed:        float64(maxSpeed),
		MaxSpeedChanged: maxSpeedChanged,
		Stop:            stop,
	}
}
