package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/steer/geom"
	"github.com/pthm-cable/steer/renderer"
	"github.com/pthm-cable/steer/sim"
	"github.com/pthm-cable/steer/ui"
)

const controlsText = "Click floor: steer | Click car: stop | Tab: select | S: stop | F: follow | Space: pause | Wheel: zoom | Home: reset"

// Draw renders the game state.
func (g *Game) Draw() {
	g.perf.StartPhase(sim.PhaseDraw)

	rl.BeginDrawing()

	g.floor.Draw(g.camera)

	vehicles := g.world.Vehicles()
	for _, v := range vehicles {
		if trail, ok := g.trails[v.Name]; ok {
			trail.Draw(g.camera, renderer.StateColor(v.State))
		}
	}

	var selectedID uint32
	if g.hasSelected {
		selectedID = g.world.Snapshot(g.selected).ID
	}
	for _, v := range vehicles {
		g.vehicles.Draw(g.camera, v, g.hasSelected && v.ID == selectedID)
	}

	g.hud.Draw(ui.HUDData{
		Title:    "steer",
		Vehicles: len(vehicles),
		Tick:     g.world.Tick(),
		SimTime:  g.world.Time(),
		FPS:      rl.GetFPS(),
		Paused:   g.paused,
		Follow:   g.follow,
		Zoom:     g.camera.Zoom,
	})
	g.hud.DrawControls(int32(g.screenWidth), int32(g.screenHeight), controlsText)

	if g.hasSelected {
		g.drawPanel()
	}

	rl.EndDrawing()

	g.perf.EndStep(g.world.Tick(), g.world.Time(), g.world.Len())
	g.frames++
	if g.frames%perfLogEvery == 0 {
		g.logPerf()
	}
}

// drawPanel shows the selected vehicle and applies slider changes.
func (g *Game) drawPanel() {
	v := g.world.Snapshot(g.selected)
	ctrl := g.world.Controller(g.selected)

	res := g.panel.Draw(ui.VehiclePanelData{
		Name:          v.Name,
		State:         v.State.String(),
		X:             v.Pose.X,
		Y:             v.Pose.Y,
		Speed:         v.Speed,
		MaxSpeed:      ctrl.MaxSpeed(),
		HeadingDeg:    geom.RadiansToDegrees(ctrl.Heading()),
		TargetDeg:     geom.RadiansToDegrees(geom.NormalizeAngle(ctrl.Target().Heading)),
		TimeLeft:      ctrl.TimeLeft(),
		Odometer:      v.Odometer,
		Acceleration:  ctrl.Acceleration(),
		AccelRange:    ui.RangeAround(float32(g.cfg.Vehicle.Acceleration), 10),
		MaxSpeedRange: ui.RangeAround(float32(g.cfg.Vehicle.MaxSpeed), 4),
	})

	if res.Stop {
		g.world.Stop(g.selected)
	}
	if res.AccelChanged {
		g.setAcceleration(res.Acceleration)
	}
	if res.MaxSpeedChanged {
		g.setMaxSpeed(res.MaxSpeed)
	}
}

// logPerf logs the frame window and writes it to perf.csv.
func (g *Game) logPerf() {
	stats := g.perf.Stats()
	g.logger.Info("perf", "stats", stats)
	if err := g.output.WritePerf(stats); err != nil {
		g.logger.Error("failed to write perf", "error", err)
	}
}
