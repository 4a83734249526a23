package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/steer/sim"
)

// Update handles input and advances the simulation by the last frame's duration.
func (g *Game) Update() {
	g.perf.StartStep()
	g.perf.StartPhase(sim.PhaseInput)
	g.handleInput()

	if !g.paused {
		if err := g.Step(float64(rl.GetFrameTime()) * 1000); err != nil {
			g.logger.Error("step failed", "error", err)
			g.paused = true
		}
	}
	g.followSelected()
}
