// Package game runs the interactive viewer: a raylib window over a sim.World, driven by
// mouse clicks and an optional command script.
package game

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/steer/camera"
	"github.com/pthm-cable/steer/config"
	"github.com/pthm-cable/steer/renderer"
	"github.com/pthm-cable/steer/script"
	"github.com/pthm-cable/steer/sim"
	"github.com/pthm-cable/steer/telemetry"
	"github.com/pthm-cable/steer/ui"
)

// Viewer constants
const (
	maxFrameMS   = 250.0 // longest frame fed to the controllers, in milliseconds
	perfLogEvery = 600   // frames between perf log lines
	trailLength  = 240
)

// DefaultVehicle is spawned when no script is given.
var DefaultVehicle = script.Vehicle{Name: "car"}

// Options configures a Game.
type Options struct {
	Config *config.Config
	Script *script.Script // nil spawns DefaultVehicle
	Output *telemetry.OutputManager
	Logger *slog.Logger
}

// Game holds the viewer state.
type Game struct {
	cfg    *config.Config
	logger *slog.Logger

	world  *sim.World
	cursor *script.Cursor
	output *telemetry.OutputManager

	camera   *camera.Camera
	floor    *renderer.FloorRenderer
	vehicles *renderer.VehicleRenderer
	trails   map[string]*renderer.Trail

	hud   *ui.HUD
	panel *ui.VehiclePanel

	perf   *telemetry.PerfCollector
	frames int64

	selected    ecs.Entity
	hasSelected bool
	paused      bool
	follow      bool

	screenWidth, screenHeight float32
}

// New creates a game and spawns its vehicles. It does not touch the raylib window,
// so it can be built before InitWindow.
func New(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("game: config is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w, h := cfg.Derived.ScreenW32, cfg.Derived.ScreenH32

	g := &Game{
		cfg:          cfg,
		logger:       logger,
		world:        sim.New(cfg, logger),
		output:       opts.Output,
		camera:       camera.New(w, h, float32(cfg.Camera.Fit), float32(cfg.Camera.MinZoom), float32(cfg.Camera.MaxZoom)),
		floor:        renderer.NewFloorRenderer(float32(cfg.Floor.Spacing), float32(cfg.Floor.DotSize)),
		vehicles:     renderer.NewVehicleRenderer(),
		trails:       make(map[string]*renderer.Trail),
		hud:          ui.NewHUD(),
		panel:        ui.NewVehiclePanel(int32(w)),
		perf:         telemetry.NewPerfCollector(cfg.Screen.TargetFPS),
		follow:       cfg.Camera.Follow,
		screenWidth:  w,
		screenHeight: h,
	}

	sc := opts.Script
	if sc == nil {
		sc = &script.Script{Vehicles: []script.Vehicle{DefaultVehicle}}
	}
	for _, v := range sc.Vehicles {
		e, err := g.world.Spawn(v)
		if err != nil {
			return nil, err
		}
		g.trails[v.Name] = renderer.NewTrail(trailLength, float32(cfg.Vehicle.Width)/4)
		if !g.hasSelected {
			g.selected, g.hasSelected = e, true
		}
	}
	g.cursor = sc.Cursor()

	if err := g.output.WriteConfig(cfg); err != nil {
		return nil, err
	}
	if err := g.output.WriteSample(0, 0, g.world.Vehicles()); err != nil {
		return nil, err
	}

	g.followSelected()
	return g, nil
}

// Step advances the simulation by dt milliseconds: due script commands are applied, the
// world is stepped, and output is recorded.
func (g *Game) Step(dt float64) error {
	if dt <= 0 {
		return nil
	}
	if dt > maxFrameMS {
		dt = maxFrameMS
	}

	g.perf.StartPhase(sim.PhaseCommands)
	for _, cmd := range g.cursor.Due(g.world.Time()) {
		if err := g.world.Apply(cmd); err != nil {
			return err
		}
	}

	g.perf.StartPhase(sim.PhaseMotion)
	g.world.Step(dt)

	g.perf.StartPhase(sim.PhaseRecord)
	for _, tr := range g.world.DrainTransitions() {
		g.logger.Debug("transition", "vehicle", tr.Vehicle, "from", tr.From, "to", tr.To, "tick", tr.Tick)
		if err := g.output.WriteTransition(tr); err != nil {
			return err
		}
	}

	vehicles := g.world.Vehicles()
	for _, v := range vehicles {
		if trail, ok := g.trails[v.Name]; ok && v.State.Moving() {
			trail.Push(float32(v.Pose.X), float32(v.Pose.Y))
		}
	}

	every := int64(g.cfg.Telemetry.SampleEvery)
	if every > 0 && g.world.Tick()%every == 0 {
		if err := g.output.WriteSample(g.world.Tick(), g.world.Time(), vehicles); err != nil {
			return err
		}
	}
	return nil
}

// World returns the simulated world.
func (g *Game) World() *sim.World { return g.world }

// Tick returns the number of simulation steps taken.
func (g *Game) Tick() int64 { return g.world.Tick() }

// Selected returns the vehicle the panel and camera track.
func (g *Game) Selected() (ecs.Entity, bool) {
	return g.selected, g.hasSelected
}

// Paused reports whether stepping is suspended.
func (g *Game) Paused() bool { return g.paused }

// followSelected centers the camera on the selected vehicle when following is on.
func (g *Game) followSelected() {
	if !g.follow || !g.hasSelected {
		return
	}
	v := g.world.Snapshot(g.selected)
	g.camera.Follow(float32(v.Pose.X), float32(v.Pose.Y))
}

// Unload logs a final summary.
func (g *Game) Unload() {
	g.logger.Info("viewer closed",
		"ticks", g.world.Tick(),
		"sim_time", g.world.Time(),
		"perf", g.perf.Stats(),
	)
}
