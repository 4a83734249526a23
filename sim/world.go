// Package sim holds vehicles in an ECS world and steps their motion controllers.
//
// Vehicles never interact: each entity owns its controller and the world only fans commands
// and time steps out to them, then copies the resulting pose for the renderer.
package sim

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/steer/components"
	"github.com/pthm-cable/steer/config"
	"github.com/pthm-cable/steer/geom"
	"github.com/pthm-cable/steer/motion"
	"github.com/pthm-cable/steer/script"
)

// Transition records a controller state change observed during a step.
type Transition struct {
	Tick    int64
	Time    float64
	Vehicle string
	From    motion.State
	To      motion.State
}

// VehicleState is a read-only snapshot of one vehicle.
type VehicleState struct {
	ID       uint32
	Name     string
	Pose     components.Pose
	Body     components.Body
	Velocity geom.Vector2
	Speed    float64
	State    motion.State
	Odometer float64
}

// World holds the vehicle entities.
type World struct {
	world *ecs.World

	mapper *ecs.Map4[components.Vehicle, components.Pose, components.Body, components.Drive]
	filter *ecs.Filter4[components.Vehicle, components.Pose, components.Body, components.Drive]

	driveMap *ecs.Map1[components.Drive]

	defaults motion.Options
	body     components.Body
	logger   *slog.Logger

	byName      map[string]ecs.Entity
	order       []ecs.Entity
	nextID      uint32
	tick        int64
	time        float64
	transitions []Transition
}

// New creates an empty world. Vehicle defaults come from cfg.
func New(cfg *config.Config, logger *slog.Logger) *World {
	if logger == nil {
		logger = slog.Default()
	}
	world := ecs.NewWorld()
	return &World{
		world:    world,
		mapper:   ecs.NewMap4[components.Vehicle, components.Pose, components.Body, components.Drive](world),
		filter:   ecs.NewFilter4[components.Vehicle, components.Pose, components.Body, components.Drive](world),
		driveMap: ecs.NewMap1[components.Drive](world),
		defaults: cfg.MotionOptions(),
		body:     components.Body{Width: cfg.Vehicle.Width, Height: cfg.Vehicle.Height},
		logger:   logger,
		byName:   make(map[string]ecs.Entity),
	}
}

// Spawn creates a vehicle. Zero acceleration or max speed in v take the config defaults.
func (w *World) Spawn(v script.Vehicle) (ecs.Entity, error) {
	if _, ok := w.byName[v.Name]; ok {
		return ecs.Entity{}, fmt.Errorf("spawning %q: name already in use", v.Name)
	}

	opts := w.defaults
	if v.Acceleration != 0 {
		opts.Acceleration = v.Acceleration
	}
	if v.MaxSpeed != 0 {
		opts.MaxSpeed = v.MaxSpeed
	}
	opts.Position = geom.Vec(v.X, v.Y)
	opts.Heading = geom.DegreesToRadians(v.Heading)
	opts.Logger = w.logger.With("vehicle", v.Name)

	ctrl, err := motion.New(opts)
	if err != nil {
		return ecs.Entity{}, fmt.Errorf("spawning %q: %w", v.Name, err)
	}

	id := w.nextID
	w.nextID++

	vehicle := components.Vehicle{ID: id, Name: v.Name}
	pose := components.Pose{X: v.X, Y: v.Y, Rotation: ctrl.Heading()}
	body := w.body
	drive := components.Drive{Controller: ctrl, LastState: ctrl.State()}

	entity := w.mapper.NewEntity(&vehicle, &pose, &body, &drive)
	w.byName[v.Name] = entity
	w.order = append(w.order, entity)

	w.logger.Debug("vehicle spawned", "vehicle", v.Name, "id", id, "controller", ctrl)
	return entity, nil
}

// Lookup returns the entity for a vehicle name.
func (w *World) Lookup(name string) (ecs.Entity, bool) {
	e, ok := w.byName[name]
	return e, ok
}

// Controller returns the controller owned by a vehicle.
func (w *World) Controller(e ecs.Entity) *motion.Controller {
	return w.driveMap.Get(e).Controller
}

// Apply issues a scripted command to its vehicle.
func (w *World) Apply(cmd script.Command) error {
	e, ok := w.byName[cmd.Vehicle]
	if !ok {
		return fmt.Errorf("applying %s: %w %q", cmd.Action, script.ErrUnknownVehicle, cmd.Vehicle)
	}
	drive := w.driveMap.Get(e)
	ctrl := drive.Controller

	switch cmd.Action {
	case script.ActionSeek:
		if cmd.Speed == nil {
			ctrl.SeekDegrees(cmd.Heading)
		} else {
			ctrl.SeekDegreesAt(cmd.Heading, *cmd.Speed)
		}
	case script.ActionToSpeed:
		if cmd.Speed == nil {
			ctrl.ToMaxSpeed()
		} else {
			ctrl.ToSpeed(*cmd.Speed)
		}
	case script.ActionStop:
		ctrl.Stop()
	default:
		return fmt.Errorf("applying command: unknown action %q", cmd.Action)
	}

	w.observe(cmd.Vehicle, drive)
	w.logger.Debug("command applied", "vehicle", cmd.Vehicle, "action", cmd.Action, "at", w.time)
	return nil
}

// SeekPoint steers a vehicle toward the world point (x, y) at its max speed.
func (w *World) SeekPoint(e ecs.Entity, x, y float64) {
	vehicle, _, _, drive := w.mapper.Get(e)
	pos := drive.Controller.Position()
	drive.Controller.Seek(math.Atan2(y-pos.Y, x-pos.X))
	w.observe(vehicle.Name, drive)
}

// Stop brings a vehicle to rest.
func (w *World) Stop(e ecs.Entity) {
	vehicle, _, _, drive := w.mapper.Get(e)
	drive.Controller.Stop()
	w.observe(vehicle.Name, drive)
}

// observe records a transition if the controller left the state last seen.
func (w *World) observe(name string, drive *components.Drive) {
	s := drive.Controller.State()
	if s == drive.LastState {
		return
	}
	w.transitions = append(w.transitions, Transition{
		Tick:    w.tick,
		Time:    w.time,
		Vehicle: name,
		From:    drive.LastState,
		To:      s,
	})
	drive.LastState = s
}

// Step advances every vehicle by dt and syncs poses.
func (w *World) Step(dt float64) {
	w.tick++
	w.time += dt

	query := w.filter.Query()
	for query.Next() {
		vehicle, pose, _, drive := query.Get()
		ctrl := drive.Controller

		before := ctrl.Position()
		ctrl.Update(dt)
		after := ctrl.Position()

		pose.X, pose.Y = after.X, after.Y
		pose.Rotation = ctrl.Heading()
		drive.Odometer += geom.Subtract(after, before).Magnitude()

		w.observe(vehicle.Name, drive)
	}
}

// DrainTransitions returns the transitions recorded since the last call.
func (w *World) DrainTransitions() []Transition {
	out := w.transitions
	w.transitions = nil
	return out
}

// VehicleAt returns the vehicle whose body contains the world point (x, y).
// When bodies overlap the most recently spawned one wins.
func (w *World) VehicleAt(x, y float64) (ecs.Entity, bool) {
	var found ecs.Entity
	var foundID uint32
	ok := false

	query := w.filter.Query()
	for query.Next() {
		vehicle, pose, body, _ := query.Get()
		if body.Contains(*pose, x, y) && (!ok || vehicle.ID > foundID) {
			found = query.Entity()
			foundID = vehicle.ID
			ok = true
		}
	}
	return found, ok
}

// Vehicles returns snapshots of all vehicles in spawn order.
func (w *World) Vehicles() []VehicleState {
	out := make([]VehicleState, 0, len(w.order))
	for _, e := range w.order {
		out = append(out, w.Snapshot(e))
	}
	return out
}

// Snapshot returns the state of one vehicle.
func (w *World) Snapshot(e ecs.Entity) VehicleState {
	vehicle, pose, body, drive := w.mapper.Get(e)
	ctrl := drive.Controller
	return VehicleState{
		ID:       vehicle.ID,
		Name:     vehicle.Name,
		Pose:     *pose,
		Body:     *body,
		Velocity: ctrl.Velocity(),
		Speed:    ctrl.Speed(),
		State:    ctrl.State(),
		Odometer: drive.Odometer,
	}
}

// Settled reports whether no vehicle is in a timed or steering maneuver.
func (w *World) Settled() bool {
	for _, e := range w.order {
		switch w.Controller(e).State() {
		case motion.Accelerating, motion.Turning, motion.Stopping:
			return false
		}
	}
	return true
}

// Tick returns the number of steps taken.
func (w *World) Tick() int64 { return w.tick }

// Time returns the simulated time.
func (w *World) Time() float64 { return w.time }

// Len returns the number of vehicles.
func (w *World) Len() int { return len(w.order) }
