// Package motion implements a 2D kinematic motion controller.
//
// A Controller steers a velocity vector toward a commanded heading and speed with bounded
// acceleration, then integrates position. It is driven by an external frame loop calling
// Update with the elapsed time since the previous frame. Time units are whatever the caller
// uses consistently for speed and acceleration (the viewer uses milliseconds).
package motion

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/pthm-cable/steer/geom"
)

// MinAngle is the heading error (radians) below which a turn is complete.
const MinAngle = 0.01

// Defaults applied to zero-valued Options fields.
const (
	DefaultAcceleration = 1.0
	DefaultMaxSpeed     = 5.0
)

var (
	ErrInvalidAcceleration = errors.New("acceleration must be positive")
	ErrInvalidMaxSpeed     = errors.New("max speed must be positive")
)

// Options configures a new Controller.
type Options struct {
	Velocity     geom.Vector2
	Position     geom.Vector2
	Acceleration float64 // 0 = DefaultAcceleration
	MaxSpeed     float64 // 0 = DefaultMaxSpeed
	State        State
	Heading      float64 // Reported while velocity is zero
	Logger       *slog.Logger
}

// Target describes the maneuver in progress.
type Target struct {
	Heading  float64
	Speed    float64
	Velocity geom.Vector2
	TimeLeft float64 // Remaining time in Accelerating or Stopping
}

// Controller is a single vehicle's motion state machine.
// The zero value is not usable; construct with New.
type Controller struct {
	velocity     geom.Vector2
	position     geom.Vector2
	acceleration float64
	maxSpeed     float64
	state        State
	lastHeading  float64
	target       Target

	// Derived from state, heading, target and acceleration. Refreshed on every mutation.
	cachedAccel geom.Vector2

	logger *slog.Logger
}

// New creates a controller from opts.
func New(opts Options) (*Controller, error) {
	accel := opts.Acceleration
	if accel == 0 {
		accel = DefaultAcceleration
	}
	if !positive(accel) {
		return nil, fmt.Errorf("motion: acceleration %v: %w", accel, ErrInvalidAcceleration)
	}
	maxSpeed := opts.MaxSpeed
	if maxSpeed == 0 {
		maxSpeed = DefaultMaxSpeed
	}
	if !positive(maxSpeed) {
		return nil, fmt.Errorf("motion: max speed %v: %w", maxSpeed, ErrInvalidMaxSpeed)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Controller{
		velocity:     opts.Velocity,
		position:     opts.Position,
		acceleration: accel,
		maxSpeed:     maxSpeed,
		lastHeading:  opts.Heading,
		logger:       logger,
	}
	if !c.velocity.IsZero() {
		c.lastHeading = c.velocity.Angle()
	}

	switch opts.State {
	case Rest, Cruising:
		c.state = opts.State
		c.refreshAcceleration()
	case Accelerating:
		c.ToMaxSpeed()
	case Turning:
		c.target = Target{Heading: c.lastHeading, Speed: maxSpeed, Velocity: geom.Direction(c.lastHeading, maxSpeed)}
		c.state = Turning
		c.refreshAcceleration()
	case Stopping:
		c.state = Cruising
		c.Stop()
	default:
		return nil, fmt.Errorf("motion: unknown initial state %v", opts.State)
	}
	return c, nil
}

// Seek turns toward heading (radians) and accelerates to the max speed.
func (c *Controller) Seek(heading float64) {
	c.SeekAt(heading, c.maxSpeed)
}

// SeekDegrees is Seek with the heading in degrees.
func (c *Controller) SeekDegrees(degrees float64) {
	c.SeekAt(geom.DegreesToRadians(degrees), c.maxSpeed)
}

// SeekDegreesAt is SeekAt with the heading in degrees.
func (c *Controller) SeekDegreesAt(degrees, speed float64) {
	c.SeekAt(geom.DegreesToRadians(degrees), speed)
}

// SeekAt turns toward heading (radians) and then changes to speed.
// Speed is clamped to [0, MaxSpeed], so a request above the max speed seeks at the max speed
// rather than at the requested one: SeekAt(h, 10) with max speed 5 targets speed 5.
// When the heading already matches only the speed changes, and when both match the call is
// a no-op. Seeking at zero speed stops the vehicle; a vehicle already at rest just takes the
// new heading.
func (c *Controller) SeekAt(heading, speed float64) {
	speed = c.clampSpeed(speed)
	if speed == 0 {
		if c.velocity.IsZero() {
			c.lastHeading = heading
			c.refreshAcceleration()
			return
		}
		c.Stop()
		return
	}

	if geom.AngularDifference(heading, c.Heading()) > geom.Epsilon {
		c.target = Target{
			Heading:  heading,
			Speed:    speed,
			Velocity: geom.Direction(heading, speed),
		}
		c.transition(Turning)
		c.refreshAcceleration()
		return
	}

	if !scalar.EqualWithinAbs(speed, c.Speed(), geom.Epsilon) {
		c.ToSpeed(speed)
	}
}

// ToMaxSpeed accelerates to the max speed along the current heading.
func (c *Controller) ToMaxSpeed() {
	c.ToSpeed(c.maxSpeed)
}

// ToSpeed changes speed along the current heading. Speed is clamped to [0, MaxSpeed]
// instead of being taken as given: ToSpeed(10) with max speed 5 targets speed 5.
// A zero target is the same as Stop.
func (c *Controller) ToSpeed(speed float64) {
	speed = c.clampSpeed(speed)
	if speed == 0 {
		c.Stop()
		return
	}
	if c.state == Cruising && scalar.EqualWithinAbs(speed, c.Speed(), geom.Epsilon) {
		return
	}

	heading := c.Heading()
	c.target = Target{
		Heading:  heading,
		Speed:    speed,
		Velocity: geom.Direction(heading, speed),
	}
	c.transition(Accelerating)
	c.refreshAcceleration()
}

// Stop decelerates to rest along the current direction of travel.
func (c *Controller) Stop() {
	if c.state == Rest {
		return
	}
	c.target = Target{Heading: c.Heading()}
	c.transition(Stopping)
	c.refreshAcceleration()
}

// Update advances the simulation by elapsed time. Panics on negative elapsed time.
func (c *Controller) Update(elapsed float64) {
	if elapsed < 0 || math.IsNaN(elapsed) {
		panic(fmt.Sprintf("motion: invalid elapsed time %v", elapsed))
	}
	if elapsed == 0 || c.state == Rest {
		return
	}

	switch c.state {
	case Accelerating, Stopping:
		c.accelerate(elapsed)
	case Turning:
		c.turn(elapsed)
	}

	c.position.X += c.velocity.X * elapsed
	c.position.Y += c.velocity.Y * elapsed
}

// accelerate applies the cached acceleration, landing exactly on the target when the
// remaining time runs out within this step.
func (c *Controller) accelerate(elapsed float64) {
	if elapsed >= c.target.TimeLeft {
		c.lastHeading = c.Heading()
		c.target.TimeLeft = 0
		if c.state == Stopping {
			c.velocity = geom.Vector2{}
			c.transition(Rest)
		} else {
			c.velocity.SetDirection(c.lastHeading, c.target.Speed)
			c.transition(Cruising)
		}
		c.refreshAcceleration()
		return
	}

	c.velocity.X += c.cachedAccel.X * elapsed
	c.velocity.Y += c.cachedAccel.Y * elapsed
	c.target.TimeLeft -= elapsed
}

// turn steers velocity toward the target velocity without stepping past it.
func (c *Controller) turn(elapsed float64) {
	delta := geom.Subtract(c.target.Velocity, c.velocity)
	step := c.acceleration * elapsed
	if delta.Magnitude() <= step {
		c.velocity = c.target.Velocity
	} else {
		delta.Normalize().Scale(step)
		c.velocity = geom.Add(c.velocity, delta)
	}
	c.refreshAcceleration()

	if geom.AngularDifference(c.Heading(), c.target.Heading) < MinAngle {
		c.ToSpeed(c.target.Speed)
	}
}

// refreshAcceleration re-derives the cached acceleration vector (and the remaining time
// for timed maneuvers) from the current state.
func (c *Controller) refreshAcceleration() {
	switch c.state {
	case Stopping:
		c.cachedAccel = c.velocity
		c.cachedAccel.Normalize().Negate().Scale(c.acceleration)
		c.target.TimeLeft = c.Speed() / c.acceleration
	case Accelerating:
		delta := c.target.Speed - c.Speed()
		magnitude := c.acceleration
		if delta < 0 {
			magnitude = -magnitude
		}
		c.cachedAccel = geom.Direction(c.Heading(), magnitude)
		c.target.TimeLeft = math.Abs(delta) / c.acceleration
	default:
		c.cachedAccel = geom.Direction(c.Heading(), c.acceleration)
	}
}

func (c *Controller) transition(s State) {
	if s == c.state {
		return
	}
	from := c.state
	c.state = s
	c.logger.Debug("motion state changed",
		"from", from.String(),
		"to", s.String(),
		"heading", c.Heading(),
		"speed", c.Speed(),
	)
}

func (c *Controller) clampSpeed(speed float64) float64 {
	if speed < 0 || math.IsNaN(speed) {
		return 0
	}
	if speed > c.maxSpeed {
		return c.maxSpeed
	}
	return speed
}

// Heading returns the direction of travel in radians. While the velocity is zero it
// returns the last heading recorded before the vehicle came to rest.
func (c *Controller) Heading() float64 {
	if c.velocity.IsZero() {
		return c.lastHeading
	}
	return c.velocity.Angle()
}

// Velocity returns a copy of the current velocity.
func (c *Controller) Velocity() geom.Vector2 { return c.velocity }

// SetVelocity replaces the velocity. A changed value re-derives the cached acceleration.
func (c *Controller) SetVelocity(v geom.Vector2) {
	if c.velocity.Equal(v, geom.Epsilon) {
		return
	}
	c.lastHeading = c.Heading()
	c.velocity = v
	c.refreshAcceleration()
}

// Position returns a copy of the current position.
func (c *Controller) Position() geom.Vector2 { return c.position }

// SetPosition moves the vehicle without affecting its motion.
func (c *Controller) SetPosition(p geom.Vector2) { c.position = p }

// Speed returns the magnitude of the velocity.
func (c *Controller) Speed() float64 { return c.velocity.Magnitude() }

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Target returns the maneuver in progress.
func (c *Controller) Target() Target { return c.target }

// TimeLeft returns the remaining time of an Accelerating or Stopping maneuver.
func (c *Controller) TimeLeft() float64 { return c.target.TimeLeft }

// CachedAcceleration returns the acceleration vector applied while accelerating or stopping.
func (c *Controller) CachedAcceleration() geom.Vector2 { return c.cachedAccel }

// Acceleration returns the acceleration magnitude.
func (c *Controller) Acceleration() float64 { return c.acceleration }

// SetAcceleration changes the acceleration magnitude and re-derives the pending maneuver.
func (c *Controller) SetAcceleration(a float64) error {
	if !positive(a) {
		return fmt.Errorf("motion: acceleration %v: %w", a, ErrInvalidAcceleration)
	}
	c.acceleration = a
	c.refreshAcceleration()
	return nil
}

// MaxSpeed returns the speed used when no speed is given.
func (c *Controller) MaxSpeed() float64 { return c.maxSpeed }

// SetMaxSpeed changes the max speed. A maneuver already in progress keeps its target.
func (c *Controller) SetMaxSpeed(s float64) error {
	if !positive(s) {
		return fmt.Errorf("motion: max speed %v: %w", s, ErrInvalidMaxSpeed)
	}
	c.maxSpeed = s
	return nil
}

// LogValue implements slog.LogValuer.
func (c *Controller) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("state", c.state.String()),
		slog.Float64("x", c.position.X),
		slog.Float64("y", c.position.Y),
		slog.Float64("speed", c.Speed()),
		slog.Float64("heading", c.Heading()),
	)
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
