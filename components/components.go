// Package components defines ECS components for vehicles.
package components

import "github.com/pthm-cable/steer/motion"

// Vehicle identifies a vehicle entity.
type Vehicle struct {
	ID   uint32
	Name string
}

// Drive owns a vehicle's motion controller. Each entity holds its own controller;
// controllers are never shared between entities.
type Drive struct {
	Controller *motion.Controller
	LastState  motion.State // State last reported as a transition
	Odometer   float64      // Distance travelled
}
