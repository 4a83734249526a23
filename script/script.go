// Package script loads timed command scripts that drive vehicles without a mouse.
//
// A script lists the vehicles to spawn and the commands to issue at given simulation times:
//
//	vehicles:
//	  - name: car
//	    x: 0
//	    y: 0
//	commands:
//	  - at: 0
//	    vehicle: car
//	    action: seek
//	    heading: 90      # degrees
//	    speed: 0.2       # optional, defaults to the vehicle's max speed
//	  - at: 4000
//	    vehicle: car
//	    action: stop
package script

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Action is a command verb.
type Action string

const (
	ActionSeek    Action = "seek"
	ActionToSpeed Action = "to_speed"
	ActionStop    Action = "stop"
)

// ErrUnknownVehicle is returned when a command names a vehicle the script does not declare.
var ErrUnknownVehicle = errors.New("unknown vehicle")

// Vehicle declares a vehicle to spawn. Zero acceleration or max speed take the config defaults.
type Vehicle struct {
	Name         string  `yaml:"name"`
	X            float64 `yaml:"x"`
	Y            float64 `yaml:"y"`
	Heading      float64 `yaml:"heading"` // Degrees
	Acceleration float64 `yaml:"acceleration"`
	MaxSpeed     float64 `yaml:"max_speed"`
}

// Command is a single timed instruction.
type Command struct {
	At      float64  `yaml:"at"`
	Vehicle string   `yaml:"vehicle"`
	Action  Action   `yaml:"action"`
	Heading float64  `yaml:"heading"` // Degrees, seek only
	Speed   *float64 `yaml:"speed"`   // nil = max speed
}

// Script is a validated command timeline.
type Script struct {
	Vehicles []Vehicle `yaml:"vehicles"`
	Commands []Command `yaml:"commands"`
}

// Load reads and validates a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a script. Commands are ordered by time, keeping file order
// for commands with the same time.
func Parse(data []byte) (*Script, error) {
	s := &Script{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	sort.SliceStable(s.Commands, func(i, j int) bool {
		return s.Commands[i].At < s.Commands[j].At
	})
	return s, nil
}

// Validate checks vehicle names and command fields.
func (s *Script) Validate() error {
	names := make(map[string]bool, len(s.Vehicles))
	for i, v := range s.Vehicles {
		if v.Name == "" {
			return fmt.Errorf("vehicle %d: missing name", i)
		}
		if names[v.Name] {
			return fmt.Errorf("vehicle %q: declared twice", v.Name)
		}
		if v.Acceleration < 0 || v.MaxSpeed < 0 {
			return fmt.Errorf("vehicle %q: acceleration and max_speed must not be negative", v.Name)
		}
		names[v.Name] = true
	}

	for i, c := range s.Commands {
		if !names[c.Vehicle] {
			return fmt.Errorf("command %d: %w %q", i, ErrUnknownVehicle, c.Vehicle)
		}
		if c.At < 0 {
			return fmt.Errorf("command %d: negative time %v", i, c.At)
		}
		switch c.Action {
		case ActionSeek, ActionToSpeed, ActionStop:
		default:
			return fmt.Errorf("command %d: unknown action %q", i, c.Action)
		}
		if c.Speed != nil && *c.Speed < 0 {
			return fmt.Errorf("command %d: negative speed %v", i, *c.Speed)
		}
	}
	return nil
}

// End returns the time of the last command.
func (s *Script) End() float64 {
	if len(s.Commands) == 0 {
		return 0
	}
	return s.Commands[len(s.Commands)-1].At
}

// Cursor walks a script's commands in time order.
type Cursor struct {
	commands []Command
	next     int
}

// Cursor returns a cursor positioned at the first command.
func (s *Script) Cursor() *Cursor {
	return &Cursor{commands: s.Commands}
}

// Due returns the commands with At <= now that have not been returned yet.
func (c *Cursor) Due(now float64) []Command {
	start := c.next
	for c.next < len(c.commands) && c.commands[c.next].At <= now {
		c.next++
	}
	return c.commands[start:c.next]
}

// Done reports whether every command has been returned.
func (c *Cursor) Done() bool {
	return c.next >= len(c.commands)
}
