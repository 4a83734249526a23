// Package config provides configuration loading and access for the viewer and the headless runner.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/steer/motion"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Camera    CameraConfig    `yaml:"camera"`
	Floor     FloorConfig     `yaml:"floor"`
	Vehicle   VehicleConfig   `yaml:"vehicle"`
	Sim       SimConfig       `yaml:"sim"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// CameraConfig holds viewport settings.
type CameraConfig struct {
	Fit     float64 `yaml:"fit"`      // World units that fit across the shorter screen side
	MinZoom float64 `yaml:"min_zoom"`
	MaxZoom float64 `yaml:"max_zoom"`
	Follow  bool    `yaml:"follow"`   // Keep the selected vehicle centered
}

// FloorConfig holds the background dot grid.
type FloorConfig struct {
	Spacing float64 `yaml:"spacing"` // World units between dots
	DotSize float64 `yaml:"dot_size"`
}

// VehicleConfig holds default vehicle parameters.
// Speeds are world units per millisecond, acceleration per millisecond squared.
type VehicleConfig struct {
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	Acceleration float64 `yaml:"acceleration"`
	MaxSpeed     float64 `yaml:"max_speed"`
	State        string  `yaml:"state"` // Initial motion state name
}

// SimConfig holds headless stepping parameters.
type SimConfig struct {
	DT       float64 `yaml:"dt"`        // Milliseconds per tick
	MaxTicks int     `yaml:"max_ticks"` // 0 = run until the script finishes and every vehicle rests
}

// TelemetryConfig holds output parameters.
type TelemetryConfig struct {
	SampleEvery int `yaml:"sample_every"` // Write a trajectory row every N ticks
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32    float32      // Screen.Width as float32
	ScreenH32    float32      // Screen.Height as float32
	InitialState motion.State // Parsed Vehicle.State
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived calculates values derived from loaded config and rejects unusable values.
func (c *Config) computeDerived() error {
	if c.Vehicle.Acceleration <= 0 {
		return fmt.Errorf("vehicle.acceleration must be positive, got %v", c.Vehicle.Acceleration)
	}
	if c.Vehicle.MaxSpeed <= 0 {
		return fmt.Errorf("vehicle.max_speed must be positive, got %v", c.Vehicle.MaxSpeed)
	}
	if c.Sim.DT <= 0 {
		return fmt.Errorf("sim.dt must be positive, got %v", c.Sim.DT)
	}
	state, err := motion.ParseState(c.Vehicle.State)
	if err != nil {
		return fmt.Errorf("vehicle.state: %w", err)
	}
	c.Derived.InitialState = state

	if c.Telemetry.SampleEvery < 1 {
		c.Telemetry.SampleEvery = 1
	}
	if c.Camera.MaxZoom < c.Camera.MinZoom {
		c.Camera.MaxZoom = c.Camera.MinZoom
	}

	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	return nil
}

// MotionOptions returns controller options for a vehicle built from the defaults.
func (c *Config) MotionOptions() motion.Options {
	return motion.Options{
		Acceleration: c.Vehicle.Acceleration,
		MaxSpeed:     c.Vehicle.MaxSpeed,
		State:        c.Derived.InitialState,
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
