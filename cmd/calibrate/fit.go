package main

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/steer/config"
	"github.com/pthm-cable/steer/geom"
	"github.com/pthm-cable/steer/script"
	"github.com/pthm-cable/steer/sim"
	"github.com/pthm-cable/steer/telemetry"
)

// Fitter replays a script with candidate vehicle parameters and scores the replay against a
// recorded trajectory.
type Fitter struct {
	cfg     *config.Config
	script  *script.Script
	vehicle string

	// Recorded positions of the fitted vehicle, by tick.
	samples  map[int64]geom.Vector2
	lastTick int64

	FitMaxSpeed bool
}

// FitResult is the outcome of Fit.
type FitResult struct {
	Acceleration float64
	MaxSpeed     float64
	Residual     float64 // RMS position error over the recorded samples
	Evaluations  int
}

// Evaluation is one row of the calibration log.
type Evaluation struct {
	Eval         int     `csv:"eval"`
	Residual     float64 `csv:"residual"`
	Acceleration float64 `csv:"acceleration"`
	MaxSpeed     float64 `csv:"max_speed"`
}

// NewFitter prepares a fit of vehicle's parameters. Only trajectory rows for that vehicle
// are used; the script must declare it.
func NewFitter(cfg *config.Config, sc *script.Script, records []telemetry.TrajectoryRecord, vehicle string) (*Fitter, error) {
	declared := false
	for _, v := range sc.Vehicles {
		if v.Name == vehicle {
			declared = true
			break
		}
	}
	if !declared {
		return nil, fmt.Errorf("fitting %q: %w", vehicle, script.ErrUnknownVehicle)
	}

	f := &Fitter{
		cfg:     cfg,
		script:  sc,
		vehicle: vehicle,
		samples: make(map[int64]geom.Vector2),
	}
	for _, r := range records {
		if r.Vehicle != vehicle {
			continue
		}
		f.samples[r.Tick] = geom.Vec(r.X, r.Y)
		if r.Tick > f.lastTick {
			f.lastTick = r.Tick
		}
	}
	if len(f.samples) == 0 {
		return nil, fmt.Errorf("fitting %q: trajectory has no rows for this vehicle", vehicle)
	}
	return f, nil
}

// Initial returns the starting parameters: the script's values for the vehicle, falling back
// to the config defaults.
func (f *Fitter) Initial() (accel, maxSpeed float64) {
	accel, maxSpeed = f.cfg.Vehicle.Acceleration, f.cfg.Vehicle.MaxSpeed
	for _, v := range f.script.Vehicles {
		if v.Name != f.vehicle {
			continue
		}
		if v.Acceleration > 0 {
			accel = v.Acceleration
		}
		if v.MaxSpeed > 0 {
			maxSpeed = v.MaxSpeed
		}
	}
	return accel, maxSpeed
}

// Residual replays the script with the given parameters and returns the RMS distance between
// replayed and recorded positions.
func (f *Fitter) Residual(accel, maxSpeed float64) (float64, error) {
	vehicles := make([]script.Vehicle, len(f.script.Vehicles))
	copy(vehicles, f.script.Vehicles)
	for i := range vehicles {
		if vehicles[i].Name == f.vehicle {
			vehicles[i].Acceleration = accel
			vehicles[i].MaxSpeed = maxSpeed
		}
	}

	rec := &errorRecorder{vehicle: f.vehicle, samples: f.samples}
	r := &sim.Runner{
		World:       sim.New(f.cfg, slog.New(slog.DiscardHandler)),
		Script:      &script.Script{Vehicles: vehicles, Commands: f.script.Commands},
		Recorder:    rec,
		DT:          f.cfg.Sim.DT,
		MaxTicks:    int(f.lastTick),
		SampleEvery: 1,
	}
	if err := r.Spawn(); err != nil {
		return 0, err
	}
	if f.lastTick > 0 {
		if _, err := r.Run(); err != nil {
			return 0, err
		}
	} else if err := rec.WriteSample(0, 0, r.World.Vehicles()); err != nil {
		return 0, err
	}

	if rec.n == 0 {
		return 0, fmt.Errorf("replay produced no comparable samples")
	}
	return math.Sqrt(rec.sum / float64(rec.n)), nil
}

// Fit minimizes the residual with Nelder-Mead over log-parameters, so candidates stay
// positive. onEval, if set, receives every evaluation.
func (f *Fitter) Fit(maxEvals int, onEval func(Evaluation)) (FitResult, error) {
	accel0, maxSpeed0 := f.Initial()

	decode := func(x []float64) (float64, float64) {
		accel := math.Exp(x[0])
		maxSpeed := maxSpeed0
		if f.FitMaxSpeed {
			maxSpeed = math.Exp(x[1])
		}
		return accel, maxSpeed
	}

	x0 := []float64{math.Log(accel0)}
	if f.FitMaxSpeed {
		x0 = append(x0, math.Log(maxSpeed0))
	}

	evals := 0
	var replayErr error
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			accel, maxSpeed := decode(x)
			res, err := f.Residual(accel, maxSpeed)
			if err != nil {
				replayErr = err
				return math.Inf(1)
			}
			evals++
			if onEval != nil {
				onEval(Evaluation{Eval: evals, Residual: res, Acceleration: accel, MaxSpeed: maxSpeed})
			}
			return res
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: maxEvals,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-9,
			Iterations: 50,
		},
	}

	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if replayErr != nil {
		return FitResult{}, fmt.Errorf("replaying script: %w", replayErr)
	}
	if err != nil && result == nil {
		return FitResult{}, fmt.Errorf("minimizing residual: %w", err)
	}

	accel, maxSpeed := decode(result.X)
	return FitResult{
		Acceleration: accel,
		MaxSpeed:     maxSpeed,
		Residual:     result.F,
		Evaluations:  evals,
	}, nil
}

// errorRecorder accumulates squared position error for one vehicle.
type errorRecorder struct {
	vehicle string
	samples map[int64]geom.Vector2
	sum     float64
	n       int
}

func (e *errorRecorder) WriteSample(tick int64, _ float64, vehicles []sim.VehicleState) error {
	want, ok := e.samples[tick]
	if !ok {
		return nil
	}
	for _, v := range vehicles {
		if v.Name != e.vehicle {
			continue
		}
		d := geom.Subtract(geom.Vec(v.Pose.X, v.Pose.Y), want).Magnitude()
		e.sum += d * d
		e.n++
	}
	return nil
}

func (e *errorRecorder) WriteTransition(sim.Transition) error { return nil }
