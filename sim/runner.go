package sim

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/steer/script"
)

// Recorder receives the output of a headless run.
type Recorder interface {
	WriteSample(tick int64, time float64, vehicles []VehicleState) error
	WriteTransition(tr Transition) error
}

// Phase is a slice of one step's wall-clock time.
type Phase uint8

// Run reports the first three phases. The viewer also reports input handling and drawing.
const (
	PhaseCommands Phase = iota
	PhaseMotion
	PhaseRecord
	PhaseInput
	PhaseDraw

	NumPhases = int(PhaseDraw) + 1
)

var phaseNames = [NumPhases]string{"commands", "motion", "record", "input", "draw"}

func (p Phase) String() string {
	if int(p) < NumPhases {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// PhaseTimer receives phase boundaries for each step. EndStep reports the tick and sim time
// the step reached and how many vehicles it moved.
type PhaseTimer interface {
	StartStep()
	StartPhase(phase Phase)
	EndStep(tick int64, simTime float64, vehicles int)
}

// Runner plays a script against a world at a fixed time step.
type Runner struct {
	World    *World
	Script   *script.Script
	Recorder Recorder   // nil disables output
	Perf     PhaseTimer // optional

	DT          float64
	MaxTicks    int // 0 = stop once the script is done and the world is settled
	SampleEvery int
}

// Summary describes a finished run.
type Summary struct {
	Ticks       int64
	SimTime     float64
	Transitions int
	Vehicles    []VehicleState
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("ticks", s.Ticks),
		slog.Float64("sim_time", s.SimTime),
		slog.Int("transitions", s.Transitions),
	}
	for _, v := range s.Vehicles {
		attrs = append(attrs, slog.Group(v.Name,
			slog.String("state", v.State.String()),
			slog.Float64("x", v.Pose.X),
			slog.Float64("y", v.Pose.Y),
			slog.Float64("speed", v.Speed),
			slog.Float64("odometer", v.Odometer),
		))
	}
	return slog.GroupValue(attrs...)
}

// Spawn creates every vehicle the script declares.
func (r *Runner) Spawn() error {
	for _, v := range r.Script.Vehicles {
		if _, err := r.World.Spawn(v); err != nil {
			return err
		}
	}
	return nil
}

// Run steps the world until MaxTicks, or until the script is exhausted and every vehicle has
// settled when MaxTicks is zero. Vehicles must already be spawned.
func (r *Runner) Run() (Summary, error) {
	if r.DT <= 0 {
		return Summary{}, fmt.Errorf("run: time step must be positive, got %v", r.DT)
	}
	sampleEvery := int64(r.SampleEvery)
	if sampleEvery < 1 {
		sampleEvery = 1
	}

	cursor := r.Script.Cursor()
	transitions := 0

	if err := r.sample(); err != nil {
		return Summary{}, err
	}

	for {
		r.startStep()
		r.startPhase(PhaseCommands)
		for _, cmd := range cursor.Due(r.World.Time()) {
			if err := r.World.Apply(cmd); err != nil {
				return Summary{}, err
			}
		}

		r.startPhase(PhaseMotion)
		r.World.Step(r.DT)

		r.startPhase(PhaseRecord)
		for _, tr := range r.World.DrainTransitions() {
			transitions++
			if r.Recorder != nil {
				if err := r.Recorder.WriteTransition(tr); err != nil {
					return Summary{}, fmt.Errorf("recording transition: %w", err)
				}
			}
		}
		if r.World.Tick()%sampleEvery == 0 {
			if err := r.sample(); err != nil {
				return Summary{}, err
			}
		}
		r.endStep()

		if r.MaxTicks > 0 {
			if r.World.Tick() >= int64(r.MaxTicks) {
				break
			}
		} else if cursor.Done() && r.World.Settled() {
			break
		}
	}

	return Summary{
		Ticks:       r.World.Tick(),
		SimTime:     r.World.Time(),
		Transitions: transitions,
		Vehicles:    r.World.Vehicles(),
	}, nil
}

func (r *Runner) sample() error {
	if r.Recorder == nil {
		return nil
	}
	if err := r.Recorder.WriteSample(r.World.Tick(), r.World.Time(), r.World.Vehicles()); err != nil {
		return fmt.Errorf("recording sample: %w", err)
	}
	return nil
}

func (r *Runner) startStep() {
	if r.Perf != nil {
		r.Perf.StartStep()
	}
}

func (r *Runner) startPhase(phase Phase) {
	if r.Perf != nil {
		r.Perf.StartPhase(phase)
	}
}

func (r *Runner) endStep() {
	if r.Perf != nil {
		r.Perf.EndStep(r.World.Tick(), r.World.Time(), r.World.Len())
	}
}
