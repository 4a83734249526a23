package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/steer/motion"
	"github.com/pthm-cable/steer/script"
)

type memRecorder struct {
	samples     int
	lastTick    int64
	transitions []Transition
	failOn      int
}

func (m *memRecorder) WriteSample(tick int64, _ float64, _ []VehicleState) error {
	m.samples++
	m.lastTick = tick
	if m.failOn > 0 && m.samples == m.failOn {
		return errors.New("disk full")
	}
	return nil
}

func (m *memRecorder) WriteTransition(tr Transition) error {
	m.transitions = append(m.transitions, tr)
	return nil
}

func loadScript(t *testing.T, body string) *script.Script {
	t.Helper()
	s, err := script.Parse([]byte(body))
	if err != nil {
		t.Fatalf("parsing script: %v", err)
	}
	return s
}

const accelerateThenStop = `
vehicles:
  - name: car
commands:
  - at: 0
    vehicle: car
    action: to_speed
  - at: 10
    vehicle: car
    action: stop
`

func TestRunUntilSettled(t *testing.T) {
	w := New(testConfig(t), nil)
	rec := &memRecorder{}
	r := &Runner{World: w, Script: loadScript(t, accelerateThenStop), Recorder: rec, DT: 1}

	if err := r.Spawn(); err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	sum, err := r.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if sum.Ticks != 15 {
		t.Errorf("expected 15 ticks, got %d", sum.Ticks)
	}
	if sum.Transitions != 4 || len(rec.transitions) != 4 {
		t.Errorf("expected 4 transitions, got %d (%d recorded)", sum.Transitions, len(rec.transitions))
	}
	want := []motion.State{motion.Accelerating, motion.Cruising, motion.Stopping, motion.Rest}
	for i, tr := range rec.transitions {
		if i < len(want) && tr.To != want[i] {
			t.Errorf("transition %d: expected %s, got %s", i, want[i], tr.To)
		}
	}

	car := sum.Vehicles[0]
	if car.State != motion.Rest {
		t.Errorf("expected rest, got %s", car.State)
	}
	if math.Abs(car.Pose.X-50) > 1e-9 {
		t.Errorf("expected x 50, got %f", car.Pose.X)
	}
	if math.Abs(car.Odometer-50) > 1e-9 {
		t.Errorf("expected odometer 50, got %f", car.Odometer)
	}
	if rec.samples != 16 || rec.lastTick != 15 {
		t.Errorf("expected 16 samples ending at tick 15, got %d ending at %d", rec.samples, rec.lastTick)
	}
}

func TestRunMaxTicks(t *testing.T) {
	w := New(testConfig(t), nil)
	r := &Runner{World: w, Script: loadScript(t, accelerateThenStop), DT: 1, MaxTicks: 3, SampleEvery: 2}
	if err := r.Spawn(); err != nil {
		t.Fatal(err)
	}
	sum, err := r.Run()
	if err != nil {
		t.Fatal(err)
	}
	if sum.Ticks != 3 {
		t.Errorf("expected 3 ticks, got %d", sum.Ticks)
	}
	if sum.Vehicles[0].State != motion.Accelerating {
		t.Errorf("expected accelerating, got %s", sum.Vehicles[0].State)
	}
}

func TestRunErrors(t *testing.T) {
	w := New(testConfig(t), nil)
	r := &Runner{World: w, Script: loadScript(t, accelerateThenStop), DT: 0}
	if _, err := r.Run(); err == nil {
		t.Error("expected error for zero time step")
	}

	// Commands for vehicles that were never spawned fail at apply time.
	r = &Runner{World: New(testConfig(t), nil), Script: loadScript(t, accelerateThenStop), DT: 1}
	if _, err := r.Run(); !errors.Is(err, script.ErrUnknownVehicle) {
		t.Errorf("expected ErrUnknownVehicle, got %v", err)
	}

	rec := &memRecorder{failOn: 2}
	r = &Runner{World: New(testConfig(t), nil), Script: loadScript(t, accelerateThenStop), Recorder: rec, DT: 1}
	if err := r.Spawn(); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Run(); err == nil {
		t.Error("expected recorder error")
	}
}

type stepLog struct {
	phases   []Phase
	ticks    []int64
	times    []float64
	vehicles []int
	open     bool
}

func (s *stepLog) StartStep()             { s.open = true }
func (s *stepLog) StartPhase(phase Phase) { s.phases = append(s.phases, phase) }
func (s *stepLog) EndStep(tick int64, simTime float64, vehicles int) {
	s.open = false
	s.ticks = append(s.ticks, tick)
	s.times = append(s.times, simTime)
	s.vehicles = append(s.vehicles, vehicles)
}

func TestRunReportsSteps(t *testing.T) {
	w := New(testConfig(t), nil)
	if _, err := w.Spawn(script.Vehicle{Name: "a"}); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Spawn(script.Vehicle{Name: "b", X: 3}); err != nil {
		t.Fatal(err)
	}
	timer := &stepLog{}
	r := &Runner{World: w, Script: &script.Script{}, Perf: timer, DT: 2, MaxTicks: 3}
	if _, err := r.Run(); err != nil {
		t.Fatal(err)
	}

	if timer.open {
		t.Error("last step was never ended")
	}
	if len(timer.ticks) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(timer.ticks))
	}
	for i := range timer.ticks {
		if timer.ticks[i] != int64(i+1) || timer.times[i] != float64(2*(i+1)) || timer.vehicles[i] != 2 {
			t.Errorf("step %d: got tick %d time %v vehicles %d", i, timer.ticks[i], timer.times[i], timer.vehicles[i])
		}
	}
	want := []Phase{PhaseCommands, PhaseMotion, PhaseRecord}
	for i, p := range timer.phases {
		if p != want[i%3] {
			t.Errorf("phase %d: expected %s, got %s", i, want[i%3], p)
		}
	}
}

func TestPhaseString(t *testing.T) {
	if PhaseMotion.String() != "motion" || PhaseDraw.String() != "draw" {
		t.Errorf("unexpected names %q %q", PhaseMotion, PhaseDraw)
	}
	if Phase(9).String() != "phase(9)" {
		t.Errorf("unexpected name for unknown phase: %q", Phase(9))
	}
}
