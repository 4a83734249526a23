package telemetry

import (
	"math"
	"testing"
	"time"

	"github.com/pthm-cable/steer/config"
	"github.com/pthm-cable/steer/script"
	"github.com/pthm-cable/steer/sim"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time           { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCollector(window int) (*PerfCollector, *fakeClock) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewPerfCollector(window)
	p.now = clock.now
	return p, clock
}

// step records one headless step with the given motion cost.
func step(p *PerfCollector, clock *fakeClock, tick int64, dt float64, vehicles int, motion time.Duration) {
	p.StartStep()
	p.StartPhase(sim.PhaseCommands)
	clock.advance(10 * time.Microsecond)
	p.StartPhase(sim.PhaseMotion)
	clock.advance(motion)
	p.StartPhase(sim.PhaseRecord)
	clock.advance(10 * time.Microsecond)
	p.EndStep(tick, float64(tick)*dt, vehicles)
}

func TestPerfCollectorSplitsStep(t *testing.T) {
	p, clock := newTestCollector(10)
	step(p, clock, 1, 16, 3, 30*time.Microsecond)

	c, ok := p.Last()
	if !ok {
		t.Fatal("expected a recorded step")
	}
	if c.Tick != 1 || c.SimTime != 16 || c.Advance != 16 || c.Vehicles != 3 {
		t.Errorf("unexpected step key %+v", c)
	}
	if c.Phases[sim.PhaseCommands] != 10*time.Microsecond ||
		c.Phases[sim.PhaseMotion] != 30*time.Microsecond ||
		c.Phases[sim.PhaseRecord] != 10*time.Microsecond {
		t.Errorf("unexpected phase split %v", c.Phases)
	}
	if c.Total != 50*time.Microsecond {
		t.Errorf("expected 50us total, got %v", c.Total)
	}
}

func TestPerfCollectorWindowFollowsTicks(t *testing.T) {
	p, clock := newTestCollector(3)
	for tick := int64(1); tick <= 5; tick++ {
		step(p, clock, tick, 1, 2, time.Duration(tick)*10*time.Microsecond)
	}

	s := p.Stats()
	if s.Steps != 3 || s.FirstTick != 3 || s.LastTick != 5 {
		t.Errorf("expected ticks 3..5 in window, got %d steps %d..%d", s.Steps, s.FirstTick, s.LastTick)
	}
	// Steps 3, 4 and 5 cost 50, 60 and 70us.
	if s.AvgStep != 60*time.Microsecond {
		t.Errorf("expected 60us average, got %v", s.AvgStep)
	}
	if s.MaxStep != 70*time.Microsecond || s.MaxStepTick != 5 {
		t.Errorf("expected slowest step at tick 5, got %v at %d", s.MaxStep, s.MaxStepTick)
	}
	if s.SimTime != 5 {
		t.Errorf("expected sim time 5, got %v", s.SimTime)
	}
}

func TestPerfStatsPerVehicleCost(t *testing.T) {
	p, clock := newTestCollector(10)
	step(p, clock, 1, 16, 4, 80*time.Microsecond)
	step(p, clock, 2, 16, 4, 80*time.Microsecond)

	s := p.Stats()
	if s.MotionPerVehicle != 20*time.Microsecond {
		t.Errorf("expected 20us of motion per vehicle, got %v", s.MotionPerVehicle)
	}
	// 32 sim ms in 200us of stepping.
	if math.Abs(s.RealtimeFactor-160) > 1e-9 {
		t.Errorf("expected realtime factor 160, got %v", s.RealtimeFactor)
	}
	if s.PhaseAvg[sim.PhaseMotion] != 80*time.Microsecond {
		t.Errorf("expected 80us motion average, got %v", s.PhaseAvg[sim.PhaseMotion])
	}
}

func TestPerfCollectorViewerFrame(t *testing.T) {
	p, clock := newTestCollector(10)

	// A paused frame: input and draw, no sim progress.
	p.StartStep()
	p.StartPhase(sim.PhaseInput)
	clock.advance(100 * time.Microsecond)
	p.StartPhase(sim.PhaseDraw)
	clock.advance(2 * time.Millisecond)
	p.EndStep(7, 112, 1)

	c, _ := p.Last()
	if c.Phases[sim.PhaseDraw] != 2*time.Millisecond || c.Phases[sim.PhaseMotion] != 0 {
		t.Errorf("unexpected frame split %v", c.Phases)
	}

	p.StartStep()
	p.EndStep(7, 112, 1)
	c, _ = p.Last()
	if c.Advance != 0 {
		t.Errorf("expected no sim advance while paused, got %v", c.Advance)
	}
}

func TestPerfStatsEmpty(t *testing.T) {
	p := NewPerfCollector(0)
	if _, ok := p.Last(); ok {
		t.Error("expected no step before EndStep")
	}
	s := p.Stats()
	if s.Steps != 0 || s.AvgStep != 0 || s.RealtimeFactor != 0 {
		t.Errorf("expected zero stats, got %+v", s)
	}
}

func TestPerfCollectorTimesRunner(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	w := sim.New(cfg, nil)
	for _, name := range []string{"a", "b", "c"} {
		if _, err := w.Spawn(script.Vehicle{Name: name}); err != nil {
			t.Fatal(err)
		}
	}

	p, clock := newTestCollector(100)
	p.now = func() time.Time {
		clock.advance(time.Microsecond)
		return clock.t
	}
	r := &sim.Runner{World: w, Script: &script.Script{}, Perf: p, DT: 16, MaxTicks: 20}
	if _, err := r.Run(); err != nil {
		t.Fatal(err)
	}

	s := p.Stats()
	if s.Steps != 20 || s.FirstTick != 1 || s.LastTick != 20 || s.SimTime != 320 || s.Vehicles != 3 {
		t.Errorf("unexpected window %+v", s)
	}
	if s.PhaseAvg[sim.PhaseMotion] == 0 || s.PhaseAvg[sim.PhaseDraw] != 0 {
		t.Errorf("expected motion timing and no draw timing, got %v", s.PhaseAvg)
	}
	if s.MotionPerVehicle != s.PhaseAvg[sim.PhaseMotion]/3 {
		t.Errorf("expected motion split over 3 vehicles, got %v", s.MotionPerVehicle)
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	p, clock := newTestCollector(10)
	step(p, clock, 120, 1, 2, 40*time.Microsecond)

	row := p.Stats().ToCSV()
	if row.Tick != 120 || row.SimTime != 120 || row.Vehicles != 2 || row.Steps != 1 {
		t.Errorf("unexpected row key %+v", row)
	}
	if row.AvgStepUS != 60 || row.MotionUS != 40 || row.CommandsUS != 10 || row.DrawUS != 0 {
		t.Errorf("unexpected timings %+v", row)
	}
	if row.MotionPerVehicleNS != 20000 {
		t.Errorf("expected 20000ns per vehicle, got %d", row.MotionPerVehicleNS)
	}
}
