package telemetry

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/steer/sim"
)

var _ sim.PhaseTimer = (*PerfCollector)(nil)

// StepCost is the wall-clock cost of one step, keyed by the tick and sim time it reached.
type StepCost struct {
	Tick     int64
	SimTime  float64 // ms
	Advance  float64 // sim ms covered by this step
	Vehicles int
	Phases   [sim.NumPhases]time.Duration
	Total    time.Duration
}

// PerfCollector keeps the cost of the last N steps. Phases are timed back to back: starting
// one closes the previous one, and EndStep closes the last.
type PerfCollector struct {
	steps []StepCost
	next  int
	count int

	now         func() time.Time
	current     StepCost
	stepStart   time.Time
	phase       sim.Phase
	phaseStart  time.Time
	inPhase     bool
	lastSimTime float64
}

// NewPerfCollector keeps a window of the given number of steps (60 when not positive).
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{steps: make([]StepCost, window), now: time.Now}
}

// StartStep begins timing a step.
func (p *PerfCollector) StartStep() {
	p.current = StepCost{}
	p.stepStart = p.now()
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and starts the next.
func (p *PerfCollector) StartPhase(phase sim.Phase) {
	t := p.now()
	p.closePhase(t)
	p.phase, p.phaseStart, p.inPhase = phase, t, true
}

// EndStep records the step against the tick and sim time it reached.
func (p *PerfCollector) EndStep(tick int64, simTime float64, vehicles int) {
	t := p.now()
	p.closePhase(t)

	c := p.current
	c.Tick = tick
	c.SimTime = simTime
	c.Advance = simTime - p.lastSimTime
	c.Vehicles = vehicles
	c.Total = t.Sub(p.stepStart)
	p.lastSimTime = simTime

	p.steps[p.next] = c
	p.next = (p.next + 1) % len(p.steps)
	if p.count < len(p.steps) {
		p.count++
	}
}

func (p *PerfCollector) closePhase(t time.Time) {
	if !p.inPhase {
		return
	}
	if int(p.phase) < sim.NumPhases {
		p.current.Phases[p.phase] += t.Sub(p.phaseStart)
	}
	p.inPhase = false
}

// Last returns the most recently recorded step.
func (p *PerfCollector) Last() (StepCost, bool) {
	if p.count == 0 {
		return StepCost{}, false
	}
	return p.steps[(p.next-1+len(p.steps))%len(p.steps)], true
}

// PerfStats summarizes the steps in the window.
type PerfStats struct {
	Steps     int
	FirstTick int64
	LastTick  int64
	SimTime   float64
	Vehicles  int // at the last step

	AvgStep     time.Duration
	MaxStep     time.Duration
	MaxStepTick int64
	PhaseAvg    [sim.NumPhases]time.Duration

	// Motion time per vehicle moved, over the window.
	MotionPerVehicle time.Duration
	// Sim ms covered per wall-clock ms spent stepping. Above 1 the simulation outruns real time.
	RealtimeFactor float64
}

// Stats summarizes the window, oldest step first.
func (p *PerfCollector) Stats() PerfStats {
	var s PerfStats
	if p.count == 0 {
		return s
	}

	start := (p.next - p.count + len(p.steps)) % len(p.steps)
	var total, motion time.Duration
	var phases [sim.NumPhases]time.Duration
	var advance float64
	vehicleSteps := 0

	for i := 0; i < p.count; i++ {
		c := p.steps[(start+i)%len(p.steps)]
		if i == 0 {
			s.FirstTick = c.Tick
		}
		s.LastTick, s.SimTime, s.Vehicles = c.Tick, c.SimTime, c.Vehicles

		total += c.Total
		if c.Total > s.MaxStep {
			s.MaxStep, s.MaxStepTick = c.Total, c.Tick
		}
		for ph, d := range c.Phases {
			phases[ph] += d
		}
		motion += c.Phases[sim.PhaseMotion]
		vehicleSteps += c.Vehicles
		advance += c.Advance
	}

	n := time.Duration(p.count)
	s.Steps = p.count
	s.AvgStep = total / n
	for ph := range phases {
		s.PhaseAvg[ph] = phases[ph] / n
	}
	if vehicleSteps > 0 {
		s.MotionPerVehicle = motion / time.Duration(vehicleSteps)
	}
	if total > 0 {
		s.RealtimeFactor = advance / (float64(total) / float64(time.Millisecond))
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("steps", s.Steps),
		slog.Int64("last_tick", s.LastTick),
		slog.Int("vehicles", s.Vehicles),
		slog.Int64("avg_step_us", s.AvgStep.Microseconds()),
		slog.Int64("max_step_us", s.MaxStep.Microseconds()),
		slog.Int64("max_step_tick", s.MaxStepTick),
		slog.Int64("motion_per_vehicle_ns", s.MotionPerVehicle.Nanoseconds()),
		slog.Float64("realtime_factor", s.RealtimeFactor),
	}
	for ph, d := range s.PhaseAvg {
		if d > 0 {
			attrs = append(attrs, slog.Int64(sim.Phase(ph).String()+"_us", d.Microseconds()))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	Tick               int64   `csv:"tick"`
	SimTime            float64 `csv:"sim_time"`
	Vehicles           int     `csv:"vehicles"`
	Steps              int     `csv:"steps"`
	AvgStepUS          int64   `csv:"avg_step_us"`
	MaxStepUS          int64   `csv:"max_step_us"`
	MaxStepTick        int64   `csv:"max_step_tick"`
	CommandsUS         int64   `csv:"commands_us"`
	MotionUS           int64   `csv:"motion_us"`
	RecordUS           int64   `csv:"record_us"`
	InputUS            int64   `csv:"input_us"`
	DrawUS             int64   `csv:"draw_us"`
	MotionPerVehicleNS int64   `csv:"motion_per_vehicle_ns"`
	RealtimeFactor     float64 `csv:"realtime_factor"`
}

// ToCSV flattens the stats into a perf.csv row.
func (s PerfStats) ToCSV() PerfStatsCSV {
	return PerfStatsCSV{
		Tick:               s.LastTick,
		SimTime:            s.SimTime,
		Vehicles:           s.Vehicles,
		Steps:              s.Steps,
		AvgStepUS:          s.AvgStep.Microseconds(),
		MaxStepUS:          s.MaxStep.Microseconds(),
		MaxStepTick:        s.MaxStepTick,
		CommandsUS:         s.PhaseAvg[sim.PhaseCommands].Microseconds(),
		MotionUS:           s.PhaseAvg[sim.PhaseMotion].Microseconds(),
		RecordUS:           s.PhaseAvg[sim.PhaseRecord].Microseconds(),
		InputUS:            s.PhaseAvg[sim.PhaseInput].Microseconds(),
		DrawUS:             s.PhaseAvg[sim.PhaseDraw].Microseconds(),
		MotionPerVehicleNS: s.MotionPerVehicle.Nanoseconds(),
		RealtimeFactor:     s.RealtimeFactor,
	}
}
