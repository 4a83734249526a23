package telemetry

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/steer/geom"
	"github.com/pthm-cable/steer/sim"
)

// TrajectoryRecord is one vehicle sample in trajectory.csv.
type TrajectoryRecord struct {
	Tick       int64   `csv:"tick"`
	Time       float64 `csv:"time"`
	Vehicle    string  `csv:"vehicle"`
	X          float64 `csv:"x"`
	Y          float64 `csv:"y"`
	VX         float64 `csv:"vx"`
	VY         float64 `csv:"vy"`
	Speed      float64 `csv:"speed"`
	HeadingDeg float64 `csv:"heading_deg"`
	State      string  `csv:"state"`
	Odometer   float64 `csv:"odometer"`
}

// TransitionRecord is one controller state change in transitions.csv.
type TransitionRecord struct {
	Tick    int64   `csv:"tick"`
	Time    float64 `csv:"time"`
	Vehicle string  `csv:"vehicle"`
	From    string  `csv:"from"`
	To      string  `csv:"to"`
}

// NewTrajectoryRecord flattens a vehicle snapshot.
func NewTrajectoryRecord(tick int64, time float64, v sim.VehicleState) TrajectoryRecord {
	return TrajectoryRecord{
		Tick:       tick,
		Time:       time,
		Vehicle:    v.Name,
		X:          v.Pose.X,
		Y:          v.Pose.Y,
		VX:         v.Velocity.X,
		VY:         v.Velocity.Y,
		Speed:      v.Speed,
		HeadingDeg: geom.RadiansToDegrees(v.Pose.Rotation),
		State:      v.State.String(),
		Odometer:   v.Odometer,
	}
}

// NewTransitionRecord flattens a transition.
func NewTransitionRecord(tr sim.Transition) TransitionRecord {
	return TransitionRecord{
		Tick:    tr.Tick,
		Time:    tr.Time,
		Vehicle: tr.Vehicle,
		From:    tr.From.String(),
		To:      tr.To.String(),
	}
}

// ReadTrajectory loads a trajectory.csv written by OutputManager.
func ReadTrajectory(path string) ([]TrajectoryRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trajectory: %w", err)
	}
	defer f.Close()

	var records []TrajectoryRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, fmt.Errorf("parsing trajectory %s: %w", path, err)
	}
	return records, nil
}
