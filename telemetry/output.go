package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/steer/config"
	"github.com/pthm-cable/steer/sim"
)

// OutputManager writes run output as CSV. It implements sim.Recorder.
type OutputManager struct {
	dir            string
	trajectoryFile *os.File
	transitionFile *os.File
	perfFile       *os.File

	// Track if headers have been written
	trajectoryHeaderWritten bool
	transitionHeaderWritten bool
	perfHeaderWritten       bool
}

var _ sim.Recorder = (*OutputManager)(nil)

// NewOutputManager creates the output directory and its CSV files.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "trajectory.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating trajectory.csv: %w", err)
	}
	om.trajectoryFile = f

	f, err = os.Create(filepath.Join(dir, "transitions.csv"))
	if err != nil {
		om.trajectoryFile.Close()
		return nil, fmt.Errorf("creating transitions.csv: %w", err)
	}
	om.transitionFile = f

	f, err = os.Create(filepath.Join(dir, "perf.csv"))
	if err != nil {
		om.trajectoryFile.Close()
		om.transitionFile.Close()
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	om.perfFile = f

	return om, nil
}

// WriteConfig saves the effective configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteSample appends one row per vehicle to trajectory.csv.
func (om *OutputManager) WriteSample(tick int64, time float64, vehicles []sim.VehicleState) error {
	if om == nil || len(vehicles) == 0 {
		return nil
	}

	records := make([]TrajectoryRecord, len(vehicles))
	for i, v := range vehicles {
		records[i] = NewTrajectoryRecord(tick, time, v)
	}

	if err := writeRecords(records, om.trajectoryFile, &om.trajectoryHeaderWritten); err != nil {
		return fmt.Errorf("writing trajectory: %w", err)
	}
	return nil
}

// WriteTransition appends a state change to transitions.csv.
func (om *OutputManager) WriteTransition(tr sim.Transition) error {
	if om == nil {
		return nil
	}
	records := []TransitionRecord{NewTransitionRecord(tr)}
	if err := writeRecords(records, om.transitionFile, &om.transitionHeaderWritten); err != nil {
		return fmt.Errorf("writing transition: %w", err)
	}
	return nil
}

// WritePerf appends the window summary to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats) error {
	if om == nil {
		return nil
	}
	records := []PerfStatsCSV{stats.ToCSV()}
	if err := writeRecords(records, om.perfFile, &om.perfHeaderWritten); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// writeRecords includes headers on the first write to a file only.
func writeRecords[T any](records []T, f *os.File, headerWritten *bool) error {
	if !*headerWritten {
		if err := gocsv.Marshal(records, f); err != nil {
			return err
		}
		*headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, f)
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, f := range []*os.File{om.trajectoryFile, om.transitionFile, om.perfFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
