// Package main fits a vehicle's acceleration (and optionally max speed) to a recorded
// trajectory by replaying the script that produced it.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/steer/config"
	"github.com/pthm-cable/steer/script"
	"github.com/pthm-cable/steer/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Config YAML used for the recorded run (empty = use defaults)")
	scriptPath := flag.String("script", "", "Script that produced the trajectory")
	trajectoryPath := flag.String("trajectory", "", "Recorded trajectory.csv")
	vehicle := flag.String("vehicle", "", "Vehicle to fit (empty = first vehicle in the script)")
	fitMaxSpeed := flag.Bool("fit-max-speed", false, "Also fit max speed")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of replays")
	outputDir := flag.String("output", "", "Directory for calibrate_log.csv and fitted_config.yaml (optional)")
	flag.Parse()

	if *scriptPath == "" || *trajectoryPath == "" {
		log.Fatal("--script and --trajectory are required")
	}

	config.MustInit(*configPath)
	cfg := config.Cfg()

	sc, err := script.Load(*scriptPath)
	if err != nil {
		log.Fatalf("failed to load script: %v", err)
	}
	records, err := telemetry.ReadTrajectory(*trajectoryPath)
	if err != nil {
		log.Fatalf("failed to load trajectory: %v", err)
	}

	name := *vehicle
	if name == "" && len(sc.Vehicles) > 0 {
		name = sc.Vehicles[0].Name
	}

	fitter, err := NewFitter(cfg, sc, records, name)
	if err != nil {
		log.Fatal(err)
	}
	fitter.FitMaxSpeed = *fitMaxSpeed

	accel0, maxSpeed0 := fitter.Initial()
	start, err := fitter.Residual(accel0, maxSpeed0)
	if err != nil {
		log.Fatalf("initial replay failed: %v", err)
	}
	fmt.Printf("Fitting %q: start acceleration=%g max_speed=%g residual=%g\n", name, accel0, maxSpeed0, start)

	var rows []Evaluation
	startTime := time.Now()
	result, err := fitter.Fit(*maxEvals, func(e Evaluation) {
		rows = append(rows, e)
		fmt.Printf("Eval %d/%d: residual=%.6g acceleration=%.6g max_speed=%.6g\n",
			e.Eval, *maxEvals, e.Residual, e.Acceleration, e.MaxSpeed)
	})
	if err != nil {
		log.Fatalf("fit failed: %v", err)
	}

	fmt.Printf("\nCalibration complete after %d replays in %s\n", result.Evaluations, time.Since(startTime).Round(time.Millisecond))
	fmt.Printf("  acceleration: %g\n", result.Acceleration)
	fmt.Printf("  max_speed:    %g\n", result.MaxSpeed)
	fmt.Printf("  residual:     %g\n", result.Residual)

	if *outputDir == "" {
		return
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	logFile, err := os.Create(filepath.Join(*outputDir, "calibrate_log.csv"))
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()
	if err := gocsv.MarshalFile(&rows, logFile); err != nil {
		log.Printf("failed to write calibration log: %v", err)
	}

	fitted, _ := config.Load(*configPath)
	fitted.Vehicle.Acceleration = result.Acceleration
	fitted.Vehicle.MaxSpeed = result.MaxSpeed
	configOutPath := filepath.Join(*outputDir, "fitted_config.yaml")
	if err := fitted.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write fitted config: %v", err)
	} else {
		fmt.Printf("\nFitted config saved to: %s\n", configOutPath)
	}
}
