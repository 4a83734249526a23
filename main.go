package main

import (
	"flag"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/steer/config"
	"github.com/pthm-cable/steer/game"
	"github.com/pthm-cable/steer/script"
	"github.com/pthm-cable/steer/sim"
	"github.com/pthm-cable/steer/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics (requires -script)")
	scriptPath := flag.String("script", "", "Path to a command script")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	maxTicks := flag.Int("max-ticks", -1, "Stop after N ticks (-1 = use config, 0 = until settled)")
	dt := flag.Float64("dt", 0, "Headless time step in milliseconds (0 = use config)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		slog.Error("invalid log level", "level", *logLevel, "error", err)
		os.Exit(2)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *dt > 0 {
		cfg.Sim.DT = *dt
	}
	if *maxTicks >= 0 {
		cfg.Sim.MaxTicks = *maxTicks
	}

	var sc *script.Script
	if *scriptPath != "" {
		var err error
		if sc, err = script.Load(*scriptPath); err != nil {
			slog.Error("failed to load script", "error", err)
			os.Exit(1)
		}
	}

	om, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output", "error", err)
		os.Exit(1)
	}
	defer om.Close()

	if *headless {
		if err := runHeadless(cfg, sc, om, logger); err != nil {
			slog.Error("headless run failed", "error", err)
			om.Close()
			os.Exit(1)
		}
		return
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "steer")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.New(game.Options{Config: cfg, Script: sc, Output: om, Logger: logger})
	if err != nil {
		slog.Error("failed to start viewer", "error", err)
		return
	}
	defer g.Unload()

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()

		if cfg.Sim.MaxTicks > 0 && g.Tick() >= int64(cfg.Sim.MaxTicks) {
			break
		}
	}
}

// runHeadless plays a script at the configured fixed step and logs a summary.
func runHeadless(cfg *config.Config, sc *script.Script, om *telemetry.OutputManager, logger *slog.Logger) error {
	if sc == nil {
		sc = &script.Script{Vehicles: []script.Vehicle{game.DefaultVehicle}}
	}
	if err := om.WriteConfig(cfg); err != nil {
		return err
	}

	perf := telemetry.NewPerfCollector(600)
	r := &sim.Runner{
		World:       sim.New(cfg, logger),
		Script:      sc,
		Perf:        perf,
		DT:          cfg.Sim.DT,
		MaxTicks:    cfg.Sim.MaxTicks,
		SampleEvery: cfg.Telemetry.SampleEvery,
	}
	if om != nil {
		r.Recorder = om
	}

	logger.Info("starting headless run",
		"vehicles", len(sc.Vehicles),
		"commands", len(sc.Commands),
		"script_end", sc.End(),
		"dt", r.DT,
		"max_ticks", r.MaxTicks,
		"output_dir", om.Dir(),
	)

	if err := r.Spawn(); err != nil {
		return err
	}
	sum, err := r.Run()
	if err != nil {
		return err
	}

	stats := perf.Stats()
	if err := om.WritePerf(stats); err != nil {
		return err
	}
	logger.Info("headless run finished", "summary", sum, "perf", stats)
	return nil
}
