package game

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/steer/config"
	"github.com/pthm-cable/steer/motion"
	"github.com/pthm-cable/steer/script"
	"github.com/pthm-cable/steer/telemetry"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	return cfg
}

func TestNewSpawnsDefaultVehicle(t *testing.T) {
	g, err := New(Options{Config: testConfig(t)})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if g.World().Len() != 1 {
		t.Fatalf("expected 1 vehicle, got %d", g.World().Len())
	}
	e, ok := g.Selected()
	if !ok {
		t.Fatal("expected default vehicle to be selected")
	}
	if name := g.World().Snapshot(e).Name; name != DefaultVehicle.Name {
		t.Errorf("expected %q selected, got %q", DefaultVehicle.Name, name)
	}

	if _, err := New(Options{}); err == nil {
		t.Error("expected error without config")
	}
}

func TestClickFloorSteers(t *testing.T) {
	g, err := New(Options{Config: testConfig(t)})
	if err != nil {
		t.Fatal(err)
	}
	e, _ := g.Selected()
	ctrl := g.World().Controller(e)

	g.handleClick(0, 500)
	if ctrl.State() != motion.Turning {
		t.Fatalf("expected turning after floor click, got %s", ctrl.State())
	}
	if math.Abs(ctrl.Target().Heading-math.Pi/2) > 1e-12 {
		t.Errorf("expected target heading Pi/2, got %f", ctrl.Target().Heading)
	}
	if ctrl.Target().Speed != ctrl.MaxSpeed() {
		t.Errorf("expected max speed target, got %f", ctrl.Target().Speed)
	}
}

func TestClickVehicleStops(t *testing.T) {
	g, err := New(Options{Config: testConfig(t)})
	if err != nil {
		t.Fatal(err)
	}
	e, _ := g.Selected()
	ctrl := g.World().Controller(e)

	g.handleClick(500, 0)
	for i := 0; i < 20; i++ {
		if err := g.Step(100); err != nil {
			t.Fatal(err)
		}
	}
	if ctrl.State() == motion.Rest {
		t.Fatal("expected vehicle to be moving")
	}

	pos := ctrl.Position()
	g.handleClick(pos.X, pos.Y)
	if ctrl.State() != motion.Stopping {
		t.Fatalf("expected stopping after clicking the vehicle, got %s", ctrl.State())
	}
	for i := 0; i < 100 && ctrl.State() != motion.Rest; i++ {
		if err := g.Step(100); err != nil {
			t.Fatal(err)
		}
	}
	if ctrl.State() != motion.Rest || ctrl.Speed() != 0 {
		t.Errorf("expected rest, got %s at speed %f", ctrl.State(), ctrl.Speed())
	}
}

func TestStepClampsLongFrames(t *testing.T) {
	g, err := New(Options{Config: testConfig(t)})
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Step(10_000); err != nil {
		t.Fatal(err)
	}
	if g.World().Time() != maxFrameMS {
		t.Errorf("expected time %v, got %v", maxFrameMS, g.World().Time())
	}
	if err := g.Step(0); err != nil || g.Tick() != 1 {
		t.Errorf("zero frame should not step, tick %d err %v", g.Tick(), err)
	}
}

func TestScriptDrivesViewer(t *testing.T) {
	sc, err := script.Parse([]byte(`
vehicles:
  - name: car
  - name: van
    y: 300
commands:
  - at: 0
    vehicle: van
    action: to_speed
`))
	if err != nil {
		t.Fatal(err)
	}

	dir := filepath.Join(t.TempDir(), "out")
	om, err := telemetry.NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	g, err := New(Options{Config: testConfig(t), Script: sc, Output: om})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		if err := g.Step(16); err != nil {
			t.Fatal(err)
		}
	}
	om.Close()

	van, _ := g.World().Lookup("van")
	if s := g.World().Controller(van).State(); s != motion.Accelerating {
		t.Errorf("expected van accelerating, got %s", s)
	}
	car, _ := g.World().Lookup("car")
	if s := g.World().Controller(car).State(); s != motion.Rest {
		t.Errorf("expected car at rest, got %s", s)
	}

	records, err := telemetry.ReadTrajectory(filepath.Join(dir, "trajectory.csv"))
	if err != nil {
		t.Fatal(err)
	}
	// Initial sample plus ten steps, two vehicles each.
	if len(records) != 22 {
		t.Errorf("expected 22 trajectory rows, got %d", len(records))
	}
}

func TestSelectNext(t *testing.T) {
	sc := &script.Script{Vehicles: []script.Vehicle{{Name: "a"}, {Name: "b", X: 500}}}
	g, err := New(Options{Config: testConfig(t), Script: sc})
	if err != nil {
		t.Fatal(err)
	}

	names := []string{}
	for i := 0; i < 3; i++ {
		g.selectNext()
		e, _ := g.Selected()
		names = append(names, g.World().Snapshot(e).Name)
	}
	if names[0] != "b" || names[1] != "a" || names[2] != "b" {
		t.Errorf("unexpected selection order %v", names)
	}
}

func TestTuningSelected(t *testing.T) {
	g, err := New(Options{Config: testConfig(t)})
	if err != nil {
		t.Fatal(err)
	}
	e, _ := g.Selected()
	ctrl := g.World().Controller(e)

	g.setAcceleration(0.002)
	g.setMaxSpeed(0.5)
	if ctrl.Acceleration() != 0.002 || ctrl.MaxSpeed() != 0.5 {
		t.Errorf("tuning not applied: %f %f", ctrl.Acceleration(), ctrl.MaxSpeed())
	}

	g.setAcceleration(0)
	if ctrl.Acceleration() != 0.002 {
		t.Errorf("invalid acceleration should be rejected, got %f", ctrl.Acceleration())
	}
}

func TestNewSizesViewFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("screen:\n  width: 800\n  height: 600\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	g, err := New(Options{Config: cfg})
	if err != nil {
		t.Fatal(err)
	}
	if g.camera.ViewportW != 800 || g.camera.ViewportH != 600 {
		t.Errorf("expected 800x600 viewport, got %vx%v", g.camera.ViewportW, g.camera.ViewportH)
	}
	if g.screenWidth != cfg.Derived.ScreenW32 || g.screenHeight != cfg.Derived.ScreenH32 {
		t.Errorf("expected screen %vx%v, got %vx%v", cfg.Derived.ScreenW32, cfg.Derived.ScreenH32, g.screenWidth, g.screenHeight)
	}
	if b := g.panel.Bounds(); b.X+b.Width != 790 {
		t.Errorf("expected panel flush with the right edge, got %+v", b)
	}
}
