package game

// handleClick reacts to a click at a world point. Clicking a vehicle selects and stops it;
// clicking the floor steers the selected vehicle toward the point at its max speed.
func (g *Game) handleClick(wx, wy float64) {
	if e, ok := g.world.VehicleAt(wx, wy); ok {
		g.selected, g.hasSelected = e, true
		g.world.Stop(e)
		return
	}
	if !g.hasSelected {
		return
	}
	g.world.SeekPoint(g.selected, wx, wy)
}

// selectNext moves the selection to the next vehicle in spawn order.
func (g *Game) selectNext() {
	vehicles := g.world.Vehicles()
	if len(vehicles) == 0 {
		return
	}
	next := 0
	if g.hasSelected {
		current := g.world.Snapshot(g.selected).ID
		for i, v := range vehicles {
			if v.ID == current {
				next = (i + 1) % len(vehicles)
				break
			}
		}
	}
	if e, ok := g.world.Lookup(vehicles[next].Name); ok {
		g.selected, g.hasSelected = e, true
	}
}

// setAcceleration retunes the selected controller.
func (g *Game) setAcceleration(accel float64) {
	if !g.hasSelected {
		return
	}
	if err := g.world.Controller(g.selected).SetAcceleration(accel); err != nil {
		g.logger.Warn("rejected acceleration", "error", err)
	}
}

// setMaxSpeed retunes the selected controller.
func (g *Game) setMaxSpeed(maxSpeed float64) {
	if !g.hasSelected {
		return
	}
	if err := g.world.Controller(g.selected).SetMaxSpeed(maxSpeed); err != nil {
		g.logger.Warn("rejected max speed", "error", err)
	}
}
