// Package camera provides a 2D follow camera over an unbounded floor.
package camera

import "math"

// Camera controls the viewport into the simulation world.
// Supports pan, zoom, and following a target.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float32

	// Zoom level in screen pixels per world unit
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Fit is the world span shown across the shorter viewport side at the default zoom
	Fit float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera centered on the origin, zoomed so fit world units span the
// shorter side of the viewport.
func New(viewportW, viewportH, fit, minZoom, maxZoom float32) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		Fit:       fit,
		MinZoom:   minZoom,
		MaxZoom:   maxZoom,
	}
	c.Reset()
	return c
}

// FitZoom returns the zoom at which Fit world units span the shorter viewport side.
func (c *Camera) FitZoom() float32 {
	if c.Fit <= 0 {
		return 1
	}
	short := c.ViewportW
	if c.ViewportH < short {
		short = c.ViewportH
	}
	return short / c.Fit
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportH/2 + (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wy = c.Y + (sy-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// IsVisible returns true if a circle at (wx, wy) with given radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return absf(wx-c.X) <= halfW && absf(wy-c.Y) <= halfH
}

// Follow centers the camera on a world point.
func (c *Camera) Follow(wx, wy float32) {
	c.X = wx
	c.Y = wy
}

// Resize updates viewport dimensions, keeping the fitted span if the zoom was at fit.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	atFit := c.Zoom == c.FitZoom()
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	if atFit {
		c.SetZoom(c.FitZoom())
	}
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	c.X += dx / c.Zoom
	c.Y += dy / c.Zoom
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to the origin at the fitted zoom.
func (c *Camera) Reset() {
	c.X = 0
	c.Y = 0
	c.SetZoom(c.FitZoom())
}

// VisibleWorldBounds returns the world-coordinate bounds of the visible area.
// Returns (minX, minY, maxX, maxY) in world coordinates.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)

	minX = c.X - halfW
	maxX = c.X + halfW
	minY = c.Y - halfH
	maxY = c.Y + halfH
	return
}

// GridOffset returns the screen position of the first grid line at or left/above of the
// viewport origin, and the screen distance between lines, for a grid with the given world spacing.
// The floor scrolls under a followed vehicle by drawing from this offset.
func (c *Camera) GridOffset(spacing float32) (ox, oy, step float32) {
	step = spacing * c.Zoom
	minX, minY, _, _ := c.VisibleWorldBounds()
	ox = -mod(minX, spacing) * c.Zoom
	oy = -mod(minY, spacing) * c.Zoom
	return ox, oy, step
}

// mod computes the positive modulo (Go's % can return negative).
func mod(x, m float32) float32 {
	r := float32(math.Mod(float64(x), float64(m)))
	if r < 0 {
		r += m
	}
	return r
}

// absf returns the absolute value of a float32.
func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
