package components

import "math"

// Body holds the size of a vehicle's sprite, centered on its pose.
type Body struct {
	Width, Height float64
}

// Contains reports whether the world point (x, y) lies inside the body placed at p.
// The point is rotated into the body's frame and tested against the half extents.
func (b Body) Contains(p Pose, x, y float64) bool {
	dx := x - p.X
	dy := y - p.Y
	cos, sin := math.Cos(-p.Rotation), math.Sin(-p.Rotation)
	lx := dx*cos - dy*sin
	ly := dx*sin + dy*cos
	return math.Abs(lx) <= b.Width/2 && math.Abs(ly) <= b.Height/2
}
