// Package geom provides the angle helpers and the 2D vector type used by the motion controller.
package geom

import "math"

const (
	degreesToRadians = math.Pi / 180
	radiansToDegrees = 180 / math.Pi
	twoPi            = 2 * math.Pi
)

// DegreesToRadians converts an angle in degrees to radians.
func DegreesToRadians(d float64) float64 {
	return d * degreesToRadians
}

// RadiansToDegrees converts an angle in radians to degrees.
func RadiansToDegrees(r float64) float64 {
	return r * radiansToDegrees
}

// AngularDifference returns the shortest unsigned distance between two headings, in [0, Pi].
// Inputs do not need to be normalized.
func AngularDifference(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), twoPi)
	if d > math.Pi {
		d = twoPi - d
	}
	return d
}

// NormalizeAngle wraps an angle to (-Pi, Pi].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, twoPi)
	if a > math.Pi {
		a -= twoPi
	} else if a <= -math.Pi {
		a += twoPi
	}
	return a
}
