package geom

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r2"
)

// Epsilon is the tolerance used for vector equality and zero checks.
// It absorbs drift from many small integration steps.
const Epsilon = 1e-9

// Vector2 is a mutable 2D vector value.
// Mutating methods change the receiver in place and return it for chaining.
type Vector2 struct {
	X, Y float64
}

// Vec returns the vector (x, y).
func Vec(x, y float64) Vector2 {
	return Vector2{X: x, Y: y}
}

// Direction returns a vector pointing along angle (radians) with the given length.
func Direction(angle, length float64) Vector2 {
	return Vector2{X: math.Cos(angle) * length, Y: math.Sin(angle) * length}
}

// Subtract returns a - b.
func Subtract(a, b Vector2) Vector2 {
	return fromR2(r2.Sub(a.r2(), b.r2()))
}

// Add returns a + b.
func Add(a, b Vector2) Vector2 {
	return fromR2(r2.Add(a.r2(), b.r2()))
}

// Set assigns both components.
func (v *Vector2) Set(x, y float64) *Vector2 {
	v.X = x
	v.Y = y
	return v
}

// SetDirection points v along angle with the given length.
func (v *Vector2) SetDirection(angle, length float64) *Vector2 {
	*v = Direction(angle, length)
	return v
}

// CopyFrom copies o into v.
func (v *Vector2) CopyFrom(o Vector2) *Vector2 {
	*v = o
	return v
}

// Scale multiplies both components by k.
func (v *Vector2) Scale(k float64) *Vector2 {
	v.X *= k
	v.Y *= k
	return v
}

// Divide divides both components by k. Panics if k is zero.
func (v *Vector2) Divide(k float64) *Vector2 {
	if k == 0 {
		panic("geom: vector divided by zero")
	}
	v.X /= k
	v.Y /= k
	return v
}

// Negate flips the direction of v.
func (v *Vector2) Negate() *Vector2 {
	v.X = -v.X
	v.Y = -v.Y
	return v
}

// Normalize scales v to unit length. A zero vector stays zero.
func (v *Vector2) Normalize() *Vector2 {
	m := v.Magnitude()
	if m == 0 {
		v.X, v.Y = 0, 0
		return v
	}
	return v.Divide(m)
}

// Magnitude returns the Euclidean length of v.
func (v Vector2) Magnitude() float64 {
	return r2.Norm(v.r2())
}

// Angle returns atan2(y, x). The zero vector yields 0.
func (v Vector2) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// Equal reports whether both components of v and o differ by at most eps.
func (v Vector2) Equal(o Vector2, eps float64) bool {
	return scalar.EqualWithinAbs(v.X, o.X, eps) && scalar.EqualWithinAbs(v.Y, o.Y, eps)
}

// IsZero reports whether v is the zero vector within Epsilon.
func (v Vector2) IsZero() bool {
	return v.Equal(Vector2{}, Epsilon)
}

func (v Vector2) r2() r2.Vec {
	return r2.Vec{X: v.X, Y: v.Y}
}

func fromR2(p r2.Vec) Vector2 {
	return Vector2{X: p.X, Y: p.Y}
}
