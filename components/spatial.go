package components

// Pose is where the renderer places an entity's sprite, synced from the controller each step.
type Pose struct {
	X, Y     float64
	Rotation float64 // radians
}
