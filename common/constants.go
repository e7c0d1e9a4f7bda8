package common

const (
	// Gravity is the downward acceleration in pixels per second squared.
	Gravity = 9.81 * 25

	// TimeStep is the fixed simulation step, one ebiten tick.
	TimeStep = 1.0 / 60.0

	// OutlineThickness is the stroke width of every ball and ring.
	OutlineThickness = 5.0

	BaseWidth  = 640
	BaseHeight = 640
)
