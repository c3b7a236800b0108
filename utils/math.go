package utils

import "math"

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * (math.Pi / 180.0)
}

// ModAngDeg maps an angle in degrees into [0, 360).
func ModAngDeg(ang float64) float64 {
	return math.Mod(math.Mod(ang, 360)+360, 360)
}

// Clamp returns value limited to the closed interval [low, high].
func Clamp(value, low, high float64) float64 {
	return math.Max(low, math.Min(value, high))
}

// ApplyDeadband returns 0 when the magnitude of value is below deadband and
// value unchanged otherwise. The remaining range is not rescaled.
func ApplyDeadband(value, deadband float64) float64 {
	if math.Abs(value) < deadband {
		return 0
	}
	return value
}
