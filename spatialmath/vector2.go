package spatialmath

import (
	"math"

	"github.com/golang/geo/r2"

	"go.viam.com/killough/utils"
)

// Vector2 is a vector in the ground plane. With the NED convention used by the
// drives in this module, X points ahead and Y points right, so a positive
// rotation turns the vector clockwise when seen from above.
type Vector2 struct {
	r2.Point
}

// NewVector2 returns the vector (x, y).
func NewVector2(x, y float64) Vector2 {
	return Vector2{r2.Point{X: x, Y: y}}
}

// UnitVector2FromDeg returns the unit vector (cos θ, sin θ) for θ in degrees.
func UnitVector2FromDeg(angleDeg float64) Vector2 {
	rad := utils.DegToRad(angleDeg)
	return NewVector2(math.Cos(rad), math.Sin(rad))
}

// RotateDeg returns v rotated by angleDeg degrees.
func (v Vector2) RotateDeg(angleDeg float64) Vector2 {
	rad := utils.DegToRad(angleDeg)
	cosA := math.Cos(rad)
	sinA := math.Sin(rad)
	return NewVector2(v.X*cosA-v.Y*sinA, v.X*sinA+v.Y*cosA)
}

// ScalarProject returns the component of v along unit, which must have unit length.
func (v Vector2) ScalarProject(unit Vector2) float64 {
	return v.Dot(unit.Point)
}

// Magnitude returns the euclidean length of v.
func (v Vector2) Magnitude() float64 {
	return v.Norm()
}

// AlmostEqual reports whether v and other differ by no more than tol on each axis.
func (v Vector2) AlmostEqual(other Vector2, tol float64) bool {
	return math.Abs(v.X-other.X) <= tol && math.Abs(v.Y-other.Y) <= tol
}
