package killough

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"go.viam.com/killough/spatialmath"
	"go.viam.com/killough/utils"
)

// WheelSpeeds for a Killough drive, as normalized power in [-1.0, 1.0].
type WheelSpeeds struct {
	Left  float64
	Right float64
	Back  float64
}

// MaxMagnitude returns the largest absolute wheel speed.
func (ws WheelSpeeds) MaxMagnitude() float64 {
	return math.Max(math.Abs(ws.Left), math.Max(math.Abs(ws.Right), math.Abs(ws.Back)))
}

// Normalize scales speeds down in place so that none exceeds 1.0 in magnitude.
// Ratios between speeds are kept, so the direction of travel is too. Speeds are
// never scaled up.
func Normalize(speeds []float64) {
	if len(speeds) == 0 {
		return
	}
	maxMagnitude := floats.Norm(speeds, math.Inf(1))
	if maxMagnitude > 1.0 {
		floats.Scale(1/maxMagnitude, speeds)
	}
}

// Solve runs Cartesian inverse kinematics for any wheel layout and returns one
// normalized speed per wheel of g, in order.
//
// ySpeed and xSpeed are clamped to [-1, 1]. zRotation is added to every wheel as
// is and is not clamped; oversized rotation is only tamed by normalization.
func Solve(g Geometry, ySpeed, xSpeed, zRotation, gyroAngle float64) []float64 {
	ySpeed = utils.Clamp(ySpeed, -1.0, 1.0)
	xSpeed = utils.Clamp(xSpeed, -1.0, 1.0)

	// The first component is the rightward speed. Wheel directions are (cos, sin)
	// of a clockwise-from-ahead angle, so this ordering lines the two up.
	input := spatialmath.NewVector2(ySpeed, xSpeed)
	// Compensate for gyro angle.
	input = input.RotateDeg(-utils.ModAngDeg(gyroAngle))

	speeds := make([]float64, len(g.wheels))
	for i, w := range g.wheels {
		speeds[i] = input.ScalarProject(w.Direction) + zRotation
	}
	Normalize(speeds)
	return speeds
}

// SolveCartesian is Cartesian inverse kinematics for a Killough platform.
//
// Angles are measured clockwise from the positive X axis. The robot's speed is
// independent from its angle or rotation rate.
//
// ySpeed is the speed along the Y axis [-1.0..1.0], right is positive. xSpeed is
// the speed along the X axis [-1.0..1.0], forward is positive. zRotation is the
// rotation rate around the Z axis [-1.0..1.0], clockwise is positive. gyroAngle is
// the current heading in degrees around the Z axis; pass 0 for robot-relative
// control.
func SolveCartesian(g Geometry, ySpeed, xSpeed, zRotation, gyroAngle float64) WheelSpeeds {
	return wheelSpeedsFor(g, Solve(g, ySpeed, xSpeed, zRotation, gyroAngle))
}

// PolarToCartesian converts a magnitude and an angle in degrees from straight ahead
// into rightward and forward speeds.
func PolarToCartesian(magnitude, angleDeg float64) (ySpeed, xSpeed float64) {
	rad := utils.DegToRad(angleDeg)
	return magnitude * math.Sin(rad), magnitude * math.Cos(rad)
}

// SolvePolar is polar inverse kinematics for a Killough platform. The heading is
// not compensated for.
func SolvePolar(g Geometry, magnitude, angleDeg, zRotation float64) WheelSpeeds {
	ySpeed, xSpeed := PolarToCartesian(magnitude, angleDeg)
	return SolveCartesian(g, ySpeed, xSpeed, zRotation, 0.0)
}

func wheelSpeedsFor(g Geometry, speeds []float64) WheelSpeeds {
	var ws WheelSpeeds
	for i, w := range g.wheels {
		switch w.Role {
		case RoleLeft:
			ws.Left = speeds[i]
		case RoleRight:
			ws.Right = speeds[i]
		case RoleBack:
			ws.Back = speeds[i]
		}
	}
	return ws
}
