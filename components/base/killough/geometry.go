package killough

import (
	"github.com/pkg/errors"

	"go.viam.com/killough/spatialmath"
)

// Default wheel angles, in degrees clockwise from straight ahead. They make each
// wheel parallel to the side of the chassis opposite it.
const (
	DefaultLeftMotorAngleDeg  = 60.0
	DefaultRightMotorAngleDeg = 120.0
	DefaultBackMotorAngleDeg  = 270.0
)

// Role names the corner of the chassis a wheel sits on.
type Role string

// The roles of a triangular chassis.
const (
	RoleLeft  Role = "left"
	RoleRight Role = "right"
	RoleBack  Role = "back"
)

// Wheel is one omni wheel: where it sits and which way it rolls when driven forward.
type Wheel struct {
	Role      Role
	AngleDeg  float64
	Direction spatialmath.Vector2
}

// NewWheel returns the wheel for role mounted angleDeg degrees clockwise from
// straight ahead.
func NewWheel(role Role, angleDeg float64) Wheel {
	return Wheel{Role: role, AngleDeg: angleDeg, Direction: spatialmath.UnitVector2FromDeg(angleDeg)}
}

// Geometry is an ordered set of wheels. It is an immutable value; drives swap
// whole geometries rather than editing one in place.
type Geometry struct {
	wheels []Wheel
}

// NewGeometry returns the triangular layout with the given mounting angles.
func NewGeometry(leftAngleDeg, rightAngleDeg, backAngleDeg float64) Geometry {
	return Geometry{wheels: []Wheel{
		NewWheel(RoleLeft, leftAngleDeg),
		NewWheel(RoleRight, rightAngleDeg),
		NewWheel(RoleBack, backAngleDeg),
	}}
}

// DefaultGeometry returns the triangular layout with the default angles.
func DefaultGeometry() Geometry {
	return NewGeometry(DefaultLeftMotorAngleDeg, DefaultRightMotorAngleDeg, DefaultBackMotorAngleDeg)
}

// NewGeometryFromWheels builds a geometry from any number of wheels. Roles must be
// unique. Each Direction is recomputed from AngleDeg. Wheels that roll in the same direction are accepted; such a layout
// cannot produce every motion and catching it is left to the caller.
func NewGeometryFromWheels(wheels ...Wheel) (Geometry, error) {
	if len(wheels) == 0 {
		return Geometry{}, errors.New("geometry needs at least one wheel")
	}
	seen := make(map[Role]struct{}, len(wheels))
	copied := make([]Wheel, 0, len(wheels))
	for _, w := range wheels {
		if w.Role == "" {
			return Geometry{}, errors.New("wheel role cannot be empty")
		}
		if _, ok := seen[w.Role]; ok {
			return Geometry{}, errors.Errorf("duplicate wheel role %q", w.Role)
		}
		seen[w.Role] = struct{}{}
		copied = append(copied, NewWheel(w.Role, w.AngleDeg))
	}
	return Geometry{wheels: copied}, nil
}

// Wheels returns a copy of the wheels in order.
func (g Geometry) Wheels() []Wheel {
	return append([]Wheel(nil), g.wheels...)
}

// Len returns the number of wheels.
func (g Geometry) Len() int {
	return len(g.wheels)
}

// Wheel returns the wheel with the given role.
func (g Geometry) Wheel(role Role) (Wheel, bool) {
	for _, w := range g.wheels {
		if w.Role == role {
			return w, true
		}
	}
	return Wheel{}, false
}
