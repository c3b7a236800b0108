// Package motor defines machines that convert electricity into rotary motion.
package motor

import (
	"context"
	"math"

	"go.viam.com/killough/resource"
)

// A Motor represents a physical motor whose output can be set as a fraction of full power.
type Motor interface {
	resource.Resource
	resource.Actuator

	// SetPower sets the percentage of power the motor should employ between -1 and 1.
	// Negative power corresponds to a backward direction of rotation. Positive power
	// drives the wheel along the direction it is mounted at.
	SetPower(ctx context.Context, powerPct float64, extra map[string]interface{}) error

	// IsPowered returns whether or not the motor is currently on, and the percent power
	// (between -1 and 1, if the motor is off then the percent power will be 0).
	IsPowered(ctx context.Context, extra map[string]interface{}) (bool, float64, error)
}

// Named is a helper for getting the named Motor's typed resource name.
func Named(name string) resource.Name {
	return resource.NewComponentName(resource.SubtypeMotor, name)
}

// FromDependencies is a helper for getting the named motor from a collection of
// dependencies.
func FromDependencies(deps resource.Dependencies, name string) (Motor, error) {
	return resource.FromDependencies[Motor](deps, Named(name))
}

// ClampPower clamps a percentage power to 1.0 or -1.0.
func ClampPower(pwr float64) float64 {
	pwr = math.Min(pwr, 1.0)
	pwr = math.Max(pwr, -1.0)
	return pwr
}

// Powered is a snapshot of a motor's IsPowered response.
type Powered struct {
	Name      string
	IsPowered bool
	PowerPct  float64
}

// ReadPowered captures the power state of m.
func ReadPowered(ctx context.Context, m Motor) (Powered, error) {
	on, pct, err := m.IsPowered(ctx, nil)
	if err != nil {
		return Powered{Name: m.Name().Name}, err
	}
	return Powered{Name: m.Name().Name, IsPowered: on, PowerPct: pct}, nil
}
