package motor

import "github.com/pkg/errors"

// NewInvalidPowerError returns an error for a power value that is not a number.
func NewInvalidPowerError(motorName string, powerPct float64) error {
	return errors.Errorf("motor named %s cannot be set to power %v", motorName, powerPct)
}

// NewMotorClosedError returns an error for a command sent to a closed motor.
func NewMotorClosedError(motorName string) error {
	return errors.Errorf("motor named %s is closed", motorName)
}
