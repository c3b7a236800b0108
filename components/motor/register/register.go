// Package register registers all relevant motors
package register

import (
	// for motors.
	_ "go.viam.com/killough/components/motor/fake"
)
