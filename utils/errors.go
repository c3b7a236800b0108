package utils

import (
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
)

// NewUnexpectedTypeError is used when there is a type mismatch.
func NewUnexpectedTypeError(expected interface{}, actual interface{}) error {
	return errors.Errorf("expected %T but got %T", expected, actual)
}

// NewConfigValidationOutOfRangeError returns a config validation error for a
// numeric field outside of its allowed interval.
func NewConfigValidationOutOfRangeError(path, field string, value, low, high float64) error {
	return goutils.NewConfigValidationError(path,
		errors.Errorf("%q must be within [%v, %v], got %v", field, low, high, value))
}
