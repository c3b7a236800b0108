package resource

import "github.com/pkg/errors"

// Dependencies are the resources a component needs at construction time.
type Dependencies map[Name]Resource

// NewNotFoundError is used when a resource is not found.
func NewNotFoundError(name Name) error {
	return errors.Errorf("resource %q not found", name)
}

// FromDependencies returns the named dependency as a T.
func FromDependencies[T Resource](deps Dependencies, name Name) (T, error) {
	var zero T
	res, ok := deps[name]
	if !ok {
		return zero, NewNotFoundError(name)
	}
	typed, ok := res.(T)
	if !ok {
		return zero, errors.Errorf("expected resource %q to be a %T but got %T", name, zero, res)
	}
	return typed, nil
}
