package utils

import "sort"

// AssertType returns from as a T, or an error naming both types.
func AssertType[T any](from interface{}) (T, error) {
	typed, ok := from.(T)
	if !ok {
		var zero T
		return zero, NewUnexpectedTypeError(zero, from)
	}
	return typed, nil
}

// AttributeMap is a free-form set of component attributes as read from JSON.
type AttributeMap map[string]interface{}

// Keys returns the keys in sorted order.
func (am AttributeMap) Keys() []string {
	keys := make([]string, 0, len(am))
	for k := range am {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

