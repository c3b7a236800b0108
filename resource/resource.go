// Package resource contains the Name type and dependency helpers used to identify and wire
// robot components.
package resource

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Known namespaces, types and subtypes.
const (
	ResourceNamespaceRDK  = "rdk"
	ResourceTypeComponent = "component"
	SubtypeBase           = "base"
	SubtypeMotor          = "motor"
)

// Name represents a known component of a robot. Instances are told their name at
// construction; nothing in this module numbers instances behind the caller's back.
type Name struct {
	UUID      string
	Namespace string
	Type      string
	Subtype   string
	Name      string
}

// NewName creates a new Name. The UUID is derived from the other fields so the same
// triplet and name always map to the same UUID.
func NewName(namespace, rType, subtype, name string) Name {
	i := fmt.Sprintf("%s:%s:%s", namespace, rType, subtype)
	if name != "" {
		i = fmt.Sprintf("%s/%s", i, name)
	}
	return Name{
		UUID:      uuid.NewSHA1(uuid.NameSpaceX500, []byte(i)).String(),
		Namespace: namespace,
		Type:      rType,
		Subtype:   subtype,
		Name:      name,
	}
}

// NewComponentName is shorthand for a component Name in the rdk namespace.
func NewComponentName(subtype, name string) Name {
	return NewName(ResourceNamespaceRDK, ResourceTypeComponent, subtype, name)
}

// Validate ensures that important fields exist and are valid.
func (n Name) Validate() error {
	if _, err := uuid.Parse(n.UUID); err != nil {
		return errors.New("uuid field for resource missing or invalid")
	}
	if n.Namespace == "" {
		return errors.New("namespace field for resource missing or invalid")
	}
	if n.Type == "" {
		return errors.New("type field for resource missing or invalid")
	}
	if n.Subtype == "" {
		return errors.New("subtype field for resource missing or invalid")
	}
	return nil
}

// String returns the fully qualified name of the resource.
func (n Name) String() string {
	s := fmt.Sprintf("%s:%s:%s", n.Namespace, n.Type, n.Subtype)
	if n.Name != "" {
		s = fmt.Sprintf("%s/%s", s, n.Name)
	}
	return s
}

// A Resource is anything that can be named and closed.
type Resource interface {
	Name() Name
	Close(ctx context.Context) error
}

// An Actuator is a resource that can move and must be stoppable at any time.
type Actuator interface {
	// IsMoving returns whether the resource is moving.
	IsMoving(ctx context.Context) (bool, error)

	// Stop stops all movement for the resource.
	Stop(ctx context.Context, extra map[string]interface{}) error
}
