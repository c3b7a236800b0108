package resource

import (
	"context"
	"sort"
	"sync"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"go.viam.com/killough/utils"
)

type (
	// A SubtypeModel is the pair that identifies a model implementing a subtype.
	SubtypeModel struct {
		Subtype string
		Model   string
	}

	// A Create creates a resource from a collection of dependencies and a given config.
	Create[ResourceT Resource] func(
		ctx context.Context,
		deps Dependencies,
		conf Config,
		logger golog.Logger,
	) (ResourceT, error)

	// An AttributeMapConverter converts an attribute map into a native config type for a
	// resource. It also returns the attribute keys it did not use.
	AttributeMapConverter[ConfigT any] func(attributes utils.AttributeMap) (ConfigT, []string, error)
)

// A Registration stores construction info for a resource. A single constructor is mandatory.
type Registration[ResourceT Resource, ConfigT any] struct {
	Constructor Create[ResourceT]

	// AttributeMapConverter is used to convert raw attributes to the resource's native config.
	AttributeMapConverter AttributeMapConverter[ConfigT]
}

var (
	registryMu sync.RWMutex
	registry   = map[SubtypeModel]Registration[Resource, ConfigValidator]{}
)

// RegisterComponent registers a model for a component and its construction info.
func RegisterComponent[ResourceT Resource, ConfigT ConfigValidator](
	subtype, model string,
	reg Registration[ResourceT, ConfigT],
) {
	registryMu.Lock()
	defer registryMu.Unlock()

	key := SubtypeModel{subtype, model}
	if _, old := registry[key]; old {
		panic(errors.Errorf("trying to register two resources with same subtype: %q, model: %q", subtype, model))
	}
	if reg.Constructor == nil {
		panic(errors.Errorf("cannot register a nil constructor for subtype: %q, model: %q", subtype, model))
	}
	if reg.AttributeMapConverter == nil {
		// provide one for free
		reg.AttributeMapConverter = TransformAttributeMap[ConfigT]
	}
	registry[key] = makeGenericResourceRegistration(reg)
}

// makeGenericResourceRegistration allows a registration to be generic and ensures all input/output types
// are actually T's.
func makeGenericResourceRegistration[ResourceT Resource, ConfigT ConfigValidator](
	typed Registration[ResourceT, ConfigT],
) Registration[Resource, ConfigValidator] {
	return Registration[Resource, ConfigValidator]{
		Constructor: func(ctx context.Context, deps Dependencies, conf Config, logger golog.Logger) (Resource, error) {
			return typed.Constructor(ctx, deps, conf, logger)
		},
		AttributeMapConverter: func(attributes utils.AttributeMap) (ConfigValidator, []string, error) {
			return typed.AttributeMapConverter(attributes)
		},
	}
}

// Deregister removes a previously registered resource.
func Deregister(subtype, model string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, SubtypeModel{subtype, model})
}

// LookupRegistration looks up a registration by the given subtype and model.
func LookupRegistration(subtype, model string) (Registration[Resource, ConfigValidator], bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	reg, ok := registry[SubtypeModel{subtype, model}]
	return reg, ok
}

// RegisteredModels returns every registered subtype and model, sorted.
func RegisteredModels() []SubtypeModel {
	registryMu.RLock()
	defer registryMu.RUnlock()
	models := make([]SubtypeModel, 0, len(registry))
	for k := range registry {
		models = append(models, k)
	}
	sort.Slice(models, func(i, j int) bool {
		if models[i].Subtype != models[j].Subtype {
			return models[i].Subtype < models[j].Subtype
		}
		return models[i].Model < models[j].Model
	})
	return models
}
