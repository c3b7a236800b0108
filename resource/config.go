package resource

import (
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/killough/utils"
)

// A ConfigValidator validates a native resource config and returns the names of
// the resources it depends on.
type ConfigValidator interface {
	Validate(path string) ([]string, error)
}

// Config describes the configuration of a resource.
type Config struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Model     string   `json:"model"`
	DependsOn []string `json:"depends_on,omitempty"`

	Attributes          utils.AttributeMap `json:"attributes,omitempty"`
	ConvertedAttributes ConfigValidator    `json:"-"`
	ImplicitDependsOn   []string           `json:"-"`
}

// NativeConfig returns the native config from the given config via its
// converted attributes.
func NativeConfig[T any](conf Config) (T, error) {
	return utils.AssertType[T](conf.ConvertedAttributes)
}

// ResourceName returns the resource name for the config.
func (conf Config) ResourceName() Name {
	return NewComponentName(conf.Type, conf.Name)
}

// Dependencies returns every resource name the config depends on, explicit
// ones first.
func (conf Config) Dependencies() []string {
	deps := make([]string, 0, len(conf.DependsOn)+len(conf.ImplicitDependsOn))
	deps = append(deps, conf.DependsOn...)
	return append(deps, conf.ImplicitDependsOn...)
}

// Validate ensures all parts of the config are valid and records the
// dependencies implied by the converted attributes.
func (conf *Config) Validate(path string) ([]string, error) {
	if conf.Name == "" {
		return nil, goutils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if conf.Type == "" {
		return nil, goutils.NewConfigValidationFieldRequiredError(path, "type")
	}
	if conf.Model == "" {
		return nil, goutils.NewConfigValidationFieldRequiredError(path, "model")
	}
	if conf.ConvertedAttributes == nil {
		return conf.DependsOn, nil
	}
	deps, err := conf.ConvertedAttributes.Validate(path)
	if err != nil {
		return nil, err
	}
	conf.ImplicitDependsOn = deps
	return conf.Dependencies(), nil
}

// TransformAttributeMap uses an attribute map to transform attributes to the
// prescribed format. Keys that do not map onto T are returned sorted.
func TransformAttributeMap[T any](attributes utils.AttributeMap) (T, []string, error) {
	var out T

	var forResult interface{}

	toT := reflect.TypeOf(out)
	if toT == nil {
		return out, nil, errors.New("cannot transform attributes into an interface type")
	}
	if toT.Kind() == reflect.Ptr {
		// needs to be allocated then
		var ok bool
		out, ok = reflect.New(toT.Elem()).Interface().(T)
		if !ok {
			return out, nil, errors.Errorf("failed to allocate default config type %T", out)
		}
		forResult = out
	} else {
		forResult = &out
	}

	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:  "json",
		Result:   forResult,
		Metadata: &md,
	})
	if err != nil {
		return out, nil, err
	}
	if err := decoder.Decode(map[string]interface{}(attributes)); err != nil {
		return out, nil, err
	}
	unused := utils.AttributeMap{}
	for _, key := range md.Unused {
		unused[key] = struct{}{}
	}
	return out, unused.Keys(), nil
}
