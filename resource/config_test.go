package resource_test

import (
	"context"
	"testing"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/test"
	goutils "go.viam.com/utils"

	"go.viam.com/killough/resource"
	"go.viam.com/killough/utils"
)

type testConfig struct {
	Target string   `json:"target"`
	Gain   *float64 `json:"gain,omitempty"`
	Count  int      `json:"count"`
}

func (cfg *testConfig) Validate(path string) ([]string, error) {
	if cfg.Target == "" {
		return nil, goutils.NewConfigValidationFieldRequiredError(path, "target")
	}
	return []string{cfg.Target}, nil
}

type testResource struct {
	name resource.Name
	conf *testConfig
}

func (r *testResource) Name() resource.Name             { return r.name }
func (r *testResource) Close(ctx context.Context) error { return nil }

func TestTransformAttributeMap(t *testing.T) {
	conf, unused, err := resource.TransformAttributeMap[*testConfig](utils.AttributeMap{
		"target": "left",
		"gain":   0.5,
		"count":  3.0,
		"zzz":    true,
		"extra":  "what",
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, conf.Target, test.ShouldEqual, "left")
	test.That(t, *conf.Gain, test.ShouldEqual, 0.5)
	test.That(t, conf.Count, test.ShouldEqual, 3)
	test.That(t, unused, test.ShouldResemble, []string{"extra", "zzz"})

	conf, unused, err = resource.TransformAttributeMap[*testConfig](nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, conf, test.ShouldNotBeNil)
	test.That(t, conf.Gain, test.ShouldBeNil)
	test.That(t, unused, test.ShouldBeEmpty)

	_, _, err = resource.TransformAttributeMap[*testConfig](utils.AttributeMap{"target": []int{1}})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestConfigValidate(t *testing.T) {
	for _, tc := range []struct {
		name string
		conf resource.Config
		err  string
	}{
		{"no name", resource.Config{Type: "motor", Model: "fake"}, `error validating "c": "name" is required`},
		{"no type", resource.Config{Name: "a", Model: "fake"}, `error validating "c": "type" is required`},
		{"no model", resource.Config{Name: "a", Type: "motor"}, `error validating "c": "model" is required`},
		{
			"bad attributes",
			resource.Config{Name: "a", Type: "motor", Model: "fake", ConvertedAttributes: &testConfig{}},
			`error validating "c": "target" is required`,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.conf.Validate("c")
			test.That(t, err, test.ShouldBeError, tc.err)
		})
	}

	conf := resource.Config{
		Name:                "a",
		Type:                "motor",
		Model:               "fake",
		DependsOn:           []string{"b"},
		ConvertedAttributes: &testConfig{Target: "c"},
	}
	deps, err := conf.Validate("c")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, deps, test.ShouldResemble, []string{"b", "c"})
	test.That(t, conf.ImplicitDependsOn, test.ShouldResemble, []string{"c"})
	test.That(t, conf.ResourceName(), test.ShouldResemble, resource.NewComponentName("motor", "a"))

	native, err := resource.NativeConfig[*testConfig](conf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, native.Target, test.ShouldEqual, "c")

	_, err = resource.NativeConfig[*testResource](conf)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestRegistry(t *testing.T) {
	const subtype, model = "widget", "test"
	defer resource.Deregister(subtype, model)

	resource.RegisterComponent(subtype, model, resource.Registration[*testResource, *testConfig]{
		Constructor: func(
			ctx context.Context,
			deps resource.Dependencies,
			conf resource.Config,
			logger golog.Logger,
		) (*testResource, error) {
			native, err := resource.NativeConfig[*testConfig](conf)
			if err != nil {
				return nil, err
			}
			if _, ok := deps[resource.NewComponentName(subtype, native.Target)]; !ok {
				return nil, errors.New("missing target")
			}
			return &testResource{name: conf.ResourceName(), conf: native}, nil
		},
	})

	test.That(t, func() {
		resource.RegisterComponent(subtype, model, resource.Registration[*testResource, *testConfig]{})
	}, test.ShouldPanic)

	reg, ok := resource.LookupRegistration(subtype, model)
	test.That(t, ok, test.ShouldBeTrue)
	var found bool
	for _, sm := range resource.RegisteredModels() {
		if sm == (resource.SubtypeModel{Subtype: subtype, Model: model}) {
			found = true
		}
	}
	test.That(t, found, test.ShouldBeTrue)

	converted, unused, err := reg.AttributeMapConverter(utils.AttributeMap{"target": "other"})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, unused, test.ShouldBeEmpty)

	conf := resource.Config{Name: "w", Type: subtype, Model: model, ConvertedAttributes: converted}
	other := &testResource{name: resource.NewComponentName(subtype, "other")}
	res, err := reg.Constructor(context.Background(), resource.Dependencies{other.Name(): other}, conf, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Name().Name, test.ShouldEqual, "w")

	_, err = reg.Constructor(context.Background(), resource.Dependencies{}, conf, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeError, "missing target")

	_, ok = resource.LookupRegistration(subtype, "nope")
	test.That(t, ok, test.ShouldBeFalse)
}
