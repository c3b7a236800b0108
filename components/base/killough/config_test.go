package killough

import (
	"testing"

	"go.viam.com/test"
)

func TestValidateConfig(t *testing.T) {
	bad := 1.5
	negative := -0.1

	for _, tc := range []struct {
		name string
		cfg  Config
		err  string
	}{
		{"missing left", Config{Right: "r", Back: "b"}, `error validating "base": "left" is required`},
		{"missing right", Config{Left: "l", Back: "b"}, `error validating "base": "right" is required`},
		{"missing back", Config{Left: "l", Right: "r"}, `error validating "base": "back" is required`},
		{
			"deadband too large",
			Config{Left: "l", Right: "r", Back: "b", Deadband: &bad},
			`error validating "base": "deadband" must be within [0, 1], got 1.5`,
		},
		{
			"negative deadband",
			Config{Left: "l", Right: "r", Back: "b", Deadband: &negative},
			`error validating "base": "deadband" must be within [0, 1], got -0.1`,
		},
		{
			"max output too large",
			Config{Left: "l", Right: "r", Back: "b", MaxOutput: 2},
			`error validating "base": "max_output" must be within [0, 1], got 2`,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			deps, err := tc.cfg.Validate("base")
			test.That(t, deps, test.ShouldBeNil)
			test.That(t, err, test.ShouldBeError, tc.err)
		})
	}

	cfg := Config{Left: "l", Right: "r", Back: "b"}
	deps, err := cfg.Validate("base")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, deps, test.ShouldResemble, []string{"l", "r", "b"})
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{Left: "l", Right: "r", Back: "b"}
	test.That(t, cfg.deadband(), test.ShouldEqual, DefaultDeadband)
	test.That(t, cfg.maxOutput(), test.ShouldEqual, DefaultMaxOutput)
	test.That(t, cfg.Geometry(), test.ShouldResemble, DefaultGeometry())

	zero := 0.0
	left := 45.0
	cfg.Deadband = &zero
	cfg.MaxOutput = 0.5
	cfg.LeftAngleDeg = &left
	test.That(t, cfg.deadband(), test.ShouldEqual, 0.0)
	test.That(t, cfg.maxOutput(), test.ShouldEqual, 0.5)
	w, ok := cfg.Geometry().Wheel(RoleLeft)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, w.AngleDeg, test.ShouldEqual, 45.0)
	w, _ = cfg.Geometry().Wheel(RoleBack)
	test.That(t, w.AngleDeg, test.ShouldEqual, DefaultBackMotorAngleDeg)
}
