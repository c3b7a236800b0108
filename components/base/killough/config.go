package killough

import (
	goutils "go.viam.com/utils"

	"go.viam.com/killough/utils"
)

// ModelName is the model used to select this base in a config file.
const ModelName = "killough"

// Default drive tuning.
const (
	DefaultDeadband  = 0.02
	DefaultMaxOutput = 1.0
)

// Config is how you configure a Killough base.
type Config struct {
	Left          string   `json:"left"`
	Right         string   `json:"right"`
	Back          string   `json:"back"`
	LeftAngleDeg  *float64 `json:"left_angle_deg,omitempty"`
	RightAngleDeg *float64 `json:"right_angle_deg,omitempty"`
	BackAngleDeg  *float64 `json:"back_angle_deg,omitempty"`
	Deadband      *float64 `json:"deadband,omitempty"`
	MaxOutput     float64  `json:"max_output,omitempty"`
}

// Validate ensures all parts of the config are valid and returns the names of the
// motors the base depends on.
func (cfg *Config) Validate(path string) ([]string, error) {
	if cfg.Left == "" {
		return nil, goutils.NewConfigValidationFieldRequiredError(path, "left")
	}
	if cfg.Right == "" {
		return nil, goutils.NewConfigValidationFieldRequiredError(path, "right")
	}
	if cfg.Back == "" {
		return nil, goutils.NewConfigValidationFieldRequiredError(path, "back")
	}
	if cfg.Deadband != nil && (*cfg.Deadband < 0 || *cfg.Deadband > 1) {
		return nil, utils.NewConfigValidationOutOfRangeError(path, "deadband", *cfg.Deadband, 0, 1)
	}
	// 0 selects the default.
	if cfg.MaxOutput < 0 || cfg.MaxOutput > 1 {
		return nil, utils.NewConfigValidationOutOfRangeError(path, "max_output", cfg.MaxOutput, 0, 1)
	}
	return []string{cfg.Left, cfg.Right, cfg.Back}, nil
}

// Geometry returns the wheel layout described by the config.
func (cfg *Config) Geometry() Geometry {
	return NewGeometry(
		floatOr(cfg.LeftAngleDeg, DefaultLeftMotorAngleDeg),
		floatOr(cfg.RightAngleDeg, DefaultRightMotorAngleDeg),
		floatOr(cfg.BackAngleDeg, DefaultBackMotorAngleDeg),
	)
}

func (cfg *Config) deadband() float64 {
	return floatOr(cfg.Deadband, DefaultDeadband)
}

func (cfg *Config) maxOutput() float64 {
	if cfg.MaxOutput == 0 {
		return DefaultMaxOutput
	}
	return cfg.MaxOutput
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
