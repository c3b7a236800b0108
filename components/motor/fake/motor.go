// Package fake implements a fake motor.
package fake

import (
	"context"
	"math"
	"sync"

	"github.com/edaniels/golog"

	"go.viam.com/killough/components/motor"
	"go.viam.com/killough/resource"
)

// ModelName is the model used to select this motor in a config file.
const ModelName = "fake"

const defaultMaxRPM = 100

// Config describes the configuration of a fake motor.
type Config struct {
	MaxRPM        float64 `json:"max_rpm,omitempty"`
	DirectionFlip bool    `json:"direction_flip,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) ([]string, error) {
	return nil, nil
}

func init() {
	resource.RegisterComponent(resource.SubtypeMotor, ModelName, resource.Registration[motor.Motor, *Config]{
		Constructor: func(
			ctx context.Context,
			deps resource.Dependencies,
			conf resource.Config,
			logger golog.Logger,
		) (motor.Motor, error) {
			newConf, err := resource.NativeConfig[*Config](conf)
			if err != nil {
				return nil, err
			}
			return NewMotor(conf.ResourceName(), newConf, logger), nil
		},
	})
}

var _ motor.Motor = &Motor{}

// A Motor allows setting and reading a set power percentage and
// direction.
type Motor struct {
	name     resource.Name
	mu       sync.Mutex
	powerPct float64
	closed   bool
	setCount int
	MaxRPM   float64
	DirFlip  bool
	Logger   golog.Logger
}

// NewMotor returns a fake motor. A nil config gives the defaults.
func NewMotor(name resource.Name, cfg *Config, logger golog.Logger) *Motor {
	m := &Motor{name: name, Logger: logger, MaxRPM: defaultMaxRPM}
	if cfg != nil {
		if cfg.MaxRPM != 0 {
			m.MaxRPM = cfg.MaxRPM
		}
		m.DirFlip = cfg.DirectionFlip
	}
	return m
}

// Name returns the name of the motor.
func (m *Motor) Name() resource.Name {
	return m.name
}

// SetPower sets the given power percentage, clamped to [-1, 1].
func (m *Motor) SetPower(ctx context.Context, powerPct float64, extra map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return motor.NewMotorClosedError(m.name.Name)
	}
	if math.IsNaN(powerPct) {
		return motor.NewInvalidPowerError(m.name.Name, powerPct)
	}
	m.Logger.Debugf("Motor %s SetPower %f", m.name.Name, powerPct)
	m.powerPct = motor.ClampPower(powerPct)
	m.setCount++
	return nil
}

// PowerPct returns the commanded power percentage.
func (m *Motor) PowerPct() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.powerPct
}

// OutputPct returns the power the motor would physically apply, which is the
// commanded power reversed when the motor is mounted flipped.
func (m *Motor) OutputPct() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DirFlip {
		return -m.powerPct
	}
	return m.powerPct
}

// RPM returns the speed the motor would spin at given its commanded power.
func (m *Motor) RPM() float64 {
	return m.OutputPct() * m.MaxRPM
}

// SetPowerCount returns how many times SetPower succeeded.
func (m *Motor) SetPowerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setCount
}

// Stop has the motor pretend to be off.
func (m *Motor) Stop(ctx context.Context, extra map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Logger.Debugf("Motor %s Stopped", m.name.Name)
	m.powerPct = 0.0
	return nil
}

// IsPowered returns if the motor is pretending to be on or not, and its power level.
func (m *Motor) IsPowered(ctx context.Context, extra map[string]interface{}) (bool, float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return math.Abs(m.powerPct) >= 0.005, m.powerPct, nil
}

// IsMoving returns if the motor is pretending to be moving or not.
func (m *Motor) IsMoving(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return math.Abs(m.powerPct) >= 0.005, nil
}

// Close stops the motor and rejects further power commands.
func (m *Motor) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.powerPct = 0
	m.closed = true
	return nil
}
