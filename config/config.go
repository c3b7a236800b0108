// Package config defines the structures to configure a Killough robot and the methods
// to read them from a file.
package config

import (
	"fmt"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/killough/resource"
	"go.viam.com/killough/utils"
)

// Defaults for the optional sections of a config.
const (
	DefaultLoopFrequencyHz      = 50.0
	MaxLoopFrequencyHz          = 200.0
	DefaultWatchdogExpirationMs = 100
)

// A Config describes the configuration of a robot.
type Config struct {
	ConfigFilePath string            `json:"-"`
	Components     []resource.Config `json:"components"`
	Watchdog       WatchdogConfig    `json:"watchdog"`
	Loop           LoopConfig        `json:"loop"`
}

// WatchdogConfig configures the watchdog that stops the base when commands stop arriving.
type WatchdogConfig struct {
	ExpirationMs int  `json:"expiration_ms,omitempty"`
	Disabled     bool `json:"disabled,omitempty"`
}

// Expiration returns the configured expiration, or the default if none is set.
func (w WatchdogConfig) Expiration() time.Duration {
	if w.ExpirationMs == 0 {
		return DefaultWatchdogExpirationMs * time.Millisecond
	}
	return time.Duration(w.ExpirationMs) * time.Millisecond
}

// LoopConfig configures the control loop.
type LoopConfig struct {
	FrequencyHz float64 `json:"frequency_hz,omitempty"`
}

// Frequency returns the configured frequency, or the default if none is set.
func (l LoopConfig) Frequency() float64 {
	if l.FrequencyHz == 0 {
		return DefaultLoopFrequencyHz
	}
	return l.FrequencyHz
}

// Ensure converts the attributes of every component to their native configs and
// validates the whole config. Attributes a model does not know about are logged.
func (c *Config) Ensure(logger golog.Logger) error {
	seen := make(map[string]struct{}, len(c.Components))
	for idx := range c.Components {
		conf := &c.Components[idx]
		path := fmt.Sprintf("components.%d", idx)

		if conf.ConvertedAttributes == nil {
			// Checks the fields needed to find the model.
			if _, err := conf.Validate(path); err != nil {
				return err
			}
			reg, ok := resource.LookupRegistration(conf.Type, conf.Model)
			if !ok {
				return goutils.NewConfigValidationError(path,
					errors.Errorf("unknown model %q for type %q", conf.Model, conf.Type))
			}
			converted, unused, err := reg.AttributeMapConverter(conf.Attributes)
			if err != nil {
				return goutils.NewConfigValidationError(path, err)
			}
			for _, key := range unused {
				logger.Warnw("ignoring unknown attribute", "component", conf.Name, "attribute", key)
			}
			conf.ConvertedAttributes = converted
		}
		if _, err := conf.Validate(path); err != nil {
			return err
		}

		if _, dup := seen[conf.Name]; dup {
			return goutils.NewConfigValidationError(path, errors.Errorf("duplicate component name %q", conf.Name))
		}
		seen[conf.Name] = struct{}{}
	}

	for idx, conf := range c.Components {
		for _, dep := range conf.Dependencies() {
			if _, ok := seen[dep]; !ok {
				return goutils.NewConfigValidationError(fmt.Sprintf("components.%d", idx),
					errors.Errorf("depends on unknown component %q", dep))
			}
		}
	}

	if c.Watchdog.ExpirationMs < 0 {
		return goutils.NewConfigValidationError("watchdog",
			errors.Errorf("%q must be positive, got %d", "expiration_ms", c.Watchdog.ExpirationMs))
	}
	if c.Loop.FrequencyHz < 0 || c.Loop.FrequencyHz > MaxLoopFrequencyHz {
		return utils.NewConfigValidationOutOfRangeError("loop", "frequency_hz", c.Loop.FrequencyHz, 0, MaxLoopFrequencyHz)
	}
	return nil
}

// FindComponent finds a particular component by name.
func (c *Config) FindComponent(name string) *resource.Config {
	for idx := range c.Components {
		if c.Components[idx].Name == name {
			return &c.Components[idx]
		}
	}
	return nil
}

// ComponentsOfType returns the components of the given type, in config order.
func (c *Config) ComponentsOfType(rType string) []resource.Config {
	var out []resource.Config
	for _, conf := range c.Components {
		if conf.Type == rType {
			out = append(out, conf)
		}
	}
	return out
}
