// Package robot assembles a Killough robot, its motors and its watchdog from a config.
package robot

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/killough/components/base/killough"
	"go.viam.com/killough/components/motor"
	// register the motor models.
	_ "go.viam.com/killough/components/motor/register"
	"go.viam.com/killough/config"
	"go.viam.com/killough/motorsafety"
	"go.viam.com/killough/resource"
)

// A Robot is a constructed set of resources driven through a single Killough base.
type Robot struct {
	logger   golog.Logger
	cfg      *config.Config
	clk      clock.Clock
	order    []resource.Name
	res      resource.Dependencies
	base     *killough.Drive
	watchdog *motorsafety.Watchdog
}

// An Option customizes a Robot at construction.
type Option func(*Robot)

// WithClock sets the clock the watchdog runs on.
func WithClock(clk clock.Clock) Option {
	return func(r *Robot) {
		r.clk = clk
	}
}

// New builds every component in cfg in dependency order, then guards the base
// with a watchdog. cfg must have been processed by config.Read or config.FromReader.
func New(ctx context.Context, cfg *config.Config, logger golog.Logger, opts ...Option) (*Robot, error) {
	r := &Robot{
		logger: logger,
		cfg:    cfg,
		clk:    clock.New(),
		res:    resource.Dependencies{},
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.build(ctx); err != nil {
		return nil, multierr.Combine(err, r.closeResources(ctx))
	}

	bases := cfg.ComponentsOfType(resource.SubtypeBase)
	if len(bases) != 1 {
		return nil, multierr.Combine(errors.Errorf("robot needs exactly one base, found %d", len(bases)), r.closeResources(ctx))
	}
	base, err := resource.FromDependencies[*killough.Drive](r.res, bases[0].ResourceName())
	if err != nil {
		return nil, multierr.Combine(err, r.closeResources(ctx))
	}
	r.base = base

	r.watchdog = motorsafety.NewWatchdog(r.clk, cfg.Watchdog.Expiration(), func(ctx context.Context) error {
		return base.Stop(ctx, nil)
	}, logger.Named("watchdog"))
	if cfg.Watchdog.Disabled {
		r.watchdog.SetEnabled(false)
	}
	base.SetSafetyFeed(r.watchdog)
	return r, nil
}

func (r *Robot) build(ctx context.Context) error {
	pending := append([]resource.Config(nil), r.cfg.Components...)
	built := map[string]resource.Name{}
	for len(pending) > 0 {
		var next []resource.Config
		for _, conf := range pending {
			deps := resource.Dependencies{}
			ready := true
			for _, dep := range conf.Dependencies() {
				name, ok := built[dep]
				if !ok {
					ready = false
					break
				}
				deps[name] = r.res[name]
			}
			if !ready {
				next = append(next, conf)
				continue
			}

			reg, ok := resource.LookupRegistration(conf.Type, conf.Model)
			if !ok {
				return errors.Errorf("unknown model %q for type %q", conf.Model, conf.Type)
			}
			res, err := reg.Constructor(ctx, deps, conf, r.logger.Named(conf.Name))
			if err != nil {
				return errors.Wrapf(err, "cannot construct %s", conf.ResourceName())
			}
			r.logger.Debugw("constructed resource", "name", conf.ResourceName().String())
			r.res[res.Name()] = res
			r.order = append(r.order, res.Name())
			built[conf.Name] = res.Name()
		}
		if len(next) == len(pending) {
			names := lo.Map(next, func(conf resource.Config, _ int) string { return conf.Name })
			return errors.Errorf("circular dependencies among %v", names)
		}
		pending = next
	}
	return nil
}

// Base returns the robot's base.
func (r *Robot) Base() *killough.Drive {
	return r.base
}

// Watchdog returns the watchdog guarding the base.
func (r *Robot) Watchdog() *motorsafety.Watchdog {
	return r.watchdog
}

// Config returns the config the robot was built from.
func (r *Robot) Config() *config.Config {
	return r.cfg
}

// ResourceNames returns the names of all resources, in construction order.
func (r *Robot) ResourceNames() []resource.Name {
	return append([]resource.Name(nil), r.order...)
}

// ResourceByName returns the resource with the given name.
func (r *Robot) ResourceByName(name resource.Name) (resource.Resource, error) {
	res, ok := r.res[name]
	if !ok {
		return nil, resource.NewNotFoundError(name)
	}
	return res, nil
}

// MotorByName returns the motor with the given name.
func (r *Robot) MotorByName(name string) (motor.Motor, error) {
	return motor.FromDependencies(r.res, name)
}

// Close disarms the watchdog and closes every resource in reverse construction
// order, the base first.
func (r *Robot) Close(ctx context.Context) error {
	if r.watchdog != nil {
		r.watchdog.Close()
	}
	return r.closeResources(ctx)
}

func (r *Robot) closeResources(ctx context.Context) error {
	var err error
	for i := len(r.order) - 1; i >= 0; i-- {
		err = multierr.Combine(err, r.res[r.order[i]].Close(ctx))
	}
	return err
}
