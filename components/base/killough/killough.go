// Package killough implements a base driven by three omni wheels, one on each corner
// of a triangular chassis.
//
// Drive base diagram:
//
//	 /_____\
//	/ \   / \
//	   \ /
//	   ---
//
// The positive X axis points ahead, the positive Y axis points right, and the
// positive Z axis points down. Rotations follow the right-hand rule, so clockwise
// rotation around the Z axis is positive.
package killough

import (
	"context"
	"sync"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/killough/components/motor"
	"go.viam.com/killough/resource"
	"go.viam.com/killough/telemetry"
	"go.viam.com/killough/utils"
)

// A SafetyFeed is told every time the drive commands its motors. Whatever is
// behind it decides what to do when it stops hearing from the drive.
type SafetyFeed interface {
	Feed()
}

// SafetyFeedFunc adapts a function to a SafetyFeed.
type SafetyFeedFunc func()

// Feed calls f.
func (f SafetyFeedFunc) Feed() {
	f()
}

var noopFeed = SafetyFeedFunc(func() {})

// Command is one robot-frame motion request.
type Command struct {
	YSpeed    float64
	XSpeed    float64
	ZRotation float64
	GyroAngle float64
}

func init() {
	resource.RegisterComponent(resource.SubtypeBase, ModelName, resource.Registration[*Drive, *Config]{
		Constructor: func(
			ctx context.Context,
			deps resource.Dependencies,
			conf resource.Config,
			logger golog.Logger,
		) (*Drive, error) {
			newConf, err := resource.NativeConfig[*Config](conf)
			if err != nil {
				return nil, err
			}
			return NewDrive(ctx, deps, conf.Name, newConf, logger,
				WithUsageReporter(telemetry.LogReporter{Logger: logger}))
		},
	})
}

// Named is a helper for getting the named base's typed resource name.
func Named(name string) resource.Name {
	return resource.NewComponentName(resource.SubtypeBase, name)
}

// An Option customizes a Drive at construction.
type Option func(*Drive)

// WithSafetyFeed sets the collaborator fed after every command.
func WithSafetyFeed(feed SafetyFeed) Option {
	return func(d *Drive) {
		d.feed = feed
	}
}

// WithUsageReporter sets the collaborator told, once, that the drive is in use.
func WithUsageReporter(reporter telemetry.UsageReporter) Option {
	return func(d *Drive) {
		d.usage = telemetry.NewOnce(reporter)
	}
}

var (
	_ resource.Resource = (*Drive)(nil)
	_ resource.Actuator = (*Drive)(nil)
)

// Drive is a Killough base.
type Drive struct {
	name   resource.Name
	logger golog.Logger

	mu        sync.RWMutex
	geometry  Geometry
	deadband  float64
	maxOutput float64
	feed      SafetyFeed

	motors    map[Role]motor.Motor
	allMotors []motor.Motor
	usage     telemetry.UsageReporter
}

// NewDrive returns a new Killough base using the motors named in cfg.
func NewDrive(
	ctx context.Context,
	deps resource.Dependencies,
	name string,
	cfg *Config,
	logger golog.Logger,
	opts ...Option,
) (*Drive, error) {
	if cfg == nil {
		return nil, errors.New("killough base needs a config")
	}
	motors := make(map[Role]motor.Motor, 3)
	for _, w := range []struct {
		role Role
		name string
	}{
		{RoleLeft, cfg.Left},
		{RoleRight, cfg.Right},
		{RoleBack, cfg.Back},
	} {
		m, err := motor.FromDependencies(deps, w.name)
		if err != nil {
			return nil, errors.Wrapf(err, "no %s motor named (%s)", w.role, w.name)
		}
		motors[w.role] = m
	}
	return newDrive(name, motors, cfg.Geometry(), cfg.deadband(), cfg.maxOutput(), logger, opts...)
}

// NewDriveFromMotors returns a new Killough base with the default angles,
// deadband and max output. If a motor needs to be inverted, do so before passing
// it in.
func NewDriveFromMotors(name string, left, right, back motor.Motor, logger golog.Logger, opts ...Option) (*Drive, error) {
	motors := map[Role]motor.Motor{RoleLeft: left, RoleRight: right, RoleBack: back}
	return newDrive(name, motors, DefaultGeometry(), DefaultDeadband, DefaultMaxOutput, logger, opts...)
}

func newDrive(
	name string,
	motors map[Role]motor.Motor,
	geometry Geometry,
	deadband, maxOutput float64,
	logger golog.Logger,
	opts ...Option,
) (*Drive, error) {
	d := &Drive{
		name:      Named(name),
		logger:    logger,
		geometry:  geometry,
		deadband:  deadband,
		maxOutput: maxOutput,
		feed:      noopFeed,
		motors:    motors,
		usage:     telemetry.NewOnce(nil),
	}
	for _, role := range []Role{RoleLeft, RoleRight, RoleBack} {
		m, ok := motors[role]
		if !ok || m == nil {
			return nil, errors.Errorf("%s motor cannot be nil", role)
		}
		d.allMotors = append(d.allMotors, m)
	}
	if err := d.checkGeometry(geometry); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.feed == nil {
		d.feed = noopFeed
	}
	return d, nil
}

// Name returns the name of the base.
func (d *Drive) Name() resource.Name {
	return d.name
}

// Description returns a short human readable description of the drive.
func (d *Drive) Description() string {
	return "KilloughDrive"
}

// DriveCartesian drives the base with robot-relative speeds, or field-relative
// speeds when gyroAngle carries the current heading in degrees.
//
// Angles are measured clockwise from the positive X axis. The robot's speed is
// independent from its angle or rotation rate.
func (d *Drive) DriveCartesian(ctx context.Context, ySpeed, xSpeed, zRotation, gyroAngle float64) error {
	d.usage.ReportUsage(telemetry.UsageKilloughCartesian, len(d.allMotors))

	geometry, deadband, maxOutput, feed := d.snapshot()
	d.logger.Debugf(
		"received a DriveCartesian with ySpeed: %.2f, xSpeed: %.2f, zRotation: %.2f, gyroAngle: %.2f",
		ySpeed, xSpeed, zRotation, gyroAngle)

	ySpeed = utils.ApplyDeadband(ySpeed, deadband)
	xSpeed = utils.ApplyDeadband(xSpeed, deadband)

	speeds := Solve(geometry, ySpeed, xSpeed, zRotation, gyroAngle)

	var err error
	for i, w := range geometry.wheels {
		err = multierr.Combine(err, d.motors[w.Role].SetPower(ctx, speeds[i]*maxOutput, nil))
	}
	if err != nil {
		// Stop feeds the safety collaborator.
		return multierr.Combine(err, d.Stop(ctx, nil))
	}
	feed.Feed()
	return nil
}

// DrivePolar drives the base at magnitude toward angleDeg, measured in degrees
// from straight ahead, while rotating at zRotation. Heading is not compensated.
func (d *Drive) DrivePolar(ctx context.Context, magnitude, angleDeg, zRotation float64) error {
	d.usage.ReportUsage(telemetry.UsageKilloughPolar, len(d.allMotors))

	ySpeed, xSpeed := PolarToCartesian(magnitude, angleDeg)
	return d.DriveCartesian(ctx, ySpeed, xSpeed, zRotation, 0.0)
}

// Drive runs cmd through DriveCartesian.
func (d *Drive) Drive(ctx context.Context, cmd Command) error {
	return d.DriveCartesian(ctx, cmd.YSpeed, cmd.XSpeed, cmd.ZRotation, cmd.GyroAngle)
}

// SetPower commands the base with linear and angular powers in [-1, 1]. linear.Y
// is forward, linear.X is right and angular.Z is counter-clockwise.
func (d *Drive) SetPower(ctx context.Context, linear, angular r3.Vector, extra map[string]interface{}) error {
	d.logger.Debugf(
		"received a SetPower with linear X: %.2f, Y: %.2f Z: %.2f, angular X: %.2f, Y: %.2f, Z: %.2f",
		linear.X, linear.Y, linear.Z, angular.X, angular.Y, angular.Z)
	return d.DriveCartesian(ctx, linear.X, linear.Y, -angular.Z, 0.0)
}

// SolveCartesian runs Cartesian inverse kinematics against the drive's current
// geometry without touching the motors.
func (d *Drive) SolveCartesian(ySpeed, xSpeed, zRotation, gyroAngle float64) WheelSpeeds {
	geometry, _, _, _ := d.snapshot()
	return SolveCartesian(geometry, ySpeed, xSpeed, zRotation, gyroAngle)
}

// SolvePolar runs polar inverse kinematics against the drive's current geometry
// without touching the motors.
func (d *Drive) SolvePolar(magnitude, angleDeg, zRotation float64) WheelSpeeds {
	geometry, _, _, _ := d.snapshot()
	return SolvePolar(geometry, magnitude, angleDeg, zRotation)
}

// Stop stops every motor and feeds the safety collaborator. Every motor is told to
// stop even if an earlier one fails; the combined error is returned.
func (d *Drive) Stop(ctx context.Context, extra map[string]interface{}) error {
	var err error
	for _, m := range d.allMotors {
		err = multierr.Combine(err, m.Stop(ctx, extra))
	}
	_, _, _, feed := d.snapshot()
	feed.Feed()
	if err != nil {
		d.logger.Errorw("failed to stop all motors", "error", err)
	}
	return err
}

// IsMoving returns whether any motor is powered.
func (d *Drive) IsMoving(ctx context.Context) (bool, error) {
	for _, m := range d.allMotors {
		isMoving, err := m.IsMoving(ctx)
		if err != nil {
			return false, err
		}
		if isMoving {
			return true, nil
		}
	}
	return false, nil
}

// Status reads back the power each motor was last given, in left, right, back order.
func (d *Drive) Status(ctx context.Context) ([]motor.Powered, error) {
	statuses := make([]motor.Powered, 0, len(d.allMotors))
	for _, m := range d.allMotors {
		p, err := motor.ReadPowered(ctx, m)
		if err != nil {
			return nil, errors.Wrapf(err, "reading power of motor (%s)", m.Name().Name)
		}
		statuses = append(statuses, p)
	}
	return statuses, nil
}

// Close stops the base.
func (d *Drive) Close(ctx context.Context) error {
	return d.Stop(ctx, nil)
}

// SetSafetyFeed replaces the collaborator fed after every command.
func (d *Drive) SetSafetyFeed(feed SafetyFeed) {
	if feed == nil {
		feed = noopFeed
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.feed = feed
}

// SetDeadband sets the magnitude below which translation inputs are treated as zero.
func (d *Drive) SetDeadband(deadband float64) error {
	if deadband < 0 || deadband > 1 {
		return errors.Errorf("deadband must be within [0, 1], got %v", deadband)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deadband = deadband
	d.logger.Infof("deadband set to %v", deadband)
	return nil
}

// Deadband returns the current deadband.
func (d *Drive) Deadband() float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.deadband
}

// SetMaxOutput sets the factor every wheel speed is multiplied by before it is
// sent to a motor.
func (d *Drive) SetMaxOutput(maxOutput float64) error {
	if maxOutput <= 0 || maxOutput > 1 {
		return errors.Errorf("max output must be within (0, 1], got %v", maxOutput)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.maxOutput = maxOutput
	d.logger.Infof("max output set to %v", maxOutput)
	return nil
}

// MaxOutput returns the current max output.
func (d *Drive) MaxOutput() float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.maxOutput
}

// SetGeometry replaces the wheel layout. Every wheel must have a role the drive
// has a motor for, and every motor must have a wheel, so no motor is left
// holding its last power.
func (d *Drive) SetGeometry(geometry Geometry) error {
	if err := d.checkGeometry(geometry); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.geometry = geometry
	d.logger.Infof("geometry set to %v", geometry.Wheels())
	return nil
}

// Geometry returns the current wheel layout.
func (d *Drive) Geometry() Geometry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.geometry
}

func (d *Drive) checkGeometry(geometry Geometry) error {
	if geometry.Len() == 0 {
		return errors.New("geometry has no wheels")
	}
	for _, w := range geometry.wheels {
		if _, ok := d.motors[w.Role]; !ok {
			return errors.Errorf("no motor for wheel role %q", w.Role)
		}
	}
	for _, role := range []Role{RoleLeft, RoleRight, RoleBack} {
		if _, ok := geometry.Wheel(role); !ok {
			return errors.Errorf("geometry has no wheel for the %s motor", role)
		}
	}
	return nil
}

func (d *Drive) snapshot() (Geometry, float64, float64, SafetyFeed) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.geometry, d.deadband, d.maxOutput, d.feed
}
