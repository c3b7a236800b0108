// Package cli implements the killough command line tool.
package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/edaniels/golog"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"go.viam.com/killough/components/base/killough"
	"go.viam.com/killough/config"
	"go.viam.com/killough/control"
	"go.viam.com/killough/robot"
	"go.viam.com/killough/telemetry"
)

const (
	// Flags.
	flagDebug      = "debug"
	flagQuiet      = "quiet"
	flagY          = "y"
	flagX          = "x"
	flagZ          = "z"
	flagGyro       = "gyro"
	flagLeftAngle  = "left-angle"
	flagRightAngle = "right-angle"
	flagBackAngle  = "back-angle"
	flagMagnitude  = "magnitude"
	flagAngle      = "angle"
	flagConfig     = "config"
	flagDuration   = "duration"
)

func geometryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Float64Flag{
			Name:  flagLeftAngle,
			Value: killough.DefaultLeftMotorAngleDeg,
			Usage: "left wheel angle in degrees clockwise from ahead",
		},
		&cli.Float64Flag{
			Name:  flagRightAngle,
			Value: killough.DefaultRightMotorAngleDeg,
			Usage: "right wheel angle in degrees clockwise from ahead",
		},
		&cli.Float64Flag{
			Name:  flagBackAngle,
			Value: killough.DefaultBackMotorAngleDeg,
			Usage: "back wheel angle in degrees clockwise from ahead",
		},
	}
}

func rotationFlag() cli.Flag {
	return &cli.Float64Flag{
		Name:  flagZ,
		Usage: "rotation rate, clockwise is positive; not clamped",
	}
}

type app struct {
	logger golog.Logger
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	a := &app{}
	return &cli.App{
		Name:            "killough",
		Usage:           "solve and simulate three omni wheel drives",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.BoolFlag{
				Name:    flagQuiet,
				Aliases: []string{"q"},
				Usage:   "disable logging",
			},
		},
		Before: func(c *cli.Context) error {
			switch {
			case c.Bool(flagQuiet):
				a.logger = zap.NewNop().Sugar()
			case c.Bool(flagDebug):
				a.logger = golog.NewDebugLogger("killough")
			default:
				a.logger = golog.NewDevelopmentLogger("killough")
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "solve",
				Usage: "print the wheel speeds for a Cartesian command",
				Flags: append([]cli.Flag{
					&cli.Float64Flag{Name: flagY, Usage: "rightward speed in [-1, 1]"},
					&cli.Float64Flag{Name: flagX, Usage: "forward speed in [-1, 1]"},
					rotationFlag(),
					&cli.Float64Flag{Name: flagGyro, Usage: "current heading in degrees for field-relative driving"},
				}, geometryFlags()...),
				Action: a.SolveAction,
			},
			{
				Name:  "polar",
				Usage: "print the wheel speeds for a polar command",
				Flags: append([]cli.Flag{
					&cli.Float64Flag{Name: flagMagnitude, Usage: "speed in [-1, 1]"},
					&cli.Float64Flag{Name: flagAngle, Usage: "direction in degrees clockwise from ahead"},
					rotationFlag(),
				}, geometryFlags()...),
				Action: a.PolarAction,
			},
			{
				Name:      "simulate",
				Usage:     "build a robot from a config and drive it with a constant command",
				UsageText: "killough simulate --config FILE [--y Y] [--x X] [--z Z] [--gyro DEG] [--duration D]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagConfig,
						Aliases:  []string{"c"},
						Required: true,
						Usage:    "load configuration from `FILE`",
					},
					&cli.Float64Flag{Name: flagY, Usage: "rightward speed in [-1, 1]"},
					&cli.Float64Flag{Name: flagX, Usage: "forward speed in [-1, 1]"},
					rotationFlag(),
					&cli.Float64Flag{Name: flagGyro, Usage: "current heading in degrees for field-relative driving"},
					&cli.DurationFlag{Name: flagDuration, Value: time.Second, Usage: "how long to drive"},
				},
				Action: a.SimulateAction,
			},
		},
	}
}

func geometryFromFlags(c *cli.Context) killough.Geometry {
	return killough.NewGeometry(c.Float64(flagLeftAngle), c.Float64(flagRightAngle), c.Float64(flagBackAngle))
}

func printWheelSpeeds(w io.Writer, ws killough.WheelSpeeds) {
	fmt.Fprintln(w, telemetry.WheelTable(
		[]string{string(killough.RoleLeft), string(killough.RoleRight), string(killough.RoleBack)},
		[]float64{ws.Left, ws.Right, ws.Back},
	))
}

// SolveAction prints the solution of a Cartesian command.
func (a *app) SolveAction(c *cli.Context) error {
	ws := killough.SolveCartesian(geometryFromFlags(c),
		c.Float64(flagY), c.Float64(flagX), c.Float64(flagZ), c.Float64(flagGyro))
	printWheelSpeeds(c.App.Writer, ws)
	return nil
}

// PolarAction prints the solution of a polar command.
func (a *app) PolarAction(c *cli.Context) error {
	ws := killough.SolvePolar(geometryFromFlags(c), c.Float64(flagMagnitude), c.Float64(flagAngle), c.Float64(flagZ))
	printWheelSpeeds(c.App.Writer, ws)
	return nil
}

// SimulateAction runs the control loop against a robot of fake motors and prints
// where the motors ended up.
func (a *app) SimulateAction(c *cli.Context) (err error) {
	ctx := c.Context
	cfg, err := config.Read(ctx, c.String(flagConfig), a.logger)
	if err != nil {
		return err
	}
	r, err := robot.New(ctx, cfg, a.logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := r.Close(ctx); err == nil {
			err = closeErr
		}
	}()

	source := &control.LatestCommand{}
	source.Set(killough.Command{
		YSpeed:    c.Float64(flagY),
		XSpeed:    c.Float64(flagX),
		ZRotation: c.Float64(flagZ),
		GyroAngle: c.Float64(flagGyro),
	})
	loop, err := control.NewLoop(a.logger.Named("loop"), r.Base(), source, cfg.Loop.Frequency(), nil)
	if err != nil {
		return err
	}
	if err := loop.Start(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case <-time.After(c.Duration(flagDuration)):
	}

	statuses, statusErr := r.Base().Status(ctx)
	stopErr := loop.Stop()
	if statusErr != nil {
		return statusErr
	}
	fmt.Fprintln(c.App.Writer, telemetry.StatusTable(statuses))
	fmt.Fprintf(c.App.Writer, "ran %d cycles at %.1fHz\n", loop.Ticks(), loop.Frequency())
	return stopErr
}
