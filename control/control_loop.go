// Package control runs a drive at a fixed rate from a source of commands.
package control

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"go.viam.com/killough/components/base/killough"
	"go.viam.com/killough/utils"
)

// A Driver is what the loop commands every period.
type Driver interface {
	Drive(ctx context.Context, cmd killough.Command) error
	Stop(ctx context.Context, extra map[string]interface{}) error
}

// A CommandSource supplies the command to run on each period.
type CommandSource interface {
	Command(ctx context.Context) (killough.Command, error)
}

// CommandSourceFunc adapts a function to a CommandSource.
type CommandSourceFunc func(ctx context.Context) (killough.Command, error)

// Command calls f.
func (f CommandSourceFunc) Command(ctx context.Context) (killough.Command, error) {
	return f(ctx)
}

// LatestCommand holds the most recent command. It is safe for concurrent use; the zero
// value holds the zero command.
type LatestCommand struct {
	mu  sync.RWMutex
	cmd killough.Command
}

// Set replaces the held command.
func (lc *LatestCommand) Set(cmd killough.Command) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.cmd = cmd
}

// Command returns the held command.
func (lc *LatestCommand) Command(ctx context.Context) (killough.Command, error) {
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return lc.cmd, nil
}

// Loop holds the loop config.
type Loop struct {
	logger    golog.Logger
	drive     Driver
	source    CommandSource
	frequency float64
	dt        time.Duration
	clk       clock.Clock
	ticks     atomic.Int64

	mu      sync.Mutex
	workers *utils.StoppableWorkers
	stopped bool
}

// NewLoop constructs a control loop running drive at frequencyHz. A nil clock selects
// the wall clock.
func NewLoop(logger golog.Logger, drive Driver, source CommandSource, frequencyHz float64, clk clock.Clock) (*Loop, error) {
	if frequencyHz <= 0.0 || frequencyHz > 200 {
		return nil, errors.New("loop frequency shouldn't be 0 or above 200Hz")
	}
	if drive == nil {
		return nil, errors.New("loop needs a drive")
	}
	if source == nil {
		return nil, errors.New("loop needs a command source")
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Loop{
		logger:    logger,
		drive:     drive,
		source:    source,
		frequency: frequencyHz,
		dt:        time.Duration(float64(time.Second) * (1.0 / frequencyHz)),
		clk:       clk,
	}, nil
}

// Frequency returns the loop's frequency.
func (l *Loop) Frequency() float64 {
	return l.frequency
}

// Period returns the time between two runs of the drive.
func (l *Loop) Period() time.Duration {
	return l.dt
}

// Ticks returns how many periods the loop has run.
func (l *Loop) Ticks() int64 {
	return l.ticks.Load()
}

// Start starts the loop. It runs until ctx is canceled or Stop is called. A loop
// can only be started once.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return errors.New("cannot start a stopped loop")
	}
	if l.workers != nil {
		return errors.New("loop already started")
	}
	l.logger.Infof("running loop at %1.4fHz (%v)", l.frequency, l.dt)

	// Created here so that no tick is missed between Start and the worker running.
	ticker := l.clk.Ticker(l.dt)
	l.workers = utils.NewStoppableWorkers(ctx, func(ctx context.Context) {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.step(ctx)
			}
		}
	})
	return nil
}

func (l *Loop) step(ctx context.Context) {
	defer l.ticks.Inc()

	cmd, err := l.source.Command(ctx)
	if err != nil {
		l.logger.Warnw("command source failed, stopping drive", "error", err)
		if err := l.drive.Stop(ctx, nil); err != nil {
			l.logger.Errorw("failed to stop drive", "error", err)
		}
		return
	}
	if err := l.drive.Drive(ctx, cmd); err != nil {
		l.logger.Errorw("drive failed", "error", err)
	}
}

// Stop stops the loop, waits for it to exit, then stops the drive. Calling Stop
// more than once is a no-op.
func (l *Loop) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return nil
	}
	l.stopped = true
	l.logger.Debug("closing loop")
	if l.workers != nil {
		l.workers.Stop()
	}
	return l.drive.Stop(context.Background(), nil)
}
