// Package motorsafety stops actuators that stop receiving commands.
package motorsafety

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
)

// DefaultExpiration is how long a watchdog waits for a feed before it stops
// whatever it is guarding.
const DefaultExpiration = 100 * time.Millisecond

// A StopFunc halts the guarded actuator.
type StopFunc func(ctx context.Context) error

// A Watchdog calls its StopFunc when it has not been fed within its expiration.
// Each feed re-arms it. A watchdog starts disarmed; the first feed arms it.
type Watchdog struct {
	clk        clock.Clock
	expiration time.Duration
	stop       StopFunc
	logger     golog.Logger

	mu          sync.Mutex
	timer       *clock.Timer
	generation  uint64
	enabled     bool
	expired     bool
	stopping    bool
	closed      bool
	expirations int
}

// NewWatchdog returns an enabled watchdog. A zero expiration selects
// DefaultExpiration and a nil clock selects the wall clock.
func NewWatchdog(clk clock.Clock, expiration time.Duration, stop StopFunc, logger golog.Logger) *Watchdog {
	if clk == nil {
		clk = clock.New()
	}
	if expiration <= 0 {
		expiration = DefaultExpiration
	}
	return &Watchdog{
		clk:        clk,
		expiration: expiration,
		stop:       stop,
		logger:     logger,
		enabled:    true,
	}
}

// Expiration returns how long the watchdog waits between feeds.
func (w *Watchdog) Expiration() time.Duration {
	return w.expiration
}

// Feed re-arms the watchdog. Feeds to a disabled or closed watchdog are ignored, as
// are feeds made while the watchdog is stopping the actuator.
func (w *Watchdog) Feed() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || !w.enabled || w.stopping {
		return
	}
	w.expired = false
	w.armLocked()
}

func (w *Watchdog) armLocked() {
	if w.timer != nil {
		w.timer.Stop()
	}
	w.generation++
	generation := w.generation
	w.timer = w.clk.AfterFunc(w.expiration, func() {
		w.expire(generation)
	})
}

func (w *Watchdog) disarmLocked() {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	// Invalidates a timer that already fired but has not run yet.
	w.generation++
}

func (w *Watchdog) expire(generation uint64) {
	w.mu.Lock()
	if w.closed || !w.enabled || generation != w.generation {
		w.mu.Unlock()
		return
	}
	w.expired = true
	w.expirations++
	w.timer = nil
	w.stopping = true
	w.mu.Unlock()

	w.logger.Warnw("watchdog expired, stopping", "expiration", w.expiration)
	if w.stop != nil {
		if err := w.stop(context.Background()); err != nil {
			w.logger.Errorw("watchdog failed to stop", "error", err)
		}
	}

	w.mu.Lock()
	w.stopping = false
	w.mu.Unlock()
}

// SetEnabled turns the watchdog on or off. Turning it off disarms it; turning it
// on leaves it disarmed until the next feed.
func (w *Watchdog) SetEnabled(enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.enabled == enabled {
		return
	}
	w.enabled = enabled
	if !enabled {
		w.disarmLocked()
	}
	w.logger.Infow("watchdog enabled changed", "enabled", enabled)
}

// Enabled reports whether feeds arm the watchdog.
func (w *Watchdog) Enabled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enabled
}

// IsExpired reports whether the watchdog has expired since it was last fed.
func (w *Watchdog) IsExpired() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.expired
}

// Expirations returns how many times the watchdog has expired.
func (w *Watchdog) Expirations() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.expirations
}

// Close disarms the watchdog for good.
func (w *Watchdog) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	w.disarmLocked()
}
