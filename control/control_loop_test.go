package control

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/killough/components/base/killough"
	"go.viam.com/killough/components/motor"
	"go.viam.com/killough/components/motor/fake"
)

const waitFor = 5 * time.Second

type recordingDriver struct {
	inner *killough.Drive

	mu      sync.Mutex
	cmds    []killough.Command
	stops   int
	driven  chan killough.Command
	stopped chan struct{}
}

func newRecordingDriver(inner *killough.Drive) *recordingDriver {
	return &recordingDriver{
		inner:   inner,
		driven:  make(chan killough.Command, 100),
		stopped: make(chan struct{}, 100),
	}
}

func (d *recordingDriver) Drive(ctx context.Context, cmd killough.Command) error {
	var err error
	if d.inner != nil {
		err = d.inner.Drive(ctx, cmd)
	}
	d.mu.Lock()
	d.cmds = append(d.cmds, cmd)
	d.mu.Unlock()
	d.driven <- cmd
	return err
}

func (d *recordingDriver) Stop(ctx context.Context, extra map[string]interface{}) error {
	var err error
	if d.inner != nil {
		err = d.inner.Stop(ctx, extra)
	}
	d.mu.Lock()
	d.stops++
	d.mu.Unlock()
	d.stopped <- struct{}{}
	return err
}

func (d *recordingDriver) Stops() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stops
}

func (d *recordingDriver) Commands() []killough.Command {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]killough.Command(nil), d.cmds...)
}

func waitDriven(t *testing.T, d *recordingDriver) killough.Command {
	t.Helper()
	select {
	case cmd := <-d.driven:
		return cmd
	case <-time.After(waitFor):
		t.Fatal("loop never drove")
	}
	return killough.Command{}
}

func waitStopped(t *testing.T, d *recordingDriver) {
	t.Helper()
	select {
	case <-d.stopped:
	case <-time.After(waitFor):
		t.Fatal("loop never stopped the drive")
	}
}

func TestNewLoop(t *testing.T) {
	logger := golog.NewTestLogger(t)
	d := newRecordingDriver(nil)
	source := &LatestCommand{}

	for _, freq := range []float64{0, -1, 200.5} {
		_, err := NewLoop(logger, d, source, freq, nil)
		test.That(t, err, test.ShouldBeError, "loop frequency shouldn't be 0 or above 200Hz")
	}
	_, err := NewLoop(logger, nil, source, 50, nil)
	test.That(t, err, test.ShouldBeError, "loop needs a drive")
	_, err = NewLoop(logger, d, nil, 50, nil)
	test.That(t, err, test.ShouldBeError, "loop needs a command source")

	l, err := NewLoop(logger, d, source, 200, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, l.Frequency(), test.ShouldEqual, 200.0)
	test.That(t, l.Period(), test.ShouldEqual, 5*time.Millisecond)
}

func TestLoopTicks(t *testing.T) {
	logger := golog.NewTestLogger(t)
	clk := clock.NewMock()
	d := newRecordingDriver(nil)
	source := &LatestCommand{}
	first := killough.Command{XSpeed: 0.5}
	source.Set(first)

	l, err := NewLoop(logger, d, source, 50, clk)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, l.Period(), test.ShouldEqual, 20*time.Millisecond)
	test.That(t, l.Start(context.Background()), test.ShouldBeNil)
	test.That(t, l.Start(context.Background()), test.ShouldBeError, "loop already started")

	for i := 0; i < 3; i++ {
		clk.Add(l.Period())
		test.That(t, waitDriven(t, d), test.ShouldResemble, first)
	}

	second := killough.Command{YSpeed: -0.2, ZRotation: 0.4, GyroAngle: 90}
	source.Set(second)
	clk.Add(l.Period())
	test.That(t, waitDriven(t, d), test.ShouldResemble, second)

	test.That(t, l.Stop(), test.ShouldBeNil)
	test.That(t, l.Ticks(), test.ShouldEqual, 4)
	test.That(t, d.Stops(), test.ShouldEqual, 1)
	test.That(t, d.Commands(), test.ShouldHaveLength, 4)

	// Idempotent.
	test.That(t, l.Stop(), test.ShouldBeNil)
	test.That(t, d.Stops(), test.ShouldEqual, 1)

	// No more ticks after Stop.
	clk.Add(10 * l.Period())
	test.That(t, l.Ticks(), test.ShouldEqual, 4)
	test.That(t, l.Start(context.Background()), test.ShouldBeError, "cannot start a stopped loop")
}

func TestLoopSourceError(t *testing.T) {
	logger, logs := golog.NewObservedTestLogger(t)
	clk := clock.NewMock()
	d := newRecordingDriver(nil)
	source := CommandSourceFunc(func(ctx context.Context) (killough.Command, error) {
		return killough.Command{}, errors.New("joystick unplugged")
	})

	l, err := NewLoop(logger, d, source, 10, clk)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, l.Start(context.Background()), test.ShouldBeNil)

	clk.Add(l.Period())
	waitStopped(t, d)
	test.That(t, d.Commands(), test.ShouldBeEmpty)

	test.That(t, l.Stop(), test.ShouldBeNil)
	test.That(t, logs.FilterMessage("command source failed, stopping drive").Len(), test.ShouldEqual, 1)
}

func TestLoopContextCanceled(t *testing.T) {
	logger := golog.NewTestLogger(t)
	clk := clock.NewMock()
	d := newRecordingDriver(nil)

	l, err := NewLoop(logger, d, &LatestCommand{}, 10, clk)
	test.That(t, err, test.ShouldBeNil)

	ctx, cancel := context.WithCancel(context.Background())
	test.That(t, l.Start(ctx), test.ShouldBeNil)
	clk.Add(l.Period())
	waitDriven(t, d)
	cancel()

	test.That(t, l.Stop(), test.ShouldBeNil)
	test.That(t, d.Stops(), test.ShouldEqual, 1)
	clk.Add(10 * l.Period())
	test.That(t, l.Ticks(), test.ShouldEqual, 1)
}

func TestLoopStopWithoutStart(t *testing.T) {
	d := newRecordingDriver(nil)
	l, err := NewLoop(golog.NewTestLogger(t), d, &LatestCommand{}, 10, clock.NewMock())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, l.Stop(), test.ShouldBeNil)
	test.That(t, d.Stops(), test.ShouldEqual, 1)
}

func TestLoopDrivesKilloughBase(t *testing.T) {
	logger := golog.NewTestLogger(t)
	clk := clock.NewMock()
	left := fake.NewMotor(motor.Named("left"), nil, logger)
	right := fake.NewMotor(motor.Named("right"), nil, logger)
	back := fake.NewMotor(motor.Named("back"), nil, logger)
	base, err := killough.NewDriveFromMotors("base", left, right, back, logger)
	test.That(t, err, test.ShouldBeNil)

	d := newRecordingDriver(base)
	source := &LatestCommand{}
	source.Set(killough.Command{ZRotation: 0.5})

	l, err := NewLoop(logger, d, source, 50, clk)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, l.Start(context.Background()), test.ShouldBeNil)

	clk.Add(l.Period())
	waitDriven(t, d)
	test.That(t, left.PowerPct(), test.ShouldAlmostEqual, 0.5)
	test.That(t, right.PowerPct(), test.ShouldAlmostEqual, 0.5)
	test.That(t, back.PowerPct(), test.ShouldAlmostEqual, 0.5)

	test.That(t, l.Stop(), test.ShouldBeNil)
	for _, m := range []*fake.Motor{left, right, back} {
		test.That(t, m.PowerPct(), test.ShouldEqual, 0.0)
	}
}
