// Package telemetry reports drive usage and renders the state of a drive's motors.
package telemetry

import (
	"sync"

	"github.com/edaniels/golog"
)

// UsageKind identifies how a drive was commanded.
type UsageKind string

// Usage kinds reported by drives.
const (
	UsageKilloughPolar     UsageKind = "KilloughPolar"
	UsageKilloughCartesian UsageKind = "KilloughCartesian"
)

// A UsageReporter records that a drive was used.
type UsageReporter interface {
	ReportUsage(kind UsageKind, numMotors int)
}

// UsageReporterFunc adapts a function to a UsageReporter.
type UsageReporterFunc func(kind UsageKind, numMotors int)

// ReportUsage calls f.
func (f UsageReporterFunc) ReportUsage(kind UsageKind, numMotors int) {
	f(kind, numMotors)
}

// NoopReporter drops every report.
var NoopReporter UsageReporter = UsageReporterFunc(func(UsageKind, int) {})

// Once forwards only the first report it receives.
type Once struct {
	once     sync.Once
	reporter UsageReporter
}

// NewOnce wraps reporter so that it is called at most once. A nil reporter is
// treated as NoopReporter.
func NewOnce(reporter UsageReporter) *Once {
	if reporter == nil {
		reporter = NoopReporter
	}
	return &Once{reporter: reporter}
}

// ReportUsage forwards the first call and ignores the rest.
func (o *Once) ReportUsage(kind UsageKind, numMotors int) {
	o.once.Do(func() {
		o.reporter.ReportUsage(kind, numMotors)
	})
}

// LogReporter writes usage reports to a logger.
type LogReporter struct {
	Logger golog.Logger
}

// ReportUsage logs the report at info level.
func (r LogReporter) ReportUsage(kind UsageKind, numMotors int) {
	r.Logger.Infow("drive in use", "kind", string(kind), "motors", numMotors)
}
