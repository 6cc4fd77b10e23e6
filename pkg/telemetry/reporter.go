package telemetry

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/opmode/pkg/fault"
	"github.com/robotalks/opmode/pkg/framework"
	"github.com/robotalks/opmode/pkg/opmode"
	"github.com/robotalks/opmode/pkg/periph"
)

// Reporter defaults.
const (
	DefaultReportPeriod    = 1000 * time.Millisecond
	DefaultTransmitTimeout = 1000 * time.Millisecond
)

// Reporter transmits a telemetry line per work step.
type Reporter struct {
	Cell    *opmode.Cell
	UART    periph.UART
	Timeout time.Duration

	sent atomic.Uint64
}

// NewReporter creates a Reporter with DefaultTransmitTimeout.
func NewReporter(cell *opmode.Cell, uart periph.UART) *Reporter {
	return &Reporter{Cell: cell, UART: uart, Timeout: DefaultTransmitTimeout}
}

// Work is the task body. A transmit failure is fatal.
func (r *Reporter) Work(context.Context) error {
	line := FormatLine(r.Cell.Snapshot())
	if err := r.UART.Transmit([]byte(line), r.Timeout); err != nil {
		return fault.Peripheral("telemetry transmit", err)
	}
	r.sent.Add(1)
	glog.V(4).Infof("telemetry sent: %q", line)
	return nil
}

// Sent counts the transmitted lines.
func (r *Reporter) Sent() uint64 {
	return r.sent.Load()
}

// Task creates the periodic task running the reporter.
func (r *Reporter) Task(name string, priority framework.Priority, period time.Duration) *framework.Task {
	t := framework.NewTask(name, r.Work)
	t.Priority = priority
	t.Period = period
	t.ExitClear = framework.AllBits
	return t
}
