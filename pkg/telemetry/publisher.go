package telemetry

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/opmode/pkg/framework"
	"github.com/robotalks/opmode/pkg/opmode"
)

// Mirror receives samples outside of the UART link.
type Mirror interface {
	Publish(ctx context.Context, s Sample) error
}

// MirrorFunc is the func form of Mirror.
type MirrorFunc func(context.Context, Sample) error

// Publish implements Mirror.
func (f MirrorFunc) Publish(ctx context.Context, s Sample) error {
	return f(ctx, s)
}

// Publisher fans samples out to mirrors. Mirror failures are logged,
// never escalated.
type Publisher struct {
	Cell    *opmode.Cell
	Device  string
	Mirrors []Mirror

	now func() time.Time
}

// NewPublisher creates a Publisher.
func NewPublisher(cell *opmode.Cell, device string, mirrors ...Mirror) *Publisher {
	return &Publisher{Cell: cell, Device: device, Mirrors: mirrors, now: time.Now}
}

// Sample takes a snapshot of the cell.
func (p *Publisher) Sample() Sample {
	mode, pos := p.Cell.Snapshot()
	now := time.Now
	if p.now != nil {
		now = p.now
	}
	return Sample{Device: p.Device, Mode: mode, Position: pos, At: now()}
}

// Publish sends a sample to all mirrors.
func (p *Publisher) Publish(ctx context.Context) error {
	s := p.Sample()
	var errs framework.AggregatedError
	for _, m := range p.Mirrors {
		errs.Add(m.Publish(ctx, s))
	}
	return errs.Aggregate()
}

// Work is the task body.
func (p *Publisher) Work(ctx context.Context) error {
	if err := p.Publish(ctx); err != nil {
		glog.Warningf("publish telemetry: %v", err)
	}
	return nil
}

// Task creates the periodic task running the publisher.
func (p *Publisher) Task(name string, priority framework.Priority, period time.Duration) *framework.Task {
	t := framework.NewTask(name, p.Work)
	t.Priority = priority
	t.Period = period
	t.ExitClear = framework.AllBits
	return t
}
