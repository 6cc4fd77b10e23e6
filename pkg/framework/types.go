package framework

import (
	"context"
	"time"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// RunFunc is the func form of Runnable.
type RunFunc func(context.Context) error

// Run implements Runnable.
func (f RunFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// WorkFunc is a single step of a periodic task.
type WorkFunc func(context.Context) error

// Notifier posts notification bits to a task.
type Notifier interface {
	Notify(mask uint32)
}

// Escalator receives fatal errors. Implementations are not
// expected to return.
type Escalator interface {
	Escalate(error)
}

// EscalateFunc is the func form of Escalator.
type EscalateFunc func(error)

// Escalate implements Escalator.
func (f EscalateFunc) Escalate(err error) {
	f(err)
}

// Priority is a fixed task priority. Higher values run first.
type Priority int

// DefaultPeriod is used when a task is spawned without a period.
const DefaultPeriod = 100 * time.Millisecond

// AllBits is the mask clearing every notification bit.
const AllBits uint32 = 0xffffffff
