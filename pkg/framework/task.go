package framework

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
)

// Task is a periodic task: it runs a work step, then waits on its own
// notification channel for at most Period, and repeats. The wait is
// the only place the task suspends.
type Task struct {
	// Priority is fixed once the task is spawned.
	Priority Priority
	// Period bounds the wait between work steps.
	Period time.Duration
	// EntryClear and ExitClear are passed to Channel.Wait.
	EntryClear uint32
	ExitClear  uint32
	// Work is the task body.
	Work WorkFunc

	name   string
	ch     *Channel
	kernel *Kernel

	runs     atomic.Uint64
	wakes    atomic.Uint64
	timeouts atomic.Uint64
}

// TaskStats are counters of a task.
type TaskStats struct {
	Runs     uint64
	Wakes    uint64
	Timeouts uint64
}

// String implements fmt.Stringer.
func (s TaskStats) String() string {
	return fmt.Sprintf("runs=%d wakes=%d timeouts=%d", s.Runs, s.Wakes, s.Timeouts)
}

// NewTask creates a task with DefaultPeriod.
func NewTask(name string, work WorkFunc) *Task {
	return &Task{
		Period: DefaultPeriod,
		Work:   work,
		name:   name,
		ch:     NewChannel(),
	}
}

// Name implements Named.
func (t *Task) Name() string {
	return t.name
}

// Channel returns the notification channel owned by the task.
func (t *Task) Channel() *Channel {
	return t.ch
}

// Notify implements Notifier.
func (t *Task) Notify(mask uint32) {
	t.ch.Notify(mask)
}

// Stats returns a snapshot of the counters.
func (t *Task) Stats() TaskStats {
	return TaskStats{
		Runs:     t.runs.Load(),
		Wakes:    t.wakes.Load(),
		Timeouts: t.timeouts.Load(),
	}
}

// Run implements Runnable.
func (t *Task) Run(ctx context.Context) error {
	for {
		if err := t.step(ctx); err != nil {
			return err
		}
		out, err := t.ch.Wait(ctx, t.EntryClear, t.ExitClear, t.Period)
		if err != nil {
			return t.stopped(err)
		}
		if out.Notified {
			t.wakes.Add(1)
			glog.V(5).Infof("Task[%s] woken value=0x%x", t.name, out.Value)
		} else {
			t.timeouts.Add(1)
		}
	}
}

func (t *Task) step(ctx context.Context) error {
	if t.kernel != nil && t.kernel.Halted() {
		return ErrHalted
	}
	var cpu *CPU
	if t.kernel != nil {
		cpu = t.kernel.CPU
	}
	if cpu != nil {
		if !cpu.Acquire(ctx, t.Priority) {
			if err := ctx.Err(); err != nil {
				return t.stopped(err)
			}
			return ErrHalted
		}
		defer cpu.Release()
	}
	t.runs.Add(1)
	err := t.Work(ctx)
	if err == nil {
		return nil
	}
	err = fmt.Errorf("task %s: %w", t.name, err)
	if t.kernel != nil && t.kernel.Escalator != nil {
		t.kernel.Escalator.Escalate(err)
	}
	return err
}

func (t *Task) stopped(err error) error {
	if t.kernel != nil && t.kernel.Halted() {
		return ErrHalted
	}
	return err
}
