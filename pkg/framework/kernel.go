package framework

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"
)

// DefaultMaxTasks is the default static task capacity of a kernel.
const DefaultMaxTasks = 8

// Kernel owns a fixed set of tasks created before start.
type Kernel struct {
	// MaxTasks is the static task capacity.
	MaxTasks int
	// CPU serializes work steps by priority if set.
	CPU *CPU
	// Escalator receives task work errors.
	Escalator Escalator

	tasks   []*Task
	lock    sync.Mutex
	started atomic.Bool
	halted  atomic.Bool
	haltCh  chan struct{}
	once    sync.Once
}

// NewKernel creates a kernel emulating a single CPU.
func NewKernel() *Kernel {
	return &Kernel{
		MaxTasks: DefaultMaxTasks,
		CPU:      NewCPU(),
		haltCh:   make(chan struct{}),
	}
}

// Spawn registers a task. It fails once the kernel started, when the
// capacity is used up or the task is misconfigured.
func (k *Kernel) Spawn(t *Task) error {
	if t == nil || t.name == "" || t.Work == nil || t.ch == nil {
		return fmt.Errorf("%w: task must be created by NewTask with a name and work", ErrInvalidTask)
	}
	if t.Period <= 0 {
		return fmt.Errorf("%w: task %s period %v", ErrInvalidTask, t.name, t.Period)
	}
	if k.started.Load() {
		return fmt.Errorf("spawn %s: %w", t.name, ErrKernelStarted)
	}
	k.lock.Lock()
	defer k.lock.Unlock()
	if len(k.tasks) >= k.MaxTasks {
		return fmt.Errorf("spawn %s: %w (capacity %d)", t.name, ErrResourceExhausted, k.MaxTasks)
	}
	for _, task := range k.tasks {
		if task.name == t.name {
			return fmt.Errorf("%w: duplicated task name %s", ErrInvalidTask, t.name)
		}
	}
	t.kernel = k
	k.tasks = append(k.tasks, t)
	glog.V(2).Infof("spawned Task[%s] priority=%d period=%v", t.name, t.Priority, t.Period)
	return nil
}

// Tasks returns the spawned tasks in spawn order.
func (k *Kernel) Tasks() []*Task {
	k.lock.Lock()
	defer k.lock.Unlock()
	return append([]*Task(nil), k.tasks...)
}

// Task finds a task by name.
func (k *Kernel) Task(name string) *Task {
	for _, t := range k.Tasks() {
		if t.name == name {
			return t
		}
	}
	return nil
}

// Run implements Runnable. It runs all tasks until ctx is done or the
// kernel halts, in which case ErrHalted is returned.
func (k *Kernel) Run(ctx context.Context) error {
	if !k.started.CompareAndSwap(false, true) {
		return ErrKernelStarted
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-k.haltCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	runner := NewRunnerWith(ctx)
	for _, t := range k.Tasks() {
		runner.Go(t)
	}
	err := runner.Wait()
	if k.Halted() {
		return ErrHalted
	}
	if err == nil {
		err = ctx.Err()
	}
	return err
}

// Halt stops all tasks permanently: the CPU is no longer granted and
// every pending wait is cancelled. It's safe to call multiple times.
func (k *Kernel) Halt() {
	k.halted.Store(true)
	if k.CPU != nil {
		k.CPU.Halt()
	}
	k.once.Do(func() {
		close(k.haltCh)
	})
}

// Halted reports whether the kernel has been halted.
func (k *Kernel) Halted() bool {
	return k.halted.Load()
}

// HaltCh is closed once the kernel halts.
func (k *Kernel) HaltCh() <-chan struct{} {
	return k.haltCh
}
