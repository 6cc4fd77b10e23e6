package framework

import (
	"context"
	"sync"
)

// CPU emulates a single core shared by tasks. Only the holder runs;
// on release the core goes to the highest priority waiter, first come
// first served among equal priorities. Tasks are only switched between
// work steps, never in the middle of one.
type CPU struct {
	lock    sync.Mutex
	busy    bool
	halted  bool
	seq     uint64
	waiters []*cpuWaiter
}

type cpuWaiter struct {
	priority Priority
	seq      uint64
	grantCh  chan bool
}

// NewCPU creates an idle CPU.
func NewCPU() *CPU {
	return &CPU{}
}

// Acquire blocks until the CPU is granted at priority. It returns false
// if the CPU is halted or ctx is done first.
func (c *CPU) Acquire(ctx context.Context, priority Priority) bool {
	c.lock.Lock()
	if c.halted {
		c.lock.Unlock()
		return false
	}
	if !c.busy {
		c.busy = true
		c.lock.Unlock()
		return true
	}
	w := &cpuWaiter{priority: priority, seq: c.seq, grantCh: make(chan bool, 1)}
	c.seq++
	c.waiters = append(c.waiters, w)
	c.lock.Unlock()

	select {
	case granted := <-w.grantCh:
		return granted
	case <-ctx.Done():
	}

	c.lock.Lock()
	for n, waiter := range c.waiters {
		if waiter == w {
			c.waiters = append(c.waiters[:n], c.waiters[n+1:]...)
			c.lock.Unlock()
			return false
		}
	}
	c.lock.Unlock()
	// granted concurrently with cancellation, pass it on.
	if <-w.grantCh {
		c.Release()
	}
	return false
}

// Release hands the CPU to the next waiter.
func (c *CPU) Release() {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.halted || len(c.waiters) == 0 {
		c.busy = false
		return
	}
	best := 0
	for n, w := range c.waiters {
		top := c.waiters[best]
		if w.priority > top.priority || (w.priority == top.priority && w.seq < top.seq) {
			best = n
		}
	}
	w := c.waiters[best]
	c.waiters = append(c.waiters[:best], c.waiters[best+1:]...)
	w.grantCh <- true
}

// Halt stops granting the CPU. Current waiters are rejected.
func (c *CPU) Halt() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.halted = true
	for _, w := range c.waiters {
		w.grantCh <- false
	}
	c.waiters = nil
}

// Halted reports whether Halt was called.
func (c *CPU) Halted() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.halted
}
