package framework

import (
	"context"
	"sync/atomic"
	"time"
)

// pendingBit marks the notification slot as posted. The low
// 32 bits of the state word hold the notification value.
const pendingBit = uint64(1) << 32

// WaitOutcome is the result of Channel.Wait.
type WaitOutcome struct {
	// Notified is false when the wait timed out.
	Notified bool
	// Value is the notification value observed by the wait.
	// On a notified wake it's the value as posted, before exit
	// bits are cleared.
	Value uint32
}

// TimedOut reports the wait ended without a notification.
func (o WaitOutcome) TimedOut() bool {
	return !o.Notified
}

// Channel is a single-slot notification mailbox owned by one task.
// Posts made before the owner consumes them are OR-ed into the slot,
// so two notifications cause at most one wake.
type Channel struct {
	state  atomic.Uint64
	wakeCh chan struct{}
}

// NewChannel creates a Channel.
func NewChannel() *Channel {
	return &Channel{wakeCh: make(chan struct{}, 1)}
}

// Notify ORs mask into the slot and wakes the owner if it's blocked.
// It never blocks and never fails.
func (c *Channel) Notify(mask uint32) {
	for {
		old := c.state.Load()
		if c.state.CompareAndSwap(old, old|uint64(mask)|pendingBit) {
			break
		}
	}
	select {
	case c.wakeCh <- struct{}{}:
	default:
	}
}

// Give posts a bare wake.
func (c *Channel) Give() {
	c.Notify(1)
}

// Pending reports whether a notification is waiting to be consumed.
func (c *Channel) Pending() bool {
	return c.state.Load()&pendingBit != 0
}

// Value returns the current notification value.
func (c *Channel) Value() uint32 {
	return uint32(c.state.Load())
}

// Wait blocks until a notification is pending, the timeout elapses or
// ctx is done. entryClear bits are cleared before blocking unless a
// notification is already pending. The error is only ever ctx.Err().
func (c *Channel) Wait(ctx context.Context, entryClear, exitClear uint32, timeout time.Duration) (WaitOutcome, error) {
	c.clearIdle(entryClear)
	if out, ok := c.consume(exitClear); ok {
		return out, nil
	}
	if err := ctx.Err(); err != nil {
		return WaitOutcome{}, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return WaitOutcome{}, ctx.Err()
		case <-timer.C:
			if out, ok := c.consume(exitClear); ok {
				return out, nil
			}
			return WaitOutcome{Value: c.Value()}, nil
		case <-c.wakeCh:
			// a token left by an already consumed post is dropped here.
			if out, ok := c.consume(exitClear); ok {
				return out, nil
			}
		}
	}
}

func (c *Channel) clearIdle(bits uint32) {
	if bits == 0 {
		return
	}
	for {
		old := c.state.Load()
		if old&pendingBit != 0 {
			return
		}
		if c.state.CompareAndSwap(old, old&^uint64(bits)) {
			return
		}
	}
}

func (c *Channel) consume(exitClear uint32) (WaitOutcome, bool) {
	for {
		old := c.state.Load()
		if old&pendingBit == 0 {
			return WaitOutcome{}, false
		}
		val := uint32(old)
		if c.state.CompareAndSwap(old, uint64(val&^exitClear)) {
			return WaitOutcome{Notified: true, Value: val}, true
		}
	}
}
