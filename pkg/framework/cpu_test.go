package framework

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func (c *CPU) numWaiters() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.waiters)
}

func waitForWaiters(t *testing.T, c *CPU, n int) {
	deadline := time.Now().Add(5 * time.Second)
	for c.numWaiters() < n {
		require.True(t, time.Now().Before(deadline), "waiters not queued")
		time.Sleep(time.Millisecond)
	}
}

func TestCPUGrantByPriority(t *testing.T) {
	cpu := NewCPU()
	ctx := context.Background()
	require.True(t, cpu.Acquire(ctx, 0))

	grantedCh := make(chan Priority, 4)
	for n, prio := range []Priority{1, 3, 2, 3} {
		go func(prio Priority) {
			if cpu.Acquire(ctx, prio) {
				grantedCh <- prio
				cpu.Release()
			}
		}(prio)
		waitForWaiters(t, cpu, n+1)
	}
	cpu.Release()

	var order []Priority
	for range []int{0, 1, 2, 3} {
		select {
		case prio := <-grantedCh:
			order = append(order, prio)
		case <-time.After(5 * time.Second):
			t.Fatal("cpu not granted")
		}
	}
	require.Equal(t, []Priority{3, 3, 2, 1}, order)
}

func TestCPUHalt(t *testing.T) {
	cpu := NewCPU()
	ctx := context.Background()
	require.True(t, cpu.Acquire(ctx, 0))
	resultCh := make(chan bool, 1)
	go func() {
		resultCh <- cpu.Acquire(ctx, 5)
	}()
	waitForWaiters(t, cpu, 1)
	cpu.Halt()
	require.False(t, <-resultCh)
	require.True(t, cpu.Halted())
	require.False(t, cpu.Acquire(ctx, 10))
}

func TestCPUAcquireCancel(t *testing.T) {
	cpu := NewCPU()
	require.True(t, cpu.Acquire(context.Background(), 0))
	ctx, cancel := context.WithCancel(context.Background())
	resultCh := make(chan bool, 1)
	go func() {
		resultCh <- cpu.Acquire(ctx, 1)
	}()
	waitForWaiters(t, cpu, 1)
	cancel()
	require.False(t, <-resultCh)
	require.Zero(t, cpu.numWaiters())
	cpu.Release()
	require.True(t, cpu.Acquire(context.Background(), 0))
}
