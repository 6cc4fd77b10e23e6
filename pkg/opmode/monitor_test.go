package opmode

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/opmode/pkg/framework"
)

type testNotifier struct {
	lock  sync.Mutex
	masks []uint32
}

func (n *testNotifier) Notify(mask uint32) {
	n.lock.Lock()
	n.masks = append(n.masks, mask)
	n.lock.Unlock()
}

func (n *testNotifier) count() int {
	n.lock.Lock()
	defer n.lock.Unlock()
	return len(n.masks)
}

func TestMonitorScenario(t *testing.T) {
	cell := NewCell()
	notifier := &testNotifier{}
	m, err := NewMonitor(cell, notifier)
	require.NoError(t, err)

	positions := []uint8{0, 0, 1, 1, 2}
	expectModes := []Mode{Idle, Idle, ActuatorRunning, Idle, ActuatorRunning}
	expectNotified := []bool{true, false, true, true, true}
	for n, pos := range positions {
		cell.SetPosition(pos)
		before := notifier.count()
		require.NoError(t, m.Work(context.Background()))
		require.Equal(t, expectModes[n], cell.Mode(), "index %d", n)
		require.Equal(t, expectNotified[n], notifier.count() > before, "index %d", n)
	}
	for _, mask := range notifier.masks {
		require.NotZero(t, mask)
	}
}

func TestMonitorRunningIffMoved(t *testing.T) {
	cell := NewCell()
	m, err := NewMonitor(cell, nil)
	require.NoError(t, err)
	prev := uint8(0)
	for _, pos := range []uint8{0, 5, 5, 6, 180, 180, 0, 0} {
		cell.SetPosition(pos)
		mode, _ := m.Evaluate()
		if pos != prev {
			require.Equal(t, ActuatorRunning, mode)
		} else {
			require.Equal(t, Idle, mode)
		}
		require.Equal(t, mode, cell.Mode())
		prev = pos
	}
}

func TestMonitorSecondWriterRejected(t *testing.T) {
	cell := NewCell()
	_, err := NewMonitor(cell, nil)
	require.NoError(t, err)
	_, err = NewMonitor(cell, nil)
	require.Equal(t, ErrWriterClaimed, err)
}

func TestMonitorKeepsFault(t *testing.T) {
	cell := NewCell()
	notifier := &testNotifier{}
	m, err := NewMonitor(cell, notifier)
	require.NoError(t, err)
	cell.ForceFault()
	cell.SetPosition(10)
	_, changed := m.Evaluate()
	require.False(t, changed)
	require.Equal(t, ErrorFirmwareFault, cell.Mode())
	require.Zero(t, notifier.count())
}

func TestMonitorTask(t *testing.T) {
	cell := NewCell()
	consumer := framework.NewTask("indicator", func(context.Context) error { return nil })
	m, err := NewMonitor(cell, consumer)
	require.NoError(t, err)
	task := m.Task("monitor", 2, 5*time.Millisecond)
	require.Equal(t, framework.AllBits, task.ExitClear)
	require.Zero(t, task.EntryClear)

	k := framework.NewKernel()
	require.NoError(t, k.Spawn(task))
	ctx, cancel := context.WithCancel(context.Background())
	doneCh := make(chan error, 1)
	go func() { doneCh <- k.Run(ctx) }()
	deadline := time.Now().Add(5 * time.Second)
	for cell.Mode() != Idle {
		require.True(t, time.Now().Before(deadline))
		time.Sleep(time.Millisecond)
	}
	require.True(t, consumer.Channel().Pending())
	require.Equal(t, WakeBit, consumer.Channel().Value())
	cancel()
	<-doneCh
}
