package fault

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/opmode/pkg/framework"
	"github.com/robotalks/opmode/pkg/opmode"
	"github.com/robotalks/opmode/pkg/periph"
)

type testHalter struct {
	halts atomic.Int32
}

func (h *testHalter) Halt() { h.halts.Add(1) }

type testRenderer struct {
	cell    *opmode.Cell
	renders atomic.Int32
	seen    atomic.Value
}

func (r *testRenderer) Render() opmode.Mode {
	r.renders.Add(1)
	mode := r.cell.Mode()
	r.seen.Store(mode)
	return mode
}

func TestClassOf(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		expect Class
	}{
		{"peripheral", Peripheral("uart", periph.ErrTimeout), ClassPeripheral},
		{"unclassified", periph.ErrTimeout, ClassPeripheral},
		{"resource", fmt.Errorf("spawn: %w", framework.ErrResourceExhausted), ClassResource},
		{"invalid task", framework.ErrInvalidTask, ClassAssertion},
		{"writer", opmode.ErrWriterClaimed, ClassAssertion},
		{"wrapped", fmt.Errorf("x: %w", Resource("spawn", errors.New("oom"))), ClassResource},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, ClassOf(tc.err))
		})
	}
}

func TestEscalate(t *testing.T) {
	cell := opmode.NewCell()
	cell.SetMode(opmode.ActuatorRunning)
	halter := &testHalter{}
	renderer := &testRenderer{cell: cell}
	var parks atomic.Int32
	h := NewHandler(halter, cell)
	h.Indicator = renderer
	h.Park = func() { parks.Add(1) }

	cause := Peripheral("uart", periph.ErrTimeout)
	h.Escalate(cause)
	require.True(t, h.Fired())
	require.Equal(t, opmode.ErrorFirmwareFault, cell.Mode())
	require.Equal(t, opmode.ErrorFirmwareFault, renderer.seen.Load())
	require.Equal(t, int32(1), halter.halts.Load())
	require.True(t, errors.Is(h.Err(), periph.ErrTimeout))
	require.Equal(t, ClassPeripheral, h.Err().Class)
	<-h.Done()

	h.Escalate(errors.New("second"))
	require.Equal(t, int32(1), halter.halts.Load())
	require.Equal(t, int32(1), renderer.renders.Load())
	require.Equal(t, int32(2), parks.Load())
	require.True(t, errors.Is(h.Err(), periph.ErrTimeout))
}

func TestEscalateNeverReturns(t *testing.T) {
	h := NewHandler(nil, opmode.NewCell())
	returnedCh := make(chan struct{})
	go func() {
		h.Escalate(errors.New("fatal"))
		close(returnedCh)
	}()
	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("fault not shown")
	}
	select {
	case <-returnedCh:
		t.Fatal("escalate returned")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestRaise(t *testing.T) {
	cell := opmode.NewCell()
	halter := &testHalter{}
	h := NewHandler(halter, cell)
	require.True(t, h.Raise(Resource("spawn", errors.New("full"))))
	require.False(t, h.Raise(errors.New("again")))
	require.Equal(t, ClassResource, h.Err().Class)
	require.Equal(t, opmode.ErrorFirmwareFault, cell.Mode())
	require.Equal(t, int32(1), halter.halts.Load())
}

func TestAssert(t *testing.T) {
	h := NewHandler(nil, opmode.NewCell())
	h.Park = func() {}
	h.Assert(true, "check", "fine")
	require.False(t, h.Fired())
	h.Assert(false, "check", "value %d", 3)
	require.True(t, h.Fired())
	require.Equal(t, ClassAssertion, h.Err().Class)
	require.Contains(t, h.Err().Error(), "value 3")
}
