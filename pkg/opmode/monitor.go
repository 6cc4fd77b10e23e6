package opmode

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/opmode/pkg/framework"
)

// Monitor defaults.
const (
	DefaultMonitorPeriod = 50 * time.Millisecond
	// WakeBit is posted to the indicator task on a mode change.
	WakeBit uint32 = 1
)

// Monitor derives the mode from the actuator position and notifies
// a consumer when it changes.
type Monitor struct {
	Cell *Cell
	// Indicator is notified on every mode change.
	Indicator framework.Notifier

	prev uint8
}

// NewMonitor creates a Monitor and claims the mode writer of cell.
func NewMonitor(cell *Cell, indicator framework.Notifier) (*Monitor, error) {
	if err := cell.ClaimModeWriter(); err != nil {
		return nil, err
	}
	return &Monitor{Cell: cell, Indicator: indicator}, nil
}

// Evaluate runs one evaluation: the actuator is running if it moved
// since the previous evaluation. It returns the derived mode and
// whether the stored mode changed.
func (m *Monitor) Evaluate() (Mode, bool) {
	pos := m.Cell.Position()
	mode := Idle
	if pos != m.prev {
		mode = ActuatorRunning
	}
	m.prev = pos
	changed := m.Cell.SetMode(mode)
	if changed {
		glog.V(2).Infof("mode changed: %s (position %d)", mode, pos)
	}
	return mode, changed
}

// Work is the task body.
func (m *Monitor) Work(context.Context) error {
	if _, changed := m.Evaluate(); changed && m.Indicator != nil {
		m.Indicator.Notify(WakeBit)
	}
	return nil
}

// Task creates the periodic task running the monitor.
func (m *Monitor) Task(name string, priority framework.Priority, period time.Duration) *framework.Task {
	t := framework.NewTask(name, m.Work)
	t.Priority = priority
	t.Period = period
	t.ExitClear = framework.AllBits
	return t
}
