package actuator

import (
	"context"
	"time"

	"github.com/robotalks/opmode/pkg/framework"
	"github.com/robotalks/opmode/pkg/opmode"
	"github.com/robotalks/opmode/pkg/periph"
)

// DefaultPeriod is the tick period of the drive loop.
const DefaultPeriod = 100 * time.Millisecond

// Drive moves the servo one oscillator tick per work step and
// publishes the angle to the cell.
type Drive struct {
	Cell  *opmode.Cell
	Servo periph.Servo
	Osc   *Oscillator

	enabled bool
}

// NewDrive creates a Drive and claims the position writer of cell.
func NewDrive(cell *opmode.Cell, servo periph.Servo, osc *Oscillator) (*Drive, error) {
	if err := cell.ClaimPositionWriter(); err != nil {
		return nil, err
	}
	return &Drive{Cell: cell, Servo: servo, Osc: osc}, nil
}

// Reset restarts the profile on the next tick.
func (d *Drive) Reset() {
	d.Osc.Reset()
}

// Work is the task body.
func (d *Drive) Work(context.Context) error {
	if !d.enabled {
		d.Servo.SetEnabled(true)
		d.enabled = true
	}
	angle := d.Osc.Next()
	d.Cell.SetPosition(angle)
	d.Servo.SetPosition(angle)
	return nil
}

// Task creates the periodic task running the drive. It never waits
// for notifications other than its timeout.
func (d *Drive) Task(name string, priority framework.Priority, period time.Duration) *framework.Task {
	t := framework.NewTask(name, d.Work)
	t.Priority = priority
	t.Period = period
	t.ExitClear = framework.AllBits
	return t
}
