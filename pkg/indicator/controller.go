package indicator

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robotalks/opmode/pkg/framework"
	"github.com/robotalks/opmode/pkg/opmode"
	"github.com/robotalks/opmode/pkg/periph"
)

// DefaultPeriod is the refresh period without notifications.
const DefaultPeriod = 50 * time.Millisecond

// Controller renders the mode stored in the cell.
type Controller struct {
	Cell *opmode.Cell
	LEDs periph.LEDs
	// LCD is optional.
	LCD periph.LCD

	lock    sync.Mutex
	renders atomic.Uint64
}

// NewController creates a Controller.
func NewController(cell *opmode.Cell, leds periph.LEDs, lcd periph.LCD) *Controller {
	return &Controller{Cell: cell, LEDs: leds, LCD: lcd}
}

// Render turns all LEDs off and lights the pattern of the current mode.
// Renders are serialized and the cell is read under the lock, so a
// render started after a mode change is never overwritten by an older
// one still in progress.
func (c *Controller) Render() opmode.Mode {
	c.lock.Lock()
	defer c.lock.Unlock()
	mode, pos := c.Cell.Snapshot()
	pattern := PatternFor(mode)
	c.LEDs.SetAll(false)
	for _, id := range []periph.LEDID{periph.Green, periph.Amber, periph.Red} {
		if pattern.Lit(id) {
			c.LEDs.SetOne(id, true)
		}
	}
	if c.LCD != nil {
		c.LCD.WriteLine(0, mode.Abbrev())
		c.LCD.WriteLine(1, fmt.Sprintf("Pos: %d deg", pos))
	}
	c.renders.Add(1)
	return mode
}

// Renders counts Render calls.
func (c *Controller) Renders() uint64 {
	return c.renders.Load()
}

// Work is the task body.
func (c *Controller) Work(context.Context) error {
	c.Render()
	return nil
}

// Task creates the periodic task running the controller.
func (c *Controller) Task(name string, priority framework.Priority, period time.Duration) *framework.Task {
	t := framework.NewTask(name, c.Work)
	t.Priority = priority
	t.Period = period
	t.ExitClear = framework.AllBits
	return t
}
