// Package sim provides in-memory peripherals.
package sim

import (
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/opmode/pkg/periph"
)

// LEDs is a simulated LED bank.
type LEDs struct {
	// Verbose logs every state change.
	Verbose bool

	lock    sync.Mutex
	state   [periph.NumLEDs]bool
	updates int
}

// NewLEDs creates a LED bank with all LEDs off.
func NewLEDs() *LEDs {
	return &LEDs{}
}

// SetOne implements periph.LEDs.
func (l *LEDs) SetOne(id periph.LEDID, on bool) {
	if id < 0 || int(id) >= periph.NumLEDs {
		return
	}
	l.lock.Lock()
	changed := l.state[id] != on
	l.state[id] = on
	l.updates++
	l.lock.Unlock()
	if changed && l.Verbose {
		glog.Infof("LED %s: %v", id, on)
	}
}

// SetAll implements periph.LEDs.
func (l *LEDs) SetAll(on bool) {
	l.lock.Lock()
	for n := range l.state {
		l.state[n] = on
	}
	l.updates++
	l.lock.Unlock()
}

// State returns the LED states indexed by periph.LEDID.
func (l *LEDs) State() [periph.NumLEDs]bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.state
}

// Lit reports whether the LED is on.
func (l *LEDs) Lit(id periph.LEDID) bool {
	return l.State()[id]
}

// Updates counts the calls of SetOne and SetAll.
func (l *LEDs) Updates() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.updates
}
