// Package actuator drives the servo through a test profile.
package actuator

import (
	"sync/atomic"

	"github.com/robotalks/opmode/pkg/periph"
)

// Oscillator produces a triangle wave between Min and Max, one degree
// per tick, starting at Min and moving up.
type Oscillator struct {
	min, max uint8

	angle   uint8
	up      bool
	started bool
	reset   atomic.Bool
}

// NewOscillator creates an Oscillator. max is clamped to the servo
// range and min to max.
func NewOscillator(min, max uint8) *Oscillator {
	if max > periph.MaxAngle {
		max = periph.MaxAngle
	}
	if min > max {
		min = max
	}
	return &Oscillator{min: min, max: max}
}

// Bounds returns the range of the wave.
func (o *Oscillator) Bounds() (uint8, uint8) {
	return o.min, o.max
}

// Reset restarts the wave at Min on the next tick. It's safe to call
// from any goroutine.
func (o *Oscillator) Reset() {
	o.reset.Store(true)
}

// Next advances one tick and returns the angle. It must be called from
// a single goroutine.
func (o *Oscillator) Next() uint8 {
	if o.reset.Swap(false) || !o.started {
		o.angle, o.up, o.started = o.min, true, true
		return o.angle
	}
	if o.min == o.max {
		return o.angle
	}
	if o.up {
		if o.angle >= o.max {
			o.up = false
			o.angle--
		} else {
			o.angle++
		}
	} else {
		if o.angle <= o.min {
			o.up = true
			o.angle++
		} else {
			o.angle--
		}
	}
	return o.angle
}
