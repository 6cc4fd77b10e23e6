// Package periph defines the peripherals consumed by the tasks.
package periph

import (
	"errors"
	"strings"
	"time"
)

// ErrTimeout indicates a transfer didn't complete in time.
var ErrTimeout = errors.New("timeout")

// LEDID identifies a status LED.
type LEDID int

// Status LEDs.
const (
	Green LEDID = iota
	Amber
	Red

	NumLEDs = 3
)

var ledNames = [NumLEDs]string{"green", "amber", "red"}

// String implements fmt.Stringer.
func (id LEDID) String() string {
	if id >= 0 && int(id) < NumLEDs {
		return ledNames[id]
	}
	return "led?"
}

// LEDs drives the status LEDs.
type LEDs interface {
	SetOne(id LEDID, on bool)
	SetAll(on bool)
}

// Servo drives the actuator.
type Servo interface {
	SetEnabled(enabled bool)
	// SetPosition clamps angle to MaxAngle.
	SetPosition(angle uint8)
}

// UART is the serial telemetry link.
type UART interface {
	// Transmit blocks until p is sent or timeout elapses, in which
	// case an error wrapping ErrTimeout is returned.
	Transmit(p []byte, timeout time.Duration) error
}

// LCD is a character display.
type LCD interface {
	WriteLine(line int, text string)
}

// Servo signal.
const (
	MaxAngle      = 180
	ServoPeriod   = 20 * time.Millisecond
	MinPulseWidth = 500 * time.Microsecond
	MaxPulseWidth = 2500 * time.Microsecond
)

// PulseWidth maps an angle onto the servo pulse width.
func PulseWidth(angle uint8) time.Duration {
	if angle > MaxAngle {
		angle = MaxAngle
	}
	return MinPulseWidth + (MaxPulseWidth-MinPulseWidth)*time.Duration(angle)/MaxAngle
}

// LCD geometry.
const (
	LCDLines   = 2
	LCDColumns = 16
)

// PadLine truncates or space pads text to LCDColumns.
func PadLine(text string) string {
	if len(text) >= LCDColumns {
		return text[:LCDColumns]
	}
	return text + strings.Repeat(" ", LCDColumns-len(text))
}
