// Package indicator renders the operational mode on LEDs and LCD.
package indicator

import (
	"github.com/robotalks/opmode/pkg/opmode"
	"github.com/robotalks/opmode/pkg/periph"
)

// Pattern is the state of the status LEDs.
type Pattern struct {
	Green bool
	Amber bool
	Red   bool
}

// Lit reports whether the LED is on in the pattern.
func (p Pattern) Lit(id periph.LEDID) bool {
	switch id {
	case periph.Green:
		return p.Green
	case periph.Amber:
		return p.Amber
	case periph.Red:
		return p.Red
	}
	return false
}

// FaultPattern is shown for the firmware fault and any unmapped mode.
var FaultPattern = Pattern{Amber: true, Red: true}

// PatternFor maps every mode to a pattern.
func PatternFor(mode opmode.Mode) Pattern {
	switch mode {
	case opmode.Unknown:
		return Pattern{}
	case opmode.Idle:
		return Pattern{Green: true}
	case opmode.ActuatorRunning:
		return Pattern{Amber: true}
	case opmode.ErrorActuator, opmode.ErrorDisplay, opmode.ErrorPeripheral:
		return Pattern{Red: true}
	default:
		return FaultPattern
	}
}
