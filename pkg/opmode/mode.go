// Package opmode tracks the operational mode of the device.
package opmode

import "fmt"

// Mode is the operational mode.
type Mode uint32

// Modes.
const (
	Unknown Mode = iota
	Idle
	ActuatorRunning
	ErrorActuator
	ErrorDisplay
	ErrorPeripheral
	// ErrorFirmwareFault is terminal.
	ErrorFirmwareFault
)

// Modes lists all defined modes.
var Modes = []Mode{
	Unknown,
	Idle,
	ActuatorRunning,
	ErrorActuator,
	ErrorDisplay,
	ErrorPeripheral,
	ErrorFirmwareFault,
}

var modeNames = map[Mode]string{
	Unknown:            "UNKNOWN",
	Idle:               "IDLE",
	ActuatorRunning:    "ACTUATOR RUNNING",
	ErrorActuator:      "ERROR (ACTUATOR)",
	ErrorDisplay:       "ERROR (DISPLAY)",
	ErrorPeripheral:    "ERROR (PERIPHERALS)",
	ErrorFirmwareFault: "ERROR (FIRMWARE FAULT)",
}

var modeAbbrevs = map[Mode]string{
	Unknown:            "UNKNOWN",
	Idle:               "IDLE",
	ActuatorRunning:    "RUNNING",
	ErrorActuator:      "ERR ACTUATOR",
	ErrorDisplay:       "ERR DISPLAY",
	ErrorPeripheral:    "ERR PERIPHERAL",
	ErrorFirmwareFault: "ERR FW FAULT",
}

// String returns the label used in telemetry.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("UNDEFINED (%d)", uint32(m))
}

// Abbrev returns a label fitting a 16 column display.
func (m Mode) Abbrev() string {
	if name, ok := modeAbbrevs[m]; ok {
		return name
	}
	return fmt.Sprintf("MODE %d", uint32(m))
}

// IsError reports whether m is one of the error modes.
func (m Mode) IsError() bool {
	return m >= ErrorActuator
}

// Valid reports whether m is a defined mode.
func (m Mode) Valid() bool {
	return m <= ErrorFirmwareFault
}

// ParseMode finds the mode by its telemetry label.
func ParseMode(label string) (Mode, bool) {
	for mode, name := range modeNames {
		if name == label {
			return mode, true
		}
	}
	return Unknown, false
}
