// Package telemetry reports the operational mode and actuator position.
package telemetry

import (
	"fmt"
	"time"

	"github.com/robotalks/opmode/pkg/opmode"
)

// Sample is a snapshot of the cell.
type Sample struct {
	Device   string
	Mode     opmode.Mode
	Position uint8
	At       time.Time
}

// FormatLine renders the telemetry line sent on the UART.
func FormatLine(mode opmode.Mode, position uint8) string {
	return fmt.Sprintf("Operational mode: %s\r\nPosition (degrees): %d\r\n", mode, position)
}

// Line renders the sample as the UART line.
func (s Sample) Line() string {
	return FormatLine(s.Mode, s.Position)
}
