package opmode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModeLabels(t *testing.T) {
	testCases := []struct {
		mode   Mode
		label  string
		abbrev string
	}{
		{Unknown, "UNKNOWN", "UNKNOWN"},
		{Idle, "IDLE", "IDLE"},
		{ActuatorRunning, "ACTUATOR RUNNING", "RUNNING"},
		{ErrorActuator, "ERROR (ACTUATOR)", "ERR ACTUATOR"},
		{ErrorDisplay, "ERROR (DISPLAY)", "ERR DISPLAY"},
		{ErrorPeripheral, "ERROR (PERIPHERALS)", "ERR PERIPHERAL"},
		{ErrorFirmwareFault, "ERROR (FIRMWARE FAULT)", "ERR FW FAULT"},
		{Mode(42), "UNDEFINED (42)", "MODE 42"},
	}
	for _, tc := range testCases {
		t.Run(tc.label, func(t *testing.T) {
			require.Equal(t, tc.label, tc.mode.String())
			require.Equal(t, tc.abbrev, tc.mode.Abbrev())
			require.True(t, len(tc.mode.Abbrev()) <= 16)
			if mode, ok := ParseMode(tc.label); tc.mode.Valid() {
				require.True(t, ok)
				require.Equal(t, tc.mode, mode)
			} else {
				require.False(t, ok)
			}
		})
	}
	require.Len(t, Modes, 7)
	require.False(t, Mode(42).Valid())
	require.True(t, ErrorDisplay.IsError())
	require.False(t, ActuatorRunning.IsError())
}
