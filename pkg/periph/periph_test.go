package periph

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPulseWidth(t *testing.T) {
	testCases := []struct {
		angle  uint8
		expect time.Duration
	}{
		{0, 500 * time.Microsecond},
		{90, 1500 * time.Microsecond},
		{180, 2500 * time.Microsecond},
		{255, 2500 * time.Microsecond},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.expect, PulseWidth(tc.angle), "angle %d", tc.angle)
	}
}

func TestPadLine(t *testing.T) {
	require.Equal(t, "IDLE            ", PadLine("IDLE"))
	require.Equal(t, "0123456789abcdef", PadLine("0123456789abcdefgh"))
	require.Len(t, PadLine(""), LCDColumns)
}

func TestLEDIDString(t *testing.T) {
	require.Equal(t, "green", Green.String())
	require.Equal(t, "red", Red.String())
	require.Equal(t, "led?", LEDID(7).String())
}
