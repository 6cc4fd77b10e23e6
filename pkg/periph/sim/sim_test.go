package sim

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/opmode/pkg/periph"
)

func TestLEDs(t *testing.T) {
	leds := NewLEDs()
	leds.SetAll(true)
	require.Equal(t, [periph.NumLEDs]bool{true, true, true}, leds.State())
	leds.SetAll(false)
	leds.SetOne(periph.Amber, true)
	leds.SetOne(periph.LEDID(9), true)
	require.Equal(t, [periph.NumLEDs]bool{false, true, false}, leds.State())
	require.True(t, leds.Lit(periph.Amber))
	require.Equal(t, 3, leds.Updates())
}

func TestServoClamp(t *testing.T) {
	s := NewServo()
	require.False(t, s.Enabled())
	s.SetEnabled(true)
	s.SetPosition(250)
	require.True(t, s.Enabled())
	require.Equal(t, uint8(periph.MaxAngle), s.Angle())
	require.Equal(t, 1, s.Moves())
}

func TestLCD(t *testing.T) {
	lcd := NewLCD()
	lcd.WriteLine(0, "IDLE")
	lcd.WriteLine(5, "ignored")
	lines := lcd.Lines()
	require.Equal(t, periph.PadLine("IDLE"), lines[0])
	require.Equal(t, periph.PadLine(""), lines[1])
}

func TestUART(t *testing.T) {
	u := NewUART()
	require.NoError(t, u.Transmit([]byte("a\r\n"), time.Second))
	<-u.SentCh()
	require.Equal(t, []string{"a\r\n"}, u.Frames())

	failure := errors.New("io")
	u.Fail(failure)
	require.Equal(t, failure, u.Transmit([]byte("b"), time.Second))

	u.Stall()
	err := u.Transmit([]byte("c"), 5*time.Millisecond)
	require.True(t, errors.Is(err, periph.ErrTimeout))
	require.Equal(t, "a\r\n", u.Output())
}
