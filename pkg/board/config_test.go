package board

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	conf := *Default()
	conf.DeviceID = "test"
	return &conf
}

func TestDefaultConfig(t *testing.T) {
	conf := testConfig()
	require.NoError(t, conf.Validate())
	require.Equal(t, 50, conf.Tasks.Monitor.PeriodMs)
	require.Equal(t, 50, conf.Tasks.Indicator.PeriodMs)
	require.Equal(t, 1000, conf.Tasks.Reporter.PeriodMs)
	require.Equal(t, 100, conf.Tasks.Drive.PeriodMs)
	require.True(t, conf.Tasks.Drive.Priority > conf.Tasks.Reporter.Priority)
	require.True(t, conf.Tasks.Reporter.Priority > conf.Tasks.Monitor.Priority)
	require.True(t, conf.Tasks.Monitor.Priority > conf.Tasks.Indicator.Priority)
	require.Equal(t, 1000, conf.UARTTimeoutMs)
}

func TestLoadFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "opmode.yaml")
	require.NoError(t, os.WriteFile(fn, []byte(`
device_id: bench-1
uart_url: serial:///dev/ttyACM0
tasks:
  monitor:
    period_ms: 20
    priority: 2
drive:
  max_deg: 90
`), 0644))
	conf := testConfig()
	require.NoError(t, conf.LoadFile(fn))
	require.Equal(t, "bench-1", conf.DeviceID)
	require.Equal(t, "serial:///dev/ttyACM0", conf.UARTURL)
	require.Equal(t, 20, conf.Tasks.Monitor.PeriodMs)
	require.Equal(t, 90, conf.Drive.MaxDeg)
	require.Equal(t, 1000, conf.Tasks.Reporter.PeriodMs)
	require.NoError(t, conf.Validate())

	require.Error(t, conf.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")))
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("tasks: [1, 2"), 0644))
	require.Error(t, conf.LoadFile(bad))
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*Config)
	}{
		{"no device", func(c *Config) { c.DeviceID = "" }},
		{"uart timeout", func(c *Config) { c.UARTTimeoutMs = 0 }},
		{"max tasks", func(c *Config) { c.MaxTasks = 0 }},
		{"drive range", func(c *Config) { c.Drive.MinDeg, c.Drive.MaxDeg = 100, 10 }},
		{"drive max", func(c *Config) { c.Drive.MaxDeg = 200 }},
		{"period", func(c *Config) { c.Tasks.Indicator.PeriodMs = 0 }},
		{"modbus unit", func(c *Config) { c.Modbus.Endpoint, c.Modbus.UnitID = "localhost:502", 300 }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conf := testConfig()
			tc.modify(conf)
			require.Error(t, conf.Validate())
		})
	}
}
