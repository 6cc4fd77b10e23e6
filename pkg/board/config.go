package board

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robotalks/opmode/pkg/framework"
)

// TaskConfig configures a periodic task.
type TaskConfig struct {
	PeriodMs int `yaml:"period_ms"`
	Priority int `yaml:"priority"`
}

// Period returns the period as a duration.
func (c TaskConfig) Period() time.Duration {
	return time.Duration(c.PeriodMs) * time.Millisecond
}

// TasksConfig configures all tasks.
type TasksConfig struct {
	Drive     TaskConfig `yaml:"drive"`
	Reporter  TaskConfig `yaml:"reporter"`
	Monitor   TaskConfig `yaml:"monitor"`
	Indicator TaskConfig `yaml:"indicator"`
	Publisher TaskConfig `yaml:"publisher"`
}

// DriveConfig configures the actuator test profile.
type DriveConfig struct {
	MinDeg int `yaml:"min_deg"`
	MaxDeg int `yaml:"max_deg"`
}

// ModbusConfig configures the optional Modbus mirror.
type ModbusConfig struct {
	Endpoint  string `yaml:"endpoint"`
	UnitID    int    `yaml:"unit_id"`
	Address   int    `yaml:"address"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// Config provides the options of the board.
type Config struct {
	DeviceID    string `yaml:"device_id"`
	Description string `yaml:"description"`

	// UARTURL selects the telemetry link, see uart.Open.
	UARTURL       string `yaml:"uart_url"`
	UARTTimeoutMs int    `yaml:"uart_timeout_ms"`

	LCD         bool `yaml:"lcd"`
	VerboseLEDs bool `yaml:"verbose_leds"`
	// SingleCore serializes work steps by priority.
	SingleCore bool `yaml:"single_core"`
	MaxTasks   int  `yaml:"max_tasks"`

	Drive DriveConfig `yaml:"drive"`
	Tasks TasksConfig `yaml:"tasks"`

	// MQTTBrokerURL enables the MQTT mirror,
	// e.g. mqtt://host:port/topic-prefix/
	MQTTBrokerURL string       `yaml:"mqtt_url"`
	Modbus        ModbusConfig `yaml:"modbus"`
}

var defaultConfig = Config{
	Description:   "operational mode monitor",
	UARTURL:       "stdout:",
	UARTTimeoutMs: 1000,
	LCD:           true,
	SingleCore:    true,
	MaxTasks:      framework.DefaultMaxTasks,
	Drive:         DriveConfig{MinDeg: 0, MaxDeg: 180},
	Tasks: TasksConfig{
		Drive:     TaskConfig{PeriodMs: 100, Priority: 4},
		Reporter:  TaskConfig{PeriodMs: 1000, Priority: 3},
		Monitor:   TaskConfig{PeriodMs: 50, Priority: 2},
		Indicator: TaskConfig{PeriodMs: 50, Priority: 1},
		Publisher: TaskConfig{PeriodMs: 1000, Priority: 0},
	},
	Modbus: ModbusConfig{UnitID: 1, TimeoutMs: 1000},
}

var configFile string

func init() {
	if val := os.Getenv("OPMODE_UART_URL"); val != "" {
		defaultConfig.UARTURL = val
	}
	if val := os.Getenv("OPMODE_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("OPMODE_MODBUS_ENDPOINT"); val != "" {
		defaultConfig.Modbus.Endpoint = val
	}
	if val := os.Getenv("OPMODE_CONFIG"); val != "" {
		configFile = val
	}
	if val := os.Getenv("OPMODE_DEVICE_ID"); val != "" {
		defaultConfig.DeviceID = val
	} else {
		defaultConfig.DeviceID = MachineID()
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&configFile, "config", configFile, "YAML config file")
	flag.StringVar(&defaultConfig.DeviceID, "id", defaultConfig.DeviceID, "Device ID")
	flag.StringVar(&defaultConfig.UARTURL, "uart", defaultConfig.UARTURL, "Telemetry UART URL (serial://, ws://, file://, stdout:)")
	flag.IntVar(&defaultConfig.UARTTimeoutMs, "uart-timeout", defaultConfig.UARTTimeoutMs, "UART transmit timeout in ms")
	flag.BoolVar(&defaultConfig.LCD, "lcd", defaultConfig.LCD, "Attach the status LCD")
	flag.BoolVar(&defaultConfig.VerboseLEDs, "verbose-leds", defaultConfig.VerboseLEDs, "Log LED changes")
	flag.BoolVar(&defaultConfig.SingleCore, "single-core", defaultConfig.SingleCore, "Serialize tasks by priority")
	flag.IntVar(&defaultConfig.Drive.MinDeg, "drive-min", defaultConfig.Drive.MinDeg, "Actuator profile lower bound in degrees")
	flag.IntVar(&defaultConfig.Drive.MaxDeg, "drive-max", defaultConfig.Drive.MaxDeg, "Actuator profile upper bound in degrees")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL")
	flag.StringVar(&defaultConfig.Modbus.Endpoint, "modbus", defaultConfig.Modbus.Endpoint, "Modbus TCP endpoint")
	flag.IntVar(&defaultConfig.Modbus.UnitID, "modbus-unit", defaultConfig.Modbus.UnitID, "Modbus unit ID")
	flag.IntVar(&defaultConfig.Modbus.Address, "modbus-addr", defaultConfig.Modbus.Address, "Modbus holding register address")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations, overlaid by
// the config file if one is specified.
func NewConfig() (*Config, error) {
	conf := defaultConfig
	if configFile != "" {
		if err := conf.LoadFile(configFile); err != nil {
			return nil, err
		}
	}
	return &conf, nil
}

// LoadFile overlays the config with a YAML file. Keys absent from the
// file keep their values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks the config. It never mutates the config.
func (c *Config) Validate() error {
	if c.DeviceID == "" {
		return fmt.Errorf("device id must be specified")
	}
	if c.UARTTimeoutMs <= 0 {
		return fmt.Errorf("uart_timeout_ms must be positive")
	}
	if c.MaxTasks <= 0 {
		return fmt.Errorf("max_tasks must be positive")
	}
	if c.Drive.MinDeg < 0 || c.Drive.MaxDeg > 180 || c.Drive.MinDeg > c.Drive.MaxDeg {
		return fmt.Errorf("invalid drive range [%d, %d]", c.Drive.MinDeg, c.Drive.MaxDeg)
	}
	tasks := map[string]TaskConfig{
		"drive":     c.Tasks.Drive,
		"reporter":  c.Tasks.Reporter,
		"monitor":   c.Tasks.Monitor,
		"indicator": c.Tasks.Indicator,
		"publisher": c.Tasks.Publisher,
	}
	for name, task := range tasks {
		if task.PeriodMs <= 0 {
			return fmt.Errorf("task %s: period_ms must be positive", name)
		}
	}
	if c.Modbus.Endpoint != "" {
		if c.Modbus.UnitID < 0 || c.Modbus.UnitID > 255 {
			return fmt.Errorf("modbus unit_id %d out of range", c.Modbus.UnitID)
		}
		if c.Modbus.Address < 0 || c.Modbus.Address > 0xfffe {
			return fmt.Errorf("modbus address %d out of range", c.Modbus.Address)
		}
	}
	return nil
}
