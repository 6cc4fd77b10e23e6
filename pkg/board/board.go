// Package board wires peripherals, the shared cell and the tasks.
package board

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/opmode/pkg/actuator"
	"github.com/robotalks/opmode/pkg/fault"
	"github.com/robotalks/opmode/pkg/framework"
	"github.com/robotalks/opmode/pkg/indicator"
	"github.com/robotalks/opmode/pkg/opmode"
	"github.com/robotalks/opmode/pkg/periph"
	"github.com/robotalks/opmode/pkg/periph/sim"
	"github.com/robotalks/opmode/pkg/periph/uart"
	"github.com/robotalks/opmode/pkg/telemetry"
	"github.com/robotalks/opmode/pkg/telemetry/modbus"
	"github.com/robotalks/opmode/pkg/telemetry/mqtt"
)

// Task names.
const (
	TaskDrive     = "drive"
	TaskReporter  = "reporter"
	TaskMonitor   = "monitor"
	TaskIndicator = "indicator"
	TaskPublisher = "publisher"
)

// Peripherals overrides the peripherals created from config.
type Peripherals struct {
	LEDs  periph.LEDs
	LCD   periph.LCD
	Servo periph.Servo
	UART  periph.UART
}

// Board is the assembled device.
type Board struct {
	Config *Config
	Cell   *opmode.Cell
	Kernel *framework.Kernel
	Fault  *fault.Handler
	Periph Peripherals

	Monitor   *opmode.Monitor
	Indicator *indicator.Controller
	Reporter  *telemetry.Reporter
	Drive     *actuator.Drive
	Publisher *telemetry.Publisher

	runners []framework.Runnable
	closers []io.Closer
	stopCh  chan struct{}
	stop    sync.Once
}

// New assembles a board. LEDs come up first so a start-up failure can
// be shown: in that case the fault is raised and the error returned
// along with the board.
func New(cfg *Config, p Peripherals) (*Board, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := &Board{
		Config: cfg,
		Cell:   opmode.NewCell(),
		Kernel: framework.NewKernel(),
		stopCh: make(chan struct{}),
	}
	b.Kernel.MaxTasks = cfg.MaxTasks
	if !cfg.SingleCore {
		b.Kernel.CPU = nil
	}

	if p.LEDs == nil {
		leds := sim.NewLEDs()
		leds.Verbose = cfg.VerboseLEDs
		p.LEDs = leds
	}
	b.Periph.LEDs = p.LEDs
	b.Fault = fault.NewHandler(b.Kernel, b.Cell)
	b.Fault.Park = b.park
	b.Kernel.Escalator = b.Fault
	b.Indicator = indicator.NewController(b.Cell, p.LEDs, nil)
	b.Fault.Indicator = b.Indicator

	if err := b.setup(p); err != nil {
		b.Fault.Raise(err)
		return b, err
	}
	return b, nil
}

func (b *Board) setup(p Peripherals) error {
	cfg := b.Config
	if p.LCD == nil && cfg.LCD {
		p.LCD = sim.NewLCD()
	}
	if p.LCD != nil {
		b.Indicator.LCD = p.LCD
		p.LCD.WriteLine(0, "OPMODE")
		p.LCD.WriteLine(1, cfg.DeviceID)
	}
	if p.Servo == nil {
		p.Servo = sim.NewServo()
	}
	if p.UART == nil {
		port, err := uart.Open(cfg.UARTURL)
		if err != nil {
			return fault.Peripheral("uart open", err)
		}
		b.closers = append(b.closers, port)
		p.UART = port
	}
	b.Periph = p

	var err error
	osc := actuator.NewOscillator(uint8(cfg.Drive.MinDeg), uint8(cfg.Drive.MaxDeg))
	if b.Drive, err = actuator.NewDrive(b.Cell, p.Servo, osc); err != nil {
		return fault.Assertion("drive", err)
	}
	b.Reporter = telemetry.NewReporter(b.Cell, p.UART)
	b.Reporter.Timeout = time.Duration(cfg.UARTTimeoutMs) * time.Millisecond

	tasks := cfg.Tasks
	indicatorTask := b.Indicator.Task(TaskIndicator, framework.Priority(tasks.Indicator.Priority), tasks.Indicator.Period())
	if b.Monitor, err = opmode.NewMonitor(b.Cell, indicatorTask); err != nil {
		return fault.Assertion("monitor", err)
	}
	spawn := []*framework.Task{
		b.Drive.Task(TaskDrive, framework.Priority(tasks.Drive.Priority), tasks.Drive.Period()),
		b.Reporter.Task(TaskReporter, framework.Priority(tasks.Reporter.Priority), tasks.Reporter.Period()),
		b.Monitor.Task(TaskMonitor, framework.Priority(tasks.Monitor.Priority), tasks.Monitor.Period()),
		indicatorTask,
	}
	if mirrors := b.mirrors(); len(mirrors) > 0 {
		b.Publisher = telemetry.NewPublisher(b.Cell, cfg.DeviceID, mirrors...)
		spawn = append(spawn, b.Publisher.Task(TaskPublisher, framework.Priority(tasks.Publisher.Priority), tasks.Publisher.Period()))
	}
	for _, t := range spawn {
		if err := b.Kernel.Spawn(t); err != nil {
			if errors.Is(err, framework.ErrResourceExhausted) {
				return fault.Resource("spawn", err)
			}
			return fault.Assertion("spawn", err)
		}
	}
	return nil
}

// mirrors creates the optional telemetry mirrors. They are not part of
// the device, failing to create one is only logged.
func (b *Board) mirrors() []telemetry.Mirror {
	cfg := b.Config
	var mirrors []telemetry.Mirror
	if cfg.MQTTBrokerURL != "" {
		m, err := mqtt.NewMirror(cfg.MQTTBrokerURL, cfg.DeviceID, cfg.Description)
		if err != nil {
			glog.Warningf("mqtt mirror disabled: %v", err)
		} else {
			mirrors = append(mirrors, m)
			b.runners = append(b.runners, framework.NamedRun("mqtt", m))
		}
	}
	if cfg.Modbus.Endpoint != "" {
		m, err := modbus.NewMirror(modbus.Config{
			Endpoint: cfg.Modbus.Endpoint,
			UnitID:   uint8(cfg.Modbus.UnitID),
			Address:  uint16(cfg.Modbus.Address),
			Timeout:  time.Duration(cfg.Modbus.TimeoutMs) * time.Millisecond,
		})
		if err != nil {
			glog.Warningf("modbus mirror disabled: %v", err)
		} else {
			mirrors = append(mirrors, m)
			b.closers = append(b.closers, m)
		}
	}
	return mirrors
}

// Run implements Runnable. After a fault it blocks until ctx is done
// and returns framework.ErrHalted.
func (b *Board) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		b.stop.Do(func() { close(b.stopCh) })
	}()
	defer b.close()

	if b.Fault.Fired() {
		<-ctx.Done()
		return framework.ErrHalted
	}
	glog.Infof("device %s started: %d tasks", b.Config.DeviceID, len(b.Kernel.Tasks()))
	runner := framework.NewRunnerWith(ctx).Go(b.runners...)
	err := b.Kernel.Run(ctx)
	cancel()
	if rerr := runner.Wait(); rerr != nil {
		glog.Warningf("mirror: %v", rerr)
	}
	return err
}

// Status describes the device.
func (b *Board) Status() string {
	mode, pos := b.Cell.Snapshot()
	return fmt.Sprintf("device=%s mode=%s position=%d halted=%v", b.Config.DeviceID, mode, pos, b.Kernel.Halted())
}

// park blocks an escalating goroutine until the board stops, then
// terminates it.
func (b *Board) park() {
	<-b.stopCh
	runtime.Goexit()
}

func (b *Board) close() {
	for _, c := range b.closers {
		c.Close()
	}
}
