// Package modbus mirrors telemetry samples into Modbus holding registers.
package modbus

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goburrow/modbus"

	"github.com/robotalks/opmode/pkg/telemetry"
)

// DefaultTimeout is the Modbus TCP request timeout.
const DefaultTimeout = time.Second

// RegisterWriter writes holding registers. modbus.Client implements it.
type RegisterWriter interface {
	WriteMultipleRegisters(address, quantity uint16, value []byte) ([]byte, error)
}

// Config configures the Modbus TCP endpoint.
type Config struct {
	Endpoint string
	UnitID   uint8
	Address  uint16
	Timeout  time.Duration
}

// Mirror writes [mode, position] starting at Address.
type Mirror struct {
	Address uint16

	lock    sync.Mutex
	writer  RegisterWriter
	handler *modbus.TCPClientHandler
}

// NewMirror connects to the endpoint.
func NewMirror(cfg Config) (*Mirror, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("modbus: endpoint required")
	}
	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout
	if h.Timeout == 0 {
		h.Timeout = DefaultTimeout
	}
	h.SlaveId = cfg.UnitID
	if err := h.Connect(); err != nil {
		return nil, err
	}
	return &Mirror{
		Address: cfg.Address,
		writer:  modbus.NewClient(h),
		handler: h,
	}, nil
}

// NewMirrorWith creates a Mirror on an existing writer.
func NewMirrorWith(w RegisterWriter, address uint16) *Mirror {
	return &Mirror{Address: address, writer: w}
}

// Registers returns the register values of a sample.
func Registers(s telemetry.Sample) []uint16 {
	return []uint16{uint16(s.Mode), uint16(s.Position)}
}

// Publish implements telemetry.Mirror.
func (m *Mirror) Publish(ctx context.Context, s telemetry.Sample) error {
	regs := Registers(s)
	m.lock.Lock()
	defer m.lock.Unlock()
	_, err := m.writer.WriteMultipleRegisters(m.Address, uint16(len(regs)), packRegisters(regs))
	return err
}

// Close implements io.Closer.
func (m *Mirror) Close() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.handler != nil {
		return m.handler.Close()
	}
	return nil
}

func packRegisters(regs []uint16) []byte {
	out := make([]byte, len(regs)*2)
	for i, r := range regs {
		out[2*i] = byte(r >> 8)
		out[2*i+1] = byte(r)
	}
	return out
}
