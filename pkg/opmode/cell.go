package opmode

import (
	"errors"
	"sync/atomic"
)

// MaxPosition is the upper bound of the actuator angle in degrees.
const MaxPosition = 180

// ErrWriterClaimed indicates a second writer for a single-writer field.
var ErrWriterClaimed = errors.New("writer already claimed")

// Cell holds the mode and the actuator position shared between tasks.
// Each field is a single atomic word with exactly one writer, readers
// never lock.
type Cell struct {
	mode     atomic.Uint32
	position atomic.Uint32

	modeWriter     atomic.Bool
	positionWriter atomic.Bool
}

// NewCell creates a Cell in Unknown mode at position 0.
func NewCell() *Cell {
	return &Cell{}
}

// ClaimModeWriter registers the sole mode writer.
func (c *Cell) ClaimModeWriter() error {
	if !c.modeWriter.CompareAndSwap(false, true) {
		return ErrWriterClaimed
	}
	return nil
}

// ClaimPositionWriter registers the sole position writer.
func (c *Cell) ClaimPositionWriter() error {
	if !c.positionWriter.CompareAndSwap(false, true) {
		return ErrWriterClaimed
	}
	return nil
}

// Mode reads the current mode.
func (c *Cell) Mode() Mode {
	return Mode(c.mode.Load())
}

// SetMode stores mode and reports whether the stored value changed.
// ErrorFirmwareFault is never replaced.
func (c *Cell) SetMode(mode Mode) bool {
	for {
		old := c.mode.Load()
		if Mode(old) == ErrorFirmwareFault || Mode(old) == mode {
			return false
		}
		if c.mode.CompareAndSwap(old, uint32(mode)) {
			return true
		}
	}
}

// ForceFault stores ErrorFirmwareFault unconditionally.
func (c *Cell) ForceFault() {
	c.mode.Store(uint32(ErrorFirmwareFault))
}

// Position reads the actuator angle.
func (c *Cell) Position() uint8 {
	return uint8(c.position.Load())
}

// SetPosition stores the actuator angle, clamped to MaxPosition.
func (c *Cell) SetPosition(angle uint8) {
	if angle > MaxPosition {
		angle = MaxPosition
	}
	c.position.Store(uint32(angle))
}

// Snapshot reads both fields. They may come from different writes.
func (c *Cell) Snapshot() (Mode, uint8) {
	return c.Mode(), c.Position()
}
