package sim

import (
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/opmode/pkg/periph"
)

// Servo is a simulated servo.
type Servo struct {
	lock    sync.Mutex
	enabled bool
	angle   uint8
	moves   int
}

// NewServo creates a disabled servo at 0 degrees.
func NewServo() *Servo {
	return &Servo{}
}

// SetEnabled implements periph.Servo.
func (s *Servo) SetEnabled(enabled bool) {
	s.lock.Lock()
	s.enabled = enabled
	s.lock.Unlock()
	glog.V(2).Infof("servo enabled: %v", enabled)
}

// SetPosition implements periph.Servo.
func (s *Servo) SetPosition(angle uint8) {
	if angle > periph.MaxAngle {
		angle = periph.MaxAngle
	}
	s.lock.Lock()
	s.angle = angle
	s.moves++
	s.lock.Unlock()
	glog.V(5).Infof("servo: %d deg pulse %v", angle, periph.PulseWidth(angle))
}

// Enabled reports whether the signal is enabled.
func (s *Servo) Enabled() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.enabled
}

// Angle returns the last commanded angle.
func (s *Servo) Angle() uint8 {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.angle
}

// Moves counts SetPosition calls.
func (s *Servo) Moves() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.moves
}
