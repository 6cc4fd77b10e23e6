package sim

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robotalks/opmode/pkg/periph"
)

// UART records transmitted frames.
type UART struct {
	lock   sync.Mutex
	frames []string
	stall  bool
	err    error
	sentCh chan struct{}
}

// NewUART creates a healthy UART.
func NewUART() *UART {
	return &UART{sentCh: make(chan struct{}, 1)}
}

// Stall makes every following Transmit time out.
func (u *UART) Stall() {
	u.lock.Lock()
	u.stall = true
	u.lock.Unlock()
}

// Fail makes every following Transmit return err.
func (u *UART) Fail(err error) {
	u.lock.Lock()
	u.err = err
	u.lock.Unlock()
}

// Transmit implements periph.UART.
func (u *UART) Transmit(p []byte, timeout time.Duration) error {
	u.lock.Lock()
	stall, err := u.stall, u.err
	u.lock.Unlock()
	if stall {
		time.Sleep(timeout)
		return fmt.Errorf("sim uart: %w after %v", periph.ErrTimeout, timeout)
	}
	if err != nil {
		return err
	}
	u.lock.Lock()
	u.frames = append(u.frames, string(p))
	u.lock.Unlock()
	select {
	case u.sentCh <- struct{}{}:
	default:
	}
	return nil
}

// Frames returns the transmitted frames.
func (u *UART) Frames() []string {
	u.lock.Lock()
	defer u.lock.Unlock()
	return append([]string(nil), u.frames...)
}

// Output returns everything transmitted.
func (u *UART) Output() string {
	return strings.Join(u.Frames(), "")
}

// SentCh receives a token after a successful transmit.
func (u *UART) SentCh() <-chan struct{} {
	return u.sentCh
}
