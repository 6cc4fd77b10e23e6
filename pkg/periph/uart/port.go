// Package uart provides UART links over host transports.
package uart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/opmode/pkg/framework"
	"github.com/robotalks/opmode/pkg/periph"
)

// ErrClosed is returned by Transmit once the port is closed.
var ErrClosed = errors.New("uart closed")

// Port implements periph.UART on an io.Writer. A timed out write closes
// the port and nothing is written afterwards. Without a closer (stdout,
// stderr) a write already inside the writer can't be aborted and may
// still complete late.
type Port struct {
	name   string
	w      io.Writer
	closer io.Closer

	lock      sync.Mutex
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewPort wraps w. closer is closed to abort a write that times out,
// it may be nil.
func NewPort(name string, w io.Writer, closer io.Closer) *Port {
	return &Port{name: name, w: w, closer: closer}
}

// Name returns the name of the port.
func (p *Port) Name() string {
	return p.name
}

// Transmit implements periph.UART.
func (p *Port) Transmit(data []byte, timeout time.Duration) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.closed.Load() {
		return fmt.Errorf("uart %s: %w", p.name, ErrClosed)
	}
	err := framework.RunWithTimeout(timeout, p.abort, func() error {
		if p.closed.Load() {
			return ErrClosed
		}
		_, err := p.w.Write(data)
		return err
	})
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("uart %s: %w after %v", p.name, periph.ErrTimeout, timeout)
	}
	if err != nil {
		return fmt.Errorf("uart %s: %w", p.name, err)
	}
	return nil
}

func (p *Port) abort() {
	glog.Warningf("uart %s: transmit timed out, closing", p.name)
	p.Close()
}

// Close implements io.Closer.
func (p *Port) Close() (err error) {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		if p.closer != nil {
			err = p.closer.Close()
		}
	})
	return
}
