package fault

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/robotalks/opmode/pkg/opmode"
)

// Halter stops all tasks.
type Halter interface {
	Halt()
}

// Renderer shows the current mode.
type Renderer interface {
	Render() opmode.Mode
}

// Handler escalates fatal errors: it halts the kernel, forces the
// firmware fault mode, renders it and parks the caller forever.
type Handler struct {
	Kernel Halter
	Cell   *opmode.Cell
	// Indicator may be attached after the handler is created.
	Indicator Renderer
	// Park blocks the escalating goroutine. It defaults to blocking
	// forever.
	Park func()

	fired  atomic.Bool
	err    atomic.Value
	doneCh chan struct{}
}

// NewHandler creates a Handler.
func NewHandler(kernel Halter, cell *opmode.Cell) *Handler {
	return &Handler{
		Kernel: kernel,
		Cell:   cell,
		doneCh: make(chan struct{}),
	}
}

// Escalate implements framework.Escalator. Only the first caller
// performs the fault sequence, every caller parks.
func (h *Handler) Escalate(err error) {
	h.Raise(err)
	if h.Park != nil {
		h.Park()
		return
	}
	select {}
}

// Raise performs the fault sequence without parking. It reports false
// if a fault was already raised.
func (h *Handler) Raise(err error) bool {
	if !h.fired.CompareAndSwap(false, true) {
		return false
	}
	if h.Kernel != nil {
		h.Kernel.Halt()
	}
	h.Cell.ForceFault()
	if h.Indicator != nil {
		h.Indicator.Render()
	}
	var fe *Error
	if !errors.As(err, &fe) {
		fe = &Error{Class: ClassOf(err), Op: "run", Err: err}
	}
	h.err.Store(fe)
	glog.Errorf("%s (%s): %v", opmode.ErrorFirmwareFault, fe.Class, err)
	glog.Flush()
	close(h.doneCh)
	return true
}

// Assert escalates an assertion fault if cond is false.
func (h *Handler) Assert(cond bool, op string, format string, args ...interface{}) {
	if !cond {
		h.Escalate(Assertion(op, fmt.Errorf(format, args...)))
	}
}

// Fired reports whether a fault has been escalated.
func (h *Handler) Fired() bool {
	return h.fired.Load()
}

// Err returns the escalated error, classified.
func (h *Handler) Err() *Error {
	if e, ok := h.err.Load().(*Error); ok {
		return e
	}
	return nil
}

// Done is closed once the fault is shown.
func (h *Handler) Done() <-chan struct{} {
	return h.doneCh
}
