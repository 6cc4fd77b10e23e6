// Package fault implements the terminal fault path.
package fault

import (
	"errors"
	"fmt"

	"github.com/robotalks/opmode/pkg/framework"
	"github.com/robotalks/opmode/pkg/opmode"
)

// Class classifies fatal errors.
type Class int

// Classes.
const (
	ClassPeripheral Class = iota + 1
	ClassResource
	ClassAssertion
)

// String implements fmt.Stringer.
func (c Class) String() string {
	switch c {
	case ClassPeripheral:
		return "peripheral"
	case ClassResource:
		return "resource"
	case ClassAssertion:
		return "assertion"
	}
	return "unknown"
}

// Error is a classified fatal error.
type Error struct {
	Class Class
	Op    string
	Err   error
}

// Error implements error.
func (e *Error) Error() string {
	return fmt.Sprintf("%s fault in %s: %v", e.Class, e.Op, e.Err)
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Peripheral wraps a peripheral I/O failure.
func Peripheral(op string, err error) error {
	return &Error{Class: ClassPeripheral, Op: op, Err: err}
}

// Resource wraps a resource exhaustion failure.
func Resource(op string, err error) error {
	return &Error{Class: ClassResource, Op: op, Err: err}
}

// Assertion wraps a violated invariant.
func Assertion(op string, err error) error {
	return &Error{Class: ClassAssertion, Op: op, Err: err}
}

// ClassOf classifies err. Unclassified errors are peripheral failures,
// the only kind raised at run time.
func ClassOf(err error) Class {
	var fe *Error
	switch {
	case errors.As(err, &fe):
		return fe.Class
	case errors.Is(err, framework.ErrResourceExhausted):
		return ClassResource
	case errors.Is(err, framework.ErrInvalidTask),
		errors.Is(err, framework.ErrKernelStarted),
		errors.Is(err, opmode.ErrWriterClaimed):
		return ClassAssertion
	}
	return ClassPeripheral
}
