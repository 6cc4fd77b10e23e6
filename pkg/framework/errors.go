package framework

import (
	"errors"
	"strings"
)

var (
	// ErrHalted is returned by tasks once the kernel halts.
	ErrHalted = errors.New("halted")
	// ErrResourceExhausted indicates the kernel can't hold more tasks.
	ErrResourceExhausted = errors.New("resource exhausted")
	// ErrInvalidTask indicates a task is not properly configured.
	ErrInvalidTask = errors.New("invalid task")
	// ErrKernelStarted rejects task creation after start.
	ErrKernelStarted = errors.New("kernel already started")
)

// AggregatedError aggregates multiple errors.
type AggregatedError struct {
	Errors []error
}

// Error implements error
func (e *AggregatedError) Error() string {
	if len(e.Errors) == 0 {
		return ""
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := make([]string, len(e.Errors)+1)
	msg[0] = "Multiple errors:"
	for n, err := range e.Errors {
		msg[n+1] = err.Error()
	}
	return strings.Join(msg, "\n")
}

// Add adds errors to be aggregated. nil will be skipped.
func (e *AggregatedError) Add(errs ...error) *AggregatedError {
	for _, err := range errs {
		if err != nil {
			e.Errors = append(e.Errors, err)
		}
	}
	return e
}

// Aggregate returns aggregated error if any error happened.
func (e *AggregatedError) Aggregate() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// Unwrap exposes the aggregated errors to errors.Is and errors.As.
func (e *AggregatedError) Unwrap() []error {
	return e.Errors
}
