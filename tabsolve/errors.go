package tabsolve

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

// ErrUnsupported is returned by Result.GetSummarySources, which the source
// algorithm never supports (§4.6, §7).
var ErrUnsupported = errors.New("tabsolve: operation not supported")

// SolverError reports a fatal solver-internal failure: a violated
// precondition or assertion (§7, "Argument violation"). It mirrors the
// teacher's *NodeError/*EngineError{Message, Code, Cause} shape.
type SolverError struct {
	// Message is a human-readable description of the failure.
	Message string
	// Code is a machine-readable failure code, e.g. "NEGATIVE_FACT",
	// "NIL_PROBLEM".
	Code string
	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *SolverError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tabsolve: %s: %s", e.Code, e.Message)
	}
	return "tabsolve: " + e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *SolverError) Unwrap() error { return e.Cause }

func assertf(cond bool, code, format string, args ...interface{}) {
	if cond {
		return
	}
	panic(&SolverError{
		Message: fmt.Sprintf(format, args...),
		Code:    code,
		Cause:   xerrors.Errorf("assertion failed: "+format, args...),
	})
}

// CancellationError is returned by Solve when the supplied context is
// cancelled mid-computation. It carries a valid, partially-populated
// Result (§4.1: "On cancellation, produces a partial Result and signals a
// cancellation error that carries the partial result") — the sum-typed
// error payload called for in §9 Design Notes, since Result normally
// borrows the solver's memo tables for its lifetime.
type CancellationError struct {
	// Cause is the context error that triggered cancellation
	// (context.Canceled or context.DeadlineExceeded).
	Cause error
	// Partial is the Result snapshot taken at the moment of cancellation.
	Partial *Result
}

// Error implements the error interface.
func (e *CancellationError) Error() string {
	return fmt.Sprintf("tabsolve: solve cancelled: %v", e.Cause)
}

// Unwrap returns the context error that triggered cancellation.
func (e *CancellationError) Unwrap() error { return e.Cause }

// evictionHookError aggregates failures from registered soft-eviction
// hooks (§5 "Memory management") using the same multierror accumulation
// pipeline.go uses to fan worker errors into one value, since a single
// eviction sweep may run several independent hooks.
func evictionHookError(errs []error) error {
	var merged *multierror.Error
	for _, err := range errs {
		if err != nil {
			merged = multierror.Append(merged, err)
		}
	}
	if merged == nil {
		return nil
	}
	return merged.ErrorOrNil()
}
