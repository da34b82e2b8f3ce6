package de

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig     = errors.New("invalid solver configuration")
	ErrReleased          = errors.New("de: result already released")
	ErrDoubleRelease     = errors.New("de: result released twice")
	ErrContextBusy       = errors.New("de: state already has an outstanding minimization")
	ErrUnknownContext    = errors.New("de: unknown context")
	ErrNativeUnavailable = errors.New("de: native solver not built (requires cgo and the nativede build tag)")
	ErrLayoutMismatch    = errors.New("de: Go descriptors do not match the native layout")
)

// BoundaryError records a failure that happened on the far side of a solver
// call, such as a panicking callback or a result of the wrong dimension.
type BoundaryError struct {
	Op  string
	Err error
}

func (e *BoundaryError) Error() string {
	return fmt.Sprintf("de: %s: %v", e.Op, e.Err)
}

func (e *BoundaryError) Unwrap() error { return e.Err }
