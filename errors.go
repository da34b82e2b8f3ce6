package psode

import (
	"errors"
	"fmt"
)

var (
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrInvalidBounds     = errors.New("lower bound must be finite and below upper bound")
	ErrNoParticles       = errors.New("particle count must be positive")
)

// ConfigError reports a malformed construction parameter.  Configuration
// errors are fatal for the run they belong to and are never retried.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("psode: invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// DimensionError is returned when a coordinate sequence does not have the
// length its consumer was built for.  It matches ErrDimensionMismatch with
// errors.Is.
type DimensionError struct {
	Want, Got int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("psode: %v: want %v coordinates, got %v", ErrDimensionMismatch, e.Want, e.Got)
}

func (e *DimensionError) Is(target error) bool { return target == ErrDimensionMismatch }
