package de

import (
	"sync"
	"sync/atomic"

	psode "github.com/adameus03/pso-de"
)

// Solver minimizes a target over its box.  The Vector returned by Minimize
// belongs to the solver and must be passed back to Release exactly once.
type Solver interface {
	Minimize(t *Target, cfg *Config, ctx Context) (Vector, error)
	Release(v *Vector)
}

// Result owns a solver's output buffer until it is released.
type Result struct {
	s        Solver
	v        Vector
	once     sync.Once
	released atomic.Bool
}

// Call validates t and cfg, runs the solver and wraps its output.  A result
// whose dimension differs from the target's is released before the error
// is returned.
func Call(s Solver, t *Target, cfg *Config, ctx Context) (*Result, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	v, err := s.Minimize(t, cfg, ctx)
	if err != nil {
		return nil, err
	}
	r := &Result{s: s, v: v}
	if v.Dims != t.Dims || v.Coords == nil {
		r.Release()
		return nil, &BoundaryError{
			Op:  "minimize",
			Err: &psode.DimensionError{Want: int(t.Dims), Got: int(v.Dims)},
		}
	}
	return r, nil
}

func (r *Result) Dims() int { return int(r.v.Dims) }

// Coords copies the result out of the solver's buffer.
func (r *Result) Coords() ([]float64, error) {
	if r.released.Load() {
		return nil, ErrReleased
	}
	return r.v.view().Copy(), nil
}

// Release hands the buffer back to the solver.  Only the first call has any
// effect.
func (r *Result) Release() {
	r.once.Do(func() {
		r.released.Store(true)
		r.s.Release(&r.v)
	})
}

// Close is Release that reports ErrDoubleRelease when the buffer was
// already released.
func (r *Result) Close() error {
	if r.released.Load() {
		return ErrDoubleRelease
	}
	r.Release()
	return nil
}
