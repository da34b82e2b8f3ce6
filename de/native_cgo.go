//go:build cgo && nativede

package de

/*
#cgo LDFLAGS: -ldifferential_evolution
#include <stddef.h>
#include "de_bridge.h"

extern double deTrampoline(vector_t, void *);

static RdR_Function de_trampoline(void) { return (RdR_Function)deTrampoline; }

static size_t offset_stop(void) { return offsetof(de_config_t, stop_condition); }
static size_t offset_limit(void) { return offsetof(de_stop_condition_t, limitation); }
*/
import "C"

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// NativeSolver calls de_minimum from the differential_evolution C library.
// Every callback from C enters through a single exported trampoline that
// resolves the context pointer back to the registered Go function.
type NativeSolver struct {
	allocs, releases atomic.Int64
}

// NewNativeSolver checks that the Go descriptors share the C layout before
// returning a solver.
func NewNativeSolver() (*NativeSolver, error) {
	checks := []struct {
		name      string
		got, want uintptr
	}{
		{"sizeof(vector_t)", unsafe.Sizeof(Vector{}), uintptr(C.sizeof_vector_t)},
		{"sizeof(de_stop_condition_t)", unsafe.Sizeof(StopCondition{}), uintptr(C.sizeof_de_stop_condition_t)},
		{"sizeof(de_config_t)", unsafe.Sizeof(Config{}), uintptr(C.sizeof_de_config_t)},
		{"offsetof(stop_condition)", unsafe.Offsetof(Config{}.Stop), uintptr(C.offset_stop())},
		{"offsetof(limitation)", unsafe.Offsetof(StopCondition{}.limit), uintptr(C.offset_limit())},
	}
	for _, c := range checks {
		if c.got != c.want {
			return nil, fmt.Errorf("%w: %v is %v, want %v", ErrLayoutMismatch, c.name, c.got, c.want)
		}
	}
	return &NativeSolver{}, nil
}

func (s *NativeSolver) Minimize(t *Target, cfg *Config, ctx Context) (Vector, error) {
	f := t.F
	frame, err := register(nil, int(t.Dims), func(x View) float64 { return f(x, ctx) })
	if err != nil {
		return Vector{}, err
	}
	defer frame.Delete()

	ct := C.de_optimization_target_t{
		f:              C.de_trampoline(),
		num_dimensions: C.uint32_t(t.Dims),
		left_bound:     C.double(t.Lower),
		right_bound:    C.double(t.Upper),
	}
	h := frame
	cv := C.de_minimum(&ct, (*C.de_config_t)(unsafe.Pointer(cfg)), unsafe.Pointer(&h))

	v := *(*Vector)(unsafe.Pointer(&cv))
	if v.Coords != nil {
		s.allocs.Add(1)
	}
	if err := frame.Err(); err != nil {
		s.Release(&v)
		return Vector{}, err
	}
	return v, nil
}

func (s *NativeSolver) Release(v *Vector) {
	if v.Coords == nil {
		return
	}
	C.de_vector_free_coordinates((*C.vector_t)(unsafe.Pointer(v)))
	s.releases.Add(1)
	v.Coords = nil
	v.Dims = 0
}

// Outstanding returns the number of result buffers not yet released.
func (s *NativeSolver) Outstanding() int64 { return s.allocs.Load() - s.releases.Load() }
