//go:build cgo && nativede

package de

/*
#include "de_bridge.h"
*/
import "C"

import (
	"unsafe"
)

//export deTrampoline
func deTrampoline(v C.vector_t, ctx unsafe.Pointer) C.double {
	h := *(*Context)(ctx)
	x := Vector{Coords: (*float64)(unsafe.Pointer(v.coordinates)), Dims: uint32(v.num_dimensions)}
	return C.double(Invoke(x.view(), h))
}
