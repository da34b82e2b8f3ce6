//go:build !cgo || !nativede

package de

// NativeSolver is unavailable in this build.  Build with cgo enabled and
// the nativede tag, with libdifferential_evolution on the linker path.
type NativeSolver struct{}

func NewNativeSolver() (*NativeSolver, error) { return nil, ErrNativeUnavailable }

func (s *NativeSolver) Minimize(t *Target, cfg *Config, ctx Context) (Vector, error) {
	return Vector{}, ErrNativeUnavailable
}

func (s *NativeSolver) Release(v *Vector) {}

func (s *NativeSolver) Outstanding() int64 { return 0 }
