package de

// Minimize searches [lo, hi]^dims for the minimum of fn(state, x) with s.
// The state is registered for the duration of the call, so fn sees it from
// inside the solver without it ever crossing the boundary.  The returned
// slice is a copy; the solver's buffer and the registration are released
// before Minimize returns, on success and on failure alike.
func Minimize[S any](s Solver, state *S, dims int, lo, hi float64, cfg Config, fn func(*S, []float64) float64) ([]float64, error) {
	ctx, err := Register(state, dims, fn)
	if err != nil {
		return nil, err
	}
	defer ctx.Delete()

	t := &Target{F: Invoke, Dims: uint32(dims), Lower: lo, Upper: hi}
	res, err := Call(s, t, &cfg, ctx)
	if err != nil {
		return nil, err
	}
	defer res.Release()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return res.Coords()
}
