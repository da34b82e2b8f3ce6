package psode

import "math/rand/v2"

// Rng is the source of uniform draws in [0, 1) used for particle placement
// and movement.
type Rng interface {
	Float64() float64
}

// Rand is a seedable random stream that can be cloned.  A clone continues
// the exact sequence of its parent without sharing state with it, so
// independent copies of a swarm stay reproducible.
type Rand struct {
	src *rand.PCG
	r   *rand.Rand
}

func NewRand(seed uint64) *Rand {
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &Rand{src: src, r: rand.New(src)}
}

func (r *Rand) Float64() float64 { return r.r.Float64() }

// IntN returns a uniform integer in [0, n).
func (r *Rand) IntN(n int) int { return r.r.IntN(n) }

func (r *Rand) Uint64() uint64 { return r.r.Uint64() }

func (r *Rand) Clone() *Rand {
	src := *r.src
	return &Rand{src: &src, r: rand.New(&src)}
}
