package bench

import (
	psode "github.com/adameus03/pso-de"
	"github.com/adameus03/pso-de/swarm"
)

// Iterator is an optimizer that can be stepped and queried for its best
// point.
type Iterator interface {
	Iterate() error
	Best() (psode.Vector, float64)
}

type plain struct {
	*swarm.State
}

func (p plain) Iterate() error {
	p.State.Iterate()
	return nil
}

// Swarm adapts an untuned swarm to Iterator.
func Swarm(st *swarm.State) Iterator { return plain{st} }

// Benchmark steps it until its best value is within tol (relative to the
// known optimum, at least 0.001 absolute) of fn's optimum or maxiter steps
// have been taken.
func Benchmark(it Iterator, fn Func, tol float64, maxiter int) (best float64, niter int, err error) {
	_, best = it.Best()
	for niter < maxiter {
		if Solved(fn, best, tol) {
			return best, niter, nil
		}
		if err := it.Iterate(); err != nil {
			return best, niter, err
		}
		niter++
		_, best = it.Best()
	}
	return best, niter, nil
}

// Solved reports whether val is within tol of fn's optimum, using the same
// threshold as Benchmark.
func Solved(fn Func, val, tol float64) bool {
	optimum := fn.Optima()[0].Val
	thresh := tol * abs(optimum)
	if 0.001 > thresh {
		thresh = 0.001
	}
	return abs(optimum-val) < thresh
}
