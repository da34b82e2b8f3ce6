package de

import (
	"sync"
	"sync/atomic"
	"time"

	psode "github.com/adameus03/pso-de"
	"github.com/sirupsen/logrus"
)

// DefaultMaxGenerations caps a WhenSatisfied run that never reaches its
// threshold.
const DefaultMaxGenerations = 10000

// GoSolver runs DE/rand_best/1/bin in process.  Each generation:
//
//   - reproduce: probe_i = lambda*best + (1-lambda)*x_i
//   - mutate:    probe_i += F*(x_r2 - x_r3), r2 != r3 != i, clamped to the box
//   - crossover: keep probe_i[j] where rand < CR or j == jrand, else x_i[j]
//   - select:    x_i = probe_i if probe_i is strictly better
//
// Objective values are cached per member so each generation costs one
// evaluation per member.  A GoSolver is safe for concurrent use.
type GoSolver struct {
	// MaxGenerations bounds WhenSatisfied runs.  Zero means
	// DefaultMaxGenerations.
	MaxGenerations uint64
	Log            logrus.FieldLogger

	mu  sync.Mutex
	rng *psode.Rand

	allocs, releases atomic.Int64
}

// NewGoSolver returns a solver whose runs are reproducible from seed.
func NewGoSolver(seed uint64) *GoSolver {
	return &GoSolver{rng: psode.NewRand(seed)}
}

func (s *GoSolver) stream() *psode.Rand {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rng == nil {
		s.rng = psode.NewRand(uint64(time.Now().UnixNano()))
	}
	return psode.NewRand(s.rng.Uint64())
}

func (s *GoSolver) Minimize(t *Target, cfg *Config, ctx Context) (Vector, error) {
	rng := s.stream()
	log := s.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	np := int(cfg.PopulationSize)
	dims := int(t.Dims)
	box := psode.Bounds{Lower: t.Lower, Upper: t.Upper}
	eval := func(x []float64) float64 { return psode.Fitness(t.F(NewView(x), ctx)) }

	pop := make([][]float64, np)
	vals := make([]float64, np)
	for i := range pop {
		pop[i] = box.Sample(rng, dims).Slice()
		vals[i] = eval(pop[i])
	}
	probe := make([]float64, dims)

	maxGen := s.MaxGenerations
	if maxGen == 0 {
		maxGen = DefaultMaxGenerations
	}
	iters, fixed := cfg.Stop.Iters()
	acc, _ := cfg.Stop.Accuracy()

	var gen uint64
	for {
		best := bestIndex(vals)
		for i := 0; i < np; i++ {
			for j := range probe {
				probe[j] = cfg.Lambda*pop[best][j] + (1-cfg.Lambda)*pop[i][j]
			}

			r2 := rng.IntN(np - 1)
			if r2 >= i {
				r2++
			}
			r3 := rng.IntN(np - 2)
			for _, taken := range sorted(i, r2) {
				if r3 >= taken {
					r3++
				}
			}
			for j := range probe {
				probe[j] += cfg.DifferentialWeight * (pop[r2][j] - pop[r3][j])
				if probe[j] < box.Lower {
					probe[j] = box.Lower
				} else if probe[j] > box.Upper {
					probe[j] = box.Upper
				}
			}

			jrand := rng.IntN(dims)
			for j := range probe {
				if rng.Float64() >= cfg.CrossoverProbability && j != jrand {
					probe[j] = pop[i][j]
				}
			}

			if val := eval(probe); psode.Better(val, vals[i]) {
				copy(pop[i], probe)
				vals[i] = val
			}
		}
		gen++

		bestVal := vals[bestIndex(vals)]
		log.WithFields(logrus.Fields{"gen": gen, "best": bestVal}).Trace("de generation")
		if fixed && gen >= iters {
			break
		}
		if !fixed && (bestVal < acc || gen >= maxGen) {
			break
		}
	}

	best := pop[bestIndex(vals)]
	buf := make([]float64, dims)
	copy(buf, best)
	s.allocs.Add(1)
	return Vector{Coords: &buf[0], Dims: t.Dims}, nil
}

func (s *GoSolver) Release(v *Vector) {
	if v.Coords == nil {
		return
	}
	s.releases.Add(1)
	v.Coords = nil
	v.Dims = 0
}

// Outstanding returns the number of result buffers not yet released.
func (s *GoSolver) Outstanding() int64 { return s.allocs.Load() - s.releases.Load() }

func bestIndex(vals []float64) int {
	best := 0
	for i, v := range vals[1:] {
		if psode.Better(v, vals[best]) {
			best = i + 1
		}
	}
	return best
}

func sorted(a, b int) [2]int {
	if a > b {
		return [2]int{b, a}
	}
	return [2]int{a, b}
}
