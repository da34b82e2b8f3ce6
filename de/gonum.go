package de

import (
	"math"
	"sync/atomic"

	psode "github.com/adameus03/pso-de"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/optimize"
)

// GonumSolver satisfies the Solver contract with gonum's CMA-ES.  The
// population size of the config becomes the CMA-ES population, an
// AfterIters budget of n allows n*population evaluations and a
// WhenSatisfied threshold stops the search once reached.  Only
// PopulationSize and Stop are used; the DE rates have no CMA-ES
// counterpart.
type GonumSolver struct {
	// MaxGenerations bounds WhenSatisfied runs.  Zero means
	// DefaultMaxGenerations.
	MaxGenerations uint64
	Log            logrus.FieldLogger

	allocs, releases atomic.Int64
}

type thresholdConverger struct {
	acc float64
}

func (c thresholdConverger) Init(dim int) {}

func (c thresholdConverger) Converged(loc *optimize.Location) optimize.Status {
	if loc.F < c.acc {
		return optimize.FunctionThreshold
	}
	return optimize.NotTerminated
}

func (s *GonumSolver) Minimize(t *Target, cfg *Config, ctx Context) (Vector, error) {
	log := s.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	dims := int(t.Dims)
	box := psode.Bounds{Lower: t.Lower, Upper: t.Upper}
	clamp := func(x []float64) []float64 {
		y := make([]float64, len(x))
		for i, v := range x {
			y[i] = math.Min(math.Max(v, box.Lower), box.Upper)
		}
		return y
	}

	var best []float64
	bestVal := math.Inf(1)
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			y := clamp(x)
			val := psode.Fitness(t.F(NewView(y), ctx))
			if psode.Better(val, bestVal) {
				best, bestVal = y, val
			}
			return val
		},
	}

	gens := s.MaxGenerations
	if gens == 0 {
		gens = DefaultMaxGenerations
	}
	settings := &optimize.Settings{Converger: thresholdConverger{acc: math.Inf(-1)}}
	if n, ok := cfg.Stop.Iters(); ok {
		gens = n
	} else if acc, ok := cfg.Stop.Accuracy(); ok {
		settings.Converger = thresholdConverger{acc: acc}
	}
	settings.FuncEvaluations = budget(gens, cfg.PopulationSize)

	initX := make([]float64, dims)
	for i := range initX {
		initX[i] = box.Lower + box.Width()/2
	}
	method := &optimize.CmaEsChol{
		InitStepSize: box.Width() / 4,
		Population:   int(cfg.PopulationSize),
	}

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.WithError(err).Debug("cma-es ended")
	}
	if best == nil {
		if result == nil {
			return Vector{}, &BoundaryError{Op: "cma-es", Err: err}
		}
		best = clamp(result.X)
	}

	buf := make([]float64, dims)
	copy(buf, best)
	s.allocs.Add(1)
	return Vector{Coords: &buf[0], Dims: t.Dims}, nil
}

// budget returns gens*pop evaluations, saturating at math.MaxInt.
func budget(gens uint64, pop uint32) int {
	if pop == 0 {
		return 0
	}
	if gens > uint64(math.MaxInt)/uint64(pop) {
		return math.MaxInt
	}
	return int(gens * uint64(pop))
}

func (s *GonumSolver) Release(v *Vector) {
	if v.Coords == nil {
		return
	}
	s.releases.Add(1)
	v.Coords = nil
	v.Dims = 0
}

// Outstanding returns the number of result buffers not yet released.
func (s *GonumSolver) Outstanding() int64 { return s.allocs.Load() - s.releases.Load() }
