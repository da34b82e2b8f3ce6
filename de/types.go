// Package de minimizes functions over a box with differential evolution.
//
// The types in this package mirror the call descriptors of the native
// differential_evolution library field for field, so a Config or Vector can
// be handed to C without conversion.  Solvers implemented in Go follow the
// same contract: the result buffer is owned by the solver until Release.
package de

import (
	"fmt"
	"math"
	"unsafe"

	psode "github.com/adameus03/pso-de"
)

// Vector is a coordinate buffer returned by a Solver.  Coords points at
// Dims consecutive float64 values owned by the solver that produced it.
type Vector struct {
	Coords *float64
	Dims   uint32
}

func (v Vector) view() View {
	if v.Coords == nil {
		return View{}
	}
	return View{x: unsafe.Slice(v.Coords, int(v.Dims))}
}

// View is a read-only window over a coordinate buffer.
type View struct {
	x []float64
}

// NewView wraps x without copying it.
func NewView(x []float64) View { return View{x: x} }

func (v View) Len() int { return len(v.x) }

func (v View) At(i int) float64 { return v.x[i] }

// Copy returns the coordinates in a freshly allocated slice.
func (v View) Copy() []float64 {
	x := make([]float64, len(v.x))
	copy(x, v.x)
	return x
}

type StopKind uint32

const (
	StopAfterIters StopKind = iota
	StopWhenSatisfied
)

func (k StopKind) String() string {
	switch k {
	case StopAfterIters:
		return "after-iters"
	case StopWhenSatisfied:
		return "when-satisfied"
	}
	return fmt.Sprintf("StopKind(%d)", uint32(k))
}

// StopCondition tells a solver when to return.  It holds either an
// iteration budget or an accuracy threshold in a single 8-byte slot; the
// accessors check which before decoding it.
type StopCondition struct {
	kind  StopKind
	limit uint64
}

// AfterIters stops after n generations.
func AfterIters(n uint64) StopCondition {
	return StopCondition{kind: StopAfterIters, limit: n}
}

// WhenSatisfied stops once the best value found drops below acc.
func WhenSatisfied(acc float64) StopCondition {
	return StopCondition{kind: StopWhenSatisfied, limit: math.Float64bits(acc)}
}

func (c StopCondition) Kind() StopKind { return c.kind }

func (c StopCondition) Iters() (uint64, bool) {
	if c.kind != StopAfterIters {
		return 0, false
	}
	return c.limit, true
}

func (c StopCondition) Accuracy() (float64, bool) {
	if c.kind != StopWhenSatisfied {
		return 0, false
	}
	return math.Float64frombits(c.limit), true
}

func (c StopCondition) String() string {
	if n, ok := c.Iters(); ok {
		return fmt.Sprintf("after %d iterations", n)
	}
	if acc, ok := c.Accuracy(); ok {
		return fmt.Sprintf("when below %g", acc)
	}
	return c.kind.String()
}

// Config holds the DE/rand_best/1/bin parameters.
type Config struct {
	PopulationSize uint32
	// CrossoverProbability (CR) is in [0, 1].
	CrossoverProbability float64
	// DifferentialWeight (F) is in (0, 2].
	DifferentialWeight float64
	// Lambda weights the best member against the current one when the
	// population is reproduced.  It is in [0, 1].
	Lambda float64
	Stop   StopCondition
}

// DefaultConfig is the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		PopulationSize:       20,
		CrossoverProbability: 0.9,
		DifferentialWeight:   0.8,
		Lambda:               0.5,
		Stop:                 AfterIters(10),
	}
}

func (c *Config) Validate() error {
	switch {
	case c.PopulationSize < 4:
		return configErr("population size", c.PopulationSize)
	case !(c.CrossoverProbability >= 0 && c.CrossoverProbability <= 1):
		return configErr("crossover probability", c.CrossoverProbability)
	case !(c.DifferentialWeight > 0 && c.DifferentialWeight <= 2):
		return configErr("differential weight", c.DifferentialWeight)
	case !(c.Lambda >= 0 && c.Lambda <= 1):
		return configErr("lambda", c.Lambda)
	}

	switch c.Stop.kind {
	case StopAfterIters:
		if c.Stop.limit == 0 {
			return configErr("stop condition", c.Stop)
		}
	case StopWhenSatisfied:
		if acc, _ := c.Stop.Accuracy(); math.IsNaN(acc) {
			return configErr("stop condition", c.Stop)
		}
	default:
		return configErr("stop condition", c.Stop)
	}
	return nil
}

func configErr(field string, val interface{}) error {
	return &psode.ConfigError{Field: fmt.Sprintf("%v %v", field, val), Err: ErrInvalidConfig}
}

// Callback evaluates x on behalf of the registered context ctx.
type Callback func(x View, ctx Context) float64

// Target describes the function to minimize and its box.
type Target struct {
	F     Callback
	Dims  uint32
	Lower float64
	Upper float64
}

func (t *Target) validate() error {
	if t.F == nil {
		return &psode.ConfigError{Field: "target function", Err: ErrInvalidConfig}
	}
	if t.Dims == 0 {
		return &psode.ConfigError{Field: "target dimensions", Err: psode.ErrDimensionMismatch}
	}
	_, err := psode.NewBounds(t.Lower, t.Upper)
	return err
}
