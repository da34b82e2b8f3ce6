// Package bench provides benchmark optimization functions from
// http://en.wikipedia.org/wiki/Test_functions_for_optimization and tools for
// running optimizers against them.
package bench

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	psode "github.com/adameus03/pso-de"
)

var (
	sin  = math.Sin
	cos  = math.Cos
	abs  = math.Abs
	exp  = math.Exp
	sqrt = math.Sqrt
	pow  = math.Pow
)

var ErrUnknownFunc = errors.New("bench: unknown function")

// Optimum is a known global minimum.
type Optimum struct {
	Pos psode.Vector
	Val float64
}

type Func interface {
	psode.Problem
	Optima() []Optimum
}

func uniform(n int, v float64) psode.Vector {
	x := make([]float64, n)
	for i := range x {
		x[i] = v
	}
	return psode.Vec(x...)
}

type Sphere struct{ NDim int }

func (fn Sphere) Name() string         { return fmt.Sprintf("sphere_%vD", fn.NDim) }
func (fn Sphere) Dims() int            { return fn.NDim }
func (fn Sphere) Bounds() psode.Bounds { return psode.Bounds{Lower: -10, Upper: 10} }

func (fn Sphere) Objective(v psode.Vector) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}
	tot := 0.0
	for i := 0; i < v.Len(); i++ {
		tot += v.At(i) * v.At(i)
	}
	return tot
}

func (fn Sphere) Optima() []Optimum {
	return []Optimum{{Pos: psode.Zero(fn.NDim), Val: 0}}
}

// ShiftedSphere is the sphere moved so that coordinate i of the optimum is
// i+1.
type ShiftedSphere struct{ NDim int }

func (fn ShiftedSphere) Name() string { return fmt.Sprintf("shifted_sphere_%vD", fn.NDim) }
func (fn ShiftedSphere) Dims() int    { return fn.NDim }

func (fn ShiftedSphere) Bounds() psode.Bounds {
	return psode.Bounds{Lower: -10, Upper: math.Max(10, float64(fn.NDim+5))}
}

func (fn ShiftedSphere) Objective(v psode.Vector) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}
	tot := 0.0
	for i := 0; i < v.Len(); i++ {
		d := v.At(i) - float64(i+1)
		tot += d * d
	}
	return tot
}

func (fn ShiftedSphere) Optima() []Optimum {
	x := make([]float64, fn.NDim)
	for i := range x {
		x[i] = float64(i + 1)
	}
	return []Optimum{{Pos: psode.Vec(x...), Val: 0}}
}

type Ackley struct{ NDim int }

func (fn Ackley) Name() string         { return fmt.Sprintf("ackley_%vD", fn.NDim) }
func (fn Ackley) Dims() int            { return fn.NDim }
func (fn Ackley) Bounds() psode.Bounds { return psode.Bounds{Lower: -32.768, Upper: 32.768} }

func (fn Ackley) Objective(v psode.Vector) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}
	sum1, sum2 := 0.0, 0.0
	for i := 0; i < v.Len(); i++ {
		x := v.At(i)
		sum1 += x * x
		sum2 += cos(2 * math.Pi * x)
	}
	n := float64(v.Len())
	return -20*exp(-0.2*sqrt(sum1/n)) - exp(sum2/n) + 20 + math.E
}

func (fn Ackley) Optima() []Optimum {
	return []Optimum{{Pos: psode.Zero(fn.NDim), Val: 0}}
}

type Rastrigin struct{ NDim int }

func (fn Rastrigin) Name() string         { return fmt.Sprintf("rastrigin_%vD", fn.NDim) }
func (fn Rastrigin) Dims() int            { return fn.NDim }
func (fn Rastrigin) Bounds() psode.Bounds { return psode.Bounds{Lower: -5.12, Upper: 5.12} }

func (fn Rastrigin) Objective(v psode.Vector) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}
	tot := 0.0
	for i := 0; i < v.Len(); i++ {
		x := v.At(i)
		tot += x*x - 10*cos(2*math.Pi*x) + 10
	}
	return tot
}

func (fn Rastrigin) Optima() []Optimum {
	return []Optimum{{Pos: psode.Zero(fn.NDim), Val: 0}}
}

// Weierstrass uses a = 0.5, b = 3 and 20 terms.
type Weierstrass struct{ NDim int }

const (
	weierA    = 0.5
	weierB    = 3.0
	weierKmax = 20
)

func (fn Weierstrass) Name() string         { return fmt.Sprintf("weierstrass_%vD", fn.NDim) }
func (fn Weierstrass) Dims() int            { return fn.NDim }
func (fn Weierstrass) Bounds() psode.Bounds { return psode.Bounds{Lower: -0.5, Upper: 0.5} }

func (fn Weierstrass) Objective(v psode.Vector) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}
	double := 0.0
	for i := 0; i < v.Len(); i++ {
		for k := 0; k < weierKmax; k++ {
			double += pow(weierA, float64(k)) * cos(2*math.Pi*pow(weierB, float64(k))*(v.At(i)+0.5))
		}
	}
	single := 0.0
	for k := 0; k < weierKmax; k++ {
		single += pow(weierA, float64(k)) * cos(2*math.Pi*pow(weierB, float64(k))*0.5)
	}
	return double - float64(v.Len())*single
}

func (fn Weierstrass) Optima() []Optimum {
	return []Optimum{{Pos: psode.Zero(fn.NDim), Val: 0}}
}

type Styblinski struct{ NDim int }

func (fn Styblinski) Name() string         { return fmt.Sprintf("styblinski_%vD", fn.NDim) }
func (fn Styblinski) Dims() int            { return fn.NDim }
func (fn Styblinski) Bounds() psode.Bounds { return psode.Bounds{Lower: -5, Upper: 5} }

func (fn Styblinski) Objective(v psode.Vector) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}
	tot := 0.0
	for i := 0; i < v.Len(); i++ {
		x := v.At(i)
		tot += pow(x, 4) - 16*x*x + 5*x
	}
	return tot / 2
}

func (fn Styblinski) Optima() []Optimum {
	return []Optimum{{Pos: uniform(fn.NDim, -2.903534), Val: -39.16599 * float64(fn.NDim)}}
}

type Rosenbrock struct{ NDim int }

func (fn Rosenbrock) Name() string         { return fmt.Sprintf("rosenbrock_%vD", fn.NDim) }
func (fn Rosenbrock) Dims() int            { return fn.NDim }
func (fn Rosenbrock) Bounds() psode.Bounds { return psode.Bounds{Lower: -30, Upper: 30} }

func (fn Rosenbrock) Objective(v psode.Vector) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}
	tot := 0.0
	for i := 0; i < v.Len()-1; i++ {
		x, y := v.At(i), v.At(i+1)
		tot += 100*(y-x*x)*(y-x*x) + (x-1)*(x-1)
	}
	return tot
}

func (fn Rosenbrock) Optima() []Optimum {
	return []Optimum{{Pos: uniform(fn.NDim, 1), Val: 0}}
}

// InsideBounds reports whether v lies in fn's box.
func InsideBounds(v psode.Vector, fn psode.Problem) bool {
	return v.Len() == fn.Dims() && fn.Bounds().Contains(v)
}

var ndim = map[string]func(n int) Func{
	"sphere":         func(n int) Func { return Sphere{n} },
	"shifted_sphere": func(n int) Func { return ShiftedSphere{n} },
	"ackley":         func(n int) Func { return Ackley{n} },
	"rastrigin":      func(n int) Func { return Rastrigin{n} },
	"weierstrass":    func(n int) Func { return Weierstrass{n} },
	"styblinski":     func(n int) Func { return Styblinski{n} },
	"rosenbrock":     func(n int) Func { return Rosenbrock{n} },
}

// Lookup returns the named function.  dims is used by the N-dimensional
// functions and must be 2 (or 0) for the planar ones.
func Lookup(name string, dims int) (Func, error) {
	key := strings.ToLower(name)
	if mk, ok := ndim[key]; ok {
		if dims <= 0 {
			return nil, &psode.ConfigError{Field: "dimensions of " + name, Err: psode.ErrDimensionMismatch}
		}
		return mk(dims), nil
	}
	if fn, ok := planar[key]; ok {
		if dims != 0 && dims != 2 {
			return nil, &psode.DimensionError{Want: 2, Got: dims}
		}
		return fn, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownFunc, name)
}

// Names lists every function Lookup knows, sorted.
func Names() []string {
	names := make([]string, 0, len(ndim)+len(planar))
	for name := range ndim {
		names = append(names, name)
	}
	for name := range planar {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
