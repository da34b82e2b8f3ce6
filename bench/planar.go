package bench

import (
	"math"

	psode "github.com/adameus03/pso-de"
)

// Planar is a two-dimensional benchmark function.
type Planar struct {
	name   string
	bounds psode.Bounds
	f      func(x, y float64) float64
	optima []Optimum
}

func (fn Planar) Name() string         { return fn.name }
func (fn Planar) Dims() int            { return 2 }
func (fn Planar) Bounds() psode.Bounds { return fn.bounds }

func (fn Planar) Objective(v psode.Vector) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}
	return fn.f(v.At(0), v.At(1))
}

func (fn Planar) Optima() []Optimum {
	opt := make([]Optimum, len(fn.optima))
	copy(opt, fn.optima)
	return opt
}

func at(x, y, val float64) Optimum { return Optimum{Pos: psode.Vec(x, y), Val: val} }

func sq(x float64) float64 { return x * x }

var (
	Beale = Planar{
		name:   "beale",
		bounds: psode.Bounds{Lower: -4.5, Upper: 4.5},
		f: func(x, y float64) float64 {
			return sq(1.5-x+x*y) + sq(2.25-x+x*y*y) + sq(2.625-x+x*y*y*y)
		},
		optima: []Optimum{at(3, 0.5, 0)},
	}

	GoldsteinPrice = Planar{
		name:   "goldstein_price",
		bounds: psode.Bounds{Lower: -2, Upper: 2},
		f: func(x, y float64) float64 {
			return (1 + sq(x+y+1)*(19-14*x+3*x*x-14*y+6*x*y+3*y*y)) *
				(30 + sq(2*x-3*y)*(18-32*x+12*x*x+48*y-36*x*y+27*y*y))
		},
		optima: []Optimum{at(0, -1, 3)},
	}

	Booth = Planar{
		name:   "booth",
		bounds: psode.Bounds{Lower: -10, Upper: 10},
		f: func(x, y float64) float64 {
			return sq(x+2*y-7) + sq(2*x+y-5)
		},
		optima: []Optimum{at(1, 3, 0)},
	}

	// Bukin is searched over a square covering its usual domain
	// x in [-15, -5], y in [-3, 3].
	Bukin = Planar{
		name:   "bukin",
		bounds: psode.Bounds{Lower: -15, Upper: 3},
		f: func(x, y float64) float64 {
			return 100*sqrt(abs(y-0.01*x*x)) + 0.01*abs(x+10)
		},
		optima: []Optimum{at(-10, 1, 0)},
	}

	Matyas = Planar{
		name:   "matyas",
		bounds: psode.Bounds{Lower: -10, Upper: 10},
		f: func(x, y float64) float64 {
			return 0.26*(x*x+y*y) - 0.48*x*y
		},
		optima: []Optimum{at(0, 0, 0)},
	}

	Levi = Planar{
		name:   "levi",
		bounds: psode.Bounds{Lower: -10, Upper: 10},
		f: func(x, y float64) float64 {
			return sq(sin(3*math.Pi*x)) +
				sq(x-1)*(1+sq(sin(3*math.Pi*y))) +
				sq(y-1)*(1+sq(sin(2*math.Pi*y)))
		},
		optima: []Optimum{at(1, 1, 0)},
	}

	Himmelblau = Planar{
		name:   "himmelblau",
		bounds: psode.Bounds{Lower: -5, Upper: 5},
		f: func(x, y float64) float64 {
			return sq(x*x+y-11) + sq(x+y*y-7)
		},
		optima: []Optimum{
			at(3, 2, 0),
			at(-2.805118, 3.131312, 0),
			at(-3.779310, -3.283186, 0),
			at(3.584428, -1.848126, 0),
		},
	}

	ThreeHump = Planar{
		name:   "three_humps",
		bounds: psode.Bounds{Lower: -5, Upper: 5},
		f: func(x, y float64) float64 {
			return 2*x*x - 1.05*pow(x, 4) + pow(x, 6)/6 + x*y + y*y
		},
		optima: []Optimum{at(0, 0, 0)},
	}

	Easom = Planar{
		name:   "easom",
		bounds: psode.Bounds{Lower: -100, Upper: 100},
		f: func(x, y float64) float64 {
			return -cos(x) * cos(y) * exp(-(sq(x-math.Pi) + sq(y-math.Pi)))
		},
		optima: []Optimum{at(math.Pi, math.Pi, -1)},
	}

	CrossTray = Planar{
		name:   "cross_in_tray",
		bounds: psode.Bounds{Lower: -10, Upper: 10},
		f: func(x, y float64) float64 {
			return -.0001 * pow(abs(sin(x)*sin(y)*exp(abs(100-sqrt(x*x+y*y)/math.Pi)))+1, 0.1)
		},
		optima: []Optimum{
			at(1.34941, -1.34941, -2.06261),
			at(1.34941, 1.34941, -2.06261),
			at(-1.34941, 1.34941, -2.06261),
			at(-1.34941, -1.34941, -2.06261),
		},
	}

	Eggholder = Planar{
		name:   "eggholder",
		bounds: psode.Bounds{Lower: -512, Upper: 512},
		f: func(x, y float64) float64 {
			return -(y+47)*sin(sqrt(abs(y+x/2+47))) - x*sin(sqrt(abs(x-(y+47))))
		},
		optima: []Optimum{at(512, 404.2319, -959.6407)},
	}

	HolderTable = Planar{
		name:   "holder",
		bounds: psode.Bounds{Lower: -10, Upper: 10},
		f: func(x, y float64) float64 {
			return -abs(sin(x) * cos(y) * exp(abs(1-sqrt(x*x+y*y)/math.Pi)))
		},
		optima: []Optimum{
			at(8.05502, 9.66459, -19.2085),
			at(-8.05502, 9.66459, -19.2085),
			at(8.05502, -9.66459, -19.2085),
			at(-8.05502, -9.66459, -19.2085),
		},
	}

	// McCormick is searched over a square covering its usual domain
	// x in [-1.5, 4], y in [-3, 4].
	McCormick = Planar{
		name:   "mccormick",
		bounds: psode.Bounds{Lower: -3, Upper: 4},
		f: func(x, y float64) float64 {
			return sin(x+y) + sq(x-y) - 1.5*x + 2.5*y + 1
		},
		optima: []Optimum{at(-0.54719, -1.54719, -1.9133)},
	}

	Schaffer2 = Planar{
		name:   "schaffer2",
		bounds: psode.Bounds{Lower: -100, Upper: 100},
		f: func(x, y float64) float64 {
			return 0.5 + (sq(sin(x*x-y*y))-0.5)/sq(1+0.001*(x*x+y*y))
		},
		optima: []Optimum{at(0, 0, 0)},
	}

	Schaffer4 = Planar{
		name:   "schaffer4",
		bounds: psode.Bounds{Lower: -100, Upper: 100},
		f: func(x, y float64) float64 {
			return 0.5 + (sq(cos(sin(abs(x*x-y*y))))-0.5)/sq(1+0.001*(x*x+y*y))
		},
		optima: []Optimum{at(0, 1.25313, 0.292579), at(0, -1.25313, 0.292579)},
	}
)

var planar = map[string]Planar{}

func init() {
	for _, fn := range []Planar{
		Beale, GoldsteinPrice, Booth, Bukin, Matyas, Levi, Himmelblau, ThreeHump,
		Easom, CrossTray, Eggholder, HolderTable, McCormick, Schaffer2, Schaffer4,
	} {
		planar[fn.name] = fn
	}
}
