package bench_test

import (
	"errors"
	"math"
	"testing"

	psode "github.com/adameus03/pso-de"
	"github.com/adameus03/pso-de/bench"
	"github.com/adameus03/pso-de/de"
	"github.com/adameus03/pso-de/meta"
	"github.com/adameus03/pso-de/swarm"
)

const seed = 7

func allFuncs(t *testing.T, dims int) []bench.Func {
	var fns []bench.Func
	for _, name := range bench.Names() {
		fn, err := bench.Lookup(name, dims)
		if errors.Is(err, psode.ErrDimensionMismatch) {
			fn, err = bench.Lookup(name, 2)
		}
		if err != nil {
			t.Fatalf("lookup %v: %v", name, err)
		}
		fns = append(fns, fn)
	}
	return fns
}

func TestOptima(t *testing.T) {
	for _, dims := range []int{1, 2, 5, 30} {
		for _, fn := range allFuncs(t, dims) {
			for _, opt := range fn.Optima() {
				got := fn.Objective(opt.Pos)
				if tol := 1e-3 + 1e-4*math.Abs(opt.Val); math.Abs(got-opt.Val) > tol {
					t.Errorf("[FAIL:%v] f(%v) = %v, want %v", fn.Name(), opt.Pos, got, opt.Val)
				}
				if !bench.InsideBounds(opt.Pos, fn) {
					t.Errorf("[FAIL:%v] optimum %v outside %v", fn.Name(), opt.Pos, fn.Bounds())
				}
			}
		}
	}
}

func TestOutsideBounds(t *testing.T) {
	for _, fn := range allFuncs(t, 3) {
		b := fn.Bounds()
		x := make([]float64, fn.Dims())
		x[0] = b.Upper + 1
		if v := fn.Objective(psode.Vec(x...)); !math.IsInf(v, 1) {
			t.Errorf("[FAIL:%v] outside bounds evaluated to %v", fn.Name(), v)
		}
	}
}

func TestLookup(t *testing.T) {
	if len(bench.Names()) != 22 {
		t.Errorf("expected 22 functions, got %v", bench.Names())
	}
	if _, err := bench.Lookup("nope", 2); !errors.Is(err, bench.ErrUnknownFunc) {
		t.Errorf("expected ErrUnknownFunc, got %v", err)
	}
	if _, err := bench.Lookup("eggholder", 3); !errors.Is(err, psode.ErrDimensionMismatch) {
		t.Errorf("expected dimension mismatch for planar function, got %v", err)
	}
	if _, err := bench.Lookup("sphere", 0); err == nil {
		t.Errorf("expected an error for a zero-dimension sphere")
	}
	fn, err := bench.Lookup("Rastrigin", 4)
	if err != nil {
		t.Fatal(err)
	}
	if fn.Name() != "rastrigin_4D" || fn.Dims() != 4 {
		t.Errorf("got %v with %v dims", fn.Name(), fn.Dims())
	}
}

func TestSwarm(t *testing.T) {
	easy := []bench.Func{bench.Sphere{NDim: 2}, bench.Booth, bench.Matyas, bench.ThreeHump}
	for _, fn := range easy {
		st, err := swarm.New(30, fn, swarm.Seed(seed))
		if err != nil {
			t.Fatal(err)
		}
		best, niter, err := bench.Benchmark(bench.Swarm(st), fn, 0.01, 500)
		if err != nil {
			t.Fatal(err)
		}
		pos, _ := st.Best()
		want := fn.Optima()[0]
		if !bench.Solved(fn, best, 0.01) {
			t.Errorf("[FAIL:%v] best %v after %v iterations, optimum %v", fn.Name(), best, niter, want.Val)
		} else if !pos.EqualApprox(want.Pos, 0.5) {
			t.Errorf("[FAIL:%v] best point %v is far from the optimum at %v", fn.Name(), pos, want.Pos)
		} else {
			t.Logf("[pass:%v] best %v at %v after %v iterations", fn.Name(), best, pos, niter)
		}
	}
}

func TestTuned(t *testing.T) {
	fn := bench.Sphere{NDim: 3}
	st, err := swarm.New(15, fn, swarm.Seed(seed))
	if err != nil {
		t.Fatal(err)
	}
	cfg := de.DefaultConfig()
	cfg.PopulationSize = 8
	cfg.Stop = de.AfterIters(3)
	tuner, err := meta.New(st, de.NewGoSolver(seed), cfg)
	if err != nil {
		t.Fatal(err)
	}

	_, start := tuner.Best()
	best, niter, err := bench.Benchmark(tuner, fn, 0.01, 100)
	if err != nil {
		t.Fatal(err)
	}
	if best > start {
		t.Errorf("[FAIL:%v] best got worse: %v -> %v", fn.Name(), start, best)
	}
	t.Logf("[%v] best %v after %v tuned iterations (solved: %v)", fn.Name(), best, niter, bench.Solved(fn, best, 0.01))
}
