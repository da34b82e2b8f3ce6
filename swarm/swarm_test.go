package swarm

import (
	"database/sql"
	"errors"
	"math"
	"testing"
	"time"

	psode "github.com/adameus03/pso-de"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func sphere(dims int) psode.Problem {
	fn := psode.Func(func(v psode.Vector) float64 {
		tot := 0.0
		for i := 0; i < v.Len(); i++ {
			tot += v.At(i) * v.At(i)
		}
		return tot
	})
	p, err := psode.NewProblem("sphere", dims, fn, psode.MustBounds(-5, 5))
	if err != nil {
		panic(err.Error())
	}
	return p
}

func TestConstriction(t *testing.T) {
	k := Constriction(2.05, 2.05)
	assert.InDelta(t, DefaultInertia, k, 1e-12)
	assert.InDelta(t, DefaultSocial, k*2.05, 1e-12)
}

func TestNewErrors(t *testing.T) {
	_, err := New(0, sphere(2))
	assert.ErrorIs(t, err, psode.ErrNoParticles)

	_, err = New(5, sphere(2), Bounds(psode.Bounds{Lower: 3, Upper: 3}))
	assert.ErrorIs(t, err, psode.ErrInvalidBounds)
	var cfgErr *psode.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestBestAfterCreation(t *testing.T) {
	prob := sphere(3)
	for seed := uint64(0); seed < 20; seed++ {
		s, err := New(15, prob, Seed(seed))
		require.NoError(t, err)

		wantVal := math.Inf(1)
		var want psode.Vector
		for _, p := range s.Particles() {
			val := prob.Objective(p.Pos)
			if val < wantVal {
				wantVal, want = val, p.Pos
			}
			assert.True(t, p.Pos.Equal(p.Best), "personal best differs from start")
			assert.True(t, p.Vel.Equal(psode.Zero(3)), "non-zero start velocity")
		}

		got, gotVal := s.Best()
		assert.Equal(t, wantVal, gotVal, "seed %v", seed)
		assert.True(t, want.Equal(got), "seed %v: want %v, got %v", seed, want, got)
	}
}

func TestIterateMonotonic(t *testing.T) {
	s, err := New(20, sphere(4), Seed(7))
	require.NoError(t, err)

	_, prev := s.Best()
	for i := 0; i < 100; i++ {
		s.Iterate()
		_, val := s.Best()
		require.LessOrEqual(t, val, prev, "iteration %v", i)
		prev = val
	}
	assert.Equal(t, 100, s.Count())
	assert.Less(t, prev, 1e-3)
}

func TestPositionsStayInBounds(t *testing.T) {
	s, err := New(10, sphere(2), Seed(3), Coefficients(Coefs{Social: 4, Cognitive: 4, Inertia: 1.5}))
	require.NoError(t, err)

	b := s.Problem().Bounds()
	for _, snap := range s.RunRecord(50) {
		require.Len(t, snap, 10)
		for _, pos := range snap {
			require.True(t, b.Contains(pos), "position %v escaped %v", pos, b)
		}
	}
}

func TestReset(t *testing.T) {
	prob := sphere(2)
	s, err := New(12, prob, Seed(11))
	require.NoError(t, err)
	s.Run(30)
	s.SetCoefs(Coefs{Social: 1, Cognitive: 2, Inertia: 0.5})
	s.Reset()

	assert.Equal(t, 0, s.Count())
	assert.Equal(t, Coefs{Social: 1, Cognitive: 2, Inertia: 0.5}, s.Coefs())

	wantVal := math.Inf(1)
	for _, p := range s.Particles() {
		assert.True(t, p.Vel.Equal(psode.Zero(2)))
		assert.True(t, p.Pos.Equal(p.Best))
		assert.Equal(t, prob.Objective(p.Pos), p.BestVal)
		wantVal = math.Min(wantVal, p.BestVal)
	}
	_, got := s.Best()
	assert.Equal(t, wantVal, got)
}

func TestZeroCoefsNeverMove(t *testing.T) {
	s, err := New(1, sphere(3), Seed(5), Coefficients(Coefs{}))
	require.NoError(t, err)

	start := s.Particles()[0].Pos
	for i := 0; i < 25; i++ {
		s.Iterate()
		require.True(t, start.Equal(s.Particles()[0].Pos), "particle moved on iteration %v", i)
	}
}

func TestMoveClampsPositionNotVelocity(t *testing.T) {
	p := &Particle{
		Pos:     psode.Vec(0, 0),
		Vel:     psode.Vec(100, -100),
		Best:    psode.Vec(0, 0),
		Bounds:  psode.MustBounds(-1, 1),
		Coefs:   Coefs{Inertia: 1},
		BestVal: 0,
	}
	p.Move(psode.Vec(0, 0), psode.NewRand(1))
	assert.True(t, p.Pos.Equal(psode.Vec(1, -1)), "got %v", p.Pos)
	assert.True(t, p.Vel.Equal(psode.Vec(100, -100)), "got %v", p.Vel)
}

func TestUpdateNonFinite(t *testing.T) {
	p := &Particle{Pos: psode.Vec(1), Best: psode.Vec(0), BestVal: 3}
	assert.False(t, p.Update(math.NaN()))
	assert.False(t, p.Update(math.Inf(-1)))
	assert.Equal(t, 3.0, p.BestVal)
	assert.True(t, p.Update(2))
	assert.True(t, p.Best.Equal(psode.Vec(1)))
}

func TestNaNNeverBest(t *testing.T) {
	fn := psode.Func(func(v psode.Vector) float64 {
		if v.At(0) > 0 {
			return math.NaN()
		}
		return -v.At(0)
	})
	prob, err := psode.NewProblem("half", 1, fn, psode.MustBounds(-1, 1))
	require.NoError(t, err)

	s, err := New(8, prob, Seed(2))
	require.NoError(t, err)
	s.Run(20)
	_, val := s.Best()
	assert.False(t, math.IsNaN(val))
}

func TestCloneIndependent(t *testing.T) {
	s, err := New(10, sphere(2), Seed(9))
	require.NoError(t, err)
	s.Run(3)

	c := s.Clone()
	c.SetCoefs(Coefs{})
	c.Run(10)
	assert.Equal(t, 3, s.Count())
	assert.Equal(t, DefaultCoefs(), s.Particles()[0].Coefs)

	// same stream, same moves
	a, b := s.Clone(), s.Clone()
	a.Run(5)
	b.Run(5)
	for i, pa := range a.Particles() {
		assert.True(t, pa.Pos.Equal(b.Particles()[i].Pos))
	}
}

func TestSweepReturnsSweepBest(t *testing.T) {
	s, err := New(6, sphere(2), Seed(4))
	require.NoError(t, err)

	got := s.Sweep()
	want := math.Inf(1)
	for _, p := range s.Particles() {
		want = math.Min(want, p.Val)
	}
	assert.Equal(t, want, got)
}

func TestDB(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	s, err := New(4, sphere(3), Seed(1), DB(db), RunID("test-run"))
	require.NoError(t, err)
	s.Run(5)
	require.NoError(t, s.Err())

	counts := map[string]int{
		TblParticles:     4 * 5,
		TblParticlesBest: 4 * 5,
		TblBest:          5,
		TblCoefs:         5,
	}
	for tbl, want := range counts {
		var got int
		err := db.QueryRow("SELECT COUNT(*) FROM "+tbl+" WHERE run = ?", "test-run").Scan(&got)
		require.NoError(t, err)
		assert.Equal(t, want, got, "table %v", tbl)
	}

	var val float64
	err = db.QueryRow("SELECT val FROM "+TblBest+" WHERE iter = 5").Scan(&val)
	require.NoError(t, err)
	_, best := s.Best()
	assert.Equal(t, best, val)

	c := s.Clone()
	c.Run(2)
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+TblBest).Scan(&n))
	assert.Equal(t, 5, n, "clone recorded to the database")
}

func TestPopulationBest(t *testing.T) {
	assert.Nil(t, Population{}.Best())

	pop := Population{
		{ID: 0, BestVal: math.NaN()},
		{ID: 1, BestVal: 2},
		{ID: 2, BestVal: math.Inf(1)},
		{ID: 3, BestVal: 2},
		{ID: 4, BestVal: 5},
	}
	assert.Equal(t, 1, pop.Best().ID, "ties go to the earliest particle")

	pop[4].BestVal = -1
	assert.Equal(t, 4, pop.Best().ID)
}

func TestCacheOption(t *testing.T) {
	count := func(cache bool) int {
		calls := 0
		fn := psode.Func(func(v psode.Vector) float64 {
			calls++
			return v.At(0)*v.At(0) + v.At(1)*v.At(1)
		})
		prob, err := psode.NewProblem("counted", 2, fn, psode.MustBounds(-5, 5))
		require.NoError(t, err)

		opts := []Option{Seed(4), Coefficients(Coefs{})}
		if cache {
			opts = append(opts, Cache(time.Minute))
		}
		s, err := New(6, prob, opts...)
		require.NoError(t, err)
		s.Run(5)
		return calls
	}

	// particles with zero coefficients revisit the same points every sweep
	assert.Equal(t, 6*6, count(false))
	assert.Equal(t, 6, count(true))
}
