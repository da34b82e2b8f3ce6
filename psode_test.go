package psode

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countObj struct {
	count int
}

func (o *countObj) Objective(v Vector) float64 {
	o.count++
	tot := 0.0
	for i := 0; i < v.Len(); i++ {
		tot += v.At(i) * v.At(i)
	}
	return tot
}

func TestCacheObjectiver(t *testing.T) {
	obj := &countObj{}
	c := NewCacheObjectiver(obj, time.Minute)

	assert.Equal(t, 5.0, c.Objective(Vec(1, 2)))
	assert.Equal(t, 5.0, c.Objective(Vec(1, 2)))
	assert.Equal(t, 1.0, c.Objective(Vec(1, 0)))
	assert.Equal(t, 2, obj.count, "cached point was re-evaluated")

	hits, misses := c.Stats()
	assert.EqualValues(t, 1, hits)
	assert.EqualValues(t, 2, misses)
}

func TestObjectiveLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetLevel(logrus.DebugLevel)

	ol := NewObjectiveLogger(Func(func(v Vector) float64 { return v.At(0) }), log)
	ol.Objective(Vec(3))
	ol.Objective(Vec(4))

	assert.EqualValues(t, 2, ol.Count())
	assert.Contains(t, buf.String(), "eval=2")
}

func TestBetter(t *testing.T) {
	nan, inf := math.NaN(), math.Inf(1)
	tests := []struct {
		a, b float64
		want bool
	}{
		{1, 2, true},
		{2, 1, false},
		{1, 1, false},
		{1, inf, true},
		{1, nan, true},
		{nan, 1, false},
		{inf, nan, false},
		{math.Inf(-1), 0, false},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, Better(test.a, test.b), "Better(%v, %v)", test.a, test.b)
	}
	assert.True(t, math.IsInf(Fitness(nan), 1))
	assert.Equal(t, -3.0, Fitness(-3))
}

func TestNewProblem(t *testing.T) {
	sphere := Func(func(v Vector) float64 { return v.At(0) * v.At(0) })

	_, err := NewProblem("bad", 1, sphere, Bounds{Lower: 1, Upper: -1})
	require.ErrorIs(t, err, ErrInvalidBounds)

	_, err = NewProblem("bad", 0, sphere, MustBounds(-1, 1))
	require.Error(t, err)

	p, err := NewProblem("sphere", 1, sphere, MustBounds(-1, 1))
	require.NoError(t, err)
	assert.Equal(t, "sphere", p.Name())
	assert.Equal(t, 1, p.Dims())
	assert.Equal(t, 4.0, p.Objective(Vec(2)))

	obj := &countObj{}
	wrapped := WithObjective(p, obj)
	wrapped.Objective(Vec(1))
	assert.Equal(t, 1, obj.count)
	assert.Equal(t, p.Bounds(), wrapped.Bounds())
}

func TestRandClone(t *testing.T) {
	r := NewRand(42)
	r.Float64()
	c := r.Clone()
	for i := 0; i < 10; i++ {
		require.Equal(t, r.Float64(), c.Float64(), "draw %v", i)
	}
	c.Float64()
	assert.NotEqual(t, r.Float64(), c.Float64(), "clone shares state with its parent")
}
