// Package psode holds the pieces shared by every optimizer in this module:
// fixed-dimension vectors, box bounds, the objective function contract and
// the error taxonomy.
package psode

import (
	"crypto/sha1"
	"encoding/binary"
	"math"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

type Objectiver interface {
	// Objective evaluates v and returns the objective function value.  The
	// objective must be framed so that lower values are better.
	// Implementations must be pure and safe to call concurrently from
	// independent goroutines.
	Objective(v Vector) float64
}

// Func adapts a plain function to the Objectiver interface.
type Func func(Vector) float64

func (f Func) Objective(v Vector) float64 { return f(v) }

// Problem pairs an objective with the box it is searched over.
type Problem interface {
	Objectiver
	Bounds() Bounds
	Dims() int
	Name() string
}

type problem struct {
	Objectiver
	name   string
	dims   int
	bounds Bounds
}

func (p problem) Bounds() Bounds { return p.bounds }
func (p problem) Dims() int      { return p.dims }
func (p problem) Name() string   { return p.name }

// NewProblem validates the bounds and dimension count of a named objective.
func NewProblem(name string, dims int, obj Objectiver, b Bounds) (Problem, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if dims <= 0 {
		return nil, &ConfigError{Field: "dimensions", Err: ErrDimensionMismatch}
	}
	return problem{Objectiver: obj, name: name, dims: dims, bounds: b}, nil
}

// WithObjective returns p with its objective replaced by obj, typically a
// decorator wrapping p itself.
func WithObjective(p Problem, obj Objectiver) Problem {
	return problem{Objectiver: obj, name: p.Name(), dims: p.Dims(), bounds: p.Bounds()}
}

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Better reports whether a strictly improves on b.  Non-finite values
// compare worse than every finite value and never improve on anything.
func Better(a, b float64) bool {
	if !Finite(a) {
		return false
	}
	if !Finite(b) {
		return true
	}
	return a < b
}

// Fitness maps non-finite objective values to +Inf.
func Fitness(v float64) float64 {
	if !Finite(v) {
		return math.Inf(1)
	}
	return v
}

func hashVector(v Vector) string {
	data := make([]byte, v.Len()*8)
	for i := 0; i < v.Len(); i++ {
		binary.BigEndian.PutUint64(data[i*8:], math.Float64bits(v.At(i)))
	}
	sum := sha1.Sum(data)
	return string(sum[:])
}

// CacheObjectiver memoizes objective values by coordinate bits.  Entries
// expire after the configured duration so long runs do not grow without
// bound.
type CacheObjectiver struct {
	Objectiver
	cache        *cache.Cache
	hits, misses atomic.Int64
}

func NewCacheObjectiver(obj Objectiver, expiry time.Duration) *CacheObjectiver {
	return &CacheObjectiver{
		Objectiver: obj,
		cache:      cache.New(expiry, 2*expiry),
	}
}

func (c *CacheObjectiver) Objective(v Vector) float64 {
	key := hashVector(v)
	if val, ok := c.cache.Get(key); ok {
		c.hits.Add(1)
		return val.(float64)
	}
	c.misses.Add(1)
	val := c.Objectiver.Objective(v)
	c.cache.SetDefault(key, val)
	return val
}

// Stats returns the number of cache hits and misses so far.
func (c *CacheObjectiver) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// ObjectiveLogger counts evaluations and logs each one at debug level.
type ObjectiveLogger struct {
	Objectiver
	Log   logrus.FieldLogger
	count atomic.Int64
}

func NewObjectiveLogger(obj Objectiver, log logrus.FieldLogger) *ObjectiveLogger {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ObjectiveLogger{Objectiver: obj, Log: log}
}

func (ol *ObjectiveLogger) Objective(v Vector) float64 {
	val := ol.Objectiver.Objective(v)
	n := ol.count.Add(1)
	ol.Log.WithFields(logrus.Fields{"eval": n, "x": v, "val": val}).Debug("objective")
	return val
}

// Count returns the number of evaluations performed so far.
func (ol *ObjectiveLogger) Count() int64 { return ol.count.Load() }
