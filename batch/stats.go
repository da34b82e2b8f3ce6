package batch

import (
	"math"

	psode "github.com/adameus03/pso-de"
	"github.com/petar/GoLLRB/llrb"
	"gonum.org/v1/gonum/stat"
)

// Result is the outcome of one trial.
type Result struct {
	ID    string  `json:"id"`
	Trial int     `json:"trial"`
	Value float64 `json:"value"`
}

type ranked struct {
	Result
	seq int
}

func (r ranked) Less(than llrb.Item) bool {
	o := than.(ranked)
	if r.Value != o.Value {
		return r.Value < o.Value
	}
	return r.seq < o.seq
}

// Stats accumulates trial results.  Non-finite values are counted as +Inf.
// The zero value is not usable; use NewStats.
type Stats struct {
	Count int
	Min   float64
	Max   float64

	values []float64
	tree   *llrb.LLRB
	seq    int
}

func NewStats() *Stats {
	return &Stats{
		Min:  math.Inf(1),
		Max:  math.Inf(-1),
		tree: llrb.New(),
	}
}

// Add records a trial result.
func (s *Stats) Add(r Result) {
	r.Value = psode.Fitness(r.Value)
	s.Count++
	s.Min = math.Min(s.Min, r.Value)
	s.Max = math.Max(s.Max, r.Value)
	s.values = append(s.values, r.Value)
	s.seq++
	s.tree.InsertNoReplace(ranked{Result: r, seq: s.seq})
}

// AddValue records an anonymous result.
func (s *Stats) AddValue(v float64) {
	s.Add(Result{Trial: s.Count, Value: v})
}

// Merge folds all of o's results into s.
func (s *Stats) Merge(o *Stats) {
	for _, r := range o.Top(o.Count) {
		s.Add(r)
	}
}

// Mean is NaN when no results have been recorded.
func (s *Stats) Mean() float64 {
	if s.Count == 0 {
		return math.NaN()
	}
	return stat.Mean(s.values, nil)
}

// StdDev is the sample standard deviation, NaN for fewer than two results.
func (s *Stats) StdDev() float64 {
	if s.Count < 2 {
		return math.NaN()
	}
	return stat.StdDev(s.values, nil)
}

// Top returns the k best results, best first.
func (s *Stats) Top(k int) []Result {
	if k > s.Count {
		k = s.Count
	}
	top := make([]Result, 0, k)
	if k == 0 {
		return top
	}
	s.tree.AscendGreaterOrEqual(s.tree.Min(), func(i llrb.Item) bool {
		top = append(top, i.(ranked).Result)
		return len(top) < k
	})
	return top
}

// Median is the middle result by rank (the lower middle for an even
// count), NaN when empty.
func (s *Stats) Median() float64 {
	if s.Count == 0 {
		return math.NaN()
	}
	top := s.Top((s.Count-1)/2 + 1)
	return top[len(top)-1].Value
}
