// Package batch runs many independent optimization trials in parallel and
// summarizes their results.
package batch

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Trial performs one independent optimization run and returns the best
// objective value it found.
type Trial func(ctx context.Context, id int) (float64, error)

type Option func(*runner)

type runner struct {
	log logrus.FieldLogger
}

func Logger(l logrus.FieldLogger) Option {
	return func(r *runner) {
		r.log = l
	}
}

// Run executes trials trials with at most workers running at once (all
// CPUs when workers <= 0).  newTrial is called once per trial so that no
// two trials share state.  The first failing trial cancels the rest;
// cancellation is observed between trials, never inside one.
func Run(ctx context.Context, trials, workers int, newTrial func() Trial, opts ...Option) (*Stats, error) {
	r := &runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logrus.StandardLogger()
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var mu sync.Mutex
	stats := NewStats()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < trials; i++ {
		id := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			val, err := newTrial()(gctx, id)
			if err != nil {
				return fmt.Errorf("batch: trial %d: %w", id, err)
			}

			res := Result{ID: uuid.NewString(), Trial: id, Value: val}
			r.log.WithFields(logrus.Fields{"trial": id, "run": res.ID, "best": val}).Debug("trial done")

			mu.Lock()
			defer mu.Unlock()
			stats.Add(res)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}
	return stats, nil
}
