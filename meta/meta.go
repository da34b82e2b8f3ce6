// Package meta tunes the velocity coefficients of a swarm before every
// step.  At each step a differential evolution solver searches the
// coefficient cube [0,1]^3 (social, cognitive, inertia); a candidate is
// scored by letting a scratch copy of the swarm take one step with it.
package meta

import (
	"errors"
	"fmt"
	"io"

	psode "github.com/adameus03/pso-de"
	"github.com/adameus03/pso-de/de"
	"github.com/adameus03/pso-de/swarm"
	"github.com/sirupsen/logrus"
)

var ErrMinimizerFailed = errors.New("meta: coefficient minimization failed")

// discard silences the scratch swarms scored during a search.
var discard = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}()

// coefficient vector layout
const (
	social = iota
	cognitive
	inertia
	ncoefs
)

type Option func(*Tuner)

func Logger(l logrus.FieldLogger) Option {
	return func(t *Tuner) {
		t.log = l
	}
}

// Tuner drives a swarm, choosing fresh coefficients before every step.
type Tuner struct {
	st      *swarm.State
	solver  de.Solver
	cfg     de.Config
	log     logrus.FieldLogger
	history []swarm.Coefs
}

func New(st *swarm.State, s de.Solver, cfg de.Config, opts ...Option) (*Tuner, error) {
	if st == nil || s == nil {
		return nil, &psode.ConfigError{Field: "tuner", Err: errors.New("nil swarm or solver")}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := &Tuner{st: st, solver: s, cfg: cfg}
	for _, opt := range opts {
		opt(t)
	}
	if t.log == nil {
		t.log = logrus.StandardLogger()
	}
	t.log = t.log.WithField("fn", st.Problem().Name())
	return t, nil
}

// fitness scores coefficients x by the best value a copy of st reaches in
// one step using them.  st itself is not modified.
func fitness(st *swarm.State, x []float64) float64 {
	scratch := st.Clone()
	scratch.SetLogger(discard)
	scratch.SetCoefs(coefs(x))
	return scratch.Sweep()
}

func coefs(x []float64) swarm.Coefs {
	return swarm.Coefs{Social: x[social], Cognitive: x[cognitive], Inertia: x[inertia]}
}

// Tune searches for the coefficients that minimize the next step's best
// value and applies them to the swarm and all its particles.
func (t *Tuner) Tune() (swarm.Coefs, error) {
	x, err := de.Minimize(t.solver, t.st, ncoefs, 0, 1, t.cfg, fitness)
	if err != nil {
		return swarm.Coefs{}, fmt.Errorf("%w: %w", ErrMinimizerFailed, err)
	}
	c := coefs(x)
	t.st.SetCoefs(c)
	t.history = append(t.history, c)
	return c, nil
}

// Iterate tunes the coefficients and then takes one swarm step with them.
// When tuning fails the swarm is left untouched.
func (t *Tuner) Iterate() error {
	c, err := t.Tune()
	if err != nil {
		return err
	}
	t.st.Iterate()

	_, best := t.st.Best()
	t.log.WithFields(logrus.Fields{
		"iter":      t.st.Count(),
		"social":    c.Social,
		"cognitive": c.Cognitive,
		"inertia":   c.Inertia,
		"best":      best,
	}).Debug("tuned step")
	return nil
}

// Run performs count tuned steps, stopping at the first failure.
func (t *Tuner) Run(count int) error {
	for i := 0; i < count; i++ {
		if err := t.Iterate(); err != nil {
			return err
		}
	}
	return nil
}

// RunRecord is Run that also returns the particle positions after each
// completed step.
func (t *Tuner) RunRecord(count int) ([][]psode.Vector, error) {
	snaps := make([][]psode.Vector, 0, count)
	for i := 0; i < count; i++ {
		if err := t.Iterate(); err != nil {
			return snaps, err
		}
		snaps = append(snaps, t.st.Positions())
	}
	return snaps, nil
}

// Reset resets the swarm and forgets the coefficient history.
func (t *Tuner) Reset() {
	t.st.Reset()
	t.history = t.history[:0]
}

func (t *Tuner) Best() (psode.Vector, float64) { return t.st.Best() }

// History returns the coefficients chosen at each step so far.
func (t *Tuner) History() []swarm.Coefs {
	h := make([]swarm.Coefs, len(t.history))
	copy(h, t.history)
	return h
}

func (t *Tuner) State() *swarm.State { return t.st }
