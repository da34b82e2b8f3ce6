// Package swarm implements a particle swarm with a global-best topology.
// Every State owns its random stream, so a cloned State continues
// independently and two states built from the same seed evolve identically.
package swarm

import (
	"database/sql"
	"errors"
	"math"
	"time"

	psode "github.com/adameus03/pso-de"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Option func(*State)

// Bounds overrides the search box of the problem.
func Bounds(b psode.Bounds) Option {
	return func(s *State) {
		s.bounds = b
	}
}

func Coefficients(c Coefs) Option {
	return func(s *State) {
		s.coefs = c
	}
}

// Seed makes the state's random stream reproducible.  Without it the stream
// is seeded from the clock.
func Seed(seed uint64) Option {
	return func(s *State) {
		s.rng = psode.NewRand(seed)
	}
}

// Rand hands the state an existing random stream.  The state takes
// ownership of it.
func Rand(rng *psode.Rand) Option {
	return func(s *State) {
		s.rng = rng
	}
}

// DB turns on per-iteration recording of particle positions and bests.
func DB(db *sql.DB) Option {
	return func(s *State) {
		s.db = db
	}
}

// RunID labels the rows recorded by this state.  Defaults to a random UUID.
func RunID(id string) Option {
	return func(s *State) {
		s.runID = id
	}
}

func Logger(l logrus.FieldLogger) Option {
	return func(s *State) {
		s.log = l
	}
}

// Cache memoizes objective evaluations for the given duration.
func Cache(expiry time.Duration) Option {
	return func(s *State) {
		s.cacheExpiry = expiry
	}
}

// State is a swarm of particles moving over a single problem.
type State struct {
	prob   psode.Problem
	obj    psode.Objectiver
	bounds psode.Bounds
	coefs  Coefs
	pop    Population
	n      int

	best    psode.Vector
	bestVal float64
	count   int

	rng         *psode.Rand
	log         logrus.FieldLogger
	cacheExpiry time.Duration

	db    *sql.DB
	runID string
	dbErr error
}

// New creates a swarm of n particles placed uniformly at random inside the
// problem's bounds (or the Bounds option, if given).
func New(n int, prob psode.Problem, opts ...Option) (*State, error) {
	if n <= 0 {
		return nil, &psode.ConfigError{Field: "particles", Err: psode.ErrNoParticles}
	}
	if prob == nil {
		return nil, &psode.ConfigError{Field: "problem", Err: errors.New("nil problem")}
	}

	s := &State{
		prob:   prob,
		obj:    prob,
		bounds: prob.Bounds(),
		coefs:  DefaultCoefs(),
		n:      n,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.bounds.Validate(); err != nil {
		return nil, err
	}
	if s.rng == nil {
		s.rng = psode.NewRand(uint64(time.Now().UnixNano()))
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	s.log = s.log.WithField("fn", prob.Name())
	if s.cacheExpiry > 0 {
		s.obj = psode.NewCacheObjectiver(prob, s.cacheExpiry)
	}
	if s.runID == "" {
		s.runID = uuid.New().String()
	}
	if s.db != nil {
		if err := s.initdb(); err != nil {
			return nil, err
		}
	}

	s.createParticles()
	return s, nil
}

func (s *State) createParticles() {
	s.pop = make(Population, 0, s.n)
	for i := 0; i < s.n; i++ {
		p := &Particle{ID: i, Bounds: s.bounds, Coefs: s.coefs}
		s.place(p)
		s.pop = append(s.pop, p)
	}
	s.seedBest()
}

// place puts p at a fresh random position with zero velocity and makes that
// position its personal best.
func (s *State) place(p *Particle) {
	p.Pos = s.bounds.Sample(s.rng, s.prob.Dims())
	p.Vel = psode.Zero(s.prob.Dims())
	p.Val = s.obj.Objective(p.Pos)
	p.Best = p.Pos
	p.BestVal = psode.Fitness(p.Val)
}

// seedBest takes the global best from the personal bests just placed.
func (s *State) seedBest() {
	b := s.pop.Best()
	s.best, s.bestVal = b.Best, b.BestVal
}

// Reset re-randomizes every particle, zeroes velocities and re-seeds the
// personal and global bests.  Coefficients, bounds and the random stream
// carry over.
func (s *State) Reset() {
	for _, p := range s.pop {
		s.place(p)
	}
	s.seedBest()
	s.count = 0
}

// UpdateBest evaluates every particle once and updates the personal and
// global bests on strict improvement.
func (s *State) UpdateBest() {
	s.updateBest()
}

func (s *State) updateBest() float64 {
	sweepBest := math.Inf(1)
	for _, p := range s.pop {
		val := s.obj.Objective(p.Pos)
		p.Update(val)
		if psode.Better(val, s.bestVal) {
			s.best = p.Pos
			s.bestVal = val
		}
		if psode.Better(val, sweepBest) {
			sweepBest = val
		}
	}
	return sweepBest
}

// MoveParticles moves every particle against the global best as it stood
// before the sweep began.
func (s *State) MoveParticles() {
	gbest := s.best
	for _, p := range s.pop {
		p.Move(gbest, s.rng)
	}
}

// Iterate moves the particles and then updates the bests, so the global
// best seen by a move always lags one iteration behind.
func (s *State) Iterate() {
	s.Sweep()
}

// Sweep performs one iteration and returns the lowest objective value
// observed among the particles' new positions.  The result is +Inf when no
// particle landed on a finite value.
func (s *State) Sweep() float64 {
	s.MoveParticles()
	val := s.updateBest()
	s.count++

	s.log.WithFields(logrus.Fields{
		"iter":  s.count,
		"best":  s.bestVal,
		"sweep": val,
	}).Debug("swarm iteration")

	if s.db != nil && s.dbErr == nil {
		if err := s.updateDb(); err != nil {
			s.dbErr = err
			s.log.WithError(err).Error("recording iteration")
		}
	}
	return val
}

// Run performs count iterations.
func (s *State) Run(count int) {
	for i := 0; i < count; i++ {
		s.Iterate()
	}
}

// RunRecord performs count iterations and returns, for each, the positions
// of all particles after the iteration.
func (s *State) RunRecord(count int) [][]psode.Vector {
	snaps := make([][]psode.Vector, 0, count)
	for i := 0; i < count; i++ {
		s.Iterate()
		snaps = append(snaps, s.Positions())
	}
	return snaps
}

// Best returns the global best position and its objective value.
func (s *State) Best() (psode.Vector, float64) { return s.best, s.bestVal }

// Positions returns the current position of every particle.
func (s *State) Positions() []psode.Vector {
	pos := make([]psode.Vector, len(s.pop))
	for i, p := range s.pop {
		pos[i] = p.Pos
	}
	return pos
}

// Particles returns copies of the particles.
func (s *State) Particles() []Particle {
	ps := make([]Particle, len(s.pop))
	for i, p := range s.pop {
		ps[i] = *p
	}
	return ps
}

func (s *State) Coefs() Coefs { return s.coefs }

// SetCoefs changes the coefficients of the swarm and of every particle.
func (s *State) SetCoefs(c Coefs) {
	s.coefs = c
	for _, p := range s.pop {
		p.Coefs = c
	}
}

// Clone returns a deep copy of s with its own copy of the random stream.
// The clone does not record to the database.
func (s *State) Clone() *State {
	cp := *s
	cp.pop = s.pop.clone()
	cp.rng = s.rng.Clone()
	cp.db = nil
	cp.dbErr = nil
	return &cp
}

// SetLogger replaces the logger of s.
func (s *State) SetLogger(l logrus.FieldLogger) { s.log = l }

// Count returns the number of iterations performed since creation or the
// last Reset.
func (s *State) Count() int { return s.count }

func (s *State) Dims() int { return s.prob.Dims() }

func (s *State) Len() int { return len(s.pop) }

func (s *State) Problem() psode.Problem { return s.prob }

func (s *State) RunID() string { return s.runID }

// Err returns the first error encountered while recording iterations.
// Recording stops after an error; optimization does not.
func (s *State) Err() error { return s.dbErr }
