package swarm

import (
	"math"

	psode "github.com/adameus03/pso-de"
)

// These params are calculated using a constriction factor originally
// described in:
//
//     Clerc and M.  “The swarm and the queen: towards a deterministic and
//     adaptive particle swarm optimization” Proc. 1999 Congress on
//     Evolutionary Computation, pp. 1951-1957
//
// The cognitive and social parameters correspond to c1 and c2 values of 2.05
// multiplied by their constriction coefficient, i.e.
// DefaultSocial = Constriction(2.05, 2.05)*2.05.  DefaultInertia is the
// constriction coefficient itself.
const (
	DefaultCognitive = 1.496179765663133
	DefaultSocial    = 1.496179765663133
	DefaultInertia   = 0.7298437881283576
)

// Constriction calculates the constriction coefficient for the given c1 and
// c2 for the particle velocity equation:
//
//    v_next = k(v_curr + c1*rand*(p_glob-x) + c2*rand*(p_personal-x))
//
//    or
//
//    v_next = w*v_curr + b1*rand*(p_glob-x) + b2*rand*(p_personal-x)
//
// with the constriction coefficient multiplied through.  c1+c2 must be
// greater than 4 for the result to be real.
func Constriction(c1, c2 float64) float64 {
	phi := c1 + c2
	return 2 / math.Abs(2-phi-math.Sqrt(phi*phi-4*phi))
}

// Coefs are the three weights of the velocity update.
type Coefs struct {
	Social    float64 `json:"social" yaml:"social"`
	Cognitive float64 `json:"cognitive" yaml:"cognitive"`
	Inertia   float64 `json:"inertia" yaml:"inertia"`
}

// DefaultCoefs returns the Clerc constriction coefficients.
func DefaultCoefs() Coefs {
	return Coefs{Social: DefaultSocial, Cognitive: DefaultCognitive, Inertia: DefaultInertia}
}

type Particle struct {
	ID      int
	Pos     psode.Vector
	Vel     psode.Vector
	Best    psode.Vector
	BestVal float64
	// Val is the objective value at Pos as of the last evaluation.
	Val    float64
	Bounds psode.Bounds
	Coefs
}

// Move applies one velocity update against gbest and moves the particle,
// clamping its position (but not its velocity) into bounds.  Two uniform
// draws are taken from rng, the social one first.
func (p *Particle) Move(gbest psode.Vector, rng psode.Rng) {
	r1 := rng.Float64()
	r2 := rng.Float64()

	inertia := p.Vel.Scale(p.Inertia)
	social := gbest.MustSub(p.Pos).Scale(p.Social * r1)
	cognitive := p.Best.MustSub(p.Pos).Scale(p.Cognitive * r2)
	p.Vel = inertia.MustAdd(social).MustAdd(cognitive)

	p.Pos = p.Pos.MustAdd(p.Vel)
	p.Pos.Clamp(p.Bounds)
}

// Update records val as the value at p's current position and reports
// whether it replaced the personal best.
func (p *Particle) Update(val float64) bool {
	p.Val = val
	if psode.Better(val, p.BestVal) {
		p.Best = p.Pos
		p.BestVal = val
		return true
	}
	return false
}

type Population []*Particle

// Best returns the particle holding the lowest personal best.  Ties go to
// the earliest particle.
func (pop Population) Best() *Particle {
	if len(pop) == 0 {
		return nil
	}

	best := pop[0]
	for _, p := range pop[1:] {
		if psode.Better(p.BestVal, best.BestVal) {
			best = p
		}
	}
	return best
}

func (pop Population) clone() Population {
	cp := make(Population, len(pop))
	for i, p := range pop {
		pc := *p
		cp[i] = &pc
	}
	return cp
}
