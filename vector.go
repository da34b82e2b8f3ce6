package psode

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Vector is a fixed-length tuple of coordinates.  Vectors have value
// semantics: arithmetic returns new instances and Clamp is the only method
// that changes its receiver.  Copies of a Vector may share storage, which is
// safe because storage is never written after construction.
type Vector struct {
	x []float64
}

// NewVector copies coords into a new vector of dimension n.
func NewVector(n int, coords []float64) (Vector, error) {
	if len(coords) != n {
		return Vector{}, &DimensionError{Want: n, Got: len(coords)}
	}
	return Vec(coords...), nil
}

// Vec builds a vector from its coordinates.
func Vec(coords ...float64) Vector {
	x := make([]float64, len(coords))
	copy(x, coords)
	return Vector{x: x}
}

// Zero returns the all-zero vector of dimension n.
func Zero(n int) Vector { return Vector{x: make([]float64, n)} }

func (v Vector) Len() int { return len(v.x) }

func (v Vector) At(i int) float64 { return v.x[i] }

// Slice returns a copy of the coordinates.
func (v Vector) Slice() []float64 {
	x := make([]float64, len(v.x))
	copy(x, v.x)
	return x
}

func (v Vector) Add(w Vector) (Vector, error) {
	if len(v.x) != len(w.x) {
		return Vector{}, &DimensionError{Want: len(v.x), Got: len(w.x)}
	}
	dst := make([]float64, len(v.x))
	floats.AddTo(dst, v.x, w.x)
	return Vector{x: dst}, nil
}

func (v Vector) Sub(w Vector) (Vector, error) {
	if len(v.x) != len(w.x) {
		return Vector{}, &DimensionError{Want: len(v.x), Got: len(w.x)}
	}
	dst := make([]float64, len(v.x))
	floats.SubTo(dst, v.x, w.x)
	return Vector{x: dst}, nil
}

// MustAdd is like Add but panics on a dimension mismatch.  It is meant for
// inner loops whose operand dimensions were checked at construction.
func (v Vector) MustAdd(w Vector) Vector {
	sum, err := v.Add(w)
	if err != nil {
		panic(err.Error())
	}
	return sum
}

func (v Vector) MustSub(w Vector) Vector {
	diff, err := v.Sub(w)
	if err != nil {
		panic(err.Error())
	}
	return diff
}

func (v Vector) Scale(k float64) Vector {
	dst := make([]float64, len(v.x))
	floats.ScaleTo(dst, k, v.x)
	return Vector{x: dst}
}

// Clamp projects every coordinate of v into [b.Lower, b.Upper].  Clamping a
// vector that is already inside the box is a no-op.
func (v *Vector) Clamp(b Bounds) {
	var out []float64
	for i, x := range v.x {
		c := math.Min(math.Max(x, b.Lower), b.Upper)
		if c == x {
			continue
		}
		if out == nil {
			out = v.Slice()
		}
		out[i] = c
	}
	if out != nil {
		v.x = out
	}
}

// Equal reports exact coordinate equality.
func (v Vector) Equal(w Vector) bool { return floats.Equal(v.x, w.x) }

// EqualApprox reports equality within an absolute tolerance.
func (v Vector) EqualApprox(w Vector, tol float64) bool {
	return floats.EqualApprox(v.x, w.x, tol)
}

func (v Vector) String() string { return fmt.Sprint(v.x) }

func (v Vector) MarshalJSON() ([]byte, error) { return json.Marshal(v.x) }

func (v *Vector) UnmarshalJSON(data []byte) error {
	var x []float64
	if err := json.Unmarshal(data, &x); err != nil {
		return err
	}
	v.x = x
	return nil
}

// Bounds is a box applied uniformly to every dimension.
type Bounds struct {
	Lower, Upper float64
}

// NewBounds validates and returns the box [lower, upper].
func NewBounds(lower, upper float64) (Bounds, error) {
	b := Bounds{Lower: lower, Upper: upper}
	if err := b.Validate(); err != nil {
		return Bounds{}, err
	}
	return b, nil
}

// MustBounds is like NewBounds but panics on invalid bounds.
func MustBounds(lower, upper float64) Bounds {
	b, err := NewBounds(lower, upper)
	if err != nil {
		panic(err.Error())
	}
	return b
}

func (b Bounds) Validate() error {
	if !Finite(b.Lower) || !Finite(b.Upper) || b.Lower >= b.Upper {
		return &ConfigError{Field: fmt.Sprintf("bounds (%v, %v)", b.Lower, b.Upper), Err: ErrInvalidBounds}
	}
	return nil
}

func (b Bounds) Width() float64 { return b.Upper - b.Lower }

func (b Bounds) Contains(v Vector) bool {
	for _, x := range v.x {
		if x < b.Lower || x > b.Upper {
			return false
		}
	}
	return true
}

// Sample draws a uniformly distributed point of dimension n inside the box.
func (b Bounds) Sample(rng Rng, n int) Vector {
	x := make([]float64, n)
	for i := range x {
		x[i] = b.Lower + rng.Float64()*b.Width()
	}
	return Vector{x: x}
}
