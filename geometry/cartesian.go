// Package geometry describes the domains PINN conditions are sampled from.
//
// A CartesianDomain is an axis-aligned box: every variable either ranges
// over an interval or is fixed to a single value. Fixed variables describe
// boundaries, e.g. the edge y = 1 of the unit square:
//
//	edge, _ := geometry.NewCartesianDomain(geometry.Range("x", 0, 1), geometry.Fixed("y", 1))
//	pts, _ := edge.Sample(10, geometry.Grid, nil)
package geometry

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/dario-coscia/PINA/label"
)

// Mode is a sampling strategy.
type Mode int

// Sampling modes.
const (
	Random Mode = iota
	Grid
	LatinHypercube
	Chebyshev
)

var modeNames = map[Mode]string{
	Random:         "random",
	Grid:           "grid",
	LatinHypercube: "latin",
	Chebyshev:      "chebyshev",
}

// String returns the name accepted by ParseMode.
func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode resolves "random", "grid", "latin" (or "lh") and "chebyshev".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "random", "":
		return Random, nil
	case "grid":
		return Grid, nil
	case "latin", "lh":
		return LatinHypercube, nil
	case "chebyshev":
		return Chebyshev, nil
	}
	return 0, fmt.Errorf("%w: unknown sampling mode %q", label.ErrValue, s)
}

// Location is a region points can be sampled from.
type Location interface {
	// Variables returns the variable names, in declaration order.
	Variables() []string
	// Sample draws points for the named variables (all when none given).
	// A nil rng uses the global source.
	Sample(n int, mode Mode, rng *rand.Rand, variables ...string) (*Points, error)
}

// Span is the extent of one variable of a CartesianDomain.
type Span struct {
	Name   string
	Lo, Hi float64
	fixed  bool
}

// Range spans the interval [lo, hi].
func Range(name string, lo, hi float64) Span {
	return Span{Name: name, Lo: lo, Hi: hi}
}

// Fixed pins a variable to value.
func Fixed(name string, value float64) Span {
	return Span{Name: name, Lo: value, Hi: value, fixed: true}
}

// IsFixed reports whether the span is a single value.
func (s Span) IsFixed() bool { return s.fixed || s.Lo == s.Hi }

// CartesianDomain is an axis-aligned box.
type CartesianDomain struct {
	spans []Span
}

// NewCartesianDomain builds a domain from spans with unique names.
func NewCartesianDomain(spans ...Span) (*CartesianDomain, error) {
	if len(spans) == 0 {
		return nil, fmt.Errorf("%w: domain without variables", label.ErrValue)
	}
	seen := make(map[string]struct{}, len(spans))
	for _, s := range spans {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: unnamed variable", label.ErrValue)
		}
		if _, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("%w: variable %q declared twice", label.ErrValue, s.Name)
		}
		if s.Lo > s.Hi || math.IsNaN(s.Lo) || math.IsNaN(s.Hi) {
			return nil, fmt.Errorf("%w: variable %q has invalid range [%g, %g]", label.ErrValue, s.Name, s.Lo, s.Hi)
		}
		seen[s.Name] = struct{}{}
	}
	return &CartesianDomain{spans: slices.Clone(spans)}, nil
}

// MustCartesianDomain is NewCartesianDomain for literal domains. It panics
// on error.
func MustCartesianDomain(spans ...Span) *CartesianDomain {
	d, err := NewCartesianDomain(spans...)
	if err != nil {
		panic(err)
	}
	return d
}

// Variables returns the variable names.
func (d *CartesianDomain) Variables() []string {
	names := make([]string, len(d.spans))
	for i, s := range d.spans {
		names[i] = s.Name
	}
	return names
}

// Span returns the extent of a variable.
func (d *CartesianDomain) Span(name string) (Span, bool) {
	for _, s := range d.spans {
		if s.Name == name {
			return s, true
		}
	}
	return Span{}, false
}

// Contains reports whether point (ordered like Variables) lies in the domain.
func (d *CartesianDomain) Contains(point []float64) bool {
	if len(point) != len(d.spans) {
		return false
	}
	for i, s := range d.spans {
		if point[i] < s.Lo || point[i] > s.Hi {
			return false
		}
	}
	return true
}

// Sample draws points over the named variables.
//
// Random and LatinHypercube draw n joint points. Grid and Chebyshev place n
// nodes on every ranged variable and return their tensor product. Fixed
// variables always take their value.
func (d *CartesianDomain) Sample(n int, mode Mode, rng *rand.Rand, variables ...string) (*Points, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: sample size must be positive, got %d", label.ErrValue, n)
	}
	if len(variables) == 0 {
		variables = d.Variables()
	}
	spans := make([]Span, len(variables))
	for i, v := range variables {
		s, ok := d.Span(v)
		if !ok {
			return nil, fmt.Errorf("%w: variable %q not in domain %v", label.ErrLookup, v, d.Variables())
		}
		spans[i] = s
	}
	uniform := rand.Float64
	if rng != nil {
		uniform = rng.Float64
	}

	switch mode {
	case Random:
		return joint(spans, n, func(s Span, _ int) float64 {
			return s.Lo + (s.Hi-s.Lo)*uniform()
		}), nil
	case LatinHypercube:
		perms := make([][]int, len(spans))
		for j := range spans {
			perms[j] = permutation(n, rng)
		}
		cols := make(map[string][]int, len(spans))
		for j, s := range spans {
			cols[s.Name] = perms[j]
		}
		return joint(spans, n, func(s Span, i int) float64 {
			stratum := float64(cols[s.Name][i])
			return s.Lo + (s.Hi-s.Lo)*(stratum+uniform())/float64(n)
		}), nil
	case Grid:
		return product(spans, n, gridNodes)
	case Chebyshev:
		return product(spans, n, chebyshevNodes)
	}
	return nil, fmt.Errorf("%w: unknown sampling mode %v", label.ErrValue, mode)
}

func permutation(n int, rng *rand.Rand) []int {
	if rng != nil {
		return rng.Perm(n)
	}
	return rand.Perm(n)
}

func joint(spans []Span, n int, draw func(s Span, i int) float64) *Points {
	labels := make([]string, len(spans))
	for j, s := range spans {
		labels[j] = s.Name
	}
	data := make([]float64, n*len(spans))
	for i := range n {
		for j, s := range spans {
			if s.IsFixed() {
				data[i*len(spans)+j] = s.Lo
			} else {
				data[i*len(spans)+j] = draw(s, i)
			}
		}
	}
	return &Points{Labels: labels, Data: data}
}

func product(spans []Span, n int, nodes func(lo, hi float64, n int) []float64) (*Points, error) {
	out := &Points{}
	for _, s := range spans {
		values := []float64{s.Lo}
		if !s.IsFixed() {
			values = nodes(s.Lo, s.Hi, n)
		}
		var err error
		if out, err = out.Product(&Points{Labels: []string{s.Name}, Data: values}); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// gridNodes returns n evenly spaced values from lo to hi inclusive.
func gridNodes(lo, hi float64, n int) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// chebyshevNodes returns the n Chebyshev points of the first kind mapped to
// [lo, hi], in increasing order.
func chebyshevNodes(lo, hi float64, n int) []float64 {
	mid, half := (lo+hi)/2, (hi-lo)/2
	out := make([]float64, n)
	for k := range n {
		out[n-1-k] = mid + half*math.Cos(float64(2*k+1)*math.Pi/float64(2*n))
	}
	return out
}
