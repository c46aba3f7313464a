// FILE: paramspace.go
// Package sweep implements the parameter-sweep optimizer (C10): Cartesian
// and random-sampled enumeration of a parameter space, a share-nothing
// worker pool that runs one backtest per point, and the ranking/sensitivity/
// correlation reductions over the resulting objective values.
package sweep

import (
	"math/rand"

	"github.com/chidi150c/backtestlab/internal/xerrors"
)

// ParameterSpace is an ordered name -> candidate-values map. Enumeration
// order follows Names, not Go's randomized map iteration, so the Cartesian
// product is deterministic across runs.
type ParameterSpace struct {
	Names  []string
	Values map[string][]float64
}

// NewParameterSpace builds an empty space; use Add to populate it in the
// order parameters should vary.
func NewParameterSpace() *ParameterSpace {
	return &ParameterSpace{Values: make(map[string][]float64)}
}

// Add appends a parameter and its candidate values. Calling Add twice for
// the same name replaces its values but keeps its original position.
func (p *ParameterSpace) Add(name string, values ...float64) *ParameterSpace {
	if _, exists := p.Values[name]; !exists {
		p.Names = append(p.Names, name)
	}
	p.Values[name] = values
	return p
}

// Size returns the size of the full Cartesian product, 0 for an empty space.
func (p *ParameterSpace) Size() int {
	if len(p.Names) == 0 {
		return 0
	}
	n := 1
	for _, name := range p.Names {
		n *= len(p.Values[name])
	}
	return n
}

// Point is one fully-resolved assignment of parameter name to value.
type Point map[string]float64

// CartesianProduct enumerates every combination of values across Names, in
// insertion order, with the last-added parameter varying fastest.
func (p *ParameterSpace) CartesianProduct() ([]Point, error) {
	if len(p.Names) == 0 {
		return nil, xerrors.ConfigError("parameter space has no parameters")
	}
	for _, name := range p.Names {
		if len(p.Values[name]) == 0 {
			return nil, xerrors.ConfigError("parameter " + name + " has no candidate values")
		}
	}

	points := []Point{{}}
	for _, name := range p.Names {
		values := p.Values[name]
		next := make([]Point, 0, len(points)*len(values))
		for _, base := range points {
			for _, v := range values {
				pt := make(Point, len(base)+1)
				for k, existing := range base {
					pt[k] = existing
				}
				pt[name] = v
				next = append(next, pt)
			}
		}
		points = next
	}
	return points, nil
}

// RandomSample draws n points without replacement from the full Cartesian
// product. If n >= the product's size, the full product is returned (in
// product order, not shuffled). rng must be non-nil; callers pass a seeded
// *rand.Rand so sweep runs stay reproducible.
func (p *ParameterSpace) RandomSample(n int, rng *rand.Rand) ([]Point, error) {
	if rng == nil {
		return nil, xerrors.ConfigError("random sample requires a seeded rng")
	}
	full, err := p.CartesianProduct()
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, xerrors.ConfigError("random sample size must be positive")
	}
	if n >= len(full) {
		return full, nil
	}

	idx := rng.Perm(len(full))[:n]
	sample := make([]Point, n)
	for i, j := range idx {
		sample[i] = full[j]
	}
	return sample, nil
}
