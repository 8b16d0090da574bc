package core

import (
	"fmt"
	"math"
	"slices"

	"github.com/hfconf/hfconf/schema"
)

// Systematic is an immutable uncertainty descriptor. Two samples that attach
// systematics with the same name are correlated in the downstream fit.
type Systematic struct {
	name    string
	weights string
	high    []float64
	low     []float64
	origin  schema.SystematicOrigin
	kind    schema.SystematicKind
}

// NewSystematic validates and builds a systematic. Overall kinds take exactly
// one high and one low factor; shape kinds take one factor per bin.
func NewSystematic(name, weights string, high, low []float64, origin schema.SystematicOrigin, kind schema.SystematicKind) (*Systematic, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: systematic name is empty", ErrInvalidSystematic)
	}
	if _, ok := schema.ValidSystematicKinds[kind]; !ok {
		return nil, fmt.Errorf("%w: %s: unknown kind %q", ErrInvalidSystematic, name, kind)
	}
	if _, ok := schema.ValidSystematicOrigins[origin]; !ok {
		return nil, fmt.Errorf("%w: %s: unknown origin %q", ErrInvalidSystematic, name, origin)
	}
	if kind.IsUser() && origin != schema.UserOrigin {
		return nil, fmt.Errorf("%w: %s: kind %s requires origin %s, got %s", ErrInvalidSystematic, name, kind, schema.UserOrigin, origin)
	}
	if len(high) == 0 || len(low) == 0 {
		return nil, fmt.Errorf("%w: %s: high and low factors are required", ErrInvalidSystematic, name)
	}
	if len(high) != len(low) {
		return nil, fmt.Errorf("%w: %s: %d high factors but %d low factors", ErrInvalidSystematic, name, len(high), len(low))
	}
	if !kind.IsShape() && len(high) != 1 {
		return nil, fmt.Errorf("%w: %s: kind %s takes a single factor, got %d", ErrInvalidSystematic, name, kind, len(high))
	}
	for i := range high {
		if !validFactor(high[i]) || !validFactor(low[i]) {
			return nil, fmt.Errorf("%w: %s: factors must be finite and positive (bin %d: high=%g low=%g)", ErrInvalidSystematic, name, i, high[i], low[i])
		}
	}

	return &Systematic{
		name:    name,
		weights: weights,
		high:    slices.Clone(high),
		low:     slices.Clone(low),
		origin:  origin,
		kind:    kind,
	}, nil
}

// NewOverallSystematic builds a user-defined normalization uncertainty.
func NewOverallSystematic(name, weights string, high, low float64) (*Systematic, error) {
	return NewSystematic(name, weights, []float64{high}, []float64{low}, schema.UserOrigin, schema.UserOverallSys)
}

// NewHistoSystematic builds a user-defined per-bin shape uncertainty.
func NewHistoSystematic(name, weights string, high, low []float64) (*Systematic, error) {
	return NewSystematic(name, weights, high, low, schema.UserOrigin, schema.UserHistoSys)
}

func validFactor(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Name returns the systematic name.
func (s *Systematic) Name() string { return s.name }

// Weights returns the weight expression the systematic was built with.
func (s *Systematic) Weights() string { return s.weights }

// High returns a copy of the upward variation factors.
func (s *Systematic) High() []float64 { return slices.Clone(s.high) }

// Low returns a copy of the downward variation factors.
func (s *Systematic) Low() []float64 { return slices.Clone(s.low) }

// Origin returns the origin tag.
func (s *Systematic) Origin() schema.SystematicOrigin { return s.origin }

// Kind returns the kind tag.
func (s *Systematic) Kind() schema.SystematicKind { return s.kind }

// Bins returns the number of bins a shape systematic covers, or 0 for an overall one.
func (s *Systematic) Bins() int {
	if !s.kind.IsShape() {
		return 0
	}
	return len(s.high)
}

// summary returns the render form of the systematic.
func (s *Systematic) summary() schema.SystematicSummary {
	return schema.SystematicSummary{
		Name:    s.name,
		Weights: s.weights,
		High:    s.High(),
		Low:     s.Low(),
		Origin:  s.origin,
		Kind:    s.kind,
	}
}
