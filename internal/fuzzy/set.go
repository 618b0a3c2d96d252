// Package fuzzy holds fuzzy sets, linguistic variables and if-then rules.
package fuzzy

import (
	"errors"
	"fmt"

	"mamdani/internal/membership"
)

var (
	ErrInvalidParameter = membership.ErrInvalidParameter
	ErrUndefinedSet     = errors.New("undefined fuzzy set")
	ErrMissingInput     = errors.New("missing input")
)

// Set pairs a membership function with a label and the parameters it was built from.
type Set struct {
	fn     membership.Function
	label  string
	kind   string
	params []float64
}

func NewSet(fn membership.Function, label string, params ...float64) Set {
	return Set{fn: fn, label: label, params: append([]float64(nil), params...)}
}

// ShapeSet builds a set from a registered membership shape.
func ShapeSet(label, kind string, params ...float64) (Set, error) {
	fn, err := membership.New(kind, params...)
	if err != nil {
		return Set{}, fmt.Errorf("set %q: %w", label, err)
	}
	set := NewSet(fn, label, params...)
	set.kind = kind
	return set, nil
}

func (s Set) Membership(x float64) float64 {
	if s.fn == nil {
		return 0
	}
	return s.fn.Degree(x)
}

func (s Set) Label() string {
	return s.label
}

// Kind is the registered shape name, empty for sets built from arbitrary functions.
func (s Set) Kind() string {
	return s.kind
}

func (s Set) Params() []float64 {
	return append([]float64(nil), s.params...)
}

func (s Set) Function() membership.Function {
	return s.fn
}
