package fuzzy

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Domain is the validity interval of a variable. It guides output sampling;
// membership functions are not clamped to it.
type Domain struct {
	Min float64
	Max float64
}

func (d Domain) Midpoint() float64 {
	return (d.Min + d.Max) / 2.0
}

func (d Domain) Span() float64 {
	return d.Max - d.Min
}

func (d Domain) validate() error {
	if math.IsNaN(d.Min) || math.IsNaN(d.Max) || math.IsInf(d.Min, 0) || math.IsInf(d.Max, 0) {
		return fmt.Errorf("%w: domain bounds must be finite", ErrInvalidParameter)
	}
	if d.Min >= d.Max {
		return fmt.Errorf("%w: domain min %v must be below max %v", ErrInvalidParameter, d.Min, d.Max)
	}
	return nil
}

// Degree is one label's membership at a crisp value.
type Degree struct {
	Label  string
	Degree float64
}

// Variable is a frozen, read-only linguistic variable. Build one with NewVariable.
type Variable struct {
	name   string
	domain Domain
	labels []string
	sets   map[string]Set
}

func (v *Variable) Name() string {
	return v.name
}

func (v *Variable) Domain() Domain {
	return v.domain
}

// Labels returns set labels in insertion order.
func (v *Variable) Labels() []string {
	return append([]string(nil), v.labels...)
}

func (v *Variable) Contains(label string) bool {
	_, ok := v.sets[label]
	return ok
}

func (v *Variable) Set(label string) (Set, bool) {
	set, ok := v.sets[label]
	return set, ok
}

func (v *Variable) Membership(label string, x float64) (float64, error) {
	set, ok := v.sets[label]
	if !ok {
		return 0, fmt.Errorf("%w: %q not defined for variable %q", ErrUndefinedSet, label, v.name)
	}
	return set.Membership(x), nil
}

// FuzzyValues fuzzifies x against every set of the variable.
func (v *Variable) FuzzyValues(x float64) map[string]float64 {
	out := make(map[string]float64, len(v.sets))
	for label, set := range v.sets {
		out[label] = set.Membership(x)
	}
	return out
}

// Degrees is FuzzyValues in insertion order.
func (v *Variable) Degrees(x float64) []Degree {
	out := make([]Degree, 0, len(v.labels))
	for _, label := range v.labels {
		out = append(out, Degree{Label: label, Degree: v.sets[label].Membership(x)})
	}
	return out
}

// Classify returns the label with the highest membership at x. Ties go to the
// label inserted first. A variable without sets yields an empty label.
func (v *Variable) Classify(x float64) (string, float64) {
	best, bestDegree := "", math.Inf(-1)
	for _, d := range v.Degrees(x) {
		if d.Degree > bestDegree {
			best, bestDegree = d.Label, d.Degree
		}
	}
	if best == "" {
		return "", 0
	}
	return best, bestDegree
}

func (v *Variable) String() string {
	return fmt.Sprintf("Variable(name=%q, domain=[%g, %g], sets=[%s])",
		v.name, v.domain.Min, v.domain.Max, strings.Join(v.labels, ", "))
}

// VariableBuilder accumulates sets before freezing them into a Variable.
type VariableBuilder struct {
	name   string
	domain Domain
	labels []string
	sets   map[string]Set
	errs   []error
}

func NewVariable(name string, min, max float64) *VariableBuilder {
	return &VariableBuilder{
		name:   name,
		domain: Domain{Min: min, Max: max},
		sets:   make(map[string]Set),
	}
}

// AddSet stores set under label, replacing any earlier set with the same label
// while keeping its original position.
func (b *VariableBuilder) AddSet(label string, set Set) *VariableBuilder {
	if label == "" {
		b.errs = append(b.errs, fmt.Errorf("%w: empty set label", ErrInvalidParameter))
		return b
	}
	if set.fn == nil {
		b.errs = append(b.errs, fmt.Errorf("%w: set %q has no membership function", ErrInvalidParameter, label))
		return b
	}
	if _, exists := b.sets[label]; !exists {
		b.labels = append(b.labels, label)
	}
	if set.label == "" {
		set.label = label
	}
	b.sets[label] = set
	return b
}

// AddShape adds a set built from a registered membership shape.
func (b *VariableBuilder) AddShape(label, kind string, params ...float64) *VariableBuilder {
	set, err := ShapeSet(label, kind, params...)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	return b.AddSet(label, set)
}

func (b *VariableBuilder) Build() (*Variable, error) {
	if b.name == "" {
		return nil, fmt.Errorf("%w: variable name is required", ErrInvalidParameter)
	}
	if err := b.domain.validate(); err != nil {
		return nil, fmt.Errorf("variable %q: %w", b.name, err)
	}
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("variable %q: %w", b.name, errors.Join(b.errs...))
	}

	sets := make(map[string]Set, len(b.sets))
	for label, set := range b.sets {
		sets[label] = set
	}
	return &Variable{
		name:   b.name,
		domain: b.domain,
		labels: append([]string(nil), b.labels...),
		sets:   sets,
	}, nil
}

// MustBuild is Build for statically known configurations.
func (b *VariableBuilder) MustBuild() *Variable {
	v, err := b.Build()
	if err != nil {
		panic(err)
	}
	return v
}
