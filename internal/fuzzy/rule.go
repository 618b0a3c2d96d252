package fuzzy

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"mamdani/internal/membership"
)

// Clause is a "variable IS label" term. The variable is shared, never copied.
type Clause struct {
	Variable *Variable
	Label    string
}

func Is(v *Variable, label string) Clause {
	return Clause{Variable: v, Label: label}
}

func (c Clause) String() string {
	if c.Variable == nil {
		return fmt.Sprintf("<nil> IS %s", c.Label)
	}
	return fmt.Sprintf("%s IS %s", c.Variable.Name(), c.Label)
}

// Rule is an immutable Mamdani rule: an AND of antecedents implying one consequent.
type Rule struct {
	antecedents []Clause
	consequent  Clause
	weight      float64
}

func NewRule(antecedents []Clause, consequent Clause, weight float64) (*Rule, error) {
	if math.IsNaN(weight) || weight < 0 || weight > 1 {
		return nil, fmt.Errorf("%w: rule weight %v outside [0, 1]", ErrInvalidParameter, weight)
	}
	if consequent.Variable == nil {
		return nil, fmt.Errorf("%w: rule consequent has no variable", ErrInvalidParameter)
	}
	for i, clause := range antecedents {
		if clause.Variable == nil {
			return nil, fmt.Errorf("%w: antecedent %d has no variable", ErrInvalidParameter, i)
		}
	}
	return &Rule{
		antecedents: append([]Clause(nil), antecedents...),
		consequent:  consequent,
		weight:      weight,
	}, nil
}

func (r *Rule) Antecedents() []Clause {
	return append([]Clause(nil), r.antecedents...)
}

func (r *Rule) Consequent() Clause {
	return r.consequent
}

func (r *Rule) Weight() float64 {
	return r.weight
}

// Evaluate returns the firing strength: the minimum antecedent membership
// scaled by the rule weight. A rule without antecedents never fires.
func (r *Rule) Evaluate(inputs map[string]float64) (float64, error) {
	for _, clause := range r.antecedents {
		if _, ok := inputs[clause.Variable.Name()]; !ok {
			return 0, fmt.Errorf("%w: variable %q", ErrMissingInput, clause.Variable.Name())
		}
	}
	if len(r.antecedents) == 0 {
		return 0, nil
	}

	strength := math.Inf(1)
	for _, clause := range r.antecedents {
		degree, err := clause.Variable.Membership(clause.Label, inputs[clause.Variable.Name()])
		if err != nil {
			return 0, err
		}
		strength = math.Min(strength, degree)
	}
	return strength * r.weight, nil
}

// Implication returns the consequent membership clipped at the firing strength.
func (r *Rule) Implication(inputs map[string]float64) (membership.Func, error) {
	strength, err := r.Evaluate(inputs)
	if err != nil {
		return nil, err
	}
	return r.clip(strength)
}

func (r *Rule) clip(strength float64) (membership.Func, error) {
	set, ok := r.consequent.Variable.Set(r.consequent.Label)
	if !ok {
		return nil, fmt.Errorf("%w: %q not defined for variable %q",
			ErrUndefinedSet, r.consequent.Label, r.consequent.Variable.Name())
	}
	return func(y float64) float64 {
		return math.Min(strength, set.Membership(y))
	}, nil
}

// Clipped is Implication for a firing strength that is already known.
func (r *Rule) Clipped(strength float64) (membership.Func, error) {
	return r.clip(strength)
}

func (r *Rule) String() string {
	terms := make([]string, len(r.antecedents))
	for i, clause := range r.antecedents {
		terms[i] = clause.String()
	}
	return fmt.Sprintf("IF %s THEN %s [%.2f]", strings.Join(terms, " AND "), r.consequent, r.weight)
}

// RuleBuilder assembles a rule fluently:
//
//	fuzzy.If(rsi, "oversold").And(macd, "positive").Then(signal, "buy").Weighted(0.8).Build()
type RuleBuilder struct {
	antecedents []Clause
	consequent  Clause
	weight      float64
	hasThen     bool
}

func If(v *Variable, label string) *RuleBuilder {
	return &RuleBuilder{antecedents: []Clause{Is(v, label)}, weight: 1.0}
}

func (b *RuleBuilder) And(v *Variable, label string) *RuleBuilder {
	b.antecedents = append(b.antecedents, Is(v, label))
	return b
}

func (b *RuleBuilder) Then(v *Variable, label string) *RuleBuilder {
	b.consequent = Is(v, label)
	b.hasThen = true
	return b
}

func (b *RuleBuilder) Weighted(weight float64) *RuleBuilder {
	b.weight = weight
	return b
}

func (b *RuleBuilder) Build() (*Rule, error) {
	if !b.hasThen {
		return nil, errors.New("rule has no consequent")
	}
	return NewRule(b.antecedents, b.consequent, b.weight)
}

func (b *RuleBuilder) MustBuild() *Rule {
	rule, err := b.Build()
	if err != nil {
		panic(err)
	}
	return rule
}
