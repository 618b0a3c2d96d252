// Package inference runs Mamdani inference over frozen fuzzy variables and rules.
package inference

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mamdani/internal/fuzzy"
	"mamdani/internal/membership"
)

const (
	MinResolution     = 10
	DefaultResolution = 1000
)

type Option func(*Engine)

// WithResolution sets the number of output samples. Values below MinResolution are raised to it.
func WithResolution(n int) Option {
	return func(e *Engine) {
		e.resolution = n
	}
}

// WithWorkers samples rule outputs on up to n goroutines. n <= 1 keeps evaluation sequential.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine is immutable after New and safe for concurrent Evaluate calls.
type Engine struct {
	inputs     map[string]*fuzzy.Variable
	inputOrder []string
	output     *fuzzy.Variable
	rules      []*fuzzy.Rule
	resolution int
	workers    int
	universe   []float64
	logger     *zap.Logger
}

// Result is the full outcome of one inference.
type Result struct {
	Output float64
	// Fired is false when no rule contributed and Output is the domain midpoint.
	Fired     bool
	Strengths []float64
	Universe  []float64
	Aggregate []float64
}

func New(inputs []*fuzzy.Variable, output *fuzzy.Variable, rules []*fuzzy.Rule, opts ...Option) (*Engine, error) {
	if output == nil {
		return nil, fmt.Errorf("%w: output variable is required", fuzzy.ErrInvalidParameter)
	}

	e := &Engine{
		inputs:     make(map[string]*fuzzy.Variable, len(inputs)),
		inputOrder: make([]string, 0, len(inputs)),
		output:     output,
		rules:      make([]*fuzzy.Rule, 0, len(rules)),
		resolution: DefaultResolution,
		workers:    1,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.resolution < MinResolution {
		e.resolution = MinResolution
	}

	for _, v := range inputs {
		if v == nil {
			return nil, fmt.Errorf("%w: nil input variable", fuzzy.ErrInvalidParameter)
		}
		if _, exists := e.inputs[v.Name()]; exists {
			return nil, fmt.Errorf("%w: duplicate input variable %q", fuzzy.ErrInvalidParameter, v.Name())
		}
		e.inputs[v.Name()] = v
		e.inputOrder = append(e.inputOrder, v.Name())
	}
	for i, rule := range rules {
		if rule == nil {
			return nil, fmt.Errorf("%w: rule %d is nil", fuzzy.ErrInvalidParameter, i)
		}
		e.rules = append(e.rules, rule)
	}

	domain := output.Domain()
	e.universe = Universe(domain.Min, domain.Max, e.resolution)
	return e, nil
}

func (e *Engine) Resolution() int {
	return e.resolution
}

// Inputs returns the input variables in construction order.
func (e *Engine) Inputs() []*fuzzy.Variable {
	out := make([]*fuzzy.Variable, 0, len(e.inputOrder))
	for _, name := range e.inputOrder {
		out = append(out, e.inputs[name])
	}
	return out
}

func (e *Engine) Output() *fuzzy.Variable {
	return e.output
}

func (e *Engine) Rules() []*fuzzy.Rule {
	return append([]*fuzzy.Rule(nil), e.rules...)
}

// Evaluate maps crisp inputs to a crisp output by centroid defuzzification.
// When no rule fires the output domain midpoint is returned.
func (e *Engine) Evaluate(inputs map[string]float64) (float64, error) {
	result, err := e.Infer(inputs)
	if err != nil {
		return 0, err
	}
	return result.Output, nil
}

func (e *Engine) Infer(inputs map[string]float64) (Result, error) {
	for _, name := range e.inputOrder {
		if _, ok := inputs[name]; !ok {
			return Result{}, fmt.Errorf("%w: variable %q", fuzzy.ErrMissingInput, name)
		}
	}

	strengths := make([]float64, len(e.rules))
	curves := make([][]float64, len(e.rules))
	sample := func(i int) error {
		rule := e.rules[i]
		strength, err := rule.Evaluate(inputs)
		if err != nil {
			return fmt.Errorf("rule %d (%s): %w", i, rule, err)
		}
		clipped, err := rule.Clipped(strength)
		if err != nil {
			return fmt.Errorf("rule %d (%s): %w", i, rule, err)
		}
		strengths[i] = strength
		curves[i] = membership.Sample(clipped, e.universe)
		return nil
	}

	if e.workers > 1 && len(e.rules) > 1 {
		var g errgroup.Group
		g.SetLimit(e.workers)
		for i := range e.rules {
			g.Go(func() error { return sample(i) })
		}
		if err := g.Wait(); err != nil {
			return Result{}, err
		}
	} else {
		for i := range e.rules {
			if err := sample(i); err != nil {
				return Result{}, err
			}
		}
	}

	aggregate := make([]float64, len(e.universe))
	for _, curve := range curves {
		for j, degree := range curve {
			aggregate[j] = math.Max(aggregate[j], degree)
		}
	}

	result := Result{
		Strengths: strengths,
		Universe:  append([]float64(nil), e.universe...),
		Aggregate: aggregate,
	}
	centroid, ok := Centroid(e.universe, aggregate)
	if !ok {
		result.Output = e.output.Domain().Midpoint()
		e.logger.Debug("no rule fired, using output domain midpoint",
			zap.String("output", e.output.Name()),
			zap.Float64("midpoint", result.Output),
			zap.Int("rules", len(e.rules)))
		return result, nil
	}
	result.Output = centroid
	result.Fired = true
	return result, nil
}
