// Package profiles assembles ready-made rule bases on top of the inference engine
// and turns crisp scores into labelled advice.
package profiles

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"mamdani/internal/fuzzy"
	"mamdani/internal/inference"
)

var ErrUnknownProfile = errors.New("unknown profile")

// defaultResolution matches the sampling the bundled rule bases were tuned with.
const defaultResolution = 200

type Profile struct {
	name        string
	description string
	engine      *inference.Engine
	advice      map[string]string
}

type Assessment struct {
	Profile   string             `json:"profile"`
	Score     float64            `json:"score"`
	Label     string             `json:"label"`
	Degree    float64            `json:"degree"`
	Advice    string             `json:"advice"`
	Fired     bool               `json:"fired"`
	Strengths []float64          `json:"strengths,omitempty"`
	Terms     map[string]float64 `json:"terms,omitempty"`
}

func (p *Profile) Name() string {
	return p.name
}

func (p *Profile) Description() string {
	return p.description
}

func (p *Profile) Engine() *inference.Engine {
	return p.engine
}

func (p *Profile) Output() *fuzzy.Variable {
	return p.engine.Output()
}

// InputNames lists the crisp inputs Assess expects, in declaration order.
func (p *Profile) InputNames() []string {
	inputs := p.engine.Inputs()
	names := make([]string, len(inputs))
	for i, v := range inputs {
		names[i] = v.Name()
	}
	return names
}

func (p *Profile) Advice(label string) string {
	return p.advice[label]
}

// Assess evaluates inputs and labels the score with the output term of highest membership.
func (p *Profile) Assess(inputs map[string]float64) (Assessment, error) {
	result, err := p.engine.Infer(inputs)
	if err != nil {
		return Assessment{}, fmt.Errorf("profile %s: %w", p.name, err)
	}
	output := p.engine.Output()
	label, degree := output.Classify(result.Output)
	return Assessment{
		Profile:   p.name,
		Score:     result.Output,
		Label:     label,
		Degree:    degree,
		Advice:    p.advice[label],
		Fired:     result.Fired,
		Strengths: result.Strengths,
		Terms:     output.FuzzyValues(result.Output),
	}, nil
}

type constructor func(opts ...inference.Option) (*Profile, error)

var descriptions = map[string]string{
	MarketingName:        "marketing campaign quality from engagement, conversion and ROI",
	SegmentationName:     "customer segment from recency, frequency and annual spend",
	TradingName:          "buy/hold/sell signal from RSI, MACD histogram and volatility",
	ShareholderValueName: "shareholder value score (0-100) from performance, ROI, risk and market share",
}

var builtins = map[string]constructor{
	MarketingName:        Marketing,
	SegmentationName:     Segmentation,
	TradingName:          Trading,
	ShareholderValueName: ShareholderValue,
}

func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Describe(name string) (string, error) {
	description, ok := descriptions[NormalizeName(name)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownProfile, name)
	}
	return description, nil
}

// Build constructs a fresh profile. Options override the default resolution.
func Build(name string, opts ...inference.Option) (*Profile, error) {
	build, ok := builtins[NormalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProfile, name)
	}
	return build(opts...)
}

// NormalizeName maps user spellings such as " Shareholder_Value" to the registered name.
func NormalizeName(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	return strings.ReplaceAll(name, "_", "-")
}

func newProfile(name string, inputs []*fuzzy.Variable, output *fuzzy.Variable, rules []*fuzzy.Rule, advice map[string]string, opts []inference.Option) (*Profile, error) {
	engineOpts := append([]inference.Option{inference.WithResolution(defaultResolution)}, opts...)
	engine, err := inference.New(inputs, output, rules, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", name, err)
	}
	for _, label := range output.Labels() {
		if _, ok := advice[label]; !ok {
			return nil, fmt.Errorf("profile %s: no advice for output term %q", name, label)
		}
	}
	return &Profile{
		name:        name,
		description: descriptions[name],
		engine:      engine,
		advice:      advice,
	}, nil
}

func buildVariables(builders ...*fuzzy.VariableBuilder) ([]*fuzzy.Variable, error) {
	out := make([]*fuzzy.Variable, 0, len(builders))
	for _, b := range builders {
		v, err := b.Build()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func buildRules(builders ...*fuzzy.RuleBuilder) ([]*fuzzy.Rule, error) {
	out := make([]*fuzzy.Rule, 0, len(builders))
	for i, b := range builders {
		rule, err := b.Build()
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		out = append(out, rule)
	}
	return out, nil
}
