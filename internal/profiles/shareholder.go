package profiles

import (
	"mamdani/internal/fuzzy"
	"mamdani/internal/inference"
)

const ShareholderValueName = "shareholder-value"

// ShareholderValue scores overall shareholder value on 0-100 from
// trading_performance (annual return), marketing_roi, risk (0-1) and
// market_share_growth (fractional change).
func ShareholderValue(opts ...inference.Option) (*Profile, error) {
	vars, err := buildVariables(
		fuzzy.NewVariable("trading_performance", -0.5, 0.5).
			AddShape("negative", "trapezoidal", -0.5, -0.5, -0.1, 0).
			AddShape("flat", "triangular", -0.1, 0, 0.1).
			AddShape("positive", "trapezoidal", 0, 0.1, 0.5, 0.5),
		fuzzy.NewVariable("marketing_roi", 0, 5).
			AddShape("low", "gaussian", 0, 0.6).
			AddShape("moderate", "gaussian", 1.5, 0.5).
			AddShape("high", "sigmoid", 2.5, 3),
		fuzzy.NewVariable("risk", 0, 1).
			AddShape("low", "trapezoidal", 0, 0, 0.2, 0.4).
			AddShape("medium", "triangular", 0.3, 0.5, 0.7).
			AddShape("high", "trapezoidal", 0.6, 0.8, 1, 1),
		fuzzy.NewVariable("market_share_growth", -0.2, 0.2).
			AddShape("shrinking", "trapezoidal", -0.2, -0.2, -0.05, 0).
			AddShape("stable", "triangular", -0.05, 0, 0.05).
			AddShape("growing", "trapezoidal", 0, 0.05, 0.2, 0.2),
		fuzzy.NewVariable("shareholder_value", 0, 100).
			AddShape("poor", "trapezoidal", 0, 0, 15, 35).
			AddShape("fair", "triangular", 25, 45, 60).
			AddShape("good", "triangular", 50, 65, 80).
			AddShape("excellent", "trapezoidal", 70, 85, 100, 100),
	)
	if err != nil {
		return nil, err
	}
	performance, roi, risk, growth, value := vars[0], vars[1], vars[2], vars[3], vars[4]

	rules, err := buildRules(
		fuzzy.If(performance, "positive").And(roi, "high").And(risk, "low").Then(value, "excellent"),
		fuzzy.If(performance, "positive").And(growth, "growing").And(risk, "low").Then(value, "excellent").Weighted(0.9),
		fuzzy.If(performance, "positive").And(roi, "moderate").Then(value, "good"),
		fuzzy.If(growth, "growing").And(roi, "moderate").Then(value, "good").Weighted(0.8),
		fuzzy.If(performance, "flat").And(roi, "moderate").And(risk, "medium").Then(value, "fair"),
		fuzzy.If(growth, "stable").And(performance, "flat").Then(value, "fair"),
		fuzzy.If(risk, "high").And(performance, "flat").Then(value, "fair").Weighted(0.6),
		fuzzy.If(performance, "positive").And(risk, "high").Then(value, "fair").Weighted(0.7),
		fuzzy.If(performance, "negative").And(risk, "high").Then(value, "poor"),
		fuzzy.If(growth, "shrinking").And(roi, "low").Then(value, "poor"),
		fuzzy.If(performance, "negative").And(roi, "low").Then(value, "poor").Weighted(0.9),
	)
	if err != nil {
		return nil, err
	}

	advice := map[string]string{
		"poor":      "Cut underperforming programmes, reduce risk exposure and revisit capital allocation.",
		"fair":      "Stabilise margins and focus marketing spend on the highest-ROI channels.",
		"good":      "Sustain growth initiatives and consider measured buybacks or dividends.",
		"excellent": "Reinvest in proven growth engines and communicate results to shareholders.",
	}
	return newProfile(ShareholderValueName, vars[:4], value, rules, advice, opts)
}
