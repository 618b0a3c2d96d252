package profiles

import (
	"mamdani/internal/fuzzy"
	"mamdani/internal/inference"
)

const (
	MarketingName    = "marketing"
	SegmentationName = "segmentation"
)

// Marketing rates campaign quality from engagement_rate (0-1), conversion_rate (0-1)
// and roi (capped at 5).
func Marketing(opts ...inference.Option) (*Profile, error) {
	vars, err := buildVariables(
		fuzzy.NewVariable("engagement_rate", 0, 1).
			AddShape("low", "triangular", 0, 0.1, 0.3).
			AddShape("medium", "triangular", 0.2, 0.5, 0.8).
			AddShape("high", "triangular", 0.6, 0.8, 1.0),
		fuzzy.NewVariable("conversion_rate", 0, 1).
			AddShape("low", "triangular", 0, 0.05, 0.15).
			AddShape("medium", "triangular", 0.1, 0.25, 0.4).
			AddShape("high", "triangular", 0.3, 0.6, 1.0),
		fuzzy.NewVariable("roi", 0, 5).
			AddShape("low", "triangular", 0, 0.5, 1.0).
			AddShape("medium", "triangular", 0.8, 1.5, 2.5).
			AddShape("high", "triangular", 2.0, 3.5, 5.0),
		fuzzy.NewVariable("quality", 0, 1).
			AddShape("poor", "triangular", 0, 0.1, 0.3).
			AddShape("average", "triangular", 0.25, 0.4, 0.55).
			AddShape("good", "triangular", 0.5, 0.7, 0.85).
			AddShape("excellent", "triangular", 0.8, 0.9, 1.0),
	)
	if err != nil {
		return nil, err
	}
	engagement, conversion, roi, quality := vars[0], vars[1], vars[2], vars[3]

	rules, err := buildRules(
		fuzzy.If(engagement, "high").And(conversion, "high").And(roi, "high").Then(quality, "excellent"),
		fuzzy.If(engagement, "high").And(conversion, "medium").And(roi, "medium").Then(quality, "good"),
		fuzzy.If(engagement, "medium").And(conversion, "high").And(roi, "medium").Then(quality, "good"),
		fuzzy.If(engagement, "medium").And(conversion, "medium").And(roi, "medium").Then(quality, "average"),
		fuzzy.If(engagement, "low").And(conversion, "low").Then(quality, "poor"),
		fuzzy.If(roi, "low").And(engagement, "low").Then(quality, "poor").Weighted(0.8),
		fuzzy.If(roi, "low").And(conversion, "low").Then(quality, "poor").Weighted(0.8),
		fuzzy.If(roi, "high").And(engagement, "high").And(conversion, "medium").Then(quality, "good"),
		fuzzy.If(roi, "high").And(conversion, "high").And(engagement, "medium").Then(quality, "good"),
	)
	if err != nil {
		return nil, err
	}

	advice := map[string]string{
		"poor":      "Reevaluate campaign strategy and increase targeting efforts.",
		"average":   "Optimize specific elements to improve conversion.",
		"good":      "Maintain momentum and consider scaling successful tactics.",
		"excellent": "Double down on successful channels and reinvest gains.",
	}
	return newProfile(MarketingName, vars[:3], quality, rules, advice, opts)
}

// Segmentation assigns an RFM segment from recency_days, purchase_frequency and annual_spend.
func Segmentation(opts ...inference.Option) (*Profile, error) {
	vars, err := buildVariables(
		fuzzy.NewVariable("recency_days", 0, 365).
			AddShape("very_recent", "triangular", 0, 15, 45).
			AddShape("recent", "triangular", 30, 90, 150).
			AddShape("not_recent", "triangular", 120, 240, 365),
		fuzzy.NewVariable("purchase_frequency", 0, 30).
			AddShape("low", "triangular", 0, 1, 5).
			AddShape("medium", "triangular", 4, 10, 16).
			AddShape("high", "triangular", 12, 20, 30),
		fuzzy.NewVariable("annual_spend", 0, 10000).
			AddShape("low", "triangular", 0, 500, 2000).
			AddShape("medium", "triangular", 1500, 3500, 6000).
			AddShape("high", "triangular", 5000, 7500, 10000),
		fuzzy.NewVariable("segment", 0, 1).
			AddShape("at_risk", "triangular", 0, 0.1, 0.3).
			AddShape("potential_loyalist", "triangular", 0.25, 0.4, 0.55).
			AddShape("loyal", "triangular", 0.5, 0.65, 0.8).
			AddShape("champion", "triangular", 0.75, 0.9, 1.0),
	)
	if err != nil {
		return nil, err
	}
	recency, frequency, spend, segment := vars[0], vars[1], vars[2], vars[3]

	rules, err := buildRules(
		fuzzy.If(recency, "very_recent").And(frequency, "high").And(spend, "high").Then(segment, "champion"),
		fuzzy.If(recency, "recent").And(frequency, "medium").And(spend, "medium").Then(segment, "loyal"),
		fuzzy.If(recency, "recent").And(frequency, "high").And(spend, "medium").Then(segment, "loyal"),
		fuzzy.If(recency, "recent").And(frequency, "medium").And(spend, "low").Then(segment, "potential_loyalist"),
		fuzzy.If(recency, "not_recent").And(frequency, "low").Then(segment, "at_risk"),
		fuzzy.If(recency, "not_recent").And(spend, "low").Then(segment, "at_risk").Weighted(0.8),
		fuzzy.If(spend, "high").And(frequency, "high").And(recency, "recent").Then(segment, "champion").Weighted(0.8),
	)
	if err != nil {
		return nil, err
	}

	advice := map[string]string{
		"champion":           "Recent, frequent, and high-value customer.",
		"loyal":              "Regular customer with consistent purchases.",
		"potential_loyalist": "Emerging customer with growth potential.",
		"at_risk":            "Customer with declining activity and spend.",
	}
	return newProfile(SegmentationName, vars[:3], segment, rules, advice, opts)
}
