package profiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mamdani/internal/fuzzy"
	"mamdani/internal/inference"
)

func TestBuiltinProfilesBuild(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			p, err := Build(name)
			require.NoError(t, err)
			assert.Equal(t, name, p.Name())
			assert.NotEmpty(t, p.Description())
			assert.Equal(t, defaultResolution, p.Engine().Resolution())
			for _, label := range p.Output().Labels() {
				assert.NotEmpty(t, p.Advice(label), label)
			}
		})
	}
}

func TestNamesSorted(t *testing.T) {
	assert.Equal(t, []string{MarketingName, SegmentationName, ShareholderValueName, TradingName}, Names())
}

func TestBuildNormalizesName(t *testing.T) {
	p, err := Build("  Shareholder_Value ")
	require.NoError(t, err)
	assert.Equal(t, ShareholderValueName, p.Name())

	_, err = Build("astrology")
	require.ErrorIs(t, err, ErrUnknownProfile)

	_, err = Describe("astrology")
	require.ErrorIs(t, err, ErrUnknownProfile)
}

func TestBuildHonorsResolutionOverride(t *testing.T) {
	p, err := Build(MarketingName, inference.WithResolution(50))
	require.NoError(t, err)
	assert.Equal(t, 50, p.Engine().Resolution())
}

func TestAssessLabels(t *testing.T) {
	tests := []struct {
		profile string
		inputs  map[string]float64
		label   string
		lo, hi  float64
	}{
		{
			profile: MarketingName,
			inputs:  map[string]float64{"engagement_rate": 0.8, "conversion_rate": 0.6, "roi": 3.5},
			label:   "excellent", lo: 0.85, hi: 0.95,
		},
		{
			profile: MarketingName,
			inputs:  map[string]float64{"engagement_rate": 0.1, "conversion_rate": 0.05, "roi": 0.5},
			label:   "poor", lo: 0.1, hi: 0.17,
		},
		{
			profile: MarketingName,
			inputs:  map[string]float64{"engagement_rate": 0.5, "conversion_rate": 0.25, "roi": 1.5},
			label:   "average", lo: 0.38, hi: 0.42,
		},
		{
			profile: SegmentationName,
			inputs:  map[string]float64{"recency_days": 15, "purchase_frequency": 20, "annual_spend": 7500},
			label:   "champion", lo: 0.85, hi: 0.92,
		},
		{
			profile: SegmentationName,
			inputs:  map[string]float64{"recency_days": 300, "purchase_frequency": 1, "annual_spend": 500},
			label:   "at_risk", lo: 0.1, hi: 0.17,
		},
		{
			profile: SegmentationName,
			inputs:  map[string]float64{"recency_days": 90, "purchase_frequency": 10, "annual_spend": 3500},
			label:   "loyal", lo: 0.62, hi: 0.68,
		},
		{
			profile: TradingName,
			inputs:  map[string]float64{"rsi": 20, "macd_histogram": 1, "volatility": 0.05},
			label:   "buy", lo: 0.8, hi: 0.9,
		},
		{
			profile: TradingName,
			inputs:  map[string]float64{"rsi": 85, "macd_histogram": -1, "volatility": 0.05},
			label:   "sell", lo: 0.1, hi: 0.2,
		},
		{
			profile: TradingName,
			inputs:  map[string]float64{"rsi": 50, "macd_histogram": 0, "volatility": 0.3},
			label:   "hold", lo: 0.49, hi: 0.51,
		},
		{
			profile: ShareholderValueName,
			inputs:  map[string]float64{"trading_performance": 0.3, "marketing_roi": 4, "risk": 0.1, "market_share_growth": 0.1},
			label:   "excellent", lo: 85, hi: 92,
		},
		{
			profile: ShareholderValueName,
			inputs:  map[string]float64{"trading_performance": -0.3, "marketing_roi": 0.2, "risk": 0.9, "market_share_growth": -0.1},
			label:   "poor", lo: 10, hi: 16,
		},
		{
			profile: ShareholderValueName,
			inputs:  map[string]float64{"trading_performance": 0, "marketing_roi": 1.5, "risk": 0.5, "market_share_growth": 0},
			label:   "fair", lo: 40, hi: 47,
		},
	}
	for _, tc := range tests {
		t.Run(tc.profile+"/"+tc.label, func(t *testing.T) {
			p, err := Build(tc.profile)
			require.NoError(t, err)
			got, err := p.Assess(tc.inputs)
			require.NoError(t, err)
			assert.True(t, got.Fired)
			assert.Equal(t, tc.label, got.Label)
			assert.GreaterOrEqual(t, got.Score, tc.lo)
			assert.LessOrEqual(t, got.Score, tc.hi)
			assert.Equal(t, p.Advice(tc.label), got.Advice)
			assert.Len(t, got.Strengths, len(p.Engine().Rules()))
			assert.Contains(t, got.Terms, tc.label)
		})
	}
}

func TestAssessFallsBackWhenNothingFires(t *testing.T) {
	p, err := Marketing()
	require.NoError(t, err)
	got, err := p.Assess(map[string]float64{"engagement_rate": 0, "conversion_rate": 0, "roi": 0})
	require.NoError(t, err)
	assert.False(t, got.Fired)
	assert.Equal(t, 0.5, got.Score)
	assert.Equal(t, "average", got.Label)
}

func TestAssessMissingInput(t *testing.T) {
	p, err := Trading()
	require.NoError(t, err)
	_, err = p.Assess(map[string]float64{"rsi": 50})
	require.ErrorIs(t, err, fuzzy.ErrMissingInput)
}

func TestInputNames(t *testing.T) {
	p, err := ShareholderValue()
	require.NoError(t, err)
	assert.Equal(t, []string{"trading_performance", "marketing_roi", "risk", "market_share_growth"}, p.InputNames())
}

func TestTradingInputs(t *testing.T) {
	_, err := TradingInputs(nil)
	require.Error(t, err)

	rising := make([]float64, 40)
	for i := range rising {
		rising[i] = 100 + float64(i)
	}
	inputs, err := TradingInputs(rising)
	require.NoError(t, err)
	assert.Equal(t, 100.0, inputs["rsi"])
	assert.Greater(t, inputs["macd_histogram"], 0.0)
	assert.Greater(t, inputs["volatility"], 0.0)

	p, err := Trading()
	require.NoError(t, err)
	_, err = p.Assess(inputs)
	require.NoError(t, err)
}
