package profiles

import (
	"fmt"

	"mamdani/internal/fuzzy"
	"mamdani/internal/indicators"
	"mamdani/internal/inference"
)

const TradingName = "trading"

const (
	rsiPeriod        = 14
	macdFast         = 12
	macdSlow         = 26
	macdSignal       = 9
	volatilityPeriod = 10
)

// Trading turns rsi (0-100), macd_histogram (percent of last price) and
// volatility (fraction) into a sell/hold/buy signal on [0, 1].
func Trading(opts ...inference.Option) (*Profile, error) {
	vars, err := buildVariables(
		fuzzy.NewVariable("rsi", 0, 100).
			AddShape("oversold", "trapezoidal", 0, 0, 25, 40).
			AddShape("neutral", "triangular", 30, 50, 70).
			AddShape("overbought", "trapezoidal", 60, 75, 100, 100),
		fuzzy.NewVariable("macd_histogram", -2, 2).
			AddShape("bearish", "trapezoidal", -2, -2, -0.5, 0).
			AddShape("flat", "triangular", -0.5, 0, 0.5).
			AddShape("bullish", "trapezoidal", 0, 0.5, 2, 2),
		fuzzy.NewVariable("volatility", 0, 1).
			AddShape("low", "trapezoidal", 0, 0, 0.1, 0.25).
			AddShape("moderate", "gaussian", 0.3, 0.1).
			AddShape("high", "sigmoid", 0.5, 15),
		fuzzy.NewVariable("signal", 0, 1).
			AddShape("sell", "trapezoidal", 0, 0, 0.2, 0.4).
			AddShape("hold", "triangular", 0.3, 0.5, 0.7).
			AddShape("buy", "trapezoidal", 0.6, 0.8, 1, 1),
	)
	if err != nil {
		return nil, err
	}
	rsi, macd, volatility, signal := vars[0], vars[1], vars[2], vars[3]

	rules, err := buildRules(
		fuzzy.If(rsi, "oversold").And(macd, "bullish").Then(signal, "buy"),
		fuzzy.If(rsi, "overbought").And(macd, "bearish").Then(signal, "sell"),
		fuzzy.If(rsi, "oversold").And(macd, "flat").And(volatility, "low").Then(signal, "buy").Weighted(0.7),
		fuzzy.If(rsi, "overbought").And(macd, "flat").And(volatility, "low").Then(signal, "sell").Weighted(0.7),
		fuzzy.If(rsi, "neutral").And(macd, "flat").Then(signal, "hold"),
		fuzzy.If(volatility, "high").Then(signal, "hold").Weighted(0.8),
		fuzzy.If(rsi, "neutral").And(macd, "bullish").And(volatility, "low").Then(signal, "buy").Weighted(0.6),
		fuzzy.If(rsi, "neutral").And(macd, "bearish").And(volatility, "low").Then(signal, "sell").Weighted(0.6),
		fuzzy.If(rsi, "oversold").And(macd, "bearish").Then(signal, "hold").Weighted(0.5),
		fuzzy.If(rsi, "overbought").And(macd, "bullish").Then(signal, "hold").Weighted(0.5),
	)
	if err != nil {
		return nil, err
	}

	advice := map[string]string{
		"sell": "Reduce exposure or close long positions.",
		"hold": "Keep current positions and wait for a clearer signal.",
		"buy":  "Open or add to long positions within risk limits.",
	}
	return newProfile(TradingName, vars[:3], signal, rules, advice, opts)
}

// TradingInputs derives the trading profile inputs from a price series,
// oldest price first.
func TradingInputs(prices []float64) (map[string]float64, error) {
	if len(prices) == 0 {
		return nil, fmt.Errorf("trading inputs: empty price series")
	}
	rsi, err := indicators.RSI(prices, rsiPeriod)
	if err != nil {
		return nil, err
	}
	macd, err := indicators.MACD(prices, macdFast, macdSlow, macdSignal)
	if err != nil {
		return nil, err
	}
	volatility, err := indicators.Volatility(prices, volatilityPeriod)
	if err != nil {
		return nil, err
	}

	last := prices[len(prices)-1]
	histogram := 0.0
	if last != 0 {
		histogram = macd.Histogram / last * 100
	}
	return map[string]float64{
		"rsi":            rsi,
		"macd_histogram": histogram,
		"volatility":     volatility,
	}, nil
}
