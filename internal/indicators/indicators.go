// Package indicators derives crisp trading inputs from price series.
//
// Every function works on whatever data is available when the series is
// shorter than the requested window.
package indicators

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidPeriod = errors.New("invalid indicator period")

const neutralRSI = 50.0

// RSI is the relative strength index over the last period price changes,
// using simple averages of gains and losses. Returns 50 with fewer than two
// prices and 100 when there were no losses.
func RSI(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("%w: rsi period %d", ErrInvalidPeriod, period)
	}
	if len(prices) < 2 {
		return neutralRSI, nil
	}

	changes := len(prices) - 1
	window := period
	if window > changes {
		window = changes
	}
	var gain, loss float64
	for i := len(prices) - window; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta
		}
	}
	avgGain := gain / float64(window)
	avgLoss := loss / float64(window)
	if avgLoss == 0 {
		return 100, nil
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), nil
}

// EMA returns the exponential moving average series, seeded with the first value.
func EMA(series []float64, span int) ([]float64, error) {
	if span <= 0 {
		return nil, fmt.Errorf("%w: ema span %d", ErrInvalidPeriod, span)
	}
	if len(series) == 0 {
		return nil, nil
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out := make([]float64, len(series))
	out[0] = series[0]
	for i := 1; i < len(series); i++ {
		out[i] = alpha*series[i] + (1-alpha)*out[i-1]
	}
	return out, nil
}

// SMA is the mean of the last window prices.
func SMA(prices []float64, window int) (float64, error) {
	if window <= 0 {
		return 0, fmt.Errorf("%w: sma window %d", ErrInvalidPeriod, window)
	}
	if len(prices) == 0 {
		return 0, nil
	}
	tail := lastN(prices, window)
	return mean(tail), nil
}

type MACDValue struct {
	Line      float64
	Signal    float64
	Histogram float64
}

// MACD is the latest fast-minus-slow EMA, its signal EMA and their difference.
func MACD(prices []float64, fast, slow, signal int) (MACDValue, error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return MACDValue{}, fmt.Errorf("%w: macd spans %d/%d/%d", ErrInvalidPeriod, fast, slow, signal)
	}
	if len(prices) < 2 {
		return MACDValue{}, nil
	}
	fastEMA, _ := EMA(prices, fast)
	slowEMA, _ := EMA(prices, slow)
	line := make([]float64, len(prices))
	for i := range prices {
		line[i] = fastEMA[i] - slowEMA[i]
	}
	signalEMA, _ := EMA(line, signal)
	last := len(prices) - 1
	return MACDValue{
		Line:      line[last],
		Signal:    signalEMA[last],
		Histogram: line[last] - signalEMA[last],
	}, nil
}

// Volatility is the population standard deviation of log returns over the
// last period prices, scaled by the square root of the number of returns.
func Volatility(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("%w: volatility period %d", ErrInvalidPeriod, period)
	}
	if len(prices) < 2 {
		return 0, nil
	}
	tail := lastN(prices, period)
	if len(tail) < 2 {
		return 0, nil
	}
	returns := make([]float64, 0, len(tail)-1)
	for i := 1; i < len(tail); i++ {
		if tail[i] <= 0 || tail[i-1] <= 0 {
			return 0, fmt.Errorf("volatility: prices must be positive, got %v", tail[i])
		}
		returns = append(returns, math.Log(tail[i]/tail[i-1]))
	}
	return stddev(returns) * math.Sqrt(float64(len(returns))), nil
}

type Bands struct {
	Middle float64
	Upper  float64
	Lower  float64
}

// BollingerBands returns the moving average of the last window prices and the
// bands numStd population standard deviations around it.
func BollingerBands(prices []float64, window int, numStd float64) (Bands, error) {
	if window <= 0 {
		return Bands{}, fmt.Errorf("%w: bollinger window %d", ErrInvalidPeriod, window)
	}
	if len(prices) == 0 {
		return Bands{}, nil
	}
	tail := lastN(prices, window)
	middle := mean(tail)
	spread := numStd * stddev(tail)
	return Bands{Middle: middle, Upper: middle + spread, Lower: middle - spread}, nil
}

func lastN(values []float64, n int) []float64 {
	if n >= len(values) {
		return values
	}
	return values[len(values)-n:]
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}
