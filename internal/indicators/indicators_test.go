package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRSI(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		period int
		want   float64
	}{
		{name: "insufficient data", prices: []float64{10}, period: 14, want: 50},
		{name: "only gains", prices: []float64{1, 2, 3, 4}, period: 14, want: 100},
		{name: "only losses", prices: []float64{4, 3, 2, 1}, period: 14, want: 0},
		{name: "balanced", prices: []float64{10, 11, 10, 11, 10}, period: 4, want: 50},
		// last 2 changes: +2, -1 -> rs = 2
		{name: "window", prices: []float64{50, 10, 12, 11}, period: 2, want: 100 - 100.0/3.0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := RSI(tc.prices, tc.period)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}

	_, err := RSI([]float64{1, 2}, 0)
	require.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestEMA(t *testing.T) {
	got, err := EMA([]float64{1, 2, 3}, 3)
	require.NoError(t, err)
	// alpha = 0.5
	assert.InDeltaSlice(t, []float64{1, 1.5, 2.25}, got, 1e-12)

	empty, err := EMA(nil, 3)
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = EMA([]float64{1}, 0)
	require.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestSMA(t *testing.T) {
	got, err := SMA([]float64{1, 2, 3, 4, 5}, 2)
	require.NoError(t, err)
	assert.Equal(t, 4.5, got)

	got, err = SMA([]float64{2, 4}, 10)
	require.NoError(t, err)
	assert.Equal(t, 3.0, got)
}

func TestMACD(t *testing.T) {
	flat, err := MACD([]float64{5, 5, 5, 5}, 12, 26, 9)
	require.NoError(t, err)
	assert.InDelta(t, 0, flat.Line, 1e-12)
	assert.InDelta(t, 0, flat.Signal, 1e-12)
	assert.InDelta(t, 0, flat.Histogram, 1e-12)

	rising := make([]float64, 60)
	for i := range rising {
		rising[i] = 100 + float64(i)
	}
	value, err := MACD(rising, 12, 26, 9)
	require.NoError(t, err)
	assert.Greater(t, value.Line, 0.0)
	assert.InDelta(t, value.Line-value.Signal, value.Histogram, 1e-12)

	short, err := MACD([]float64{1}, 12, 26, 9)
	require.NoError(t, err)
	assert.Equal(t, MACDValue{}, short)

	_, err = MACD(rising, 0, 26, 9)
	require.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestVolatility(t *testing.T) {
	constant, err := Volatility([]float64{10, 10, 10, 10}, 10)
	require.NoError(t, err)
	assert.Equal(t, 0.0, constant)

	got, err := Volatility([]float64{100, 110, 100}, 10)
	require.NoError(t, err)
	r := math.Log(1.1)
	// returns r and -r: population std is r, scaled by sqrt(2)
	assert.InDelta(t, r*math.Sqrt(2), got, 1e-12)

	_, err = Volatility([]float64{1, 0, 1}, 10)
	require.Error(t, err)

	_, err = Volatility([]float64{1, 2}, -1)
	require.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestBollingerBands(t *testing.T) {
	bands, err := BollingerBands([]float64{1, 2, 3, 4, 5}, 5, 2)
	require.NoError(t, err)
	std := math.Sqrt(2)
	assert.InDelta(t, 3.0, bands.Middle, 1e-12)
	assert.InDelta(t, 3+2*std, bands.Upper, 1e-12)
	assert.InDelta(t, 3-2*std, bands.Lower, 1e-12)

	empty, err := BollingerBands(nil, 20, 2)
	require.NoError(t, err)
	assert.Equal(t, Bands{}, empty)
}
