package dataextract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSeries(t *testing.T) {
	const ohlc = "date,open,close\n2024-01-01,10,11\n\n2024-01-02,11,12.5\n"
	tests := []struct {
		name string
		in   string
		opts SeriesOptions
		want []float64
	}{
		{name: "last header column", in: ohlc, opts: SeriesOptions{HasHeader: true, ColumnIndex: -1}, want: []float64{11, 12.5}},
		{name: "named column", in: ohlc, opts: SeriesOptions{HasHeader: true, ColumnName: " Open "}, want: []float64{10, 11}},
		{name: "bare column", in: "1\n2\n 3\n", opts: SeriesOptions{}, want: []float64{1, 2, 3}},
		{name: "index", in: "a,1\nb,2\n", opts: SeriesOptions{ColumnIndex: 1}, want: []float64{1, 2}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ReadSeries(strings.NewReader(tc.in), tc.opts)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestReadSeriesErrors(t *testing.T) {
	_, err := ReadSeries(strings.NewReader(""), SeriesOptions{HasHeader: true})
	require.ErrorIs(t, err, ErrNoData)

	_, err = ReadSeries(strings.NewReader("close\n"), SeriesOptions{HasHeader: true})
	require.ErrorIs(t, err, ErrNoData)

	_, err = ReadSeries(strings.NewReader("close\n1\n"), SeriesOptions{HasHeader: true, ColumnName: "volume"})
	require.Error(t, err)

	_, err = ReadSeries(strings.NewReader("1\n"), SeriesOptions{ColumnName: "close"})
	require.Error(t, err)

	_, err = ReadSeries(strings.NewReader("1\nabc\n"), SeriesOptions{})
	require.ErrorIs(t, err, ErrInvalidValue)

	for _, raw := range []string{"NaN", "Inf", "-inf", "+Infinity"} {
		_, err = ReadSeries(strings.NewReader("close\n100\n"+raw+"\n"), SeriesOptions{HasHeader: true, ColumnIndex: -1})
		require.ErrorIs(t, err, ErrInvalidValue, raw)
	}

	_, err = ReadSeries(strings.NewReader("a,1\nb\n"), SeriesOptions{ColumnIndex: 1})
	require.Error(t, err)
}

func TestReadInputRows(t *testing.T) {
	in := "rsi,macd_histogram,volatility\n20,1,0.05\n\n85, -1 ,\n"
	rows, err := ReadInputRows(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, map[string]float64{"rsi": 20, "macd_histogram": 1, "volatility": 0.05}, rows[0])
	assert.Equal(t, map[string]float64{"rsi": 85, "macd_histogram": -1}, rows[1])

	_, err = ReadInputRows(strings.NewReader("rsi\n"))
	require.ErrorIs(t, err, ErrNoData)

	_, err = ReadInputRows(strings.NewReader("rsi,\n1,2\n"))
	require.Error(t, err)

	_, err = ReadInputRows(strings.NewReader("rsi\n1,2\n"))
	require.Error(t, err)

	_, err = ReadInputRows(strings.NewReader("rsi\nhigh\n"))
	require.ErrorIs(t, err, ErrInvalidValue)

	_, err = ReadInputRows(strings.NewReader("rsi,volatility\n20,NaN\n"))
	require.ErrorIs(t, err, ErrInvalidValue)
}
