package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatencyRecorderSummary(t *testing.T) {
	r := NewLatencyRecorder()
	assert.Equal(t, LatencySummary{}, r.Summary())

	for i := 1; i <= 100; i++ {
		require.NoError(t, r.Record(time.Duration(i)*time.Millisecond))
	}
	s := r.Summary()
	assert.Equal(t, int64(100), s.Count)
	assert.InDelta(t, float64(time.Millisecond), float64(s.Min), float64(time.Microsecond))
	assert.InDelta(t, float64(100*time.Millisecond), float64(s.Max), float64(100*time.Microsecond))
	assert.InDelta(t, float64(50*time.Millisecond), float64(s.P50), float64(100*time.Microsecond))
	assert.InDelta(t, float64(90*time.Millisecond), float64(s.P90), float64(100*time.Microsecond))
	assert.InDelta(t, float64(99*time.Millisecond), float64(s.P99), float64(100*time.Microsecond))
	assert.LessOrEqual(t, s.P50, s.P90)
	assert.LessOrEqual(t, s.P90, s.P99)
}

func TestLatencyRecorderClamps(t *testing.T) {
	r := NewLatencyRecorder()
	require.NoError(t, r.Record(0))
	require.NoError(t, r.Record(2*time.Minute))
	s := r.Summary()
	assert.Equal(t, int64(2), s.Count)
	assert.Equal(t, time.Microsecond, s.Min)
	assert.InDelta(t, float64(60*time.Second), float64(s.Max), float64(100*time.Millisecond))
}

func TestScoreAccumulator(t *testing.T) {
	var a ScoreAccumulator
	assert.Equal(t, ScoreSummary{}, a.Summary())

	a.Add(0.2, true)
	a.Add(0.4, true)
	a.Add(0.6, false)
	s := a.Summary()
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 0.4, s.Mean, 1e-12)
	assert.InDelta(t, 0.2, s.Min, 1e-12)
	assert.InDelta(t, 0.6, s.Max, 1e-12)
	assert.InDelta(t, 0.16329931618554522, s.StdDev, 1e-9)
	assert.Equal(t, 1, s.Fallbacks)
}

func TestBenchReportThroughput(t *testing.T) {
	assert.Equal(t, 0.0, BenchReport{Iterations: 10}.Throughput())
	assert.InDelta(t, 20.0, BenchReport{Iterations: 10, Elapsed: 500 * time.Millisecond}.Throughput(), 1e-9)
}
