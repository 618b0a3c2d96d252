package mamdani

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"mamdani/internal/fuzzy"
	"mamdani/internal/inference"
	"mamdani/internal/membership"
)

func newTestClient(t *testing.T, opts Options) *Client {
	t.Helper()
	if opts.StoreKind == "" {
		opts.StoreKind = "memory"
	}
	client, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func TestClientEvaluateStoresHistory(t *testing.T) {
	ctx := context.Background()
	tick := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	client := newTestClient(t, Options{Now: func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}})

	first, err := client.Evaluate(ctx, EvaluateRequest{
		Profile: "trading",
		Inputs:  map[string]float64{"rsi": 20, "macd_histogram": 1, "volatility": 0.05},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "buy", first.Label)
	assert.True(t, first.Fired)

	second, err := client.Evaluate(ctx, EvaluateRequest{
		Profile: "marketing",
		Inputs:  map[string]float64{"engagement_rate": 0, "conversion_rate": 0, "roi": 0},
	})
	require.NoError(t, err)
	assert.False(t, second.Fired)
	assert.Equal(t, 0.5, second.Score)

	history, err := client.History(ctx, HistoryRequest{})
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)

	trading, err := client.History(ctx, HistoryRequest{Profile: "trading", Limit: 5})
	require.NoError(t, err)
	require.Len(t, trading, 1)
	assert.Equal(t, "buy", trading[0].Label)
	assert.Equal(t, 20.0, trading[0].Inputs["rsi"])

	record, ok, err := client.GetEvaluation(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "trading", record.Profile)
}

func TestClientEvaluateEphemeral(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, Options{})

	out, err := client.Evaluate(ctx, EvaluateRequest{
		Profile:   "segmentation",
		Inputs:    map[string]float64{"recency_days": 15, "purchase_frequency": 20, "annual_spend": 7500},
		Ephemeral: true,
	})
	require.NoError(t, err)
	assert.Empty(t, out.ID)
	assert.Equal(t, "champion", out.Label)

	history, err := client.History(ctx, HistoryRequest{})
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestClientEvaluateErrors(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	client := newTestClient(t, Options{Registerer: reg})

	_, err := client.Evaluate(ctx, EvaluateRequest{Profile: "astrology"})
	require.ErrorIs(t, err, ErrUnknownProfile)

	_, err = client.Evaluate(ctx, EvaluateRequest{Profile: "trading", Inputs: map[string]float64{"rsi": 50}})
	require.ErrorIs(t, err, fuzzy.ErrMissingInput)

	_, err = client.History(ctx, HistoryRequest{Profile: "astrology"})
	require.ErrorIs(t, err, ErrUnknownProfile)

	assert.Equal(t, 1.0, testutil.ToFloat64(client.metrics.ErrorsTotal.WithLabelValues("trading")))
}

func TestClientMetricsAndLogging(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.DebugLevel)
	reg := prometheus.NewRegistry()
	client := newTestClient(t, Options{Registerer: reg, Logger: zap.New(core)})

	_, err := client.Evaluate(ctx, EvaluateRequest{
		Profile: "marketing",
		Inputs:  map[string]float64{"engagement_rate": 0, "conversion_rate": 0, "roi": 0},
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(client.metrics.EvaluationsTotal.WithLabelValues("marketing", "average")))
	assert.Equal(t, 1.0, testutil.ToFloat64(client.metrics.FallbacksTotal.WithLabelValues("marketing")))
	assert.Equal(t, 1, logs.FilterMessage("evaluated profile").Len())
	assert.Equal(t, 1, logs.FilterMessage("no rule fired, using output domain midpoint").Len())
}

func TestClientSignal(t *testing.T) {
	client := newTestClient(t, Options{})

	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = 100 - float64(i)
	}
	out, err := client.Signal(context.Background(), SignalRequest{Prices: prices, Ephemeral: true})
	require.NoError(t, err)
	assert.Equal(t, "trading", out.Profile)
	assert.Equal(t, 0.0, out.Inputs["rsi"])
	assert.Less(t, out.Inputs["macd_histogram"], 0.0)

	_, err = client.Signal(context.Background(), SignalRequest{})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestClientProfiles(t *testing.T) {
	client := newTestClient(t, Options{Resolution: 100})
	items, err := client.Profiles()
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, "marketing", items[0].Name)
	assert.Equal(t, []string{"engagement_rate", "conversion_rate", "roi"}, items[0].Inputs)
	assert.Equal(t, "quality", items[0].Output)
	assert.Equal(t, []string{"poor", "average", "good", "excellent"}, items[0].Labels)
	assert.Len(t, items[0].Rules, 9)
	assert.Contains(t, items[0].Rules[0], "IF engagement_rate IS high")
}

func TestClientBench(t *testing.T) {
	client := newTestClient(t, Options{Resolution: 50, Workers: 2})

	report, err := client.Bench(context.Background(), BenchRequest{Profile: "trading", Iterations: 25, Seed: 7})
	require.NoError(t, err)
	assert.Equal(t, "trading", report.Profile)
	assert.Equal(t, 25, report.Iterations)
	assert.Equal(t, 50, report.Resolution)
	assert.Equal(t, int64(25), report.Latency.Count)
	assert.Equal(t, 25, report.Scores.Count)
	assert.GreaterOrEqual(t, report.Scores.Min, 0.0)
	assert.LessOrEqual(t, report.Scores.Max, 1.0)

	again, err := client.Bench(context.Background(), BenchRequest{Profile: "trading", Iterations: 25, Seed: 7})
	require.NoError(t, err)
	assert.Equal(t, report.Scores, again.Scores)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.Bench(ctx, BenchRequest{Profile: "trading", Iterations: 5})
	require.ErrorIs(t, err, context.Canceled)
}

func TestClientMembership(t *testing.T) {
	client := newTestClient(t, Options{})

	points, err := client.Membership(MembershipRequest{Kind: "triangular", Params: []float64{0, 5, 10}, Min: 0, Max: 10, Points: 11})
	require.NoError(t, err)
	require.Len(t, points, 11)
	assert.Equal(t, 0.0, points[0].Degree)
	assert.Equal(t, 1.0, points[5].Degree)
	assert.InDelta(t, 0.4, points[2].Degree, 1e-12)

	_, err = client.Membership(MembershipRequest{Kind: "gaussian", Params: []float64{0, 0}, Min: 0, Max: 1})
	require.ErrorIs(t, err, membership.ErrInvalidParameter)

	_, err = client.Membership(MembershipRequest{Kind: "triangular", Params: []float64{0, 1, 2}, Min: 1, Max: 1})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewClampsLowResolution(t *testing.T) {
	client := newTestClient(t, Options{Resolution: 3})
	p, err := client.profile("trading")
	require.NoError(t, err)
	assert.Equal(t, inference.MinResolution, p.Engine().Resolution())

	_, err = New(Options{StoreKind: "redis"})
	require.Error(t, err)
}

func TestClientProfileCacheNormalizesNames(t *testing.T) {
	client := newTestClient(t, Options{})
	first, err := client.profile("trading")
	require.NoError(t, err)
	for _, name := range []string{"Trading", " trading ", "TRADING"} {
		p, err := client.profile(name)
		require.NoError(t, err)
		assert.Same(t, first, p, name)
	}
	assert.Len(t, client.profiles, 1)
}

func TestClientEvaluateRejectsNonFiniteInputs(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	client := newTestClient(t, Options{Registerer: reg})

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := client.Evaluate(ctx, EvaluateRequest{
			Profile: "marketing",
			Inputs:  map[string]float64{"engagement_rate": v, "conversion_rate": 0.1, "roi": 2},
		})
		require.ErrorIs(t, err, ErrInvalidInput)
	}
	_, err := client.Signal(ctx, SignalRequest{Prices: []float64{100, math.NaN(), 101}})
	require.ErrorIs(t, err, ErrInvalidInput)

	history, err := client.History(ctx, HistoryRequest{})
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Equal(t, 3.0, testutil.ToFloat64(client.metrics.ErrorsTotal.WithLabelValues("marketing")))
}

func TestCoerceInputs(t *testing.T) {
	got, err := CoerceInputs(map[string]any{"a": 1, "b": "2.5", "c": 0.25, "d": int64(3)})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"a": 1, "b": 2.5, "c": 0.25, "d": 3}, got)

	_, err = CoerceInputs(map[string]any{"a": "high"})
	require.ErrorIs(t, err, ErrInvalidInput)

	for _, raw := range []any{"NaN", "Inf", "-Inf", math.NaN(), math.Inf(1)} {
		_, err = CoerceInputs(map[string]any{"a": raw})
		require.ErrorIs(t, err, ErrInvalidInput, raw)
	}
}
