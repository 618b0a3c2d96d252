package mamdani

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"mamdani/internal/inference"
	"mamdani/internal/membership"
	"mamdani/internal/metrics"
	"mamdani/internal/model"
	"mamdani/internal/profiles"
	"mamdani/internal/stats"
	"mamdani/internal/storage"
)

const (
	defaultDBPath          = "mamdani.db"
	defaultHistoryLimit    = 20
	defaultBenchIterations = 1000
	defaultSamplePoints    = 21
)

var (
	ErrUnknownProfile = profiles.ErrUnknownProfile
	ErrInvalidInput   = errors.New("invalid input")
)

type Options struct {
	StoreKind  string
	DBPath     string
	Resolution int
	Workers    int
	Logger     *zap.Logger
	// Registerer receives the evaluation collectors. Nil disables metrics.
	Registerer prometheus.Registerer
	Now        func() time.Time
}

type Client struct {
	store      storage.Store
	logger     *zap.Logger
	metrics    *metrics.Metrics
	resolution int
	workers    int
	now        func() time.Time

	initOnce sync.Once
	initErr  error

	mu       sync.Mutex
	profiles map[string]*profiles.Profile
}

type ProfileItem struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Inputs      []string `json:"inputs"`
	Output      string   `json:"output"`
	Labels      []string `json:"labels"`
	Rules       []string `json:"rules"`
}

type EvaluateRequest struct {
	Profile string
	Inputs  map[string]float64
	// Ephemeral skips the history store.
	Ephemeral bool
}

type Evaluation struct {
	ID           string `json:"id,omitempty"`
	CreatedAtUTC string `json:"created_at_utc"`
	profiles.Assessment
	Inputs map[string]float64 `json:"inputs"`
}

type SignalRequest struct {
	Prices    []float64
	Ephemeral bool
}

type HistoryRequest struct {
	Profile string
	Limit   int
}

type BenchRequest struct {
	Profile    string
	Iterations int
	Seed       int64
}

type MembershipRequest struct {
	Kind   string
	Params []float64
	Min    float64
	Max    float64
	Points int
}

type MembershipPoint struct {
	X      float64 `json:"x"`
	Degree float64 `json:"degree"`
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	c := &Client{
		store:      store,
		logger:     logger,
		resolution: opts.Resolution,
		workers:    opts.Workers,
		now:        now,
		profiles:   make(map[string]*profiles.Profile),
	}
	if opts.Registerer != nil {
		c.metrics = metrics.New(opts.Registerer)
	}
	return c, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	c.initOnce.Do(func() {
		c.initErr = c.store.Init(ctx)
	})
	return c.initErr
}

func (c *Client) Profiles() ([]ProfileItem, error) {
	names := profiles.Names()
	out := make([]ProfileItem, 0, len(names))
	for _, name := range names {
		p, err := c.profile(name)
		if err != nil {
			return nil, err
		}
		rules := p.Engine().Rules()
		ruleText := make([]string, len(rules))
		for i, r := range rules {
			ruleText[i] = r.String()
		}
		out = append(out, ProfileItem{
			Name:        p.Name(),
			Description: p.Description(),
			Inputs:      p.InputNames(),
			Output:      p.Output().Name(),
			Labels:      p.Output().Labels(),
			Rules:       ruleText,
		})
	}
	return out, nil
}

func (c *Client) Evaluate(ctx context.Context, req EvaluateRequest) (Evaluation, error) {
	p, err := c.profile(req.Profile)
	if err != nil {
		return Evaluation{}, err
	}

	if err := checkFinite(req.Inputs); err != nil {
		c.metrics.ObserveError(p.Name())
		return Evaluation{}, err
	}

	started := time.Now()
	assessment, err := p.Assess(req.Inputs)
	if err != nil {
		c.metrics.ObserveError(p.Name())
		return Evaluation{}, err
	}
	c.metrics.ObserveEvaluation(p.Name(), assessment.Label, assessment.Fired, time.Since(started))

	createdAt := c.now().UTC()
	out := Evaluation{
		CreatedAtUTC: createdAt.Format(time.RFC3339Nano),
		Assessment:   assessment,
		Inputs:       copyInputs(req.Inputs),
	}
	c.logger.Debug("evaluated profile",
		zap.String("profile", p.Name()),
		zap.Float64("score", assessment.Score),
		zap.String("label", assessment.Label),
		zap.Bool("fired", assessment.Fired),
	)
	if req.Ephemeral {
		return out, nil
	}

	record := model.EvaluationRecord{
		VersionedRecord: storage.CurrentVersion(),
		ID:              uuid.NewString(),
		Profile:         p.Name(),
		Inputs:          out.Inputs,
		Output:          assessment.Score,
		Label:           assessment.Label,
		Degree:          assessment.Degree,
		Fired:           assessment.Fired,
		CreatedAt:       createdAt,
	}
	if err := c.Init(ctx); err != nil {
		c.logger.Warn("history store unavailable", zap.Error(err))
		return out, nil
	}
	if err := c.store.SaveEvaluation(ctx, record); err != nil {
		c.logger.Warn("failed to save evaluation", zap.String("profile", p.Name()), zap.Error(err))
		return out, nil
	}
	out.ID = record.ID
	return out, nil
}

// Signal derives trading inputs from prices (oldest first) and evaluates the
// trading profile.
func (c *Client) Signal(ctx context.Context, req SignalRequest) (Evaluation, error) {
	for i, price := range req.Prices {
		if math.IsNaN(price) || math.IsInf(price, 0) {
			return Evaluation{}, fmt.Errorf("%w: price %d is not finite", ErrInvalidInput, i)
		}
	}
	inputs, err := profiles.TradingInputs(req.Prices)
	if err != nil {
		return Evaluation{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return c.Evaluate(ctx, EvaluateRequest{Profile: profiles.TradingName, Inputs: inputs, Ephemeral: req.Ephemeral})
}

func (c *Client) History(ctx context.Context, req HistoryRequest) ([]model.EvaluationRecord, error) {
	if req.Limit <= 0 {
		req.Limit = defaultHistoryLimit
	}
	profile := req.Profile
	if profile != "" {
		p, err := c.profile(profile)
		if err != nil {
			return nil, err
		}
		profile = p.Name()
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	return c.store.ListEvaluations(ctx, profile, req.Limit)
}

func (c *Client) GetEvaluation(ctx context.Context, id string) (model.EvaluationRecord, bool, error) {
	if err := c.Init(ctx); err != nil {
		return model.EvaluationRecord{}, false, err
	}
	return c.store.GetEvaluation(ctx, id)
}

// Bench evaluates the profile repeatedly with inputs drawn uniformly from each
// input domain. Results are not stored.
func (c *Client) Bench(ctx context.Context, req BenchRequest) (stats.BenchReport, error) {
	if req.Iterations <= 0 {
		req.Iterations = defaultBenchIterations
	}
	p, err := c.profile(req.Profile)
	if err != nil {
		return stats.BenchReport{}, err
	}

	rng := rand.New(rand.NewSource(req.Seed))
	variables := p.Engine().Inputs()
	inputs := make(map[string]float64, len(variables))
	latency := stats.NewLatencyRecorder()
	var scores stats.ScoreAccumulator

	started := time.Now()
	for i := 0; i < req.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return stats.BenchReport{}, err
		}
		for _, v := range variables {
			d := v.Domain()
			inputs[v.Name()] = d.Min + rng.Float64()*d.Span()
		}
		t0 := time.Now()
		result, err := p.Engine().Infer(inputs)
		if err != nil {
			return stats.BenchReport{}, err
		}
		if err := latency.Record(time.Since(t0)); err != nil {
			return stats.BenchReport{}, err
		}
		scores.Add(result.Output, result.Fired)
	}
	elapsed := time.Since(started)

	report := stats.BenchReport{
		Profile:     p.Name(),
		Iterations:  req.Iterations,
		Resolution:  p.Engine().Resolution(),
		Workers:     c.workers,
		Seed:        req.Seed,
		GeneratedAt: c.now().UTC().Format(time.RFC3339),
		Elapsed:     elapsed,
		Latency:     latency.Summary(),
		Scores:      scores.Summary(),
	}
	c.logger.Info("benchmark finished",
		zap.String("profile", report.Profile),
		zap.Int("iterations", report.Iterations),
		zap.Duration("p99", report.Latency.P99),
	)
	return report, nil
}

// Membership samples a registered shape over [Min, Max].
func (c *Client) Membership(req MembershipRequest) ([]MembershipPoint, error) {
	if req.Points <= 0 {
		req.Points = defaultSamplePoints
	}
	if !(req.Min < req.Max) {
		return nil, fmt.Errorf("%w: range [%g, %g]", ErrInvalidInput, req.Min, req.Max)
	}
	fn, err := membership.New(req.Kind, req.Params...)
	if err != nil {
		return nil, err
	}
	xs := inference.Universe(req.Min, req.Max, req.Points)
	degrees := membership.Sample(fn, xs)
	out := make([]MembershipPoint, len(xs))
	for i := range xs {
		out[i] = MembershipPoint{X: xs[i], Degree: degrees[i]}
	}
	return out, nil
}

func (c *Client) profile(name string) (*profiles.Profile, error) {
	key := profiles.NormalizeName(name)
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.profiles[key]; ok {
		return p, nil
	}
	var opts []inference.Option
	if c.resolution > 0 {
		opts = append(opts, inference.WithResolution(c.resolution))
	}
	if c.workers > 1 {
		opts = append(opts, inference.WithWorkers(c.workers))
	}
	opts = append(opts, inference.WithLogger(c.logger))
	p, err := profiles.Build(key, opts...)
	if err != nil {
		return nil, err
	}
	c.profiles[key] = p
	return p, nil
}

// CoerceInputs converts loosely typed values, such as decoded JSON or YAML,
// into crisp inputs.
func CoerceInputs(raw map[string]any) (map[string]float64, error) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]float64, len(raw))
	for _, k := range keys {
		v, err := cast.ToFloat64E(raw[k])
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidInput, k, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %s is not finite", ErrInvalidInput, k)
		}
		out[k] = v
	}
	return out, nil
}

// checkFinite rejects NaN and infinite inputs, which would otherwise flow
// through min/max aggregation into a NaN centroid.
func checkFinite(inputs map[string]float64) error {
	for name, v := range inputs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidInput, name)
		}
	}
	return nil
}

func copyInputs(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
