package stats

import (
	"fmt"
	"math"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	minTrackableMicros = 1
	maxTrackableMicros = 60_000_000
	significantFigures = 3
)

type LatencySummary struct {
	Count  int64         `json:"count"`
	Min    time.Duration `json:"min_ns"`
	Mean   time.Duration `json:"mean_ns"`
	P50    time.Duration `json:"p50_ns"`
	P90    time.Duration `json:"p90_ns"`
	P99    time.Duration `json:"p99_ns"`
	Max    time.Duration `json:"max_ns"`
	StdDev time.Duration `json:"stddev_ns"`
}

// LatencyRecorder tracks durations at microsecond precision. Values outside
// [1µs, 60s] are clamped. Not safe for concurrent use.
type LatencyRecorder struct {
	hist *hdrhistogram.Histogram
}

func NewLatencyRecorder() *LatencyRecorder {
	return &LatencyRecorder{hist: hdrhistogram.New(minTrackableMicros, maxTrackableMicros, significantFigures)}
}

func (r *LatencyRecorder) Record(d time.Duration) error {
	micros := d.Microseconds()
	if micros < minTrackableMicros {
		micros = minTrackableMicros
	}
	if micros > maxTrackableMicros {
		micros = maxTrackableMicros
	}
	if err := r.hist.RecordValue(micros); err != nil {
		return fmt.Errorf("record latency %s: %w", d, err)
	}
	return nil
}

func (r *LatencyRecorder) Summary() LatencySummary {
	if r.hist.TotalCount() == 0 {
		return LatencySummary{}
	}
	return LatencySummary{
		Count:  r.hist.TotalCount(),
		Min:    micros(float64(r.hist.Min())),
		Mean:   micros(r.hist.Mean()),
		P50:    micros(float64(r.hist.ValueAtQuantile(50))),
		P90:    micros(float64(r.hist.ValueAtQuantile(90))),
		P99:    micros(float64(r.hist.ValueAtQuantile(99))),
		Max:    micros(float64(r.hist.Max())),
		StdDev: micros(r.hist.StdDev()),
	}
}

func micros(v float64) time.Duration {
	return time.Duration(math.Round(v * float64(time.Microsecond)))
}

// ScoreSummary describes the crisp outputs produced during a benchmark.
type ScoreSummary struct {
	Count     int     `json:"count"`
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"stddev"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Fallbacks int     `json:"fallbacks"`
}

type ScoreAccumulator struct {
	count     int
	sum       float64
	sumSq     float64
	min       float64
	max       float64
	fallbacks int
}

func (a *ScoreAccumulator) Add(score float64, fired bool) {
	if a.count == 0 || score < a.min {
		a.min = score
	}
	if a.count == 0 || score > a.max {
		a.max = score
	}
	a.count++
	a.sum += score
	a.sumSq += score * score
	if !fired {
		a.fallbacks++
	}
}

func (a *ScoreAccumulator) Summary() ScoreSummary {
	if a.count == 0 {
		return ScoreSummary{}
	}
	mean := a.sum / float64(a.count)
	variance := a.sumSq/float64(a.count) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return ScoreSummary{
		Count:     a.count,
		Mean:      mean,
		StdDev:    math.Sqrt(variance),
		Min:       a.min,
		Max:       a.max,
		Fallbacks: a.fallbacks,
	}
}

// BenchReport is the result of repeatedly evaluating one profile.
type BenchReport struct {
	Profile     string         `json:"profile"`
	Iterations  int            `json:"iterations"`
	Resolution  int            `json:"resolution"`
	Workers     int            `json:"workers"`
	Seed        int64          `json:"seed"`
	GeneratedAt string         `json:"generated_at_utc"`
	Elapsed     time.Duration  `json:"elapsed_ns"`
	Latency     LatencySummary `json:"latency"`
	Scores      ScoreSummary   `json:"scores"`
}

// Throughput is evaluations per second over the whole run.
func (r BenchReport) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Iterations) / r.Elapsed.Seconds()
}
