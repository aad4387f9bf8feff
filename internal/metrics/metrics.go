// Package metrics instruments the pattern matcher with Prometheus
// collectors.
package metrics

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roach88/semnet/internal/engine"
	"github.com/roach88/semnet/internal/network"
)

// Search results used as the "result" label.
const (
	ResultOK       = "ok"
	ResultCanceled = "canceled"
	ResultInvalid  = "invalid_pattern"
	ResultError    = "error"
)

// MatcherMetrics records matcher progress. It implements engine.Observer.
//
// Thread Safety: safe for concurrent use.
type MatcherMetrics struct {
	searches   *prometheus.CounterVec
	seeds      *prometheus.CounterVec
	expansions *prometheus.CounterVec
	pruned     prometheus.Counter
	matches    prometheus.Counter
	duration   prometheus.Histogram

	totalSearches   atomic.Int64
	totalSeeds      atomic.Int64
	totalExpansions atomic.Int64
	totalMatches    atomic.Int64
}

var _ engine.Observer = (*MatcherMetrics)(nil)

// NewMatcherMetrics registers the matcher collectors on reg. A nil reg
// creates unregistered collectors.
func NewMatcherMetrics(reg prometheus.Registerer) *MatcherMetrics {
	f := promauto.With(reg)
	return &MatcherMetrics{
		searches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "semnet_matcher_searches_total",
			Help: "Pattern searches by result",
		}, []string{"result"}),
		seeds: f.NewCounterVec(prometheus.CounterOpts{
			Name: "semnet_matcher_seed_chains_total",
			Help: "Seed chains created, by start label",
		}, []string{"label"}),
		expansions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "semnet_matcher_expansions_total",
			Help: "Pattern edge expansions, by pattern label",
		}, []string{"label"}),
		pruned: f.NewCounter(prometheus.CounterOpts{
			Name: "semnet_matcher_chains_pruned_total",
			Help: "Chains dropped because an expansion found no consistent base edge",
		}),
		matches: f.NewCounter(prometheus.CounterOpts{
			Name: "semnet_matcher_matches_total",
			Help: "Complete matches returned",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "semnet_matcher_search_duration_seconds",
			Help:    "Pattern search duration",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1, 10},
		}),
	}
}

// Seeded implements engine.Observer.
func (m *MatcherMetrics) Seeded(label string, chains int) {
	m.seeds.WithLabelValues(label).Add(float64(chains))
	m.totalSeeds.Add(int64(chains))
}

// Expanded implements engine.Observer.
func (m *MatcherMetrics) Expanded(pattern network.Triplet, in, out int) {
	m.expansions.WithLabelValues(pattern.Label).Inc()
	m.totalExpansions.Add(1)
	if out < in {
		m.pruned.Add(float64(in - out))
	}
}

// Finished implements engine.Observer.
func (m *MatcherMetrics) Finished(matches int, elapsed time.Duration, err error) {
	m.searches.WithLabelValues(resultOf(err)).Inc()
	m.duration.Observe(elapsed.Seconds())
	m.matches.Add(float64(matches))
	m.totalSearches.Add(1)
	m.totalMatches.Add(int64(matches))
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ResultCanceled
	case errors.Is(err, engine.ErrInvalidPattern):
		return ResultInvalid
	default:
		return ResultError
	}
}

// Totals are cumulative counts since the metrics were created.
type Totals struct {
	Searches   int64 `json:"searches"`
	Seeds      int64 `json:"seeds"`
	Expansions int64 `json:"expansions"`
	Matches    int64 `json:"matches"`
}

// Snapshot returns the current totals.
func (m *MatcherMetrics) Snapshot() Totals {
	return Totals{
		Searches:   m.totalSearches.Load(),
		Seeds:      m.totalSeeds.Load(),
		Expansions: m.totalExpansions.Load(),
		Matches:    m.totalMatches.Load(),
	}
}
