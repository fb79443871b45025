// Package stats tallies per-call generation outcomes for a workflow run and
// optionally mirrors them to prometheus counters.
package stats

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/deckforge/deckforge/deck"
)

// Outcome identifies the result kind of one gateway invocation or one
// fallback fill.
type Outcome string

const (
	OutcomeSuccess       Outcome = "success"
	OutcomeRateLimited   Outcome = "rate_limited"
	OutcomeTimeout       Outcome = "timeout"
	OutcomeMalformed     Outcome = "malformed"
	OutcomeUpstreamError Outcome = "upstream_error"
	OutcomeFallback      Outcome = "fallback"
)

// gatewayOutcomes are the outcomes that count as a generation attempt.
// OutcomeFallback is excluded: it records a template fill, not a call.
var gatewayOutcomes = map[Outcome]bool{
	OutcomeSuccess:       true,
	OutcomeRateLimited:   true,
	OutcomeTimeout:       true,
	OutcomeMalformed:     true,
	OutcomeUpstreamError: true,
}

// Metrics holds process-wide prometheus counters shared across runs.
type Metrics struct {
	outcomes *prometheus.CounterVec
}

// NewMetrics creates and registers the outcome counters.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "deckforge",
			Subsystem: "generation",
			Name:      "outcomes_total",
			Help:      "Generation call and fallback outcomes by kind.",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.outcomes)
	}
	return m
}

// Aggregator accumulates outcome counts for a single run. Counters are
// purely additive. Safe for concurrent use, though a single run records
// sequentially.
type Aggregator struct {
	mu     sync.Mutex
	counts map[Outcome]int

	// metrics, when set, receives every recorded outcome as well.
	metrics *Metrics
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithMetrics mirrors recorded outcomes to the given prometheus counters.
func WithMetrics(m *Metrics) Option {
	return func(a *Aggregator) {
		a.metrics = m
	}
}

// NewAggregator creates an empty Aggregator.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{counts: make(map[Outcome]int)}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Record tallies one outcome.
func (a *Aggregator) Record(o Outcome) {
	a.mu.Lock()
	a.counts[o]++
	a.mu.Unlock()

	if a.metrics != nil {
		a.metrics.outcomes.WithLabelValues(string(o)).Inc()
	}
}

// Snapshot returns the run statistics accumulated so far. The success rate
// is successful/attempts and 0 when no attempts were made.
func (a *Aggregator) Snapshot() deck.Statistics {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := deck.Statistics{
		Successful:     a.counts[OutcomeSuccess],
		FallbackUsed:   a.counts[OutcomeFallback],
		RateLimited:    a.counts[OutcomeRateLimited],
		Timeouts:       a.counts[OutcomeTimeout],
		Malformed:      a.counts[OutcomeMalformed],
		UpstreamErrors: a.counts[OutcomeUpstreamError],
	}
	for o, n := range a.counts {
		if gatewayOutcomes[o] {
			s.TotalAttempts += n
		}
	}
	if s.TotalAttempts > 0 {
		s.SuccessRate = float64(s.Successful) / float64(s.TotalAttempts)
	}
	return s
}
