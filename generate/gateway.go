// Package generate implements the gateway between the workflow and the
// generative upstream: admission through the rate limiter, one bounded call
// with a single retry, response parsing, and outcome classification.
package generate

import (
	"context"
	"log/slog"

	"github.com/deckforge/deckforge/deck"
	"github.com/deckforge/deckforge/llm"
	"github.com/deckforge/deckforge/ratelimit"
	"github.com/deckforge/deckforge/stats"
)

// OutcomeKind classifies the result of one gateway invocation.
type OutcomeKind string

const (
	KindSuccess       OutcomeKind = "success"
	KindRateLimited   OutcomeKind = "rate_limited"
	KindTimeout       OutcomeKind = "timeout"
	KindMalformed     OutcomeKind = "malformed"
	KindUpstreamError OutcomeKind = "upstream_error"
)

// statOutcome maps an outcome kind to its statistics counter.
func (k OutcomeKind) statOutcome() stats.Outcome {
	switch k {
	case KindSuccess:
		return stats.OutcomeSuccess
	case KindRateLimited:
		return stats.OutcomeRateLimited
	case KindTimeout:
		return stats.OutcomeTimeout
	case KindMalformed:
		return stats.OutcomeMalformed
	default:
		return stats.OutcomeUpstreamError
	}
}

// Outcome is the typed result of one Generate call. Content is populated
// only for KindSuccess; Err carries the underlying failure otherwise.
type Outcome struct {
	Kind    OutcomeKind
	Content deck.Content
	Err     error
}

// Recorder receives one outcome per gateway invocation.
type Recorder interface {
	Record(o stats.Outcome)
}

// Gateway wraps a single outbound generation call. It never panics and
// never returns an untyped failure: every path yields an Outcome.
type Gateway struct {
	completer   llm.Completer
	limiter     *ratelimit.Manager
	recorder    Recorder
	temperature *float64
	maxTokens   int
	logger      *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithTemperature sets the sampling temperature sent upstream.
func WithTemperature(t float64) Option {
	return func(g *Gateway) {
		g.temperature = &t
	}
}

// WithMaxTokens caps the upstream response length.
func WithMaxTokens(n int) Option {
	return func(g *Gateway) {
		g.maxTokens = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// New creates a Gateway. limiter and recorder may not be nil; the limiter is
// typically shared across concurrent runs while the recorder is per-run.
func New(completer llm.Completer, limiter *ratelimit.Manager, recorder Recorder, opts ...Option) *Gateway {
	g := &Gateway{
		completer: completer,
		limiter:   limiter,
		recorder:  recorder,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Preflight checks the upstream configuration without spending rate budget.
func (g *Gateway) Preflight(ctx context.Context) error {
	return g.completer.Preflight(ctx)
}

// Generate runs one admission-checked generation call and classifies the
// result. The outcome is reported to the recorder exactly once.
func (g *Gateway) Generate(ctx context.Context, prompt string, schema Schema) Outcome {
	outcome := g.generate(ctx, prompt, schema)
	g.recorder.Record(outcome.Kind.statOutcome())

	if outcome.Kind != KindSuccess {
		g.logger.Debug("Generation did not succeed",
			"kind", outcome.Kind,
			"error", outcome.Err)
	}
	return outcome
}

func (g *Gateway) generate(ctx context.Context, prompt string, schema Schema) Outcome {
	if !g.limiter.Acquire(ctx) {
		return Outcome{Kind: KindRateLimited}
	}

	req := llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	}

	// One retry on timeout or transient failure; the admission above covers
	// both attempts.
	var lastKind OutcomeKind
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		resp, err := g.completer.Complete(ctx, req)
		if err == nil {
			content, parseErr := parseContent(resp.Content, schema)
			if parseErr != nil {
				return Outcome{Kind: KindMalformed, Err: parseErr}
			}
			return Outcome{Kind: KindSuccess, Content: content}
		}

		switch {
		case llm.IsTimeout(err):
			lastKind, lastErr = KindTimeout, err
		case llm.IsTransient(err):
			lastKind, lastErr = KindUpstreamError, err
		default:
			// Fatal errors and caller cancellation are not retried.
			return Outcome{Kind: KindUpstreamError, Err: err}
		}

		if attempt == 0 {
			g.logger.Debug("Retrying generation call", "error", err)
		}
	}

	return Outcome{Kind: lastKind, Err: lastErr}
}

// systemPrompt frames every slide-content request.
const systemPrompt = "You write concise, professional presentation content. " +
	"Respond with exactly the JSON object requested and nothing else."
