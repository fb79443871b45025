// Package workflow runs the five-stage presentation pipeline: document
// analysis, structure planning, visual spec, per-slide content generation
// and assembly. Stages run strictly in order; only the generation stage
// touches the network, and every per-slide failure there degrades to
// template content instead of aborting the run.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/deckforge/deckforge/deck"
	"github.com/deckforge/deckforge/fallback"
	"github.com/deckforge/deckforge/generate"
	"github.com/deckforge/deckforge/llm"
	"github.com/deckforge/deckforge/ratelimit"
	"github.com/deckforge/deckforge/stats"
)

// ErrInvalidInput marks requests rejected before the first stage runs:
// empty document text or an unusable slide count. It is the only error a
// run can return besides an internal assembly failure.
var ErrInvalidInput = errors.New("invalid input")

// Options are the per-run knobs a caller may set.
type Options struct {
	// TargetSlides fixes the slide count. Zero derives the count from the
	// document's sections, bounded to [3,5]. Explicit values below 3 are
	// rejected: a deck always has a title, a content slide and a conclusion.
	TargetSlides int
}

// Coordinator owns the pipeline wiring shared across runs: the upstream
// completer, the shared rate limiter and the fallback synthesizer. Each Run
// gets its own statistics aggregator and gateway.
type Coordinator struct {
	completer llm.Completer
	limiter   *ratelimit.Manager
	synth     *fallback.Synthesizer
	metrics   *stats.Metrics
	gwOpts    []generate.Option
	logger    *slog.Logger
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithMetrics mirrors every run's outcomes to shared prometheus counters.
func WithMetrics(m *stats.Metrics) CoordinatorOption {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// WithGatewayOptions forwards options to each run's generation gateway.
func WithGatewayOptions(opts ...generate.Option) CoordinatorOption {
	return func(c *Coordinator) {
		c.gwOpts = opts
	}
}

// NewCoordinator creates a Coordinator. The limiter is shared with any other
// coordinators or runs targeting the same upstream quota.
func NewCoordinator(completer llm.Completer, limiter *ratelimit.Manager, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		completer: completer,
		limiter:   limiter,
		synth:     fallback.New(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes the pipeline over the given document text. It returns either
// a complete, structurally valid presentation or an error raised before any
// slide was produced; it never returns a truncated slide set. Cancellation
// mid-run fills the remaining slides from templates so the result is still
// well formed.
func (c *Coordinator) Run(ctx context.Context, documentText string, opts Options) (*deck.Result, error) {
	started := time.Now()

	if strings.TrimSpace(documentText) == "" {
		return nil, fmt.Errorf("%w: empty document text", ErrInvalidInput)
	}
	if opts.TargetSlides < 0 {
		return nil, fmt.Errorf("%w: negative slide count %d", ErrInvalidInput, opts.TargetSlides)
	}
	if opts.TargetSlides > 0 && opts.TargetSlides < minSlides {
		return nil, fmt.Errorf("%w: slide count %d below minimum %d", ErrInvalidInput, opts.TargetSlides, minSlides)
	}

	var aggOpts []stats.Option
	if c.metrics != nil {
		aggOpts = append(aggOpts, stats.WithMetrics(c.metrics))
	}
	agg := stats.NewAggregator(aggOpts...)
	gw := generate.New(c.completer, c.limiter, agg, c.gwOpts...)

	// Upstream auth or configuration problems force the whole run onto the
	// fallback path. Decided once, here, never per slide.
	forceFallback := false
	if err := gw.Preflight(ctx); err != nil {
		c.logger.Warn("Upstream preflight failed, running entirely on fallback content",
			"error", err)
		forceFallback = true
	}

	analysis := analyze(documentText)
	c.logger.Info("Document analyzed",
		"title", analysis.DocumentTitle,
		"themes", analysis.Themes,
		"sections", len(analysis.Sections),
		"words", analysis.WordCount)

	// Cancellation between stages never truncates the deck: the remaining
	// stages are local, so the run finishes on fallback content instead.
	if ctx.Err() != nil {
		forceFallback = true
	}

	entries := plan(analysis, opts.TargetSlides)
	theme := themeSpec(analysis.Themes)
	c.logger.Info("Slide plan ready", "slides", len(entries), "style", theme.Style)

	if ctx.Err() != nil {
		forceFallback = true
	}

	contents := make([]deck.Content, len(entries))
	for i, entry := range entries {
		contents[i] = c.slideContent(ctx, gw, agg, analysis, entry, forceFallback)
		if entry.Kind == deck.KindTitle && contents[i].Subtitle == "" {
			contents[i].Subtitle = titleSubtitle(analysis.Themes)
		}
	}

	snapshot := agg.Snapshot()
	c.logger.Info("Generation finished",
		"attempts", snapshot.TotalAttempts,
		"successful", snapshot.Successful,
		"fallback", snapshot.FallbackUsed,
		"success_rate", snapshot.SuccessRate)

	return assemble(analysis, entries, contents, theme, snapshot, started)
}

// slideContent produces the content for one planned slide. Every failure
// path lands on the synthesizer, so the returned content is always valid.
func (c *Coordinator) slideContent(ctx context.Context, gw *generate.Gateway, agg *stats.Aggregator, a Analysis, entry deck.PlanEntry, forceFallback bool) deck.Content {
	if !forceFallback && ctx.Err() == nil {
		outcome := gw.Generate(ctx, slidePrompt(entry, a), generate.SlideSchema())
		if outcome.Kind == generate.KindSuccess {
			return outcome.Content
		}
		c.logger.Debug("Slide degraded to fallback content",
			"position", entry.Position,
			"kind", outcome.Kind)
	}

	agg.Record(stats.OutcomeFallback)
	return c.synth.Synthesize(entry.Kind, a.Themes, entry.Position)
}

// titleSubtitle mirrors the themes onto the title slide when the generated
// content did not supply a subtitle of its own.
func titleSubtitle(themes []string) string {
	n := len(themes)
	if n == 0 {
		return "An Overview"
	}
	if n > 2 {
		n = 2
	}
	return "Key Insights: " + strings.Join(themes[:n], ", ")
}
